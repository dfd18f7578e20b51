package main

import (
	"newsengine/cmd/cmd"
	"newsengine/internal/logger"
)

func main() {
	logger.Init()
	cmd.Execute()
}
