package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
)

// Sentinel errors forming the store failure contract. Worker loops treat
// ErrStoreUnavailable as retryable with backoff and the others as fatal
// for the row being processed.
var (
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrStoreConflict      = errors.New("store conflict")
	ErrConstraintViolated = errors.New("store constraint violated")
	ErrNotFound           = errors.New("not found")
)

// mapError translates driver errors into the typed failure contract.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "23": // integrity constraint violation
			if pqErr.Code == "23505" {
				return fmt.Errorf("%s: %w: %s", op, ErrStoreConflict, pqErr.Message)
			}
			return fmt.Errorf("%s: %w: %s", op, ErrConstraintViolated, pqErr.Message)
		case "08", "53", "57": // connection, resources, operator intervention
			return fmt.Errorf("%s: %w: %s", op, ErrStoreUnavailable, pqErr.Message)
		case "40": // serialization failure / deadlock
			return fmt.Errorf("%s: %w: %s", op, ErrStoreConflict, pqErr.Message)
		}
		return fmt.Errorf("%s: %v", op, pqErr)
	}
	// Unknown driver error: assume the connection is gone.
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}

// IsRetryable reports whether a worker loop should back off and retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
