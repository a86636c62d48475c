package commerce

import (
	"context"
	"errors"
	"fmt"

	"github.com/safar/toy-market/internal/database"
)

// Error taxonomy of the commerce core. Validation failures are detected before
// any mutation; store failures classified as retryable surface as
// ErrUnavailable and are never retried here — retry policy belongs to the
// caller.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidKind       = errors.New("invalid transaction kind")
	ErrInvalidDuration   = errors.New("invalid rent duration")
	ErrMissingDuration   = errors.New("rent duration required")
	ErrNotRentable       = errors.New("toy is not rentable")
	ErrNotSaleable       = errors.New("toy is not saleable")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidAddress    = errors.New("invalid shipping address")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyTerminal   = errors.New("status is already terminal")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUnavailable       = errors.New("store unavailable")
)

// storeErr translates a store-layer failure into the core taxonomy. Not-found
// sentinels collapse to ErrNotFound; timeouts and transient database errors
// become ErrUnavailable so the caller can retry.
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, database.ErrToyNotFound),
		errors.Is(err, database.ErrCartNotFound),
		errors.Is(err, database.ErrCartItemNotFound),
		errors.Is(err, database.ErrOrderNotFound),
		errors.Is(err, database.ErrRequestNotFound),
		errors.Is(err, database.ErrUserNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, database.ErrAlreadyDecided):
		return fmt.Errorf("%s: %w", op, ErrAlreadyTerminal)
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		database.IsRetryable(err):
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
