package passcode

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrForbidden        = errors.New("identity is not allowed to hold this role")
	ErrCodeNotFound     = errors.New("no active code found")
	ErrCodeExpired      = errors.New("code has expired")
	ErrTooManyAttempts  = errors.New("too many incorrect attempts")
	ErrCodeIncorrect    = errors.New("code is incorrect")
	ErrConflict         = errors.New("code was modified concurrently")
	ErrDispatchFailed   = errors.New("failed to dispatch code")
	ErrStoreUnavailable = errors.New("code store unavailable")
	ErrCodeGeneration   = errors.New("failed to generate code")
	ErrSessionIssue     = errors.New("failed to issue session")

	// ErrStaleRecord is returned by CodeStore.Update when a conditional update
	// finds the record no longer in the expected state.
	ErrStaleRecord = errors.New("record changed since it was read")
)

// Kind returns a stable identifier for err suitable for API responses.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrCodeNotFound):
		return "code_not_found"
	case errors.Is(err, ErrCodeExpired):
		return "code_expired"
	case errors.Is(err, ErrTooManyAttempts):
		return "too_many_attempts"
	case errors.Is(err, ErrCodeIncorrect):
		return "code_incorrect"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrDispatchFailed):
		return "dispatch_failed"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "internal"
	}
}
