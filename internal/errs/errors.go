package errs

import (
    "errors"
    "fmt"
)

// Sentinel errors for cross-layer signaling. Callers match with errors.Is.
var (
    // ErrValidation marks input rejected before any storage call.
    ErrValidation = errors.New("validation")
    // ErrStorageUnavailable means no connection could be obtained after bounded retries.
    ErrStorageUnavailable = errors.New("storage_unavailable")
    // ErrRecordFailed means a write was attempted but not confirmed committed.
    ErrRecordFailed = errors.New("record_failed")
    // ErrIDCollision is returned by stores when an entry id is already taken.
    // The journal service retries it internally; it never reaches callers.
    ErrIDCollision = errors.New("id_collision")
    // ErrResetDisabled is returned by the reset path, which is a deliberate no-op.
    ErrResetDisabled = errors.New("reset_disabled")
)

// ValidationError reports which field was rejected and why.
type ValidationError struct {
    Field  string
    Reason string
}

func (e *ValidationError) Error() string {
    if e.Field == "" { return "validation: " + e.Reason }
    return "validation: " + e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid is shorthand for a *ValidationError.
func Invalid(field, reason string) error { return &ValidationError{Field: field, Reason: reason} }

// Error is a storage-side failure tagged with its outcome kind.
// errors.Is(err, e.Kind) holds; Unwrap exposes the underlying cause.
type Error struct {
    Kind error
    Op   string
    Err  error
}

func (e *Error) Error() string {
    if e.Err == nil { return fmt.Sprintf("%s: %v", e.Op, e.Kind) }
    return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

// Unavailable wraps cause as an ErrStorageUnavailable failure for op.
func Unavailable(op string, cause error) error {
    return &Error{Kind: ErrStorageUnavailable, Op: op, Err: cause}
}

// RecordFailed wraps cause as an ErrRecordFailed failure for op.
func RecordFailed(op string, cause error) error {
    return &Error{Kind: ErrRecordFailed, Op: op, Err: cause}
}

// IsUnavailable reports whether err means storage could not be reached.
func IsUnavailable(err error) bool { return errors.Is(err, ErrStorageUnavailable) }

// Outcome maps err onto a stable, low-cardinality label.
func Outcome(err error) string {
    switch {
    case err == nil:
        return "ok"
    case errors.Is(err, ErrValidation):
        return "validation"
    case errors.Is(err, ErrStorageUnavailable):
        return "storage_unavailable"
    case errors.Is(err, ErrRecordFailed):
        return "record_failed"
    case errors.Is(err, ErrResetDisabled):
        return "reset_disabled"
    default:
        return "error"
    }
}
