package updater

import "fmt"

// Error codes for update operations.
const (
	ErrCodeInvalidState = "INVALID_STATE"
	ErrCodeCheckFailed  = "CHECK_FAILED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeNoUpdate     = "NO_UPDATE"
	ErrCodeApplyFailed  = "APPLY_FAILED"
	ErrCodeDisabled     = "DISABLED"
)

// Error is an update failure with a machine-readable code.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}
