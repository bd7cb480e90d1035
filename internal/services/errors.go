package services

import "errors"

type ErrCode string

const (
	CodeValidation ErrCode = "VALIDATION"
	CodeNotFound   ErrCode = "NOT_FOUND"
	CodeForbidden  ErrCode = "FORBIDDEN"
	CodeSignature  ErrCode = "PAYMENT_SIGNATURE"
	CodeGateway    ErrCode = "GATEWAY"
	CodeConflict   ErrCode = "CONFLICT"
)

// Error is a coded service error; handlers map codes to HTTP statuses and
// the message is returned verbatim to the caller.
type Error struct {
	ErrCode ErrCode
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Code() ErrCode { return e.ErrCode }

func newError(code ErrCode, message string) error {
	return &Error{ErrCode: code, Message: message}
}

// Code extracts the error code from a service error, or "" for plain errors.
func Code(err error) ErrCode {
	var se *Error
	if errors.As(err, &se) {
		return se.ErrCode
	}
	return ""
}
