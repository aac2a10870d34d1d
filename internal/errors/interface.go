package errors

// ErrorCode identifies a failure class, e.g. "fan_control_unavailable".
// Codes are stable and are sent to D-Bus clients and written to logs.
type ErrorCode string

// Coder is implemented by anything carrying an ErrorCode.
type Coder interface {
	Code() ErrorCode
}

// Error is a coded error. Data attached with WithData replaces the wrapped
// error in the message, but Unwrap still returns it.
type Error interface {
	error
	Coder
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
}

// Factory creates coded errors. Packages call New() once per function:
//
//	errFactory := errors.New()
//	return errFactory.Wrap(ErrControlOpen, err)
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}
