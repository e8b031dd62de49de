package orchestrator

// invalidInputError signals a malformed request (empty prompt, unknown
// enumerant). Mapped to 400 at the transport.
type invalidInputError struct{ msg string }

func (e invalidInputError) Error() string { return e.msg }

// ErrInvalidInput constructs an invalidInputError.
func ErrInvalidInput(msg string) error { return invalidInputError{msg: msg} }

// IsInvalidInput reports whether err indicates a malformed request.
func IsInvalidInput(err error) bool {
	_, ok := err.(invalidInputError)
	return ok
}
