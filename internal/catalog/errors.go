package catalog

// resourceInsufficientError signals that no catalog entry fits the probed RAM
// (or a forced model does not fit). Surfaced to the caller without fallback.
type resourceInsufficientError struct{ msg string }

func (e resourceInsufficientError) Error() string { return e.msg }

// ErrResourceInsufficient constructs a resourceInsufficientError.
func ErrResourceInsufficient(msg string) error { return resourceInsufficientError{msg: msg} }

// IsResourceInsufficient reports whether err indicates a RAM shortfall.
func IsResourceInsufficient(err error) bool {
	_, ok := err.(resourceInsufficientError)
	return ok
}

// noViableModelError signals an empty catalog or a request no entry can serve.
type noViableModelError struct{ msg string }

func (e noViableModelError) Error() string { return e.msg }

// ErrNoViableModel constructs a noViableModelError.
func ErrNoViableModel(msg string) error { return noViableModelError{msg: msg} }

// IsNoViableModel reports whether err indicates no candidate model exists.
func IsNoViableModel(err error) bool {
	_, ok := err.(noViableModelError)
	return ok
}

// modelNotFoundError signals an unknown model identifier.
type modelNotFoundError struct{ id string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.id }

// ErrModelNotFound constructs a modelNotFoundError.
func ErrModelNotFound(id string) error { return modelNotFoundError{id: id} }

// IsModelNotFound reports whether the error indicates a missing model id.
func IsModelNotFound(err error) bool {
	_, ok := err.(modelNotFoundError)
	return ok
}
