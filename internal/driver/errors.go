package driver

// loadFailedError signals a failed model load. Recovered by the orchestrator
// by moving to the next driver in the chain.
type loadFailedError struct{ msg string }

func (e loadFailedError) Error() string { return e.msg }

// ErrLoadFailed constructs a loadFailedError.
func ErrLoadFailed(msg string) error { return loadFailedError{msg: msg} }

// IsLoadFailed reports whether err indicates a failed driver load.
func IsLoadFailed(err error) bool {
	_, ok := err.(loadFailedError)
	return ok
}

// generationFailedError signals a failed generate call. N consecutive ones
// degrade the driver.
type generationFailedError struct{ msg string }

func (e generationFailedError) Error() string { return e.msg }

// ErrGenerationFailed constructs a generationFailedError.
func ErrGenerationFailed(msg string) error { return generationFailedError{msg: msg} }

// IsGenerationFailed reports whether err indicates a failed generation.
func IsGenerationFailed(err error) bool {
	if _, ok := err.(generationFailedError); ok {
		return true
	}
	// Remote unavailability is treated as a generation failure upstream.
	_, ok := err.(remoteUnavailableError)
	return ok
}

// remoteUnavailableError signals the remote inference server is unreachable.
type remoteUnavailableError struct{ msg string }

func (e remoteUnavailableError) Error() string { return e.msg }

// ErrRemoteUnavailable constructs a remoteUnavailableError.
func ErrRemoteUnavailable(msg string) error { return remoteUnavailableError{msg: msg} }

// IsRemoteUnavailable reports whether err indicates an unreachable remote.
func IsRemoteUnavailable(err error) bool {
	_, ok := err.(remoteUnavailableError)
	return ok
}
