package kafka

// PermanentError marks a handler failure that must not cause redelivery.
type PermanentError struct {
	Err      error
	Attempts int
}

func (e PermanentError) Error() string {
	if e.Err == nil {
		return "permanent error"
	}
	return e.Err.Error()
}

func (e PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err as a PermanentError.
func Permanent(err error) error {
	return PermanentError{Err: err}
}

// PermanentAfter wraps err as a PermanentError raised after attempts tries.
func PermanentAfter(err error, attempts int) error {
	return PermanentError{Err: err, Attempts: attempts}
}
