package cmd

import "errors"

// reportedError marks a failure whose message was already shown to the user.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		err = errors.New("request failed")
	}
	return &reportedError{err: err}
}

// IsReported reports whether err was already printed by the command.
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}
