package verification

import "errors"

// userError attaches the short message shown to the user to a step failure.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.err.Error() }
func (e *userError) Unwrap() error { return e.err }

func fail(msg string, err error) error {
	return &userError{msg: msg, err: err}
}

const genericFailure = "Something went wrong. Please try again."

// Message returns the user-facing text for an error returned by this package.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ue *userError
	if errors.As(err, &ue) {
		return ue.msg
	}
	if errors.Is(err, ErrInvalidTransition) {
		return "That action is not available at this step."
	}
	return genericFailure
}
