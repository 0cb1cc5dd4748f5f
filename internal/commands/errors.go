package commands

// UserError is invalid input or usage, shown to the player as-is. Anything
// else coming out of a handler is a system failure and ends the session.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

func NewUserError(msg string) *UserError {
	return &UserError{Message: msg}
}
