package services

// ValidationError reports rejected user input. The reason is safe to show to
// the end user.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
