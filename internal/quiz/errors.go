package quiz

import "fmt"

// ValidationError is a local, pre-flight configuration error. It blocks
// submission before any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// InsufficientPoolError reports that an operation needs more questions than
// are available.
type InsufficientPoolError struct {
	Have int
	Need int
}

func (e *InsufficientPoolError) Error() string {
	return fmt.Sprintf("not enough questions: have %d, need %d", e.Have, e.Need)
}
