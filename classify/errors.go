package classify

import "errors"

var (
	// ErrIntentClassifierRequired is returned when an intent classifier is not provided.
	ErrIntentClassifierRequired = errors.New("intent classifier required")
)
