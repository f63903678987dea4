package pipeline

import "errors"

var (
	// ErrClassifierRequired is returned when a classifier is not provided.
	ErrClassifierRequired = errors.New("classifier required")

	// ErrRegistryRequired is returned when an agent registry is not provided.
	ErrRegistryRequired = errors.New("agent registry required")

	// ErrMemoryRequired is returned when a memory repository is not provided.
	ErrMemoryRequired = errors.New("memory repository required")

	// ErrInvalidMaxAttempts is returned when retry attempts is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")
)
