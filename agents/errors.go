package agents

import "errors"

var (
	// ErrFallbackAgentRequired is returned when a registry is built without a fallback agent.
	ErrFallbackAgentRequired = errors.New("fallback agent required")

	// ErrAnalyzerRequired is returned when a document analyzer is not provided.
	ErrAnalyzerRequired = errors.New("document analyzer required")

	// ErrInvalidJSON indicates that document content is not valid JSON.
	ErrInvalidJSON = errors.New("invalid JSON content")

	// ErrUnreadablePDF indicates that document content could not be read as a PDF.
	ErrUnreadablePDF = errors.New("unreadable PDF content")
)
