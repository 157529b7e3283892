package guild

import "errors"

var (
	// ErrServerNotConfigured means no document exists for the server yet.
	ErrServerNotConfigured = errors.New("server config not found")
	// ErrAlreadyInitialized is returned when creating a document that exists.
	ErrAlreadyInitialized = errors.New("server config already initialized")
	// ErrMessageNotFound means the message name is absent from the graph.
	// Dangling button targets produce it routinely.
	ErrMessageNotFound = errors.New("message not found")
	// ErrInvalidDocument marks a persisted document that cannot be decoded.
	ErrInvalidDocument = errors.New("invalid server config document")
)
