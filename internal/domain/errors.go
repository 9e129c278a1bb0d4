package domain

import "errors"

// Sentinel errors used throughout the application.
// HTTP handlers translate these to status codes via a single mapError function.
var (
	ErrNotFound       = errors.New("not found")
	ErrNoDeviceTokens = errors.New("user has no registered device tokens")
	ErrAlreadyFinal   = errors.New("notification already reached a terminal status")
	ErrQueueFull      = errors.New("delivery queue is at capacity")
	ErrInvalidUserID  = errors.New("user id must not be empty")
	ErrInvalidTitle   = errors.New("title must not be empty")
	ErrInvalidEvent   = errors.New("event payload is missing required fields")
)
