package moderation

import "errors"

// Errors returned by the moderation services. Handlers match them with
// errors.Is to pick a status code.
var (
	ErrNotAuthorized   = errors.New("not authorized")
	ErrFlagNotFound    = errors.New("content flag not found")
	ErrImageNotFound   = errors.New("image not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidFilter   = errors.New("invalid status filter")
	ErrSenderNotActive = errors.New("sender account is not active")
	ErrImageRejected   = errors.New("image rejected: violates community guidelines")
)
