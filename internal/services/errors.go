package services

import "errors"

// Common service errors. Handlers map these onto HTTP statuses; callers
// should test with errors.Is since most sites wrap them with context.
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrFailedPrecondition = errors.New("failed precondition")
	ErrInternal           = errors.New("internal error")
)
