package models

import "errors"

// Domain error taxonomy. Services wrap these with %w so transports can
// classify failures with errors.Is and map them to user-facing responses.
var (
	// ErrNotFound indicates the entity is absent or not owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState indicates the operation is forbidden in the entity's
	// current state, e.g. resolving an already-resolved prediction.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidArgument indicates malformed input, e.g. a winning option
	// that is not part of the prediction's option set.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnauthorized indicates a missing or invalid caller identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInsufficientBalance indicates the caller cannot cover a stake.
	ErrInsufficientBalance = errors.New("insufficient balance")
)
