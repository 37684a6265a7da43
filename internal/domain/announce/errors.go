package announce

import "errors"

var (
	// ErrChannelNotFound indicates the target channel is unknown or not postable.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrInvalidInput indicates invalid announcement input.
	ErrInvalidInput = errors.New("invalid announcement input")
)
