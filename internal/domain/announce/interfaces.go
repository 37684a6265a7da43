package announce

import "context"

// Messenger lists channels and sends messages on the chat platform.
type Messenger interface {
	Channels(ctx context.Context) ([]Channel, error)
	Send(ctx context.Context, channelID string, msg Message) error
}
