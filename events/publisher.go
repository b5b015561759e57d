package events

import "context"

// NoopPublisher drops events; used when AMQP is not configured
type NoopPublisher struct{}

func (NoopPublisher) PublishGroupChanged(ctx context.Context, groupID int64, reason string) error {
	return nil
}
