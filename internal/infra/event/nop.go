package event

import "context"

// Redisが無い環境用。何も送らない
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, topic string, payload any) error {
	return nil
}
