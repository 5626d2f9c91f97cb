package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "storefront."

type envelope struct {
	Topic      string          `json:"topic"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// RedisPublisher はドメインイベントをRedis Pub/Subに流す。
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish はtopicごとのチャンネルにJSONで送る
func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg, err := json.Marshal(envelope{
		Topic:      topic,
		OccurredAt: time.Now().UTC(),
		Payload:    body,
	})
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, channelPrefix+topic, msg).Err()
}
