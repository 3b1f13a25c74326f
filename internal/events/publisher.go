package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/treysonbrown/planner-api/internal/logging"
)

// BoardEvent announces that a project's board changed in some way. Consumers
// re-read the board rather than diffing, so the payload stays minimal.
type BoardEvent struct {
	ProjectID uint64 `json:"project_id"`
}

// Publisher announces board changes after successful mutations.
type Publisher interface {
	ProjectUpdated(ctx context.Context, projectID uint64)
}

// RedisPublisher publishes board events on a Redis channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher creates a new RedisPublisher.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// ProjectUpdated publishes a board event. Publish failures are logged and
// swallowed: the mutation already committed, and stream clients re-fetch on
// reconnect anyway.
func (p *RedisPublisher) ProjectUpdated(ctx context.Context, projectID uint64) {
	payload, err := json.Marshal(BoardEvent{ProjectID: projectID})
	if err != nil {
		logging.Logger.Errorf("marshal board event: %v", err)
		return
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		logging.Logger.Errorf("publish board event: %v", err)
	}
}
