package pubsub

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// MedicationChannel carries every medication change
const MedicationChannel = "medications"

// SessionChannel names the channel of one wizard session
func SessionChannel(sessionID string) string {
	return "session:" + sessionID
}

type Bus struct {
	rdb   *redis.Client
	log   *zap.Logger
	ctx   context.Context
	wsHub WSHub
}

type WSHub interface {
	Publish(channel string, message map[string]interface{})
}

// New returns a bus. A nil client keeps events in process and only
// fans them out to the websocket hub.
func New(rdb *redis.Client, log *zap.Logger) *Bus {
	return &Bus{
		rdb: rdb,
		log: log,
		ctx: context.Background(),
	}
}

// SetWSHub sets the WebSocket hub for event broadcasting
func (b *Bus) SetWSHub(hub WSHub) {
	b.wsHub = hub
}

// PublishMedication publishes an event to the medication channel
func (b *Bus) PublishMedication(event map[string]interface{}) error {
	return b.Publish(MedicationChannel, event)
}

// PublishSession publishes an event to a session's channel
func (b *Bus) PublishSession(sessionID string, event map[string]interface{}) error {
	return b.Publish(SessionChannel(sessionID), event)
}

// Publish publishes an event to a channel
func (b *Bus) Publish(channel string, event map[string]interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if b.rdb != nil {
		if err := b.rdb.Publish(b.ctx, channel, data).Err(); err != nil {
			b.log.Error("Failed to publish event", zap.String("channel", channel), zap.Error(err))
			return err
		}
	}

	if b.wsHub != nil {
		b.wsHub.Publish(channel, event)
	}

	b.log.Debug("Published event", zap.String("channel", channel), zap.String("event", string(data)))
	return nil
}
