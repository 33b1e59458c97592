package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/niteshmahajan-63/thewell-checkout/pkg/messaging"
	"go.uber.org/zap"
)

type relayMessage struct {
	Room  string          `json:"room"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ErrRelaySubscriptionClosed is returned by Run when Redis closes the
// subscription before ctx is done.
var ErrRelaySubscriptionClosed = errors.New("realtime relay subscription closed")

// RedisRelay publishes events to a Redis channel so every instance's hub
// delivers them to its own sessions. While it is not subscribed, events go
// straight to the local hub.
type RedisRelay struct {
	client     messaging.RedisClient
	channel    string
	hub        *Hub
	logger     *zap.Logger
	subscribed atomic.Bool
}

// NewRedisRelay creates a relay between client and hub.
func NewRedisRelay(client messaging.RedisClient, channel string, hub *Hub, logger *zap.Logger) *RedisRelay {
	return &RedisRelay{
		client:  client,
		channel: channel,
		hub:     hub,
		logger:  logger,
	}
}

// Emit publishes the event; local delivery happens when it comes back
// through Run.
func (r *RedisRelay) Emit(ctx context.Context, room, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}

	if !r.subscribed.Load() {
		r.logger.Warn("Realtime relay not subscribed, delivering to local sessions only",
			zap.String("channel", r.channel),
			zap.String("room", room),
			zap.String("event", event))
		return r.hub.emitRaw(ctx, room, event, data)
	}

	if err := r.client.Publish(ctx, r.channel, relayMessage{Room: room, Event: event, Data: data}); err != nil {
		r.logger.Error("Failed to publish realtime event",
			zap.String("room", room),
			zap.String("event", event),
			zap.Error(err))
		return fmt.Errorf("failed to publish realtime event: %w", err)
	}
	return nil
}

// Subscribed reports whether Run is currently receiving from Redis.
func (r *RedisRelay) Subscribed() bool {
	return r.subscribed.Load()
}

// Run forwards relayed events to the hub until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	messages, err := r.client.Subscribe(ctx, r.channel)
	if err != nil {
		r.logger.Error("Realtime relay failed to subscribe, delivering to local sessions only",
			zap.String("channel", r.channel),
			zap.Error(err))
		return err
	}

	r.subscribed.Store(true)
	defer r.subscribed.Store(false)

	r.logger.Info("Realtime relay subscribed", zap.String("channel", r.channel))
	for msg := range messages {
		var relayed relayMessage
		if err := json.Unmarshal(msg.Payload, &relayed); err != nil {
			r.logger.Warn("Discarding malformed realtime message",
				zap.String("channel", msg.Channel),
				zap.Error(err))
			continue
		}
		if err := r.hub.emitRaw(ctx, relayed.Room, relayed.Event, relayed.Data); err != nil {
			r.logger.Warn("Failed to deliver relayed event", zap.Error(err))
		}
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	r.logger.Error("Realtime relay subscription closed, delivering to local sessions only",
		zap.String("channel", r.channel))
	return ErrRelaySubscriptionClosed
}
