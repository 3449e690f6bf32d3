// Package broker relays WebSocket events across server instances through
// Redis pub/sub. A single instance works fine with the in-process hub alone;
// the relay only matters once the API runs behind a load balancer and a
// doctor's socket may be held by a different instance than the one that
// processed the status change.
package broker

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/opencare/clinic/internal/platform/ws"
)

const eventChannel = "clinic.events"

// Relay publishes events both to the local hub and to Redis, and feeds events
// published by other instances back into the local hub. It implements
// ws.EventPublisher and can be dropped in wherever the bare hub is used.
type Relay struct {
	hub      *ws.Hub
	rdb      *redis.Client
	instance string
	logger   zerolog.Logger
}

// NewRelay creates a Relay around the given hub and Redis client.
func NewRelay(hub *ws.Hub, rdb *redis.Client, logger zerolog.Logger) *Relay {
	return &Relay{
		hub:      hub,
		rdb:      rdb,
		instance: uuid.New().String(),
		logger:   logger,
	}
}

// Publish delivers the event locally, then fans it out to peers. A Redis
// failure is logged and swallowed; local subscribers already got the event.
func (r *Relay) Publish(ctx context.Context, event ws.Event) error {
	event.Origin = r.instance
	r.hub.Broadcast(event.Topic, event)

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := r.rdb.Publish(ctx, eventChannel, payload).Err(); err != nil {
		r.logger.Warn().Err(err).Str("topic", event.Topic).Msg("broker: publish to redis")
	}
	return nil
}

// Run subscribes to the event channel and relays peer events into the local
// hub until the context is cancelled. Events this instance published are
// skipped by origin id.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, eventChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event ws.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				r.logger.Warn().Err(err).Msg("broker: decode peer event")
				continue
			}
			if event.Origin == r.instance {
				continue
			}
			r.hub.Broadcast(event.Topic, event)
		}
	}
}
