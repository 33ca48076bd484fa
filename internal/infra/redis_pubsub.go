package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"signaldesk.com/internal/constants"
)

// DraftMessage is a preview update received from another instance.
type DraftMessage struct {
	DraftID string
	Payload json.RawMessage
}

// DraftRelay fans preview updates out over Redis Pub/Sub so that watchers
// connected to any instance sharing the Redis draft store see every edit.
type DraftRelay struct {
	rdb *redis.Client
	out chan DraftMessage
	log zerolog.Logger
}

func NewDraftRelay(rdb *redis.Client, bufferSize int, log zerolog.Logger) *DraftRelay {
	return &DraftRelay{
		rdb: rdb,
		out: make(chan DraftMessage, bufferSize),
		log: log.With().Str("component", "draft_relay").Logger(),
	}
}

// Publish sends msg to every instance subscribed to draftID.
func (r *DraftRelay) Publish(ctx context.Context, draftID string, msg interface{}) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal preview update: %w", err)
	}
	if err := r.rdb.Publish(ctx, constants.RedisChannelDraftPrefix+draftID, data).Err(); err != nil {
		return fmt.Errorf("failed to publish preview update: %w", err)
	}
	return nil
}

// Messages is closed once Start returns.
func (r *DraftRelay) Messages() <-chan DraftMessage {
	return r.out
}

// Start subscribes to every draft channel and forwards messages until ctx
// is cancelled. It returns once the subscription is confirmed or fails.
func (r *DraftRelay) Start(ctx context.Context) error {
	pubsub := r.rdb.PSubscribe(ctx, constants.RedisChannelDraftPrefix+"*")

	// Wait for confirmation that subscription is created
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		close(r.out)
		return fmt.Errorf("failed to subscribe to draft updates: %w", err)
	}

	ch := pubsub.Channel()

	go func() {
		defer close(r.out)
		defer pubsub.Close()
		r.log.Info().Msg("Started draft update subscriber")

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				message := DraftMessage{
					DraftID: strings.TrimPrefix(msg.Channel, constants.RedisChannelDraftPrefix),
					Payload: json.RawMessage(msg.Payload),
				}
				select {
				case r.out <- message:
				default:
					r.log.Warn().Str("draft_id", message.DraftID).Msg("Relay buffer full, dropping update")
				}
			}
		}
	}()
	return nil
}
