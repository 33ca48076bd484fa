package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
	"signaldesk.com/internal/constants"
	"signaldesk.com/internal/domain"
	"signaldesk.com/internal/model"
)

// RedisDraftStore keeps drafts as msgpack values that expire with the
// editing session. Reads refresh the expiry.
type RedisDraftStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisDraftStore(rdb *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{rdb: rdb, ttl: ttl}
}

func draftKey(draftID string) string {
	return constants.RedisKeyDraftPrefix + draftID
}

func (s *RedisDraftStore) Save(ctx context.Context, draft *model.Draft) error {
	data, err := msgpack.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	if err := s.rdb.Set(ctx, draftKey(draft.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save draft to redis: %w", err)
	}
	return nil
}

func (s *RedisDraftStore) Load(ctx context.Context, draftID string) (*model.Draft, error) {
	data, err := s.rdb.GetEx(ctx, draftKey(draftID), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.NewNotFoundError("draft not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft from redis: %w", err)
	}

	var d model.Draft
	if err := msgpack.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to decode draft: %w", err)
	}
	return &d, nil
}

func (s *RedisDraftStore) Delete(ctx context.Context, draftID string) error {
	if err := s.rdb.Del(ctx, draftKey(draftID)).Err(); err != nil {
		return fmt.Errorf("failed to delete draft from redis: %w", err)
	}
	return nil
}

var _ domain.DraftStore = (*RedisDraftStore)(nil)
