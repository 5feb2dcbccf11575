package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"meterbill/backend/services/tariff-service/internal/models"
)

// MaxStatusChecks bounds the stored heartbeat list.
const MaxStatusChecks = 1000

const statusKey = "tariff:status_checks"

// StatusStore keeps recent status checks in a capped redis list.
type StatusStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewStatusStore returns redis-backed store.
func NewStatusStore(client *redis.Client, ttl time.Duration) *StatusStore {
	return &StatusStore{client: client, key: statusKey, ttl: ttl}
}

// Create pushes a check to the head of the list.
func (s *StatusStore) Create(ctx context.Context, check *models.StatusCheck) error {
	data, err := json.Marshal(check)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, s.key, data)
		pipe.LTrim(ctx, s.key, 0, MaxStatusChecks-1)
		if s.ttl > 0 {
			pipe.Expire(ctx, s.key, s.ttl)
		}
		return nil
	})
	return err
}

// List returns stored checks, newest first.
func (s *StatusStore) List(ctx context.Context) ([]models.StatusCheck, error) {
	raw, err := s.client.LRange(ctx, s.key, 0, MaxStatusChecks-1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	checks := make([]models.StatusCheck, 0, len(raw))
	for _, item := range raw {
		var check models.StatusCheck
		if err := json.Unmarshal([]byte(item), &check); err != nil {
			return nil, err
		}
		checks = append(checks, check)
	}
	return checks, nil
}
