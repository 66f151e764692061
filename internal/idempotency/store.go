// Package idempotency remembers the response to a request carrying an
// Idempotency-Key so a client retry does not record the same sale twice.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "idempotency:"
	pendingMarker = "pending"
)

// ErrInProgress means another request holding the same key has not finished.
var ErrInProgress = errors.New("idempotency: request with this key is still in progress")

// Response is the stored outcome of the first request.
type Response struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// Store keeps reservations and responses in Redis. A nil *Store is disabled:
// every Reserve succeeds and nothing is stored.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

// Reserve claims key for the caller. It returns (nil, nil) when the caller
// now owns the key, the stored response when the key already completed, and
// ErrInProgress while the first request is still running.
func (s *Store) Reserve(ctx context.Context, key string) (*Response, error) {
	if s == nil || s.client == nil {
		return nil, nil
	}
	redisKey := keyPrefix + key
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, redisKey, pendingMarker, s.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("idempotency: reserve: %w", err)
		}
		if ok {
			return nil, nil
		}

		raw, err := s.client.Get(ctx, redisKey).Result()
		if errors.Is(err, redis.Nil) {
			// expired between SETNX and GET
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("idempotency: load: %w", err)
		}
		if raw == pendingMarker {
			return nil, ErrInProgress
		}
		var resp Response
		if err := json.Unmarshal([]byte(raw), &resp); err != nil {
			return nil, fmt.Errorf("idempotency: decode: %w", err)
		}
		return &resp, nil
	}
	return nil, ErrInProgress
}

// Complete stores the response for later replays, keeping the key's TTL.
func (s *Store) Complete(ctx context.Context, key string, resp Response) error {
	if s == nil || s.client == nil {
		return nil
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("idempotency: encode: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency: complete: %w", err)
	}
	return nil
}

// Release drops the reservation so the request may be retried.
func (s *Store) Release(ctx context.Context, key string) error {
	if s == nil || s.client == nil {
		return nil
	}
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("idempotency: release: %w", err)
	}
	return nil
}
