package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSessions keeps sessions in redis so they survive restarts and are shared between instances.
type RedisSessions struct {
	client *redis.Client
	prefix string
}

// NewRedisSessions returns a RedisSessions writing keys under prefix.
func NewRedisSessions(client *redis.Client, prefix string) *RedisSessions {
	return &RedisSessions{client: client, prefix: prefix}
}

// Key returns the redis key holding session id.
func (r *RedisSessions) Key(id string) string {
	return r.prefix + "session:" + id
}

// Save stores s under id with ttl as the key expiry.
func (r *RedisSessions) Save(ctx context.Context, id string, s Session, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("error encoding session: %w", err)
	}
	if err = r.client.Set(ctx, r.Key(id), data, ttl).Err(); err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}

	return nil
}

// Load returns the session stored under id.
func (r *RedisSessions) Load(ctx context.Context, id string) (Session, error) {
	data, err := r.client.Get(ctx, r.Key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrSessionNotFound
		}

		return Session{}, fmt.Errorf("error loading session: %w", err)
	}

	var s Session
	if err = json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("error decoding session: %w", err)
	}

	return s, nil
}

// Delete removes the session stored under id.
func (r *RedisSessions) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.Key(id)).Err(); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}

	return nil
}
