// Package session keeps server-side login sessions so a logout revokes the bearer token
// before it expires.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/jwalitptl/hospital-api/internal/model"
)

var ErrNotFound = errors.New("session not found")

type Store interface {
	Create(ctx context.Context, s *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}

type memoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{cache: cache.New(ttl, ttl/2)}
}

func (m *memoryStore) Create(_ context.Context, s *model.Session) error {
	m.cache.Set(s.ID, *s, cache.DefaultExpiration)
	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (*model.Session, error) {
	v, ok := m.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	s := v.(model.Session)
	return &s, nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.cache.Delete(id)
	return nil
}

const redisKeyPrefix = "hms:session:"

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func (r *redisStore) Create(ctx context.Context, s *model.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+s.ID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (r *redisStore) Get(ctx context.Context, id string) (*model.Session, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s model.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

func (r *redisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
