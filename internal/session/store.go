package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SnapshotStore persists the session snapshot under a fixed slot. Saves
// overwrite any prior value; loads return nil for absent or malformed
// snapshots so callers fall back to the default state.
type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
}

// RedisStore keeps the snapshot in Redis under a single key.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger zerolog.Logger
}

var _ SnapshotStore = (*RedisStore)(nil)

// NewRedisStore builds a Redis-backed store. A zero ttl means the snapshot
// never expires.
func NewRedisStore(client *redis.Client, key string, ttl time.Duration, logger zerolog.Logger) *RedisStore {
	if key == "" {
		key = "quiz:session:state"
	}
	return &RedisStore{
		client: client,
		key:    key,
		ttl:    ttl,
		logger: logger.With().Str("component", "snapshot_store").Logger(),
	}
}

func (s *RedisStore) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return s.client.Set(ctx, s.key, data, s.ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context) (*Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn().Err(err).Msg("discarding malformed snapshot")
		return nil, nil
	}
	return &snap, nil
}

// MemoryStore is an in-process SnapshotStore for tests and offline runs. It
// keeps the serialized form so saved and loaded snapshots share no memory.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

var _ SnapshotStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Load(_ context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(s.data, &snap); err != nil {
		return nil, nil
	}
	return &snap, nil
}
