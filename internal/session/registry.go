package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound means the session id is unknown, expired or revoked.
var ErrNotFound = errors.New("session not found")

// Registry records which session ids are live and who owns them.
type Registry interface {
	Put(ctx context.Context, id, userID string, ttl time.Duration) error
	Lookup(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
}

type redisCmdable interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

const keyNamespace = "helpdesk:session:"

// RedisRegistry keeps sessions as string keys with a TTL, so expiry is
// handled by Redis and sessions survive API restarts.
type RedisRegistry struct {
	store redisCmdable
}

func NewRedisRegistry(client redisCmdable) *RedisRegistry {
	return &RedisRegistry{store: client}
}

// OpenRedis parses url, connects and verifies the connection.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (r *RedisRegistry) key(id string) string { return keyNamespace + id }

func (r *RedisRegistry) Put(ctx context.Context, id, userID string, ttl time.Duration) error {
	return r.store.Set(ctx, r.key(id), userID, ttl).Err()
}

func (r *RedisRegistry) Lookup(ctx context.Context, id string) (string, error) {
	userID, err := r.store.Get(ctx, r.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return userID, err
}

func (r *RedisRegistry) Delete(ctx context.Context, id string) error {
	return r.store.Del(ctx, r.key(id)).Err()
}

// Ping reports whether Redis is reachable; used by the health check.
func (r *RedisRegistry) Ping(ctx context.Context) error {
	return r.store.Ping(ctx).Err()
}

type memoryEntry struct {
	userID  string
	expires time.Time
}

// MemoryRegistry is the single-process registry used when no Redis URL is
// configured. Sessions do not survive a restart.
type MemoryRegistry struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{entries: map[string]memoryEntry{}, now: time.Now}
}

func (m *MemoryRegistry) Put(_ context.Context, id, userID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memoryEntry{userID: userID}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries[id] = e
	return nil
}

func (m *MemoryRegistry) Lookup(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return "", ErrNotFound
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, id)
		return "", ErrNotFound
	}
	return e.userID, nil
}

func (m *MemoryRegistry) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}
