// Package prefs keeps small per-viewer preferences: whether the first-run
// notice was shown and which view the viewer last opened.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Store is a string key/value store.
type Store interface {
	// Get returns the value for key and whether it was set.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// MemoryStore is a process-local Store. The zero value is ready to use.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string]string)
	}
	m.data[key] = value
	return nil
}

// RedisStore keeps preferences in Redis under a key prefix. Keys never expire.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to the Redis server at url (redis://host:port/db)
// and pings it before returning.
func NewRedisStore(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("prefs.NewRedisStore: parse url: %w", err)
	}
	opt.PoolSize = 4
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("prefs.NewRedisStore: ping: %w", err)
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("prefs.RedisStore.Get: %w", err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("prefs.RedisStore.Set: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func noticeKey(viewerID int64) string { return "notice:" + strconv.FormatInt(viewerID, 10) }
func viewKey(viewerID int64) string   { return "view:" + strconv.FormatInt(viewerID, 10) }

// NoticeSeen reports whether viewerID has already been shown the first-run notice.
func NoticeSeen(ctx context.Context, s Store, viewerID int64) (bool, error) {
	v, ok, err := s.Get(ctx, noticeKey(viewerID))
	if err != nil {
		return false, err
	}
	return ok && v == "1", nil
}

// MarkNoticeSeen records that viewerID was shown the first-run notice.
func MarkNoticeSeen(ctx context.Context, s Store, viewerID int64) error {
	return s.Set(ctx, noticeKey(viewerID), "1")
}

// LastView returns the view viewerID last opened, or "" if none was recorded.
func LastView(ctx context.Context, s Store, viewerID int64) (string, error) {
	v, _, err := s.Get(ctx, viewKey(viewerID))
	return v, err
}

// SetLastView records the view viewerID opened.
func SetLastView(ctx context.Context, s Store, viewerID int64, view string) error {
	return s.Set(ctx, viewKey(viewerID), view)
}
