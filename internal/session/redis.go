package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 3 * time.Second

// RedisStore keeps sessions in Redis with a TTL, so state survives process
// restarts and can be shared between replicas.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore builds a Redis-backed session store.
func NewRedisStore(addr, password string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		ttl:    ttl,
		prefix: "promptforge:session:",
	}
}

// Get retrieves and decodes a session by ID.
func (s *RedisStore) Get(id string) (Session, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	raw, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if err == redis.Nil {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, err
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return Session{}, false, err
	}
	return sess, true, nil
}

// Save writes the session back with a refreshed TTL.
func (s *RedisStore) Save(sess Session) error {
	sess.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return s.client.Set(ctx, s.prefix+sess.ID, raw, s.ttl).Err()
}

// Delete removes a session.
func (s *RedisStore) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := s.client.Del(ctx, s.prefix+id).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}
