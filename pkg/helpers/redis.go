package helpers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes a redis client
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// SessionKey is the hash holding the cached session profile of a user.
func SessionKey(userID string) string {
	return "user:session:" + userID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// SessionStore reads and refreshes session hashes written by the auth issuer.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

// Lookup returns the session hash, or an empty map when no session exists.
func (s *SessionStore) Lookup(ctx context.Context, userID string) (map[string]string, error) {
	return s.rdb.HGetAll(ctx, SessionKey(userID)).Result()
}

// RefreshProfile rewrites name/email on an existing session and keeps its TTL.
// Missing sessions are left alone.
func (s *SessionStore) RefreshProfile(ctx context.Context, userID, name, email string) error {
	key := SessionKey(userID)
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil || n == 0 {
		return err
	}
	ttl, err := s.rdb.TTL(ctx, key).Result()
	if err != nil {
		return err
	}
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"name":       name,
		"email":      email,
		"updated_at": nowRFC3339(),
	})
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}
