package middleware

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionFlagsPrefix = "session_flags:"

// RedisFlagStore keeps per-session boolean flags in a Redis hash
// "session_flags:<sid>" that expires together with the session.
type RedisFlagStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisFlagStore(rdb *redis.Client) *RedisFlagStore {
	return &RedisFlagStore{Client: rdb, TTL: sessionMaxAge}
}

func (s *RedisFlagStore) Get(ctx context.Context, sessionID, key string) (bool, error) {
	v, err := s.Client.HGet(ctx, sessionFlagsPrefix+sessionID, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == "1", nil
}

func (s *RedisFlagStore) Set(ctx context.Context, sessionID, key string, v bool) error {
	k := sessionFlagsPrefix + sessionID
	pipe := s.Client.TxPipeline()
	if v {
		pipe.HSet(ctx, k, key, "1")
		if s.TTL > 0 {
			pipe.Expire(ctx, k, s.TTL)
		}
	} else {
		pipe.HDel(ctx, k, key)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Clear relies on HDEL returning the removed count, so concurrent callers
// cannot both observe the flag.
func (s *RedisFlagStore) Clear(ctx context.Context, sessionID, key string) (bool, error) {
	n, err := s.Client.HDel(ctx, sessionFlagsPrefix+sessionID, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
