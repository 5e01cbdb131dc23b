package middleware

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// UserSessionsPrefix keys the set of session ids a principal has started.
const UserSessionsPrefix = "user_sessions:"

// DestroyUserSessions removes every session of userID along with its flags
// (session:<sid>, session_flags:<sid>) and the user_sessions:<user_id> set.
// It returns how many sessions were tracked.
func DestroyUserSessions(ctx context.Context, rdb *redis.Client, userID string) (int, error) {
	if userID == "" {
		return 0, nil
	}
	key := UserSessionsPrefix + userID
	sessionIDs, err := rdb.SMembers(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	keys := make([]string, 0, 2*len(sessionIDs)+1)
	for _, sid := range sessionIDs {
		keys = append(keys, SessionRedisPrefix+sid, sessionFlagsPrefix+sid)
	}
	keys = append(keys, key)
	if err := rdb.Del(ctx, keys...).Err(); err != nil {
		return 0, err
	}
	return len(sessionIDs), nil
}
