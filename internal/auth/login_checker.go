package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
	// defaults to time.Now
	now func() time.Time
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
		now:         time.Now,
	}
}

// IsLogged reports whether token belongs to a live session.
// An unknown token is not an error.
func (as *LoginChecker) IsLogged(ctx context.Context, token string) (bool, error) {
	createdAtUnixStr, err := as.redisClient.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	createdAtUnix, err := strconv.ParseInt(createdAtUnixStr, 10, 64)
	if err != nil {
		return false, err
	}
	// logged out
	if createdAtUnix == 0 {
		return false, nil
	}

	return as.now().Sub(time.Unix(createdAtUnix, 0)) <= as.ttl, nil
}
