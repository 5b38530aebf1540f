package auth

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

func (c *LoginChecker) GetUserID(ctx context.Context, token string) (int, error) {
	if token == "" {
		return 0, ErrNoSession
	}

	sessionKey := sessionKeyPrefix + token
	sessionValue, err := c.redisClient.Get(ctx, sessionKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrNoSession
		}
		return 0, err
	}

	userID, createdAt, err := parseSessionValue(sessionValue)
	if err != nil {
		// a session this service did not write, treat as no session
		return 0, ErrNoSession
	}

	if time.Since(createdAt) > c.ttl {
		return 0, ErrNoSession
	}

	return userID, nil
}
