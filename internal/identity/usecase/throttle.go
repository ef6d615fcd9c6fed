package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/fekuna/omnipos-backoffice-service/pkg/cache"
	"github.com/redis/go-redis/v9"
)

const (
	maxCooldown     = 30 * time.Second
	failureWindow   = 15 * time.Minute
	failKeyPrefix   = "login:fail:"
	cooldownKeyPref = "login:cooldown:"
)

// loginThrottle backs off repeated failed logins per email: each failure
// blocks the next attempt for min(30, 2^failures) seconds.
type loginThrottle struct {
	cache *cache.RedisClient
}

func (t *loginThrottle) retryAfter(ctx context.Context, email string) (time.Duration, error) {
	ttl, err := t.cache.Client.PTTL(ctx, cooldownKeyPref+email).Result()
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (t *loginThrottle) recordFailure(ctx context.Context, email string) error {
	var incr *redis.IntCmd
	_, err := t.cache.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, failKeyPrefix+email)
		pipe.Expire(ctx, failKeyPrefix+email, failureWindow)
		return nil
	})
	if err != nil {
		return err
	}
	failures := incr.Val()

	return t.cache.Client.Set(ctx, cooldownKeyPref+email, failures, cooldown(failures)).Err()
}

func (t *loginThrottle) reset(ctx context.Context, email string) error {
	return t.cache.Client.Del(ctx, failKeyPrefix+email, cooldownKeyPref+email).Err()
}

func cooldown(failures int64) time.Duration {
	if failures <= 0 {
		return 0
	}
	seconds := math.Pow(2, float64(failures))
	if seconds >= maxCooldown.Seconds() {
		return maxCooldown
	}
	return time.Duration(seconds) * time.Second
}

func retryMessage(wait time.Duration) string {
	secs := int(math.Ceil(wait.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return fmt.Sprintf("Too many attempts, retry in %ds", secs)
}
