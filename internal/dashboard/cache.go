package dashboard

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-backoffice-service/pkg/cache"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"go.uber.org/zap"
)

const CacheTTL = 2 * time.Minute

func CacheKey(businessID string) string {
	return "dashboard:" + businessID
}

// Invalidate drops the cached summary of a business. A nil client is a no-op.
func Invalidate(ctx context.Context, c *cache.RedisClient, businessID string) error {
	if c == nil {
		return nil
	}
	return c.Client.Del(ctx, CacheKey(businessID)).Err()
}

// InvalidateAsync runs Invalidate in the background and only logs failures.
func InvalidateAsync(c *cache.RedisClient, log logger.ZapLogger, businessID string) {
	if c == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := Invalidate(ctx, c, businessID); err != nil {
			log.Warn("failed to invalidate dashboard cache", zap.String("business_id", businessID), zap.Error(err))
		}
	}()
}
