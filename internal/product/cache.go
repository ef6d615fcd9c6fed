package product

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-backoffice-service/pkg/cache"
)

const ListCacheTTL = 5 * time.Minute

// ListCachePrefix is shared by every cached product list of a business.
func ListCachePrefix(businessID string) string {
	return "products:list:" + businessID + ":"
}

// InvalidateLists drops the cached product lists of a business. Stock and
// cost figures in those lists move with orders and inventory edits, so every
// such write calls this before answering. A nil client is a no-op.
func InvalidateLists(ctx context.Context, c *cache.RedisClient, businessID string) error {
	if c == nil {
		return nil
	}
	return c.DeletePattern(ctx, ListCachePrefix(businessID)+"*")
}
