package category

import "context"

// Repository reads and rewrites the free-text category column of inventory items.
type Repository interface {
	List(ctx context.Context, businessID string) ([]string, error)
	Rename(ctx context.Context, businessID, from, to string) (int64, error)
}
