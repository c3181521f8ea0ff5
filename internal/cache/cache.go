package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is absent
var ErrCacheMiss = errors.New("cache miss")

// Cache defines the cache interface
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// PlanCatalogKey is the cache key for the plan catalog
const PlanCatalogKey = "plans:catalog"

// SummaryKey builds the cache key for a tenant's accounting summary
func SummaryKey(tenantID string) string {
	return "qb:summary:" + tenantID
}
