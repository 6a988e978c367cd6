package repository

import (
	"context"
	"time"

	"github.com/saferoute-service/internal/domain"
)

// CacheRepository is the byte-level cache plus typed helpers for street
// networks keyed by geographic cell.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	GetNetwork(ctx context.Context, key string) (*domain.StreetGraph, error)
	SetNetwork(ctx context.Context, key string, graph *domain.StreetGraph, ttl time.Duration) error
}
