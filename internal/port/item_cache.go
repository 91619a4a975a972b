package port

import (
	"context"
	"time"

	"github.com/rl1809/inventory-api/internal/core/domain"
)

type ItemCache interface {
	// GetItem returns nil on a miss, plus the key's generation to hand to
	// SetItem when filling that miss
	GetItem(ctx context.Context, id int64) (*domain.InventoryItem, int64, error)

	// SetItem is a no-op when the key was invalidated after gen was read
	SetItem(ctx context.Context, item domain.InventoryItem, gen int64) error

	// DeleteItem drops a cached entry and bumps the key's generation
	DeleteItem(ctx context.Context, id int64) error

	// TTL is the longest an entry may live
	TTL() time.Duration
}
