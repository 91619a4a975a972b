package port

import (
	"context"

	"github.com/rl1809/inventory-api/internal/core/domain"
)

type ItemRepository interface {
	// ListAll returns every stored item ordered by id
	ListAll(ctx context.Context) ([]domain.InventoryItem, error)

	// Get returns nil, nil when no item has the given id
	Get(ctx context.Context, id int64) (*domain.InventoryItem, error)

	// Create persists a new item and returns it as stored, id included
	Create(ctx context.Context, item domain.NewItem) (domain.InventoryItem, error)

	// Update applies the patch in one transaction, rolled back on any failure
	Update(ctx context.Context, id int64, patch domain.ItemPatch) (domain.InventoryItem, error)

	// Delete removes the item, returns *domain.NotFoundError if absent
	Delete(ctx context.Context, id int64) error

	Ping(ctx context.Context) error
}
