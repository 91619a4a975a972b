package service

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/rl1809/inventory-api/internal/core/domain"
	"github.com/rl1809/inventory-api/internal/port"
)

type InventoryService struct {
	repo  port.ItemRepository
	cache port.ItemCache

	// A failed invalidation may leave a stale entry behind, so cache reads
	// stop until any such entry has expired.
	cacheEpoch       atomic.Int64
	cacheBypassUntil atomic.Int64
}

// NewInventoryService wires the service to its repository. cache may be nil.
func NewInventoryService(repo port.ItemRepository, cache port.ItemCache) *InventoryService {
	return &InventoryService{
		repo:  repo,
		cache: cache,
	}
}

func (s *InventoryService) cacheEnabled() bool {
	return s.cache != nil && time.Now().UnixNano() >= s.cacheBypassUntil.Load()
}

func (s *InventoryService) List(ctx context.Context) ([]domain.InventoryItem, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	if items == nil {
		items = []domain.InventoryItem{}
	}
	return items, nil
}

func (s *InventoryService) Get(ctx context.Context, id int64) (domain.InventoryItem, error) {
	epoch := s.cacheEpoch.Load()
	fill := false
	var gen int64

	if s.cacheEnabled() {
		cached, g, err := s.cache.GetItem(ctx, id)
		switch {
		case err != nil:
			log.Printf("cache: get item %d: %v", id, err)
		case cached != nil:
			return *cached, nil
		default:
			fill, gen = true, g
		}
	}

	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("get item %d: %w", id, err)
	}
	if item == nil {
		return domain.InventoryItem{}, &domain.NotFoundError{ID: id}
	}

	if fill {
		if err := s.cache.SetItem(ctx, *item, gen); err != nil {
			log.Printf("cache: set item %d: %v", id, err)
		} else if s.cacheEpoch.Load() != epoch {
			// an invalidation failed while this read was in flight
			s.invalidate(ctx, id)
		}
	}
	return *item, nil
}

func (s *InventoryService) Create(ctx context.Context, input domain.NewItem) (domain.InventoryItem, error) {
	item, err := s.repo.Create(ctx, input)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("create item: %w", err)
	}
	return item, nil
}

func (s *InventoryService) Update(ctx context.Context, id int64, patch domain.ItemPatch) (domain.InventoryItem, error) {
	item, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("update item %d: %w", id, err)
	}
	s.invalidate(ctx, id)
	return item, nil
}

func (s *InventoryService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	s.invalidate(ctx, id)
	return nil
}

// Ping reports whether the backing store is reachable.
func (s *InventoryService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// invalidate runs after a committed write. When the cache cannot be reached
// the entry may still hold the old row, so reads bypass the cache for a TTL.
func (s *InventoryService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteItem(ctx, id); err != nil {
		log.Printf("cache: invalidate item %d: %v; bypassing cache for %s", id, err, s.cache.TTL())
		s.cacheEpoch.Add(1)
		s.cacheBypassUntil.Store(time.Now().Add(s.cache.TTL()).UnixNano())
	}
}
