package contract

import (
	"encoding/json"

	"github.com/rl1809/inventory-api/internal/core/domain"
)

// ItemResponse is the only item shape the API emits.
type ItemResponse struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Quantity    int64       `json:"quantity"`
	Description string      `json:"description"`
	UnitPrice   json.Number `json:"unit_price"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func NewItemResponse(item domain.InventoryItem) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Quantity:    item.Quantity,
		Description: item.Description,
		UnitPrice:   json.Number(item.UnitPrice.StringFixed(2)),
	}
}

func NewItemListResponse(items []domain.InventoryItem) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewItemResponse(item))
	}
	return out
}
