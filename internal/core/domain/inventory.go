package domain

import "github.com/shopspring/decimal"

type InventoryItem struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Quantity    int64           `db:"quantity" json:"quantity"`
	Description string          `db:"description" json:"description"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
}

// NewItem holds the validated fields of a creation request.
type NewItem struct {
	Name        string          `db:"name"`
	Quantity    int64           `db:"quantity"`
	Description string          `db:"description"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
}

// ItemPatch is a partial update; nil fields keep their stored value.
type ItemPatch struct {
	Name        *string
	Quantity    *int64
	Description *string
	UnitPrice   *decimal.Decimal
}

func (p ItemPatch) IsEmpty() bool {
	return p.Name == nil && p.Quantity == nil && p.Description == nil && p.UnitPrice == nil
}

// Apply returns item with every supplied field of p written over it.
func (p ItemPatch) Apply(item InventoryItem) InventoryItem {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.UnitPrice != nil {
		item.UnitPrice = *p.UnitPrice
	}
	return item
}

func (n NewItem) Item(id int64) InventoryItem {
	return InventoryItem{
		ID:          id,
		Name:        n.Name,
		Quantity:    n.Quantity,
		Description: n.Description,
		UnitPrice:   n.UnitPrice,
	}
}
