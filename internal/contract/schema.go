package contract

import (
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"
)

// CreateItemRequest documents the creation body. ParseCreate does the
// actual decoding so that absent and zero values stay distinguishable.
type CreateItemRequest struct {
	Name        string      `json:"name" jsonschema:"minLength=1,maxLength=255,description=Name of the inventory item"`
	Quantity    int64       `json:"quantity" jsonschema:"description=Units in stock"`
	Description string      `json:"description,omitempty" jsonschema:"description=Free text; empty when omitted"`
	UnitPrice   json.Number `json:"unit_price" jsonschema:"description=Price per unit with two decimal places"`
}

// UpdateItemRequest documents the partial update body.
type UpdateItemRequest struct {
	Name        *string      `json:"name,omitempty" jsonschema:"minLength=1,maxLength=255"`
	Quantity    *int64       `json:"quantity,omitempty"`
	Description *string      `json:"description,omitempty"`
	UnitPrice   *json.Number `json:"unit_price,omitempty"`
}

type SchemaDocument struct {
	Title         string             `json:"title"`
	Version       string             `json:"version"`
	CreateRequest *jsonschema.Schema `json:"create_request"`
	UpdateRequest *jsonschema.Schema `json:"update_request"`
	Item          *jsonschema.Schema `json:"item"`
}

var numberType = reflect.TypeOf(json.Number(""))

// Schema describes the request and response bodies of the inventory resource.
func Schema() SchemaDocument {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == numberType {
				return &jsonschema.Schema{Type: "number"}
			}
			return nil
		},
	}

	item := r.Reflect(&ItemResponse{})
	item.Description = "An inventory item; id is assigned by the server"

	return SchemaDocument{
		Title:         "Inventory Management API",
		Version:       "1.0",
		CreateRequest: r.Reflect(&CreateItemRequest{}),
		UpdateRequest: r.Reflect(&UpdateItemRequest{}),
		Item:          item,
	}
}
