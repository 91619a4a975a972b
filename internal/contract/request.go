// Package contract defines the JSON exchanged over the inventory HTTP API and
// validates request bodies independently of the router and storage.
package contract

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/rl1809/inventory-api/internal/core/domain"
)

const (
	fieldName        = "name"
	fieldQuantity    = "quantity"
	fieldDescription = "description"
	fieldUnitPrice   = "unit_price"
)

var (
	minQuantity = decimal.NewFromInt(-1 << 63)
	maxQuantity = decimal.NewFromInt(1<<63 - 1)
)

// Magnitude limits checked on the literal's digits and exponent before any
// arithmetic, so a short literal like 1e50000000 is never expanded.
const (
	maxQuantityDigits = 19
	maxPriceDigits    = 38
	maxPriceScale     = 38
)

// ParseCreate validates a creation body. name, quantity and unit_price are
// required; a missing description becomes "".
func ParseCreate(body []byte) (domain.NewItem, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return domain.NewItem{}, err
	}

	verr := &domain.ValidationError{}
	var item domain.NewItem

	if raw, ok := fields[fieldName]; !ok {
		verr.Missing(fieldName)
	} else if name, ok := parseName(raw, verr); ok {
		item.Name = name
	}

	if raw, ok := fields[fieldQuantity]; !ok {
		verr.Missing(fieldQuantity)
	} else if qty, ok := parseQuantity(raw, verr); ok {
		item.Quantity = qty
	}

	if raw, ok := fields[fieldDescription]; ok {
		if desc, ok := parseDescription(raw, verr); ok {
			item.Description = desc
		}
	}

	if raw, ok := fields[fieldUnitPrice]; !ok {
		verr.Missing(fieldUnitPrice)
	} else if price, ok := parseUnitPrice(raw, verr); ok {
		item.UnitPrice = price
	}

	if err := verr.OrNil(); err != nil {
		return domain.NewItem{}, err
	}
	return item, nil
}

// ParseUpdate validates a partial update body. Absent fields stay nil so the
// stored values are kept, description included.
func ParseUpdate(body []byte) (domain.ItemPatch, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return domain.ItemPatch{}, err
	}

	verr := &domain.ValidationError{}
	var patch domain.ItemPatch

	if raw, ok := fields[fieldName]; ok {
		if name, ok := parseName(raw, verr); ok {
			patch.Name = &name
		}
	}
	if raw, ok := fields[fieldQuantity]; ok {
		if qty, ok := parseQuantity(raw, verr); ok {
			patch.Quantity = &qty
		}
	}
	if raw, ok := fields[fieldDescription]; ok {
		if desc, ok := parseDescription(raw, verr); ok {
			patch.Description = &desc
		}
	}
	if raw, ok := fields[fieldUnitPrice]; ok {
		if price, ok := parseUnitPrice(raw, verr); ok {
			patch.UnitPrice = &price
		}
	}

	if err := verr.OrNil(); err != nil {
		return domain.ItemPatch{}, err
	}
	return patch, nil
}

func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "body", Reason: "must be a JSON object"},
		}}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, &domain.ValidationError{Fields: []domain.FieldError{
			{Field: "body", Reason: "malformed JSON"},
		}}
	}
	return fields, nil
}

func parseName(raw json.RawMessage, verr *domain.ValidationError) (string, bool) {
	var name string
	if isNull(raw) || json.Unmarshal(raw, &name) != nil {
		verr.Add(fieldName, "must be a string")
		return "", false
	}
	if len(bytes.TrimSpace([]byte(name))) == 0 {
		verr.Add(fieldName, "must not be empty")
		return "", false
	}
	return name, true
}

func parseQuantity(raw json.RawMessage, verr *domain.ValidationError) (int64, bool) {
	d, ok := parseNumber(raw)
	if !ok {
		verr.Add(fieldQuantity, "must be an integer")
		return 0, false
	}
	if d.IsZero() {
		return 0, true
	}

	switch digits := integerDigits(d); {
	case digits > maxQuantityDigits:
		verr.Add(fieldQuantity, "out of range")
		return 0, false
	case digits <= 0, !d.IsInteger():
		verr.Add(fieldQuantity, "must be an integer")
		return 0, false
	}

	if d.LessThan(minQuantity) || d.GreaterThan(maxQuantity) {
		verr.Add(fieldQuantity, "out of range")
		return 0, false
	}
	return d.IntPart(), true
}

// parseUnitPrice leaves rounding and the column's precision to storage and
// only refuses magnitudes no numeric column could hold.
func parseUnitPrice(raw json.RawMessage, verr *domain.ValidationError) (decimal.Decimal, bool) {
	d, ok := parseNumber(raw)
	if !ok {
		verr.Add(fieldUnitPrice, "must be a number")
		return decimal.Decimal{}, false
	}
	if d.IsZero() {
		return decimal.Zero, true
	}
	if integerDigits(d) > maxPriceDigits || -d.Exponent() > maxPriceScale {
		verr.Add(fieldUnitPrice, "out of range")
		return decimal.Decimal{}, false
	}
	return d, true
}

// integerDigits is the number of digits left of the decimal point, zero or
// negative when 0 < |d| < 1.
func integerDigits(d decimal.Decimal) int {
	return d.NumDigits() + int(d.Exponent())
}

func parseDescription(raw json.RawMessage, verr *domain.ValidationError) (string, bool) {
	if isNull(raw) {
		return "", true
	}
	var desc string
	if err := json.Unmarshal(raw, &desc); err != nil {
		verr.Add(fieldDescription, "must be a string")
		return "", false
	}
	return desc, true
}

// parseNumber accepts JSON number literals only, never quoted numbers.
func parseNumber(raw json.RawMessage) (decimal.Decimal, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
