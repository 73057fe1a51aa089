package services

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	apperrors "storefront-service/errors"
	"storefront-service/models"
)

type rawVariant struct {
	RAM   string          `json:"ram"`
	Price json.RawMessage `json:"price"`
	Qty   json.RawMessage `json:"qty"`
}

// ParseVariants decodes the variants form field. Prices and quantities may
// arrive as JSON numbers or numeric strings; unparseable values become 0 so
// the variant is later discarded.
func ParseVariants(raw string) ([]models.Variant, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var in []rawVariant
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, apperrors.InvalidInput("Variants must be a JSON array")
	}

	out := make([]models.Variant, 0, len(in))
	for _, v := range in {
		out = append(out, models.Variant{
			RAM:   strings.TrimSpace(v.RAM),
			Price: numberOf(v.Price),
			Qty:   int(numberOf(v.Qty)),
		})
	}
	return out, nil
}

// validVariants keeps the sellable variants and returns their minimum price.
func validVariants(variants []models.Variant) ([]models.Variant, float64) {
	valid := make([]models.Variant, 0, len(variants))
	minPrice := math.Inf(1)
	for _, v := range variants {
		if !v.Valid() {
			continue
		}
		valid = append(valid, v)
		minPrice = math.Min(minPrice, v.Price)
	}
	if len(valid) == 0 {
		return nil, 0
	}
	return valid, minPrice
}

func numberOf(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
	} else {
		s = string(raw)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
