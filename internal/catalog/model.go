package catalog

import (
	"strings"

	"github.com/warung-io/backend-warung/internal/pricing"
)

// Availability enumerates the selling states of a catalog item.
type Availability string

const (
	Available   Availability = "available"
	Preorder    Availability = "preorder"
	Unavailable Availability = "unavailable"
)

// ParseAvailability normalises a raw availability value, defaulting to unavailable.
func ParseAvailability(raw string) Availability {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "available":
		return Available
	case "preorder":
		return Preorder
	default:
		return Unavailable
	}
}

// Orderable reports whether the item can be added to an order.
func (a Availability) Orderable() bool {
	return a == Available || a == Preorder
}

// Item is one sellable product as known to a specific catalog context. It is
// owned by the catalog store and treated as read-only for the duration of a
// request.
type Item struct {
	ID            string
	Name          string
	CategoryID    string
	UnitLabel     string
	UnitSize      float64
	BasePrice     float64
	CostPrice     float64
	DefaultMarkup *pricing.Markup
	Override      *pricing.Override
	Divisible     bool
	Availability  Availability
}

// PricingItem projects the item into the pricing engine's input shape.
func (i Item) PricingItem() pricing.Item {
	return pricing.Item{
		ID:            i.ID,
		UnitSize:      i.UnitSize,
		BasePrice:     i.BasePrice,
		CostPrice:     i.CostPrice,
		DefaultMarkup: i.DefaultMarkup,
		Override:      i.Override,
		Divisible:     i.Divisible,
	}
}

// Index builds an id-keyed lookup over the provided items.
func Index(items []Item) map[string]Item {
	out := make(map[string]Item, len(items))
	for _, item := range items {
		out[item.ID] = item
	}
	return out
}
