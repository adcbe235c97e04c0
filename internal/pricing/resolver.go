package pricing

import "strings"

// MarkupKind enumerates the supported markup rule kinds.
type MarkupKind string

const (
	// MarkupNone indicates no markup rule was applied.
	MarkupNone MarkupKind = "none"
	// MarkupPercent applies a percentage on top of the cost price.
	MarkupPercent MarkupKind = "percent"
	// MarkupFixed adds a fixed amount to the cost price. Negative values act as discounts.
	MarkupFixed MarkupKind = "fixed"
)

// ParseMarkupKind normalises a raw markup kind string.
func ParseMarkupKind(raw string) (MarkupKind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "percent":
		return MarkupPercent, true
	case "fixed":
		return MarkupFixed, true
	default:
		return MarkupNone, false
	}
}

// Markup is a rule applied to a cost price to derive a sell price.
type Markup struct {
	Kind  MarkupKind
	Value float64
}

// Override carries catalog-specific pricing that takes precedence over an
// item's store-wide defaults. Explicit variant prices, when set, are absolute
// prices for that physical fraction rather than per-unit rates.
type Override struct {
	Markup       *Markup
	HalfPrice    *float64
	QuarterPrice *float64
	PortionPrice *float64
}

// Item is the pricing view of one catalog product.
type Item struct {
	ID            string
	UnitSize      float64
	BasePrice     float64
	CostPrice     float64
	DefaultMarkup *Markup
	Override      *Override
	Divisible     bool
}

// ResolvedPrice is the effective per-unit sell price for an item in a given
// catalog context, together with the markup parameters that produced it.
// It is always recomputed on demand and never cached.
type ResolvedPrice struct {
	PerUnit     float64
	MarkupKind  MarkupKind
	MarkupValue float64
	// Clamped is set when a negative computed price was raised to zero.
	Clamped bool
}

// Resolve computes the effective per-unit price for the item.
//
// The fallback chain is explicit and ordered: catalog override markup, then
// default markup, then base price, then cost price, then zero. An item whose
// retail price is absent sells at cost rather than at zero.
func Resolve(item Item) ResolvedPrice {
	markup := item.DefaultMarkup
	if item.Override != nil && item.Override.Markup != nil {
		markup = item.Override.Markup
	}

	if markup == nil || item.CostPrice <= 0 {
		switch {
		case item.BasePrice > 0:
			return ResolvedPrice{PerUnit: item.BasePrice, MarkupKind: MarkupNone}
		case item.CostPrice > 0:
			return ResolvedPrice{PerUnit: item.CostPrice, MarkupKind: MarkupNone}
		default:
			return ResolvedPrice{MarkupKind: MarkupNone}
		}
	}

	var effective float64
	switch markup.Kind {
	case MarkupPercent:
		effective = item.CostPrice * (1 + markup.Value/100)
	case MarkupFixed:
		effective = item.CostPrice + markup.Value
	default:
		if item.BasePrice > 0 {
			effective = item.BasePrice
		} else {
			effective = item.CostPrice
		}
		return ResolvedPrice{PerUnit: effective, MarkupKind: MarkupNone}
	}

	resolved := ResolvedPrice{PerUnit: effective, MarkupKind: markup.Kind, MarkupValue: markup.Value}
	if resolved.PerUnit < 0 {
		resolved.PerUnit = 0
		resolved.Clamped = true
	}
	return resolved
}

// RoundDisplay rounds a full-precision price to the nearest whole currency
// unit. Resolution and decomposition keep full precision internally; rounding
// happens only when producing an order line or a snapshot entry.
func RoundDisplay(price float64) int64 {
	if price <= 0 {
		return 0
	}
	return int64(price + 0.5)
}
