package pricing

import "strings"

// VariantKind enumerates the sellable packaging forms of an item.
type VariantKind string

const (
	VariantWhole   VariantKind = "whole"
	VariantHalf    VariantKind = "half"
	VariantQuarter VariantKind = "quarter"
	VariantPortion VariantKind = "portion"
)

// ParseVariantKind normalises a raw variant selector. Unknown values report ok=false.
func ParseVariantKind(raw string) (VariantKind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "whole":
		return VariantWhole, true
	case "half":
		return VariantHalf, true
	case "quarter":
		return VariantQuarter, true
	case "portion":
		return VariantPortion, true
	default:
		return VariantWhole, false
	}
}

// Label returns the display label for the variant kind.
func (k VariantKind) Label() string {
	switch k {
	case VariantHalf:
		return "1/2"
	case VariantQuarter:
		return "1/4"
	case VariantPortion:
		return "portion"
	default:
		return "whole"
	}
}

// VariantQuote prices a single variant of an item at full precision.
type VariantQuote struct {
	Kind VariantKind
	// PricePerLine is the price of one unit of this variant.
	PricePerLine float64
	// PhysicalQuantity is the physical amount one unit of this variant
	// represents, in the item's unit label. A portion counts as exactly one
	// portion regardless of the item's unit size.
	PhysicalQuantity float64
}

// Decompose derives the variant quotes offered for an item given its resolved
// per-unit price. The whole variant always exists. Half and quarter exist only
// for items flagged divisible; an explicit override price for a fraction is
// used as the absolute price for that fraction, not as a rate. The portion
// variant exists only when a portion price is configured.
func Decompose(item Item, resolved ResolvedPrice) []VariantQuote {
	unitSize := item.UnitSize
	if unitSize <= 0 {
		unitSize = 1
	}

	quotes := []VariantQuote{{
		Kind:             VariantWhole,
		PricePerLine:     resolved.PerUnit * unitSize,
		PhysicalQuantity: unitSize,
	}}

	if item.Divisible {
		half := resolved.PerUnit * unitSize / 2
		quarter := resolved.PerUnit * unitSize / 4
		if item.Override != nil && item.Override.HalfPrice != nil {
			half = *item.Override.HalfPrice
		}
		if item.Override != nil && item.Override.QuarterPrice != nil {
			quarter = *item.Override.QuarterPrice
		}
		quotes = append(quotes,
			VariantQuote{Kind: VariantHalf, PricePerLine: half, PhysicalQuantity: unitSize / 2},
			VariantQuote{Kind: VariantQuarter, PricePerLine: quarter, PhysicalQuantity: unitSize / 4},
		)
	}

	if item.Override != nil && item.Override.PortionPrice != nil {
		quotes = append(quotes, VariantQuote{
			Kind:             VariantPortion,
			PricePerLine:     *item.Override.PortionPrice,
			PhysicalQuantity: 1,
		})
	}

	return quotes
}

// QuoteFor returns the quote for the requested variant, falling back to the
// whole variant when the item does not offer the requested one.
func QuoteFor(quotes []VariantQuote, kind VariantKind) (VariantQuote, bool) {
	for _, q := range quotes {
		if q.Kind == kind {
			return q, true
		}
	}
	for _, q := range quotes {
		if q.Kind == VariantWhole {
			return q, false
		}
	}
	return VariantQuote{Kind: VariantWhole}, false
}
