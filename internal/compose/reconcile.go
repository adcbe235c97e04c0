package compose

import (
	"github.com/warung-io/backend-warung/internal/catalog"
	"github.com/warung-io/backend-warung/internal/intent"
	"github.com/warung-io/backend-warung/internal/pricing"
)

// Substitute is an alternative item attached to an unavailable line. It is
// metadata only; composing it into the order is a separate user action.
type Substitute struct {
	ItemID   string `json:"itemId"`
	ItemName string `json:"itemName,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// OrderLine is one priced, availability-checked line of a composition. Lines
// are constructed fresh per request and never mutated afterwards.
type OrderLine struct {
	ItemID       string              `json:"itemId"`
	ItemName     string              `json:"itemName"`
	Variant      pricing.VariantKind `json:"variant"`
	VariantLabel string              `json:"variantLabel"`
	Quantity     int                 `json:"quantity"`
	UnitPrice    int64               `json:"unitPrice"`
	// UnitQuantity is the physical amount one unit of the variant represents.
	UnitQuantity  float64     `json:"physicalQuantityPerUnit"`
	LineTotal     int64       `json:"lineTotal"`
	TotalQuantity float64     `json:"totalPhysicalQuantity"`
	Available     bool        `json:"available"`
	MatchReason   string      `json:"matchReason,omitempty"`
	Substitute    *Substitute `json:"substitute,omitempty"`
}

// UnmatchedLine is a historical order line that no current catalog item matches.
type UnmatchedLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

// Result aggregates the composed order lines for one request.
type Result struct {
	// CompositionID identifies one composition attempt in logs and traces.
	CompositionID string      `json:"compositionId,omitempty"`
	Lines         []OrderLine `json:"lines"`
	Summary       string      `json:"summary"`
	// TotalPrice sums line totals over available lines only.
	TotalPrice       int64 `json:"totalPrice"`
	UnavailableCount int   `json:"unavailableCount"`
	// CatalogEmpty distinguishes "nothing visible in this catalog" from an
	// order that simply matched nothing.
	CatalogEmpty bool            `json:"catalogEmpty,omitempty"`
	Unmatched    []UnmatchedLine `json:"unmatched,omitempty"`
	Warnings     []string        `json:"warnings,omitempty"`
	// PriceDrift maps item id to the signed difference between the current
	// unit price and what a rehydrated order paid for it.
	PriceDrift map[string]int64 `json:"priceDrift,omitempty"`
}

// Reconcile maps every intent onto a concrete, priced order line against the
// given catalog. No intent is ever dropped: an unknown item id produces an
// unavailable zero-priced line that preserves the original match reason.
func Reconcile(intents []intent.OrderIntent, items map[string]catalog.Item) Result {
	result := Result{Lines: make([]OrderLine, 0, len(intents))}

	for _, in := range intents {
		quantity := in.Quantity
		if quantity < 1 {
			quantity = 1
		}

		item, found := items[in.ItemID]
		if !found {
			result.Lines = append(result.Lines, OrderLine{
				ItemID:       in.ItemID,
				Variant:      in.Variant,
				VariantLabel: in.Variant.Label(),
				Quantity:     quantity,
				Available:    false,
				MatchReason:  in.MatchReason,
				Substitute:   substituteFor(in, items),
			})
			result.UnavailableCount++
			continue
		}

		pi := item.PricingItem()
		resolved := pricing.Resolve(pi)
		if resolved.Clamped {
			result.Warnings = append(result.Warnings, "item "+item.ID+": negative computed price clamped to zero")
		}
		// The requested variant falls back to whole when the item does not offer it.
		quote, _ := pricing.QuoteFor(pricing.Decompose(pi, resolved), in.Variant)

		available := item.Availability.Orderable()
		unitPrice := pricing.RoundDisplay(quote.PricePerLine)
		line := OrderLine{
			ItemID:        item.ID,
			ItemName:      item.Name,
			Variant:       quote.Kind,
			VariantLabel:  quote.Kind.Label(),
			Quantity:      quantity,
			UnitPrice:     unitPrice,
			UnitQuantity:  quote.PhysicalQuantity,
			LineTotal:     unitPrice * int64(quantity),
			TotalQuantity: quote.PhysicalQuantity * float64(quantity),
			Available:     available,
			MatchReason:   in.MatchReason,
		}
		if !available {
			line.Substitute = substituteFor(in, items)
		}

		result.Lines = append(result.Lines, line)
		if available {
			result.TotalPrice += line.LineTotal
		} else {
			result.UnavailableCount++
		}
	}

	return result
}

// substituteFor resolves the intent's substitute suggestion, if any, into
// line metadata enriched with the current catalog name.
func substituteFor(in intent.OrderIntent, items map[string]catalog.Item) *Substitute {
	if in.SubstituteItemID == "" {
		return nil
	}
	sub := &Substitute{ItemID: in.SubstituteItemID, Reason: in.SubstituteReason}
	if item, ok := items[in.SubstituteItemID]; ok {
		sub.ItemName = item.Name
	}
	return sub
}
