package compose

import (
	"strings"

	"github.com/warung-io/backend-warung/internal/catalog"
	"github.com/warung-io/backend-warung/internal/intent"
	"github.com/warung-io/backend-warung/internal/pricing"
)

const repeatMatchReason = "carried over from previous order"

// Rehydrate maps a historical order's lines onto the current catalog without
// involving the interpretation delegate, so repeating an order stays
// deterministic and debuggable. Matching is by stable item reference first,
// then exact case-insensitive name; anything else is surfaced as unmatched,
// never silently skipped. No fuzzy matching happens here.
func Rehydrate(lines []intent.HistoricalLine, items map[string]catalog.Item) ([]intent.OrderIntent, []UnmatchedLine) {
	byName := make(map[string]catalog.Item, len(items))
	for _, item := range items {
		byName[strings.ToLower(strings.TrimSpace(item.Name))] = item
	}

	intents := make([]intent.OrderIntent, 0, len(lines))
	var unmatched []UnmatchedLine

	for _, line := range lines {
		quantity := line.Quantity
		if quantity < 1 {
			quantity = 1
		}

		item, ok := items[line.ItemID]
		if !ok || line.ItemID == "" {
			item, ok = byName[strings.ToLower(strings.TrimSpace(line.Name))]
		}
		if !ok {
			unmatched = append(unmatched, UnmatchedLine{
				Name:     line.Name,
				Quantity: quantity,
				Reason:   "no longer available in this catalog",
			})
			continue
		}

		variant := pricing.VariantWhole
		if kind, known := pricing.ParseVariantKind(line.Variant); known {
			variant = kind
		}
		intents = append(intents, intent.OrderIntent{
			ItemID:      item.ID,
			Variant:     variant,
			Quantity:    quantity,
			MatchReason: repeatMatchReason,
		})
	}

	return intents, unmatched
}

// PriceDrift reports, per rehydrated line, how the current price compares to
// what the customer paid historically. Lines priced identically report zero.
func PriceDrift(historical []intent.HistoricalLine, lines []OrderLine) map[string]int64 {
	paid := make(map[string]int64, len(historical))
	for _, h := range historical {
		key := strings.ToLower(strings.TrimSpace(h.Name))
		if h.ItemID != "" {
			key = h.ItemID
		}
		paid[key] = h.Price
	}

	drift := make(map[string]int64, len(lines))
	for _, line := range lines {
		if !line.Available {
			continue
		}
		was, ok := paid[line.ItemID]
		if !ok {
			was, ok = paid[strings.ToLower(strings.TrimSpace(line.ItemName))]
		}
		if !ok {
			continue
		}
		drift[line.ItemID] = line.UnitPrice - was
	}
	return drift
}
