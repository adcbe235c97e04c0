package catalog

import (
	"sort"

	"github.com/warung-io/backend-warung/internal/pricing"
)

// VariantOffer is one priced variant inside a snapshot entry, rounded for display.
type VariantOffer struct {
	Kind     pricing.VariantKind `json:"kind"`
	Label    string              `json:"label"`
	Price    int64               `json:"price"`
	Quantity float64             `json:"quantity"`
}

// Entry is the compact, query-ready projection of one catalog item handed to
// the interpretation delegate.
type Entry struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	CategoryID   string         `json:"categoryId,omitempty"`
	UnitLabel    string         `json:"unitLabel,omitempty"`
	Availability Availability   `json:"availability"`
	Variants     []VariantOffer `json:"variants"`
}

// Snapshot is a bounded projection of a catalog at a point in time.
type Snapshot struct {
	CatalogID string  `json:"catalogId"`
	Entries   []Entry `json:"entries"`
	// Total is the number of items visible in the catalog before truncation.
	Total int `json:"total"`
	// Truncated records how many items were cut to respect the size cap so
	// callers can report "N additional items not considered".
	Truncated int `json:"truncated,omitempty"`
}

// Empty reports whether the snapshot has no entries.
func (s Snapshot) Empty() bool { return len(s.Entries) == 0 }

// Has reports whether an item id is present in the snapshot.
func (s Snapshot) Has(id string) bool {
	for _, e := range s.Entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

// BuildSnapshot resolves and decomposes prices for every item and assembles a
// compact snapshot. When the catalog exceeds maxItems, entries are truncated
// deterministically after a stable sort by id. Data quality problems found
// while pricing, a clamped negative price or a missing unit size, are returned
// as warnings so the caller can log and count them.
func BuildSnapshot(catalogID string, items []Item, maxItems int) (Snapshot, []string) {
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	total := len(sorted)
	truncated := 0
	if maxItems > 0 && total > maxItems {
		truncated = total - maxItems
		sorted = sorted[:maxItems]
	}

	var warnings []string
	entries := make([]Entry, 0, len(sorted))
	for _, item := range sorted {
		pi := item.PricingItem()
		resolved := pricing.Resolve(pi)
		if resolved.Clamped {
			warnings = append(warnings, "item "+item.ID+": negative computed price clamped to zero")
		}
		if item.UnitSize <= 0 {
			warnings = append(warnings, "item "+item.ID+": missing unit size, defaulted to 1")
		}
		quotes := pricing.Decompose(pi, resolved)

		offers := make([]VariantOffer, 0, len(quotes))
		for _, q := range quotes {
			offers = append(offers, VariantOffer{
				Kind:     q.Kind,
				Label:    q.Kind.Label(),
				Price:    pricing.RoundDisplay(q.PricePerLine),
				Quantity: q.PhysicalQuantity,
			})
		}
		entries = append(entries, Entry{
			ID:           item.ID,
			Name:         item.Name,
			CategoryID:   item.CategoryID,
			UnitLabel:    item.UnitLabel,
			Availability: item.Availability,
			Variants:     offers,
		})
	}

	return Snapshot{CatalogID: catalogID, Entries: entries, Total: total, Truncated: truncated}, warnings
}
