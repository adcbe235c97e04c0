package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/warung-io/backend-warung/internal/pricing"
)

func testItems() []Item {
	percent := pricing.Markup{Kind: pricing.MarkupPercent, Value: 20}
	half := 450.0
	return []Item{
		{
			ID:            "itm-beef",
			Name:          "Daging Sapi",
			CategoryID:    "cat-meat",
			UnitLabel:     "kg",
			UnitSize:      10,
			CostPrice:     100,
			DefaultMarkup: &percent,
			Divisible:     true,
			Override:      &pricing.Override{HalfPrice: &half},
			Availability:  Available,
		},
		{
			ID:           "itm-egg",
			Name:         "Telur Ayam",
			UnitLabel:    "tray",
			UnitSize:     1,
			BasePrice:    58000,
			Availability: Preorder,
		},
		{
			ID:           "itm-oil",
			Name:         "Minyak Goreng",
			UnitLabel:    "liter",
			UnitSize:     1,
			BasePrice:    17000,
			Availability: Unavailable,
		},
	}
}

func TestBuildSnapshotPricesVariants(t *testing.T) {
	snap, _ := BuildSnapshot("cat-1", testItems(), 0)
	require.Equal(t, "cat-1", snap.CatalogID)
	require.Len(t, snap.Entries, 3)
	require.Equal(t, 3, snap.Total)
	require.Zero(t, snap.Truncated)

	// Entries are sorted by id.
	require.Equal(t, "itm-beef", snap.Entries[0].ID)
	require.Equal(t, "itm-egg", snap.Entries[1].ID)

	beef := snap.Entries[0]
	require.Len(t, beef.Variants, 3)
	byKind := map[pricing.VariantKind]VariantOffer{}
	for _, v := range beef.Variants {
		byKind[v.Kind] = v
	}
	require.Equal(t, int64(1200), byKind[pricing.VariantWhole].Price)
	require.Equal(t, 10.0, byKind[pricing.VariantWhole].Quantity)
	// The explicit half override is an absolute price, not half of whole.
	require.Equal(t, int64(450), byKind[pricing.VariantHalf].Price)

	egg := snap.Entries[1]
	require.Len(t, egg.Variants, 1)
	require.Equal(t, pricing.VariantWhole, egg.Variants[0].Kind)
}

func TestBuildSnapshotTruncatesDeterministically(t *testing.T) {
	snap, _ := BuildSnapshot("cat-1", testItems(), 2)
	require.Len(t, snap.Entries, 2)
	require.Equal(t, 3, snap.Total)
	require.Equal(t, 1, snap.Truncated)
	require.Equal(t, "itm-beef", snap.Entries[0].ID)
	require.Equal(t, "itm-egg", snap.Entries[1].ID)

	again, _ := BuildSnapshot("cat-1", testItems(), 2)
	require.Equal(t, snap.Entries, again.Entries)
}

func TestSnapshotHas(t *testing.T) {
	snap, _ := BuildSnapshot("cat-1", testItems(), 0)
	require.True(t, snap.Has("itm-oil"))
	require.False(t, snap.Has("itm-unknown"))
}

func TestBuildSnapshotWarnsOnDataQuality(t *testing.T) {
	bad := pricing.Markup{Kind: pricing.MarkupFixed, Value: -150}
	items := []Item{
		{
			ID:            "itm-broken",
			Name:          "Krupuk",
			UnitLabel:     "pack",
			UnitSize:      1,
			CostPrice:     100,
			DefaultMarkup: &bad,
			Availability:  Available,
		},
		{
			ID:           "itm-nosize",
			Name:         "Garam",
			UnitLabel:    "pack",
			BasePrice:    3000,
			Availability: Available,
		},
	}

	snap, warnings := BuildSnapshot("cat-1", items, 0)
	require.Len(t, snap.Entries, 2)
	require.Equal(t, int64(0), snap.Entries[0].Variants[0].Price)
	require.Contains(t, warnings, "item itm-broken: negative computed price clamped to zero")
	require.Contains(t, warnings, "item itm-nosize: missing unit size, defaulted to 1")

	_, clean := BuildSnapshot("cat-1", testItems(), 0)
	require.Empty(t, clean)
}
