package pricing

import "testing"

func floatPtr(v float64) *float64 { return &v }

func TestDecomposeWhole(t *testing.T) {
	item := Item{UnitSize: 10, CostPrice: 100, DefaultMarkup: markup(MarkupPercent, 20)}
	quotes := Decompose(item, Resolve(item))

	whole, exact := QuoteFor(quotes, VariantWhole)
	if !exact {
		t.Fatal("whole variant must always exist")
	}
	if whole.PricePerLine != 1200 {
		t.Fatalf("expected whole price 1200, got %v", whole.PricePerLine)
	}
	if whole.PhysicalQuantity != item.UnitSize {
		t.Fatalf("whole physical quantity must equal unit size, got %v", whole.PhysicalQuantity)
	}
}

func TestDecomposeFractionsRequireDivisible(t *testing.T) {
	item := Item{UnitSize: 10, BasePrice: 120}
	quotes := Decompose(item, Resolve(item))
	if len(quotes) != 1 {
		t.Fatalf("non-divisible item must only offer whole, got %d variants", len(quotes))
	}

	item.Divisible = true
	quotes = Decompose(item, Resolve(item))
	half, ok := QuoteFor(quotes, VariantHalf)
	if !ok {
		t.Fatal("divisible item must offer half")
	}
	if half.PricePerLine != 600 {
		t.Fatalf("expected derived half price 600, got %v", half.PricePerLine)
	}
	quarter, ok := QuoteFor(quotes, VariantQuarter)
	if !ok || quarter.PricePerLine != 300 {
		t.Fatalf("expected derived quarter price 300, got %v", quarter.PricePerLine)
	}
	if quarter.PhysicalQuantity != 2.5 {
		t.Fatalf("expected quarter quantity 2.5, got %v", quarter.PhysicalQuantity)
	}
}

func TestDecomposeExplicitHalfPriceIsAbsolute(t *testing.T) {
	item := Item{
		UnitSize:      10,
		CostPrice:     100,
		DefaultMarkup: markup(MarkupPercent, 20),
		Divisible:     true,
		Override:      &Override{HalfPrice: floatPtr(450)},
	}
	quotes := Decompose(item, Resolve(item))
	half, _ := QuoteFor(quotes, VariantHalf)
	if half.PricePerLine != 450 {
		t.Fatalf("explicit half price must be used as-is: expected 450, got %v", half.PricePerLine)
	}
}

func TestDecomposePortion(t *testing.T) {
	item := Item{UnitSize: 10, BasePrice: 120}
	quotes := Decompose(item, Resolve(item))
	if _, ok := QuoteFor(quotes, VariantPortion); ok {
		t.Fatal("portion must not exist without a configured price")
	}

	item.Override = &Override{PortionPrice: floatPtr(250)}
	quotes = Decompose(item, Resolve(item))
	portion, ok := QuoteFor(quotes, VariantPortion)
	if !ok {
		t.Fatal("portion must exist when priced")
	}
	if portion.PricePerLine != 250 {
		t.Fatalf("expected portion price 250, got %v", portion.PricePerLine)
	}
	if portion.PhysicalQuantity != 1 {
		t.Fatalf("a portion is exactly one portion, got %v", portion.PhysicalQuantity)
	}
}

func TestQuoteForFallsBackToWhole(t *testing.T) {
	item := Item{UnitSize: 10, BasePrice: 120}
	quotes := Decompose(item, Resolve(item))
	quote, exact := QuoteFor(quotes, VariantHalf)
	if exact {
		t.Fatal("half should not be an exact match for a non-divisible item")
	}
	if quote.Kind != VariantWhole {
		t.Fatalf("expected fallback to whole, got %s", quote.Kind)
	}
}

func TestParseVariantKind(t *testing.T) {
	if kind, ok := ParseVariantKind(" Half "); !ok || kind != VariantHalf {
		t.Fatalf("expected half, got %s ok=%v", kind, ok)
	}
	if kind, ok := ParseVariantKind("slab"); ok || kind != VariantWhole {
		t.Fatalf("unknown variant must default to whole, got %s ok=%v", kind, ok)
	}
}
