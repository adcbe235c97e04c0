package pricing

import "testing"

func markup(kind MarkupKind, value float64) *Markup {
	return &Markup{Kind: kind, Value: value}
}

func TestResolveFallbackChain(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want float64
	}{
		{"base price wins without markup", Item{BasePrice: 5000, CostPrice: 4000}, 5000},
		{"cost price when retail absent", Item{CostPrice: 4000}, 4000},
		{"zero when nothing configured", Item{}, 0},
		{"markup without cost falls back to base", Item{BasePrice: 5000, DefaultMarkup: markup(MarkupPercent, 20)}, 5000},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(tc.item)
			if got.PerUnit != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got.PerUnit)
			}
			if got.MarkupKind != MarkupNone {
				t.Fatalf("expected no markup applied, got %s", got.MarkupKind)
			}
		})
	}
}

func TestResolvePercentMarkup(t *testing.T) {
	item := Item{UnitSize: 10, CostPrice: 100, DefaultMarkup: markup(MarkupPercent, 20)}
	got := Resolve(item)
	if got.PerUnit != 120 {
		t.Fatalf("expected 120, got %v", got.PerUnit)
	}
	if got.MarkupKind != MarkupPercent || got.MarkupValue != 20 {
		t.Fatalf("unexpected markup metadata: %+v", got)
	}

	// Base price being set as well must not change the outcome.
	item.BasePrice = 999
	if again := Resolve(item); again.PerUnit != 120 {
		t.Fatalf("base price leaked into markup path: %v", again.PerUnit)
	}
}

func TestResolveFixedMarkupAllowsDiscount(t *testing.T) {
	got := Resolve(Item{CostPrice: 100, DefaultMarkup: markup(MarkupFixed, -30)})
	if got.PerUnit != 70 {
		t.Fatalf("expected 70, got %v", got.PerUnit)
	}
	if got.Clamped {
		t.Fatal("discount must not be reported as clamped")
	}
}

func TestResolveClampsNegativeResult(t *testing.T) {
	got := Resolve(Item{CostPrice: 100, DefaultMarkup: markup(MarkupFixed, -150)})
	if got.PerUnit != 0 {
		t.Fatalf("expected clamp to zero, got %v", got.PerUnit)
	}
	if !got.Clamped {
		t.Fatal("expected clamped flag to be set")
	}
}

func TestResolveOverrideWinsOverDefault(t *testing.T) {
	item := Item{
		CostPrice:     100,
		DefaultMarkup: markup(MarkupPercent, 20),
		Override:      &Override{Markup: markup(MarkupFixed, 50)},
	}
	got := Resolve(item)
	if got.PerUnit != 150 {
		t.Fatalf("override should win: expected 150, got %v", got.PerUnit)
	}
	if got.MarkupKind != MarkupFixed {
		t.Fatalf("expected fixed markup recorded, got %s", got.MarkupKind)
	}
}

func TestResolveIsPure(t *testing.T) {
	item := Item{UnitSize: 10, CostPrice: 100, DefaultMarkup: markup(MarkupPercent, 20)}
	first := Resolve(item)
	second := Resolve(item)
	if first != second {
		t.Fatalf("resolve must be deterministic: %+v vs %+v", first, second)
	}
}

func TestRoundDisplay(t *testing.T) {
	if got := RoundDisplay(1249.5); got != 1250 {
		t.Fatalf("expected 1250, got %d", got)
	}
	if got := RoundDisplay(1249.4); got != 1249 {
		t.Fatalf("expected 1249, got %d", got)
	}
	if got := RoundDisplay(-3); got != 0 {
		t.Fatalf("negative prices round to zero, got %d", got)
	}
}
