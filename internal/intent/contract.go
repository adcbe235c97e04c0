package intent

import (
	"encoding/json"

	"github.com/warung-io/backend-warung/internal/catalog"
	"github.com/warung-io/backend-warung/internal/pricing"
)

// OrderIntent is a validated request to include one item/variant/quantity in
// an order. It is the only shape the reconciler consumes.
type OrderIntent struct {
	ItemID           string              `json:"itemId"`
	Variant          pricing.VariantKind `json:"variant"`
	Quantity         int                 `json:"quantity"`
	MatchReason      string              `json:"matchReason"`
	SubstituteItemID string              `json:"substituteItemId,omitempty"`
	SubstituteReason string              `json:"substituteReason,omitempty"`
}

// HistoricalLine describes one line of a previously placed order, as retained
// by the order store. The item reference may be empty for old orders.
type HistoricalLine struct {
	ItemID   string  `json:"itemId,omitempty"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    int64   `json:"price"`
	Variant  string  `json:"variant,omitempty"`
	Physical float64 `json:"physicalQuantity,omitempty"`
}

// Request is the contract sent to the language-understanding delegate: the
// compact catalog snapshot plus either a free-text query or a rehydration context.
type Request struct {
	Snapshot catalog.Snapshot `json:"catalog"`
	// Query is the free-text or transcribed user request.
	Query string `json:"query,omitempty"`
	// History carries a historical order's lines for rehydration-style prompts.
	History []HistoricalLine `json:"history,omitempty"`
}

// Result is the validated outcome of one delegate call.
type Result struct {
	Intents []OrderIntent
	Summary string
	// Warnings records per-intent adjustments made during validation
	// (clamped quantities, unknown variants, ids absent from the snapshot).
	Warnings []string
}

// rawResponse mirrors the JSON shape the delegate is constrained to return.
// Summary is a pointer so a missing field is distinguishable from an empty one.
type rawResponse struct {
	Summary *string     `json:"summary"`
	Items   []rawIntent `json:"items"`
}

// rawIntent is one unvalidated intent from the delegate. Quantity is decoded
// as a JSON number because delegates occasionally emit fractional counts.
type rawIntent struct {
	ItemID           string      `json:"itemId"`
	Variant          string      `json:"variant"`
	Quantity         json.Number `json:"quantity"`
	MatchReason      string      `json:"matchReason"`
	SubstituteItemID string      `json:"substituteItemId"`
	SubstituteReason string      `json:"substituteReason"`
}
