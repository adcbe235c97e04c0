package intent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// systemInstructions constrain the delegate to order composition over the
// provided snapshot. The delegate must never invent item ids; substitution
// suggestions are metadata, not extra lines.
const systemInstructions = `You compose grocery orders for an Indonesian storefront.
You receive a catalog snapshot (JSON) and a customer request, which may be
free text, a voice transcript, or the line items of a previous order.

Rules:
- Only reference item ids that appear in the snapshot.
- Pick the variant the customer asked for: whole, half, quarter, or portion.
  When in doubt use whole.
- quantity is a positive integer count of the chosen variant, never a weight.
- matchReason is one short sentence explaining why the item matches.
- If the requested item looks unavailable, still include it and suggest the
  closest available alternative via substituteItemId and substituteReason.
- If nothing in the request maps to the catalog, return an empty items list.
- Always include the summary field: one sentence describing the composed order.`

// responseSchema is the structured-output schema the delegate is forced to
// follow. Free-text replies are treated as a protocol violation.
var responseSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"summary": map[string]any{"type": "string"},
		"items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"itemId":           map[string]any{"type": "string"},
					"variant":          map[string]any{"type": "string", "enum": []string{"whole", "half", "quarter", "portion"}},
					"quantity":         map[string]any{"type": "integer"},
					"matchReason":      map[string]any{"type": "string"},
					"substituteItemId": map[string]any{"type": "string"},
					"substituteReason": map[string]any{"type": "string"},
				},
				"required": []string{"itemId", "variant", "quantity", "matchReason"},
			},
		},
	},
	"required": []string{"summary", "items"},
}

// buildUserPayload renders the snapshot plus the query or rehydration context
// into the single user message sent to the delegate.
func buildUserPayload(req Request) (string, error) {
	snapshot, err := json.Marshal(req.Snapshot)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	var b strings.Builder
	b.WriteString("Catalog snapshot:\n")
	b.Write(snapshot)
	b.WriteString("\n\n")

	if len(req.History) > 0 {
		history, err := json.Marshal(req.History)
		if err != nil {
			return "", fmt.Errorf("encode history: %w", err)
		}
		b.WriteString("The customer wants to repeat this previous order:\n")
		b.Write(history)
		b.WriteString("\nMap each previous line to a current catalog item.")
		return b.String(), nil
	}

	b.WriteString("Customer request:\n")
	b.WriteString(strings.TrimSpace(req.Query))
	return b.String(), nil
}
