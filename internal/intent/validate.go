package intent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/warung-io/backend-warung/internal/catalog"
	"github.com/warung-io/backend-warung/internal/pricing"
)

// parseAndValidate turns the delegate's raw JSON payload into a validated
// Result against the snapshot that was sent. Malformed payloads and a missing
// summary field are protocol violations; per-intent problems are recovered
// with a recorded warning so one bad intent never fails the batch.
func parseAndValidate(payload []byte, snap catalog.Snapshot) (Result, error) {
	var raw rawResponse
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrProtocolViolation, err)
	}
	if raw.Summary == nil {
		return Result{}, fmt.Errorf("%w: missing summary field", ErrProtocolViolation)
	}

	result := Result{Summary: *raw.Summary, Intents: make([]OrderIntent, 0, len(raw.Items))}
	for i, item := range raw.Items {
		id := strings.TrimSpace(item.ItemID)
		if id == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("intent %d: empty item id, dropped", i))
			continue
		}
		if !snap.Has(id) {
			// Kept so the caller sees everything the user asked for; the
			// reconciler will surface it as an unavailable line.
			result.Warnings = append(result.Warnings, fmt.Sprintf("intent %d: item %s not in snapshot", i, id))
		}

		variant, known := pricing.ParseVariantKind(item.Variant)
		if !known && strings.TrimSpace(item.Variant) != "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("intent %d: unknown variant %q, using whole", i, item.Variant))
		}

		quantity, warn := normaliseQuantity(item.Quantity)
		if warn != "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("intent %d: %s", i, warn))
		}

		result.Intents = append(result.Intents, OrderIntent{
			ItemID:           id,
			Variant:          variant,
			Quantity:         quantity,
			MatchReason:      strings.TrimSpace(item.MatchReason),
			SubstituteItemID: strings.TrimSpace(item.SubstituteItemID),
			SubstituteReason: strings.TrimSpace(item.SubstituteReason),
		})
	}
	return result, nil
}

// normaliseQuantity clamps the delegate's quantity to a positive integer.
func normaliseQuantity(raw json.Number) (int, string) {
	if raw.String() == "" {
		return 1, "missing quantity, using 1"
	}
	if n, err := raw.Int64(); err == nil {
		if n < 1 {
			return 1, fmt.Sprintf("non-positive quantity %d, clamped to 1", n)
		}
		return int(n), ""
	}
	f, err := raw.Float64()
	if err != nil || f < 1 {
		return 1, fmt.Sprintf("invalid quantity %q, using 1", raw.String())
	}
	return int(f + 0.5), fmt.Sprintf("fractional quantity %q, rounded", raw.String())
}
