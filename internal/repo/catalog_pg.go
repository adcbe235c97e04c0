package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warung-io/backend-warung/internal/catalog"
	"github.com/warung-io/backend-warung/internal/pricing"
)

const listCatalogItemsSQL = `
SELECT id,
       name,
       category_id,
       unit_label,
       unit_size,
       base_price,
       cost_price,
       markup_kind,
       markup_value,
       override_markup_kind,
       override_markup_value,
       override_half_price,
       override_quarter_price,
       override_portion_price,
       divisible,
       availability
FROM catalog_items
WHERE catalog_id = $1
ORDER BY id`

// CatalogRepo reads catalog items from Postgres.
type CatalogRepo struct {
	Pool *pgxpool.Pool
}

// ListItems returns all items visible in the given catalog.
func (r CatalogRepo) ListItems(ctx context.Context, catalogID string) ([]catalog.Item, error) {
	rows, err := r.Pool.Query(ctx, listCatalogItemsSQL, catalogID)
	if err != nil {
		return nil, fmt.Errorf("query catalog items: %w", err)
	}
	defer rows.Close()

	var items []catalog.Item
	for rows.Next() {
		var (
			item          catalog.Item
			categoryID    *string
			markupKind    *string
			markupValue   *float64
			overrideKind  *string
			overrideValue *float64
			halfPrice     *float64
			quarterPrice  *float64
			portionPrice  *float64
			availability  string
		)
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&categoryID,
			&item.UnitLabel,
			&item.UnitSize,
			&item.BasePrice,
			&item.CostPrice,
			&markupKind,
			&markupValue,
			&overrideKind,
			&overrideValue,
			&halfPrice,
			&quarterPrice,
			&portionPrice,
			&item.Divisible,
			&availability,
		); err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}
		if categoryID != nil {
			item.CategoryID = *categoryID
		}
		item.DefaultMarkup = markupFromColumns(markupKind, markupValue)
		item.Override = overrideFromColumns(overrideKind, overrideValue, halfPrice, quarterPrice, portionPrice)
		item.Availability = catalog.ParseAvailability(availability)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog items: %w", err)
	}
	return items, nil
}

// ListCatalogIDs returns every catalog id that has at least one item. The
// worker uses it to fan out snapshot refresh tasks.
func (r CatalogRepo) ListCatalogIDs(ctx context.Context) ([]string, error) {
	rows, err := r.Pool.Query(ctx, `SELECT DISTINCT catalog_id FROM catalog_items ORDER BY catalog_id`)
	if err != nil {
		return nil, fmt.Errorf("query catalog ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan catalog id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog ids: %w", err)
	}
	return ids, nil
}

func markupFromColumns(kind *string, value *float64) *pricing.Markup {
	if kind == nil || value == nil {
		return nil
	}
	parsed, ok := pricing.ParseMarkupKind(*kind)
	if !ok || parsed == pricing.MarkupNone {
		return nil
	}
	return &pricing.Markup{Kind: parsed, Value: *value}
}

func overrideFromColumns(kind *string, value, half, quarter, portion *float64) *pricing.Override {
	markup := markupFromColumns(kind, value)
	if markup == nil && half == nil && quarter == nil && portion == nil {
		return nil
	}
	return &pricing.Override{
		Markup:       markup,
		HalfPrice:    half,
		QuarterPrice: quarter,
		PortionPrice: portion,
	}
}
