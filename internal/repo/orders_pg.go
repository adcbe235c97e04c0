package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warung-io/backend-warung/internal/common"
	"github.com/warung-io/backend-warung/internal/compose"
	"github.com/warung-io/backend-warung/internal/intent"
)

const getOrderOwnerSQL = `
SELECT user_id FROM orders WHERE id = $1 AND catalog_id = $2`

const listOrderLinesSQL = `
SELECT item_id,
       name,
       quantity,
       price,
       variant,
       physical_quantity
FROM order_lines
WHERE order_id = $1
ORDER BY position`

// OrderRepo reads historical orders from Postgres.
type OrderRepo struct {
	Pool *pgxpool.Pool
}

// ListOrderLines returns the lines of one historical order. The order must
// belong to the catalog, and when the context carries an authenticated user
// the order must belong to that user as well. A mismatch reports not found
// rather than leaking the order's existence.
func (r OrderRepo) ListOrderLines(ctx context.Context, catalogID, orderID string) ([]intent.HistoricalLine, error) {
	var owner *string
	err := r.Pool.QueryRow(ctx, getOrderOwnerSQL, orderID, catalogID).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, compose.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if userID, ok := common.UserID(ctx); ok && owner != nil && *owner != userID {
		return nil, compose.ErrOrderNotFound
	}

	rows, err := r.Pool.Query(ctx, listOrderLinesSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	var lines []intent.HistoricalLine
	for rows.Next() {
		var (
			line     intent.HistoricalLine
			itemID   *string
			variant  *string
			physical *float64
		)
		if err := rows.Scan(&itemID, &line.Name, &line.Quantity, &line.Price, &variant, &physical); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		if itemID != nil {
			line.ItemID = *itemID
		}
		if variant != nil {
			line.Variant = *variant
		}
		if physical != nil {
			line.Physical = *physical
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}
	return lines, nil
}
