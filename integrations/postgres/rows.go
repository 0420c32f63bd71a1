package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var rowColumns = []string{"statement_id", "sequence", "cells"}

// copyRows bulk loads the table rows of a statement. Cells are stored as a
// JSON array in column order.
func copyRows(ctx context.Context, tx pgx.Tx, statementID string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	values := make([][]any, 0, len(rows))
	for i, row := range rows {
		cells, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to encode row %d: %w", i+1, err)
		}
		values = append(values, []any{statementID, i + 1, cells})
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"statement_rows"}, rowColumns, pgx.CopyFromRows(values))
	if err != nil {
		return fmt.Errorf("failed to insert rows: %w", err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("inserted %d of %d rows", n, len(rows))
	}
	return nil
}
