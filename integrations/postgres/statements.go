package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/aqlanhadi/stmtx/extractor/common"
	"github.com/jackc/pgx/v5"
)

// findStatement looks a statement up by its natural key.
func findStatement(ctx context.Context, tx pgx.Tx, accountID, checksum string) (string, bool, error) {
	var id string
	err := tx.QueryRow(ctx, `
		SELECT id FROM statements
		WHERE account_id = $1 AND checksum = $2
	`, accountID, checksum).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to check statement: %w", err)
	}
	return id, true, nil
}

func insertStatement(ctx context.Context, tx pgx.Tx, accountID string, st common.Statement) (string, error) {
	var debit, credit, balance any
	if st.Summary != nil {
		debit, credit, balance = st.Summary.TotalDebit, st.Summary.TotalCredit, st.Summary.ClosingBalance
	}

	var id string
	err := tx.QueryRow(ctx, `
		INSERT INTO statements (
			account_id, source, checksum, columns, row_count,
			total_debit, total_credit, closing_balance
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`,
		accountID, st.Source, st.Checksum, st.Table.Columns, len(st.Table.Rows),
		debit, credit, balance,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to create statement: %w", err)
	}
	return id, nil
}

// deleteStatement removes a statement and its rows (cascade)
func deleteStatement(ctx context.Context, tx pgx.Tx, statementID string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM statements WHERE id = $1`, statementID); err != nil {
		return fmt.Errorf("failed to delete statement: %w", err)
	}
	return nil
}
