package postgres

import (
	"context"
	"fmt"

	"github.com/aqlanhadi/stmtx/extractor/common"
	"github.com/jackc/pgx/v5"
)

// upsertAccount returns the id of the account, creating it on first sight.
func upsertAccount(ctx context.Context, tx pgx.Tx, bank common.Bank, accountNumber string) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
		INSERT INTO accounts (bank, account_number)
		VALUES ($1, $2)
		ON CONFLICT (bank, account_number) DO UPDATE SET updated_at = NOW()
		RETURNING id
	`, string(bank), accountNumber).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to upsert account: %w", err)
	}
	return id, nil
}
