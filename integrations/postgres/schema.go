package postgres

import (
	"context"
	"fmt"
)

const ddl = `
CREATE TABLE IF NOT EXISTS accounts (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    bank VARCHAR(32) NOT NULL,
    account_number VARCHAR(50) NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW(),
    updated_at TIMESTAMPTZ DEFAULT NOW(),

    UNIQUE(bank, account_number)
);

-- A statement is identified by the checksum of its PDF
CREATE TABLE IF NOT EXISTS statements (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    account_id UUID NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    source VARCHAR(255) NOT NULL,
    checksum CHAR(64) NOT NULL,
    columns TEXT[] NOT NULL,
    row_count INTEGER NOT NULL,
    total_debit NUMERIC(18,3),
    total_credit NUMERIC(18,3),
    closing_balance NUMERIC(18,3),
    created_at TIMESTAMPTZ DEFAULT NOW(),

    UNIQUE(account_id, checksum)
);

CREATE TABLE IF NOT EXISTS statement_rows (
    statement_id UUID NOT NULL REFERENCES statements(id) ON DELETE CASCADE,
    sequence INTEGER NOT NULL,
    cells JSONB NOT NULL,

    PRIMARY KEY (statement_id, sequence)
);

CREATE INDEX IF NOT EXISTS idx_statements_account_id ON statements(account_id);
`

// EnsureSchema creates tables if they don't exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
