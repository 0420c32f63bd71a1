package postgres

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/aqlanhadi/stmtx/extractor"
	"github.com/aqlanhadi/stmtx/extractor/common"
	log "github.com/sirupsen/logrus"
)

// SaveOutcome reports what SaveStatement did.
type SaveOutcome int

const (
	Saved SaveOutcome = iota
	Skipped
	Replaced
)

// ImportResult tracks the outcome of an import operation
type ImportResult struct {
	Processed int
	Skipped   int
	Failed    int
	Errors    []string
}

// ImportOptions configures the import behavior
type ImportOptions struct {
	Force   bool // Force reprocessing of existing statements
	Bank    common.Bank
	Workers int
	Verbose bool
}

// SaveStatement stores an extracted statement in one transaction. A
// statement already stored for the account is left alone unless force is
// set, in which case it is replaced.
func (db *DB) SaveStatement(ctx context.Context, st common.Statement, force bool) (SaveOutcome, error) {
	if st.Outcome != common.OutcomeOK {
		return Skipped, fmt.Errorf("cannot store statement: %s", st.Outcome.Message())
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return Skipped, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	accountID, err := upsertAccount(ctx, tx, st.Bank, st.AccountNumber)
	if err != nil {
		return Skipped, err
	}

	existingID, exists, err := findStatement(ctx, tx, accountID, st.Checksum)
	if err != nil {
		return Skipped, err
	}

	outcome := Saved
	if exists {
		if !force {
			return Skipped, tx.Commit(ctx)
		}
		if err := deleteStatement(ctx, tx, existingID); err != nil {
			return Skipped, err
		}
		outcome = Replaced
	}

	statementID, err := insertStatement(ctx, tx, accountID, st)
	if err != nil {
		return Skipped, err
	}
	if err := copyRows(ctx, tx, statementID, st.Table.Rows); err != nil {
		return Skipped, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Skipped, fmt.Errorf("failed to commit: %w", err)
	}
	return outcome, nil
}

// Import extracts every PDF under path and stores the statements. Files are
// extracted in parallel and saved one at a time.
func (db *DB) Import(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	results, err := extractor.ProcessPath(ctx, path, opts.Bank, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", path, err)
	}

	log.Infof("Found %d files", len(results))

	result := &ImportResult{}
	for _, r := range results {
		db.importOne(ctx, r, opts, result)
	}
	return result, nil
}

func (db *DB) importOne(ctx context.Context, r extractor.Result, opts ImportOptions, result *ImportResult) {
	fileName := filepath.Base(r.Path)
	fail := func(format string, args ...any) {
		result.Failed++
		msg := fileName + ": " + fmt.Sprintf(format, args...)
		result.Errors = append(result.Errors, msg)
		if opts.Verbose {
			log.Warnf("FAIL %s", msg)
		}
	}

	if r.Err != nil {
		fail("%v", r.Err)
		return
	}
	st := r.Statement
	if st.Outcome != common.OutcomeOK {
		fail("%s", st.Outcome.Message())
		return
	}

	outcome, err := db.SaveStatement(ctx, st, opts.Force)
	if err != nil {
		fail("[%s] %v", st.AccountNumber, err)
		return
	}

	switch outcome {
	case Skipped:
		result.Skipped++
		if opts.Verbose {
			log.Infof("SKIP %s [%s] (already exists)", fileName, st.AccountNumber)
		}
	default:
		result.Processed++
		if opts.Verbose {
			log.Infof("OK   %s [%s] (%d rows)", fileName, st.AccountNumber, len(st.Table.Rows))
		}
	}
}
