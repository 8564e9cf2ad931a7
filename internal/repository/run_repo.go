package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/wakala/partner-recon/internal/domain"
)

// RunRepo persists the audit ledger of reconciliation runs. Only the
// headline figures of a run are stored; joined rows never touch disk.
type RunRepo struct {
	db *sql.DB
}

func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db}
}

func (r *RunRepo) Insert(run *domain.Run) error {
	_, err := r.db.Exec(
		`INSERT INTO runs
		(id, started_at, duration_ms, statement_file, settlement_file,
		 statement_hash, settlement_hash, statement_rows, settlement_rows,
		 statement_eligible, settlement_eligible, row_errors,
		 matched_both, settlement_only, statement_only, total_variance, warning_count)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.StartedAt.Format(time.RFC3339), run.DurationMS,
		run.StatementFile, run.SettlementFile,
		run.StatementHash, run.SettlementHash,
		run.StatementRows, run.SettlementRows,
		run.StatementEligible, run.SettlementEligible, run.RowErrors,
		run.MatchedBoth, run.SettlementOnly, run.StatementOnly,
		run.TotalVariance, run.WarningCount,
	)
	return err
}

// GetByID returns one run, or nil when the ID is unknown.
func (r *RunRepo) GetByID(id string) (*domain.Run, error) {
	rows, err := r.db.Query("SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanRun(rows)
}

type RunFilter struct {
	// Hash matches either input file's SHA-256, for "have we seen this
	// extract before" lookups.
	Hash  string
	From  *time.Time
	To    *time.Time
	Page  int
	Limit int
}

// List returns runs newest first, plus the unpaginated total.
func (r *RunRepo) List(f RunFilter) ([]domain.Run, int, error) {
	where, args := buildRunWhere(f)

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM runs"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	offset := (f.Page - 1) * f.Limit

	q := "SELECT " + runColumns + " FROM runs" + where + " ORDER BY started_at DESC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, offset)

	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, *run)
	}
	return runs, total, rows.Err()
}

func buildRunWhere(f RunFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.Hash != "" {
		clauses = append(clauses, "(statement_hash = ? OR settlement_hash = ?)")
		args = append(args, f.Hash, f.Hash)
	}
	if f.From != nil {
		clauses = append(clauses, "started_at >= ?")
		args = append(args, f.From.Format(time.RFC3339))
	}
	if f.To != nil {
		clauses = append(clauses, "started_at <= ?")
		args = append(args, f.To.Format(time.RFC3339))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

const runColumns = `id, started_at, duration_ms, statement_file, settlement_file,
	statement_hash, settlement_hash, statement_rows, settlement_rows,
	statement_eligible, settlement_eligible, row_errors,
	matched_both, settlement_only, statement_only, total_variance, warning_count`

func scanRun(rows *sql.Rows) (*domain.Run, error) {
	var run domain.Run
	var startedStr string

	err := rows.Scan(
		&run.ID, &startedStr, &run.DurationMS,
		&run.StatementFile, &run.SettlementFile,
		&run.StatementHash, &run.SettlementHash,
		&run.StatementRows, &run.SettlementRows,
		&run.StatementEligible, &run.SettlementEligible, &run.RowErrors,
		&run.MatchedBoth, &run.SettlementOnly, &run.StatementOnly,
		&run.TotalVariance, &run.WarningCount,
	)
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	run.StartedAt, _ = time.Parse(time.RFC3339, startedStr)
	return &run, nil
}
