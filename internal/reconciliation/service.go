package reconciliation

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wakala/partner-recon/internal/domain"
	"github.com/wakala/partner-recon/internal/ingestion"
	"github.com/wakala/partner-recon/internal/normalize"
	"github.com/wakala/partner-recon/internal/repository"
)

// File is one uploaded extract: the client-supplied name (used for
// format dispatch) plus the raw bytes.
type File struct {
	Name string
	Data []byte
}

// InputError wraps any failure attributable to one input file, keeping
// which side failed so callers can report it against the right upload.
type InputError struct {
	Source domain.Source
	Err    error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s error: %v", e.Source, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Params carries the per-request template knobs: how each file is read
// (header placement, delimiter), which statement columns matter, and the
// settlement schema. Zero values are not usable; start from config
// defaults.
type Params struct {
	StatementRead    ingestion.ReadOptions
	StatementOptions normalize.StatementOptions
	SettlementRead   ingestion.ReadOptions
	SettlementSchema normalize.SettlementSchema
}

// Result is one complete reconciliation run.
type Result struct {
	RunID   string
	Summary *domain.Summary

	MatchedBoth    []*domain.JoinedRecord
	SettlementOnly []*domain.JoinedRecord
	StatementOnly  []*domain.JoinedRecord

	Statement  *normalize.Result
	Settlement *normalize.Result

	// Column orders of the parsed inputs, kept for stable exports.
	StatementColumns  []string
	SettlementColumns []string
}

// Service runs the full pipeline: parse both extracts, normalize, join,
// summarize, and record the run in the audit ledger.
type Service struct {
	runs *repository.RunRepo
	log  *zap.Logger
}

// NewService creates a reconciliation service. runs may be nil, in which
// case no audit record is written.
func NewService(runs *repository.RunRepo, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{runs: runs, log: log}
}

// ProcessStatement parses and normalizes one statement extract,
// returning the result and the file's column order. Failures come back
// as *InputError tagged with the statement source.
func (s *Service) ProcessStatement(f File, read ingestion.ReadOptions, opts normalize.StatementOptions) (*normalize.Result, []string, error) {
	t, err := ingestion.ReadTable(f.Name, bytes.NewReader(f.Data), read)
	if err != nil {
		return nil, nil, &InputError{Source: domain.SourceStatement, Err: err}
	}
	res, err := normalize.NewStatement(opts, s.log).Normalize(t)
	if err != nil {
		return nil, nil, &InputError{Source: domain.SourceStatement, Err: err}
	}
	return res, t.Columns, nil
}

// ProcessSettlement is the settlement counterpart of ProcessStatement.
func (s *Service) ProcessSettlement(f File, read ingestion.ReadOptions, schema normalize.SettlementSchema) (*normalize.Result, []string, error) {
	t, err := ingestion.ReadTable(f.Name, bytes.NewReader(f.Data), read)
	if err != nil {
		return nil, nil, &InputError{Source: domain.SourceSettlement, Err: err}
	}
	res, err := normalize.NewSettlement(schema, s.log).Normalize(t)
	if err != nil {
		return nil, nil, &InputError{Source: domain.SourceSettlement, Err: err}
	}
	return res, t.Columns, nil
}

// Reconcile processes one statement/settlement pair. A parse or schema
// problem in either file aborts the run with an *InputError; row-level
// failures are absorbed into the Summary counts instead.
func (s *Service) Reconcile(statement, settlement File, p Params) (*Result, error) {
	started := time.Now()

	stRes, stCols, err := s.ProcessStatement(statement, p.StatementRead, p.StatementOptions)
	if err != nil {
		return nil, err
	}
	seRes, seCols, err := s.ProcessSettlement(settlement, p.SettlementRead, p.SettlementSchema)
	if err != nil {
		return nil, err
	}

	joined, warnings := Join(stRes.Records, seRes.Records)
	cat5, cat6, cat7 := Partition(joined)
	summary := Summarize(joined, stRes.Stats, seRes.Stats, warnings)

	result := &Result{
		RunID:             uuid.NewString(),
		Summary:           summary,
		MatchedBoth:       cat5,
		SettlementOnly:    cat6,
		StatementOnly:     cat7,
		Statement:         stRes,
		Settlement:        seRes,
		StatementColumns:  stCols,
		SettlementColumns: seCols,
	}

	s.log.Info("reconciliation complete",
		zap.String("run_id", result.RunID),
		zap.Int("statement_records", summary.Statement.Records),
		zap.Int("settlement_records", summary.Settlement.Records),
		zap.Int("matched", summary.MatchedBoth),
		zap.Int("settlement_only", summary.SettlementOnly),
		zap.Int("statement_only", summary.StatementOnly),
		zap.Int("warnings", len(summary.Warnings)),
		zap.Duration("took", time.Since(started)))

	if s.runs != nil {
		run := buildRun(result, statement, settlement, started)
		if err := s.runs.Insert(run); err != nil {
			// The ledger is advisory; a full result still goes back.
			s.log.Warn("persist run failed", zap.String("run_id", result.RunID), zap.Error(err))
		}
	}

	return result, nil
}

func buildRun(res *Result, statement, settlement File, started time.Time) *domain.Run {
	sum := res.Summary
	return &domain.Run{
		ID:                 res.RunID,
		StartedAt:          started.UTC(),
		DurationMS:         time.Since(started).Milliseconds(),
		StatementFile:      statement.Name,
		SettlementFile:     settlement.Name,
		StatementHash:      fmt.Sprintf("%x", sha256.Sum256(statement.Data)),
		SettlementHash:     fmt.Sprintf("%x", sha256.Sum256(settlement.Data)),
		StatementRows:      sum.Statement.Records,
		SettlementRows:     sum.Settlement.Records,
		StatementEligible:  sum.Statement.Eligible,
		SettlementEligible: sum.Settlement.Eligible,
		RowErrors:          sum.Statement.RowErrors + sum.Settlement.RowErrors,
		MatchedBoth:        sum.MatchedBoth,
		SettlementOnly:     sum.SettlementOnly,
		StatementOnly:      sum.StatementOnly,
		TotalVariance:      sum.TotalVariance.String(),
		WarningCount:       len(sum.Warnings),
	}
}
