package normalize

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wakala/partner-recon/internal/domain"
	"github.com/wakala/partner-recon/internal/ingestion"
)

// StatementOptions locates the interesting columns in a statement
// extract and names the data rows the template pads with junk. The
// portal shifts its layout every few releases, so none of this is
// hard-coded.
type StatementOptions struct {
	// DescriptionColumn holds free text with the partner PIN buried in it.
	DescriptionColumn string
	// TypeColumn holds the transaction type label.
	TypeColumn string
	// AmountColumn holds the settled amount. Optional: when absent the
	// records carry no amount and matched variance degrades to null.
	AmountColumn string
	// RowFilter reports template junk among parsed data rows; rows where
	// it returns true are dropped and counted as junk. Nil keeps all rows.
	RowFilter func(i int, row domain.RawRow) bool
}

// DropRows builds a RowFilter dropping the given zero-based data row
// indices (the current export repeats a banner below the header).
func DropRows(rows ...int) func(int, domain.RawRow) bool {
	drop := make(map[int]bool, len(rows))
	for _, i := range rows {
		drop[i] = true
	}
	return func(i int, _ domain.RawRow) bool { return drop[i] }
}

func DefaultStatementOptions() StatementOptions {
	return StatementOptions{
		DescriptionColumn: "PQsTrOptOons",
		TypeColumn:        "Type",
		AmountColumn:      "Settle.Amt",
		RowFilter:         DropRows(0),
	}
}

// Statement normalizes the internal statement extract: junk rows out,
// PIN pulled from the description text, amounts parsed, rows tagged.
type Statement struct {
	opts StatementOptions
	log  *zap.Logger
}

func NewStatement(opts StatementOptions, log *zap.Logger) *Statement {
	if log == nil {
		log = zap.NewNop()
	}
	return &Statement{opts: opts, log: log}
}

// Normalize converts a parsed statement table into tagged records.
// A missing description or type column is a *SchemaError; an empty
// table yields an empty result.
func (s *Statement) Normalize(t *ingestion.Table) (*Result, error) {
	if missing := missingColumns(t.Columns, s.opts.TypeColumn, s.opts.DescriptionColumn); len(missing) > 0 {
		return nil, &SchemaError{Source: domain.SourceStatement, Missing: missing, Found: t.Columns}
	}

	hasAmount := s.opts.AmountColumn != "" && t.HasColumn(s.opts.AmountColumn)

	records := make([]*domain.NormalizedRecord, 0, len(t.Rows))
	dropped := 0
	for i, row := range t.Rows {
		if s.opts.RowFilter != nil && s.opts.RowFilter(i, row) {
			dropped++
			continue
		}
		rec := &domain.NormalizedRecord{
			Identifier: ExtractPIN(row[s.opts.DescriptionColumn]),
			Type:       strings.TrimSpace(row[s.opts.TypeColumn]),
			Source:     domain.SourceStatement,
			RowIndex:   i,
			Row:        row,
		}
		if hasAmount {
			rec.Amount = parseDecimal(row[s.opts.AmountColumn])
		}
		records = append(records, rec)
	}

	applyTags(records)

	res := &Result{
		Records: records,
		Stats:   tallyStats(records, t.Skipped+len(t.Rows), t.Skipped+dropped),
	}
	s.log.Debug("statement normalized",
		zap.Int("rows_read", res.Stats.RowsRead),
		zap.Int("records", res.Stats.Records),
		zap.Int("eligible", res.Stats.Eligible))
	return res, nil
}
