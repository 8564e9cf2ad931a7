package normalize

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wakala/partner-recon/internal/domain"
	"github.com/wakala/partner-recon/internal/ingestion"
)

// SettlementSchema names the columns of a settlement extract. Partners
// ship different templates, so every name is caller-supplied.
type SettlementSchema struct {
	PinColumn    string
	TypeColumn   string
	PayoutColumn string
	RateColumn   string
}

func DefaultSettlementSchema() SettlementSchema {
	return SettlementSchema{
		PinColumn:    "Partner_Pin",
		TypeColumn:   "Type",
		PayoutColumn: "PayoutRoundAmt",
		RateColumn:   "APIRate",
	}
}

// Settlement normalizes a partner settlement extract: the PIN is read
// straight from its column, and the comparable amount is derived as
// payout divided by rate.
type Settlement struct {
	schema SettlementSchema
	log    *zap.Logger
}

func NewSettlement(schema SettlementSchema, log *zap.Logger) *Settlement {
	if log == nil {
		log = zap.NewNop()
	}
	return &Settlement{schema: schema, log: log}
}

// Normalize converts a parsed settlement table into tagged records. All
// four schema columns are required; any missing one is a *SchemaError.
//
// A zero or non-numeric rate fails only that row: it is recorded as a
// RowError, excluded from eligibility, and the batch continues. A blank
// or non-numeric payout leaves the amount null without failing the row.
func (s *Settlement) Normalize(t *ingestion.Table) (*Result, error) {
	missing := missingColumns(t.Columns,
		s.schema.PinColumn, s.schema.TypeColumn, s.schema.PayoutColumn, s.schema.RateColumn)
	if len(missing) > 0 {
		return nil, &SchemaError{Source: domain.SourceSettlement, Missing: missing, Found: t.Columns}
	}

	records := make([]*domain.NormalizedRecord, 0, len(t.Rows))
	var rowErrors []domain.RowError
	for i, row := range t.Rows {
		rec := &domain.NormalizedRecord{
			Type:     strings.TrimSpace(row[s.schema.TypeColumn]),
			Source:   domain.SourceSettlement,
			RowIndex: i,
			Row:      row,
		}
		if pin := strings.TrimSpace(row[s.schema.PinColumn]); ValidPIN(pin) {
			rec.Identifier = pin
		}

		rate := parseDecimal(row[s.schema.RateColumn])
		switch {
		case rate == nil:
			rowErrors = append(rowErrors, s.rowError(rec, i, fmt.Sprintf("rate %q is not numeric", row[s.schema.RateColumn])))
		case rate.IsZero():
			rowErrors = append(rowErrors, s.rowError(rec, i, "rate is zero"))
		default:
			if payout := parseDecimal(row[s.schema.PayoutColumn]); payout != nil {
				est := payout.Div(*rate)
				rec.Amount = &est
			}
		}
		records = append(records, rec)
	}

	applyTags(records)

	res := &Result{
		Records:   records,
		RowErrors: rowErrors,
		Stats:     tallyStats(records, t.Skipped+len(t.Rows), t.Skipped),
	}
	s.log.Debug("settlement normalized",
		zap.Int("rows_read", res.Stats.RowsRead),
		zap.Int("records", res.Stats.Records),
		zap.Int("eligible", res.Stats.Eligible),
		zap.Int("row_errors", res.Stats.RowErrors))
	return res, nil
}

func (s *Settlement) rowError(rec *domain.NormalizedRecord, row int, reason string) domain.RowError {
	rec.SkipReason = domain.SkipRowError
	s.log.Warn("settlement row excluded",
		zap.Int("row", row),
		zap.String("column", s.schema.RateColumn),
		zap.String("reason", reason))
	return domain.RowError{Row: row, Column: s.schema.RateColumn, Reason: reason}
}
