// Package normalize turns parsed partner extracts into tagged records
// ready for matching. Both normalizers share one tagging policy so a
// record means the same thing no matter which file it came from.
package normalize

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wakala/partner-recon/internal/domain"
)

// Result is the output of one normalization pass. Records holds every
// data row, eligible or not; Stats accounts for all of them.
type Result struct {
	Records   []*domain.NormalizedRecord
	RowErrors []domain.RowError
	Stats     domain.SourceStats
}

// SchemaError reports required columns missing from an input file. It is
// fatal to the whole request.
type SchemaError struct {
	Source  domain.Source
	Missing []string
	Found   []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns [%s]; found columns [%s]",
		strings.Join(e.Missing, ", "), strings.Join(e.Found, ", "))
}

func missingColumns(columns []string, required ...string) []string {
	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[c] = true
	}
	var missing []string
	for _, c := range required {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

// typeKey folds a transaction type label for comparison. Partner files
// are inconsistent about case and padding.
func typeKey(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// parseDecimal reads a monetary cell. Thousands separators are accepted;
// anything else non-numeric yields nil rather than an error, matching
// how the extracts mix blanks and text into amount columns.
func parseDecimal(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

// AmountStats reduces the derived amounts of a record batch to min, max
// and mean, skipping records without one. All nil when no record has an
// amount.
func AmountStats(records []*domain.NormalizedRecord) (min, max, mean *decimal.Decimal) {
	var total decimal.Decimal
	n := 0
	for _, rec := range records {
		if rec.Amount == nil {
			continue
		}
		v := *rec.Amount
		if n == 0 {
			min, max = &v, &v
		} else {
			if v.LessThan(*min) {
				lo := v
				min = &lo
			}
			if v.GreaterThan(*max) {
				hi := v
				max = &hi
			}
		}
		total = total.Add(v)
		n++
	}
	if n == 0 {
		return nil, nil, nil
	}
	m := total.Div(decimal.NewFromInt(int64(n))).Round(2)
	return min, max, &m
}

func tallyStats(records []*domain.NormalizedRecord, rowsRead, junkRows int) domain.SourceStats {
	stats := domain.SourceStats{
		RowsRead: rowsRead,
		JunkRows: junkRows,
		Records:  len(records),
	}
	for _, rec := range records {
		if rec.Eligible() {
			stats.Eligible++
			continue
		}
		switch rec.SkipReason {
		case domain.SkipTypeExcluded:
			stats.ExcludedByType++
		case domain.SkipDuplicatePin:
			stats.ExcludedDuplicate++
		case domain.SkipMissingIdentifier:
			stats.MissingIdentifier++
		case domain.SkipRowError:
			stats.RowErrors++
		}
	}
	return stats
}
