package reconciliation

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/wakala/partner-recon/internal/domain"
	"github.com/wakala/partner-recon/internal/normalize"
)

// WriteProcessedCSV exports one normalized side as CSV: the original
// columns in file order, then the derived fields the back office audits
// against (extracted PIN, derived amount, tag, skip reason).
func WriteProcessedCSV(w io.Writer, res *normalize.Result, columns []string) error {
	cw := csv.NewWriter(w)

	header := append(append([]string{}, columns...),
		"Partner_Pin", "Estimate_Amount_USD", "Reconcile_Tag", "Skip_Reason")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, 0, len(header))
	for _, rec := range res.Records {
		row = row[:0]
		for _, c := range columns {
			row = append(row, rec.Row[c])
		}
		amount := ""
		if rec.Amount != nil {
			amount = rec.Amount.String()
		}
		row = append(row, rec.Identifier, amount, string(rec.Flag), string(rec.SkipReason))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", rec.RowIndex, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCategoryCSV exports one category table. Statement columns carry
// an st_ prefix and settlement columns a set_ prefix so the two sides
// stay distinguishable after the join.
func WriteCategoryCSV(w io.Writer, records []*domain.JoinedRecord, statementCols, settlementCols []string) error {
	cw := csv.NewWriter(w)

	header := []string{"Partner_Pin", "Category"}
	for _, c := range statementCols {
		header = append(header, "st_"+c)
	}
	for _, c := range settlementCols {
		header = append(header, "set_"+c)
	}
	header = append(header, "Variance", "Variance_Percent")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, jr := range records {
		row := make([]string, 0, len(header))
		row = append(row, jr.Identifier, fmt.Sprintf("%d", jr.Category.Code()))
		row = appendSide(row, jr.Statement, statementCols)
		row = appendSide(row, jr.Settlement, settlementCols)
		variance := ""
		if jr.Variance != nil {
			variance = jr.Variance.String()
		}
		pct := ""
		if jr.VariancePercent != nil {
			pct = jr.VariancePercent.String()
		}
		row = append(row, variance, pct)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func appendSide(row []string, rec *domain.NormalizedRecord, columns []string) []string {
	for _, c := range columns {
		if rec == nil {
			row = append(row, "")
		} else {
			row = append(row, rec.Row[c])
		}
	}
	return row
}
