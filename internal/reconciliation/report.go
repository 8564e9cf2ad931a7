package reconciliation

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wakala/partner-recon/internal/domain"
)

// WriteReport renders the operator-facing text report the back office
// pastes into the daily reconciliation thread.
func WriteReport(w io.Writer, sum *domain.Summary) error {
	banner := strings.Repeat("=", 50)
	rule := strings.Repeat("-", 20)

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", banner)
	fmt.Fprintf(&b, "       RECONCILIATION REPORT\n")
	fmt.Fprintf(&b, "%s\n\n", banner)

	fmt.Fprintf(&b, "INPUT DATA\n%s\n", rule)
	fmt.Fprintf(&b, "Statement Records: %d (%d eligible)\n", sum.Statement.Records, sum.Statement.Eligible)
	fmt.Fprintf(&b, "Settlement Records: %d (%d eligible)\n\n", sum.Settlement.Records, sum.Settlement.Eligible)

	fmt.Fprintf(&b, "EXCLUDED\n%s\n", rule)
	fmt.Fprintf(&b, "Statement: type=%d duplicate=%d no-pin=%d errors=%d\n",
		sum.Statement.ExcludedByType, sum.Statement.ExcludedDuplicate,
		sum.Statement.MissingIdentifier, sum.Statement.RowErrors)
	fmt.Fprintf(&b, "Settlement: type=%d duplicate=%d no-pin=%d errors=%d\n\n",
		sum.Settlement.ExcludedByType, sum.Settlement.ExcludedDuplicate,
		sum.Settlement.MissingIdentifier, sum.Settlement.RowErrors)

	fmt.Fprintf(&b, "RESULTS\n%s\n", rule)
	fmt.Fprintf(&b, "Cat 5 (Both): %d\n", sum.MatchedBoth)
	fmt.Fprintf(&b, "Cat 6 (Settlement only): %d\n", sum.SettlementOnly)
	fmt.Fprintf(&b, "Cat 7 (Statement only): %d\n\n", sum.StatementOnly)

	fmt.Fprintf(&b, "VARIANCE\n%s\n", rule)
	fmt.Fprintf(&b, "Total: %s\n", dollars(&sum.TotalVariance))
	fmt.Fprintf(&b, "Average: %s\n", dollars(sum.AvgVariance))
	fmt.Fprintf(&b, "Max: %s\n", dollars(sum.MaxVariance))
	fmt.Fprintf(&b, "Min: %s\n", dollars(sum.MinVariance))

	if len(sum.Warnings) > 0 {
		fmt.Fprintf(&b, "\nWARNINGS\n%s\n", rule)
		for _, warn := range sum.Warnings {
			fmt.Fprintf(&b, "! %s\n", warn)
		}
	}

	fmt.Fprintf(&b, "\n%s\n", banner)
	_, err := io.WriteString(w, b.String())
	return err
}

func dollars(d *decimal.Decimal) string {
	if d == nil {
		return "n/a"
	}
	return "$" + d.StringFixed(2)
}
