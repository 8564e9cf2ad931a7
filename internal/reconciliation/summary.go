package reconciliation

import (
	"github.com/shopspring/decimal"

	"github.com/wakala/partner-recon/internal/domain"
)

// Summarize reduces a join result to headline figures. Variance
// statistics cover matched records with a computable variance only; an
// empty matched set yields a zero sum and null mean/max/min. Aggregates
// are rounded to cents; per-row variances stay exact.
func Summarize(joined []*domain.JoinedRecord, statement, settlement domain.SourceStats, warnings []string) *domain.Summary {
	sum := &domain.Summary{
		Statement:  statement,
		Settlement: settlement,
		Warnings:   warnings,
	}

	var variances []decimal.Decimal
	for _, jr := range joined {
		switch jr.Category {
		case domain.CategoryMatchedBoth:
			sum.MatchedBoth++
			if jr.Variance != nil {
				variances = append(variances, *jr.Variance)
			}
		case domain.CategorySettlementOnly:
			sum.SettlementOnly++
		case domain.CategoryStatementOnly:
			sum.StatementOnly++
		}
	}

	sum.TotalVariance = decimal.Zero
	if len(variances) == 0 {
		return sum
	}

	total := decimal.Zero
	max := variances[0]
	min := variances[0]
	for _, v := range variances {
		total = total.Add(v)
		if v.GreaterThan(max) {
			max = v
		}
		if v.LessThan(min) {
			min = v
		}
	}
	avg := total.Div(decimal.NewFromInt(int64(len(variances)))).Round(2)
	total = total.Round(2)
	max = max.Round(2)
	min = min.Round(2)

	sum.TotalVariance = total
	sum.AvgVariance = &avg
	sum.MaxVariance = &max
	sum.MinVariance = &min
	return sum
}
