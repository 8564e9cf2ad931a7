package reconciliation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wakala/partner-recon/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Join filters both record sets to eligible rows and outer-joins them on
// the identifier. Output order is deterministic: identifiers appear in
// first-seen order (statement pass, then settlement pass), and pairings
// follow source row order within each identifier.
//
// Identifiers are expected to be unique per side once tagging has run.
// When duplicates survive anyway (several "Cancel" rows sharing a PIN),
// every cross-product pairing is emitted and the ambiguity is returned
// as a warning instead of silently picking one row.
func Join(statement, settlement []*domain.NormalizedRecord) ([]*domain.JoinedRecord, []string) {
	type bucket struct {
		stmt []*domain.NormalizedRecord
		sett []*domain.NormalizedRecord
	}

	var order []string
	buckets := make(map[string]*bucket)
	add := func(id string) *bucket {
		b, ok := buckets[id]
		if !ok {
			b = &bucket{}
			buckets[id] = b
			order = append(order, id)
		}
		return b
	}

	for _, rec := range statement {
		if rec.Eligible() {
			b := add(rec.Identifier)
			b.stmt = append(b.stmt, rec)
		}
	}
	for _, rec := range settlement {
		if rec.Eligible() {
			b := add(rec.Identifier)
			b.sett = append(b.sett, rec)
		}
	}

	var joined []*domain.JoinedRecord
	var warnings []string
	for _, id := range order {
		b := buckets[id]
		if len(b.stmt) > 1 || len(b.sett) > 1 {
			warnings = append(warnings, fmt.Sprintf(
				"identifier %s is ambiguous: %d eligible statement rows, %d eligible settlement rows",
				id, len(b.stmt), len(b.sett)))
		}
		switch {
		case len(b.stmt) > 0 && len(b.sett) > 0:
			for _, st := range b.stmt {
				for _, se := range b.sett {
					joined = append(joined, matchedPair(id, st, se))
				}
			}
		case len(b.stmt) > 0:
			for _, st := range b.stmt {
				joined = append(joined, &domain.JoinedRecord{
					Identifier: id,
					Category:   domain.CategoryStatementOnly,
					Statement:  st,
				})
			}
		default:
			for _, se := range b.sett {
				joined = append(joined, &domain.JoinedRecord{
					Identifier: id,
					Category:   domain.CategorySettlementOnly,
					Settlement: se,
				})
			}
		}
	}

	return joined, warnings
}

// matchedPair builds a category-5 record. Variance is settlement minus
// statement; the percentage is against the statement amount, rounded to
// two decimal places. A zero statement amount leaves the percentage
// null, and a missing amount on either side leaves both null.
func matchedPair(id string, st, se *domain.NormalizedRecord) *domain.JoinedRecord {
	jr := &domain.JoinedRecord{
		Identifier: id,
		Category:   domain.CategoryMatchedBoth,
		Statement:  st,
		Settlement: se,
	}
	if st.Amount == nil || se.Amount == nil {
		return jr
	}
	v := se.Amount.Sub(*st.Amount)
	jr.Variance = &v
	if !st.Amount.IsZero() {
		pct := v.Div(*st.Amount).Mul(hundred).Round(2)
		jr.VariancePercent = &pct
	}
	return jr
}

// Partition splits joined records into the three category tables,
// preserving join order.
func Partition(joined []*domain.JoinedRecord) (matched, settlementOnly, statementOnly []*domain.JoinedRecord) {
	for _, jr := range joined {
		switch jr.Category {
		case domain.CategoryMatchedBoth:
			matched = append(matched, jr)
		case domain.CategorySettlementOnly:
			settlementOnly = append(settlementOnly, jr)
		case domain.CategoryStatementOnly:
			statementOnly = append(statementOnly, jr)
		}
	}
	return matched, settlementOnly, statementOnly
}
