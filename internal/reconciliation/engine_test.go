package reconciliation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakala/partner-recon/internal/domain"
)

func eligible(src domain.Source, pin, amount string) *domain.NormalizedRecord {
	rec := &domain.NormalizedRecord{
		Identifier: pin,
		Type:       "Payment",
		Flag:       domain.FlagShouldReconcile,
		Source:     src,
	}
	if amount != "" {
		d := decimal.RequireFromString(amount)
		rec.Amount = &d
	}
	return rec
}

func excluded(src domain.Source, pin string, reason domain.SkipReason) *domain.NormalizedRecord {
	rec := eligible(src, pin, "")
	rec.Flag = domain.FlagShouldNotReconcile
	rec.SkipReason = reason
	return rec
}

func TestJoinCategories(t *testing.T) {
	statement := []*domain.NormalizedRecord{
		eligible(domain.SourceStatement, "11111111111", "100"),
		eligible(domain.SourceStatement, "22222222222", "200"),
	}
	settlement := []*domain.NormalizedRecord{
		eligible(domain.SourceSettlement, "22222222222", "200"),
		eligible(domain.SourceSettlement, "33333333333", "300"),
	}

	joined, warnings := Join(statement, settlement)
	assert.Empty(t, warnings)

	matched, settlementOnly, statementOnly := Partition(joined)
	require.Len(t, matched, 1)
	require.Len(t, settlementOnly, 1)
	require.Len(t, statementOnly, 1)
	assert.Equal(t, "22222222222", matched[0].Identifier)
	assert.Equal(t, "33333333333", settlementOnly[0].Identifier)
	assert.Equal(t, "11111111111", statementOnly[0].Identifier)

	// Without ambiguity every distinct identifier lands in exactly one
	// category.
	assert.Equal(t, 3, len(matched)+len(settlementOnly)+len(statementOnly))
}

func TestJoinVarianceSign(t *testing.T) {
	joined, _ := Join(
		[]*domain.NormalizedRecord{eligible(domain.SourceStatement, "11111111111", "100")},
		[]*domain.NormalizedRecord{eligible(domain.SourceSettlement, "11111111111", "95")},
	)
	require.Len(t, joined, 1)

	require.NotNil(t, joined[0].Variance)
	assert.True(t, joined[0].Variance.Equal(decimal.NewFromInt(-5)),
		"variance = %s", joined[0].Variance)
	require.NotNil(t, joined[0].VariancePercent)
	assert.True(t, joined[0].VariancePercent.Equal(decimal.NewFromInt(-5)),
		"variance percent = %s", joined[0].VariancePercent)
}

func TestJoinVariancePercentRounds(t *testing.T) {
	joined, _ := Join(
		[]*domain.NormalizedRecord{eligible(domain.SourceStatement, "11111111111", "300")},
		[]*domain.NormalizedRecord{eligible(domain.SourceSettlement, "11111111111", "301")},
	)
	require.Len(t, joined, 1)

	// 1/300 of 100 is 0.333..., rounded to two places.
	require.NotNil(t, joined[0].VariancePercent)
	assert.Equal(t, "0.33", joined[0].VariancePercent.String())
}

func TestJoinZeroStatementAmount(t *testing.T) {
	joined, _ := Join(
		[]*domain.NormalizedRecord{eligible(domain.SourceStatement, "11111111111", "0")},
		[]*domain.NormalizedRecord{eligible(domain.SourceSettlement, "11111111111", "50")},
	)
	require.Len(t, joined, 1)

	require.NotNil(t, joined[0].Variance)
	assert.True(t, joined[0].Variance.Equal(decimal.NewFromInt(50)))
	assert.Nil(t, joined[0].VariancePercent)
}

func TestJoinMissingAmounts(t *testing.T) {
	tests := []struct {
		name       string
		stmtAmount string
		settAmount string
	}{
		{"statement amount missing", "", "50"},
		{"settlement amount missing", "100", ""},
		{"both missing", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			joined, _ := Join(
				[]*domain.NormalizedRecord{eligible(domain.SourceStatement, "11111111111", tt.stmtAmount)},
				[]*domain.NormalizedRecord{eligible(domain.SourceSettlement, "11111111111", tt.settAmount)},
			)
			require.Len(t, joined, 1)
			assert.Equal(t, domain.CategoryMatchedBoth, joined[0].Category)
			assert.Nil(t, joined[0].Variance)
			assert.Nil(t, joined[0].VariancePercent)
		})
	}
}

func TestJoinSkipsIneligibleRows(t *testing.T) {
	statement := []*domain.NormalizedRecord{
		excluded(domain.SourceStatement, "11111111111", domain.SkipTypeExcluded),
		excluded(domain.SourceStatement, "", domain.SkipMissingIdentifier),
	}
	settlement := []*domain.NormalizedRecord{
		excluded(domain.SourceSettlement, "11111111111", domain.SkipDuplicatePin),
	}

	joined, warnings := Join(statement, settlement)
	assert.Empty(t, joined)
	assert.Empty(t, warnings)
}

func TestJoinEmptyStatement(t *testing.T) {
	settlement := []*domain.NormalizedRecord{
		eligible(domain.SourceSettlement, "11111111111", "10"),
		eligible(domain.SourceSettlement, "22222222222", "20"),
	}

	joined, _ := Join(nil, settlement)
	require.Len(t, joined, 2)
	for _, jr := range joined {
		assert.Equal(t, domain.CategorySettlementOnly, jr.Category)
		assert.Nil(t, jr.Statement)
	}
}

func TestJoinAmbiguousCrossProduct(t *testing.T) {
	statement := []*domain.NormalizedRecord{
		eligible(domain.SourceStatement, "11111111111", "100"),
		eligible(domain.SourceStatement, "11111111111", "110"),
	}
	settlement := []*domain.NormalizedRecord{
		eligible(domain.SourceSettlement, "11111111111", "105"),
	}

	joined, warnings := Join(statement, settlement)
	require.Len(t, joined, 2)
	for _, jr := range joined {
		assert.Equal(t, domain.CategoryMatchedBoth, jr.Category)
		assert.Same(t, settlement[0], jr.Settlement)
	}
	assert.Same(t, statement[0], joined[0].Statement)
	assert.Same(t, statement[1], joined[1].Statement)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "11111111111")
	assert.Contains(t, warnings[0], "ambiguous")
}

func TestJoinFirstSeenOrder(t *testing.T) {
	statement := []*domain.NormalizedRecord{
		eligible(domain.SourceStatement, "33333333333", "3"),
		eligible(domain.SourceStatement, "11111111111", "1"),
	}
	settlement := []*domain.NormalizedRecord{
		eligible(domain.SourceSettlement, "22222222222", "2"),
		eligible(domain.SourceSettlement, "11111111111", "1"),
	}

	joined, _ := Join(statement, settlement)
	var ids []string
	for _, jr := range joined {
		ids = append(ids, jr.Identifier)
	}
	// Statement identifiers first in row order, then unseen settlement ones.
	assert.Equal(t, []string{"33333333333", "11111111111", "22222222222"}, ids)
}

func TestJoinDeterministic(t *testing.T) {
	statement := []*domain.NormalizedRecord{
		eligible(domain.SourceStatement, "11111111111", "100"),
		eligible(domain.SourceStatement, "22222222222", "200"),
		eligible(domain.SourceStatement, "55555555555", "500"),
	}
	settlement := []*domain.NormalizedRecord{
		eligible(domain.SourceSettlement, "22222222222", "201"),
		eligible(domain.SourceSettlement, "44444444444", "400"),
		eligible(domain.SourceSettlement, "11111111111", "99"),
	}

	first, firstWarnings := Join(statement, settlement)
	second, secondWarnings := Join(statement, settlement)
	assert.Equal(t, first, second)
	assert.Equal(t, firstWarnings, secondWarnings)
}
