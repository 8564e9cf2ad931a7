package reconciliation

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakala/partner-recon/internal/domain"
	"github.com/wakala/partner-recon/internal/normalize"
)

func parseCSV(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	rows, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteProcessedCSV(t *testing.T) {
	amount := decimal.RequireFromString("250.5")
	res := &normalize.Result{
		Records: []*domain.NormalizedRecord{
			{
				Identifier: "11111111111",
				Flag:       domain.FlagShouldReconcile,
				Amount:     &amount,
				Row:        domain.RawRow{"Type": "Payment", "PQsTrOptOons": "Payout ref 11111111111"},
			},
			{
				Flag:       domain.FlagShouldNotReconcile,
				SkipReason: domain.SkipMissingIdentifier,
				Row:        domain.RawRow{"Type": "Payment", "PQsTrOptOons": "Fee"},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteProcessedCSV(&buf, res, []string{"Type", "PQsTrOptOons"}))

	rows := parseCSV(t, &buf)
	require.Len(t, rows, 3)
	assert.Equal(t,
		[]string{"Type", "PQsTrOptOons", "Partner_Pin", "Estimate_Amount_USD", "Reconcile_Tag", "Skip_Reason"},
		rows[0])
	assert.Equal(t,
		[]string{"Payment", "Payout ref 11111111111", "11111111111", "250.5", "Should Reconcile", ""},
		rows[1])
	assert.Equal(t,
		[]string{"Payment", "Fee", "", "", "Should Not Reconcile", "missing_identifier"},
		rows[2])
}

func TestWriteCategoryCSV(t *testing.T) {
	stAmount := decimal.NewFromInt(100)
	seAmount := decimal.NewFromInt(95)
	variance := decimal.NewFromInt(-5)
	pct := decimal.RequireFromString("-5")

	records := []*domain.JoinedRecord{
		{
			Identifier: "11111111111",
			Category:   domain.CategoryMatchedBoth,
			Statement: &domain.NormalizedRecord{
				Identifier: "11111111111",
				Amount:     &stAmount,
				Row:        domain.RawRow{"Settle.Amt": "100.00"},
			},
			Settlement: &domain.NormalizedRecord{
				Identifier: "11111111111",
				Amount:     &seAmount,
				Row:        domain.RawRow{"PayoutRoundAmt": "12255"},
			},
			Variance:        &variance,
			VariancePercent: &pct,
		},
		{
			Identifier: "22222222222",
			Category:   domain.CategorySettlementOnly,
			Settlement: &domain.NormalizedRecord{
				Identifier: "22222222222",
				Row:        domain.RawRow{"PayoutRoundAmt": "9000"},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCategoryCSV(&buf, records, []string{"Settle.Amt"}, []string{"PayoutRoundAmt"}))

	rows := parseCSV(t, &buf)
	require.Len(t, rows, 3)
	assert.Equal(t,
		[]string{"Partner_Pin", "Category", "st_Settle.Amt", "set_PayoutRoundAmt", "Variance", "Variance_Percent"},
		rows[0])
	assert.Equal(t,
		[]string{"11111111111", "5", "100.00", "12255", "-5", "-5"},
		rows[1])
	// The absent statement side exports as empty cells.
	assert.Equal(t,
		[]string{"22222222222", "6", "", "9000", "", ""},
		rows[2])
}
