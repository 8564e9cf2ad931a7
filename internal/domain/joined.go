package domain

import "github.com/shopspring/decimal"

type Category string

const (
	CategoryMatchedBoth    Category = "matched_both"
	CategorySettlementOnly Category = "settlement_only"
	CategoryStatementOnly  Category = "statement_only"
)

// Code returns the reporting code used on exports and API payloads:
// 5 for matched pairs, 6 for settlement-only, 7 for statement-only.
func (c Category) Code() int {
	switch c {
	case CategoryMatchedBoth:
		return 5
	case CategorySettlementOnly:
		return 6
	case CategoryStatementOnly:
		return 7
	default:
		return 0
	}
}

type JoinedRecord struct {
	Identifier      string            `json:"identifier"`
	Category        Category          `json:"category"`
	Statement       *NormalizedRecord `json:"statement,omitempty"`
	Settlement      *NormalizedRecord `json:"settlement,omitempty"`
	Variance        *decimal.Decimal  `json:"variance,omitempty"`
	VariancePercent *decimal.Decimal  `json:"variance_percent,omitempty"`
}
