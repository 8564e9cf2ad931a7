package domain

import "github.com/shopspring/decimal"

// SourceStats accounts for every row read from one input file. Rows
// leave the pipeline only through one of these counters.
type SourceStats struct {
	RowsRead          int `json:"rows_read"`
	JunkRows          int `json:"junk_rows"`
	Records           int `json:"records"`
	Eligible          int `json:"eligible"`
	ExcludedByType    int `json:"excluded_by_type"`
	ExcludedDuplicate int `json:"excluded_duplicate"`
	MissingIdentifier int `json:"missing_identifier"`
	RowErrors         int `json:"row_errors"`
}

type Summary struct {
	Statement  SourceStats `json:"statement"`
	Settlement SourceStats `json:"settlement"`

	MatchedBoth    int `json:"category_5_count"`
	SettlementOnly int `json:"category_6_count"`
	StatementOnly  int `json:"category_7_count"`

	TotalVariance decimal.Decimal  `json:"total_variance"`
	AvgVariance   *decimal.Decimal `json:"avg_variance"`
	MaxVariance   *decimal.Decimal `json:"max_variance"`
	MinVariance   *decimal.Decimal `json:"min_variance"`

	Warnings []string `json:"warnings,omitempty"`
}
