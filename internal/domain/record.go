package domain

import "github.com/shopspring/decimal"

type Source string

const (
	SourceStatement  Source = "statement"
	SourceSettlement Source = "settlement"
)

type ReconcileFlag string

const (
	FlagShouldReconcile    ReconcileFlag = "Should Reconcile"
	FlagShouldNotReconcile ReconcileFlag = "Should Not Reconcile"
)

type SkipReason string

const (
	SkipNone              SkipReason = ""
	SkipTypeExcluded      SkipReason = "type_excluded"
	SkipDuplicatePin      SkipReason = "duplicate_identifier"
	SkipMissingIdentifier SkipReason = "missing_identifier"
	SkipRowError          SkipReason = "row_error"
)

// RawRow is one parsed data row keyed by column name. Cells are kept as
// read from the file; numeric interpretation happens during normalization.
type RawRow map[string]string

type NormalizedRecord struct {
	Identifier string           `json:"identifier,omitempty"`
	Type       string           `json:"type"`
	Flag       ReconcileFlag    `json:"reconcile_flag"`
	SkipReason SkipReason       `json:"skip_reason,omitempty"`
	Amount     *decimal.Decimal `json:"amount"`
	Source     Source           `json:"source"`
	RowIndex   int              `json:"row_index"`
	Row        RawRow           `json:"columns"`
}

func (r *NormalizedRecord) Eligible() bool {
	return r.Flag == FlagShouldReconcile
}

// RowError records a single-row derivation failure. The row is excluded
// from eligibility and counted; the batch continues.
type RowError struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return e.Reason
}
