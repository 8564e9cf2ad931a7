package domain

import "time"

// Run is the audit record persisted for each reconciliation request.
// It stores headline figures only, never the joined rows themselves.
type Run struct {
	ID                 string    `json:"id"`
	StartedAt          time.Time `json:"started_at"`
	DurationMS         int64     `json:"duration_ms"`
	StatementFile      string    `json:"statement_file"`
	SettlementFile     string    `json:"settlement_file"`
	StatementHash      string    `json:"statement_hash"`
	SettlementHash     string    `json:"settlement_hash"`
	StatementRows      int       `json:"statement_rows"`
	SettlementRows     int       `json:"settlement_rows"`
	StatementEligible  int       `json:"statement_eligible"`
	SettlementEligible int       `json:"settlement_eligible"`
	RowErrors          int       `json:"row_errors"`
	MatchedBoth        int       `json:"category_5_count"`
	SettlementOnly     int       `json:"category_6_count"`
	StatementOnly      int       `json:"category_7_count"`
	TotalVariance      string    `json:"total_variance"`
	WarningCount       int       `json:"warning_count"`
}
