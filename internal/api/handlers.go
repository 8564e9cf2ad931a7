package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wakala/partner-recon/internal/config"
	"github.com/wakala/partner-recon/internal/domain"
	"github.com/wakala/partner-recon/internal/normalize"
	"github.com/wakala/partner-recon/internal/reconciliation"
	"github.com/wakala/partner-recon/internal/repository"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	svc  *reconciliation.Service
	runs *repository.RunRepo
	cfg  *config.Configuration
	log  *zap.Logger
}

// --- helpers ---

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("encode response", zap.Error(err))
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// writeServiceError maps engine failures onto status codes: anything
// attributable to one uploaded file is 422, the rest is 500.
func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	var ie *reconciliation.InputError
	if errors.As(err, &ie) {
		h.writeError(w, http.StatusUnprocessableEntity, ie.Error())
		return
	}
	h.writeError(w, http.StatusInternalServerError, err.Error())
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02", s)
		if err != nil {
			return nil
		}
	}
	return &t
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}

// formFile pulls one named upload out of an already-parsed multipart
// form and rejects extensions no reader supports.
func formFile(r *http.Request, field string) (reconciliation.File, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return reconciliation.File{}, errors.New(field + " file field is required")
	}
	defer file.Close()

	if !validUpload(header.Filename) {
		return reconciliation.File{}, errors.New(field + " must be a CSV or Excel file")
	}
	data, err := readUpload(file)
	if err != nil {
		return reconciliation.File{}, errors.New("read " + field + ": " + err.Error())
	}
	return reconciliation.File{Name: header.Filename, Data: data}, nil
}

func readUpload(f multipart.File) ([]byte, error) {
	return io.ReadAll(f)
}

func validUpload(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xls", ".xlsx", ".xlsm":
		return true
	}
	return false
}

// schemaOverrides folds the caller's query-string column names over the
// configured template. The settlement portal renames columns often
// enough that the UI exposes these as advanced options. The reconcile
// endpoint prefixes the settlement params to keep both files' knobs
// apart; the single-file preview uses the bare names.
func schemaOverrides(r *http.Request, p *reconciliation.Params, settlementPrefix string) {
	q := r.URL.Query()
	if v := q.Get("statement_amount_col"); v != "" {
		p.StatementOptions.AmountColumn = v
	}
	if v := q.Get(settlementPrefix + "pin_col"); v != "" {
		p.SettlementSchema.PinColumn = v
	}
	if v := q.Get(settlementPrefix + "type_col"); v != "" {
		p.SettlementSchema.TypeColumn = v
	}
	if v := q.Get(settlementPrefix + "payout_col"); v != "" {
		p.SettlementSchema.PayoutColumn = v
	}
	if v := q.Get(settlementPrefix + "rate_col"); v != "" {
		p.SettlementSchema.RateColumn = v
	}
}

// --- row views ---

// joinedRow flattens one joined record the way the results UI expects:
// statement columns prefixed st_, settlement columns set_, derived
// fields appended. Absent sides serialize as nulls.
func joinedRow(jr *domain.JoinedRecord, stCols, seCols []string) map[string]any {
	row := map[string]any{
		"Partner_Pin":      jr.Identifier,
		"Category":         jr.Category.Code(),
		"Variance":         jr.Variance,
		"Variance_Percent": jr.VariancePercent,
	}
	appendPrefixed(row, "st_", jr.Statement, stCols)
	appendPrefixed(row, "set_", jr.Settlement, seCols)
	return row
}

func appendPrefixed(row map[string]any, prefix string, rec *domain.NormalizedRecord, cols []string) {
	for _, c := range cols {
		if rec == nil {
			row[prefix+c] = nil
		} else {
			row[prefix+c] = rec.Row[c]
		}
	}
	if rec == nil {
		row[prefix+"Reconcile_Tag"] = nil
		return
	}
	row[prefix+"Reconcile_Tag"] = string(rec.Flag)
	if rec.Source == domain.SourceSettlement {
		row[prefix+"Estimate_Amount_USD"] = rec.Amount
	}
}

func joinedRows(records []*domain.JoinedRecord, limit int, stCols, seCols []string) []map[string]any {
	if limit < len(records) {
		records = records[:limit]
	}
	rows := make([]map[string]any, 0, len(records))
	for _, jr := range records {
		rows = append(rows, joinedRow(jr, stCols, seCols))
	}
	return rows
}

// recordRow is the preview shape for a single normalized record: the
// original columns plus the derived audit fields.
func recordRow(rec *domain.NormalizedRecord, cols []string) map[string]any {
	row := make(map[string]any, len(cols)+4)
	for _, c := range cols {
		row[c] = rec.Row[c]
	}
	row["Partner_Pin"] = rec.Identifier
	row["Estimate_Amount_USD"] = rec.Amount
	row["Reconcile_Tag"] = string(rec.Flag)
	row["Skip_Reason"] = string(rec.SkipReason)
	return row
}

// --- Reconcile ---

func (h *Handlers) Reconcile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.uploadLimit()); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	statement, err := formFile(r, "statement_file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	settlement, err := formFile(r, "settlement_file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := h.cfg.Params()
	schemaOverrides(r, &p, "settlement_")
	limit := parseIntDefault(r.URL.Query().Get("limit"), h.cfg.Display.RowLimit)

	result, err := h.svc.Reconcile(statement, settlement, p)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "done",
		"run_id":     result.RunID,
		"summary":    result.Summary,
		"category_5": joinedRows(result.MatchedBoth, limit, result.StatementColumns, result.SettlementColumns),
		"category_6": joinedRows(result.SettlementOnly, limit, result.StatementColumns, result.SettlementColumns),
		"category_7": joinedRows(result.StatementOnly, limit, result.StatementColumns, result.SettlementColumns),
		"pagination": map[string]any{
			"limit":            limit,
			"category_5_total": len(result.MatchedBoth),
			"category_6_total": len(result.SettlementOnly),
			"category_7_total": len(result.StatementOnly),
		},
	})
}

// --- NormalizeStatement / NormalizeSettlement ---

func (h *Handlers) NormalizeStatement(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.uploadLimit()); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	f, err := formFile(r, "file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := h.cfg.Params()

	res, cols, err := h.svc.ProcessStatement(f, p.StatementRead, p.StatementOptions)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	found := 0
	for _, rec := range res.Records {
		if rec.Identifier != "" {
			found++
		}
	}
	h.writePreview(w, res, cols, map[string]any{
		"total":        len(res.Records),
		"pins_found":   found,
		"pins_missing": len(res.Records) - found,
		"tags":         tagCounts(res.Records),
	})
}

func (h *Handlers) NormalizeSettlement(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.uploadLimit()); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	f, err := formFile(r, "file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := h.cfg.Params()
	schemaOverrides(r, &p, "")

	res, cols, err := h.svc.ProcessSettlement(f, p.SettlementRead, p.SettlementSchema)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	min, max, mean := normalize.AmountStats(res.Records)
	h.writePreview(w, res, cols, map[string]any{
		"total": len(res.Records),
		"tags":  tagCounts(res.Records),
		"amount_stats": map[string]any{
			"min":  min,
			"max":  max,
			"mean": mean,
		},
	})
}

func tagCounts(records []*domain.NormalizedRecord) map[string]int {
	counts := make(map[string]int, 2)
	for _, rec := range records {
		counts[string(rec.Flag)]++
	}
	return counts
}

func (h *Handlers) writePreview(w http.ResponseWriter, res *normalize.Result, cols []string, stats map[string]any) {
	limit := h.cfg.Display.PreviewLimit
	records := res.Records
	if limit < len(records) {
		records = records[:limit]
	}
	rows := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, recordRow(rec, cols))
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "done",
		"stats":         stats,
		"row_errors":    res.RowErrors,
		"columns":       cols,
		"preview":       rows,
		"preview_limit": limit,
	})
}

func (h *Handlers) uploadLimit() int64 {
	return int64(h.cfg.Server.MaxUploadMB) << 20
}

// --- Runs ---

func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		h.writeError(w, http.StatusServiceUnavailable, "run ledger is disabled")
		return
	}

	q := r.URL.Query()
	filter := repository.RunFilter{
		Hash:  q.Get("hash"),
		From:  parseTime(q.Get("from")),
		To:    parseTime(q.Get("to")),
		Page:  parseIntDefault(q.Get("page"), 1),
		Limit: parseIntDefault(q.Get("limit"), 50),
	}

	runs, total, err := h.runs.List(filter)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	})
}

func (h *Handlers) GetRun(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		h.writeError(w, http.StatusServiceUnavailable, "run ledger is disabled")
		return
	}

	id := chi.URLParam(r, "id")
	run, err := h.runs.GetByID(id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		h.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	h.writeJSON(w, http.StatusOK, run)
}

// --- Health ---

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "partner-recon",
	})
}
