package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadOptions controls how a spreadsheet is sliced into a Table.
type ReadOptions struct {
	// HeaderRow is the zero-based index of the row holding column names.
	// Everything above it is discarded.
	HeaderRow int
	// Delimiter overrides the CSV field separator. Zero means comma.
	Delimiter rune
}

// ReadCSV parses CSV data into a Table. Rows may have ragged widths;
// short rows read as empty cells against the header.
func ReadCSV(r io.Reader, opts ReadOptions) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}

	grid, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return buildTable(grid, opts.HeaderRow)
}

// ReadXLSX parses the first sheet of an xlsx workbook into a Table.
func ReadXLSX(r io.Reader, opts ReadOptions) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return buildTable(grid, opts.HeaderRow)
}

// ReadTable dispatches on the file extension.
//
// Supported: .csv, .xlsx, .xlsm. Legacy .xls workbooks are rejected with
// a hint to resave, matching what the partner portals export today.
func ReadTable(filename string, r io.Reader, opts ReadOptions) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ReadCSV(r, opts)
	case ".xlsx", ".xlsm":
		return ReadXLSX(r, opts)
	case ".xls":
		return nil, fmt.Errorf("legacy .xls is not supported, resave %q as .xlsx", filename)
	default:
		return nil, fmt.Errorf("unsupported file type %q: expected .csv or .xlsx", filepath.Ext(filename))
	}
}
