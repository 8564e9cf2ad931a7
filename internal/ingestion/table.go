package ingestion

import (
	"fmt"
	"strings"

	"github.com/wakala/partner-recon/internal/domain"
)

// HeaderError reports a header row that could not be located, either
// because the file is shorter than the configured offset or because the
// row holds no usable column names.
type HeaderError struct {
	HeaderRow int
	RowCount  int
	Empty     bool
}

func (e *HeaderError) Error() string {
	if e.Empty {
		return fmt.Sprintf("header row %d has no column names", e.HeaderRow)
	}
	return fmt.Sprintf("header row %d out of range: file has %d rows", e.HeaderRow, e.RowCount)
}

// Table is a parsed spreadsheet: the header row's column names plus every
// data row below it. Skipped is the number of physical rows discarded
// above the header (report banners, addresses, blank lines).
type Table struct {
	Columns []string
	Rows    []domain.RawRow
	Skipped int
}

func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// buildTable converts a raw cell grid into a Table using the row at
// headerRow as column names. Rows shorter than the header read as empty
// cells; cells past the header are dropped. When two header cells carry
// the same name the first one keeps it.
func buildTable(grid [][]string, headerRow int) (*Table, error) {
	if headerRow < 0 || headerRow >= len(grid) {
		return nil, &HeaderError{HeaderRow: headerRow, RowCount: len(grid)}
	}

	header := grid[headerRow]
	columns := make([]string, 0, len(header))
	seen := make(map[string]bool, len(header))
	keep := make([]bool, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		keep[i] = true
		header[i] = name
		columns = append(columns, name)
	}
	if len(columns) == 0 {
		return nil, &HeaderError{HeaderRow: headerRow, RowCount: len(grid), Empty: true}
	}

	rows := make([]domain.RawRow, 0, len(grid)-headerRow-1)
	for _, cells := range grid[headerRow+1:] {
		row := make(domain.RawRow, len(columns))
		for i, name := range header {
			if !keep[i] {
				continue
			}
			if i < len(cells) {
				row[name] = cells[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}

	return &Table{Columns: columns, Rows: rows, Skipped: headerRow}, nil
}
