package dataset

import (
	"fmt"
	"strings"
)

// Frame is an in-memory table parsed from an uploaded file.
// Cells are kept as the raw strings read from the file.
type Frame struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NewFrame creates a frame, padding short rows with empty cells so every row
// has one cell per column
func NewFrame(columns []string, rows [][]string) (*Frame, error) {
	for i, row := range rows {
		if len(row) > len(columns) {
			return nil, fmt.Errorf("row %d: expected %d fields, saw %d", i+1, len(columns), len(row))
		}
		if len(row) < len(columns) {
			padded := make([]string, len(columns))
			copy(padded, row)
			rows[i] = padded
		}
	}
	return &Frame{Columns: columns, Rows: rows}, nil
}

// NumRows returns the number of data rows
func (f *Frame) NumRows() int {
	return len(f.Rows)
}

// NumColumns returns the number of columns
func (f *Frame) NumColumns() int {
	return len(f.Columns)
}

// Index returns the position of the named column, or -1
func (f *Frame) Index(name string) int {
	for i, col := range f.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the frame contains the named column
func (f *Frame) HasColumn(name string) bool {
	return f.Index(name) >= 0
}

// Column returns the values of the named column in row order
func (f *Frame) Column(name string) []string {
	idx := f.Index(name)
	if idx < 0 {
		return nil
	}
	values := make([]string, len(f.Rows))
	for i, row := range f.Rows {
		values[i] = row[idx]
	}
	return values
}

// RowKey joins the given columns of row i into a single comparable key.
// Null cells are normalised so that every null token compares equal.
func (f *Frame) RowKey(i int, columns []int) string {
	var b strings.Builder
	for n, idx := range columns {
		if n > 0 {
			b.WriteByte(0x1f)
		}
		cell := f.Rows[i][idx]
		if IsNull(cell) {
			b.WriteString("\x00")
			continue
		}
		b.WriteString(cell)
	}
	return b.String()
}
