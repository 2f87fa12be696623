package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"datacheck/domain/dataset"
	"datacheck/internal/errors"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Format is the container format of an uploaded table
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the format from the file extension; anything that is not
// a spreadsheet is read as CSV
func DetectFormat(filename string) Format {
	if strings.ToLower(filepath.Ext(filename)) == ".xlsx" {
		return FormatXLSX
	}
	return FormatCSV
}

// Reader parses uploaded CSV and Excel files into frames
type Reader struct {
	logger zerolog.Logger
}

// NewReader creates a reader
func NewReader(logger zerolog.Logger) *Reader {
	return &Reader{logger: logger}
}

// Read parses src according to the extension of filename. The first row is
// the header. Parse failures are reported as malformed-file errors.
func (r *Reader) Read(src io.Reader, filename string) (*dataset.Frame, error) {
	start := time.Now()
	format := DetectFormat(filename)

	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatXLSX:
		rows, err = readExcelRows(src)
	default:
		rows, err = readCSVRows(src)
	}
	if err != nil {
		return nil, errors.MalformedFile(filename, err)
	}

	frame, err := processRows(rows)
	if err != nil {
		return nil, errors.MalformedFile(filename, err)
	}

	r.logger.Debug().
		Str("file", filename).
		Str("format", string(format)).
		Int("columns", frame.NumColumns()).
		Int("rows", frame.NumRows()).
		Dur("elapsed", time.Since(start)).
		Msg("table parsed")
	return frame, nil
}

// readCSVRows reads every record. Short records are allowed here and padded
// later; long records are rejected by processRows.
func readCSVRows(src io.Reader) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

// readExcelRows reads the first sheet of a workbook
func readExcelRows(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// processRows splits off the header row and builds the frame
func processRows(rows [][]string) (*dataset.Frame, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no columns to parse from file")
	}

	headers := uniqueHeaders(rows[0])
	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = strings.TrimSpace(cell)
		}
		data = append(data, cells)
	}

	return dataset.NewFrame(headers, data)
}

// uniqueHeaders trims header names, names blank headers by position and
// suffixes repeated names with ".1", ".2", ...
func uniqueHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	suffix := make(map[string]int)
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		for base := name; used[name]; {
			suffix[base]++
			name = fmt.Sprintf("%s.%d", base, suffix[base])
		}
		used[name] = true
		headers[i] = name
	}
	return headers
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// EncodeCSV serializes a frame as CSV without a row index. When header is
// false the column names are omitted.
func EncodeCSV(frame *dataset.Frame, header bool) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if header {
		if err := w.Write(frame.Columns); err != nil {
			return nil, err
		}
	}
	if err := w.WriteAll(frame.Rows); err != nil {
		return nil, fmt.Errorf("failed to write CSV: %w", err)
	}
	return buf.Bytes(), nil
}
