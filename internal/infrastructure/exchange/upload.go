package exchange

import (
	"bufio"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"tradedesk/internal/core/apperror"
)

// Record is one uploaded data row keyed by normalized header.
type Record struct {
	// Row is the 1-based data row, not counting the header.
	Row    int
	values map[string]string
}

// Get returns the first non-empty value among keys.
func (r Record) Get(keys ...string) string {
	for _, k := range keys {
		if v := r.values[k]; v != "" {
			return v
		}
	}
	return ""
}

// Optional is Get returning nil for an empty value.
func (r Record) Optional(keys ...string) *string {
	if v := r.Get(keys...); v != "" {
		return &v
	}
	return nil
}

// NewRecord builds a record from header/value pairs.
func NewRecord(row int, values map[string]string) Record {
	norm := make(map[string]string, len(values))
	for k, v := range values {
		norm[normalizeHeader(k)] = strings.TrimSpace(v)
	}
	return Record{Row: row, values: norm}
}

// ReadUpload parses an .xlsx, .csv or .csv.gz upload. Blank rows are skipped.
func ReadUpload(filename string, r io.Reader) ([]Record, error) {
	name := strings.ToLower(filename)

	var (
		rows [][]string
		err  error
	)
	switch {
	case strings.HasSuffix(name, ".csv.gz"):
		zr, zerr := gzip.NewReader(bufio.NewReader(r))
		if zerr != nil {
			return nil, apperror.NewValidation("invalid gzip file").WithCause(zerr)
		}
		defer zr.Close()
		rows, err = readCSV(zr)
	case filepath.Ext(name) == ".csv":
		rows, err = readCSV(r)
	case filepath.Ext(name) == ".xlsx":
		rows, err = readXLSX(r)
	default:
		return nil, apperror.NewValidation("unsupported file type, expected .xlsx or .csv").
			WithDetail("file", filename)
	}
	if err != nil {
		return nil, apperror.NewValidation("could not read uploaded file").
			WithDetail("file", filename).
			WithCause(err)
	}
	return toRecords(rows)
}

func toRecords(rows [][]string) ([]Record, error) {
	if len(rows) < 2 {
		return nil, apperror.NewValidation("file has no data rows")
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = normalizeHeader(h)
	}

	out := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		values := make(map[string]string, len(headers))
		for i, h := range headers {
			if h == "" || i >= len(row) {
				continue
			}
			values[h] = strings.TrimSpace(row[i])
		}
		out = append(out, Record{Row: len(out) + 1, values: values})
	}
	if len(out) == 0 {
		return nil, apperror.NewValidation("file has no data rows")
	}
	return out, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// normalizeHeader maps "Default Rate" and "default-rate" to "default_rate".
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(h)
}
