// Package exchange converts records to and from spreadsheet files: xlsx through
// excelize and CSV through gota dataframes.
package exchange

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"

	"tradedesk/internal/core/apperror"
)

// Format is an export file format.
type Format string

const (
	FormatXLSX    Format = "xlsx"
	FormatCSV     Format = "csv"
	FormatCSVGzip Format = "csv.gz"
)

// ParseFormat defaults to xlsx for an empty value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatXLSX, nil
	case FormatXLSX, FormatCSV, FormatCSVGzip:
		return f, nil
	default:
		return "", apperror.NewValidation("unsupported export format").
			WithDetail("field", "format").
			WithDetail("value", s)
	}
}

// ContentType returns the MIME type sent with an export in format f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatCSVGzip:
		return "application/gzip"
	default:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
}

// FileName returns base with the format's extension.
func (f Format) FileName(base string) string {
	return base + "." + string(f)
}

// Write encodes t in format f.
func Write(w io.Writer, t Table, f Format) error {
	switch f {
	case FormatXLSX:
		return WriteXLSX(w, t)
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatCSVGzip:
		return WriteCSVGzip(w, t)
	default:
		return fmt.Errorf("unsupported format %q", f)
	}
}

// WriteCSVGzip writes t as gzip-compressed CSV.
func WriteCSVGzip(w io.Writer, t Table) error {
	zw := gzip.NewWriter(w)
	if err := WriteCSV(zw, t); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}
