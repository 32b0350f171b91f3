package exchange

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"tradedesk/internal/core/id"
	"tradedesk/internal/core/types"
)

// Table is a single sheet of export data.
type Table struct {
	Sheet   string
	Headers []string
	Rows    [][]any
}

// Column extracts one exported value from T.
type Column[T any] struct {
	Header string
	Value  func(T) any
}

// BuildTable renders items with cols, one row per item.
func BuildTable[T any](sheet string, cols []Column[T], items []T) Table {
	t := Table{Sheet: sheet, Headers: make([]string, len(cols)), Rows: make([][]any, 0, len(items))}
	for i, c := range cols {
		t.Headers[i] = c.Header
	}
	for _, item := range items {
		row := make([]any, len(cols))
		for i, c := range cols {
			row[i] = c.Value(item)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Records returns the header followed by every row as strings.
func (t Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, append([]string(nil), t.Headers...))
	for _, row := range t.Rows {
		rec := make([]string, len(t.Headers))
		for i := range rec {
			if i < len(row) {
				rec[i] = cellString(row[i])
			}
		}
		out = append(out, rec)
	}
	return out
}

const dateLayout = "2006-01-02"

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *string:
		if x == nil {
			return ""
		}
		return *x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case decimal.Decimal:
		return x.String()
	case types.Quantity:
		return x.Display()
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(dateLayout)
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.Format(dateLayout)
	case id.ID:
		if id.IsNil(x) {
			return ""
		}
		return x.String()
	case *id.ID:
		if x == nil {
			return ""
		}
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

// cellValue keeps numbers numeric so spreadsheets can sum them.
func cellValue(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.InexactFloat64()
	case types.Quantity:
		return x.Float64()
	case int, int64, bool:
		return x
	default:
		return cellString(v)
	}
}
