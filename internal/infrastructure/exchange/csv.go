package exchange

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// All columns stay strings; codes like "007" must not become numbers.
func loadOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	}
}

// WriteCSV writes t through a gota dataframe.
func WriteCSV(w io.Writer, t Table) error {
	if len(t.Headers) == 0 {
		return fmt.Errorf("table has no columns")
	}
	// gota refuses a frame without data rows.
	if len(t.Rows) == 0 {
		cw := csv.NewWriter(w)
		if err := cw.Write(t.Headers); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	}
	df := dataframe.LoadRecords(t.Records(), loadOptions()...)
	if err := df.Error(); err != nil {
		return fmt.Errorf("build dataframe: %w", err)
	}
	return df.WriteCSV(w)
}

// readCSV returns the header followed by every data row.
func readCSV(r io.Reader) ([][]string, error) {
	opts := append(loadOptions(), dataframe.WithLazyQuotes(true))
	df := dataframe.ReadCSV(r, opts...)
	if err := df.Error(); err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return df.Records(), nil
}
