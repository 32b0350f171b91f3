// Package dto provides the request and response bodies of the HTTP API.
package dto

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
	"tradedesk/internal/domain"
	"tradedesk/internal/domain/filter"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// ListQuery is the query string of every list endpoint.
type ListQuery struct {
	Search         string `form:"search"`
	Limit          int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset         int    `form:"offset" binding:"omitempty,min=0"`
	OrderBy        string `form:"order_by"`
	IncludeDeleted bool   `form:"include_deleted"`
	DateFrom       string `form:"date_from"`
	DateTo         string `form:"date_to"`
	// Filter is a JSON array of {field, operator, value}.
	Filter string `form:"filter"`
}

// ToFilter converts q into a domain filter, applying the default page size.
func (q ListQuery) ToFilter() (domain.ListFilter, error) {
	f := domain.DefaultListFilter()
	f.Search = strings.TrimSpace(q.Search)
	if q.Limit > 0 {
		f.Limit = q.Limit
	}
	f.Offset = q.Offset
	f.OrderBy = q.OrderBy
	f.IncludeDeleted = q.IncludeDeleted

	var err error
	if f.DateFrom, err = parseDateParam("date_from", q.DateFrom); err != nil {
		return f, err
	}
	if f.DateTo, err = parseDateParam("date_to", q.DateTo); err != nil {
		return f, err
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(*f.DateTo) {
		return f, apperror.NewValidation("date_from must not be after date_to")
	}

	if q.Filter != "" {
		var items []filter.Item
		if err := json.Unmarshal([]byte(q.Filter), &items); err != nil {
			return f, apperror.NewValidation("invalid filter format (json expected)")
		}
		f.AdvancedFilters = items
	}
	return f, nil
}

func parseDateParam(name, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := parseDate(v)
	if err != nil {
		return nil, apperror.NewValidation("invalid date").WithDetail("field", name)
	}
	return &t, nil
}

// Date accepts "2006-01-02" or RFC 3339.
type Date struct {
	time.Time
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// UnmarshalJSON accepts YYYY-MM-DD or RFC 3339.
func (d *Date) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := parseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// MarshalJSON writes the date as YYYY-MM-DD.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(time.DateOnly))
}

// Ptr returns nil for a zero date.
func (d *Date) Ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// IDsRequest carries the ids of a bulk operation.
type IDsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,max=1000"`
}

// Parse validates every id.
func (r IDsRequest) Parse() ([]id.ID, error) {
	ids, err := id.ParseList(r.IDs)
	if err != nil {
		return nil, apperror.NewValidation(err.Error()).WithDetail("field", "ids")
	}
	return ids, nil
}

// ExportRequest selects records for export. Without ids the first MaxExport
// records are exported.
type ExportRequest struct {
	IDs    []string `json:"ids"`
	Format string   `json:"format" binding:"omitempty,oneof=xlsx csv csv.gz"`
}

const MaxExport = 10_000

// ParseIDs returns nil when no ids were sent, meaning export everything.
func (r ExportRequest) ParseIDs() ([]id.ID, error) {
	if len(r.IDs) == 0 {
		return nil, nil
	}
	return IDsRequest{IDs: r.IDs}.Parse()
}

// ListResponse wraps one page of results.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// FromListResult converts a domain page. Items is never null in JSON.
func FromListResult[T any](r domain.ListResult[T]) ListResponse[T] {
	items := r.Items
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, TotalCount: r.TotalCount, Limit: r.Limit, Offset: r.Offset}
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
