package entity

import (
	"context"
	"time"

	"tradedesk/internal/core/apperror"
)

// Document is the base type for trade records: PI, PO, pickups, inward,
// outward and expenses. Number holds the voucher number.
type Document struct {
	BaseDocument

	Number  string    `db:"number" json:"number"`
	Date    time.Time `db:"date" json:"date"`
	Comment string    `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a document with a fresh id, dated now.
func NewDocument() Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         time.Now().UTC(),
	}
}

// Validate implements Validatable.
func (d *Document) Validate(ctx context.Context) error {
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}

// DocumentBase exposes the embedded Document through any document type.
func (d *Document) DocumentBase() *Document {
	return d
}

// DocumentRecord is implemented by every document type via its embedded Document.
type DocumentRecord interface {
	Validatable
	DocumentBase() *Document
}
