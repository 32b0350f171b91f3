// Package entity provides the base records every catalog and document embeds.
package entity

import (
	"context"
	"time"

	"tradedesk/internal/core/id"
)

// Validatable is implemented by records that check their own invariants
// without touching the database.
type Validatable interface {
	Validate(ctx context.Context) error
}

// BaseEntity contains the fields shared by catalogs and documents.
type BaseEntity struct {
	ID           id.ID      `db:"id" json:"id"`
	DeletionMark bool       `db:"deletion_mark" json:"deletion_mark"`
	Version      int        `db:"version" json:"version"`
	Attributes   Attributes `db:"attributes" json:"attributes,omitempty"`
}

// NewBaseEntity creates a BaseEntity with a fresh UUIDv7 and version 1.
func NewBaseEntity() BaseEntity {
	return BaseEntity{
		ID:      id.New(),
		Version: 1,
	}
}

// EnsureID assigns an id and version 1 to a record built without a constructor.
func (b *BaseEntity) EnsureID() {
	if id.IsNil(b.ID) {
		b.ID = id.New()
	}
	if b.Version == 0 {
		b.Version = 1
	}
}

// Touch bumps the version.
func (b *BaseEntity) Touch() {
	b.Version++
}

// BaseDocument adds audit fields.
type BaseDocument struct {
	BaseEntity

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	CreatedBy string    `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy string    `db:"updated_by" json:"updated_by,omitempty"`
}

// NewBaseDocument creates a base with a fresh id and timestamps set to now.
func NewBaseDocument() BaseDocument {
	now := time.Now().UTC()
	return BaseDocument{
		BaseEntity: NewBaseEntity(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Touch bumps UpdatedAt and the version.
func (b *BaseDocument) Touch() {
	b.UpdatedAt = time.Now().UTC()
	b.BaseEntity.Touch()
}
