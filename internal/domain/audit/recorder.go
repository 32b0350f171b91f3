package audit

import (
	"context"
	"time"

	"tradedesk/internal/core/id"
)

// Action names an audited operation.
type Action string

const (
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionInward     Action = "inward"
	ActionCloseShort Action = "close_short"
	ActionReopen     Action = "reopen"
	ActionPayment    Action = "payment"
)

// Entry is one audit log row as returned to clients.
type Entry struct {
	ID         id.ID          `json:"id"`
	EntityType string         `json:"entity_type"`
	EntityID   id.ID          `json:"entity_id"`
	Action     Action         `json:"action"`
	UserID     string         `json:"user_id,omitempty"`
	Changes    map[string]any `json:"changes,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Recorder writes audit entries within the caller's transaction.
type Recorder interface {
	Record(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error
	History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]Entry, error)
}

// Nop discards entries. Used in tests and tools that have no audit table.
type Nop struct{}

func (Nop) Record(context.Context, string, id.ID, Action, map[string]any) error { return nil }

func (Nop) History(context.Context, string, id.ID, int) ([]Entry, error) { return nil, nil }
