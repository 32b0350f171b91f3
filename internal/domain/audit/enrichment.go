// Package audit stamps audit fields and records trade actions in the audit log.
package audit

import (
	"context"
	"time"

	appctx "tradedesk/internal/core/context"
	"tradedesk/internal/core/entity"
)

// StampCreated sets CreatedBy/UpdatedBy and both timestamps on a new document.
// Without an authenticated user only the timestamps change.
func StampCreated(ctx context.Context, doc *entity.BaseDocument) {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if userID := appctx.GetUserID(ctx); userID != "" {
		doc.CreatedBy = userID
		doc.UpdatedBy = userID
	}
}

// StampUpdated sets UpdatedBy and UpdatedAt.
func StampUpdated(ctx context.Context, doc *entity.BaseDocument) {
	doc.UpdatedAt = time.Now().UTC()
	if userID := appctx.GetUserID(ctx); userID != "" {
		doc.UpdatedBy = userID
	}
}
