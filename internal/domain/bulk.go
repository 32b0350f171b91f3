package domain

import (
	"context"

	"tradedesk/internal/core/apperror"
	"tradedesk/internal/core/id"
)

// BulkFailure describes one id that could not be processed.
type BulkFailure struct {
	ID    id.ID  `json:"id"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

// BulkDeleteResult reports partial success separately from failures.
type BulkDeleteResult struct {
	DeletedCount int           `json:"deleted_count"`
	FailedCount  int           `json:"failed_count"`
	Failed       []BulkFailure `json:"failed"`
}

// BulkDelete calls del for every id independently. One failure never stops
// or rolls back the others. Cancelling ctx stops the loop and reports the
// remaining ids as failed.
func BulkDelete(ctx context.Context, ids []id.ID, del func(ctx context.Context, id id.ID) error) BulkDeleteResult {
	res := BulkDeleteResult{Failed: []BulkFailure{}}

	for _, entityID := range ids {
		err := ctx.Err()
		if err == nil {
			err = del(ctx, entityID)
		}
		if err == nil {
			res.DeletedCount++
			continue
		}

		failure := BulkFailure{ID: entityID, Code: apperror.CodeInternal, Error: err.Error()}
		if appErr, ok := apperror.AsAppError(err); ok {
			failure.Code = appErr.Code
			failure.Error = appErr.Message
		}
		res.Failed = append(res.Failed, failure)
		res.FailedCount++
	}
	return res
}

// UploadResult reports a bulk upload.
type UploadResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}
