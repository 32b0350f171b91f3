package postgres

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"tradedesk/internal/core/apperror"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"no rows", pgx.ErrNoRows, apperror.CodeNotFound, http.StatusNotFound},
		{"wrapped no rows", fmt.Errorf("get: %w", pgx.ErrNoRows), apperror.CodeNotFound, http.StatusNotFound},
		{"unique", &pgconn.PgError{Code: "23505", ConstraintName: "cat_products_code_key"}, apperror.CodeDuplicate, http.StatusConflict},
		{"foreign key", &pgconn.PgError{Code: "23503"}, apperror.CodeConflict, http.StatusConflict},
		{"check", &pgconn.PgError{Code: "23514", Message: "quantity must be positive"}, apperror.CodeValidation, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := MapError(tt.err, "product", "p-1")
			appErr, ok := apperror.AsAppError(mapped)
			if assert.True(t, ok) {
				assert.Equal(t, tt.code, appErr.Code)
				assert.Equal(t, tt.status, appErr.HTTPStatus)
			}
		})
	}
}

func TestMapError_PassThrough(t *testing.T) {
	assert.NoError(t, MapError(nil, "product", 1))

	appErr := apperror.NewValidation("bad")
	assert.Same(t, appErr, MapError(appErr, "product", 1))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, MapError(plain, "product", 1))
}

func TestSortedUnique(t *testing.T) {
	keys := []string{"stock:w2:p1", "stock:w1:p2", "stock:w2:p1", "stock:w1:p1"}
	assert.Equal(t, []string{"stock:w1:p1", "stock:w1:p2", "stock:w2:p1"}, sortedUnique(keys))
}
