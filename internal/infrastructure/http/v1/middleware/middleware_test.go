package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"tradedesk/internal/core/apperror"
	appctx "tradedesk/internal/core/context"
	"tradedesk/internal/infrastructure/storage/postgres"
	"tradedesk/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticValidator struct {
	user *appctx.UserContext
}

func (v staticValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return v.user, nil
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func TestAuthAndPermission(t *testing.T) {
	clerk := &appctx.UserContext{UserID: "u1", Roles: []string{"clerk"}, Permissions: []string{"document:read"}}

	r := gin.New()
	r.Use(ErrorHandler(), Auth(staticValidator{user: clerk}))
	r.GET("/read", RequirePermission("document:read"), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/manage", RequirePermission("user:manage"), func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		path   string
		header string
		status int
		code   string
	}{
		{"missing header", "/read", "", http.StatusUnauthorized, apperror.CodeUnauthorized},
		{"wrong scheme", "/read", "Basic good", http.StatusUnauthorized, apperror.CodeUnauthorized},
		{"invalid token", "/read", "Bearer nope", http.StatusUnauthorized, apperror.CodeUnauthorized},
		{"granted", "/read", "Bearer good", http.StatusOK, ""},
		{"forbidden", "/manage", "bearer good", http.StatusForbidden, apperror.CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, errorCode(t, w))
			}
		})
	}
}

func TestRequirePermission_AdminPasses(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(), func(c *gin.Context) {
		c.Request = c.Request.WithContext(appctx.WithUser(c.Request.Context(), &appctx.UserContext{UserID: "a", IsAdmin: true}))
	})
	r.DELETE("/x", RequirePermission("catalog:write"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, httptest.NewRequest(http.MethodDelete, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestErrorHandler_RendersAppError(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.POST("/outward", func(c *gin.Context) {
		_ = c.Error(apperror.NewInsufficientStock("A-1", "3", "5"))
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/outward", nil))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperror.CodeInsufficientStock, body.Code)
	assert.Equal(t, "Insufficient Stock: Available 3, Required 5", body.Message)
	assert.Equal(t, "A-1", body.Details["product"])
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(), Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeInternal, errorCode(t, w))
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestIdempotency_PassesThroughWithoutKey(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	// A nil store is never touched when the header is absent.
	r.POST("/x", Idempotency(nil), func(c *gin.Context) {
		CompleteIdempotency(c, http.StatusCreated, "application/json", gin.H{})
		c.Status(http.StatusCreated)
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
}

type memIdempotency struct {
	replay    *postgres.IdempotencyReplay
	finishErr error
	completed []int
	failed    []int
}

func (m *memIdempotency) AcquireKey(ctx context.Context, key, userID, operation, requestHash string) (*postgres.IdempotencyReplay, error) {
	return m.replay, nil
}

func (m *memIdempotency) CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	m.completed = append(m.completed, statusCode)
	return m.finishErr
}

func (m *memIdempotency) FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	m.failed = append(m.failed, statusCode)
	return m.finishErr
}

func observedRouter(store IdempotencyStore) (*gin.Engine, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	l := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), l))
		c.Next()
	})
	r.Use(ErrorHandler())
	r.POST("/ok", Idempotency(store), func(c *gin.Context) {
		CompleteIdempotency(c, http.StatusCreated, "application/json", gin.H{"id": 1})
		c.JSON(http.StatusCreated, gin.H{"id": 1})
	})
	r.POST("/bad", Idempotency(store), func(c *gin.Context) {
		_ = c.Error(apperror.NewValidation("nope"))
	})
	return r, logs
}

func keyed(path string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"a":1}`))
	req.Header.Set(HeaderIdempotencyKey, "k-1")
	return req
}

func TestIdempotency_RecordsOutcome(t *testing.T) {
	store := &memIdempotency{}
	r, logs := observedRouter(store)

	assert.Equal(t, http.StatusCreated, serve(r, keyed("/ok")).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, keyed("/bad")).Code)

	assert.Equal(t, []int{http.StatusCreated}, store.completed)
	assert.Equal(t, []int{http.StatusBadRequest}, store.failed)
	assert.Zero(t, logs.Len())
}

func TestIdempotency_LogsFailedFinish(t *testing.T) {
	store := &memIdempotency{finishErr: errors.New("connection reset")}
	r, logs := observedRouter(store)

	w := serve(r, keyed("/ok"))
	assert.Equal(t, http.StatusCreated, w.Code, "the response is still sent")

	done := logs.FilterMessage("idempotency key not completed").All()
	require.Len(t, done, 1)
	assert.Equal(t, "k-1", done[0].ContextMap()["key"])
	assert.Equal(t, "connection reset", done[0].ContextMap()["error"])

	serve(r, keyed("/bad"))
	assert.Equal(t, 1, logs.FilterMessage("idempotency key not marked failed").Len())
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	store := &memIdempotency{replay: &postgres.IdempotencyReplay{
		StatusCode:  http.StatusCreated,
		ContentType: "application/json",
		Body:        []byte(`{"id":7}`),
	}}
	r, _ := observedRouter(store)

	w := serve(r, keyed("/ok"))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":7}`, w.Body.String())
	assert.Empty(t, store.completed, "the handler does not run again")
}
