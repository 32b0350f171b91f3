package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceContext_LogFields(t *testing.T) {
	tc := &TraceContext{TraceID: "t1", RequestID: "r1"}
	assert.Equal(t, []any{"trace_id", "t1", "request_id", "r1"}, tc.LogFields())

	ctx := WithTrace(context.Background(), tc)
	assert.Same(t, tc, GetTrace(ctx))
	assert.Nil(t, GetTrace(context.Background()))
}

func TestHasPermission(t *testing.T) {
	ctx := WithUser(context.Background(), &UserContext{UserID: "u", Roles: []string{"clerk"}, Permissions: []string{"document:write"}})
	assert.True(t, HasPermission(ctx, "document:write"))
	assert.False(t, HasPermission(ctx, "user:manage"))
	assert.True(t, HasRole(ctx, "clerk"))
	assert.Equal(t, "u", GetUserID(ctx))

	admin := WithUser(context.Background(), &UserContext{IsAdmin: true})
	assert.True(t, HasPermission(admin, "user:manage"))

	assert.False(t, HasPermission(context.Background(), "document:read"))
	assert.Empty(t, GetUserID(context.Background()))
}
