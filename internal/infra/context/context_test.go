package context_test

import (
	"context"
	"testing"

	"github.com/everyio/tasktracker/internal/domain"
	context_ "github.com/everyio/tasktracker/internal/infra/context"
)

func TestUserFromContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	if user := context_.UserFromContext(ctx); user != nil {
		t.Errorf("UserFromContext() = %v, want nil", user)
	}

	alice := &domain.User{ID: "1", Username: "alice"}
	ctx = context_.WithUser(ctx, alice)

	if user := context_.UserFromContext(ctx); user != alice {
		t.Errorf("UserFromContext() = %v, want %v", user, alice)
	}
}

func TestTraceIDFromContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	if _, ok := context_.TraceIDFromContext(ctx); ok {
		t.Error("TraceIDFromContext() ok = true on empty context")
	}

	ctx = context_.WithTraceID(ctx, "trace-1")

	if traceID, ok := context_.TraceIDFromContext(ctx); !ok || traceID != "trace-1" {
		t.Errorf("TraceIDFromContext() = %q, %v, want %q, true", traceID, ok, "trace-1")
	}
}
