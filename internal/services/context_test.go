package services_test

import (
	"context"
	"testing"

	"redactor/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithExportID(ctx, "exp-1")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.ExportIDFromContext(ctx); !ok || id != "exp-1" {
		t.Fatalf("unexpected export id: %v %v", id, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := services.WithExportID(context.Background(), "")
	ctx = services.WithRequestID(ctx, "")
	if _, ok := services.ExportIDFromContext(ctx); ok {
		t.Fatal("expected no export id")
	}
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Fatal("expected no request id")
	}
}
