package services_test

import (
	"context"
	"testing"

	"meetscribe/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithSeries(ctx, "city_council")
	ctx = services.WithIdentifier(ctx, "council-2024-01-02")
	ctx = services.WithStage(ctx, "segments")
	ctx = services.WithRunID(ctx, "run-123")

	if name, ok := services.SeriesFromContext(ctx); !ok || name != "city_council" {
		t.Fatalf("unexpected series: %v %v", name, ok)
	}
	if id, ok := services.IdentifierFromContext(ctx); !ok || id != "council-2024-01-02" {
		t.Fatalf("unexpected identifier: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "segments" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RunIDFromContext(ctx); !ok || rid != "run-123" {
		t.Fatalf("unexpected run id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithIdentifier(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.IdentifierFromContext(ctx); ok {
		t.Fatal("expected no identifier value")
	}
}
