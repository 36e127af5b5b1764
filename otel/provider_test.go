package otel_test

import (
	"context"
	"testing"

	petalotel "github.com/petal-labs/dff/otel"
)

func TestNewTracerProvider(t *testing.T) {
	tp, err := petalotel.NewTracerProvider(context.Background(), "localhost:4318")
	if err != nil {
		t.Fatalf("NewTracerProvider returned error: %v", err)
	}
	if tp == nil {
		t.Fatal("NewTracerProvider returned a nil provider")
	}
	if err := tp.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown returned error: %v", err)
	}
}
