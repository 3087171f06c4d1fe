package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextHook_AddsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Hook(ContextHook{})

	ctx := WithBatchID(context.Background(), "batch-42")
	ctx = WithPath(ctx, "internal/app.go")

	logger.Info().Ctx(ctx).Msg("change settled")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log: %v", err)
	}

	if entry["batch_id"] != "batch-42" {
		t.Errorf("batch_id = %v, want %q", entry["batch_id"], "batch-42")
	}
	if entry["path"] != "internal/app.go" {
		t.Errorf("path = %v, want %q", entry["path"], "internal/app.go")
	}
}

func TestContextHook_NoContext(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Hook(ContextHook{})

	logger.Info().Msg("no context")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log: %v", err)
	}

	if _, ok := entry["batch_id"]; ok {
		t.Error("expected no batch_id field without context")
	}
	if _, ok := entry["path"]; ok {
		t.Error("expected no path field without context")
	}
}
