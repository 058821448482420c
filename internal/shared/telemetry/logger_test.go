package telemetry

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInfoWritesSortedFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prev := L()
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })

	Info("summary.fetch", map[string]any{
		"job_id": "job-1",
		"status": 200,
	})
	Error("summary.fetch_failed", map[string]any{"err": errors.New("boom")})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["job_id"] != "job-1" {
		t.Fatalf("expected job_id field, got %v", ctx["job_id"])
	}
	if entries[1].Level != zap.ErrorLevel {
		t.Fatalf("expected error level, got %v", entries[1].Level)
	}
	if got := entries[1].ContextMap()["err"]; got != "boom" {
		t.Fatalf("expected err=boom, got %v", got)
	}
}

func TestSetLoggerNilInstallsNop(t *testing.T) {
	prev := L()
	t.Cleanup(func() { SetLogger(prev) })
	SetLogger(nil)
	Info("ignored", nil)
}
