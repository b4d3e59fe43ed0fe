package notify

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerLevels(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	n := NewLogger(zap.New(core))

	n.Info("loading")
	n.Success("Conversation deleted.")
	n.Error("Failed to delete conversation.")

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	wantLevels := []zapcore.Level{zapcore.InfoLevel, zapcore.InfoLevel, zapcore.WarnLevel}
	wantKinds := []Level{LevelInfo, LevelSuccess, LevelError}
	for i, entry := range entries {
		if entry.Level != wantLevels[i] {
			t.Fatalf("entry %d: expected level %s, got %s", i, wantLevels[i], entry.Level)
		}
		if got := entry.ContextMap()["level"]; got != string(wantKinds[i]) {
			t.Fatalf("entry %d: expected kind %s, got %v", i, wantKinds[i], got)
		}
		if entry.LoggerName != "notify" {
			t.Fatalf("entry %d: expected logger name notify, got %q", i, entry.LoggerName)
		}
	}
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	var r Recorder
	r.Error("boom")
	r.Success("ok")

	got := r.All()
	if len(got) != 2 || got[0] != (Notification{Level: LevelError, Message: "boom"}) || got[1].Level != LevelSuccess {
		t.Fatalf("unexpected notifications: %#v", got)
	}
}
