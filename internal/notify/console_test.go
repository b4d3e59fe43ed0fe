package notify

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsolePlain(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c := NewConsole(&buf, true, false)

	c.Success("Conversation deleted.")
	c.Error("Failed to delete the conversation.")

	want := "[success] Conversation deleted.\n[error] Failed to delete the conversation.\n"
	if buf.String() != want {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestConsoleColored(t *testing.T) {
	t.Parallel()

	for _, dark := range []bool{true, false} {
		var buf bytes.Buffer
		NewConsole(&buf, dark, true).Info("loading")

		out := buf.String()
		if !strings.Contains(out, "[info] loading") || !strings.HasPrefix(out, "\x1b[") {
			t.Fatalf("dark=%v: expected styled line, got %q", dark, out)
		}
	}
}

func TestMulti(t *testing.T) {
	t.Parallel()

	a, b := &Recorder{}, &Recorder{}
	m := Multi{a, b}
	m.Info("i")
	m.Success("s")
	m.Error("e")

	for _, r := range []*Recorder{a, b} {
		got := r.All()
		if len(got) != 3 || got[2].Level != LevelError || got[2].Message != "e" {
			t.Fatalf("unexpected notifications %+v", got)
		}
	}
}

func TestConsoleSetDark(t *testing.T) {
	t.Parallel()

	var light, dark bytes.Buffer
	NewConsole(&light, false, true).Info("x")
	NewConsole(&dark, true, true).Info("x")

	var switched bytes.Buffer
	c := NewConsole(&switched, false, true)
	c.SetDark(true)
	c.Info("x")

	got := switched.String()
	if got != dark.String() || got == light.String() {
		t.Fatalf("expected dark palette after switch, got %q", got)
	}

	var plain bytes.Buffer
	c = NewConsole(&plain, false, false)
	c.SetDark(true)
	c.Info("x")
	if plain.String() != "[info] x\n" {
		t.Fatalf("plain console must stay uncolored, got %q", plain.String())
	}
}
