package msgcat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderEmbeddedDefaults(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("select.already_explored", map[string]any{"Treasure": 42})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, "42") {
		t.Fatalf("template data not substituted: %q", got)
	}
	if _, err := c.Render("no.such.key", nil); err == nil {
		t.Fatalf("missing key must error")
	}
}

func TestRenderOrFallsBack(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.RenderOr("no.such.key", nil, "fallback"); got != "fallback" {
		t.Fatalf("RenderOr = %q", got)
	}
	if got := c.RenderOr("dive.complete_title", nil, "fallback"); got != "Dive Complete!" {
		t.Fatalf("RenderOr = %q", got)
	}
}

func TestOverrideDirReplacesDefaults(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "custom.yaml"),
		[]byte("dive:\n  complete_title: \"Surfaced!\"\n"), 0o644)
	if err != nil {
		t.Fatalf("write override: %v", err)
	}

	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("dive.complete_title", nil)
	if err != nil || got != "Surfaced!" {
		t.Fatalf("override not applied: %q err=%v", got, err)
	}
	// Untouched keys keep their embedded values.
	if got := c.RenderOr("hint.dark", nil, ""); !strings.Contains(got, "dark") {
		t.Fatalf("embedded default lost: %q", got)
	}
}

func TestOverrideDirRejectsDuplicateKeys(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yaml"} {
		err := os.WriteFile(filepath.Join(dir, name),
			[]byte("dive:\n  complete_title: \"X\"\n"), 0o644)
		if err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("duplicate override keys must be rejected")
	}
}
