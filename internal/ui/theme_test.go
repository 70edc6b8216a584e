package ui

import (
	"strings"
	"testing"
)

func TestRenderer_PlainPassesThrough(t *testing.T) {
	r, err := NewRenderer(Options{Color: false, Markdown: true})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	src := "# Products\n\n- **1**: GrainMate\n"
	if got := r.Markdown(src); got != src {
		t.Fatalf("plain renderer changed markdown: %q", got)
	}
	if got := r.Theme.Error.Render("ERROR: x"); got != "ERROR: x" {
		t.Fatalf("plain theme changed text: %q", got)
	}
}

func TestRenderer_MarkdownKeepsContent(t *testing.T) {
	r, err := NewRenderer(Options{Color: true, Markdown: true, Width: 60})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	out := r.Markdown("# Products\n\n- GrainMate\n")
	if !strings.Contains(out, "GrainMate") {
		t.Fatalf("rendered markdown lost content: %q", out)
	}
}
