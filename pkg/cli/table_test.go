package cli

import (
	"strings"
	"testing"
)

func TestTable_Render(t *testing.T) {
	tbl := NewTable("NAME", "DIMENSION", "METRIC")
	tbl.AddRow("articles", "1536", "cosine")
	tbl.AddRow("kb", "768", "dot")

	out := tbl.Render()

	for _, want := range []string{"NAME", "DIMENSION", "METRIC", "articles", "1536", "cosine", "kb", "768", "dot"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// Header, separator, two rows.
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), out)
	}
}

func TestTable_ShortRowPadded(t *testing.T) {
	tbl := NewTable("A", "B")
	tbl.AddRow("only-a")

	out := tbl.Render()
	if !strings.Contains(out, "only-a") {
		t.Errorf("output missing cell:\n%s", out)
	}
}

func TestTable_Empty(t *testing.T) {
	tbl := NewTable("A")
	out := tbl.Render()
	if out == "" {
		t.Error("header-only table should still render")
	}
}
