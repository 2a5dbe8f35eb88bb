package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Fepozopo/edgebench/pkg/filters"
)

func TestFzfMenuRoundTrip(t *testing.T) {
	menu := fzfMenu(filters.Commands)
	lines := strings.Split(strings.TrimSpace(menu), "\n")
	if len(lines) != len(filters.Commands) {
		t.Fatalf("menu has %d lines, want %d", len(lines), len(filters.Commands))
	}
	for i, line := range lines {
		name, err := parseFzfSelection(line)
		if err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if name != filters.Commands[i].Name {
			t.Fatalf("line %d parsed as %q, want %q", i, name, filters.Commands[i].Name)
		}
	}
	if _, err := parseFzfSelection("  \n"); err == nil {
		t.Fatal("expected error for empty selection")
	}
}

func TestClearKittyImages(t *testing.T) {
	var buf bytes.Buffer
	p := &Previewer{Out: &buf}
	p.clearKittyImages()
	if buf.String() != "\x1b_Ga=d\x1b\\" {
		t.Fatalf("sequence = %q", buf.String())
	}
}
