package cli

import (
	"strings"
	"testing"

	"github.com/Fepozopo/edgebench/pkg/filters"
)

func TestNormalizeArgs(t *testing.T) {
	c, _ := filters.Lookup(filters.NameNoise)
	got, err := NormalizeArgs(c, []string{"salt-pepper", "5%", ""})
	if err != nil {
		t.Fatalf("NormalizeArgs: %v", err)
	}
	if got[0] != "SALTPEPPER" || got[1] != "0.05" || got[2] != "" {
		t.Fatalf("normalized = %q", got)
	}
	if _, err := NormalizeArgs(c, []string{"", "1"}); err == nil {
		t.Fatal("expected missing required parameter error")
	}
	if _, err := NormalizeArgs(c, []string{"pink", "1"}); err == nil {
		t.Fatal("expected enum error")
	}
	k, _ := filters.Lookup(filters.NameKuwahara)
	if _, err := NormalizeArgs(k, []string{"eleven"}); err == nil {
		t.Fatal("expected integer error")
	}
}

func TestFindCommand(t *testing.T) {
	c, err := findCommand(filters.Commands, "1")
	if err != nil || c.Name != filters.Commands[0].Name {
		t.Fatalf("index selection = %v, %v", c.Name, err)
	}
	if c, err = findCommand(filters.Commands, "guid"); err != nil || c.Name != filters.NameGuided {
		t.Fatalf("prefix selection = %v, %v", c.Name, err)
	}
	if c, err = findCommand(filters.Commands, "Portrait - Artistic Style"); err != nil || c.Name != filters.NamePortraitArtistic {
		t.Fatalf("label selection = %v, %v", c.Name, err)
	}
	if _, err = findCommand(filters.Commands, "kuwahara-"); err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Fatalf("expected ambiguity, got %v", err)
	}
	if _, err = findCommand(filters.Commands, "0"); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestTooltipListsParameters(t *testing.T) {
	c, _ := filters.Lookup(filters.NameGuided)
	tip := Tooltip(c)
	if !strings.Contains(tip, "radius (int, optional)") || !strings.Contains(tip, "[default 4000]") {
		t.Fatalf("tooltip = %q", tip)
	}
}
