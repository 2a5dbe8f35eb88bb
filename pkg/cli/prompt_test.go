package cli

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Fepozopo/edgebench/pkg/raster"
)

func TestPrompterSharesReader(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("  first answer \nSecond\nlast"), &out)
	for _, want := range []string{"first answer", "Second", "last"} {
		got, err := p.Line("? ")
		if err != nil {
			t.Fatalf("Line: %v", err)
		}
		if got != want {
			t.Fatalf("Line = %q, want %q", got, want)
		}
	}
	if _, err := p.Line("? "); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
	if strings.Count(out.String(), "? ") != 4 {
		t.Fatalf("prompt output = %q", out.String())
	}
}

func TestPrompterKey(t *testing.T) {
	p := NewPrompter(strings.NewReader("Quit\n\n"), io.Discard)
	if r, err := p.Key("> "); err != nil || r != 'q' {
		t.Fatalf("Key = %q, %v", r, err)
	}
	if r, err := p.Key("> "); err != nil || r != 0 {
		t.Fatalf("blank Key = %q, %v", r, err)
	}
}

func TestLineOrFile(t *testing.T) {
	p := NewPrompter(strings.NewReader("/\n/\ntyped.png\n"), io.Discard)
	got, err := p.LineOrFile("path: ", func() (string, error) { return "picked.png", nil })
	if err != nil || got != "picked.png" {
		t.Fatalf("picked = %q, %v", got, err)
	}
	got, err = p.LineOrFile("path: ", func() (string, error) { return "", errors.New("no fzf") })
	if err != nil || got != "typed.png" {
		t.Fatalf("fallback = %q, %v", got, err)
	}
}

func TestImageInfo(t *testing.T) {
	img, _ := raster.New(4, 3, 3, raster.DomainByte)
	got := ImageInfo(img, raster.FormatJPEG)
	if got != "Format: JPEG, Width: 4, Height: 3, Channels: 3, Domain: byte" {
		t.Fatalf("ImageInfo = %q", got)
	}
}
