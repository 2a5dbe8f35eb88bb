package cli

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/Fepozopo/edgebench/pkg/raster"
)

func makeGray(w, h int, v float64) *raster.Image {
	img, _ := raster.New(w, h, 1, raster.DomainByte)
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// TestPreviewInlineSequence verifies that a forced inline backend emits an
// OSC 1337 sequence carrying a PNG payload.
func TestPreviewInlineSequence(t *testing.T) {
	var buf bytes.Buffer
	p := &Previewer{Out: &buf, Backend: "inline"}
	if err := p.PreviewPair(makeGray(4, 4, 10), makeGray(2, 2, 200)); err != nil {
		t.Fatalf("PreviewPair error: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\x1b]1337;File=") {
		t.Fatalf("expected inline 1337 sequence, got: %q", out)
	}
	payload := out[strings.Index(out, ":")+1:]
	payload = payload[:strings.Index(payload, "\a")]
	dec, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatalf("base64 decode failed: %v", err)
	}
	if !bytes.HasPrefix(dec, []byte("\x89PNG")) {
		t.Fatalf("expected PNG signature, got: %x", dec[:4])
	}
}

func TestPreviewKittyChunks(t *testing.T) {
	var buf bytes.Buffer
	p := &Previewer{Out: &buf, Backend: "kitty"}
	if err := p.Preview(makeGray(64, 64, 0).ToImage()); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "\x1b_Ga=T,f=100,") {
		t.Fatalf("unexpected kitty header: %q", buf.String()[:20])
	}
}

func TestSideBySideScalesRightToLeftHeight(t *testing.T) {
	img := SideBySide(makeGray(10, 20, 0), makeGray(5, 5, 255), 4)
	b := img.Bounds()
	if b.Dx() != 10+4+20 || b.Dy() != 20 {
		t.Fatalf("side-by-side bounds = %v", b)
	}
	r, _, _, _ := img.At(20, 10).RGBA()
	if r>>8 != 255 {
		t.Fatalf("right half pixel = %d, want 255", r>>8)
	}
}

func TestComputePreviewSizeClamps(t *testing.T) {
	s := computePreviewSize(4000, 100)
	if s.Cols != 80 || s.Rows != 3 {
		t.Fatalf("size = %+v", s)
	}
	s = computePreviewSize(16, 16)
	if s.Cols != 6 || s.Rows != 3 {
		t.Fatalf("small size = %+v", s)
	}
}
