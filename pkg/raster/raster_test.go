package raster

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

func TestReflectMatchesMirrorWithEdgeRepeat(t *testing.T) {
	// fedcba|abcdefgh|hgfedcb for n=8
	n := 8
	cases := map[int]int{
		-1: 0, -2: 1, -6: 5, 0: 0, 7: 7, 8: 7, 9: 6, 15: 0, 16: 0, -9: 7,
	}
	for in, want := range cases {
		if got := Reflect(in, n); got != want {
			t.Errorf("Reflect(%d, %d) = %d, want %d", in, n, got, want)
		}
	}
	for i := -5; i <= 5; i++ {
		if got := Reflect(i, 1); got != 0 {
			t.Errorf("Reflect(%d, 1) = %d, want 0", i, got)
		}
	}
}

func TestPadReflect(t *testing.T) {
	img, _ := New(3, 1, 1, DomainByte)
	copy(img.Pix, []float64{1, 2, 3})
	p := img.PadReflect(2)
	want := []float64{2, 1, 1, 2, 3, 3, 2}
	for x, v := range want {
		if got := p.At(x, 2, 0); got != v {
			t.Fatalf("padded[%d] = %v, want %v", x, got, v)
		}
	}
}

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := New(0, 4, 3, DomainByte); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	if _, err := New(4, 4, 2, DomainByte); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for 2 channels, got %v", err)
	}
}

func TestFromImageChannels(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 2, 2))
	g.SetGray(1, 1, color.Gray{Y: 200})
	m := FromImage(g)
	if m.Channels != 1 || m.At(1, 1, 0) != 200 {
		t.Fatalf("gray conversion wrong: channels=%d v=%v", m.Channels, m.At(1, 1, 0))
	}

	c := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	c.SetNRGBA(1, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	m = FromImage(c)
	if m.Channels != 3 {
		t.Fatalf("expected 3 channels, got %d", m.Channels)
	}
	if m.At(1, 0, 0) != 10 || m.At(1, 0, 1) != 20 || m.At(1, 0, 2) != 30 {
		t.Fatalf("rgb conversion wrong: %v", m.Pix)
	}
}

func TestNormalizedClampsAndScales(t *testing.T) {
	m, _ := New(3, 1, 1, DomainByte)
	copy(m.Pix, []float64{-4, 51, 300})
	n := m.Normalized()
	if n.Domain != DomainUnit {
		t.Fatalf("domain = %v", n.Domain)
	}
	want := []float64{0, 0.2, 1}
	for i, v := range want {
		if d := n.Pix[i] - v; d > 1e-12 || d < -1e-12 {
			t.Fatalf("normalized[%d] = %v, want %v", i, n.Pix[i], v)
		}
	}
	if m.Pix[0] != -4 {
		t.Fatal("Normalized mutated its receiver")
	}
}

func TestOrientRotations(t *testing.T) {
	// 2x1 image: [a b]
	m, _ := New(2, 1, 1, DomainByte)
	copy(m.Pix, []float64{1, 2})
	cw := m.Orient(6)
	if cw.Width != 1 || cw.Height != 2 {
		t.Fatalf("rotated size %dx%d", cw.Width, cw.Height)
	}
	if cw.At(0, 0, 0) != 1 || cw.At(0, 1, 0) != 2 {
		t.Fatalf("rotate cw = %v", cw.Pix)
	}
	flop := m.Orient(2)
	if flop.At(0, 0, 0) != 2 || flop.At(1, 0, 0) != 1 {
		t.Fatalf("mirror = %v", flop.Pix)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m, _ := New(4, 3, 3, DomainByte)
	for i := range m.Pix {
		m.Pix[i] = float64((i * 37) % 256)
	}
	dir := t.TempDir()
	for _, name := range []string{"a.png", "a.bmp", "a.tiff"} {
		path := filepath.Join(dir, name)
		if err := Save(path, m); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
		got, _, err := Load(path)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if !SameShape(got, m) {
			t.Fatalf("%s: shape %dx%dx%d", name, got.Width, got.Height, got.Channels)
		}
		for i := range m.Pix {
			if got.Pix[i] != m.Pix[i] {
				t.Fatalf("%s: sample %d = %v, want %v", name, i, got.Pix[i], m.Pix[i])
			}
		}
	}
}

func TestJPEGOrientationParsing(t *testing.T) {
	// SOI, APP1 Exif with a big-endian IFD0 holding orientation=6, then SOS.
	tiff := []byte{
		'M', 'M', 0x00, 0x2A, 0x00, 0x00, 0x00, 0x08,
		0x00, 0x01,
		0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, 0x00, 0x06, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}
	payload := append([]byte("Exif\x00\x00"), tiff...)
	segLen := len(payload) + 2
	data := []byte{0xFF, 0xD8, 0xFF, 0xE1, byte(segLen >> 8), byte(segLen)}
	data = append(data, payload...)
	data = append(data, 0xFF, 0xDA)
	o, err := jpegOrientation(data)
	if err != nil {
		t.Fatalf("jpegOrientation: %v", err)
	}
	if o != 6 {
		t.Fatalf("orientation = %d, want 6", o)
	}
}
