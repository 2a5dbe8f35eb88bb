package portrait

import (
	"errors"
	"image"
	"testing"

	"github.com/Fepozopo/edgebench/pkg/raster"
)

func makeImage(w, h int, f func(i int) float64) *raster.Image {
	img, _ := raster.New(w, h, 3, raster.DomainByte)
	for i := range img.Pix {
		img.Pix[i] = f(i)
	}
	return img
}

func TestCompositeAllOnesIsForeground(t *testing.T) {
	fg := makeImage(5, 4, func(i int) float64 { return float64(i % 256) })
	bg := makeImage(5, 4, func(i int) float64 { return 255 - float64(i%256) })
	out, err := Composite(fg, bg, FullMask(5, 4, 1))
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	for i := range out.Pix {
		if out.Pix[i] != fg.Pix[i] {
			t.Fatalf("sample %d = %v, want foreground %v", i, out.Pix[i], fg.Pix[i])
		}
	}
}

func TestCompositeAllZerosIsBackground(t *testing.T) {
	fg := makeImage(5, 4, func(i int) float64 { return float64(i % 256) })
	bg := makeImage(5, 4, func(i int) float64 { return 255 - float64(i%256) })
	out, err := Composite(fg, bg, FullMask(5, 4, 0))
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	for i := range out.Pix {
		if out.Pix[i] != bg.Pix[i] {
			t.Fatalf("sample %d = %v, want background %v", i, out.Pix[i], bg.Pix[i])
		}
	}
}

func TestCompositeMixedMask(t *testing.T) {
	fg := makeImage(2, 1, func(int) float64 { return 10 })
	bg := makeImage(2, 1, func(int) float64 { return 20 })
	m := &Mask{Width: 2, Height: 1, Bits: []uint8{1, 0}}
	out, err := Composite(fg, bg, m)
	if err != nil {
		t.Fatal(err)
	}
	if out.At(0, 0, 2) != 10 || out.At(1, 0, 0) != 20 {
		t.Fatalf("mixed composite = %v", out.Pix)
	}
}

func TestCompositeShapeMismatch(t *testing.T) {
	fg := makeImage(4, 4, func(int) float64 { return 1 })
	cases := map[string]struct {
		bg   *raster.Image
		mask *Mask
	}{
		"background size": {makeImage(4, 3, func(int) float64 { return 1 }), FullMask(4, 4, 1)},
		"mask size":       {makeImage(4, 4, func(int) float64 { return 1 }), FullMask(3, 4, 1)},
		"nil mask":        {makeImage(4, 4, func(int) float64 { return 1 }), nil},
		"domain":          {makeImage(4, 4, func(int) float64 { return 1 }).Normalized(), FullMask(4, 4, 1)},
	}
	for name, c := range cases {
		if _, err := Composite(fg, c.bg, c.mask); !errors.Is(err, raster.ErrShapeMismatch) {
			t.Errorf("%s: expected ErrShapeMismatch, got %v", name, err)
		}
	}
}

func TestBinarizePolicies(t *testing.T) {
	labels := &LabelMap{Width: 4, Height: 1, Labels: []Label{
		LabelBackground, LabelForeground, LabelProbableBackground, LabelProbableForeground,
	}}
	m, err := Binarize(labels, DefaultPolicy)
	if err != nil {
		t.Fatal(err)
	}
	if want := []uint8{0, 1, 0, 1}; string(m.Bits) != string(want) {
		t.Fatalf("default policy = %v, want %v", m.Bits, want)
	}
	m, err = Binarize(labels, StrictPolicy)
	if err != nil {
		t.Fatal(err)
	}
	if want := []uint8{0, 1, 1, 1}; string(m.Bits) != string(want) {
		t.Fatalf("strict policy = %v, want %v", m.Bits, want)
	}
	if c := m.Coverage(); c != 0.75 {
		t.Fatalf("coverage = %v", c)
	}
	bad := &LabelMap{Width: 2, Height: 2, Labels: []Label{0}}
	if _, err := Binarize(bad, DefaultPolicy); !errors.Is(err, raster.ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestDefaultRect(t *testing.T) {
	if got, want := DefaultRect(100, 50), image.Rect(10, 5, 90, 45); got != want {
		t.Fatalf("DefaultRect = %v, want %v", got, want)
	}
	if got, want := DefaultRect(7, 3), image.Rect(0, 0, 5, 2); got != want {
		t.Fatalf("DefaultRect small = %v, want %v", got, want)
	}
}

// rectSegmenter labels the seed rectangle probable foreground and the rest
// probable background.
type rectSegmenter struct {
	gotRect  image.Rectangle
	gotIters int
}

func (s *rectSegmenter) Segment(img *raster.Image, rect image.Rectangle, iterations int) (*LabelMap, error) {
	s.gotRect, s.gotIters = rect, iterations
	lm := &LabelMap{Width: img.Width, Height: img.Height, Labels: make([]Label, img.Width*img.Height)}
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			l := LabelProbableBackground
			if image.Pt(x, y).In(rect) {
				l = LabelProbableForeground
			}
			lm.Labels[y*img.Width+x] = l
		}
	}
	return lm, nil
}

func TestEffectKeepsSubjectAndFiltersBackground(t *testing.T) {
	img := makeImage(10, 10, func(int) float64 { return 100 })
	seg := &rectSegmenter{}
	darken := func(m *raster.Image) (*raster.Image, error) {
		out := m.Clone()
		for i := range out.Pix {
			out.Pix[i] = 0
		}
		return out, nil
	}
	out, mask, err := Effect(img, seg, darken, Options{})
	if err != nil {
		t.Fatalf("Effect: %v", err)
	}
	if seg.gotRect != image.Rect(1, 1, 9, 9) || seg.gotIters != DefaultIterations {
		t.Fatalf("segmenter called with %v/%d", seg.gotRect, seg.gotIters)
	}
	if out.At(5, 5, 0) != 100 || out.At(0, 0, 0) != 0 {
		t.Fatalf("effect centre=%v corner=%v", out.At(5, 5, 0), out.At(0, 0, 0))
	}
	if mask.Bits[0] != 0 || mask.Bits[55] != 1 {
		t.Fatalf("mask corner=%d centre=%d", mask.Bits[0], mask.Bits[55])
	}
}

func TestEffectRejectsMissingLabels(t *testing.T) {
	img := makeImage(4, 4, func(int) float64 { return 1 })
	none := SegmenterFunc(func(*raster.Image, image.Rectangle, int) (*LabelMap, error) {
		return nil, nil
	})
	identity := func(m *raster.Image) (*raster.Image, error) { return m.Clone(), nil }
	if _, _, err := Effect(img, none, identity, Options{}); !errors.Is(err, raster.ErrExternal) {
		t.Fatalf("expected ErrExternal, got %v", err)
	}
}

func TestEffectPropagatesSegmenterFailure(t *testing.T) {
	img := makeImage(4, 4, func(int) float64 { return 1 })
	fail := SegmenterFunc(func(*raster.Image, image.Rectangle, int) (*LabelMap, error) {
		return nil, raster.ErrExternal
	})
	identity := func(m *raster.Image) (*raster.Image, error) { return m.Clone(), nil }
	if _, _, err := Effect(img, fail, identity, Options{}); !errors.Is(err, raster.ErrExternal) {
		t.Fatalf("expected ErrExternal, got %v", err)
	}
}
