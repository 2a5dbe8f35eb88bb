package stdimg

import (
	"errors"
	"testing"

	"github.com/Fepozopo/edgebench/pkg/raster"
)

func makeSolid(w, h, ch int, v float64) *raster.Image {
	img, _ := raster.New(w, h, ch, raster.DomainByte)
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func TestAddNoiseDeterministic(t *testing.T) {
	src := makeSolid(4, 4, 3, 128)
	a, err := AddNoise(src, NoiseGaussian, 5, 42)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := AddNoise(src, NoiseGaussian, 5, 42)
	same := true
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("sample %d differs between runs with the same seed", i)
		}
		if a.Pix[i] != 128 {
			same = false
		}
		if a.Pix[i] < 0 || a.Pix[i] > 255 {
			t.Fatalf("sample %d = %v outside byte range", i, a.Pix[i])
		}
	}
	if same {
		t.Fatal("expected at least one sample to change")
	}
	if src.Pix[0] != 128 {
		t.Fatal("source was modified")
	}
}

func TestAddNoiseTypesKeepShapeAndDomain(t *testing.T) {
	src := makeSolid(6, 5, 3, 100).Normalized()
	for _, typ := range []NoiseType{NoiseGaussian, NoiseUniform, NoisePoisson, NoiseSaltPepper} {
		amount := 10.0
		if typ == NoiseSaltPepper {
			amount = 0.2
		}
		out, err := AddNoise(src, typ, amount, 7)
		if err != nil {
			t.Fatalf("%s: %v", typ, err)
		}
		if !raster.SameShape(src, out) || out.Domain != raster.DomainUnit {
			t.Fatalf("%s: shape or domain changed", typ)
		}
		for i, v := range out.Pix {
			if v < 0 || v > 1 {
				t.Fatalf("%s: sample %d = %v outside unit range", typ, i, v)
			}
		}
	}
}

func TestSaltPepperReplacesWholePixels(t *testing.T) {
	src := makeSolid(20, 20, 3, 128)
	out, err := AddSaltPepper(src, 0.5, 9)
	if err != nil {
		t.Fatal(err)
	}
	hit := 0
	for p := 0; p < 400; p++ {
		r, g, b := out.Pix[p*3], out.Pix[p*3+1], out.Pix[p*3+2]
		if r == 128 {
			continue
		}
		hit++
		if (r != 0 && r != 255) || r != g || g != b {
			t.Fatalf("pixel %d = (%v,%v,%v), want pure black or white", p, r, g, b)
		}
	}
	if hit < 120 || hit > 280 {
		t.Fatalf("%d of 400 pixels corrupted at amount 0.5", hit)
	}
}

func TestGaussianNoiseMeanShift(t *testing.T) {
	src := makeSolid(10, 10, 1, 100)
	out, err := AddGaussianNoise(src, 20, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range out.Pix {
		if v != 120 {
			t.Fatalf("sample %d = %v, want 120", i, v)
		}
	}
}

func TestNoiseRejectsBadParameters(t *testing.T) {
	src := makeSolid(2, 2, 1, 0)
	if _, err := AddSaltPepper(src, 1.5, 1); !errors.Is(err, raster.ErrInvalidParameter) {
		t.Fatalf("amount 1.5: got %v", err)
	}
	if _, err := AddGaussianNoise(src, 0, -1, 1); !errors.Is(err, raster.ErrInvalidParameter) {
		t.Fatalf("negative sigma: got %v", err)
	}
	if _, err := ParseNoiseType("pink"); !errors.Is(err, raster.ErrInvalidParameter) {
		t.Fatalf("unknown type: got %v", err)
	}
	if typ, err := ParseNoiseType("salt-pepper"); err != nil || typ != NoiseSaltPepper {
		t.Fatalf("ParseNoiseType(salt-pepper) = %v, %v", typ, err)
	}
}
