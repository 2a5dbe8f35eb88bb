package stdimg

import (
	"errors"
	"math"
	"testing"

	"github.com/Fepozopo/edgebench/pkg/raster"
)

func makeEdge(w, h int) *raster.Image {
	img, _ := raster.New(w, h, 3, raster.DomainByte)
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			for c := 0; c < 3; c++ {
				img.Set(x, y, c, 255)
			}
		}
	}
	return img
}

func TestSigmaForKernel(t *testing.T) {
	if got := SigmaForKernel(21); math.Abs(got-3.5) > 1e-12 {
		t.Fatalf("SigmaForKernel(21) = %v, want 3.5", got)
	}
}

func TestGaussianBlurFlatUnchanged(t *testing.T) {
	src := makeSolid(9, 7, 3, 77)
	out, err := GaussianBlur(src, 21, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range out.Pix {
		if math.Abs(v-77) > 1e-9 {
			t.Fatalf("sample %d = %v, want 77", i, v)
		}
	}
}

func TestGaussianBlurSoftensEdge(t *testing.T) {
	src := makeEdge(20, 4)
	out, err := GaussianBlur(src, 5, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v := out.At(9, 1, 0); v <= 0 || v >= 255 {
		t.Fatalf("pixel left of edge = %v, expected a blend", v)
	}
	if _, err := GaussianBlur(src, 4, 0); !errors.Is(err, raster.ErrInvalidParameter) {
		t.Fatalf("even kernel: got %v", err)
	}
}

func TestJointBilateralKeepsEdge(t *testing.T) {
	src := makeEdge(20, 6)
	out, err := JointBilateral(src, src, 3, 3, 10)
	if err != nil {
		t.Fatal(err)
	}
	if v := out.At(9, 2, 0); v > 1 {
		t.Fatalf("dark side of edge = %v, bilateral should not bleed", v)
	}
	if v := out.At(10, 2, 0); v < 254 {
		t.Fatalf("bright side of edge = %v, bilateral should not bleed", v)
	}
}

func TestJointBilateralShapeMismatch(t *testing.T) {
	if _, err := JointBilateral(makeSolid(4, 4, 3, 0), makeSolid(3, 4, 3, 0), 1, 1, 1); !errors.Is(err, raster.ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestRollingGuidanceFlatAndDomain(t *testing.T) {
	src := makeSolid(12, 10, 3, 200)
	out, err := RollingGuidance(src, 2, 30, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !raster.SameShape(src, out) || out.Domain != src.Domain {
		t.Fatal("shape or domain changed")
	}
	for i, v := range out.Pix {
		if math.Abs(v-200) > 1e-9 {
			t.Fatalf("sample %d = %v, want 200", i, v)
		}
	}
	if _, err := RollingGuidance(src, 2, 30, 0); !errors.Is(err, raster.ErrInvalidParameter) {
		t.Fatalf("zero iterations: got %v", err)
	}
}
