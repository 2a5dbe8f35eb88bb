package cvx

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/Fepozopo/edgebench/pkg/portrait"
	"github.com/Fepozopo/edgebench/pkg/raster"
)

func makeSolid(w, h int, r, g, b float64) *raster.Image {
	img, _ := raster.New(w, h, 3, raster.DomainByte)
	for p := 0; p < w*h; p++ {
		img.Pix[p*3], img.Pix[p*3+1], img.Pix[p*3+2] = r, g, b
	}
	return img
}

func TestMatRoundTripKeepsChannelOrder(t *testing.T) {
	src := makeSolid(5, 4, 10, 20, 30)
	mat, err := ToMat(src)
	if err != nil {
		t.Fatal(err)
	}
	defer mat.Close()
	if got := mat.GetUCharAt3(0, 0, 0); got != 30 {
		t.Fatalf("blue plane holds %d, want 30", got)
	}
	back, err := FromMat(mat, raster.DomainByte)
	if err != nil {
		t.Fatal(err)
	}
	for i := range src.Pix {
		if back.Pix[i] != src.Pix[i] {
			t.Fatalf("sample %d = %v, want %v", i, back.Pix[i], src.Pix[i])
		}
	}
}

func TestGuidedFilterFlatUnchanged(t *testing.T) {
	src := makeSolid(16, 12, 60, 120, 180)
	out, err := GuidedFilter(src, DefaultGuidedRadius, DefaultGuidedEps)
	if err != nil {
		t.Fatal(err)
	}
	if !raster.SameShape(src, out) {
		t.Fatal("shape changed")
	}
	for i, v := range out.Pix {
		if math.Abs(v-src.Pix[i]) > 1 {
			t.Fatalf("sample %d = %v, want %v", i, v, src.Pix[i])
		}
	}
	if _, err := GuidedFilter(src, 0, 1); !errors.Is(err, raster.ErrInvalidParameter) {
		t.Fatalf("radius 0: got %v", err)
	}
}

func TestStandardBlurKeepsDomain(t *testing.T) {
	src := makeSolid(30, 30, 100, 100, 100).Normalized()
	out, err := StandardBlur(src)
	if err != nil {
		t.Fatal(err)
	}
	if out.Domain != raster.DomainUnit {
		t.Fatalf("domain = %v", out.Domain)
	}
	if math.Abs(out.At(15, 15, 0)-src.At(15, 15, 0)) > 1.0/255 {
		t.Fatalf("flat image changed: %v vs %v", out.At(15, 15, 0), src.At(15, 15, 0))
	}
}

func TestGrabCutLabelsSubject(t *testing.T) {
	img := makeSolid(60, 60, 20, 40, 200)
	for y := 20; y < 40; y++ {
		for x := 20; x < 40; x++ {
			img.Set(x, y, 0, 230)
			img.Set(x, y, 1, 200)
			img.Set(x, y, 2, 30)
		}
	}
	seg := &GrabCut{}
	labels, err := seg.Segment(img, portrait.DefaultRect(60, 60), portrait.DefaultIterations)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	mask, err := portrait.Binarize(labels, portrait.DefaultPolicy)
	if err != nil {
		t.Fatal(err)
	}
	if mask.Bits[0] != 0 {
		t.Fatal("corner outside the seed rectangle labelled foreground")
	}
	if mask.Bits[30*60+30] != 1 {
		t.Fatal("subject centre labelled background")
	}
}

func TestGrabCutReportsOpenCVFailure(t *testing.T) {
	// A rectangle covering the whole image leaves GrabCut no background
	// samples to model.
	img := makeSolid(20, 20, 10, 20, 30)
	labels, err := (&GrabCut{}).Segment(img, img.Bounds(), 1)
	if !errors.Is(err, raster.ErrExternal) {
		t.Fatalf("expected ErrExternal, got labels=%v err=%v", labels != nil, err)
	}
}

func TestGrabCutRejectsRectOutsideImage(t *testing.T) {
	seg := &GrabCut{}
	if _, err := seg.Segment(makeSolid(10, 10, 0, 0, 0), image.Rect(5, 5, 20, 20), 1); !errors.Is(err, raster.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}
