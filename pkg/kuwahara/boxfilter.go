package kuwahara

import (
	"sync"

	"github.com/Fepozopo/edgebench/pkg/raster"
)

// Anchor names where the centre pixel sits inside a (r+1)×(r+1) quadrant.
// The declaration order is the selection order used to break score ties.
type Anchor int

const (
	// BottomRight covers rows y-r..y and columns x-r..x.
	BottomRight Anchor = iota
	// BottomLeft covers rows y-r..y and columns x..x+r.
	BottomLeft
	// TopRight covers rows y..y+r and columns x-r..x.
	TopRight
	// TopLeft covers rows y..y+r and columns x..x+r.
	TopLeft
)

// Anchors lists every anchor in selection order.
var Anchors = [4]Anchor{BottomRight, BottomLeft, TopRight, TopLeft}

func (a Anchor) String() string {
	switch a {
	case BottomRight:
		return "bottom-right"
	case BottomLeft:
		return "bottom-left"
	case TopRight:
		return "top-right"
	case TopLeft:
		return "top-left"
	default:
		return "unknown"
	}
}

// Origin returns the offset of the quadrant's top-left sample relative to
// the centre pixel for radius r.
func (a Anchor) Origin(r int) (dx, dy int) {
	switch a {
	case BottomRight:
		return -r, -r
	case BottomLeft:
		return 0, -r
	case TopRight:
		return -r, 0
	default:
		return 0, 0
	}
}

// integral is a summed-area table over a reflect-padded plane.
type integral struct {
	w, h, pad int
	stride    int
	sum       []float64
}

func newIntegral(plane []float64, w, h, pad int) *integral {
	pw, ph := w+2*pad, h+2*pad
	in := &integral{w: w, h: h, pad: pad, stride: pw + 1, sum: make([]float64, (pw+1)*(ph+1))}
	for y := 0; y < ph; y++ {
		sy := raster.Reflect(y-pad, h)
		row := 0.0
		for x := 0; x < pw; x++ {
			row += plane[sy*w+raster.Reflect(x-pad, w)]
			in.sum[(y+1)*in.stride+x+1] = in.sum[y*in.stride+x+1] + row
		}
	}
	return in
}

// box returns the sum of the k×k block whose top-left sample is (x0, y0)
// in unpadded coordinates.
func (in *integral) box(x0, y0, k int) float64 {
	x0 += in.pad
	y0 += in.pad
	x1, y1 := x0+k, y0+k
	s := in.stride
	return in.sum[y1*s+x1] - in.sum[y0*s+x1] - in.sum[y1*s+x0] + in.sum[y0*s+x0]
}

// anchoredMean returns the normalized (r+1)×(r+1) box mean at every pixel
// for one anchor.
func (in *integral) anchoredMean(r int, a Anchor) []float64 {
	k := r + 1
	norm := 1 / float64(k*k)
	dx, dy := a.Origin(r)
	out := make([]float64, in.w*in.h)
	for y := 0; y < in.h; y++ {
		for x := 0; x < in.w; x++ {
			out[y*in.w+x] = in.box(x+dx, y+dy, k) * norm
		}
	}
	return out
}

// boxMeans computes the anchored box mean of plane for all four anchors
// concurrently, with reflect borders.
func boxMeans(plane []float64, w, h, r int) [4][]float64 {
	in := newIntegral(plane, w, h, r)
	var out [4][]float64
	var wg sync.WaitGroup
	for i, a := range Anchors {
		wg.Add(1)
		go func(i int, a Anchor) {
			defer wg.Done()
			out[i] = in.anchoredMean(r, a)
		}(i, a)
	}
	wg.Wait()
	return out
}
