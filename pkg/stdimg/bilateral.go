package stdimg

import (
	"fmt"
	"math"

	"github.com/Fepozopo/edgebench/pkg/raster"
)

// Rolling guidance defaults.
const (
	DefaultRollingSigmaSpace = 10
	DefaultRollingSigmaColor = 30
	DefaultRollingIterations = 4
)

// JointBilateral smooths src with spatial weights from a (2*radius+1)² window
// and range weights taken from guide. sigmaColor is on the 0..255 scale; the
// colour distance is the sum of absolute channel differences of the guide.
func JointBilateral(src, guide *raster.Image, radius int, sigmaSpace, sigmaColor float64) (*raster.Image, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := guide.Validate(); err != nil {
		return nil, fmt.Errorf("guide: %w", err)
	}
	if guide.Width != src.Width || guide.Height != src.Height {
		return nil, fmt.Errorf("guide %dx%d for source %dx%d: %w",
			guide.Width, guide.Height, src.Width, src.Height, raster.ErrShapeMismatch)
	}
	if radius < 0 || sigmaSpace <= 0 || sigmaColor <= 0 {
		return nil, fmt.Errorf("bilateral radius %d sigmaSpace %v sigmaColor %v: %w",
			radius, sigmaSpace, sigmaColor, raster.ErrInvalidParameter)
	}

	w, h, ch, gch := src.Width, src.Height, src.Channels, guide.Channels
	gscale := 255 / guide.Domain.Max()
	spaceCoeff := -0.5 / (sigmaSpace * sigmaSpace)
	colorCoeff := -0.5 / (sigmaColor * sigmaColor)

	type tap struct {
		dx, dy int
		wt     float64
	}
	taps := make([]tap, 0, (2*radius+1)*(2*radius+1))
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := float64(dx*dx + dy*dy)
			if d2 > float64(radius*radius) {
				continue
			}
			taps = append(taps, tap{dx, dy, math.Exp(d2 * spaceCoeff)})
		}
	}

	out := src.Clone()
	parallelRows(h, func(y int) {
		acc := make([]float64, ch)
		for x := 0; x < w; x++ {
			g0 := (y*w + x) * gch
			for c := range acc {
				acc[c] = 0
			}
			wsum := 0.0
			for _, t := range taps {
				qx, qy := raster.Reflect(x+t.dx, w), raster.Reflect(y+t.dy, h)
				q := qy*w + qx
				dist := 0.0
				for c := 0; c < gch; c++ {
					dist += math.Abs(guide.Pix[q*gch+c] - guide.Pix[g0+c])
				}
				dist *= gscale
				wt := t.wt * math.Exp(dist*dist*colorCoeff)
				for c := 0; c < ch; c++ {
					acc[c] += src.Pix[q*ch+c] * wt
				}
				wsum += wt
			}
			for c := 0; c < ch; c++ {
				out.Pix[(y*w+x)*ch+c] = acc[c] / wsum
			}
		}
	})
	return out, nil
}

// RollingGuidance removes small structures with a Gaussian of sigmaSpace,
// then recovers large edges with iterations-1 joint bilateral passes guided
// by the previous result. The window radius is round(1.5*sigmaSpace).
func RollingGuidance(img *raster.Image, sigmaSpace, sigmaColor float64, iterations int) (*raster.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if sigmaSpace <= 0 || sigmaColor <= 0 || iterations < 1 {
		return nil, fmt.Errorf("rolling guidance sigmaSpace %v sigmaColor %v iterations %d: %w",
			sigmaSpace, sigmaColor, iterations, raster.ErrInvalidParameter)
	}
	return RollingGuidanceFrom(img, SeparableGaussianBlur(img, sigmaSpace), sigmaSpace, sigmaColor, iterations)
}

// RollingGuidanceFrom runs the edge recovery passes of a rolling guidance
// filter starting from an already blurred seed.
func RollingGuidanceFrom(img, seed *raster.Image, sigmaSpace, sigmaColor float64, iterations int) (*raster.Image, error) {
	radius := int(math.Round(1.5 * sigmaSpace))
	cur := seed
	for i := 1; i < iterations; i++ {
		next, err := JointBilateral(img, cur, radius, sigmaSpace, sigmaColor)
		if err != nil {
			return nil, fmt.Errorf("rolling guidance pass %d: %w", i, err)
		}
		cur = next
	}
	out := cur.Clone()
	top := img.Domain.Max()
	for i, v := range out.Pix {
		out.Pix[i] = clampDomain(v, top)
	}
	return out, nil
}
