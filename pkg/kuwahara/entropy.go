package kuwahara

import (
	"fmt"
	"math"

	"github.com/Fepozopo/edgebench/pkg/raster"
)

// quantize maps unit samples to bin indices floor(v*(bins-1)).
func quantize(plane []float64, bins int) []int {
	out := make([]int, len(plane))
	for i, v := range plane {
		b := int(math.Floor(raster.ClampUnit(v) * float64(bins-1)))
		if b >= bins {
			b = bins - 1
		}
		out[i] = b
	}
	return out
}

// entropyQuadrants expects a DomainUnit image. For every channel it
// estimates the local Shannon entropy of each anchored quadrant from box
// smoothed bin indicators, and keeps the scores per channel.
func entropyQuadrants(img *raster.Image, r, bins int) *Quadrants {
	n := img.Width * img.Height
	q := &Quadrants{Width: img.Width, Height: img.Height, Channels: img.Channels, PerChannel: true}
	for a := range Anchors {
		q.Means[a] = make([]float64, n*img.Channels)
		q.Scores[a] = make([]float64, n*img.Channels)
	}
	for c := 0; c < img.Channels; c++ {
		plane := img.Plane(c)
		for i, v := range plane {
			plane[i] = raster.ClampUnit(v)
		}
		means := boxMeans(plane, img.Width, img.Height, r)
		for a := range Anchors {
			for p := 0; p < n; p++ {
				q.Means[a][p*img.Channels+c] = means[a][p]
			}
		}

		levels := quantize(plane, bins)
		present := make([]bool, bins)
		for _, b := range levels {
			present[b] = true
		}
		indicator := make([]float64, n)
		for b := 0; b < bins; b++ {
			// An empty bin has p=0 everywhere and contributes nothing.
			if !present[b] {
				continue
			}
			for i, l := range levels {
				if l == b {
					indicator[i] = 1
				} else {
					indicator[i] = 0
				}
			}
			probs := boxMeans(indicator, img.Width, img.Height, r)
			for a := range Anchors {
				for p := 0; p < n; p++ {
					pr := probs[a][p]
					if pr <= 0 {
						continue
					}
					if pr > 1 {
						pr = 1
					}
					q.Scores[a][p*img.Channels+c] -= pr * math.Log2(pr)
				}
			}
		}
	}
	return q
}

// Entropy runs the entropy-selected Kuwahara filter. Each channel picks its
// own quadrant; the output is always DomainByte.
func Entropy(img *raster.Image, window, bins int) (*raster.Image, error) {
	if err := checkWindow(window); err != nil {
		return nil, err
	}
	if bins < 2 {
		return nil, fmt.Errorf("bin count %d must be >= 2: %w", bins, raster.ErrInvalidParameter)
	}
	return Apply(img, Options{Scorer: ScoreEntropy, Aggregator: AggregateMean, Window: window, Bins: bins})
}
