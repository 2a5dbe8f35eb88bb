package kuwahara

import (
	"github.com/Fepozopo/edgebench/pkg/raster"
)

// varianceQuadrants computes anchored means and E[x²]−E[x]² for every
// channel, collapsing the per-channel variances into one summed score so
// all channels share a single selection.
func varianceQuadrants(img *raster.Image, r int) *Quadrants {
	n := img.Width * img.Height
	q := &Quadrants{Width: img.Width, Height: img.Height, Channels: img.Channels}
	for a := range Anchors {
		q.Means[a] = make([]float64, n*img.Channels)
		q.Scores[a] = make([]float64, n)
	}
	for c := 0; c < img.Channels; c++ {
		plane := img.Plane(c)
		sq := make([]float64, n)
		for i, v := range plane {
			sq[i] = v * v
		}
		means := boxMeans(plane, img.Width, img.Height, r)
		sqMeans := boxMeans(sq, img.Width, img.Height, r)
		for a := range Anchors {
			for p := 0; p < n; p++ {
				m := means[a][p]
				v := sqMeans[a][p] - m*m
				if v < 0 {
					v = 0
				}
				q.Means[a][p*img.Channels+c] = m
				q.Scores[a][p] += v
			}
		}
	}
	return q
}

// Variance runs the variance-selected Kuwahara filter with the given odd
// kernel size (11 is the usual choice).
func Variance(img *raster.Image, kernelSize int) (*raster.Image, error) {
	if err := checkWindow(kernelSize); err != nil {
		return nil, err
	}
	return Apply(img, Options{Scorer: ScoreVariance, Aggregator: AggregateMean, Window: kernelSize})
}
