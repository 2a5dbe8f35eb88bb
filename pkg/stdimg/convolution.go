package stdimg

import (
	"fmt"
	"math"

	"github.com/Fepozopo/edgebench/pkg/raster"
)

// gaussianKernel1D generates a normalized 1D Gaussian kernel. A positive
// radius is used as given; otherwise the half-width is ceil(3*sigma).
func gaussianKernel1D(sigma float64, radius int) []float64 {
	if sigma <= 0 {
		return []float64{1}
	}
	if radius <= 0 {
		radius = int(math.Ceil(3 * sigma))
	}
	kern := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-0.5 * float64(i*i) / (sigma * sigma))
		kern[i+radius] = v
		sum += v
	}
	for i := range kern {
		kern[i] /= sum
	}
	return kern
}

// SigmaForKernel returns the sigma OpenCV derives for a Gaussian of odd size
// ksize when none is given.
func SigmaForKernel(ksize int) float64 {
	return 0.3*(float64(ksize-1)*0.5-1) + 0.8
}

// GaussianBlur applies a separable Gaussian of odd size ksize with reflected
// borders. A non-positive sigma is derived from ksize.
func GaussianBlur(img *raster.Image, ksize int, sigma float64) (*raster.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if ksize < 1 || ksize%2 == 0 {
		return nil, fmt.Errorf("gaussian kernel size %d must be odd and positive: %w", ksize, raster.ErrInvalidParameter)
	}
	if sigma <= 0 {
		sigma = SigmaForKernel(ksize)
	}
	return convolveSeparable(img, gaussianKernel1D(sigma, ksize/2)), nil
}

// SeparableGaussianBlur blurs with a kernel of half-width ceil(3*sigma).
func SeparableGaussianBlur(img *raster.Image, sigma float64) *raster.Image {
	if img == nil {
		return nil
	}
	return convolveSeparable(img, gaussianKernel1D(sigma, 0))
}

func convolveSeparable(img *raster.Image, kern []float64) *raster.Image {
	radius := len(kern) / 2
	w, h, ch := img.Width, img.Height, img.Channels
	tmp := img.Clone()
	dst := img.Clone()

	parallelRows(h, func(y int) {
		for x := 0; x < w; x++ {
			for c := 0; c < ch; c++ {
				sum := 0.0
				for k := -radius; k <= radius; k++ {
					sum += img.Pix[(y*w+raster.Reflect(x+k, w))*ch+c] * kern[k+radius]
				}
				tmp.Pix[(y*w+x)*ch+c] = sum
			}
		}
	})
	parallelRows(h, func(y int) {
		for x := 0; x < w; x++ {
			for c := 0; c < ch; c++ {
				sum := 0.0
				for k := -radius; k <= radius; k++ {
					sum += tmp.Pix[(raster.Reflect(y+k, h)*w+x)*ch+c] * kern[k+radius]
				}
				dst.Pix[(y*w+x)*ch+c] = sum
			}
		}
	})
	return dst
}
