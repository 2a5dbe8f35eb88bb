package cvx

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/Fepozopo/edgebench/pkg/raster"
	"github.com/Fepozopo/edgebench/pkg/stdimg"
)

// DefaultBlurKernel is the kernel size of the standard portrait blur.
const DefaultBlurKernel = 21

// GaussianBlur blurs with an odd ksize×ksize Gaussian. A non-positive sigma
// is derived from ksize the way OpenCV does.
func GaussianBlur(img *raster.Image, ksize int, sigma float64) (*raster.Image, error) {
	if ksize < 1 || ksize%2 == 0 {
		return nil, fmt.Errorf("gaussian kernel size %d must be odd and positive: %w", ksize, raster.ErrInvalidParameter)
	}
	return apply(img, func(src gocv.Mat, dst *gocv.Mat) error {
		return gocv.GaussianBlur(src, dst, image.Point{X: ksize, Y: ksize}, sigma, sigma, gocv.BorderDefault)
	})
}

// StandardBlur is the background renderer of the standard portrait effect.
func StandardBlur(img *raster.Image) (*raster.Image, error) {
	return GaussianBlur(img, DefaultBlurKernel, 0)
}

// RollingGuidance seeds the filter with an OpenCV Gaussian of sigmaSpace and
// runs the joint bilateral recovery passes.
func RollingGuidance(img *raster.Image, sigmaSpace, sigmaColor float64, iterations int) (*raster.Image, error) {
	if sigmaSpace <= 0 || sigmaColor <= 0 || iterations < 1 {
		return nil, fmt.Errorf("rolling guidance sigmaSpace %v sigmaColor %v iterations %d: %w",
			sigmaSpace, sigmaColor, iterations, raster.ErrInvalidParameter)
	}
	ksize := 2*int(3*sigmaSpace) + 1
	seed, err := GaussianBlur(img, ksize, sigmaSpace)
	if err != nil {
		return nil, fmt.Errorf("rolling guidance seed: %w", err)
	}
	return stdimg.RollingGuidanceFrom(img, seed, sigmaSpace, sigmaColor, iterations)
}
