// Package cvx binds the library-backed collaborators to OpenCV through gocv:
// guided filtering, the standard portrait blur, the rolling guidance seed and
// GrabCut segmentation. Images cross the boundary as 8-bit BGR mats.
package cvx

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"

	"github.com/Fepozopo/edgebench/pkg/raster"
)

// ToMat quantizes img to 8 bits and returns a CV_8UC1 or CV_8UC3 (BGR) mat.
// The caller owns the mat.
func ToMat(img *raster.Image) (gocv.Mat, error) {
	if err := img.Validate(); err != nil {
		return gocv.NewMat(), err
	}
	scale := 255 / img.Domain.Max()
	q := func(v float64) uint8 { return uint8(math.Round(raster.ClampByte(v * scale))) }
	if img.Channels == 1 {
		mat := gocv.NewMatWithSize(img.Height, img.Width, gocv.MatTypeCV8UC1)
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x++ {
				mat.SetUCharAt(y, x, q(img.At(x, y, 0)))
			}
		}
		return mat, nil
	}
	mat := gocv.NewMatWithSize(img.Height, img.Width, gocv.MatTypeCV8UC3)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			mat.SetUCharAt3(y, x, 0, q(img.At(x, y, 2)))
			mat.SetUCharAt3(y, x, 1, q(img.At(x, y, 1)))
			mat.SetUCharAt3(y, x, 2, q(img.At(x, y, 0)))
		}
	}
	return mat, nil
}

// FromMat reads an 8-bit mat back into d. One-channel mats stay grey,
// three-channel mats are BGR.
func FromMat(mat gocv.Mat, d raster.Domain) (*raster.Image, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("empty mat: %w", raster.ErrExternal)
	}
	ch := mat.Channels()
	if ch != 1 && ch != 3 {
		return nil, fmt.Errorf("mat with %d channels: %w", ch, raster.ErrExternal)
	}
	img, err := raster.New(mat.Cols(), mat.Rows(), ch, d)
	if err != nil {
		return nil, err
	}
	scale := d.Max() / 255
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			if ch == 1 {
				img.Set(x, y, 0, float64(mat.GetUCharAt(y, x))*scale)
				continue
			}
			img.Set(x, y, 0, float64(mat.GetUCharAt3(y, x, 2))*scale)
			img.Set(x, y, 1, float64(mat.GetUCharAt3(y, x, 1))*scale)
			img.Set(x, y, 2, float64(mat.GetUCharAt3(y, x, 0))*scale)
		}
	}
	return img, nil
}

// apply round-trips img through fn on 8-bit mats.
func apply(img *raster.Image, fn func(src gocv.Mat, dst *gocv.Mat) error) (*raster.Image, error) {
	src, err := ToMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	dst := gocv.NewMat()
	defer dst.Close()
	if err := fn(src, &dst); err != nil {
		return nil, fmt.Errorf("%w: %w", raster.ErrExternal, err)
	}
	return FromMat(dst, img.Domain)
}
