// Package magick wraps ImageMagick's Kuwahara operator as a reference
// implementation to compare the native filters against.
package magick

import (
	"bytes"
	"fmt"
	"sync"

	"gopkg.in/gographics/imagick.v3/imagick"

	"github.com/Fepozopo/edgebench/pkg/raster"
)

// DefaultRadius matches a 5×5 Kuwahara kernel.
const DefaultRadius = 2

var initOnce sync.Once

// Init starts the ImageMagick environment. It is safe to call repeatedly;
// Kuwahara calls it itself.
func Init() {
	initOnce.Do(imagick.Initialize)
}

// Terminate releases ImageMagick. Call once at program exit.
func Terminate() {
	imagick.Terminate()
}

// Kuwahara runs ImageMagick's Kuwahara filter with the given radius and
// Gaussian sigma. A non-positive sigma lets ImageMagick choose.
func Kuwahara(img *raster.Image, radius, sigma float64) (*raster.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if radius <= 0 {
		return nil, fmt.Errorf("kuwahara radius %v: %w", radius, raster.ErrInvalidParameter)
	}
	if sigma < 0 {
		sigma = 0
	}
	Init()

	var buf bytes.Buffer
	if err := raster.Encode(&buf, img, raster.FormatPNG); err != nil {
		return nil, fmt.Errorf("encode for imagemagick: %w", err)
	}
	mw := imagick.NewMagickWand()
	defer mw.Destroy()
	if err := mw.ReadImageBlob(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: read blob: %w", raster.ErrExternal, err)
	}
	if err := mw.KuwaharaImage(radius, sigma); err != nil {
		return nil, fmt.Errorf("%w: kuwahara: %w", raster.ErrExternal, err)
	}
	if err := mw.SetImageFormat("PNG"); err != nil {
		return nil, fmt.Errorf("%w: set format: %w", raster.ErrExternal, err)
	}
	out, _, err := raster.Decode(mw.GetImageBlob())
	if err != nil {
		return nil, fmt.Errorf("%w: decode result: %w", raster.ErrExternal, err)
	}
	if out.Channels != img.Channels {
		if img.Channels == 1 {
			gray, _ := raster.New(out.Width, out.Height, 1, raster.DomainByte)
			gray.SetPlane(0, out.Plane(0))
			out = gray
		} else {
			out = out.ToRGB()
		}
	}
	if img.Domain == raster.DomainUnit {
		out = out.Normalized()
	}
	return out, nil
}
