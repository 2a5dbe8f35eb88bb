package portrait

import (
	"fmt"

	"github.com/Fepozopo/edgebench/pkg/raster"
)

// Composite returns fg where the mask is 1 and bg where it is 0. fg, bg and
// mask must agree on width and height, and fg and bg on channel count and
// domain.
func Composite(fg, bg *raster.Image, mask *Mask) (*raster.Image, error) {
	if err := fg.Validate(); err != nil {
		return nil, fmt.Errorf("foreground: %w", err)
	}
	if err := bg.Validate(); err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	if !raster.SameShape(fg, bg) || fg.Domain != bg.Domain {
		return nil, fmt.Errorf("foreground %dx%dx%d/%v vs background %dx%dx%d/%v: %w",
			fg.Width, fg.Height, fg.Channels, fg.Domain,
			bg.Width, bg.Height, bg.Channels, bg.Domain, raster.ErrShapeMismatch)
	}
	if mask == nil || mask.Width != fg.Width || mask.Height != fg.Height || len(mask.Bits) != fg.Width*fg.Height {
		return nil, fmt.Errorf("mask does not cover %dx%d image: %w", fg.Width, fg.Height, raster.ErrShapeMismatch)
	}
	out := fg.Clone()
	ch := fg.Channels
	for p, bit := range mask.Bits {
		if bit != 0 {
			continue
		}
		copy(out.Pix[p*ch:(p+1)*ch], bg.Pix[p*ch:(p+1)*ch])
	}
	return out, nil
}
