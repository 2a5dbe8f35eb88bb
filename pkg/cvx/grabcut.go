package cvx

import (
	"fmt"
	"image"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/Fepozopo/edgebench/pkg/portrait"
	"github.com/Fepozopo/edgebench/pkg/raster"
)

// GrabCut segments with OpenCV's GrabCut seeded by a rectangle. It satisfies
// portrait.Segmenter.
type GrabCut struct {
	Log logrus.FieldLogger
}

var _ portrait.Segmenter = (*GrabCut)(nil)

// Segment labels every pixel of img with the GrabCut label space.
func (g *GrabCut) Segment(img *raster.Image, rect image.Rectangle, iterations int) (*portrait.LabelMap, error) {
	if iterations < 1 {
		return nil, fmt.Errorf("grabcut iterations %d: %w", iterations, raster.ErrInvalidParameter)
	}
	if rect.Empty() || !rect.In(img.Bounds()) {
		return nil, fmt.Errorf("grabcut rectangle %v outside %v: %w", rect, img.Bounds(), raster.ErrInvalidParameter)
	}
	src, err := ToMat(img.ToRGB())
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mask := gocv.NewMatWithSize(img.Height, img.Width, gocv.MatTypeCV8U)
	defer mask.Close()
	bgdModel := gocv.NewMat()
	defer bgdModel.Close()
	fgdModel := gocv.NewMat()
	defer fgdModel.Close()

	start := time.Now()
	if err := gocv.GrabCut(src, &mask, rect, &bgdModel, &fgdModel, iterations, gocv.GCInitWithRect); err != nil {
		return nil, fmt.Errorf("%w: grabcut: %w", raster.ErrExternal, err)
	}
	if mask.Empty() || mask.Rows() != img.Height || mask.Cols() != img.Width {
		return nil, fmt.Errorf("grabcut produced no mask: %w", raster.ErrExternal)
	}

	labels := &portrait.LabelMap{Width: img.Width, Height: img.Height, Labels: make([]portrait.Label, img.Width*img.Height)}
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			v := mask.GetUCharAt(y, x)
			if v > uint8(portrait.LabelProbableForeground) {
				return nil, fmt.Errorf("grabcut label %d at (%d,%d): %w", v, x, y, raster.ErrExternal)
			}
			labels.Labels[y*img.Width+x] = portrait.Label(v)
		}
	}
	if g.Log != nil {
		g.Log.WithFields(logrus.Fields{
			"rect":       rect.String(),
			"iterations": iterations,
			"elapsed":    time.Since(start).String(),
		}).Debug("grabcut segmentation complete")
	}
	return labels, nil
}
