package portrait

import (
	"fmt"
	"image"

	"github.com/Fepozopo/edgebench/pkg/raster"
)

// DefaultIterations is the segmentation iteration count used by Effect.
const DefaultIterations = 5

// Segmenter labels every pixel of img, seeded with a rectangle believed to
// contain the subject.
type Segmenter interface {
	Segment(img *raster.Image, rect image.Rectangle, iterations int) (*LabelMap, error)
}

// SegmenterFunc adapts a function to Segmenter.
type SegmenterFunc func(img *raster.Image, rect image.Rectangle, iterations int) (*LabelMap, error)

func (f SegmenterFunc) Segment(img *raster.Image, rect image.Rectangle, iterations int) (*LabelMap, error) {
	return f(img, rect, iterations)
}

// FilterFunc renders the background.
type FilterFunc func(*raster.Image) (*raster.Image, error)

// Options tunes Effect. Zero values select a 10% margin rectangle, five
// iterations and DefaultPolicy.
type Options struct {
	Rect       image.Rectangle
	Iterations int
	Policy     *Policy
}

// DefaultRect insets the image by 10% on the left and top and spans 80% of
// each dimension.
func DefaultRect(w, h int) image.Rectangle {
	x, y := int(float64(w)*0.1), int(float64(h)*0.1)
	return image.Rect(x, y, x+int(float64(w)*0.8), y+int(float64(h)*0.8))
}

// Effect segments img, filters a copy with background and composites the
// untouched foreground over it. The mask used is returned alongside.
func Effect(img *raster.Image, seg Segmenter, background FilterFunc, opts Options) (*raster.Image, *Mask, error) {
	if err := img.Validate(); err != nil {
		return nil, nil, err
	}
	if seg == nil || background == nil {
		return nil, nil, fmt.Errorf("segmenter and background filter are required: %w", raster.ErrInvalidParameter)
	}
	rect := opts.Rect
	if rect.Empty() {
		rect = DefaultRect(img.Width, img.Height)
	}
	if !rect.In(img.Bounds()) {
		return nil, nil, fmt.Errorf("rectangle %v outside image %v: %w", rect, img.Bounds(), raster.ErrInvalidParameter)
	}
	iters := opts.Iterations
	if iters <= 0 {
		iters = DefaultIterations
	}
	policy := DefaultPolicy
	if opts.Policy != nil {
		policy = *opts.Policy
	}

	labels, err := seg.Segment(img, rect, iters)
	if err != nil {
		return nil, nil, fmt.Errorf("segment foreground: %w", err)
	}
	if labels == nil {
		return nil, nil, fmt.Errorf("segmenter returned no labels: %w", raster.ErrExternal)
	}
	if labels.Width != img.Width || labels.Height != img.Height {
		return nil, nil, fmt.Errorf("labels %dx%d for image %dx%d: %w",
			labels.Width, labels.Height, img.Width, img.Height, raster.ErrShapeMismatch)
	}
	mask, err := Binarize(labels, policy)
	if err != nil {
		return nil, nil, err
	}
	bg, err := background(img)
	if err != nil {
		return nil, nil, fmt.Errorf("filter background: %w", err)
	}
	out, err := Composite(img, bg, mask)
	if err != nil {
		return nil, nil, err
	}
	return out, mask, nil
}
