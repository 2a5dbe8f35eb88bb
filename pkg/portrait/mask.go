// Package portrait composites two renderings of an image through a
// foreground mask, and builds the portrait effect: a segmentation collaborator
// labels the subject, the background is replaced by a filtered copy.
package portrait

import (
	"fmt"

	"github.com/Fepozopo/edgebench/pkg/raster"
)

// Label is a per-pixel segmentation code. The values match GrabCut's.
type Label uint8

const (
	LabelBackground         Label = 0
	LabelForeground         Label = 1
	LabelProbableBackground Label = 2
	LabelProbableForeground Label = 3
)

// LabelMap is a W×H grid of labels, row-major.
type LabelMap struct {
	Width  int
	Height int
	Labels []Label
}

// Policy decides which labels count as background; everything else is
// foreground.
type Policy struct {
	Background []Label
}

var (
	// DefaultPolicy treats definite and probable background as background.
	DefaultPolicy = Policy{Background: []Label{LabelBackground, LabelProbableBackground}}
	// StrictPolicy keeps probable background in the foreground.
	StrictPolicy = Policy{Background: []Label{LabelBackground}}
)

// IsBackground reports whether l falls in the policy's background set.
func (p Policy) IsBackground(l Label) bool {
	for _, b := range p.Background {
		if b == l {
			return true
		}
	}
	return false
}

// Mask is a binary W×H grid; 1 marks foreground.
type Mask struct {
	Width  int
	Height int
	Bits   []uint8
}

// FullMask returns a mask with every pixel set to v (0 or 1).
func FullMask(w, h int, v uint8) *Mask {
	m := &Mask{Width: w, Height: h, Bits: make([]uint8, w*h)}
	if v != 0 {
		for i := range m.Bits {
			m.Bits[i] = 1
		}
	}
	return m
}

// Binarize collapses labels into a mask under policy.
func Binarize(labels *LabelMap, policy Policy) (*Mask, error) {
	if labels == nil || labels.Width <= 0 || labels.Height <= 0 {
		return nil, fmt.Errorf("empty label map: %w", raster.ErrInvalidParameter)
	}
	if len(labels.Labels) != labels.Width*labels.Height {
		return nil, fmt.Errorf("label map holds %d labels for %dx%d: %w",
			len(labels.Labels), labels.Width, labels.Height, raster.ErrShapeMismatch)
	}
	m := &Mask{Width: labels.Width, Height: labels.Height, Bits: make([]uint8, len(labels.Labels))}
	for i, l := range labels.Labels {
		if !policy.IsBackground(l) {
			m.Bits[i] = 1
		}
	}
	return m, nil
}

// Coverage returns the fraction of foreground pixels.
func (m *Mask) Coverage() float64 {
	if len(m.Bits) == 0 {
		return 0
	}
	n := 0
	for _, b := range m.Bits {
		if b != 0 {
			n++
		}
	}
	return float64(n) / float64(len(m.Bits))
}
