// Package kuwahara implements edge-aware Kuwahara smoothing. Every variant
// looks at four overlapping (r+1)×(r+1) quadrants around each pixel, scores
// them, and emits an aggregate of the quadrant with the lowest score.
//
// The variants are expressed as a Scorer and an Aggregator combined by
// Apply:
//
//	ScoreVariance       + AggregateMean    summed channel variance, shared selection (box filters)
//	ScoreEntropy        + AggregateMean    binned local entropy, per-channel selection (box filters)
//	ScoreMedianVariance + AggregateMedian  mean channel variance, per-channel median (per-pixel windows)
//
// ScoreVariance and ScoreMedianVariance also accept the other aggregator;
// those combinations run on the per-pixel window path.
package kuwahara

import (
	"fmt"
	"math"
	"strings"

	"github.com/Fepozopo/edgebench/pkg/raster"
)

// Scorer selects how a quadrant is scored.
type Scorer int

const (
	ScoreVariance Scorer = iota
	ScoreEntropy
	ScoreMedianVariance
)

func (s Scorer) String() string {
	switch s {
	case ScoreVariance:
		return "variance"
	case ScoreEntropy:
		return "entropy"
	case ScoreMedianVariance:
		return "median-variance"
	default:
		return fmt.Sprintf("Scorer(%d)", int(s))
	}
}

// ParseScorer accepts the names produced by Scorer.String.
func ParseScorer(name string) (Scorer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "variance", "":
		return ScoreVariance, nil
	case "entropy":
		return ScoreEntropy, nil
	case "median-variance", "median":
		return ScoreMedianVariance, nil
	}
	return 0, fmt.Errorf("unknown scorer %q: %w", name, raster.ErrInvalidParameter)
}

// Aggregator selects what the winning quadrant contributes.
type Aggregator int

const (
	AggregateMean Aggregator = iota
	AggregateMedian
)

func (a Aggregator) String() string {
	if a == AggregateMedian {
		return "median"
	}
	return "mean"
}

// ParseAggregator accepts "mean" and "median".
func ParseAggregator(name string) (Aggregator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mean", "":
		return AggregateMean, nil
	case "median":
		return AggregateMedian, nil
	}
	return 0, fmt.Errorf("unknown aggregator %q: %w", name, raster.ErrInvalidParameter)
}

// Default parameters.
const (
	DefaultKernelSize   = 11
	DefaultEntropyBins  = 64
	DefaultEntropyWin   = 5
	DefaultMedianWindow = 5
)

// Options configures Apply. Zero Window and Bins fall back to the defaults
// of the chosen scorer; Workers <= 0 uses GOMAXPROCS.
type Options struct {
	Scorer     Scorer
	Aggregator Aggregator
	Window     int
	Bins       int
	Workers    int
}

func (o Options) withDefaults() Options {
	if o.Window == 0 {
		switch o.Scorer {
		case ScoreEntropy:
			o.Window = DefaultEntropyWin
		case ScoreMedianVariance:
			o.Window = DefaultMedianWindow
		default:
			o.Window = DefaultKernelSize
		}
	}
	if o.Scorer == ScoreEntropy && o.Bins == 0 {
		o.Bins = DefaultEntropyBins
	}
	return o
}

func checkWindow(w int) error {
	if w < 1 || w%2 == 0 {
		return fmt.Errorf("window size %d must be odd and >= 1: %w", w, raster.ErrInvalidParameter)
	}
	return nil
}

// Validate reports unusable options with raster.ErrInvalidParameter.
func (o Options) Validate() error {
	if err := checkWindow(o.Window); err != nil {
		return err
	}
	switch o.Scorer {
	case ScoreVariance, ScoreMedianVariance:
	case ScoreEntropy:
		if o.Bins < 2 {
			return fmt.Errorf("bin count %d must be >= 2: %w", o.Bins, raster.ErrInvalidParameter)
		}
		if o.Aggregator != AggregateMean {
			return fmt.Errorf("entropy scoring supports only the mean aggregator: %w", raster.ErrInvalidParameter)
		}
	default:
		return fmt.Errorf("unknown scorer %d: %w", int(o.Scorer), raster.ErrInvalidParameter)
	}
	if o.Aggregator != AggregateMean && o.Aggregator != AggregateMedian {
		return fmt.Errorf("unknown aggregator %d: %w", int(o.Aggregator), raster.ErrInvalidParameter)
	}
	return nil
}

// Apply runs the filter described by opts and returns a new image with the
// same width, height and channel count as img. img is not modified.
func Apply(img *raster.Image, opts Options) (*raster.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r := (opts.Window - 1) / 2

	switch {
	case opts.Scorer == ScoreEntropy:
		q := entropyQuadrants(img.Normalized(), r, opts.Bins)
		out := &raster.Image{Width: img.Width, Height: img.Height, Channels: img.Channels, Domain: raster.DomainByte}
		out.Pix = q.Select()
		for i, v := range out.Pix {
			out.Pix[i] = math.Floor(raster.ClampUnit(v)*255 + unitEpsilon)
		}
		return out, nil

	case opts.Scorer == ScoreVariance && opts.Aggregator == AggregateMean:
		q := varianceQuadrants(img, r)
		out := &raster.Image{Width: img.Width, Height: img.Height, Channels: img.Channels, Domain: img.Domain}
		out.Pix = q.Select()
		finish(out)
		return out, nil

	default:
		f := &windowFilter{
			src:        img.PadReflect(r),
			r:          r,
			sumScores:  opts.Scorer == ScoreVariance,
			aggregator: opts.Aggregator,
		}
		pix, err := f.run(img.Width, img.Height, opts.Workers)
		if err != nil {
			return nil, err
		}
		out := &raster.Image{Width: img.Width, Height: img.Height, Channels: img.Channels, Domain: img.Domain, Pix: pix}
		finish(out)
		return out, nil
	}
}

// unitEpsilon absorbs the rounding of the 1/255 scale so a unit mean of an
// exact byte level truncates back to that level.
const unitEpsilon = 1e-9

// finish clips samples into the image domain; byte samples are truncated
// to integers.
func finish(img *raster.Image) {
	if img.Domain == raster.DomainUnit {
		for i, v := range img.Pix {
			img.Pix[i] = raster.ClampUnit(v)
		}
		return
	}
	for i, v := range img.Pix {
		img.Pix[i] = math.Trunc(raster.ClampByte(v))
	}
}
