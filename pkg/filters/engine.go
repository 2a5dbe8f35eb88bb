package filters

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Fepozopo/edgebench/pkg/config"
	"github.com/Fepozopo/edgebench/pkg/cvx"
	"github.com/Fepozopo/edgebench/pkg/kuwahara"
	"github.com/Fepozopo/edgebench/pkg/magick"
	"github.com/Fepozopo/edgebench/pkg/portrait"
	"github.com/Fepozopo/edgebench/pkg/raster"
	"github.com/Fepozopo/edgebench/pkg/stdimg"
)

// Engine applies registered filters with defaults taken from Config.
type Engine struct {
	Config    *config.Config
	Segmenter portrait.Segmenter
	Log       logrus.FieldLogger
}

// NewEngine returns an engine segmenting with GrabCut.
func NewEngine(cfg *config.Config, log logrus.FieldLogger) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Engine{Config: cfg, Segmenter: &cvx.GrabCut{Log: log}, Log: log}
}

// argReader reads optional positional arguments with fallbacks.
type argReader struct {
	name string
	args []string
	err  error
}

func (a *argReader) raw(i int) string {
	if i < len(a.args) {
		return strings.TrimSpace(a.args[i])
	}
	return ""
}

func (a *argReader) intAt(i int, def int) int {
	s := a.raw(i)
	if s == "" || a.err != nil {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		a.err = fmt.Errorf("%s argument %d: expected integer, got %q: %w", a.name, i+1, s, raster.ErrInvalidParameter)
		return def
	}
	return v
}

func (a *argReader) floatAt(i int, def float64) float64 {
	s := a.raw(i)
	if s == "" || a.err != nil {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		a.err = fmt.Errorf("%s argument %d: expected number, got %q: %w", a.name, i+1, s, raster.ErrInvalidParameter)
		return def
	}
	return v
}

// Apply runs the filter named name on img and returns a new image. img is
// not modified.
func (e *Engine) Apply(img *raster.Image, name string, args []string) (*raster.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("source image is nil: %w", raster.ErrInvalidParameter)
	}
	cfg := e.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	a := &argReader{name: name, args: args}
	start := time.Now()

	var (
		out *raster.Image
		err error
	)
	switch name {
	case NameKuwahara:
		k := a.intAt(0, cfg.Kuwahara.KernelSize)
		if a.err != nil {
			return nil, a.err
		}
		out, err = kuwahara.Variance(img, k)

	case NameKuwaharaEntropy:
		w, bins := a.intAt(0, cfg.Kuwahara.EntropyWindow), a.intAt(1, cfg.Kuwahara.EntropyBins)
		if a.err != nil {
			return nil, a.err
		}
		out, err = kuwahara.Entropy(img, w, bins)

	case NameKuwaharaMedian:
		w := a.intAt(0, cfg.Kuwahara.MedianWindow)
		if a.err != nil {
			return nil, a.err
		}
		out, err = kuwahara.Apply(img, kuwahara.Options{
			Scorer:     kuwahara.ScoreMedianVariance,
			Aggregator: kuwahara.AggregateMedian,
			Window:     w,
			Workers:    cfg.Kuwahara.Workers,
		})

	case NameKuwaharaCustom:
		scorer, perr := kuwahara.ParseScorer(a.raw(0))
		if perr != nil {
			return nil, perr
		}
		agg, perr := kuwahara.ParseAggregator(a.raw(1))
		if perr != nil {
			return nil, perr
		}
		opts := kuwahara.Options{
			Scorer:     scorer,
			Aggregator: agg,
			Window:     a.intAt(2, 0),
			Bins:       a.intAt(3, cfg.Kuwahara.EntropyBins),
			Workers:    cfg.Kuwahara.Workers,
		}
		if a.err != nil {
			return nil, a.err
		}
		out, err = kuwahara.Apply(img, opts)

	case NameGuided:
		r, eps := a.intAt(0, cfg.Guided.Radius), a.floatAt(1, cfg.Guided.Eps)
		if a.err != nil {
			return nil, a.err
		}
		out, err = cvx.GuidedFilter(img, r, eps)

	case NameRolling, NameRollingGo:
		ss := a.floatAt(0, cfg.Rolling.SigmaSpace)
		sc := a.floatAt(1, cfg.Rolling.SigmaColor)
		it := a.intAt(2, cfg.Rolling.Iterations)
		if a.err != nil {
			return nil, a.err
		}
		if name == NameRolling {
			out, err = cvx.RollingGuidance(img, ss, sc, it)
		} else {
			out, err = stdimg.RollingGuidance(img, ss, sc, it)
		}

	case NameGaussian:
		k, sigma := a.intAt(0, cfg.Portrait.BlurKernel), a.floatAt(1, 0)
		if a.err != nil {
			return nil, a.err
		}
		out, err = stdimg.GaussianBlur(img, k, sigma)

	case NamePortraitStandard:
		k := a.intAt(0, cfg.Portrait.BlurKernel)
		if a.err != nil {
			return nil, a.err
		}
		out, err = e.portrait(img, func(m *raster.Image) (*raster.Image, error) {
			return cvx.GaussianBlur(m, k, 0)
		})

	case NamePortraitArtistic:
		k := a.intAt(0, cfg.Kuwahara.KernelSize)
		if a.err != nil {
			return nil, a.err
		}
		out, err = e.portrait(img, func(m *raster.Image) (*raster.Image, error) {
			return kuwahara.Variance(m, k)
		})

	case NameMagickKuwahara:
		r, sigma := a.floatAt(0, cfg.Magick.Radius), a.floatAt(1, cfg.Magick.Sigma)
		if a.err != nil {
			return nil, a.err
		}
		out, err = magick.Kuwahara(img, r, sigma)

	case NameNoise:
		typ, perr := stdimg.ParseNoiseType(a.raw(0))
		if perr != nil {
			return nil, perr
		}
		if a.raw(1) == "" {
			return nil, fmt.Errorf("noise requires an amount: %w", raster.ErrInvalidParameter)
		}
		amount := a.floatAt(1, 0)
		seed := int64(a.intAt(2, int(cfg.Noise.Seed)))
		if a.err != nil {
			return nil, a.err
		}
		out, err = stdimg.AddNoise(img, typ, amount, seed)

	default:
		return nil, fmt.Errorf("unknown filter %q: %w", name, raster.ErrInvalidParameter)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if e.Log != nil {
		e.Log.WithFields(logrus.Fields{
			"filter":  name,
			"args":    strings.Join(args, " "),
			"size":    fmt.Sprintf("%dx%d", img.Width, img.Height),
			"elapsed": time.Since(start).String(),
		}).Info("filter applied")
	}
	return out, nil
}

func (e *Engine) portrait(img *raster.Image, background portrait.FilterFunc) (*raster.Image, error) {
	if e.Segmenter == nil {
		return nil, fmt.Errorf("no segmenter configured: %w", raster.ErrInvalidParameter)
	}
	opts := portrait.Options{Iterations: portrait.DefaultIterations}
	if e.Config != nil {
		opts.Iterations = e.Config.Portrait.Iterations
		if e.Config.Portrait.Strict {
			p := portrait.StrictPolicy
			opts.Policy = &p
		}
	}
	out, mask, err := portrait.Effect(img, e.Segmenter, background, opts)
	if err != nil {
		return nil, err
	}
	if e.Log != nil {
		e.Log.WithFields(logrus.Fields{"coverage": mask.Coverage()}).Debug("foreground mask")
	}
	return out, nil
}
