// Package config loads the workbench settings from YAML, a .env file and
// EDGEBENCH_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Fepozopo/edgebench/pkg/raster"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EDGEBENCH_"

// Config holds the filter defaults and runtime settings.
type Config struct {
	Kuwahara struct {
		// KernelSize is the odd window of the variance filter.
		KernelSize int `yaml:"kernelSize"`
		// EntropyWindow is the odd window of the entropy filter.
		EntropyWindow int `yaml:"entropyWindow"`
		// EntropyBins is the histogram size of the entropy filter.
		EntropyBins int `yaml:"entropyBins"`
		// MedianWindow is the odd window of the median filter.
		MedianWindow int `yaml:"medianWindow"`
		// Workers sizes the median row pool; 0 uses every CPU.
		Workers int `yaml:"workers"`
	} `yaml:"kuwahara"`

	Guided struct {
		Radius int     `yaml:"radius"`
		Eps    float64 `yaml:"eps"`
	} `yaml:"guided"`

	Rolling struct {
		SigmaSpace float64 `yaml:"sigmaSpace"`
		SigmaColor float64 `yaml:"sigmaColor"`
		Iterations int     `yaml:"iterations"`
	} `yaml:"rolling"`

	Portrait struct {
		// Iterations of the segmentation routine.
		Iterations int `yaml:"iterations"`
		// BlurKernel is the Gaussian size of the standard background.
		BlurKernel int `yaml:"blurKernel"`
		// Strict keeps probable background in the foreground.
		Strict bool `yaml:"strict"`
	} `yaml:"portrait"`

	Magick struct {
		Radius float64 `yaml:"radius"`
		Sigma  float64 `yaml:"sigma"`
	} `yaml:"magick"`

	Noise struct {
		Seed int64 `yaml:"seed"`
	} `yaml:"noise"`

	Log struct {
		// Debug switches to coloured text logs at debug level.
		Debug bool `yaml:"debug"`
	} `yaml:"log"`

	Preview struct {
		// Backend forces a terminal preview backend (kitty, inline, sixel, chafa).
		Backend string `yaml:"backend"`
	} `yaml:"preview"`
}

// DefaultConfig returns the settings the filters were tuned with.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Kuwahara.KernelSize = 11
	cfg.Kuwahara.EntropyWindow = 5
	cfg.Kuwahara.EntropyBins = 64
	cfg.Kuwahara.MedianWindow = 5
	cfg.Kuwahara.Workers = runtime.NumCPU()

	cfg.Guided.Radius = 10
	cfg.Guided.Eps = 4000

	cfg.Rolling.SigmaSpace = 10
	cfg.Rolling.SigmaColor = 30
	cfg.Rolling.Iterations = 4

	cfg.Portrait.Iterations = 5
	cfg.Portrait.BlurKernel = 21

	cfg.Magick.Radius = 2
	cfg.Noise.Seed = 1
	return cfg
}

// Load reads path on top of the defaults, then applies .env and the
// environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("error reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("error parsing config file: %w", err)
			}
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// CreateDefaultConfigFile writes the defaults to path.
func CreateDefaultConfigFile(path string) error {
	return Save(DefaultConfig(), path)
}

// Validate rejects settings no filter accepts.
func (c *Config) Validate() error {
	for name, k := range map[string]int{
		"kuwahara.kernelSize":    c.Kuwahara.KernelSize,
		"kuwahara.entropyWindow": c.Kuwahara.EntropyWindow,
		"kuwahara.medianWindow":  c.Kuwahara.MedianWindow,
		"portrait.blurKernel":    c.Portrait.BlurKernel,
	} {
		if k < 1 || k%2 == 0 {
			return fmt.Errorf("%s = %d must be odd and positive: %w", name, k, raster.ErrInvalidParameter)
		}
	}
	if c.Kuwahara.EntropyBins < 2 {
		return fmt.Errorf("kuwahara.entropyBins = %d must be at least 2: %w", c.Kuwahara.EntropyBins, raster.ErrInvalidParameter)
	}
	if c.Guided.Radius < 1 || c.Guided.Eps <= 0 {
		return fmt.Errorf("guided radius %d eps %v: %w", c.Guided.Radius, c.Guided.Eps, raster.ErrInvalidParameter)
	}
	if c.Rolling.SigmaSpace <= 0 || c.Rolling.SigmaColor <= 0 || c.Rolling.Iterations < 1 {
		return fmt.Errorf("rolling sigmaSpace %v sigmaColor %v iterations %d: %w",
			c.Rolling.SigmaSpace, c.Rolling.SigmaColor, c.Rolling.Iterations, raster.ErrInvalidParameter)
	}
	if c.Portrait.Iterations < 1 {
		return fmt.Errorf("portrait.iterations = %d: %w", c.Portrait.Iterations, raster.ErrInvalidParameter)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	ints := map[string]*int{
		"KERNEL_SIZE":        &c.Kuwahara.KernelSize,
		"ENTROPY_WINDOW":     &c.Kuwahara.EntropyWindow,
		"ENTROPY_BINS":       &c.Kuwahara.EntropyBins,
		"MEDIAN_WINDOW":      &c.Kuwahara.MedianWindow,
		"WORKERS":            &c.Kuwahara.Workers,
		"GUIDED_RADIUS":      &c.Guided.Radius,
		"ROLLING_ITERATIONS": &c.Rolling.Iterations,
		"GRABCUT_ITERATIONS": &c.Portrait.Iterations,
		"BLUR_KERNEL":        &c.Portrait.BlurKernel,
	}
	for key, dst := range ints {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
	}
	floats := map[string]*float64{
		"GUIDED_EPS":          &c.Guided.Eps,
		"ROLLING_SIGMA_SPACE": &c.Rolling.SigmaSpace,
		"ROLLING_SIGMA_COLOR": &c.Rolling.SigmaColor,
	}
	for key, dst := range floats {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = f
	}
	if v, ok := lookup(EnvPrefix + "SEED"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%sSEED: %w", EnvPrefix, err)
		}
		c.Noise.Seed = n
	}
	if v, ok := lookup(EnvPrefix + "DEBUG"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sDEBUG: %w", EnvPrefix, err)
		}
		c.Log.Debug = b
	}
	if v, ok := lookup(EnvPrefix + "STRICT"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sSTRICT: %w", EnvPrefix, err)
		}
		c.Portrait.Strict = b
	}
	if v, ok := lookup("PREVIEW_BACKEND"); ok {
		c.Preview.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	return nil
}
