package stdimg

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/Fepozopo/edgebench/pkg/raster"
)

// NoiseType selects the perturbation applied by AddNoise.
type NoiseType string

const (
	NoiseGaussian   NoiseType = "GAUSSIAN"
	NoiseUniform    NoiseType = "UNIFORM"
	NoisePoisson    NoiseType = "POISSON"
	NoiseSaltPepper NoiseType = "SALTPEPPER"
)

// ParseNoiseType accepts the noise names case-insensitively.
func ParseNoiseType(s string) (NoiseType, error) {
	switch t := NoiseType(strings.ToUpper(strings.TrimSpace(s))); t {
	case NoiseGaussian, NoiseUniform, NoisePoisson, NoiseSaltPepper:
		return t, nil
	case "SALT-PEPPER", "SALT_PEPPER", "SP":
		return NoiseSaltPepper, nil
	}
	return "", fmt.Errorf("unknown noise type %q: %w", s, raster.ErrInvalidParameter)
}

// AddNoise perturbs img. amount is the standard deviation for gaussian, the
// maximum deviation for uniform, the photon scale for poisson and the
// corrupted fraction for salt-and-pepper. Gaussian and uniform amounts are
// expressed on the 0..255 scale whatever the image domain. The same seed
// always yields the same output; seed 0 is mapped to 1.
func AddNoise(img *raster.Image, typ NoiseType, amount float64, seed int64) (*raster.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if amount < 0 || math.IsNaN(amount) {
		return nil, fmt.Errorf("noise amount %v: %w", amount, raster.ErrInvalidParameter)
	}
	switch typ {
	case NoiseGaussian:
		return AddGaussianNoise(img, 0, amount, seed)
	case NoiseSaltPepper:
		return AddSaltPepper(img, amount, seed)
	case NoiseUniform, NoisePoisson:
	default:
		return nil, fmt.Errorf("unknown noise type %q: %w", typ, raster.ErrInvalidParameter)
	}
	if amount == 0 {
		return img.Clone(), nil
	}
	rng := newRand(seed)
	out := img.Clone()
	top := img.Domain.Max()
	scale := top / 255
	if typ == NoiseUniform {
		for i, v := range out.Pix {
			out.Pix[i] = clampDomain(v+(rng.Float64()*2-1)*amount*scale, top)
		}
		return out, nil
	}
	cdfs := buildPoissonCDFs(amount)
	for i, v := range out.Pix {
		ch := int(v / scale)
		if ch < 0 {
			ch = 0
		}
		if ch > 255 {
			ch = 255
		}
		k := sort.SearchFloat64s(cdfs[ch], rng.Float64())
		out.Pix[i] = clampDomain(float64(k)*(255/amount)*scale, top)
	}
	return out, nil
}

// AddGaussianNoise adds N(mean, sigma) noise to every sample. mean and sigma
// are on the 0..255 scale; results are clipped to the image domain.
func AddGaussianNoise(img *raster.Image, mean, sigma float64, seed int64) (*raster.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if sigma < 0 || math.IsNaN(sigma) || math.IsNaN(mean) {
		return nil, fmt.Errorf("gaussian noise mean %v sigma %v: %w", mean, sigma, raster.ErrInvalidParameter)
	}
	rng := newRand(seed)
	out := img.Clone()
	top := img.Domain.Max()
	scale := top / 255
	for i, v := range out.Pix {
		out.Pix[i] = clampDomain(v+(mean+gaussianSample(rng, sigma))*scale, top)
	}
	return out, nil
}

// AddSaltPepper replaces a fraction amount of the pixels with pure black or
// pure white, half each on average. Every channel of a hit pixel is replaced.
func AddSaltPepper(img *raster.Image, amount float64, seed int64) (*raster.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if amount < 0 || amount > 1 || math.IsNaN(amount) {
		return nil, fmt.Errorf("salt-and-pepper amount %v outside [0,1]: %w", amount, raster.ErrInvalidParameter)
	}
	rng := newRand(seed)
	out := img.Clone()
	top := img.Domain.Max()
	ch := img.Channels
	for p := 0; p < img.Width*img.Height; p++ {
		if rng.Float64() >= amount {
			continue
		}
		v := 0.0
		if rng.Intn(2) == 1 {
			v = top
		}
		for c := 0; c < ch; c++ {
			out.Pix[p*ch+c] = v
		}
	}
	return out, nil
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = 1
	}
	return rand.New(rand.NewSource(seed))
}

func clampDomain(v, top float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > top {
		return top
	}
	return v
}

// gaussianSample returns a normal(0,std) sample using Box-Muller
func gaussianSample(rng *rand.Rand, std float64) float64 {
	if std <= 0 {
		return 0
	}
	u1 := 1 - rng.Float64()
	u2 := rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2) * std
}

// buildPoissonCDFs precomputes a Poisson CDF for every 8-bit level. Level ch
// uses lambda = ch/255*amount.
func buildPoissonCDFs(amount float64) [][]float64 {
	cdfs := make([][]float64, 256)
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan int, 256)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for ch := range jobs {
				lambda := float64(ch) / 255 * amount
				if lambda <= 0 {
					cdfs[ch] = []float64{1}
					continue
				}
				cdf := make([]float64, 0, 32)
				p := math.Exp(-lambda)
				cum := p
				cdf = append(cdf, cum)
				upper := int(math.Ceil(lambda + 10*math.Sqrt(lambda) + 10))
				if upper < 32 {
					upper = 32
				}
				for k := 1; cum < 1-1e-12 && k <= upper; k++ {
					p = p * lambda / float64(k)
					cum = math.Min(cum+p, 1)
					cdf = append(cdf, cum)
				}
				cdfs[ch] = cdf
			}
		}()
	}
	for ch := 0; ch < 256; ch++ {
		jobs <- ch
	}
	close(jobs)
	wg.Wait()
	return cdfs
}
