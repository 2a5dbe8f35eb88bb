// Package metrics scores a processed image against its reference.
package metrics

import (
	"fmt"
	"math"

	"github.com/anthonynsimon/bild/transform"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Fepozopo/edgebench/pkg/raster"
)

const (
	ssimWindow = 7
	ssimK1     = 0.01
	ssimK2     = 0.03
)

// Scores pairs the two readouts shown next to a comparison.
type Scores struct {
	PSNR float64
	SSIM float64
}

func checkPair(ref, cand *raster.Image) error {
	if err := ref.Validate(); err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	if err := cand.Validate(); err != nil {
		return fmt.Errorf("candidate: %w", err)
	}
	if !raster.SameShape(ref, cand) {
		return fmt.Errorf("reference %dx%dx%d vs candidate %dx%dx%d: %w",
			ref.Width, ref.Height, ref.Channels, cand.Width, cand.Height, cand.Channels, raster.ErrShapeMismatch)
	}
	return nil
}

func dataRangeFor(ref *raster.Image, dataRange float64) float64 {
	if dataRange > 0 {
		return dataRange
	}
	return ref.Domain.Max()
}

// PSNR returns the peak signal-to-noise ratio in decibels. Identical images
// score +Inf. A dataRange of zero uses the reference's domain maximum.
func PSNR(ref, cand *raster.Image, dataRange float64) (float64, error) {
	if err := checkPair(ref, cand); err != nil {
		return 0, err
	}
	l := dataRangeFor(ref, dataRange)
	d := floats.Distance(ref.Pix, cand.Pix, 2)
	mse := d * d / float64(len(ref.Pix))
	if mse == 0 {
		return math.Inf(1), nil
	}
	return 10 * math.Log10(l*l/mse), nil
}

// SSIM returns the mean structural similarity over a 7×7 uniform window,
// averaged across channels. Both images must be at least 7 pixels on each side.
func SSIM(ref, cand *raster.Image, dataRange float64) (float64, error) {
	if err := checkPair(ref, cand); err != nil {
		return 0, err
	}
	if ref.Width < ssimWindow || ref.Height < ssimWindow {
		return 0, fmt.Errorf("ssim needs at least %dx%d pixels, got %dx%d: %w",
			ssimWindow, ssimWindow, ref.Width, ref.Height, raster.ErrInvalidParameter)
	}
	l := dataRangeFor(ref, dataRange)
	per := make([]float64, ref.Channels)
	for c := 0; c < ref.Channels; c++ {
		per[c] = ssimPlane(ref.Plane(c), cand.Plane(c), ref.Width, ref.Height, l)
	}
	return stat.Mean(per, nil), nil
}

func ssimPlane(x, y []float64, w, h int, l float64) float64 {
	n := len(x)
	xx := make([]float64, n)
	yy := make([]float64, n)
	xy := make([]float64, n)
	floats.MulTo(xx, x, x)
	floats.MulTo(yy, y, y)
	floats.MulTo(xy, x, y)

	ux := uniform(x, w, h, ssimWindow)
	uy := uniform(y, w, h, ssimWindow)
	uxx := uniform(xx, w, h, ssimWindow)
	uyy := uniform(yy, w, h, ssimWindow)
	uxy := uniform(xy, w, h, ssimWindow)

	np := float64(ssimWindow * ssimWindow)
	covNorm := np / (np - 1)
	c1 := (ssimK1 * l) * (ssimK1 * l)
	c2 := (ssimK2 * l) * (ssimK2 * l)

	pad := (ssimWindow - 1) / 2
	s := make([]float64, 0, (w-2*pad)*(h-2*pad))
	for py := pad; py < h-pad; py++ {
		for px := pad; px < w-pad; px++ {
			i := py*w + px
			vx := covNorm * (uxx[i] - ux[i]*ux[i])
			vy := covNorm * (uyy[i] - uy[i]*uy[i])
			vxy := covNorm * (uxy[i] - ux[i]*uy[i])
			a1 := 2*ux[i]*uy[i] + c1
			a2 := 2*vxy + c2
			b1 := ux[i]*ux[i] + uy[i]*uy[i] + c1
			b2 := vx + vy + c2
			s = append(s, (a1*a2)/(b1*b2))
		}
	}
	return stat.Mean(s, nil)
}

// uniform is a separable k×k mean filter with reflected borders.
func uniform(p []float64, w, h, k int) []float64 {
	r := k / 2
	tmp := make([]float64, len(p))
	for y := 0; y < h; y++ {
		row := p[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			sum := 0.0
			for d := -r; d <= r; d++ {
				sum += row[raster.Reflect(x+d, w)]
			}
			tmp[y*w+x] = sum / float64(k)
		}
	}
	out := make([]float64, len(p))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0.0
			for d := -r; d <= r; d++ {
				sum += tmp[raster.Reflect(y+d, h)*w+x]
			}
			out[y*w+x] = sum / float64(k)
		}
	}
	return out
}

// Compare scores cand against ref. A candidate of a different size is
// resized bilinearly to the reference first, and a grey candidate facing a
// colour reference (or the reverse) is widened to RGB. The data range is
// taken from the reference domain.
func Compare(ref, cand *raster.Image) (Scores, error) {
	if err := ref.Validate(); err != nil {
		return Scores{}, fmt.Errorf("reference: %w", err)
	}
	if err := cand.Validate(); err != nil {
		return Scores{}, fmt.Errorf("candidate: %w", err)
	}
	if cand.Width != ref.Width || cand.Height != ref.Height {
		cand = Resize(cand, ref.Width, ref.Height)
	}
	if cand.Domain != ref.Domain {
		cand = matchDomain(cand, ref.Domain)
	}
	if cand.Channels != ref.Channels {
		ref, cand = ref.ToRGB(), cand.ToRGB()
	}
	var (
		sc  Scores
		err error
	)
	if sc.PSNR, err = PSNR(ref, cand, 0); err != nil {
		return Scores{}, fmt.Errorf("psnr: %w", err)
	}
	if sc.SSIM, err = SSIM(ref, cand, 0); err != nil {
		return Scores{}, fmt.Errorf("ssim: %w", err)
	}
	return sc, nil
}

// Resize scales img to w×h with bilinear interpolation. The result is in the
// byte domain with the source channel count.
func Resize(img *raster.Image, w, h int) *raster.Image {
	out := raster.FromImage(transform.Resize(img.ToImage(), w, h, transform.Linear))
	if img.Channels == 1 && out.Channels == 3 {
		gray, _ := raster.New(w, h, 1, raster.DomainByte)
		gray.SetPlane(0, out.Plane(0))
		out = gray
	}
	return matchDomain(out, img.Domain)
}

func matchDomain(img *raster.Image, d raster.Domain) *raster.Image {
	if img.Domain == d {
		return img
	}
	if d == raster.DomainUnit {
		return img.Normalized()
	}
	out := img.Clone()
	for i, v := range out.Pix {
		out.Pix[i] = raster.ClampByte(v * 255)
	}
	out.Domain = raster.DomainByte
	return out
}
