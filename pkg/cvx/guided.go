package cvx

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/Fepozopo/edgebench/pkg/raster"
)

// Guided filter defaults; eps is on the squared 8-bit scale.
const (
	DefaultGuidedRadius = 10
	DefaultGuidedEps    = 4000
)

// GuidedFilter runs a self-guided filter on every channel of img:
// q = mean(a)·I + mean(b) with a = var(I)/(var(I)+eps) and b = (1-a)·mean(I),
// all means over a (2·radius+1)² box.
func GuidedFilter(img *raster.Image, radius int, eps float64) (*raster.Image, error) {
	if radius < 1 || eps <= 0 {
		return nil, fmt.Errorf("guided filter radius %d eps %v: %w", radius, eps, raster.ErrInvalidParameter)
	}
	return apply(img, func(src gocv.Mat, dst *gocv.Mat) error {
		planes := gocv.Split(src)
		defer func() {
			for _, p := range planes {
				p.Close()
			}
		}()
		out := make([]gocv.Mat, 0, len(planes))
		defer func() {
			for _, p := range out {
				p.Close()
			}
		}()
		for _, p := range planes {
			q, err := guidedPlane(p, radius, eps)
			if err != nil {
				return err
			}
			out = append(out, q)
		}
		if len(out) == 1 {
			out[0].CopyTo(dst)
			return nil
		}
		return gocv.Merge(out, dst)
	})
}

func guidedPlane(src gocv.Mat, radius int, eps float64) (gocv.Mat, error) {
	ksize := image.Point{X: 2*radius + 1, Y: 2*radius + 1}

	in := gocv.NewMat()
	defer in.Close()
	src.ConvertTo(&in, gocv.MatTypeCV32F)

	meanI := gocv.NewMat()
	defer meanI.Close()
	if err := gocv.Blur(in, &meanI, ksize); err != nil {
		return gocv.NewMat(), fmt.Errorf("mean: %w", err)
	}

	sq := gocv.NewMat()
	defer sq.Close()
	if err := gocv.Multiply(in, in, &sq); err != nil {
		return gocv.NewMat(), fmt.Errorf("square: %w", err)
	}
	meanSq := gocv.NewMat()
	defer meanSq.Close()
	if err := gocv.Blur(sq, &meanSq, ksize); err != nil {
		return gocv.NewMat(), fmt.Errorf("mean square: %w", err)
	}

	meanI2 := gocv.NewMat()
	defer meanI2.Close()
	if err := gocv.Multiply(meanI, meanI, &meanI2); err != nil {
		return gocv.NewMat(), fmt.Errorf("mean squared: %w", err)
	}
	varI := gocv.NewMat()
	defer varI.Close()
	if err := gocv.Subtract(meanSq, meanI2, &varI); err != nil {
		return gocv.NewMat(), fmt.Errorf("variance: %w", err)
	}

	denom := gocv.NewMat()
	defer denom.Close()
	varI.CopyTo(&denom)
	denom.AddFloat(float32(eps))
	a := gocv.NewMat()
	defer a.Close()
	if err := gocv.Divide(varI, denom, &a); err != nil {
		return gocv.NewMat(), fmt.Errorf("coefficient a: %w", err)
	}

	ones := gocv.NewMatWithSize(a.Rows(), a.Cols(), a.Type())
	defer ones.Close()
	ones.SetTo(gocv.NewScalar(1, 0, 0, 0))
	oneMinusA := gocv.NewMat()
	defer oneMinusA.Close()
	if err := gocv.Subtract(ones, a, &oneMinusA); err != nil {
		return gocv.NewMat(), fmt.Errorf("1-a: %w", err)
	}
	b := gocv.NewMat()
	defer b.Close()
	if err := gocv.Multiply(meanI, oneMinusA, &b); err != nil {
		return gocv.NewMat(), fmt.Errorf("coefficient b: %w", err)
	}

	meanA := gocv.NewMat()
	defer meanA.Close()
	if err := gocv.Blur(a, &meanA, ksize); err != nil {
		return gocv.NewMat(), fmt.Errorf("mean a: %w", err)
	}
	meanB := gocv.NewMat()
	defer meanB.Close()
	if err := gocv.Blur(b, &meanB, ksize); err != nil {
		return gocv.NewMat(), fmt.Errorf("mean b: %w", err)
	}

	scaled := gocv.NewMat()
	defer scaled.Close()
	if err := gocv.Multiply(meanA, in, &scaled); err != nil {
		return gocv.NewMat(), fmt.Errorf("scale: %w", err)
	}
	q := gocv.NewMat()
	defer q.Close()
	if err := gocv.Add(scaled, meanB, &q); err != nil {
		return gocv.NewMat(), fmt.Errorf("offset: %w", err)
	}

	out := gocv.NewMat()
	q.ConvertTo(&out, gocv.MatTypeCV8U)
	return out, nil
}
