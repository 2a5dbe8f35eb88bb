package kuwahara

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/montanaflynn/stats"

	"github.com/Fepozopo/edgebench/pkg/raster"
)

// windowFilter is the brute-force path: every pixel re-reads its quadrants
// from a reflect-padded copy of the image.
type windowFilter struct {
	src        *raster.Image // padded by r
	r          int
	sumScores  bool
	aggregator Aggregator
}

// quadrantSamples gathers channel c of the quadrant for anchor a around the
// padded centre (px, py) into buf.
func (f *windowFilter) quadrantSamples(px, py, c int, a Anchor, buf stats.Float64Data) stats.Float64Data {
	buf = buf[:0]
	dx, dy := a.Origin(f.r)
	for y := py + dy; y <= py+dy+f.r; y++ {
		for x := px + dx; x <= px+dx+f.r; x++ {
			buf = append(buf, f.src.At(x, y, c))
		}
	}
	return buf
}

// pixel computes the output samples for the unpadded pixel (x, y) into dst.
func (f *windowFilter) pixel(x, y int, dst []float64, buf stats.Float64Data) error {
	px, py := x+f.r, y+f.r
	ch := f.src.Channels
	var scores [4]float64
	var aggs [4][3]float64
	for i, a := range Anchors {
		total := 0.0
		for c := 0; c < ch; c++ {
			buf = f.quadrantSamples(px, py, c, a, buf)
			v, err := stats.PopulationVariance(buf)
			if err != nil {
				return fmt.Errorf("quadrant variance: %w", err)
			}
			total += v
			var agg float64
			if f.aggregator == AggregateMedian {
				agg, err = stats.Median(buf)
			} else {
				agg, err = stats.Mean(buf)
			}
			if err != nil {
				return fmt.Errorf("quadrant aggregate: %w", err)
			}
			aggs[i][c] = agg
		}
		if !f.sumScores {
			total /= float64(ch)
		}
		scores[i] = total
	}
	best := SelectMin(scores)
	copy(dst, aggs[best][:ch])
	return nil
}

// run distributes rows over a worker pool. Each row is written by exactly
// one worker, so the result does not depend on the worker count.
func (f *windowFilter) run(w, h, workers int) ([]float64, error) {
	ch := f.src.Channels
	out := make([]float64, w*h*ch)
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > h {
		workers = h
	}
	rows := make(chan int, h)
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			k := f.r + 1
			buf := make(stats.Float64Data, 0, k*k)
			for y := range rows {
				for x := 0; x < w; x++ {
					i := (y*w + x) * ch
					if err := f.pixel(x, y, out[i:i+ch], buf); err != nil {
						errs <- err
						return
					}
				}
			}
		}()
	}
	for y := 0; y < h; y++ {
		rows <- y
	}
	close(rows)
	wg.Wait()
	close(errs)
	if err := <-errs; err != nil {
		return nil, err
	}
	return out, nil
}

// Median runs the median-quadrant Kuwahara filter: per-channel medians of
// the quadrant with the lowest mean-over-channels population variance.
func Median(img *raster.Image, window int) (*raster.Image, error) {
	if err := checkWindow(window); err != nil {
		return nil, err
	}
	return Apply(img, Options{Scorer: ScoreMedianVariance, Aggregator: AggregateMedian, Window: window})
}
