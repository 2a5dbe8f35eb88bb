package kuwahara

// Quadrants holds the per-anchor statistics for one filter invocation.
// Means is laid out like raster.Image.Pix. Scores holds one value per pixel
// when the score is shared by all channels, or one value per sample when
// PerChannel is set.
type Quadrants struct {
	Width      int
	Height     int
	Channels   int
	PerChannel bool
	Means      [4][]float64
	Scores     [4][]float64
}

// SelectMin returns the index of the smallest score. Ties resolve to the
// earliest anchor in Anchors order.
func SelectMin(scores [4]float64) int {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] < scores[best] {
			best = i
		}
	}
	return best
}

// Choice returns the winning anchor index for every pixel (or sample, when
// the scores are per channel).
func (q *Quadrants) Choice() []uint8 {
	out := make([]uint8, len(q.Scores[0]))
	var s [4]float64
	for i := range out {
		for a := range s {
			s[a] = q.Scores[a][i]
		}
		out[i] = uint8(SelectMin(s))
	}
	return out
}

// Select emits, for each sample, the mean of the winning quadrant.
func (q *Quadrants) Select() []float64 {
	choice := q.Choice()
	out := make([]float64, q.Width*q.Height*q.Channels)
	for p := 0; p < q.Width*q.Height; p++ {
		for c := 0; c < q.Channels; c++ {
			i := p*q.Channels + c
			a := choice[p]
			if q.PerChannel {
				a = choice[i]
			}
			out[i] = q.Means[a][i]
		}
	}
	return out
}
