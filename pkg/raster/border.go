package raster

// Reflect maps an out-of-range index into [0, n) by mirroring with the edge
// sample repeated (fedcba|abcdefgh|hgfedcb). It is valid for any offset,
// including offsets several periods away from the image.
func Reflect(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}

// PadReflect returns a copy of m grown by pad samples on every side, the new
// border filled by Reflect.
func (m *Image) PadReflect(pad int) *Image {
	w, h := m.Width+2*pad, m.Height+2*pad
	out := &Image{Width: w, Height: h, Channels: m.Channels, Domain: m.Domain, Pix: make([]float64, w*h*m.Channels)}
	for y := 0; y < h; y++ {
		sy := Reflect(y-pad, m.Height)
		for x := 0; x < w; x++ {
			sx := Reflect(x-pad, m.Width)
			copy(out.Pix[(y*w+x)*m.Channels:(y*w+x+1)*m.Channels],
				m.Pix[(sy*m.Width+sx)*m.Channels:(sy*m.Width+sx+1)*m.Channels])
		}
	}
	return out
}
