package raster

// Orient applies an EXIF orientation (1..8) and returns a new image.
// Unknown values and 1 return a copy.
func (m *Image) Orient(orientation int) *Image {
	switch orientation {
	case 2:
		return m.remap(m.Width, m.Height, func(x, y int) (int, int) { return m.Width - 1 - x, y })
	case 3:
		return m.remap(m.Width, m.Height, func(x, y int) (int, int) { return m.Width - 1 - x, m.Height - 1 - y })
	case 4:
		return m.remap(m.Width, m.Height, func(x, y int) (int, int) { return x, m.Height - 1 - y })
	case 5:
		// transpose
		return m.remap(m.Height, m.Width, func(x, y int) (int, int) { return y, x })
	case 6:
		// rotate 90 clockwise
		return m.remap(m.Height, m.Width, func(x, y int) (int, int) { return y, m.Height - 1 - x })
	case 7:
		// transverse
		return m.remap(m.Height, m.Width, func(x, y int) (int, int) { return m.Width - 1 - y, m.Height - 1 - x })
	case 8:
		// rotate 90 counter-clockwise
		return m.remap(m.Height, m.Width, func(x, y int) (int, int) { return m.Width - 1 - y, x })
	default:
		return m.Clone()
	}
}

// remap builds a w×h image whose pixel (x, y) is read from src(x, y).
func (m *Image) remap(w, h int, src func(x, y int) (int, int)) *Image {
	out := &Image{Width: w, Height: h, Channels: m.Channels, Domain: m.Domain, Pix: make([]float64, len(m.Pix))}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := src(x, y)
			for c := 0; c < m.Channels; c++ {
				out.Pix[(y*w+x)*m.Channels+c] = m.Pix[(sy*m.Width+sx)*m.Channels+c]
			}
		}
	}
	return out
}
