// Package raster holds the dense sample model every filter in edgebench
// consumes and produces: interleaved float64 samples, row-major, with one
// or three channels and an explicit sample domain.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// Domain is the numeric range samples are expressed in.
type Domain int

const (
	// DomainByte samples live in [0,255].
	DomainByte Domain = iota
	// DomainUnit samples live in [0,1].
	DomainUnit
)

// Max returns the largest legal sample value for the domain.
func (d Domain) Max() float64 {
	if d == DomainUnit {
		return 1
	}
	return 255
}

func (d Domain) String() string {
	switch d {
	case DomainByte:
		return "byte"
	case DomainUnit:
		return "unit"
	default:
		return fmt.Sprintf("Domain(%d)", int(d))
	}
}

// Image is an H×W×C sample array. Pix[(y*Width+x)*Channels+c] holds the
// sample for channel c at column x, row y.
type Image struct {
	Width    int
	Height   int
	Channels int
	Domain   Domain
	Pix      []float64
}

// New allocates a zeroed image.
func New(w, h, channels int, d Domain) (*Image, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("image size %dx%d: %w", w, h, ErrInvalidParameter)
	}
	if channels != 1 && channels != 3 {
		return nil, fmt.Errorf("channel count %d: %w", channels, ErrInvalidParameter)
	}
	return &Image{
		Width:    w,
		Height:   h,
		Channels: channels,
		Domain:   d,
		Pix:      make([]float64, w*h*channels),
	}, nil
}

// Validate checks that the image is non-empty and internally consistent.
func (m *Image) Validate() error {
	if m == nil {
		return fmt.Errorf("nil image: %w", ErrInvalidParameter)
	}
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("zero-area image %dx%d: %w", m.Width, m.Height, ErrInvalidParameter)
	}
	if m.Channels != 1 && m.Channels != 3 {
		return fmt.Errorf("channel count %d: %w", m.Channels, ErrInvalidParameter)
	}
	if len(m.Pix) != m.Width*m.Height*m.Channels {
		return fmt.Errorf("pixel buffer holds %d samples, want %d: %w",
			len(m.Pix), m.Width*m.Height*m.Channels, ErrShapeMismatch)
	}
	return nil
}

// Bounds returns the image rectangle anchored at the origin.
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

func (m *Image) offset(x, y, c int) int {
	return (y*m.Width+x)*m.Channels + c
}

// At returns the sample at (x, y) for channel c.
func (m *Image) At(x, y, c int) float64 {
	return m.Pix[m.offset(x, y, c)]
}

// Set stores v at (x, y) for channel c.
func (m *Image) Set(x, y, c int, v float64) {
	m.Pix[m.offset(x, y, c)] = v
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	if m == nil {
		return nil
	}
	out := *m
	out.Pix = make([]float64, len(m.Pix))
	copy(out.Pix, m.Pix)
	return &out
}

// Plane extracts channel c as a dense Width*Height slice.
func (m *Image) Plane(c int) []float64 {
	n := m.Width * m.Height
	p := make([]float64, n)
	for i := 0; i < n; i++ {
		p[i] = m.Pix[i*m.Channels+c]
	}
	return p
}

// SetPlane writes a dense Width*Height slice into channel c.
func (m *Image) SetPlane(c int, p []float64) {
	for i, v := range p {
		m.Pix[i*m.Channels+c] = v
	}
}

// SameShape reports whether a and b agree on width, height and channel count.
func SameShape(a, b *Image) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Width == b.Width && a.Height == b.Height && a.Channels == b.Channels
}

// Normalized returns a copy expressed in DomainUnit. Samples outside the
// source domain are clamped and NaN becomes 0.
func (m *Image) Normalized() *Image {
	out := m.Clone()
	scale := 1 / m.Domain.Max()
	for i, v := range out.Pix {
		out.Pix[i] = ClampUnit(v * scale)
	}
	out.Domain = DomainUnit
	return out
}

// ClampUnit clamps v into [0,1], mapping NaN to 0.
func ClampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampByte clamps v into [0,255], mapping NaN to 0.
func ClampByte(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// FromImage converts a decoded image. Gray images become single-channel,
// everything else becomes RGB with alpha discarded.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	switch g := src.(type) {
	case *image.Gray:
		out := &Image{Width: w, Height: h, Channels: 1, Domain: DomainByte, Pix: make([]float64, w*h)}
		for y := 0; y < h; y++ {
			off := g.PixOffset(b.Min.X, b.Min.Y+y)
			row := g.Pix[off : off+w]
			for x, v := range row {
				out.Pix[y*w+x] = float64(v)
			}
		}
		return out
	case *image.Gray16:
		out := &Image{Width: w, Height: h, Channels: 1, Domain: DomainByte, Pix: make([]float64, w*h)}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.Pix[y*w+x] = float64(g.Gray16At(b.Min.X+x, b.Min.Y+y).Y >> 8)
			}
		}
		return out
	}
	out := &Image{Width: w, Height: h, Channels: 3, Domain: DomainByte, Pix: make([]float64, w*h*3)}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			out.Pix[i+0] = float64(c.R)
			out.Pix[i+1] = float64(c.G)
			out.Pix[i+2] = float64(c.B)
			i += 3
		}
	}
	return out
}

// ToImage renders the samples as an 8-bit image. Single-channel images
// become *image.Gray, RGB images become opaque *image.NRGBA.
func (m *Image) ToImage() image.Image {
	scale := 255 / m.Domain.Max()
	q := func(v float64) uint8 {
		return uint8(math.Round(ClampByte(v * scale)))
	}
	if m.Channels == 1 {
		out := image.NewGray(m.Bounds())
		for i, v := range m.Pix {
			out.Pix[i] = q(v)
		}
		return out
	}
	out := image.NewNRGBA(m.Bounds())
	for p := 0; p < m.Width*m.Height; p++ {
		out.Pix[p*4+0] = q(m.Pix[p*3+0])
		out.Pix[p*4+1] = q(m.Pix[p*3+1])
		out.Pix[p*4+2] = q(m.Pix[p*3+2])
		out.Pix[p*4+3] = 0xff
	}
	return out
}

// ToRGB returns a three-channel copy, replicating a single channel.
func (m *Image) ToRGB() *Image {
	if m.Channels == 3 {
		return m.Clone()
	}
	out := &Image{Width: m.Width, Height: m.Height, Channels: 3, Domain: m.Domain, Pix: make([]float64, m.Width*m.Height*3)}
	for i, v := range m.Pix {
		out.Pix[i*3+0] = v
		out.Pix[i*3+1] = v
		out.Pix[i*3+2] = v
	}
	return out
}
