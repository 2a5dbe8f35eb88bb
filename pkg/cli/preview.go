package cli

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"

	"github.com/Fepozopo/edgebench/pkg/raster"
)

// Terminal preview over the kitty graphics protocol, the iTerm2 inline-image
// OSC 1337 sequence, an external sixel renderer (img2sixel) or chafa.
//
// Detection order when no backend is forced: inline, kitty, sixel, chafa.
// A forced backend is tried first and the detection order is used as
// fallback.

// Previewer renders images into the terminal.
type Previewer struct {
	Out     io.Writer
	Backend string // "", "kitty", "inline", "sixel" or "chafa"
	Log     logrus.FieldLogger
}

// NewPreviewer writes to stdout. PREVIEW_DEBUG=1 turns on debug logging of
// backend selection when log is nil.
func NewPreviewer(backend string, log logrus.FieldLogger) *Previewer {
	if log == nil {
		l := logrus.New()
		l.SetOutput(os.Stderr)
		if d := os.Getenv("PREVIEW_DEBUG"); d == "1" || d == "true" {
			l.SetLevel(logrus.DebugLevel)
		} else {
			l.SetLevel(logrus.WarnLevel)
		}
		log = l
	}
	return &Previewer{Out: os.Stdout, Backend: strings.ToLower(backend), Log: log}
}

func (p *Previewer) debugf(format string, args ...interface{}) {
	if p.Log != nil {
		p.Log.WithField("component", "preview").Debugf(format, args...)
	}
}

func isKitty() bool {
	if os.Getenv("KITTY_WINDOW_ID") != "" || os.Getenv("KONSOLE_VERSION") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "kitty") || strings.Contains(term, "ghost")
}

func isInlineImageCapable() bool {
	switch os.Getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "Warp", "Hyper", "vscode", "VSCode", "Tabby", "Bobcat":
		return true
	}
	if os.Getenv("ITERM_SESSION_ID") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	for _, s := range []string{"wez", "warp", "tabby", "vscode"} {
		if strings.Contains(term, s) {
			return true
		}
	}
	return false
}

// isSixelCapable is heuristic; SIXEL_PREVIEW=1 forces it.
func isSixelCapable() bool {
	if os.Getenv("SIXEL_PREVIEW") == "1" || os.Getenv("WT_SESSION") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "foot") || strings.Contains(term, "st") || strings.Contains(term, "linux")
}

func hasChafa() bool {
	if os.Getenv("NO_CHAFA") == "1" {
		return false
	}
	_, err := exec.LookPath("chafa")
	return err == nil
}

// PreviewSupported reports whether any backend is likely to work.
func PreviewSupported() bool {
	return isKitty() || isInlineImageCapable() || isSixelCapable() || hasChafa()
}

// PreviewSize is a placement in terminal cells plus its approximate pixel size.
type PreviewSize struct {
	Cols        int
	Rows        int
	PixelWidth  int
	PixelHeight int
}

// computePreviewSize fits w×h into at most 80×40 cells of 8×16 pixels
// without upscaling.
func computePreviewSize(w, h int) PreviewSize {
	const (
		charW, charH     = 8, 16
		minCols, minRows = 6, 3
		maxCols, maxRows = 80, 40
	)
	scale := math.Min(1, math.Min(float64(maxCols*charW)/float64(w), float64(maxRows*charH)/float64(h)))
	cols := int(math.Round(float64(w) * scale / charW))
	rows := int(math.Round(float64(h) * scale / charH))
	cols = min(max(cols, minCols), maxCols)
	rows = min(max(rows, minRows), maxRows)
	return PreviewSize{Cols: cols, Rows: rows, PixelWidth: cols * charW, PixelHeight: rows * charH}
}

func postImageNewlines(rows int) int {
	switch {
	case rows <= 0, rows <= 2:
		return 1
	case rows <= 6:
		return 2
	case rows <= 20:
		return 3
	}
	return 4
}

// SideBySide joins left and right horizontally with a gap, scaling right to
// the height of left.
func SideBySide(left, right *raster.Image, gap int) image.Image {
	l := left.ToImage()
	r := right.ToImage()
	lb, rb := l.Bounds(), r.Bounds()
	rw := rb.Dx()
	if rb.Dy() != lb.Dy() {
		rw = int(math.Round(float64(rb.Dx()) * float64(lb.Dy()) / float64(rb.Dy())))
	}
	out := image.NewNRGBA(image.Rect(0, 0, lb.Dx()+gap+rw, lb.Dy()))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.NRGBA{0, 0, 0, 0xff}), image.Point{}, draw.Src)
	draw.Draw(out, lb, l, lb.Min, draw.Src)
	draw.BiLinear.Scale(out, image.Rect(lb.Dx()+gap, 0, lb.Dx()+gap+rw, lb.Dy()), r, rb, draw.Src, nil)
	return out
}

// Preview renders img.
func (p *Previewer) Preview(img image.Image) error {
	if img == nil {
		return fmt.Errorf("nil image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("png encode failed: %w", err)
	}
	b := img.Bounds()
	return p.previewBytes(buf.Bytes(), computePreviewSize(b.Dx(), b.Dy()))
}

// PreviewPair renders original and processed next to each other.
func (p *Previewer) PreviewPair(original, processed *raster.Image) error {
	if processed == nil {
		return p.Preview(original.ToImage())
	}
	return p.Preview(SideBySide(original, processed, 8))
}

func (p *Previewer) previewBytes(blob []byte, size PreviewSize) error {
	send := map[string]func([]byte, PreviewSize) error{
		"kitty":  p.sendKitty,
		"inline": p.sendInline,
		"sixel":  p.sendSixel,
		"chafa":  p.sendChafa,
	}
	if p.Backend != "" {
		if fn, ok := send[p.Backend]; ok {
			err := fn(blob, size)
			if err == nil {
				return nil
			}
			p.debugf("forced backend %s failed: %v", p.Backend, err)
		} else {
			p.debugf("unknown preview backend %q", p.Backend)
		}
	}
	detected := []struct {
		name string
		ok   func() bool
	}{
		{"inline", isInlineImageCapable},
		{"kitty", isKitty},
		{"sixel", isSixelCapable},
		{"chafa", hasChafa},
	}
	var lastErr error
	for _, d := range detected {
		if !d.ok() {
			continue
		}
		p.debugf("attempting %s backend", d.name)
		if lastErr = send[d.name](blob, size); lastErr == nil {
			return nil
		}
		p.debugf("%s backend failed: %v", d.name, lastErr)
	}
	if lastErr != nil {
		return fmt.Errorf("terminal preview failed: %w", lastErr)
	}
	return fmt.Errorf("no preview protocol matched")
}

func (p *Previewer) newlines(rows int) {
	for i := 0; i < postImageNewlines(rows); i++ {
		fmt.Fprintln(p.Out)
	}
}

// sendKitty transmits a PNG in base64 chunks of at most 4096 bytes; the
// first chunk carries the placement.
func (p *Previewer) sendKitty(data []byte, size PreviewSize) error {
	enc := base64.StdEncoding.EncodeToString(data)
	const chunkSize = 4096
	for pos := 0; pos < len(enc); pos += chunkSize {
		end := min(pos+chunkSize, len(enc))
		more := "0"
		if end < len(enc) {
			more = "1"
		}
		var seq string
		if pos == 0 {
			seq = fmt.Sprintf("\x1b_Ga=T,f=100,t=d,q=2,c=%d,r=%d,m=%s;%s\x1b\\", size.Cols, size.Rows, more, enc[pos:end])
		} else {
			seq = "\x1b_Gm=" + more + ";" + enc[pos:end] + "\x1b\\"
		}
		if _, err := io.WriteString(p.Out, seq); err != nil {
			return err
		}
	}
	p.newlines(size.Rows)
	return nil
}

func (p *Previewer) sendInline(data []byte, size PreviewSize) error {
	meta := fmt.Sprintf("size=%d;", len(data))
	if size.PixelWidth > 0 && size.PixelHeight > 0 {
		meta += fmt.Sprintf("width=%dpx;height=%dpx;", size.PixelWidth, size.PixelHeight)
	}
	seq := "\x1b]1337;File=name=preview.png;inline=1;" + meta + ":" + base64.StdEncoding.EncodeToString(data) + "\a"
	if _, err := io.WriteString(p.Out, seq); err != nil {
		return err
	}
	p.newlines(0)
	return nil
}

func (p *Previewer) sendSixel(data []byte, size PreviewSize) error {
	cmd := exec.Command("img2sixel", "-")
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = p.Out
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		p.debugf("img2sixel failed: %v", err)
		return p.sendChafa(data, size)
	}
	p.newlines(0)
	return nil
}

// sendChafa renders block symbols; CHAFA_FILL and CHAFA_SYMBOLS override
// the defaults.
func (p *Previewer) sendChafa(data []byte, size PreviewSize) error {
	if !hasChafa() {
		return fmt.Errorf("chafa not available")
	}
	fill, symbols := "block", "block"
	if f := os.Getenv("CHAFA_FILL"); f != "" {
		fill = f
	}
	if s := os.Getenv("CHAFA_SYMBOLS"); s != "" {
		symbols = s
	}
	cmd := exec.Command("chafa", "--fill="+fill, "--symbols="+symbols, "-s", fmt.Sprintf("%dx%d", size.Cols, size.Rows), "-")
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = p.Out
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("chafa failed: %w", err)
	}
	p.newlines(size.Rows)
	return nil
}
