package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Fepozopo/edgebench/pkg/raster"
)

// Prompter reads answers line by line from a single buffered reader so no
// input is lost between prompts.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter prompts on out and reads from in.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Line prints prompt and returns the next line without surrounding
// whitespace. A final line without a newline is still returned.
func (p *Prompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Key returns the first non-blank character of the next line, lowercased.
func (p *Prompter) Key(prompt string) (rune, error) {
	line, err := p.Line(prompt)
	if err != nil {
		return 0, err
	}
	if line == "" {
		return 0, nil
	}
	return []rune(strings.ToLower(line))[0], nil
}

// LineOrFile reads a line; a lone "/" runs pick instead and falls back to a
// typed answer when it fails.
func (p *Prompter) LineOrFile(prompt string, pick func() (string, error)) (string, error) {
	input, err := p.Line(prompt)
	if err != nil || input != "/" || pick == nil {
		return input, err
	}
	if sel, perr := pick(); perr == nil && sel != "" {
		fmt.Fprintf(p.out, " [fzf] %s\n", sel)
		return sel, nil
	}
	return p.Line(prompt)
}

// ImageInfo summarises img and the container it came from.
func ImageInfo(img *raster.Image, format raster.Format) string {
	if img == nil {
		return "no image"
	}
	if format == "" {
		format = "unknown"
	}
	return fmt.Sprintf("Format: %s, Width: %d, Height: %d, Channels: %d, Domain: %s",
		strings.ToUpper(string(format)), img.Width, img.Height, img.Channels, img.Domain)
}
