// Package cli is the terminal workbench: open an image, pick a filter, view
// the original next to the processed result, read PSNR and SSIM, save.
package cli

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Fepozopo/edgebench/pkg/filters"
	"github.com/Fepozopo/edgebench/pkg/metrics"
	"github.com/Fepozopo/edgebench/pkg/raster"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "Commands available:")
	fmt.Fprintln(w, "  /  - select a filter and apply it")
	fmt.Fprintln(w, "  r  - re-run the current filter on the original")
	fmt.Fprintln(w, "  m  - show PSNR and SSIM of processed vs original")
	fmt.Fprintln(w, "  v  - preview original and processed side by side")
	fmt.Fprintln(w, "  o  - open another image")
	fmt.Fprintln(w, "  s  - save the processed image")
	fmt.Fprintln(w, "  u  - check for updates")
	fmt.Fprintln(w, "  h  - show this help message")
	fmt.Fprintln(w, "  q  - quit")
}

// Workbench holds the loaded original, the current filter and its last
// output.
type Workbench struct {
	Engine  *filters.Engine
	Preview *Previewer
	Prompt  *Prompter
	Updater *Updater
	Out     io.Writer
	Log     logrus.FieldLogger
	// PickFilter offers the filter menu; nil goes straight to the numbered
	// list.
	PickFilter func([]filters.CommandSpec) (string, error)

	original  *raster.Image
	processed *raster.Image
	format    raster.Format
	path      string
	filter    string
	args      []string
}

// NewWorkbench wires a workbench to stdin and stdout.
func NewWorkbench(engine *filters.Engine, log logrus.FieldLogger) *Workbench {
	return &Workbench{
		Engine:  engine,
		Preview: NewPreviewer(engine.Config.Preview.Backend, log),
		Prompt:  NewPrompter(os.Stdin, os.Stdout),
		Updater: NewUpdater(log),
		Out:     os.Stdout,
		Log:     log,

		PickFilter: SelectFilterWithFzf,
	}
}

// Original returns the loaded image, or nil.
func (w *Workbench) Original() *raster.Image { return w.original }

// Processed returns the last filter output, or nil.
func (w *Workbench) Processed() *raster.Image { return w.processed }

// Filter returns the selected filter name.
func (w *Workbench) Filter() string { return w.filter }

// Open loads path as the new original and drops any processed result.
func (w *Workbench) Open(path string) error {
	img, format, err := raster.Load(path)
	if err != nil {
		return err
	}
	w.SetOriginal(img, format)
	w.path = path
	w.Log.WithFields(logrus.Fields{"path": path, "width": img.Width, "height": img.Height}).Info("image opened")
	return nil
}

// SetOriginal installs img as the original.
func (w *Workbench) SetOriginal(img *raster.Image, format raster.Format) {
	w.original, w.format, w.path = img, format, ""
	w.processed = nil
}

// SelectFilter makes name the current filter. A different filter clears the
// processed image.
func (w *Workbench) SelectFilter(name string, args []string) error {
	if _, ok := filters.Lookup(name); !ok {
		return fmt.Errorf("unknown filter %q: %w", name, raster.ErrInvalidParameter)
	}
	if name != w.filter {
		w.processed = nil
	}
	w.filter, w.args = name, args
	return nil
}

// Run applies the current filter to the original.
func (w *Workbench) Run() error {
	if w.original == nil {
		return errors.New("no image loaded")
	}
	if w.filter == "" {
		return errors.New("no filter selected")
	}
	out, err := w.Engine.Apply(w.original, w.filter, w.args)
	if err != nil {
		return err
	}
	w.processed = out
	return nil
}

// Metrics compares the processed image with the original.
func (w *Workbench) Metrics() (metrics.Scores, error) {
	if w.original == nil || w.processed == nil {
		return metrics.Scores{}, errors.New("nothing to compare")
	}
	return metrics.Compare(w.original, w.processed)
}

// FormatScores renders the metric readout; a failed comparison shows "--".
func FormatScores(s metrics.Scores, err error) string {
	if err != nil {
		return "PSNR: --\nSSIM: --"
	}
	return fmt.Sprintf("PSNR: %s\nSSIM: %.4f", FormatPSNR(s.PSNR), s.SSIM)
}

// FormatPSNR prints decibels with two decimals; identical images read "inf dB".
func FormatPSNR(db float64) string {
	if math.IsInf(db, 1) {
		return "inf dB"
	}
	return fmt.Sprintf("%.2f dB", db)
}

// Save writes the processed image, or the original when nothing has been
// applied yet.
func (w *Workbench) Save(path string) error {
	img := w.processed
	if img == nil {
		img = w.original
	}
	if img == nil {
		return errors.New("no image to save")
	}
	return raster.Save(path, img)
}

func (w *Workbench) show() {
	if w.original == nil {
		return
	}
	if err := w.Preview.PreviewPair(w.original, w.processed); err != nil {
		w.Log.WithFields(logrus.Fields{"error": err}).Debug("preview unavailable")
	}
	if w.path != "" {
		fmt.Fprintln(w.Out, w.path)
	}
	fmt.Fprintln(w.Out, ImageInfo(w.original, w.format))
}

// chooseFilter asks for a filter with fzf, falling back to a numbered list.
func (w *Workbench) chooseFilter() (filters.CommandSpec, error) {
	if w.PickFilter != nil {
		if name, err := w.PickFilter(filters.Commands); err == nil {
			if c, ok := filters.Lookup(name); ok {
				return c, nil
			}
		}
	}
	fmt.Fprintln(w.Out, "Filter selection:")
	for i, c := range filters.Commands {
		fmt.Fprintf(w.Out, "  %d) %s - %s\n", i+1, c.Name, c.Label)
	}
	sel, err := w.Prompt.Line("Enter number or filter name (leave empty to cancel): ")
	if err != nil {
		return filters.CommandSpec{}, err
	}
	if sel == "" {
		return filters.CommandSpec{}, errors.New("selection cancelled")
	}
	return findCommand(filters.Commands, sel)
}

func (w *Workbench) promptArgs(c filters.CommandSpec) ([]string, error) {
	fmt.Fprintln(w.Out, "\n"+Tooltip(c)+"\n")
	raw := make([]string, len(c.Args))
	for i, a := range c.Args {
		label := a.Type
		if a.Type == "enum" && a.Description != "" {
			label = "enum(" + a.Description + ")"
		}
		v, err := w.Prompt.Line(fmt.Sprintf("%s (%s): ", a.Name, label))
		if err != nil {
			return nil, err
		}
		raw[i] = v
	}
	return NormalizeArgs(c, raw)
}

func (w *Workbench) applyInteractive() {
	if w.original == nil {
		fmt.Fprintln(w.Out, "No image loaded. Press 'o' to open an image first.")
		return
	}
	c, err := w.chooseFilter()
	if err != nil {
		fmt.Fprintln(w.Out, err)
		return
	}
	args, err := w.promptArgs(c)
	if err != nil {
		fmt.Fprintf(w.Out, "input validation error: %v\n", err)
		return
	}
	if err := w.SelectFilter(c.Name, args); err != nil {
		fmt.Fprintln(w.Out, err)
		return
	}
	w.rerun()
}

func (w *Workbench) rerun() {
	if err := w.Run(); err != nil {
		fmt.Fprintf(w.Out, "apply filter error: %v\n", err)
		return
	}
	fmt.Fprintf(w.Out, "Applied %s %s\n", w.filter, strings.TrimSpace(strings.Join(w.args, " ")))
	w.show()
	fmt.Fprintln(w.Out, FormatScores(w.Metrics()))
}

// Loop reads single-key commands until q or end of input.
func (w *Workbench) Loop() error {
	fmt.Fprintln(w.Out, "Edge-aware filter workbench")
	usage(w.Out)
	for {
		key, err := w.Prompt.Key("> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		switch key {
		case '/':
			w.applyInteractive()
		case 'r':
			w.rerun()
		case 'm':
			fmt.Fprintln(w.Out, FormatScores(w.Metrics()))
		case 'v':
			w.show()
		case 'o':
			path, err := w.Prompt.LineOrFile("Path to image (or '/' for fzf, empty to cancel): ", func() (string, error) {
				return w.Preview.SelectFileWithFzf(".")
			})
			if err != nil || path == "" {
				fmt.Fprintln(w.Out, "open cancelled")
				continue
			}
			if err := w.Open(path); err != nil {
				fmt.Fprintf(w.Out, "failed to read image %s: %v\n", path, err)
				continue
			}
			w.show()
		case 's':
			path, err := w.Prompt.Line("Enter output filename: ")
			if err != nil || path == "" {
				fmt.Fprintln(w.Out, "no filename provided")
				continue
			}
			if err := w.Save(path); err != nil {
				fmt.Fprintf(w.Out, "failed to write image: %v\n", err)
				continue
			}
			fmt.Fprintf(w.Out, "Saved to %s\n", path)
		case 'u':
			if err := w.Updater.Check(w.Prompt, w.Out); err != nil {
				fmt.Fprintf(w.Out, "update check error: %v\n", err)
			}
		case 'h':
			usage(w.Out)
		case 'q':
			fmt.Fprintln(w.Out, "Exiting...")
			return nil
		}
	}
}

// RunCLI opens path when given and runs the interactive loop.
func RunCLI(engine *filters.Engine, path string, log logrus.FieldLogger) error {
	w := NewWorkbench(engine, log)
	if path != "" {
		if err := w.Open(path); err != nil {
			return err
		}
		w.show()
	}
	return w.Loop()
}
