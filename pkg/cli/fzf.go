package cli

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Fepozopo/edgebench/pkg/filters"
)

// fzfMenu formats one line per filter as "name: Label - Description".
func fzfMenu(commands []filters.CommandSpec) string {
	var b strings.Builder
	for _, c := range commands {
		fmt.Fprintf(&b, "%s: %s - %s\n", c.Name, c.Label, c.Description)
	}
	return b.String()
}

// parseFzfSelection returns the filter name at the start of an fzf line.
func parseFzfSelection(selection string) (string, error) {
	name, _, _ := strings.Cut(strings.TrimSpace(selection), ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("no filter selected")
	}
	return name, nil
}

// SelectFilterWithFzf displays the filters in fzf and returns the selected
// filter name.
func SelectFilterWithFzf(commands []filters.CommandSpec) (string, error) {
	cmd := exec.Command("fzf", "--prompt=Filters> ")
	cmd.Stdin = strings.NewReader(fzfMenu(commands))
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error running fzf: %w", err)
	}
	return parseFzfSelection(out.String())
}

// filePreviewCommand picks the fzf --preview renderer for the detected
// terminal, falling back to chafa.
func filePreviewCommand() string {
	const chafa = "chafa --fill=block --symbols=block -s 80x40 {} 2>/dev/null"
	switch {
	case isKitty():
		return "printf \"\\x1b_Ga=d\\x1b\\\\\"; kitty +kitten icat --silent {} 2>/dev/null || " + chafa
	case isInlineImageCapable():
		return "imgcat {} 2>/dev/null || " + chafa
	case isSixelCapable():
		return "img2sixel {} 2>/dev/null || " + chafa
	}
	return chafa
}

// SelectFileWithFzf lists image files under startDir in fzf and returns the
// selected path. Both find and fzf must be on PATH.
func (p *Previewer) SelectFileWithFzf(startDir string) (string, error) {
	cmdStr := fmt.Sprintf(
		"find %s -type f \\( -iname '*.jpg' -o -iname '*.jpeg' -o -iname '*.png' -o -iname '*.gif' -o -iname '*.tif' -o -iname '*.tiff' -o -iname '*.bmp' \\) | fzf --height 100%% --border --prompt='Files> ' --ansi --preview=%q --preview-window='right:60%%'",
		strconv.Quote(startDir),
		filePreviewCommand(),
	)
	cmd := exec.Command("bash", "-lc", cmdStr)
	var out bytes.Buffer
	cmd.Stdout = &out
	err := cmd.Run()
	p.clearKittyImages()
	if err != nil {
		return "", fmt.Errorf("error running fzf for files: %w", err)
	}
	selection := strings.TrimSpace(out.String())
	if selection == "" {
		return "", fmt.Errorf("no file selected")
	}
	return selection, nil
}

// clearKittyImages emits the kitty graphics delete sequence; other terminals
// ignore it.
func (p *Previewer) clearKittyImages() {
	io.WriteString(p.Out, "\x1b_Ga=d\x1b\\")
}
