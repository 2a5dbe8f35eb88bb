// Package filters: authoritative registry of the workbench filters.
//
// This file mirrors the filters implemented by Engine.Apply in
// pkg/filters/engine.go. Keep both in step so callers (CLI, batch mode, help
// text) read a single source of truth.
package filters

// ArgSpec describes a single argument for a filter. Fields are textual and
// intended for help and prompt UI rather than machine-enforced typing.
type ArgSpec struct {
	Name        string // human name
	Type        string // "int", "float", "enum", ...
	Required    bool
	Default     string // textual default (for help only)
	Description string
}

// CommandSpec defines a single filter and its arguments.
type CommandSpec struct {
	Name        string
	Label       string // menu label
	Args        []ArgSpec
	Usage       string
	Description string
}

// Filter names.
const (
	NameKuwahara         = "kuwahara"
	NameKuwaharaEntropy  = "kuwahara-entropy"
	NameKuwaharaMedian   = "kuwahara-median"
	NameKuwaharaCustom   = "kuwahara-custom"
	NameGuided           = "guided"
	NameRolling          = "rolling"
	NameRollingGo        = "rolling-go"
	NameGaussian         = "gaussian"
	NamePortraitStandard = "portrait-standard"
	NamePortraitArtistic = "portrait-artistic"
	NameMagickKuwahara   = "magick-kuwahara"
	NameNoise            = "noise"
)

// Commands is the list of filters offered by Engine. Empty optional
// arguments fall back to the engine configuration.
var Commands = []CommandSpec{
	{
		Name:        NameKuwahara,
		Label:       "Kuwahara Filter",
		Args:        []ArgSpec{{"kernelSize", "int", false, "11", "odd window size"}},
		Usage:       "kuwahara [kernelSize]",
		Description: "Variance Kuwahara with box-filter statistics, shared quadrant per pixel.",
	},
	{
		Name:  NameKuwaharaEntropy,
		Label: "Entropy Kuwahara",
		Args: []ArgSpec{
			{"window", "int", false, "5", "odd window size"},
			{"bins", "int", false, "64", "histogram bins"},
		},
		Usage:       "kuwahara-entropy [window] [bins]",
		Description: "Kuwahara selecting the quadrant of lowest local entropy, per channel.",
	},
	{
		Name:        NameKuwaharaMedian,
		Label:       "Median Kuwahara",
		Args:        []ArgSpec{{"window", "int", false, "5", "odd window size"}},
		Usage:       "kuwahara-median [window]",
		Description: "Kuwahara emitting the per-channel median of the calmest quadrant.",
	},
	{
		Name:  NameKuwaharaCustom,
		Label: "Kuwahara (custom)",
		Args: []ArgSpec{
			{"scorer", "enum", true, "variance", "variance|entropy|median-variance"},
			{"aggregator", "enum", false, "mean", "mean|median"},
			{"window", "int", false, "", "odd window size"},
			{"bins", "int", false, "64", "entropy bins"},
		},
		Usage:       "kuwahara-custom <scorer> [aggregator] [window] [bins]",
		Description: "Any scorer and aggregator combination.",
	},
	{
		Name:  NameGuided,
		Label: "Guided Filter",
		Args: []ArgSpec{
			{"radius", "int", false, "10", "box radius"},
			{"eps", "float", false, "4000", "regularization on the 8-bit scale"},
		},
		Usage:       "guided [radius] [eps]",
		Description: "Self-guided edge-preserving filter (OpenCV).",
	},
	{
		Name:  NameRolling,
		Label: "Rolling Guidance Filter",
		Args: []ArgSpec{
			{"sigmaSpace", "float", false, "10", "spatial sigma"},
			{"sigmaColor", "float", false, "30", "range sigma"},
			{"iterations", "int", false, "4", "iterations"},
		},
		Usage:       "rolling [sigmaSpace] [sigmaColor] [iterations]",
		Description: "Rolling guidance filter with an OpenCV Gaussian seed.",
	},
	{
		Name:  NameRollingGo,
		Label: "Rolling Guidance (pure Go)",
		Args: []ArgSpec{
			{"sigmaSpace", "float", false, "10", "spatial sigma"},
			{"sigmaColor", "float", false, "30", "range sigma"},
			{"iterations", "int", false, "4", "iterations"},
		},
		Usage:       "rolling-go [sigmaSpace] [sigmaColor] [iterations]",
		Description: "Rolling guidance filter without OpenCV.",
	},
	{
		Name:  NameGaussian,
		Label: "Gaussian Blur",
		Args: []ArgSpec{
			{"ksize", "int", false, "21", "odd kernel size"},
			{"sigma", "float", false, "0", "sigma, 0 derives it from ksize"},
		},
		Usage:       "gaussian [ksize] [sigma]",
		Description: "Separable Gaussian blur.",
	},
	{
		Name:        NamePortraitStandard,
		Label:       "Portrait - Standard Blur",
		Args:        []ArgSpec{{"blurKernel", "int", false, "21", "odd background kernel"}},
		Usage:       "portrait-standard [blurKernel]",
		Description: "Segment the subject and Gaussian-blur the background.",
	},
	{
		Name:        NamePortraitArtistic,
		Label:       "Portrait - Artistic Style",
		Args:        []ArgSpec{{"kernelSize", "int", false, "11", "odd Kuwahara window"}},
		Usage:       "portrait-artistic [kernelSize]",
		Description: "Segment the subject and Kuwahara-paint the background.",
	},
	{
		Name:  NameMagickKuwahara,
		Label: "Kuwahara (ImageMagick)",
		Args: []ArgSpec{
			{"radius", "float", false, "2", "radius"},
			{"sigma", "float", false, "0", "gaussian sigma"},
		},
		Usage:       "magick-kuwahara [radius] [sigma]",
		Description: "Reference Kuwahara from ImageMagick.",
	},
	{
		Name:  NameNoise,
		Label: "Add Noise",
		Args: []ArgSpec{
			{"noiseType", "enum", true, "GAUSSIAN", "GAUSSIAN|UNIFORM|POISSON|SALTPEPPER"},
			{"amount", "float", true, "", "sigma, deviation, scale or fraction"},
			{"seed", "int", false, "1", "random seed"},
		},
		Usage:       "noise <noiseType> <amount> [seed]",
		Description: "Perturb the image to stress-test the filters.",
	},
}

// Lookup returns the filter named name.
func Lookup(name string) (CommandSpec, bool) {
	for _, c := range Commands {
		if c.Name == name {
			return c, true
		}
	}
	return CommandSpec{}, false
}
