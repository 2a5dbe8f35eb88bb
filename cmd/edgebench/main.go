// Command edgebench is a terminal workbench for edge-aware smoothing
// filters. With -in and -filter it runs one filter in batch mode; otherwise
// it starts the interactive workbench.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Fepozopo/edgebench/pkg/cli"
	"github.com/Fepozopo/edgebench/pkg/config"
	"github.com/Fepozopo/edgebench/pkg/filters"
	"github.com/Fepozopo/edgebench/pkg/magick"
	"github.com/Fepozopo/edgebench/pkg/metrics"
	"github.com/Fepozopo/edgebench/pkg/raster"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(argv []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("edgebench", flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "", "input image")
	filter := fs.String("filter", "", "filter name for batch mode (see -list)")
	args := fs.String("args", "", "comma separated filter arguments; empty entries use the configured default")
	out := fs.String("out", "", "output image for batch mode")
	cfgPath := fs.String("config", "edgebench.yaml", "YAML configuration file")
	initCfg := fs.Bool("init-config", false, "write the default configuration to -config and exit")
	list := fs.Bool("list", false, "list filters and exit")
	debug := fs.Bool("debug", false, "enable debug mode with verbose logging")
	version := fs.Bool("version", false, "print the version and exit")
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	switch {
	case *version:
		fmt.Fprintln(stderr, cli.Version)
		return 0
	case *list:
		for _, c := range filters.Commands {
			fmt.Fprintf(stderr, "%-18s %s\n", c.Name, c.Usage)
		}
		return 0
	case *initCfg:
		if err := config.CreateDefaultConfigFile(*cfgPath); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	logger := initLogger(*debug || cfg.Log.Debug, stderr)
	logger.WithFields(logrus.Fields{
		"version":    cli.Version,
		"debug_mode": *debug || cfg.Log.Debug,
	}).Debug("starting edgebench")

	magick.Init()
	defer magick.Terminate()

	engine := filters.NewEngine(cfg, logger)
	if *filter == "" {
		if err := cli.RunCLI(engine, firstNonEmpty(*in, fs.Arg(0)), logger); err != nil {
			logger.WithError(err).Error("workbench stopped")
			return 1
		}
		return 0
	}
	if err := batch(engine, *in, *filter, splitArgs(*args), *out, logger); err != nil {
		logger.WithError(err).Error("batch run failed")
		return 1
	}
	return 0
}

// batch applies one filter to in, writes out and logs the metrics against
// the input.
func batch(engine *filters.Engine, in, filter string, args []string, out string, log logrus.FieldLogger) error {
	if in == "" || out == "" {
		return fmt.Errorf("batch mode needs -in and -out: %w", raster.ErrInvalidParameter)
	}
	src, _, err := raster.Load(in)
	if err != nil {
		return err
	}
	dst, err := engine.Apply(src, filter, args)
	if err != nil {
		return err
	}
	if err := raster.Save(out, dst); err != nil {
		return err
	}
	fields := logrus.Fields{"in": in, "out": out, "filter": filter}
	if s, err := metrics.Compare(src, dst); err == nil {
		fields["psnr"], fields["ssim"] = cli.FormatPSNR(s.PSNR), s.SSIM
	} else {
		log.WithError(err).Debug("metrics unavailable")
	}
	log.WithFields(fields).Info("image written")
	return nil
}

func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool, w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
