// Command ffpredict estimates membrane thickness, area per lipid and the
// electron-density profile from a measured form-factor curve.
//
// Usage:
//
//	ffpredict -artifacts ./artifacts [-mode adaptive] [-plot density.png] curve.csv
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/banshee-data/cellscatter/internal/artifact"
	"github.com/banshee-data/cellscatter/internal/config"
	"github.com/banshee-data/cellscatter/internal/densityplot"
	"github.com/banshee-data/cellscatter/internal/fsutil"
	"github.com/banshee-data/cellscatter/internal/monitoring"
	"github.com/banshee-data/cellscatter/internal/normalize"
	"github.com/banshee-data/cellscatter/internal/predictor"
	"github.com/banshee-data/cellscatter/internal/version"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("ffpredict: ")
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, fsutil.OSFileSystem{}))
}

type cliFlags struct {
	artifacts string
	config    string
	mode      string
	quiet     bool
	plot      string
	plotDir   string
	label     string
	json      bool
	verbose   bool
	version   bool
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("ffpredict", flag.ContinueOnError)
	fs.SetOutput(stderr)

	f := &cliFlags{}
	fs.StringVar(&f.artifacts, "artifacts", "", "Artifact directory (overrides artifact_dir in -config)")
	fs.StringVar(&f.config, "config", "", "Predictor config JSON file (default "+config.DefaultConfigPath+" when present)")
	fs.StringVar(&f.mode, "mode", "constant", "Form-factor normalization: constant or adaptive")
	fs.BoolVar(&f.quiet, "quiet", false, "Do not print the text report")
	fs.StringVar(&f.plot, "plot", "", "Write the density plot to this file (.png, .svg, .pdf, .jpg, .html)")
	fs.StringVar(&f.plotDir, "plot-dir", "", "Write the density plot as <label or uuid>.png in this directory")
	fs.StringVar(&f.label, "label", "", "Curve name used in plot titles and file names")
	fs.BoolVar(&f.json, "json", false, "Print the result as JSON instead of the text report")
	fs.BoolVar(&f.verbose, "v", false, "Log artifact loading and plot output")
	fs.BoolVar(&f.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func run(args []string, stdout, stderr io.Writer, fsys fsutil.FileSystem) int {
	f, rest, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	if f.version {
		fmt.Fprintf(stdout, "ffpredict %s\n", version.String())
		return 0
	}
	if len(rest) != 1 {
		fmt.Fprintln(stderr, "usage: ffpredict [flags] CURVE_FILE")
		return 2
	}
	if !f.verbose {
		defer monitoring.Redirect(nil)()
	}

	mode, err := normalize.ParseMode(f.mode)
	if err != nil {
		fmt.Fprintf(stderr, "ffpredict: %v\n", err)
		return 2
	}

	cfg, err := loadConfig(fsys, f.config)
	if err != nil {
		fmt.Fprintf(stderr, "ffpredict: %v\n", err)
		return 1
	}
	if f.artifacts != "" {
		cfg.ArtifactDir = &f.artifacts
	}

	models, err := artifact.Load(fsys, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "ffpredict: failed to load artifacts: %v\n", err)
		return 1
	}

	opts := []predictor.Option{predictor.WithReport(stdout)}
	switch {
	case f.plot != "":
		if _, err := densityplot.FormatFromPath(f.plot); err != nil {
			fmt.Fprintf(stderr, "ffpredict: %v\n", err)
			return 2
		}
		opts = append(opts, predictor.WithPlotter(densityplot.FileWriter{FS: fsys, Path: f.plot}))
	case f.plotDir != "":
		opts = append(opts, predictor.WithPlotter(densityplot.DirWriter{FS: fsys, Dir: f.plotDir}))
	}
	p, err := predictor.New(models, opts...)
	if err != nil {
		fmt.Fprintf(stderr, "ffpredict: %v\n", err)
		return 1
	}

	data, err := fsys.ReadFile(rest[0])
	if err != nil {
		fmt.Fprintf(stderr, "ffpredict: %v\n", err)
		return 1
	}
	curve, err := parseCurve(strings.NewReader(string(data)))
	if err != nil {
		fmt.Fprintf(stderr, "ffpredict: %s: %v\n", rest[0], err)
		return 1
	}

	// -json keeps stdout machine-readable, so it also silences the report.
	res, err := p.Predict(curve, predictor.Options{
		Mode:    mode,
		Verbose: !f.quiet && !f.json,
		Plot:    f.plot != "" || f.plotDir != "",
		Label:   f.label,
	})
	if err != nil {
		fmt.Fprintf(stderr, "ffpredict: prediction failed: %v\n", err)
		return 1
	}

	if f.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			fmt.Fprintf(stderr, "ffpredict: %v\n", err)
			return 1
		}
	}
	return 0
}

// loadConfig reads path, or the defaults file when path is empty and
// the file exists, and otherwise returns the built-in defaults.
func loadConfig(fsys fsutil.FileSystem, path string) (*config.PredictorConfig, error) {
	if path == "" {
		if !fsys.Exists(config.DefaultConfigPath) {
			return config.DefaultPredictorConfig(), nil
		}
		path = config.DefaultConfigPath
	}
	return config.LoadPredictorConfig(fsys, path)
}

// parseCurve reads numbers separated by commas, whitespace or newlines.
// Blank lines and lines starting with '#' are skipped.
func parseCurve(r io.Reader) ([]float64, error) {
	var curve []float64
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ';' || r == ' ' || r == '\t'
		})
		for _, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid float '%s': %w", line, field, err)
			}
			curve = append(curve, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(curve) == 0 {
		return nil, fmt.Errorf("no values in curve")
	}
	return curve, nil
}
