// Command icoforge-cli converts an image into a multi-size ICO file
// without opening a window.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"icoforge/internal/config"
	"icoforge/internal/ico"
	"icoforge/internal/logger"
	"icoforge/internal/models"
	"icoforge/internal/opencv"
	"icoforge/internal/resample"
	"icoforge/internal/services"
)

const version = "1.1.0"

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// usageError marks errors caused by the command line rather than the conversion.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...interface{}) error {
	return usageError{fmt.Errorf(format, args...)}
}

type options struct {
	input      string
	output     string
	sizes      string
	resampler  string
	fit        string
	format     string
	inspect    string
	configPath string
	logLevel   string
	logFormat  string
	showVer    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := execute(ctx, args, stdout, stderr)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return exitOK
	}

	fmt.Fprintf(stderr, "icoforge-cli: %v\n", err)
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintln(stderr, "Run 'icoforge-cli --help' for usage.")
		return exitUsage
	}
	return exitFailure
}

func newFlagSet(opts *options, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("icoforge-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false

	fs.StringVarP(&opts.input, "input", "i", "", "source image (png, jpeg, gif, bmp, tiff, webp, svg)")
	fs.StringVarP(&opts.output, "output", "o", "", "output .ico file (default: input with .ico extension)")
	fs.StringVarP(&opts.sizes, "sizes", "s", "", `comma separated sizes such as "16,32,48", or "all" (default from config)`)
	fs.StringVar(&opts.resampler, "resampler", "", "resize filter (default from config)")
	fs.StringVar(&opts.fit, "fit", "", "pad, contain or stretch (default from config)")
	fs.StringVar(&opts.format, "format", "", "entry encoding: bmp or png (default from config)")
	fs.StringVar(&opts.inspect, "inspect", "", "list the entries of an existing .ico file and exit")
	fs.StringVar(&opts.configPath, "config", "", "configuration file (default $"+config.EnvConfigPath+" or the user config dir)")
	fs.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn, error or disabled")
	fs.StringVar(&opts.logFormat, "log-format", "console", "console or json")
	fs.BoolVarP(&opts.showVer, "version", "v", false, "print the version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: icoforge-cli -i INPUT [-o OUTPUT] [-s SIZES] [flags]\n\n")
		fs.PrintDefaults()
	}
	return fs
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts options
	fs := newFlagSet(&opts, stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError{err}
	}
	if fs.NArg() > 0 {
		return usagef("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if opts.showVer {
		fmt.Fprintf(stdout, "icoforge-cli %s\n", version)
		return nil
	}

	if opts.inspect != "" {
		return inspect(opts.inspect, stdout)
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	applyFlags(fs, &opts, cfg)

	log, err := newLogger(cfg.LogLevel, opts.logFormat, stderr)
	if err != nil {
		return usageError{err}
	}

	if opts.input == "" {
		return usagef("an input image is required (-i)")
	}
	sizes, err := requestedSizes(fs, &opts, cfg)
	if err != nil {
		return err
	}
	if _, err := resample.ParseFit(cfg.Fit); err != nil {
		return usageError{err}
	}
	if _, err := ico.ParseFormat(cfg.Format); err != nil {
		return usageError{err}
	}

	registry := resample.NewDefaultRegistry()
	if err := opencv.Register(registry); err != nil {
		return err
	}
	if _, err := registry.Get(cfg.Resampler); err != nil {
		return usageError{err}
	}

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(opts.input, filepath.Ext(opts.input)) + ".ico"
	}

	images := services.NewImageService(log, nil)
	conversion := services.NewConversionService(images, registry, nil, log)

	result, err := conversion.Convert(ctx, models.ConversionRequest{
		SourcePath: opts.input,
		OutputPath: output,
		Sizes:      sizes,
		Resampler:  cfg.Resampler,
		Fit:        cfg.Fit,
		Format:     cfg.Format,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Successfully converted %s to %s\n", opts.input, result.OutputPath)
	for _, e := range result.Entries {
		fmt.Fprintf(stdout, "  %s  %dx%d\n", e.Size, e.Width, e.Height)
	}
	for _, s := range result.Skipped {
		fmt.Fprintf(stdout, "  %s  skipped (larger than the source)\n", s)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfig(path)
	}
	cfg, _, err := config.Load()
	return cfg, err
}

// requestedSizes parses --sizes when given. Otherwise the sizes come from
// the allSizes and defaultSizes settings, the same way the window starts.
func requestedSizes(fs *flag.FlagSet, opts *options, cfg *config.Config) ([]models.IconSize, error) {
	if fs.Changed("sizes") {
		sizes, err := models.ParseSizes(opts.sizes)
		if err != nil {
			return nil, usageError{err}
		}
		return sizes, nil
	}

	sizes := models.NewSessionRepository(cfg.AllSizes, models.SizesFromInts(cfg.DefaultSizes)).SelectedSizes()
	if len(sizes) == 0 {
		return nil, usagef("no sizes selected: set allSizes or defaultSizes in the config, or pass -s")
	}
	return sizes, nil
}

// applyFlags lets explicitly given flags override the configuration file.
func applyFlags(fs *flag.FlagSet, opts *options, cfg *config.Config) {
	if fs.Changed("resampler") {
		cfg.Resampler = opts.resampler
	}
	if fs.Changed("fit") {
		cfg.Fit = opts.fit
	}
	if fs.Changed("format") {
		cfg.Format = opts.format
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
}

func newLogger(levelName, format string, w io.Writer) (logger.Logger, error) {
	level, err := logger.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	switch format {
	case "json":
		return logger.NewZerolog(w, level), nil
	case "console", "":
		return logger.NewZerolog(zerolog.ConsoleWriter{Out: w}, level), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want console or json)", format)
	}
}

func inspect(path string, stdout io.Writer) error {
	entries, err := services.Inspect(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: %d entries\n", path, len(entries))
	for i, e := range entries {
		fmt.Fprintf(stdout, "  #%d %s\n", i, e)
	}
	return nil
}
