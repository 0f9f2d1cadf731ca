// Package main is the entry point for vscreen, an emulated VGA-style
// display shown in a terminal, a desktop window or headless.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/vscreen/internal/app"
	"github.com/dshills/vscreen/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts, graphics := parseFlags()

	dev := newDemo(graphics)
	opts.Device = dev
	opts.Hosts = map[string]app.HostFactory{
		config.BackendWindow: newWindowHost,
	}

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Ensure cleanup on all exit paths
	defer application.Shutdown()
	dev.SetLogger(application.Logger())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		if errors.Is(err, app.ErrQuit) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

func parseFlags() (app.Options, bool) {
	var opts app.Options
	var graphics, showVersion, showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml or .yaml)")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.Backend, "backend", "", "Display backend (terminal, window, headless)")
	flag.BoolVar(&graphics, "graphics", false, "Start the demo in graphics mode")
	flag.Float64Var(&opts.Scale, "scale", 0, "Scale factor for both axes")
	flag.BoolVar(&opts.DebugLayers, "debug-layers", false, "Outline graphics layers instead of drawing them")
	flag.Uint64Var(&opts.Ticks, "ticks", 0, "Stop after this many frames (0 runs until quit)")
	flag.StringVar(&opts.Snapshot, "snapshot", "", "Write a PNG of the last frame on exit (\"auto\" names it)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "vscreen - emulated display renderer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: vscreen [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys: g toggles graphics mode, p pauses, q or Esc quits\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  vscreen                                 Text demo in the terminal\n")
		fmt.Fprintf(os.Stderr, "  vscreen -backend window -scale 2        Desktop window at 2x\n")
		fmt.Fprintf(os.Stderr, "  vscreen -backend headless -ticks 60 -snapshot auto\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("vscreen %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if flag.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Error: unexpected arguments: %v\n", flag.Args())
		os.Exit(2)
	}

	return opts, graphics
}
