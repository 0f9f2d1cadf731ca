package config

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/vscreen/internal/config/loader"
	"github.com/dshills/vscreen/internal/logging"
	"github.com/dshills/vscreen/internal/renderer/charmap"
)

// Surface backends.
const (
	BackendTerminal = "terminal"
	BackendWindow   = "window"
	BackendHeadless = "headless"
)

// Config is the complete vscreen configuration.
type Config struct {
	Display  DisplayConfig  `yaml:"display"`
	Surface  SurfaceConfig  `yaml:"surface"`
	Cursor   CursorConfig   `yaml:"cursor"`
	Logging  LoggingConfig  `yaml:"logging"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
}

// DisplayConfig controls the emulated display.
type DisplayConfig struct {
	// Strict turns precondition violations into panics.
	Strict bool `yaml:"strict"`
	// DebugLayers outlines graphics layers instead of blitting them.
	DebugLayers bool `yaml:"debug_layers"`
	// Autoscale doubles small graphics modes when they fit.
	Autoscale bool    `yaml:"autoscale"`
	ScaleX    float64 `yaml:"scale_x"`
	ScaleY    float64 `yaml:"scale_y"`
	// Charmap names the code page used for bytes 0x80-0xFF.
	Charmap string `yaml:"charmap"`
	Cols    int    `yaml:"cols"`
	Rows    int    `yaml:"rows"`
	// TickRate is the frame rate in Hz.
	TickRate int  `yaml:"tick_rate"`
	Paused   bool `yaml:"paused"`
}

// SurfaceConfig selects and sizes the host surface.
type SurfaceConfig struct {
	Backend string `yaml:"backend"`
	Title   string `yaml:"title"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	// DPR is the device pixel ratio assumed by the headless backend.
	DPR float64 `yaml:"dpr"`
}

// CursorConfig controls the text cursor blink.
type CursorConfig struct {
	Blink     bool          `yaml:"blink"`
	BlinkRate time.Duration `yaml:"blink_rate"`
}

// LoggingConfig controls diagnostics output.
type LoggingConfig struct {
	Level string `yaml:"level"`
	// File receives log output; empty means stderr.
	File string `yaml:"file"`
}

// SnapshotConfig controls where captured frames are written.
type SnapshotConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Display: DisplayConfig{
			Autoscale: true,
			ScaleX:    1,
			ScaleY:    1,
			Charmap:   "cp437",
			Cols:      80,
			Rows:      25,
			TickRate:  60,
		},
		Surface: SurfaceConfig{
			Backend: BackendTerminal,
			Title:   "vscreen",
			Width:   1280,
			Height:  800,
			DPR:     1,
		},
		Cursor: CursorConfig{
			Blink:     true,
			BlinkRate: 530 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Snapshot: SnapshotConfig{
			Dir:    ".",
			Prefix: "vscreen",
		},
	}
}

// Validate checks every setting and returns all failures joined.
func (c Config) Validate() error {
	var errs []error
	add := func(path, msg string, value any, code ValidationErrorCode) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value, Code: code})
	}

	if c.Display.ScaleX <= 0 {
		add("display.scale_x", "must be positive", c.Display.ScaleX, ErrCodeOutOfRange)
	}
	if c.Display.ScaleY <= 0 {
		add("display.scale_y", "must be positive", c.Display.ScaleY, ErrCodeOutOfRange)
	}
	if _, err := charmap.ByName(c.Display.Charmap); err != nil {
		add("display.charmap", "unknown code page", c.Display.Charmap, ErrCodeInvalidEnum)
	}
	if c.Display.Cols <= 0 {
		add("display.cols", "must be positive", c.Display.Cols, ErrCodeOutOfRange)
	}
	if c.Display.Rows <= 0 {
		add("display.rows", "must be positive", c.Display.Rows, ErrCodeOutOfRange)
	}
	if c.Display.TickRate <= 0 || c.Display.TickRate > 1000 {
		add("display.tick_rate", "must be within 1..1000", c.Display.TickRate, ErrCodeOutOfRange)
	}

	switch c.Surface.Backend {
	case BackendTerminal, BackendWindow, BackendHeadless:
	case "":
		add("surface.backend", "is required", c.Surface.Backend, ErrCodeRequiredMissing)
	default:
		add("surface.backend", "must be terminal, window or headless", c.Surface.Backend, ErrCodeInvalidEnum)
	}
	if c.Surface.Width <= 0 {
		add("surface.width", "must be positive", c.Surface.Width, ErrCodeOutOfRange)
	}
	if c.Surface.Height <= 0 {
		add("surface.height", "must be positive", c.Surface.Height, ErrCodeOutOfRange)
	}
	if c.Surface.DPR <= 0 {
		add("surface.dpr", "must be positive", c.Surface.DPR, ErrCodeOutOfRange)
	}

	if c.Cursor.Blink && c.Cursor.BlinkRate <= 0 {
		add("cursor.blink_rate", "must be positive when blinking", c.Cursor.BlinkRate, ErrCodeOutOfRange)
	}

	if _, ok := logging.LookupLevel(c.Logging.Level); !ok {
		add("logging.level", "must be debug, info, warn or error", c.Logging.Level, ErrCodeInvalidEnum)
	}

	if c.Snapshot.Prefix == "" {
		add("snapshot.prefix", "is required", c.Snapshot.Prefix, ErrCodeRequiredMissing)
	}

	return errors.Join(errs...)
}

// LoadOptions describes where Load reads configuration from.
type LoadOptions struct {
	// Path is the TOML or YAML file. Empty skips the file layer.
	Path string
	// FS reads Path; nil means the OS file system.
	FS loader.FileSystem
	// EnvPrefix selects environment variables; empty means VSCREEN_.
	EnvPrefix string
	// NoEnv skips the environment layer.
	NoEnv bool
	// Overrides is applied after decoding and before validation.
	Overrides func(*Config)
}

// Load builds a Config from defaults, the file, the environment and the
// overrides, in increasing precedence, then validates it.
func Load(opts LoadOptions) (Config, error) {
	var data map[string]any

	if opts.Path != "" {
		fl, err := loader.NewFileLoader(opts.FS, opts.Path)
		if err != nil {
			return Config{}, err
		}
		fileData, err := fl.Load()
		if err != nil {
			return Config{}, err
		}
		if fileData == nil {
			return Config{}, fmt.Errorf("%w: %s", ErrFileNotFound, opts.Path)
		}
		data = loader.DeepMerge(data, fileData)
	}

	if !opts.NoEnv {
		envData, err := loader.NewEnvLoader(opts.EnvPrefix).Load()
		if err != nil {
			return Config{}, err
		}
		data = loader.DeepMerge(data, envData)
	}

	cfg, err := Decode(data)
	if err != nil {
		return Config{}, err
	}
	if opts.Overrides != nil {
		opts.Overrides(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode applies a settings map on top of Default. Keys absent from data
// keep their default values.
func Decode(data map[string]any) (Config, error) {
	cfg := Default()
	if len(data) == 0 {
		return cfg, nil
	}
	raw, err := yaml.Marshal(data)
	if err != nil {
		return Config{}, fmt.Errorf("encoding settings: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding settings: %w", err)
	}
	return cfg, nil
}

// Flatten returns every setting keyed by its dotted path.
func (c Config) Flatten() map[string]any {
	return map[string]any{
		"display.strict":       c.Display.Strict,
		"display.debug_layers": c.Display.DebugLayers,
		"display.autoscale":    c.Display.Autoscale,
		"display.scale_x":      c.Display.ScaleX,
		"display.scale_y":      c.Display.ScaleY,
		"display.charmap":      c.Display.Charmap,
		"display.cols":         c.Display.Cols,
		"display.rows":         c.Display.Rows,
		"display.tick_rate":    c.Display.TickRate,
		"display.paused":       c.Display.Paused,
		"surface.backend":      c.Surface.Backend,
		"surface.title":        c.Surface.Title,
		"surface.width":        c.Surface.Width,
		"surface.height":       c.Surface.Height,
		"surface.dpr":          c.Surface.DPR,
		"cursor.blink":         c.Cursor.Blink,
		"cursor.blink_rate":    c.Cursor.BlinkRate,
		"logging.level":        c.Logging.Level,
		"logging.file":         c.Logging.File,
		"snapshot.dir":         c.Snapshot.Dir,
		"snapshot.prefix":      c.Snapshot.Prefix,
	}
}

// Setting is a single changed value reported by Diff.
type Setting struct {
	Path     string
	OldValue any
	NewValue any
}

// Diff lists the settings whose values differ, sorted by path.
func Diff(prev, next Config) []Setting {
	before := prev.Flatten()
	after := next.Flatten()

	var out []Setting
	for path, nv := range after {
		if ov := before[path]; ov != nv {
			out = append(out, Setting{Path: path, OldValue: before[path], NewValue: nv})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
