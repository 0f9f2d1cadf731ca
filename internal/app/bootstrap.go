package app

import (
	"fmt"
	"io"
	"os"

	"github.com/dshills/vscreen/internal/config"
	"github.com/dshills/vscreen/internal/config/notify"
	"github.com/dshills/vscreen/internal/logging"
	"github.com/dshills/vscreen/internal/renderer"
	"github.com/dshills/vscreen/internal/renderer/charmap"
)

// bootstrapper handles the initialization sequence for the application.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string
}

func newBootstrapper(app *Application, opts Options) *bootstrapper {
	return &bootstrapper{
		app:       app,
		opts:      opts,
		initOrder: make([]string, 0, 5),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []struct {
		name string
		init func() error
	}{
		{"config", b.initConfig},
		{"logger", b.initLogger},
		{"host", b.initHost},
		{"screen", b.initScreen},
		{"device", b.initDevice},
	}

	for _, step := range steps {
		if err := step.init(); err != nil {
			b.cleanup()
			return err
		}
		b.initOrder = append(b.initOrder, step.name)
	}

	b.wireConfig()
	return nil
}

func (b *bootstrapper) initConfig() error {
	m, err := config.NewManager(config.LoadOptions{
		Path:      b.opts.ConfigPath,
		NoEnv:     b.opts.NoEnv,
		Overrides: b.opts.overrides,
	})
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	b.app.cfgm = m
	return nil
}

// initLogger writes to logging.file when set. The terminal backend owns
// the tty, so without a file its logs are dropped.
func (b *bootstrapper) initLogger() error {
	cfg := b.app.cfgm.Current()

	var out io.Writer
	switch {
	case cfg.Logging.File != "":
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return &InitError{Component: "logger", Err: err}
		}
		b.app.logFile = f
		out = f
	case b.opts.LogOutput != nil:
		out = b.opts.LogOutput
	case cfg.Surface.Backend == config.BackendTerminal:
		out = io.Discard
	default:
		out = os.Stderr
	}

	b.app.log = logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Output: out,
		Prefix: "vscreen",
	}).WithField("session", b.app.session[:8])

	if path := b.app.cfgm.Path(); path != "" {
		b.app.log.Debug("configuration loaded from %s", path)
	}
	return nil
}

func (b *bootstrapper) initHost() error {
	cfg := b.app.cfgm.Current()

	factories := builtinHosts()
	for name, f := range b.opts.Hosts {
		factories[name] = f
	}

	factory, ok := factories[cfg.Surface.Backend]
	if !ok {
		return &InitError{Component: "host", Err: fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Surface.Backend)}
	}
	host, err := factory(cfg)
	if err != nil {
		return &InitError{Component: "host", Err: err}
	}
	b.app.host = host
	return nil
}

func (b *bootstrapper) initScreen() error {
	cfg := b.app.cfgm.Current()

	cm, err := charmap.ByName(cfg.Display.Charmap)
	if err != nil {
		return &InitError{Component: "screen", Err: err}
	}

	screen, err := renderer.New(b.app.host.Surfaces(), renderer.Options{
		Strict:      cfg.Display.Strict,
		DebugLayers: cfg.Display.DebugLayers,
		Autoscale:   cfg.Display.Autoscale,
		Charmap:     cm,
		Viewport:    b.app.host.Viewport(),
		FillBuffer:  b.app.fillBuffer,
		Requester:   b.app.host.Requester(),
		Logger:      b.app.log,
	})
	if err != nil {
		return &InitError{Component: "screen", Err: err}
	}

	if err := screen.ResizeText(cfg.Display.Cols, cfg.Display.Rows); err != nil {
		return &InitError{Component: "screen", Err: err}
	}
	screen.SetScale(cfg.Display.ScaleX, cfg.Display.ScaleY)
	if cfg.Display.Paused {
		screen.Pause()
	}

	b.app.screen = screen
	b.app.strict = cfg.Display.Strict
	b.app.setBlink(cfg.Cursor)
	return nil
}

func (b *bootstrapper) initDevice() error {
	if b.opts.Device == nil {
		return &InitError{Component: "device", Err: ErrNoDevice}
	}
	if err := b.opts.Device.Attach(b.app.screen); err != nil {
		return &InitError{Component: "device", Err: err}
	}
	b.app.device = b.opts.Device
	return nil
}

// cleanup releases initialized components in reverse order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		switch b.initOrder[i] {
		case "config":
			b.app.cfgm.Close()
		case "logger":
			if b.app.logFile != nil {
				_ = b.app.logFile.Close()
			}
		case "host":
			b.app.host.Close()
		case "screen":
			b.app.screen.Destroy()
		}
	}
}

// wireConfig applies reloaded settings to the running screen.
func (b *bootstrapper) wireConfig() {
	app := b.app
	app.cfgm.OnError(func(err error) {
		app.log.Warn("config reload rejected: %v", err)
	})
	app.cfgm.Subscribe(app.applySetting)
}

// applySetting reacts to one changed setting. Settings that shape the
// host or the grid only take effect on restart.
func (app *Application) applySetting(c notify.Change) {
	if c.Type != notify.ChangeSet {
		return
	}
	cfg := app.cfgm.Current()

	switch c.Path {
	case "display.scale_x", "display.scale_y":
		app.screen.SetScale(cfg.Display.ScaleX, cfg.Display.ScaleY)
	case "display.debug_layers":
		app.screen.SetDebugLayers(cfg.Display.DebugLayers)
	case "display.autoscale":
		app.screen.SetAutoscale(cfg.Display.Autoscale)
	case "display.charmap":
		cm, err := charmap.ByName(cfg.Display.Charmap)
		if err != nil {
			app.log.Warn("charmap %q: %v", cfg.Display.Charmap, err)
			return
		}
		app.screen.SetCharmap(cm)
	case "display.paused":
		if cfg.Display.Paused {
			app.screen.Pause()
		} else {
			app.screen.Resume()
		}
	case "cursor.blink", "cursor.blink_rate":
		app.setBlink(cfg.Cursor)
	case "logging.level":
		app.log.SetLevel(logging.ParseLevel(cfg.Logging.Level))
	default:
		app.log.Info("%s changed to %v; restart to apply", c.Path, c.NewValue)
		return
	}
	app.log.Info("applied %s = %v", c.Path, c.NewValue)
}
