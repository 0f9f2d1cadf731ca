// Package app hosts an emulated display: it loads the configuration,
// builds the surfaces for the selected backend, creates the renderer
// screen, and drives the frame loop for the attached device.
package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/vscreen/internal/config"
	"github.com/dshills/vscreen/internal/logging"
	"github.com/dshills/vscreen/internal/renderer"
	"github.com/dshills/vscreen/internal/renderer/backend"
	"github.com/dshills/vscreen/internal/renderer/cursor"
	"github.com/dshills/vscreen/internal/renderer/scale"
)

// Device is the emulated hardware writing to the screen.
type Device interface {
	// Attach is called once the screen exists, before the first tick.
	Attach(screen *renderer.Screen) error

	// Step advances the device to now. It runs before every tick.
	Step(now time.Time)

	// FillBuffer composites the graphics layers of the current frame.
	// It is only called in graphics mode while the screen is running.
	FillBuffer()
}

// KeyHandler is implemented by devices that take keyboard input.
type KeyHandler interface {
	HandleKey(ev backend.Event)
}

// Options configures the application. Zero values leave the configured
// setting untouched.
type Options struct {
	// ConfigPath is the path to a TOML or YAML configuration file.
	ConfigPath string

	// LogLevel overrides logging.level.
	LogLevel string

	// Backend overrides surface.backend.
	Backend string

	// Scale sets both display scale factors when positive.
	Scale float64

	// DebugLayers forces display.debug_layers on.
	DebugLayers bool

	// Ticks stops the loop after that many frames when positive.
	Ticks uint64

	// Snapshot is a PNG path written when the loop ends; SnapshotAuto
	// derives a name from the snapshot settings and the session id.
	Snapshot string

	// Device drives the screen. Required.
	Device Device

	// LogOutput receives log lines when logging.file is empty.
	LogOutput io.Writer

	// Hosts adds or replaces backend factories by name.
	Hosts map[string]HostFactory

	// NoEnv ignores VSCREEN_* variables.
	NoEnv bool
}

// SnapshotAuto selects a generated snapshot file name.
const SnapshotAuto = "auto"

// overrides applies command-line values on top of the loaded configuration.
func (o Options) overrides(c *config.Config) {
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.Backend != "" {
		c.Surface.Backend = o.Backend
	}
	if o.Scale > 0 {
		c.Display.ScaleX = o.Scale
		c.Display.ScaleY = o.Scale
	}
	if o.DebugLayers {
		c.Display.DebugLayers = true
	}
}

// Application is the central coordinator of one emulated display.
type Application struct {
	mu sync.Mutex

	opts    Options
	session string

	cfgm    *config.Manager
	log     *logging.Logger
	logFile io.Closer

	host    Host
	screen  *renderer.Screen
	device  Device
	blinker *cursor.Blinker
	blinkAt [2]int // cursor row and col the blink phase belongs to
	strict  bool

	metrics *Metrics
	frames  atomic.Uint64

	running   atomic.Bool
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// New creates an application and initializes every component.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:    opts,
		session: uuid.NewString(),
		metrics: NewMetrics(),
	}

	if err := newBootstrapper(app, opts).bootstrap(); err != nil {
		return nil, err
	}

	return app, nil
}

// Run drives the frame loop until ctx is done, the frame limit is reached,
// the user quits, or the host closes. It writes the snapshot, if one was
// requested, before returning.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	app.mu.Lock()
	app.cancel = cancel
	app.mu.Unlock()

	if err := app.cfgm.Watch(); err != nil {
		app.log.Warn("config live reload disabled: %v", err)
	}

	cfg := app.cfgm.Current()
	app.log.Info("running %s backend at %d Hz", cfg.Surface.Backend, cfg.Display.TickRate)
	app.screen.Start()

	var errs ErrorList
	if err := app.host.Run(ctx, app); err != nil &&
		!errors.Is(err, context.Canceled) && !errors.Is(err, ErrQuit) {
		errs.Add(NewComponentError("host", "run", err))
	}

	if app.opts.Snapshot != "" {
		path, err := app.WriteSnapshot(app.opts.Snapshot)
		if err != nil {
			errs.Add(err)
		} else {
			app.log.Info("snapshot written to %s", path)
		}
	}

	m := app.metrics.Snapshot()
	st := app.screen.Stats()
	app.log.Info("stopped after %d frames (avg %v, %d rows, %d layers, %d dropped writes)",
		m.FrameCount, m.AvgFrameTime(), st.RowsRendered, st.LayersApplied, st.DroppedWrites)

	return errs.AsError()
}

// Stop ends a running loop. It is safe to call from any goroutine.
func (app *Application) Stop() {
	app.mu.Lock()
	cancel := app.cancel
	app.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Shutdown stops the loop and releases the screen, the host, the config
// watcher and the log file. Safe to call more than once.
func (app *Application) Shutdown() {
	app.Stop()
	app.closeOnce.Do(func() {
		app.screen.Destroy()
		app.host.Close()
		app.cfgm.Close()
		if app.logFile != nil {
			_ = app.logFile.Close()
		}
	})
}

// IsRunning returns true if the loop is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Session returns the random id of this run.
func (app *Application) Session() string {
	return app.session
}

// Config returns the active configuration.
func (app *Application) Config() config.Config {
	return app.cfgm.Current()
}

// Screen returns the renderer screen.
func (app *Application) Screen() *renderer.Screen {
	return app.screen
}

// Logger returns the application logger.
func (app *Application) Logger() *logging.Logger {
	return app.log
}

// Metrics returns the frame metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Frame delivers one tick: the device steps, the cursor blink advances,
// and the screen renders. A cursor that moved restarts in the on phase.
func (app *Application) Frame() {
	start := time.Now()

	app.stepDevice(start)
	cs := app.screen.Cursor()

	app.mu.Lock()
	var toggled bool
	if app.blinker != nil {
		if pos := [2]int{cs.Row, cs.Col}; pos != app.blinkAt {
			app.blinkAt = pos
			toggled = !app.blinker.On()
			app.blinker.Reset(start)
		} else {
			toggled = app.blinker.Update(start)
		}
	}
	on := app.blinker == nil || app.blinker.On()
	app.mu.Unlock()
	if toggled {
		app.screen.SetCursorBlink(on)
	}

	app.screen.Tick()
	app.metrics.RecordFrame(time.Since(start))

	if n := app.frames.Add(1); app.opts.Ticks > 0 && n >= app.opts.Ticks {
		app.Stop()
	}
}

// Event handles one input event from the host.
func (app *Application) Event(ev backend.Event) {
	if ev.IsQuit() {
		app.log.Debug("quit requested")
		app.Stop()
		return
	}
	if ev.Type != backend.EventKey {
		return
	}
	if kh, ok := app.device.(KeyHandler); ok {
		kh.HandleKey(ev)
		app.metrics.RecordInput()
	}
}

// Resize reports a new host viewport.
func (app *Application) Resize(vp scale.Viewport) {
	app.screen.SetViewport(vp)
}

// stepDevice runs the device step. Outside strict mode a panicking device
// costs one frame instead of the process.
func (app *Application) stepDevice(now time.Time) {
	if !app.strict {
		defer func() {
			if r := recover(); r != nil {
				app.metrics.RecordDroppedFrame()
				app.log.Error("device step panicked: %v", r)
			}
		}()
	}
	app.device.Step(now)
}

func (app *Application) fillBuffer() {
	if app.device != nil {
		app.device.FillBuffer()
	}
}

// setBlink configures the cursor blink driver.
func (app *Application) setBlink(c config.CursorConfig) {
	app.mu.Lock()
	if c.Blink {
		app.blinker = cursor.NewBlinker(c.BlinkRate, time.Now())
	} else {
		app.blinker = nil
	}
	app.mu.Unlock()

	app.screen.SetCursorBlink(true)
}
