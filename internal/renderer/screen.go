package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/vscreen/internal/logging"
	"github.com/dshills/vscreen/internal/renderer/backend"
	"github.com/dshills/vscreen/internal/renderer/charmap"
	"github.com/dshills/vscreen/internal/renderer/compositor"
	"github.com/dshills/vscreen/internal/renderer/core"
	"github.com/dshills/vscreen/internal/renderer/cursor"
	"github.com/dshills/vscreen/internal/renderer/rowrender"
	"github.com/dshills/vscreen/internal/renderer/scale"
	"github.com/dshills/vscreen/internal/renderer/scheduler"
	"github.com/dshills/vscreen/internal/renderer/textgrid"
)

// Screen errors.
var (
	// ErrDestroyed is returned by operations on a destroyed screen.
	ErrDestroyed = errors.New("screen destroyed")

	// ErrNoCapture indicates the graphics surface cannot return its pixels.
	ErrNoCapture = errors.New("surface does not support capture")
)

// Default text mode geometry.
const (
	DefaultTextCols = 80
	DefaultTextRows = 25
)

// Surfaces are the two drawing targets of a screen.
type Surfaces struct {
	Text     backend.Surface
	Graphics backend.Surface
}

// Options configures a Screen.
type Options struct {
	// Strict panics on precondition violations instead of logging them
	// and dropping the offending write.
	Strict bool

	// DebugLayers draws graphics layers as outlines and sizes the graphics
	// surface to the device buffer.
	DebugLayers bool

	// Autoscale doubles small graphics resolutions that fit the viewport.
	Autoscale bool

	// Charmap decodes text cells; nil selects code page 437.
	Charmap *charmap.Charmap

	// Viewport is the initial host viewport used by autoscale.
	Viewport scale.Viewport

	// FillBuffer is invoked once per graphics-mode tick while running.
	// It runs without the screen lock held and may call Composite.
	FillBuffer func()

	// Requester delivers ticks; nil leaves tick delivery to the caller.
	Requester scheduler.Requester

	Logger *logging.Logger
}

// Stats are running counters of a screen.
type Stats struct {
	Mode  core.Mode
	State scheduler.State

	Ticks         uint64
	RowsRendered  uint64
	Fills         uint64
	LayersApplied uint64
	LayersSkipped uint64
	DroppedWrites uint64
}

// Screen is the display adapter of one emulated display device.
// All methods are safe for concurrent use; calls are serialised so each
// tick observes device writes atomically.
type Screen struct {
	mu sync.Mutex

	opts Options
	log  *logging.Logger

	text backend.Surface
	gfx  backend.Surface

	grid   *textgrid.Grid
	rows   *rowrender.Renderer
	cursor *cursor.Model
	comp   *compositor.Compositor
	scale  *scale.Controller
	sched  *scheduler.Scheduler

	mode core.Mode

	// graphics geometry as last requested by the device
	gfxWidth, gfxHeight int
	bufWidth, bufHeight int

	blinkOn     bool
	cursorShown bool
	fillPending bool

	stats Stats
}

// New creates a screen in text mode with an 80x25 grid.
func New(surfaces Surfaces, opts Options) (*Screen, error) {
	if surfaces.Text == nil || surfaces.Graphics == nil {
		return nil, fmt.Errorf("renderer: both text and graphics surfaces are required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	s := &Screen{
		opts:    opts,
		log:     opts.Logger.WithComponent("renderer"),
		text:    surfaces.Text,
		gfx:     surfaces.Graphics,
		grid:    textgrid.New(opts.Charmap),
		rows:    rowrender.New(opts.Charmap),
		comp:    compositor.New(opts.DebugLayers),
		scale:   scale.NewController(opts.Autoscale, opts.Viewport),
		mode:    core.ModeText,
		blinkOn: true,
	}
	s.cursor = cursor.New(s.grid)
	s.sched = scheduler.New(frame{s}, opts.Requester)

	s.grid.Resize(DefaultTextCols, DefaultTextRows)
	s.text.SetLogicalSize(DefaultTextCols, DefaultTextRows)
	s.text.SetVisible(true)
	s.gfx.SetVisible(false)
	s.applyScale()

	return s, nil
}

// violation handles a precondition failure.
func (s *Screen) violation(err error) error {
	if s.opts.Strict {
		panic(err)
	}
	s.stats.DroppedWrites++
	s.log.Warn("dropped: %v", err)
	return err
}

// PutChar writes one text cell. ch must be in [0, 255].
func (s *Screen) PutChar(row, col, ch int, blinking bool, bg, fg core.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched.State() == scheduler.Destroyed {
		return ErrDestroyed
	}
	if ch < 0 || ch > 0xFF {
		cols, rows := s.grid.Size()
		return s.violation(&core.PreconditionError{
			Op: "write_cell", Row: row, Col: col, Char: ch, Width: cols, Height: rows,
		})
	}
	if err := s.grid.WriteCell(row, col, byte(ch), blinking, bg, fg); err != nil {
		return s.violation(err)
	}
	return nil
}

// ResizeText sets the text grid size. The grid is cleared and every row
// redrawn on the next tick. Resizing to the current size does nothing.
func (s *Screen) ResizeText(cols, rows int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched.State() == scheduler.Destroyed {
		return ErrDestroyed
	}
	if cols < 0 || rows < 0 {
		return fmt.Errorf("resize text to %dx%d: negative size", cols, rows)
	}
	if !s.grid.Resize(cols, rows) {
		return nil
	}

	s.log.Debug("text size %dx%d", cols, rows)
	// The cursor row may no longer exist; the next tick redraws it if it does.
	s.text.HideCursor()
	s.cursorShown = false
	s.text.SetLogicalSize(cols, rows)
	s.applyTextScale()
	return nil
}

// ResizeGraphics sets the visible graphics size and the device buffer size.
// In debug-layers mode the surface takes the buffer size instead so that
// every layer rectangle is visible.
func (s *Screen) ResizeGraphics(width, height, bufferWidth, bufferHeight int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched.State() == scheduler.Destroyed {
		return ErrDestroyed
	}
	if width < 0 || height < 0 || bufferWidth < 0 || bufferHeight < 0 {
		return fmt.Errorf("resize graphics to %dx%d (buffer %dx%d): negative size",
			width, height, bufferWidth, bufferHeight)
	}
	if width == s.gfxWidth && height == s.gfxHeight &&
		bufferWidth == s.bufWidth && bufferHeight == s.bufHeight {
		return nil
	}
	s.gfxWidth, s.gfxHeight = width, height
	s.bufWidth, s.bufHeight = bufferWidth, bufferHeight

	w, h := s.surfaceGraphicsSize()
	s.log.Debug("graphics size %dx%d (buffer %dx%d)", width, height, bufferWidth, bufferHeight)
	s.gfx.SetLogicalSize(w, h)
	s.scale.SetGraphicsSize(w, h)
	s.applyGraphicsScale()
	return nil
}

func (s *Screen) surfaceGraphicsSize() (int, int) {
	if s.comp.DebugOutline() {
		return s.bufWidth, s.bufHeight
	}
	return s.gfxWidth, s.gfxHeight
}

// SetMode switches between text and graphics mode.
func (s *Screen) SetMode(graphical bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched.State() == scheduler.Destroyed {
		return
	}
	mode := core.ModeText
	if graphical {
		mode = core.ModeGraphics
	}
	if mode == s.mode {
		return
	}
	s.mode = mode
	s.log.Debug("mode %s", mode)

	s.text.SetVisible(!graphical)
	s.gfx.SetVisible(graphical)
	if !graphical {
		// The text surface may have lost its contents while hidden.
		s.cursorShown = false
		s.grid.MarkAll()
	}
}

// Mode returns the current display mode.
func (s *Screen) Mode() core.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mode
}

// SetCharmap switches the table used to decode text cells. Every row is
// redrawn on the next tick. A nil or unchanged charmap is a no-op.
func (s *Screen) SetCharmap(cm *charmap.Charmap) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched.State() == scheduler.Destroyed || cm == nil || cm == s.grid.Charmap() {
		return
	}
	s.log.Debug("charmap %s", cm.Name())
	s.grid.SetCharmap(cm)
	s.rows.SetCharmap(cm)
}

// SetCursorPosition moves the text cursor. Rows outside the grid hide it.
func (s *Screen) SetCursorPosition(row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched.State() == scheduler.Destroyed {
		return
	}
	s.cursor.SetPosition(row, col)
}

// SetCursorShape sets the cursor scanline band and enable bit. The change
// is drawn the next time the cursor row is redrawn.
func (s *Screen) SetCursorShape(start, end int, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched.State() == scheduler.Destroyed {
		return
	}
	s.cursor.SetShape(start, end, visible)
}

// SetCursorBlink sets the blink phase of the cursor and redraws its row.
func (s *Screen) SetCursorBlink(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched.State() == scheduler.Destroyed || on == s.blinkOn {
		return
	}
	s.blinkOn = on
	s.grid.MarkRow(s.cursor.State().Row)
}

// Cursor returns the cursor state.
func (s *Screen) Cursor() cursor.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cursor.State()
}

// SetScale sets the requested scale. Non-positive and unchanged values
// are ignored.
func (s *Screen) SetScale(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched.State() == scheduler.Destroyed {
		return
	}
	if s.scale.SetRequested(x, y) {
		s.applyScale()
	}
}

// SetViewport updates the host viewport used by autoscale.
func (s *Screen) SetViewport(vp scale.Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched.State() == scheduler.Destroyed {
		return
	}
	if s.scale.SetViewport(vp) {
		s.applyScale()
	}
}

// SetAutoscale toggles autoscale of small graphics resolutions.
func (s *Screen) SetAutoscale(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched.State() == scheduler.Destroyed {
		return
	}
	if s.scale.SetAutoscale(enabled) {
		s.applyGraphicsScale()
	}
}

// Scale returns the scale state.
func (s *Screen) Scale() scale.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.scale.State()
}

// SetDebugLayers toggles outline mode. The graphics surface is resized
// when its size depends on the mode.
func (s *Screen) SetDebugLayers(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched.State() == scheduler.Destroyed || enabled == s.comp.DebugOutline() {
		return
	}
	s.comp.SetDebugOutline(enabled)

	w, h := s.surfaceGraphicsSize()
	if s.gfxWidth != s.bufWidth || s.gfxHeight != s.bufHeight {
		s.gfx.SetLogicalSize(w, h)
		s.scale.SetGraphicsSize(w, h)
		s.applyGraphicsScale()
	}
}

func (s *Screen) applyScale() {
	s.applyTextScale()
	s.applyGraphicsScale()
}

func (s *Screen) applyTextScale() {
	r := s.scale.For(core.ModeText)
	s.text.SetScale(r.X, r.Y)
	s.text.SetResampling(r.Sampling)
}

func (s *Screen) applyGraphicsScale() {
	r := s.scale.For(core.ModeGraphics)
	s.gfx.SetScale(r.X, r.Y)
	s.gfx.SetResampling(r.Sampling)
}

// Composite draws one graphics frame from layers, in order.
func (s *Screen) Composite(layers []compositor.Layer) compositor.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched.State() == scheduler.Destroyed {
		return compositor.Result{}
	}

	res := s.comp.Composite(layers, s.gfx, func(i int, err error) {
		s.log.Warn("layer %d skipped: %v", i, err)
	})
	s.stats.LayersApplied += uint64(res.Applied)
	s.stats.LayersSkipped += uint64(res.Skipped)
	if res.Applied > 0 {
		s.gfx.Show()
	}
	return res
}

// TextScreen returns every text row decoded through the charmap.
func (s *Screen) TextScreen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.grid.Text()
}

// TextRow returns one text row decoded through the charmap.
func (s *Screen) TextRow(row int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := s.grid.RowText(row)
	if err != nil {
		if s.opts.Strict {
			panic(err)
		}
		return "", err
	}
	return text, nil
}

// TextSize returns the text grid size.
func (s *Screen) TextSize() (cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.grid.Size()
}

// Start requests the first tick.
func (s *Screen) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sched.Start()
}

// Tick services one frame tick. It returns false once the screen is
// destroyed.
func (s *Screen) Tick() bool {
	s.mu.Lock()
	serviced := s.sched.Tick()
	fill := s.fillPending
	s.fillPending = false
	s.mu.Unlock()

	if fill && s.opts.FillBuffer != nil {
		s.opts.FillBuffer()
	}
	return serviced
}

// Pause stops graphics content updates; ticks keep being requested.
func (s *Screen) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sched.Pause()
}

// Resume restarts graphics content updates.
func (s *Screen) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sched.Resume()
}

// Destroy stops the screen permanently. No surface is touched afterwards.
func (s *Screen) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched.State() != scheduler.Destroyed {
		s.log.Debug("destroyed after %d ticks", s.sched.Ticks())
	}
	s.sched.Destroy()
}

// State returns the scheduler state.
func (s *Screen) State() scheduler.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sched.State()
}

// Stats returns a copy of the running counters.
func (s *Screen) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stats
	st.Mode = s.mode
	st.State = s.sched.State()
	st.Ticks = s.sched.Ticks()
	return st
}

// renderDirtyRows draws every dirty row and the cursor on the text surface.
func (s *Screen) renderDirtyRows() {
	if !s.grid.HasDirtyRows() {
		return
	}

	for _, row := range s.grid.TakeDirtyRows() {
		s.renderRow(row)
	}

	_, rows := s.grid.Size()
	if cr := s.cursor.State().Row; s.cursorShown && (cr < 0 || cr >= rows) {
		s.text.HideCursor()
		s.cursorShown = false
	}
	s.text.Show()
}

func (s *Screen) renderRow(row int) {
	cells, err := s.grid.Row(row)
	if err != nil {
		return
	}

	cs := s.cursor.State()
	cursorCol := rowrender.NoCursor
	if cs.Row == row {
		cursorCol = cs.Col
	}

	r := s.rows.Render(cells, cursorCol)
	for _, run := range r.Runs {
		s.text.DrawTextRun(row, run)
	}
	s.stats.RowsRendered++

	if cs.Row != row {
		return
	}
	if r.HasCursor() && cs.Visible && s.blinkOn {
		s.text.DrawCursor(s.cursor.Mark(r.CursorColor))
		s.cursorShown = true
	} else if s.cursorShown {
		s.text.HideCursor()
		s.cursorShown = false
	}
}

// frame adapts a Screen to scheduler.Frame. Its methods run with the
// screen lock held.
type frame struct {
	s *Screen
}

func (f frame) Graphical() bool {
	return f.s.mode == core.ModeGraphics
}

func (f frame) RenderDirtyRows() {
	f.s.renderDirtyRows()
}

// FillBuffer defers the callback until the lock is released.
func (f frame) FillBuffer() {
	f.s.fillPending = true
	f.s.stats.Fills++
}
