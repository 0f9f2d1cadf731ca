package backend

import (
	"image"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/vscreen/internal/renderer/core"
)

// upperHalfBlock draws two vertically stacked pixels in one cell:
// foreground on top, background below.
const upperHalfBlock = '▀'

// Terminal draws the renderer's surfaces on a tcell screen.
// Text runs map to cells one to one; graphics are downsampled to
// half-block cells on Show.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen

	text *terminalText
	gfx  *terminalGraphics
}

// NewTerminal creates a terminal backend on the controlling tty.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTerminalWithScreen(screen), nil
}

// NewTerminalWithScreen wraps an existing tcell screen, e.g. a simulation
// screen in tests. Init must still be called.
func NewTerminalWithScreen(screen tcell.Screen) *Terminal {
	t := &Terminal{screen: screen}
	t.text = &terminalText{t: t}
	t.gfx = &terminalGraphics{t: t, canvas: NewPixelCanvas()}
	return t
}

// Init initializes the underlying screen.
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.HideCursor()
	t.screen.Clear()
	return nil
}

// Shutdown restores the terminal.
func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fini()
}

// Size returns the terminal size in cells.
func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

// Text returns the text-mode surface.
func (t *Terminal) Text() Surface {
	return t.text
}

// Graphics returns the graphics-mode surface.
func (t *Terminal) Graphics() Surface {
	return t.gfx
}

// PollEvent waits for the next terminal event.
// Returns an EventQuit once the screen is finalized.
func (t *Terminal) PollEvent() Event {
	ev := t.screen.PollEvent()
	if ev == nil {
		return Event{Type: EventQuit}
	}
	return convertEvent(ev)
}

func (t *Terminal) setContent(x, y int, r rune, style tcell.Style) {
	t.screen.SetContent(x, y, r, nil, style)
}

// terminalText is the text surface; one run cell is one terminal cell.
type terminalText struct {
	t             *Terminal
	width, height int
	visible       bool
}

func (s *terminalText) SetLogicalSize(width, height int) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()

	s.width, s.height = width, height
	if s.visible {
		s.t.screen.Clear()
	}
}

// SetScale is ignored; terminal cells have a fixed size.
func (s *terminalText) SetScale(x, y float64) {}

func (s *terminalText) SetResampling(policy core.Resampling) {}

func (s *terminalText) SetVisible(visible bool) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()

	s.visible = visible
	if visible {
		s.t.screen.Clear()
	} else {
		s.t.screen.HideCursor()
	}
}

func (s *terminalText) FillRect(r image.Rectangle, c core.Color) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()

	if !s.visible {
		return
	}
	style := tcell.StyleDefault.Background(convertColor(c))
	r = r.Intersect(image.Rect(0, 0, s.width, s.height))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			s.t.setContent(x, y, ' ', style)
		}
	}
}

func (s *terminalText) StrokeRect(r image.Rectangle, c core.Color) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()

	if !s.visible || r.Empty() {
		return
	}
	style := tcell.StyleDefault.Foreground(convertColor(c))
	for x := r.Min.X; x < r.Max.X; x++ {
		s.t.setContent(x, r.Min.Y, tcell.RuneHLine, style)
		s.t.setContent(x, r.Max.Y-1, tcell.RuneHLine, style)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		s.t.setContent(r.Min.X, y, tcell.RuneVLine, style)
		s.t.setContent(r.Max.X-1, y, tcell.RuneVLine, style)
	}
}

func (s *terminalText) DrawTextRun(row int, run core.Run) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()

	if !s.visible || row < 0 || row >= s.height {
		return
	}
	style := runStyle(run)
	col := run.Col
	for _, r := range run.Text {
		if col >= s.width {
			break
		}
		s.t.setContent(col, row, r, style)
		col++
	}
}

// DrawCursor maps the scanline band to the closest terminal cursor shape:
// bands covering at least half the cell become a block.
func (s *terminalText) DrawCursor(mark core.CursorMark) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()

	if !s.visible {
		return
	}
	if mark.Height <= 0 {
		s.t.screen.HideCursor()
		return
	}
	shape := tcell.CursorStyleSteadyUnderline
	if mark.Height >= core.ScanlinesPerCell/2 {
		shape = tcell.CursorStyleSteadyBlock
	}
	s.t.screen.SetCursorStyle(shape, convertColor(mark.Color))
	s.t.screen.ShowCursor(mark.Col, mark.Row)
}

func (s *terminalText) HideCursor() {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()

	s.t.screen.HideCursor()
}

// BlitPixels is ignored on the text surface.
func (s *terminalText) BlitPixels(src *image.RGBA, srcRect image.Rectangle, origin image.Point) {}

func (s *terminalText) Show() {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()

	if s.visible {
		s.t.screen.Show()
	}
}

// terminalGraphics keeps the pixels in a canvas and downsamples them to
// the terminal on Show.
type terminalGraphics struct {
	t       *Terminal
	canvas  *Canvas
	visible bool
}

func (s *terminalGraphics) SetLogicalSize(width, height int) {
	s.canvas.SetLogicalSize(width, height)
}

func (s *terminalGraphics) SetScale(x, y float64) {
	s.canvas.SetScale(x, y)
}

func (s *terminalGraphics) SetResampling(policy core.Resampling) {
	s.canvas.SetResampling(policy)
}

func (s *terminalGraphics) SetVisible(visible bool) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()

	s.visible = visible
	s.canvas.SetVisible(visible)
	if visible {
		s.t.screen.HideCursor()
		s.t.screen.Clear()
	}
}

func (s *terminalGraphics) FillRect(r image.Rectangle, c core.Color) {
	s.canvas.FillRect(r, c)
}

func (s *terminalGraphics) StrokeRect(r image.Rectangle, c core.Color) {
	s.canvas.StrokeRect(r, c)
}

func (s *terminalGraphics) DrawTextRun(row int, run core.Run) {}

func (s *terminalGraphics) DrawCursor(mark core.CursorMark) {}

func (s *terminalGraphics) HideCursor() {}

func (s *terminalGraphics) BlitPixels(src *image.RGBA, srcRect image.Rectangle, origin image.Point) {
	s.canvas.BlitPixels(src, srcRect, origin)
}

// Capture returns the graphics pixels at logical resolution.
func (s *terminalGraphics) Capture() *image.RGBA {
	return s.canvas.Capture()
}

func (s *terminalGraphics) Show() {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()

	if !s.visible {
		return
	}

	w, h := s.t.screen.Size()
	if w <= 0 || h <= 0 {
		return
	}
	_, _, policy := s.canvas.Scale()
	src := s.canvas.Capture()
	samples := Downsample(src, w, h*2, policy)
	if samples == nil {
		return
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			style := tcell.StyleDefault.
				Foreground(convertColor(samples.At(x, 2*y))).
				Background(convertColor(samples.At(x, 2*y+1)))
			s.t.setContent(x, y, upperHalfBlock, style)
		}
	}
	s.t.screen.Show()
}

// runStyle converts run attributes to a tcell style.
func runStyle(run core.Run) tcell.Style {
	return tcell.StyleDefault.
		Foreground(convertColor(run.Foreground)).
		Background(convertColor(run.Background)).
		Blink(run.Blinking)
}

// convertColor converts a 24-bit color to a tcell true color.
func convertColor(c core.Color) tcell.Color {
	r, g, b := c.RGB()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// convertEvent converts tcell events to our Event type.
func convertEvent(ev tcell.Event) Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return Event{
			Type: EventKey,
			Key:  convertKey(e.Key()),
			Rune: e.Rune(),
		}

	case *tcell.EventResize:
		w, h := e.Size()
		return Event{
			Type:   EventResize,
			Width:  w,
			Height: h,
		}

	default:
		return Event{Type: EventNone}
	}
}

// convertKey converts tcell key to our Key type.
func convertKey(k tcell.Key) Key {
	switch k {
	case tcell.KeyRune:
		return KeyRune
	case tcell.KeyEscape:
		return KeyEscape
	case tcell.KeyEnter:
		return KeyEnter
	case tcell.KeyCtrlC:
		return KeyCtrlC
	default:
		return KeyNone
	}
}
