package main

import (
	"image"
	"math"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/vscreen/internal/logging"
	"github.com/dshills/vscreen/internal/renderer"
	"github.com/dshills/vscreen/internal/renderer/backend"
	"github.com/dshills/vscreen/internal/renderer/compositor"
	"github.com/dshills/vscreen/internal/renderer/core"
	"github.com/dshills/vscreen/internal/renderer/cursor"
)

// Demo graphics resolution, the classic 320x200 mode.
const (
	gfxWidth  = 320
	gfxHeight = 200

	// tiles per axis; each graphics frame is submitted as tiles*tiles layers
	tiles = 2
)

// Code page 437 box drawing.
const (
	boxTopLeft     = 0xC9
	boxTopRight    = 0xBB
	boxBottomLeft  = 0xC8
	boxBottomRight = 0xBC
	boxHorizontal  = 0xCD
	boxVertical    = 0xBA
)

var (
	colorBlue   = core.ColorFromRGB(0x00, 0x00, 0xAA)
	colorCyan   = core.ColorFromRGB(0x55, 0xFF, 0xFF)
	colorYellow = core.ColorFromRGB(0xFF, 0xFF, 0x55)
)

// demo is a small emulated device: a boxed banner with a clock in text
// mode and an animated plasma in graphics mode.
type demo struct {
	mu       sync.Mutex
	log      *logging.Logger
	screen   *renderer.Screen
	graphics bool
	paused   bool
	start    time.Time
	clock    string
	frame    int

	buf *image.RGBA
}

func newDemo(graphics bool) *demo {
	return &demo{
		log:      logging.Nop(),
		graphics: graphics,
		buf:      image.NewRGBA(image.Rect(0, 0, gfxWidth, gfxHeight)),
	}
}

// SetLogger replaces the demo's logger.
func (d *demo) SetLogger(l *logging.Logger) {
	d.log = l.WithComponent("demo")
}

// Attach implements app.Device.
func (d *demo) Attach(s *renderer.Screen) error {
	d.screen = s
	d.start = time.Now()

	if err := s.ResizeGraphics(gfxWidth, gfxHeight, gfxWidth, gfxHeight); err != nil {
		return err
	}
	if err := d.drawFrame(); err != nil {
		return err
	}

	// underline cursor, scanlines 13-14
	start, end, visible := cursor.ShapeFromRegisters(0x0D, 0x0E)
	s.SetCursorShape(start, end, visible)
	s.SetMode(d.graphics)
	return nil
}

func (d *demo) drawFrame() error {
	cols, rows := d.screen.TextSize()
	if cols < 2 || rows < 2 {
		return nil
	}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			ch := ' '
			switch {
			case row == 0 && col == 0:
				ch = boxTopLeft
			case row == 0 && col == cols-1:
				ch = boxTopRight
			case row == rows-1 && col == 0:
				ch = boxBottomLeft
			case row == rows-1 && col == cols-1:
				ch = boxBottomRight
			case row == 0 || row == rows-1:
				ch = boxHorizontal
			case col == 0 || col == cols-1:
				ch = boxVertical
			}
			if err := d.screen.PutChar(row, col, int(ch), false, colorBlue, colorCyan); err != nil {
				return err
			}
		}
	}

	if err := d.print(2, 3, "vscreen", colorBlue, colorYellow, true); err != nil {
		return err
	}
	return d.print(rows-3, 3, "g: graphics   p: pause   q: quit", colorBlue, core.ColorWhite, false)
}

// print writes s starting at (row, col), clipped to the inside of the box.
func (d *demo) print(row, col int, s string, bg, fg core.Color, blinking bool) error {
	cols, rows := d.screen.TextSize()
	if row <= 0 || row >= rows-1 {
		return nil
	}
	for i := 0; i < len(s) && col+i < cols-1; i++ {
		if err := d.screen.PutChar(row, col+i, int(s[i]), blinking, bg, fg); err != nil {
			return err
		}
	}
	return nil
}

// Step implements app.Device. Text is only rewritten when the clock
// changes so idle frames leave every row clean.
func (d *demo) Step(now time.Time) {
	d.mu.Lock()
	graphics := d.graphics
	d.frame++
	d.mu.Unlock()

	if graphics {
		return
	}

	clock := now.Sub(d.start).Truncate(time.Second).String()
	if clock == d.clock {
		return
	}
	text := "uptime " + clock + "   "
	if err := d.print(4, 3, text, colorBlue, core.ColorWhite, false); err != nil {
		d.log.Warn("clock not drawn: %v", err)
		return
	}
	d.clock = clock
	d.screen.SetCursorPosition(4, 3+len(text)-3)
}

// FillBuffer implements app.Device. The plasma is submitted as a grid of
// tile layers drawn from one shared buffer.
func (d *demo) FillBuffer() {
	d.mu.Lock()
	t := float64(d.frame) / 20
	d.mu.Unlock()

	plasma(d.buf, t)

	tw, th := gfxWidth/tiles, gfxHeight/tiles
	layers := make([]compositor.Layer, 0, tiles*tiles)
	for ty := 0; ty < tiles; ty++ {
		for tx := 0; tx < tiles; tx++ {
			layers = append(layers, compositor.Layer{
				Pixels:       d.buf,
				BufferX:      tx * tw,
				BufferY:      ty * th,
				BufferWidth:  tw,
				BufferHeight: th,
				ScreenX:      tx * tw,
				ScreenY:      ty * th,
			})
		}
	}
	d.screen.Composite(layers)
}

// HandleKey implements app.KeyHandler.
func (d *demo) HandleKey(ev backend.Event) {
	if ev.Key != backend.KeyRune {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	switch ev.Rune {
	case 'g':
		d.graphics = !d.graphics
		d.screen.SetMode(d.graphics)
	case 'p':
		d.paused = !d.paused
		if d.paused {
			d.screen.Pause()
		} else {
			d.screen.Resume()
		}
	}
}

// plasma fills img with a hue field that shifts with t.
func plasma(img *image.RGBA, t float64) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			fx, fy := float64(x)/16, float64(y)/16
			v := math.Sin(fx+t) + math.Sin(fy+t/2) + math.Sin((fx+fy+t)/2) +
				math.Sin(math.Hypot(fx-10, fy-6)+t)
			hue := math.Mod((v+4)*45+t*10, 360)
			r, g, bl := colorful.Hsv(hue, 0.8, 0.9).Clamped().RGB255()
			i := img.PixOffset(x, y)
			img.Pix[i+0] = r
			img.Pix[i+1] = g
			img.Pix[i+2] = bl
			img.Pix[i+3] = 0xFF
		}
	}
}
