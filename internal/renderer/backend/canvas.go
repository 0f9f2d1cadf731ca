package backend

import (
	"image"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/dshills/vscreen/internal/renderer/core"
)

// Cell size of the built-in text face.
const (
	CellWidth  = 7
	CellHeight = 13
)

// Canvas is an in-memory RGBA surface. A text canvas lays out runs on a
// grid of CellWidth x CellHeight pixel cells and takes rectangles in cell
// units; a pixel canvas takes everything in pixels.
type Canvas struct {
	mu sync.Mutex

	img  *image.RGBA
	face font.Face

	// cell size in pixels; zero for pixel canvases
	cellW, cellH int

	scaleX, scaleY float64
	sampling       core.Resampling
	visible        bool

	// gen increments on every pixel change
	gen uint64
}

// NewPixelCanvas creates an empty pixel canvas.
func NewPixelCanvas() *Canvas {
	return &Canvas{
		img:    image.NewRGBA(image.Rect(0, 0, 0, 0)),
		scaleX: 1,
		scaleY: 1,
	}
}

// NewTextCanvas creates an empty text canvas using the 7x13 basic face.
func NewTextCanvas() *Canvas {
	c := NewPixelCanvas()
	c.face = basicfont.Face7x13
	c.cellW, c.cellH = CellWidth, CellHeight
	return c
}

// IsText reports whether the canvas lays out character cells.
func (c *Canvas) IsText() bool {
	return c.cellW > 0
}

// toPixels converts a rectangle in canvas units to pixels.
func (c *Canvas) toPixels(r image.Rectangle) image.Rectangle {
	if !c.IsText() {
		return r
	}
	return image.Rect(r.Min.X*c.cellW, r.Min.Y*c.cellH, r.Max.X*c.cellW, r.Max.Y*c.cellH)
}

func (c *Canvas) SetLogicalSize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := c.toPixels(image.Rect(0, 0, max(width, 0), max(height, 0)))
	c.img = image.NewRGBA(r)
	c.gen++
}

func (c *Canvas) SetScale(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.scaleX, c.scaleY = x, y
}

func (c *Canvas) SetResampling(policy core.Resampling) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sampling = policy
}

func (c *Canvas) SetVisible(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.visible = visible
}

func (c *Canvas) FillRect(r image.Rectangle, col core.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fill(c.toPixels(r), col)
}

func (c *Canvas) StrokeRect(r image.Rectangle, col core.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.toPixels(r)
	if p.Empty() {
		return
	}
	c.fill(image.Rect(p.Min.X, p.Min.Y, p.Max.X, p.Min.Y+1), col)
	c.fill(image.Rect(p.Min.X, p.Max.Y-1, p.Max.X, p.Max.Y), col)
	c.fill(image.Rect(p.Min.X, p.Min.Y, p.Min.X+1, p.Max.Y), col)
	c.fill(image.Rect(p.Max.X-1, p.Min.Y, p.Max.X, p.Max.Y), col)
}

func (c *Canvas) DrawTextRun(row int, run core.Run) {
	if !c.IsText() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	x := run.Col * c.cellW
	y := row * c.cellH
	c.fill(image.Rect(x, y, x+run.Width*c.cellW, y+c.cellH), run.Background)

	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(run.Foreground.RGBA()),
		Face: c.face,
	}
	ascent := c.face.Metrics().Ascent
	for i, r := range []rune(run.Text) {
		if r == ' ' {
			continue
		}
		d.Dot = fixed.Point26_6{
			X: fixed.I(x + i*c.cellW),
			Y: fixed.I(y) + ascent,
		}
		d.DrawString(string(r))
	}
	c.gen++
}

// DrawCursor paints the scanline band over the cursor cell.
func (c *Canvas) DrawCursor(mark core.CursorMark) {
	if !c.IsText() || mark.Height <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	top := mark.Top * c.cellH / core.ScanlinesPerCell
	height := max(1, mark.Height*c.cellH/core.ScanlinesPerCell)
	x := mark.Col * c.cellW
	y := mark.Row*c.cellH + top
	c.fill(image.Rect(x, y, x+c.cellW, min(y+height, (mark.Row+1)*c.cellH)), mark.Color)
}

// HideCursor is a no-op; redrawing the row removes the band.
func (c *Canvas) HideCursor() {}

func (c *Canvas) BlitPixels(src *image.RGBA, srcRect image.Rectangle, origin image.Point) {
	if src == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	dst := srcRect.Sub(src.Rect.Min).Add(origin)
	draw.Draw(c.img, dst, src, srcRect.Min, draw.Src)
	c.gen++
}

func (c *Canvas) Show() {}

// Capture returns a copy of the canvas pixels.
func (c *Canvas) Capture() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := image.NewRGBA(c.img.Rect)
	copy(out.Pix, c.img.Pix)
	return out
}

// CopyPixels copies the canvas into dst when the canvas changed since gen.
// dst is reallocated when its bounds differ. Returns the new generation
// and whether anything was copied.
func (c *Canvas) CopyPixels(dst *image.RGBA, gen uint64) (*image.RGBA, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if dst != nil && dst.Rect == c.img.Rect && gen == c.gen {
		return dst, gen, false
	}
	if dst == nil || dst.Rect != c.img.Rect {
		dst = image.NewRGBA(c.img.Rect)
	}
	copy(dst.Pix, c.img.Pix)
	return dst, c.gen, true
}

// Bounds returns the pixel bounds of the canvas.
func (c *Canvas) Bounds() image.Rectangle {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.img.Rect
}

// Scale returns the on-screen scale and resampling policy.
func (c *Canvas) Scale() (x, y float64, policy core.Resampling) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.scaleX, c.scaleY, c.sampling
}

// Visible reports whether the canvas is shown.
func (c *Canvas) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.visible
}

func (c *Canvas) fill(r image.Rectangle, col core.Color) {
	r = r.Intersect(c.img.Rect)
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, image.NewUniform(col.RGBA()), image.Point{}, draw.Src)
	c.gen++
}
