// Package window shows the renderer's surfaces in a desktop window.
//
// The ebiten game loop is the tick source: each Update delivers a tick if
// the renderer requested one, and each Draw uploads the visible canvas and
// scales it with the filter matching the resampling policy.
package window

import (
	"context"
	"errors"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/dshills/vscreen/internal/renderer/backend"
	"github.com/dshills/vscreen/internal/renderer/core"
	"github.com/dshills/vscreen/internal/renderer/scale"
	"github.com/dshills/vscreen/internal/renderer/scheduler"
)

// Config holds window settings.
type Config struct {
	Title         string
	Width, Height int

	// TPS is the game loop rate in ticks per second.
	TPS int
}

// Window is an ebiten game presenting a text and a graphics canvas.
type Window struct {
	cfg  Config
	text *backend.Canvas
	gfx  *backend.Canvas

	latch scheduler.Latch

	ctx        context.Context
	deliver    func()
	onViewport func(scale.Viewport)
	viewport   scale.Viewport

	// upload cache for the canvas being shown
	pix   *image.RGBA
	gen   uint64
	img   *ebiten.Image
	shown *backend.Canvas
}

// New creates a window. It is not opened until Run.
func New(cfg Config) *Window {
	if cfg.Title == "" {
		cfg.Title = "vscreen"
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 1280, 800
	}
	if cfg.TPS <= 0 {
		cfg.TPS = 60
	}
	return &Window{
		cfg:  cfg,
		text: backend.NewTextCanvas(),
		gfx:  backend.NewPixelCanvas(),
	}
}

// Text returns the text-mode surface.
func (w *Window) Text() backend.Surface {
	return w.text
}

// Graphics returns the graphics-mode surface.
func (w *Window) Graphics() backend.Surface {
	return w.gfx
}

// Requester returns the tick requester polled by the game loop.
func (w *Window) Requester() scheduler.Requester {
	return &w.latch
}

// Run opens the window and blocks until it is closed or ctx is done.
// deliver is called on the game loop for every requested tick; onViewport
// is called when the window size or device scale factor changes.
func (w *Window) Run(ctx context.Context, deliver func(), onViewport func(scale.Viewport)) error {
	w.ctx = ctx
	w.deliver = deliver
	w.onViewport = onViewport

	ebiten.SetWindowTitle(w.cfg.Title)
	ebiten.SetWindowSize(w.cfg.Width, w.cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(w.cfg.TPS)

	err := ebiten.RunGame(w)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Update implements ebiten.Game.
func (w *Window) Update() error {
	if w.ctx != nil && w.ctx.Err() != nil {
		return ebiten.Termination
	}

	ww, wh := ebiten.WindowSize()
	vp := scale.Viewport{Width: ww, Height: wh, DPR: ebiten.Monitor().DeviceScaleFactor()}
	if vp != w.viewport {
		w.viewport = vp
		if w.onViewport != nil {
			w.onViewport(vp)
		}
	}

	if w.latch.Take() && w.deliver != nil {
		w.deliver()
	}
	return nil
}

// Draw implements ebiten.Game.
func (w *Window) Draw(screen *ebiten.Image) {
	c := w.text
	if w.gfx.Visible() {
		c = w.gfx
	}
	if c != w.shown {
		w.shown = c
		w.gen = 0
	}

	var changed bool
	w.pix, w.gen, changed = c.CopyPixels(w.pix, w.gen)
	b := w.pix.Rect
	if b.Empty() {
		return
	}
	if w.img == nil || w.img.Bounds().Size() != b.Size() {
		if w.img != nil {
			w.img.Deallocate()
		}
		w.img = ebiten.NewImage(b.Dx(), b.Dy())
		changed = true
	}
	if changed {
		w.img.WritePixels(w.pix.Pix)
	}

	sx, sy, policy := c.Scale()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(sx, sy)
	op.Filter = filterFor(policy)
	screen.DrawImage(w.img, op)
}

// Layout implements ebiten.Game.
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func filterFor(policy core.Resampling) ebiten.Filter {
	if policy == core.ResamplePixelated {
		return ebiten.FilterNearest
	}
	return ebiten.FilterLinear
}
