package main

import (
	"context"

	"github.com/dshills/vscreen/internal/app"
	"github.com/dshills/vscreen/internal/config"
	"github.com/dshills/vscreen/internal/renderer"
	"github.com/dshills/vscreen/internal/renderer/backend/window"
	"github.com/dshills/vscreen/internal/renderer/scale"
	"github.com/dshills/vscreen/internal/renderer/scheduler"
)

// windowHost adapts a desktop window to app.Host. The window has no key
// input; closing it ends the run.
type windowHost struct {
	w  *window.Window
	vp scale.Viewport
}

func newWindowHost(cfg config.Config) (app.Host, error) {
	w := window.New(window.Config{
		Title:  cfg.Surface.Title,
		Width:  cfg.Surface.Width,
		Height: cfg.Surface.Height,
		TPS:    cfg.Display.TickRate,
	})
	return &windowHost{
		w: w,
		vp: scale.Viewport{
			Width:  cfg.Surface.Width,
			Height: cfg.Surface.Height,
			DPR:    cfg.Surface.DPR,
		},
	}, nil
}

func (h *windowHost) Surfaces() renderer.Surfaces {
	return renderer.Surfaces{Text: h.w.Text(), Graphics: h.w.Graphics()}
}

func (h *windowHost) Requester() scheduler.Requester { return h.w.Requester() }

func (h *windowHost) Viewport() scale.Viewport { return h.vp }

func (h *windowHost) Run(ctx context.Context, loop app.Loop) error {
	return h.w.Run(ctx, loop.Frame, loop.Resize)
}

func (h *windowHost) Close() {}
