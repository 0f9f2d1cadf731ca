package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/dshills/vscreen/internal/config"
	"github.com/dshills/vscreen/internal/renderer"
	"github.com/dshills/vscreen/internal/renderer/backend"
	"github.com/dshills/vscreen/internal/renderer/scale"
	"github.com/dshills/vscreen/internal/renderer/scheduler"
)

// Host owns the surfaces of one backend and the loop that delivers ticks.
type Host interface {
	// Surfaces returns the text and graphics surfaces.
	Surfaces() renderer.Surfaces

	// Requester receives the screen's tick requests.
	Requester() scheduler.Requester

	// Viewport returns the initial host viewport.
	Viewport() scale.Viewport

	// Run delivers requested ticks to loop until ctx is done or the host
	// closes.
	Run(ctx context.Context, loop Loop) error

	// Close releases the backend.
	Close()
}

// Loop is driven by a Host.
type Loop interface {
	Frame()
	Event(ev backend.Event)
	Resize(vp scale.Viewport)
}

// HostFactory builds a host from the active configuration.
type HostFactory func(cfg config.Config) (Host, error)

// builtinHosts are the backends available without extra wiring.
func builtinHosts() map[string]HostFactory {
	return map[string]HostFactory{
		config.BackendHeadless: func(cfg config.Config) (Host, error) {
			return NewHeadlessHost(cfg)
		},
		config.BackendTerminal: func(cfg config.Config) (Host, error) {
			term, err := backend.NewTerminal()
			if err != nil {
				return nil, err
			}
			return NewTerminalHost(term, cfg.Display.TickRate)
		},
	}
}

// HeadlessHost renders into off-screen canvases on a fixed-rate ticker.
type HeadlessHost struct {
	text   *backend.Canvas
	gfx    *backend.Canvas
	ticker *scheduler.Ticker
	vp     scale.Viewport
}

// NewHeadlessHost creates a headless host sized by the surface settings.
func NewHeadlessHost(cfg config.Config) (*HeadlessHost, error) {
	ticker, err := scheduler.NewTicker(cfg.Display.TickRate)
	if err != nil {
		return nil, err
	}
	return &HeadlessHost{
		text:   backend.NewTextCanvas(),
		gfx:    backend.NewPixelCanvas(),
		ticker: ticker,
		vp: scale.Viewport{
			Width:  cfg.Surface.Width,
			Height: cfg.Surface.Height,
			DPR:    cfg.Surface.DPR,
		},
	}, nil
}

func (h *HeadlessHost) Surfaces() renderer.Surfaces {
	return renderer.Surfaces{Text: h.text, Graphics: h.gfx}
}

func (h *HeadlessHost) Requester() scheduler.Requester { return h.ticker }

func (h *HeadlessHost) Viewport() scale.Viewport { return h.vp }

// Run returns when ctx is done or the screen stops requesting ticks.
func (h *HeadlessHost) Run(ctx context.Context, loop Loop) error {
	return h.ticker.Run(ctx, 0, loop.Frame)
}

func (h *HeadlessHost) Close() {}

// Canvases returns the text and graphics canvases.
func (h *HeadlessHost) Canvases() (text, gfx *backend.Canvas) {
	return h.text, h.gfx
}

// TerminalHost shows the screen in a terminal through tcell.
type TerminalHost struct {
	term   *backend.Terminal
	ticker *scheduler.Ticker

	closeOnce sync.Once
}

// NewTerminalHost initializes term and ticks at hz.
func NewTerminalHost(term *backend.Terminal, hz int) (*TerminalHost, error) {
	ticker, err := scheduler.NewTicker(hz)
	if err != nil {
		return nil, err
	}
	if err := term.Init(); err != nil {
		return nil, fmt.Errorf("terminal init: %w", err)
	}
	return &TerminalHost{term: term, ticker: ticker}, nil
}

func (h *TerminalHost) Surfaces() renderer.Surfaces {
	return renderer.Surfaces{Text: h.term.Text(), Graphics: h.term.Graphics()}
}

func (h *TerminalHost) Requester() scheduler.Requester { return h.ticker }

// Viewport counts half-block pixels: two per cell vertically.
func (h *TerminalHost) Viewport() scale.Viewport {
	w, hgt := h.term.Size()
	return cellViewport(w, hgt)
}

// Run polls terminal events on a separate goroutine while ticks are
// delivered on the caller's.
func (h *TerminalHost) Run(ctx context.Context, loop Loop) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		for ctx.Err() == nil {
			ev := h.term.PollEvent()
			if ctx.Err() != nil {
				return
			}
			switch ev.Type {
			case backend.EventResize:
				loop.Resize(cellViewport(ev.Width, ev.Height))
			case backend.EventQuit:
				loop.Event(ev)
				return
			default:
				loop.Event(ev)
			}
		}
	}()

	return h.ticker.Run(ctx, 0, loop.Frame)
}

// Close restores the terminal, which also unblocks the event poller.
func (h *TerminalHost) Close() {
	h.closeOnce.Do(h.term.Shutdown)
}

func cellViewport(cols, rows int) scale.Viewport {
	return scale.Viewport{Width: cols, Height: rows * 2, DPR: 1}
}
