package scale

import "github.com/dshills/vscreen/internal/renderer/core"

// Viewport is the host area the surfaces are shown in.
type Viewport struct {
	Width, Height int

	// DPR is the device pixel ratio; values <= 0 are treated as 1.
	DPR float64
}

func (v Viewport) normalized() Viewport {
	if v.DPR <= 0 {
		v.DPR = 1
	}
	return v
}

// State is the scale configuration of a screen.
type State struct {
	ScaleX, ScaleY float64

	// Base is the autoscale multiplier, 1 or 2.
	Base int

	Viewport  Viewport
	Autoscale bool
}

// Controller owns the scale state and recomputes the base scale on
// explicit size, viewport or scale changes only.
type Controller struct {
	state         State
	width, height int // graphics logical size
}

// NewController creates a controller with a 1x requested scale.
func NewController(autoscale bool, vp Viewport) *Controller {
	return &Controller{
		state: State{
			ScaleX:    1,
			ScaleY:    1,
			Base:      1,
			Viewport:  vp.normalized(),
			Autoscale: autoscale,
		},
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state
}

// SetRequested sets the user scale. Non-positive or unchanged values are
// ignored. Returns true if the state changed.
func (c *Controller) SetRequested(x, y float64) bool {
	if x <= 0 || y <= 0 {
		return false
	}
	if x == c.state.ScaleX && y == c.state.ScaleY {
		return false
	}
	c.state.ScaleX = x
	c.state.ScaleY = y
	return true
}

// SetGraphicsSize records the graphics logical size and recomputes the
// base scale. Returns true if the base scale changed.
func (c *Controller) SetGraphicsSize(width, height int) bool {
	c.width, c.height = width, height
	return c.recompute()
}

// SetViewport records the host viewport. Returns true if the viewport or
// the base scale changed.
func (c *Controller) SetViewport(vp Viewport) bool {
	vp = vp.normalized()
	if vp == c.state.Viewport {
		return false
	}
	c.state.Viewport = vp
	c.recompute()
	return true
}

// SetAutoscale toggles autoscale. Returns true if the base scale changed.
func (c *Controller) SetAutoscale(enabled bool) bool {
	c.state.Autoscale = enabled
	return c.recompute()
}

// For returns the effective scale for a surface in the given mode.
func (c *Controller) For(mode core.Mode) Result {
	return Effective(c.state.ScaleX, c.state.ScaleY, c.state.Base, c.state.Viewport.DPR, mode)
}

func (c *Controller) recompute() bool {
	vp := c.state.Viewport
	base := ComputeAutoscale(c.width, c.height, vp.Width, vp.Height, vp.DPR, c.state.Autoscale)
	if base == c.state.Base {
		return false
	}
	c.state.Base = base
	return true
}
