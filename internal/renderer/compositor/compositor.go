// Package compositor applies graphics-mode pixel layers to a surface.
//
// Layers are composited in submission order through the surface's blit
// primitive; no blending is done here, so a later layer overwrites an
// earlier one wherever their destinations overlap. In outline mode each
// layer's destination rectangle is stroked instead and no pixels are
// copied, which makes partial updates visible while debugging.
package compositor

import (
	"fmt"
	"image"

	"github.com/dshills/vscreen/internal/renderer/core"
)

// OutlineColor strokes layer rectangles in outline mode.
const OutlineColor = core.ColorGreen

// Layer is a rectangular region of pixel data and the position it is
// drawn at. A layer is borrowed for one Composite call and not retained.
type Layer struct {
	Pixels *image.RGBA

	// BufferX, BufferY, BufferWidth and BufferHeight select the part of
	// Pixels to draw, relative to the top-left of Pixels.
	BufferX, BufferY          int
	BufferWidth, BufferHeight int

	// ScreenX and ScreenY are where the selected part lands on the surface.
	ScreenX, ScreenY int
}

// Source returns the selected sub-rectangle in the coordinate space of Pixels.
func (l Layer) Source() image.Rectangle {
	r := image.Rect(l.BufferX, l.BufferY, l.BufferX+l.BufferWidth, l.BufferY+l.BufferHeight)
	if l.Pixels != nil {
		r = r.Add(l.Pixels.Rect.Min)
	}
	return r
}

// Origin returns where the top-left of Pixels maps to on the surface.
func (l Layer) Origin() image.Point {
	return image.Pt(l.ScreenX-l.BufferX, l.ScreenY-l.BufferY)
}

// Destination returns the surface rectangle the layer covers.
func (l Layer) Destination() image.Rectangle {
	return image.Rect(l.ScreenX, l.ScreenY, l.ScreenX+l.BufferWidth, l.ScreenY+l.BufferHeight)
}

// Validate reports why a layer cannot be composited, or nil.
func (l Layer) Validate() error {
	if l.Pixels == nil {
		return fmt.Errorf("layer has no pixel data")
	}
	if l.BufferWidth <= 0 || l.BufferHeight <= 0 {
		return fmt.Errorf("layer buffer size %dx%d is empty", l.BufferWidth, l.BufferHeight)
	}
	if l.BufferX < 0 || l.BufferY < 0 {
		return fmt.Errorf("layer buffer offset (%d,%d) is negative", l.BufferX, l.BufferY)
	}
	if src := l.Source(); !src.In(l.Pixels.Rect) {
		return fmt.Errorf("layer buffer %v outside pixel data %v", src, l.Pixels.Rect)
	}
	return nil
}

// Target is the part of a surface the compositor draws through.
type Target interface {
	// BlitPixels copies srcRect of src so that src's top-left lands at origin.
	BlitPixels(src *image.RGBA, srcRect image.Rectangle, origin image.Point)

	// StrokeRect draws the outline of r.
	StrokeRect(r image.Rectangle, c core.Color)
}

// Result summarises one Composite call.
type Result struct {
	Applied int
	Skipped int
}

// Compositor draws layers onto a Target.
type Compositor struct {
	debugOutline bool
}

// New creates a compositor. With debugOutline set, layers are drawn as
// outlines only.
func New(debugOutline bool) *Compositor {
	return &Compositor{debugOutline: debugOutline}
}

// DebugOutline reports whether outline mode is enabled.
func (c *Compositor) DebugOutline() bool {
	return c.debugOutline
}

// SetDebugOutline switches outline mode.
func (c *Compositor) SetDebugOutline(enabled bool) {
	c.debugOutline = enabled
}

// Composite draws layers in order. Malformed layers are skipped and
// counted; skip is called for each one when non-nil.
func (c *Compositor) Composite(layers []Layer, target Target, skip func(index int, err error)) Result {
	var res Result
	if target == nil {
		return res
	}

	for i, l := range layers {
		if err := l.Validate(); err != nil {
			res.Skipped++
			if skip != nil {
				skip(i, err)
			}
			continue
		}

		if c.debugOutline {
			target.StrokeRect(l.Destination(), OutlineColor)
		} else {
			target.BlitPixels(l.Pixels, l.Source(), l.Origin())
		}
		res.Applied++
	}
	return res
}
