// Package backend provides the surfaces the renderer draws on.
//
// A Surface is either a text surface, whose coordinates are character
// cells, or a pixel surface, whose coordinates are pixels. The renderer
// keeps one of each and shows whichever matches the current mode.
package backend

import (
	"image"

	"github.com/dshills/vscreen/internal/renderer/core"
)

// Surface is a drawing target driven by the renderer.
// Operations that do not apply to a surface kind are ignored.
type Surface interface {
	// SetLogicalSize sets the surface size in its own units and clears it.
	SetLogicalSize(width, height int)

	// SetScale sets the on-screen scale of the surface.
	SetScale(x, y float64)

	// SetResampling selects the filter used when the surface is scaled.
	SetResampling(policy core.Resampling)

	// SetVisible shows or hides the surface.
	SetVisible(visible bool)

	// FillRect fills r with c.
	FillRect(r image.Rectangle, c core.Color)

	// StrokeRect draws a one unit outline of r in c.
	StrokeRect(r image.Rectangle, c core.Color)

	// DrawTextRun draws one run of a text row.
	DrawTextRun(row int, run core.Run)

	// DrawCursor draws the cursor band; HideCursor removes it.
	DrawCursor(mark core.CursorMark)
	HideCursor()

	// BlitPixels copies srcRect of src so that src's top-left lands at origin.
	BlitPixels(src *image.RGBA, srcRect image.Rectangle, origin image.Point)

	// Show flushes pending drawing to the display.
	Show()
}

// Capturer is implemented by surfaces that can return their pixels.
type Capturer interface {
	// Capture returns a copy of the surface contents at logical resolution.
	Capture() *image.RGBA
}

// EventType identifies the type of host event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventResize
	EventQuit
)

// Key represents a keyboard key relevant to the host loop.
type Key int

const (
	KeyNone Key = iota
	KeyRune     // Regular character (use Rune field)
	KeyEscape
	KeyEnter
	KeyCtrlC
)

// Event is a host event delivered by an interactive backend.
type Event struct {
	Type EventType

	Key  Key
	Rune rune

	// Resize event fields
	Width, Height int
}

// IsQuit reports whether the event asks the host to exit.
func (e Event) IsQuit() bool {
	switch e.Type {
	case EventQuit:
		return true
	case EventKey:
		return e.Key == KeyEscape || e.Key == KeyCtrlC || (e.Key == KeyRune && e.Rune == 'q')
	default:
		return false
	}
}
