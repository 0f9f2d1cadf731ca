// Package cursor models the text-mode hardware cursor: its cell position,
// its scanline band and the blink phase driven by the host.
package cursor

import (
	"time"

	"github.com/dshills/vscreen/internal/renderer/core"
)

// Default scanline band for a freshly reset adapter (underline cursor).
const (
	DefaultScanlineStart = 13
	DefaultScanlineEnd   = 15
)

// maxScanline is the last scanline of a character cell.
const maxScanline = core.ScanlinesPerCell - 1

// Invalidator receives row invalidations when the cursor moves.
// Rows outside the grid must be ignored by the implementation.
type Invalidator interface {
	MarkRow(row int) bool
}

// State is the cursor as last programmed by the device.
type State struct {
	Row, Col int

	// Visible is the device-controlled enable bit, not the blink phase.
	Visible bool

	ScanlineStart int
	ScanlineEnd   int
}

// Band returns the lit part of the cell as (top, height) in scanlines,
// clamped to one character cell.
func (s State) Band() (top, height int) {
	top = min(maxScanline, max(s.ScanlineStart, 0))
	height = min(maxScanline, s.ScanlineEnd-s.ScanlineStart)
	return top, max(height, 0)
}

// Model tracks cursor state and invalidates rows as the cursor moves.
type Model struct {
	state State
	rows  Invalidator
}

// New creates a visible cursor at (0, 0) with the default band.
func New(rows Invalidator) *Model {
	return &Model{
		rows: rows,
		state: State{
			Visible:       true,
			ScanlineStart: DefaultScanlineStart,
			ScanlineEnd:   DefaultScanlineEnd,
		},
	}
}

// State returns a copy of the current cursor state.
func (m *Model) State() State {
	return m.state
}

// SetPosition moves the cursor. When either coordinate changes, the previous
// and new rows are invalidated so both get redrawn. Returns true on change.
func (m *Model) SetPosition(row, col int) bool {
	if row == m.state.Row && col == m.state.Col {
		return false
	}
	if m.rows != nil {
		m.rows.MarkRow(m.state.Row)
		m.rows.MarkRow(row)
	}
	m.state.Row = row
	m.state.Col = col
	return true
}

// SetShape updates the scanline band and the enable bit. It does not
// invalidate any row; callers that need the change on screen before the
// next natural redraw must invalidate the cursor row themselves.
func (m *Model) SetShape(start, end int, visible bool) {
	m.state.ScanlineStart = start
	m.state.ScanlineEnd = end
	m.state.Visible = visible
}

// Mark returns the band to draw for the cursor in the given color.
func (m *Model) Mark(color core.Color) core.CursorMark {
	top, height := m.state.Band()
	return core.CursorMark{
		Row:    m.state.Row,
		Col:    m.state.Col,
		Top:    top,
		Height: height,
		Color:  color,
	}
}

// ShapeFromRegisters decodes the VGA CRTC cursor start/end registers
// (indices 0x0A and 0x0B). Bit 5 of the start register disables the cursor;
// the low five bits of each register are the scanline.
func ShapeFromRegisters(start, end byte) (scanStart, scanEnd int, visible bool) {
	return int(start & 0x1F), int(end & 0x1F), start&0x20 == 0
}

// Blinker produces the on/off phase of a blinking cursor.
type Blinker struct {
	rate      time.Duration
	on        bool
	lastBlink time.Time
}

// NewBlinker creates a blinker that starts in the on phase.
// A non-positive rate disables blinking.
func NewBlinker(rate time.Duration, now time.Time) *Blinker {
	return &Blinker{rate: rate, on: true, lastBlink: now}
}

// On returns the current phase.
func (b *Blinker) On() bool {
	return b.on
}

// Update advances the phase. Returns true if the phase changed.
func (b *Blinker) Update(now time.Time) bool {
	if b.rate <= 0 {
		if !b.on {
			b.on = true
			return true
		}
		return false
	}

	if now.Sub(b.lastBlink) >= b.rate {
		b.on = !b.on
		b.lastBlink = now
		return true
	}
	return false
}

// Reset forces the on phase, e.g. after the cursor moves.
func (b *Blinker) Reset(now time.Time) {
	b.on = true
	b.lastBlink = now
}
