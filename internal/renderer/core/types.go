package core

// Mode selects which surface the emulated device is driving.
type Mode uint8

const (
	// ModeText is the character grid mode.
	ModeText Mode = iota
	// ModeGraphics is the pixel layer mode.
	ModeGraphics
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeGraphics:
		return "graphics"
	default:
		return "unknown"
	}
}

// Cell is a single character position in the text grid.
type Cell struct {
	// Char is the code page byte written by the device.
	Char byte

	// Blinking marks the cell as using the blink attribute.
	Blinking bool

	Background Color
	Foreground Color
}

// SameAttributes reports whether two cells render with the same
// blink flag and colors.
func (c Cell) SameAttributes(other Cell) bool {
	return c.Blinking == other.Blinking &&
		c.Background == other.Background &&
		c.Foreground == other.Foreground
}

// Run is a maximal span of cells in a row sharing rendering attributes.
type Run struct {
	// Col is the first column covered by the run.
	Col int

	// Text holds one decoded glyph per covered cell.
	Text string

	// Width is the number of cells covered.
	Width int

	Background Color
	Foreground Color
	Blinking   bool

	// Cursor is set on the single-cell run under the cursor.
	Cursor bool
}

// BackgroundHex returns the background as "#rrggbb".
func (r Run) BackgroundHex() string { return r.Background.Hex() }

// ForegroundHex returns the foreground as "#rrggbb".
func (r Run) ForegroundHex() string { return r.Foreground.Hex() }

// End returns the column after the last covered cell.
func (r Run) End() int { return r.Col + r.Width }

// ScanlinesPerCell is the height of a character cell in cursor scanlines.
const ScanlinesPerCell = 16

// CursorMark describes the cursor band to draw inside one text cell.
type CursorMark struct {
	Row, Col int

	// Top is the first lit scanline, Height the number of lit scanlines,
	// both in units of ScanlinesPerCell.
	Top    int
	Height int

	// Color fills the band; it is the foreground of the cell under it.
	Color Color
}

// Resampling selects how a surface filters when it is scaled.
type Resampling uint8

const (
	// ResampleSmooth uses bilinear filtering.
	ResampleSmooth Resampling = iota
	// ResamplePixelated uses nearest-neighbor filtering.
	ResamplePixelated
)

// String returns the policy name.
func (r Resampling) String() string {
	if r == ResamplePixelated {
		return "pixelated"
	}
	return "smooth"
}
