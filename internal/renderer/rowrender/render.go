// Package rowrender converts one text grid row into the minimal ordered list
// of color-uniform runs.
package rowrender

import (
	"strings"

	"github.com/dshills/vscreen/internal/renderer/charmap"
	"github.com/dshills/vscreen/internal/renderer/core"
)

// NoCursor is passed as the cursor column for rows the cursor is not on.
const NoCursor = -1

// Row is the rendered form of one grid row.
type Row struct {
	// Runs cover the row left to right with no gaps or overlaps.
	Runs []core.Run

	// CursorCol is the column of the cursor run, or NoCursor.
	CursorCol int

	// CursorColor is the foreground of the cell under the cursor.
	CursorColor core.Color
}

// HasCursor reports whether the cursor sits on this row.
func (r Row) HasCursor() bool {
	return r.CursorCol != NoCursor
}

// Text concatenates the run texts.
func (r Row) Text() string {
	var sb strings.Builder
	for _, run := range r.Runs {
		sb.WriteString(run.Text)
	}
	return sb.String()
}

// Renderer groups cells into runs and decodes their glyphs.
type Renderer struct {
	charmap *charmap.Charmap
	sb      strings.Builder
}

// New creates a renderer decoding through cm. A nil charmap selects CP437.
func New(cm *charmap.Charmap) *Renderer {
	if cm == nil {
		cm = charmap.CodePage437
	}
	return &Renderer{charmap: cm}
}

// SetCharmap changes the decoding table.
func (r *Renderer) SetCharmap(cm *charmap.Charmap) {
	if cm != nil {
		r.charmap = cm
	}
}

// Render scans cells left to right. A run closes when the blink flag or
// either color changes, when the next column is cursorCol (the cursor cell
// starts its own run), or when the cell just consumed is cursorCol (the
// cursor run is exactly one cell). Pass NoCursor for rows without the cursor.
func (r *Renderer) Render(cells []core.Cell, cursorCol int) Row {
	row := Row{CursorCol: NoCursor}
	width := len(cells)

	for i := 0; i < width; {
		first := cells[i]
		run := core.Run{
			Col:        i,
			Background: first.Background,
			Foreground: first.Foreground,
			Blinking:   first.Blinking,
		}

		r.sb.Reset()
		for i < width && cells[i].SameAttributes(first) {
			r.sb.WriteString(r.charmap.String(cells[i].Char))
			i++

			if cursorCol < 0 {
				continue
			}
			if i == cursorCol {
				break
			}
			if i == cursorCol+1 {
				run.Cursor = true
				row.CursorCol = cursorCol
				row.CursorColor = run.Foreground
				break
			}
		}

		run.Width = i - run.Col
		run.Text = r.sb.String()
		row.Runs = append(row.Runs, run)
	}

	return row
}
