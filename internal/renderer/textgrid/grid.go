// Package textgrid holds the character/attribute cells of a text-mode screen
// and tracks which rows changed since they were last rendered.
package textgrid

import (
	"strings"

	"github.com/dshills/vscreen/internal/renderer/charmap"
	"github.com/dshills/vscreen/internal/renderer/core"
	"github.com/dshills/vscreen/internal/renderer/dirty"
)

// Grid is a dense row-major cell buffer with per-row dirty flags.
// It is not safe for concurrent use.
type Grid struct {
	width, height int
	cells         []core.Cell
	dirty         *dirty.Rows
	charmap       *charmap.Charmap
}

// New creates an empty 0x0 grid decoding through cm.
// A nil charmap selects CP437.
func New(cm *charmap.Charmap) *Grid {
	if cm == nil {
		cm = charmap.CodePage437
	}
	return &Grid{
		cells:   []core.Cell{},
		dirty:   dirty.NewRows(0),
		charmap: cm,
	}
}

// Size returns the grid dimensions in columns and rows.
func (g *Grid) Size() (cols, rows int) {
	return g.width, g.height
}

// Charmap returns the table used to decode cell characters.
func (g *Grid) Charmap() *charmap.Charmap {
	return g.charmap
}

// SetCharmap swaps the decoding table and marks every row dirty.
func (g *Grid) SetCharmap(cm *charmap.Charmap) {
	if cm == nil || cm == g.charmap {
		return
	}
	g.charmap = cm
	g.dirty.MarkAll()
}

// Resize reallocates the grid for cols x rows. Old content is discarded and
// every row is marked dirty once. Resizing to the current size is a no-op.
// Negative dimensions are treated as zero.
func (g *Grid) Resize(cols, rows int) bool {
	cols = max(cols, 0)
	rows = max(rows, 0)
	if cols == g.width && rows == g.height {
		return false
	}

	g.width = cols
	g.height = rows
	g.cells = make([]core.Cell, cols*rows)
	g.dirty = dirty.NewRows(rows)
	g.dirty.MarkAll()
	return true
}

// InBounds reports whether (row, col) addresses a cell.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.height && col >= 0 && col < g.width
}

// WriteCell overwrites one cell and marks its row dirty.
// Out-of-range coordinates return a *core.PreconditionError and write nothing.
func (g *Grid) WriteCell(row, col int, ch byte, blinking bool, bg, fg core.Color) error {
	if !g.InBounds(row, col) {
		return &core.PreconditionError{
			Op: "write_cell", Row: row, Col: col, Char: int(ch),
			Width: g.width, Height: g.height,
		}
	}

	g.cells[row*g.width+col] = core.Cell{
		Char:       ch,
		Blinking:   blinking,
		Background: bg & core.ColorMask,
		Foreground: fg & core.ColorMask,
	}
	g.dirty.Mark(row)
	return nil
}

// Cell returns the cell at (row, col), or the zero cell when out of range.
func (g *Grid) Cell(row, col int) core.Cell {
	if !g.InBounds(row, col) {
		return core.Cell{}
	}
	return g.cells[row*g.width+col]
}

// Row returns the cells of one row. The slice aliases grid storage and must
// not be retained across writes.
func (g *Grid) Row(row int) ([]core.Cell, error) {
	if row < 0 || row >= g.height {
		return nil, &core.PreconditionError{Op: "read_row", Row: row, Width: g.width, Height: g.height}
	}
	start := row * g.width
	return g.cells[start : start+g.width], nil
}

// RowText decodes one row through the charmap. The result has exactly
// width glyphs. It does not touch dirty state.
func (g *Grid) RowText(row int) (string, error) {
	cells, err := g.Row(row)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.Grow(len(cells))
	for _, c := range cells {
		sb.WriteString(g.charmap.String(c.Char))
	}
	return sb.String(), nil
}

// Text returns every row decoded, top to bottom.
func (g *Grid) Text() []string {
	rows := make([]string, g.height)
	for i := range rows {
		rows[i], _ = g.RowText(i)
	}
	return rows
}

// MarkRow flags a row for redraw. Rows outside the grid are ignored.
func (g *Grid) MarkRow(row int) bool {
	return g.dirty.Mark(row)
}

// MarkAll flags every row for redraw.
func (g *Grid) MarkAll() {
	g.dirty.MarkAll()
}

// HasDirtyRows returns true if any row needs redrawing.
func (g *Grid) HasDirtyRows() bool {
	return g.dirty.Any()
}

// TakeDirtyRows returns the dirty row indices in ascending order and clears
// all flags.
func (g *Grid) TakeDirtyRows() []int {
	return g.dirty.Take()
}
