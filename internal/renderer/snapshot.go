package renderer

import (
	"image"

	"github.com/dshills/vscreen/internal/renderer/backend"
	"github.com/dshills/vscreen/internal/renderer/core"
	"github.com/dshills/vscreen/internal/renderer/rowrender"
	"github.com/dshills/vscreen/internal/renderer/scheduler"
)

// CaptureSnapshot returns an image of the current display. Text mode is
// rendered off-screen from the grid, the charmap and the cursor; graphics
// mode returns the graphics surface pixels as they are.
func (s *Screen) CaptureSnapshot() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched.State() == scheduler.Destroyed {
		return nil, ErrDestroyed
	}

	if s.mode == core.ModeGraphics {
		c, ok := s.gfx.(backend.Capturer)
		if !ok {
			return nil, ErrNoCapture
		}
		return c.Capture(), nil
	}
	return s.renderTextSnapshot(), nil
}

func (s *Screen) renderTextSnapshot() *image.RGBA {
	cols, rows := s.grid.Size()
	canvas := backend.NewTextCanvas()
	canvas.SetLogicalSize(cols, rows)

	cs := s.cursor.State()
	for row := 0; row < rows; row++ {
		cells, err := s.grid.Row(row)
		if err != nil {
			continue
		}
		cursorCol := rowrender.NoCursor
		if cs.Row == row {
			cursorCol = cs.Col
		}

		r := s.rows.Render(cells, cursorCol)
		for _, run := range r.Runs {
			canvas.DrawTextRun(row, run)
		}
		if r.HasCursor() && cs.Visible && s.blinkOn {
			canvas.DrawCursor(s.cursor.Mark(r.CursorColor))
		}
	}
	return canvas.Capture()
}
