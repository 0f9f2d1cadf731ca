package rowrender

import (
	"math/rand"
	"testing"
	"unicode/utf8"

	"github.com/dshills/vscreen/internal/renderer/charmap"
	"github.com/dshills/vscreen/internal/renderer/core"
	"github.com/dshills/vscreen/internal/renderer/textgrid"
)

func uniformRow(width int, bg, fg core.Color) []core.Cell {
	cells := make([]core.Cell, width)
	for i := range cells {
		cells[i] = core.Cell{Char: ' ', Background: bg, Foreground: fg}
	}
	return cells
}

// segments counts maximal attribute-uniform spans.
func segments(cells []core.Cell) int {
	n := 0
	for i := range cells {
		if i == 0 || !cells[i].SameAttributes(cells[i-1]) {
			n++
		}
	}
	return n
}

func checkCoverage(t *testing.T, row Row, width int) {
	t.Helper()
	col := 0
	for i, run := range row.Runs {
		if run.Col != col {
			t.Fatalf("run %d starts at %d, want %d", i, run.Col, col)
		}
		if run.Width <= 0 {
			t.Fatalf("run %d has width %d", i, run.Width)
		}
		if n := utf8.RuneCountInString(run.Text); n != run.Width {
			t.Fatalf("run %d text has %d glyphs, width %d", i, n, run.Width)
		}
		col = run.End()
	}
	if col != width {
		t.Fatalf("runs cover %d columns, want %d", col, width)
	}
}

func TestRenderTextUpdateScenario(t *testing.T) {
	g := textgrid.New(nil)
	g.Resize(80, 25)
	g.TakeDirtyRows()

	if err := g.WriteCell(0, 0, 'A', false, 0x000000, 0xFFFFFF); err != nil {
		t.Fatal(err)
	}
	dirtyRows := g.TakeDirtyRows()
	if len(dirtyRows) != 1 || dirtyRows[0] != 0 {
		t.Fatalf("dirty rows = %v, want [0]", dirtyRows)
	}

	cells, _ := g.Row(0)
	row := New(nil).Render(cells, NoCursor)

	if len(row.Runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(row.Runs))
	}
	first := row.Runs[0]
	if first.Text != "A" || first.BackgroundHex() != "#000000" || first.ForegroundHex() != "#ffffff" {
		t.Errorf("first run = {%q %s %s}, want {\"A\" #000000 #ffffff}",
			first.Text, first.BackgroundHex(), first.ForegroundHex())
	}
	rest := row.Runs[1]
	if rest.Width != 79 || rest.Col != 1 {
		t.Errorf("second run covers [%d,+%d), want [1,+79)", rest.Col, rest.Width)
	}
	if rest.Background != 0 || rest.Foreground != 0 {
		t.Errorf("blank run colors = %s/%s, want default zero colors", rest.Background, rest.Foreground)
	}
	if row.HasCursor() {
		t.Error("row without cursor should not report one")
	}
}

func TestRenderCursorSplit(t *testing.T) {
	cells := uniformRow(80, 0x0000AA, 0xAAAAAA)
	row := New(nil).Render(cells, 5)

	if len(row.Runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(row.Runs))
	}

	want := []struct{ col, width int }{{0, 5}, {5, 1}, {6, 74}}
	for i, w := range want {
		if row.Runs[i].Col != w.col || row.Runs[i].Width != w.width {
			t.Errorf("run %d = [%d,+%d), want [%d,+%d)",
				i, row.Runs[i].Col, row.Runs[i].Width, w.col, w.width)
		}
	}
	if !row.Runs[1].Cursor || row.Runs[0].Cursor || row.Runs[2].Cursor {
		t.Error("only the middle run should carry the cursor")
	}
	if row.CursorCol != 5 {
		t.Errorf("CursorCol = %d, want 5", row.CursorCol)
	}
	if row.CursorColor != 0xAAAAAA {
		t.Errorf("CursorColor = %s, want foreground #aaaaaa", row.CursorColor)
	}
}

func TestRenderCursorEdges(t *testing.T) {
	tests := []struct {
		name      string
		cursorCol int
		wantRuns  [][2]int
		wantMark  int
	}{
		{"first column", 0, [][2]int{{0, 1}, {1, 79}}, 0},
		{"last column", 79, [][2]int{{0, 79}, {79, 1}}, 79},
		{"second to last", 78, [][2]int{{0, 78}, {78, 1}, {79, 1}}, 78},
		{"past the row", 80, [][2]int{{0, 80}}, NoCursor},
		{"far past the row", 200, [][2]int{{0, 80}}, NoCursor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells := uniformRow(80, 0, 0xFFFFFF)
			row := New(nil).Render(cells, tt.cursorCol)
			checkCoverage(t, row, 80)

			if len(row.Runs) != len(tt.wantRuns) {
				t.Fatalf("got %d runs, want %d", len(row.Runs), len(tt.wantRuns))
			}
			for i, w := range tt.wantRuns {
				if row.Runs[i].Col != w[0] || row.Runs[i].Width != w[1] {
					t.Errorf("run %d = [%d,+%d), want [%d,+%d)",
						i, row.Runs[i].Col, row.Runs[i].Width, w[0], w[1])
				}
			}
			if row.CursorCol != tt.wantMark {
				t.Errorf("CursorCol = %d, want %d", row.CursorCol, tt.wantMark)
			}
		})
	}
}

func TestRenderCursorAtColorBoundary(t *testing.T) {
	cells := uniformRow(10, 0, 0xFFFFFF)
	for i := 4; i < 10; i++ {
		cells[i].Foreground = 0xFF0000
	}

	row := New(nil).Render(cells, 4)
	checkCoverage(t, row, 10)

	// [0,4) white, [4] cursor red, [5,10) red
	if len(row.Runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(row.Runs))
	}
	if row.CursorColor != 0xFF0000 {
		t.Errorf("CursorColor = %s, want the cursor cell foreground", row.CursorColor)
	}
}

func TestRenderRunCoverageProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	palette := []core.Color{0x000000, 0x0000AA, 0xAAAAAA, 0xFFFFFF}
	r := New(charmap.CodePage437)

	for iter := 0; iter < 500; iter++ {
		width := 1 + rng.Intn(100)
		g := textgrid.New(nil)
		g.Resize(width, 1)
		for col := 0; col < width; col++ {
			_ = g.WriteCell(0, col, byte(rng.Intn(256)), rng.Intn(4) == 0,
				palette[rng.Intn(2)], palette[2+rng.Intn(2)])
		}

		cursorCol := NoCursor
		if rng.Intn(2) == 0 {
			cursorCol = rng.Intn(width + 2)
		}

		cells, _ := g.Row(0)
		row := r.Render(cells, cursorCol)
		checkCoverage(t, row, width)

		text, _ := g.RowText(0)
		if row.Text() != text {
			t.Fatalf("iter %d: runs text %q != RowText %q", iter, row.Text(), text)
		}

		extra := len(row.Runs) - segments(cells)
		switch {
		case cursorCol == NoCursor || cursorCol >= width:
			if extra != 0 {
				t.Fatalf("iter %d: %d extra runs without cursor", iter, extra)
			}
		case extra < 0 || extra > 2:
			t.Fatalf("iter %d: %d extra runs for one cursor split", iter, extra)
		}

		for i := 1; i < len(row.Runs); i++ {
			prev, cur := row.Runs[i-1], row.Runs[i]
			sameAttrs := prev.Blinking == cur.Blinking &&
				prev.Background == cur.Background && prev.Foreground == cur.Foreground
			atCursor := cur.Col == cursorCol || prev.Col == cursorCol
			if sameAttrs && !atCursor {
				t.Fatalf("iter %d: runs %d and %d are mergeable", iter, i-1, i)
			}
		}
	}
}

func TestRenderEmptyRow(t *testing.T) {
	row := New(nil).Render(nil, 0)
	if len(row.Runs) != 0 {
		t.Errorf("got %d runs for empty row, want 0", len(row.Runs))
	}
	if row.HasCursor() {
		t.Error("empty row cannot hold the cursor")
	}
}

func TestRenderBlinkBreaksRun(t *testing.T) {
	cells := uniformRow(6, 0, 0xFFFFFF)
	cells[2].Blinking = true
	cells[3].Blinking = true

	row := New(nil).Render(cells, NoCursor)
	if len(row.Runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(row.Runs))
	}
	if !row.Runs[1].Blinking || row.Runs[1].Width != 2 {
		t.Errorf("middle run = %+v, want 2 blinking cells", row.Runs[1])
	}
}
