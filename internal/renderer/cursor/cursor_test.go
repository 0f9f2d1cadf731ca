package cursor

import (
	"reflect"
	"testing"
	"time"

	"github.com/dshills/vscreen/internal/renderer/core"
)

// rowSet records invalidations for a grid of a given height.
type rowSet struct {
	height int
	marked []int
}

func (r *rowSet) MarkRow(row int) bool {
	if row < 0 || row >= r.height {
		return false
	}
	r.marked = append(r.marked, row)
	return true
}

func TestNew(t *testing.T) {
	m := New(nil)
	s := m.State()

	if s.Row != 0 || s.Col != 0 {
		t.Errorf("initial position = (%d,%d), want (0,0)", s.Row, s.Col)
	}
	if !s.Visible {
		t.Error("cursor should start visible")
	}
	if s.ScanlineStart != DefaultScanlineStart || s.ScanlineEnd != DefaultScanlineEnd {
		t.Errorf("initial band = %d..%d", s.ScanlineStart, s.ScanlineEnd)
	}
}

func TestSetPositionMarksOldAndNewRows(t *testing.T) {
	rows := &rowSet{height: 25}
	m := New(rows)

	if !m.SetPosition(10, 3) {
		t.Fatal("SetPosition should report a change")
	}
	if !reflect.DeepEqual(rows.marked, []int{0, 10}) {
		t.Errorf("marked = %v, want [0 10]", rows.marked)
	}
}

func TestSetPositionColumnOnly(t *testing.T) {
	rows := &rowSet{height: 25}
	m := New(rows)
	m.SetPosition(4, 0)
	rows.marked = nil

	m.SetPosition(4, 9)
	for _, r := range rows.marked {
		if r != 4 {
			t.Errorf("column move marked row %d, want only 4", r)
		}
	}
	if len(rows.marked) == 0 {
		t.Error("column move should redraw the cursor row")
	}
}

func TestSetPositionIdempotent(t *testing.T) {
	rows := &rowSet{height: 25}
	m := New(rows)
	m.SetPosition(5, 5)
	rows.marked = nil

	if m.SetPosition(5, 5) {
		t.Error("SetPosition to the same cell should report no change")
	}
	if len(rows.marked) != 0 {
		t.Errorf("no-op move marked rows %v", rows.marked)
	}
}

func TestSetPositionOutOfBounds(t *testing.T) {
	rows := &rowSet{height: 25}
	m := New(rows)

	m.SetPosition(30, 0) // hidden below the screen
	if !reflect.DeepEqual(rows.marked, []int{0}) {
		t.Errorf("marked = %v, want only the old row", rows.marked)
	}

	rows.marked = nil
	m.SetPosition(2, 0)
	if !reflect.DeepEqual(rows.marked, []int{2}) {
		t.Errorf("marked = %v, want only the new row", rows.marked)
	}
}

func TestSetShapeDoesNotInvalidate(t *testing.T) {
	rows := &rowSet{height: 25}
	m := New(rows)

	m.SetShape(0, 15, false)
	if len(rows.marked) != 0 {
		t.Errorf("SetShape marked rows %v", rows.marked)
	}
	s := m.State()
	if s.Visible || s.ScanlineStart != 0 || s.ScanlineEnd != 15 {
		t.Errorf("state = %+v", s)
	}
}

func TestBand(t *testing.T) {
	tests := []struct {
		start, end  int
		top, height int
	}{
		{13, 15, 13, 2},
		{0, 15, 0, 15},
		{0, 31, 0, 15},
		{20, 25, 15, 5},
		{10, 5, 10, 0},
		{-3, 2, 0, 5},
	}
	for _, tt := range tests {
		s := State{ScanlineStart: tt.start, ScanlineEnd: tt.end}
		top, height := s.Band()
		if top != tt.top || height != tt.height {
			t.Errorf("Band(%d,%d) = (%d,%d), want (%d,%d)",
				tt.start, tt.end, top, height, tt.top, tt.height)
		}
	}
}

func TestMark(t *testing.T) {
	m := New(nil)
	m.SetPosition(3, 7)
	m.SetShape(0, 15, true)

	got := m.Mark(0xAAAAAA)
	want := core.CursorMark{Row: 3, Col: 7, Top: 0, Height: 15, Color: 0xAAAAAA}
	if got != want {
		t.Errorf("Mark = %+v, want %+v", got, want)
	}
}

func TestShapeFromRegisters(t *testing.T) {
	tests := []struct {
		start, end byte
		s, e       int
		visible    bool
	}{
		{0x0D, 0x0E, 13, 14, true},
		{0x2D, 0x0E, 13, 14, false},
		{0x00, 0x1F, 0, 31, true},
		{0xC6, 0xE7, 6, 7, true},
	}
	for _, tt := range tests {
		s, e, v := ShapeFromRegisters(tt.start, tt.end)
		if s != tt.s || e != tt.e || v != tt.visible {
			t.Errorf("ShapeFromRegisters(%#x,%#x) = (%d,%d,%v), want (%d,%d,%v)",
				tt.start, tt.end, s, e, v, tt.s, tt.e, tt.visible)
		}
	}
}

func TestBlinker(t *testing.T) {
	start := time.Unix(0, 0)
	b := NewBlinker(500*time.Millisecond, start)

	if !b.On() {
		t.Fatal("blinker should start on")
	}
	if b.Update(start.Add(100 * time.Millisecond)) {
		t.Error("should not toggle before the rate elapses")
	}
	if !b.Update(start.Add(500 * time.Millisecond)) {
		t.Error("should toggle once the rate elapses")
	}
	if b.On() {
		t.Error("phase should be off after one toggle")
	}

	b.Reset(start.Add(600 * time.Millisecond))
	if !b.On() {
		t.Error("Reset should force the on phase")
	}
}

func TestBlinkerDisabled(t *testing.T) {
	start := time.Unix(0, 0)
	b := NewBlinker(0, start)

	if b.Update(start.Add(time.Hour)) {
		t.Error("disabled blinker should never toggle")
	}
	if !b.On() {
		t.Error("disabled blinker should stay on")
	}
}
