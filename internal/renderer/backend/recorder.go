package backend

import (
	"image"
	"strings"
	"sync"

	"github.com/dshills/vscreen/internal/renderer/core"
)

// OpKind identifies a recorded surface call.
type OpKind uint8

const (
	OpLogicalSize OpKind = iota
	OpScale
	OpResampling
	OpVisible
	OpFillRect
	OpStrokeRect
	OpTextRun
	OpCursor
	OpHideCursor
	OpBlit
	OpShow
)

// String returns the op name.
func (k OpKind) String() string {
	switch k {
	case OpLogicalSize:
		return "logical-size"
	case OpScale:
		return "scale"
	case OpResampling:
		return "resampling"
	case OpVisible:
		return "visible"
	case OpFillRect:
		return "fill-rect"
	case OpStrokeRect:
		return "stroke-rect"
	case OpTextRun:
		return "text-run"
	case OpCursor:
		return "cursor"
	case OpHideCursor:
		return "hide-cursor"
	case OpBlit:
		return "blit"
	case OpShow:
		return "show"
	default:
		return "unknown"
	}
}

// Op is one recorded surface call. Only the fields relevant to Kind are set.
type Op struct {
	Kind OpKind

	Width, Height int
	ScaleX        float64
	ScaleY        float64
	Sampling      core.Resampling
	Visible       bool

	Rect  image.Rectangle
	Color core.Color

	Row int
	Run core.Run

	Cursor core.CursorMark

	Source image.Rectangle
	Origin image.Point
}

// Recorder is an in-memory Surface that records every call.
// It is used in tests and as a stand-in when no display is attached.
type Recorder struct {
	mu  sync.Mutex
	ops []Op

	width, height int
	scaleX        float64
	scaleY        float64
	sampling      core.Resampling
	visible       bool

	rows   map[int][]core.Run
	cursor *core.CursorMark
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		scaleX: 1,
		scaleY: 1,
		rows:   make(map[int][]core.Run),
	}
}

func (r *Recorder) record(op Op) {
	r.ops = append(r.ops, op)
}

func (r *Recorder) SetLogicalSize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.width, r.height = width, height
	r.rows = make(map[int][]core.Run)
	r.cursor = nil
	r.record(Op{Kind: OpLogicalSize, Width: width, Height: height})
}

func (r *Recorder) SetScale(x, y float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scaleX, r.scaleY = x, y
	r.record(Op{Kind: OpScale, ScaleX: x, ScaleY: y})
}

func (r *Recorder) SetResampling(policy core.Resampling) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sampling = policy
	r.record(Op{Kind: OpResampling, Sampling: policy})
}

func (r *Recorder) SetVisible(visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.visible = visible
	r.record(Op{Kind: OpVisible, Visible: visible})
}

func (r *Recorder) FillRect(rect image.Rectangle, c core.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record(Op{Kind: OpFillRect, Rect: rect, Color: c})
}

func (r *Recorder) StrokeRect(rect image.Rectangle, c core.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record(Op{Kind: OpStrokeRect, Rect: rect, Color: c})
}

// DrawTextRun records the run. A run starting at column 0 begins a new
// rendering of the row.
func (r *Recorder) DrawTextRun(row int, run core.Run) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.Col == 0 {
		r.rows[row] = nil
	}
	r.rows[row] = append(r.rows[row], run)
	r.record(Op{Kind: OpTextRun, Row: row, Run: run})
}

func (r *Recorder) DrawCursor(mark core.CursorMark) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cursor = &mark
	r.record(Op{Kind: OpCursor, Cursor: mark})
}

func (r *Recorder) HideCursor() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cursor = nil
	r.record(Op{Kind: OpHideCursor})
}

func (r *Recorder) BlitPixels(src *image.RGBA, srcRect image.Rectangle, origin image.Point) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record(Op{Kind: OpBlit, Source: srcRect, Origin: origin})
}

func (r *Recorder) Show() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record(Op{Kind: OpShow})
}

// Ops returns a copy of the recorded calls.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Op, len(r.ops))
	copy(out, r.ops)
	return out
}

// OpsOf returns the recorded calls of one kind.
func (r *Recorder) OpsOf(kind OpKind) []Op {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Op
	for _, op := range r.ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Mutations returns the number of recorded calls.
func (r *Recorder) Mutations() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.ops)
}

// Reset forgets recorded calls but keeps the surface state.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ops = nil
}

// Size returns the last logical size.
func (r *Recorder) Size() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.width, r.height
}

// Scale returns the last scale and resampling policy.
func (r *Recorder) Scale() (x, y float64, policy core.Resampling) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.scaleX, r.scaleY, r.sampling
}

// Visible reports the last visibility.
func (r *Recorder) Visible() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.visible
}

// RowRuns returns the runs of the latest rendering of row.
func (r *Recorder) RowRuns(row int) []core.Run {
	r.mu.Lock()
	defer r.mu.Unlock()

	runs := r.rows[row]
	out := make([]core.Run, len(runs))
	copy(out, runs)
	return out
}

// RowText returns the concatenated text of the latest rendering of row.
func (r *Recorder) RowText(row int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sb strings.Builder
	for _, run := range r.rows[row] {
		sb.WriteString(run.Text)
	}
	return sb.String()
}

// Cursor returns the drawn cursor, if any.
func (r *Recorder) Cursor() (core.CursorMark, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cursor == nil {
		return core.CursorMark{}, false
	}
	return *r.cursor, true
}
