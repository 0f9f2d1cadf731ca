package main

import (
	"image"
	"strings"
	"testing"
	"time"

	"github.com/dshills/vscreen/internal/logging"
	"github.com/dshills/vscreen/internal/renderer"
	"github.com/dshills/vscreen/internal/renderer/backend"
	"github.com/dshills/vscreen/internal/renderer/core"
)

func newDemoScreen(t *testing.T, graphics bool) (*demo, *renderer.Screen, *backend.Recorder) {
	t.Helper()
	gfx := backend.NewRecorder()
	s, err := renderer.New(renderer.Surfaces{Text: backend.NewRecorder(), Graphics: gfx}, renderer.Options{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Destroy)

	d := newDemo(graphics)
	if err := d.Attach(s); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	return d, s, gfx
}

func TestDemo_Attach(t *testing.T) {
	tests := []struct {
		name     string
		graphics bool
		mode     core.Mode
	}{
		{"text", false, core.ModeText},
		{"graphics", true, core.ModeGraphics},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, s, _ := newDemoScreen(t, tt.graphics)
			if got := s.Mode(); got != tt.mode {
				t.Errorf("Mode() = %v, want %v", got, tt.mode)
			}

			top, _ := s.TextRow(0)
			if !strings.HasPrefix(top, "╔═") || !strings.HasSuffix(top, "═╗") {
				t.Errorf("top row = %q, want a double box edge", top)
			}
			banner, _ := s.TextRow(2)
			if !strings.Contains(banner, "vscreen") {
				t.Errorf("row 2 = %q, want banner", banner)
			}

			c := s.Cursor()
			if !c.Visible || c.ScanlineStart != 13 || c.ScanlineEnd != 14 {
				t.Errorf("cursor = %+v, want visible underline", c)
			}
		})
	}
}

func TestDemo_StepClock(t *testing.T) {
	d, s, _ := newDemoScreen(t, false)

	d.Step(d.start.Add(3 * time.Second))
	row, _ := s.TextRow(4)
	if !strings.Contains(row, "uptime 3s") {
		t.Errorf("row 4 = %q, want uptime 3s", row)
	}
	if c := s.Cursor(); c.Row != 4 {
		t.Errorf("cursor row = %d, want 4", c.Row)
	}
}

func TestDemo_StepLogsFailedWrite(t *testing.T) {
	d, s, _ := newDemoScreen(t, false)
	var out strings.Builder
	d.SetLogger(logging.New(logging.Config{Level: logging.LevelDebug, Output: &out}))

	s.Destroy()
	d.Step(d.start.Add(2 * time.Second))

	if !strings.Contains(out.String(), "clock not drawn") {
		t.Errorf("log = %q, want a clock warning", out.String())
	}
	if d.clock != "" {
		t.Errorf("clock = %q, want unset after a failed write", d.clock)
	}
}

func TestDemo_FillBuffer(t *testing.T) {
	d, s, gfx := newDemoScreen(t, true)
	gfx.Reset()

	d.FillBuffer()

	blits := gfx.OpsOf(backend.OpBlit)
	if len(blits) != tiles*tiles {
		t.Fatalf("blits = %d, want %d", len(blits), tiles*tiles)
	}
	want := image.Rect(gfxWidth/tiles, 0, gfxWidth, gfxHeight/tiles)
	if blits[1].Source != want {
		t.Errorf("second tile source = %v, want %v", blits[1].Source, want)
	}
	if st := s.Stats(); st.LayersApplied != tiles*tiles || st.LayersSkipped != 0 {
		t.Errorf("layers applied=%d skipped=%d", st.LayersApplied, st.LayersSkipped)
	}
}

func TestDemo_HandleKey(t *testing.T) {
	d, s, _ := newDemoScreen(t, false)

	tests := []struct {
		name  string
		r     rune
		check func() bool
	}{
		{"g enters graphics", 'g', func() bool { return s.Mode() == core.ModeGraphics }},
		{"g leaves graphics", 'g', func() bool { return s.Mode() == core.ModeText }},
		{"p pauses", 'p', func() bool { return s.State().String() == "paused" }},
		{"p resumes", 'p', func() bool { return s.State().String() == "running" }},
		{"other keys ignored", 'x', func() bool { return s.Mode() == core.ModeText }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d.HandleKey(backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: tt.r})
			if !tt.check() {
				t.Errorf("state after %q is wrong: mode %v, scheduler %v", tt.r, s.Mode(), s.State())
			}
		})
	}
}

func TestPlasma(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	plasma(img, 1)

	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0xFF {
			t.Fatalf("pixel %d not opaque", i/4)
		}
	}
	a, b := img.RGBAAt(0, 0), img.RGBAAt(7, 7)
	if a == b {
		t.Error("plasma is flat")
	}
}
