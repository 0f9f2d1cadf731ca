package compositor

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/dshills/vscreen/internal/renderer/core"
)

// pixelTarget blits into a real image and records strokes.
type pixelTarget struct {
	img     *image.RGBA
	blits   int
	strokes []image.Rectangle
}

func newPixelTarget(w, h int) *pixelTarget {
	return &pixelTarget{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (p *pixelTarget) BlitPixels(src *image.RGBA, srcRect image.Rectangle, origin image.Point) {
	p.blits++
	dst := srcRect.Sub(src.Rect.Min).Add(origin)
	draw.Draw(p.img, dst, src, srcRect.Min, draw.Src)
}

func (p *pixelTarget) StrokeRect(r image.Rectangle, _ core.Color) {
	p.strokes = append(p.strokes, r)
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Rect, &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

var (
	red  = color.RGBA{R: 0xFF, A: 0xFF}
	blue = color.RGBA{B: 0xFF, A: 0xFF}
)

func TestCompositeLaterLayerWins(t *testing.T) {
	target := newPixelTarget(64, 64)
	a := Layer{Pixels: solid(20, 20, red), BufferWidth: 20, BufferHeight: 20, ScreenX: 0, ScreenY: 0}
	b := Layer{Pixels: solid(20, 20, blue), BufferWidth: 20, BufferHeight: 20, ScreenX: 10, ScreenY: 10}

	res := New(false).Composite([]Layer{a, b}, target, nil)
	if res.Applied != 2 || res.Skipped != 0 {
		t.Fatalf("result = %+v, want 2 applied", res)
	}

	tests := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{"only A", 5, 5, red},
		{"overlap", 15, 15, blue},
		{"only B", 25, 25, blue},
		{"outside", 40, 40, color.RGBA{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := target.img.RGBAAt(tt.x, tt.y); got != tt.want {
				t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestCompositeSubRectangle(t *testing.T) {
	// Left half red, right half blue; draw only the blue half at (0,0).
	src := solid(20, 10, red)
	draw.Draw(src, image.Rect(10, 0, 20, 10), &image.Uniform{C: blue}, image.Point{}, draw.Src)

	l := Layer{Pixels: src, BufferX: 10, BufferY: 0, BufferWidth: 10, BufferHeight: 10, ScreenX: 0, ScreenY: 0}
	if got := l.Origin(); got != image.Pt(-10, 0) {
		t.Fatalf("Origin() = %v, want (-10,0)", got)
	}

	target := newPixelTarget(32, 32)
	New(false).Composite([]Layer{l}, target, nil)

	if got := target.img.RGBAAt(0, 0); got != blue {
		t.Errorf("pixel (0,0) = %v, want blue", got)
	}
	if got := target.img.RGBAAt(10, 0); got != (color.RGBA{}) {
		t.Errorf("pixel (10,0) = %v, want untouched", got)
	}
}

func TestCompositeOutlineMode(t *testing.T) {
	target := newPixelTarget(64, 64)
	layers := []Layer{
		{Pixels: solid(8, 8, red), BufferWidth: 8, BufferHeight: 8, ScreenX: 4, ScreenY: 6},
		{Pixels: solid(16, 16, blue), BufferX: 2, BufferY: 2, BufferWidth: 4, BufferHeight: 4, ScreenX: 30, ScreenY: 30},
	}

	c := New(true)
	res := c.Composite(layers, target, nil)

	if res.Applied != 2 {
		t.Errorf("Applied = %d, want 2", res.Applied)
	}
	if target.blits != 0 {
		t.Errorf("outline mode blitted %d times", target.blits)
	}
	want := []image.Rectangle{image.Rect(4, 6, 12, 14), image.Rect(30, 30, 34, 34)}
	if len(target.strokes) != len(want) {
		t.Fatalf("strokes = %v, want %v", target.strokes, want)
	}
	for i := range want {
		if target.strokes[i] != want[i] {
			t.Errorf("stroke %d = %v, want %v", i, target.strokes[i], want[i])
		}
	}
	if got := target.img.RGBAAt(4, 6); got != (color.RGBA{}) {
		t.Errorf("outline mode touched pixels: %v", got)
	}
}

func TestCompositeSkipsMalformedLayers(t *testing.T) {
	good := Layer{Pixels: solid(4, 4, red), BufferWidth: 4, BufferHeight: 4}
	tests := []struct {
		name  string
		layer Layer
	}{
		{"nil pixels", Layer{BufferWidth: 4, BufferHeight: 4}},
		{"zero width", Layer{Pixels: solid(4, 4, red), BufferHeight: 4}},
		{"negative offset", Layer{Pixels: solid(4, 4, red), BufferX: -1, BufferWidth: 2, BufferHeight: 2}},
		{"outside data", Layer{Pixels: solid(4, 4, red), BufferX: 2, BufferWidth: 4, BufferHeight: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.layer.Validate(); err == nil {
				t.Fatal("Validate() should fail")
			}

			target := newPixelTarget(8, 8)
			var skipped []int
			res := New(false).Composite([]Layer{tt.layer, good}, target, func(i int, _ error) {
				skipped = append(skipped, i)
			})
			if res.Applied != 1 || res.Skipped != 1 {
				t.Errorf("result = %+v, want 1 applied 1 skipped", res)
			}
			if len(skipped) != 1 || skipped[0] != 0 {
				t.Errorf("skip callback indices = %v, want [0]", skipped)
			}
			if target.blits != 1 {
				t.Errorf("blits = %d, want 1", target.blits)
			}
		})
	}
}

func TestCompositeNilTarget(t *testing.T) {
	res := New(false).Composite([]Layer{{Pixels: solid(1, 1, red), BufferWidth: 1, BufferHeight: 1}}, nil, nil)
	if res.Applied != 0 {
		t.Errorf("nil target should apply nothing, got %+v", res)
	}
}

func TestSetDebugOutline(t *testing.T) {
	c := New(false)
	if c.DebugOutline() {
		t.Fatal("outline mode should start disabled")
	}
	c.SetDebugOutline(true)
	if !c.DebugOutline() {
		t.Error("SetDebugOutline(true) should enable outline mode")
	}
}
