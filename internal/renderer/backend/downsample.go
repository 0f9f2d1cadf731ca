package backend

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/vscreen/internal/renderer/core"
)

// maxBoxSamples bounds the pixels averaged per axis for one smooth sample.
const maxBoxSamples = 4

// Samples is a grid of colors produced by Downsample.
type Samples struct {
	Width, Height int
	Colors        []core.Color
}

// At returns the sample at (x, y), or black outside the grid.
func (s *Samples) At(x, y int) core.Color {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return core.ColorBlack
	}
	return s.Colors[y*s.Width+x]
}

// Downsample reduces img to fit w x h samples, keeping the aspect ratio and
// centering the image; the margin is black. Pixelated policy picks the
// nearest pixel, smooth policy averages the covered box.
// Returns nil when either size is empty.
func Downsample(img *image.RGBA, w, h int, policy core.Resampling) *Samples {
	if img == nil || w <= 0 || h <= 0 {
		return nil
	}
	b := img.Rect
	iw, ih := b.Dx(), b.Dy()
	if iw <= 0 || ih <= 0 {
		return nil
	}

	// Fit the image, preserving aspect ratio.
	ow, oh := w, ih*w/iw
	if oh > h {
		ow, oh = iw*h/ih, h
	}
	ow, oh = max(ow, 1), max(oh, 1)
	offX, offY := (w-ow)/2, (h-oh)/2

	s := &Samples{Width: w, Height: h, Colors: make([]core.Color, w*h)}
	for y := 0; y < oh; y++ {
		y0 := b.Min.Y + y*ih/oh
		y1 := max(b.Min.Y+(y+1)*ih/oh, y0+1)
		for x := 0; x < ow; x++ {
			x0 := b.Min.X + x*iw/ow
			x1 := max(b.Min.X+(x+1)*iw/ow, x0+1)

			var c core.Color
			if policy == core.ResamplePixelated {
				c = core.ColorFromStd(img.RGBAAt((x0+x1)/2, (y0+y1)/2))
			} else {
				c = boxAverage(img, x0, y0, x1, y1)
			}
			s.Colors[(y+offY)*w+x+offX] = c
		}
	}
	return s
}

// boxAverage averages up to maxBoxSamples x maxBoxSamples evenly spaced
// pixels of the box [x0,x1) x [y0,y1).
func boxAverage(img *image.RGBA, x0, y0, x1, y1 int) core.Color {
	stepX := max((x1-x0)/maxBoxSamples, 1)
	stepY := max((y1-y0)/maxBoxSamples, 1)

	var acc colorful.Color
	n := 0
	for y := y0; y < y1; y += stepY {
		for x := x0; x < x1; x += stepX {
			p := img.RGBAAt(x, y)
			c := colorful.Color{R: float64(p.R) / 255, G: float64(p.G) / 255, B: float64(p.B) / 255}
			n++
			// Running mean: the n-th sample carries weight 1/n.
			acc = acc.BlendRgb(c, 1/float64(n))
		}
	}
	r, g, b := acc.Clamped().RGB255()
	return core.ColorFromRGB(r, g, b)
}
