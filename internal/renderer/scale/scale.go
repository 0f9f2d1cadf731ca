// Package scale computes the scale factors applied to the display surfaces.
//
// The requested scale is multiplied by an autoscale base (graphics mode only)
// and then normalised for fractional device pixel ratios so that the final
// surface lands on whole device pixels.
package scale

import (
	"math"

	"github.com/dshills/vscreen/internal/renderer/core"
)

// AutoscaleMaxWidth is the widest logical resolution that is doubled.
const AutoscaleMaxWidth = 640

// ComputeAutoscale returns the base scale for a graphics resolution:
// 2 when autoscale is enabled, the width is at most AutoscaleMaxWidth and
// the doubled size still fits inside the viewport in device pixels;
// 1 otherwise.
func ComputeAutoscale(logicalWidth, logicalHeight, viewportWidth, viewportHeight int, dpr float64, enabled bool) int {
	if !enabled || logicalWidth > AutoscaleMaxWidth {
		return 1
	}
	if float64(logicalWidth*2) < float64(viewportWidth)*dpr &&
		float64(logicalHeight*2) < float64(viewportHeight)*dpr {
		return 2
	}
	return 1
}

// Result is the scale to apply to one surface.
type Result struct {
	X, Y     float64
	Sampling core.Resampling
}

// Size returns the on-screen size of a surface with the given logical size.
func (r Result) Size(width, height int) (int, int) {
	return int(math.Round(float64(width) * r.X)), int(math.Round(float64(height) * r.Y))
}

// Effective computes the scale for a surface in the given mode.
// Graphics surfaces get the base scale and a resampling policy: pixelated
// when the scale before DPR normalisation is integral on both axes,
// smooth otherwise. Text surfaces always resample smoothly.
func Effective(requestedX, requestedY float64, base int, dpr float64, mode core.Mode) Result {
	r := Result{X: requestedX, Y: requestedY, Sampling: core.ResampleSmooth}

	if mode == core.ModeGraphics {
		r.X *= float64(base)
		r.Y *= float64(base)
		if IsIntegral(r.X) && IsIntegral(r.Y) {
			r.Sampling = core.ResamplePixelated
		}
	}

	if dpr > 0 && !IsIntegral(dpr) {
		r.X /= dpr
		r.Y /= dpr
	}
	return r
}

// IsIntegral reports whether f has no fractional part.
func IsIntegral(f float64) bool {
	return f == math.Trunc(f)
}
