// Package core provides shared types for the renderer subsystem.
// This package breaks import cycles between renderer and backend.
package core

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a 24-bit 0xRRGGBB value as produced by the emulated device.
// Bits above 24 are ignored.
type Color uint32

// ColorMask selects the 24 significant bits of a Color.
const ColorMask Color = 0xFFFFFF

// Common colors.
const (
	ColorBlack Color = 0x000000
	ColorWhite Color = 0xFFFFFF
	ColorGray  Color = 0xAAAAAA
	ColorGreen Color = 0x00FF00
)

// ColorFromRGB creates a color from RGB components.
func ColorFromRGB(r, g, b uint8) Color {
	return Color(r)<<16 | Color(g)<<8 | Color(b)
}

// ColorFromHex parses "#RRGGBB" or "#RGB" (the leading # is optional).
func ColorFromHex(hex string) (Color, error) {
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return ColorFromRGB(r, g, b), nil
}

// RGB returns the red, green and blue components.
func (c Color) RGB() (r, g, b uint8) {
	c &= ColorMask
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Hex returns the color as a fixed-width lowercase "#rrggbb" string.
func (c Color) Hex() string {
	return c.colorful().Hex()
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return c.Hex()
}

// RGBA converts to an opaque color.RGBA.
func (c Color) RGBA() color.RGBA {
	r, g, b := c.RGB()
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

// Blend mixes two colors in RGB space.
// Amount 0.0 = c, 1.0 = other.
func (c Color) Blend(other Color, amount float64) Color {
	mixed := c.colorful().BlendRgb(other.colorful(), amount).Clamped()
	r, g, b := mixed.RGB255()
	return ColorFromRGB(r, g, b)
}

// ColorFromStd converts any color.Color, dropping alpha.
func ColorFromStd(col color.Color) Color {
	c, _ := colorful.MakeColor(col)
	r, g, b := c.RGB255()
	return ColorFromRGB(r, g, b)
}

func (c Color) colorful() colorful.Color {
	r, g, b := c.RGB()
	return colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
}
