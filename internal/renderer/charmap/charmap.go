// Package charmap maps code page bytes written by the emulated device to
// display glyphs.
//
// The high half (0x80-0xFF) and printable ASCII come from a legacy code page
// (CP437 by default). The control range 0x00-0x1F and DEL are replaced by
// the glyphs the VGA character generator shows for them, since a text-mode
// screen never interprets control codes.
package charmap

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// lowGlyphs is what a VGA text screen shows for bytes 0x00-0x1F.
var lowGlyphs = [32]rune{
	' ', '☺', '☻', '♥', '♦', '♣', '♠', '•', '◘', '○', '◙', '♂', '♀', '♪', '♫', '☼',
	'►', '◄', '↕', '‼', '¶', '§', '▬', '↨', '↑', '↓', '→', '←', '∟', '↔', '▲', '▼',
}

const delGlyph = '⌂'

// Charmap is a fixed 256-entry byte to glyph table.
type Charmap struct {
	name   string
	glyphs [256]rune
	text   [256]string
}

// CodePage437 is the IBM PC default table.
var CodePage437 = New("437", charmap.CodePage437)

// New builds a table from a single-byte code page.
func New(name string, cp *charmap.Charmap) *Charmap {
	m := &Charmap{name: name}
	for i := 0; i < 256; i++ {
		var r rune
		switch {
		case i < len(lowGlyphs):
			r = lowGlyphs[i]
		case i == 0x7F:
			r = delGlyph
		default:
			r = cp.DecodeByte(byte(i))
		}
		m.glyphs[i] = r
		m.text[i] = string(r)
	}
	return m
}

// ByName returns the table for a code page name such as "437" or "cp850".
func ByName(name string) (*Charmap, error) {
	key := strings.TrimPrefix(strings.ToLower(name), "cp")
	switch key {
	case "", "437":
		return CodePage437, nil
	case "850":
		return New("850", charmap.CodePage850), nil
	case "852":
		return New("852", charmap.CodePage852), nil
	case "866":
		return New("866", charmap.CodePage866), nil
	default:
		return nil, fmt.Errorf("unknown code page %q", name)
	}
}

// Name returns the code page name.
func (m *Charmap) Name() string { return m.name }

// Glyph returns the glyph for b.
func (m *Charmap) Glyph(b byte) rune { return m.glyphs[b] }

// String returns the glyph for b as a string.
func (m *Charmap) String(b byte) string { return m.text[b] }

