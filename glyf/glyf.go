// glyphmerge - merge the glyph repertoires of TrueType fonts
// Copyright (C) 2022  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package glyf reads and writes "glyf" and "loca" tables.
// https://docs.microsoft.com/en-us/typography/opentype/spec/glyf
// https://docs.microsoft.com/en-us/typography/opentype/spec/loca
package glyf

import (
	"fmt"

	"seehuhn.de/go/postscript/funit"

	"github.com/hackline/glyphmerge/parser"
)

// Glyphs contains a slice of TrueType glyph outlines, indexed by glyph ID.
// This represents the information stored in the "glyf" and "loca" tables
// of a TrueType font.  Blank glyphs are represented by nil.
type Glyphs []*Glyph

// Glyph represents a single glyph in a TrueType font.
type Glyph struct {
	funit.Rect16
	Data any // either SimpleGlyph or CompositeGlyph
}

// Encoded represents the data of a "glyf" and "loca" table.
type Encoded struct {
	GlyfData   []byte
	LocaData   []byte
	LocaFormat int16
}

// Decode converts the data from the "glyf" and "loca" tables into a slice of
// Glyphs.  The value for LocaFormat is specified in the indexToLocFormat
// entry in the "head" table.
func Decode(enc *Encoded) (Glyphs, error) {
	offs, err := decodeLoca(enc)
	if err != nil {
		return nil, err
	}

	numGlyphs := len(offs) - 1
	gg := make(Glyphs, numGlyphs)
	for i := range gg {
		if offs[i+1] > len(enc.GlyfData) || offs[i] > offs[i+1] {
			return nil, &parser.InvalidFontError{
				SubSystem: "sfnt/glyf",
				Reason:    fmt.Sprintf("invalid offset for glyph %d", i),
			}
		}
		g, err := decodeGlyph(enc.GlyfData[offs[i]:offs[i+1]])
		if err != nil {
			return nil, fmt.Errorf("glyph %d: %w", i, err)
		}
		gg[i] = g
	}

	return gg, nil
}

// decodeGlyph decodes a glyph from binary data.
// Returns nil for empty glyphs.  The result retains sub-slices of data.
func decodeGlyph(data []byte) (*Glyph, error) {
	if len(data) == 0 {
		return nil, nil
	} else if len(data) < 10 {
		return nil, errIncompleteGlyph
	}

	var glyphData any
	numCont := int16(data[0])<<8 | int16(data[1])
	if numCont >= 0 {
		simple := SimpleGlyph{
			NumContours: numCont,
			Encoded:     data[10:],
		}
		err := simple.removePadding()
		if err != nil {
			return nil, err
		}
		glyphData = simple
	} else {
		comp, err := decodeGlyphComposite(data[10:])
		if err != nil {
			return nil, err
		}
		glyphData = *comp
	}

	g := &Glyph{
		Rect16: funit.Rect16{
			LLx: funit.Int16(data[2])<<8 | funit.Int16(data[3]),
			LLy: funit.Int16(data[4])<<8 | funit.Int16(data[5]),
			URx: funit.Int16(data[6])<<8 | funit.Int16(data[7]),
			URy: funit.Int16(data[8])<<8 | funit.Int16(data[9]),
		},
		Data: glyphData,
	}
	return g, nil
}

// Encode encodes the Glyphs into a "glyf" and "loca" table.
// The loca format is chosen automatically.
func (gg Glyphs) Encode() *Encoded {
	n := len(gg)

	offs := make([]int, n+1)
	for i, g := range gg {
		offs[i+1] = offs[i] + g.encodeLen()
	}
	locaData, locaFormat := encodeLoca(offs)

	glyfData := make([]byte, 0, offs[n])
	for _, g := range gg {
		glyfData = g.append(glyfData)
	}

	return &Encoded{
		GlyfData:   glyfData,
		LocaData:   locaData,
		LocaFormat: locaFormat,
	}
}

// NumContours returns the number of contours of a simple glyph,
// -1 for a composite glyph and 0 for a blank glyph.
func (g *Glyph) NumContours() int {
	if g == nil {
		return 0
	}
	switch d := g.Data.(type) {
	case SimpleGlyph:
		return int(d.NumContours)
	case CompositeGlyph:
		return -1
	default:
		panic("unexpected glyph type")
	}
}

func (g *Glyph) encodeLen() int {
	if g == nil {
		return 0
	}

	total := 10
	switch d := g.Data.(type) {
	case SimpleGlyph:
		total += len(d.Encoded)
	case CompositeGlyph:
		for _, comp := range d.Components {
			total += 4 + len(comp.Data)
		}
		if len(d.Instructions) > 0 {
			total += 2 + len(d.Instructions)
		}
	default:
		panic("unexpected glyph type")
	}
	return total + total%glyfAlign
}

func (g *Glyph) append(buf []byte) []byte {
	if g == nil {
		return buf
	}

	numContours := int16(g.NumContours())
	buf = append(buf,
		byte(numContours>>8), byte(numContours),
		byte(g.LLx>>8), byte(g.LLx),
		byte(g.LLy>>8), byte(g.LLy),
		byte(g.URx>>8), byte(g.URx),
		byte(g.URy>>8), byte(g.URy))

	switch d := g.Data.(type) {
	case SimpleGlyph:
		buf = append(buf, d.Encoded...)
	case CompositeGlyph:
		last := len(d.Components) - 1
		for i, comp := range d.Components {
			flags := comp.Flags &^ (FlagMoreComponents | FlagWeHaveInstructions)
			if i < last {
				flags |= FlagMoreComponents
			} else if len(d.Instructions) > 0 {
				flags |= FlagWeHaveInstructions
			}
			buf = append(buf,
				byte(flags>>8), byte(flags),
				byte(comp.GlyphIndex>>8), byte(comp.GlyphIndex))
			buf = append(buf, comp.Data...)
		}
		if L := len(d.Instructions); L > 0 {
			buf = append(buf, byte(L>>8), byte(L))
			buf = append(buf, d.Instructions...)
		}
	}

	for len(buf)%glyfAlign != 0 {
		buf = append(buf, 0)
	}

	return buf
}

const glyfAlign = 2
