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

// Package debug provides fonts for use in unit tests.
package debug

import (
	"bytes"
	"time"

	"golang.org/x/image/font/gofont/goregular"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/postscript/funit"

	"github.com/hackline/glyphmerge"
	"github.com/hackline/glyphmerge/glyf"
	"github.com/hackline/glyphmerge/head"
	"github.com/hackline/glyphmerge/hmtx"
	"github.com/hackline/glyphmerge/name"
	"github.com/hackline/glyphmerge/post"
)

// GoRegular returns the Go Regular font.
// Every call returns a new copy, which may be modified by the caller.
func GoRegular() *glyphmerge.Font {
	f, err := glyphmerge.Read(bytes.NewReader(goregular.TTF))
	if err != nil {
		panic(err)
	}
	return f
}

// MakeFont returns a font with the given design grid, containing only a
// .notdef glyph and an empty character map.
func MakeFont(unitsPerEm uint16, family string) *glyphmerge.Font {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	notdef := Rect(funit.Int16(unitsPerEm/10), 0,
		funit.Int16(unitsPerEm/2), funit.Int16(unitsPerEm*7/10))

	f := &glyphmerge.Font{
		UnitsPerEm: unitsPerEm,
		GlyphOrder: []string{".notdef"},
		Glyphs:     map[string]*glyphmerge.Outline{".notdef": notdef},
		Metrics: map[string]glyphmerge.Metric{
			".notdef": {Advance: unitsPerEm * 6 / 10, LSB: int16(unitsPerEm / 10)},
		},
		CMap: map[rune]string{},
		Head: &head.Info{
			FontRevision: 0x00010000,
			Flags:        0x000B,
			UnitsPerEm:   unitsPerEm,
			Created:      created,
			Modified:     created,
		},
		HHea: &hmtx.Info{
			Ascent:         int16(unitsPerEm * 8 / 10),
			Descent:        -int16(unitsPerEm * 2 / 10),
			CaretSlopeRise: 1,
		},
		Post: &post.Info{
			UnderlinePosition:  -funit.Int16(unitsPerEm / 10),
			UnderlineThickness: funit.Int16(unitsPerEm / 20),
		},
		Tables: map[string][]byte{},
	}
	if family != "" {
		f.Names = FamilyNames(family, "Regular")
	}
	return f
}

// FamilyNames returns name records for a font family, on the Windows and
// on the Macintosh platform.
func FamilyNames(family, subfamily string) []name.Record {
	full := family + " " + subfamily
	ps := family + "-" + subfamily
	var res []name.Record
	for _, pe := range [][2]uint16{{1, 0}, {3, 1}} {
		lang := uint16(0x0409)
		if pe[0] == 1 {
			lang = 0
		}
		for _, r := range []struct {
			id  name.ID
			val string
		}{
			{name.Family, family},
			{name.Subfamily, subfamily},
			{name.FullName, full},
			{name.PostScriptName, ps},
		} {
			res = append(res, name.Record{
				PlatformID: pe[0],
				EncodingID: pe[1],
				LanguageID: lang,
				NameID:     r.id,
				Value:      r.val,
			})
		}
	}
	return res
}

// Rect returns a simple outline consisting of one clockwise rectangle.
func Rect(llx, lly, urx, ury funit.Int16) *glyphmerge.Outline {
	return Polygon(
		glyf.Point{X: llx, Y: lly, OnCurve: true},
		glyf.Point{X: llx, Y: ury, OnCurve: true},
		glyf.Point{X: urx, Y: ury, OnCurve: true},
		glyf.Point{X: urx, Y: lly, OnCurve: true},
	)
}

// Polygon returns a simple outline with a single contour.
func Polygon(pts ...glyf.Point) *glyphmerge.Outline {
	sd := &glyf.SimpleUnpacked{
		Contours: []glyf.Contour{pts},
	}
	return &glyphmerge.Outline{Rect16: sd.BBox(), Data: sd}
}

// AddMapped adds a glyph to the font and maps the code point to it.
func AddMapped(f *glyphmerge.Font, r rune, glyphName string, o *glyphmerge.Outline, advance uint16) {
	m := glyphmerge.Metric{Advance: advance}
	if o != nil {
		m.LSB = int16(o.LLx)
	}
	err := f.AddGlyph(glyphName, o, m)
	if err != nil {
		panic(err)
	}
	f.CMap[r] = glyphName
}

// Composite returns a composite outline which places the named glyphs at
// the given offsets.
func Composite(bbox funit.Rect16, parts ...Part) *glyphmerge.Outline {
	comp := &glyphmerge.CompositeOutline{}
	for _, p := range parts {
		c := glyphmerge.Component{Name: p.Name}
		c.Trfm = matrix.Translate(float64(p.Dx), float64(p.Dy))
		comp.Components = append(comp.Components, c)
	}
	return &glyphmerge.Outline{Rect16: bbox, Data: comp}
}

// Part is a component for Composite.
type Part struct {
	Name   string
	Dx, Dy funit.Int16
}
