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

package glyphmerge

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hackline/glyphmerge/cmap"
	"github.com/hackline/glyphmerge/glyf"
	"github.com/hackline/glyphmerge/head"
	"github.com/hackline/glyphmerge/header"
	"github.com/hackline/glyphmerge/hmtx"
	"github.com/hackline/glyphmerge/maxp"
	"github.com/hackline/glyphmerge/name"
	"github.com/hackline/glyphmerge/os2"
	"github.com/hackline/glyphmerge/parser"
	"github.com/hackline/glyphmerge/post"
)

// ReadFile reads a TrueType font from a file.
func ReadFile(fname string) (*Font, error) {
	fd, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	f, err := Read(fd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return f, nil
}

// Read reads a TrueType font.
// Fonts with CFF outlines are rejected with ErrNoGlyf.
func Read(r io.ReaderAt) (*Font, error) {
	info, err := header.Read(r)
	if err != nil {
		return nil, err
	}
	if !info.Has("glyf", "loca") {
		return nil, ErrNoGlyf
	}

	tables := make(map[string][]byte, len(info.Toc))
	for tag := range info.Toc {
		data, err := info.ReadTableBytes(r, tag)
		if err != nil {
			return nil, err
		}
		tables[tag] = data
	}
	need := func(tag string) ([]byte, error) {
		data, ok := tables[tag]
		if !ok {
			return nil, &header.MissingTableError{Table: tag}
		}
		delete(tables, tag)
		return data, nil
	}

	f := &Font{}

	headData, err := need("head")
	if err != nil {
		return nil, err
	}
	f.Head, err = head.Read(headData)
	if err != nil {
		return nil, err
	}
	f.UnitsPerEm = f.Head.UnitsPerEm

	maxpData, err := need("maxp")
	if err != nil {
		return nil, err
	}
	maxpInfo, err := maxp.Read(maxpData)
	if err != nil {
		return nil, err
	}
	numGlyphs := maxpInfo.NumGlyphs
	f.Maxp = maxpInfo.TTF

	glyfData, _ := need("glyf")
	locaData, _ := need("loca")
	gg, err := glyf.Decode(&glyf.Encoded{
		GlyfData:   glyfData,
		LocaData:   locaData,
		LocaFormat: f.Head.LocaFormat,
	})
	if err != nil {
		return nil, err
	}
	if len(gg) < numGlyphs {
		return nil, &parser.InvalidFontError{
			SubSystem: "sfnt/loca",
			Reason:    fmt.Sprintf("%d glyphs, maxp says %d", len(gg), numGlyphs),
		}
	}
	gg = gg[:numGlyphs]

	hheaData, err := need("hhea")
	if err != nil {
		return nil, err
	}
	hmtxData, err := need("hmtx")
	if err != nil {
		return nil, err
	}
	f.HHea, err = hmtx.Decode(hheaData, hmtxData, numGlyphs)
	if err != nil {
		return nil, err
	}

	var best cmap.Subtable
	if cmapData, ok := tables["cmap"]; ok {
		delete(tables, "cmap")
		f.CMapTable, err = cmap.Decode(cmapData)
		if err != nil {
			return nil, err
		}
		best, err = f.CMapTable.GetBest()
		if err != nil && !errors.Is(err, cmap.ErrNoSubtable) {
			return nil, err
		}
	}

	if postData, ok := tables["post"]; ok {
		delete(tables, "post")
		f.Post, err = post.Read(postData)
		if err != nil {
			return nil, err
		}
	}
	var postNames []string
	if f.Post != nil {
		postNames = f.Post.Names
	}
	f.GlyphOrder = makeGlyphNames(numGlyphs, postNames, best)

	if nameData, ok := tables["name"]; ok {
		delete(tables, "name")
		nameInfo, err := name.Decode(nameData)
		if err != nil {
			return nil, err
		}
		f.Names = nameInfo.Records
		f.NameLangTags = nameInfo.LangTags
	}

	if os2Data, ok := tables["OS/2"]; ok {
		delete(tables, "OS/2")
		f.OS2 = os2.Table(os2Data)
	}

	f.Glyphs = make(map[string]*Outline, numGlyphs)
	f.Metrics = make(map[string]Metric, numGlyphs)
	for gid, g := range gg {
		glyphName := f.GlyphOrder[gid]
		o, err := decodeOutline(g, f.GlyphOrder)
		if err != nil {
			tracer().Infof("glyph %d (%s) is malformed: %v", gid, glyphName, err)
			o = &Outline{Data: &MalformedOutline{Err: err}}
			if g != nil {
				o.Rect16 = g.Rect16
			}
		}
		f.Glyphs[glyphName] = o
		f.Metrics[glyphName] = Metric{
			Advance: f.HHea.Widths[gid],
			LSB:     f.HHea.LSB[gid],
		}
	}

	f.CMap = make(map[rune]string)
	if best != nil {
		for r, gid := range best.All() {
			if int(gid) < numGlyphs {
				f.CMap[r] = f.GlyphOrder[gid]
			}
		}
	}

	for _, tag := range droppedTables {
		delete(tables, tag)
	}
	f.Tables = tables

	tracer().Debugf("read font with %d glyphs, %d code points, %d extra tables",
		numGlyphs, len(f.CMap), len(f.Tables))
	return f, nil
}

// decodeOutline converts a glyph to the name-based representation.
func decodeOutline(g *glyf.Glyph, glyphNames []string) (*Outline, error) {
	if g == nil {
		return &Outline{}, nil
	}

	switch d := g.Data.(type) {
	case glyf.SimpleGlyph:
		unpacked, err := d.Unpack()
		if err != nil {
			return nil, err
		}
		return &Outline{Rect16: g.Rect16, Data: unpacked}, nil

	case glyf.CompositeGlyph:
		comp := &CompositeOutline{
			Components: make([]Component, len(d.Components)),
		}
		if len(d.Instructions) > 0 {
			comp.Instructions = append([]byte(nil), d.Instructions...)
		}
		for i, gc := range d.Components {
			cu, err := gc.Unpack()
			if err != nil {
				return nil, err
			}
			if int(cu.Child) >= len(glyphNames) {
				return nil, fmt.Errorf("component glyph %d out of range", cu.Child)
			}
			comp.Components[i] = Component{
				Name:        glyphNames[cu.Child],
				Trfm:        cu.Trfm,
				AlignPoints: cu.AlignPoints,
				OurPoint:    cu.OurPoint,
				TheirPoint:  cu.TheirPoint,
				Hints:       cu.Hints,
			}
		}
		return &Outline{Rect16: g.Rect16, Data: comp}, nil

	default:
		return nil, fmt.Errorf("unexpected glyph data %T", g.Data)
	}
}

// droppedTables lists tables which are indexed by glyph ID without
// tolerating new glyphs, or which become invalid when the font changes.
var droppedTables = []string{"hdmx", "LTSH", "VDMX", "DSIG"}
