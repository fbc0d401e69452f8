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
	"bufio"
	"fmt"
	"io"
	"os"

	"seehuhn.de/go/postscript/funit"

	"github.com/hackline/glyphmerge/glyf"
	"github.com/hackline/glyphmerge/glyph"
	"github.com/hackline/glyphmerge/head"
	"github.com/hackline/glyphmerge/header"
	"github.com/hackline/glyphmerge/hmtx"
	"github.com/hackline/glyphmerge/maxp"
	"github.com/hackline/glyphmerge/name"
	"github.com/hackline/glyphmerge/os2"
	"github.com/hackline/glyphmerge/post"
)

// WriteFile writes the font to a file.
func (f *Font) WriteFile(fname string) error {
	fd, err := os.Create(fname)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(fd)
	_, err = f.Write(w)
	if err == nil {
		err = w.Flush()
	}
	if closeErr := fd.Close(); err == nil {
		err = closeErr
	}
	return err
}

// Write writes the binary form of the font to the given writer.
//
// The glyph-indexed tables (glyf, loca, hmtx and post) are regenerated
// from GlyphOrder, Glyphs and Metrics.  The font bounding box, the loca
// format, the hhea extents and the maxp maxima are recomputed.
// All other tables are written as stored in the font.
func (f *Font) Write(w io.Writer) (int64, error) {
	numGlyphs := f.NumGlyphs()
	if numGlyphs < 1 || numGlyphs > 0xFFFF {
		return 0, fmt.Errorf("glyphmerge: cannot write %d glyphs", numGlyphs)
	}

	tableData := make(map[string][]byte)
	for tag, data := range f.Tables {
		tableData[tag] = data
	}

	gg, err := f.makeGlyphs()
	if err != nil {
		return 0, err
	}
	enc := gg.Encode()
	tableData["glyf"] = enc.GlyfData
	tableData["loca"] = enc.LocaData

	extents := make([]funit.Rect16, numGlyphs)
	for gid, g := range gg {
		if g != nil {
			extents[gid] = g.Rect16
		}
	}

	tableData["head"] = f.makeHead(extents, enc.LocaFormat)
	tableData["hhea"], tableData["hmtx"] = f.makeHmtx(extents)

	maxpData, err := f.makeMaxp(gg)
	if err != nil {
		return 0, err
	}
	tableData["maxp"] = maxpData

	tableData["post"] = f.makePost()

	if f.Names != nil {
		nameInfo := &name.Info{Records: f.Names, LangTags: f.NameLangTags}
		nameData, err := nameInfo.Encode()
		if err != nil {
			return 0, err
		}
		tableData["name"] = nameData
	}

	tableData["OS/2"] = f.makeOS2()

	if f.CMapTable != nil {
		tableData["cmap"] = f.CMapTable.Encode()
	}

	for _, tag := range droppedTables {
		delete(tableData, tag)
	}

	tracer().Debugf("writing %d glyphs, %d tables", numGlyphs, len(tableData))
	return header.Write(w, header.ScalerTypeTrueType, tableData)
}

// makeGlyphs converts the outlines to binary form, in glyph order.
func (f *Font) makeGlyphs() (glyf.Glyphs, error) {
	idx := glyphIndex(f.GlyphOrder)
	if len(idx) != len(f.GlyphOrder) {
		return nil, fmt.Errorf("glyphmerge: duplicate names in glyph order")
	}

	gg := make(glyf.Glyphs, len(f.GlyphOrder))
	for gid, glyphName := range f.GlyphOrder {
		o := f.Glyphs[glyphName]
		if o == nil {
			continue
		}
		switch d := o.Data.(type) {
		case nil:
			// blank glyph
		case *glyf.SimpleUnpacked:
			gg[gid] = d.AsGlyph()
		case *CompositeOutline:
			g, err := encodeComposite(o.Rect16, d, idx)
			if err != nil {
				return nil, fmt.Errorf("glyph %q: %w", glyphName, err)
			}
			gg[gid] = g
		case *MalformedOutline:
			tracer().Infof("glyph %q is malformed, written as blank", glyphName)
		default:
			return nil, fmt.Errorf("glyph %q: unexpected outline type %T", glyphName, o.Data)
		}
	}
	return gg, nil
}

func encodeComposite(bbox funit.Rect16, d *CompositeOutline, idx map[string]glyph.ID) (*glyf.Glyph, error) {
	if len(d.Components) == 0 {
		return nil, nil
	}
	comp := glyf.CompositeGlyph{
		Components: make([]glyf.GlyphComponent, len(d.Components)),
	}
	if len(d.Instructions) > 0 {
		comp.Instructions = d.Instructions
	}
	for i, c := range d.Components {
		gid, ok := idx[c.Name]
		if !ok {
			return nil, &MissingGlyphError{Name: c.Name}
		}
		cu := &glyf.ComponentUnpacked{
			Child:       gid,
			Trfm:        c.Trfm,
			AlignPoints: c.AlignPoints,
			OurPoint:    c.OurPoint,
			TheirPoint:  c.TheirPoint,
			Hints:       c.Hints,
		}
		comp.Components[i] = cu.Pack()
	}
	return &glyf.Glyph{Rect16: bbox, Data: comp}, nil
}

func (f *Font) makeHead(extents []funit.Rect16, locaFormat int16) []byte {
	var headInfo head.Info
	if f.Head != nil {
		headInfo = *f.Head
	}
	headInfo.UnitsPerEm = f.UnitsPerEm
	headInfo.LocaFormat = locaFormat

	var bbox funit.Rect16
	first := true
	for _, ext := range extents {
		if ext.IsZero() {
			continue
		}
		if first {
			bbox = ext
			first = false
		} else {
			bbox.Extend(ext)
		}
	}
	headInfo.FontBBox = bbox

	return headInfo.Encode()
}

func (f *Font) makeHmtx(extents []funit.Rect16) ([]byte, []byte) {
	var hmtxInfo hmtx.Info
	if f.HHea != nil {
		hmtxInfo = *f.HHea
	} else {
		hmtxInfo.CaretSlopeRise = 1
	}

	n := f.NumGlyphs()
	hmtxInfo.Widths = make([]uint16, n)
	hmtxInfo.LSB = make([]int16, n)
	for gid, glyphName := range f.GlyphOrder {
		m := f.Metrics[glyphName]
		hmtxInfo.Widths[gid] = m.Advance
		hmtxInfo.LSB[gid] = m.LSB
	}

	return hmtxInfo.Encode(extents)
}

func (f *Font) makeMaxp(gg glyf.Glyphs) ([]byte, error) {
	var ttf maxp.TTFInfo
	if f.Maxp != nil {
		ttf = *f.Maxp
	} else {
		ttf.MaxZones = 2
	}
	ttf.MaxPoints = 0
	ttf.MaxContours = 0
	ttf.MaxCompositePoints = 0
	ttf.MaxCompositeContours = 0
	ttf.MaxComponentElements = 0
	ttf.MaxComponentDepth = 0

	cache := make(map[string]*glyphStats)
	for _, glyphName := range f.GlyphOrder {
		st, err := f.stats(glyphName, 0, make(map[string]bool), cache)
		if err != nil {
			return nil, err
		}
		if st.depth == 0 {
			ttf.MaxPoints = max(ttf.MaxPoints, clampUint16(st.points))
			ttf.MaxContours = max(ttf.MaxContours, clampUint16(st.contours))
		} else {
			ttf.MaxCompositePoints = max(ttf.MaxCompositePoints, clampUint16(st.points))
			ttf.MaxCompositeContours = max(ttf.MaxCompositeContours, clampUint16(st.contours))
			ttf.MaxComponentElements = max(ttf.MaxComponentElements, clampUint16(st.elements))
			ttf.MaxComponentDepth = max(ttf.MaxComponentDepth, clampUint16(st.depth))
		}
	}
	for _, g := range gg {
		if g == nil {
			continue
		}
		var L int
		switch d := g.Data.(type) {
		case glyf.CompositeGlyph:
			L = len(d.Instructions)
		case glyf.SimpleGlyph:
			if len(d.Encoded) >= 2*int(d.NumContours)+2 {
				k := 2 * int(d.NumContours)
				L = int(d.Encoded[k])<<8 | int(d.Encoded[k+1])
			}
		}
		ttf.MaxSizeOfInstructions = max(ttf.MaxSizeOfInstructions, clampUint16(L))
	}

	info := &maxp.Info{
		NumGlyphs: f.NumGlyphs(),
		TTF:       &ttf,
	}
	return info.Encode(), nil
}

type glyphStats struct {
	points, contours int
	elements         int // components of the top-level composite
	depth            int // 0 for simple glyphs
}

// stats computes the maxp statistics for one glyph.
func (f *Font) stats(glyphName string, depth int, active map[string]bool, cache map[string]*glyphStats) (*glyphStats, error) {
	if st, ok := cache[glyphName]; ok {
		return st, nil
	}
	if active[glyphName] {
		return nil, fmt.Errorf("%w: %q", ErrCyclicComposite, glyphName)
	}
	if depth > MaxComponentDepth {
		return nil, fmt.Errorf("%w: %q", ErrComponentDepth, glyphName)
	}

	st := &glyphStats{}
	o := f.Glyphs[glyphName]
	if o != nil {
		switch d := o.Data.(type) {
		case *glyf.SimpleUnpacked:
			for _, cc := range d.Contours {
				st.points += len(cc)
			}
			st.contours = len(d.Contours)
		case *CompositeOutline:
			active[glyphName] = true
			st.elements = len(d.Components)
			st.depth = 1
			for _, c := range d.Components {
				child, err := f.stats(c.Name, depth+1, active, cache)
				if err != nil {
					return nil, err
				}
				st.points += child.points
				st.contours += child.contours
				st.depth = max(st.depth, child.depth+1)
			}
			delete(active, glyphName)
		}
	}
	cache[glyphName] = st
	return st, nil
}

func (f *Font) makePost() []byte {
	var postInfo post.Info
	if f.Post != nil {
		postInfo = *f.Post
	}
	postInfo.Names = f.GlyphOrder
	return postInfo.Encode()
}

// makeOS2 returns the stored "OS/2" table, or a minimal table derived from
// the other font data if the font has none.
func (f *Font) makeOS2() []byte {
	if f.OS2 != nil {
		return f.OS2
	}

	var total, count int
	for _, m := range f.Metrics {
		if m.Advance > 0 {
			total += int(m.Advance)
			count++
		}
	}
	info := &os2.Info{
		WeightClass: os2.WeightNormal,
		WidthClass:  os2.WidthNormal,
		IsRegular:   true,
	}
	if count > 0 {
		info.AvgGlyphWidth = funit.Int16((total + count/2) / count)
	}
	if f.HHea != nil {
		info.Ascent = funit.Int16(f.HHea.Ascent)
		info.Descent = funit.Int16(f.HHea.Descent)
		info.LineGap = funit.Int16(f.HHea.LineGap)
		info.WinAscent = funit.Int16(f.HHea.Ascent)
		info.WinDescent = -funit.Int16(f.HHea.Descent)
	}
	cps := f.Codepoints()
	info.UnicodeRange.Mark(cps)
	if len(cps) > 0 {
		info.FirstCharIndex = uint16(min(cps[0], 0xFFFF))
		info.LastCharIndex = uint16(min(cps[len(cps)-1], 0xFFFF))
	}
	return info.Encode()
}

func clampUint16(x int) uint16 {
	if x > 0xFFFF {
		return 0xFFFF
	}
	return uint16(x)
}
