// glyphmerge - merge the glyph repertoires of TrueType fonts
// Copyright (C) 2025  The HackLine Authors
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

// Package cmapsynth rebuilds the "cmap" subtables of a font from its
// code point to glyph name map.
//
// The Unicode subtables are always regenerated: a format 4 subtable for
// the Basic Multilingual Plane, and a format 12 subtable for the full
// Unicode range whenever the font maps a code point beyond U+FFFF.  Both
// subtables are derived from the same map, so that every code point
// which the format 4 subtable can represent resolves to the same glyph in
// both.
package cmapsynth

import (
	"errors"
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/exp/slices"
	"golang.org/x/text/encoding/charmap"

	"github.com/hackline/glyphmerge"
	"github.com/hackline/glyphmerge/cmap"
	"github.com/hackline/glyphmerge/glyph"
	"github.com/hackline/glyphmerge/os2"
)

// tracer traces with key 'glyphmerge.cmapsynth'.
func tracer() tracing.Trace {
	return tracing.Select("glyphmerge.cmapsynth")
}

// Options control which subtables are generated.
type Options struct {
	// Wide forces the format 12 subtables, even if all code points are
	// in the BMP.
	Wide bool

	// MacRoman adds a (1,0) subtable if the font has none.
	MacRoman bool
}

// Result describes the subtables installed by Synthesize.
type Result struct {
	// Narrow is installed as (3,1) and (0,3), and as (3,0) if the font
	// has a symbol subtable.
	Narrow cmap.Format4

	// Wide is installed as (3,10) and (0,4).  Wide is nil if no format 12
	// subtable was written.
	Wide cmap.Format12

	// Mac is installed as (1,0).  Mac is nil if the font has no Mac Roman
	// subtable.
	Mac *cmap.Format0
}

// Synthesize replaces the Unicode subtables of f.CMapTable by subtables
// generated from f.CMap, and updates the character range fields of the
// OS/2 table.  Subtables for other encodings, for example format 14
// variation sequences, are kept.
//
// Calling Synthesize twice on the same font gives identical subtables.
func Synthesize(f *glyphmerge.Font, opts Options) (*Result, error) {
	if len(f.GlyphOrder) > 0xFFFF {
		return nil, fmt.Errorf("cmapsynth: %d glyphs exceed the glyph ID range", len(f.GlyphOrder))
	}

	idx := f.GlyphIndex()
	cps := f.Codepoints()

	res := &Result{Narrow: cmap.Format4{}}
	wide := opts.Wide
	for _, key := range []cmap.Key{cmap.KeyWindowsFull, cmap.KeyUnicodeFull} {
		if _, ok := f.CMapTable[key]; ok {
			wide = true
		}
	}
	if len(cps) > 0 && cps[len(cps)-1] > 0xFFFF {
		wide = true
	}
	if wide {
		res.Wide = cmap.Format12{}
	}

	for _, r := range cps {
		glyphName := f.CMap[r]
		gid, ok := idx[glyphName]
		if !ok {
			return nil, fmt.Errorf("cmapsynth: U+%04X: %w", r, &glyphmerge.MissingGlyphError{Name: glyphName})
		}
		if gid == 0 {
			// mapping to .notdef is the same as not mapping
			continue
		}
		// 0xFFFF is reserved for the final segment of format 4
		if r < 0xFFFF {
			res.Narrow[uint16(r)] = gid
		}
		if res.Wide != nil {
			res.Wide[uint32(r)] = gid
		}
	}

	narrow, err := res.Narrow.TryEncode(0)
	if err != nil {
		return nil, fmt.Errorf("cmapsynth: %w", err)
	}

	if f.CMapTable == nil {
		f.CMapTable = cmap.Table{}
	}
	macKey, hasMac := findMac(f.CMapTable)
	if !hasMac && opts.MacRoman {
		macKey, hasMac = cmap.KeyMacRoman, true
	}

	_, hasSymbol := f.CMapTable[cmap.KeyWindowsSymbol]
	for key := range f.CMapTable {
		if isUnicode(key) || key.PlatformID == 1 && key.EncodingID == 0 {
			delete(f.CMapTable, key)
		}
	}
	f.CMapTable[cmap.KeyWindowsBMP] = narrow
	f.CMapTable[cmap.KeyUnicodeBMP] = narrow
	if hasSymbol {
		f.CMapTable[cmap.KeyWindowsSymbol] = narrow
	}
	if res.Wide != nil {
		full := res.Wide.Encode(0)
		f.CMapTable[cmap.KeyWindowsFull] = full
		f.CMapTable[cmap.KeyUnicodeFull] = full
	}
	if hasMac {
		res.Mac = macRoman(f.CMap, idx)
		f.CMapTable[macKey] = res.Mac.Encode(macKey.Language)
	}

	tracer().Debugf("cmap: %d narrow, %d wide entries", len(res.Narrow), len(res.Wide))

	if err := updateOS2(f.OS2, cps); err != nil {
		return nil, err
	}
	return res, nil
}

// isUnicode reports whether a subtable maps Unicode code points and is
// therefore replaced by Synthesize.  This includes the legacy platform 0
// encodings and the Windows symbol subtable, which would otherwise keep
// their old contents.  Format 14 subtables (0,5) are kept.
func isUnicode(key cmap.Key) bool {
	switch key.PlatformID {
	case 0:
		return key.EncodingID != 5
	case 3:
		return key.EncodingID == 0 || key.EncodingID == 1 || key.EncodingID == 10
	default:
		return false
	}
}

// findMac returns the key of the Mac Roman subtable, if any.  Keys are
// compared in a fixed order, since a table may contain subtables for
// several languages.
func findMac(t cmap.Table) (cmap.Key, bool) {
	var keys []cmap.Key
	for key := range t {
		if key.PlatformID == 1 && key.EncodingID == 0 {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return cmap.Key{}, false
	}
	slices.SortFunc(keys, func(a, b cmap.Key) int {
		return int(a.Language) - int(b.Language)
	})
	return keys[0], true
}

// macRoman builds a format 0 subtable.  Characters without a Mac Roman
// code, and glyphs with IDs above 255, are left out.
func macRoman(m map[rune]string, idx map[string]glyph.ID) *cmap.Format0 {
	res := &cmap.Format0{}
	for c := 0; c < 256; c++ {
		r := charmap.Macintosh.DecodeByte(byte(c))
		glyphName, ok := m[r]
		if !ok {
			continue
		}
		if gid := idx[glyphName]; gid < 256 {
			res.Data[c] = byte(gid)
		}
	}
	return res
}

// updateOS2 sets the Unicode range bits for private use and supplementary
// plane characters, and the first and last character index.  A missing
// OS/2 table is left alone; the font writer generates one with the same
// bits.
func updateOS2(t os2.Table, cps []rune) error {
	if t == nil || len(cps) == 0 {
		return nil
	}
	if err := t.Check(); err != nil {
		return fmt.Errorf("cmapsynth: %w", err)
	}

	ur := t.UnicodeRange()
	ur.Mark(cps)
	t.SetUnicodeRange(ur)
	t.SetCharIndexRange(cps[0], cps[len(cps)-1])
	return nil
}

// Check verifies that every code point of the narrow subtable maps to the
// same glyph in the wide subtable.
func (res *Result) Check() error {
	if res.Wide == nil {
		return nil
	}
	var bad []rune
	for c, gid := range res.Narrow {
		if res.Wide[uint32(c)] != gid {
			bad = append(bad, rune(c))
		}
	}
	for c, gid := range res.Wide {
		if c < 0xFFFF && res.Narrow[uint16(c)] != gid {
			bad = append(bad, rune(c))
		}
	}
	if len(bad) > 0 {
		slices.Sort(bad)
		return fmt.Errorf("%w: U+%04X", ErrInconsistent, bad[0])
	}
	return nil
}

// ErrInconsistent indicates that the narrow and the wide subtable disagree.
var ErrInconsistent = errors.New("cmapsynth: narrow and wide subtables disagree")
