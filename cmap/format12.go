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

package cmap

import (
	"errors"
	"iter"

	"golang.org/x/exp/slices"

	"github.com/hackline/glyphmerge/glyph"
)

// Format12 represents a format 12 cmap subtable.
// https://docs.microsoft.com/en-us/typography/opentype/spec/cmap#format-12-segmented-coverage
//
// The binary encoding is most efficient, if consecutive code points are mapped
// to consecutive glyph IDs.
type Format12 map[uint32]glyph.ID

func decodeFormat12(data []byte, code2rune func(c int) rune) (Subtable, error) {
	if code2rune != nil {
		return nil, errors.New("cmap/format12: code2rune not supported")
	}

	if len(data) < 16 {
		return nil, errMalformedSubtable
	}

	nSegments := uint32(data[12])<<24 | uint32(data[13])<<16 | uint32(data[14])<<8 | uint32(data[15])
	if nSegments > 1e6 || len(data) != 16+int(nSegments)*12 {
		return nil, errMalformedSubtable
	}

	cmap := Format12{}

	var size uint32
	var prevEnd uint32
	for i := uint32(0); i < nSegments; i++ {
		base := 16 + i*12
		startCharCode := uint32(data[base])<<24 | uint32(data[base+1])<<16 | uint32(data[base+2])<<8 | uint32(data[base+3])
		endCharCode := uint32(data[base+4])<<24 | uint32(data[base+5])<<16 | uint32(data[base+6])<<8 | uint32(data[base+7])
		startGlyphID := uint32(data[base+8])<<24 | uint32(data[base+9])<<16 | uint32(data[base+10])<<8 | uint32(data[base+11])

		if (i > 0 && startCharCode <= prevEnd) ||
			endCharCode < startCharCode ||
			endCharCode > maxCodePoint ||
			startGlyphID > 0xFFFF ||
			startGlyphID+(endCharCode-startCharCode) > 0xFFFF {
			return nil, errMalformedSubtable
		}
		prevEnd = endCharCode

		size += endCharCode - startCharCode + 1
		if size > 0xFFFF {
			// more mappings than there can be glyphs
			return nil, errMalformedSubtable
		}

		for c := startCharCode; c <= endCharCode; c++ {
			cmap[c] = glyph.ID(startGlyphID + c - startCharCode)
		}
	}

	return cmap, nil
}

// Encode returns the binary form of the subtable.
func (cmap Format12) Encode(language uint16) []byte {
	var ss []format12segment
	keys := make([]uint32, 0, len(cmap))
	for c, gid := range cmap {
		if gid != 0 {
			keys = append(keys, c)
		}
	}
	slices.Sort(keys)
	segStart := 0
	for i := 1; i < len(keys); i++ {
		if keys[i] != keys[i-1]+1 || cmap[keys[i]] != cmap[keys[i-1]]+1 {
			ss = append(ss, format12segment{
				StartCharCode: keys[segStart],
				EndCharCode:   keys[i-1],
				StartGlyphID:  cmap[keys[segStart]],
			})
			segStart = i
		}
	}
	if len(keys) > 0 {
		ss = append(ss, format12segment{
			StartCharCode: keys[segStart],
			EndCharCode:   keys[len(keys)-1],
			StartGlyphID:  cmap[keys[segStart]],
		})
	}

	nSegments := len(ss)
	l := uint32(16 + nSegments*12)
	out := make([]byte, l)
	copy(out, []byte{
		0, 12, 0, 0,
		byte(l >> 24), byte(l >> 16), byte(l >> 8), byte(l),
		0, 0, byte(language >> 8), byte(language),
		byte(nSegments >> 24), byte(nSegments >> 16), byte(nSegments >> 8), byte(nSegments),
	})
	for i, seg := range ss {
		base := 16 + i*12
		out[base] = byte(seg.StartCharCode >> 24)
		out[base+1] = byte(seg.StartCharCode >> 16)
		out[base+2] = byte(seg.StartCharCode >> 8)
		out[base+3] = byte(seg.StartCharCode)
		out[base+4] = byte(seg.EndCharCode >> 24)
		out[base+5] = byte(seg.EndCharCode >> 16)
		out[base+6] = byte(seg.EndCharCode >> 8)
		out[base+7] = byte(seg.EndCharCode)
		out[base+10] = byte(seg.StartGlyphID >> 8)
		out[base+11] = byte(seg.StartGlyphID)
	}
	return out
}

// Lookup returns the glyph index for the given rune.
func (cmap Format12) Lookup(code rune) glyph.ID {
	if code < 0 {
		return 0
	}
	return cmap[uint32(code)]
}

// CodeRange returns the smallest and largest code point in the subtable.
func (cmap Format12) CodeRange() (low, high rune) {
	first := true
	for c := range cmap {
		cr := rune(c)
		if first || cr < low {
			low = cr
		}
		if first || cr > high {
			high = cr
		}
		first = false
	}
	return
}

// All iterates over the mapped runes.
func (cmap Format12) All() iter.Seq2[rune, glyph.ID] {
	return func(yield func(rune, glyph.ID) bool) {
		for c, gid := range cmap {
			if gid == 0 {
				continue
			}
			if !yield(rune(c), gid) {
				return
			}
		}
	}
}

type format12segment struct {
	StartCharCode uint32
	EndCharCode   uint32
	StartGlyphID  glyph.ID
}

const maxCodePoint = 0x10FFFF
