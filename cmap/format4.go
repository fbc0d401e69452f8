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
	"math/bits"

	"golang.org/x/exp/slices"

	"github.com/hackline/glyphmerge/glyph"
)

// Format4 represents a format 4 cmap subtable.
// https://docs.microsoft.com/en-us/typography/opentype/spec/cmap#format-4-segment-mapping-to-delta-values
//
// Code point 0xFFFF is reserved for the terminating segment and cannot be
// mapped.
type Format4 map[uint16]glyph.ID

func decodeFormat4(data []byte, code2rune func(c int) rune) (Subtable, error) {
	if code2rune != nil {
		return nil, errors.New("cmap/format4: code2rune not supported")
	}

	if len(data) < 14 {
		return nil, errMalformedSubtable
	}
	segCountX2 := int(data[6])<<8 | int(data[7])
	if segCountX2%2 != 0 {
		return nil, errMalformedSubtable
	}
	segCount := segCountX2 / 2
	if len(data) < 16+4*segCountX2 {
		return nil, errMalformedSubtable
	}

	endCode := data[14:]
	startCode := data[16+segCountX2:]
	idDelta := data[16+2*segCountX2:]
	rangeOffsBase := 16 + 3*segCountX2
	idRangeOffset := data[rangeOffsBase:]

	cmap := Format4{}
	prevEnd := -1
	for i := 0; i < segCount; i++ {
		end := int(endCode[2*i])<<8 | int(endCode[2*i+1])
		start := int(startCode[2*i])<<8 | int(startCode[2*i+1])
		delta := uint16(idDelta[2*i])<<8 | uint16(idDelta[2*i+1])
		offs := int(idRangeOffset[2*i])<<8 | int(idRangeOffset[2*i+1])

		if start > end || start <= prevEnd {
			return nil, errMalformedSubtable
		}
		prevEnd = end

		for c := start; c <= end; c++ {
			if c == 0xFFFF {
				break
			}
			var gid uint16
			if offs == 0 {
				gid = uint16(c) + delta
			} else {
				pos := rangeOffsBase + 2*i + offs + 2*(c-start)
				if pos+2 > len(data) {
					return nil, errMalformedSubtable
				}
				gid = uint16(data[pos])<<8 | uint16(data[pos+1])
				if gid != 0 {
					gid += delta
				}
			}
			if gid != 0 {
				cmap[uint16(c)] = glyph.ID(gid)
			}
		}
	}

	return cmap, nil
}

type format4segment struct {
	start, end uint16
	delta      uint16
	glyphs     []glyph.ID // nil for delta-coded segments
}

// segments splits the mapping into format 4 segments.  Each run of
// consecutive code points is either coded with one delta segment per
// constant-delta piece, or with a single segment using the glyph ID array,
// whichever is smaller.
func (cmap Format4) segments() []format4segment {
	keys := make([]uint16, 0, len(cmap))
	for c, gid := range cmap {
		if c != 0xFFFF && gid != 0 {
			keys = append(keys, c)
		}
	}
	slices.Sort(keys)

	var segs []format4segment
	runStart := 0
	for i := 1; i <= len(keys); i++ {
		if i < len(keys) && keys[i] == keys[i-1]+1 {
			continue
		}
		run := keys[runStart:i]
		runStart = i

		pieces := cmap.deltaPieces(run)
		if 8*len(pieces) <= 8+2*len(run) {
			segs = append(segs, pieces...)
			continue
		}
		gids := make([]glyph.ID, len(run))
		for j, c := range run {
			gids[j] = cmap[c]
		}
		segs = append(segs, format4segment{
			start:  run[0],
			end:    run[len(run)-1],
			glyphs: gids,
		})
	}
	return segs
}

func (cmap Format4) deltaPieces(run []uint16) []format4segment {
	var res []format4segment
	pieceStart := 0
	for i := 1; i <= len(run); i++ {
		if i < len(run) && cmap[run[i]] == cmap[run[i-1]]+1 {
			continue
		}
		c := run[pieceStart]
		res = append(res, format4segment{
			start: c,
			end:   run[i-1],
			delta: uint16(cmap[c]) - c,
		})
		pieceStart = i
	}
	return res
}

// Encode returns the binary form of the subtable.
// Encode panics if the mapping is too large to be represented
// in a format 4 subtable; use TryEncode to check this first.
func (cmap Format4) Encode(language uint16) []byte {
	res, err := cmap.TryEncode(language)
	if err != nil {
		panic(err)
	}
	return res
}

// TryEncode returns the binary form of the subtable, or ErrFormat4Overflow
// if the subtable would exceed the 64kB limit of the format.
func (cmap Format4) TryEncode(language uint16) ([]byte, error) {
	segs := cmap.segments()
	segs = append(segs, format4segment{start: 0xFFFF, end: 0xFFFF, delta: 1})

	// Glyph ID arrays which cannot be reached with a 16 bit offset
	// are replaced by delta segments.
	var rangeOffs []uint16
	var numGlyphs int
fixOffsets:
	for {
		segCount := len(segs)
		rangeOffs = make([]uint16, segCount)
		numGlyphs = 0
		for i, seg := range segs {
			if seg.glyphs == nil {
				continue
			}
			offs := 2*(segCount-i) + 2*numGlyphs
			if offs > 0xFFFF {
				run := make([]uint16, 0, len(seg.glyphs))
				for c := int(seg.start); c <= int(seg.end); c++ {
					run = append(run, uint16(c))
				}
				segs = slices.Replace(segs, i, i+1, cmap.deltaPieces(run)...)
				continue fixOffsets
			}
			rangeOffs[i] = uint16(offs)
			numGlyphs += len(seg.glyphs)
		}
		break
	}

	segCount := len(segs)
	length := 16 + 8*segCount + 2*numGlyphs
	if length > 0xFFFF {
		return nil, ErrFormat4Overflow
	}

	entrySelector := bits.Len(uint(segCount)) - 1
	searchRange := 2 << entrySelector
	rangeShift := 2*segCount - searchRange

	out := make([]byte, 14, length)
	out[1] = 4
	out[2] = byte(length >> 8)
	out[3] = byte(length)
	out[4] = byte(language >> 8)
	out[5] = byte(language)
	out[6] = byte(segCount >> 7)
	out[7] = byte(segCount << 1)
	out[8] = byte(searchRange >> 8)
	out[9] = byte(searchRange)
	out[10] = byte(entrySelector >> 8)
	out[11] = byte(entrySelector)
	out[12] = byte(rangeShift >> 8)
	out[13] = byte(rangeShift)
	for _, seg := range segs {
		out = append(out, byte(seg.end>>8), byte(seg.end))
	}
	out = append(out, 0, 0) // reservedPad
	for _, seg := range segs {
		out = append(out, byte(seg.start>>8), byte(seg.start))
	}
	for _, seg := range segs {
		out = append(out, byte(seg.delta>>8), byte(seg.delta))
	}
	for _, offs := range rangeOffs {
		out = append(out, byte(offs>>8), byte(offs))
	}
	for _, seg := range segs {
		for _, gid := range seg.glyphs {
			out = append(out, byte(gid>>8), byte(gid))
		}
	}
	return out, nil
}

// Lookup returns the glyph index for the given rune.
func (cmap Format4) Lookup(r rune) glyph.ID {
	if r < 0 || r >= 0xFFFF {
		return 0
	}
	return cmap[uint16(r)]
}

// CodeRange returns the smallest and largest code point in the subtable.
func (cmap Format4) CodeRange() (low, high rune) {
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
func (cmap Format4) All() iter.Seq2[rune, glyph.ID] {
	return func(yield func(rune, glyph.ID) bool) {
		for c, gid := range cmap {
			if gid == 0 || c == 0xFFFF {
				continue
			}
			if !yield(rune(c), gid) {
				return
			}
		}
	}
}

// ErrFormat4Overflow indicates that a mapping does not fit into a format 4
// subtable.
var ErrFormat4Overflow = errors.New("cmap/format4: subtable exceeds 64kB")
