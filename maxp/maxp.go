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

// Package maxp reads and writes "maxp" tables.
// https://docs.microsoft.com/en-us/typography/opentype/spec/maxp
package maxp

import (
	"github.com/hackline/glyphmerge/parser"
)

// Info contains information from the "maxp" table.
type Info struct {
	// NumGlyphs is number of glyphs in the font, in the range 1, ..., 65535.
	NumGlyphs int

	// TTF contains additional information for TrueType fonts.
	// This is nil for CFF-based fonts.
	TTF *TTFInfo
}

// TTFInfo contains TrueType-specific information from the "maxp" table.
type TTFInfo struct {
	MaxPoints             uint16
	MaxContours           uint16
	MaxCompositePoints    uint16
	MaxCompositeContours  uint16
	MaxZones              uint16
	MaxTwilightPoints     uint16
	MaxStorage            uint16
	MaxFunctionDefs       uint16
	MaxInstructionDefs    uint16
	MaxStackElements      uint16
	MaxSizeOfInstructions uint16
	MaxComponentElements  uint16
	MaxComponentDepth     uint16
}

// Read decodes the "maxp" table.
func Read(data []byte) (*Info, error) {
	if len(data) < 6 {
		return nil, errMalformed
	}

	version := uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3])
	if version != 0x00005000 && version != 0x00010000 {
		return nil, &parser.NotSupportedError{
			SubSystem: "sfnt/maxp",
			Feature:   "table version",
		}
	}

	numGlyphs := int(data[4])<<8 | int(data[5])
	if numGlyphs == 0 {
		return nil, &parser.InvalidFontError{
			SubSystem: "sfnt/maxp",
			Reason:    "numGlyphs is zero",
		}
	}
	info := &Info{
		NumGlyphs: numGlyphs,
	}
	if version == 0x00005000 {
		return info, nil
	}

	if len(data) < 32 {
		return nil, errMalformed
	}
	u16 := func(pos int) uint16 {
		return uint16(data[pos])<<8 | uint16(data[pos+1])
	}
	info.TTF = &TTFInfo{
		MaxPoints:             u16(6),
		MaxContours:           u16(8),
		MaxCompositePoints:    u16(10),
		MaxCompositeContours:  u16(12),
		MaxZones:              u16(14),
		MaxTwilightPoints:     u16(16),
		MaxStorage:            u16(18),
		MaxFunctionDefs:       u16(20),
		MaxInstructionDefs:    u16(22),
		MaxStackElements:      u16(24),
		MaxSizeOfInstructions: u16(26),
		MaxComponentElements:  u16(28),
		MaxComponentDepth:     u16(30),
	}
	return info, nil
}

// Encode encodes the "maxp" table.
func (info *Info) Encode() []byte {
	numGlyphs := info.NumGlyphs
	if numGlyphs < 1 || numGlyphs >= 1<<16 {
		panic("sfnt/maxp: numGlyphs out of range")
	}
	if info.TTF == nil {
		return []byte{
			0x00, 0x00, 0x50, 0x00, byte(numGlyphs >> 8), byte(numGlyphs),
		}
	}

	ttf := info.TTF
	buf := []byte{0x00, 0x01, 0x00, 0x00, byte(numGlyphs >> 8), byte(numGlyphs)}
	for _, v := range []uint16{
		ttf.MaxPoints,
		ttf.MaxContours,
		ttf.MaxCompositePoints,
		ttf.MaxCompositeContours,
		ttf.MaxZones,
		ttf.MaxTwilightPoints,
		ttf.MaxStorage,
		ttf.MaxFunctionDefs,
		ttf.MaxInstructionDefs,
		ttf.MaxStackElements,
		ttf.MaxSizeOfInstructions,
		ttf.MaxComponentElements,
		ttf.MaxComponentDepth,
	} {
		buf = append(buf, byte(v>>8), byte(v))
	}
	return buf
}

var errMalformed = &parser.InvalidFontError{
	SubSystem: "sfnt/maxp",
	Reason:    "malformed table",
}
