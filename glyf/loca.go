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

package glyf

import (
	"github.com/hackline/glyphmerge/parser"
)

// decodeLoca returns the glyph offsets from the "loca" table.  The result
// has one more entry than there are glyphs.
func decodeLoca(enc *Encoded) ([]int, error) {
	data := enc.LocaData
	var offs []int
	switch enc.LocaFormat {
	case 0:
		if len(data)%2 != 0 || len(data) < 2 {
			return nil, errInvalidLoca
		}
		n := len(data) / 2
		offs = make([]int, n)
		for i := range offs {
			offs[i] = 2 * (int(data[2*i])<<8 | int(data[2*i+1]))
		}
	case 1:
		if len(data)%4 != 0 || len(data) < 4 {
			return nil, errInvalidLoca
		}
		n := len(data) / 4
		offs = make([]int, n)
		for i := range offs {
			offs[i] = int(data[4*i])<<24 | int(data[4*i+1])<<16 |
				int(data[4*i+2])<<8 | int(data[4*i+3])
		}
	default:
		return nil, &parser.NotSupportedError{
			SubSystem: "sfnt/loca",
			Feature:   "loca format",
		}
	}
	return offs, nil
}

// encodeLoca encodes glyph offsets into a "loca" table.  The short
// format is used whenever all offsets are even and small enough.
func encodeLoca(offs []int) ([]byte, int16) {
	n := len(offs)
	short := offs[n-1] <= 2*0xFFFF
	for _, o := range offs {
		if o%2 != 0 {
			short = false
			break
		}
	}

	if short {
		buf := make([]byte, 2*n)
		for i, o := range offs {
			x := o / 2
			buf[2*i] = byte(x >> 8)
			buf[2*i+1] = byte(x)
		}
		return buf, 0
	}

	buf := make([]byte, 4*n)
	for i, o := range offs {
		buf[4*i] = byte(o >> 24)
		buf[4*i+1] = byte(o >> 16)
		buf[4*i+2] = byte(o >> 8)
		buf[4*i+3] = byte(o)
	}
	return buf, 1
}

var errInvalidLoca = &parser.InvalidFontError{
	SubSystem: "sfnt/loca",
	Reason:    "invalid loca table",
}
