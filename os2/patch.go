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

package os2

import (
	"encoding/binary"

	"seehuhn.de/go/postscript/funit"
)

// Table is the binary form of an "OS/2" table.  The methods of Table edit
// individual fields in place, leaving the rest of the table untouched.
// This allows a font to be modified without losing fields which Info
// does not represent.
type Table []byte

// Byte offsets of the fields edited through Table.
// These are the same for all table versions.
const (
	offsAvgCharWidth   = 2
	offsUnicodeRange   = 42
	offsFirstCharIndex = 64
	offsLastCharIndex  = 66

	minTableLength = 68
)

// Check verifies that the table is long enough to be edited.
func (t Table) Check() error {
	if len(t) < minTableLength {
		return errTooShort
	}
	return nil
}

// Version returns the table version.
func (t Table) Version() uint16 {
	return binary.BigEndian.Uint16(t[0:2])
}

// UnicodeRange returns the ulUnicodeRange1-4 fields.
func (t Table) UnicodeRange() UnicodeRange {
	var ur UnicodeRange
	for i := range ur {
		ur[i] = binary.BigEndian.Uint32(t[offsUnicodeRange+4*i:])
	}
	return ur
}

// SetUnicodeRange overwrites the ulUnicodeRange1-4 fields.
func (t Table) SetUnicodeRange(ur UnicodeRange) {
	for i, w := range ur {
		binary.BigEndian.PutUint32(t[offsUnicodeRange+4*i:], w)
	}
}

// CharIndexRange returns the usFirstCharIndex and usLastCharIndex fields.
func (t Table) CharIndexRange() (first, last uint16) {
	first = binary.BigEndian.Uint16(t[offsFirstCharIndex:])
	last = binary.BigEndian.Uint16(t[offsLastCharIndex:])
	return first, last
}

// SetCharIndexRange sets usFirstCharIndex and usLastCharIndex.
// Code points beyond the BMP are clamped to 0xFFFF.
func (t Table) SetCharIndexRange(first, last rune) {
	clamp := func(r rune) uint16 {
		if r > 0xFFFF {
			return 0xFFFF
		}
		return uint16(r)
	}
	binary.BigEndian.PutUint16(t[offsFirstCharIndex:], clamp(first))
	binary.BigEndian.PutUint16(t[offsLastCharIndex:], clamp(last))
}

// AvgCharWidth returns the xAvgCharWidth field.
func (t Table) AvgCharWidth() funit.Int16 {
	return funit.Int16(binary.BigEndian.Uint16(t[offsAvgCharWidth:]))
}
