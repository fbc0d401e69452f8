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
	"iter"

	"github.com/hackline/glyphmerge/glyph"
)

// Subtable represents a decoded cmap subtable.
type Subtable interface {
	// Lookup returns the glyph ID for the given rune, or 0 if the rune is
	// not mapped.
	Lookup(r rune) glyph.ID

	// Encode returns the binary form of the subtable.
	Encode(language uint16) []byte

	// CodeRange returns the smallest and largest code point in the subtable.
	CodeRange() (low, high rune)

	// All iterates over the mapped runes, in no particular order.
	// Runes mapped to glyph 0 are skipped.
	All() iter.Seq2[rune, glyph.ID]
}

var decoders = map[uint16]func([]byte, func(int) rune) (Subtable, error){
	0:  decodeFormat0,
	4:  decodeFormat4,
	12: decodeFormat12,
}

func unicode(code int) rune {
	return rune(code)
}
