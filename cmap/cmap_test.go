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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackline/glyphmerge/glyph"
)

func TestTableRoundTrip(t *testing.T) {
	bmp := Format4{'A': 1, 'B': 2, 0xE000: 3}.Encode(0)
	full := Format12{'A': 1, 'B': 2, 0xE000: 3, 0xF0000: 4}.Encode(0)
	tab := Table{
		KeyUnicodeBMP:  bmp,
		KeyWindowsBMP:  bmp,
		KeyWindowsFull: full,
	}

	data := tab.Encode()
	// three directory entries, but only two distinct subtables
	assert.Equal(t, 4+3*8+len(bmp)+len(full), len(data))

	decoded, err := Decode(data)
	require.NoError(t, err)
	if d := cmp.Diff(tab, decoded); d != "" {
		t.Error(d)
	}
}

func TestGetBest(t *testing.T) {
	tab := Table{
		KeyWindowsBMP:  Format4{'A': 1}.Encode(0),
		KeyWindowsFull: Format12{'A': 1, 0xF0000: 2}.Encode(0),
	}
	sub, err := tab.GetBest()
	require.NoError(t, err)
	assert.Equal(t, glyph.ID(2), sub.Lookup(0xF0000))

	delete(tab, KeyWindowsFull)
	sub, err = tab.GetBest()
	require.NoError(t, err)
	assert.Equal(t, glyph.ID(0), sub.Lookup(0xF0000))
	assert.Equal(t, glyph.ID(1), sub.Lookup('A'))

	_, err = Table{}.GetBest()
	assert.ErrorIs(t, err, ErrNoSubtable)
}

func TestGetBestLegacyUnicode(t *testing.T) {
	tab := Table{
		{PlatformID: 0, EncodingID: 0}: Format4{'A': 1}.Encode(0),
		{PlatformID: 0, EncodingID: 1}: Format4{'A': 2, 0x3042: 3}.Encode(0),
		KeyMacRoman:                    (&Format0{}).Encode(0),
	}
	sub, err := tab.GetBest()
	require.NoError(t, err)
	assert.Equal(t, glyph.ID(2), sub.Lookup('A'))
	assert.Equal(t, glyph.ID(3), sub.Lookup(0x3042))

	tab[KeyUnicodeBMP] = Format4{'A': 4}.Encode(0)
	sub, err = tab.GetBest()
	require.NoError(t, err)
	assert.Equal(t, glyph.ID(4), sub.Lookup('A'))

	sym := Table{KeyWindowsSymbol: Format4{0xF041: 5}.Encode(0)}
	sub, err = sym.GetBest()
	require.NoError(t, err)
	assert.Equal(t, glyph.ID(5), sub.Lookup(0xF041))
}

func TestMacRoman(t *testing.T) {
	f0 := &Format0{}
	f0.Data['A'] = 5
	f0.Data[0xA5] = 6 // bullet in Mac Roman
	tab := Table{KeyMacRoman: f0.Encode(0)}

	sub, err := tab.Get(KeyMacRoman)
	require.NoError(t, err)
	assert.Equal(t, glyph.ID(5), sub.Lookup('A'))
	assert.Equal(t, glyph.ID(6), sub.Lookup('•'))
	assert.Equal(t, glyph.ID(0), sub.Lookup(0xA5))

	got := map[rune]glyph.ID{}
	for r, gid := range sub.All() {
		got[r] = gid
	}
	assert.Equal(t, map[rune]glyph.ID{'A': 5, '•': 6}, got)
}

func TestDecodeMalformed(t *testing.T) {
	cases := [][]byte{
		nil,
		{0, 0, 0, 1},
		{0, 0, 0, 1, 0, 3, 0, 1, 0, 0, 0, 0},    // offset inside header
		{0, 0, 0, 1, 0, 9, 0, 1, 0, 0, 0, 12},   // bad platform
		{0, 1, 0, 0},                            // bad version
	}
	for i, data := range cases {
		_, err := Decode(data)
		assert.Error(t, err, "case %d", i)
	}
}
