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

package maxp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRoundTrip(t *testing.T) {
	for _, info := range []*Info{
		{NumGlyphs: 1},
		{NumGlyphs: 65535},
		{
			NumGlyphs: 1573,
			TTF: &TTFInfo{
				MaxPoints:             248,
				MaxContours:           19,
				MaxCompositePoints:    115,
				MaxCompositeContours:  6,
				MaxZones:              2,
				MaxTwilightPoints:     16,
				MaxStorage:            47,
				MaxFunctionDefs:       14,
				MaxStackElements:      1248,
				MaxSizeOfInstructions: 2765,
				MaxComponentElements:  3,
				MaxComponentDepth:     1,
			},
		},
	} {
		data := info.Encode()
		info2, err := Read(data)
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(info, info2); d != "" {
			t.Errorf("round trip failed (-want +got):\n%s", d)
		}
	}
}

func TestReadErrors(t *testing.T) {
	for _, data := range [][]byte{
		{0x00, 0x00, 0x50},
		{0x00, 0x00, 0x50, 0x00, 0x00, 0x00},
		{0x00, 0x02, 0x00, 0x00, 0x00, 0x01},
		{0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x00},
	} {
		if _, err := Read(data); err == nil {
			t.Errorf("%x: no error", data)
		}
	}
}

func FuzzMaxp(f *testing.F) {
	f.Add((&Info{NumGlyphs: 10}).Encode())
	f.Add((&Info{NumGlyphs: 10, TTF: &TTFInfo{MaxZones: 2}}).Encode())

	f.Fuzz(func(t *testing.T, in []byte) {
		i1, err := Read(in)
		if err != nil {
			return
		}
		i2, err := Read(i1.Encode())
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(i1, i2); d != "" {
			t.Errorf("round trip failed (-want +got):\n%s", d)
		}
	})
}
