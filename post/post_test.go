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

package post

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRoundTrip(t *testing.T) {
	for _, info := range []*Info{
		{
			ItalicAngle:        -11.5,
			UnderlinePosition:  -150,
			UnderlineThickness: 90,
			IsFixedPitch:       true,
		},
		{
			UnderlinePosition:  -100,
			UnderlineThickness: 50,
			Names:              []string{".notdef", "A", "uni3042", "jp_3042", "uni3042.1", "A"},
		},
		{
			Names: append([]string{}, macRoman...),
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

func TestVersion(t *testing.T) {
	cases := []struct {
		names   []string
		version byte
		length  int
	}{
		{nil, 3, postHeaderLength},
		{macRoman, 1, postHeaderLength},
		// two glyph indices plus one Pascal string
		{[]string{"space", "nf-dev-go"}, 2, postHeaderLength + 2 + 4 + 10},
	}
	for _, c := range cases {
		data := (&Info{Names: c.names}).Encode()
		if data[1] != c.version {
			t.Errorf("%v: version %d, want %d", c.names, data[1], c.version)
		}
		if len(data) != c.length {
			t.Errorf("%v: length %d, want %d", c.names, len(data), c.length)
		}
	}
}

func TestReadErrors(t *testing.T) {
	good := (&Info{Names: []string{"a", "x.alt"}}).Encode()

	badIndex := append([]byte{}, good...)
	badIndex[postHeaderLength+4] = 0x7F // glyph 1 name index

	badVersion := append([]byte{}, good...)
	badVersion[1] = 4

	for _, data := range [][]byte{good[:20], good[:postHeaderLength+3], badIndex, badVersion} {
		if _, err := Read(data); err == nil {
			t.Errorf("%x: no error", data)
		}
	}
}

func FuzzPost(f *testing.F) {
	f.Add((&Info{}).Encode())
	f.Add((&Info{Names: []string{".notdef", "a", "b.sc"}}).Encode())

	f.Fuzz(func(t *testing.T, in []byte) {
		i1, err := Read(in)
		if err != nil {
			return
		}
		for _, name := range i1.Names {
			if len(name) > 255 {
				return
			}
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
