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

package name

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hackline/glyphmerge/parser"
)

func TestRoundTrip(t *testing.T) {
	info := &Info{
		Records: []Record{
			{PlatformID: 1, EncodingID: 0, NameID: Family, Value: "Café Mono"},
			{PlatformID: 1, EncodingID: 0, NameID: FullName, Value: "Café Mono Regular"},
			{PlatformID: 3, EncodingID: 1, LanguageID: 0x0409, NameID: Family, Value: "Café Mono"},
			{PlatformID: 3, EncodingID: 1, LanguageID: 0x0409, NameID: PostScriptName, Value: "CafeMono-Regular"},
			{PlatformID: 3, EncodingID: 1, LanguageID: 0x0411, NameID: Family, Value: "カフェ等幅"},
			{PlatformID: 3, EncodingID: 2, LanguageID: 0x0411, NameID: Family, Raw: []byte{0x83, 0x4a}},
		},
	}
	data, err := info.Encode()
	if err != nil {
		t.Fatal(err)
	}
	info2, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(info, info2); d != "" {
		t.Errorf("round trip failed (-want +got):\n%s", d)
	}

	family, _ := info2.Find(Family)
	if family != "Café Mono" {
		t.Errorf("Find(Family) = %q", family)
	}
	if _, ok := info2.Find(Trademark); ok {
		t.Error("found a trademark record")
	}
}

func TestLangTags(t *testing.T) {
	info := &Info{
		Records: []Record{
			{PlatformID: 3, EncodingID: 1, LanguageID: 0x8000, NameID: Family, Value: "Test"},
		},
		LangTags: []string{"ja-JP"},
	}
	data, err := info.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if data[1] != 1 {
		t.Errorf("wrong table version %d", data[1])
	}
	info2, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(info, info2); d != "" {
		t.Errorf("round trip failed (-want +got):\n%s", d)
	}
}

func TestUnencodable(t *testing.T) {
	_, err := EncodeValue(1, 0, "漢字")
	if err == nil {
		t.Error("Mac Roman accepted kanji")
	}
	_, err = EncodeValue(2, 0, "x")
	var nse *parser.NotSupportedError
	if !errors.As(err, &nse) {
		t.Errorf("unexpected error %v", err)
	}
}

func FuzzName(f *testing.F) {
	info := &Info{
		Records: []Record{
			{PlatformID: 3, EncodingID: 1, LanguageID: 0x0409, NameID: Family, Value: "Test"},
		},
	}
	data, _ := info.Encode()
	f.Add(data)

	f.Fuzz(func(t *testing.T, in []byte) {
		i1, err := Decode(in)
		if err != nil {
			return
		}
		data, err := i1.Encode()
		if err != nil {
			return
		}
		// records come back in sorted order, so compare the second
		// and third generation
		i2, err := Decode(data)
		if err != nil {
			t.Fatal(err)
		}
		data, err = i2.Encode()
		if err != nil {
			t.Fatal(err)
		}
		i3, err := Decode(data)
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(i2, i3); d != "" {
			t.Errorf("round trip failed (-want +got):\n%s", d)
		}
	})
}
