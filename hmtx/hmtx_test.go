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

package hmtx

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/postscript/funit"
)

func TestRoundTrip(t *testing.T) {
	info := &Info{
		Widths:         []uint16{1000, 1233, 1233, 2048, 2048, 2048},
		LSB:            []int16{0, 100, -20, 50, 0, 60},
		Ascent:         1901,
		Descent:        -483,
		CaretSlopeRise: 1,
	}
	extents := []funit.Rect16{
		{},
		{LLx: 100, LLy: 0, URx: 1100, URy: 1400},
		{LLx: -20, LLy: 0, URx: 1300, URy: 1500},
		{LLx: 50, LLy: -100, URx: 2000, URy: 1800},
		{},
		{LLx: 60, LLy: -50, URx: 1990, URy: 1700},
	}
	hhea, hmtx := info.Encode(extents)

	numLong := int(hhea[34])<<8 | int(hhea[35])
	if numLong != 4 {
		t.Errorf("numberOfHMetrics = %d, want 4", numLong)
	}
	if len(hmtx) != 4*4+2*2 {
		t.Errorf("wrong hmtx length %d", len(hmtx))
	}

	u16 := func(pos int) int16 { return int16(hhea[pos])<<8 | int16(hhea[pos+1]) }
	if w := u16(10); w != 2048 {
		t.Errorf("advanceWidthMax = %d", w)
	}
	if lsb := u16(12); lsb != -20 {
		t.Errorf("minLeftSideBearing = %d", lsb)
	}
	if rsb := u16(14); rsb != -67 { // 1233 - (-20) - 1320
		t.Errorf("minRightSideBearing = %d", rsb)
	}
	if ext := u16(16); ext != 2000 {
		t.Errorf("xMaxExtent = %d", ext)
	}

	info2, err := Decode(hhea, hmtx, len(info.Widths))
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(info, info2); d != "" {
		t.Errorf("round trip failed (-want +got):\n%s", d)
	}
}

func TestDecodeErrors(t *testing.T) {
	info := &Info{
		Widths: []uint16{500, 600},
		LSB:    []int16{0, 0},
	}
	hhea, hmtx := info.Encode(make([]funit.Rect16, 2))

	if _, err := Decode(hhea[:20], hmtx, 2); err == nil {
		t.Error("short hhea accepted")
	}
	if _, err := Decode(hhea, hmtx[:4], 2); err == nil {
		t.Error("short hmtx accepted")
	}
	if _, err := Decode(hhea, hmtx, 1); err == nil {
		t.Error("numberOfHMetrics larger than numGlyphs accepted")
	}
}

func TestMissingLSB(t *testing.T) {
	info := &Info{
		Widths: []uint16{500, 600, 600},
		LSB:    []int16{10, 20, 30},
	}
	hhea, hmtx := info.Encode(make([]funit.Rect16, 3))
	info2, err := Decode(hhea, hmtx[:len(hmtx)-2], 3)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]int16{10, 20, 0}, info2.LSB); d != "" {
		t.Errorf("wrong side bearings (-want +got):\n%s", d)
	}
}
