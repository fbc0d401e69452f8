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
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/postscript/funit"
)

func TestEncode(t *testing.T) {
	info := &SimpleUnpacked{
		Contours: []Contour{
			{
				{X: 100, Y: 100, OnCurve: true},
				{X: 200, Y: 100, OnCurve: true},
				{X: 150, Y: 200, OnCurve: true},
			},
			{
				{X: 300, Y: 100, OnCurve: true},
				{X: 350, Y: 150, OnCurve: false},
				{X: 300, Y: 200, OnCurve: true},
				{X: 250, Y: 150, OnCurve: false},
			},
		},
		Instructions: []byte{0x01, 0x02, 0x03},
	}

	encoded := info.Pack()
	decoded, err := encoded.Unpack()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if diff := cmp.Diff(info, decoded); diff != "" {
		t.Errorf("round trip failed:\n%s", diff)
	}
}

func TestEncodeEmptyGlyph(t *testing.T) {
	info := &SimpleUnpacked{}

	decoded, err := info.Pack().Unpack()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if diff := cmp.Diff(info, decoded); diff != "" {
		t.Errorf("round trip failed:\n%s", diff)
	}
}

func TestEncodeWithRepetition(t *testing.T) {
	info := &SimpleUnpacked{
		Contours: []Contour{
			{
				{X: 0, Y: 100, OnCurve: true},
				{X: 100, Y: 100, OnCurve: true},
				{X: 200, Y: 100, OnCurve: true},
				{X: 300, Y: 100, OnCurve: true},
			},
		},
	}

	encoded := info.Pack()

	if len(encoded.Encoded) > 50 {
		t.Errorf("encoded size too large, repetition may not be working: %d bytes", len(encoded.Encoded))
	}

	decoded, err := encoded.Unpack()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if diff := cmp.Diff(info, decoded); diff != "" {
		t.Errorf("round trip failed:\n%s", diff)
	}
}

func TestEncodeLargeCoordinates(t *testing.T) {
	info := &SimpleUnpacked{
		Contours: []Contour{
			{
				{X: 0, Y: 0, OnCurve: true},
				{X: 1000, Y: -500, OnCurve: true},
				{X: -2000, Y: 3000, OnCurve: true},
			},
		},
		Instructions: []byte{0xAA, 0xBB},
	}

	encoded := info.Pack()
	decoded, err := encoded.Unpack()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if diff := cmp.Diff(info, decoded); diff != "" {
		t.Errorf("round trip failed:\n%s", diff)
	}
}

func TestAsGlyph(t *testing.T) {
	info := &SimpleUnpacked{
		Contours: []Contour{
			{
				{X: 100, Y: 110, OnCurve: true},
				{X: 200, Y: 110, OnCurve: true},
				{X: 250, Y: 160, OnCurve: false},
				{X: 200, Y: 210, OnCurve: true},
				{X: 100, Y: 210, OnCurve: true},
			},
		},
		Instructions: []byte{0x01, 0x02},
	}

	g := info.AsGlyph()

	// off-curve points count for the bounding box
	expectedBBox := funit.Rect16{
		LLx: 100, LLy: 110,
		URx: 250, URy: 210,
	}
	if g.Rect16 != expectedBBox {
		t.Errorf("bounding box mismatch: got %+v, want %+v", g.Rect16, expectedBBox)
	}

	simpleGlyph, ok := g.Data.(SimpleGlyph)
	if !ok {
		t.Fatalf("expected SimpleGlyph, got %T", g.Data)
	}
	if simpleGlyph.NumContours != 1 {
		t.Errorf("expected 1 contour, got %d", simpleGlyph.NumContours)
	}

	decoded, err := simpleGlyph.Unpack()
	if err != nil {
		t.Fatalf("failed to decode glyph: %v", err)
	}
	if diff := cmp.Diff(info, decoded); diff != "" {
		t.Errorf("round trip failed:\n%s", diff)
	}
	if !bytes.Equal(decoded.Instructions, info.Instructions) {
		t.Errorf("instructions mismatch: got %02x, want %02x", decoded.Instructions, info.Instructions)
	}
}

func TestAsGlyphBlank(t *testing.T) {
	info := &SimpleUnpacked{
		Contours: []Contour{},
	}
	if g := info.AsGlyph(); g != nil {
		t.Errorf("expected a blank glyph, got %+v", g)
	}
	if bbox := info.BBox(); !bbox.IsZero() {
		t.Errorf("bounding box should be zero for empty glyph: got %+v", bbox)
	}
}

func TestUnpackMalformed(t *testing.T) {
	cases := []SimpleGlyph{
		{NumContours: 1, Encoded: []byte{0}},
		// end points must not decrease
		{NumContours: 2, Encoded: []byte{0, 3, 0, 1, 0, 0}},
		// instructions longer than the data
		{NumContours: 0, Encoded: []byte{0, 9, 1}},
		// missing flags
		{NumContours: 1, Encoded: []byte{0, 2, 0, 0, 0x31}},
	}
	for i, sg := range cases {
		if _, err := sg.Unpack(); err == nil {
			t.Errorf("case %d: expected an error", i)
		}
	}
}
