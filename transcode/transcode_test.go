// glyphmerge - merge the glyph repertoires of TrueType fonts
// Copyright (C) 2025  The HackLine Authors
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

package transcode

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/postscript/funit"

	"github.com/hackline/glyphmerge"
	"github.com/hackline/glyphmerge/glyf"
	"github.com/hackline/glyphmerge/internal/debug"
	"github.com/hackline/glyphmerge/scale"
)

func TestSimpleScenario(t *testing.T) {
	src := debug.Polygon(
		glyf.Point{X: 100, Y: 100, OnCurve: true},
		glyf.Point{X: 200, Y: 100, OnCurve: true},
		glyf.Point{X: 200, Y: 200, OnCurve: true},
	)
	src.Data.(*glyf.SimpleUnpacked).Instructions = []byte{0xB0, 0x00}

	out, err := Outline(src, scale.Factor(2048, 1000))
	if err != nil {
		t.Fatal(err)
	}
	want := &glyphmerge.Outline{
		Rect16: funit.Rect16{LLx: 205, LLy: 205, URx: 410, URy: 410},
		Data: &glyf.SimpleUnpacked{
			Contours: []glyf.Contour{{
				{X: 205, Y: 205, OnCurve: true},
				{X: 410, Y: 205, OnCurve: true},
				{X: 410, Y: 410, OnCurve: true},
			}},
		},
	}
	if d := cmp.Diff(want, out); d != "" {
		t.Errorf("unexpected outline (-want +got):\n%s", d)
	}
}

func TestIdentity(t *testing.T) {
	f := debug.GoRegular()
	for _, glyphName := range f.GlyphOrder {
		src := f.Glyphs[glyphName]
		if _, ok := src.Data.(*glyf.SimpleUnpacked); !ok {
			continue
		}
		out, err := Outline(src, scale.Identity)
		if err != nil {
			t.Fatal(err)
		}
		in := src.Data.(*glyf.SimpleUnpacked)
		got := out.Data.(*glyf.SimpleUnpacked)
		if d := cmp.Diff(in.Contours, got.Contours); d != "" {
			t.Fatalf("%s: contours changed:\n%s", glyphName, d)
		}
		if got.Instructions != nil {
			t.Errorf("%s: instructions were copied", glyphName)
		}
	}
}

func TestNoAliasing(t *testing.T) {
	src := debug.Rect(0, 0, 10, 10)
	out, err := Outline(src, scale.Identity)
	if err != nil {
		t.Fatal(err)
	}
	out.Data.(*glyf.SimpleUnpacked).Contours[0][0].X = 99
	if src.Data.(*glyf.SimpleUnpacked).Contours[0][0].X != 0 {
		t.Error("output aliases the input")
	}
}

func TestComposite(t *testing.T) {
	src := &glyphmerge.Outline{
		Rect16: funit.Rect16{LLx: 0, LLy: 0, URx: 1000, URy: 500},
		Data: &glyphmerge.CompositeOutline{
			Components: []glyphmerge.Component{
				{Name: "a", Trfm: matrix.Translate(100, -50)},
				{Name: "b", Trfm: matrix.Identity, AlignPoints: true, OurPoint: 1, TheirPoint: 7},
				{Name: "missing", Trfm: matrix.Matrix{0.5, 0, 0, 0.5, 3, 0}},
			},
			Instructions: []byte{1, 2, 3},
		},
	}
	out, err := Outline(src, scale.Factor(2048, 1000))
	if err != nil {
		t.Fatal(err)
	}
	want := &glyphmerge.Outline{
		Rect16: funit.Rect16{LLx: 0, LLy: 0, URx: 2048, URy: 1024},
		Data: &glyphmerge.CompositeOutline{
			Components: []glyphmerge.Component{
				{Name: "a", Trfm: matrix.Translate(205, -102)},
				{Name: "b", Trfm: matrix.Identity, AlignPoints: true, OurPoint: 1, TheirPoint: 7},
				{Name: "missing", Trfm: matrix.Matrix{0.5, 0, 0, 0.5, 6, 0}},
			},
		},
	}
	if d := cmp.Diff(want, out); d != "" {
		t.Errorf("unexpected outline (-want +got):\n%s", d)
	}
}

func TestEmptyAndMalformed(t *testing.T) {
	out, err := Outline(&glyphmerge.Outline{}, scale.Factor(2048, 1000))
	if err != nil || out.Data != nil {
		t.Errorf("empty outline: %v %v", out, err)
	}
	out, err = Outline(nil, scale.Identity)
	if err != nil || out.Data != nil {
		t.Errorf("nil outline: %v %v", out, err)
	}

	bad := &glyphmerge.Outline{Data: &glyphmerge.MalformedOutline{Err: errors.New("broken")}}
	_, err = Outline(bad, scale.Identity)
	if !errors.Is(err, ErrUnsupportedOutline) {
		t.Errorf("expected ErrUnsupportedOutline, got %v", err)
	}
	_, err = Outline(&glyphmerge.Outline{Data: 42}, scale.Identity)
	if !errors.Is(err, ErrUnsupportedOutline) {
		t.Errorf("expected ErrUnsupportedOutline, got %v", err)
	}
}

func TestMetric(t *testing.T) {
	m := Metric(glyphmerge.Metric{Advance: 1000, LSB: -25}, scale.Factor(2048, 1000))
	if m.Advance != 2048 || m.LSB != -51 {
		t.Errorf("got %+v", m)
	}
}
