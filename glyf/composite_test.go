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
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/matrix"
)

func TestComponentRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		comp  ComponentUnpacked
		flags ComponentFlag
	}{
		{
			name:  "identity",
			comp:  ComponentUnpacked{Child: 1, Trfm: matrix.Identity},
			flags: FlagArgsAreXYValues,
		},
		{
			name:  "byte offsets",
			comp:  ComponentUnpacked{Child: 2, Trfm: matrix.Matrix{1, 0, 0, 1, 10, -20}},
			flags: FlagArgsAreXYValues,
		},
		{
			name:  "word offsets",
			comp:  ComponentUnpacked{Child: 3, Trfm: matrix.Matrix{1, 0, 0, 1, 1300, -150}},
			flags: FlagArgsAreXYValues | FlagArg1And2AreWords,
		},
		{
			name:  "uniform scale",
			comp:  ComponentUnpacked{Child: 4, Trfm: matrix.Matrix{0.5, 0, 0, 0.5, 10, 20}},
			flags: FlagArgsAreXYValues | FlagWeHaveAScale,
		},
		{
			name:  "x and y scale",
			comp:  ComponentUnpacked{Child: 5, Trfm: matrix.Matrix{-1, 0, 0, 0.75, 10, 20}},
			flags: FlagArgsAreXYValues | FlagWeHaveAnXAndYScale,
		},
		{
			name:  "two by two",
			comp:  ComponentUnpacked{Child: 6, Trfm: matrix.Matrix{1, 0.125, 0.25, 0.875, -10, -20}},
			flags: FlagArgsAreXYValues | FlagWeHaveATwoByTwo,
		},
		{
			name: "hints are kept",
			comp: ComponentUnpacked{
				Child: 7,
				Trfm:  matrix.Identity,
				Hints: FlagUseMyMetrics | FlagRoundXYToGrid | FlagScaledComponentOffset,
			},
			flags: FlagArgsAreXYValues | FlagUseMyMetrics | FlagRoundXYToGrid | FlagScaledComponentOffset,
		},
		{
			name: "point matching",
			comp: ComponentUnpacked{
				Child:       8,
				Trfm:        matrix.Identity,
				AlignPoints: true,
				OurPoint:    5,
				TheirPoint:  3,
			},
			flags: 0,
		},
		{
			name: "point matching, large indices",
			comp: ComponentUnpacked{
				Child:       9,
				Trfm:        matrix.Identity,
				AlignPoints: true,
				OurPoint:    400,
				TheirPoint:  3,
			},
			flags: FlagArg1And2AreWords,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packed := tt.comp.Pack()
			if packed.Flags != tt.flags {
				t.Errorf("flags %s, want %s", packed.Flags, tt.flags)
			}
			unpacked, err := packed.Unpack()
			if err != nil {
				t.Fatal(err)
			}
			if d := cmp.Diff(tt.comp, *unpacked); d != "" {
				t.Error(d)
			}
		})
	}
}

func TestComponentRounding(t *testing.T) {
	comp := ComponentUnpacked{
		Child: 1,
		Trfm:  matrix.Matrix{0.1, 0, 0, 0.1, 10.5, -20.4},
	}
	unpacked, err := comp.Pack().Unpack()
	if err != nil {
		t.Fatal(err)
	}
	if unpacked.Trfm[4] != 11 || unpacked.Trfm[5] != -20 {
		t.Errorf("offset = (%g, %g)", unpacked.Trfm[4], unpacked.Trfm[5])
	}
	if math.Abs(unpacked.Trfm[0]-0.1) > 1.0/(1<<14) {
		t.Errorf("scale = %g", unpacked.Trfm[0])
	}
}

func TestComponentFlagString(t *testing.T) {
	f := FlagArgsAreXYValues | FlagUseMyMetrics | 0x8000
	want := "ARGS_ARE_XY_VALUES|USE_MY_METRICS|0x8000"
	if got := f.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
