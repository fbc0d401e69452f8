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

// Package scale maps coordinates between the design grids of two fonts.
//
// Coordinates are multiplied by target/source units per em and rounded
// half away from zero.  Results outside the range of int16 saturate.
package scale

import (
	"math"

	"seehuhn.de/go/postscript/funit"
)

// Scale converts font design units of a source font into the units of a
// target font.  The zero value is not valid; use Factor or Identity.
type Scale struct {
	num, den uint16
}

// Identity is the scale between fonts with the same design grid.
var Identity = Scale{num: 1, den: 1}

// Factor returns the scale from a font with sourceUPM units per em to a
// font with targetUPM units per em.  Both values must be positive.
func Factor(targetUPM, sourceUPM uint16) Scale {
	if targetUPM == 0 || sourceUPM == 0 {
		panic("scale: units per em must be positive")
	}
	if targetUPM == sourceUPM {
		return Identity
	}
	return Scale{num: targetUPM, den: sourceUPM}
}

// IsIdentity reports whether the scale leaves all coordinates unchanged.
func (s Scale) IsIdentity() bool {
	return s.num == s.den
}

// Float returns the scale factor.
func (s Scale) Float() float64 {
	return float64(s.num) / float64(s.den)
}

// Value scales a single coordinate.
func (s Scale) Value(v funit.Int16) funit.Int16 {
	if s.IsIdentity() {
		return v
	}
	return saturate(float64(v) * float64(s.num) / float64(s.den))
}

// Point scales a coordinate pair.
func (s Scale) Point(x, y funit.Int16) (funit.Int16, funit.Int16) {
	return s.Value(x), s.Value(y)
}

// Float64 scales a value without rounding.
func (s Scale) Float64(v float64) float64 {
	if s.IsIdentity() {
		return v
	}
	return v * float64(s.num) / float64(s.den)
}

// Width scales an advance width.
func (s Scale) Width(w uint16) uint16 {
	if s.IsIdentity() {
		return w
	}
	v := math.Round(float64(w) * float64(s.num) / float64(s.den))
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}

// Rect scales a bounding box.
func (s Scale) Rect(r funit.Rect16) funit.Rect16 {
	return funit.Rect16{
		LLx: s.Value(r.LLx),
		LLy: s.Value(r.LLy),
		URx: s.Value(r.URx),
		URy: s.Value(r.URy),
	}
}

func saturate(v float64) funit.Int16 {
	v = math.Round(v)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return funit.Int16(v)
}
