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

// Package placeholder draws glyphs which have no counterpart in any source
// font.  The only shape currently provided is the dashed square used to
// make the ideographic space (U+3000) visible.
package placeholder

import (
	"errors"
	"fmt"
	"math"

	"seehuhn.de/go/postscript/funit"

	"github.com/hackline/glyphmerge"
	"github.com/hackline/glyphmerge/glyf"
)

// Params describes a dashed square.  All ratios are relative to the em
// size, except GapRatio, which is the fraction of each dash period that is
// left blank.
type Params struct {
	BoxRatio    float64 // side length of the square
	StrokeRatio float64 // line thickness
	Dashes      int     // dashes per side, including the two corner pieces
	GapRatio    float64
}

// Default approximates the ideographic space marker of HackLine, which
// was drawn on a 1024 unit grid: the square spans x 166-858 and y 42-736
// with a stroke of 56 units, and the dashes along each side are separated
// by gaps of 178 units.  The rounded corners of that marker are drawn as
// plain L shapes here.
var Default = Params{
	BoxRatio:    692.0 / 1024,
	StrokeRatio: 56.0 / 1024,
	Dashes:      3,
	GapRatio:    178.0 / 290, // gap / (dash + gap)
}

// centerRatio is the height of the center of the square, relative to the
// em size.
const centerRatio = 389.0 / 1024

// ErrInvalidParams is returned when a dashed square cannot be drawn with the
// given parameters.
var ErrInvalidParams = errors.New("placeholder: invalid parameters")

// DashedSquare draws a dashed square, centered horizontally in a glyph
// which is one em wide.
//
// The corners are L-shaped pieces and the remaining dashes are rectangles.
// All contours are closed polygons with on-curve points only, and run
// clockwise.
func DashedSquare(upm uint16, p Params) (*glyphmerge.Outline, glyphmerge.Metric, error) {
	if err := p.check(upm); err != nil {
		return nil, glyphmerge.Metric{}, err
	}

	em := float64(upm)
	box := math.Round(p.BoxRatio * em)
	stroke := math.Round(p.StrokeRatio * em)
	x0 := math.Round((em - box) / 2)
	y0 := math.Round(centerRatio*em - box/2)

	// dash length d and gap length g satisfy n*d + (n-1)*g = box
	n := float64(p.Dashes)
	period := box / (n - p.GapRatio)
	d := period * (1 - p.GapRatio)
	if math.Round(d) <= stroke {
		return nil, glyphmerge.Metric{}, fmt.Errorf("%w: dashes of length %g do not fit stroke %g",
			ErrInvalidParams, d, stroke)
	}

	// start and end of dash i, relative to the lower left corner
	start := func(i int) float64 { return math.Round(float64(i) * period) }
	end := func(i int) float64 { return math.Round(float64(i)*period + d) }
	arm := end(0)

	var cc []glyf.Contour
	x1, y1 := x0+box, y0+box

	cc = append(cc,
		corner(x0, y0, +1, +1, arm, stroke),
		corner(x0, y1, +1, -1, arm, stroke),
		corner(x1, y1, -1, -1, arm, stroke),
		corner(x1, y0, -1, +1, arm, stroke),
	)
	for i := 1; i < p.Dashes-1; i++ {
		a, b := start(i), end(i)
		// bottom, top, left, right
		cc = append(cc,
			rect(x0+a, y0, x0+b, y0+stroke),
			rect(x0+a, y1-stroke, x0+b, y1),
			rect(x0, y0+a, x0+stroke, y0+b),
			rect(x1-stroke, y0+a, x1, y0+b),
		)
	}

	sd := &glyf.SimpleUnpacked{Contours: cc}
	bbox := sd.BBox()
	o := &glyphmerge.Outline{Rect16: bbox, Data: sd}
	m := glyphmerge.Metric{Advance: upm, LSB: int16(bbox.LLx)}
	return o, m, nil
}

func (p Params) check(upm uint16) error {
	switch {
	case upm == 0:
		return fmt.Errorf("%w: zero units per em", ErrInvalidParams)
	case !(p.BoxRatio > 0 && p.BoxRatio <= 1):
		return fmt.Errorf("%w: box ratio %g", ErrInvalidParams, p.BoxRatio)
	case !(p.StrokeRatio > 0) || 2*p.StrokeRatio >= p.BoxRatio:
		return fmt.Errorf("%w: stroke ratio %g", ErrInvalidParams, p.StrokeRatio)
	case p.Dashes < 2:
		return fmt.Errorf("%w: %d dashes per side", ErrInvalidParams, p.Dashes)
	case !(p.GapRatio > 0 && p.GapRatio < 1):
		return fmt.Errorf("%w: gap ratio %g", ErrInvalidParams, p.GapRatio)
	}
	return nil
}

// corner returns an L-shaped piece with the outer corner at (x, y).
// The arms extend in direction (sx, sy).
func corner(x, y, sx, sy, arm, stroke float64) glyf.Contour {
	local := [][2]float64{
		{0, 0}, {arm, 0}, {arm, stroke}, {stroke, stroke}, {stroke, arm}, {0, arm},
	}
	res := make(glyf.Contour, len(local))
	for i, q := range local {
		res[i] = glyf.Point{
			X:       funit.Int16(x + sx*q[0]),
			Y:       funit.Int16(y + sy*q[1]),
			OnCurve: true,
		}
	}
	// The local shape runs counter-clockwise, and a mirror image
	// in one axis reverses the direction.
	if sx*sy > 0 {
		reverse(res)
	}
	return res
}

// rect returns a clockwise rectangle.
func rect(llx, lly, urx, ury float64) glyf.Contour {
	return glyf.Contour{
		{X: funit.Int16(llx), Y: funit.Int16(lly), OnCurve: true},
		{X: funit.Int16(llx), Y: funit.Int16(ury), OnCurve: true},
		{X: funit.Int16(urx), Y: funit.Int16(ury), OnCurve: true},
		{X: funit.Int16(urx), Y: funit.Int16(lly), OnCurve: true},
	}
}

func reverse(c glyf.Contour) {
	for i, j := 0, len(c)-1; i < j; i, j = i+1, j-1 {
		c[i], c[j] = c[j], c[i]
	}
}
