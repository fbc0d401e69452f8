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

// Package transcode copies glyph outlines from one font into another,
// converting coordinates to the design grid of the target font.
package transcode

import (
	"errors"
	"fmt"

	"seehuhn.de/go/postscript/funit"

	"github.com/hackline/glyphmerge"
	"github.com/hackline/glyphmerge/glyf"
	"github.com/hackline/glyphmerge/scale"
)

// ErrUnsupportedOutline is returned for outlines which cannot be copied.
var ErrUnsupportedOutline = errors.New("transcode: unsupported outline")

// Outline returns a scaled deep copy of src.
//
// Simple glyphs have all points scaled and their bounding box recomputed.
// For composite glyphs only the component offsets are scaled; the
// components themselves must be copied separately.  The bounding box of a
// composite is scaled as an approximation.
//
// Instructions are not copied, since they are only valid for the
// original design grid and the original font programs.
func Outline(src *glyphmerge.Outline, s scale.Scale) (*glyphmerge.Outline, error) {
	if src == nil {
		return &glyphmerge.Outline{}, nil
	}

	switch d := src.Data.(type) {
	case nil:
		return &glyphmerge.Outline{}, nil

	case *glyf.SimpleUnpacked:
		res := &glyf.SimpleUnpacked{}
		if len(d.Contours) > 0 {
			res.Contours = make([]glyf.Contour, len(d.Contours))
		}
		for i, cc := range d.Contours {
			out := make(glyf.Contour, len(cc))
			for j, p := range cc {
				x, y := s.Point(p.X, p.Y)
				out[j] = glyf.Point{X: x, Y: y, OnCurve: p.OnCurve}
			}
			res.Contours[i] = out
		}
		return &glyphmerge.Outline{Rect16: res.BBox(), Data: res}, nil

	case *glyphmerge.CompositeOutline:
		res := &glyphmerge.CompositeOutline{
			Components: make([]glyphmerge.Component, len(d.Components)),
		}
		for i, c := range d.Components {
			c.Trfm[4] = s.Float64(c.Trfm[4])
			c.Trfm[5] = s.Float64(c.Trfm[5])
			if !c.AlignPoints {
				dx, dy := c.Offset()
				c.Trfm[4], c.Trfm[5] = float64(dx), float64(dy)
			}
			res.Components[i] = c
		}
		return &glyphmerge.Outline{Rect16: s.Rect(src.Rect16), Data: res}, nil

	case *glyphmerge.MalformedOutline:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedOutline, d.Err)

	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedOutline, src.Data)
	}
}

// Metric scales the horizontal metrics of a glyph.
func Metric(m glyphmerge.Metric, s scale.Scale) glyphmerge.Metric {
	return glyphmerge.Metric{
		Advance: s.Width(m.Advance),
		LSB:     int16(s.Value(funit.Int16(m.LSB))),
	}
}
