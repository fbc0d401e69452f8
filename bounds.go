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

package glyphmerge

import (
	"errors"
	"fmt"
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/postscript/funit"

	"github.com/hackline/glyphmerge/glyf"
)

// MaxComponentDepth is the maximal nesting depth of composite glyphs.
// The TrueType format does not limit the depth, but fonts in practice
// rarely use more than two levels.
const MaxComponentDepth = 16

// SimpleOutline is the outline of a glyph made of contours.
type SimpleOutline = glyf.SimpleUnpacked

type point struct {
	x, y float64
}

// CompositeBounds computes the bounding box of a glyph from the points of
// all its (transitive) components.  For simple glyphs this is the same as
// the bounding box of the points.
func (f *Font) CompositeBounds(glyphName string) (funit.Rect16, error) {
	pts, err := f.flatten(glyphName, 0, make(map[string]bool))
	if err != nil {
		return funit.Rect16{}, err
	}
	return pointsBBox(pts), nil
}

func pointsBBox(pts []point) funit.Rect16 {
	if len(pts) == 0 {
		return funit.Rect16{}
	}

	bbox := rect.Rect{LLx: pts[0].x, LLy: pts[0].y, URx: pts[0].x, URy: pts[0].y}
	for _, p := range pts[1:] {
		bbox.LLx = math.Min(bbox.LLx, p.x)
		bbox.LLy = math.Min(bbox.LLy, p.y)
		bbox.URx = math.Max(bbox.URx, p.x)
		bbox.URy = math.Max(bbox.URy, p.y)
	}
	return funit.Rect16{
		LLx: toInt16(math.Floor(bbox.LLx)),
		LLy: toInt16(math.Floor(bbox.LLy)),
		URx: toInt16(math.Ceil(bbox.URx)),
		URy: toInt16(math.Ceil(bbox.URy)),
	}
}

// flatten returns the points of a glyph, with all components resolved.
// The point numbering is the one used for point matching.
func (f *Font) flatten(glyphName string, depth int, active map[string]bool) ([]point, error) {
	if active[glyphName] {
		return nil, fmt.Errorf("%w: %q", ErrCyclicComposite, glyphName)
	}
	if depth > MaxComponentDepth {
		return nil, fmt.Errorf("%w: %q", ErrComponentDepth, glyphName)
	}
	o, ok := f.Glyphs[glyphName]
	if !ok {
		if f.HasGlyph(glyphName) {
			return nil, nil
		}
		return nil, &MissingGlyphError{Name: glyphName}
	}
	if o == nil {
		return nil, nil
	}
	if _, isComposite := o.Data.(*CompositeOutline); isComposite {
		active[glyphName] = true
		defer delete(active, glyphName)
	}
	return f.flattenOutline(o, depth, active)
}

func (f *Font) flattenOutline(o *Outline, depth int, active map[string]bool) ([]point, error) {
	switch d := o.Data.(type) {
	case *glyf.SimpleUnpacked:
		var res []point
		for _, cc := range d.Contours {
			for _, p := range cc {
				res = append(res, point{float64(p.X), float64(p.Y)})
			}
		}
		return res, nil

	case *CompositeOutline:
		var res []point
		for _, c := range d.Components {
			child, err := f.flatten(c.Name, depth+1, active)
			if err != nil {
				return nil, err
			}
			M := c.Trfm
			var dx, dy float64
			switch {
			case c.AlignPoints:
				if int(c.TheirPoint) >= len(res) || int(c.OurPoint) >= len(child) {
					return nil, fmt.Errorf("component %q: matching point out of range", c.Name)
				}
				p := child[c.OurPoint]
				cx := M[0]*p.x + M[2]*p.y
				cy := M[1]*p.x + M[3]*p.y
				dx = res[c.TheirPoint].x - cx
				dy = res[c.TheirPoint].y - cy
			case c.Hints&glyf.FlagScaledComponentOffset != 0:
				dx = M[0]*M[4] + M[2]*M[5]
				dy = M[1]*M[4] + M[3]*M[5]
			default:
				dx, dy = M[4], M[5]
			}
			for _, p := range child {
				res = append(res, point{
					x: M[0]*p.x + M[2]*p.y + dx,
					y: M[1]*p.x + M[3]*p.y + dy,
				})
			}
		}
		return res, nil

	default:
		// blank or malformed
		return nil, nil
	}
}

// CheckComposites verifies that all composite glyphs of the font can be
// resolved.  A cycle is reported as ErrCyclicComposite, even if other
// composites fail earlier in the glyph order.
func (f *Font) CheckComposites() error {
	var first error
	for _, glyphName := range f.GlyphOrder {
		o := f.Glyphs[glyphName]
		if o == nil {
			continue
		}
		if _, ok := o.Data.(*CompositeOutline); !ok {
			continue
		}
		_, err := f.flatten(glyphName, 0, make(map[string]bool))
		if errors.Is(err, ErrCyclicComposite) {
			return err
		} else if err != nil && first == nil {
			first = err
		}
	}
	return first
}

// MissingGlyphError is returned when a composite glyph refers to a glyph
// which is not part of the font.
type MissingGlyphError struct {
	Name string
}

func (err *MissingGlyphError) Error() string {
	return fmt.Sprintf("glyphmerge: missing glyph %q", err.Name)
}

func toInt16(x float64) funit.Int16 {
	x = math.Round(x)
	if x > math.MaxInt16 {
		return math.MaxInt16
	}
	if x < math.MinInt16 {
		return math.MinInt16
	}
	return funit.Int16(x)
}
