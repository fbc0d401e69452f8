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
	"fmt"
	"math"
	"strings"

	"seehuhn.de/go/geom/matrix"

	"github.com/hackline/glyphmerge/glyph"
	"github.com/hackline/glyphmerge/parser"
)

// CompositeGlyph represents a glyph that is built from other glyphs.
type CompositeGlyph struct {
	Components   []GlyphComponent
	Instructions []byte
}

// GlyphComponent is a single component of a composite glyph, in binary
// form.  Data holds the arguments and the optional scale or 2x2 matrix.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/glyf#composite-glyph-description
type GlyphComponent struct {
	Flags      ComponentFlag
	GlyphIndex glyph.ID
	Data       []byte
}

// ComponentFlag controls how a component glyph is processed within a composite.
type ComponentFlag uint16

func (f ComponentFlag) String() string {
	var res []string
	for _, fl := range flagNames {
		if f&fl.flag != 0 {
			res = append(res, fl.name)
		}
	}
	if f&0xE010 != 0 {
		res = append(res, fmt.Sprintf("0x%04x", uint16(f&0xE010)))
	}
	return strings.Join(res, "|")
}

var flagNames = []struct {
	flag ComponentFlag
	name string
}{
	{FlagArg1And2AreWords, "ARG_1_AND_2_ARE_WORDS"},
	{FlagArgsAreXYValues, "ARGS_ARE_XY_VALUES"},
	{FlagRoundXYToGrid, "ROUND_XY_TO_GRID"},
	{FlagWeHaveAScale, "WE_HAVE_A_SCALE"},
	{FlagMoreComponents, "MORE_COMPONENTS"},
	{FlagWeHaveAnXAndYScale, "WE_HAVE_AN_X_AND_Y_SCALE"},
	{FlagWeHaveATwoByTwo, "WE_HAVE_A_TWO_BY_TWO"},
	{FlagWeHaveInstructions, "WE_HAVE_INSTRUCTIONS"},
	{FlagUseMyMetrics, "USE_MY_METRICS"},
	{FlagOverlapCompound, "OVERLAP_COMPOUND"},
	{FlagScaledComponentOffset, "SCALED_COMPONENT_OFFSET"},
	{FlagUnscaledComponentOffset, "UNSCALED_COMPONENT_OFFSET"},
}

// The recognized values for the ComponentFlag field.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/glyf#compositeGlyphFlags
const (
	FlagArg1And2AreWords        ComponentFlag = 0x0001
	FlagArgsAreXYValues         ComponentFlag = 0x0002
	FlagRoundXYToGrid           ComponentFlag = 0x0004
	FlagWeHaveAScale            ComponentFlag = 0x0008
	FlagMoreComponents          ComponentFlag = 0x0020
	FlagWeHaveAnXAndYScale      ComponentFlag = 0x0040
	FlagWeHaveATwoByTwo         ComponentFlag = 0x0080
	FlagWeHaveInstructions      ComponentFlag = 0x0100
	FlagUseMyMetrics            ComponentFlag = 0x0200
	FlagOverlapCompound         ComponentFlag = 0x0400
	FlagScaledComponentOffset   ComponentFlag = 0x0800
	FlagUnscaledComponentOffset ComponentFlag = 0x1000
)

// HintFlags are the component flags which do not describe the binary
// layout of the component.  These are carried through Unpack and Pack
// unchanged.
const HintFlags = FlagRoundXYToGrid | FlagUseMyMetrics | FlagOverlapCompound |
	FlagScaledComponentOffset | FlagUnscaledComponentOffset

func floatToF2dot14(f float64) int16 {
	val := math.Round(f * (1 << 14))
	if val > math.MaxInt16 {
		return math.MaxInt16
	}
	if val < math.MinInt16 {
		return math.MinInt16
	}
	return int16(val)
}

func f2dot14ToFloat(i int16) float64 {
	return float64(i) / (1 << 14)
}

// decodeGlyphComposite decodes the body of a composite glyph.
// The MORE_COMPONENTS and WE_HAVE_INSTRUCTIONS flags are consumed here
// and are not retained in the component flags.
func decodeGlyphComposite(data []byte) (*CompositeGlyph, error) {
	var components []GlyphComponent
	weHaveInstructions := false
	for {
		if len(data) < 4 {
			return nil, errIncompleteGlyph
		}

		flags := ComponentFlag(data[0])<<8 | ComponentFlag(data[1])
		glyphIndex := glyph.ID(data[2])<<8 | glyph.ID(data[3])
		data = data[4:]

		if flags&FlagWeHaveInstructions != 0 {
			weHaveInstructions = true
		}

		skip := 2
		if flags&FlagArg1And2AreWords != 0 {
			skip = 4
		}
		switch {
		case flags&FlagWeHaveAScale != 0:
			skip += 2
		case flags&FlagWeHaveAnXAndYScale != 0:
			skip += 4
		case flags&FlagWeHaveATwoByTwo != 0:
			skip += 8
		}
		if len(data) < skip {
			return nil, errIncompleteGlyph
		}

		components = append(components, GlyphComponent{
			Flags:      flags &^ (FlagMoreComponents | FlagWeHaveInstructions),
			GlyphIndex: glyphIndex,
			Data:       data[:skip],
		})
		data = data[skip:]

		if flags&FlagMoreComponents == 0 {
			break
		}
	}

	var instructions []byte
	if weHaveInstructions && len(data) >= 2 {
		L := int(data[0])<<8 | int(data[1])
		data = data[2:]
		if len(data) > L {
			data = data[:L]
		}
		if len(data) > 0 {
			instructions = data
		}
	}

	return &CompositeGlyph{
		Components:   components,
		Instructions: instructions,
	}, nil
}

// Components returns the component glyph IDs of a composite glyph.
// Returns nil if the glyph is simple or blank.
func (g *Glyph) Components() []glyph.ID {
	if g == nil {
		return nil
	}
	d, ok := g.Data.(CompositeGlyph)
	if !ok {
		return nil
	}
	res := make([]glyph.ID, len(d.Components))
	for i, comp := range d.Components {
		res[i] = comp.GlyphIndex
	}
	return res
}

// ComponentUnpacked is the decoded form of a glyph component.
type ComponentUnpacked struct {
	// Child is the glyph ID of the component glyph.
	Child glyph.ID

	// Trfm is the transformation applied to the component,
	// as [xx, xy, yx, yy, dx, dy].  If AlignPoints is set, the offset
	// is zero.
	Trfm matrix.Matrix

	// AlignPoints indicates that the component is positioned by matching
	// point OurPoint of the child to point TheirPoint of the glyph
	// assembled so far, instead of by an offset.
	AlignPoints          bool
	OurPoint, TheirPoint uint16

	// Hints holds the component flags from HintFlags.
	Hints ComponentFlag
}

// Unpack decodes the arguments and transformation of the component.
func (gc GlyphComponent) Unpack() (*ComponentUnpacked, error) {
	res := &ComponentUnpacked{
		Child: gc.GlyphIndex,
		Trfm:  matrix.Identity,
		Hints: gc.Flags & HintFlags,
	}

	data := gc.Data
	next := func() int16 {
		v := int16(data[0])<<8 | int16(data[1])
		data = data[2:]
		return v
	}

	var arg1, arg2 int
	if gc.Flags&FlagArg1And2AreWords != 0 {
		if len(data) < 4 {
			return nil, errIncompleteGlyph
		}
		if gc.Flags&FlagArgsAreXYValues != 0 {
			arg1, arg2 = int(next()), int(next())
		} else {
			arg1, arg2 = int(uint16(next())), int(uint16(next()))
		}
	} else {
		if len(data) < 2 {
			return nil, errIncompleteGlyph
		}
		if gc.Flags&FlagArgsAreXYValues != 0 {
			arg1, arg2 = int(int8(data[0])), int(int8(data[1]))
		} else {
			arg1, arg2 = int(data[0]), int(data[1])
		}
		data = data[2:]
	}

	switch {
	case gc.Flags&FlagWeHaveAScale != 0:
		if len(data) < 2 {
			return nil, errIncompleteGlyph
		}
		s := f2dot14ToFloat(next())
		res.Trfm[0], res.Trfm[3] = s, s
	case gc.Flags&FlagWeHaveAnXAndYScale != 0:
		if len(data) < 4 {
			return nil, errIncompleteGlyph
		}
		res.Trfm[0] = f2dot14ToFloat(next())
		res.Trfm[3] = f2dot14ToFloat(next())
	case gc.Flags&FlagWeHaveATwoByTwo != 0:
		if len(data) < 8 {
			return nil, errIncompleteGlyph
		}
		for i := 0; i < 4; i++ {
			res.Trfm[i] = f2dot14ToFloat(next())
		}
	}

	if gc.Flags&FlagArgsAreXYValues != 0 {
		res.Trfm[4] = float64(arg1)
		res.Trfm[5] = float64(arg2)
	} else {
		res.AlignPoints = true
		res.OurPoint = uint16(arg2)
		res.TheirPoint = uint16(arg1)
	}

	return res, nil
}

// Pack converts the component into its binary form, choosing the
// smallest encoding for the arguments and the transformation.
// Offsets are rounded to integers.
func (cu *ComponentUnpacked) Pack() GlyphComponent {
	gc := GlyphComponent{
		Flags:      cu.Hints & HintFlags,
		GlyphIndex: cu.Child,
	}

	var buf []byte
	if cu.AlignPoints {
		// arg1 is the point of the parent, arg2 the point of the child
		if cu.OurPoint > 0xFF || cu.TheirPoint > 0xFF {
			gc.Flags |= FlagArg1And2AreWords
			buf = append(buf,
				byte(cu.TheirPoint>>8), byte(cu.TheirPoint),
				byte(cu.OurPoint>>8), byte(cu.OurPoint))
		} else {
			buf = append(buf, byte(cu.TheirPoint), byte(cu.OurPoint))
		}
	} else {
		gc.Flags |= FlagArgsAreXYValues
		dx := clampInt16(cu.Trfm[4])
		dy := clampInt16(cu.Trfm[5])
		if dx < -128 || dx > 127 || dy < -128 || dy > 127 {
			gc.Flags |= FlagArg1And2AreWords
			buf = append(buf, byte(dx>>8), byte(dx), byte(dy>>8), byte(dy))
		} else {
			buf = append(buf, byte(int8(dx)), byte(int8(dy)))
		}
	}

	xx := floatToF2dot14(cu.Trfm[0])
	xy := floatToF2dot14(cu.Trfm[1])
	yx := floatToF2dot14(cu.Trfm[2])
	yy := floatToF2dot14(cu.Trfm[3])
	const one = 1 << 14
	switch {
	case xx == one && xy == 0 && yx == 0 && yy == one:
		// identity, no data needed
	case xy == 0 && yx == 0 && xx == yy:
		gc.Flags |= FlagWeHaveAScale
		buf = append(buf, byte(xx>>8), byte(xx))
	case xy == 0 && yx == 0:
		gc.Flags |= FlagWeHaveAnXAndYScale
		buf = append(buf, byte(xx>>8), byte(xx), byte(yy>>8), byte(yy))
	default:
		gc.Flags |= FlagWeHaveATwoByTwo
		for _, v := range []int16{xx, xy, yx, yy} {
			buf = append(buf, byte(v>>8), byte(v))
		}
	}

	gc.Data = buf
	return gc
}

func clampInt16(x float64) int16 {
	x = math.Round(x)
	if x > math.MaxInt16 {
		return math.MaxInt16
	}
	if x < math.MinInt16 {
		return math.MinInt16
	}
	return int16(x)
}

var errIncompleteGlyph = &parser.InvalidFontError{
	SubSystem: "sfnt/glyf",
	Reason:    "incomplete glyph",
}
