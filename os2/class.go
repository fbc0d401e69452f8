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

package os2

import "fmt"

// Weight indicates the visual weight (degree of blackness or thickness of
// strokes) of the characters in the font.  Values are from 1 to 1000.
type Weight uint16

// Common weight classes.
const (
	WeightThin       Weight = 100
	WeightExtraLight Weight = 200
	WeightLight      Weight = 300
	WeightNormal     Weight = 400
	WeightMedium     Weight = 500
	WeightSemiBold   Weight = 600
	WeightBold       Weight = 700
	WeightExtraBold  Weight = 800
	WeightBlack      Weight = 900
)

func (w Weight) String() string {
	switch w {
	case WeightThin:
		return "Thin"
	case WeightExtraLight:
		return "Extra Light"
	case WeightLight:
		return "Light"
	case WeightNormal:
		return "Regular"
	case WeightMedium:
		return "Medium"
	case WeightSemiBold:
		return "Semi Bold"
	case WeightBold:
		return "Bold"
	case WeightExtraBold:
		return "Extra Bold"
	case WeightBlack:
		return "Black"
	default:
		return fmt.Sprintf("Weight(%d)", uint16(w))
	}
}

// Width indicates the aspect ratio (width to height ratio) as specified by
// a font designer for the glyphs in a font.
type Width uint16

// The nine width classes of the "OS/2" table.
const (
	WidthUltraCondensed Width = iota + 1
	WidthExtraCondensed
	WidthCondensed
	WidthSemiCondensed
	WidthNormal
	WidthSemiExpanded
	WidthExpanded
	WidthExtraExpanded
	WidthUltraExpanded
)

func (w Width) String() string {
	switch w {
	case WidthUltraCondensed:
		return "Ultra Condensed"
	case WidthExtraCondensed:
		return "Extra Condensed"
	case WidthCondensed:
		return "Condensed"
	case WidthSemiCondensed:
		return "Semi Condensed"
	case WidthNormal:
		return "Normal"
	case WidthSemiExpanded:
		return "Semi Expanded"
	case WidthExpanded:
		return "Expanded"
	case WidthExtraExpanded:
		return "Extra Expanded"
	case WidthUltraExpanded:
		return "Ultra Expanded"
	default:
		return fmt.Sprintf("Width(%d)", uint16(w))
	}
}
