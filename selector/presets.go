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

package selector

// Japanese covers kana, CJK ideographs, CJK punctuation and full-width
// forms.
var Japanese = Set{
	{0x3000, 0x303F}, // CJK Symbols and Punctuation
	{0x3040, 0x309F}, // Hiragana
	{0x30A0, 0x30FF}, // Katakana
	{0x31F0, 0x31FF}, // Katakana Phonetic Extensions
	{0x4E00, 0x9FFF}, // CJK Unified Ideographs
	{0xFF00, 0xFFEF}, // Halfwidth and Fullwidth Forms
	{0x2E80, 0x2EFF}, // CJK Radicals Supplement
	{0x3400, 0x4DBF}, // CJK Unified Ideographs Extension A
}

// Code point ranges of the Nerd Fonts icon sets.
var (
	Powerline      = Set{{0xE0A0, 0xE0A2}, {0xE0B0, 0xE0B3}}
	PowerlineExtra = Set{{0xE0A3, 0xE0A3}, {0xE0B4, 0xE0C8}, {0xE0CA, 0xE0CA}, {0xE0CC, 0xE0D7}}
	Seti           = Set{{0xE5FA, 0xE6B7}}
	Devicons       = Set{{0xE700, 0xE8E3}}
	FontAwesome    = Set{{0xED00, 0xF2FF}}
	FontAwesomeExt = Set{{0xE200, 0xE2A9}}
	MaterialDesign = Set{{0xF0001, 0xF1AF0}}
	Weather        = Set{{0xE300, 0xE3E3}}
	Octicons       = Set{{0xF400, 0xF533}}
	PowerSymbols   = Set{{0x23FB, 0x23FE}, {0x2B58, 0x2B58}}
	FontLogos      = Set{{0xF300, 0xF381}}
	Pomicons       = Set{{0xE000, 0xE00A}}
	Codicons       = Set{{0xEA60, 0xEC1E}}
)

// Nerd is the union of the Nerd Fonts icon sets used for HackLine NF.
// Material Design icons are not included.
var Nerd = Union(
	Powerline, PowerlineExtra, Seti, Devicons, FontAwesome, FontAwesomeExt,
	Weather, Octicons, PowerSymbols, FontLogos, Pomicons, Codicons,
)

// Presets maps the names accepted by Parse to code point sets.
var Presets = map[string]Set{
	"japanese":         Japanese,
	"nerd":             Nerd,
	"powerline":        Powerline,
	"powerline-extra":  PowerlineExtra,
	"seti":             Seti,
	"devicons":         Devicons,
	"font-awesome":     FontAwesome,
	"font-awesome-ext": FontAwesomeExt,
	"material-design":  MaterialDesign,
	"weather":          Weather,
	"octicons":         Octicons,
	"power-symbols":    PowerSymbols,
	"font-logos":       FontLogos,
	"pomicons":         Pomicons,
	"codicons":         Codicons,
}
