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
	"seehuhn.de/go/postscript/funit"

	"github.com/hackline/glyphmerge/parser"
)

// SimpleGlyph is a simple glyph in its binary form, without the glyph
// header.
type SimpleGlyph struct {
	NumContours int16
	Encoded     []byte
}

// A Point is a point in a glyph outline.
type Point struct {
	X, Y    funit.Int16
	OnCurve bool
}

// A Contour describes a connected part of a glyph outline.
// The last point is implicitly connected to the first one.
type Contour []Point

// SimpleUnpacked contains the contours of a SimpleGlyph.
type SimpleUnpacked struct {
	Contours     []Contour
	Instructions []byte
}

// Unpack returns the contours of a glyph.
func (sg SimpleGlyph) Unpack() (*SimpleUnpacked, error) {
	buf := sg.Encoded

	numContours := int(sg.NumContours)
	if len(buf) < 2*numContours+2 {
		return nil, errInvalidGlyphData
	}

	endPts := make([]int, numContours)
	prev := -1
	for i := range endPts {
		endPts[i] = int(buf[2*i])<<8 | int(buf[2*i+1])
		if endPts[i] < prev {
			return nil, errInvalidGlyphData
		}
		prev = endPts[i]
	}
	buf = buf[2*numContours:]
	numPoints := prev + 1

	instructionLength := int(buf[0])<<8 | int(buf[1])
	if len(buf) < 2+instructionLength {
		return nil, errInvalidGlyphData
	}
	instructions := buf[2 : 2+instructionLength]
	buf = buf[2+instructionLength:]

	flags := make([]byte, numPoints)
	for i := 0; i < numPoints; {
		if len(buf) < 1 {
			return nil, errInvalidGlyphData
		}
		flag := buf[0]
		buf = buf[1:]
		flags[i] = flag
		i++
		if flag&flagRepeat != 0 {
			if len(buf) < 1 {
				return nil, errInvalidGlyphData
			}
			count := int(buf[0])
			buf = buf[1:]
			for ; count > 0 && i < numPoints; count-- {
				flags[i] = flag
				i++
			}
		}
	}

	xx, buf, err := readCoords(buf, flags, flagXShortVec, flagXSameOrPos)
	if err != nil {
		return nil, err
	}
	yy, _, err := readCoords(buf, flags, flagYShortVec, flagYSameOrPos)
	if err != nil {
		return nil, err
	}

	var cc []Contour
	if numContours > 0 {
		cc = make([]Contour, numContours)
		start := 0
		for i, end := range endPts {
			contour := make(Contour, end+1-start)
			for j := range contour {
				k := start + j
				contour[j] = Point{xx[k], yy[k], flags[k]&flagOnCurve != 0}
			}
			cc[i] = contour
			start = end + 1
		}
	}

	var inst []byte
	if instructionLength > 0 {
		inst = append([]byte(nil), instructions...)
	}

	return &SimpleUnpacked{
		Contours:     cc,
		Instructions: inst,
	}, nil
}

// readCoords decodes one coordinate axis.  Coordinates are stored as
// deltas, either as a byte with a separate sign bit or as an int16.
func readCoords(buf []byte, flags []byte, shortFlag, sameOrPosFlag byte) ([]funit.Int16, []byte, error) {
	res := make([]funit.Int16, len(flags))
	var v funit.Int16
	for i, flag := range flags {
		switch {
		case flag&shortFlag != 0:
			if len(buf) < 1 {
				return nil, nil, errInvalidGlyphData
			}
			d := funit.Int16(buf[0])
			buf = buf[1:]
			if flag&sameOrPosFlag != 0 {
				v += d
			} else {
				v -= d
			}
		case flag&sameOrPosFlag == 0:
			if len(buf) < 2 {
				return nil, nil, errInvalidGlyphData
			}
			v += funit.Int16(buf[0])<<8 | funit.Int16(buf[1])
			buf = buf[2:]
		}
		res[i] = v
	}
	return res, buf, nil
}

// removePadding trims trailing bytes after the coordinate data.
func (sg *SimpleGlyph) removePadding() error {
	buf := sg.Encoded
	numContours := int(sg.NumContours)

	if len(buf) < 2*numContours+2 {
		return errInvalidGlyphData
	}
	pos := 2 * numContours

	var numPoints int
	if numContours > 0 {
		numPoints = (int(buf[pos-2])<<8 | int(buf[pos-1])) + 1
	}

	instructionLength := int(buf[pos])<<8 | int(buf[pos+1])
	pos += 2 + instructionLength

	coordBytes := 0
	for i := 0; i < numPoints; {
		if pos >= len(buf) {
			return errInvalidGlyphData
		}
		flag := buf[pos]
		pos++

		repeat := 1
		if flag&flagRepeat != 0 {
			if pos >= len(buf) {
				return errInvalidGlyphData
			}
			repeat = int(buf[pos]) + 1
			pos++
		}
		if i+repeat > numPoints {
			repeat = numPoints - i
		}

		coordBytes += (coordLen(flag, flagXShortVec, flagXSameOrPos) +
			coordLen(flag, flagYShortVec, flagYSameOrPos)) * repeat
		i += repeat
	}

	pos += coordBytes
	if pos > len(buf) {
		return errInvalidGlyphData
	}

	sg.Encoded = buf[:pos]
	return nil
}

func coordLen(flag, shortFlag, sameOrPosFlag byte) int {
	switch {
	case flag&shortFlag != 0:
		return 1
	case flag&sameOrPosFlag == 0:
		return 2
	default:
		return 0
	}
}

// Pack encodes the contours into the binary format.
func (sd *SimpleUnpacked) Pack() SimpleGlyph {
	var totalPoints int
	var buf []byte
	for _, contour := range sd.Contours {
		totalPoints += len(contour)
		endPt := totalPoints - 1
		buf = append(buf, byte(endPt>>8), byte(endPt))
	}

	L := len(sd.Instructions)
	buf = append(buf, byte(L>>8), byte(L))
	buf = append(buf, sd.Instructions...)

	flags := make([]byte, 0, totalPoints)
	xDeltas := make([]funit.Int16, 0, totalPoints)
	yDeltas := make([]funit.Int16, 0, totalPoints)
	var prevX, prevY funit.Int16
	for _, contour := range sd.Contours {
		for _, pt := range contour {
			dx, dy := pt.X-prevX, pt.Y-prevY
			prevX, prevY = pt.X, pt.Y

			var flag byte
			if pt.OnCurve {
				flag |= flagOnCurve
			}
			flag |= deltaFlag(dx, flagXShortVec, flagXSameOrPos)
			flag |= deltaFlag(dy, flagYShortVec, flagYSameOrPos)

			flags = append(flags, flag)
			xDeltas = append(xDeltas, dx)
			yDeltas = append(yDeltas, dy)
		}
	}

	// flags, with runs of identical values compressed
	for i := 0; i < len(flags); {
		run := 1
		for i+run < len(flags) && flags[i+run] == flags[i] && run < 256 {
			run++
		}
		if run > 1 {
			buf = append(buf, flags[i]|flagRepeat, byte(run-1))
		} else {
			buf = append(buf, flags[i])
		}
		i += run
	}

	buf = writeCoords(buf, flags, xDeltas, flagXShortVec, flagXSameOrPos)
	buf = writeCoords(buf, flags, yDeltas, flagYShortVec, flagYSameOrPos)

	return SimpleGlyph{
		NumContours: int16(len(sd.Contours)),
		Encoded:     buf,
	}
}

func deltaFlag(d funit.Int16, shortFlag, sameOrPosFlag byte) byte {
	switch {
	case d == 0:
		return sameOrPosFlag
	case d > 0 && d <= 255:
		return shortFlag | sameOrPosFlag
	case d < 0 && d >= -255:
		return shortFlag
	default:
		return 0
	}
}

// writeCoords writes coordinate deltas to buf based on flags.
func writeCoords(buf []byte, flags []byte, deltas []funit.Int16, shortFlag, sameOrPosFlag byte) []byte {
	for i, flag := range flags {
		if flag&shortFlag != 0 {
			if flag&sameOrPosFlag != 0 {
				buf = append(buf, byte(deltas[i]))
			} else {
				buf = append(buf, byte(-deltas[i]))
			}
		} else if flag&sameOrPosFlag == 0 {
			buf = append(buf, byte(deltas[i]>>8), byte(deltas[i]))
		}
	}
	return buf
}

// BBox returns the bounding box of all on- and off-curve points.
// The zero rectangle is returned if there are no points.
func (sd *SimpleUnpacked) BBox() funit.Rect16 {
	var bbox funit.Rect16
	first := true
	for _, contour := range sd.Contours {
		for _, pt := range contour {
			if first || pt.X < bbox.LLx {
				bbox.LLx = pt.X
			}
			if first || pt.X > bbox.URx {
				bbox.URx = pt.X
			}
			if first || pt.Y < bbox.LLy {
				bbox.LLy = pt.Y
			}
			if first || pt.Y > bbox.URy {
				bbox.URy = pt.Y
			}
			first = false
		}
	}
	return bbox
}

// AsGlyph packs the contours and computes the glyph bounding box.
// A glyph without contours is blank and is returned as nil.
func (sd *SimpleUnpacked) AsGlyph() *Glyph {
	if len(sd.Contours) == 0 {
		return nil
	}
	return &Glyph{
		Rect16: sd.BBox(),
		Data:   sd.Pack(),
	}
}

// https://docs.microsoft.com/en-us/typography/opentype/spec/glyf#simpleGlyphFlags
const (
	flagOnCurve    = 0x01 // ON_CURVE_POINT
	flagXShortVec  = 0x02 // X_SHORT_VECTOR
	flagYShortVec  = 0x04 // Y_SHORT_VECTOR
	flagRepeat     = 0x08 // REPEAT_FLAG
	flagXSameOrPos = 0x10 // X_IS_SAME_OR_POSITIVE_X_SHORT_VECTOR
	flagYSameOrPos = 0x20 // Y_IS_SAME_OR_POSITIVE_Y_SHORT_VECTOR
)

var errInvalidGlyphData = &parser.InvalidFontError{
	SubSystem: "sfnt/glyf",
	Reason:    "invalid glyph data",
}
