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

// Package hmtx has code for reading and writing the "hhea" and "hmtx" tables.
// https://docs.microsoft.com/en-us/typography/opentype/spec/hhea
// https://docs.microsoft.com/en-us/typography/opentype/spec/hmtx
package hmtx

// If a glyph has no contours, xMax/xMin are not defined. The left side bearing
// indicated in the 'hmtx' table for such glyphs should be zero.
//
// The right side bearing is always derived using advance width and left side
// bearing values from the 'hmtx' table, plus bounding-box information in the
// glyph description:
//
//     rsb = aw - (lsb + xMax - xMin)

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"seehuhn.de/go/postscript/funit"

	"github.com/hackline/glyphmerge/parser"
)

// Info contains information from the "hhea" and "hmtx" tables.
type Info struct {
	Widths []uint16
	LSB    []int16

	Ascent  int16
	Descent int16 // negative
	LineGap int16

	CaretSlopeRise int16
	CaretSlopeRun  int16
	CaretOffset    int16
}

// Decode extracts information from the "hhea" and "hmtx" tables.
// The number of glyphs is taken from the "maxp" table.
func Decode(hheaData, hmtxData []byte, numGlyphs int) (*Info, error) {
	hhea := &binaryHhea{}
	err := binary.Read(bytes.NewReader(hheaData), binary.BigEndian, hhea)
	if err != nil {
		return nil, errHheaTooShort
	}
	if hhea.Version>>16 != 1 {
		return nil, &parser.NotSupportedError{
			SubSystem: "sfnt/hmtx",
			Feature:   fmt.Sprintf("hhea version %08x", hhea.Version),
		}
	}
	if hhea.MetricDataFormat != 0 {
		return nil, &parser.NotSupportedError{
			SubSystem: "sfnt/hmtx",
			Feature:   fmt.Sprintf("metric data format %d", hhea.MetricDataFormat),
		}
	}

	numLong := int(hhea.NumOfLongHorMetrics)
	if numLong == 0 || numLong > numGlyphs {
		return nil, &parser.InvalidFontError{
			SubSystem: "sfnt/hmtx",
			Reason:    fmt.Sprintf("invalid numberOfHMetrics %d", numLong),
		}
	}
	if len(hmtxData) < 4*numLong {
		return nil, errHmtxTooShort
	}

	info := &Info{
		Widths:         make([]uint16, numGlyphs),
		LSB:            make([]int16, numGlyphs),
		Ascent:         hhea.Ascent,
		Descent:        hhea.Descent,
		LineGap:        hhea.LineGap,
		CaretSlopeRise: hhea.CaretSlopeRise,
		CaretSlopeRun:  hhea.CaretSlopeRun,
		CaretOffset:    hhea.CaretOffset,
	}

	var width uint16
	pos := 0
	for i := 0; i < numGlyphs; i++ {
		if i < numLong {
			width = uint16(hmtxData[pos])<<8 | uint16(hmtxData[pos+1])
			pos += 2
		}
		info.Widths[i] = width

		// Some fonts omit the trailing left side bearings.
		if pos+2 <= len(hmtxData) {
			info.LSB[i] = int16(hmtxData[pos])<<8 | int16(hmtxData[pos+1])
			pos += 2
		}
	}

	return info, nil
}

// Encode creates the "hhea" and "hmtx" tables.
// The glyph extents are used to compute the summary values in the "hhea"
// table; blank glyphs must have a zero extent.
func (info *Info) Encode(extents []funit.Rect16) (hheaData []byte, hmtxData []byte) {
	numGlyphs := len(info.Widths)
	if len(info.LSB) != numGlyphs || len(extents) != numGlyphs {
		panic("hmtx: length mismatch")
	}

	numLong := numGlyphs
	for numLong > 1 && info.Widths[numLong-1] == info.Widths[numLong-2] {
		numLong--
	}

	hhea := &binaryHhea{
		Version: 0x00010000,
		Ascent:  info.Ascent,
		Descent: info.Descent,
		LineGap: info.LineGap,

		CaretSlopeRise: info.CaretSlopeRise,
		CaretSlopeRun:  info.CaretSlopeRun,
		CaretOffset:    info.CaretOffset,

		NumOfLongHorMetrics: uint16(numLong),
	}

	for _, w := range info.Widths {
		if w > hhea.AdvanceWidthMax {
			hhea.AdvanceWidthMax = w
		}
	}

	first := true
	for i, bbox := range extents {
		if bbox.IsZero() {
			continue
		}
		lsb := info.LSB[i]
		rsb := int16(int32(info.Widths[i]) - int32(lsb) - int32(bbox.URx-bbox.LLx))
		extent := lsb + int16(bbox.URx-bbox.LLx)
		if first || lsb < hhea.MinLeftSideBearing {
			hhea.MinLeftSideBearing = lsb
		}
		if first || rsb < hhea.MinRightSideBearing {
			hhea.MinRightSideBearing = rsb
		}
		if first || extent > hhea.XMaxExtent {
			hhea.XMaxExtent = extent
		}
		first = false
	}

	buf := bytes.NewBuffer(make([]byte, 0, hheaLength))
	_ = binary.Write(buf, binary.BigEndian, hhea)
	hheaData = buf.Bytes()

	hmtxData = make([]byte, 0, 4*numLong+2*(numGlyphs-numLong))
	for i := 0; i < numGlyphs; i++ {
		if i < numLong {
			hmtxData = append(hmtxData, byte(info.Widths[i]>>8), byte(info.Widths[i]))
		}
		hmtxData = append(hmtxData, byte(info.LSB[i]>>8), byte(info.LSB[i]))
	}

	return hheaData, hmtxData
}

const hheaLength = 36

type binaryHhea struct {
	Version             uint32
	Ascent              int16
	Descent             int16
	LineGap             int16
	AdvanceWidthMax     uint16
	MinLeftSideBearing  int16
	MinRightSideBearing int16
	XMaxExtent          int16
	CaretSlopeRise      int16
	CaretSlopeRun       int16
	CaretOffset         int16
	_                   int16
	_                   int16
	_                   int16
	_                   int16
	MetricDataFormat    int16
	NumOfLongHorMetrics uint16
}

var (
	errHheaTooShort = &parser.InvalidFontError{
		SubSystem: "sfnt/hmtx",
		Reason:    "hhea table too short",
	}
	errHmtxTooShort = &parser.InvalidFontError{
		SubSystem: "sfnt/hmtx",
		Reason:    "hmtx table too short",
	}
)
