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

// Package head reads and writes "head" tables.
// https://docs.microsoft.com/en-us/typography/opentype/spec/head
package head

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"seehuhn.de/go/postscript/funit"

	"github.com/hackline/glyphmerge/parser"
)

// Info contains information from the "head" table.
//
// All fields of the binary table except for the checksum adjustment are
// kept, so that Read followed by Encode reproduces the input.
type Info struct {
	FontRevision Version // set by font manufacturer
	Flags        uint16
	UnitsPerEm   uint16 // font design units per em square
	Created      time.Time
	Modified     time.Time
	FontBBox     funit.Rect16
	MacStyle     uint16

	LowestRecPPEM     uint16 // smallest readable size in pixels
	FontDirectionHint int16

	// LocaFormat is 0 for 16 bit "loca" offsets and 1 for 32 bit offsets.
	LocaFormat int16
}

// Read reads and decodes the binary representation of the head table.
func Read(data []byte) (*Info, error) {
	enc := &binaryHead{}
	err := binary.Read(bytes.NewReader(data), binary.BigEndian, enc)
	if err != nil {
		return nil, &parser.InvalidFontError{
			SubSystem: "sfnt/head",
			Reason:    "table too short",
		}
	}

	if enc.Version != 0x00010000 {
		return nil, &parser.NotSupportedError{
			SubSystem: "sfnt/head",
			Feature:   fmt.Sprintf("table version %08x", enc.Version),
		}
	}
	if enc.MagicNumber != 0x5F0F3CF5 {
		return nil, &parser.InvalidFontError{
			SubSystem: "sfnt/head",
			Reason:    fmt.Sprintf("invalid magic number %08x", enc.MagicNumber),
		}
	}
	if enc.UnitsPerEm < 16 || enc.UnitsPerEm > 16384 {
		return nil, &parser.InvalidFontError{
			SubSystem: "sfnt/head",
			Reason:    fmt.Sprintf("invalid unitsPerEm %d", enc.UnitsPerEm),
		}
	}

	info := &Info{
		FontRevision: Version(enc.FontRevision),
		Flags:        enc.Flags,
		UnitsPerEm:   enc.UnitsPerEm,
		Created:      decodeTime(enc.Created),
		Modified:     decodeTime(enc.Modified),
		FontBBox: funit.Rect16{
			LLx: enc.XMin,
			LLy: enc.YMin,
			URx: enc.XMax,
			URy: enc.YMax,
		},
		MacStyle:          enc.MacStyle,
		LowestRecPPEM:     enc.LowestRecPPEM,
		FontDirectionHint: enc.FontDirectionHint,
		LocaFormat:        enc.IndexToLocFormat,
	}
	return info, nil
}

// Encode returns the binary representation of the head table.
// The checksum adjustment is left as zero; it is filled in when the
// font file is written.
func (info *Info) Encode() []byte {
	enc := &binaryHead{
		Version:           0x00010000,
		FontRevision:      uint32(info.FontRevision),
		MagicNumber:       0x5F0F3CF5,
		Flags:             info.Flags,
		UnitsPerEm:        info.UnitsPerEm,
		Created:           encodeTime(info.Created),
		Modified:          encodeTime(info.Modified),
		XMin:              info.FontBBox.LLx,
		YMin:              info.FontBBox.LLy,
		XMax:              info.FontBBox.URx,
		YMax:              info.FontBBox.URy,
		MacStyle:          info.MacStyle,
		LowestRecPPEM:     info.LowestRecPPEM,
		FontDirectionHint: info.FontDirectionHint,
		IndexToLocFormat:  info.LocaFormat,
	}

	buf := bytes.NewBuffer(make([]byte, 0, headLength))
	_ = binary.Write(buf, binary.BigEndian, enc)
	return buf.Bytes()
}

// IsBold reports whether the macStyle bold bit is set.
func (info *Info) IsBold() bool {
	return info.MacStyle&(1<<0) != 0
}

// IsItalic reports whether the macStyle italic bit is set.
func (info *Info) IsItalic() bool {
	return info.MacStyle&(1<<1) != 0
}

const headLength = 54

type binaryHead struct {
	Version            uint32
	FontRevision       uint32
	CheckSumAdjustment uint32
	MagicNumber        uint32
	Flags              uint16
	UnitsPerEm         uint16
	Created            int64
	Modified           int64

	XMin funit.Int16
	YMin funit.Int16
	XMax funit.Int16
	YMax funit.Int16

	MacStyle uint16

	LowestRecPPEM     uint16
	FontDirectionHint int16

	IndexToLocFormat int16
	GlyphDataFormat  int16
}

// Version represents the font revision in 16.16 fixed point format.
type Version uint32

func (v Version) String() string {
	return fmt.Sprintf("%.03f", float64(v)/65536)
}

// zeroTime is the start of January 1904 in UTC, relative to the Unix epoch.
const zeroTime int64 = -2082844800

func decodeTime(t int64) time.Time {
	return time.Unix(t+zeroTime, 0).UTC()
}

func encodeTime(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix() - zeroTime
}
