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

// Package post has code for reading and writing the "post" table.
// https://docs.microsoft.com/en-us/typography/opentype/spec/post
package post

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"seehuhn.de/go/postscript/funit"

	"github.com/hackline/glyphmerge/parser"
)

// Info contains information from the "post" table.
type Info struct {
	ItalicAngle        float64     // Italic angle in degrees
	UnderlinePosition  funit.Int16 // Underline position (negative)
	UnderlineThickness funit.Int16 // Underline thickness
	IsFixedPitch       bool

	MinMemType42 uint32
	MaxMemType42 uint32
	MinMemType1  uint32
	MaxMemType1  uint32

	Names []string // can be nil
}

// Read decodes the "post" table.
// For version 3 tables, the Names field is nil.
func Read(data []byte) (*Info, error) {
	post := &postEnc{}
	r := bytes.NewReader(data)
	if err := binary.Read(r, binary.BigEndian, post); err != nil {
		return nil, errMalformed
	}

	info := &Info{
		ItalicAngle:        float64(post.ItalicAngle) / 65536,
		UnderlinePosition:  post.UnderlinePosition,
		UnderlineThickness: post.UnderlineThickness,
		IsFixedPitch:       post.IsFixedPitch != 0,
		MinMemType42:       post.MinMemType42,
		MaxMemType42:       post.MaxMemType42,
		MinMemType1:        post.MinMemType1,
		MaxMemType1:        post.MaxMemType1,
	}

	switch post.Version {
	case 0x00010000:
		info.Names = append([]string(nil), macRoman...)

	case 0x00020000:
		body := data[postHeaderLength:]
		if len(body) < 2 {
			return nil, errMalformed
		}
		numGlyphs := int(body[0])<<8 | int(body[1])
		body = body[2:]
		if len(body) < 2*numGlyphs {
			return nil, errMalformed
		}
		indexBuf := body[:2*numGlyphs]
		body = body[2*numGlyphs:]

		var extra []string
		for len(body) > 0 {
			l := int(body[0])
			if len(body) < 1+l {
				return nil, errMalformed
			}
			extra = append(extra, string(body[1:1+l]))
			body = body[1+l:]
		}

		info.Names = make([]string, numGlyphs)
		nMac := len(macRoman)
		for i := 0; i < numGlyphs; i++ {
			idx := int(indexBuf[2*i])<<8 | int(indexBuf[2*i+1])
			if idx < nMac {
				info.Names[i] = macRoman[idx]
			} else if idx-nMac < len(extra) {
				info.Names[i] = extra[idx-nMac]
			} else {
				return nil, &parser.InvalidFontError{
					SubSystem: "sfnt/post",
					Reason:    fmt.Sprintf("glyph name index %d out of range", idx),
				}
			}
		}

	case 0x00030000:
		// pass

	default:
		return nil, &parser.NotSupportedError{
			SubSystem: "sfnt/post",
			Feature:   fmt.Sprintf("table version %08x", post.Version),
		}
	}

	return info, nil
}

// Encode encodes the "post" table.
// If names are present, a version 2 table is written (version 1 if the
// names coincide with the standard Macintosh glyph set).  Otherwise a
// version 3 table is written.
func (info *Info) Encode() []byte {
	var version uint32
	if info.Names == nil {
		version = 0x00030000
	} else if isMacRoman(info.Names) {
		version = 0x00010000
	} else {
		version = 0x00020000
	}

	header := &postEnc{
		Version:            version,
		ItalicAngle:        int32(math.Round(info.ItalicAngle * 65536)),
		UnderlinePosition:  info.UnderlinePosition,
		UnderlineThickness: info.UnderlineThickness,
		MinMemType42:       info.MinMemType42,
		MaxMemType42:       info.MaxMemType42,
		MinMemType1:        info.MinMemType1,
		MaxMemType1:        info.MaxMemType1,
	}
	if info.IsFixedPitch {
		header.IsFixedPitch = 1
	}
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.BigEndian, header)

	if version == 0x00020000 {
		numGlyphs := len(info.Names)
		buf.Write([]byte{byte(numGlyphs >> 8), byte(numGlyphs)})

		mac := make(map[string]int, len(macRoman))
		for i, name := range macRoman {
			mac[name] = i
		}
		extra := make(map[string]int)
		var stringData []byte

		for _, name := range info.Names {
			idx, ok := mac[name]
			if !ok {
				idx, ok = extra[name]
			}
			if !ok {
				if len(name) > 255 {
					name = name[:255]
				}
				idx = len(macRoman) + len(extra)
				extra[name] = idx
				stringData = append(stringData, byte(len(name)))
				stringData = append(stringData, name...)
			}
			buf.Write([]byte{byte(idx >> 8), byte(idx)})
		}
		buf.Write(stringData)
	}

	return buf.Bytes()
}

func isMacRoman(names []string) bool {
	if len(names) != len(macRoman) {
		return false
	}
	for i, name := range names {
		if name != macRoman[i] {
			return false
		}
	}
	return true
}

const postHeaderLength = 32

type postEnc struct {
	Version            uint32
	ItalicAngle        int32
	UnderlinePosition  funit.Int16
	UnderlineThickness funit.Int16
	IsFixedPitch       uint32
	MinMemType42       uint32
	MaxMemType42       uint32
	MinMemType1        uint32
	MaxMemType1        uint32
}

var errMalformed = &parser.InvalidFontError{
	SubSystem: "sfnt/post",
	Reason:    "malformed table",
}
