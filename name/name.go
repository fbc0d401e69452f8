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

// Package name has code for reading and writing OpenType "name" tables.
// These tables contain localized strings associated with a font.
// https://docs.microsoft.com/en-us/typography/opentype/spec/name
package name

import (
	"fmt"
	"sort"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/hackline/glyphmerge/parser"
)

// ID identifies the semantic role of a name record.
type ID uint16

// Name IDs used by this package.
// https://learn.microsoft.com/en-us/typography/opentype/spec/name#name-ids
const (
	Copyright            ID = 0
	Family               ID = 1
	Subfamily            ID = 2
	UniqueID             ID = 3
	FullName             ID = 4
	Version              ID = 5
	PostScriptName       ID = 6
	Trademark            ID = 7
	TypographicFamily    ID = 16
	TypographicSubfamily ID = 17
)

func (id ID) String() string {
	switch id {
	case Copyright:
		return "copyright"
	case Family:
		return "family"
	case Subfamily:
		return "subfamily"
	case UniqueID:
		return "unique ID"
	case FullName:
		return "full name"
	case Version:
		return "version"
	case PostScriptName:
		return "PostScript name"
	case Trademark:
		return "trademark"
	case TypographicFamily:
		return "typographic family"
	case TypographicSubfamily:
		return "typographic subfamily"
	default:
		return fmt.Sprintf("name %d", uint16(id))
	}
}

// Record is a single entry of the "name" table.
type Record struct {
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
	NameID     ID

	// Value is the decoded string.  It is only valid if Raw is nil.
	Value string

	// Raw holds the undecoded bytes for encodings this package does not
	// understand.  Such records are written back unchanged.
	Raw []byte
}

// IsText reports whether the record value was decoded into a string.
func (rec *Record) IsText() bool {
	return rec.Raw == nil
}

// Info contains information from the "name" table.
type Info struct {
	Records []Record

	// LangTags holds the language-tag strings of a version 1 table.
	LangTags []string
}

// Find returns the first text record with the given name ID, preferring
// Windows Unicode records.
func (info *Info) Find(id ID) (string, bool) {
	var fallback *Record
	for i := range info.Records {
		rec := &info.Records[i]
		if rec.NameID != id || !rec.IsText() {
			continue
		}
		if rec.PlatformID == 3 {
			return rec.Value, true
		}
		if fallback == nil {
			fallback = rec
		}
	}
	if fallback != nil {
		return fallback.Value, true
	}
	return "", false
}

// Decode extracts information from the "name" table.
func Decode(data []byte) (*Info, error) {
	if len(data) < 6 {
		return nil, errMalformedNames
	}
	version := uint16(data[0])<<8 | uint16(data[1])
	numRec := int(data[2])<<8 | int(data[3])
	storageOffset := int(data[4])<<8 | int(data[5])

	if version > 1 {
		return nil, &parser.NotSupportedError{
			SubSystem: "sfnt/name",
			Feature:   fmt.Sprintf("table version %d", version),
		}
	}

	recBase := 6
	endOfHeader := recBase + 12*numRec
	if endOfHeader > len(data) {
		return nil, errMalformedNames
	}

	info := &Info{}

	if version > 0 {
		if endOfHeader+2 > len(data) {
			return nil, errMalformedNames
		}
		numLang := int(data[endOfHeader])<<8 | int(data[endOfHeader+1])
		langBase := endOfHeader + 2
		endOfHeader = langBase + numLang*4
		if endOfHeader > len(data) {
			return nil, errMalformedNames
		}
		for i := 0; i < numLang; i++ {
			pos := langBase + 4*i
			l := int(data[pos])<<8 | int(data[pos+1])
			o := int(data[pos+2])<<8 | int(data[pos+3])
			if storageOffset+o+l > len(data) {
				return nil, errMalformedNames
			}
			tag, err := decodeUTF16(data[storageOffset+o : storageOffset+o+l])
			if err != nil {
				return nil, errMalformedNames
			}
			info.LangTags = append(info.LangTags, tag)
		}
	}
	if storageOffset < endOfHeader || storageOffset > len(data) {
		return nil, errMalformedNames
	}

	for i := 0; i < numRec; i++ {
		pos := recBase + i*12
		rec := Record{
			PlatformID: uint16(data[pos])<<8 | uint16(data[pos+1]),
			EncodingID: uint16(data[pos+2])<<8 | uint16(data[pos+3]),
			LanguageID: uint16(data[pos+4])<<8 | uint16(data[pos+5]),
			NameID:     ID(data[pos+6])<<8 | ID(data[pos+7]),
		}
		nameLen := int(data[pos+8])<<8 | int(data[pos+9])
		nameOffset := int(data[pos+10])<<8 | int(data[pos+11])
		if storageOffset+nameOffset+nameLen > len(data) {
			return nil, errMalformedNames
		}
		nameBytes := data[storageOffset+nameOffset : storageOffset+nameOffset+nameLen]

		enc := textEncoding(rec.PlatformID, rec.EncodingID)
		var val string
		var err error
		if enc != nil {
			val, err = enc.NewDecoder().String(string(nameBytes))
		}
		if enc == nil || err != nil {
			rec.Raw = append([]byte{}, nameBytes...)
		} else {
			rec.Value = val
		}
		info.Records = append(info.Records, rec)
	}

	return info, nil
}

// Encode converts a "name" table into its binary form.
// An error is returned if a record value cannot be represented in the
// encoding of its platform.
func (info *Info) Encode() ([]byte, error) {
	type recInfo struct {
		*Record
		offset uint16
		length uint16
	}
	records := make([]recInfo, len(info.Records))

	b := newNameBuilder()
	for i := range info.Records {
		rec := &info.Records[i]
		body := rec.Raw
		if body == nil {
			var err error
			body, err = EncodeValue(rec.PlatformID, rec.EncodingID, rec.Value)
			if err != nil {
				return nil, fmt.Errorf("sfnt/name: %s record (platform %d): %w",
					rec.NameID, rec.PlatformID, err)
			}
		}
		offset, length, err := b.Add(body)
		if err != nil {
			return nil, err
		}
		records[i] = recInfo{Record: rec, offset: offset, length: length}
	}

	type langInfo struct{ offset, length uint16 }
	var langs []langInfo
	for _, tag := range info.LangTags {
		body, err := EncodeValue(0, 3, tag)
		if err != nil {
			return nil, err
		}
		offset, length, err := b.Add(body)
		if err != nil {
			return nil, err
		}
		langs = append(langs, langInfo{offset, length})
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].PlatformID != records[j].PlatformID {
			return records[i].PlatformID < records[j].PlatformID
		}
		if records[i].EncodingID != records[j].EncodingID {
			return records[i].EncodingID < records[j].EncodingID
		}
		if records[i].LanguageID != records[j].LanguageID {
			return records[i].LanguageID < records[j].LanguageID
		}
		return records[i].NameID < records[j].NameID
	})

	var version uint16
	numRec := len(records)
	startOfRecords := 6
	endOfRecords := startOfRecords + numRec*12
	startOfStrings := endOfRecords
	if len(info.LangTags) > 0 {
		version = 1
		startOfStrings += 2 + 4*len(langs)
	}
	if startOfStrings > 0xFFFF {
		return nil, errTooLarge
	}
	res := make([]byte, startOfStrings, startOfStrings+len(b.data))

	res[0] = byte(version >> 8)
	res[1] = byte(version)
	res[2] = byte(numRec >> 8)
	res[3] = byte(numRec)
	res[4] = byte(startOfStrings >> 8)
	res[5] = byte(startOfStrings)
	for i, rec := range records {
		base := startOfRecords + i*12
		res[base] = byte(rec.PlatformID >> 8)
		res[base+1] = byte(rec.PlatformID)
		res[base+2] = byte(rec.EncodingID >> 8)
		res[base+3] = byte(rec.EncodingID)
		res[base+4] = byte(rec.LanguageID >> 8)
		res[base+5] = byte(rec.LanguageID)
		res[base+6] = byte(rec.NameID >> 8)
		res[base+7] = byte(rec.NameID)
		res[base+8] = byte(rec.length >> 8)
		res[base+9] = byte(rec.length)
		res[base+10] = byte(rec.offset >> 8)
		res[base+11] = byte(rec.offset)
	}
	if version == 1 {
		n := len(langs)
		res[endOfRecords] = byte(n >> 8)
		res[endOfRecords+1] = byte(n)
		for i, l := range langs {
			base := endOfRecords + 2 + 4*i
			res[base] = byte(l.length >> 8)
			res[base+1] = byte(l.length)
			res[base+2] = byte(l.offset >> 8)
			res[base+3] = byte(l.offset)
		}
	}
	res = append(res, b.data...)

	return res, nil
}

// EncodeValue converts a string into the byte representation used for the
// given platform and encoding.
func EncodeValue(platformID, encodingID uint16, s string) ([]byte, error) {
	enc := textEncoding(platformID, encodingID)
	if enc == nil {
		return nil, &parser.NotSupportedError{
			SubSystem: "sfnt/name",
			Feature:   fmt.Sprintf("encoding %d/%d", platformID, encodingID),
		}
	}
	return enc.NewEncoder().Bytes([]byte(s))
}

// textEncoding returns the string encoding used for the given platform
// and encoding IDs, or nil if the encoding is not supported.
func textEncoding(platformID, encodingID uint16) encoding.Encoding {
	switch {
	case platformID == 0:
		return utf16BE
	case platformID == 3 && (encodingID == 0 || encodingID == 1 || encodingID == 10):
		return utf16BE
	case platformID == 1 && encodingID == 0:
		return charmap.Macintosh
	default:
		return nil
	}
}

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

func decodeUTF16(b []byte) (string, error) {
	return utf16BE.NewDecoder().String(string(b))
}

type nameBuilder struct {
	data []byte
	idx  map[string]uint16
}

func newNameBuilder() *nameBuilder {
	return &nameBuilder{
		idx: make(map[string]uint16),
	}
}

func (nb *nameBuilder) Add(b []byte) (offs, length uint16, err error) {
	if len(b) > 0xFFFF {
		return 0, 0, errTooLarge
	}
	key := string(b)
	if idx, ok := nb.idx[key]; ok {
		return idx, uint16(len(b)), nil
	}
	if len(nb.data) > 0xFFFF {
		return 0, 0, errTooLarge
	}
	idx := uint16(len(nb.data))
	nb.idx[key] = idx
	nb.data = append(nb.data, b...)
	return idx, uint16(len(b)), nil
}

var (
	errMalformedNames = &parser.InvalidFontError{
		SubSystem: "sfnt/name",
		Reason:    "malformed name table",
	}
	errTooLarge = &parser.NotSupportedError{
		SubSystem: "sfnt/name",
		Feature:   "name tables larger than 64kB",
	}
)
