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

// Package header reads and writes the table directory of sfnt files.
// https://docs.microsoft.com/en-us/typography/opentype/spec/otff#table-directory
package header

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/hackline/glyphmerge/parser"
)

// Possible values for the ScalerType field.
const (
	ScalerTypeTrueType = 0x00010000
	ScalerTypeCFF      = 0x4F54544F // "OTTO"
	ScalerTypeApple    = 0x74727565 // "true"
	scalerTypeTTC      = 0x74746366 // "ttcf"
)

// maxTableSize is the largest table we are willing to load into memory.
const maxTableSize = 1 << 28

// Info contains information about the tables present in an sfnt file.
type Info struct {
	ScalerType uint32
	Toc        map[string]Record
}

// Record contains information about a single table in an sfnt file.
type Record struct {
	Offset   uint32
	Length   uint32
	CheckSum uint32
}

// Read reads the table directory of an sfnt file.
func Read(r io.ReaderAt) (*Info, error) {
	var buf [12]byte
	if _, err := r.ReadAt(buf[:], 0); err != nil {
		return nil, fmt.Errorf("sfnt/header: %w", err)
	}
	scalerType := uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
	switch scalerType {
	case ScalerTypeTrueType, ScalerTypeCFF, ScalerTypeApple:
		// pass
	case scalerTypeTTC:
		return nil, &parser.NotSupportedError{
			SubSystem: "sfnt/header",
			Feature:   "font collections",
		}
	default:
		return nil, &parser.InvalidFontError{
			SubSystem: "sfnt/header",
			Reason:    fmt.Sprintf("invalid scaler type 0x%08x", scalerType),
		}
	}

	numTables := int(buf[4])<<8 | int(buf[5])
	if numTables == 0 {
		return nil, errNoTables
	}

	recBuf := make([]byte, 16*numTables)
	if _, err := r.ReadAt(recBuf, 12); err != nil {
		return nil, fmt.Errorf("sfnt/header: %w", err)
	}

	info := &Info{
		ScalerType: scalerType,
		Toc:        make(map[string]Record, numTables),
	}
	type span struct{ start, end uint64 }
	spans := make([]span, 0, numTables)
	for i := 0; i < numTables; i++ {
		rec := recBuf[16*i : 16*i+16]
		tag := string(rec[:4])
		if !isValidTag(tag) {
			return nil, &parser.InvalidFontError{
				SubSystem: "sfnt/header",
				Reason:    fmt.Sprintf("invalid table tag %q", tag),
			}
		}
		if _, dup := info.Toc[tag]; dup {
			return nil, &parser.InvalidFontError{
				SubSystem: "sfnt/header",
				Reason:    fmt.Sprintf("duplicate table %q", tag),
			}
		}
		checkSum := uint32(rec[4])<<24 | uint32(rec[5])<<16 | uint32(rec[6])<<8 | uint32(rec[7])
		offset := uint32(rec[8])<<24 | uint32(rec[9])<<16 | uint32(rec[10])<<8 | uint32(rec[11])
		length := uint32(rec[12])<<24 | uint32(rec[13])<<16 | uint32(rec[14])<<8 | uint32(rec[15])
		if length > maxTableSize {
			return nil, &parser.NotSupportedError{
				SubSystem: "sfnt/header",
				Feature:   fmt.Sprintf("%q table of %d bytes", tag, length),
			}
		}
		info.Toc[tag] = Record{
			Offset:   offset,
			Length:   length,
			CheckSum: checkSum,
		}
		if length > 0 {
			spans = append(spans, span{uint64(offset), uint64(offset) + uint64(length)})
		}
	}

	// tables must not overlap
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			return nil, &parser.InvalidFontError{
				SubSystem: "sfnt/header",
				Reason:    "overlapping tables",
			}
		}
	}

	return info, nil
}

// Has returns true if all of the given tables are present.
func (info *Info) Has(tableNames ...string) bool {
	for _, name := range tableNames {
		if _, ok := info.Toc[name]; !ok {
			return false
		}
	}
	return true
}

// ReadTableBytes reads the body of the named table.
// If the table is not present, an error satisfying IsMissing is returned.
func (info *Info) ReadTableBytes(r io.ReaderAt, tableName string) ([]byte, error) {
	rec, ok := info.Toc[tableName]
	if !ok {
		return nil, &MissingTableError{Table: tableName}
	}
	data := make([]byte, rec.Length)
	_, err := r.ReadAt(data, int64(rec.Offset))
	if errors.Is(err, io.EOF) {
		return nil, &parser.InvalidFontError{
			SubSystem: "sfnt/header",
			Reason:    fmt.Sprintf("table %q extends beyond end of file", tableName),
		}
	} else if err != nil {
		return nil, err
	}
	return data, nil
}

// MissingTableError is returned when a required table is absent.
type MissingTableError struct {
	Table string
}

func (err *MissingTableError) Error() string {
	return fmt.Sprintf("sfnt: missing %q table", err.Table)
}

// IsMissing returns true if err indicates a missing table.
func IsMissing(err error) bool {
	var e *MissingTableError
	return errors.As(err, &e)
}

func isValidTag(tag string) bool {
	for i := 0; i < len(tag); i++ {
		if tag[i] < 0x20 || tag[i] > 0x7E {
			return false
		}
	}
	return true
}

var errNoTables = &parser.InvalidFontError{
	SubSystem: "sfnt/header",
	Reason:    "no tables found",
}
