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

// Package verify re-reads a written font with an independent parser and
// checks that every mapped code point resolves to the expected glyph.
package verify

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/go-text/typesetting/font"
	"github.com/npillmayer/schuko/tracing"

	"github.com/hackline/glyphmerge"
)

// tracer traces with key 'glyphmerge.verify'.
func tracer() tracing.Trace {
	return tracing.Select("glyphmerge.verify")
}

// Problem describes a code point which does not resolve as expected.
type Problem struct {
	Codepoint rune
	Want, Got uint32
	Reason    string
}

func (p Problem) String() string {
	return fmt.Sprintf("U+%04X: %s (want %d, got %d)", p.Codepoint, p.Reason, p.Want, p.Got)
}

// Result summarizes a verification run.
type Result struct {
	Checked  int
	Problems []Problem
}

// ErrMismatch is returned if the written font differs from the expected
// one.
var ErrMismatch = errors.New("verify: font does not match")

// File verifies a font file against the font it was written from.
func File(fname string, want *glyphmerge.Font) (*Result, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	return Bytes(data, want)
}

// Bytes verifies an encoded font against the font it was written from.
// The check covers the design grid, the character map and the advance
// widths of mapped glyphs.
func Bytes(data []byte, want *glyphmerge.Font) (*Result, error) {
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	if upem := face.Upem(); upem != want.UnitsPerEm {
		return nil, fmt.Errorf("%w: unitsPerEm %d, want %d", ErrMismatch, upem, want.UnitsPerEm)
	}

	idx := want.GlyphIndex()
	res := &Result{}
	for _, r := range want.Codepoints() {
		wantGID := uint32(idx[want.CMap[r]])
		if wantGID == 0 {
			continue
		}
		res.Checked++

		gid, ok := face.NominalGlyph(r)
		if !ok || uint32(gid) != wantGID {
			res.Problems = append(res.Problems, Problem{
				Codepoint: r,
				Want:      wantGID,
				Got:       uint32(gid),
				Reason:    "wrong glyph",
			})
			continue
		}

		wantAdv := uint32(want.Metrics[want.CMap[r]].Advance)
		if adv := uint32(face.HorizontalAdvance(gid)); adv != wantAdv {
			res.Problems = append(res.Problems, Problem{
				Codepoint: r,
				Want:      wantAdv,
				Got:       adv,
				Reason:    "wrong advance width",
			})
		}
	}

	tracer().Infof("verified %d code points, %d problems", res.Checked, len(res.Problems))
	if len(res.Problems) > 0 {
		return res, fmt.Errorf("%w: %s", ErrMismatch, res.Problems[0])
	}
	return res, nil
}
