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

package merge

import (
	"errors"
	"fmt"
)

// MaxSuffix is the largest numeric suffix tried by Reserve.
const MaxSuffix = 9999

// ErrNamespaceExhausted is returned when no unused glyph name can be found.
// This error is fatal for a merge run.
var ErrNamespaceExhausted = errors.New("merge: glyph namespace exhausted")

// Reserve returns the first name in the sequence
//
//	candidate, fallback, fallback.1, fallback.2, ..., fallback.MaxSuffix
//
// for which taken returns false.  The caller is responsible for marking
// the returned name as used.
func Reserve(candidate, fallback string, taken func(string) bool) (string, error) {
	if !taken(candidate) {
		return candidate, nil
	}
	if fallback != candidate && !taken(fallback) {
		return fallback, nil
	}
	for i := 1; i <= MaxSuffix; i++ {
		name := fmt.Sprintf("%s.%d", fallback, i)
		if !taken(name) {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: no free name for %q", ErrNamespaceExhausted, candidate)
}

// CandidateName returns the preferred glyph name for a code point,
// following the Adobe Glyph List conventions.
func CandidateName(r rune) string {
	if r <= 0xFFFF {
		return fmt.Sprintf("uni%04X", r)
	}
	return fmt.Sprintf("u%05X", r)
}

// FallbackName returns the glyph name used when the candidate name of a
// code point is already taken.
func FallbackName(tag string, r rune) string {
	return fmt.Sprintf("%s_%04X", tag, r)
}

// componentName returns the glyph name used for a component glyph which is
// imported without a code point.
func componentName(tag, sourceName string) string {
	return tag + "." + sourceName
}
