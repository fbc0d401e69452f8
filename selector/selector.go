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

// Package selector implements sets of code points, given as lists of
// inclusive ranges.
package selector

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// Range is an inclusive range of code points.
type Range struct {
	Low, High rune
}

func (r Range) String() string {
	if r.Low == r.High {
		return fmt.Sprintf("%04X", r.Low)
	}
	return fmt.Sprintf("%04X-%04X", r.Low, r.High)
}

// Set is a set of code points.  The ranges may overlap and need not be
// sorted.
type Set []Range

// Contains reports whether r is an element of the set.
func (s Set) Contains(r rune) bool {
	for _, rng := range s {
		if rng.Low <= r && r <= rng.High {
			return true
		}
	}
	return false
}

// Union returns the set of code points contained in any of the sets.
func Union(sets ...Set) Set {
	var res Set
	for _, s := range sets {
		res = append(res, s...)
	}
	return res
}

// Normalize returns an equivalent set with sorted, non-overlapping and
// non-adjacent ranges.
func (s Set) Normalize() Set {
	if len(s) == 0 {
		return nil
	}
	rr := slices.Clone(s)
	slices.SortFunc(rr, func(a, b Range) int {
		return int(a.Low) - int(b.Low)
	})
	res := Set{rr[0]}
	for _, r := range rr[1:] {
		last := &res[len(res)-1]
		if r.Low <= last.High+1 {
			last.High = max(last.High, r.High)
		} else {
			res = append(res, r)
		}
	}
	return res
}

// Size returns the number of code points in the set.
func (s Set) Size() int {
	var n int
	for _, r := range s.Normalize() {
		n += int(r.High-r.Low) + 1
	}
	return n
}

func (s Set) String() string {
	parts := make([]string, len(s))
	for i, r := range s {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}

// ErrMalformedRange is returned by Parse for invalid range specifications.
var ErrMalformedRange = errors.New("selector: malformed range")

// Parse converts a list of range specifications into a set.
// Each entry is either the name of a preset, a single hexadecimal code
// point like "3000" or "U+3000", or a range like "3000-303F".
func Parse(specs []string) (Set, error) {
	var res Set
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if preset, ok := Presets[strings.ToLower(spec)]; ok {
			res = append(res, preset...)
			continue
		}

		lowStr, highStr, isRange := strings.Cut(spec, "-")
		low, err := parseCodePoint(lowStr)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrMalformedRange, spec, err)
		}
		high := low
		if isRange {
			high, err = parseCodePoint(highStr)
			if err != nil {
				return nil, fmt.Errorf("%w %q: %v", ErrMalformedRange, spec, err)
			}
		}
		if high < low {
			return nil, fmt.Errorf("%w %q: empty range", ErrMalformedRange, spec)
		}
		res = append(res, Range{Low: low, High: high})
	}
	return res, nil
}

func parseCodePoint(s string) (rune, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "U+"), "u+")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	x, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, err
	}
	if x > 0x10FFFF || x >= 0xD800 && x <= 0xDFFF {
		return 0, fmt.Errorf("U+%04X is not a Unicode scalar value", x)
	}
	return rune(x), nil
}
