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

// Package locate finds font files on the local system.
package locate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'glyphmerge.locate'.
func tracer() tracing.Trace {
	return tracing.Select("glyphmerge.locate")
}

// ErrNotFound is returned if a font file cannot be found.
var ErrNotFound = errors.New("font file not found")

// Find returns the path of a font file.  A path which names an existing
// file is returned unchanged.  Otherwise the base name is looked up in
// the system font directories.
func Find(path string) (string, error) {
	if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
		return path, nil
	}

	base := filepath.Base(path)
	found, err := findfont.Find(base)
	if err != nil || found == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	tracer().Debugf("%s found as system font %s", path, found)
	return found, nil
}

// Search lists the system font files whose base name contains the given
// string, ignoring case.  The result is sorted.
func Search(part string) []string {
	part = strings.ToLower(part)
	var res []string
	for _, path := range findfont.List() {
		if strings.Contains(strings.ToLower(filepath.Base(path)), part) {
			res = append(res, path)
		}
	}
	sort.Strings(res)
	return res
}
