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

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hackline/glyphmerge"
	"github.com/hackline/glyphmerge/cmapsynth"
	"github.com/hackline/glyphmerge/config"
	"github.com/hackline/glyphmerge/locate"
	"github.com/hackline/glyphmerge/merge"
	"github.com/hackline/glyphmerge/rename"
	"github.com/hackline/glyphmerge/verify"
)

// buildResult describes one output font.
type buildResult struct {
	Output   string
	Font     *glyphmerge.Font
	Report   *merge.Report
	Names    []rename.Diagnostic
	Verified *verify.Result
}

// errSkipped is returned for optional builds whose base font is missing.
var errSkipped = errors.New("skipped")

// build runs the merge pipeline for one output font: load the base font,
// merge the sources, rebuild the character map, rename the font, write
// it, and read it back.
func build(r *config.Recipe, b *config.Build, check bool) (*buildResult, error) {
	basePath := r.Path(b.Base)
	if b.Optional {
		if _, err := locate.Find(basePath); errors.Is(err, locate.ErrNotFound) {
			return nil, errSkipped
		}
	}
	target, _, err := r.Open(basePath)
	if err != nil {
		return nil, err
	}
	tracer().Infof("base font %s: %d glyphs, %d units per em",
		basePath, target.NumGlyphs(), target.UnitsPerEm)

	res := &buildResult{
		Output: r.Path(b.Output),
		Font:   target,
	}

	res.Report, err = r.Planner(target).Run(r.MergeTasks(b))
	if err != nil {
		return res, fmt.Errorf("merge: %w", err)
	}

	cm, err := cmapsynth.Synthesize(target, r.CMapOptions())
	if err != nil {
		return res, err
	}
	if err := cm.Check(); err != nil {
		return res, err
	}

	// validate has checked the rules
	rules, _ := r.RenameRules()
	target.Names, res.Names = rename.Apply(target.Names, rules)

	if dir := filepath.Dir(res.Output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return res, err
		}
	}
	if err := target.WriteFile(res.Output); err != nil {
		return res, err
	}
	tracer().Infof("wrote %s: %d glyphs", res.Output, target.NumGlyphs())

	if check {
		res.Verified, err = verify.File(res.Output, target)
		if err != nil {
			return res, err
		}
	}
	return res, nil
}
