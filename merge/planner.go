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

// Package merge copies glyphs from source fonts into a target font.
//
// Tasks are run in order.  A code point which is already mapped in the
// target, either by the target font itself or by an earlier task, is never
// overwritten.  Imported glyphs get fresh names, so that the glyph order
// of the target only grows.
package merge

import (
	"errors"
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"github.com/hackline/glyphmerge"
	"github.com/hackline/glyphmerge/placeholder"
	"github.com/hackline/glyphmerge/scale"
	"github.com/hackline/glyphmerge/selector"
	"github.com/hackline/glyphmerge/transcode"
)

// tracer traces with key 'glyphmerge.merge'.
func tracer() tracing.Trace {
	return tracing.Select("glyphmerge.merge")
}

// Task describes the glyphs to copy from one source font.
type Task struct {
	Source   *glyphmerge.Font
	Selector selector.Set

	// Tag is used to form glyph names when the preferred name of a glyph
	// is already taken.
	Tag string

	// Path is the file the source was loaded from, for diagnostics.
	Path string

	// Err records why the source could not be loaded.  A task with a
	// non-nil Err is skipped.
	Err error
}

// PlaceholderTask installs a generated glyph for a code point which would
// otherwise render as blank space.
type PlaceholderTask struct {
	Codepoint rune
	Params    placeholder.Params

	// Scope restricts the code points for which the placeholder is
	// installed.  A nil Scope allows all code points.
	Scope selector.Set
}

// PlaceholderTag is the tag used for the placeholder pseudo-task.
const PlaceholderTag = "placeholder"

// Planner merges glyphs into a target font.
type Planner struct {
	Target      *glyphmerge.Font
	Placeholder *PlaceholderTask

	// Workers is the number of goroutines used to convert outlines.
	// Values less than 2 convert outlines sequentially.  The result does
	// not depend on the number of workers.
	Workers int
}

// Run applies the tasks to the target font, in order.
//
// Problems with individual tasks or glyphs are recorded in the returned
// report and do not stop the merge.  A non-nil error indicates a
// problem which makes the target font unusable, for example a cyclic
// composite glyph or exhaustion of the glyph namespace.
func (pl *Planner) Run(tasks []Task) (*Report, error) {
	target := pl.Target
	if target == nil {
		return nil, errors.New("merge: no target font")
	}
	if target.UnitsPerEm == 0 {
		return nil, errors.New("merge: target font has no design grid")
	}
	if target.CMap == nil {
		target.CMap = make(map[rune]string)
	}

	report := &Report{}
	if pl.Placeholder != nil {
		if err := pl.installPlaceholder(report); err != nil {
			return report, err
		}
	}
	for i := range tasks {
		if err := pl.runTask(&tasks[i], report); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (pl *Planner) installPlaceholder(report *Report) error {
	p := pl.Placeholder
	target := pl.Target
	r := p.Codepoint

	tr := &TaskReport{Tag: PlaceholderTag}
	report.Tasks = append(report.Tasks, tr)

	if p.Scope != nil && !p.Scope.Contains(r) {
		tr.Rejected[RejectSelector]++
		return nil
	}
	if _, ok := target.CMap[r]; ok {
		tr.Rejected[RejectPresent]++
		return nil
	}

	o, m, err := placeholder.DashedSquare(target.UnitsPerEm, p.Params)
	if err != nil {
		tr.Skipped = true
		report.addDiagnostic(Diagnostic{
			Kind:      KindConfig,
			Task:      PlaceholderTag,
			Codepoint: r,
			Err:       err,
		})
		return nil
	}

	glyphName, err := Reserve(CandidateName(r), FallbackName(PlaceholderTag, r), target.HasGlyph)
	if err != nil {
		return err
	}
	if err := target.AddGlyph(glyphName, o, m); err != nil {
		return err
	}
	target.CMap[r] = glyphName
	tr.Imported++
	tracer().Debugf("placeholder U+%04X installed as %s", r, glyphName)
	return nil
}

// candidate is a code point accepted for import.
type candidate struct {
	r          rune
	sourceName string
	outline    *glyphmerge.Outline
	metric     glyphmerge.Metric
	err        error
}

func (pl *Planner) runTask(task *Task, report *Report) error {
	target := pl.Target
	tr := &TaskReport{Tag: task.Tag, Path: task.Path}
	report.Tasks = append(report.Tasks, tr)

	configError := func(err error) {
		tr.Skipped = true
		report.addDiagnostic(Diagnostic{
			Kind:      KindConfig,
			Task:      task.Tag,
			Codepoint: -1,
			Err:       err,
		})
	}
	switch {
	case task.Err != nil:
		configError(task.Err)
		if isFatal(task.Err) {
			return task.Err
		}
		return nil
	case task.Source == nil:
		configError(errors.New("no source font"))
		return nil
	case task.Source.UnitsPerEm == 0:
		configError(errors.New("source font has no design grid"))
		return nil
	case task.Tag == "":
		configError(errors.New("empty tag"))
		return nil
	}

	src := task.Source
	s := scale.Factor(target.UnitsPerEm, src.UnitsPerEm)
	tracer().Debugf("task %s: scale %d/%d", task.Tag, target.UnitsPerEm, src.UnitsPerEm)

	// Deciding which code points to import only depends on the code point
	// itself, so the order of iteration does not change the outcome.
	var accepted []*candidate
	for _, r := range src.Codepoints() {
		if !task.Selector.Contains(r) {
			tr.Rejected[RejectSelector]++
			continue
		}
		if _, present := target.CMap[r]; present {
			tr.Rejected[RejectPresent]++
			continue
		}
		sourceName := src.CMap[r]
		if _, ok := src.Glyphs[sourceName]; !ok {
			tr.Rejected[RejectMissing]++
			continue
		}
		accepted = append(accepted, &candidate{r: r, sourceName: sourceName})
	}

	convertAll(accepted, src, s, pl.Workers)

	imp := &importer{
		target: target,
		task:   task,
		scale:  s,
		memo:   make(map[string]string),
		tr:     tr,
	}
	for _, c := range accepted {
		err := imp.register(c)
		if isFatal(err) {
			return err
		} else if err != nil {
			tr.Failed++
			report.addDiagnostic(Diagnostic{
				Kind:      KindGlyph,
				Task:      task.Tag,
				Codepoint: c.r,
				Glyph:     c.sourceName,
				Err:       err,
			})
		}
	}

	tracer().Infof("%s", tr)
	return nil
}

// isFatal reports whether an error must abort the merge run.
func isFatal(err error) bool {
	return errors.Is(err, ErrNamespaceExhausted) ||
		errors.Is(err, glyphmerge.ErrCyclicComposite)
}

// importer registers converted glyphs in the target font.
type importer struct {
	target *glyphmerge.Font
	task   *Task
	scale  scale.Scale

	// memo maps source glyph names to the names of the copies in the
	// target, for glyphs imported by this task.
	memo map[string]string

	tr *TaskReport
}

// register adds the glyph for one accepted code point to the target.
func (imp *importer) register(c *candidate) error {
	if c.err != nil {
		return c.err
	}

	o := c.outline
	comp, isComposite := o.Data.(*glyphmerge.CompositeOutline)
	if isComposite {
		if err := imp.importComponents(c.sourceName); err != nil {
			return err
		}
		imp.renameComponents(comp)
	}

	glyphName, err := Reserve(CandidateName(c.r), FallbackName(imp.task.Tag, c.r), imp.target.HasGlyph)
	if err != nil {
		return err
	}
	if err := imp.target.AddGlyph(glyphName, o, c.metric); err != nil {
		return err
	}
	if isComposite {
		imp.updateBounds(glyphName)
	}
	imp.target.CMap[c.r] = glyphName
	if _, seen := imp.memo[c.sourceName]; !seen {
		imp.memo[c.sourceName] = glyphName
	}
	imp.tr.Imported++
	return nil
}

// renameComponents replaces source glyph names by target glyph names.
// All components must have been imported before.
func (imp *importer) renameComponents(comp *glyphmerge.CompositeOutline) {
	for i := range comp.Components {
		comp.Components[i].Name = imp.memo[comp.Components[i].Name]
	}
}

// updateBounds replaces the approximate bounding box of a converted
// composite glyph by the exact one.  All components must be in the
// target font.
func (imp *importer) updateBounds(glyphName string) {
	bbox, err := imp.target.CompositeBounds(glyphName)
	if err != nil {
		tracer().Infof("%s: keeping approximate bounding box of %s: %v",
			imp.task.Tag, glyphName, err)
		return
	}
	imp.target.Glyphs[glyphName].Rect16 = bbox
}

// convert scales the outline and metrics of one source glyph.
func convert(src *glyphmerge.Font, sourceName string, s scale.Scale) (*glyphmerge.Outline, glyphmerge.Metric, error) {
	o, err := transcode.Outline(src.Glyphs[sourceName], s)
	if err != nil {
		return nil, glyphmerge.Metric{}, fmt.Errorf("glyph %q: %w", sourceName, err)
	}
	// missing metrics mean zero advance and zero side bearing
	m := transcode.Metric(src.Metrics[sourceName], s)
	return o, m, nil
}
