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
	"fmt"
	"strings"
)

// Kind classifies recoverable problems.
type Kind int

// These are the kinds of diagnostics.
const (
	// KindConfig indicates a task which could not be run at all,
	// for example because the source font could not be opened.
	KindConfig Kind = iota

	// KindGlyph indicates a single glyph which could not be imported.
	KindGlyph
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindGlyph:
		return "glyph"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Diagnostic describes a recoverable problem during a merge.
type Diagnostic struct {
	Kind      Kind
	Task      string // the tag of the task
	Codepoint rune   // -1 if the problem is not specific to a code point
	Glyph     string // the source glyph name, if known
	Err       error
}

func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", d.Kind, d.Task)
	if d.Codepoint >= 0 {
		fmt.Fprintf(&b, " U+%04X", d.Codepoint)
	}
	if d.Glyph != "" {
		fmt.Fprintf(&b, " (%s)", d.Glyph)
	}
	fmt.Fprintf(&b, ": %v", d.Err)
	return b.String()
}

// Reason says why a code point offered by a source was not imported.
type Reason int

// These are the reasons for rejecting a code point.
const (
	// RejectSelector means the code point is outside the task's selector.
	RejectSelector Reason = iota

	// RejectPresent means the target already maps the code point.
	RejectPresent

	// RejectMissing means the source maps the code point to a glyph it
	// does not contain.
	RejectMissing

	numReasons
)

func (r Reason) String() string {
	switch r {
	case RejectSelector:
		return "not selected"
	case RejectPresent:
		return "already present"
	case RejectMissing:
		return "missing in source"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// TaskReport summarizes the outcome of one task.
type TaskReport struct {
	Tag  string
	Path string

	// Skipped is set if the task could not be run at all.
	Skipped bool

	// Imported counts the code points added to the target.
	Imported int

	// Components counts the unmapped glyphs imported because composite
	// glyphs refer to them.
	Components int

	// Rejected counts the code points which were not imported, by reason.
	Rejected [numReasons]int

	// Failed counts the code points whose glyph could not be imported.
	Failed int
}

func (tr *TaskReport) String() string {
	if tr.Skipped {
		return fmt.Sprintf("%s: skipped", tr.Tag)
	}
	var parts []string
	for r := Reason(0); r < numReasons; r++ {
		if n := tr.Rejected[r]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, r))
		}
	}
	s := fmt.Sprintf("%s: %d imported, %d components, %d failed",
		tr.Tag, tr.Imported, tr.Components, tr.Failed)
	if len(parts) > 0 {
		s += " (" + strings.Join(parts, ", ") + ")"
	}
	return s
}

// Report is the result of a merge run.
type Report struct {
	Tasks       []*TaskReport
	Diagnostics []Diagnostic
}

// Imported returns the total number of imported code points.
func (r *Report) Imported() int {
	var n int
	for _, tr := range r.Tasks {
		n += tr.Imported
	}
	return n
}

func (r *Report) addDiagnostic(d Diagnostic) {
	if d.Kind == KindConfig {
		tracer().Infof("%s", d)
	} else {
		tracer().Debugf("%s", d)
	}
	r.Diagnostics = append(r.Diagnostics, d)
}
