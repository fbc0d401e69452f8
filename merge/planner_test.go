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
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"seehuhn.de/go/postscript/funit"

	"github.com/hackline/glyphmerge"
	"github.com/hackline/glyphmerge/glyf"
	"github.com/hackline/glyphmerge/internal/debug"
	"github.com/hackline/glyphmerge/placeholder"
	"github.com/hackline/glyphmerge/selector"
)

func TestScenarioScale(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphmerge.merge")
	defer teardown()

	target := debug.MakeFont(2048, "Target")
	source := debug.MakeFont(1000, "Source")
	debug.AddMapped(source, 0x3042, "g1", debug.Polygon(
		glyf.Point{X: 100, Y: 100, OnCurve: true},
		glyf.Point{X: 200, Y: 100, OnCurve: true},
		glyf.Point{X: 200, Y: 200, OnCurve: true},
	), 1000)

	before := target.NumGlyphs()
	pl := &Planner{Target: target}
	report, err := pl.Run([]Task{{
		Source:   source,
		Selector: selector.Set{{Low: 0x3000, High: 0x30FF}},
		Tag:      "jp",
	}})
	require.NoError(t, err)

	assert.Equal(t, before+1, target.NumGlyphs())
	glyphName, ok := target.CMap[0x3042]
	require.True(t, ok)
	assert.Equal(t, "uni3042", glyphName)

	sd := target.Glyphs[glyphName].Data.(*glyf.SimpleUnpacked)
	assert.Equal(t, []glyf.Contour{{
		{X: 205, Y: 205, OnCurve: true},
		{X: 410, Y: 205, OnCurve: true},
		{X: 410, Y: 410, OnCurve: true},
	}}, sd.Contours)
	assert.Equal(t, funit.Rect16{LLx: 205, LLy: 205, URx: 410, URy: 410},
		target.Glyphs[glyphName].Rect16)
	assert.Equal(t, uint16(2048), target.Metrics[glyphName].Advance)

	require.Len(t, report.Tasks, 1)
	assert.Equal(t, 1, report.Tasks[0].Imported)
	assert.Empty(t, report.Diagnostics)
}

// square returns a source font mapping each code point to a square of the
// given size.
func square(size funit.Int16, cps ...rune) *glyphmerge.Font {
	f := debug.MakeFont(1000, "")
	for _, r := range cps {
		debug.AddMapped(f, r, fmt.Sprintf("s%X", r), debug.Rect(0, 0, size, size), 1000)
	}
	return f
}

func TestCollisionPriority(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphmerge.merge")
	defer teardown()

	all := selector.Set{{Low: 0, High: 0x10FFFF}}
	for _, workers := range []int{1, 4} {
		target := debug.MakeFont(1000, "")
		pl := &Planner{Target: target, Workers: workers}
		report, err := pl.Run([]Task{
			{Source: square(100, 0x4E00, 0x4E01), Selector: all, Tag: "a"},
			{Source: square(200, 0x4E01, 0x4E02), Selector: all, Tag: "b"},
		})
		require.NoError(t, err)

		bbox := target.Glyphs[target.CMap[0x4E01]].Rect16
		assert.Equal(t, funit.Int16(100), bbox.URx, "first task must win")
		assert.Equal(t, funit.Int16(200), target.Glyphs[target.CMap[0x4E02]].URx)
		assert.Equal(t, 1, report.Tasks[1].Rejected[RejectPresent])
		assert.Equal(t, 1, report.Tasks[1].Imported)
	}
}

func TestNoClobber(t *testing.T) {
	target := debug.MakeFont(1000, "")
	debug.AddMapped(target, 0x3042, "a-hiragana", debug.Rect(0, 0, 10, 10), 1000)
	debug.AddMapped(target, 0x3000, "ideographicspace", nil, 1000)

	pl := &Planner{
		Target:      target,
		Placeholder: &PlaceholderTask{Codepoint: 0x3000, Params: placeholder.Default},
	}
	report, err := pl.Run([]Task{{
		Source:   square(500, 0x3000, 0x3042, 0x3044),
		Selector: selector.Japanese,
		Tag:      "jp",
	}})
	require.NoError(t, err)

	assert.Equal(t, "a-hiragana", target.CMap[0x3042])
	assert.Equal(t, "ideographicspace", target.CMap[0x3000])
	assert.Equal(t, "uni3044", target.CMap[0x3044])
	assert.Equal(t, 1, report.Tasks[0].Rejected[RejectPresent], "placeholder")
	assert.Equal(t, 2, report.Tasks[1].Rejected[RejectPresent])
}

func TestNamespaceUniqueness(t *testing.T) {
	target := debug.MakeFont(1000, "")
	// an unmapped glyph which uses the preferred name
	require.NoError(t, target.AddGlyph("uni3042", nil, glyphmerge.Metric{}))
	require.NoError(t, target.AddGlyph("jp_3042", nil, glyphmerge.Metric{}))

	all := selector.Set{{Low: 0x3000, High: 0x30FF}}
	pl := &Planner{Target: target}
	_, err := pl.Run([]Task{
		{Source: square(100, 0x3042, 0x3044), Selector: all, Tag: "jp"},
	})
	require.NoError(t, err)

	assert.Equal(t, "jp_3042.1", target.CMap[0x3042])
	assert.Equal(t, "uni3044", target.CMap[0x3044])

	seen := make(map[string]bool)
	for _, n := range target.GlyphOrder {
		assert.False(t, seen[n], "duplicate glyph name %s", n)
		seen[n] = true
	}
	for n := range target.Glyphs {
		assert.True(t, seen[n], "glyph %s not in glyph order", n)
	}
	for _, n := range target.CMap {
		assert.Contains(t, target.Glyphs, n)
	}
}

func TestFallThrough(t *testing.T) {
	target := debug.MakeFont(1000, "")

	// task A maps U+4E2D, but the glyph is missing
	a := debug.MakeFont(1000, "")
	a.CMap[0x4E2D] = "ghost"
	b := square(300, 0x4E2D)

	pl := &Planner{Target: target}
	report, err := pl.Run([]Task{
		{Source: a, Selector: selector.Japanese, Tag: "a"},
		{Source: b, Selector: selector.Japanese, Tag: "b"},
	})
	require.NoError(t, err)

	require.Contains(t, target.CMap, rune(0x4E2D))
	assert.Equal(t, funit.Int16(300), target.Glyphs[target.CMap[0x4E2D]].URx)
	assert.Equal(t, 1, report.Tasks[0].Rejected[RejectMissing])
	assert.Equal(t, 1, report.Tasks[1].Imported)
}

func TestPlaceholder(t *testing.T) {
	target := debug.MakeFont(2048, "")
	pl := &Planner{
		Target: target,
		Placeholder: &PlaceholderTask{
			Codepoint: 0x3000,
			Params:    placeholder.Default,
			Scope:     selector.Japanese,
		},
	}
	report, err := pl.Run([]Task{
		{Source: square(100, 0x3000), Selector: selector.Japanese, Tag: "jp"},
	})
	require.NoError(t, err)

	glyphName := target.CMap[0x3000]
	assert.Equal(t, "uni3000", glyphName)
	assert.Equal(t, uint16(2048), target.Metrics[glyphName].Advance)
	sd, ok := target.Glyphs[glyphName].Data.(*glyf.SimpleUnpacked)
	require.True(t, ok)
	assert.Len(t, sd.Contours, 8)

	assert.Equal(t, PlaceholderTag, report.Tasks[0].Tag)
	assert.Equal(t, 1, report.Tasks[0].Imported)
	assert.Equal(t, 1, report.Tasks[1].Rejected[RejectPresent])
}

func TestPlaceholderOutOfScope(t *testing.T) {
	target := debug.MakeFont(2048, "")
	pl := &Planner{
		Target: target,
		Placeholder: &PlaceholderTask{
			Codepoint: 0x3000,
			Params:    placeholder.Default,
			Scope:     selector.Nerd,
		},
	}
	report, err := pl.Run(nil)
	require.NoError(t, err)
	assert.NotContains(t, target.CMap, rune(0x3000))
	assert.Equal(t, 1, report.Tasks[0].Rejected[RejectSelector])
}

func TestSkippedTasks(t *testing.T) {
	target := debug.MakeFont(1000, "")
	pl := &Planner{Target: target}
	errOpen := errors.New("file not found")
	report, err := pl.Run([]Task{
		{Tag: "missing", Path: "nowhere.ttf", Err: errOpen},
		{Tag: "nil"},
		{Source: square(100, 0x41), Selector: selector.Set{{Low: 0x41, High: 0x41}}, Tag: "ok"},
	})
	require.NoError(t, err)

	require.Len(t, report.Diagnostics, 2)
	assert.Equal(t, KindConfig, report.Diagnostics[0].Kind)
	assert.ErrorIs(t, report.Diagnostics[0].Err, errOpen)
	assert.True(t, report.Tasks[0].Skipped)
	assert.True(t, report.Tasks[1].Skipped)
	assert.Equal(t, 1, report.Tasks[2].Imported)
	assert.Equal(t, "uni0041", target.CMap['A'])
}

func TestMalformedGlyph(t *testing.T) {
	target := debug.MakeFont(1000, "")
	source := square(100, 0x3041, 0x3043)
	source.Glyphs["s3041"] = &glyphmerge.Outline{
		Data: &glyphmerge.MalformedOutline{Err: errors.New("bad flags")},
	}

	pl := &Planner{Target: target}
	report, err := pl.Run([]Task{{Source: source, Selector: selector.Japanese, Tag: "jp"}})
	require.NoError(t, err)

	assert.NotContains(t, target.CMap, rune(0x3041))
	assert.Contains(t, target.CMap, rune(0x3043))
	require.Len(t, report.Diagnostics, 1)
	d := report.Diagnostics[0]
	assert.Equal(t, KindGlyph, d.Kind)
	assert.Equal(t, rune(0x3041), d.Codepoint)
	assert.Equal(t, 1, report.Tasks[0].Failed)
}

// accented returns a font with a composite glyph for U+00C1 built from
// "A" and "acute", where "A" is also mapped to U+0041.
func accented() *glyphmerge.Font {
	f := debug.MakeFont(1000, "")
	debug.AddMapped(f, 'A', "A", debug.Rect(0, 0, 500, 700), 600)
	if err := f.AddGlyph("acute", debug.Rect(0, 0, 100, 100), glyphmerge.Metric{}); err != nil {
		panic(err)
	}
	debug.AddMapped(f, 0xC1, "Aacute", debug.Composite(funit.Rect16{},
		debug.Part{Name: "A"},
		debug.Part{Name: "acute", Dx: 200, Dy: 750}), 600)
	return f
}

func TestCompositeImport(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphmerge.merge")
	defer teardown()

	target := debug.MakeFont(2000, "")
	pl := &Planner{Target: target}
	report, err := pl.Run([]Task{{
		Source:   accented(),
		Selector: selector.Set{{Low: 0x41, High: 0x41}, {Low: 0xC1, High: 0xC1}},
		Tag:      "x",
	}})
	require.NoError(t, err)

	o := target.Glyphs[target.CMap[0xC1]]
	comp, ok := o.Data.(*glyphmerge.CompositeOutline)
	require.True(t, ok)
	require.Len(t, comp.Components, 2)
	assert.Equal(t, "uni0041", comp.Components[0].Name)
	assert.Equal(t, "x.acute", comp.Components[1].Name)
	dx, dy := comp.Components[1].Offset()
	assert.Equal(t, funit.Int16(400), dx)
	assert.Equal(t, funit.Int16(1500), dy)
	assert.Equal(t, funit.Rect16{LLx: 0, LLy: 0, URx: 1000, URy: 1700}, o.Rect16)

	assert.Equal(t, 2, report.Tasks[0].Imported)
	assert.Equal(t, 1, report.Tasks[0].Components)
	assert.NotContains(t, target.CMap, rune(0))
	require.NoError(t, target.CheckComposites())
}

func TestCompositeMissingComponent(t *testing.T) {
	source := accented()
	delete(source.Glyphs, "acute")

	target := debug.MakeFont(1000, "")
	before := target.NumGlyphs()
	pl := &Planner{Target: target}
	report, err := pl.Run([]Task{{
		Source:   source,
		Selector: selector.Set{{Low: 0xC1, High: 0xC1}},
		Tag:      "x",
	}})
	require.NoError(t, err)

	assert.Equal(t, before, target.NumGlyphs(), "target must be unchanged")
	require.Len(t, report.Diagnostics, 1)
	var missing *glyphmerge.MissingGlyphError
	assert.ErrorAs(t, report.Diagnostics[0].Err, &missing)
}

func TestCyclicSourceIsFatal(t *testing.T) {
	source := debug.MakeFont(1000, "")
	debug.AddMapped(source, 0x41, "a", debug.Composite(funit.Rect16{}, debug.Part{Name: "b"}), 500)
	require.NoError(t, source.AddGlyph("b",
		debug.Composite(funit.Rect16{}, debug.Part{Name: "a"}), glyphmerge.Metric{}))

	pl := &Planner{Target: debug.MakeFont(1000, "")}
	_, err := pl.Run([]Task{{
		Source:   source,
		Selector: selector.Set{{Low: 0x41, High: 0x41}},
		Tag:      "x",
	}})
	assert.ErrorIs(t, err, glyphmerge.ErrCyclicComposite)
}

func TestCyclicLoadErrorIsFatal(t *testing.T) {
	loadErr := fmt.Errorf("loop.ttf: %w", glyphmerge.ErrCyclicComposite)
	pl := &Planner{Target: debug.MakeFont(1000, "")}
	report, err := pl.Run([]Task{
		{Err: errors.New("missing.ttf: not found"), Tag: "a"},
		{Err: loadErr, Tag: "b"},
	})
	assert.ErrorIs(t, err, glyphmerge.ErrCyclicComposite)
	require.NotNil(t, report)
	require.Len(t, report.Tasks, 2)
	assert.True(t, report.Tasks[0].Skipped)
	assert.True(t, report.Tasks[1].Skipped)
}

func TestWorkersGiveSameResult(t *testing.T) {
	var cps []rune
	for r := rune(0x4E00); r < 0x4E00+200; r++ {
		cps = append(cps, r)
	}
	run := func(workers int) *glyphmerge.Font {
		target := debug.MakeFont(2048, "")
		pl := &Planner{Target: target, Workers: workers}
		_, err := pl.Run([]Task{{Source: square(700, cps...), Selector: selector.Japanese, Tag: "jp"}})
		require.NoError(t, err)
		return target
	}
	seq := run(1)
	par := run(8)
	assert.Equal(t, seq.GlyphOrder, par.GlyphOrder)
	assert.Equal(t, seq.CMap, par.CMap)
	assert.Equal(t, seq.Metrics, par.Metrics)
}
