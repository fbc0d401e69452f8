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

package cmapsynth

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/hackline/glyphmerge"
	"github.com/hackline/glyphmerge/cmap"
	"github.com/hackline/glyphmerge/glyph"
	"github.com/hackline/glyphmerge/internal/debug"
	"github.com/hackline/glyphmerge/os2"
)

// testFont returns a font with BMP, private use and supplementary plane
// code points.
func testFont(t *testing.T) *glyphmerge.Font {
	t.Helper()
	f := debug.MakeFont(1000, "Test")
	for _, r := range []rune{'A', 'B', 0xE0A0, 0xF0000, 0x1F600} {
		debug.AddMapped(f, r, glyphName(r), debug.Rect(0, 0, 500, 500), 600)
	}
	info := &os2.Info{WeightClass: os2.WeightNormal, WidthClass: os2.WidthNormal}
	f.OS2 = os2.Table(info.Encode())
	return f
}

func glyphName(r rune) string {
	return fmt.Sprintf("g%04X", r)
}

func TestSynthesize(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "glyphmerge.cmapsynth")
	defer teardown()

	f := testFont(t)
	res, err := Synthesize(f, Options{})
	if err != nil {
		t.Fatal(err)
	}

	wantNarrow := cmap.Format4{'A': 1, 'B': 2, 0xE0A0: 3}
	if d := cmp.Diff(wantNarrow, res.Narrow); d != "" {
		t.Errorf("narrow (-want +got):\n%s", d)
	}
	wantWide := cmap.Format12{'A': 1, 'B': 2, 0xE0A0: 3, 0xF0000: 4, 0x1F600: 5}
	if d := cmp.Diff(wantWide, res.Wide); d != "" {
		t.Errorf("wide (-want +got):\n%s", d)
	}
	if err := res.Check(); err != nil {
		t.Error(err)
	}

	for _, key := range []cmap.Key{cmap.KeyWindowsBMP, cmap.KeyUnicodeBMP, cmap.KeyWindowsFull, cmap.KeyUnicodeFull} {
		sub, err := f.CMapTable.Get(key)
		if err != nil {
			t.Fatalf("%s: %v", key, err)
		}
		for r := range f.CMap {
			if r > 0xFFFF && key.EncodingID != 4 && key.EncodingID != 10 {
				continue
			}
			want := f.GlyphIndex()[f.CMap[r]]
			if got := sub.Lookup(r); got != want {
				t.Errorf("%s: U+%04X -> %d, want %d", key, r, got, want)
			}
		}
	}

	ur := f.OS2.UnicodeRange()
	if !ur.IsSet(os2.URPrivateUseArea) || !ur.IsSet(os2.URNonPlane0) {
		t.Errorf("unicode range bits not set: %08x", ur)
	}
	first, last := f.OS2.CharIndexRange()
	if first != 'A' || last != 0xFFFF {
		t.Errorf("char index range %04X-%04X", first, last)
	}
}

func TestSynthesizeIdempotent(t *testing.T) {
	f := testFont(t)
	f.CMapTable = cmap.Table{
		{PlatformID: 0, EncodingID: 5}: {0, 14, 0, 0, 0, 10, 0, 0, 0, 0},
	}
	if _, err := Synthesize(f, Options{MacRoman: true}); err != nil {
		t.Fatal(err)
	}
	first := f.CMapTable.Encode()
	os2First := bytes.Clone(f.OS2)

	if _, err := Synthesize(f, Options{MacRoman: true}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, f.CMapTable.Encode()) {
		t.Error("cmap changed on second run")
	}
	if !bytes.Equal(os2First, f.OS2) {
		t.Error("OS/2 changed on second run")
	}
	if _, ok := f.CMapTable[cmap.Key{PlatformID: 0, EncodingID: 5}]; !ok {
		t.Error("variation sequences subtable was dropped")
	}
}

func TestNarrowOnly(t *testing.T) {
	f := debug.MakeFont(1000, "")
	debug.AddMapped(f, 'x', "x", debug.Rect(0, 0, 1, 1), 500)
	res, err := Synthesize(f, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Wide != nil {
		t.Error("unexpected format 12 subtable")
	}
	if _, ok := f.CMapTable[cmap.KeyWindowsFull]; ok {
		t.Error("unexpected (3,10) subtable")
	}

	// an existing wide subtable is rebuilt, even without wide code points
	f.CMapTable[cmap.KeyWindowsFull] = cmap.Format12{'y': 7}.Encode(0)
	res, err = Synthesize(f, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(cmap.Format12{'x': 1}, res.Wide); d != "" {
		t.Errorf("wide (-want +got):\n%s", d)
	}
}

func TestMacRoman(t *testing.T) {
	f := debug.MakeFont(1000, "")
	debug.AddMapped(f, 'a', "a", debug.Rect(0, 0, 1, 1), 500)
	debug.AddMapped(f, 0xE9, "eacute", debug.Rect(0, 0, 1, 1), 500) // é is 0x8E in Mac Roman
	debug.AddMapped(f, 0x4E00, "uni4E00", debug.Rect(0, 0, 1, 1), 500)
	f.CMapTable = cmap.Table{cmap.KeyMacRoman: (&cmap.Format0{}).Encode(0)}

	res, err := Synthesize(f, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Mac == nil {
		t.Fatal("Mac Roman subtable missing")
	}
	if res.Mac.Data['a'] != 1 || res.Mac.Data[0x8E] != 2 {
		t.Errorf("unexpected Mac Roman data: a=%d, eacute=%d", res.Mac.Data['a'], res.Mac.Data[0x8E])
	}
	sub, err := f.CMapTable.Get(cmap.KeyMacRoman)
	if err != nil {
		t.Fatal(err)
	}
	if got := sub.Lookup(0xE9); got != glyph.ID(2) {
		t.Errorf("Lookup(é) = %d", got)
	}
}

func TestUnknownGlyph(t *testing.T) {
	f := debug.MakeFont(1000, "")
	f.CMap['q'] = "nowhere"
	_, err := Synthesize(f, Options{})
	var missing *glyphmerge.MissingGlyphError
	if !errors.As(err, &missing) || missing.Name != "nowhere" {
		t.Errorf("unexpected error %v", err)
	}
}

func TestCheck(t *testing.T) {
	res := &Result{
		Narrow: cmap.Format4{'A': 1},
		Wide:   cmap.Format12{'A': 2},
	}
	if err := res.Check(); !errors.Is(err, ErrInconsistent) {
		t.Errorf("expected ErrInconsistent, got %v", err)
	}
}

func TestLegacySubtables(t *testing.T) {
	f := debug.MakeFont(1000, "Test")
	debug.AddMapped(f, 'A', "A", debug.Rect(0, 0, 500, 500), 600)
	legacy := cmap.Format4{'A': 1}.Encode(0)
	f.CMapTable = cmap.Table{
		{PlatformID: 0, EncodingID: 0}: legacy,
		{PlatformID: 0, EncodingID: 1}: legacy,
		{PlatformID: 0, EncodingID: 6}: legacy,
		cmap.KeyWindowsSymbol:          legacy,
	}
	debug.AddMapped(f, 0x3042, "uni3042", debug.Rect(0, 0, 900, 900), 1000)

	res, err := Synthesize(f, Options{})
	if err != nil {
		t.Fatal(err)
	}

	for _, key := range []cmap.Key{{PlatformID: 0, EncodingID: 0}, {PlatformID: 0, EncodingID: 1}, {PlatformID: 0, EncodingID: 6}} {
		if _, ok := f.CMapTable[key]; ok {
			t.Errorf("stale subtable %s kept", key)
		}
	}
	sym, err := f.CMapTable.Get(cmap.KeyWindowsSymbol)
	if err != nil {
		t.Fatal(err)
	}
	if gid := sym.Lookup(0x3042); gid != 2 {
		t.Errorf("symbol subtable: U+3042 -> %d, want 2", gid)
	}

	best, err := f.CMapTable.GetBest()
	if err != nil {
		t.Fatal(err)
	}
	for r, want := range res.Narrow {
		if got := best.Lookup(rune(r)); got != want {
			t.Errorf("U+%04X -> %d, want %d", r, got, want)
		}
	}
}

func TestMissingOS2(t *testing.T) {
	f := debug.MakeFont(1000, "Test")
	debug.AddMapped(f, 'A', "A", debug.Rect(0, 0, 500, 500), 600)
	debug.AddMapped(f, 0xE0A0, "uniE0A0", debug.Rect(0, 0, 500, 500), 600)
	if f.OS2 != nil {
		t.Fatal("test font has an OS/2 table")
	}
	if _, err := Synthesize(f, Options{}); err != nil {
		t.Fatal(err)
	}

	buf := &bytes.Buffer{}
	if _, err := f.Write(buf); err != nil {
		t.Fatal(err)
	}
	g, err := glyphmerge.Read(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	info, err := os2.Read(g.OS2)
	if err != nil {
		t.Fatal(err)
	}
	if !info.UnicodeRange.IsSet(os2.URPrivateUseArea) {
		t.Errorf("private use bit not set: %08x", info.UnicodeRange)
	}
	if info.UnicodeRange.IsSet(os2.URNonPlane0) {
		t.Error("supplementary plane bit set for a BMP-only font")
	}
	if info.FirstCharIndex != 'A' || info.LastCharIndex != 0xE0A0 {
		t.Errorf("char index range %04X-%04X", info.FirstCharIndex, info.LastCharIndex)
	}
}
