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
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pterm/pterm"

	"github.com/hackline/glyphmerge"
	"github.com/hackline/glyphmerge/cmap"
	"github.com/hackline/glyphmerge/config"
	"github.com/hackline/glyphmerge/merge"
	"github.com/hackline/glyphmerge/name"
	"github.com/hackline/glyphmerge/os2"
	"github.com/hackline/glyphmerge/preview"
)

func runMerge(args []string) error {
	return mergeWith(args, "")
}

func runNerd(args []string) error {
	return mergeWith(args, "nerd")
}

func mergeWith(args []string, defaultPreset string) error {
	fs := flag.NewFlagSet("merge", flag.ContinueOnError)
	recipeFile := fs.String("recipe", "", "YAML recipe `file`")
	presetName := fs.String("preset", defaultPreset,
		"built-in recipe ("+strings.Join(config.PresetNames(), ", ")+")")
	dir := fs.String("dir", ".", "base `directory` for the paths of a built-in recipe")
	workers := fs.Int("workers", 0, "number of goroutines converting outlines (overrides the recipe)")
	noVerify := fs.Bool("no-verify", false, "do not read back the written fonts")
	traceLevel := fs.String("trace", "Error", "trace level [Debug|Info|Error]")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := initTracing(*traceLevel); err != nil {
		return err
	}

	var r *config.Recipe
	var err error
	switch {
	case *recipeFile != "":
		r, err = config.Load(*recipeFile)
	case *presetName != "":
		r, err = config.Preset(*presetName, *dir)
	default:
		r, err = config.Preset("hackline", *dir)
	}
	if err != nil {
		return err
	}
	if *workers > 0 {
		r.Workers = *workers
	}

	built := 0
	for i := range r.Builds {
		b := &r.Builds[i]
		res, err := build(r, b, !*noVerify)
		if errors.Is(err, errSkipped) {
			pterm.Info.Printfln("%s: base font %s not found, skipped", b.Output, b.Base)
			continue
		}
		if res != nil {
			showReport(res)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", b.Output, err)
		}
		built++
	}
	if built == 0 {
		return errors.New("no font was built")
	}
	return nil
}

func showReport(res *buildResult) {
	pterm.DefaultSection.Println(res.Output)
	if res.Report != nil {
		data := pterm.TableData{{"task", "imported", "components", "present", "missing", "failed", "source"}}
		for _, tr := range res.Report.Tasks {
			if tr.Skipped {
				data = append(data, []string{tr.Tag, "skipped", "", "", "", "", tr.Path})
				continue
			}
			data = append(data, []string{
				tr.Tag,
				fmt.Sprint(tr.Imported),
				fmt.Sprint(tr.Components),
				fmt.Sprint(tr.Rejected[merge.RejectPresent]),
				fmt.Sprint(tr.Rejected[merge.RejectMissing]),
				fmt.Sprint(tr.Failed),
				tr.Path,
			})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()

		for _, d := range res.Report.Diagnostics {
			if d.Kind == merge.KindConfig {
				pterm.Warning.Println(d)
			}
		}
		if n := countKind(res.Report, merge.KindGlyph); n > 0 {
			pterm.Warning.Printfln("%d glyphs could not be imported (use -trace Debug for details)", n)
		}
	}
	for _, d := range res.Names {
		pterm.Warning.Printfln("name record %s", d)
	}
	if res.Font != nil {
		pterm.Info.Printfln("%d glyphs, family %q", res.Font.NumGlyphs(), res.Font.NameRecord(name.Family))
	}
	if res.Verified != nil {
		pterm.Success.Printfln("verified %d code points", res.Verified.Checked)
	}
}

func countKind(r *merge.Report, kind merge.Kind) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

func runPreview(args []string) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	out := fs.String("o", "", "output `file` (default: <font>.png)")
	text := fs.String("text", "", "text to render (default: a Japanese sample)")
	size := fs.Float64("size", preview.Default.Size, "font size in pixels")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("preview needs exactly one font file")
	}
	fontFile := fs.Arg(0)

	opts := preview.Default
	opts.Size = *size
	if *text != "" {
		opts.Text = *text
	}
	outFile := *out
	if outFile == "" {
		outFile = strings.TrimSuffix(fontFile, filepath.Ext(fontFile)) + ".png"
	}

	data, err := os.ReadFile(fontFile)
	if err != nil {
		return err
	}
	missing, err := preview.Missing(data, opts.Text)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		pterm.Warning.Printfln("%d characters not in font: %s", len(missing), string(missing))
	}
	if err := preview.WriteFile(fontFile, outFile, opts); err != nil {
		return err
	}
	pterm.Success.Printfln("wrote %s", outFile)
	return nil
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("no font files given")
	}
	for _, fname := range fs.Args() {
		f, err := glyphmerge.ReadFile(fname)
		if err != nil {
			return err
		}
		showInfo(fname, f)
	}
	return nil
}

func showInfo(fname string, f *glyphmerge.Font) {
	pterm.DefaultSection.Println(fname)
	pterm.Printfln("units per em: %d", f.UnitsPerEm)
	pterm.Printfln("glyphs:       %d", f.NumGlyphs())
	pterm.Printfln("code points:  %d", len(f.CMap))
	if f.OS2 != nil {
		lines, err := describeOS2(f.OS2)
		if err != nil {
			pterm.Warning.Printfln("OS/2 table: %v", err)
		}
		for _, l := range lines {
			pterm.Println(l)
		}
	}

	var keys []cmap.Key
	for key := range f.CMapTable {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].PlatformID != keys[j].PlatformID {
			return keys[i].PlatformID < keys[j].PlatformID
		}
		return keys[i].EncodingID < keys[j].EncodingID
	})
	for _, key := range keys {
		data := f.CMapTable[key]
		format := uint16(data[0])<<8 | uint16(data[1])
		pterm.Printfln("cmap %-6s  format %d, %d bytes", key, format, len(data))
	}

	data := pterm.TableData{{"platform", "language", "name", "value"}}
	for _, rec := range f.Names {
		val := rec.Value
		if !rec.IsText() {
			val = fmt.Sprintf("<%d bytes>", len(rec.Raw))
		}
		data = append(data, []string{
			fmt.Sprintf("%d/%d", rec.PlatformID, rec.EncodingID),
			fmt.Sprintf("0x%04x", rec.LanguageID),
			rec.NameID.String(),
			val,
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// describeOS2 summarizes the fields of an OS/2 table which a merge may
// change or depend on.
func describeOS2(data os2.Table) ([]string, error) {
	info, err := os2.Read(data)
	if err != nil {
		return nil, err
	}
	ur := info.UnicodeRange
	return []string{
		fmt.Sprintf("weight:       %s, width %s", info.WeightClass, info.WidthClass),
		fmt.Sprintf("char range:   U+%04X-U+%04X", info.FirstCharIndex, info.LastCharIndex),
		fmt.Sprintf("private use:  %t", ur.IsSet(os2.URPrivateUseArea)),
		fmt.Sprintf("beyond BMP:   %t", ur.IsSet(os2.URNonPlane0)),
	}, nil
}
