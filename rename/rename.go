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

// Package rename rewrites the family, full and PostScript names of a font.
package rename

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/hackline/glyphmerge/name"
)

// tracer traces with key 'glyphmerge.rename'.
func tracer() tracing.Trace {
	return tracing.Select("glyphmerge.rename")
}

// Rule describes a change to a name string.
//
// If From occurs in the name, every occurrence is replaced by To.
// Otherwise, if From is empty, Suffix is appended.  Names which already
// contain Guard are left alone; if Guard is empty, To (or Suffix, for
// appending rules) is used as the guard.  This makes the rules safe to
// apply more than once.
type Rule struct {
	From   string `yaml:"from"`
	To     string `yaml:"to"`
	Suffix string `yaml:"suffix"`
	Guard  string `yaml:"guard"`
}

// IDs lists the name records which are rewritten.
var IDs = []name.ID{name.Family, name.FullName, name.PostScriptName}

// HackLine renames the Hack family.
var HackLine = []Rule{
	{From: "Hack", To: "HackLine"},
}

// NerdSuffix marks a font as patched with Nerd Font icons.
var NerdSuffix = []Rule{
	{From: "-Regular", To: " NF-Regular", Guard: "NF"},
	{From: "-Bold", To: " NF-Bold", Guard: "NF"},
	{Suffix: " NF", Guard: "NF"},
}

// Presets maps preset names, as used in recipes, to rule lists.
var Presets = map[string][]Rule{
	"hackline": HackLine,
	"nerd":     NerdSuffix,
}

// Diagnostic describes a name record which could not be rewritten.
type Diagnostic struct {
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
	NameID     name.ID
	Err        error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s (%d/%d/0x%04x): %v",
		d.NameID, d.PlatformID, d.EncodingID, d.LanguageID, d.Err)
}

// Apply returns a copy of records with the rules applied to the name
// records listed in IDs.  Records which cannot hold the new value, or
// whose encoding is not understood, are left unchanged and are reported.
// The input slice is not modified.
func Apply(records []name.Record, rules []Rule) ([]name.Record, []Diagnostic) {
	res := make([]name.Record, len(records))
	copy(res, records)

	var diag []Diagnostic
	for i := range res {
		rec := &res[i]
		if !isRenamed(rec.NameID) {
			continue
		}
		report := func(err error) {
			d := Diagnostic{
				PlatformID: rec.PlatformID,
				EncodingID: rec.EncodingID,
				LanguageID: rec.LanguageID,
				NameID:     rec.NameID,
				Err:        err,
			}
			tracer().Infof("name record %s", d)
			diag = append(diag, d)
		}
		if !rec.IsText() {
			report(errUndecoded)
			continue
		}

		postScript := rec.NameID == name.PostScriptName
		val := rec.Value
		for _, rule := range rules {
			if postScript {
				rule = rule.postScript()
			}
			val = rule.apply(val)
		}
		if val == rec.Value {
			continue
		}

		if _, err := name.EncodeValue(rec.PlatformID, rec.EncodingID, val); err != nil {
			report(fmt.Errorf("cannot encode %q: %w", val, err))
			continue
		}
		tracer().Debugf("%s: %q -> %q", rec.NameID, rec.Value, val)
		rec.Value = val
	}
	return res, diag
}

func isRenamed(id name.ID) bool {
	for _, x := range IDs {
		if x == id {
			return true
		}
	}
	return false
}

func (r Rule) apply(s string) string {
	guard := r.Guard
	if guard == "" {
		guard = r.To
		if r.From == "" {
			guard = r.Suffix
		}
	}
	if guard != "" && strings.Contains(s, guard) {
		return s
	}
	if r.From != "" {
		return strings.ReplaceAll(s, r.From, r.To)
	}
	return s + r.Suffix
}

// postScript returns the rule for PostScript names, which cannot contain
// spaces.
func (r Rule) postScript() Rule {
	strip := func(s string) string {
		return strings.ReplaceAll(s, " ", "")
	}
	return Rule{
		From:   strip(r.From),
		To:     strip(r.To),
		Suffix: strip(r.Suffix),
		Guard:  strip(r.Guard),
	}
}

var errUndecoded = errors.New("record uses an unsupported text encoding")
