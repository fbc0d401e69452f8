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

// Hackline merges the glyphs of several TrueType fonts into one font.
//
// Usage:
//
//	hackline merge [-recipe file.yaml | -preset name] [flags]
//	hackline nerd [flags]
//	hackline preview [-o image.png] font.ttf
//	hackline info font.ttf ...
//
// The "hackline" preset merges the Japanese glyphs of LINE Seed JP into
// Hack.  The "nerd" preset adds Nerd Font icons to the result.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// tracer traces with key 'glyphmerge.cli'.
func tracer() tracing.Trace {
	return tracing.Select("glyphmerge.cli")
}

// traceKeys lists the tracers of the packages doing the work.
var traceKeys = []string{
	"glyphmerge.cli",
	"glyphmerge.font",
	"glyphmerge.merge",
	"glyphmerge.cmapsynth",
	"glyphmerge.rename",
	"glyphmerge.config",
	"glyphmerge.locate",
	"glyphmerge.verify",
}

type command struct {
	name  string
	usage string
	run   func(args []string) error
}

var commands = []command{
	{"merge", "merge glyphs as described by a recipe", runMerge},
	{"nerd", "add Nerd Font icons (same as merge -preset nerd)", runNerd},
	{"preview", "render a sample text with a font", runPreview},
	{"info", "show information about font files", runInfo},
}

func main() {
	initDisplay()
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	name := os.Args[1]
	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}
		err := cmd.run(os.Args[2:])
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		} else if err != nil {
			pterm.Error.Println(err)
			os.Exit(1)
		}
		return
	}
	pterm.Error.Printfln("unknown command %q", name)
	usage()
	os.Exit(2)
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s <command> [flags]\n\ncommands:\n", os.Args[0])
	for _, cmd := range commands {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", cmd.name, cmd.usage)
	}
}

// initDisplay sets up pterm.  Colors are only used on terminals.
func initDisplay() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		pterm.DisableStyling()
	}
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " INFO ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " ERROR ",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// initTracing routes the tracers to the Go standard logger, at the given
// level.
func initTracing(level string) error {
	switch strings.ToLower(level) {
	case "debug":
		level = "Debug"
	case "info":
		level = "Info"
	case "error":
		level = "Error"
	default:
		return fmt.Errorf("unknown trace level %q", level)
	}

	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
	}
	for _, key := range traceKeys {
		conf["trace."+key] = level
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return fmt.Errorf("cannot configure tracing: %w", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	tracer().Debugf("trace level is %s", level)
	return nil
}
