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

// Package preview renders a sample text with a font, for visual
// inspection of merged fonts.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// SampleText mixes kana, kanji, rarely used kanji and Latin characters.
const SampleText = `あのイーハトーヴォの
すきとおった風、
夏でも底に冷たさをもつ青いそら、
うつくしい森で飾られたモーリオ市、
郊外のぎらぎらひかる草の波。

祇辻飴葛蛸鯖鰯噌庖箸

ABCDEFGHIJKLM
abcdefghijklm
1234567890`

// Options control the rendering.
type Options struct {
	Text    string
	Size    float64 // font size in pixels
	Padding int     // margin around the text, in pixels
	Spacing int     // extra space between lines, in pixels

	Foreground, Background color.Color
}

// Default renders the sample text in black on white.
var Default = Options{
	Text:       SampleText,
	Size:       24,
	Padding:    20,
	Spacing:    10,
	Foreground: color.Black,
	Background: color.White,
}

// Render draws the text.  The image is just large enough to hold the
// text and the padding.
func Render(fontData []byte, opts Options) (*image.RGBA, error) {
	f, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    opts.Size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	defer face.Close()

	lines := strings.Split(opts.Text, "\n")
	m := face.Metrics()
	lineHeight := (m.Ascent + m.Descent).Ceil()

	var width fixed.Int26_6
	for _, line := range lines {
		width = max(width, font.MeasureString(face, line))
	}
	w := width.Ceil() + 2*opts.Padding
	h := len(lines)*lineHeight + (len(lines)-1)*opts.Spacing + 2*opts.Padding

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(opts.Foreground),
		Face: face,
	}
	for i, line := range lines {
		top := opts.Padding + i*(lineHeight+opts.Spacing)
		d.Dot = fixed.Point26_6{
			X: fixed.I(opts.Padding),
			Y: fixed.I(top) + m.Ascent,
		}
		d.DrawString(line)
	}
	return img, nil
}

// WriteFile renders the text with the given font file and writes the
// result as a PNG image.
func WriteFile(fontFile, out string, opts Options) error {
	data, err := os.ReadFile(fontFile)
	if err != nil {
		return err
	}
	img, err := Render(data, opts)
	if err != nil {
		return err
	}

	fd, err := os.Create(out)
	if err != nil {
		return err
	}
	err = png.Encode(fd, img)
	err2 := fd.Close()
	if err == nil {
		err = err2
	}
	return err
}

// Missing lists the characters of text which the font does not map, in
// order of first occurrence.  White space is ignored.
func Missing(fontData []byte, text string) ([]rune, error) {
	f, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	var buf sfnt.Buffer
	seen := make(map[rune]bool)
	var res []rune
	for _, r := range text {
		if seen[r] || r == ' ' || r == '\n' || r == '\t' {
			continue
		}
		seen[r] = true
		gid, err := f.GlyphIndex(&buf, r)
		if err != nil {
			return nil, fmt.Errorf("preview: %w", err)
		}
		if gid == 0 {
			res = append(res, r)
		}
	}
	return res, nil
}
