// glyphmerge - merge the glyph repertoires of TrueType fonts
// Copyright (C) 2022  Jochen Voss <voss@seehuhn.de>
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

package header

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hackline/glyphmerge/parser"
)

func TestWriteRead(t *testing.T) {
	head := make([]byte, 54)
	copy(head, []byte{0, 1, 0, 0, 0, 1, 0, 0, 0xDE, 0xAD, 0xBE, 0xEF})
	tables := map[string][]byte{
		"head": head,
		"cmap": []byte("cmap data"),
		"glyf": {},
		"name": {1, 2, 3, 4},
		"skip": nil,
	}

	buf := &bytes.Buffer{}
	n, err := Write(buf, ScalerTypeTrueType, tables)
	if err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	if n != int64(len(data)) {
		t.Errorf("Write returned %d, wrote %d bytes", n, len(data))
	}
	if len(data)%4 != 0 {
		t.Errorf("file length %d is not padded", len(data))
	}
	if sum := Checksum(data); sum != 0xB1B0AFBA {
		t.Errorf("file checksum %08x", sum)
	}

	r := bytes.NewReader(data)
	info, err := Read(r)
	if err != nil {
		t.Fatal(err)
	}
	if info.ScalerType != ScalerTypeTrueType {
		t.Errorf("wrong scaler type %08x", info.ScalerType)
	}
	if len(info.Toc) != 4 || !info.Has("head", "cmap", "glyf", "name") || info.Has("skip") {
		t.Errorf("wrong tables %v", info.Toc)
	}
	for name, want := range tables {
		if want == nil {
			continue
		}
		got, err := info.ReadTableBytes(r, name)
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(want, got); d != "" {
			t.Errorf("%s (-want +got):\n%s", name, d)
		}
		if rec := info.Toc[name]; name != "head" && rec.CheckSum != Checksum(want) {
			t.Errorf("%s: wrong checksum %08x", name, rec.CheckSum)
		}
	}

	_, err = info.ReadTableBytes(r, "GSUB")
	if !IsMissing(err) {
		t.Errorf("expected missing table, got %v", err)
	}
}

func TestTableOrder(t *testing.T) {
	tables := map[string][]byte{
		"post": {0, 0, 0, 1},
		"head": {0, 0, 0, 2},
		"glyf": {0, 0, 0, 3},
		"maxp": {0, 0, 0, 4},
	}
	buf := &bytes.Buffer{}
	if _, err := Write(buf, ScalerTypeTrueType, tables); err != nil {
		t.Fatal(err)
	}
	info, err := Read(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	order := []string{"head", "maxp", "glyf", "post"}
	for i := 1; i < len(order); i++ {
		if info.Toc[order[i-1]].Offset >= info.Toc[order[i]].Offset {
			t.Errorf("%s is not written before %s", order[i-1], order[i])
		}
	}
}

func TestReadErrors(t *testing.T) {
	buf := &bytes.Buffer{}
	_, _ = Write(buf, ScalerTypeTrueType, map[string][]byte{
		"cmap": {1, 2, 3, 4},
		"name": {5, 6, 7, 8},
	})
	good := buf.Bytes()

	ttc := append([]byte{}, good...)
	copy(ttc, "ttcf")
	if _, err := Read(bytes.NewReader(ttc)); !parser.IsUnsupported(err) {
		t.Errorf("font collection: %v", err)
	}

	badScaler := append([]byte{}, good...)
	copy(badScaler, "abcd")

	noTables := append([]byte{}, good...)
	noTables[4], noTables[5] = 0, 0

	badTag := append([]byte{}, good...)
	badTag[12] = 0x01

	// point the second table at the first one
	overlap := append([]byte{}, good...)
	copy(overlap[12+16+8:12+16+12], overlap[12+8:12+12])

	for _, data := range [][]byte{badScaler, noTables, badTag, overlap} {
		if _, err := Read(bytes.NewReader(data)); !parser.IsInvalid(err) {
			t.Errorf("%x: %v", data[:12], err)
		}
	}

	if _, err := Read(bytes.NewReader(good[:20])); err == nil {
		t.Error("truncated directory accepted")
	}
}
