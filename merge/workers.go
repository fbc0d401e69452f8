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
	"sync"

	"github.com/hackline/glyphmerge"
	"github.com/hackline/glyphmerge/scale"
)

// convertAll converts the outlines and metrics of all candidates.
// The source font is only read, so the conversions can run in parallel.
// Results are stored in the candidates, so the order of completion does
// not matter.
func convertAll(cc []*candidate, src *glyphmerge.Font, s scale.Scale, workers int) {
	if workers < 2 || len(cc) < 2 {
		for _, c := range cc {
			c.outline, c.metric, c.err = convert(src, c.sourceName, s)
		}
		return
	}

	jobs := make(chan *candidate)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for c := range jobs {
				c.outline, c.metric, c.err = convert(src, c.sourceName, s)
			}
		}()
	}
	for _, c := range cc {
		jobs <- c
	}
	close(jobs)
	wg.Wait()
}
