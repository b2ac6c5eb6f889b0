// This file is part of gstexcache.
//
// gstexcache is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// gstexcache is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with gstexcache.  If not, see <https://www.gnu.org/licenses/>.

package texcache

import (
	"slices"

	"github.com/jetsetilly/gstexcache/gs/vram"
)

// SourceMap indexes sources by the pages of local memory they cover.
type SourceMap struct {
	list  []*Source
	pages [vram.MaxPages][]*Source
}

func newSourceMap() *SourceMap {
	return &SourceMap{}
}

// Len returns the number of sources in the map.
func (m *SourceMap) Len() int {
	return len(m.list)
}

// Add source to the map.
func (m *SourceMap) Add(s *Source) {
	m.list = append(m.list, s)
	for _, p := range s.pages {
		m.pages[p] = append(m.pages[p], s)
	}
}

// RemoveAt removes the source from the map.
func (m *SourceMap) RemoveAt(s *Source) {
	m.list = remove(m.list, s)
	for _, p := range s.pages {
		m.pages[p] = remove(m.pages[p], s)
	}
}

// Page returns the sources covering the page. The returned slice is a copy and
// the map can be safely changed while it is being used.
func (m *SourceMap) Page(p uint32) []*Source {
	return slices.Clone(m.pages[p%vram.MaxPages])
}

// All returns every source in the map, oldest first. The returned slice is a
// copy.
func (m *SourceMap) All() []*Source {
	return slices.Clone(m.list)
}

func remove[T comparable](l []T, v T) []T {
	if i := slices.Index(l, v); i >= 0 {
		return slices.Delete(l, i, i+1)
	}
	return l
}
