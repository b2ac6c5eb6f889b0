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
	"image"
	"slices"

	"github.com/jetsetilly/gstexcache/curated"
	"github.com/jetsetilly/gstexcache/gpu"
	"github.com/jetsetilly/gstexcache/logger"
)

// maximum number of palettes of each size
const maxPalettes = 65535

// Palette is a colour lookup table shared by every source that uses it.
type Palette struct {
	clut []uint32
	tex  gpu.Texture
	refs int

	pm   *PaletteMap
	hash uint64
}

// CLUT returns the colours of the palette. The returned slice must not be
// changed.
func (p *Palette) CLUT() []uint32 {
	return p.clut
}

// Texture returns the palette as a texture one texel high. Nil if the palette
// has not been requested as a texture.
func (p *Palette) Texture() gpu.Texture {
	return p.tex
}

// Refs returns the number of references to the palette.
func (p *Palette) Refs() int {
	return p.refs
}

// Release a reference to the palette. The palette is destroyed when the last
// reference is released.
func (p *Palette) Release() {
	p.refs--
	if p.refs <= 0 {
		p.pm.remove(p)
	}
}

// PaletteMap is the collection of palettes, indexed by their content.
type PaletteMap struct {
	tc *Cache

	// one map for palettes of 16 colours and one for 256 colours
	maps  [2]map[uint64][]*Palette
	count [2]int
}

func newPaletteMap(tc *Cache) *PaletteMap {
	pm := &PaletteMap{tc: tc}
	pm.Clear()
	return pm
}

func mapIndex(n int) int {
	if n > 16 {
		return 1
	}
	return 0
}

// Len returns the number of palettes in the map.
func (pm *PaletteMap) Len() int {
	return pm.count[0] + pm.count[1]
}

// Clear destroys every palette in the map.
func (pm *PaletteMap) Clear() {
	for _, m := range pm.maps {
		for _, l := range m {
			for _, p := range l {
				if p.tex != nil {
					pm.tc.dev.DestroyTexture(p.tex)
					p.tex = nil
				}
			}
		}
	}
	pm.maps[0] = make(map[uint64][]*Palette)
	pm.maps[1] = make(map[uint64][]*Palette)
	pm.count = [2]int{}
}

// LookupPalette returns the palette with the colours of the lookup table,
// creating it if necessary. The reference count of the palette is increased.
func (pm *PaletteMap) LookupPalette(clut []uint32, needTexture bool) (*Palette, error) {
	idx := mapIndex(len(clut))
	h := hashTexels(clut)

	for _, p := range pm.maps[idx][h] {
		if slices.Equal(p.clut, clut) {
			if needTexture && p.tex == nil {
				if err := pm.createTexture(p); err != nil {
					return nil, err
				}
			}
			p.refs++
			return p, nil
		}
	}

	if pm.count[idx] >= maxPalettes {
		return nil, curated.Errorf(AllocationFailed, "palette limit reached")
	}

	p := &Palette{
		clut: slices.Clone(clut),
		refs: 1,
		pm:   pm,
		hash: h,
	}

	if needTexture {
		if err := pm.createTexture(p); err != nil {
			return nil, err
		}
	}

	pm.maps[idx][h] = append(pm.maps[idx][h], p)
	pm.count[idx]++

	return p, nil
}

func (pm *PaletteMap) createTexture(p *Palette) error {
	n := len(p.clut)
	tex, err := pm.tc.createTexture(n, 1, gpu.FormatColor)
	if err != nil {
		return err
	}
	if err := pm.tc.dev.Upload(tex, image.Rect(0, 0, n, 1), p.clut, n); err != nil {
		pm.tc.dev.DestroyTexture(tex)
		return curated.Errorf(AllocationFailed, err)
	}
	p.tex = tex
	return nil
}

func (pm *PaletteMap) remove(p *Palette) {
	idx := mapIndex(len(p.clut))
	l := pm.maps[idx][p.hash]
	if i := slices.Index(l, p); i >= 0 {
		l = slices.Delete(l, i, i+1)
		pm.count[idx]--
	}
	if len(l) == 0 {
		delete(pm.maps[idx], p.hash)
	} else {
		pm.maps[idx][p.hash] = l
	}
	if p.tex != nil {
		pm.tc.dev.DestroyTexture(p.tex)
		p.tex = nil
	}
}

// LookupPalette returns the palette for the colour lookup table. See
// PaletteMap.LookupPalette().
func (c *Cache) LookupPalette(clut []uint32, needTexture bool) (*Palette, error) {
	return c.palettes.LookupPalette(clut, needTexture)
}

// AttachPaletteToSource replaces the palette of the source with the palette
// for the colour lookup table.
func (c *Cache) AttachPaletteToSource(s *Source, clut []uint32, needTexture bool) error {
	p, err := c.palettes.LookupPalette(clut, needTexture)
	if err != nil {
		return err
	}
	if s.palette != nil {
		s.palette.Release()
	}
	s.palette = p
	logger.Logf(c, "texcache", "palette of %d colours attached to %s", len(clut), s)
	return nil
}
