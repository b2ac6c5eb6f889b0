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
	"fmt"
	"image"
	"slices"

	"github.com/jetsetilly/gstexcache/gs/regs"
	"github.com/jetsetilly/gstexcache/gs/vram"
	"github.com/jetsetilly/gstexcache/logger"
)

// Source is a texture sampled by a draw.
type Source struct {
	Surface

	// the part of the texture that the draw can read. the texture of the
	// source covers only this region
	Region regs.SourceRegion
	LOD    regs.LOD

	// region repeat is in use on at least one axis
	Repeating bool

	// the source reads from a render target or depth buffer. TargetOffset is
	// the position of the source in the unscaled pixel space of the target
	Target       *Target
	TargetOffset image.Point

	// the source is a 16-bit view of a 32-bit target. the texture is the
	// target's texture and the renderer must shuffle the channels
	Shuffle bool

	// the texels of the source are palette indices. the palette texture must
	// be used to look up the colour
	PaletteIndices bool

	palette       *Palette
	fromHashCache *HashCacheEntry

	// the source was uploaded in full when it was created
	preloaded bool

	// the texture was assembled from more than one render target
	merged bool

	// the area of the texture in the pixel space of the layout
	texRect image.Rectangle

	// absolute pages of local memory covered by the source, and the pages
	// whose content has been uploaded
	pages    []uint32
	valid    [vram.MaxPages / 32]uint32
	complete bool

	// the area of the texture that has been uploaded
	ValidRect image.Rectangle
}

func (s *Source) String() string {
	switch {
	case s.Target != nil:
		return fmt.Sprintf("source %s (from %s)", s.Offset(), s.Target)
	case s.fromHashCache != nil:
		return fmt.Sprintf("source %s (hash cache)", s.Offset())
	case s.merged:
		return fmt.Sprintf("source %s (merged)", s.Offset())
	}
	return fmt.Sprintf("source %s", s.Offset())
}

// Palette returns the palette attached to the source. Nil if the source is not
// an indexed texture.
func (s *Source) Palette() *Palette {
	return s.palette
}

// FromHashCache returns true if the texture of the source is owned by the hash
// cache.
func (s *Source) FromHashCache() bool {
	return s.fromHashCache != nil
}

// HashCacheEntry returns the hash cache entry that owns the texture of the
// source. Nil if the texture is not owned by the hash cache.
func (s *Source) HashCacheEntry() *HashCacheEntry {
	return s.fromHashCache
}

// IsTargetBacked returns true if the source reads from a target.
func (s *Source) IsTargetBacked() bool {
	return s.Target != nil
}

// TexRect returns the area of the layout held by the texture.
func (s *Source) TexRect() image.Rectangle {
	return s.texRect
}

// Complete returns true if every page of the source has been uploaded.
func (s *Source) Complete() bool {
	return s.complete
}

func (s *Source) pageValid(p uint32) bool {
	return s.valid[p/32]&(1<<(p%32)) != 0
}

func (s *Source) setPageValid(p uint32) {
	s.valid[p/32] |= 1 << (p % 32)
}

func (s *Source) invalidatePage(p uint32) {
	s.valid[p/32] &^= 1 << (p % 32)
	s.complete = false
}

// clutMatch returns true if the CPU expanded texels of the source were created
// with the colour lookup table.
func (s *Source) clutMatch(clut []uint32) bool {
	if s.PaletteIndices || s.palette == nil {
		return true
	}
	return slices.Equal(s.palette.clut, clut)
}

// expand converts a raw pixel value from local memory into a texel of the
// source.
func (s *Source) expand(raw uint32) uint32 {
	inf := s.TEX0.PSM.Info()
	if inf.Indexed {
		if s.PaletteIndices || s.palette == nil {
			return raw
		}
		return s.palette.clut[int(raw)%len(s.palette.clut)]
	}
	return s.TEXA.Expand(s.TEX0.PSM, raw)
}

// newSource creates a source with no texture.
func newSource(tex0 regs.TEX0, texa regs.TEXA, region regs.SourceRegion, texRect image.Rectangle, lod regs.LOD, repeating bool) *Source {
	s := &Source{
		Surface: Surface{
			TEX0:         tex0,
			TEXA:         texa,
			UnscaledSize: texRect.Size(),
			Scale:        1,
			Is32Bit:      tex0.PSM.Is32Bit(),
		},
		Region:    region,
		LOD:       lod,
		Repeating: repeating,
		texRect:   texRect,
	}
	s.pages = s.Offset().Pages(texRect)
	s.updateEndBlock(texRect)
	return s
}

// updateSource uploads the pages of the source touched by the rectangle that
// haven't already been uploaded.
func (c *Cache) updateSource(s *Source, r image.Rectangle) {
	if s.complete || s.Target != nil || s.fromHashCache != nil {
		return
	}

	r = r.Intersect(s.texRect)
	if r.Empty() {
		return
	}

	off := s.Offset()
	straddle := off.BP%vram.BlocksPerPage != 0

	for _, p := range off.Pages(r) {
		if s.pageValid(p) {
			continue
		}

		// the memory page holds the head of one page of the buffer and, if
		// the base pointer isn't page aligned, the tail of the page before
		rel := off.RelativePage(p)
		uploads := []image.Rectangle{off.PageRect(rel).Intersect(s.texRect)}
		if straddle && rel > 0 {
			uploads = append(uploads, off.PageRect(rel-1).Intersect(s.texRect))
		}

		ok := true
		for _, u := range uploads {
			if !u.Empty() && !c.uploadSource(s, u) {
				ok = false
			}
		}

		// a page that failed to upload is tried again next time
		if ok {
			s.setPageValid(p)
		}
	}

	s.complete = true
	for _, p := range s.pages {
		if !s.pageValid(p) {
			s.complete = false
			break
		}
	}
}

// uploadSource copies the rectangle from local memory to the texture of the
// source. Returns false if the upload failed.
func (c *Cache) uploadSource(s *Source, r image.Rectangle) bool {
	w, h := r.Dx(), r.Dy()
	pix := make([]uint32, w*h)
	c.mem.ReadImage(s.Offset(), r, pix)
	for i := range pix {
		pix[i] = s.expand(pix[i])
	}

	if err := c.dev.Upload(s.Texture, r.Sub(s.texRect.Min), pix, w); err != nil {
		logger.Logf(c, "texcache", "upload to %s failed: %v", s, err)
		return false
	}

	s.ValidRect = s.ValidRect.Union(r)
	return true
}
