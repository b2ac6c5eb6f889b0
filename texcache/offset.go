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

	"github.com/jetsetilly/gstexcache/gs/psm"
	"github.com/jetsetilly/gstexcache/gs/vram"
)

// maximum number of memoised surface offsets
const maxSurfaceOffsets = 65535

// number of bits in a block
const blockBits = vram.BlockSize * 8

// SurfaceOffsetKeyElem is one half of a SurfaceOffsetKey.
type SurfaceOffsetKeyElem struct {
	PSM  psm.PSM
	BP   uint32
	BW   uint32
	Rect image.Rectangle
}

func (e SurfaceOffsetKeyElem) offset() vram.Offset {
	return vram.NewOffset(e.BP, e.BW, e.PSM)
}

// SurfaceOffsetKey is the pair of surfaces used by ComputeSurfaceOffset().
type SurfaceOffsetKey struct {
	A SurfaceOffsetKeyElem
	B SurfaceOffsetKeyElem
}

// SurfaceOffset is the result of ComputeSurfaceOffset().
type SurfaceOffset struct {
	Valid bool

	// the part of B's rectangle that shares memory with A's rectangle, in
	// B's pixel space
	B2AOffset image.Rectangle
}

// ComputeSurfaceOffset returns the area of surface B covered by surface A.
// Results are memoised.
func (c *Cache) ComputeSurfaceOffset(key SurfaceOffsetKey) SurfaceOffset {
	if so, ok := c.offsets.Get(key); ok {
		return so
	}
	so := computeSurfaceOffset(key)
	c.offsets.Add(key, so)
	return so
}

// ComputeSurfaceOffsetForTarget is a convenience form of ComputeSurfaceOffset
// where surface B is the valid area of the target.
func (c *Cache) ComputeSurfaceOffsetForTarget(off vram.Offset, r image.Rectangle, t *Target) SurfaceOffset {
	return c.ComputeSurfaceOffset(SurfaceOffsetKey{
		A: SurfaceOffsetKeyElem{PSM: off.PSM, BP: off.BP, BW: off.BW, Rect: r},
		B: SurfaceOffsetKeyElem{PSM: t.TEX0.PSM, BP: t.TEX0.TBP0, BW: t.TEX0.TBW, Rect: t.Valid},
	})
}

func computeSurfaceOffset(key SurfaceOffsetKey) SurfaceOffset {
	a := key.A.offset()
	b := key.B.offset()

	ar, ok := a.BlockRange(key.A.Rect)
	if !ok {
		return SurfaceOffset{}
	}
	br, ok := b.BlockRange(key.B.Rect)
	if !ok || !ar.Overlaps(br) {
		return SurfaceOffset{}
	}

	// place A in the same lap of memory as B
	b0, b1 := br.Start, br.UnwrappedEnd()
	a0 := ar.Start
	for _, lap := range []int64{0, vram.MaxBlocks, -vram.MaxBlocks} {
		s := int64(ar.Start) + lap
		e := s + int64(ar.Len()) - 1
		if s <= int64(b1) && int64(b0) <= e {
			a0 = uint32(max(s, int64(b0)))
			b1 = uint32(min(e, int64(b1)))
			break
		}
	}

	start := (a0 % vram.MaxBlocks) * blockBits
	end := (b1%vram.MaxBlocks)*blockBits + blockBits - 1

	r := b.SpanRect(start, end).Intersect(key.B.Rect)
	return SurfaceOffset{
		Valid:     !r.Empty(),
		B2AOffset: r,
	}
}

// floorDiv divides rounding towards negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// translateRect moves the rectangle of the source layout into the pixel space
// of the destination layout. The translation is by whole pages and is only
// possible if the two layouts arrange pixels in the same way and the pages
// covered by the rectangle remain in the same arrangement.
func translateRect(src, dst vram.Offset, r image.Rectangle) (image.Rectangle, bool) {
	if r.Empty() || !src.Translatable(dst) {
		return image.Rectangle{}, false
	}

	// signed distance between the base pointers in pages
	d := int(src.BP) - int(dst.BP)
	if d > vram.MaxBlocks/2 {
		d -= vram.MaxBlocks
	} else if d <= -vram.MaxBlocks/2 {
		d += vram.MaxBlocks
	}
	d /= vram.BlocksPerPage

	inf := src.PSM.Info()
	spw := src.PagesWide()
	dpw := dst.PagesWide()

	px0 := r.Min.X / inf.PageWidth
	px1 := (r.Max.X - 1) / inf.PageWidth
	py0 := r.Min.Y / inf.PageHeight
	py1 := (r.Max.Y - 1) / inf.PageHeight

	if px1 >= spw {
		return image.Rectangle{}, false
	}

	var npx, npy int
	if spw == dpw {
		dx := d % dpw
		if dx < 0 {
			dx += dpw
		}
		if px1+dx >= dpw {
			return image.Rectangle{}, false
		}
		npx = px0 + dx
		npy = py0 + floorDiv(d-dx, dpw)
	} else {
		// with different widths only a single row of pages keeps its shape
		if py0 != py1 {
			return image.Rectangle{}, false
		}
		l := py0*spw + px0 + d
		npx = l % dpw
		npy = floorDiv(l, dpw)
		if npx < 0 {
			npx += dpw
		}
		if npx+px1-px0 >= dpw {
			return image.Rectangle{}, false
		}
	}

	t := r.Add(image.Pt((npx-px0)*inf.PageWidth, (npy-py0)*inf.PageHeight))
	if t.Min.Y < 0 {
		return image.Rectangle{}, false
	}
	return t, true
}

// CanTranslate returns true if the rectangle of the source layout can be
// expressed in the pixel space of the destination layout by moving whole
// pages.
func (c *Cache) CanTranslate(bp, bw uint32, spsm psm.PSM, r image.Rectangle, dbp uint32, dpsm psm.PSM, dbw uint32) bool {
	_, ok := translateRect(vram.NewOffset(bp, bw, spsm), vram.NewOffset(dbp, dbw, dpsm), r)
	return ok
}

// TranslateAlignedRectByPage expresses the rectangle of the source layout in
// the pixel space of the target.
func (c *Cache) TranslateAlignedRectByPage(t *Target, sbp uint32, spsm psm.PSM, sbw uint32, r image.Rectangle) (image.Rectangle, bool) {
	return translateRect(vram.NewOffset(sbp, sbw, spsm), t.Offset(), r)
}
