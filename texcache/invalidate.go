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
	"github.com/jetsetilly/gstexcache/logger"
)

// coordinates wrap at this value
const coordWrap = 2048

// splitCoords splits the rectangle where it crosses the coordinate wrap.
func splitCoords(r image.Rectangle) []image.Rectangle {
	xs := [][2]int{{r.Min.X, min(r.Max.X, coordWrap)}}
	if r.Max.X > coordWrap {
		xs = append(xs, [2]int{0, min(r.Max.X-coordWrap, r.Min.X)})
	}
	ys := [][2]int{{r.Min.Y, min(r.Max.Y, coordWrap)}}
	if r.Max.Y > coordWrap {
		ys = append(ys, [2]int{0, min(r.Max.Y-coordWrap, r.Min.Y)})
	}

	var l []image.Rectangle
	for _, y := range ys {
		for _, x := range xs {
			s := image.Rect(x[0], y[0], x[1], y[1])
			if !s.Empty() {
				l = append(l, s)
			}
		}
	}
	return l
}

// splitAtWrap splits the rectangle at the first row of pages that starts past
// the end of local memory.
func splitAtWrap(off vram.Offset, r image.Rectangle) []image.Rectangle {
	br, ok := off.BlockRange(r)
	if !ok || !br.Wraps {
		return []image.Rectangle{r}
	}

	pgH := off.PSM.Info().PageHeight
	for y := (r.Min.Y/pgH + 1) * pgH; y < r.Max.Y; y += pgH {
		if off.UnwrappedBlock(r.Min.X, y) >= vram.MaxBlocks {
			return []image.Rectangle{
				image.Rect(r.Min.X, r.Min.Y, r.Max.X, y),
				image.Rect(r.Min.X, y, r.Max.X, r.Max.Y),
			}
		}
	}
	return []image.Rectangle{r}
}

// InvalidateVideoMem must be called when the rectangle of the layout has been
// written. CPU writes are transfers from main memory to local memory. Other
// writes are GPU writes.
//
// Sources covering the written area are removed or, if possible, the pages
// that were written are marked as needing to be uploaded again. If alsoTargets
// is true then targets covering the written area are either given a dirty
// rectangle or are evicted.
//
// Invalidating the same area twice has the same effect as invalidating it
// once.
func (c *Cache) InvalidateVideoMem(off vram.Offset, r image.Rectangle, isCPUWrite, alsoTargets bool) {
	c.invalidateVideoMem(off, r, isCPUWrite, alsoTargets, nil)
}

func (c *Cache) invalidateVideoMem(off vram.Offset, r image.Rectangle, isCPUWrite, alsoTargets bool, exclude *Target) {
	r = r.Intersect(image.Rect(0, 0, coordWrap*2, coordWrap*2))
	if r.Empty() {
		return
	}
	off = vram.NewOffset(off.BP, off.BW, off.PSM)

	for _, s := range splitCoords(r) {
		for _, w := range splitAtWrap(off, s) {
			c.invalidateRect(off, w, isCPUWrite, alsoTargets, exclude)
		}
	}
}

func (c *Cache) invalidateRect(off vram.Offset, r image.Rectangle, isCPUWrite, alsoTargets bool, exclude *Target) {
	if isCPUWrite {
		c.logTransfer(off, r)
	}

	br, ok := off.BlockRange(r)
	if !ok {
		return
	}

	partial := isCPUWrite && !c.policy.DisablePartialInvalidation

	for _, p := range off.Pages(r) {
		for _, s := range c.sources.Page(p) {
			if !psm.HasSharedBits(off.PSM, s.TEX0.PSM) || !s.Range().Overlaps(br) {
				continue
			}

			// sharing the texture of the target being written means the
			// source is already up to date
			if exclude != nil && s.Target == exclude && s.SharedTexture {
				continue
			}

			if !partial || s.Target != nil || s.fromHashCache != nil || s.merged || s.TEX0.PSM != off.PSM {
				c.removeSource(s)
				continue
			}
			s.invalidatePage(p)
		}
	}

	if !alsoTargets {
		return
	}

	for k := range c.targets {
		for _, t := range c.Targets(Kind(k)) {
			if t == exclude || t.Valid.Empty() {
				continue
			}
			if !psm.HasSharedBits(off.PSM, t.TEX0.PSM) || !t.Range().Overlaps(br) {
				continue
			}

			if isCPUWrite {
				if tr, ok := translateRect(off, t.Offset(), r); ok {
					mask := uint32(0xffffffff)
					if t.TEX0.PSM.Info().AddrBits == 32 {
						mask = off.PSM.Info().Mask
					}
					if t.addDirty(DirtyRect{Rect: tr, PSM: off.PSM, BW: off.BW, Mask: mask}) {
						logger.Logf(c, "texcache", "dirty %v in %s", tr, t)
					}
					continue
				}
			}

			c.evictExcluding(t, off, r)
		}
	}
}

// InvalidateVideoMemType removes the targets of the kind at the base pointer.
// The targets are not written back to local memory.
func (c *Cache) InvalidateVideoMemType(kind Kind, bp uint32) {
	bp &= vram.MaxBP
	for _, t := range c.Targets(kind) {
		if t.TEX0.TBP0 == bp {
			logger.Logf(c, "texcache", "removing %s", t)
			c.removeTarget(t)
		}
	}
}

// InvalidateLocalMem must be called before the rectangle of the layout is
// read by the CPU. Targets covering the area are written back to local memory.
func (c *Cache) InvalidateLocalMem(off vram.Offset, r image.Rectangle) {
	c.invalidateLocalMem(off, r, nil)
}

func (c *Cache) invalidateLocalMem(off vram.Offset, r image.Rectangle, exclude *Target) {
	off = vram.NewOffset(off.BP, off.BW, off.PSM)

	if c.transferCovers(off, r) {
		logger.Logf(c, "texcache", "readback of %s skipped. area written by CPU this draw", off)
		return
	}

	br, ok := off.BlockRange(r)
	if !ok {
		return
	}

	for k := range c.targets {
		for _, t := range c.Targets(Kind(k)) {
			if t == exclude || t.DrawnSinceRead.Empty() {
				continue
			}
			if !psm.HasSharedBits(off.PSM, t.TEX0.PSM) || !t.Range().Overlaps(br) {
				continue
			}

			area := t.DrawnSinceRead
			if so := c.ComputeSurfaceOffsetForTarget(off, r, t); so.Valid {
				area = area.Intersect(so.B2AOffset)
			}
			if !area.Empty() {
				c.Read(t, area)
			}
		}
	}
}
