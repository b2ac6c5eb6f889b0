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

	"github.com/jetsetilly/gstexcache/gpu"
	"github.com/jetsetilly/gstexcache/gs/psm"
	"github.com/jetsetilly/gstexcache/gs/vram"
	"github.com/jetsetilly/gstexcache/logger"
)

// findTargetFor returns the target that completely covers the rectangle of
// the layout, and the rectangle in the pixel space of the target.
func (c *Cache) findTargetFor(off vram.Offset, r image.Rectangle) (*Target, image.Rectangle) {
	for k := range c.targets {
		for _, t := range c.targets[k] {
			if !psm.HasCompatibleBits(t.TEX0.PSM, off.PSM) || !t.Inside(off.BP, off.BW, off.PSM, r) {
				continue
			}
			if tr, ok := translateRect(off, t.Offset(), r); ok && tr.In(t.UnscaledRect()) {
				return t, tr
			}
		}
	}
	return nil, image.Rectangle{}
}

// Move copies a rectangle of local memory from one layout to another on the
// device, when both the source and destination rectangles are held by
// targets. Returns false if the move could not be done on the device. In
// which case the caller must move the pixels in local memory.
func (c *Cache) Move(sbp, sbw uint32, spsm psm.PSM, sx, sy int, dbp, dbw uint32, dpsm psm.PSM, dx, dy int, w, h int) bool {
	if w <= 0 || h <= 0 || spsm != dpsm {
		return false
	}

	sOff := vram.NewOffset(sbp, sbw, spsm)
	dOff := vram.NewOffset(dbp, dbw, dpsm)
	sr := image.Rect(sx, sy, sx+w, sy+h)
	dr := image.Rect(dx, dy, dx+w, dy+h)

	src, str := c.findTargetFor(sOff, sr)
	if src == nil {
		return false
	}
	dst, dtr := c.findTargetFor(dOff, dr)
	if dst == nil || dst.Scale != src.Scale {
		return false
	}

	src.Update(true)
	dst.Update(true)

	ss := src.scaled(str)
	ds := dst.scaled(dtr)
	if ss.Size() != ds.Size() {
		return false
	}

	if src == dst && ss.Overlaps(ds) {
		tmp, err := c.createTexture(ss.Dx(), ss.Dy(), src.Kind.format())
		if err != nil {
			return false
		}
		c.dev.CopyRect(src.Texture, tmp, ss, 0, 0)
		c.dev.CopyRect(tmp, dst.Texture, image.Rectangle{Max: ss.Size()}, ds.Min.X, ds.Min.Y)
		c.dev.DestroyTexture(tmp)
	} else {
		c.dev.CopyRect(src.Texture, dst.Texture, ss, ds.Min.X, ds.Min.Y)
	}

	dst.UpdateValidity(dtr, false)
	dst.UpdateDrawn(dtr, false)
	dst.UpdateValidBits(src.ValidBits)

	c.invalidateVideoMem(dOff, dr, false, true, dst)

	logger.Logf(c, "texcache", "moved %v of %s to %v of %s", str, src, dtr, dst)

	return true
}

// ShuffleMove moves 16-bit pixels inside a 32-bit render target when every
// pixel moves to the other half of the 32-bit texel holding it. The move
// becomes a copy of the red and green channels to blue and alpha, or the other
// way round. Returns false if the move is not of that kind, in which case the
// caller must move the pixels in local memory.
func (c *Cache) ShuffleMove(bp, bw uint32, p psm.PSM, sx, sy, dx, dy, w, h int) bool {
	inf := p.Info()
	if w <= 0 || h <= 0 || inf.AddrBits != 16 || inf.Depth {
		return false
	}

	var t *Target
	for _, rt := range c.targets[RenderTarget] {
		if rt.TEX0.TBP0 == bp&vram.MaxBP && rt.TEX0.TBW == bw && rt.TEX0.PSM == psm.PSMCT32 {
			t = rt
			break
		}
	}
	if t == nil {
		return false
	}

	off := vram.NewOffset(bp, bw, p)
	tOff := t.Offset()

	// the texels of the target touched by the move must form a rectangle
	var area image.Rectangle
	var toHigh bool
	texels := make(map[image.Point]bool)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := off.BitAddress(sx+x, sy+y)
			if off.BitAddress(dx+x, dy+y) != a^16 {
				return false
			}
			high := a&16 == 0
			if len(texels) == 0 {
				toHigh = high
			} else if high != toHigh {
				return false
			}
			tx, ty, _ := tOff.PixelAt(a)
			pt := image.Pt(tx, ty)
			if !texels[pt] {
				texels[pt] = true
				area = area.Union(image.Rect(tx, ty, tx+1, ty+1))
			}
		}
	}
	if len(texels) != area.Dx()*area.Dy() || !area.In(t.Valid) {
		return false
	}

	t.Update(true)

	shader := gpu.ShaderShuffleBAToRG
	mask := uint32(0x0000ffff)
	if toHigh {
		shader = gpu.ShaderShuffleRGToBA
		mask = 0xffff0000
	}
	sr := t.scaled(area)
	c.dev.StretchRect(t.Texture, sr, t.Texture, sr, shader, mask)

	t.UpdateDrawn(area, false)
	c.invalidateVideoMem(off, image.Rect(dx, dy, dx+w, dy+h), false, true, t)

	logger.Logf(c, "texcache", "shuffled %v of %s", area, t)

	return true
}

// UpdateTarget applies the pending dirty rectangles of the target. The
// renderer must call this before drawing to a target.
func (c *Cache) UpdateTarget(t *Target) {
	t.Update(true)
}
