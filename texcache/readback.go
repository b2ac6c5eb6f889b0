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
	"github.com/jetsetilly/gstexcache/gs/regs"
	"github.com/jetsetilly/gstexcache/gs/vram"
	"github.com/jetsetilly/gstexcache/logger"
)

// texelToRaw converts a texel of a target into the raw pixel value of the
// storage mode.
func texelToRaw(p psm.PSM, texel uint32) uint32 {
	inf := p.Info()
	if inf.AddrBits == 32 {
		return (texel & inf.Mask) >> inf.Shift
	}
	return regs.Pack(p, texel)
}

// download returns the texels of the rectangle of the target, at a scale of
// one.
func (c *Cache) download(t *Target, r image.Rectangle) ([]uint32, bool) {
	w, h := r.Dx(), r.Dy()

	src := t.Texture
	srcRect := t.scaled(r)

	if t.Scale != 1 {
		tmp, err := c.createTexture(w, h, t.Kind.format())
		if err != nil {
			logger.Logf(c, "texcache", "readback of %s failed: %v", t, err)
			return nil, false
		}
		defer c.dev.DestroyTexture(tmp)
		c.dev.StretchRect(t.Texture, srcRect, tmp, image.Rect(0, 0, w, h), gpu.ShaderCopy, 0xffffffff)
		src = tmp
		srcRect = image.Rect(0, 0, w, h)
	}

	dl, err := c.dev.CreateDownloadTexture(w, h)
	if err != nil {
		logger.Logf(c, "texcache", "readback of %s failed: %v", t, err)
		return nil, false
	}
	defer dl.Destroy()

	if err := dl.Copy(src, srcRect); err != nil {
		logger.Logf(c, "texcache", "readback of %s failed: %v", t, err)
		return nil, false
	}

	pix, pitch := dl.Map()
	defer dl.Unmap()

	out := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		copy(out[y*w:(y+1)*w], pix[y*pitch:y*pitch+w])
	}

	return out, true
}

// Read writes the rectangle of the target back to local memory. Pending dirty
// rectangles are applied first.
func (c *Cache) Read(t *Target, r image.Rectangle) {
	r = r.Intersect(t.UnscaledRect())
	if r.Empty() || t.Texture == nil {
		return
	}

	t.UpdateIfDirtyIntersects(r)

	pix, ok := c.download(t, r)
	if !ok {
		return
	}

	for i := range pix {
		pix[i] = texelToRaw(t.TEX0.PSM, pix[i])
	}
	c.mem.WriteImage(t.Offset(), r, pix)

	if t.DrawnSinceRead.In(r) {
		t.DrawnSinceRead = image.Rectangle{}
	}
	t.ReadbacksSinceDraw++

	logger.Logf(c, "texcache", "read %v of %s", r, t)
}

// ReadbackAll writes the drawn area of every target back to local memory.
func (c *Cache) ReadbackAll() {
	for k := range c.targets {
		for _, t := range c.targets[k] {
			if !t.DrawnSinceRead.Empty() {
				c.Read(t, t.DrawnSinceRead)
			}
		}
	}
}

// readbackExcluding writes the drawn area of the target back to local memory,
// except for the pixels that have just been written in the layout.
func (c *Cache) readbackExcluding(t *Target, off vram.Offset, excl image.Rectangle) {
	area := t.DrawnSinceRead.Intersect(t.UnscaledRect())
	if area.Empty() || !c.Prefs.ReadbackOnEviction.Get().(bool) {
		return
	}

	t.Update(false)

	pix, ok := c.download(t, area)
	if !ok {
		return
	}

	tOff := t.Offset()
	tinf := t.TEX0.PSM.Info()
	winf := off.PSM.Info()

	cur := make([]uint32, len(pix))
	c.mem.ReadImage(tOff, area, cur)

	i := 0
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			a := tOff.BitAddress(x, y)

			// the bits of the pixel to take from local memory. checked four
			// bits at a time, which is the smallest pixel size
			var keep uint32
			for b := 0; b < tinf.Bits; b += 4 {
				wx, wy, wbit := off.PixelAt(a + uint32(b))
				if image.Pt(wx, wy).In(excl) && wbit >= uint32(winf.Shift) && wbit < uint32(winf.Shift)+uint32(winf.Bits) {
					keep |= 0xf << b
				}
			}

			raw := texelToRaw(t.TEX0.PSM, pix[i])
			cur[i] = (cur[i] & keep) | (raw &^ keep)
			i++
		}
	}

	c.mem.WriteImage(tOff, area, cur)
	t.DrawnSinceRead = image.Rectangle{}
}

// evictExcluding removes the target after writing it back to local memory,
// except for the pixels that have just been written in the layout.
func (c *Cache) evictExcluding(t *Target, off vram.Offset, excl image.Rectangle) {
	c.readbackExcluding(t, off, excl)
	logger.Logf(c, "texcache", "evicting %s after write to %s", t, off)
	c.removeTarget(t)
}
