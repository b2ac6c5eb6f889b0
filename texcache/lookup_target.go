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

// moveToFront makes the target the most recently used of its kind.
func (c *Cache) moveToFront(t *Target) {
	l := c.targets[t.Kind]
	for i, e := range l {
		if e == t {
			copy(l[1:i+1], l[:i])
			l[0] = t
			return
		}
	}
}

// GetExactTarget returns the target of the kind with the base pointer and
// buffer width that covers the end block. Returns nil if there is no such
// target.
func (c *Cache) GetExactTarget(bp, bw uint32, kind Kind, endBlock uint32) *Target {
	bp &= vram.MaxBP
	for _, t := range c.targets[kind] {
		if t.TEX0.TBP0 == bp && t.TEX0.TBW == bw && t.Range().Contains(endBlock) {
			return t
		}
	}
	return nil
}

// GetTargetWithSharedBits returns the target of either kind at the base
// pointer whose storage mode shares bits with the storage mode. Render
// targets are preferred.
func (c *Cache) GetTargetWithSharedBits(bp uint32, p psm.PSM) *Target {
	for k := range c.targets {
		if t := c.targetWithSharedBits(bp, p, Kind(k)); t != nil {
			return t
		}
	}
	return nil
}

func (c *Cache) targetWithSharedBits(bp uint32, p psm.PSM, kind Kind) *Target {
	bp &= vram.MaxBP
	for _, t := range c.targets[kind] {
		if t.TEX0.TBP0 == bp && psm.HasSharedBits(t.TEX0.PSM, p) {
			return t
		}
	}
	return nil
}

// Has32BitTarget returns true if there is a target with a 32-bit storage mode
// at the base pointer.
func (c *Cache) Has32BitTarget(bp uint32) bool {
	bp &= vram.MaxBP
	for k := range c.targets {
		for _, t := range c.targets[k] {
			if t.TEX0.TBP0 == bp && t.TEX0.PSM.Info().AddrBits == 32 {
				return true
			}
		}
	}
	return false
}

// FindTargetOverlap returns the first target of the kind with compatible bits
// that starts in the blocks from bp up to but not including endBlock.
func (c *Cache) FindTargetOverlap(bp, endBlock uint32, kind Kind, p psm.PSM) *Target {
	bp &= vram.MaxBP
	endBlock &= vram.MaxBP
	if bp == endBlock {
		return nil
	}
	r := vram.NewBlockRange(bp, endBlock-1)
	for _, t := range c.targets[kind] {
		if r.Contains(t.TEX0.TBP0) && psm.HasCompatibleBits(t.TEX0.PSM, p) {
			return t
		}
	}
	return nil
}

// createTarget allocates a new target. The target is not added to the cache.
func (c *Cache) createTarget(tex0 regs.TEX0, size image.Point, scale float32, kind Kind) (*Target, error) {
	size.X = min(max(size.X, 1), maxTargetSize)
	size.Y = min(max(size.Y, 1), maxTargetSize)

	sz := gpu.ScaleRect(image.Rectangle{Max: size}, scale).Size()
	tex, err := c.createTexture(sz.X, sz.Y, kind.format())
	if err != nil {
		return nil, err
	}
	c.dev.Clear(tex, 0)
	c.targetMemory += tex.MemUsage()

	t := &Target{
		Surface: Surface{
			Texture:      tex,
			TEX0:         regs.TEX0{TBP0: tex0.TBP0 & vram.MaxBP, TBW: tex0.TBW, PSM: tex0.PSM},
			TEXA:         regs.TargetTEXA,
			UnscaledSize: size,
			Scale:        scale,
			Is32Bit:      tex0.PSM.Is32Bit(),
		},
		Kind: kind,
		tc:   c,
	}
	t.updateEndBlock(t.Valid)

	return t, nil
}

// convertTarget copies the content of a target of the other kind into the new
// target. Returns false if the storage modes are too different for the
// content to be copied.
func (c *Cache) convertTarget(src *Target, dst *Target) bool {
	sinf := src.TEX0.PSM.Info()
	dinf := dst.TEX0.PSM.Info()
	if sinf.AddrBits != dinf.AddrBits || sinf.Layout != dinf.Layout {
		return false
	}

	shader := gpu.ShaderCopy
	if sinf.AddrBits == 16 {
		if sinf.Depth && !dinf.Depth {
			shader = gpu.ShaderUnpack16
		} else if !sinf.Depth && dinf.Depth {
			shader = gpu.ShaderPack16
		}
	}

	src.Update(false)

	r := src.Valid.Intersect(dst.UnscaledRect())
	if r.Empty() {
		return false
	}

	if shader == gpu.ShaderCopy && src.Scale == dst.Scale {
		sr := src.scaled(r)
		c.dev.CopyRect(src.Texture, dst.Texture, sr, sr.Min.X, sr.Min.Y)
	} else {
		c.dev.StretchRect(src.Texture, src.scaled(r), dst.Texture, dst.scaled(r), shader, 0xffffffff)
	}

	dst.UpdateValidity(r, false)
	dst.DrawnSinceRead = src.DrawnSinceRead.Intersect(r)
	dst.ValidBits = src.ValidBits & dinf.WordMask()

	logger.Logf(c, "texcache", "converted %s to %s", src, dst)

	return true
}

// preload marks the rectangle of the target as needing to be loaded from
// local memory. Targets overlapping the area are written back to local
// memory first.
func (c *Cache) preload(t *Target, r image.Rectangle) {
	r = r.Intersect(t.UnscaledRect())
	if r.Empty() {
		return
	}
	c.invalidateLocalMem(t.Offset(), r, t)
	t.addDirty(DirtyRect{
		Rect: r,
		PSM:  t.TEX0.PSM,
		BW:   t.TEX0.TBW,
		Mask: 0xffffffff,
	})
	t.UpdateValidity(r, false)
	t.UpdateValidBits(0xffffffff)
}

// LookupTarget returns the target of the kind for the layout, creating it if
// necessary. Existing targets grow to the requested size but never shrink.
//
// A new target is loaded from local memory if preload is true, if fbmask is
// not zero, if the target is a frame buffer or if the PreloadFrame policy or
// preference is set. Targets that will be completely drawn over should set
// isClear instead.
func (c *Cache) LookupTarget(tex0 regs.TEX0, size image.Point, scale float32, kind Kind, used bool, fbmask uint32, isFrame, preload, isClear bool) (*Target, error) {
	if scale <= 0 {
		scale = 1
	}
	bp := tex0.TBP0 & vram.MaxBP
	preload = preload || fbmask != 0 || isFrame || c.preloadFrame()

	var dst *Target
	for _, t := range c.targets[kind] {
		if t.TEX0.TBP0 == bp && t.TEX0.TBW == tex0.TBW && psm.HasCompatibleBits(t.TEX0.PSM, tex0.PSM) {
			dst = t
			break
		}
	}

	if dst != nil {
		c.moveToFront(dst)
		dst.Age = 0
		dst.Used = dst.Used || used
		dst.IsFrame = dst.IsFrame || isFrame

		// same family of storage modes. the texture is kept and the
		// storage mode updated
		if dst.TEX0.PSM != tex0.PSM {
			logger.Logf(c, "texcache", "%s reinterpreted as %s", dst, tex0.PSM)
			dst.TEX0.PSM = tex0.PSM
			dst.Is32Bit = tex0.PSM.Is32Bit()
			dst.ValidBits &= tex0.PSM.Info().WordMask()
		}

		old := dst.UnscaledSize
		if (size.X > old.X || size.Y > old.Y) && dst.canResize(image.Rectangle{Max: size}) {
			if dst.ResizeTexture(size.X, size.Y) && preload && !isClear {
				nw := dst.UnscaledSize
				c.preload(dst, image.Rect(old.X, 0, nw.X, old.Y))
				c.preload(dst, image.Rect(0, old.Y, nw.X, nw.Y))
			}
		}

		return dst, nil
	}

	// targets of the same kind at the same base pointer can't be viewed in
	// the new format. they are written back and the new target loaded from
	// local memory
	for _, t := range c.Targets(kind) {
		if t.TEX0.TBP0 == bp {
			c.evict(t)
			preload = true
		}
	}

	size.Y = c.GetTargetHeight(bp, tex0.TBW, tex0.PSM, size.Y)

	t, err := c.createTarget(tex0, size, scale, kind)
	if err != nil {
		return nil, err
	}
	t.Used = used
	t.IsFrame = isFrame

	converted := false
	if o := c.targetWithSharedBits(bp, tex0.PSM, kind.other()); o != nil && o.TEX0.TBW == tex0.TBW {
		converted = c.convertTarget(o, t)
	}

	if !converted && !isClear && preload {
		c.preload(t, t.UnscaledRect())
	}

	// raw sources over the range of the target will be out of date as soon as
	// the target is drawn to
	if br, ok := t.Offset().BlockRange(t.UnscaledRect()); ok {
		for _, p := range t.Offset().Pages(t.UnscaledRect()) {
			for _, s := range c.sources.Page(p) {
				if s.Target == nil && s.Range().Overlaps(br) {
					c.removeSource(s)
				}
			}
		}
	}

	c.targets[kind] = append([]*Target{t}, c.targets[kind]...)
	logger.Logf(c, "texcache", "created %s", t)

	c.enforceTargetLimit(kind)

	return t, nil
}

// enforceTargetLimit evicts the least recently used targets of the kind until
// the number of targets is within the limit.
func (c *Cache) enforceTargetLimit(kind Kind) {
	limit := max(c.Prefs.TargetListLimit.Get().(int), 1)
	for len(c.targets[kind]) > limit {
		c.evict(c.targets[kind][len(c.targets[kind])-1])
	}
}

// LookupDisplayTarget returns the render target holding the display. If the
// display starts inside an existing render target at a whole number of page
// rows then that target is used and the returned value is the vertical offset
// of the display inside the target. The target is resized if necessary.
func (c *Cache) LookupDisplayTarget(tex0 regs.TEX0, size image.Point, scale float32) (*Target, int, error) {
	bp := tex0.TBP0 & vram.MaxBP
	off := vram.NewOffset(bp, tex0.TBW, tex0.PSM)

	var dst *Target
	var yoff int

	for _, t := range c.targets[RenderTarget] {
		if t.TEX0.TBP0 == bp && t.TEX0.TBW == tex0.TBW && psm.HasCompatibleBits(t.TEX0.PSM, tex0.PSM) {
			dst = t
			break
		}
	}

	if dst == nil {
		for _, t := range c.targets[RenderTarget] {
			if t.TEX0.TBW != tex0.TBW || !psm.HasCompatibleBits(t.TEX0.PSM, tex0.PSM) {
				continue
			}
			if !t.Offset().Translatable(off) || !t.Range().Contains(bp) {
				continue
			}
			row := uint32(t.Offset().PagesWide() * vram.BlocksPerPage)
			d := (bp + vram.MaxBlocks - t.TEX0.TBP0) % vram.MaxBlocks
			if d%row != 0 {
				continue
			}
			dst = t
			yoff = int(d/row) * tex0.PSM.Info().PageHeight
			break
		}
	}

	if dst == nil {
		t, err := c.LookupTarget(tex0, size, scale, RenderTarget, true, 0, true, true, false)
		return t, 0, err
	}

	c.moveToFront(dst)
	dst.Age = 0
	dst.IsFrame = true

	old := dst.UnscaledSize
	need := image.Pt(max(old.X, size.X), max(old.Y, yoff+size.Y))
	if need != old && dst.ResizeTexture(need.X, need.Y) {
		nw := dst.UnscaledSize
		c.preload(dst, image.Rect(old.X, 0, nw.X, old.Y))
		c.preload(dst, image.Rect(0, old.Y, nw.X, nw.Y))
	}

	return dst, yoff, nil
}

// CommitDraw updates the target after a draw to the rectangle. The bits of the
// target written by the draw are given by writtenBits.
//
// If the drawn area grows into another target of the same kind that starts
// inside the target, the content of the other target is moved into this
// target and the other target removed. The other target is returned so the
// caller can forget about it.
func (c *Cache) CommitDraw(t *Target, r image.Rectangle, writtenBits uint32) *Target {
	r = r.Intersect(image.Rect(0, 0, maxTargetSize, maxTargetSize))
	if r.Empty() || t.Texture == nil {
		return nil
	}

	t.Age = 0
	t.Used = true

	canResize := t.canResize(r)
	if canResize && (r.Max.X > t.UnscaledSize.X || r.Max.Y > t.UnscaledSize.Y) {
		canResize = t.ResizeTexture(r.Max.X, r.Max.Y)
	}

	// pending writes to the drawn area are out of date now
	t.dirty = t.dirty.drawnOver(r, writtenBits)

	t.UpdateValidity(r, canResize)
	t.UpdateDrawn(r, canResize)
	t.UpdateValidBits(writtenBits)
	t.updateEndBlock(t.Valid)

	var old *Target
	if o := c.FindTargetOverlap(t.TEX0.TBP0+1, t.EndBlock+1, t.Kind, t.TEX0.PSM); o != nil && o != t {
		old = c.handOff(o, t, r)
	}

	c.invalidateVideoMem(t.Offset(), r, false, true, t)

	return old
}

// handOff moves the content of the old target into the new target. The old
// target is removed from the cache.
func (c *Cache) handOff(old *Target, t *Target, drawn image.Rectangle) *Target {
	if old.Scale != t.Scale {
		return nil
	}

	r, ok := c.TranslateAlignedRectByPage(t, old.TEX0.TBP0, old.TEX0.PSM, old.TEX0.TBW, old.Valid)
	if !ok {
		return nil
	}
	if r.Max.X > t.UnscaledSize.X || r.Max.Y > t.UnscaledSize.Y {
		if !t.canResize(r) || !t.ResizeTexture(r.Max.X, r.Max.Y) {
			return nil
		}
	}

	old.Update(false)

	delta := r.Min.Sub(old.Valid.Min)
	for _, p := range subtractRect(r, drawn) {
		sp := p.Sub(delta)
		sr := old.scaled(sp)
		dr := t.scaled(p)
		c.dev.CopyRect(old.Texture, t.Texture, sr, dr.Min.X, dr.Min.Y)
	}

	t.UpdateValidity(r, false)
	if !old.DrawnSinceRead.Empty() {
		t.UpdateDrawn(old.DrawnSinceRead.Add(delta), false)
	}
	t.UpdateValidBits(old.ValidBits)

	logger.Logf(c, "texcache", "%s handed off to %s", old, t)
	c.removeTarget(old)

	return old
}

// subtractRect returns the parts of a that are not in b.
func subtractRect(a, b image.Rectangle) []image.Rectangle {
	b = b.Intersect(a)
	if b.Empty() {
		return []image.Rectangle{a}
	}
	var l []image.Rectangle
	if b.Min.Y > a.Min.Y {
		l = append(l, image.Rect(a.Min.X, a.Min.Y, a.Max.X, b.Min.Y))
	}
	if b.Max.Y < a.Max.Y {
		l = append(l, image.Rect(a.Min.X, b.Max.Y, a.Max.X, a.Max.Y))
	}
	if b.Min.X > a.Min.X {
		l = append(l, image.Rect(a.Min.X, b.Min.Y, b.Min.X, b.Max.Y))
	}
	if b.Max.X < a.Max.X {
		l = append(l, image.Rect(b.Max.X, b.Min.Y, a.Max.X, b.Max.Y))
	}
	return l
}
