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

// number of vsyncs a source can go unused before it is removed
const (
	sourceAgeLimit          = 3
	preloadedSourceAgeLimit = 30
)

// readCLUT returns the colour lookup table for the indexed texture, with the
// colours expanded to texels. A render target holding the table is read in
// preference to local memory.
func (c *Cache) readCLUT(tex0 regs.TEX0, texa regs.TEXA) []uint32 {
	off := tex0.CLUTOffset()

	var clut []uint32
	var r image.Rectangle
	if tex0.PSM.Info().Bits == 4 {
		clut = make([]uint32, 16)
		row := int(tex0.CSA)
		r = image.Rect(0, row, 16, row+1)
	} else {
		clut = make([]uint32, 256)
		r = image.Rect(0, 0, 16, 16)
	}

	if t, tr := c.paletteTarget(off, r); t != nil {
		if pix, ok := c.download(t, tr); ok {
			for i := range clut {
				clut[i] = texa.Expand(tex0.CPSM, texelToRaw(t.TEX0.PSM, pix[i]))
			}
			return clut
		}
	}

	// targets partly covering the table are written back first
	c.InvalidateLocalMem(off, r)
	c.mem.ReadImage(off, r, clut)

	for i := range clut {
		clut[i] = texa.Expand(tex0.CPSM, clut[i])
	}

	return clut
}

// paletteTarget returns the render target whose valid area holds all of the
// rectangle of the layout, and the rectangle in the pixel space of the target.
// Pending dirty rectangles of the target are applied.
func (c *Cache) paletteTarget(off vram.Offset, r image.Rectangle) (*Target, image.Rectangle) {
	for _, t := range c.targets[RenderTarget] {
		if t.Valid.Empty() || !psm.HasCompatibleBits(t.TEX0.PSM, off.PSM) {
			continue
		}
		tr, ok := translateRect(off, t.Offset(), r)
		if !ok || !tr.In(t.Valid) {
			continue
		}
		t.Update(false)
		return t, tr
	}
	return nil, image.Rectangle{}
}

// LookupPaletteSource returns the render target holding the colour lookup
// table of the size, and the position of the table in the unscaled pixel space
// of the target. The renderer can sample the palette from the target's
// texture. Returns nil if no target holds the table.
func (c *Cache) LookupPaletteSource(cbp uint32, cpsm psm.PSM, cbw uint32, size image.Point) (*Target, image.Point) {
	t, tr := c.paletteTarget(vram.NewOffset(cbp, cbw, cpsm), image.Rectangle{Max: size})
	if t == nil {
		return nil, image.Point{}
	}
	t.Age = 0
	return t, tr.Min
}

// sourceTEX0 returns the fields of TEX0 that identify the texels of a source.
func sourceTEX0(tex0 regs.TEX0) regs.TEX0 {
	return regs.TEX0{
		TBP0: tex0.TBP0 & vram.MaxBP,
		TBW:  tex0.TBW,
		PSM:  tex0.PSM,
		TW:   tex0.TW,
		TH:   tex0.TH,
		TCC:  tex0.TCC,
	}
}

// sourceTEXA returns the TEXA value that affects the texels of the storage
// mode. Storage modes that are not expanded with TEXA always use the zero
// value so that sources can be shared.
func sourceTEXA(p psm.PSM, texa regs.TEXA) regs.TEXA {
	inf := p.Info()
	if inf.Indexed || inf.Depth || inf.Bits == 32 {
		return regs.TEXA{}
	}
	return texa
}

// LookupSource returns the source for a draw sampling the texture. The
// rectangle is the area of the texture that the draw reads.
//
// In order of preference the source is: an existing source for the same
// texture; a view of a render target or depth buffer holding the texture; an
// entry in the hash cache; a new texture uploaded from local memory.
func (c *Cache) LookupSource(tex0 regs.TEX0, texa regs.TEXA, clamp regs.CLAMP, r image.Rectangle, lod regs.LOD) (*Source, error) {
	return c.lookupSource(tex0, texa, clamp, r, lod, colourFirst)
}

// LookupDepthSource is LookupSource() for draws sampling a depth buffer.
// Depth buffers are preferred to render targets when looking for a target
// holding the texture. There is no level of detail.
func (c *Cache) LookupDepthSource(tex0 regs.TEX0, texa regs.TEXA, clamp regs.CLAMP, r image.Rectangle) (*Source, error) {
	return c.lookupSource(tex0, texa, clamp, r, regs.LOD{}, depthFirst)
}

// the order in which targets are searched for a texture
var (
	colourFirst = [numKinds]Kind{RenderTarget, DepthStencil}
	depthFirst  = [numKinds]Kind{DepthStencil, RenderTarget}
)

func (c *Cache) lookupSource(tex0 regs.TEX0, texa regs.TEXA, clamp regs.CLAMP, r image.Rectangle, lod regs.LOD, order [numKinds]Kind) (*Source, error) {
	tw, th := tex0.Width(), tex0.Height()
	region := regs.NewSourceRegion(clamp, tw, th)
	texRect := region.Rect(tw, th)
	repeating := clamp.WMS == regs.ClampRegionRepeat || clamp.WMT == regs.ClampRegionRepeat

	r = r.Intersect(texRect)
	if r.Empty() {
		r = texRect
	}

	inf := tex0.PSM.Info()
	paltex := inf.Indexed && c.Prefs.GPUPaletteConversion.Get().(bool)

	// the colours of the lookup table are expanded with TEXA
	var clut []uint32
	if inf.Indexed {
		clut = c.readCLUT(tex0, texa)
	}

	key := sourceTEX0(tex0)
	texa = sourceTEXA(tex0.PSM, texa)

	if s := c.findSource(key, texa, region, texRect, lod, clut); s != nil {
		s.Age = 0
		if s.Target != nil {
			s.Target.Age = 0
		}
		if s.PaletteIndices && clut != nil {
			if err := c.AttachPaletteToSource(s, clut, true); err != nil {
				return nil, err
			}
		}
		c.updateSource(s, r)
		return s, nil
	}

	s, err := c.lookupTargetSource(key, texa, region, texRect, lod, repeating, clut, order)
	if err != nil || s != nil {
		return s, err
	}

	if clut == nil {
		s, err = c.createMergedSource(key, texa, region, texRect, lod, repeating)
		if err != nil || s != nil {
			return s, err
		}
	}

	// targets overlapping the texture that can't be viewed as the texture
	// must be written back before the texture is uploaded
	c.InvalidateLocalMem(key.Offset(), texRect)

	s = newSource(key, texa, region, texRect, lod, repeating)
	s.PaletteIndices = paltex
	if clut != nil {
		if err := c.AttachPaletteToSource(s, clut, paltex); err != nil {
			return nil, err
		}
	}

	if c.Prefs.preloading() == PreloadingFull && texRect.Dx() <= maxHashCacheSize && texRect.Dy() <= maxHashCacheSize {
		e, _, err := c.LookupHashCache(s)
		if err != nil {
			c.releaseUnused(s)
			return nil, err
		}
		s.Texture = e.Texture
		s.fromHashCache = e
		s.preloaded = true
		s.complete = true
		s.ValidRect = texRect
		c.sources.Add(s)
		return s, nil
	}

	format := gpu.FormatColor
	if paltex {
		format = gpu.FormatIndex
	} else if inf.Depth {
		format = gpu.FormatDepth
	}

	tex, err := c.createTexture(texRect.Dx(), texRect.Dy(), format)
	if err != nil {
		c.releaseUnused(s)
		return nil, err
	}
	s.Texture = tex
	c.sourceMemory += tex.MemUsage()
	c.sources.Add(s)

	if c.Prefs.preloading() != PreloadingOff {
		s.preloaded = true
		r = texRect
	}
	c.updateSource(s, r)

	logger.Logf(c, "texcache", "created %s", s)

	return s, nil
}

// releaseUnused releases what a source that was never added to the cache
// holds.
func (c *Cache) releaseUnused(s *Source) {
	if s.palette != nil {
		s.palette.Release()
		s.palette = nil
	}
}

// findSource returns the existing source for the texture.
func (c *Cache) findSource(tex0 regs.TEX0, texa regs.TEXA, region regs.SourceRegion, texRect image.Rectangle, lod regs.LOD, clut []uint32) *Source {
	pages := tex0.Offset().Pages(texRect)
	if len(pages) == 0 {
		return nil
	}
	for _, s := range c.sources.Page(pages[0]) {
		if s.TEX0 == tex0 && s.TEXA == texa && s.Region == region && s.LOD == lod && s.clutMatch(clut) {
			return s
		}
	}
	return nil
}

// lookupTargetSource returns a source that reads from a target holding the
// texture. Returns nil if no target holds the texture.
func (c *Cache) lookupTargetSource(tex0 regs.TEX0, texa regs.TEXA, region regs.SourceRegion, texRect image.Rectangle, lod regs.LOD, repeating bool, clut []uint32, order [numKinds]Kind) (*Source, error) {
	off := tex0.Offset()

	for _, kind := range order {
		if kind == DepthStencil && c.policy.DisableDepthSources {
			continue
		}

		for _, t := range c.targets[kind] {
			if t.Valid.Empty() || !t.Overlaps(tex0.TBP0, tex0.TBW, tex0.PSM, texRect) {
				continue
			}

			if t.TEX0.TBP0 != tex0.TBP0 {
				if !c.textureInsideRT() || !t.Inside(tex0.TBP0, tex0.TBW, tex0.PSM, texRect) {
					continue
				}
				if _, ok := translateRect(off, t.Offset(), texRect); !ok {
					continue
				}
			}

			return c.createTargetSource(t, tex0, texa, region, texRect, lod, repeating, clut)
		}
	}

	return nil, nil
}

// loadUndefinedBits loads the bits of the target that the source reads but
// that have never been drawn.
func (c *Cache) loadUndefinedBits(t *Target, p psm.PSM) {
	tinf := t.TEX0.PSM.Info()
	sinf := p.Info()

	need := uint32(0xffffffff)
	if tinf.AddrBits == 32 && sinf.AddrBits == 32 {
		need = sinf.Mask
	}

	missing := need &^ t.ValidBits
	if tinf.AddrBits != 32 {
		// the bits of a 16-bit target are either all defined or all
		// undefined
		if t.ValidBits != 0 {
			return
		}
		missing = 0xffffffff
	}
	if missing == 0 {
		return
	}

	ld := t.TEX0.PSM
	if tinf.AddrBits == 32 {
		ld = psm.PSMCT32
	}

	logger.Logf(c, "texcache", "loading undefined bits %08x of %s", missing, t)
	t.addDirty(DirtyRect{Rect: t.Valid, PSM: ld, BW: t.TEX0.TBW, Mask: missing})
	t.ValidBits |= missing
}

// createTargetSource creates a source that reads from the target.
func (c *Cache) createTargetSource(t *Target, tex0 regs.TEX0, texa regs.TEXA, region regs.SourceRegion, texRect image.Rectangle, lod regs.LOD, repeating bool, clut []uint32) (*Source, error) {
	off := tex0.Offset()
	tOff := t.Offset()
	sinf := tex0.PSM.Info()
	tinf := t.TEX0.PSM.Info()

	t.Age = 0
	c.loadUndefinedBits(t, tex0.PSM)
	t.Update(false)

	s := newSource(tex0, texa, region, texRect, lod, repeating)
	s.Target = t
	s.complete = true
	s.ValidRect = texRect

	tr, translatable := translateRect(off, tOff, texRect)

	switch {
	case translatable && sameTexels(tex0.PSM, t.TEX0.PSM):
		// same layout and the texels mean the same thing. the source
		// shares the texture of the target
		s.Texture = t.Texture
		s.SharedTexture = true
		s.Scale = t.Scale
		s.TargetOffset = tr.Min.Sub(texRect.Min)

	case translatable && sinf.AddrBits == 16 && tinf.AddrBits == 16 && sinf.Layout == tinf.Layout:
		// 16-bit depth viewed as colour or the other way round. the texels
		// are converted into a new texture
		format := gpu.FormatColor
		shader := gpu.ShaderUnpack16
		if sinf.Depth {
			format = gpu.FormatDepth
			shader = gpu.ShaderPack16
		}
		sr := t.scaled(tr)
		tex, err := c.createTexture(sr.Dx(), sr.Dy(), format)
		if err != nil {
			return nil, err
		}
		c.dev.StretchRect(t.Texture, sr, tex, image.Rectangle{Max: sr.Size()}, shader, 0xffffffff)
		s.Texture = tex
		s.Scale = t.Scale
		s.TargetOffset = tr.Min.Sub(texRect.Min)
		c.sourceMemory += tex.MemUsage()

	case sinf.AddrBits == 16 && !sinf.Depth && tinf.Bits == 32 && t.TEX0.TBP0 == tex0.TBP0 && t.TEX0.TBW == tex0.TBW:
		// a 16-bit view of a 32-bit target. the renderer shuffles the
		// channels of the target's texture
		s.Texture = t.Texture
		s.SharedTexture = true
		s.Scale = t.Scale
		s.Shuffle = true

	default:
		// the texels are rebuilt from the bits of the target as they would
		// be found in local memory. indexed sources always keep their
		// indices because the target can't be expanded on the CPU
		format := gpu.FormatColor
		if sinf.Indexed {
			format = gpu.FormatIndex
			s.PaletteIndices = true
		} else if sinf.Depth {
			format = gpu.FormatDepth
		}
		tex, err := c.createTexture(texRect.Dx(), texRect.Dy(), format)
		if err != nil {
			return nil, err
		}
		c.dev.Reinterpret(t.Texture, t.Scale, tOff, tex, off, texRect, texa)
		s.Texture = tex
		c.sourceMemory += tex.MemUsage()
	}

	if clut != nil {
		if err := c.AttachPaletteToSource(s, clut, true); err != nil {
			c.removeSource(s)
			return nil, err
		}
		s.PaletteIndices = true
	}

	t.addDependent(s)
	c.sources.Add(s)

	logger.Logf(c, "texcache", "created %s", s)

	return s, nil
}

// sameTexels returns true if the texels of a target in the storage mode of the
// target can be used unchanged as texels of the texture storage mode.
func sameTexels(tex, tgt psm.PSM) bool {
	sinf := tex.Info()
	tinf := tgt.Info()
	return sinf.AddrBits == tinf.AddrBits && sinf.Layout == tinf.Layout && !sinf.Indexed &&
		(sinf.Bits == tinf.Bits || (sinf.Bits == 32 && tinf.Bits == 24)) && (sinf.AddrBits == 32 || sinf.Depth == tinf.Depth)
}

// createMergedSource creates a source from the render targets that between
// them hold every page of the texture. Returns nil if the texture is not held
// entirely by render targets of the same scale or if fewer than two targets
// are needed.
func (c *Cache) createMergedSource(tex0 regs.TEX0, texa regs.TEXA, region regs.SourceRegion, texRect image.Rectangle, lod regs.LOD, repeating bool) (*Source, error) {
	off := tex0.Offset()
	inf := tex0.PSM.Info()

	type piece struct {
		t  *Target
		r  image.Rectangle
		tr image.Rectangle
	}
	var pieces []piece
	var scale float32

	x0 := texRect.Min.X / inf.PageWidth * inf.PageWidth
	y0 := texRect.Min.Y / inf.PageHeight * inf.PageHeight
	for y := y0; y < texRect.Max.Y; y += inf.PageHeight {
		for x := x0; x < texRect.Max.X; x += inf.PageWidth {
			r := image.Rect(x, y, x+inf.PageWidth, y+inf.PageHeight).Intersect(texRect)

			var found bool
			for _, t := range c.targets[RenderTarget] {
				if t.Valid.Empty() || !sameTexels(tex0.PSM, t.TEX0.PSM) {
					continue
				}
				tr, ok := translateRect(off, t.Offset(), r)
				if !ok || !tr.In(t.Valid) {
					continue
				}
				if scale != 0 && t.Scale != scale {
					return nil, nil
				}
				scale = t.Scale
				pieces = append(pieces, piece{t: t, r: r, tr: tr})
				found = true
				break
			}
			if !found {
				return nil, nil
			}
		}
	}

	if len(pieces) < 2 {
		return nil, nil
	}
	single := true
	for _, p := range pieces[1:] {
		if p.t != pieces[0].t {
			single = false
			break
		}
	}
	if single {
		return nil, nil
	}

	sz := gpu.ScaleRect(image.Rectangle{Max: texRect.Size()}, scale).Size()
	tex, err := c.createTexture(sz.X, sz.Y, gpu.FormatColor)
	if err != nil {
		return nil, err
	}
	c.dev.Clear(tex, 0)

	for _, p := range pieces {
		p.t.Age = 0
		c.loadUndefinedBits(p.t, tex0.PSM)
		p.t.Update(false)
		d := gpu.ScaleRect(p.r.Sub(texRect.Min), scale)
		c.dev.CopyRect(p.t.Texture, tex, p.t.scaled(p.tr), d.Min.X, d.Min.Y)
	}

	s := newSource(tex0, texa, region, texRect, lod, repeating)
	s.Texture = tex
	s.Scale = scale
	s.merged = true
	s.complete = true
	s.ValidRect = texRect
	c.sourceMemory += tex.MemUsage()
	c.sources.Add(s)

	logger.Logf(c, "texcache", "created %s from %d pieces", s, len(pieces))

	return s, nil
}
