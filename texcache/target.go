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

	"github.com/jetsetilly/gstexcache/gpu"
	"github.com/jetsetilly/gstexcache/gs/regs"
	"github.com/jetsetilly/gstexcache/logger"
)

// Kind of target.
type Kind int

// List of target kinds.
const (
	RenderTarget Kind = iota
	DepthStencil
	numKinds
)

func (k Kind) String() string {
	switch k {
	case RenderTarget:
		return "render target"
	case DepthStencil:
		return "depth stencil"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) format() gpu.Format {
	if k == DepthStencil {
		return gpu.FormatDepth
	}
	return gpu.FormatColor
}

func (k Kind) other() Kind {
	if k == DepthStencil {
		return RenderTarget
	}
	return DepthStencil
}

// maximum size of a target in local memory pixels
const maxTargetSize = 2048

// Target is a render target or depth buffer.
type Target struct {
	Surface

	Kind Kind

	// areas that have been written in local memory since the texture was
	// last brought up to date
	dirty dirtyRects

	// the area of the texture that holds meaningful content. grows only
	Valid image.Rectangle

	// the area that has been drawn to since the target was last written
	// back to local memory
	DrawnSinceRead image.Rectangle

	// the bits of the texels that hold meaningful content
	ValidBits uint32

	IsFrame bool
	Used    bool

	ReadbacksSinceDraw int

	// sources that read from this target
	dependents []*Source

	tc *Cache
}

func (t *Target) String() string {
	return fmt.Sprintf("%s %s %dx%d", t.Kind, t.Offset(), t.UnscaledSize.X, t.UnscaledSize.Y)
}

// Dirty returns true if the target has pending dirty rectangles.
func (t *Target) Dirty() bool {
	return len(t.dirty) > 0
}

// DirtyRects returns a copy of the pending dirty rectangles.
func (t *Target) DirtyRects() []DirtyRect {
	return append([]DirtyRect(nil), t.dirty...)
}

// Dependents returns the number of sources reading from the target.
func (t *Target) Dependents() int {
	return len(t.dependents)
}

func (t *Target) addDirty(d DirtyRect) bool {
	d.Rect = d.Rect.Intersect(t.UnscaledRect())
	return t.dirty.add(d)
}

func (t *Target) addDependent(s *Source) {
	t.dependents = append(t.dependents, s)
}

func (t *Target) removeDependent(s *Source) {
	for i, d := range t.dependents {
		if d == s {
			t.dependents = append(t.dependents[:i], t.dependents[i+1:]...)
			return
		}
	}
}

// canResize returns false if growing the target to cover the rectangle would
// take the target beyond the growth limit.
func (t *Target) canResize(r image.Rectangle) bool {
	if r.Max.X > maxTargetSize || r.Max.Y > maxTargetSize {
		return false
	}
	limit := t.tc.growthLimit()
	return limit <= 0 || r.Max.Y <= limit || r.Max.Y <= t.UnscaledSize.Y
}

// UpdateValidity adds the rectangle to the valid area of the target. If the
// target can't be resized then the rectangle is clipped to the current size
// of the target.
func (t *Target) UpdateValidity(r image.Rectangle, canResize bool) {
	r = r.Intersect(image.Rect(0, 0, maxTargetSize, maxTargetSize))
	if !canResize || !t.canResize(r) {
		r = r.Intersect(t.UnscaledRect())
	}
	if r.Empty() {
		return
	}
	t.Valid = t.Valid.Union(r)
	t.updateEndBlock(t.Valid)
}

// UpdateDrawn adds the rectangle to the drawn area of the target. Clipped in
// the same way as UpdateValidity().
func (t *Target) UpdateDrawn(r image.Rectangle, canResize bool) {
	r = r.Intersect(image.Rect(0, 0, maxTargetSize, maxTargetSize))
	if !canResize || !t.canResize(r) {
		r = r.Intersect(t.UnscaledRect())
	}
	if r.Empty() {
		return
	}
	t.DrawnSinceRead = t.DrawnSinceRead.Union(r)
	t.ReadbacksSinceDraw = 0
}

// UpdateValidBits adds to the bits of the target that hold meaningful
// content. Bits that the format of the target doesn't define are ignored.
func (t *Target) UpdateValidBits(bits uint32) {
	t.ValidBits |= bits & t.TEX0.PSM.Info().WordMask()
}

// ResizeTexture grows the texture of the target. The target never shrinks
// and the scale is unchanged. Existing content is copied to the new texture.
// Returns false if the new texture could not be created.
func (t *Target) ResizeTexture(width, height int) bool {
	width = min(max(width, t.UnscaledSize.X), maxTargetSize)
	height = min(max(height, t.UnscaledSize.Y), maxTargetSize)
	if width == t.UnscaledSize.X && height == t.UnscaledSize.Y {
		return true
	}

	c := t.tc
	sz := gpu.ScaleRect(image.Rect(0, 0, width, height), t.Scale).Size()

	tex, err := c.createTexture(sz.X, sz.Y, t.Kind.format())
	if err != nil {
		logger.Logf(c, "texcache", "resize of %s failed: %v", t, err)
		return false
	}

	old := t.Texture
	c.dev.Clear(tex, 0)
	c.dev.CopyRect(old, tex, image.Rectangle{Max: old.Size()}, 0, 0)
	c.targetMemory -= old.MemUsage()
	c.targetMemory += tex.MemUsage()
	c.dev.DestroyTexture(old)

	t.Texture = tex
	t.UnscaledSize = image.Pt(width, height)
	for _, s := range t.dependents {
		if s.SharedTexture {
			s.Texture = tex
		}
	}

	logger.Logf(c, "texcache", "resized %s", t)

	return true
}

// Update applies the pending dirty rectangles to the texture of the target.
func (t *Target) Update(resetAge bool) {
	if resetAge {
		t.Age = 0
	}
	if len(t.dirty) == 0 {
		return
	}

	c := t.tc
	for _, d := range t.dirty.coalesced() {
		r := d.Rect.Intersect(t.UnscaledRect())
		if r.Empty() {
			continue
		}
		c.uploadDirty(t, d, r)
		t.UpdateValidity(r, false)
	}
	t.dirty = t.dirty[:0]
}

// UpdateIfDirtyIntersects applies the pending dirty rectangles if any of them
// intersect the rectangle.
func (t *Target) UpdateIfDirtyIntersects(r image.Rectangle) {
	if t.dirty.bounds().Overlaps(r) {
		t.Update(false)
	}
}

// uploadDirty copies the rectangle from local memory to the texture of the
// target, changing only the bits in the dirty rectangle's mask.
func (c *Cache) uploadDirty(t *Target, d DirtyRect, r image.Rectangle) {
	w, h := r.Dx(), r.Dy()
	raw := make([]uint32, w*h)
	// the rectangle is in the pixel space of the target so local memory is
	// read with the target's width
	c.mem.ReadImage(t.Offset().WithLayout(t.TEX0.TBW, d.PSM), r, raw)

	tinf := t.TEX0.PSM.Info()
	dinf := d.PSM.Info()
	for i, v := range raw {
		if tinf.AddrBits == 32 {
			raw[i] = v << dinf.Shift
		} else {
			raw[i] = regs.TargetTEXA.Expand(t.TEX0.PSM, v)
		}
	}

	if t.Scale == 1 && d.Mask == 0xffffffff {
		if err := c.dev.Upload(t.Texture, r, raw, w); err != nil {
			logger.Logf(c, "texcache", "upload to %s failed: %v", t, err)
		}
		return
	}

	tmp, err := c.createTexture(w, h, t.Kind.format())
	if err != nil {
		logger.Logf(c, "texcache", "upload to %s failed: %v", t, err)
		return
	}
	defer c.dev.DestroyTexture(tmp)

	if err := c.dev.Upload(tmp, image.Rect(0, 0, w, h), raw, w); err != nil {
		logger.Logf(c, "texcache", "upload to %s failed: %v", t, err)
		return
	}
	c.dev.StretchRect(tmp, image.Rect(0, 0, w, h), t.Texture, t.scaled(r), gpu.ShaderCopy, d.Mask)
}
