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

package workload

import (
	"image"

	"github.com/jetsetilly/gstexcache/curated"
	"github.com/jetsetilly/gstexcache/digest"
	"github.com/jetsetilly/gstexcache/gpu"
	"github.com/jetsetilly/gstexcache/gs/regs"
	"github.com/jetsetilly/gstexcache/gs/vram"
	"github.com/jetsetilly/gstexcache/logger"
	"github.com/jetsetilly/gstexcache/texcache"
)

// Stats counts the operations performed by a Renderer.
type Stats struct {
	Frames    int
	Draws     int
	Transfers int
	Downloads int
	Moves     int

	// local to local copies that could not be done on the device
	MemoryMoves int

	// targets removed because a draw grew into them
	HandOffs int
}

// Renderer performs GS operations against a texture cache.
type Renderer struct {
	Cache *texcache.Cache
	Mem   *vram.Memory

	dev gpu.Device

	// resolution multiplier of new targets
	scale float32

	// one texel texture used to fill untextured draws
	brush gpu.Texture

	Stats Stats

	// if not nil the displayed frame is added to the digest on every vsync
	Digest *digest.Frame
}

// NewRenderer is the preferred method of initialisation for the Renderer type.
// Render targets are created at the scale, which must be at least one.
func NewRenderer(dev gpu.Device, scale float32) (*Renderer, error) {
	if scale < 1 {
		scale = 1
	}

	r := &Renderer{
		Mem:   vram.NewMemory(),
		dev:   dev,
		scale: scale,
	}

	var err error

	r.Cache, err = texcache.NewCache(dev, r.Mem)
	if err != nil {
		return nil, curated.Errorf("workload: %v", err)
	}

	r.brush, err = dev.CreateTexture(1, 1, gpu.FormatColor)
	if err != nil {
		return nil, curated.Errorf("workload: %v", err)
	}

	return r, nil
}

// Destroy the cache and any device resources used by the renderer.
func (r *Renderer) Destroy() {
	r.Cache.RemoveAll()
	if r.brush != nil {
		r.dev.DestroyTexture(r.brush)
		r.brush = nil
	}
}

// Transfer writes pixels from the host to local memory. The pixels are raw
// values of the destination storage mode, one row after another.
func (r *Renderer) Transfer(buf regs.BITBLTBUF, rect image.Rectangle, pix []uint32) {
	r.Stats.Transfers++
	r.writeLocal(vram.NewOffset(buf.DBP, buf.DBW, buf.DPSM), rect, pix)
}

func (r *Renderer) writeLocal(off vram.Offset, rect image.Rectangle, pix []uint32) {
	r.Mem.WriteImage(off, rect, pix)
	r.Cache.InvalidateVideoMem(off, rect, true, true)
}

// Download reads pixels from local memory to the host. Targets holding the
// area are written back to local memory first.
func (r *Renderer) Download(buf regs.BITBLTBUF, rect image.Rectangle) []uint32 {
	r.Stats.Downloads++
	return r.readLocal(vram.NewOffset(buf.SBP, buf.SBW, buf.SPSM), rect)
}

func (r *Renderer) readLocal(off vram.Offset, rect image.Rectangle) []uint32 {
	r.Cache.InvalidateLocalMem(off, rect)
	pix := make([]uint32, rect.Dx()*rect.Dy())
	r.Mem.ReadImage(off, rect, pix)
	return pix
}

// Copy moves a rectangle of local memory from the source to the destination
// of the BITBLTBUF. The copy is made on the device when the cache can do it.
// Otherwise it is made in local memory.
func (r *Renderer) Copy(buf regs.BITBLTBUF, sx, sy, dx, dy, w, h int) {
	if r.Cache.Move(buf.SBP, buf.SBW, buf.SPSM, sx, sy, buf.DBP, buf.DBW, buf.DPSM, dx, dy, w, h) {
		r.Stats.Moves++
		return
	}
	if buf.SBP == buf.DBP && buf.SBW == buf.DBW && buf.SPSM == buf.DPSM &&
		r.Cache.ShuffleMove(buf.DBP, buf.DBW, buf.DPSM, sx, sy, dx, dy, w, h) {
		r.Stats.Moves++
		return
	}

	sr := image.Rect(sx, sy, sx+w, sy+h)
	dr := image.Rect(dx, dy, dx+w, dy+h)

	pix := r.readLocal(vram.NewOffset(buf.SBP, buf.SBW, buf.SPSM), sr)

	// the pixels are converted through the texel representation when the
	// storage modes differ
	if buf.SPSM != buf.DPSM {
		for i := range pix {
			pix[i] = regs.Pack(buf.DPSM, regs.TargetTEXA.Expand(buf.SPSM, pix[i]))
		}
	}

	r.writeLocal(vram.NewOffset(buf.DBP, buf.DBW, buf.DPSM), dr, pix)
	r.Stats.MemoryMoves++
}

// Draw describes a single draw.
type Draw struct {
	Frame regs.FRAME

	// the drawn area in frame buffer pixels
	Rect image.Rectangle

	// depth buffer written by the draw. nil if the draw does not use depth
	ZBuf *regs.ZBUF

	// texture sampled by the draw. nil for untextured draws
	TEX0  *regs.TEX0
	TEXA  regs.TEXA
	CLAMP regs.CLAMP
	LOD   regs.LOD

	// texel of untextured draws
	Colour uint32

	// the draw covers all of Rect in every written bit
	IsClear bool
}

// Draw performs the draw. The source returned is the texture sampled by the
// draw, if any.
func (r *Renderer) Draw(d Draw) (*texcache.Source, error) {
	if d.Rect.Empty() {
		return nil, nil
	}

	rt, err := r.Cache.LookupTarget(d.Frame.TEX0(), d.Rect.Max, r.scale, texcache.RenderTarget,
		true, d.Frame.FBMSK, false, false, d.IsClear)
	if err != nil {
		return nil, curated.Errorf("workload: %v", err)
	}
	r.Cache.UpdateTarget(rt)

	writtenBits := d.Frame.PSM.Info().WordMask() &^ d.Frame.FBMSK

	var src *texcache.Source
	if d.TEX0 != nil {
		tr := image.Rect(0, 0, d.TEX0.Width(), d.TEX0.Height())
		if d.TEX0.PSM.Info().Depth {
			src, err = r.Cache.LookupDepthSource(*d.TEX0, d.TEXA, d.CLAMP, tr)
		} else {
			src, err = r.Cache.LookupSource(*d.TEX0, d.TEXA, d.CLAMP, tr, d.LOD)
		}
		if err != nil {
			return nil, curated.Errorf("workload: %v", err)
		}
	}

	dr := gpu.ScaleRect(d.Rect, rt.Scale)
	if src != nil {
		r.dev.StretchRect(src.Texture, sampledRect(src), rt.Texture, dr, gpu.ShaderCopy, writtenBits)
	} else {
		if err := r.dev.Upload(r.brush, image.Rect(0, 0, 1, 1), []uint32{d.Colour}, 1); err != nil {
			return nil, curated.Errorf("workload: %v", err)
		}
		r.dev.StretchRect(r.brush, image.Rect(0, 0, 1, 1), rt.Texture, dr, gpu.ShaderCopy, writtenBits)
	}

	if d.ZBuf != nil && !d.ZBuf.ZMSK {
		if err := r.drawDepth(d); err != nil {
			return nil, err
		}
	}

	if old := r.Cache.CommitDraw(rt, d.Rect, writtenBits); old != nil {
		logger.Logf(r.Cache, "workload", "draw to %s took over %s", rt, old)
		r.Stats.HandOffs++
	}

	r.Cache.DrawComplete()
	r.Stats.Draws++

	return src, nil
}

// drawDepth clears the drawn area of the depth buffer.
func (r *Renderer) drawDepth(d Draw) error {
	zt, err := r.Cache.LookupTarget(d.ZBuf.TEX0(d.Frame.FBW), d.Rect.Max, r.scale, texcache.DepthStencil,
		true, 0, false, false, d.IsClear)
	if err != nil {
		return curated.Errorf("workload: %v", err)
	}
	r.Cache.UpdateTarget(zt)

	dr := gpu.ScaleRect(d.Rect, zt.Scale)
	if err := r.dev.Upload(zt.Texture, dr, make([]uint32, dr.Dx()*dr.Dy()), dr.Dx()); err != nil {
		return curated.Errorf("workload: %v", err)
	}

	r.Cache.CommitDraw(zt, d.Rect, d.ZBuf.PSM.Info().WordMask())

	return nil
}

// VSync displays the frame buffer and ages the content of the cache. The
// height is the number of lines of the display.
func (r *Renderer) VSync(display regs.FRAME, height int) error {
	r.Cache.SetDisplayHeight(height)

	size := image.Pt(int(display.FBW)*64, height)
	_, _, err := r.Cache.LookupDisplayTarget(display.TEX0(), size, r.scale)
	if err != nil {
		return curated.Errorf("workload: %v", err)
	}

	if r.Digest != nil {
		r.Digest.AddFrame(r.readLocal(display.TEX0().Offset(), image.Rectangle{Max: size}))
	}

	r.Cache.IncAge()
	r.Stats.Frames++

	return nil
}

// the area of the source texture covering the sampled texture.
func sampledRect(s *texcache.Source) image.Rectangle {
	if s.IsTargetBacked() {
		sz := s.TexRect().Size()
		if s.Shuffle {
			// a page of 16-bit pixels is twice the height of a page of
			// the 32-bit texels holding it
			sz.Y /= 2
		}
		return gpu.ScaleRect(image.Rectangle{Min: s.TargetOffset, Max: s.TargetOffset.Add(sz)}, s.Target.Scale)
	}
	return image.Rectangle{Max: s.Texture.Size()}
}

// Position implements the random.Position interface.
func (r *Renderer) Position() (int, int) {
	return r.Stats.Frames, r.Cache.DrawNumber()
}
