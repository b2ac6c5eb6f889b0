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

package opengl

import (
	"image"

	"github.com/go-gl/gl/v3.2-core/gl"
	"github.com/jetsetilly/gstexcache/assert"
	"github.com/jetsetilly/gstexcache/curated"
	"github.com/jetsetilly/gstexcache/gpu"
	"github.com/jetsetilly/gstexcache/gs/regs"
	"github.com/jetsetilly/gstexcache/gs/vram"
)

// Sentinal errors.
const (
	OutOfMemory = "opengl: out of memory creating %dx%d texture"
	WrongThread = "opengl: device used outside of the goroutine holding the context"
	BadSize     = "opengl: invalid texture size %dx%d"
)

type texture struct {
	id     uint32
	width  int
	height int
	format gpu.Format
}

func (tex *texture) Size() image.Point {
	return image.Pt(tex.width, tex.height)
}

func (tex *texture) Format() gpu.Format {
	return tex.format
}

func (tex *texture) MemUsage() uint64 {
	return uint64(tex.width) * uint64(tex.height) * 4
}

// Device is the OpenGL implementation of gpu.Device.
type Device struct {
	// the goroutine holding the OpenGL context
	owner assert.Owner

	readFBO uint32
	drawFBO uint32
	memory  uint64
}

// NewDevice is the preferred method of initialisation for the Device type. A
// current OpenGL context is required.
func NewDevice() *Device {
	dev := &Device{
		owner: assert.NewOwner(),
	}
	gl.GenFramebuffers(1, &dev.readFBO)
	gl.GenFramebuffers(1, &dev.drawFBO)
	return dev
}

// Destroy should be called when the Device is no longer required.
func (dev *Device) Destroy() {
	gl.DeleteFramebuffers(1, &dev.readFBO)
	gl.DeleteFramebuffers(1, &dev.drawFBO)
}

// CreateTexture implements the gpu.Device interface.
func (dev *Device) CreateTexture(width, height int, format gpu.Format) (gpu.Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, curated.Errorf(BadSize, width, height)
	}

	// textures are only created occasionally so this is a good place to
	// catch a device being used on the wrong thread
	if !dev.owner.IsOwner() {
		return nil, curated.Errorf(WrongThread)
	}

	tex := &texture{
		width:  width,
		height: height,
		format: format,
	}

	// clear any outstanding errors so that we can detect allocation failure
	for gl.GetError() != gl.NO_ERROR {
	}

	gl.GenTextures(1, &tex.id)
	gl.BindTexture(gl.TEXTURE_2D, tex.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0,
		gl.RGBA8, int32(width), int32(height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE,
		nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	if gl.GetError() == gl.OUT_OF_MEMORY {
		gl.DeleteTextures(1, &tex.id)
		return nil, curated.Errorf(OutOfMemory, width, height)
	}

	dev.memory += tex.MemUsage()

	return tex, nil
}

// DestroyTexture implements the gpu.Device interface.
func (dev *Device) DestroyTexture(t gpu.Texture) {
	tex := t.(*texture)
	if tex.id == 0 {
		return
	}
	gl.DeleteTextures(1, &tex.id)
	tex.id = 0
	dev.memory -= tex.MemUsage()
}

// Upload implements the gpu.Device interface.
func (dev *Device) Upload(t gpu.Texture, r image.Rectangle, pixels []uint32, pitch int) error {
	tex := t.(*texture)
	if r.Empty() || len(pixels) == 0 {
		return nil
	}

	gl.BindTexture(gl.TEXTURE_2D, tex.id)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(pitch))
	gl.TexSubImage2D(gl.TEXTURE_2D, 0,
		int32(r.Min.X), int32(r.Min.Y), int32(r.Dx()), int32(r.Dy()),
		gl.RGBA, gl.UNSIGNED_BYTE,
		gl.Ptr(pixels))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)

	if err := gl.GetError(); err != gl.NO_ERROR {
		return curated.Errorf("opengl: upload failed (%#x)", err)
	}

	return nil
}

// readPixels returns the texels in the rectangle of the texture.
func (dev *Device) readPixels(tex *texture, r image.Rectangle) []uint32 {
	pix := make([]uint32, r.Dx()*r.Dy())
	if len(pix) == 0 {
		return pix
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, dev.readFBO)
	gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex.id, 0)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 4)
	gl.ReadPixels(int32(r.Min.X), int32(r.Min.Y), int32(r.Dx()), int32(r.Dy()),
		gl.RGBA, gl.UNSIGNED_BYTE,
		gl.Ptr(pix))
	return pix
}

func (dev *Device) blit(src *texture, sRect image.Rectangle, dst *texture, dRect image.Rectangle) {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, dev.readFBO)
	gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, src.id, 0)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, dev.drawFBO)
	gl.FramebufferTexture2D(gl.DRAW_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, dst.id, 0)
	gl.BlitFramebuffer(
		int32(sRect.Min.X), int32(sRect.Min.Y), int32(sRect.Max.X), int32(sRect.Max.Y),
		int32(dRect.Min.X), int32(dRect.Min.Y), int32(dRect.Max.X), int32(dRect.Max.Y),
		gl.COLOR_BUFFER_BIT, gl.NEAREST)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func bounds(tex *texture) image.Rectangle {
	return image.Rect(0, 0, tex.width, tex.height)
}

// CopyRect implements the gpu.Device interface.
func (dev *Device) CopyRect(s gpu.Texture, d gpu.Texture, r image.Rectangle, dx, dy int) {
	src := s.(*texture)
	dst := d.(*texture)

	r = r.Intersect(bounds(src))
	dr := r.Add(image.Pt(dx, dy).Sub(r.Min)).Intersect(bounds(dst))
	if dr.Empty() {
		return
	}
	r = image.Rectangle{Min: dr.Min.Sub(image.Pt(dx, dy)).Add(r.Min), Max: dr.Max.Sub(image.Pt(dx, dy)).Add(r.Min)}

	// blitting between overlapping areas of the same texture is undefined
	if src == dst && r.Overlaps(dr) {
		dev.Upload(dst, dr, dev.readPixels(src, r), r.Dx())
		return
	}

	dev.blit(src, r, dst, dr)
}

// StretchRect implements the gpu.Device interface.
func (dev *Device) StretchRect(s gpu.Texture, sRect image.Rectangle, d gpu.Texture, dRect image.Rectangle, shader gpu.Shader, mask uint32) {
	src := s.(*texture)
	dst := d.(*texture)

	sRect = sRect.Intersect(bounds(src))
	if sRect.Empty() || dRect.Empty() {
		return
	}

	if shader == gpu.ShaderCopy && mask == 0xffffffff && src != dst {
		dev.blit(src, sRect, dst, dRect)
		return
	}

	pix := gpu.Stretch(dev.readPixels(src, sRect), sRect, dRect, shader)

	c := dRect.Intersect(bounds(dst))
	if c.Empty() {
		return
	}
	if c != dRect {
		pix = crop(pix, dRect, c)
	}

	if mask != 0xffffffff {
		old := dev.readPixels(dst, c)
		for i := range pix {
			pix[i] = (old[i] &^ mask) | (pix[i] & mask)
		}
	}

	dev.Upload(dst, c, pix, c.Dx())
}

// crop returns the texels of the clipped rectangle c from pixels covering r.
func crop(pix []uint32, r image.Rectangle, c image.Rectangle) []uint32 {
	out := make([]uint32, 0, c.Dx()*c.Dy())
	w := r.Dx()
	for y := c.Min.Y; y < c.Max.Y; y++ {
		s := (y-r.Min.Y)*w + (c.Min.X - r.Min.X)
		out = append(out, pix[s:s+c.Dx()]...)
	}
	return out
}

// Clear implements the gpu.Device interface.
func (dev *Device) Clear(t gpu.Texture, value uint32) {
	tex := t.(*texture)
	pix := make([]uint32, tex.width*tex.height)
	for i := range pix {
		pix[i] = value
	}
	dev.Upload(tex, bounds(tex), pix, tex.width)
}

// Reinterpret implements the gpu.Device interface.
func (dev *Device) Reinterpret(s gpu.Texture, srcScale float32, srcLayout vram.Offset, d gpu.Texture, dstLayout vram.Offset, dstRect image.Rectangle, texa regs.TEXA) {
	src := s.(*texture)
	dst := d.(*texture)

	pix := make([]uint32, dstRect.Dx()*dstRect.Dy())
	gpu.ReinterpretPixels(dev.readPixels(src, bounds(src)), src.Size(), srcScale, srcLayout, pix, dstLayout, dstRect, dst.format, texa)
	dev.Upload(dst, image.Rect(0, 0, dstRect.Dx(), dstRect.Dy()), pix, dstRect.Dx())
}

// MemoryUsage implements the gpu.Device interface.
func (dev *Device) MemoryUsage() uint64 {
	return dev.memory
}

type download struct {
	dev    *Device
	width  int
	height int
	pix    []uint32
}

// CreateDownloadTexture implements the gpu.Device interface.
func (dev *Device) CreateDownloadTexture(width, height int) (gpu.DownloadTexture, error) {
	if width <= 0 || height <= 0 {
		return nil, curated.Errorf(BadSize, width, height)
	}

	// textures are only created occasionally so this is a good place to
	// catch a device being used on the wrong thread
	if !dev.owner.IsOwner() {
		return nil, curated.Errorf(WrongThread)
	}
	return &download{
		dev:    dev,
		width:  width,
		height: height,
		pix:    make([]uint32, width*height),
	}, nil
}

func (dl *download) Copy(s gpu.Texture, r image.Rectangle) error {
	src := s.(*texture)
	r = r.Intersect(bounds(src))
	r.Max.X = min(r.Max.X, r.Min.X+dl.width)
	r.Max.Y = min(r.Max.Y, r.Min.Y+dl.height)
	pix := dl.dev.readPixels(src, r)
	for y := 0; y < r.Dy(); y++ {
		copy(dl.pix[y*dl.width:], pix[y*r.Dx():(y+1)*r.Dx()])
	}
	return nil
}

func (dl *download) Map() ([]uint32, int) {
	return dl.pix, dl.width
}

func (dl *download) Unmap() {
}

func (dl *download) Destroy() {
	dl.pix = nil
}
