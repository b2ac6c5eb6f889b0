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

// Package soft implements the gpu.Device interface in main memory. It is used
// for testing and for running the texture cache without a graphics context.
package soft

import (
	"image"

	"github.com/jetsetilly/gstexcache/curated"
	"github.com/jetsetilly/gstexcache/gpu"
	"github.com/jetsetilly/gstexcache/gs/regs"
	"github.com/jetsetilly/gstexcache/gs/vram"
)

// Sentinal errors.
const (
	OutOfMemory = "soft: out of memory creating %dx%d texture"
	BadSize     = "soft: invalid texture size %dx%d"
	UploadFault = "soft: upload to %dx%d texture failed"
)

// Texture is the soft implementation of gpu.Texture.
type Texture struct {
	width  int
	height int
	format gpu.Format
	Pix    []uint32
}

// Size implements the gpu.Texture interface.
func (tex *Texture) Size() image.Point {
	return image.Pt(tex.width, tex.height)
}

// Format implements the gpu.Texture interface.
func (tex *Texture) Format() gpu.Format {
	return tex.format
}

// MemUsage implements the gpu.Texture interface.
func (tex *Texture) MemUsage() uint64 {
	return uint64(tex.width) * uint64(tex.height) * 4
}

// At returns the texel at the coordinates.
func (tex *Texture) At(x, y int) uint32 {
	return tex.Pix[y*tex.width+x]
}

func (tex *Texture) bounds() image.Rectangle {
	return image.Rect(0, 0, tex.width, tex.height)
}

// read returns a copy of the texels in the rectangle. The rectangle must be
// inside the texture.
func (tex *Texture) read(r image.Rectangle) []uint32 {
	out := make([]uint32, 0, r.Dx()*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		out = append(out, tex.Pix[y*tex.width+r.Min.X:y*tex.width+r.Max.X]...)
	}
	return out
}

// Device is the soft implementation of gpu.Device.
type Device struct {
	textures map[*Texture]bool

	// the number of textures ever created
	created int

	memory uint64

	// maximum amount of memory that can be used by textures. zero means no
	// limit
	limit uint64

	failUploads bool
}

// NewDevice is the preferred method of initialisation for the Device type.
func NewDevice() *Device {
	return &Device{
		textures: make(map[*Texture]bool),
	}
}

// SetMemoryLimit limits the memory available to textures. Texture creation
// fails if the limit would be exceeded.
func (dev *Device) SetMemoryLimit(limit uint64) {
	dev.limit = limit
}

// SetUploadFailure causes every call to Upload() to fail until it is called
// again with false.
func (dev *Device) SetUploadFailure(fail bool) {
	dev.failUploads = fail
}

// Created returns the number of textures ever created by the device.
func (dev *Device) Created() int {
	return dev.created
}

// Live returns the number of textures that have not been destroyed.
func (dev *Device) Live() int {
	return len(dev.textures)
}

// CreateTexture implements the gpu.Device interface.
func (dev *Device) CreateTexture(width, height int, format gpu.Format) (gpu.Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, curated.Errorf(BadSize, width, height)
	}

	tex := &Texture{
		width:  width,
		height: height,
		format: format,
	}

	if dev.limit > 0 && dev.memory+tex.MemUsage() > dev.limit {
		return nil, curated.Errorf(OutOfMemory, width, height)
	}

	tex.Pix = make([]uint32, width*height)
	dev.textures[tex] = true
	dev.created++
	dev.memory += tex.MemUsage()

	return tex, nil
}

// DestroyTexture implements the gpu.Device interface.
func (dev *Device) DestroyTexture(t gpu.Texture) {
	tex := t.(*Texture)
	if !dev.textures[tex] {
		return
	}
	delete(dev.textures, tex)
	dev.memory -= tex.MemUsage()
}

// Upload implements the gpu.Device interface.
func (dev *Device) Upload(t gpu.Texture, r image.Rectangle, pixels []uint32, pitch int) error {
	tex := t.(*Texture)
	if dev.failUploads {
		return curated.Errorf(UploadFault, tex.width, tex.height)
	}
	c := r.Intersect(tex.bounds())
	for y := c.Min.Y; y < c.Max.Y; y++ {
		s := (y-r.Min.Y)*pitch + (c.Min.X - r.Min.X)
		copy(tex.Pix[y*tex.width+c.Min.X:y*tex.width+c.Max.X], pixels[s:s+c.Dx()])
	}
	return nil
}

// CopyRect implements the gpu.Device interface.
func (dev *Device) CopyRect(s gpu.Texture, d gpu.Texture, r image.Rectangle, dx, dy int) {
	src := s.(*Texture)
	dst := d.(*Texture)

	r = r.Intersect(src.bounds())
	dr := r.Add(image.Pt(dx, dy).Sub(r.Min)).Intersect(dst.bounds())
	if dr.Empty() {
		return
	}

	// clipping the destination also clips the source
	r = image.Rectangle{Min: dr.Min.Sub(image.Pt(dx, dy)).Add(r.Min), Max: dr.Max.Sub(image.Pt(dx, dy)).Add(r.Min)}

	// reading first means overlapping copies in the same texture work
	pix := src.read(r)
	dev.Upload(dst, dr, pix, r.Dx())
}

// StretchRect implements the gpu.Device interface.
func (dev *Device) StretchRect(s gpu.Texture, sRect image.Rectangle, d gpu.Texture, dRect image.Rectangle, shader gpu.Shader, mask uint32) {
	src := s.(*Texture)
	dst := d.(*Texture)

	sRect = sRect.Intersect(src.bounds())
	if sRect.Empty() || dRect.Empty() {
		return
	}

	pix := gpu.Stretch(src.read(sRect), sRect, dRect, shader)

	w := dRect.Dx()
	c := dRect.Intersect(dst.bounds())
	for y := c.Min.Y; y < c.Max.Y; y++ {
		for x := c.Min.X; x < c.Max.X; x++ {
			v := pix[(y-dRect.Min.Y)*w+(x-dRect.Min.X)]
			i := y*dst.width + x
			dst.Pix[i] = (dst.Pix[i] &^ mask) | (v & mask)
		}
	}
}

// Clear implements the gpu.Device interface.
func (dev *Device) Clear(t gpu.Texture, value uint32) {
	tex := t.(*Texture)
	for i := range tex.Pix {
		tex.Pix[i] = value
	}
}

// Reinterpret implements the gpu.Device interface.
func (dev *Device) Reinterpret(s gpu.Texture, srcScale float32, srcLayout vram.Offset, d gpu.Texture, dstLayout vram.Offset, dstRect image.Rectangle, texa regs.TEXA) {
	src := s.(*Texture)
	dst := d.(*Texture)

	pix := make([]uint32, dstRect.Dx()*dstRect.Dy())
	gpu.ReinterpretPixels(src.Pix, src.Size(), srcScale, srcLayout, pix, dstLayout, dstRect, dst.format, texa)
	dev.Upload(dst, image.Rect(0, 0, dstRect.Dx(), dstRect.Dy()), pix, dstRect.Dx())
}

// MemoryUsage implements the gpu.Device interface.
func (dev *Device) MemoryUsage() uint64 {
	return dev.memory
}

type download struct {
	width  int
	height int
	pix    []uint32
}

// CreateDownloadTexture implements the gpu.Device interface.
func (dev *Device) CreateDownloadTexture(width, height int) (gpu.DownloadTexture, error) {
	if width <= 0 || height <= 0 {
		return nil, curated.Errorf(BadSize, width, height)
	}
	return &download{
		width:  width,
		height: height,
		pix:    make([]uint32, width*height),
	}, nil
}

func (dl *download) Copy(s gpu.Texture, r image.Rectangle) error {
	src := s.(*Texture)
	r = r.Intersect(src.bounds())
	for y := r.Min.Y; y < r.Max.Y && y-r.Min.Y < dl.height; y++ {
		n := min(r.Dx(), dl.width)
		copy(dl.pix[(y-r.Min.Y)*dl.width:], src.Pix[y*src.width+r.Min.X:y*src.width+r.Min.X+n])
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
