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

// Package gpu defines the graphics device used by the texture cache. The
// device creates textures, uploads pixels to them, copies between them and
// reads them back.
//
// Texels are 32-bit values. For colour textures red is in the low byte and
// alpha in the high byte, which is the same arrangement as a 32-bit pixel in
// GS local memory. Depth textures hold the raw depth value and index
// textures hold the raw palette index.
//
// The soft sub-package implements the Device interface in main memory and the
// opengl sub-package implements it with OpenGL 3.2.
package gpu

import (
	"image"

	"github.com/jetsetilly/gstexcache/gs/regs"
	"github.com/jetsetilly/gstexcache/gs/vram"
)

// Format of a texture.
type Format int

// List of texture formats.
const (
	FormatColor Format = iota
	FormatDepth
	FormatIndex
)

func (f Format) String() string {
	switch f {
	case FormatDepth:
		return "depth"
	case FormatIndex:
		return "index"
	}
	return "color"
}

// Shader selects the conversion applied to texels by StretchRect().
type Shader int

// List of shaders.
const (
	// texels are copied unchanged
	ShaderCopy Shader = iota

	// colour texels are packed into 16-bit depth values
	ShaderPack16

	// 16-bit depth values are expanded into colour texels
	ShaderUnpack16

	// the red and green channels are copied to blue and alpha. the low half of
	// the texel is moved to the high half
	ShaderShuffleRGToBA

	// the blue and alpha channels are copied to red and green
	ShaderShuffleBAToRG
)

// Texture is a surface created by the device.
type Texture interface {
	Size() image.Point
	Format() Format

	// the number of bytes of device memory used by the texture
	MemUsage() uint64
}

// DownloadTexture is a staging surface used to read texels back to main
// memory.
type DownloadTexture interface {
	// Copy the rectangle of the texture to the top-left corner of the
	// download texture
	Copy(src Texture, r image.Rectangle) error

	// Map returns the texels of the download texture and the number of texels
	// in a row. The slice is valid until Unmap() is called
	Map() ([]uint32, int)
	Unmap()

	Destroy()
}

// Device is the graphics device used by the texture cache.
type Device interface {
	CreateTexture(width, height int, format Format) (Texture, error)
	DestroyTexture(tex Texture)

	// Upload texels to the rectangle of the texture. The pitch is the number
	// of texels in a row of the pixels slice
	Upload(tex Texture, r image.Rectangle, pixels []uint32, pitch int) error

	// CopyRect copies the rectangle of src to dst with the top-left corner at
	// dx, dy. No scaling or conversion takes place
	CopyRect(src Texture, dst Texture, r image.Rectangle, dx, dy int)

	// StretchRect copies the source rectangle to the destination rectangle,
	// scaling with nearest-neighbour filtering. Only the bits of the
	// destination texels set in mask are changed
	StretchRect(src Texture, sRect image.Rectangle, dst Texture, dRect image.Rectangle, shader Shader, mask uint32)

	// Clear sets every texel of the texture to the value
	Clear(tex Texture, value uint32)

	// Reinterpret fills dst with the pixels of the destination layout in
	// dstRect, as they would be read from local memory if the source texture
	// was stored there with the source layout. The result is placed in the
	// top-left corner of dst. Colour results are expanded with texa
	Reinterpret(src Texture, srcScale float32, srcLayout vram.Offset, dst Texture, dstLayout vram.Offset, dstRect image.Rectangle, texa regs.TEXA)

	CreateDownloadTexture(width, height int) (DownloadTexture, error)

	// the number of bytes of device memory used by all live textures
	MemoryUsage() uint64
}
