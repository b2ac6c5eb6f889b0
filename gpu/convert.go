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

package gpu

import (
	"image"

	"github.com/jetsetilly/gstexcache/gs/psm"
	"github.com/jetsetilly/gstexcache/gs/regs"
	"github.com/jetsetilly/gstexcache/gs/vram"
)

// ApplyShader converts a single texel. Device implementations that work on
// the CPU use this to implement StretchRect().
func ApplyShader(shader Shader, v uint32) uint32 {
	switch shader {
	case ShaderPack16:
		return regs.Pack(psm.PSMCT16, v)
	case ShaderUnpack16:
		return regs.TargetTEXA.Expand(psm.PSMCT16, v)
	case ShaderShuffleRGToBA:
		return v&0xffff | v<<16
	case ShaderShuffleBAToRG:
		return v&0xffff0000 | v>>16
	}
	return v
}

// ScaleRect multiplies the rectangle by the scale factor, rounding outwards.
func ScaleRect(r image.Rectangle, scale float32) image.Rectangle {
	if scale == 1 {
		return r
	}
	return image.Rect(
		int(float32(r.Min.X)*scale),
		int(float32(r.Min.Y)*scale),
		int(float32(r.Max.X)*scale+0.999),
		int(float32(r.Max.Y)*scale+0.999),
	)
}

// Stretch resamples the source texels to the size of the destination with
// nearest-neighbour filtering. The source has the dimensions of sRect and
// the result has the dimensions of dRect.
func Stretch(src []uint32, sRect image.Rectangle, dRect image.Rectangle, shader Shader) []uint32 {
	sw, sh := sRect.Dx(), sRect.Dy()
	dw, dh := dRect.Dx(), dRect.Dy()
	dst := make([]uint32, dw*dh)
	if sw <= 0 || sh <= 0 {
		return dst
	}
	for y := 0; y < dh; y++ {
		sy := y * sh / dh
		for x := 0; x < dw; x++ {
			sx := x * sw / dw
			dst[y*dw+x] = ApplyShader(shader, src[sy*sw+sx])
		}
	}
	return dst
}

func bitMask(n int) uint32 {
	if n >= 32 {
		return 0xffffffff
	}
	return (1 << n) - 1
}

// ReinterpretPixels is the CPU implementation of Device.Reinterpret(). The src
// slice holds the whole source texture, which has the dimensions of srcSize.
// The dst slice receives dstRect.Dx() by dstRect.Dy() texels.
func ReinterpretPixels(src []uint32, srcSize image.Point, srcScale float32, srcLayout vram.Offset, dst []uint32, dstLayout vram.Offset, dstRect image.Rectangle, dstFormat Format, texa regs.TEXA) {
	sinf := srcLayout.PSM.Info()
	dinf := dstLayout.PSM.Info()

	if srcScale <= 0 {
		srcScale = 1
	}

	// the addressing unit of the source pixel as it would be in memory
	unit := func(x, y int) uint32 {
		sx := int(float32(x) * srcScale)
		sy := int(float32(y) * srcScale)
		if sx < 0 || sy < 0 || sx >= srcSize.X || sy >= srcSize.Y {
			return 0
		}
		texel := src[sy*srcSize.X+sx]
		if sinf.AddrBits == 32 {
			return texel
		}
		return regs.Pack(srcLayout.PSM, texel)
	}

	i := 0
	for y := dstRect.Min.Y; y < dstRect.Max.Y; y++ {
		for x := dstRect.Min.X; x < dstRect.Max.X; x++ {
			a := dstLayout.BitAddress(x, y)

			// a destination pixel can span more than one source pixel
			var v uint32
			for got := 0; got < dinf.Bits; {
				sx, sy, bit := srcLayout.PixelAt(a + uint32(got))
				n := min(sinf.AddrBits-int(bit), dinf.Bits-got)
				v |= ((unit(sx, sy) >> bit) & bitMask(n)) << got
				got += n
			}

			if dstFormat == FormatIndex {
				dst[i] = v
			} else {
				dst[i] = texa.Expand(dstLayout.PSM, v)
			}
			i++
		}
	}
}
