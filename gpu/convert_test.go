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

package gpu_test

import (
	"image"
	"testing"

	"github.com/jetsetilly/gstexcache/gpu"
	"github.com/jetsetilly/gstexcache/gs/psm"
	"github.com/jetsetilly/gstexcache/gs/regs"
	"github.com/jetsetilly/gstexcache/gs/vram"
	"github.com/jetsetilly/gstexcache/test"
)

// reinterpreting a texture must give the same result as storing it in local
// memory and reading it back in the other format
func TestReinterpretMatchesMemory(t *testing.T) {
	src := vram.NewOffset(0x100, 2, psm.PSMCT32)
	size := image.Pt(128, 64)

	mem := vram.NewMemory()
	pix := make([]uint32, size.X*size.Y)
	for i := range pix {
		pix[i] = uint32(i)*0x9e3779b1 + 0x1234
	}
	mem.WriteImage(src, image.Rect(0, 0, size.X, size.Y), pix)

	views := []vram.Offset{
		vram.NewOffset(0x100, 2, psm.PSMT8H),
		vram.NewOffset(0x100, 2, psm.PSMCT16),
		vram.NewOffset(0x100, 2, psm.PSMT8),
		vram.NewOffset(0x120, 2, psm.PSMT4),
		vram.NewOffset(0x100, 2, psm.PSMCT24),
	}

	for _, view := range views {
		r := image.Rect(0, 0, 32, 16)
		got := make([]uint32, r.Dx()*r.Dy())
		gpu.ReinterpretPixels(pix, size, 1, src, got, view, r, gpu.FormatIndex, regs.TEXA{})

		want := make([]uint32, len(got))
		mem.ReadImage(view, r, want)

		test.ExpectPixels(t, got, want, r.Dx(), view)
	}
}

func TestReinterpretColour(t *testing.T) {
	// a 16-bit view of 32-bit texels is expanded with TEXA
	src := vram.NewOffset(0, 1, psm.PSMCT32)
	pix := []uint32{0x80007c00}
	dst := make([]uint32, 2)
	gpu.ReinterpretPixels(pix, image.Pt(1, 1), 1, src, dst, vram.NewOffset(0, 1, psm.PSMCT16), image.Rect(0, 0, 2, 1), gpu.FormatColor, regs.TargetTEXA)
	test.ExpectEquality(t, dst[0], regs.TargetTEXA.Expand(psm.PSMCT16, 0x7c00))
	test.ExpectEquality(t, dst[1], regs.TargetTEXA.Expand(psm.PSMCT16, 0x8000))
}

func TestStretch(t *testing.T) {
	src := []uint32{1, 2, 3, 4}
	dst := gpu.Stretch(src, image.Rect(0, 0, 2, 2), image.Rect(0, 0, 4, 4), gpu.ShaderCopy)
	test.DemandEquality(t, len(dst), 16)
	test.ExpectEquality(t, dst[0], uint32(1))
	test.ExpectEquality(t, dst[3], uint32(2))
	test.ExpectEquality(t, dst[15], uint32(4))

	test.ExpectEquality(t, gpu.ScaleRect(image.Rect(1, 1, 3, 3), 2), image.Rect(2, 2, 6, 6))
}

func TestShaders(t *testing.T) {
	texel := regs.TargetTEXA.Expand(psm.PSMCT16, 0x8421)
	test.ExpectEquality(t, gpu.ApplyShader(gpu.ShaderPack16, texel), uint32(0x8421))
	test.ExpectEquality(t, gpu.ApplyShader(gpu.ShaderUnpack16, 0x8421), texel)
	test.ExpectEquality(t, gpu.ApplyShader(gpu.ShaderCopy, 0x8421), uint32(0x8421))
	test.ExpectEquality(t, gpu.ApplyShader(gpu.ShaderShuffleRGToBA, 0x11223344), uint32(0x33443344))
	test.ExpectEquality(t, gpu.ApplyShader(gpu.ShaderShuffleBAToRG, 0x11223344), uint32(0x11221122))
}
