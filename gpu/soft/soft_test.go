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

package soft_test

import (
	"image"
	"testing"

	"github.com/jetsetilly/gstexcache/curated"
	"github.com/jetsetilly/gstexcache/gpu"
	"github.com/jetsetilly/gstexcache/gpu/soft"
	"github.com/jetsetilly/gstexcache/test"
)

func fill(tex gpu.Texture, dev *soft.Device) {
	sz := tex.Size()
	pix := make([]uint32, sz.X*sz.Y)
	for i := range pix {
		pix[i] = uint32(i)
	}
	dev.Upload(tex, image.Rect(0, 0, sz.X, sz.Y), pix, sz.X)
}

func TestCreateDestroy(t *testing.T) {
	dev := soft.NewDevice()
	tex, err := dev.CreateTexture(16, 8, gpu.FormatColor)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, tex.Size(), image.Pt(16, 8))
	test.ExpectEquality(t, dev.MemoryUsage(), uint64(16*8*4))
	test.ExpectEquality(t, dev.Live(), 1)

	dev.DestroyTexture(tex)
	test.ExpectEquality(t, dev.MemoryUsage(), uint64(0))
	test.ExpectEquality(t, dev.Live(), 0)
	test.ExpectEquality(t, dev.Created(), 1)

	_, err = dev.CreateTexture(0, 8, gpu.FormatColor)
	test.ExpectSuccess(t, curated.Is(err, soft.BadSize))
}

func TestMemoryLimit(t *testing.T) {
	dev := soft.NewDevice()
	dev.SetMemoryLimit(1024)
	_, err := dev.CreateTexture(16, 16, gpu.FormatColor)
	test.ExpectSuccess(t, err)
	_, err = dev.CreateTexture(1, 1, gpu.FormatColor)
	test.ExpectSuccess(t, curated.Is(err, soft.OutOfMemory))
}

func TestCopyRect(t *testing.T) {
	dev := soft.NewDevice()
	src, _ := dev.CreateTexture(8, 8, gpu.FormatColor)
	dst, _ := dev.CreateTexture(8, 8, gpu.FormatColor)
	fill(src, dev)

	dev.CopyRect(src, dst, image.Rect(2, 2, 4, 4), 5, 6)
	d := dst.(*soft.Texture)
	test.ExpectEquality(t, d.At(5, 6), uint32(2*8+2))
	test.ExpectEquality(t, d.At(6, 7), uint32(3*8+3))

	// copy is clipped at the edge of the destination
	dev.CopyRect(src, dst, image.Rect(0, 0, 4, 4), 6, 0)
	test.ExpectEquality(t, d.At(7, 1), uint32(1*8+1))

	// overlapping copy inside the same texture
	dev.CopyRect(src, src, image.Rect(0, 0, 4, 1), 1, 0)
	s := src.(*soft.Texture)
	test.ExpectEquality(t, s.At(1, 0), uint32(0))
	test.ExpectEquality(t, s.At(4, 0), uint32(3))
}

func TestStretchRectMask(t *testing.T) {
	dev := soft.NewDevice()
	src, _ := dev.CreateTexture(2, 2, gpu.FormatColor)
	dst, _ := dev.CreateTexture(4, 4, gpu.FormatColor)
	dev.Clear(src, 0xaabbccdd)
	dev.Clear(dst, 0x11223344)

	dev.StretchRect(src, image.Rect(0, 0, 2, 2), dst, image.Rect(0, 0, 4, 4), gpu.ShaderCopy, 0x00ffffff)
	d := dst.(*soft.Texture)
	test.ExpectEquality(t, d.At(3, 3), uint32(0x11bbccdd))
}

func TestDownload(t *testing.T) {
	dev := soft.NewDevice()
	src, _ := dev.CreateTexture(8, 8, gpu.FormatColor)
	fill(src, dev)

	dl, err := dev.CreateDownloadTexture(2, 2)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, dl.Copy(src, image.Rect(4, 4, 6, 6)))
	pix, pitch := dl.Map()
	test.ExpectEquality(t, pitch, 2)
	test.ExpectEquality(t, pix[0], uint32(4*8+4))
	test.ExpectEquality(t, pix[3], uint32(5*8+5))
	dl.Unmap()
	dl.Destroy()
}

func TestUploadFailure(t *testing.T) {
	dev := soft.NewDevice()
	tex, err := dev.CreateTexture(4, 4, gpu.FormatColor)
	test.DemandSuccess(t, err)

	dev.SetUploadFailure(true)
	err = dev.Upload(tex, image.Rect(0, 0, 1, 1), []uint32{1}, 1)
	test.ExpectSuccess(t, curated.Is(err, soft.UploadFault))
	test.ExpectEquality(t, tex.(*soft.Texture).At(0, 0), uint32(0))

	dev.SetUploadFailure(false)
	test.ExpectSuccess(t, dev.Upload(tex, image.Rect(0, 0, 1, 1), []uint32{1}, 1))
	test.ExpectEquality(t, tex.(*soft.Texture).At(0, 0), uint32(1))
}
