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

package vram_test

import (
	"image"
	"math/rand"
	"testing"

	"github.com/jetsetilly/gstexcache/gs/psm"
	"github.com/jetsetilly/gstexcache/gs/vram"
	"github.com/jetsetilly/gstexcache/test"
)

func TestPagesWide(t *testing.T) {
	test.ExpectEquality(t, vram.NewOffset(0, 10, psm.PSMCT32).PagesWide(), 10)
	test.ExpectEquality(t, vram.NewOffset(0, 10, psm.PSMT8).PagesWide(), 5)
	test.ExpectEquality(t, vram.NewOffset(0, 1, psm.PSMT4).PagesWide(), 1)
	test.ExpectEquality(t, vram.NewOffset(0, 0, psm.PSMCT32).PagesWide(), 1)
}

func TestBitAddress(t *testing.T) {
	o := vram.NewOffset(0, 10, psm.PSMCT32)

	// second page across starts at block 32
	test.ExpectEquality(t, o.Block(64, 0), uint32(32))

	// second row of pages starts after ten pages
	test.ExpectEquality(t, o.Block(0, 32), uint32(320))

	// a block is a strip one row deep for 32-bit pixels
	test.ExpectEquality(t, o.Block(0, 1), uint32(1))

	// partial-word formats address the same word as CT32
	h := vram.NewOffset(0, 10, psm.PSMT8H)
	test.ExpectEquality(t, h.BitAddress(5, 3), o.BitAddress(5, 3)+24)

	// addresses wrap at the end of memory
	w := vram.NewOffset(vram.MaxBP, 1, psm.PSMCT32)
	test.ExpectEquality(t, w.Block(0, 1), uint32(0))
}

func TestPixelAtInverse(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for _, p := range []psm.PSM{psm.PSMCT32, psm.PSMCT24, psm.PSMCT16, psm.PSMT8, psm.PSMT4, psm.PSMT8H, psm.PSMT4HH, psm.PSMZ16S} {
		o := vram.NewOffset(uint32(rng.Intn(vram.MaxBlocks)), 10, p)
		for i := 0; i < 100; i++ {
			x := rng.Intn(640)
			y := rng.Intn(448)
			px, py, bit := o.PixelAt(o.BitAddress(x, y))
			test.ExpectEquality(t, px, x, p)
			test.ExpectEquality(t, py, y, p)
			test.ExpectEquality(t, bit, uint32(p.Info().Shift), p)
		}
	}
}

func TestBlockRange(t *testing.T) {
	o := vram.NewOffset(0x100, 10, psm.PSMCT32)

	r, ok := o.BlockRange(image.Rect(0, 0, 640, 448))
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, r.Start, uint32(0x100))

	// 14 rows of 10 pages
	test.ExpectEquality(t, r.Len(), uint32(14*10*32))
	test.ExpectFailure(t, r.Wraps)

	_, ok = o.BlockRange(image.Rectangle{})
	test.ExpectFailure(t, ok)

	// rectangle that runs past the end of memory
	w := vram.NewOffset(0x3f00, 10, psm.PSMCT32)
	r, ok = w.BlockRange(image.Rect(0, 0, 640, 64))
	test.DemandSuccess(t, ok)
	test.ExpectSuccess(t, r.Wraps)
	test.ExpectEquality(t, r.Start, uint32(0x3f00))
	test.ExpectEquality(t, r.End, uint32((0x3f00+20*32-1)&vram.MaxBP))

	// a rectangle larger than memory covers everything
	big := vram.NewOffset(0x10, 32, psm.PSMCT32)
	r, ok = big.BlockRange(image.Rect(0, 0, 2048, 2048))
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, r.Len(), uint32(vram.MaxBlocks))
}

func TestPages(t *testing.T) {
	o := vram.NewOffset(0, 10, psm.PSMCT32)
	pages := o.Pages(image.Rect(60, 30, 70, 40))
	test.DemandEquality(t, len(pages), 4)
	test.ExpectEquality(t, pages[0], uint32(0))
	test.ExpectEquality(t, pages[1], uint32(1))
	test.ExpectEquality(t, pages[2], uint32(10))
	test.ExpectEquality(t, pages[3], uint32(11))

	// unaligned base pointer straddles two pages of memory
	u := vram.NewOffset(16, 10, psm.PSMCT32)
	test.ExpectEquality(t, len(u.Pages(image.Rect(0, 0, 1, 1))), 2)

	test.ExpectEquality(t, len(o.Pages(image.Rectangle{})), 0)
}

func TestSpanRect(t *testing.T) {
	o := vram.NewOffset(0, 10, psm.PSMCT32)

	// a single block is one row of a page
	r := o.SpanRect(o.BitAddress(0, 3), o.BitAddress(63, 3)+31)
	test.ExpectEquality(t, r, image.Rect(0, 3, 64, 4))

	// a run of blocks inside one page
	r = o.SpanRect(o.BitAddress(64, 2), o.BitAddress(127, 5)+31)
	test.ExpectEquality(t, r, image.Rect(64, 2, 128, 6))

	// a 16-bit view of the same memory. two rows of 32-bit pixels are four
	// rows of 16-bit pixels
	v := vram.NewOffset(0, 10, psm.PSMCT16)
	r = v.SpanRect(o.BitAddress(0, 0), o.BitAddress(63, 1)+31)
	test.ExpectEquality(t, r, image.Rect(0, 0, 64, 4))
}

func TestTranslatable(t *testing.T) {
	a := vram.NewOffset(0, 10, psm.PSMCT32)
	test.ExpectSuccess(t, vram.NewOffset(64, 10, psm.PSMCT32).Translatable(a))
	test.ExpectSuccess(t, vram.NewOffset(64, 10, psm.PSMZ24).Translatable(a))
	test.ExpectFailure(t, vram.NewOffset(65, 10, psm.PSMCT32).Translatable(a))
	test.ExpectFailure(t, vram.NewOffset(64, 10, psm.PSMCT16).Translatable(a))
}
