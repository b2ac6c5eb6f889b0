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

package vram

import (
	"fmt"
	"image"
	"math"

	"github.com/jetsetilly/gstexcache/gs/psm"
)

// Offset describes the layout of a surface in local memory.
type Offset struct {
	BP  uint32
	BW  uint32
	PSM psm.PSM
}

// NewOffset is the preferred method of initialisation for the Offset type.
func NewOffset(bp, bw uint32, p psm.PSM) Offset {
	return Offset{
		BP:  bp & MaxBP,
		BW:  bw,
		PSM: p,
	}
}

// WithLayout returns an offset with the same base pointer but with a different
// buffer width and storage mode.
func (o Offset) WithLayout(bw uint32, p psm.PSM) Offset {
	return NewOffset(o.BP, bw, p)
}

func (o Offset) String() string {
	return fmt.Sprintf("%05x/%d/%s", o.BP, o.BW, o.PSM)
}

// PagesWide returns the number of pages across the buffer. Never less than
// one.
func (o Offset) PagesWide() int {
	inf := o.PSM.Info()
	n := (int(o.BW)*64 + inf.PageWidth - 1) / inf.PageWidth
	if n < 1 {
		return 1
	}
	return n
}

// negative coordinates are not addressable
func clip(r image.Rectangle) image.Rectangle {
	return r.Intersect(image.Rect(0, 0, math.MaxInt32, math.MaxInt32))
}

// unwrapped returns the bit address of the pixel without reducing it to the
// size of memory.
func (o Offset) unwrapped(x, y int) uint64 {
	inf := o.PSM.Info()
	page := (y/inf.PageHeight)*o.PagesWide() + x/inf.PageWidth
	in := (y%inf.PageHeight)*inf.PageWidth + x%inf.PageWidth
	return uint64(o.BP&MaxBP)*blockBits + uint64(page)*pageBits + uint64(in)*uint64(inf.AddrBits) + uint64(inf.Shift)
}

// BitAddress returns the address, in bits, of the first significant bit of
// the pixel.
func (o Offset) BitAddress(x, y int) uint32 {
	return uint32(o.unwrapped(x, y) % ringBits)
}

// Block returns the block containing the pixel.
func (o Offset) Block(x, y int) uint32 {
	return o.BitAddress(x, y) / blockBits
}

// PixelAt is the inverse of BitAddress(). It returns the coordinates of the
// pixel whose addressing unit contains the bit address, along with the
// position of the bit inside the addressing unit.
func (o Offset) PixelAt(addr uint32) (int, int, uint32) {
	rel := (uint64(addr) + ringBits - uint64(o.BP&MaxBP)*blockBits) % ringBits
	return o.relPixel(uint32(rel))
}

func (o Offset) relPixel(rel uint32) (int, int, uint32) {
	inf := o.PSM.Info()
	pw := o.PagesWide()
	page := int(rel / pageBits)
	in := rel % pageBits
	idx := int(in / uint32(inf.AddrBits))
	bit := in % uint32(inf.AddrBits)
	x := (page%pw)*inf.PageWidth + idx%inf.PageWidth
	y := (page/pw)*inf.PageHeight + idx/inf.PageWidth
	return x, y, bit
}

// BlockRange returns the run of blocks touched by the rectangle. Returns false
// if the rectangle is empty.
func (o Offset) BlockRange(r image.Rectangle) (BlockRange, bool) {
	r = clip(r)
	if r.Empty() {
		return BlockRange{}, false
	}

	// in this layout the top-left pixel always has the lowest address and the
	// bottom-right pixel the highest
	a0 := o.unwrapped(r.Min.X, r.Min.Y) / blockBits
	a1 := o.unwrapped(r.Max.X-1, r.Max.Y-1) / blockBits

	start := uint32(a0 % MaxBlocks)
	if a1-a0 >= MaxBlocks-1 {
		return NewBlockRange(start, start+MaxBP), true
	}

	return NewBlockRange(start, uint32(a1%MaxBlocks)), true
}

// UnwrappedBlock returns the block of the pixel without reducing it to the
// size of memory. Useful for finding where a rectangle crosses the end of
// memory.
func (o Offset) UnwrappedBlock(x, y int) uint64 {
	return o.unwrapped(x, y) / blockBits
}

// Pages returns the list of pages touched by the rectangle. If the base
// pointer is not page aligned then the pages of the buffer straddle two pages
// of memory and both are included.
func (o Offset) Pages(r image.Rectangle) []uint32 {
	r = clip(r)
	if r.Empty() {
		return nil
	}

	inf := o.PSM.Info()
	pw := o.PagesWide()
	base := int(o.BP&MaxBP) / BlocksPerPage
	straddle := o.BP%BlocksPerPage != 0

	var seen [MaxPages / 32]uint32
	pages := make([]uint32, 0, 8)

	add := func(p int) {
		p %= MaxPages
		if seen[p/32]&(1<<(p%32)) == 0 {
			seen[p/32] |= 1 << (p % 32)
			pages = append(pages, uint32(p))
		}
	}

	for py := r.Min.Y / inf.PageHeight; py <= (r.Max.Y-1)/inf.PageHeight; py++ {
		for px := r.Min.X / inf.PageWidth; px <= (r.Max.X-1)/inf.PageWidth; px++ {
			rel := py*pw + px
			add(base + rel)
			if straddle {
				add(base + rel + 1)
			}
		}
		if len(pages) >= MaxPages {
			break
		}
	}

	return pages
}

// PageRect returns the rectangle covered by the page of the buffer. The page
// is relative to the base pointer.
func (o Offset) PageRect(rel int) image.Rectangle {
	inf := o.PSM.Info()
	pw := o.PagesWide()
	x := (rel % pw) * inf.PageWidth
	y := (rel / pw) * inf.PageHeight
	return image.Rect(x, y, x+inf.PageWidth, y+inf.PageHeight)
}

// RelativePage returns the page of the buffer that the absolute page of
// memory starts in.
func (o Offset) RelativePage(page uint32) int {
	base := (o.BP & MaxBP) / BlocksPerPage
	return int((page + MaxPages - base) % MaxPages)
}

// SpanRect returns the smallest rectangle, in this layout, that covers the
// inclusive range of bit addresses. Spans that cross a page boundary are
// rounded out to whole pages.
func (o Offset) SpanRect(start, end uint32) image.Rectangle {
	base := uint32((uint64(o.BP&MaxBP) * blockBits) % ringBits)
	rs := (start + ringBits - base) % ringBits
	re := (end + ringBits - base) % ringBits

	// the span begins before the base of this buffer
	if re < rs {
		rs = 0
	}

	inf := o.PSM.Info()
	pw := o.PagesWide()
	p0 := int(rs / pageBits)
	p1 := int(re / pageBits)

	x0, y0, _ := o.relPixel(rs)
	x1, y1, _ := o.relPixel(re)

	if p0 == p1 {
		if y0 == y1 {
			return image.Rect(x0, y0, x1+1, y1+1)
		}
		px := (p0 % pw) * inf.PageWidth
		return image.Rect(px, y0, px+inf.PageWidth, y1+1)
	}

	if p0/pw == p1/pw {
		top := (p0 / pw) * inf.PageHeight
		return image.Rect((p0%pw)*inf.PageWidth, top, (p1%pw+1)*inf.PageWidth, top+inf.PageHeight)
	}

	return image.Rect(0, (p0/pw)*inf.PageHeight, pw*inf.PageWidth, (p1/pw+1)*inf.PageHeight)
}

// Translatable returns true if a rectangle in this layout is found at the
// same position relative to a page in the other layout. This is true if both
// layouts arrange pixels in the same way and the difference between the two
// base pointers is a whole number of pages.
func (o Offset) Translatable(to Offset) bool {
	a := o.PSM.Info()
	b := to.PSM.Info()
	if a.Layout != b.Layout || a.AddrBits != b.AddrBits {
		return false
	}
	d := ((o.BP & MaxBP) + MaxBlocks - (to.BP & MaxBP)) % MaxBlocks
	return d%BlocksPerPage == 0
}
