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
	"encoding/binary"
	"image"
)

// Memory is the local memory of the GS.
type Memory struct {
	ram []byte
}

// NewMemory is the preferred method of initialisation for the Memory type.
func NewMemory() *Memory {
	return &Memory{
		ram: make([]byte, Size),
	}
}

// Reset clears memory to zero.
func (mem *Memory) Reset() {
	clear(mem.ram)
}

// every pixel lies entirely inside one aligned 32-bit word
func (mem *Memory) word(addr uint32) (int, uint32) {
	idx := int(addr/32) * 4
	return idx, addr % 32
}

// ReadPixel returns the value of the pixel at the coordinates.
func (mem *Memory) ReadPixel(o Offset, x, y int) uint32 {
	if x < 0 || y < 0 {
		return 0
	}
	inf := o.PSM.Info()
	idx, s := mem.word(o.BitAddress(x, y))
	w := binary.LittleEndian.Uint32(mem.ram[idx:])
	return (w >> s) & inf.BitMask()
}

// WritePixel sets the value of the pixel at the coordinates. Bits outside of
// the pixel are preserved.
func (mem *Memory) WritePixel(o Offset, x, y int, v uint32) {
	if x < 0 || y < 0 {
		return
	}
	inf := o.PSM.Info()
	idx, s := mem.word(o.BitAddress(x, y))
	m := inf.BitMask()
	w := binary.LittleEndian.Uint32(mem.ram[idx:])
	w = (w &^ (m << s)) | ((v & m) << s)
	binary.LittleEndian.PutUint32(mem.ram[idx:], w)
}

// ReadImage copies the pixels of the rectangle into dst, row by row. The dst
// slice must have room for at least r.Dx()*r.Dy() values.
func (mem *Memory) ReadImage(o Offset, r image.Rectangle, dst []uint32) {
	i := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dst[i] = mem.ReadPixel(o, x, y)
			i++
		}
	}
}

// WriteImage copies pixels from src into the rectangle, row by row.
func (mem *Memory) WriteImage(o Offset, r image.Rectangle, src []uint32) {
	i := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			mem.WritePixel(o, x, y, src[i])
			i++
		}
	}
}
