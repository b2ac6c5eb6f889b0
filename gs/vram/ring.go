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

import "fmt"

// Memory geometry.
const (
	BlockSize     = 256
	BlocksPerPage = 32
	PageSize      = BlockSize * BlocksPerPage
	MaxBlocks     = 0x4000
	MaxBP         = MaxBlocks - 1
	MaxPages      = MaxBlocks / BlocksPerPage
	Size          = MaxBlocks * BlockSize

	blockBits = BlockSize * 8
	pageBits  = PageSize * 8
	ringBits  = Size * 8
)

// CheckOverlap returns true if the inclusive ranges a and b overlap.
func CheckOverlap(a0, a1, b0, b1 uint32) bool {
	return a0 <= b1 && b0 <= a1
}

// BlockRange is an inclusive run of blocks. If End is less than Start then the
// run wraps around the end of memory.
type BlockRange struct {
	Start uint32
	End   uint32
	Wraps bool
}

// NewBlockRange is the preferred method of initialisation for the BlockRange
// type. Addresses are reduced to the size of memory.
func NewBlockRange(start, end uint32) BlockRange {
	start &= MaxBP
	end &= MaxBP
	return BlockRange{
		Start: start,
		End:   end,
		Wraps: end < start,
	}
}

func (r BlockRange) String() string {
	if r.Wraps {
		return fmt.Sprintf("%04x-%04x (wraps)", r.Start, r.End)
	}
	return fmt.Sprintf("%04x-%04x", r.Start, r.End)
}

// UnwrappedEnd returns the end block as if memory continued past the wrap.
func (r BlockRange) UnwrappedEnd() uint32 {
	if r.Wraps {
		return r.End + MaxBlocks
	}
	return r.End
}

// Len returns the number of blocks in the range.
func (r BlockRange) Len() uint32 {
	return r.UnwrappedEnd() - r.Start + 1
}

// Contains returns true if the block is inside the range.
func (r BlockRange) Contains(block uint32) bool {
	block &= MaxBP
	if r.Wraps {
		return block >= r.Start || block <= r.End
	}
	return block >= r.Start && block <= r.End
}

// Overlaps returns true if the two ranges share at least one block.
func (r BlockRange) Overlaps(o BlockRange) bool {
	a0, a1 := r.Start, r.UnwrappedEnd()
	b0, b1 := o.Start, o.UnwrappedEnd()

	if CheckOverlap(a0, a1, b0, b1) {
		return true
	}

	// the unwrapped end of a wrapping range lies in the second lap of
	// memory. a range that doesn't wrap must be checked in that lap too
	if r.Wraps && !o.Wraps {
		return CheckOverlap(a0, a1, b0+MaxBlocks, b1+MaxBlocks)
	}
	if o.Wraps && !r.Wraps {
		return CheckOverlap(a0+MaxBlocks, a1+MaxBlocks, b0, b1)
	}

	return false
}

// Inside returns true if every block of r is also in o.
func (r BlockRange) Inside(o BlockRange) bool {
	if o.Len() >= MaxBlocks {
		return true
	}
	s := r.Start
	if s < o.Start {
		s += MaxBlocks
	}
	return s+r.Len()-1 <= o.UnwrappedEnd()
}
