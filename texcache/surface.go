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

package texcache

import (
	"image"

	"github.com/jetsetilly/gstexcache/gpu"
	"github.com/jetsetilly/gstexcache/gs/psm"
	"github.com/jetsetilly/gstexcache/gs/regs"
	"github.com/jetsetilly/gstexcache/gs/vram"
)

// Surface is the part of a Source or Target that describes where in local
// memory the surface lives and the texture that holds it.
type Surface struct {
	Texture gpu.Texture

	TEX0 regs.TEX0
	TEXA regs.TEXA

	// size of the surface in local memory pixels. the texture is this size
	// multiplied by the scale
	UnscaledSize image.Point
	Scale        float32

	// number of vsyncs since the surface was last used
	Age int

	// the last block of local memory covered by the surface. can be less
	// than the base pointer if the surface wraps around the end of memory
	EndBlock uint32

	Is32Bit bool

	// the texture is owned by something else and must not be destroyed
	SharedTexture bool
}

// Offset returns the layout of the surface in local memory.
func (s *Surface) Offset() vram.Offset {
	return s.TEX0.Offset()
}

// UnscaledRect returns the rectangle covered by the surface in local memory
// pixels.
func (s *Surface) UnscaledRect() image.Rectangle {
	return image.Rectangle{Max: s.UnscaledSize}
}

// Range returns the blocks of local memory covered by the surface.
func (s *Surface) Range() vram.BlockRange {
	return vram.NewBlockRange(s.TEX0.TBP0, s.EndBlock)
}

// Wraps returns true if the surface crosses the end of local memory.
func (s *Surface) Wraps() bool {
	return s.EndBlock < s.TEX0.TBP0&vram.MaxBP
}

// UnwrappedEndBlock returns the end block as if memory continued past the
// wrap.
func (s *Surface) UnwrappedEndBlock() uint32 {
	if s.Wraps() {
		return s.EndBlock + vram.MaxBlocks
	}
	return s.EndBlock
}

// Inside returns true if the rectangle of the layout is completely covered by
// the surface.
func (s *Surface) Inside(bp, bw uint32, p psm.PSM, r image.Rectangle) bool {
	br, ok := vram.NewOffset(bp, bw, p).BlockRange(r)
	if !ok {
		return false
	}
	return br.Inside(s.Range())
}

// Overlaps returns true if the rectangle of the layout shares any blocks with
// the surface.
func (s *Surface) Overlaps(bp, bw uint32, p psm.PSM, r image.Rectangle) bool {
	br, ok := vram.NewOffset(bp, bw, p).BlockRange(r)
	if !ok {
		return false
	}
	return br.Overlaps(s.Range())
}

// updateEndBlock recalculates the end block from the rectangle.
func (s *Surface) updateEndBlock(r image.Rectangle) {
	if br, ok := s.Offset().BlockRange(r); ok {
		s.EndBlock = br.End
	} else {
		s.EndBlock = s.TEX0.TBP0 & vram.MaxBP
	}
}

// scaled returns the rectangle in texture coordinates.
func (s *Surface) scaled(r image.Rectangle) image.Rectangle {
	return gpu.ScaleRect(r, s.Scale)
}
