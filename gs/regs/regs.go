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

// Package regs contains the subset of GS register state that the texture
// cache depends on.
package regs

import (
	"fmt"

	"github.com/jetsetilly/gstexcache/gs/psm"
	"github.com/jetsetilly/gstexcache/gs/vram"
)

// TEX0 describes the texture being sampled and the location of its colour
// lookup table.
type TEX0 struct {
	TBP0 uint32
	TBW  uint32
	PSM  psm.PSM

	// texture dimensions as powers of two
	TW uint8
	TH uint8

	// whether the alpha channel of the texture is used
	TCC bool

	CBP  uint32
	CPSM psm.PSM

	// CLUT entry offset for 4-bit textures, in units of 16 entries
	CSA uint8
}

func (t TEX0) String() string {
	return fmt.Sprintf("TBP0=%05x TBW=%d PSM=%s %dx%d", t.TBP0, t.TBW, t.PSM, t.Width(), t.Height())
}

// Width of the texture in pixels. The hardware limit is 1024.
func (t TEX0) Width() int {
	return 1 << min(t.TW, 10)
}

// Height of the texture in pixels. The hardware limit is 1024.
func (t TEX0) Height() int {
	return 1 << min(t.TH, 10)
}

// Offset returns the layout of the texture in local memory.
func (t TEX0) Offset() vram.Offset {
	return vram.NewOffset(t.TBP0, t.TBW, t.PSM)
}

// CLUTOffset returns the layout of the colour lookup table in local memory.
// The table is always one 64 pixel unit wide.
func (t TEX0) CLUTOffset() vram.Offset {
	return vram.NewOffset(t.CBP, 1, t.CPSM)
}

// FRAME describes a colour render target.
type FRAME struct {
	FBP   uint32
	FBW   uint32
	PSM   psm.PSM
	FBMSK uint32
}

// TEX0 returns a TEX0 value describing the frame buffer as a texture.
func (f FRAME) TEX0() TEX0 {
	return TEX0{TBP0: f.FBP, TBW: f.FBW, PSM: f.PSM}
}

// ZBUF describes a depth buffer.
type ZBUF struct {
	ZBP  uint32
	PSM  psm.PSM
	ZMSK bool
}

// TEX0 returns a TEX0 value describing the depth buffer as a texture. The
// depth buffer shares the buffer width of the frame buffer.
func (z ZBUF) TEX0(fbw uint32) TEX0 {
	return TEX0{TBP0: z.ZBP, TBW: fbw, PSM: z.PSM}
}

// BITBLTBUF describes the source and destination of a local memory transfer.
type BITBLTBUF struct {
	SBP  uint32
	SBW  uint32
	SPSM psm.PSM
	DBP  uint32
	DBW  uint32
	DPSM psm.PSM
}

// LOD is the range of mipmap levels a draw can sample from.
type LOD struct {
	Min int
	Max int
}
