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

// Package psm describes the pixel storage modes of the GS. A pixel storage
// mode determines how many bits a pixel occupies in local memory, where in a
// 32-bit word those bits live, and the geometry of a page of pixels.
package psm

import "fmt"

// PSM is the pixel storage mode code as it appears in the TEX0, FRAME, ZBUF
// and BITBLTBUF registers.
type PSM uint8

// List of pixel storage modes.
const (
	PSMCT32  PSM = 0x00
	PSMCT24  PSM = 0x01
	PSMCT16  PSM = 0x02
	PSMCT16S PSM = 0x0a
	PSMT8    PSM = 0x13
	PSMT4    PSM = 0x14
	PSMT8H   PSM = 0x1b
	PSMT4HL  PSM = 0x24
	PSMT4HH  PSM = 0x2c
	PSMZ32   PSM = 0x30
	PSMZ24   PSM = 0x31
	PSMZ16   PSM = 0x32
	PSMZ16S  PSM = 0x3a
)

// Layout groups storage modes that arrange pixels identically inside a page.
// Modes with the same layout can be translated into one another by moving
// whole pages.
type Layout int

// List of layouts.
const (
	Layout32 Layout = iota
	Layout16
	Layout16S
	Layout8
	Layout4
)

// Info describes a single pixel storage mode.
type Info struct {
	Name string

	// the number of significant bits in a pixel
	Bits int

	// the number of bits used when addressing a pixel. for the partial-word
	// formats (24 bit and the high nibble/byte formats) this is 32
	AddrBits int

	// the position of the significant bits inside the addressing unit
	Shift uint

	// the bits of the 32-bit word that the format writes. only meaningful
	// for formats with an AddrBits of 32
	Mask uint32

	PageWidth  int
	PageHeight int

	Layout  Layout
	Depth   bool
	Indexed bool
}

var table = map[PSM]Info{
	PSMCT32:  {Name: "CT32", Bits: 32, AddrBits: 32, Mask: 0xffffffff, PageWidth: 64, PageHeight: 32, Layout: Layout32},
	PSMCT24:  {Name: "CT24", Bits: 24, AddrBits: 32, Mask: 0x00ffffff, PageWidth: 64, PageHeight: 32, Layout: Layout32},
	PSMCT16:  {Name: "CT16", Bits: 16, AddrBits: 16, Mask: 0xffffffff, PageWidth: 64, PageHeight: 64, Layout: Layout16},
	PSMCT16S: {Name: "CT16S", Bits: 16, AddrBits: 16, Mask: 0xffffffff, PageWidth: 64, PageHeight: 64, Layout: Layout16S},
	PSMT8:    {Name: "T8", Bits: 8, AddrBits: 8, Mask: 0xffffffff, PageWidth: 128, PageHeight: 64, Layout: Layout8, Indexed: true},
	PSMT4:    {Name: "T4", Bits: 4, AddrBits: 4, Mask: 0xffffffff, PageWidth: 128, PageHeight: 128, Layout: Layout4, Indexed: true},
	PSMT8H:   {Name: "T8H", Bits: 8, AddrBits: 32, Shift: 24, Mask: 0xff000000, PageWidth: 64, PageHeight: 32, Layout: Layout32, Indexed: true},
	PSMT4HL:  {Name: "T4HL", Bits: 4, AddrBits: 32, Shift: 24, Mask: 0x0f000000, PageWidth: 64, PageHeight: 32, Layout: Layout32, Indexed: true},
	PSMT4HH:  {Name: "T4HH", Bits: 4, AddrBits: 32, Shift: 28, Mask: 0xf0000000, PageWidth: 64, PageHeight: 32, Layout: Layout32, Indexed: true},
	PSMZ32:   {Name: "Z32", Bits: 32, AddrBits: 32, Mask: 0xffffffff, PageWidth: 64, PageHeight: 32, Layout: Layout32, Depth: true},
	PSMZ24:   {Name: "Z24", Bits: 24, AddrBits: 32, Mask: 0x00ffffff, PageWidth: 64, PageHeight: 32, Layout: Layout32, Depth: true},
	PSMZ16:   {Name: "Z16", Bits: 16, AddrBits: 16, Mask: 0xffffffff, PageWidth: 64, PageHeight: 64, Layout: Layout16, Depth: true},
	PSMZ16S:  {Name: "Z16S", Bits: 16, AddrBits: 16, Mask: 0xffffffff, PageWidth: 64, PageHeight: 64, Layout: Layout16S, Depth: true},
}

// Valid returns true if the code is a recognised storage mode.
func (p PSM) Valid() bool {
	_, ok := table[p]
	return ok
}

// Info returns the description of the storage mode. Unrecognised codes are
// treated as CT32, which is how the hardware behaves.
func (p PSM) Info() Info {
	if inf, ok := table[p]; ok {
		return inf
	}
	return table[PSMCT32]
}

func (p PSM) String() string {
	if inf, ok := table[p]; ok {
		return inf.Name
	}
	return fmt.Sprintf("PSM(0x%02x)", uint8(p))
}

// BitMask returns the mask for a value of the format's significant bits,
// before any shift is applied.
func (inf Info) BitMask() uint32 {
	if inf.Bits >= 32 {
		return 0xffffffff
	}
	return (1 << inf.Bits) - 1
}

// WordMask returns the bits of the 32-bit texel representation that the
// format defines. For formats that are not addressed in 32-bit units the
// whole texel is defined.
func (inf Info) WordMask() uint32 {
	if inf.AddrBits == 32 {
		return inf.Mask
	}
	return 0xffffffff
}

// Is32Bit returns true if the format is one of the full 32-bit formats.
func (p PSM) Is32Bit() bool {
	return p.Info().Bits == 32
}

// HasSharedBits returns true if writing pixels in one format can modify the
// pixels of the other format. The only formats that don't share bits are the
// partial-word formats that occupy disjoint parts of the same 32-bit word.
func HasSharedBits(a, b PSM) bool {
	ia := a.Info()
	ib := b.Info()
	if ia.AddrBits == 32 && ib.AddrBits == 32 {
		return ia.Mask&ib.Mask != 0
	}
	return true
}

// HasCompatibleBits returns true if the two formats arrange their pixels in
// the same way and with the same bit depth, meaning a surface written in one
// format can be viewed directly as the other.
func HasCompatibleBits(a, b PSM) bool {
	if a == b {
		return true
	}
	ia := a.Info()
	ib := b.Info()
	if ia.Layout != ib.Layout || ia.Indexed || ib.Indexed {
		return false
	}
	return ia.AddrBits == ib.AddrBits
}
