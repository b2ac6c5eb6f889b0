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

package regs

import "github.com/jetsetilly/gstexcache/gs/psm"

// TEXA controls how the alpha channel of 16 and 24 bit pixels is expanded.
type TEXA struct {
	TA0 uint8
	TA1 uint8
	AEM bool
}

// TargetTEXA is the expansion used for 16-bit render targets. It is chosen so
// that packing the expanded texel gives back the original value.
var TargetTEXA = TEXA{TA0: 0x00, TA1: 0x80}

// Expand converts a raw pixel value in the storage mode into the 32-bit texel
// representation. The texel representation of a 32-bit pixel is the pixel
// itself, with red in the low byte.
func (a TEXA) Expand(p psm.PSM, raw uint32) uint32 {
	switch p {
	case psm.PSMCT32, psm.PSMZ32:
		return raw

	case psm.PSMCT24:
		rgb := raw & 0x00ffffff
		if a.AEM && rgb == 0 {
			return rgb
		}
		return rgb | uint32(a.TA0)<<24

	case psm.PSMZ24:
		return raw & 0x00ffffff

	case psm.PSMCT16, psm.PSMCT16S:
		r := (raw & 0x1f) << 3
		g := ((raw >> 5) & 0x1f) << 3
		b := ((raw >> 10) & 0x1f) << 3

		var alpha uint32
		if raw&0x8000 != 0 {
			alpha = uint32(a.TA1)
		} else if !a.AEM || raw&0x7fff != 0 {
			alpha = uint32(a.TA0)
		}

		return r | g<<8 | b<<16 | alpha<<24

	case psm.PSMZ16, psm.PSMZ16S:
		return raw & 0xffff
	}

	// indexed formats are not expanded
	return raw
}

// Pack converts a texel into the raw pixel value of the storage mode. It is
// the inverse of Expand() for TargetTEXA.
func Pack(p psm.PSM, texel uint32) uint32 {
	switch p {
	case psm.PSMCT24, psm.PSMZ24:
		return texel & 0x00ffffff

	case psm.PSMCT16, psm.PSMCT16S:
		r := (texel >> 3) & 0x1f
		g := (texel >> 11) & 0x1f
		b := (texel >> 19) & 0x1f
		alpha := (texel >> 31) & 0x01
		return r | g<<5 | b<<10 | alpha<<15

	case psm.PSMZ16, psm.PSMZ16S:
		return texel & 0xffff
	}

	return texel
}
