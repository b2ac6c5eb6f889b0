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

import (
	"fmt"
	"image"
)

// Texture wrap modes for the WMS and WMT fields of CLAMP.
const (
	ClampRepeat = iota
	ClampClamp
	ClampRegionClamp
	ClampRegionRepeat
)

// CLAMP controls how texture coordinates outside of the texture are
// handled.
type CLAMP struct {
	WMS  uint8
	WMT  uint8
	MINU uint16
	MAXU uint16
	MINV uint16
	MAXV uint16
}

// maximum texture coordinate plus one
const maxCoord = 2048

// SourceRegion is the part of a texture that a draw can read from. The
// maximum values are exclusive. An axis with a maximum no greater than its
// minimum is not restricted.
type SourceRegion struct {
	MinX uint16
	MinY uint16
	MaxX uint16
	MaxY uint16
}

// axis returns the region of one axis of the texture.
func axis(mode uint8, minv, maxv uint16, size int) (uint16, uint16) {
	switch mode {
	case ClampRegionClamp:
		if minv > maxv {
			return 0, 0
		}
		if minv == 0 && int(maxv)+1 == size {
			return 0, 0
		}
		return minv, min(maxv+1, maxCoord)

	case ClampRegionRepeat:
		// coordinates are (u & MINU) | MAXU so only the bits of MINU vary
		lo := maxv
		hi := (maxv | minv) + 1
		if lo == 0 && int(hi) == size {
			return 0, 0
		}
		return lo, min(hi, maxCoord)
	}
	return 0, 0
}

// NewSourceRegion returns the region of the texture that the CLAMP register
// allows a draw to read.
func NewSourceRegion(clamp CLAMP, tw, th int) SourceRegion {
	var r SourceRegion
	r.MinX, r.MaxX = axis(clamp.WMS, clamp.MINU, clamp.MAXU, tw)
	r.MinY, r.MaxY = axis(clamp.WMT, clamp.MINV, clamp.MAXV, th)
	return r
}

func (r SourceRegion) String() string {
	return fmt.Sprintf("x=%d-%d y=%d-%d", r.MinX, r.MaxX, r.MinY, r.MaxY)
}

// HasX returns true if the horizontal axis is restricted.
func (r SourceRegion) HasX() bool {
	return r.MaxX > r.MinX
}

// HasY returns true if the vertical axis is restricted.
func (r SourceRegion) HasY() bool {
	return r.MaxY > r.MinY
}

// Rect returns the rectangle of the texture covered by the region. An
// unrestricted axis covers the whole texture.
func (r SourceRegion) Rect(tw, th int) image.Rectangle {
	rect := image.Rect(0, 0, tw, th)
	if r.HasX() {
		rect.Min.X = int(r.MinX)
		rect.Max.X = int(r.MaxX)
	}
	if r.HasY() {
		rect.Min.Y = int(r.MinY)
		rect.Max.Y = int(r.MaxY)
	}
	return rect
}

// Offset returns the position of the region's top-left corner.
func (r SourceRegion) Offset() image.Point {
	var p image.Point
	if r.HasX() {
		p.X = int(r.MinX)
	}
	if r.HasY() {
		p.Y = int(r.MinY)
	}
	return p
}

// IsFixedTEX0 returns true if the region reaches beyond the declared size of
// the texture. Games do this to read from a surface larger than the largest
// power of two that fits it.
func (r SourceRegion) IsFixedTEX0(tw, th int) bool {
	return (r.HasX() && int(r.MaxX) > tw) || (r.HasY() && int(r.MaxY) > th)
}

// AdjustForMipmap returns the region for the mipmap level.
func (r SourceRegion) AdjustForMipmap(level int) SourceRegion {
	if level <= 0 {
		return r
	}
	adj := func(lo, hi uint16) (uint16, uint16) {
		if hi <= lo {
			return lo, hi
		}
		nlo := lo >> level
		nhi := (hi + (1 << level) - 1) >> level
		if nhi <= nlo {
			nhi = nlo + 1
		}
		return nlo, nhi
	}
	r.MinX, r.MaxX = adj(r.MinX, r.MaxX)
	r.MinY, r.MaxY = adj(r.MinY, r.MaxY)
	return r
}
