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
	"fmt"
	"image"

	"github.com/jetsetilly/gstexcache/gs/psm"
)

// DirtyRect is an area of a target that has been written to in local memory
// and must be uploaded to the target's texture before it is next used. The
// rectangle is in the pixel space of the target.
type DirtyRect struct {
	Rect image.Rectangle

	// the format and width the area was written with. the width is only used
	// to tell writes apart
	PSM psm.PSM
	BW  uint32

	// the bits of the target's texels that the write changed
	Mask uint32
}

func (d DirtyRect) String() string {
	return fmt.Sprintf("%v %s/%d mask=%08x", d.Rect, d.PSM, d.BW, d.Mask)
}

// covers returns true if applying d makes applying o afterwards redundant.
func (d DirtyRect) covers(o DirtyRect) bool {
	return d.PSM == o.PSM && d.BW == o.BW && o.Rect.In(d.Rect) && o.Mask&^d.Mask == 0
}

// dirtyRects is a list of dirty rectangles in arrival order.
type dirtyRects []DirtyRect

// add the rectangle to the list. returns false if the rectangle was redundant.
func (l *dirtyRects) add(d DirtyRect) bool {
	if d.Rect.Empty() {
		return false
	}

	// a covering rectangle that hasn't been touched by anything since makes
	// the new rectangle redundant
	for i := len(*l) - 1; i >= 0; i-- {
		e := (*l)[i]
		if e.covers(d) {
			return false
		}
		if e.Rect.Overlaps(d.Rect) {
			break
		}
	}

	*l = append(l.without(d), d)
	return true
}

// without returns the list less the entries that d covers.
func (l dirtyRects) without(d DirtyRect) dirtyRects {
	n := l[:0]
	for _, e := range l {
		if !d.covers(e) {
			n = append(n, e)
		}
	}
	return n
}

// coalesced returns the list with every entry that is covered by a later
// entry removed. the order of the remaining entries is unchanged.
func (l dirtyRects) coalesced() dirtyRects {
	n := make(dirtyRects, 0, len(l))
	for i, e := range l {
		covered := false
		for _, later := range l[i+1:] {
			if later.covers(e) {
				covered = true
				break
			}
		}
		if !covered {
			n = append(n, e)
		}
	}
	return n
}

// drawnOver returns the list with the parts of the rectangles that have been
// drawn over removed. Bits of the texels not written by the draw are still
// pending.
func (l dirtyRects) drawnOver(r image.Rectangle, bits uint32) dirtyRects {
	var n dirtyRects
	for _, e := range l {
		if !e.Rect.Overlaps(r) {
			n = append(n, e)
			continue
		}
		for _, p := range subtractRect(e.Rect, r) {
			n = append(n, DirtyRect{Rect: p, PSM: e.PSM, BW: e.BW, Mask: e.Mask})
		}
		if m := e.Mask &^ bits; m != 0 {
			n = append(n, DirtyRect{Rect: e.Rect.Intersect(r), PSM: e.PSM, BW: e.BW, Mask: m})
		}
	}
	return n
}

// bounds returns the union of all rectangles in the list.
func (l dirtyRects) bounds() image.Rectangle {
	var r image.Rectangle
	for _, e := range l {
		r = r.Union(e.Rect)
	}
	return r
}
