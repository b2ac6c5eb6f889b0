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

	"github.com/jetsetilly/gstexcache/gs/vram"
)

// transfer is a write to local memory by the CPU.
type transfer struct {
	draw int
	off  vram.Offset
	rect image.Rectangle
	br   vram.BlockRange
}

func (c *Cache) logTransfer(off vram.Offset, r image.Rectangle) {
	br, ok := off.BlockRange(r)
	if !ok {
		return
	}
	for _, t := range c.transfers {
		if t.draw == c.draw && t.off == off && t.rect == r {
			return
		}
	}
	c.transfers = append(c.transfers, transfer{
		draw: c.draw,
		off:  off,
		rect: r,
		br:   br,
	})
}

// transferCovers returns true if the area of local memory was completely
// written by the CPU since the last draw.
func (c *Cache) transferCovers(off vram.Offset, r image.Rectangle) bool {
	br, ok := off.BlockRange(r)
	if !ok {
		return false
	}
	for _, t := range c.transfers {
		if t.draw != c.draw || !br.Inside(t.br) {
			continue
		}
		if tr, ok := translateRect(off, t.off, r); ok && tr.In(t.rect) {
			return true
		}
	}
	return false
}
