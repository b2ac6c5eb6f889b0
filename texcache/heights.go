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
	"github.com/jetsetilly/gstexcache/gs/psm"
	"github.com/jetsetilly/gstexcache/gs/vram"
)

// targetHeight records the largest height seen for a target layout. Games
// often draw to the top of a buffer first so the first draw to a target is a
// poor guide to its final size.
type targetHeight struct {
	off    vram.Offset
	height int
	age    int
}

// GetTargetHeight returns the largest height recorded for the layout. The
// recorded height is raised to minHeight if necessary.
func (c *Cache) GetTargetHeight(bp, bw uint32, p psm.PSM, minHeight int) int {
	off := vram.NewOffset(bp, bw, p)

	for i, h := range c.heights {
		if h.off == off {
			h.age = 0
			h.height = max(h.height, minHeight)

			// most recently used first
			copy(c.heights[1:i+1], c.heights[:i])
			c.heights[0] = h

			return h.height
		}
	}

	c.heights = append([]targetHeight{{off: off, height: minHeight}}, c.heights...)
	return minHeight
}

func (c *Cache) ageHeights() {
	limit := c.Prefs.TargetAgeLimit.Get().(int)
	n := c.heights[:0]
	for _, h := range c.heights {
		h.age++
		if h.age <= limit {
			n = append(n, h)
		}
	}
	c.heights = n
}
