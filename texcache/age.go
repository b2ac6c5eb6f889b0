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

import "github.com/jetsetilly/gstexcache/logger"

// IncAge should be called once per vsync. Surfaces that have not been used for
// too long are removed. Targets are written back to local memory before they
// are removed if the ReadbackOnEviction preference is set.
func (c *Cache) IncAge() {
	for _, s := range c.sources.All() {
		s.Age++
		limit := sourceAgeLimit
		if s.preloaded || s.fromHashCache != nil {
			limit = preloadedSourceAgeLimit
		}
		if s.Age > limit {
			c.removeSource(s)
		}
	}

	c.ageHashCache()

	limit := c.Prefs.TargetAgeLimit.Get().(int)
	for k := range c.targets {
		for _, t := range c.Targets(Kind(k)) {
			t.Age++
			if t.Age > limit {
				logger.Logf(c, "texcache", "%s expired", t)
				c.evict(t)
			}
		}
	}

	c.ageHeights()
	c.transfers = c.transfers[:0]
}
