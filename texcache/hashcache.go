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
	"encoding/binary"
	"image"

	"github.com/jetsetilly/gstexcache/gpu"
	"github.com/jetsetilly/gstexcache/gs/regs"
	"github.com/jetsetilly/gstexcache/logger"
	"github.com/zeebo/xxh3"
)

// number of vsyncs an unreferenced hash cache entry is kept for
const hashCacheAgeLimit = 30

// the largest texture that will be placed in the hash cache
const maxHashCacheSize = 1024

// HashCacheKey identifies the content of a texture.
type HashCacheKey struct {
	TEX0Hash uint64
	CLUTHash uint64

	// only the storage mode, size and alpha control fields are used
	TEX0 regs.TEX0

	TEXA   regs.TEXA
	Region regs.SourceRegion
}

// WithRemovedCLUTHash returns the key without the hash of the colour lookup
// table. Replacement textures are keyed this way.
func (k HashCacheKey) WithRemovedCLUTHash() HashCacheKey {
	k.CLUTHash = 0
	return k
}

// HashCacheEntry is a texture in the hash cache.
type HashCacheEntry struct {
	Texture       gpu.Texture
	Refcount      int
	Age           int
	IsReplacement bool
}

func hashTexels(pix []uint32) uint64 {
	b := make([]byte, len(pix)*4)
	for i, v := range pix {
		binary.LittleEndian.PutUint32(b[i*4:], v)
	}
	return xxh3.Hash(b)
}

// hashCacheKey returns the key for the texture and the raw content of the
// texture that the key was created from.
func (c *Cache) hashCacheKey(s *Source) (HashCacheKey, []uint32) {
	raw := make([]uint32, s.texRect.Dx()*s.texRect.Dy())
	c.mem.ReadImage(s.Offset(), s.texRect, raw)

	key := HashCacheKey{
		TEX0Hash: hashTexels(raw),
		TEX0: regs.TEX0{
			PSM: s.TEX0.PSM,
			TW:  s.TEX0.TW,
			TH:  s.TEX0.TH,
			TCC: s.TEX0.TCC,
		},
		TEXA:   s.TEXA,
		Region: s.Region,
	}

	if s.palette != nil && !s.PaletteIndices {
		key.CLUTHash = hashTexels(s.palette.clut)
	}

	return key, raw
}

// LookupHashCache returns the hash cache entry with the same content as the
// source, creating the entry if necessary. The reference count of the entry
// is increased.
func (c *Cache) LookupHashCache(s *Source) (*HashCacheEntry, HashCacheKey, error) {
	key, raw := c.hashCacheKey(s)

	if e, ok := c.hashCache[key.WithRemovedCLUTHash()]; ok && e.IsReplacement {
		e.Refcount++
		return e, key, nil
	}

	if e, ok := c.hashCache[key]; ok {
		e.Refcount++
		e.Age = 0
		return e, key, nil
	}

	w, h := s.texRect.Dx(), s.texRect.Dy()
	c.checkHashCacheBudget(uint64(w * h * 4))

	format := gpu.FormatColor
	if s.PaletteIndices {
		format = gpu.FormatIndex
	} else if s.TEX0.PSM.Info().Depth {
		format = gpu.FormatDepth
	}

	tex, err := c.createTexture(w, h, format)
	if err != nil {
		return nil, key, err
	}

	for i := range raw {
		raw[i] = s.expand(raw[i])
	}
	if err := c.dev.Upload(tex, image.Rect(0, 0, w, h), raw, w); err != nil {
		c.dev.DestroyTexture(tex)
		return nil, key, err
	}

	e := &HashCacheEntry{
		Texture:  tex,
		Refcount: 1,
	}
	c.hashCache[key] = e
	c.hashCacheMemory += tex.MemUsage()

	return e, key, nil
}

// checkHashCacheBudget flushes the cache if adding the number of bytes to the
// hash cache would exceed the hash cache budget.
func (c *Cache) checkHashCacheBudget(size uint64) {
	if c.hashCacheMemory+size <= c.Prefs.hashCacheLimit() {
		return
	}

	logger.Logf(c, "texcache", "hash cache budget of %dMB exceeded (%d bytes in use). flushing cache",
		c.Prefs.HashCacheLimit.Get().(int), c.hashCacheMemory)

	c.ReadbackAll()
	c.flush()
}

// InjectHashCacheTexture adds a replacement texture to the hash cache. The key
// is used without the hash of the colour lookup table. Sources already using
// an entry with the same key will use the replacement texture.
func (c *Cache) InjectHashCacheTexture(key HashCacheKey, tex gpu.Texture) {
	key = key.WithRemovedCLUTHash()

	e, ok := c.hashCache[key]
	if !ok {
		c.hashCache[key] = &HashCacheEntry{
			Texture:       tex,
			IsReplacement: true,
		}
		c.replacementMemory += tex.MemUsage()
		return
	}

	if e.IsReplacement {
		return
	}

	for _, s := range c.sources.All() {
		if s.fromHashCache == e {
			s.Texture = tex
		}
	}

	c.hashCacheMemory -= e.Texture.MemUsage()
	c.dev.DestroyTexture(e.Texture)
	c.replacementMemory += tex.MemUsage()
	e.Texture = tex
	e.IsReplacement = true
}

// ageHashCache removes unreferenced entries that have not been used for too
// long. Replacement entries are never removed.
func (c *Cache) ageHashCache() {
	for k, e := range c.hashCache {
		if e.IsReplacement {
			continue
		}
		if e.Refcount > 0 {
			e.Age = 0
			continue
		}
		e.Age++
		if e.Age > hashCacheAgeLimit {
			c.removeHashCacheEntry(k, e)
		}
	}
}

func (c *Cache) removeHashCacheEntry(k HashCacheKey, e *HashCacheEntry) {
	if e.IsReplacement {
		c.replacementMemory -= e.Texture.MemUsage()
	} else {
		c.hashCacheMemory -= e.Texture.MemUsage()
	}
	c.dev.DestroyTexture(e.Texture)
	delete(c.hashCache, k)
}
