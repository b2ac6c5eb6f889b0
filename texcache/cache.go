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

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jetsetilly/gstexcache/curated"
	"github.com/jetsetilly/gstexcache/gpu"
	"github.com/jetsetilly/gstexcache/gs/vram"
	"github.com/jetsetilly/gstexcache/logger"
	"github.com/jetsetilly/gstexcache/policy"
)

// Sentinal error patterns.
const (
	AllocationFailed = "texcache: allocation failed: %v"
)

// LocalMemory is the CPU side accessor for GS local memory. Pixel values are
// raw values in the storage mode of the offset. vram.Memory implements this
// interface.
type LocalMemory interface {
	ReadImage(off vram.Offset, r image.Rectangle, dst []uint32)
	WriteImage(off vram.Offset, r image.Rectangle, src []uint32)
}

// Cache is the texture cache.
type Cache struct {
	Prefs *Preferences

	dev    gpu.Device
	mem    LocalMemory
	policy policy.Policy

	sources   *SourceMap
	targets   [numKinds][]*Target
	palettes  *PaletteMap
	hashCache map[HashCacheKey]*HashCacheEntry
	offsets   *lru.Cache[SurfaceOffsetKey, SurfaceOffset]
	heights   []targetHeight
	transfers []transfer

	// the number of the current draw
	draw int

	// height of the display. limits the growth of targets
	displayHeight int

	sourceMemory      uint64
	targetMemory      uint64
	hashCacheMemory   uint64
	replacementMemory uint64
}

// NewCache is the preferred method of initialisation for the Cache type.
func NewCache(dev gpu.Device, mem LocalMemory) (*Cache, error) {
	c := &Cache{
		dev:       dev,
		mem:       mem,
		sources:   newSourceMap(),
		hashCache: make(map[HashCacheKey]*HashCacheEntry),
	}

	var err error

	c.Prefs, err = newPreferences()
	if err != nil {
		return nil, curated.Errorf("texcache: %v", err)
	}

	c.offsets, err = lru.New[SurfaceOffsetKey, SurfaceOffset](maxSurfaceOffsets)
	if err != nil {
		return nil, curated.Errorf("texcache: %v", err)
	}

	c.palettes = newPaletteMap(c)

	return c, nil
}

// AllowLogging implements the logger.Permission interface.
func (c *Cache) AllowLogging() bool {
	return c.Prefs.Logging.Get().(bool)
}

// SetPolicy changes the behaviour of the cache for the title being run.
func (c *Cache) SetPolicy(p policy.Policy) {
	c.policy = p
	logger.Logf(c, "texcache", "policy: %s", p)
}

// Policy returns the current policy.
func (c *Cache) Policy() policy.Policy {
	return c.policy
}

// SetDisplayHeight sets the height of the display in pixels. Used to limit
// the growth of targets. A value of zero means there is no limit.
func (c *Cache) SetDisplayHeight(h int) {
	c.displayHeight = h
}

func (c *Cache) growthLimit() int {
	if c.displayHeight <= 0 {
		return 0
	}
	return int(c.Prefs.GrowthCap.Get().(float64) * float64(c.displayHeight))
}

// DrawComplete advances the draw counter.
func (c *Cache) DrawComplete() {
	c.draw++
}

// DrawNumber returns the number of the current draw.
func (c *Cache) DrawNumber() int {
	return c.draw
}

func (c *Cache) textureInsideRT() bool {
	return c.policy.TextureInsideRT || c.Prefs.TextureInsideRT.Get().(bool)
}

func (c *Cache) preloadFrame() bool {
	return c.policy.PreloadFrame || c.Prefs.PreloadFrame.Get().(bool)
}

func (c *Cache) createTexture(w, h int, format gpu.Format) (gpu.Texture, error) {
	tex, err := c.dev.CreateTexture(w, h, format)
	if err != nil {
		return nil, curated.Errorf(AllocationFailed, err)
	}
	return tex, nil
}

// SourceMemoryUsage returns the number of bytes used by source textures
// owned by the cache.
func (c *Cache) SourceMemoryUsage() uint64 {
	return c.sourceMemory
}

// TargetMemoryUsage returns the number of bytes used by target textures.
func (c *Cache) TargetMemoryUsage() uint64 {
	return c.targetMemory
}

// HashCacheMemoryUsage returns the number of bytes used by the hash cache, not
// including replacement textures.
func (c *Cache) HashCacheMemoryUsage() uint64 {
	return c.hashCacheMemory
}

// HashCacheReplacementMemoryUsage returns the number of bytes used by
// replacement textures in the hash cache.
func (c *Cache) HashCacheReplacementMemoryUsage() uint64 {
	return c.replacementMemory
}

// NumSources returns the number of sources in the cache.
func (c *Cache) NumSources() int {
	return c.sources.Len()
}

// NumTargets returns the number of targets of the kind.
func (c *Cache) NumTargets(kind Kind) int {
	return len(c.targets[kind])
}

// NumHashCacheEntries returns the number of entries in the hash cache.
func (c *Cache) NumHashCacheEntries() int {
	return len(c.hashCache)
}

// NumPalettes returns the number of palettes in the cache.
func (c *Cache) NumPalettes() int {
	return c.palettes.Len()
}

// Targets returns the targets of the kind, most recently used first. The
// returned slice is a copy.
func (c *Cache) Targets(kind Kind) []*Target {
	return append([]*Target(nil), c.targets[kind]...)
}

// Sources returns every source in the cache. The returned slice is a copy.
func (c *Cache) Sources() []*Source {
	return c.sources.All()
}

// removeSource removes the source from the cache and releases everything it
// holds.
func (c *Cache) removeSource(s *Source) {
	c.sources.RemoveAt(s)

	if s.palette != nil {
		s.palette.Release()
		s.palette = nil
	}

	if s.fromHashCache != nil {
		s.fromHashCache.Refcount--
		s.fromHashCache = nil
	} else if !s.SharedTexture && s.Texture != nil {
		c.sourceMemory -= s.Texture.MemUsage()
		c.dev.DestroyTexture(s.Texture)
	}

	if s.Target != nil {
		s.Target.removeDependent(s)
		s.Target = nil
	}

	s.Texture = nil
}

// removeTarget removes the target, and every source reading from it, from the
// cache.
func (c *Cache) removeTarget(t *Target) {
	c.targets[t.Kind] = remove(c.targets[t.Kind], t)

	for _, s := range append([]*Source(nil), t.dependents...) {
		c.removeSource(s)
	}
	t.dependents = nil

	if t.Texture != nil {
		c.targetMemory -= t.Texture.MemUsage()
		c.dev.DestroyTexture(t.Texture)
		t.Texture = nil
	}
}

// evict removes the target from the cache, writing the drawn area back to
// local memory first if the ReadbackOnEviction preference is set.
func (c *Cache) evict(t *Target) {
	if c.Prefs.ReadbackOnEviction.Get().(bool) && !t.DrawnSinceRead.Empty() {
		c.Read(t, t.DrawnSinceRead)
	}
	logger.Logf(c, "texcache", "evicting %s", t)
	c.removeTarget(t)
}

// flush removes every source and every hash cache entry. Targets and target
// heights are kept. Palettes go with the last source referring to them.
func (c *Cache) flush() {
	for _, s := range c.sources.All() {
		c.removeSource(s)
	}
	for k, e := range c.hashCache {
		c.removeHashCacheEntry(k, e)
	}
}

// RemoveAll empties the cache. Targets are not written back to local memory.
// Use ReadbackAll() first if this is required.
func (c *Cache) RemoveAll() {
	c.flush()
	for k := range c.targets {
		for _, t := range c.Targets(Kind(k)) {
			c.removeTarget(t)
		}
	}
	c.palettes.Clear()
	c.heights = c.heights[:0]
	c.transfers = c.transfers[:0]
	c.offsets.Purge()
	logger.Log(c, "texcache", "all surfaces removed")
}
