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
	"io"

	"github.com/bradleyjkemp/memviz"
)

// SurfaceInfo is a summary of a surface in the cache.
type SurfaceInfo struct {
	Description string
	Range       string
	Size        image.Point
	Age         int
	Shared      bool
}

// TargetInfo is a summary of a target in the cache.
type TargetInfo struct {
	SurfaceInfo
	Valid          image.Rectangle
	DrawnSinceRead image.Rectangle
	ValidBits      uint32
	Dirty          []DirtyRect
	Dependents     []SurfaceInfo
}

// Snapshot is a summary of the content of the cache.
type Snapshot struct {
	Draw    int
	Targets [numKinds][]TargetInfo
	Sources []SurfaceInfo

	HashCacheEntries int
	Palettes         int

	SourceMemory      uint64
	TargetMemory      uint64
	HashCacheMemory   uint64
	ReplacementMemory uint64
}

func surfaceInfo(desc string, s *Surface) SurfaceInfo {
	return SurfaceInfo{
		Description: desc,
		Range:       s.Range().String(),
		Size:        s.UnscaledSize,
		Age:         s.Age,
		Shared:      s.SharedTexture,
	}
}

// Snapshot returns a summary of the content of the cache.
func (c *Cache) Snapshot() Snapshot {
	snap := Snapshot{
		Draw:              c.draw,
		HashCacheEntries:  len(c.hashCache),
		Palettes:          c.palettes.Len(),
		SourceMemory:      c.sourceMemory,
		TargetMemory:      c.targetMemory,
		HashCacheMemory:   c.hashCacheMemory,
		ReplacementMemory: c.replacementMemory,
	}

	for k := range c.targets {
		for _, t := range c.targets[k] {
			ti := TargetInfo{
				SurfaceInfo:    surfaceInfo(t.String(), &t.Surface),
				Valid:          t.Valid,
				DrawnSinceRead: t.DrawnSinceRead,
				ValidBits:      t.ValidBits,
				Dirty:          t.DirtyRects(),
			}
			for _, s := range t.dependents {
				ti.Dependents = append(ti.Dependents, surfaceInfo(s.String(), &s.Surface))
			}
			snap.Targets[k] = append(snap.Targets[k], ti)
		}
	}

	for _, s := range c.sources.All() {
		snap.Sources = append(snap.Sources, surfaceInfo(s.String(), &s.Surface))
	}

	return snap
}

func (snap Snapshot) String() string {
	return fmt.Sprintf("draw %d: %d render targets, %d depth stencils, %d sources, %d hash cache entries, %d palettes",
		snap.Draw, len(snap.Targets[RenderTarget]), len(snap.Targets[DepthStencil]), len(snap.Sources),
		snap.HashCacheEntries, snap.Palettes)
}

// Dump writes a graphviz representation of a snapshot of the cache to
// io.Writer.
func (c *Cache) Dump(w io.Writer) {
	snap := c.Snapshot()
	memviz.Map(w, &snap)
}
