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
	"github.com/jetsetilly/gstexcache/prefs"
)

// Texture preloading modes.
const (
	PreloadingOff = iota
	PreloadingPartial
	PreloadingFull
)

// Preferences for the texture cache.
type Preferences struct {
	grp *prefs.Group

	// log cache events through the central logger
	Logging prefs.Bool

	// indexed textures are uploaded as indices and the palette is applied by
	// the device. otherwise the palette is applied when the texture is
	// uploaded
	GPUPaletteConversion prefs.Bool

	// one of the Preloading* values. with preloading off only the pages of a
	// texture that a draw reads are uploaded. partial preloading uploads the
	// whole texture when the source is created. full preloading also shares
	// identical textures through the hash cache
	TexturePreloading prefs.Int

	// budget of the hash cache in megabytes
	HashCacheLimit prefs.Int

	// render targets can't grow beyond this multiple of the display height
	GrowthCap prefs.Float

	// number of vsyncs a target can go unused before it is removed
	TargetAgeLimit prefs.Int

	// maximum number of targets of each kind
	TargetListLimit prefs.Int

	// textures found inside a render target at a page aligned offset are
	// sampled from the render target
	TextureInsideRT prefs.Bool

	// targets are written back to local memory when they are removed
	ReadbackOnEviction prefs.Bool

	// frame buffers are always loaded from local memory when created
	PreloadFrame prefs.Bool
}

func (p *Preferences) String() string {
	return "texcache preferences"
}

// default values.
const (
	defaultTexturePreloading = PreloadingFull
	defaultHashCacheLimit    = 1024
	defaultGrowthCap         = 2.0
	defaultTargetAgeLimit    = 60
	defaultTargetListLimit   = 150
)

// upper limits.
const (
	maxHashCacheLimit  = 16 * 1024
	maxGrowthCap       = 8.0
	maxTargetAgeLimit  = 60 * 60
	maxTargetListLimit = 1024
)

// newPreferences is the preferred method of initialisation for the Preferences type.
func newPreferences() (*Preferences, error) {
	p := &Preferences{
		grp: prefs.NewGroup("texcache"),
	}

	p.TexturePreloading.SetRange(PreloadingOff, PreloadingFull)
	p.HashCacheLimit.SetRange(1, maxHashCacheLimit)
	p.GrowthCap.SetRange(1.0, maxGrowthCap)
	p.TargetAgeLimit.SetRange(1, maxTargetAgeLimit)
	p.TargetListLimit.SetRange(1, maxTargetListLimit)

	p.SetDefaults()

	list := []struct {
		key string
		p   prefs.Pref
	}{
		{"logging", &p.Logging},
		{"gpuPaletteConversion", &p.GPUPaletteConversion},
		{"texturePreloading", &p.TexturePreloading},
		{"hashCacheLimit", &p.HashCacheLimit},
		{"growthCap", &p.GrowthCap},
		{"targetAgeLimit", &p.TargetAgeLimit},
		{"targetListLimit", &p.TargetListLimit},
		{"textureInsideRT", &p.TextureInsideRT},
		{"readbackOnEviction", &p.ReadbackOnEviction},
		{"preloadFrame", &p.PreloadFrame},
	}

	for _, l := range list {
		if err := p.grp.Add(l.key, l.p); err != nil {
			return nil, err
		}
	}

	if err := p.grp.ApplyCommandLine(); err != nil {
		return nil, err
	}

	return p, nil
}

// SetDefaults reverts all preferences to their default values.
func (p *Preferences) SetDefaults() {
	p.Logging.Set(false)
	p.GPUPaletteConversion.Set(false)
	p.TexturePreloading.Set(defaultTexturePreloading)
	p.HashCacheLimit.Set(defaultHashCacheLimit)
	p.GrowthCap.Set(defaultGrowthCap)
	p.TargetAgeLimit.Set(defaultTargetAgeLimit)
	p.TargetListLimit.Set(defaultTargetListLimit)
	p.TextureInsideRT.Set(false)
	p.ReadbackOnEviction.Set(true)
	p.PreloadFrame.Set(false)
}

// Group returns the preferences as a prefs.Group, for loading and saving.
func (p *Preferences) Group() *prefs.Group {
	return p.grp
}

func (p *Preferences) preloading() int {
	return p.TexturePreloading.Get().(int)
}

func (p *Preferences) hashCacheLimit() uint64 {
	return uint64(p.HashCacheLimit.Get().(int)) * 1024 * 1024
}
