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

// Package texcache maps regions of GS local memory to textures resident on
// the graphics device.
//
// Three kinds of surface are cached. A Source is a texture sampled by a draw.
// A Target is a render target or depth buffer that draws write to. Palettes
// are the colour lookup tables of indexed textures. All three can alias the
// same bytes of local memory with different pixel formats and buffer widths,
// and the Cache is responsible for keeping the resident copies coherent with
// local memory and with each other.
//
// The cache is driven by the draw path of a renderer. The usual sequence for
// a draw is:
//
//	t, err := tc.LookupTarget(frame.TEX0(), size, scale, texcache.RenderTarget, ...)
//	s, err := tc.LookupSource(tex0, texa, clamp, rect, lod)
//	... draw ...
//	tc.CommitDraw(t, drawRect, writtenBits)
//	tc.DrawComplete()
//
// Draws sampling a depth buffer use LookupDepthSource() in place of
// LookupSource(). Local to local copies can often stay on the device with
// Move() or ShuffleMove().
//
// Transfers from the CPU into local memory must be reported with
// InvalidateVideoMem() and transfers from local memory back to the CPU must
// be preceded by InvalidateLocalMem(). IncAge() should be called once per
// vsync.
//
// The Cache is not safe for concurrent use.
package texcache
