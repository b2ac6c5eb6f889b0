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

// Package workload drives a texture cache the way the draw path of a GS
// renderer does. It is used by the command line tool to exercise the cache
// without an emulator and by the performance package to time it.
//
// The Renderer type implements the individual operations: local memory
// transfers in each direction, local to local copies, draws into render
// targets and depth buffers and the vertical sync. Scene generates a
// repeatable series of frames built from those operations.
//
// Draws are not rasterised. A textured draw stretches the source texture over
// the drawn rectangle and an untextured draw fills the rectangle with a single
// colour. This is enough to move real texel data through the cache so that
// readbacks and texture uploads can be compared against local memory.
package workload
