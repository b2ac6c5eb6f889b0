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

// Package opengl implements the gpu.Device interface with OpenGL 3.2.
//
// Textures of every format are stored as RGBA8 so that texels, including raw
// depth values and palette indices, survive copies unchanged. Plain copies and
// stretches are performed with framebuffer blits. Conversions and masked
// writes read the texels back and are performed on the CPU with the helper
// functions in the gpu package.
//
// A current OpenGL context is required. The Context type creates one with a
// hidden SDL window. All calls must be made from the thread that created the
// context.
package opengl
