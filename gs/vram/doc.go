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

// Package vram models the 4MiB of GS local memory.
//
// Local memory is addressed in blocks of 256 bytes. Thirty-two blocks make a
// page and a surface is described by the block it starts at (the base pointer
// or BP), its buffer width in units of 64 pixels (BW) and its pixel storage
// mode. The Offset type describes such a surface and translates between pixel
// coordinates and addresses.
//
// Pages of a surface are laid out left to right and then top to bottom, with
// as many pages across as are required to cover the buffer width. Inside a
// page, pixels are stored row by row. A block is therefore a strip of rows
// that spans the width of the page.
//
// Block addresses wrap around at the end of memory. The BlockRange type
// describes a run of blocks, taking the wraparound into account.
package vram
