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

// Package policy holds the per-title behaviour overrides of the texture cache.
// Some titles depend on cache behaviour that is too expensive or too risky to
// enable for every title. A Table maps a title fingerprint to the Policy for
// that title.
//
// Tables are stored as plain text. Each line is a fingerprint followed by a
// list of flags, separated by commas:
//
//	SLUS-20312,PreloadFrame,TextureInsideRT
//	SLES-50330,DisablePartialInvalidation
//
// Blank lines and lines beginning with a hash are ignored.
package policy
