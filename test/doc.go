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

// Package test contains helper functions to remove common boilerplate to make
// testing easier.
//
// The Expect*() functions report a failure but allow the test to continue. The
// Demand*() functions stop the test immediately. Use the Demand variants when
// the value is used by later parts of the test, for example the length of a
// slice before it is iterated over.
//
// It is worth describing how success and failure are interpreted for the nil
// type because it is not obvious. The nil type is considered a success and
// consequently will cause ExpectFailure to fail and ExpectSuccess to succeed.
// This is how errors usually work (nil to indicate no error) so we interpret
// nil in this way everywhere.
//
// ExpectPixels and ExpectFill compare slices of pixel values, as read back from
// local memory or from a texture, and report the position of the first
// mismatch rather than every failing pixel.
//
// The CompareWriter type implements the io.Writer interface and should be used
// to capture output. The CompareWriter.Compare() function can then be used to
// test for equality.
package test
