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
package test

import "testing"

// ExpectPixels compares two slices of pixel values. Only the first mismatch is
// reported, along with the number of mismatched pixels. The width is used to
// report the position of the mismatch and can be zero if the slices are not
// images.
func ExpectPixels(t *testing.T, pix []uint32, expected []uint32, width int, tags ...any) bool {
	t.Helper()

	if len(pix) != len(expected) {
		t.Errorf("%spixel test failed: %d pixels, expected %d", id(tags...), len(pix), len(expected))
		return false
	}

	first := -1
	n := 0
	for i := range pix {
		if pix[i] != expected[i] {
			if first == -1 {
				first = i
			}
			n++
		}
	}

	if first == -1 {
		return true
	}

	if width > 0 {
		t.Errorf("%spixel test failed: %08x at (%d, %d) does not equal %08x (%d mismatches)",
			id(tags...), pix[first], first%width, first/width, expected[first], n)
	} else {
		t.Errorf("%spixel test failed: %08x at %d does not equal %08x (%d mismatches)",
			id(tags...), pix[first], first, expected[first], n)
	}

	return false
}

// ExpectFill checks that every pixel has the value v.
func ExpectFill(t *testing.T, pix []uint32, v uint32, width int, tags ...any) bool {
	t.Helper()
	fill := make([]uint32, len(pix))
	for i := range fill {
		fill[i] = v
	}
	return ExpectPixels(t, pix, fill, width, tags...)
}
