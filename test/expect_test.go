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

package test_test

import (
	"errors"
	"testing"

	"github.com/jetsetilly/gstexcache/test"
)

func TestExpectFailure(t *testing.T) {
	test.ExpectFailure(t, false)
	test.ExpectFailure(t, errors.New("test"))
}

func TestExpectSuccess(t *testing.T) {
	test.ExpectSuccess(t, true)
	var err error
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, nil)
}

func TestExpectEquality(t *testing.T) {
	test.ExpectEquality(t, 10, 5+5)
	test.ExpectEquality(t, true, !false)
	test.ExpectEquality(t, uint32(0x3fff), 0x3fff)
}

func TestExpectInequality(t *testing.T) {
	test.ExpectInequality(t, 11, 5+5)
	test.ExpectInequality(t, true, false)
}

func TestExpectApproximate(t *testing.T) {
	test.ExpectApproximate(t, 10, 11, 0.1)
	test.ExpectApproximate(t, 2.0, 2.05, 0.05)
}

func TestCompareWriter(t *testing.T) {
	var w test.CompareWriter
	w.Write([]byte("texture "))
	w.Write([]byte("cache"))
	test.ExpectSuccess(t, w.Compare("texture cache"))
	w.Clear()
	test.ExpectEquality(t, w.String(), "")

	w.Write([]byte("line 1\nline 2\n"))
	lines := w.Lines()
	test.DemandEquality(t, len(lines), 2)
	test.ExpectEquality(t, lines[1], "line 2")
}

func TestExpectPixels(t *testing.T) {
	pix := []uint32{1, 2, 3, 4}
	test.ExpectPixels(t, pix, []uint32{1, 2, 3, 4}, 2)
	test.ExpectFill(t, []uint32{0xff, 0xff, 0xff}, 0xff, 0)
}
