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
	"image"
	"testing"

	"github.com/jetsetilly/gstexcache/gs/psm"
	"github.com/jetsetilly/gstexcache/gs/vram"
	"github.com/jetsetilly/gstexcache/test"
)

func TestTranslateRect(t *testing.T) {
	ct32 := func(bp, bw uint32) vram.Offset {
		return vram.NewOffset(bp, bw, psm.PSMCT32)
	}

	r, ok := translateRect(ct32(0, 10), ct32(0, 10), image.Rect(10, 10, 20, 20))
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, r, image.Rect(10, 10, 20, 20))

	// one page along
	r, ok = translateRect(ct32(32, 10), ct32(0, 10), image.Rect(0, 0, 64, 32))
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, r, image.Rect(64, 0, 128, 32))

	// one row of pages down
	r, ok = translateRect(ct32(320, 10), ct32(0, 10), image.Rect(0, 0, 64, 32))
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, r, image.Rect(0, 32, 64, 64))

	// moving up is fine as long as the result doesn't start above the
	// destination
	r, ok = translateRect(ct32(0, 10), ct32(320, 10), image.Rect(0, 32, 64, 64))
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, r, image.Rect(0, 0, 64, 32))

	_, ok = translateRect(ct32(0, 10), ct32(320, 10), image.Rect(0, 0, 64, 32))
	test.ExpectFailure(t, ok)

	// a single row of pages keeps its shape in a layout of different width
	r, ok = translateRect(ct32(0, 1), ct32(0, 10), image.Rect(0, 0, 64, 32))
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, r, image.Rect(0, 0, 64, 32))

	_, ok = translateRect(ct32(0, 1), ct32(0, 10), image.Rect(0, 0, 64, 64))
	test.ExpectFailure(t, ok)

	// the rectangle must be inside the width of the source layout
	_, ok = translateRect(ct32(0, 10), ct32(0, 10), image.Rect(0, 0, 1024, 32))
	test.ExpectFailure(t, ok)

	// pixels are arranged differently
	_, ok = translateRect(ct32(0, 10), vram.NewOffset(0, 10, psm.PSMCT16), image.Rect(0, 0, 64, 32))
	test.ExpectFailure(t, ok)

	// partial word formats are arranged the same as CT32
	r, ok = translateRect(vram.NewOffset(32, 10, psm.PSMT8H), ct32(0, 10), image.Rect(0, 0, 16, 16))
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, r, image.Rect(64, 0, 80, 16))
}

func TestComputeSurfaceOffset(t *testing.T) {
	key := SurfaceOffsetKey{
		A: SurfaceOffsetKeyElem{PSM: psm.PSMCT32, BP: 0, BW: 10, Rect: image.Rect(0, 0, 640, 64)},
		B: SurfaceOffsetKeyElem{PSM: psm.PSMCT32, BP: 320, BW: 10, Rect: image.Rect(0, 0, 640, 448)},
	}

	so := computeSurfaceOffset(key)
	test.DemandSuccess(t, so.Valid)
	test.ExpectEquality(t, so.B2AOffset, image.Rect(0, 0, 640, 32))

	// no blocks in common
	key.B.BP = 0x1000
	so = computeSurfaceOffset(key)
	test.ExpectFailure(t, so.Valid)
}

func TestFloorDiv(t *testing.T) {
	test.ExpectEquality(t, floorDiv(7, 2), 3)
	test.ExpectEquality(t, floorDiv(-7, 2), -4)
	test.ExpectEquality(t, floorDiv(-8, 2), -4)
	test.ExpectEquality(t, floorDiv(0, 5), 0)
}

func TestSplitCoords(t *testing.T) {
	l := splitCoords(image.Rect(0, 0, 64, 64))
	test.DemandEquality(t, len(l), 1)

	l = splitCoords(image.Rect(2000, 0, 2100, 64))
	test.DemandEquality(t, len(l), 2)
	test.ExpectEquality(t, l[0], image.Rect(2000, 0, 2048, 64))
	test.ExpectEquality(t, l[1], image.Rect(0, 0, 52, 64))
}
