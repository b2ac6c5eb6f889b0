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

package vram_test

import (
	"math/rand"
	"testing"

	"github.com/jetsetilly/gstexcache/gs/vram"
	"github.com/jetsetilly/gstexcache/test"
)

// blocks returns the set of blocks in the range by walking it
func blocks(r vram.BlockRange) []bool {
	s := make([]bool, vram.MaxBlocks)
	for b := r.Start; ; b = (b + 1) & vram.MaxBP {
		s[b] = true
		if b == r.End {
			break
		}
	}
	return s
}

func intersects(a, b []bool) bool {
	for i := range a {
		if a[i] && b[i] {
			return true
		}
	}
	return false
}

func TestOverlapAgainstWalk(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	edges := []uint32{0, 1, vram.MaxBP - 1, vram.MaxBP, 0x2000}
	pick := func() uint32 {
		if rng.Intn(3) == 0 {
			return edges[rng.Intn(len(edges))]
		}
		return uint32(rng.Intn(vram.MaxBlocks))
	}

	for i := 0; i < 300; i++ {
		a := vram.NewBlockRange(pick(), pick())
		b := vram.NewBlockRange(pick(), pick())
		want := intersects(blocks(a), blocks(b))
		test.ExpectEquality(t, a.Overlaps(b), want, a, " ", b)
		test.ExpectEquality(t, b.Overlaps(a), want, b, " ", a)
	}
}

func TestOverlapWraps(t *testing.T) {
	a := vram.NewBlockRange(0x3f00, 0x0100)
	test.ExpectSuccess(t, a.Wraps)
	test.ExpectEquality(t, a.Len(), uint32(0x201))

	test.ExpectSuccess(t, a.Overlaps(vram.NewBlockRange(0x0080, 0x0090)))
	test.ExpectSuccess(t, a.Overlaps(vram.NewBlockRange(0x3f80, 0x3f90)))
	test.ExpectFailure(t, a.Overlaps(vram.NewBlockRange(0x0200, 0x3e00)))

	// two wrapping ranges always overlap
	test.ExpectSuccess(t, a.Overlaps(vram.NewBlockRange(0x3fff, 0x0000)))

	test.ExpectSuccess(t, a.Contains(0x3fff))
	test.ExpectSuccess(t, a.Contains(0x0000))
	test.ExpectFailure(t, a.Contains(0x2000))
}

func TestInside(t *testing.T) {
	a := vram.NewBlockRange(0x3f00, 0x0100)
	test.ExpectSuccess(t, vram.NewBlockRange(0x3f10, 0x0010).Inside(a))
	test.ExpectSuccess(t, vram.NewBlockRange(0x0010, 0x0020).Inside(a))
	test.ExpectFailure(t, vram.NewBlockRange(0x0010, 0x0200).Inside(a))
	test.ExpectFailure(t, vram.NewBlockRange(0x1000, 0x1010).Inside(a))

	b := vram.NewBlockRange(0x1000, 0x2000)
	test.ExpectSuccess(t, vram.NewBlockRange(0x1000, 0x2000).Inside(b))
	test.ExpectFailure(t, vram.NewBlockRange(0x0fff, 0x1000).Inside(b))
}
