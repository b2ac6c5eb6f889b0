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

package random

import (
	"math/rand"
	"time"
)

// the base seed for all random numbers
var baseSeed int64

// initialise base seed
func init() {
	baseSeed = int64(time.Now().Nanosecond())
}

// Position is implemented by the source of the current point in a workload.
type Position interface {
	// the number of the current frame and the number of the current draw
	// inside the frame
	Position() (int, int)
}

// maximum number of draws expected in a frame. used to spread positions
const maxDraws = 100000

// Random is a random number generator that is sensitive to the position of a
// workload.
type Random struct {
	pos Position

	// the number of values generated at the current position
	n   int
	key int64

	// use zero seed rather than the random base seed. this is only really
	// useful when random numbers must be predictable
	ZeroSeed bool
}

// NewRandom is the preferred method of initialisation for the Random type.
func NewRandom(pos Position) *Random {
	return &Random{
		pos: pos,
		key: -1,
	}
}

// translate a position into a single value
func positionSum(frame, draw int) int64 {
	return int64(frame)*maxDraws + int64(draw)
}

// new RNG from the standard library. successive calls at the same position
// return different generators
func (rnd *Random) rand() *rand.Rand {
	k := positionSum(rnd.pos.Position())
	if k != rnd.key {
		rnd.key = k
		rnd.n = 0
	}
	rnd.n++

	seed := k*31 + int64(rnd.n)
	if !rnd.ZeroSeed {
		seed += baseSeed
	}
	return rand.New(rand.NewSource(seed))
}

// Intn returns a random number in the range [0,n).
func (rnd *Random) Intn(n int) int {
	return rnd.rand().Intn(n)
}

// Uint32 returns a random 32-bit value.
func (rnd *Random) Uint32() uint32 {
	return rnd.rand().Uint32()
}

// Fill the slice with random values masked by the mask.
func (rnd *Random) Fill(pix []uint32, mask uint32) {
	r := rnd.rand()
	for i := range pix {
		pix[i] = r.Uint32() & mask
	}
}
