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
package limiter_test

import (
	"testing"
	"time"

	"github.com/jetsetilly/gstexcache/performance/limiter"
	"github.com/jetsetilly/gstexcache/test"
)

func TestLimit(t *testing.T) {
	_, err := limiter.NewFPSLimiter(0)
	test.ExpectFailure(t, err)

	lim, err := limiter.NewFPSLimiter(100)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, lim.Limit(), 100)

	test.ExpectFailure(t, lim.SetLimit(-1))
	test.ExpectEquality(t, lim.Limit(), 100)
	test.ExpectSuccess(t, lim.SetLimit(50))
	test.ExpectEquality(t, lim.Limit(), 50)
}

func TestWait(t *testing.T) {
	lim, err := limiter.NewFPSLimiter(100)
	test.DemandSuccess(t, err)

	// the first wait returns immediately. the nine after that take 10ms each
	start := time.Now()
	for i := 0; i < 10; i++ {
		lim.Wait()
	}
	test.ExpectSuccess(t, time.Since(start) >= 80*time.Millisecond)
	test.ExpectEquality(t, lim.Missed(), 0)
}

func TestMissed(t *testing.T) {
	lim, err := limiter.NewFPSLimiter(1000)
	test.DemandSuccess(t, err)

	lim.Wait()
	time.Sleep(20 * time.Millisecond)

	// the late frame does not lead to a burst of frames
	start := time.Now()
	lim.Wait()
	lim.Wait()
	test.ExpectSuccess(t, lim.Missed() > 0)
	test.ExpectSuccess(t, time.Since(start) >= 500*time.Microsecond)
}
