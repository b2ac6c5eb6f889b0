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
// Package limiter holds a loop to a fixed number of iterations per second.
//
//	lim, _ := limiter.NewFPSLimiter(60)
//	for {
//		lim.Wait()
//		renderFrame()
//	}
//
// Wait() sleeps until the next frame is due. A caller that falls more than a
// frame behind is not allowed to catch up with a burst of frames. The limiter
// instead resynchronises and counts the frames that were missed.
package limiter

import (
	"sync"
	"time"

	"github.com/jetsetilly/gstexcache/curated"
)

// FpsLimiter paces calls to Wait() to a number of frames per second.
type FpsLimiter struct {
	crit sync.Mutex

	framesPerSecond int
	period          time.Duration

	// when the next frame is due. zero until the first call to Wait()
	due time.Time

	missed int
}

// NewFPSLimiter is the preferred method of initialisation for the FpsLimiter
// type.
func NewFPSLimiter(framesPerSecond int) (*FpsLimiter, error) {
	lim := &FpsLimiter{}
	if err := lim.SetLimit(framesPerSecond); err != nil {
		return nil, err
	}
	return lim, nil
}

// SetLimit changes the number of frames per second. Takes effect from the next
// frame.
func (lim *FpsLimiter) SetLimit(framesPerSecond int) error {
	if framesPerSecond <= 0 {
		return curated.Errorf("limiter: frames per second must be positive (%d)", framesPerSecond)
	}

	lim.crit.Lock()
	defer lim.crit.Unlock()
	lim.framesPerSecond = framesPerSecond
	lim.period = time.Second / time.Duration(framesPerSecond)

	return nil
}

// Limit returns the number of frames per second.
func (lim *FpsLimiter) Limit() int {
	lim.crit.Lock()
	defer lim.crit.Unlock()
	return lim.framesPerSecond
}

// Missed returns the number of frames skipped because Wait() was called too
// late.
func (lim *FpsLimiter) Missed() int {
	lim.crit.Lock()
	defer lim.crit.Unlock()
	return lim.missed
}

// Wait blocks until the next frame is due. The first call returns
// immediately.
func (lim *FpsLimiter) Wait() {
	lim.crit.Lock()
	now := time.Now()
	if lim.due.IsZero() {
		lim.due = now
	}

	d := lim.due.Sub(now)
	if d < -lim.period {
		lim.missed += int(-d / lim.period)
		lim.due = now
		d = 0
	}
	lim.due = lim.due.Add(lim.period)
	lim.crit.Unlock()

	if d > 0 {
		time.Sleep(d)
	}
}
