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

package performance

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jetsetilly/gstexcache/curated"
	"github.com/jetsetilly/gstexcache/gpu"
	"github.com/jetsetilly/gstexcache/performance/limiter"
	"github.com/jetsetilly/gstexcache/workload"
)

// sentinal error returned by the RunFrames() loop.
var timedOut = errors.New("performance timed out")

// the frame rate of the display when the workload is capped
const framesPerSecond = 60

// time allowed for the frame rate to settle before measurement begins
const leadTime = 2 * time.Second

// Check the performance of the texture cache with the scene workload.
//
// The workload will run for the specified duration and will create a cpu,
// memory profile, a trace (or a combination of those) as defined by the
// Profile argument. The frame rate is capped at 60fps unless uncapped is true.
func Check(output io.Writer, profile Profile, dev gpu.Device, scale float32, uncapped bool, duration string) error {
	// parse supplied duration
	dur, err := time.ParseDuration(duration)
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}

	r, err := workload.NewRenderer(dev, scale)
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}
	defer r.Destroy()

	scene := workload.NewScene(r, true)

	var lim *limiter.FpsLimiter
	if !uncapped {
		lim, err = limiter.NewFPSLimiter(framesPerSecond)
		if err != nil {
			return curated.Errorf("performance: %v", err)
		}
	}

	// get starting frame number (should be 0)
	startFrame := r.Stats.Frames

	// run for specified period of time
	runner := func() error {
		// setup trigger that expires when duration has elapsed. signals true
		// when duration has expired. signals false to indicate that
		// performance measurement should start
		timerChan := make(chan bool)

		// force a leadtime to allow framerate to settle down and then restart
		// timer for the specified duration
		//
		// the leadtime will put false on the timerChan. the conclusion of the
		// reset of the time will put true on the timerChan.
		go func() {
			time.AfterFunc(leadTime, func() {
				// signal parent function that leadtime has elapsed
				timerChan <- false

				time.AfterFunc(dur, func() {
					timerChan <- true
				})
			})
		}()

		// run until specified time elapses
		err := scene.RunFrames(-1, func() (bool, error) {
			if lim != nil {
				lim.Wait()
			}

			select {
			case v := <-timerChan:
				// timerChan has returned true, which means measurement
				// period has finished
				if v {
					return false, timedOut
				}

				// timerChan has returned false which indicates that the
				// leadtime has concluded. this means the performance
				// measurement has begun and we should record the start
				// frame.
				startFrame = r.Stats.Frames
			default:
			}

			return true, nil
		})

		// end of the measurement period
		if errors.Is(err, timedOut) {
			return nil
		}
		return err
	}

	// launch runner directly or through the profiler, depending on supplied
	// arguments
	err = RunProfiler(profile, "performance", runner)
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}

	// calculate performance
	numFrames := r.Stats.Frames - startFrame
	fps, accuracy := CalcFPS(numFrames, dur.Seconds(), framesPerSecond)
	output.Write([]byte(fmt.Sprintf("%.2f fps (%d frames in %.2f seconds) %.1f%%\n", fps, numFrames, dur.Seconds(), accuracy)))
	output.Write([]byte(fmt.Sprintf("%d draws, %d transfers, %d downloads, %d moves (%d in local memory)\n",
		r.Stats.Draws, r.Stats.Transfers, r.Stats.Downloads, r.Stats.Moves, r.Stats.MemoryMoves)))
	output.Write([]byte(fmt.Sprintf("%s\n", r.Cache.Snapshot())))

	return nil
}
