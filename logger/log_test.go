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

package logger_test

import (
	"strings"
	"testing"

	"github.com/jetsetilly/gstexcache/curated"
	"github.com/jetsetilly/gstexcache/gs/vram"
	"github.com/jetsetilly/gstexcache/logger"
	"github.com/jetsetilly/gstexcache/test"
)

// entries are written oldest first. Tail() writes the most recent entries
func TestLogger(t *testing.T) {
	log := logger.NewLogger(100)
	w := &test.CompareWriter{}

	log.Write(w)
	test.ExpectEquality(t, w.String(), "")

	log.Log(logger.Allow, "texcache", "created RT 00000")
	log.Log(logger.Allow, "workload", "frame 0")
	log.Write(w)
	test.ExpectEquality(t, w.String(), "texcache: created RT 00000\nworkload: frame 0\n")

	for _, n := range []int{100, 2, 1, 0} {
		w.Clear()
		log.Tail(w, n)
		exp := 2
		if n < exp {
			exp = n
		}
		test.ExpectEquality(t, len(w.Lines()), exp, n)
	}

	w.Clear()
	log.Tail(w, 1)
	test.ExpectSuccess(t, w.Compare("workload: frame 0\n"))
}

func TestRepeatAndRecent(t *testing.T) {
	log := logger.NewLogger(100)
	w := &strings.Builder{}

	log.Log(logger.Allow, "texcache", "flush")
	log.Log(logger.Allow, "texcache", "flush")
	log.WriteRecent(w)
	test.ExpectEquality(t, w.String(), "texcache: flush (repeat x2)\n")

	w.Reset()
	log.WriteRecent(w)
	test.ExpectEquality(t, w.String(), "")

	log.Logf(logger.Allow, "texcache", "target %05x", 0x1a0)
	log.WriteRecent(w)
	test.ExpectEquality(t, w.String(), "texcache: target 001a0\n")
}

func TestMaxEntries(t *testing.T) {
	log := logger.NewLogger(2)
	log.Log(logger.Allow, "a", "1")
	log.Log(logger.Allow, "b", "2")
	log.Log(logger.Allow, "c", "3")

	w := &strings.Builder{}
	log.Write(w)
	test.ExpectEquality(t, w.String(), "b: 2\nc: 3\n")
}

func TestPermissions(t *testing.T) {
	log := logger.NewLogger(100)
	w := &test.CompareWriter{}

	var enabled bool
	perm := logger.PermissionFunc(func() bool {
		return enabled
	})

	log.Log(perm, "texcache", "not logged")
	log.Write(w)
	test.ExpectSuccess(t, w.Compare(""))

	enabled = true
	log.Logf(perm, "texcache", "created %s", "target")
	log.Write(w)
	test.ExpectSuccess(t, w.Compare("texcache: created target\n"))

	enabled = false
	log.Log(perm, "texcache", "not logged")
	w.Clear()
	log.Write(w)
	test.ExpectEquality(t, len(w.Lines()), 1)
}

// errors and stringers are logged with their Error() and String() functions
func TestDetailTypes(t *testing.T) {
	log := logger.NewLogger(100)
	w := &test.CompareWriter{}

	err := curated.Errorf("texcache: allocation failed")
	log.Log(logger.Allow, "workload", err)
	log.Logf(logger.Allow, "workload", "draw skipped: %v", err)
	log.Log(logger.Allow, "workload", vram.NewBlockRange(0x3fe0, 0x0020))
	log.Log(logger.Allow, "workload", 100)
	log.Write(w)

	lines := w.Lines()
	test.DemandEquality(t, len(lines), 4)
	test.ExpectEquality(t, lines[0], "workload: texcache: allocation failed")
	test.ExpectEquality(t, lines[1], "workload: draw skipped: texcache: allocation failed")
	test.ExpectEquality(t, lines[2], "workload: 3fe0-0020 (wraps)")
	test.ExpectEquality(t, lines[3], "workload: 100")
}
