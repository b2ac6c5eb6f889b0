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

package prefs_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jetsetilly/gstexcache/prefs"
	"github.com/jetsetilly/gstexcache/test"
)

func TestBool(t *testing.T) {
	var v prefs.Bool
	test.ExpectEquality(t, v.Get().(bool), false)

	test.ExpectSuccess(t, v.Set(true))
	test.ExpectEquality(t, v.String(), "true")

	test.ExpectSuccess(t, v.Set("false"))
	test.ExpectEquality(t, v.Get().(bool), false)
	test.ExpectSuccess(t, v.Set(" TRUE "))
	test.ExpectEquality(t, v.Get().(bool), true)

	// unrecognised strings leave the value unchanged
	test.ExpectFailure(t, v.Set("foo"))
	test.ExpectEquality(t, v.Get().(bool), true)

	test.ExpectFailure(t, v.Set(10))
}

func TestInt(t *testing.T) {
	var v prefs.Int
	test.ExpectSuccess(t, v.Set(10))
	test.ExpectEquality(t, v.Get().(int), 10)
	test.ExpectSuccess(t, v.Set("99"))
	test.ExpectEquality(t, v.String(), "99")

	test.ExpectFailure(t, v.Set("---"))
	test.ExpectFailure(t, v.Set(1.0))
}

func TestFloat(t *testing.T) {
	var v prefs.Float
	test.ExpectSuccess(t, v.Set(2))
	test.ExpectEquality(t, v.Get().(float64), 2.0)
	test.ExpectSuccess(t, v.Set("1.5"))
	test.ExpectEquality(t, v.String(), "1.5")
	test.ExpectFailure(t, v.Set("abc"))
}

func TestRange(t *testing.T) {
	var i prefs.Int
	i.SetRange(0, 2)
	test.ExpectSuccess(t, i.Set(2))
	test.ExpectFailure(t, i.Set(3))
	test.ExpectFailure(t, i.Set("-1"))
	test.ExpectEquality(t, i.Get().(int), 2)

	var f prefs.Float
	f.SetRange(1.0, 8.0)
	test.ExpectSuccess(t, f.Set("1.5"))
	test.ExpectFailure(t, f.Set(0.5))
	test.ExpectEquality(t, f.Get().(float64), 1.5)

	// reset is to the bottom of a range that excludes zero
	test.ExpectSuccess(t, f.Reset())
	test.ExpectEquality(t, f.Get().(float64), 1.0)
	test.ExpectSuccess(t, i.Reset())
	test.ExpectEquality(t, i.Get().(int), 0)
}

func TestHooks(t *testing.T) {
	var v prefs.Int
	var post int

	v.SetHookPre(func(nv prefs.Value) error {
		if nv.(int) < 0 {
			return fmt.Errorf("negative value")
		}
		return nil
	})
	v.SetHookPost(func(nv prefs.Value) error {
		post = nv.(int)
		return nil
	})

	test.ExpectSuccess(t, v.Set(5))
	test.ExpectEquality(t, post, 5)

	// pre hook prevents the value from being stored
	test.ExpectFailure(t, v.Set(-1))
	test.ExpectEquality(t, v.Get().(int), 5)
	test.ExpectEquality(t, post, 5)
}

func TestGroup(t *testing.T) {
	grp := prefs.NewGroup("texcache")

	var b prefs.Bool
	var i prefs.Int
	test.ExpectSuccess(t, grp.Add("logging", &b))
	test.ExpectSuccess(t, grp.Add("limit", &i))
	test.ExpectFailure(t, grp.Add("limit", &i))

	test.ExpectSuccess(t, b.Set(true))
	test.ExpectSuccess(t, i.Set(1024))

	w := &strings.Builder{}
	test.ExpectSuccess(t, grp.Save(w))
	test.ExpectEquality(t, w.String(), "texcache.limit :: 1024\ntexcache.logging :: true\n")

	test.ExpectSuccess(t, grp.Reset())
	test.ExpectEquality(t, i.Get().(int), 0)

	err := grp.Load(strings.NewReader("# comment\ntexcache.limit :: 64\nother.key :: 1\n"))
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, i.Get().(int), 64)
	test.ExpectEquality(t, b.Get().(bool), false)
}

func TestGroupCommandLine(t *testing.T) {
	grp := prefs.NewGroup("texcache")

	var i prefs.Int
	var f prefs.Float
	test.ExpectSuccess(t, grp.Add("limit", &i))
	test.ExpectSuccess(t, grp.Add("growth", &f))

	prefs.PushCommandLineStack("limit::16; texcache.growth::1.5; unknown::x")
	test.ExpectSuccess(t, grp.ApplyCommandLine())
	test.ExpectEquality(t, i.Get().(int), 16)
	test.ExpectEquality(t, f.Get().(float64), 1.5)

	// unused entries remain on the stack
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "unknown::x")
}
