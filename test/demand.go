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

// demand stops the test if the preceeding expectation failed. the expectation
// will already have reported the failure
func demand(t *testing.T, ok bool) {
	t.Helper()
	if !ok {
		t.FailNow()
	}
}

// DemandEquality is the Demand variant of ExpectEquality.
func DemandEquality[T comparable](t *testing.T, v T, expectedValue T, tags ...any) {
	t.Helper()
	demand(t, ExpectEquality(t, v, expectedValue, tags...))
}

// DemandSuccess is the Demand variant of ExpectSuccess.
func DemandSuccess(t *testing.T, v any, tags ...any) {
	t.Helper()
	demand(t, ExpectSuccess(t, v, tags...))
}

// DemandFailure is the Demand variant of ExpectFailure.
func DemandFailure(t *testing.T, v any, tags ...any) {
	t.Helper()
	demand(t, ExpectFailure(t, v, tags...))
}

// DemandImplements stops the test if instance does not implement the type of
// implements. An interface type is specified with a nil value of that type:
//
//	test.DemandImplements(t, d, digest.Digest(nil))
func DemandImplements[T comparable](t *testing.T, instance any, implements T, tags ...any) bool {
	t.Helper()
	if _, ok := instance.(T); !ok {
		t.Fatalf("%stype %T does not implement %T", id(tags...), instance, implements)
		return false
	}
	return true
}
