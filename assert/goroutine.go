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

// Package assert contains checks that are only useful for debugging or
// testing purposes.
package assert

import (
	"bytes"
	"runtime"
	"strconv"
)

// GetGoRoutineID returns an identify for a goroutine. it returns a result that
// is (a) different between goroutines and (b) consistent for a given
// goroutine. It is undoubtedly useful for but it should only ever be used for
// debugging or testing purposes.
func GetGoRoutineID() uint64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	b = b[:bytes.IndexByte(b, ' ')]
	n, _ := strconv.ParseUint(string(b), 10, 64)
	return n
}

// Owner is the goroutine that created a resource which must only be used by
// that goroutine. OpenGL contexts for example.
type Owner uint64

// NewOwner returns the Owner value for the calling goroutine.
func NewOwner() Owner {
	return Owner(GetGoRoutineID())
}

// IsOwner returns true if the calling goroutine is the owner.
func (o Owner) IsOwner() bool {
	return uint64(o) == GetGoRoutineID()
}
