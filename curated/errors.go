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

package curated

import (
	"errors"
	"fmt"
	"strings"
)

// curated errors keep the pattern and values they were created with.
// formatting is deferred until Error() is called.
type curated struct {
	pattern string
	values  []any
}

// Errorf creates a new curated error. The pattern is a fmt package format
// string and is what Is() and Has() match against.
func Errorf(pattern string, values ...any) error {
	return curated{
		pattern: pattern,
		values:  values,
	}
}

// Error implements the error interface. Adjacent duplicate parts of the
// message are removed.
func (er curated) Error() string {
	parts := strings.Split(fmt.Sprintf(er.pattern, er.values...), ": ")
	n := parts[:1]
	for _, p := range parts[1:] {
		if p != n[len(n)-1] {
			n = append(n, p)
		}
	}
	return strings.Join(n, ": ")
}

// Unwrap returns the first error in the list of values, if there is one.
func (er curated) Unwrap() error {
	for _, v := range er.values {
		if e, ok := v.(error); ok {
			return e
		}
	}
	return nil
}

// IsAny returns true if err is a curated error.
func IsAny(err error) bool {
	_, ok := err.(curated)
	return ok
}

// Is returns true if err is a curated error created with pattern.
func Is(err error, pattern string) bool {
	er, ok := err.(curated)
	return ok && er.pattern == pattern
}

// Has returns true if a curated error created with pattern is anywhere in the
// chain of err. The chain is followed through the values of curated errors
// and through errors wrapped by fmt.Errorf() with the %w verb.
func Has(err error, pattern string) bool {
	for err != nil {
		er, ok := err.(curated)
		if !ok {
			err = errors.Unwrap(err)
			continue
		}

		if er.pattern == pattern {
			return true
		}

		for _, v := range er.values {
			if e, ok := v.(error); ok && Has(e, pattern) {
				return true
			}
		}

		return false
	}

	return false
}
