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

import "strings"

// CompareWriter captures written output so that it can be compared with an
// expected string.
type CompareWriter struct {
	b strings.Builder
}

// Write implements the io.Writer interface.
func (w *CompareWriter) Write(p []byte) (int, error) {
	return w.b.Write(p)
}

// Clear the captured output.
func (w *CompareWriter) Clear() {
	w.b.Reset()
}

// Compare captured output with the expected string.
func (w *CompareWriter) Compare(s string) bool {
	return w.b.String() == s
}

// Lines returns the captured output split into lines. A trailing newline does
// not produce an empty final line.
func (w *CompareWriter) Lines() []string {
	s := strings.TrimSuffix(w.b.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// String implements the fmt.Stringer interface.
func (w *CompareWriter) String() string {
	return w.b.String()
}
