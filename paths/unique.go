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

package paths

import (
	"strings"
	"time"
)

// UniqueFilename returns a filename made from prepend, the title and the
// current time. Used to name cache dumps. The existence of the file is not
// checked. For example:
//
//	dump_SLUS12345_20261017_142907
//
// The title part is omitted if title is empty.
func UniqueFilename(prepend string, title string) string {
	parts := []string{prepend}
	if t := strings.TrimSpace(title); t != "" {
		parts = append(parts, t)
	}
	parts = append(parts, time.Now().Format("20060102_150405"))
	return strings.Join(parts, "_")
}
