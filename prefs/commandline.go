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
package prefs

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// preference values given on the command line. the top of the stack is
// consulted when a Group applies the command line. values are removed once
// used so that anything left over can be reported as unused.
var commandLine struct {
	crit  sync.Mutex
	stack []map[string]string
}

// separators of the command line preferences string.
const (
	clEntrySep = ";"
	clKeySep   = "::"
)

// PushCommandLineStack parses a preferences string and makes it the top of the
// stack. The string is a list of key/value pairs separated by semi-colons.
// Malformed pairs are ignored. For example:
//
//	texcache.hashCacheLimit::512; texcache.logging::true
func PushCommandLineStack(prefs string) {
	cl := make(map[string]string)
	for _, p := range strings.Split(prefs, clEntrySep) {
		k, v, ok := strings.Cut(p, clKeySep)
		if !ok || strings.Contains(v, clKeySep) {
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		cl[k] = strings.TrimSpace(v)
	}

	commandLine.crit.Lock()
	defer commandLine.crit.Unlock()
	commandLine.stack = append(commandLine.stack, cl)
}

// PopCommandLineStack removes the top of the stack. Returns the preferences
// that were never used, sorted by key and in the format accepted by
// PushCommandLineStack().
func PopCommandLineStack() string {
	commandLine.crit.Lock()
	defer commandLine.crit.Unlock()

	n := len(commandLine.stack)
	if n == 0 {
		return ""
	}
	cl := commandLine.stack[n-1]
	commandLine.stack = commandLine.stack[:n-1]

	keys := make([]string, 0, len(cl))
	for k := range cl {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	unused := make([]string, len(keys))
	for i, k := range keys {
		unused[i] = fmt.Sprintf("%s%s%s", k, clKeySep, cl[k])
	}

	return strings.Join(unused, clEntrySep+" ")
}

// SizeCommandLineStack returns the number of entries on the stack.
func SizeCommandLineStack() int {
	commandLine.crit.Lock()
	defer commandLine.crit.Unlock()
	return len(commandLine.stack)
}

// GetCommandLinePref returns the value for key from the top of the stack. The
// value is removed from the stack entry.
func GetCommandLinePref(key string) (bool, Value) {
	commandLine.crit.Lock()
	defer commandLine.crit.Unlock()

	n := len(commandLine.stack)
	if n == 0 {
		return false, nil
	}

	cl := commandLine.stack[n-1]
	v, ok := cl[key]
	if !ok {
		return false, nil
	}
	delete(cl, key)

	return true, v
}
