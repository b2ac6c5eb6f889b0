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
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// KeySep separates the key and the value in a serialised preference.
const KeySep = " :: "

// Group is a named collection of preferences. Keys in the group are prefixed
// with the group name and a full stop. For example, the key "limit" in the
// group "texcache" is serialised as "texcache.limit".
type Group struct {
	name    string
	entries map[string]Pref
}

// NewGroup is the preferred method of initialisation for the Group type.
func NewGroup(name string) *Group {
	return &Group{
		name:    name,
		entries: make(map[string]Pref),
	}
}

func (grp *Group) key(key string) string {
	if grp.name == "" {
		return key
	}
	return fmt.Sprintf("%s.%s", grp.name, key)
}

// Add preference to the group.
func (grp *Group) Add(key string, p Pref) error {
	k := grp.key(key)
	if _, ok := grp.entries[k]; ok {
		return fmt.Errorf("prefs: key already added to group (%s)", k)
	}
	grp.entries[k] = p
	return nil
}

// Keys returns the sorted list of keys in the group.
func (grp *Group) Keys() []string {
	keys := make([]string, 0, len(grp.entries))
	for k := range grp.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup returns the preference for the fully qualified key.
func (grp *Group) Lookup(key string) (Pref, bool) {
	p, ok := grp.entries[key]
	return p, ok
}

// Reset all preferences in the group.
func (grp *Group) Reset() error {
	for _, k := range grp.Keys() {
		if err := grp.entries[k].Reset(); err != nil {
			return fmt.Errorf("prefs: %s: %w", k, err)
		}
	}
	return nil
}

// Save writes every preference in the group to io.Writer, one per line and
// sorted by key.
func (grp *Group) Save(w io.Writer) error {
	for _, k := range grp.Keys() {
		if _, err := fmt.Fprintf(w, "%s%s%s\n", k, KeySep, grp.entries[k].String()); err != nil {
			return fmt.Errorf("prefs: %w", err)
		}
	}
	return nil
}

// Load reads preferences from io.Reader. Keys that don't belong to the group
// are ignored, as are blank lines and lines beginning with a hash.
func (grp *Group) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		l := strings.TrimSpace(scanner.Text())
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}

		kv := strings.SplitN(l, strings.TrimSpace(KeySep), 2)
		if len(kv) != 2 {
			continue
		}

		k := strings.TrimSpace(kv[0])
		if p, ok := grp.entries[k]; ok {
			if err := p.Set(strings.TrimSpace(kv[1])); err != nil {
				return fmt.Errorf("prefs: %s: %w", k, err)
			}
		}
	}
	return scanner.Err()
}

// ApplyCommandLine sets preferences from the top of the command line stack.
// Both the fully qualified key and the unqualified key are recognised.
func (grp *Group) ApplyCommandLine() error {
	for _, k := range grp.Keys() {
		ok, v := GetCommandLinePref(k)
		if !ok {
			ok, v = GetCommandLinePref(strings.TrimPrefix(k, grp.name+"."))
		}
		if ok {
			if err := grp.entries[k].Set(v); err != nil {
				return fmt.Errorf("prefs: %s: %w", k, err)
			}
		}
	}
	return nil
}
