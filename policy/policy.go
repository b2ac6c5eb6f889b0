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

package policy

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jetsetilly/gstexcache/curated"
)

// Sentinal error patterns.
const (
	UnknownFlag    = "policy: unknown flag (%s) for %s"
	DuplicateEntry = "policy: duplicate entry for %s"
)

// arbitrary maximum number of entries.
const maxEntries = 1000

const fieldSep = ","

// Policy is the set of behaviour overrides for a title. The zero value is the
// default behaviour.
type Policy struct {
	// sources are always removed when the memory they cover is written,
	// instead of clearing the valid bit of the written page
	DisablePartialInvalidation bool

	// frame buffers are always loaded from local memory on creation
	PreloadFrame bool

	// textures found inside a render target at a page aligned offset are
	// sampled from the render target
	TextureInsideRT bool

	// depth buffers are never used as textures
	DisableDepthSources bool
}

var flagNames = []string{
	"DisablePartialInvalidation",
	"PreloadFrame",
	"TextureInsideRT",
	"DisableDepthSources",
}

func (p *Policy) flag(name string) *bool {
	switch name {
	case "DisablePartialInvalidation":
		return &p.DisablePartialInvalidation
	case "PreloadFrame":
		return &p.PreloadFrame
	case "TextureInsideRT":
		return &p.TextureInsideRT
	case "DisableDepthSources":
		return &p.DisableDepthSources
	}
	return nil
}

func (p Policy) String() string {
	var s []string
	for _, n := range flagNames {
		if *p.flag(n) {
			s = append(s, n)
		}
	}
	if len(s) == 0 {
		return "default"
	}
	return strings.Join(s, fieldSep)
}

// Table maps title fingerprints to policies.
type Table struct {
	entries map[string]Policy
}

// NewTable is the preferred method of initialisation for the Table type.
func NewTable() *Table {
	return &Table{
		entries: make(map[string]Policy),
	}
}

// NumEntries returns the number of entries in the table.
func (tab *Table) NumEntries() int {
	return len(tab.entries)
}

// Add a policy for the fingerprint. Fingerprints are not case sensitive.
func (tab *Table) Add(fingerprint string, p Policy) error {
	fingerprint = strings.ToUpper(strings.TrimSpace(fingerprint))
	if _, ok := tab.entries[fingerprint]; ok {
		return curated.Errorf(DuplicateEntry, fingerprint)
	}
	if len(tab.entries) >= maxEntries {
		return curated.Errorf("policy: maximum entries exceeded (max %d)", maxEntries)
	}
	tab.entries[fingerprint] = p
	return nil
}

// Select returns the policy for the fingerprint. The default policy is
// returned if the fingerprint is not in the table.
func (tab *Table) Select(fingerprint string) (Policy, bool) {
	p, ok := tab.entries[strings.ToUpper(strings.TrimSpace(fingerprint))]
	return p, ok
}

// Load entries from io.Reader.
func (tab *Table) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for ln := 1; scanner.Scan(); ln++ {
		l := strings.TrimSpace(scanner.Text())
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}

		fields := strings.Split(l, fieldSep)

		var p Policy
		for _, f := range fields[1:] {
			f = strings.TrimSpace(f)
			if f == "" {
				continue
			}
			b := p.flag(f)
			if b == nil {
				return curated.Errorf("policy: line %d: %v", ln, curated.Errorf(UnknownFlag, f, fields[0]))
			}
			*b = true
		}

		if err := tab.Add(fields[0], p); err != nil {
			return curated.Errorf("policy: line %d: %v", ln, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return curated.Errorf("policy: %v", err)
	}

	return nil
}

// List the entries in fingerprint order.
func (tab *Table) List(output io.Writer) error {
	if len(tab.entries) == 0 {
		_, err := io.WriteString(output, "policy table is empty\n")
		return err
	}

	keys := make([]string, 0, len(tab.entries))
	for k := range tab.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		p := tab.entries[k]
		if p == (Policy{}) {
			if _, err := fmt.Fprintf(output, "%s\n", k); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(output, "%s%s%s\n", k, fieldSep, p); err != nil {
			return err
		}
	}

	return nil
}
