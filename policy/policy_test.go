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

package policy_test

import (
	"strings"
	"testing"

	"github.com/jetsetilly/gstexcache/curated"
	"github.com/jetsetilly/gstexcache/policy"
	"github.com/jetsetilly/gstexcache/test"
)

const table = `
# comment
SLUS-20312,PreloadFrame,TextureInsideRT
sles-50330, DisablePartialInvalidation
SCUS-97113
`

func TestLoadAndSelect(t *testing.T) {
	tab := policy.NewTable()
	test.ExpectSuccess(t, tab.Load(strings.NewReader(table)))
	test.ExpectEquality(t, tab.NumEntries(), 3)

	p, ok := tab.Select("slus-20312")
	test.ExpectSuccess(t, ok)
	test.ExpectSuccess(t, p.PreloadFrame)
	test.ExpectSuccess(t, p.TextureInsideRT)
	test.ExpectFailure(t, p.DisablePartialInvalidation)

	p, ok = tab.Select("SLES-50330")
	test.ExpectSuccess(t, ok)
	test.ExpectSuccess(t, p.DisablePartialInvalidation)

	p, ok = tab.Select("SCUS-97113")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, p, policy.Policy{})

	p, ok = tab.Select("unknown")
	test.ExpectFailure(t, ok)
	test.ExpectEquality(t, p, policy.Policy{})
}

func TestLoadErrors(t *testing.T) {
	tab := policy.NewTable()
	err := tab.Load(strings.NewReader("SLUS-20312,Wibble\n"))
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Has(err, policy.UnknownFlag))

	tab = policy.NewTable()
	err = tab.Load(strings.NewReader("SLUS-20312\nslus-20312,PreloadFrame\n"))
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Has(err, policy.DuplicateEntry))
}

func TestList(t *testing.T) {
	tab := policy.NewTable()
	test.ExpectSuccess(t, tab.Load(strings.NewReader(table)))

	w := &test.CompareWriter{}
	test.ExpectSuccess(t, tab.List(w))
	test.ExpectSuccess(t, w.Compare("SCUS-97113\nSLES-50330,DisablePartialInvalidation\nSLUS-20312,PreloadFrame,TextureInsideRT\n"))

	// the listing can be loaded back into an empty table
	other := policy.NewTable()
	test.ExpectSuccess(t, other.Load(strings.NewReader(w.String())))
	test.ExpectEquality(t, other.NumEntries(), 3)
}
