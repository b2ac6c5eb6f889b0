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

// Package digest computes fingerprints of the frames produced by a workload.
// Two runs of a repeatable workload produce the same fingerprint, which makes
// a fingerprint a quick way of checking that changes to the cache have not
// changed what is drawn.
package digest

// Digest implementations compute a fingerprint of some data.
type Digest interface {
	Hash() string
	ResetDigest()
}
