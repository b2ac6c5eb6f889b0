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
// Package curated creates errors that remember the pattern they were created
// with. Curated errors implement the error interface.
//
// Errors are created with Errorf(), which takes the same arguments as
// fmt.Errorf(). The pattern then identifies the error. Packages export the
// patterns they use as constants so that callers can test for them:
//
//	const AllocationFailed = "texcache: allocation failed: %v"
//
//	t, err := c.LookupTarget(...)
//	if curated.Has(err, texcache.AllocationFailed) {
//		// skip the draw
//	}
//
// Is() tests the outermost pattern only. Has() tests every curated error in
// the chain. In the following, Is(err, texcache.AllocationFailed) is false
// but Has(err, texcache.AllocationFailed) is true:
//
//	err = curated.Errorf("workload: %v", err)
//
// IsAny() is true for any curated error. Errors that are not curated can be
// treated as unexpected.
//
// Error() removes adjacent duplicate parts from the message, parts being
// separated by ": ". Wrapping an error with the same prefix at more than one
// level therefore does not repeat the prefix:
//
//	curated.Errorf("performance: %v", curated.Errorf("performance: unknown profile (%s)", "gpu"))
//
// gives the message
//
//	performance: unknown profile (gpu)
//
// Curated errors unwrap to the first error in their list of values so the
// errors.Is() and errors.As() functions from the standard library can see
// through them.
package curated
