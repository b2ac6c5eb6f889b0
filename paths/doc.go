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

// Package paths contains functions to prepare paths to gstexcache resources.
//
// The ResourcePath() function modifies the supplied resource string such that
// it is prepended with the appropriate config directory. For example, the
// following will return the path to the policy table:
//
//	d, _ := paths.ResourcePath("", "policy")
//
// During development the base path is ".gstexcache" in the program's current
// directory. Release builds (built with the release build constraint) use the
// user's config directory, as returned by os.UserConfigDir(), and create the
// directory if necessary.
//
// In the example above, on a modern Linux system, the path returned by a
// release build will be:
//
//	/home/user/.config/gstexcache/policy
package paths
