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

//go:build !release
// +build !release

package paths

import (
	"path/filepath"
)

const baseResourcePath = ".gstexcache"

// the non-release version of getBasePath uses a resource directory in the
// current working directory. the directory is not created
func getBasePath(subPth string) (string, error) {
	return filepath.Join(baseResourcePath, subPth), nil
}
