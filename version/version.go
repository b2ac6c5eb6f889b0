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
// Package version reports the name and version of the program. Release builds
// set the version number with the linker:
//
//	go build -ldflags "-X github.com/jetsetilly/gstexcache/version.number=v0.1.0"
//
// Other builds report "unreleased", or "local" when the toolchain recorded no
// version control information (as with "go run ."). The revision comes from
// the version control information when there is some.
package version

import (
	"fmt"
	"runtime/debug"
)

// ApplicationName is the name to use when referring to the program.
const ApplicationName = "gstexcache"

// set by the linker for release builds
var number string

var version string
var revision string

// Version returns the version string, the revision string and whether the
// build is a numbered release.
func Version() (string, string, bool) {
	return version, revision, number != ""
}

// String returns the application name and version in a form suitable for a
// command line banner. The revision is included for builds that are not
// numbered releases.
func String() string {
	if number != "" {
		return fmt.Sprintf("%s %s", ApplicationName, version)
	}
	return fmt.Sprintf("%s %s (%s)", ApplicationName, version, revision)
}

func init() {
	vcs, rev, modified := buildInfo()

	switch {
	case rev == "":
		revision = "no revision information"
	case modified:
		revision = rev + "+dirty"
	default:
		revision = rev
	}

	switch {
	case number != "":
		version = number
	case vcs:
		version = "unreleased"
	default:
		version = "local"
	}
}

// buildInfo returns the version control information recorded by the
// toolchain.
func buildInfo() (vcs bool, rev string, modified bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return false, "", false
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs":
			vcs = true
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	return vcs, rev, modified
}
