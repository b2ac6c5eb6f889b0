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
package logger

// Permission is consulted before a log entry is made. Components with a
// logging preference implement it so that calls to Log() and Logf() can be
// left in place when logging is turned off.
type Permission interface {
	AllowLogging() bool
}

type allow struct{}

func (allow) AllowLogging() bool {
	return true
}

// Allow is the permission for entries that should always be made.
var Allow Permission = allow{}

// PermissionFunc adapts an ordinary function to the Permission interface.
type PermissionFunc func() bool

// AllowLogging implements the Permission interface.
func (f PermissionFunc) AllowLogging() bool {
	return f()
}
