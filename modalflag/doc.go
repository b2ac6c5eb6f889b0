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
// Package modalflag wraps the flag package from the standard library so that a
// command line can be divided into modes, each mode with its own flags and
// arguments. The go command is a good example of the idea: "go build" and "go
// test" accept different flags.
//
// Arguments are given once with NewArgs(). Each mode then adds its flags and
// calls Parse(), which consumes the flags and, if sub-modes have been added, the
// sub-mode selector:
//
//	md := &modalflag.Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	md.AddSubModes("RUN", "PERFORMANCE", "DUMP")
//
//	p, err := md.Parse()
//	switch p {
//	case modalflag.ParseHelp:
//		return nil
//	case modalflag.ParseError:
//		return err
//	}
//
//	switch md.Mode() {
//	case "RUN":
//		md.NewMode()
//		frames := md.AddInt("frames", 600, "number of frames to run")
//		device := md.AddChoice("device", "soft", []string{"soft", "opengl"}, "graphics device")
//		...
//	}
//
// The first sub-mode is the default and is selected when the first argument
// after the flags is not the name of a sub-mode. Sub-modes are compared case
// insensitively and are always reported in upper case. Path() returns the
// chain of modes selected so far, for example "RUN" or "DUMP/GRAPH".
//
// Arguments that are neither flags nor a sub-mode are returned by
// RemainingArgs() and GetArg().
//
// A help message listing the flags and sub-modes of the current mode is
// printed to Output when the -help flag is given. AdditionalHelp() adds text to
// that message.
package modalflag
