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
package modalflag

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

const modeSeparator = "/"

// Modes parses a command line made up of modes, each with its own flags. The
// Output field should be set before calling Parse() or help messages will not
// be seen.
type Modes struct {
	Output io.Writer

	// flags for the current mode. replaced on every call to NewMode()
	flags *flag.FlagSet

	// the arguments given to NewArgs() and the index of the first argument
	// not yet consumed by a call to Parse()
	args []string
	next int

	// sub-modes of the current mode. the first is the default
	subModes []string

	// modes selected so far. never reset
	path []string

	// printed after the list of flags and sub-modes
	additionalHelp string
}

func (md *Modes) String() string {
	return md.Path()
}

// Mode returns the most recently selected mode.
func (md *Modes) Mode() string {
	if len(md.path) == 0 {
		return ""
	}
	return md.path[len(md.path)-1]
}

// Path returns every mode selected so far, separated by a slash.
func (md *Modes) Path() string {
	return strings.Join(md.path, modeSeparator)
}

// NewArgs sets the arguments to be parsed and begins a new mode.
func (md *Modes) NewArgs(args []string) {
	md.args = args
	md.next = 0
	md.NewMode()
}

// NewMode begins a new mode. Flags and sub-modes added after this call apply
// to the arguments that were not consumed by the previous call to Parse().
func (md *Modes) NewMode() {
	md.flags = flag.NewFlagSet("", flag.ContinueOnError)
	md.flags.SetOutput(io.Discard)
	md.flags.Usage = func() {}
	md.subModes = md.subModes[:0]
	md.additionalHelp = ""
}

// AdditionalHelp sets text to be printed after the list of flags and
// sub-modes in help messages.
func (md *Modes) AdditionalHelp(help string) {
	md.additionalHelp = help
}

// ParseResult is returned from the Parse() function.
type ParseResult int

// List of valid ParseResult values.
const (
	// Continue with command line processing. If sub-modes were added then
	// Mode() should be consulted.
	ParseContinue ParseResult = iota

	// Help was requested and has been printed to Output.
	ParseHelp

	// An error has occurred and is returned as the second return value.
	ParseError
)

// Parse the arguments of the current mode. Flags are parsed first. If there
// are sub-modes then the first argument after the flags selects one of them,
// otherwise the default (first) sub-mode is selected and the argument is left
// in place.
//
// Help is printed automatically when requested. ParseHelp should be treated
// like an error that has already been reported.
func (md *Modes) Parse() (ParseResult, error) {
	err := md.flags.Parse(md.args[md.next:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			md.writeHelp()
			return ParseHelp, nil
		}

		// unrecognised flags might belong to the default sub-mode
		if len(md.subModes) == 0 {
			return ParseError, err
		}
		md.path = append(md.path, md.subModes[0])
		return ParseContinue, nil
	}

	md.next = len(md.args) - md.flags.NArg()

	if len(md.subModes) == 0 {
		return ParseContinue, nil
	}

	mode := md.subModes[0]
	arg := strings.ToUpper(md.flags.Arg(0))
	for _, m := range md.subModes {
		if m == arg {
			mode = m
			md.next++
			break
		}
	}
	md.path = append(md.path, mode)

	return ParseContinue, nil
}

// RemainingArgs returns the arguments that were not flags or a sub-mode.
func (md *Modes) RemainingArgs() []string {
	return md.args[md.next:]
}

// GetArg returns the numbered argument from RemainingArgs(). An empty string is
// returned if there is no such argument.
func (md *Modes) GetArg(i int) string {
	rem := md.RemainingArgs()
	if i < 0 || i >= len(rem) {
		return ""
	}
	return rem[i]
}

// AddSubModes to the current mode. The first sub-mode added is the default.
// Sub-modes are case insensitive.
func (md *Modes) AddSubModes(submodes ...string) {
	for _, m := range submodes {
		md.subModes = append(md.subModes, strings.ToUpper(m))
	}
}

// AddBool flag to the current mode.
func (md *Modes) AddBool(name string, value bool, usage string) *bool {
	return md.flags.Bool(name, value, usage)
}

// AddFloat64 flag to the current mode.
func (md *Modes) AddFloat64(name string, value float64, usage string) *float64 {
	return md.flags.Float64(name, value, usage)
}

// AddInt flag to the current mode.
func (md *Modes) AddInt(name string, value int, usage string) *int {
	return md.flags.Int(name, value, usage)
}

// AddString flag to the current mode.
func (md *Modes) AddString(name string, value string, usage string) *string {
	return md.flags.String(name, value, usage)
}

// AddChoice flag to the current mode. The value of the flag must be one of the
// choices. Comparisons are case insensitive and the returned value is always
// one of the strings in the choices list.
func (md *Modes) AddChoice(name string, value string, choices []string, usage string) *string {
	v := value
	usage = fmt.Sprintf("%s (%s) (default %s)", usage, strings.Join(choices, "|"), value)
	md.flags.Func(name, usage, func(s string) error {
		for _, c := range choices {
			if strings.EqualFold(s, c) {
				v = c
				return nil
			}
		}
		return fmt.Errorf("must be one of %s", strings.Join(choices, ", "))
	})
	return &v
}

// writeHelp prints the flags and sub-modes of the current mode to Output.
func (md *Modes) writeHelp() {
	if md.Output == nil {
		return
	}

	var numFlags int
	md.flags.VisitAll(func(_ *flag.Flag) {
		numFlags++
	})

	if numFlags == 0 && len(md.subModes) == 0 {
		if len(md.path) > 0 {
			fmt.Fprintf(md.Output, "No help available for %s mode\n", md.Path())
		} else {
			fmt.Fprintln(md.Output, "No help available")
		}
		return
	}

	if len(md.path) > 0 {
		fmt.Fprintf(md.Output, "Usage of %s mode:\n", md.Path())
	} else {
		fmt.Fprintln(md.Output, "Usage:")
	}

	if numFlags > 0 {
		md.flags.SetOutput(md.Output)
		md.flags.PrintDefaults()
		md.flags.SetOutput(io.Discard)
	}

	if len(md.subModes) > 0 {
		if numFlags > 0 {
			fmt.Fprintln(md.Output)
		}
		fmt.Fprintf(md.Output, "  available sub-modes: %s\n", strings.Join(md.subModes, ", "))
		fmt.Fprintf(md.Output, "    default: %s\n", md.subModes[0])
	}

	if md.additionalHelp != "" {
		fmt.Fprintf(md.Output, "\n%s\n", md.additionalHelp)
	}
}
