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

package modalflag_test

import (
	"os"
	"testing"

	"github.com/jetsetilly/gstexcache/modalflag"
	"github.com/jetsetilly/gstexcache/test"
)

func TestNoModesNoFlags(t *testing.T) {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs([]string{})

	p, err := md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseContinue)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, md.Mode(), "")
	test.ExpectEquality(t, md.Path(), "")
}

func TestNoModes(t *testing.T) {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs([]string{"-test", "1", "2"})
	testFlag := md.AddBool("test", false, "test flag")
	test.ExpectFailure(t, *testFlag)

	p, err := md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseContinue)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, md.Mode(), "")
	test.ExpectEquality(t, md.Path(), "")
	test.ExpectSuccess(t, *testFlag)
	test.ExpectEquality(t, len(md.RemainingArgs()), 2)
}

func TestModes(t *testing.T) {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs([]string{"performance", "-duration", "5s"})
	md.AddSubModes("run", "performance", "dump")

	p, err := md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseContinue)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, md.Mode(), "PERFORMANCE")

	md.NewMode()
	duration := md.AddString("duration", "1s", "run time")
	p, err = md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseContinue)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, *duration, "5s")
	test.ExpectEquality(t, md.Path(), "PERFORMANCE")
}

func TestDefaultMode(t *testing.T) {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs([]string{"frames.txt"})
	md.AddSubModes("run", "performance", "dump")

	p, err := md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseContinue)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, md.Mode(), "RUN")
	test.ExpectEquality(t, md.GetArg(0), "frames.txt")
}

func TestChoice(t *testing.T) {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs([]string{"-device", "OpenGL"})
	device := md.AddChoice("device", "soft", []string{"soft", "opengl"}, "graphics device")
	test.ExpectEquality(t, *device, "soft")

	p, err := md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseContinue)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, *device, "opengl")

	tw := &test.CompareWriter{}
	md = modalflag.Modes{Output: tw}
	md.NewArgs([]string{"-device", "vulkan"})
	device = md.AddChoice("device", "soft", []string{"soft", "opengl"}, "graphics device")

	p, err = md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseError)
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, *device, "soft")
}

func TestNoHelpAvailable(t *testing.T) {
	tw := &test.CompareWriter{}

	md := modalflag.Modes{Output: tw}
	md.NewArgs([]string{"-help"})

	p, _ := md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseHelp)
	test.ExpectSuccess(t, tw.Compare("No help available\n"))
}

func TestHelpFlags(t *testing.T) {
	tw := &test.CompareWriter{}

	md := modalflag.Modes{Output: tw}
	md.NewArgs([]string{"-help"})
	md.AddBool("test", true, "test flag")

	p, _ := md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseHelp)

	expectedHelp := "Usage:\n" +
		"  -test\n" +
		"    	test flag (default true)\n"

	test.ExpectSuccess(t, tw.Compare(expectedHelp), tw.String())
}

func TestHelpModes(t *testing.T) {
	tw := &test.CompareWriter{}

	md := modalflag.Modes{Output: tw}
	md.NewArgs([]string{"-help"})
	md.AddSubModes("run", "performance", "dump")

	p, _ := md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseHelp)

	expectedHelp := "Usage:\n" +
		"  available sub-modes: RUN, PERFORMANCE, DUMP\n" +
		"    default: RUN\n"

	test.ExpectSuccess(t, tw.Compare(expectedHelp), tw.String())
}

func TestHelpFlagsAndModes(t *testing.T) {
	tw := &test.CompareWriter{}

	md := modalflag.Modes{Output: tw}
	md.NewArgs([]string{"-help"})
	md.AddBool("test", true, "test flag")
	md.AddSubModes("run", "performance", "dump")

	p, _ := md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseHelp)

	expectedHelp := "Usage:\n" +
		"  -test\n" +
		"    	test flag (default true)\n" +
		"\n" +
		"  available sub-modes: RUN, PERFORMANCE, DUMP\n" +
		"    default: RUN\n"

	test.ExpectSuccess(t, tw.Compare(expectedHelp), tw.String())
}

func TestFlagsBeforeMode(t *testing.T) {
	md := modalflag.Modes{Output: os.Stdout}
	md.NewArgs([]string{"-log", "run", "-frames", "10", "title"})
	log := md.AddBool("log", false, "echo log")
	md.AddSubModes("run", "dump")

	p, err := md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseContinue)
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, *log)
	test.ExpectEquality(t, md.Mode(), "RUN")

	md.NewMode()
	frames := md.AddInt("frames", 600, "number of frames")
	p, err = md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseContinue)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, *frames, 10)
	test.DemandEquality(t, len(md.RemainingArgs()), 1)
	test.ExpectEquality(t, md.GetArg(0), "title")
	test.ExpectEquality(t, md.GetArg(1), "")
}

func TestHelpInMode(t *testing.T) {
	tw := &test.CompareWriter{}

	md := modalflag.Modes{Output: tw}
	md.NewArgs([]string{"policy", "-help"})
	md.AddSubModes("run", "policy")

	p, _ := md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseContinue)

	md.NewMode()
	p, _ = md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseHelp)
	test.ExpectSuccess(t, tw.Compare("No help available for POLICY mode\n"), tw.String())

	tw.Clear()
	md.NewArgs([]string{"-help"})
	md.AddBool("summary", false, "print summary")
	md.AdditionalHelp("the graph is written in dot format")

	p, _ = md.Parse()
	test.ExpectEquality(t, p, modalflag.ParseHelp)
	lines := tw.Lines()
	test.DemandEquality(t, len(lines), 5)
	test.ExpectEquality(t, lines[0], "Usage of POLICY mode:")
	test.ExpectEquality(t, lines[4], "the graph is written in dot format")
}
