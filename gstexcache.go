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

package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/jetsetilly/gstexcache/digest"
	"github.com/jetsetilly/gstexcache/gpu"
	"github.com/jetsetilly/gstexcache/gpu/opengl"
	"github.com/jetsetilly/gstexcache/gpu/soft"
	"github.com/jetsetilly/gstexcache/logger"
	"github.com/jetsetilly/gstexcache/modalflag"
	"github.com/jetsetilly/gstexcache/paths"
	"github.com/jetsetilly/gstexcache/performance"
	"github.com/jetsetilly/gstexcache/performance/limiter"
	"github.com/jetsetilly/gstexcache/policy"
	"github.com/jetsetilly/gstexcache/prefs"
	"github.com/jetsetilly/gstexcache/statsview"
	"github.com/jetsetilly/gstexcache/version"
	"github.com/jetsetilly/gstexcache/workload"
)

type stateReq = string

const (
	// main thread should end as soon as possible.
	//
	// takes optional int argument, indicating the status code.
	reqQuit stateReq = "QUIT"

	// reset interrupt signal handling.
	//
	// takes no arguments.
	reqNoIntSig stateReq = "NOINTSIG"
)

type stateRequest struct {
	req  stateReq
	args interface{}
}

// DeviceCreator facilitates the creation, servicing and destruction of
// graphics devices that need to be run in the main thread.
//
// Note that there is no Create() function because we need the freedom to
// create the device how we want. Instead the creator is a channel which
// accepts a function that returns an instance of DeviceCreator.
type DeviceCreator interface {
	// cleanup resources used by the device
	Destroy(io.Writer)

	// Service() should not pause or loop longer than necessary (if at all). It
	// MUST ONLY by called as part of a larger loop from the main thread.
	Service()

	// the device that has been created
	Device() gpu.Device
}

// communication between the main() function and the launch() function. this is
// required because OpenGL contexts created by SDL are bound to the thread that
// created them and SDL wants that to be the main thread.
type mainSync struct {
	state   chan stateRequest
	creator chan func() (DeviceCreator, error)

	// the result of creator will be returned on either of these two channels.
	creation      chan DeviceCreator
	creationError chan error

	// functions that must run on the main thread because they use the
	// created device
	run chan func()
}

// #mainthread
func main() {
	sync := &mainSync{
		state:         make(chan stateRequest),
		creator:       make(chan func() (DeviceCreator, error)),
		creation:      make(chan DeviceCreator),
		creationError: make(chan error),
		run:           make(chan func()),
	}

	// the value to use with os.Exit(). can be changed with reqQuit
	// stateRequest
	exitVal := 0

	// #ctrlc default handler. can be turned off with reqNoIntSig request
	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)

	// launch program as a go routine. further communication is  through
	// the mainSync instance
	go launch(sync)

	// loop until done is true. every iteration of the loop we listen for:
	//
	//  1. interrupt signals
	//  2. new device creation functions
	//  3. functions to run on the main thread
	//  4. state requests
	//  5. anything in the Service() function of the most recently created device
	//
	done := false
	var dev DeviceCreator
	for !done {
		select {
		case <-intChan:
			fmt.Println("\r")
			done = true

		case creator := <-sync.creator:
			var err error

			// destroy existing device
			if dev != nil {
				dev.Destroy(os.Stderr)
			}

			dev, err = creator()
			if err != nil {
				sync.creationError <- err
				dev = nil
			} else {
				sync.creation <- dev
			}

		case f := <-sync.run:
			f()

		case state := <-sync.state:
			switch state.req {
			case reqQuit:
				done = true
				if dev != nil {
					dev.Destroy(os.Stderr)
				}

				if state.args != nil {
					if v, ok := state.args.(int); ok {
						exitVal = v
					} else {
						panic(fmt.Sprintf("cannot convert %s arguments into int", reqQuit))
					}
				}

			case reqNoIntSig:
				signal.Reset(os.Interrupt)
				if state.args != nil {
					panic(fmt.Sprintf("%s does not accept any arguments", reqNoIntSig))
				}
			}

		default:
			if dev != nil {
				dev.Service()
			}
		}
	}

	fmt.Print("\r")
	os.Exit(exitVal)
}

// launch is called from main() as a goroutine. uses mainSync instance to
// indicate device creation and to quit.
func launch(sync *mainSync) {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.NewMode()
	md.AddSubModes("RUN", "PERFORMANCE", "DUMP", "POLICY", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		sync.state <- stateRequest{req: reqQuit}
		return

	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		sync.state <- stateRequest{req: reqQuit, args: 10}
		return
	}

	switch md.Mode() {
	case "RUN":
		err = run(md, sync)

	case "PERFORMANCE":
		err = perform(md, sync)

	case "DUMP":
		err = dump(md, sync)

	case "POLICY":
		err = listPolicy(md)

	case "VERSION":
		err = showVersion(md)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		sync.state <- stateRequest{req: reqQuit, args: 20}
		return
	}

	sync.state <- stateRequest{req: reqQuit}
}

// softCreator wraps the software device. it has nothing to service.
type softCreator struct {
	dev *soft.Device
}

func (c *softCreator) Destroy(_ io.Writer) {
}

func (c *softCreator) Service() {
}

func (c *softCreator) Device() gpu.Device {
	return c.dev
}

// glCreator owns the OpenGL context and the device using it.
type glCreator struct {
	ctx *opengl.Context
	dev *opengl.Device
}

func (c *glCreator) Destroy(output io.Writer) {
	c.dev.Destroy()
	c.ctx.Destroy()
	output.Write([]byte("opengl context destroyed\n"))
}

func (c *glCreator) Service() {
}

func (c *glCreator) Device() gpu.Device {
	return c.dev
}

func newGLCreator() (DeviceCreator, error) {
	ctx, err := opengl.NewContext()
	if err != nil {
		return nil, err
	}
	return &glCreator{ctx: ctx, dev: opengl.NewDevice()}, nil
}

// deviceSession is the created device and the means of running functions with
// it. functions using an OpenGL device are run on the main thread.
type deviceSession struct {
	dev    gpu.Device
	onMain bool
	sync   *mainSync
}

func (s deviceSession) do(f func() error) error {
	if !s.onMain {
		return f()
	}
	done := make(chan error)
	s.sync.run <- func() {
		done <- f()
	}
	return <-done
}

// create the named device. the opengl device is created on the main thread.
func createDevice(name string, sync *mainSync) (deviceSession, error) {
	switch name {
	case "soft":
		return deviceSession{dev: soft.NewDevice()}, nil

	case "opengl":
		sync.creator <- newGLCreator

		// wait for creator result
		select {
		case c := <-sync.creation:
			return deviceSession{dev: c.Device(), onMain: true, sync: sync}, nil
		case err := <-sync.creationError:
			return deviceSession{}, err
		}
	}

	return deviceSession{}, fmt.Errorf("unknown device (%s)", name)
}

var deviceChoices = []string{"soft", "opengl"}

// name of the policy table in the resource directory
const policyFile = "policy"

// load policy table and select the policy for the title. an empty filename
// means the policy table in the resource directory, if there is one.
func selectPolicy(filename string, title string) (policy.Policy, error) {
	if filename == "" {
		pth, err := paths.ResourcePath("", policyFile)
		if err != nil {
			return policy.Policy{}, err
		}
		if _, err := os.Stat(pth); err != nil {
			return policy.Policy{}, nil
		}
		filename = pth
	}

	f, err := os.Open(filename)
	if err != nil {
		return policy.Policy{}, err
	}
	defer f.Close()

	tab := policy.NewTable()
	if err := tab.Load(f); err != nil {
		return policy.Policy{}, err
	}

	pol, ok := tab.Select(title)
	if !ok && title != "" {
		logger.Logf(logger.Allow, "policy", "no entry for %s. using default policy", strings.ToUpper(title))
	}

	return pol, nil
}

// newRenderer prepares a renderer using the session's device, the preferences
// on the command line and the selected policy.
func newRenderer(s deviceSession, scale float64, prefsFile string, pol policy.Policy) (*workload.Renderer, error) {
	r, err := workload.NewRenderer(s.dev, float32(scale))
	if err != nil {
		return nil, err
	}

	if prefsFile != "" {
		f, err := os.Open(prefsFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		err = r.Cache.Prefs.Group().Load(f)
		if err != nil {
			return nil, err
		}
	}

	r.Cache.SetPolicy(pol)
	logger.Logf(logger.Allow, "gstexcache", "policy: %s", pol)

	return r, nil
}

func run(md *modalflag.Modes, sync *mainSync) error {
	md.NewMode()

	device := md.AddChoice("device", "soft", deviceChoices, "graphics device")
	frames := md.AddInt("frames", 600, "number of frames to run. negative values run forever")
	scale := md.AddFloat64("scale", 1.0, "resolution multiplier of render targets")
	fpsCap := md.AddInt("fpscap", 0, "frame rate cap. zero to run uncapped")
	prefsFile := md.AddString("prefsfile", "", "load texture cache preferences from file")
	prefsStr := md.AddString("prefs", "", "texture cache preferences (eg. texcache.logging::true)")
	policyTable := md.AddString("policy", "", "policy table")
	title := md.AddString("title", "", "title fingerprint used to select a policy")
	echo := md.AddBool("log", false, "echo log to stdout")
	fingerprint := md.AddBool("digest", false, "print a digest of the displayed frames")
	stats := &[]bool{false}[0]
	if statsview.Available() {
		stats = md.AddBool("statsview", false, fmt.Sprintf("run stats server (%s)", statsview.DefaultAddress))
	}

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) > 0 {
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	// prefs stack is pushed before the renderer is created. the cache
	// applies the command line when it is initialised
	prefs.PushCommandLineStack(*prefsStr)
	defer func() {
		if unused := prefs.PopCommandLineStack(); unused != "" {
			logger.Logf(logger.Allow, "gstexcache", "unused preferences: %s", unused)
		}
	}()

	if *echo {
		logger.SetEcho(md.Output, false)
		defer logger.SetEcho(nil, false)
	}

	if *stats {
		statsview.Launch(md.Output, "")
	}

	pol, err := selectPolicy(*policyTable, *title)
	if err != nil {
		return err
	}

	s, err := createDevice(*device, sync)
	if err != nil {
		return err
	}

	var lim *limiter.FpsLimiter
	if *fpsCap > 0 {
		lim, err = limiter.NewFPSLimiter(*fpsCap)
		if err != nil {
			return err
		}
	}

	return s.do(func() error {
		r, err := newRenderer(s, *scale, *prefsFile, pol)
		if err != nil {
			return err
		}
		defer r.Destroy()

		if *echo {
			if err := r.Cache.Prefs.Logging.Set(true); err != nil {
				return err
			}
		}

		// frames are only repeatable with a zero seed
		if *fingerprint {
			r.Digest = digest.NewFrame()
		}

		scene := workload.NewScene(r, *fingerprint)
		err = scene.RunFrames(*frames, func() (bool, error) {
			if lim != nil {
				lim.Wait()
			}
			return true, nil
		})
		if err != nil {
			return err
		}

		md.Output.Write([]byte(fmt.Sprintf("%d frames: %d draws, %d transfers, %d downloads, %d moves (%d in local memory), %d hand offs\n",
			r.Stats.Frames, r.Stats.Draws, r.Stats.Transfers, r.Stats.Downloads, r.Stats.Moves, r.Stats.MemoryMoves, r.Stats.HandOffs)))
		md.Output.Write([]byte(fmt.Sprintf("%s\n", r.Cache.Snapshot())))
		md.Output.Write([]byte(fmt.Sprintf("source memory: %d bytes, target memory: %d bytes, hash cache: %d bytes\n",
			r.Cache.SourceMemoryUsage(), r.Cache.TargetMemoryUsage(), r.Cache.HashCacheMemoryUsage())))

		if lim != nil && lim.Missed() > 0 {
			md.Output.Write([]byte(fmt.Sprintf("%d frames missed at %dfps\n", lim.Missed(), lim.Limit())))
		}

		if r.Digest != nil {
			md.Output.Write([]byte(fmt.Sprintf("digest: %s\n", r.Digest.Hash())))
		}

		return nil
	})
}

func perform(md *modalflag.Modes, sync *mainSync) error {
	md.NewMode()

	device := md.AddChoice("device", "soft", deviceChoices, "graphics device")
	scale := md.AddFloat64("scale", 1.0, "resolution multiplier of render targets")
	uncapped := md.AddBool("uncapped", true, "run uncapped. otherwise capped at 60fps")
	duration := md.AddString("duration", "5s", "run duration (note: there is a 2s overhead)")
	profile := md.AddString("profile", "none", "run profilers: cpu, mem, trace, all (comma separated)")
	prefsStr := md.AddString("prefs", "", "texture cache preferences (eg. texcache.logging::true)")
	stats := &[]bool{false}[0]
	if statsview.Available() {
		stats = md.AddBool("statsview", false, fmt.Sprintf("run stats server (%s)", statsview.DefaultAddress))
	}

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) > 0 {
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	prof, err := performance.ParseProfile(*profile)
	if err != nil {
		return err
	}

	prefs.PushCommandLineStack(*prefsStr)
	defer prefs.PopCommandLineStack()

	if *stats {
		statsview.Launch(md.Output, "")
	}

	s, err := createDevice(*device, sync)
	if err != nil {
		return err
	}

	return s.do(func() error {
		return performance.Check(md.Output, prof, s.dev, float32(*scale), *uncapped, *duration)
	})
}

func dump(md *modalflag.Modes, sync *mainSync) error {
	md.NewMode()

	frames := md.AddInt("frames", 60, "number of frames to run before the dump")
	summary := md.AddBool("summary", false, "print a summary of the cache instead of a graph")
	md.AdditionalHelp("the graph is written in dot format to the named file or to a new file in the\ncurrent directory")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	output := md.Output
	if !*summary {
		var fn string
		switch len(md.RemainingArgs()) {
		case 0:
			fn = fmt.Sprintf("%s.dot", paths.UniqueFilename("dump", ""))
		case 1:
			fn = md.GetArg(0)
		default:
			return fmt.Errorf("too many arguments for %s mode", md)
		}

		f, err := os.Create(fn)
		if err != nil {
			return err
		}
		defer f.Close()
		output = f

		md.Output.Write([]byte(fmt.Sprintf("writing cache graph to %s\n", fn)))
	}

	s, err := createDevice("soft", sync)
	if err != nil {
		return err
	}

	r, err := newRenderer(s, 1, "", policy.Policy{})
	if err != nil {
		return err
	}
	defer r.Destroy()

	err = workload.NewScene(r, true).RunFrames(*frames, nil)
	if err != nil {
		return err
	}

	if *summary {
		output.Write([]byte(fmt.Sprintf("%s\n", r.Cache.Snapshot())))
		return nil
	}

	r.Cache.Dump(output)

	return nil
}

func listPolicy(md *modalflag.Modes) error {
	md.NewMode()
	md.AdditionalHelp("each line of a policy table is a title fingerprint followed by a comma separated\nlist of flags. lines beginning with # are ignored")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("policy table required for %s mode", md)
	case 1:
		f, err := os.Open(md.GetArg(0))
		if err != nil {
			return err
		}
		defer f.Close()

		tab := policy.NewTable()
		if err := tab.Load(f); err != nil {
			return err
		}
		return tab.List(md.Output)
	}

	return fmt.Errorf("too many arguments for %s mode", md)
}

func showVersion(md *modalflag.Modes) error {
	md.NewMode()

	revision := md.AddBool("revision", false, "display revision information from version control system (if available)")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *revision {
		fmt.Fprintln(md.Output, version.String())
	} else {
		v, _, _ := version.Version()
		fmt.Fprintln(md.Output, v)
	}

	return nil
}
