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

package opengl

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v3.2-core/gl"
	"github.com/jetsetilly/gstexcache/logger"
	"github.com/veandco/go-sdl2/sdl"
)

// Context is an OpenGL context attached to a hidden window.
type Context struct {
	window  *sdl.Window
	context sdl.GLContext
}

// NewContext is the preferred method of initialisation for the Context type.
func NewContext() (*Context, error) {
	// the SDL package calls LockOSThread() but we call it here too. it can't
	// hurt and we never unlock it in any case
	runtime.LockOSThread()

	err := sdl.Init(sdl.INIT_VIDEO)
	if err != nil {
		return nil, fmt.Errorf("sdl: %w", err)
	}

	attrs := []struct {
		attr sdl.GLattr
		val  int
	}{
		{sdl.GL_CONTEXT_MAJOR_VERSION, 3},
		{sdl.GL_CONTEXT_MINOR_VERSION, 2},
		{sdl.GL_CONTEXT_FLAGS, sdl.GL_CONTEXT_FORWARD_COMPATIBLE_FLAG},
		{sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE},
	}
	for _, a := range attrs {
		err = sdl.GLSetAttribute(a.attr, a.val)
		if err != nil {
			return nil, fmt.Errorf("sdl: %w", err)
		}
	}

	ctx := &Context{}

	ctx.window, err = sdl.CreateWindow("gstexcache",
		int32(sdl.WINDOWPOS_UNDEFINED), int32(sdl.WINDOWPOS_UNDEFINED),
		64, 64,
		uint32(sdl.WINDOW_HIDDEN|sdl.WINDOW_OPENGL))
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("sdl: %w", err)
	}

	ctx.context, err = ctx.window.GLCreateContext()
	if err != nil {
		ctx.window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("sdl: %w", err)
	}

	err = gl.Init()
	if err != nil {
		ctx.Destroy()
		return nil, fmt.Errorf("opengl: %w", err)
	}

	var version sdl.Version
	sdl.VERSION(&version)
	logger.Logf(logger.Allow, "sdl", "version (%d.%d.%d)", version.Major, version.Minor, version.Patch)
	logger.Logf(logger.Allow, "opengl", "vendor: %s", gl.GoStr(gl.GetString(gl.VENDOR)))
	logger.Logf(logger.Allow, "opengl", "renderer: %s", gl.GoStr(gl.GetString(gl.RENDERER)))
	logger.Logf(logger.Allow, "opengl", "driver: %s", gl.GoStr(gl.GetString(gl.VERSION)))

	return ctx, nil
}

// Destroy the context and the window.
func (ctx *Context) Destroy() {
	sdl.GLDeleteContext(ctx.context)
	ctx.window.Destroy()
	sdl.Quit()
}
