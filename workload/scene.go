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

package workload

import (
	"image"

	"github.com/jetsetilly/gstexcache/gs/psm"
	"github.com/jetsetilly/gstexcache/gs/regs"
	"github.com/jetsetilly/gstexcache/logger"
	"github.com/jetsetilly/gstexcache/random"
	"github.com/jetsetilly/gstexcache/texcache"
)

// dimensions of the display.
const (
	SceneWidth  = 640
	SceneHeight = 448
)

// local memory layout of the scene, in blocks.
const (
	frameBP0  = 0x0000
	frameBP1  = 0x1180
	depthBP   = 0x2300
	textureBP = 0x3480
	clutBP    = 0x3f00
)

// the buffer width of the display in units of 64 pixels
const sceneFBW = SceneWidth / 64

// the texture that is also drawn to
const renderTexture = 4

// Scene generates a repeatable series of frames. Each frame is double
// buffered and built from clears, textured draws, render to texture,
// channel shuffles, copies and downloads.
type Scene struct {
	r   *Renderer
	rnd *random.Random

	frames   [2]regs.FRAME
	zbuf     regs.ZBUF
	textures []regs.TEX0
}

// NewScene is the preferred method of initialisation for the Scene type. A
// scene with a zero seed renders the same frames every time it is run.
func NewScene(r *Renderer, zeroSeed bool) *Scene {
	sc := &Scene{
		r:   r,
		rnd: random.NewRandom(r),
		frames: [2]regs.FRAME{
			{FBP: frameBP0, FBW: sceneFBW, PSM: psm.PSMCT32},
			{FBP: frameBP1, FBW: sceneFBW, PSM: psm.PSMCT32},
		},
		zbuf: regs.ZBUF{ZBP: depthBP, PSM: psm.PSMZ32},
	}
	sc.rnd.ZeroSeed = zeroSeed

	for i := 0; i < 4; i++ {
		sc.textures = append(sc.textures, regs.TEX0{
			TBP0: textureBP + uint32(i)*0x100, TBW: 4, PSM: psm.PSMT8, TW: 8, TH: 8,
			CBP: clutBP + uint32(i)*0x20, CPSM: psm.PSMCT32,
		})
	}
	sc.textures = append(sc.textures,
		regs.TEX0{TBP0: textureBP + 0x400, TBW: 2, PSM: psm.PSMCT32, TW: 7, TH: 7, TCC: true},
		regs.TEX0{TBP0: textureBP + 0x500, TBW: 2, PSM: psm.PSMCT16, TW: 7, TH: 7, TCC: true},
		regs.TEX0{TBP0: textureBP + 0x580, TBW: 2, PSM: psm.PSMT4, TW: 7, TH: 7, CBP: clutBP + 0x80, CPSM: psm.PSMCT16, CSA: 2},
	)

	return sc
}

// Textures returns the textures used by the scene.
func (sc *Scene) Textures() []regs.TEX0 {
	return sc.textures
}

// Back returns the frame buffer being drawn to in the current frame.
func (sc *Scene) Back() regs.FRAME {
	return sc.frames[sc.r.Stats.Frames%2]
}

// upload texture from the host. the top rows of the texture are uploaded if
// partial is true
func (sc *Scene) upload(tex0 regs.TEX0, partial bool) {
	rect := image.Rect(0, 0, tex0.Width(), tex0.Height())
	if partial {
		rect.Max.Y /= 2
	}
	pix := make([]uint32, rect.Dx()*rect.Dy())
	sc.rnd.Fill(pix, tex0.PSM.Info().BitMask())
	sc.r.Transfer(regs.BITBLTBUF{DBP: tex0.TBP0, DBW: tex0.TBW, DPSM: tex0.PSM}, rect, pix)

	if !tex0.PSM.Info().Indexed || partial {
		return
	}

	clut := image.Rect(0, 0, 16, 16)
	if tex0.PSM.Info().Bits == 4 {
		clut = image.Rect(0, int(tex0.CSA), 16, int(tex0.CSA)+1)
	}
	pix = make([]uint32, clut.Dx()*clut.Dy())
	sc.rnd.Fill(pix, tex0.CPSM.Info().BitMask())
	sc.r.Transfer(regs.BITBLTBUF{DBP: tex0.CBP, DBW: 1, DPSM: tex0.CPSM}, clut, pix)
}

// a random rectangle inside the display
func (sc *Scene) rect() image.Rectangle {
	w := 32 + sc.rnd.Intn(224)
	h := 32 + sc.rnd.Intn(160)
	x := sc.rnd.Intn(SceneWidth - w)
	y := sc.rnd.Intn(SceneHeight - h)
	return image.Rect(x, y, x+w, y+h)
}

// Frame renders the next frame of the scene.
func (sc *Scene) Frame() error {
	f := sc.r.Stats.Frames
	back := sc.Back()

	if f == 0 {
		for _, t := range sc.textures {
			sc.upload(t, false)
		}
	} else {
		sc.upload(sc.textures[f%len(sc.textures)], f%3 == 0)
	}

	_, err := sc.r.Draw(Draw{
		Frame:   back,
		Rect:    image.Rect(0, 0, SceneWidth, SceneHeight),
		ZBuf:    &sc.zbuf,
		Colour:  sc.rnd.Uint32() | 0xff000000,
		IsClear: true,
	})
	if err != nil {
		return err
	}

	// render to texture and sample the result in the main pass
	if f%6 == 5 {
		rtt := sc.textures[renderTexture]
		_, err = sc.r.Draw(Draw{
			Frame: regs.FRAME{FBP: rtt.TBP0, FBW: rtt.TBW, PSM: rtt.PSM},
			Rect:  image.Rect(0, 0, rtt.Width(), rtt.Height()),
			TEX0:  &sc.textures[f%renderTexture],
			TEXA:  regs.TargetTEXA,
		})
		if err != nil {
			return err
		}
	}

	n := 8 + sc.rnd.Intn(8)
	for i := 0; i < n; i++ {
		tex0 := sc.textures[sc.rnd.Intn(len(sc.textures))]
		_, err = sc.r.Draw(Draw{
			Frame: back,
			Rect:  sc.rect(),
			ZBuf:  &sc.zbuf,
			TEX0:  &tex0,
			TEXA:  regs.TEXA{TA0: 0x00, TA1: 0x80, AEM: i%2 == 0},
			CLAMP: regs.CLAMP{WMS: uint8(sc.rnd.Intn(2)), WMT: uint8(sc.rnd.Intn(2))},
		})
		if err != nil {
			return err
		}
	}

	// the frame viewed as 16-bit texels
	if f%4 == 3 {
		shuffle := regs.TEX0{TBP0: back.FBP, TBW: back.FBW, PSM: psm.PSMCT16, TW: 10, TH: 9}
		_, err = sc.r.Draw(Draw{
			Frame: back,
			Rect:  image.Rect(0, 0, 64, 64),
			TEX0:  &shuffle,
		})
		if err != nil {
			return err
		}
	}

	// copies inside the frame are made on the device. copies between
	// textures are made in local memory
	if f%5 == 4 {
		sc.r.Copy(regs.BITBLTBUF{
			SBP: back.FBP, SBW: back.FBW, SPSM: back.PSM,
			DBP: back.FBP, DBW: back.FBW, DPSM: back.PSM,
		}, 0, 0, 320, 224, 64, 32)

		ct16 := sc.textures[5]
		sc.r.Copy(regs.BITBLTBUF{
			SBP: ct16.TBP0, SBW: ct16.TBW, SPSM: ct16.PSM,
			DBP: ct16.TBP0, DBW: ct16.TBW, DPSM: ct16.PSM,
		}, 0, 0, 64, 64, 64, 64)
	}

	if f%8 == 7 {
		sc.r.Download(regs.BITBLTBUF{SBP: back.FBP, SBW: back.FBW, SPSM: back.PSM}, image.Rect(0, 0, 64, 32))
	}

	logger.Logf(sc.r.Cache, "workload", "frame %d: %d sources, %d render targets, %d depth buffers",
		f, sc.r.Cache.NumSources(), sc.r.Cache.NumTargets(texcache.RenderTarget), sc.r.Cache.NumTargets(texcache.DepthStencil))

	return sc.r.VSync(back, SceneHeight)
}

// RunFrames renders the number of frames. The continueCheck function is
// called after every frame and the run ends early if it returns false.
func (sc *Scene) RunFrames(n int, continueCheck func() (bool, error)) error {
	for i := 0; i < n || n < 0; i++ {
		if err := sc.Frame(); err != nil {
			return err
		}
		if continueCheck != nil {
			ok, err := continueCheck()
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}
	}
	return nil
}
