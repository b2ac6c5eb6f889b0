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

package texcache_test

import (
	"image"
	"testing"

	"github.com/jetsetilly/gstexcache/gpu/soft"
	"github.com/jetsetilly/gstexcache/gs/psm"
	"github.com/jetsetilly/gstexcache/gs/regs"
	"github.com/jetsetilly/gstexcache/gs/vram"
	"github.com/jetsetilly/gstexcache/test"
	"github.com/jetsetilly/gstexcache/texcache"
)

func TestLookupTargetReuse(t *testing.T) {
	tc, dev, _ := newCache(t)

	tex0 := regs.TEX0{TBW: 10, PSM: psm.PSMCT32}
	t1, err := tc.LookupTarget(tex0, image.Pt(640, 448), 1, texcache.RenderTarget, true, 0, false, false, false)
	test.DemandSuccess(t, err)
	created := dev.Created()

	t2, err := tc.LookupTarget(tex0, image.Pt(640, 448), 1, texcache.RenderTarget, true, 0, false, false, false)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, t1 == t2)
	test.ExpectEquality(t, dev.Created(), created)
	test.ExpectEquality(t, tc.NumTargets(texcache.RenderTarget), 1)

	// 24-bit view of the same target
	tex0.PSM = psm.PSMCT24
	t3, err := tc.LookupTarget(tex0, image.Pt(640, 448), 1, texcache.RenderTarget, true, 0, false, false, false)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, t1 == t3)
	test.ExpectEquality(t, t3.TEX0.PSM, psm.PSMCT24)

	// a depth buffer at the same address is a different target
	tex0.PSM = psm.PSMZ32
	ds, err := tc.LookupTarget(tex0, image.Pt(640, 448), 1, texcache.DepthStencil, true, 0, false, false, false)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, ds != t1)
	test.ExpectEquality(t, tc.NumTargets(texcache.DepthStencil), 1)
}

func TestPreloadAndRead(t *testing.T) {
	for _, p := range []psm.PSM{psm.PSMCT32, psm.PSMCT24, psm.PSMCT16, psm.PSMZ16} {
		tc, _, mem := newCache(t)

		kind := texcache.RenderTarget
		if p.Info().Depth {
			kind = texcache.DepthStencil
		}

		off := vram.NewOffset(0, 10, p)
		r := image.Rect(0, 0, 640, 448)
		fill(mem, off, r, 1)

		want := make([]uint32, r.Dx()*r.Dy())
		mem.ReadImage(off, r, want)

		tgt, err := tc.LookupTarget(regs.TEX0{TBW: 10, PSM: p}, r.Size(), 1, kind, true, 0, false, true, false)
		test.DemandSuccess(t, err)
		test.ExpectSuccess(t, tgt.Dirty(), p)
		tc.UpdateTarget(tgt)
		test.ExpectFailure(t, tgt.Dirty(), p)

		mem.Reset()
		tc.Read(tgt, r)

		got := make([]uint32, r.Dx()*r.Dy())
		mem.ReadImage(off, r, got)

		test.ExpectPixels(t, got, want, r.Dx(), p)
	}
}

func TestPreloadWithScale(t *testing.T) {
	tc, _, mem := newCache(t)

	off := vram.NewOffset(0, 10, psm.PSMCT32)
	r := image.Rect(0, 0, 640, 448)
	fill(mem, off, r, 1)

	tgt, err := tc.LookupTarget(regs.TEX0{TBW: 10, PSM: psm.PSMCT32}, r.Size(), 2, texcache.RenderTarget, true, 0, false, true, false)
	test.DemandSuccess(t, err)
	tc.UpdateTarget(tgt)
	test.ExpectEquality(t, tgt.Texture.Size(), image.Pt(1280, 896))
	test.ExpectEquality(t, texel(tgt.Texture, 21, 41), mem.ReadPixel(off, 10, 20))

	// reading back scales down again
	want := mem.ReadPixel(off, 100, 100)
	mem.Reset()
	tc.Read(tgt, image.Rect(96, 96, 128, 128))
	test.ExpectEquality(t, mem.ReadPixel(off, 100, 100), want)
}

// the dirty rectangles of several writes applied in one go give the same
// result as applying them one at a time
func TestDirtyRectsBatched(t *testing.T) {
	run := func(batched bool) (*soft.Texture, *vram.Memory) {
		tc, _, mem := newCache(t)

		off := vram.NewOffset(0, 10, psm.PSMCT32)
		fill(mem, off, image.Rect(0, 0, 640, 448), 1)
		tgt, err := tc.LookupTarget(regs.TEX0{TBW: 10, PSM: psm.PSMCT32}, image.Pt(640, 448), 1,
			texcache.RenderTarget, true, 0, false, true, false)
		test.DemandSuccess(t, err)
		tc.UpdateTarget(tgt)

		writes := []struct {
			off vram.Offset
			r   image.Rectangle
		}{
			{vram.NewOffset(0, 10, psm.PSMCT32), image.Rect(0, 0, 100, 50)},
			{vram.NewOffset(0, 10, psm.PSMT8H), image.Rect(50, 20, 150, 80)},
			{vram.NewOffset(0, 10, psm.PSMCT24), image.Rect(120, 60, 200, 120)},
			{vram.NewOffset(32, 10, psm.PSMCT32), image.Rect(0, 0, 64, 32)},
			{vram.NewOffset(0, 10, psm.PSMT4HH), image.Rect(0, 0, 64, 64)},
		}

		for i, w := range writes {
			fill(mem, w.off, w.r, int64(i+2))
			tc.InvalidateVideoMem(w.off, w.r, true, true)
			if !batched {
				tc.UpdateTarget(tgt)
			}
		}
		if batched {
			test.ExpectSuccess(t, len(tgt.DirtyRects()) > 1)
		}
		tc.UpdateTarget(tgt)

		return tgt.Texture.(*soft.Texture), mem
	}

	a, mem := run(true)
	b, _ := run(false)

	off := vram.NewOffset(0, 10, psm.PSMCT32)
	mismatches := 0
	stale := 0
	for y := 0; y < 448; y++ {
		for x := 0; x < 640; x++ {
			if a.At(x, y) != b.At(x, y) {
				mismatches++
			}
			if a.At(x, y) != mem.ReadPixel(off, x, y) {
				stale++
			}
		}
	}
	test.ExpectEquality(t, mismatches, 0)
	test.ExpectEquality(t, stale, 0)
}

func TestDisplayTarget(t *testing.T) {
	tc, _, _ := newCache(t)
	tgt := drawnTarget(t, tc, 0)

	// the display starts two rows of pages into the target
	d, yoff, err := tc.LookupDisplayTarget(regs.TEX0{TBP0: 640, TBW: 10, PSM: psm.PSMCT32}, image.Pt(640, 448), 1)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, d == tgt)
	test.ExpectEquality(t, yoff, 64)
	test.ExpectEquality(t, d.UnscaledSize, image.Pt(640, 512))
	test.ExpectSuccess(t, d.IsFrame)

	// the display is somewhere else entirely
	d, yoff, err = tc.LookupDisplayTarget(regs.TEX0{TBP0: 0x2000, TBW: 10, PSM: psm.PSMCT32}, image.Pt(640, 448), 1)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, d != tgt)
	test.ExpectEquality(t, yoff, 0)
	test.ExpectEquality(t, tc.NumTargets(texcache.RenderTarget), 2)
}

func TestHandOff(t *testing.T) {
	tc, _, mem := newCache(t)

	aOff := vram.NewOffset(0, 10, psm.PSMCT32)
	fill(mem, aOff, image.Rect(0, 0, 640, 448), 1)

	a, err := tc.LookupTarget(regs.TEX0{TBW: 10, PSM: psm.PSMCT32}, image.Pt(640, 224), 1,
		texcache.RenderTarget, true, 0, false, false, true)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, tc.CommitDraw(a, image.Rect(0, 0, 640, 224), 0xffffffff) == nil)

	// the second buffer starts immediately after the first
	b, err := tc.LookupTarget(regs.TEX0{TBP0: 0x8c0, TBW: 10, PSM: psm.PSMCT32}, image.Pt(640, 224), 1,
		texcache.RenderTarget, true, 0, false, true, false)
	test.DemandSuccess(t, err)
	tc.UpdateTarget(b)
	test.ExpectEquality(t, tc.NumTargets(texcache.RenderTarget), 2)

	// drawing past the end of the first buffer takes over the second
	old := tc.CommitDraw(a, image.Rect(0, 0, 640, 240), 0xffffffff)
	test.ExpectSuccess(t, old == b)
	test.ExpectEquality(t, tc.NumTargets(texcache.RenderTarget), 1)
	test.ExpectEquality(t, a.UnscaledSize, image.Pt(640, 448))
	test.ExpectEquality(t, a.Valid, image.Rect(0, 0, 640, 448))
	test.ExpectEquality(t, texel(a.Texture, 0, 300), mem.ReadPixel(aOff, 0, 300))
	test.ExpectEquality(t, texel(a.Texture, 600, 447), mem.ReadPixel(aOff, 600, 447))
}

func TestReadbackForCPU(t *testing.T) {
	tc, _, mem := newCache(t)
	off := vram.NewOffset(0, 10, psm.PSMCT32)

	tgt := drawnTarget(t, tc, 0x11223344)

	tc.InvalidateLocalMem(off, image.Rect(0, 0, 64, 32))
	test.ExpectEquality(t, mem.ReadPixel(off, 10, 10), uint32(0x11223344))
	test.ExpectEquality(t, mem.ReadPixel(off, 100, 100), uint32(0))
	test.ExpectFailure(t, tgt.DrawnSinceRead.Empty())
	test.ExpectEquality(t, tgt.ReadbacksSinceDraw, 1)

	tc.InvalidateLocalMem(off, image.Rect(0, 0, 640, 448))
	test.ExpectEquality(t, mem.ReadPixel(off, 100, 100), uint32(0x11223344))
	test.ExpectSuccess(t, tgt.DrawnSinceRead.Empty())

	// a new draw
	tc.CommitDraw(tgt, image.Rect(0, 0, 10, 10), 0xffffffff)
	test.ExpectEquality(t, tgt.ReadbacksSinceDraw, 0)
}

func TestReadbackSkippedAfterTransfer(t *testing.T) {
	tc, _, mem := newCache(t)
	off := vram.NewOffset(0, 10, psm.PSMCT32)

	tgt := drawnTarget(t, tc, 0x11223344)

	w := image.Rect(0, 0, 64, 32)
	pix := fill(mem, off, w, 1)
	tc.InvalidateVideoMem(off, w, true, true)
	test.ExpectEquality(t, len(tgt.DirtyRects()), 1)

	// the CPU wrote the area during this draw so local memory is up to date
	tc.InvalidateLocalMem(off, w)
	test.ExpectEquality(t, mem.ReadPixel(off, 5, 5), pix[5*64+5])
	test.ExpectEquality(t, tgt.ReadbacksSinceDraw, 0)

	// in a later draw the dirty rectangle is applied before the read
	tc.DrawComplete()
	tc.InvalidateLocalMem(off, w)
	test.ExpectEquality(t, mem.ReadPixel(off, 5, 5), pix[5*64+5])
	test.ExpectEquality(t, texel(tgt.Texture, 5, 5), pix[5*64+5])
	test.ExpectEquality(t, tgt.ReadbacksSinceDraw, 1)
	test.ExpectFailure(t, tgt.Dirty())
}

func TestEvictOnIncompatibleWrite(t *testing.T) {
	tc, _, mem := newCache(t)
	off := vram.NewOffset(0, 10, psm.PSMCT32)

	drawnTarget(t, tc, 0x11223344)

	// 16-bit pixels can't be placed in a 32-bit target
	ct16 := vram.NewOffset(0, 10, psm.PSMCT16)
	w := image.Rect(0, 0, 64, 64)
	pix := fill(mem, ct16, w, 1)
	tc.InvalidateVideoMem(ct16, w, true, true)

	test.ExpectEquality(t, tc.NumTargets(texcache.RenderTarget), 0)

	// the CPU write wins over the target
	mismatches := 0
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if mem.ReadPixel(ct16, x, y) != pix[y*64+x] {
				mismatches++
			}
		}
	}
	test.ExpectEquality(t, mismatches, 0)

	// the rest of the target was written back
	test.ExpectEquality(t, mem.ReadPixel(off, 100, 0), uint32(0x11223344))
	test.ExpectEquality(t, mem.ReadPixel(off, 639, 447), uint32(0x11223344))
}

func TestMove(t *testing.T) {
	tc, _, _ := newCache(t)
	tgt := drawnTarget(t, tc, 0)

	pix := tgt.Texture.(*soft.Texture).Pix
	for i := range pix {
		pix[i] = uint32(i)
	}

	test.DemandSuccess(t, tc.Move(0, 10, psm.PSMCT32, 0, 0, 0, 10, psm.PSMCT32, 0, 100, 64, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			test.ExpectEquality(t, texel(tgt.Texture, x, y+100), uint32(y*640+x))
		}
	}

	// source and destination overlap
	test.DemandSuccess(t, tc.Move(0, 10, psm.PSMCT32, 0, 0, 0, 10, psm.PSMCT32, 10, 10, 64, 32))
	test.ExpectEquality(t, texel(tgt.Texture, 10, 10), uint32(0))
	test.ExpectEquality(t, texel(tgt.Texture, 73, 41), uint32(31*640+63))

	// not a target in the destination
	test.ExpectFailure(t, tc.Move(0, 10, psm.PSMCT32, 0, 0, 0x3000, 10, psm.PSMCT32, 0, 0, 64, 32))

	// different storage modes
	test.ExpectFailure(t, tc.Move(0, 10, psm.PSMCT32, 0, 0, 0, 10, psm.PSMCT24, 0, 100, 64, 32))
}

func TestTargetAging(t *testing.T) {
	tc, _, mem := newCache(t)
	test.ExpectSuccess(t, tc.Prefs.TargetAgeLimit.Set(2))

	drawnTarget(t, tc, 0x55)

	tc.IncAge()
	tc.IncAge()
	test.ExpectEquality(t, tc.NumTargets(texcache.RenderTarget), 1)
	tc.IncAge()
	test.ExpectEquality(t, tc.NumTargets(texcache.RenderTarget), 0)

	// written back on eviction
	test.ExpectEquality(t, mem.ReadPixel(vram.NewOffset(0, 10, psm.PSMCT32), 0, 0), uint32(0x55))
}

func TestTargetListLimit(t *testing.T) {
	tc, _, _ := newCache(t)
	test.ExpectSuccess(t, tc.Prefs.TargetListLimit.Set(2))

	for _, bp := range []uint32{0, 0x1000, 0x2000} {
		_, err := tc.LookupTarget(regs.TEX0{TBP0: bp, TBW: 1, PSM: psm.PSMCT32}, image.Pt(64, 32), 1,
			texcache.RenderTarget, true, 0, false, false, true)
		test.DemandSuccess(t, err)
	}

	l := tc.Targets(texcache.RenderTarget)
	test.DemandEquality(t, len(l), 2)
	test.ExpectEquality(t, l[0].TEX0.TBP0, uint32(0x2000))
	test.ExpectEquality(t, l[1].TEX0.TBP0, uint32(0x1000))
}

func TestGetTargetHeight(t *testing.T) {
	tc, _, _ := newCache(t)

	test.ExpectEquality(t, tc.GetTargetHeight(0, 10, psm.PSMCT32, 224), 224)
	test.ExpectEquality(t, tc.GetTargetHeight(0, 10, psm.PSMCT32, 100), 224)
	test.ExpectEquality(t, tc.GetTargetHeight(0, 10, psm.PSMCT32, 448), 448)
	test.ExpectEquality(t, tc.GetTargetHeight(0, 5, psm.PSMCT32, 100), 100)

	test.ExpectSuccess(t, tc.Prefs.TargetAgeLimit.Set(1))
	tc.IncAge()
	tc.IncAge()
	test.ExpectEquality(t, tc.GetTargetHeight(0, 10, psm.PSMCT32, 10), 10)

	// a new target uses the largest recorded height
	tc.GetTargetHeight(0x2000, 10, psm.PSMCT32, 512)
	tgt, err := tc.LookupTarget(regs.TEX0{TBP0: 0x2000, TBW: 10, PSM: psm.PSMCT32}, image.Pt(640, 224), 1,
		texcache.RenderTarget, true, 0, false, false, true)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, tgt.UnscaledSize, image.Pt(640, 512))
}

func TestTargetConversion(t *testing.T) {
	tc, _, _ := newCache(t)
	rt := drawnTarget(t, tc, 0xaabbccdd)

	ds, err := tc.LookupTarget(regs.TEX0{TBW: 10, PSM: psm.PSMZ32}, image.Pt(640, 448), 1,
		texcache.DepthStencil, true, 0, false, false, false)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, ds != rt)
	test.ExpectFailure(t, ds.Dirty())
	test.ExpectEquality(t, ds.ValidBits, uint32(0xffffffff))
	test.ExpectEquality(t, texel(ds.Texture, 320, 200), uint32(0xaabbccdd))

	// removed without being written back
	tc.InvalidateVideoMemType(texcache.DepthStencil, 0)
	test.ExpectEquality(t, tc.NumTargets(texcache.DepthStencil), 0)
	test.ExpectEquality(t, tc.NumTargets(texcache.RenderTarget), 1)
}

func TestGrowthLimit(t *testing.T) {
	tc, _, _ := newCache(t)
	tc.SetDisplayHeight(256)

	tgt := drawnTarget(t, tc, 0)

	// 2.0 times the display height is the default limit
	tc.CommitDraw(tgt, image.Rect(0, 0, 640, 600), 0xffffffff)
	test.ExpectEquality(t, tgt.UnscaledSize, image.Pt(640, 448))
	test.ExpectEquality(t, tgt.Valid, image.Rect(0, 0, 640, 448))

	tc.CommitDraw(tgt, image.Rect(0, 0, 640, 500), 0xffffffff)
	test.ExpectEquality(t, tgt.UnscaledSize, image.Pt(640, 500))
}

func TestTargetQueries(t *testing.T) {
	tc, _, _ := newCache(t)
	rt := drawnTarget(t, tc, 0)

	test.ExpectSuccess(t, tc.GetExactTarget(0, 10, texcache.RenderTarget, 0x100) == rt)
	test.ExpectSuccess(t, tc.GetExactTarget(0, 5, texcache.RenderTarget, 0x100) == nil)
	test.ExpectSuccess(t, tc.GetExactTarget(0, 10, texcache.DepthStencil, 0x100) == nil)

	test.ExpectSuccess(t, tc.GetTargetWithSharedBits(0, psm.PSMCT24) == rt)
	test.ExpectSuccess(t, tc.GetTargetWithSharedBits(0x2000, psm.PSMCT24) == nil)

	test.ExpectSuccess(t, tc.Has32BitTarget(0))
	test.ExpectFailure(t, tc.Has32BitTarget(0x2000))

	test.ExpectSuccess(t, tc.FindTargetOverlap(0, 0x100, texcache.RenderTarget, psm.PSMCT32) == rt)
	test.ExpectSuccess(t, tc.FindTargetOverlap(0x20, 0x100, texcache.RenderTarget, psm.PSMCT32) == nil)

	test.ExpectSuccess(t, tc.CanTranslate(0, 10, psm.PSMCT32, image.Rect(0, 0, 64, 32), 0, psm.PSMCT32, 10))
	test.ExpectInequality(t, tc.TargetMemoryUsage(), uint64(0))
}

func TestDirtyRectOtherWidth(t *testing.T) {
	tc, _, mem := newCache(t)
	tgt := drawnTarget(t, tc, 0x11223344)

	// a write one page wide to the twenty-first page of the target, which is
	// the first page of its third row
	w := vram.NewOffset(20*vram.BlocksPerPage, 1, psm.PSMCT32)
	r := image.Rect(0, 0, 64, 32)
	pix := fill(mem, w, r, 1)
	tc.InvalidateVideoMem(w, r, true, true)
	test.DemandEquality(t, len(tgt.DirtyRects()), 1)
	test.ExpectEquality(t, tgt.DirtyRects()[0].Rect, image.Rect(0, 64, 64, 96))

	tc.UpdateTarget(tgt)
	got := make([]uint32, 0, len(pix))
	for y := 64; y < 96; y++ {
		for x := 0; x < 64; x++ {
			got = append(got, texel(tgt.Texture, x, y))
		}
	}
	test.ExpectPixels(t, got, pix, 64)

	// writing the target back doesn't lose the CPU write
	tc.DrawComplete()
	tc.InvalidateLocalMem(tgt.Offset(), tgt.UnscaledRect())
	got = make([]uint32, len(pix))
	mem.ReadImage(w, r, got)
	test.ExpectPixels(t, got, pix, 64)
	test.ExpectEquality(t, mem.ReadPixel(tgt.Offset(), 100, 0), uint32(0x11223344))
}

func TestShuffleMove(t *testing.T) {
	tc, _, _ := newCache(t)
	tgt := drawnTarget(t, tc, 0x11223344)

	// find the 16-bit pixel in the other half of the word holding the pixel
	// at the origin
	off := vram.NewOffset(0, 10, psm.PSMCT16)
	a := off.BitAddress(0, 0)
	var px, py int
	found := false
	for y := 0; y < 64 && !found; y++ {
		for x := 0; x < 64 && !found; x++ {
			if off.BitAddress(x, y) == a^16 {
				px, py = x, y
				found = true
			}
		}
	}
	test.DemandSuccess(t, found)

	tx, ty, _ := tgt.Offset().PixelAt(a)

	// low half to high half
	test.ExpectSuccess(t, tc.ShuffleMove(0, 10, psm.PSMCT16, 0, 0, px, py, 1, 1))
	test.ExpectEquality(t, texel(tgt.Texture, tx, ty), uint32(0x33443344))
	test.ExpectEquality(t, texel(tgt.Texture, tx+1, ty), uint32(0x11223344))

	// and back again
	paint(tgt.Texture, 0x11223344)
	test.ExpectSuccess(t, tc.ShuffleMove(0, 10, psm.PSMCT16, px, py, 0, 0, 1, 1))
	test.ExpectEquality(t, texel(tgt.Texture, tx, ty), uint32(0x11221122))

	// pixels that don't share a word
	test.ExpectFailure(t, tc.ShuffleMove(0, 10, psm.PSMCT16, 0, 0, 0, 0, 1, 1))

	// not a 16-bit move
	test.ExpectFailure(t, tc.ShuffleMove(0, 10, psm.PSMCT32, 0, 0, 1, 0, 1, 1))

	// no target at the base pointer
	test.ExpectFailure(t, tc.ShuffleMove(0x2000, 10, psm.PSMCT16, 0, 0, px, py, 1, 1))
}
