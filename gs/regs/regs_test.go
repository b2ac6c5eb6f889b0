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

package regs_test

import (
	"image"
	"testing"

	"github.com/jetsetilly/gstexcache/gs/psm"
	"github.com/jetsetilly/gstexcache/gs/regs"
	"github.com/jetsetilly/gstexcache/test"
)

func TestTEX0(t *testing.T) {
	tex0 := regs.TEX0{TBP0: 0x3fff + 0x10, TBW: 4, PSM: psm.PSMT8, TW: 8, TH: 11}
	test.ExpectEquality(t, tex0.Width(), 256)
	test.ExpectEquality(t, tex0.Height(), 1024)
	test.ExpectEquality(t, tex0.Offset().BP, uint32(0x0f))
}

func TestExpand16(t *testing.T) {
	// every 16-bit value survives a round trip with the target expansion
	for raw := uint32(0); raw <= 0xffff; raw++ {
		texel := regs.TargetTEXA.Expand(psm.PSMCT16, raw)
		if regs.Pack(psm.PSMCT16, texel) != raw {
			t.Fatalf("round trip failed for %04x (texel %08x)", raw, texel)
		}
	}

	texa := regs.TEXA{TA0: 0x10, TA1: 0x20, AEM: true}
	test.ExpectEquality(t, texa.Expand(psm.PSMCT16, 0x0000), uint32(0))
	test.ExpectEquality(t, texa.Expand(psm.PSMCT16, 0x0001), uint32(0x10000008))
	test.ExpectEquality(t, texa.Expand(psm.PSMCT16, 0x8000), uint32(0x20000000))
	test.ExpectEquality(t, texa.Expand(psm.PSMCT16, 0x7c00), uint32(0x10f80000))
}

func TestExpand24(t *testing.T) {
	texa := regs.TEXA{TA0: 0x80, AEM: true}
	test.ExpectEquality(t, texa.Expand(psm.PSMCT24, 0xff123456), uint32(0x80123456))
	test.ExpectEquality(t, texa.Expand(psm.PSMCT24, 0xff000000), uint32(0))
	test.ExpectEquality(t, texa.Expand(psm.PSMZ24, 0xff123456), uint32(0x00123456))
	test.ExpectEquality(t, texa.Expand(psm.PSMZ32, 0xff123456), uint32(0xff123456))
	test.ExpectEquality(t, regs.Pack(psm.PSMCT24, 0xff123456), uint32(0x00123456))
}

func TestSourceRegion(t *testing.T) {
	// no restriction for plain clamping
	r := regs.NewSourceRegion(regs.CLAMP{WMS: regs.ClampClamp, WMT: regs.ClampRepeat}, 256, 256)
	test.ExpectFailure(t, r.HasX())
	test.ExpectFailure(t, r.HasY())
	test.ExpectEquality(t, r.Rect(256, 256), image.Rect(0, 0, 256, 256))

	// region clamp
	r = regs.NewSourceRegion(regs.CLAMP{WMS: regs.ClampRegionClamp, MINU: 16, MAXU: 47}, 256, 256)
	test.ExpectSuccess(t, r.HasX())
	test.ExpectEquality(t, r.Rect(256, 256), image.Rect(16, 0, 48, 256))
	test.ExpectEquality(t, r.Offset(), image.Pt(16, 0))
	test.ExpectFailure(t, r.IsFixedTEX0(256, 256))

	// region reaching beyond the declared size
	r = regs.NewSourceRegion(regs.CLAMP{WMT: regs.ClampRegionClamp, MINV: 0, MAXV: 447}, 512, 256)
	test.ExpectSuccess(t, r.IsFixedTEX0(512, 256))
	test.ExpectEquality(t, r.Rect(512, 256), image.Rect(0, 0, 512, 448))

	// region repeat
	r = regs.NewSourceRegion(regs.CLAMP{WMS: regs.ClampRegionRepeat, MINU: 15, MAXU: 64}, 256, 256)
	test.ExpectEquality(t, r.Rect(256, 256), image.Rect(64, 0, 80, 256))

	m := r.AdjustForMipmap(1)
	test.ExpectEquality(t, m.Rect(128, 128), image.Rect(32, 0, 40, 128))
}
