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

package digest

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"
)

// Frame is an implementation of the Digest interface that fingerprints a
// series of frames. The fingerprint of each frame is chained with the
// fingerprint of the previous frame.
type Frame struct {
	digest [sha1.Size]byte
	data   []byte
	frames int
}

// NewFrame is the preferred method of initialisation for the Frame type.
func NewFrame() *Frame {
	return &Frame{}
}

// Hash implements digest.Digest interface
func (dig *Frame) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements digest.Digest interface
func (dig *Frame) ResetDigest() {
	for i := range dig.digest {
		dig.digest[i] = 0
	}
	dig.frames = 0
}

// Frames returns the number of frames in the fingerprint.
func (dig *Frame) Frames() int {
	return dig.frames
}

// AddFrame adds the pixels of a frame to the fingerprint.
func (dig *Frame) AddFrame(pix []uint32) {
	// the previous fingerprint is at the head of the data
	l := len(dig.digest) + len(pix)*4
	if cap(dig.data) < l {
		dig.data = make([]byte, l)
	}
	dig.data = dig.data[:l]

	n := copy(dig.data, dig.digest[:])
	for _, p := range pix {
		binary.LittleEndian.PutUint32(dig.data[n:], p)
		n += 4
	}

	dig.digest = sha1.Sum(dig.data)
	dig.frames++
}
