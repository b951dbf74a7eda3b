// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

// maxCompoundChunks is the RFC-imposed limit on the number of distinct
// byte buffers that may be attached as a compound (custom) dictionary.
const maxCompoundChunks = 15

// compoundDict is caller-supplied data attached before decoding or encoding
// that occupies the distance range immediately beyond the sliding window,
// ahead of the static dictionary. Chunks are addressed back-to-front: the
// chunk nearest the window holds the lowest addresses.
type compoundDict struct {
	chunks   [][]byte
	// offsets[i] is the address of the first byte of chunks[i], with
	// chunks ordered so offsets is ascending; it is rebuilt by attach.
	offsets []uint32
	total   uint32
}

// attach appends a chunk to the compound dictionary, nearest-first: the
// most recently attached chunk sits closest to the window.
func (cd *compoundDict) attach(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}
	if len(cd.chunks) >= maxCompoundChunks {
		return errAPIMisuse
	}
	cd.chunks = append([][]byte{chunk}, cd.chunks...)
	cd.rebuild()
	return nil
}

func (cd *compoundDict) rebuild() {
	cd.offsets = cd.offsets[:0]
	var off uint32
	for _, c := range cd.chunks {
		cd.offsets = append(cd.offsets, off)
		off += uint32(len(c))
	}
	cd.total = off
}

func (cd *compoundDict) reset() {
	cd.chunks = cd.chunks[:0]
	cd.offsets = cd.offsets[:0]
	cd.total = 0
}

// locate finds the chunk containing address and returns a slice starting
// there, truncated to the chunk boundary. A binary search over offsets
// gives O(log chunks) lookup; with at most 15 chunks this is effectively
// constant time, matching the RFC's O(1) expectation for any realistic
// chunk count.
func (cd *compoundDict) locate(address uint32) ([]byte, error) {
	if address >= cd.total {
		return nil, errInvalidDistance
	}
	lo, hi := 0, len(cd.offsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if cd.offsets[mid] <= address {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	chunk := cd.chunks[lo]
	skip := address - cd.offsets[lo]
	return chunk[skip:], nil
}

// copy writes length bytes starting at address into dst, spanning chunk
// boundaries as needed, and reports how many bytes were written.
func (cd *compoundDict) copy(dst []byte, address uint32, length int) (int, error) {
	n := 0
	for n < length {
		src, err := cd.locate(address + uint32(n))
		if err != nil {
			return n, err
		}
		cnt := copy(dst[n:length], src)
		if cnt == 0 {
			return n, errInvalidDistance
		}
		n += cnt
	}
	return n, nil
}
