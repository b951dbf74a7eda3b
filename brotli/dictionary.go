// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import "sync"

// RFC section 8 bounds the word lengths addressable in the static
// dictionary.
const (
	minDictWordLen = 4
	maxDictWordLen = 24
)

// dictSizeBits and dictOffsets are defined in RFC section 8: for each word
// length L, dictSizeBits[L] gives the number of bits needed to index the
// words of that length, and dictOffsets[L] gives the byte offset within the
// dictionary blob where words of that length begin. A zero entry in
// dictSizeBits means no dictionary word has that length.
var (
	dictSizeBits = [maxDictWordLen + 1]uint8{
		0, 0, 0, 0, 10, 10, 11, 11, 10, 10, 10, 10, 10, 9, 9, 8, 7, 7, 8, 7, 7, 6, 6, 5, 5,
	}
	dictOffsets = [maxDictWordLen + 1]uint32{
		0, 0, 0, 0, 0, 4096, 9216, 21504, 35840, 44032, 53248, 63488, 74752,
		87040, 93696, 100864, 104704, 106752, 108928, 113536, 115968, 118528,
		119872, 121280, 122016,
	}

	// dictSizes[L] = 1<<dictSizeBits[L], precomputed by initDictLUTs.
	dictSizes [maxDictWordLen + 1]uint32
)

func initDictLUTs() {
	for l, bits := range dictSizeBits {
		if bits > 0 {
			dictSizes[l] = 1 << bits
		}
	}
}

// staticDictionary holds the 122 KB RFC word list. Bootstrapping its
// contents (the raw bytes, optionally themselves brotli-compressed in the
// distribution the bytes were lifted from) is a deployment concern external
// to the codec; callers that need static-dictionary references to resolve
// must supply the blob once via SetStaticDictionary before decoding or
// encoding streams that use it.
type staticDictionary struct {
	mu   sync.RWMutex
	data []byte
}

var globalDict staticDictionary

// SetStaticDictionary installs the raw RFC 7932 static dictionary bytes
// used to resolve distance codes beyond the sliding window. It is safe to
// call concurrently with decoding or encoding; once set, the dictionary is
// treated as immutable and shared process-wide.
func SetStaticDictionary(data []byte) {
	globalDict.mu.Lock()
	globalDict.data = data
	globalDict.mu.Unlock()
}

func (d *staticDictionary) word(length int, idx uint32) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.data == nil {
		return nil, errStaticDictMissing
	}
	off := dictOffsets[length] + idx*uint32(length)
	end := off + uint32(length)
	if end > uint32(len(d.data)) {
		return nil, ErrCorrupt
	}
	return d.data[off:end], nil
}

// staticDictLookup resolves a distance-derived dictionary address to a
// transformed byte string, per RFC section 8.
//
// address is distance - maxDistance - 1 - compoundSize, as computed by the
// command loop once a distance has been identified as referring to the
// static dictionary rather than the ring buffer or a compound chunk.
func staticDictLookup(buf []byte, length int, address uint32) (int, error) {
	bits := dictSizeBits[length]
	if bits == 0 {
		return 0, errInvalidDistance
	}
	wordIdx := address & (1<<bits - 1)
	transformIdx := int(address >> bits)
	if transformIdx >= len(transformLUT) {
		return 0, errInvalidDistance
	}
	word, err := globalDict.word(length, wordIdx)
	if err != nil {
		return 0, err
	}
	return transformWord(buf, word, transformIdx), nil
}

var errStaticDictMissing = Error("static dictionary not installed; call SetStaticDictionary")
