// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

// buildCommands runs a greedy LZ77 parse of buf using mf for match
// finding, returning the resulting command sequence and the concatenated
// literal bytes each command's insert phase consumes. Matches farther back
// than maxDist are rejected (treated as a miss) so that every distance
// this encoder emits stays within the decoder's window, per the Writer's
// configured window size.
//
// The encoder always emits distances through the extra-bits code path
// (see encodeDistance) rather than ever using the ring-buffer short codes;
// this keeps the encoder and its choice of when to read/write a distance
// independent of the distance ring's history, at some cost in compression
// ratio for repeated distances.
func buildCommands(buf []byte, mf matchFinder, maxDist int) ([]command, []byte) {
	var cmds []command
	var literals []byte

	litStart := 0
	pos := 0
	for pos < len(buf) {
		dist, length := mf.findLongest(buf, pos)
		if length >= minMatchLen && dist > 0 && dist <= maxDist {
			literals = append(literals, buf[litStart:pos]...)
			cmds = append(cmds, command{
				insertLen: pos - litStart,
				copyLen:   length,
				distCode:  dist,
			})
			end := pos + length
			for ; pos < end; pos++ {
				mf.insert(buf, pos)
			}
			litStart = pos
			continue
		}
		mf.insert(buf, pos)
		pos++
	}
	if litStart < len(buf) {
		literals = append(literals, buf[litStart:]...)
		cmds = append(cmds, command{insertLen: len(buf) - litStart})
	}
	return cmds, literals
}

// encodeDistance is the inverse of Reader.decodeDistance's default
// (npostfix=0, ndirect=0) branch: it finds the symbol and extra-bits width
// whose range contains d.
func encodeDistance(d int) (sym int, extra uint32, nbits uint) {
	v := uint32(d - 1)
	for bucket := 0; ; bucket++ {
		nb := uint(bucket/2) + 1
		base := uint32((2+bucket&1)<<nb) - 4
		span := uint32(1) << nb
		if v < base+span {
			return 16 + bucket, v - base, nb
		}
	}
}
