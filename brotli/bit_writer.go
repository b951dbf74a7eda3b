// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import "io"

// bitWriter is a LSB-first bit stream writer over an io.Writer, the mirror
// image of bitReader.
type bitWriter struct {
	dst io.Writer

	scratch [4096]byte
	scratchLen int

	accumulator uint64 // up to 7 stale bits plus 57 freshly written bits
	bitCount    uint

	offset int64 // number of bytes flushed to dst
}

func (bw *bitWriter) init(w io.Writer) {
	*bw = bitWriter{dst: w}
}

// writeBits appends the low nb bits of v (nb<=56) to the stream.
func (bw *bitWriter) writeBits(v uint64, nb uint) {
	bw.accumulator |= (v & (1<<nb - 1)) << bw.bitCount
	bw.bitCount += nb
	for bw.bitCount >= 8 {
		bw.pushByte(byte(bw.accumulator))
		bw.accumulator >>= 8
		bw.bitCount -= 8
	}
}

func (bw *bitWriter) pushByte(b byte) {
	if bw.scratchLen >= len(bw.scratch) {
		bw.flushScratch()
	}
	bw.scratch[bw.scratchLen] = b
	bw.scratchLen++
}

func (bw *bitWriter) flushScratch() {
	if bw.scratchLen == 0 {
		return
	}
	n, err := bw.dst.Write(bw.scratch[:bw.scratchLen])
	bw.offset += int64(n)
	if err != nil {
		panic(err)
	}
	bw.scratchLen = 0
}

// writeSymbol writes sym using pe's canonical code.
func (bw *bitWriter) writeSymbol(pe *prefixEncoder, sym uint) {
	pe.WriteSymbol(bw, sym)
}

// padToByte flushes any partial byte in the accumulator, writing zero bits
// to complete it, per RFC 7932 section 9.2.
func (bw *bitWriter) padToByte() {
	if bw.bitCount > 0 {
		bw.pushByte(byte(bw.accumulator))
		bw.accumulator = 0
		bw.bitCount = 0
	}
}

// writeRawBytes writes p directly to the stream; the writer must already be
// byte-aligned (see padToByte).
func (bw *bitWriter) writeRawBytes(p []byte) {
	bw.flushScratch()
	n, err := bw.dst.Write(p)
	bw.offset += int64(n)
	if err != nil {
		panic(err)
	}
}

// flush pads to a byte boundary and pushes all staged bytes to dst.
func (bw *bitWriter) flush() {
	bw.padToByte()
	bw.flushScratch()
}
