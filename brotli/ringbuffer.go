// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

// ringBuffer is the decoder's sliding-window output buffer. It stores the
// last 2^wbits bytes of decoded output (plus windowGap bytes of slack so a
// copy can overrun the logical window boundary without a bounds check on
// every byte) and serves both literal writes and backward copies.
type ringBuffer struct {
	buf    []byte
	mask   int // 2^wbits - 1
	pos    int // total bytes ever written, mod 2^wbits implied by &mask
	flushed int // value of pos up to which output was handed to the caller
}

func (rb *ringBuffer) init(wbits uint) {
	size := 1 << wbits
	rb.buf = extendUint8s(rb.buf, size+windowGap)
	rb.mask = size - 1
	rb.pos = 0
	rb.flushed = 0
}

func (rb *ringBuffer) idx(pos int) int { return pos & rb.mask }

// availSize reports how many bytes remain before wrap-around forces a
// flush (the window boundary), matching the suspension granularity the
// RFC describes for "output fence reached".
func (rb *ringBuffer) availSize() int {
	if rb.idx(rb.pos) == 0 && rb.pos != rb.flushed {
		return 0
	}
	return rb.mask + 1 - rb.idx(rb.pos)
}

func (rb *ringBuffer) writeByte(b byte) {
	rb.buf[rb.idx(rb.pos)] = b
	rb.pos++
}

// writeSlice copies p into the ring buffer starting at the current
// position; the caller must ensure p does not exceed availSize().
func (rb *ringBuffer) writeSlice(p []byte) {
	n := copy(rb.buf[rb.idx(rb.pos):], p)
	rb.pos += n
}

// writeCopy copies cnt bytes from distance d behind the current position,
// returning early (with the residual count) if the window boundary is hit
// first so the caller can flush and resume.
func (rb *ringBuffer) writeCopy(d, cnt int) int {
	for cnt > 0 {
		dst := rb.idx(rb.pos)
		src := rb.idx(rb.pos - d)
		if dst == 0 && rb.pos != rb.flushed {
			return cnt
		}
		rb.buf[dst] = rb.buf[src]
		rb.pos++
		cnt--
	}
	return 0
}

// readFlush returns the bytes produced since the last call and advances
// the flush marker. The returned slice aliases the ring buffer and is only
// valid until the next write.
func (rb *ringBuffer) readFlush() []byte {
	if rb.pos-rb.flushed > rb.mask+1 {
		rb.flushed = rb.pos - (rb.mask + 1) // dropped output; should not happen in a conforming stream
	}
	start := rb.idx(rb.flushed)
	end := start + (rb.pos - rb.flushed)
	if end > rb.mask+1 {
		end = rb.mask + 1
	}
	rb.flushed += end - start
	return rb.buf[start:end]
}

// copyFromDictionary copies a run sourced from the static or compound
// dictionary, per RFC section 4.5, writing the transformed word directly
// into the ring buffer at the current position.
func (rb *ringBuffer) copyFromDictionary(word []byte) {
	rb.writeSlice(word)
}
