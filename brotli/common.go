// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package brotli implements the Brotli compressed data format,
// described in RFC 7932.
package brotli

const (
	minWindowBits = 10
	maxWindowBits = 24

	// windowGap is the amount of slack reserved past the logical end of the
	// decoder's ring buffer so that the LZ77 copy loop can write past a
	// window boundary without bounds-checking every store.
	windowGap = 37
)

var reverseLUT [256]uint8

func init() { initLUTs() }

// initLUTs builds every lookup table that is cheaper to generate at
// startup than to encode as a static array literal.
func initLUTs() {
	initCommonLUTs()
	initPrefixLUTs()
	initContextLUTs()
	initDictLUTs()
	initCommandLUTs()
}

func initCommonLUTs() {
	for i := range reverseLUT {
		b := uint8(i)
		b = (b&0xaa)>>1 | (b&0x55)<<1
		b = (b&0xcc)>>2 | (b&0x33)<<2
		b = (b&0xf0)>>4 | (b&0x0f)<<4
		reverseLUT[i] = b
	}
}

// reverseUint16 reverses all 16 bits of v.
func reverseUint16(v uint16) (x uint16) {
	x |= uint16(reverseLUT[byte(v>>0)]) << 8
	x |= uint16(reverseLUT[byte(v>>8)]) << 0
	return x
}

// reverseBits reverses the lower n bits of v.
func reverseBits(v uint16, n uint) uint16 {
	return reverseUint16(v << (16 - n))
}

func extendUint8s(s []uint8, n int) []uint8 {
	if cap(s) >= n {
		return s[:n]
	}
	return append(s[:cap(s)], make([]uint8, n-cap(s))...)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
