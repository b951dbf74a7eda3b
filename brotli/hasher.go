// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

const minMatchLen = 4

// matchFinder is the encoder's backward-reference search interface. Two
// implementations exist: simpleHasher (Q0-4) keeps one candidate per hash
// bucket, and hashChainHasher (Q5 and above) keeps a bounded chain of recent
// positions per bucket, searched more deeply at Q10-11. Every quality feeds
// the same greedy parse.
type matchFinder interface {
	insert(buf []byte, pos int)
	findLongest(buf []byte, pos int) (dist, length int)
}

func hash4(buf []byte, pos int, bits uint) uint32 {
	v := uint32(buf[pos]) | uint32(buf[pos+1])<<8 | uint32(buf[pos+2])<<16 | uint32(buf[pos+3])<<24
	return (v * 0x1e35a7bd) >> (32 - bits)
}

// simpleHasher remembers only the most recent position for each 4-byte
// hash bucket, per RFC's description of the cheapest match-finding tier.
type simpleHasher struct {
	bits  uint
	table []int32
}

func newSimpleHasher() *simpleHasher {
	const bits = 15
	h := &simpleHasher{bits: bits, table: make([]int32, 1<<bits)}
	for i := range h.table {
		h.table[i] = -1
	}
	return h
}

func (h *simpleHasher) insert(buf []byte, pos int) {
	if pos+4 > len(buf) {
		return
	}
	h.table[hash4(buf, pos, h.bits)] = int32(pos)
}

func (h *simpleHasher) findLongest(buf []byte, pos int) (dist, length int) {
	if pos+4 > len(buf) {
		return 0, 0
	}
	cand := h.table[hash4(buf, pos, h.bits)]
	if cand < 0 {
		return 0, 0
	}
	return matchAt(buf, pos, int(cand))
}

// hashChainHasher keeps a bounded chain of prior positions per bucket,
// enabling the deeper search used at Q5 and above.
type hashChainHasher struct {
	bits     uint
	maxChain int
	head     []int32
	prev     []int32
}

func newHashChainHasher(maxChain int) *hashChainHasher {
	const bits = 17
	h := &hashChainHasher{bits: bits, maxChain: maxChain, head: make([]int32, 1<<bits)}
	for i := range h.head {
		h.head[i] = -1
	}
	return h
}

func (h *hashChainHasher) insert(buf []byte, pos int) {
	if pos+4 > len(buf) {
		return
	}
	if len(h.prev) <= pos {
		h.prev = append(h.prev, make([]int32, pos+1-len(h.prev))...)
	}
	b := hash4(buf, pos, h.bits)
	h.prev[pos] = h.head[b]
	h.head[b] = int32(pos)
}

func (h *hashChainHasher) findLongest(buf []byte, pos int) (dist, length int) {
	if pos+4 > len(buf) {
		return 0, 0
	}
	cand := h.head[hash4(buf, pos, h.bits)]
	best, bestLen := 0, 0
	for tries := 0; cand >= 0 && tries < h.maxChain; tries++ {
		d, l := matchAt(buf, pos, int(cand))
		if l > bestLen {
			best, bestLen = d, l
		}
		if int(cand) >= len(h.prev) {
			break
		}
		cand = h.prev[cand]
	}
	return best, bestLen
}

// matchAt reports the distance and length of the match between the bytes
// at pos and at candidate (candidate < pos), extended forwards only (the
// greedy parsers in this package do not look backwards for a match).
func matchAt(buf []byte, pos, candidate int) (dist, length int) {
	if candidate >= pos {
		return 0, 0
	}
	max := len(buf) - pos
	n := 0
	for n < max && buf[candidate+n] == buf[pos+n] {
		n++
	}
	if n < minMatchLen {
		return 0, 0
	}
	return pos - candidate, n
}
