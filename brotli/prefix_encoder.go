// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import "sort"

// prefixEncoder maps a symbol to its canonical prefix code for writing.
type prefixEncoder struct {
	codes []prefixCode // indexed by symbol; len==0 entries are unused
}

// Init assigns canonical values to codes whose sym and len fields are
// already populated (order and value are ignored on input).
func (pe *prefixEncoder) Init(codes []prefixCode) {
	cs := make([]prefixCode, len(codes))
	copy(cs, codes)
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].len != cs[j].len {
			return cs[i].len < cs[j].len
		}
		return cs[i].sym < cs[j].sym
	})

	var maxSym uint16
	for _, c := range cs {
		if c.sym > maxSym {
			maxSym = c.sym
		}
	}
	pe.codes = extendPrefixCodes(pe.codes, int(maxSym)+1)
	for i := range pe.codes {
		pe.codes[i] = prefixCode{}
	}

	var code uint16
	var lastLen uint8
	for _, c := range cs {
		if c.len == 0 {
			continue
		}
		code <<= c.len - lastLen
		lastLen = c.len
		pe.codes[c.sym] = prefixCode{sym: c.sym, val: reverseBits(code, uint(c.len)), len: c.len}
		code++
	}
}

// WriteSymbol writes sym's canonical code to bw.
func (pe *prefixEncoder) WriteSymbol(bw *bitWriter, sym uint) {
	c := pe.codes[sym]
	bw.writeBits(uint64(c.val), uint(c.len))
}

// Len reports the number of bits needed to write sym.
func (pe *prefixEncoder) Len(sym uint) uint {
	return uint(pe.codes[sym].len)
}

func extendPrefixCodes(s []prefixCode, n int) []prefixCode {
	if cap(s) >= n {
		return s[:n]
	}
	return append(s[:cap(s)], make([]prefixCode, n-cap(s))...)
}

// buildHuffmanLengths computes canonical code lengths for the given symbol
// frequencies, bounded by maxLen. It follows the two-phase, heap-free,
// in-place construction of Moffat and Katajainen: phase one folds the
// sorted frequency array bottom-up into a parent-pointer tree encoded in
// place, phase two walks the tree top-down to recover per-leaf depths.
//
// Brotli's own trees can legally exceed maxLen for pathological
// frequencies (a single very common symbol alongside many rare ones), so
// on overflow every frequency is floored to a rising countLimit and the
// tree is rebuilt; flooring trades a little compression for guaranteeing
// the depth bound holds.
func buildHuffmanLengths(freqs []uint32, maxLen uint8) []uint8 {
	lengths := make([]uint8, len(freqs))

	type leaf struct {
		sym  int
		freq uint32
	}
	var leaves []leaf
	for s, f := range freqs {
		if f > 0 {
			leaves = append(leaves, leaf{s, f})
		}
	}
	switch len(leaves) {
	case 0:
		return lengths
	case 1:
		// A lone symbol gets a 1-bit code, paired with a neighbouring unused
		// symbol so that the code space is exactly filled.
		sym := leaves[0].sym
		lengths[sym] = 1
		if sym+1 < len(lengths) {
			lengths[sym+1] = 1
		} else {
			lengths[sym-1] = 1
		}
		return lengths
	}

	for countLimit := uint32(1); ; countLimit *= 2 {
		data := make([]int, len(leaves))
		for i, lf := range leaves {
			f := lf.freq
			if f < countLimit {
				f = countLimit
			}
			data[i] = int(f)
		}
		sort.Slice(data, func(i, j int) bool { return data[i] < data[j] })

		huffmanSizesPhase1(data)
		huffmanSizesPhase2(data)

		maxDepth := 0
		for _, d := range data {
			if d > maxDepth {
				maxDepth = d
			}
		}
		if maxDepth <= int(maxLen) || countLimit > 1<<24 {
			// Recompute against leaves sorted in the same frequency order
			// used above so depths line up with the correct symbol.
			order := make([]int, len(leaves))
			for i := range order {
				order[i] = i
			}
			sort.Slice(order, func(i, j int) bool {
				fi, fj := leaves[order[i]].freq, leaves[order[j]].freq
				if fi < countLimit {
					fi = countLimit
				}
				if fj < countLimit {
					fj = countLimit
				}
				return fi < fj
			})
			for i, idx := range order {
				lengths[leaves[idx].sym] = uint8(data[i])
			}
			return lengths
		}
	}
}

// huffmanSizesPhase1 folds a frequency-sorted array into parent pointers,
// in place: data must be sorted ascending on entry.
func huffmanSizesPhase1(data []int) {
	n := len(data)
	for s, r, t := 0, 0, 0; t < n-1; t++ {
		sum := 0
		for i := 0; i < 2; i++ {
			if s >= n || (r < t && data[r] < data[s]) {
				sum += data[r]
				data[r] = t
				r++
			} else {
				sum += data[s]
				if s > t {
					data[s] = 0
				}
				s++
			}
		}
		data[t] = sum
	}
}

// huffmanSizesPhase2 walks the parent-pointer tree built by phase 1
// top-down, replacing each entry with its leaf depth.
func huffmanSizesPhase2(data []int) {
	n := len(data)
	if n == 0 {
		return
	}
	levelTop := n - 2
	depth := 1
	i := n
	totalNodesAtLevel := 2
	for i > 0 {
		k := levelTop
		for k > 0 && data[k-1] >= levelTop {
			k--
		}
		internalNodesAtLevel := levelTop - k
		leavesAtLevel := totalNodesAtLevel - internalNodesAtLevel
		for j := 0; j < leavesAtLevel; j++ {
			i--
			data[i] = depth
		}
		totalNodesAtLevel = internalNodesAtLevel << 1
		levelTop = k
		depth++
	}
}
