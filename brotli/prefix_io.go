// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

// readPrefixCode reads one prefix code definition for an alphabet of the
// given size, per RFC section 3.4/3.5, and installs it into pd.
func readPrefixCode(br *bitReader, pd *prefixDecoder, alphabetSize int) error {
	if br.readFewBits(1) == 1 {
		return readSimplePrefixCode(br, pd, alphabetSize)
	}
	return readComplexPrefixCode(br, pd, alphabetSize)
}

// symbolBitWidth returns the number of bits needed to address any symbol
// in an alphabet of the given size.
func symbolBitWidth(alphabetSize int) uint {
	nb := uint(0)
	for 1<<nb < alphabetSize {
		nb++
	}
	return nb
}

// readSimplePrefixCode implements RFC section 3.4: a code over at most
// four explicitly listed symbols.
func readSimplePrefixCode(br *bitReader, pd *prefixDecoder, alphabetSize int) error {
	nsym := int(br.readFewBits(2)) + 1
	width := symbolBitWidth(alphabetSize)

	syms := make([]uint16, nsym)
	for i := range syms {
		syms[i] = uint16(br.readBits(width))
		if int(syms[i]) >= alphabetSize {
			return errMalformedHuffman
		}
	}

	var lens []uint
	switch nsym {
	case 1:
		lens = simpleLens1[:]
	case 2:
		lens = simpleLens2[:]
	case 3:
		lens = simpleLens3[:]
	case 4:
		if br.readFewBits(1) == 1 {
			lens = simpleLens4b[:]
		} else {
			lens = simpleLens4a[:]
		}
	}

	codes := make([]prefixCode, nsym)
	for i, s := range syms {
		codes[i] = prefixCode{sym: s, len: uint8(lens[i])}
	}
	sortPrefixCodesBySymbol(codes)
	for i := 1; i < len(codes); i++ {
		if codes[i].sym == codes[i-1].sym {
			return errMalformedHuffman
		}
	}
	pd.Init(codes, true)
	return nil
}

func sortPrefixCodesBySymbol(codes []prefixCode) {
	for i := 1; i < len(codes); i++ {
		for j := i; j > 0 && codes[j].sym < codes[j-1].sym; j-- {
			codes[j], codes[j-1] = codes[j-1], codes[j]
		}
	}
}

// readComplexPrefixCode implements RFC section 3.5: code lengths for the
// target alphabet are themselves prefix-coded through an 18-symbol
// code-length alphabet (0..15 literal lengths, 16 repeats the previous
// nonzero length, 17 repeats a zero length), whose own lengths are read
// through the fixed 6-value code-length-of-code-length code (codeCLens).
func readComplexPrefixCode(br *bitReader, pd *prefixDecoder, alphabetSize int) error {
	hskip := int(br.readFewBits(2))

	var clLens [18]uint8
	spaceUsed := 0
	numNonzero := 0
	for i := hskip; i < 18 && spaceUsed < 32; i++ {
		v := br.readSymbol(&decCLens)
		idx := complexLens[i]
		clLens[idx] = uint8(v)
		if v != 0 {
			numNonzero++
			spaceUsed += 32 >> v
			if numNonzero == 1 && spaceUsed == 32 {
				break
			}
		}
	}

	var clCodes []prefixCode
	for sym, l := range clLens {
		if l > 0 {
			clCodes = append(clCodes, prefixCode{sym: uint16(sym), len: l})
		}
	}
	if len(clCodes) == 0 {
		return errMalformedHuffman
	}
	var lenDecoder prefixDecoder
	lenDecoder.Init(clCodes, true)

	lens := make([]uint8, alphabetSize)
	var prevLen uint8 = 8
	i := 0
	for i < alphabetSize {
		sym := br.readSymbol(&lenDecoder)
		switch {
		case sym < 16:
			lens[i] = uint8(sym)
			i++
			if sym != 0 {
				prevLen = uint8(sym)
			}
		case sym == 16:
			extra := br.readFewBits(2)
			rep := int(extra) + 3
			if i == 0 {
				return errMalformedHuffman
			}
			for j := 0; j < rep && i < alphabetSize; j++ {
				lens[i] = prevLen
				i++
			}
		default: // sym == 17
			extra := br.readFewBits(3)
			rep := int(extra) + 3
			for j := 0; j < rep && i < alphabetSize; j++ {
				lens[i] = 0
				i++
			}
		}
	}

	codes := make([]prefixCode, 0, alphabetSize)
	for sym, l := range lens {
		if l > 0 {
			codes = append(codes, prefixCode{sym: uint16(sym), len: l})
		}
	}
	if len(codes) == 0 {
		return errMalformedHuffman
	}
	pd.Init(codes, true)
	return nil
}

// writePrefixCode writes a complex prefix code definition for the symbol
// lengths in lens, mirroring readComplexPrefixCode. It always emits the
// complex form: the simple form is a size optimization for very small
// alphabets that this encoder does not special-case.
func writePrefixCode(bw *bitWriter, lens []uint8) {
	bw.writeBits(0, 1) // complex prefix code marker

	clCounts := make([]uint32, 18)
	encodeLengths(lens, func(sym uint8, _ int) {
		clCounts[sym]++
	})
	clLens := buildHuffmanLengths(clCounts, 5)

	bw.writeBits(0, 2) // hskip=0: code-length-code lengths start at complexLens[0]
	var clCodes []prefixCode
	for sym, l := range clLens {
		clCodes = append(clCodes, prefixCode{sym: uint16(sym), len: l})
	}
	var clEnc prefixEncoder
	clEnc.Init(clCodes)
	// The reader stops once the code space is full, so nothing is written
	// past the last nonzero code-length-code length.
	numCL := 18
	for numCL > 0 && clLens[complexLens[numCL-1]] == 0 {
		numCL--
	}
	for i := 0; i < numCL; i++ {
		sym := complexLens[i]
		encCLens.WriteSymbol(bw, uint(clLens[sym]))
	}

	var lenEnc prefixEncoder
	lenEnc.Init(clCodes)
	encodeLengths(lens, func(sym uint8, extra int) {
		lenEnc.WriteSymbol(bw, uint(sym))
		switch sym {
		case 16:
			bw.writeBits(uint64(extra), 2)
		case 17:
			bw.writeBits(uint64(extra), 3)
		}
	})
}

// encodeLengths walks lens and invokes emit once per code-length symbol
// emitted (0..15 literal, 16 repeat-previous, 17 repeat-zero), following
// the same repeat-grouping rules readComplexPrefixCode expects.
func encodeLengths(lens []uint8, emit func(sym uint8, extra int)) {
	i := 0
	for i < len(lens) {
		l := lens[i]
		total := 1
		for i+total < len(lens) && lens[i+total] == l {
			total++
		}
		remaining := total
		if l == 0 {
			for remaining > 0 {
				if remaining < 3 {
					emit(0, 0)
					remaining--
					continue
				}
				n := remaining
				if n > 10 {
					n = 10
				}
				emit(17, n-3)
				remaining -= n
			}
		} else {
			emit(l, 0)
			remaining--
			for remaining > 0 {
				if remaining < 3 {
					emit(l, 0)
					remaining--
					continue
				}
				n := remaining
				if n > 6 {
					n = 6
				}
				emit(16, n-3)
				remaining -= n
			}
		}
		i += total
	}
}
