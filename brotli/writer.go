// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import "io"

// Compression levels, matching the 0..11 scale RFC 7932 implementations
// conventionally expose. Only two search tiers actually exist in this
// package (see hasher.go); levels below 5 select simpleHasher, the rest
// select hashChainHasher with a quality-scaled search depth.
const (
	BestSpeed          = 0
	BestCompression    = 11
	DefaultCompression = -1
)

// maxMetablockLen bounds a single meta-block's uncompressed length so that
// its MLEN field always fits the 24-bit nibble encoding read by
// Reader.readBlockHeader; larger input is split across multiple meta-blocks.
const maxMetablockLen = 1 << 24

// Writer compresses data into the Brotli format, per RFC 7932.
//
// Each call to Close drains the input buffered since the last Reset into
// one or more meta-blocks: the encoder does not attempt to interleave
// reading and compressing the way the teacher's bzip2.Writer flushes whole
// blocks as its run-length buffer fills, since a Brotli meta-block's prefix
// codes are built from the complete symbol histogram over its contents.
// Every meta-block always carries a single block type for the literal,
// insert-and-copy, and distance categories: the block-splitting step that
// would group unrelated regions under distinct types and context maps
// (RFC section 9.2's NBLTYPES>1 path) is not implemented, trading
// compression ratio on heterogeneous input for a much simpler header.
type Writer struct {
	InputOffset  int64
	OutputOffset int64

	bw      bitWriter
	quality int
	wbits   uint
	buf     []byte
	err     error
}

func NewWriter(w io.Writer) *Writer {
	zw, _ := NewWriterLevel(w, DefaultCompression)
	return zw
}

func NewWriterLevel(w io.Writer, level int) (*Writer, error) {
	if level == DefaultCompression {
		level = 9
	}
	if level < BestSpeed || level > BestCompression {
		return nil, Error("invalid compression level")
	}
	zw := new(Writer)
	zw.quality = level
	zw.Reset(w)
	return zw, nil
}

func (zw *Writer) Reset(w io.Writer) {
	*zw = Writer{quality: zw.quality, wbits: maxWindowBits}
	zw.bw.init(w)
}

// SetWindowSize overrides the window size exponent used for the stream
// header and the decoder-side ring buffer it implies. It must be called
// before the first Write, right after NewWriter/NewWriterLevel/Reset.
func (zw *Writer) SetWindowSize(wbits uint) error {
	if wbits < minWindowBits || wbits > maxWindowBits {
		return Error("window size out of range")
	}
	zw.wbits = wbits
	return nil
}

func (zw *Writer) Write(buf []byte) (int, error) {
	if zw.err != nil {
		return 0, zw.err
	}
	zw.buf = append(zw.buf, buf...)
	zw.InputOffset += int64(len(buf))
	return len(buf), nil
}

// Close flushes all buffered input as a sequence of meta-blocks, the last of
// which carries ISLAST (empty input produces a single empty last meta-block),
// and flushes the underlying bit stream. Subsequent calls are no-ops.
func (zw *Writer) Close() error {
	if zw.err == io.ErrClosedPipe {
		return nil
	}
	func() {
		defer errRecover(&zw.err)
		zw.encodeAll()
	}()
	if zw.err != nil {
		return zw.err
	}
	func() {
		defer errRecover(&zw.err)
		zw.bw.flush()
	}()
	zw.OutputOffset = zw.bw.offset
	if zw.err != nil {
		return zw.err
	}
	zw.err = io.ErrClosedPipe
	return nil
}

func (zw *Writer) newMatchFinder() matchFinder {
	if zw.quality < 5 {
		return newSimpleHasher()
	}
	chain := 32
	if zw.quality >= 10 {
		chain = 128
	}
	return newHashChainHasher(chain)
}

func (zw *Writer) encodeAll() {
	writeWindowBits(&zw.bw, zw.wbits)

	if len(zw.buf) == 0 {
		zw.bw.writeBits(1, 1) // ISLAST
		zw.bw.writeBits(1, 1) // ISEMPTY
		return
	}

	pos := 0
	for pos < len(zw.buf) {
		n := minInt(len(zw.buf)-pos, maxMetablockLen)
		chunk := zw.buf[pos : pos+n]
		isLast := pos+n == len(zw.buf)
		zw.writeMetablock(isLast, chunk)
		pos += n
	}
}

// writeMetablock emits one compressed meta-block holding data in full,
// mirroring Reader.readBlockHeader/readMetablockHeader/readCommandLoop in
// reverse.
func (zw *Writer) writeMetablock(isLast bool, data []byte) {
	bw := &zw.bw

	bw.writeBits(boolBit(isLast), 1)
	if isLast {
		bw.writeBits(0, 1) // ISEMPTY: false, this meta-block carries data
	}
	writeMetablockLen(bw, len(data))
	bw.writeBits(0, 1) // ISUNCOMPRESSED: this writer never emits raw meta-blocks

	mf := zw.newMatchFinder()
	maxDist := (1 << zw.wbits) - 16
	cmds, literals := buildCommands(data, mf, maxDist)

	litHist := make([]uint32, numLitSyms)
	for _, b := range literals {
		litHist[b]++
	}
	ensureNonEmptyHistogram(litHist)
	litLens := buildHuffmanLengths(litHist, maxPrefixBits)
	litEnc := newEncoderFromLens(litLens)

	cmdSyms := make([]int, len(cmds))
	cmdHist := make([]uint32, numInsSyms)
	for i, c := range cmds {
		insSym, _, _ := insLenRanges.encode(c.insertLen)
		cpySym, _, _ := cpyLenRanges.encode(c.copyLen)
		sym := encodeCommandSymbol(insSym, cpySym)
		cmdSyms[i] = sym
		cmdHist[sym]++
	}
	ensureNonEmptyHistogram(cmdHist)
	cmdLens := buildHuffmanLengths(cmdHist, maxPrefixBits)
	cmdEnc := newEncoderFromLens(cmdLens)

	distHist := make([]uint32, maxNumDistSyms)
	for _, c := range cmds {
		if c.copyLen == 0 {
			continue
		}
		sym, _, _ := encodeDistance(c.distCode)
		distHist[sym]++
	}
	ensureNonEmptyHistogram(distHist)
	distLens := buildHuffmanLengths(distHist, maxPrefixBits)
	distEnc := newEncoderFromLens(distLens)

	bw.writeSymbol(&encCounts, 1) // NBLTYPESL
	bw.writeSymbol(&encCounts, 1) // NBLTYPESI
	bw.writeSymbol(&encCounts, 1) // NBLTYPESD
	bw.writeBits(0, 2)            // NPOSTFIX
	bw.writeBits(0, 4)            // NDIRECT (high bits; with NPOSTFIX=0 this is NDIRECT itself)
	bw.writeBits(uint64(contextLSB6), 2)

	writePrefixCode(bw, litLens)
	writePrefixCode(bw, distLens)
	writePrefixCode(bw, cmdLens)

	litPos := 0
	for i, c := range cmds {
		_, insExtra, insNbits := insLenRanges.encode(c.insertLen)
		_, cpyExtra, cpyNbits := cpyLenRanges.encode(c.copyLen)

		cmdEnc.WriteSymbol(bw, uint(cmdSyms[i]))
		bw.writeBits(uint64(insExtra), insNbits)
		bw.writeBits(uint64(cpyExtra), cpyNbits)

		for j := 0; j < c.insertLen; j++ {
			litEnc.WriteSymbol(bw, uint(literals[litPos]))
			litPos++
		}
		if c.copyLen > 0 {
			sym, extra, nbits := encodeDistance(c.distCode)
			distEnc.WriteSymbol(bw, uint(sym))
			bw.writeBits(uint64(extra), nbits)
		}
	}
}

// writeWindowBits is the exact inverse of Reader.readStreamHeader.
func writeWindowBits(bw *bitWriter, wbits uint) {
	switch {
	case wbits == 16:
		bw.writeBits(0, 1)
	case wbits >= 18 && wbits <= 24:
		bw.writeBits(1, 1)
		bw.writeBits(uint64(wbits-17), 3)
	case wbits == 17:
		bw.writeBits(1, 1)
		bw.writeBits(0, 3)
		bw.writeBits(0, 3)
	case wbits >= 10 && wbits <= 15:
		bw.writeBits(1, 1)
		bw.writeBits(0, 3)
		bw.writeBits(uint64(wbits-8), 3)
	default:
		panic(Error("unsupported window size"))
	}
}

// writeMetablockLen is the exact inverse of the MLEN nibble decode in
// Reader.readBlockHeader, always choosing the minimal nibble count RFC
// section 9.2's "shortest representation" rule requires.
func writeMetablockLen(bw *bitWriter, n int) {
	value := uint32(n - 1)
	var nibbles uint
	switch {
	case value>>16 == 0:
		nibbles = 4
	case value>>20 == 0:
		nibbles = 5
	default:
		nibbles = 6
	}
	bw.writeBits(uint64(nibbles-4), 2)
	bw.writeBits(uint64(value), nibbles*4)
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// ensureNonEmptyHistogram guarantees buildHuffmanLengths receives at least
// one nonzero frequency, so readComplexPrefixCode's "degenerate code with
// zero symbols" rejection never triggers for a category this meta-block
// never actually uses (e.g. a meta-block with no copies needs a distance
// tree definition anyway, since the header format is unconditional).
func ensureNonEmptyHistogram(h []uint32) {
	for _, c := range h {
		if c > 0 {
			return
		}
	}
	h[0] = 1
}

func newEncoderFromLens(lens []uint8) prefixEncoder {
	var codes []prefixCode
	for sym, l := range lens {
		if l > 0 {
			codes = append(codes, prefixCode{sym: uint16(sym), len: l})
		}
	}
	var pe prefixEncoder
	pe.Init(codes)
	return pe
}
