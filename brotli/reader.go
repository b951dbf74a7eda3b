// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import "io"

// blockTracker decodes one of the three RFC section 6 block-category
// streams (literal, insert-copy, distance): it tracks the current block
// type and how many more symbols belong to it before the next type/length
// pair must be read.
type blockTracker struct {
	numTypes int
	typeDec  prefixDecoder
	lenDec   prefixDecoder
	curType  int
	prevType int
	length   int
}

func (bt *blockTracker) initTrivial() {
	bt.numTypes = 1
	bt.curType = 0
	bt.length = 1 << 28
}

func (bt *blockTracker) initDynamic(br *bitReader, numTypes int) error {
	bt.numTypes = numTypes
	bt.curType = 0
	bt.prevType = 1
	alphabet := numTypes + 2
	if err := readPrefixCode(br, &bt.typeDec, alphabet); err != nil {
		return err
	}
	if err := readPrefixCode(br, &bt.lenDec, numBlkCntSyms); err != nil {
		return err
	}
	lenSym := br.readSymbol(&bt.lenDec)
	n, err := blkLenRanges.decode(br, int(lenSym))
	if err != nil {
		return err
	}
	bt.length = int(n)
	return nil
}

// advance must be called whenever bt.length has reached zero; it reads the
// next block type and refills bt.length.
func (bt *blockTracker) advance(br *bitReader) error {
	sym := br.readSymbol(&bt.typeDec)
	var newType int
	switch sym {
	case 0:
		newType = bt.prevType
	case 1:
		newType = bt.curType + 1
	default:
		newType = int(sym) - 2
	}
	bt.prevType = bt.curType
	bt.curType = newType % bt.numTypes
	lenSym := br.readSymbol(&bt.lenDec)
	n, err := blkLenRanges.decode(br, int(lenSym))
	if err != nil {
		return err
	}
	bt.length = int(n)
	return nil
}

func (bt *blockTracker) take(br *bitReader) (int, error) {
	if bt.length == 0 && bt.numTypes > 1 {
		if err := bt.advance(br); err != nil {
			return 0, err
		}
	}
	bt.length--
	return bt.curType, nil
}

// metablock holds all state parsed from one compressed meta-block's header,
// per RFC section 9.2, needed to run the command loop.
type metablock struct {
	litBlocks  blockTracker
	cmdBlocks  blockTracker
	distBlocks blockTracker

	litCtxModes []uint8
	litCtxMap   []byte
	litTrees    []prefixDecoder

	distCtxMap []byte
	distTrees  []prefixDecoder

	cmdTrees []prefixDecoder

	npostfix int
	ndirect  int
}

// Reader decodes a Brotli stream, per RFC 7932.
type Reader struct {
	InputOffset  int64
	OutputOffset int64

	rd   bitReader
	step func(*Reader)

	ring  ringBuffer
	wbits uint

	mb      metablock
	blkLen  int
	last    bool
	lastDist distanceRing
	compound compoundDict

	// command-loop resumption state
	insertRemaining     int
	copyRemaining       int
	copyDistance        int
	usingDict           bool
	dictBuf             [maxWordSize]byte
	prevByte1      byte
	prevByte2      byte
	pendingDistCtx int
	pendingReuse   bool

	toRead []byte
	err    error
}

func NewReader(r io.Reader) *Reader {
	zr := new(Reader)
	zr.Reset(r)
	return zr
}

// AttachDictionary attaches compound-dictionary bytes before decoding, per
// RFC section 4.5. It must be called before the stream header is parsed
// (i.e. immediately after NewReader/Reset).
func (zr *Reader) AttachDictionary(data []byte) error {
	return zr.compound.attach(data)
}

func (zr *Reader) Read(buf []byte) (int, error) {
	for {
		if len(zr.toRead) > 0 {
			cnt := copy(buf, zr.toRead)
			zr.toRead = zr.toRead[cnt:]
			zr.OutputOffset += int64(cnt)
			return cnt, nil
		}
		if zr.err != nil {
			return 0, zr.err
		}
		func() {
			defer errRecover(&zr.err)
			zr.step(zr)
		}()
		zr.InputOffset = zr.rd.offset
		if zr.err != nil && len(zr.toRead) == 0 {
			zr.toRead = zr.ring.readFlush()
		}
	}
}

func (zr *Reader) Close() error {
	if zr.err == io.EOF || zr.err == io.ErrClosedPipe {
		return nil
	}
	err := zr.err
	zr.err = io.ErrClosedPipe
	return err
}

func (zr *Reader) Reset(r io.Reader) error {
	compound := zr.compound
	*zr = Reader{step: (*Reader).readStreamHeader, compound: compound, lastDist: newDistanceRing()}
	zr.rd.init(r)
	return nil
}

// readStreamHeader reads WBITS, per RFC section 9.1.
func (zr *Reader) readStreamHeader() {
	var wbits uint
	if zr.rd.readFewBits(1) != 1 {
		wbits = 16
	} else if val := zr.rd.readFewBits(3); val != 0 {
		wbits = 18 + uint(val-1)
	} else if val := zr.rd.readFewBits(3); val != 1 {
		if val == 0 {
			val = 9
		}
		wbits = 10 + uint(val-2)
	} else {
		panic(errMalformedHeader)
	}
	zr.wbits = wbits
	zr.ring.init(wbits)
	zr.step = (*Reader).readBlockHeader
}

func (zr *Reader) readBlockHeader() {
	if zr.last {
		zr.rd.alignToByte()
		zr.err = io.EOF
		return
	}

	if zr.last = zr.rd.readFewBits(1) == 1; zr.last {
		if empty := zr.rd.readFewBits(1) == 1; empty {
			zr.step = (*Reader).readBlockHeader
			return
		}
	}

	var blkLen int
	if nibbles := zr.rd.readFewBits(2) + 4; nibbles == 7 {
		if zr.rd.readFewBits(1) == 1 {
			panic(errMalformedMetablock)
		}
		var skipLen int
		if skipBytes := zr.rd.readFewBits(2); skipBytes > 0 {
			skipLen = int(zr.rd.readBits(uint(skipBytes) * 8))
			if skipBytes > 1 && skipLen>>((skipBytes-1)*8) == 0 {
				panic(errMalformedMetablock)
			}
			skipLen++
		}
		zr.rd.alignToByte()
		scratch := make([]byte, skipLen)
		zr.rd.copyRawBytes(scratch)
		zr.step = (*Reader).readBlockHeader
		return
	} else {
		blkLen = int(zr.rd.readBits(uint(nibbles) * 4))
		if nibbles > 4 && blkLen>>((nibbles-1)*4) == 0 {
			panic(errMalformedMetablock)
		}
		blkLen++
	}
	zr.blkLen = blkLen

	if zr.rd.readFewBits(1) == 1 {
		zr.rd.alignToByte()
		zr.step = (*Reader).readRawData
		return
	}

	zr.readMetablockHeader()
	zr.insertRemaining = 0
	zr.copyRemaining = 0
	zr.step = (*Reader).readCommandLoop
}

func (zr *Reader) readRawData() {
	for zr.blkLen > 0 {
		n := minInt(zr.blkLen, zr.ring.availSize())
		chunk := zr.ring.buf[zr.ring.idx(zr.ring.pos) : zr.ring.idx(zr.ring.pos)+n]
		zr.rd.copyRawBytes(chunk)
		zr.ring.pos += n
		zr.blkLen -= n
		if zr.ring.availSize() == 0 {
			zr.toRead = zr.ring.readFlush()
			zr.step = (*Reader).readRawData
			return
		}
	}
	zr.step = (*Reader).readBlockHeader
}

// readMetablockHeader implements RFC section 9.2's compressed meta-block
// header: block-type/length codes for the three categories, NPOSTFIX and
// NDIRECT, per-literal-block-type context modes, the two context maps, and
// the literal/insert-copy/distance prefix code arrays.
func (zr *Reader) readMetablockHeader() {
	br := &zr.rd
	mb := &zr.mb
	*mb = metablock{}

	numLitTypes := zr.readBlockCategory(&mb.litBlocks)
	numCmdTypes := zr.readBlockCategory(&mb.cmdBlocks)
	numDistTypes := zr.readBlockCategory(&mb.distBlocks)

	mb.npostfix = int(br.readFewBits(2))
	ndirectBits := int(br.readFewBits(4))
	mb.ndirect = ndirectBits << uint(mb.npostfix)

	mb.litCtxModes = make([]uint8, numLitTypes)
	for i := range mb.litCtxModes {
		mb.litCtxModes[i] = uint8(br.readFewBits(2))
	}

	mb.litCtxMap, mb.litTrees = zr.readContextMapAndTrees(numLitTypes, numLiteralContexts, numLitSyms)
	mb.distCtxMap, mb.distTrees = zr.readContextMapAndTrees(numDistTypes, numDistContexts, maxNumDistSyms)

	mb.cmdTrees = make([]prefixDecoder, numCmdTypes)
	for i := range mb.cmdTrees {
		if err := readPrefixCode(br, &mb.cmdTrees[i], numInsSyms); err != nil {
			panic(err)
		}
	}
}

func (zr *Reader) readBlockCategory(bt *blockTracker) int {
	n := int(zr.rd.readSymbol(&decCounts))
	if n < 1 {
		panic(errMalformedMetablock)
	}
	if n == 1 {
		bt.initTrivial()
		return 1
	}
	if err := bt.initDynamic(&zr.rd, n); err != nil {
		panic(err)
	}
	return n
}

func (zr *Reader) readContextMapAndTrees(numBlockTypes, ctxPerType, symAlphabet int) ([]byte, []prefixDecoder) {
	var ctxMap []byte
	numTrees := 1
	if numBlockTypes == 1 {
		ctxMap = make([]byte, ctxPerType)
	} else {
		var err error
		ctxMap, numTrees, err = decodeContextMap(&zr.rd, numBlockTypes*ctxPerType)
		if err != nil {
			panic(err)
		}
	}
	trees := make([]prefixDecoder, numTrees)
	for i := range trees {
		if err := readPrefixCode(&zr.rd, &trees[i], symAlphabet); err != nil {
			panic(err)
		}
	}
	return ctxMap, trees
}

// readCommandLoop is the fused command/literal/copy phase described in RFC
// section 9.2: for each command, emit insertLen literals then perform a
// copy, suspending at ring-buffer and metablock boundaries.
func (zr *Reader) readCommandLoop() {
	br := &zr.rd
	mb := &zr.mb

	for {
		if zr.usingDict {
			goto copyFromDict
		}
		if zr.insertRemaining > 0 {
			goto doInsert
		}
		if zr.copyRemaining > 0 {
			goto doCopy
		}
		if zr.blkLen <= 0 {
			zr.step = (*Reader).readBlockHeader
			return
		}

		{
			cmdType, err := zr.cmdBlockType()
			if err != nil {
				panic(err)
			}
			cmdSym := br.readSymbol(&mb.cmdTrees[cmdType])
			if int(cmdSym) >= len(cmdLUT) {
				panic(errMalformedMetablock)
			}
			entry := cmdLUT[cmdSym]
			insExtra, err := insLenRanges.decode(br, int(entry.insSym))
			if err != nil {
				panic(err)
			}
			cpyExtra, err := cpyLenRanges.decode(br, int(entry.cpySym))
			if err != nil {
				panic(err)
			}
			zr.insertRemaining = int(insExtra)
			zr.copyRemaining = int(cpyExtra)
			zr.pendingDistCtx = int(entry.distCtx)
			zr.pendingReuse = entry.reuse
		}

	doInsert:
		for zr.insertRemaining > 0 {
			if zr.blkLen <= 0 {
				panic(errMalformedMetablock)
			}
			if zr.ring.availSize() == 0 {
				zr.toRead = zr.ring.readFlush()
				zr.step = (*Reader).readCommandLoop
				return
			}
			litType, err := zr.litBlockType()
			if err != nil {
				panic(err)
			}
			mode := mb.litCtxModes[litType]
			ctx := literalContext(mode, zr.prevByte1, zr.prevByte2)
			treeIdx := mb.litCtxMap[litType*numLiteralContexts+int(ctx)]
			sym := br.readSymbol(&mb.litTrees[treeIdx])
			zr.ring.writeByte(byte(sym))
			zr.prevByte2 = zr.prevByte1
			zr.prevByte1 = byte(sym)
			zr.insertRemaining--
			zr.blkLen--
			if zr.blkLen == 0 && zr.insertRemaining > 0 {
				// RFC: insert length may legally exceed the remaining
				// meta-block length only on the final command, which ends
				// the meta-block outright.
				zr.insertRemaining = 0
				zr.copyRemaining = 0
				zr.step = (*Reader).readBlockHeader
				return
			}
		}

		if zr.copyRemaining == 0 {
			continue
		}
		if zr.blkLen <= 0 {
			zr.copyRemaining = 0
			zr.step = (*Reader).readBlockHeader
			return
		}

		if zr.pendingReuse {
			// cmdPrefix < 128: the command implicitly reuses the last
			// distance, so no distance code follows in the bitstream.
			zr.copyDistance = zr.lastDist.last()
		} else {
			distType, err := zr.distBlockType()
			if err != nil {
				panic(err)
			}
			treeIdx := mb.distCtxMap[distType*numDistContexts+zr.pendingDistCtx]
			sym := br.readSymbol(&mb.distTrees[treeIdx])
			dist := zr.decodeDistance(int(sym))
			zr.lastDist.push(dist)
			zr.copyDistance = dist
		}

	doCopy:
		if zr.copyDistance > minInt(zr.ring.pos, (1<<zr.wbits)-16) {
			zr.usingDict = true
			goto copyFromDict
		}
		{
			residual := zr.ring.writeCopy(zr.copyDistance, zr.copyRemaining)
			done := zr.copyRemaining - residual
			zr.blkLen -= done
			zr.copyRemaining = residual
			if zr.blkLen < 0 {
				panic(errMalformedMetablock)
			}
			if residual > 0 || zr.ring.availSize() == 0 {
				zr.toRead = zr.ring.readFlush()
				zr.step = (*Reader).readCommandLoop
				return
			}
		}
		continue

	copyFromDict:
		if zr.copyRemaining > 31 {
			panic(errInvalidCopyLength)
		}
		address := uint32(zr.copyDistance - minInt(zr.ring.pos, (1<<zr.wbits)-16) - 1)
		if address < zr.compound.total {
			n, err := zr.compound.copy(zr.dictBuf[:zr.copyRemaining], address, zr.copyRemaining)
			if err != nil {
				panic(err)
			}
			zr.ring.writeSlice(zr.dictBuf[:n])
			zr.blkLen -= n
		} else {
			wordAddr := address - zr.compound.total
			n, err := staticDictLookup(zr.dictBuf[:], zr.copyRemaining, wordAddr)
			if err != nil {
				panic(err)
			}
			zr.ring.writeSlice(zr.dictBuf[:n])
			zr.blkLen -= n
		}
		zr.copyRemaining = 0
		zr.usingDict = false
		if zr.ring.availSize() == 0 {
			zr.toRead = zr.ring.readFlush()
			zr.step = (*Reader).readCommandLoop
			return
		}
	}
}

func (zr *Reader) decodeDistance(sym int) int {
	mb := &zr.mb
	switch {
	case sym < 16:
		return zr.lastDist.resolve(sym)
	case sym < 16+mb.ndirect:
		return sym - 16 + 1
	default:
		idx := sym - 16 - mb.ndirect
		postfix := idx & (1<<uint(mb.npostfix) - 1)
		bucket := idx >> uint(mb.npostfix)
		nbits := uint(bucket>>1) + 1
		if mb.npostfix == 0 {
			nbits = uint(bucket/2) + 1
		}
		base := ((2 + bucket&1) << nbits) - 4
		extra := zr.rd.readManyBits(minUint(nbits, 24))
		return int(uint32(base)<<uint(mb.npostfix)) + postfix + int(extra)<<uint(mb.npostfix) + mb.ndirect + 1
	}
}

func minUint(a, b uint) uint {
	if a < b {
		return a
	}
	return b
}

func (zr *Reader) cmdBlockType() (int, error)  { return zr.mb.cmdBlocks.take(&zr.rd) }
func (zr *Reader) litBlockType() (int, error)  { return zr.mb.litBlocks.take(&zr.rd) }
func (zr *Reader) distBlockType() (int, error) { return zr.mb.distBlocks.take(&zr.rd) }
