// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import (
	"bytes"
	"io"
	"io/ioutil"
)

// DecodeOptions configures a one-shot Decode call.
type DecodeOptions struct {
	// MaxOutputSize caps the decoded size; zero means unlimited. Exceeding
	// it aborts the decode with errExcessiveOutput rather than continuing
	// to allocate.
	MaxOutputSize int

	// CustomDictionary, if non-empty, is attached as a compound-dictionary
	// chunk before decoding begins, per RFC section 4.5.
	CustomDictionary []byte
}

// Decode decompresses a complete Brotli stream in one call.
func Decode(input []byte, opts *DecodeOptions) ([]byte, error) {
	zr := NewReader(bytes.NewReader(input))
	if opts != nil && len(opts.CustomDictionary) > 0 {
		if err := zr.AttachDictionary(opts.CustomDictionary); err != nil {
			return nil, err
		}
	}

	var r io.Reader = zr
	limit := int64(-1)
	if opts != nil && opts.MaxOutputSize > 0 {
		limit = int64(opts.MaxOutputSize)
		r = &io.LimitedReader{R: zr, N: limit + 1}
	}

	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if limit >= 0 && int64(len(data)) > limit {
		return nil, errExcessiveOutput
	}
	return data, nil
}

// DecodedSize reports the uncompressed size of input if it can be
// determined from the stream and first meta-block headers alone, without a
// full decode. It returns -1 when the stream spans more than one
// meta-block (the common case for anything produced by this package's
// Writer once input exceeds maxMetablockLen) or when the headers
// themselves are malformed.
func DecodedSize(input []byte) int {
	zr := NewReader(bytes.NewReader(input))
	size := -1
	err := func() (err error) {
		defer errRecover(&err)
		zr.step(zr) // readStreamHeader
		zr.step(zr) // readBlockHeader: sets zr.last and zr.blkLen
		switch {
		case zr.last && zr.blkLen == 0:
			size = 0
		case zr.last:
			size = zr.blkLen
		default:
			size = -1
		}
		return nil
	}()
	if err != nil {
		return -1
	}
	return size
}

// EncodeMode selects a bias for the encoder's literal context modeling, per
// RFC section 6's GENERIC/TEXT/FONT distinction. This package's encoder
// always uses a single literal context mode per meta-block (see writer.go),
// so Mode currently only documents caller intent; it does not yet change
// NPOSTFIX/NDIRECT the way FONT mode does in a full implementation.
type EncodeMode uint8

const (
	ModeGeneric EncodeMode = iota
	ModeText
	ModeFont
)

// EncodeOptions configures a one-shot Encode call or a streaming Encoder.
type EncodeOptions struct {
	// Quality is the compression level, [0,11]. Zero is a valid level
	// (BestSpeed), so a caller that wants the package default must pass
	// DefaultCompression explicitly rather than leaving this field unset.
	Quality int

	// LgWin is the window size exponent, [10,24]. Zero selects the
	// package default (22).
	LgWin uint

	Mode EncodeMode
}

// Encode compresses input in one call.
func Encode(input []byte, opts *EncodeOptions) ([]byte, error) {
	quality := DefaultCompression
	lgwin := uint(22)
	if opts != nil {
		quality = opts.Quality
		if opts.LgWin != 0 {
			lgwin = opts.LgWin
		}
	}

	var buf bytes.Buffer
	zw, err := NewWriterLevel(&buf, quality)
	if err != nil {
		return nil, err
	}
	if err := zw.SetWindowSize(lgwin); err != nil {
		return nil, err
	}
	if _, err := zw.Write(input); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encoder is a chunked front-end over Encode. Because this package's
// Writer builds each meta-block's Huffman trees from the complete symbol
// histogram of its contents (see writer.go), Update cannot emit partial
// output incrementally; it only buffers. Finish runs the actual encode
// over everything buffered so far and returns the complete stream.
type Encoder struct {
	opts EncodeOptions
	buf  bytes.Buffer
}

func NewEncoder(opts *EncodeOptions) *Encoder {
	e := &Encoder{}
	if opts != nil {
		e.opts = *opts
	}
	return e
}

// Update buffers chunk for the eventual Finish call. It always returns a
// nil byte slice; see the Encoder doc comment.
func (e *Encoder) Update(chunk []byte) ([]byte, error) {
	e.buf.Write(chunk)
	return nil, nil
}

// Finish encodes everything buffered since NewEncoder and returns the
// complete Brotli stream.
func (e *Encoder) Finish() ([]byte, error) {
	return Encode(e.buf.Bytes(), &e.opts)
}
