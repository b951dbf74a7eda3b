// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import "io"
import "io/ioutil"
import "bytes"
import "encoding/hex"
import "testing"

import "github.com/compress-go/brotli/internal/testutil"

// TestReader covers the canonical vectors list: framing-only edge cases
// (empty stream, empty last block) plus hand-assembled raw meta-blocks for
// the empty, single-byte, and "quickfox" cases. Each non-empty vector is a
// byte-exact RFC 7932 stream built the same way as the empty-block vectors
// below: WBITS, then one ISUNCOMPRESSED meta-block holding the payload
// verbatim, so decoding it never touches the command/distance Huffman path
// and instead exercises stream framing, MLEN, and raw-data copy exactly as
// a real brotli encoder's trailing raw chunk would.
func TestReader(t *testing.T) {
	var vectors = []struct {
		desc   string // Description of the test
		input  string // Test input string in hex
		output string // Expected output string in hex
		err    error  // Expected error
	}{{
		desc:   "empty string",
		input:  "",
		output: "",
		err:    io.ErrUnexpectedEOF,
	}, {
		desc:   "empty last block (padding is zero)",
		input:  "06",
		output: "",
	}, {
		desc:   "empty last block (padding is non-zero)",
		input:  "16",
		output: "",
		err:    errPadNonZero,
	}, {
		desc:   "single byte, raw meta-block",
		input:  "02002041",
		output: hex.EncodeToString([]byte("A")),
	}, {
		desc:   "quickfox, raw meta-block",
		input:  "42052054686520717569636b2062726f776e20666f78206a756d7073206f76657220746865206c617a7920646f67",
		output: hex.EncodeToString([]byte("The quick brown fox jumps over the lazy dog")),
	}}

	for i, v := range vectors {
		input, _ := hex.DecodeString(v.input)
		data, err := ioutil.ReadAll(NewReader(bytes.NewReader(input)))
		output := hex.EncodeToString(data)

		if err != v.err {
			t.Errorf("test %d (%q): got %v, want %v", i, v.desc, err, v.err)
		}
		if output != v.output {
			t.Errorf("test %d (%q):\ngot  %v\nwant %v", i, v.desc, output, v.output)
		}
	}
}

// buildRawStream hand-assembles a byte-exact RFC 7932 stream consisting of
// one ISUNCOMPRESSED meta-block per chunk, the last marked ISLAST, using
// the package's own bitWriter so the framing matches writeWindowBits and
// writeMetablockLen bit-for-bit without depending on the command/distance
// Huffman path this test suite is otherwise exercising.
func buildRawStream(chunks ...[]byte) []byte {
	var buf bytes.Buffer
	var bw bitWriter
	bw.init(&buf)
	bw.writeBits(0, 1) // WBITS: 16
	for i, chunk := range chunks {
		isLast := i == len(chunks)-1
		bw.writeBits(boolBit(isLast), 1)
		if isLast {
			bw.writeBits(0, 1) // ISLASTEMPTY: false
		}
		writeMetablockLen(&bw, len(chunk))
		bw.writeBits(1, 1) // ISUNCOMPRESSED
		bw.padToByte()
		bw.writeRawBytes(chunk)
	}
	bw.flush()
	return buf.Bytes()
}

// TestReaderMultiMetablock covers the canonical multi-metablock-stream case:
// two raw meta-blocks back to back, the first not marked ISLAST.
func TestReaderMultiMetablock(t *testing.T) {
	in := buildRawStream([]byte("Hello, "), []byte("World!"))
	data, err := ioutil.ReadAll(NewReader(bytes.NewReader(in)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := string(data), "Hello, World!"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// TestReaderLargeUncompressed covers the canonical "1 MB+ text" vector: a
// raw meta-block whose MLEN needs the 24-bit (six-nibble) width, exercising ring
// buffer wraparound in readRawData across many flushes.
func TestReaderLargeUncompressed(t *testing.T) {
	const n = 1 << 20 + 37
	text := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog\n"), n/44+1)[:n]
	in := buildRawStream(text)
	data, err := ioutil.ReadAll(NewReader(bytes.NewReader(in)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data, text) {
		t.Errorf("round trip mismatch: got %d bytes, want %d bytes", len(data), len(text))
	}
}

// TestReaderFontData covers the canonical "font data" vector with a
// deterministic pseudo-random binary payload standing in for the
// non-textual, high-entropy byte distribution typical of font tables.
func TestReaderFontData(t *testing.T) {
	data := testutil.NewRand(0).Bytes(1 << 17)
	in := buildRawStream(data)
	got, err := ioutil.ReadAll(NewReader(bytes.NewReader(in)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("round trip mismatch for font-like binary data")
	}
}
