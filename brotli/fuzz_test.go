// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/compress-go/brotli/internal/testutil"
)

// rampBytes returns a length-n sequence of strictly increasing bytes modulo
// 256, the "ramp pattern" input the round-trip fuzz property calls for
// alongside pseudo-random bytes.
func rampBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func TestFuzzRoundTrip(t *testing.T) {
	sizes := []int{0, 1, 2, 3, 4, 7, 15, 31, 63, 64, 65, 127, 255, 256, 257, 511, 1024, 2048}
	qualities := []int{BestSpeed, 1, 3, 5, 9, BestCompression}

	for seed := 0; seed < 8; seed++ {
		rnd := testutil.NewRand(seed)
		for _, n := range sizes {
			inputs := map[string][]byte{
				"random": rnd.Bytes(n),
				"ramp":   rampBytes(n),
			}
			for kind, in := range inputs {
				for _, q := range qualities {
					out, err := Encode(in, &EncodeOptions{Quality: q})
					if err != nil {
						t.Fatalf("seed %d, size %d, %s, quality %d: Encode error: %v", seed, n, kind, q, err)
					}
					got, err := Decode(out, nil)
					if err != nil {
						t.Fatalf("seed %d, size %d, %s, quality %d: Decode error: %v", seed, n, kind, q, err)
					}
					if !bytes.Equal(got, in) {
						t.Errorf("seed %d, size %d, %s, quality %d: round trip mismatch (-got +want):\n%s",
							seed, n, kind, q, cmp.Diff(got, in))
					}
				}
			}
		}
	}
}

// TestBitGenMalformedHeader exercises the reader's window-bits error path
// against a hand-assembled bit stream, using the same little-endian bit
// scripting format the teacher's flate and bzip2 suites rely on for
// constructing inputs a real encoder would never produce.
func TestBitGenMalformedHeader(t *testing.T) {
	// "<<<" selects little-endian bit packing (Brotli's order). The first
	// bit (1) and next 3 bits (000) select the 10..15-or-17 window-bits
	// branch; the following 3 bits (001) is the one code point
	// readStreamHeader treats as reserved in that branch.
	in := testutil.MustDecodeBitGen("<<< 1 000 001")
	_, err := Decode(in, nil)
	if err == nil {
		t.Error("expected error decoding reserved window-bits encoding")
	}
}
