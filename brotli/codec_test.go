// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import (
	"bytes"
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte("a"),
		[]byte("the quick brown fox jumps over the lazy dog"),
		bytes.Repeat([]byte("compress me please "), 100),
	}
	for i, in := range inputs {
		out, err := Encode(in, nil)
		if err != nil {
			t.Fatalf("case %d: Encode error: %v", i, err)
		}
		got, err := Decode(out, nil)
		if err != nil {
			t.Fatalf("case %d: Decode error: %v", i, err)
		}
		if !bytes.Equal(got, in) {
			t.Errorf("case %d: round trip mismatch:\ngot  %q\nwant %q", i, got, in)
		}
	}
}

func TestEncodeOptions(t *testing.T) {
	in := bytes.Repeat([]byte("abcdefgh"), 500)
	out, err := Encode(in, &EncodeOptions{Quality: BestSpeed, LgWin: 20, Mode: ModeText})
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	got, err := Decode(out, nil)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if !bytes.Equal(got, in) {
		t.Error("round trip mismatch with explicit options")
	}
}

func TestDecodeMaxOutputSize(t *testing.T) {
	in := bytes.Repeat([]byte("x"), 1000)
	out, err := Encode(in, nil)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if _, err := Decode(out, &DecodeOptions{MaxOutputSize: 10}); err == nil {
		t.Error("expected error when decoded size exceeds MaxOutputSize")
	}
	got, err := Decode(out, &DecodeOptions{MaxOutputSize: len(in)})
	if err != nil {
		t.Fatalf("Decode with exact limit error: %v", err)
	}
	if !bytes.Equal(got, in) {
		t.Error("round trip mismatch with MaxOutputSize set to exact size")
	}
}

func TestDecodedSize(t *testing.T) {
	in := []byte("a single small meta-block")
	out, err := Encode(in, nil)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if n := DecodedSize(out); n != len(in) {
		t.Errorf("DecodedSize: got %d, want %d", n, len(in))
	}

	big := bytes.Repeat([]byte("y"), maxMetablockLen+16)
	outBig, err := Encode(big, nil)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if n := DecodedSize(outBig); n != -1 {
		t.Errorf("DecodedSize for multi-meta-block stream: got %d, want -1", n)
	}
}

func TestDecodedSizeEmpty(t *testing.T) {
	out, err := Encode(nil, nil)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if n := DecodedSize(out); n != 0 {
		t.Errorf("DecodedSize of empty stream: got %d, want 0", n)
	}
}

func TestEncoderUpdateFinish(t *testing.T) {
	e := NewEncoder(nil)
	if _, err := e.Update([]byte("hello, ")); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if _, err := e.Update([]byte("world")); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	out, err := e.Finish()
	if err != nil {
		t.Fatalf("Finish error: %v", err)
	}
	got, err := Decode(out, nil)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if string(got) != "hello, world" {
		t.Errorf("got %q, want %q", got, "hello, world")
	}
}
