// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import (
	"bytes"
	"io/ioutil"
	"strings"
	"testing"
)

func roundTrip(t *testing.T, name string, input []byte) {
	t.Helper()

	var buf bytes.Buffer
	zw := NewWriter(&buf)
	if _, err := zw.Write(input); err != nil {
		t.Fatalf("%s: Write error: %v", name, err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("%s: Close error: %v", name, err)
	}

	zr := NewReader(bytes.NewReader(buf.Bytes()))
	got, err := ioutil.ReadAll(zr)
	if err != nil {
		t.Fatalf("%s: decode error: %v", name, err)
	}
	if !bytes.Equal(got, input) {
		t.Errorf("%s: round trip mismatch:\ngot  %q\nwant %q", name, got, input)
	}
}

func TestWriterRoundTrip(t *testing.T) {
	vectors := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"single byte", []byte("x")},
		{"short text", []byte("hello, world")},
		{"repeated run", bytes.Repeat([]byte("ab"), 200)},
		{"long repeat with tail", append(bytes.Repeat([]byte("the quick brown fox "), 50), []byte("done")...)},
		{"binary-ish", []byte{0, 1, 2, 3, 0xff, 0xfe, 0, 0, 0, 1, 2, 3}},
		{"all same byte", bytes.Repeat([]byte{'z'}, 4096)},
		{"lorem", []byte(strings.Repeat("the rain in spain falls mainly on the plain. ", 30))},
	}
	for _, v := range vectors {
		roundTrip(t, v.name, v.data)
	}
}

func TestWriterMultipleWrites(t *testing.T) {
	var buf bytes.Buffer
	zw := NewWriter(&buf)
	parts := []string{"one two three ", "four five six ", "one two three again"}
	var want bytes.Buffer
	for _, p := range parts {
		want.WriteString(p)
		if _, err := zw.Write([]byte(p)); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	got, err := ioutil.ReadAll(NewReader(bytes.NewReader(buf.Bytes())))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !bytes.Equal(got, want.Bytes()) {
		t.Errorf("round trip mismatch:\ngot  %q\nwant %q", got, want.Bytes())
	}
}

func TestWriterCloseIdempotent(t *testing.T) {
	var buf bytes.Buffer
	zw := NewWriter(&buf)
	zw.Write([]byte("abc"))
	if err := zw.Close(); err != nil {
		t.Fatalf("first Close error: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Errorf("second Close returned error: %v", err)
	}
}

func TestNewWriterLevelInvalid(t *testing.T) {
	var buf bytes.Buffer
	if _, err := NewWriterLevel(&buf, 12); err == nil {
		t.Error("expected error for out-of-range quality level")
	}
	if _, err := NewWriterLevel(&buf, -2); err == nil {
		t.Error("expected error for out-of-range quality level")
	}
}

func TestWriterQualityTiers(t *testing.T) {
	data := bytes.Repeat([]byte("mississippi river "), 40)
	for _, q := range []int{BestSpeed, 3, 5, 9, BestCompression} {
		var buf bytes.Buffer
		zw, err := NewWriterLevel(&buf, q)
		if err != nil {
			t.Fatalf("quality %d: NewWriterLevel error: %v", q, err)
		}
		zw.Write(data)
		if err := zw.Close(); err != nil {
			t.Fatalf("quality %d: Close error: %v", q, err)
		}
		got, err := ioutil.ReadAll(NewReader(bytes.NewReader(buf.Bytes())))
		if err != nil {
			t.Fatalf("quality %d: decode error: %v", q, err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("quality %d: round trip mismatch", q)
		}
	}
}

func TestWriterWindowSize(t *testing.T) {
	var buf bytes.Buffer
	zw := NewWriter(&buf)
	if err := zw.SetWindowSize(9); err == nil {
		t.Error("expected error for window size below minimum")
	}
	if err := zw.SetWindowSize(18); err != nil {
		t.Fatalf("SetWindowSize error: %v", err)
	}
	data := bytes.Repeat([]byte("window size test data "), 100)
	zw.Write(data)
	if err := zw.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	got, err := ioutil.ReadAll(NewReader(bytes.NewReader(buf.Bytes())))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("round trip mismatch with non-default window size")
	}
}
