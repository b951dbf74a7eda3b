// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import "runtime"

// Error is the wrapper type for errors specific to this library.
type Error string

func (e Error) Error() string { return "brotli: " + string(e) }

// Sentinel errors returned by the decoder. Each corresponds to one of the
// fault classes in the format's error taxonomy; callers that care about the
// specific failure reason can compare against these with errors.Is.
var (
	ErrCorrupt = Error("stream is corrupted")

	errMalformedHeader    = Error("malformed stream header")
	errMalformedMetablock = Error("malformed meta-block header")
	errMalformedContext   = Error("malformed context map")
	errMalformedHuffman   = Error("malformed prefix code")
	errInvalidDistance    = Error("invalid backward distance")
	errInvalidCopyLength  = Error("invalid copy length")
	errPadNonZero         = Error("non-zero padding bits")
	errInputUnderflow     = Error("unexpected end of input")
	errAPIMisuse          = Error("operation invoked in invalid state")
	errExcessiveOutput    = Error("decoded output exceeds requested maximum size")
)

func errRecover(err *error) {
	switch ex := recover().(type) {
	case nil:
		// Do nothing.
	case runtime.Error:
		panic(ex)
	case error:
		*err = ex
	default:
		panic(ex)
	}
}
