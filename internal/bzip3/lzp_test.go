// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzip3_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cosnicolaou/bzip3/internal/bzip3"
)

func roundtripLZP(t *testing.T, src []byte) {
	t.Helper()
	lut := make([]int32, bzip3.LUTSize)
	dst := make([]byte, len(src))
	n, ok := bzip3.EncodeLZP(dst, src, lut)
	if !ok {
		t.Skip("lzp declined this input, nothing to verify")
	}

	out := make([]byte, len(src)+64)
	got := bzip3.DecodeLZP(out, dst[:n], lut)
	require.True(t, bytes.Equal(src, out[:got]), "roundtrip mismatch for %d byte input", len(src))
}

func TestLZPRoundtripRepetitive(t *testing.T) {
	src := bytes.Repeat([]byte("abcdefghijklmnopqrstuvwxyz0123456789"), 200)
	roundtripLZP(t, src)
}

func TestLZPRoundtripWithMatchByteLiteral(t *testing.T) {
	// Construct input containing the literal escape byte 0xF2 so the
	// MATCH-disambiguation escape path is exercised on both ends.
	base := bytes.Repeat([]byte{0x01, 0x02, 0x03, 0xF2, 0x04, 0x05}, 200)
	roundtripLZP(t, base)
}

func TestLZPRoundtripAllMatchMarkerBytes(t *testing.T) {
	// An input that is overwhelmingly the match marker byte 0xF2: runs of
	// 36 0xF2 bytes, each broken by one 0x01. In the first two 37-byte
	// periods the predicted matches are shorter than the minimum match
	// length, so the 0xF2 bytes take the literal path with their trailing
	// 255 escape; from the third period on, the periodic repeat is folded
	// into one long match, and the tail is drained as literals. Escaped
	// literals can be longer than their input, so size dst with slack
	// rather than reusing roundtripLZP's tightly sized buffer.
	unit := append(bytes.Repeat([]byte{0xF2}, 36), 0x01)
	src := bytes.Repeat(unit, 300)
	lut := make([]int32, bzip3.LUTSize)
	dst := make([]byte, len(src)*2+64)
	n, ok := bzip3.EncodeLZP(dst, src, lut)
	require.True(t, ok, "lzp declined an all-0xF2 input")

	out := make([]byte, len(src)+64)
	got := bzip3.DecodeLZP(out, dst[:n], lut)
	require.True(t, bytes.Equal(src, out[:got]), "roundtrip mismatch for all-0xF2 input")
}

func TestLZPRoundtripRandom(t *testing.T) {
	gen := rand.New(rand.NewSource(42))
	buf := make([]byte, 4096)
	for i := range buf {
		buf[i] = byte(gen.Intn(256))
	}
	roundtripLZP(t, buf)
}

func TestLZPDeclinesSmallInput(t *testing.T) {
	lut := make([]int32, bzip3.LUTSize)
	dst := make([]byte, 16)
	_, ok := bzip3.EncodeLZP(dst, make([]byte, 16), lut)
	require.False(t, ok)
}
