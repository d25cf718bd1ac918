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

func roundtripBlock(t *testing.T, blockSize int, src []byte) {
	t.Helper()
	enc, err := bzip3.NewBlock(blockSize)
	require.NoError(t, err)
	dst := make([]byte, bzip3.Bound(len(src)))
	coded, err := enc.EncodeBlock(dst, src)
	require.NoError(t, err)

	dec, err := bzip3.NewBlock(blockSize)
	require.NoError(t, err)
	out := make([]byte, blockSize)
	plain, err := dec.DecodeBlock(out, coded, len(src))
	require.NoError(t, err)
	require.True(t, bytes.Equal(src, plain), "block roundtrip mismatch for %d byte input", len(src))
}

func TestBlockRoundtripBypass(t *testing.T) {
	for _, n := range []int{0, 1, 32, 63} {
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = byte(i)
		}
		roundtripBlock(t, 65536, buf)
	}
}

func TestBlockRoundtripFullPipeline(t *testing.T) {
	src := bytes.Repeat([]byte("compression test payload, repeated many times over. "), 500)
	roundtripBlock(t, 65536, src)
}

func TestBlockRoundtripHighEntropy(t *testing.T) {
	gen := rand.New(rand.NewSource(21))
	buf := make([]byte, 20000)
	for i := range buf {
		buf[i] = byte(gen.Intn(256))
	}
	roundtripBlock(t, 65536, buf)
}

// TestBlockRoundtripAllMatchMarkerBytes exercises a block that is
// overwhelmingly the LZP match marker byte (0xF2), broken up just often
// enough that RLE declines to touch it. LZP emits the 0xF2 bytes of the
// first two 37-byte periods and of the tail as escaped literals and folds
// the periodic repeat in between into one long match; the result then
// goes through BWT and the context-mixing coder.
func TestBlockRoundtripAllMatchMarkerBytes(t *testing.T) {
	unit := append(bytes.Repeat([]byte{0xF2}, 36), 0x01)
	src := bytes.Repeat(unit, 2000)
	roundtripBlock(t, 131072, src)
}

func TestBlockEncodeRejectsOversizedInput(t *testing.T) {
	enc, err := bzip3.NewBlock(1024)
	require.NoError(t, err)
	dst := make([]byte, bzip3.Bound(2048))
	_, err = enc.EncodeBlock(dst, make([]byte, 2048))
	require.ErrorIs(t, err, bzip3.ErrOutOfBounds)
}

func TestBlockDecodeDetectsCorruption(t *testing.T) {
	src := bytes.Repeat([]byte("corruption detection payload "), 400)
	enc, err := bzip3.NewBlock(65536)
	require.NoError(t, err)
	dst := make([]byte, bzip3.Bound(len(src)))
	coded, err := enc.EncodeBlock(dst, src)
	require.NoError(t, err)

	corrupt := append([]byte(nil), coded...)
	corrupt[len(corrupt)-1] ^= 0xFF

	dec, err := bzip3.NewBlock(65536)
	require.NoError(t, err)
	out := make([]byte, 65536)
	_, err = dec.DecodeBlock(out, corrupt, len(src))
	require.Error(t, err)
}
