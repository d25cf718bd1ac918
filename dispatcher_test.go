// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzip3_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cosnicolaou/bzip3"
)

func TestEncodeBlocksMatchesSerial(t *testing.T) {
	gen := rand.New(rand.NewSource(11))
	var blocks [][]byte
	for i := 0; i < 10; i++ {
		n := gen.Intn(4000) + 1
		buf := make([]byte, n)
		for j := range buf {
			buf[j] = byte(gen.Intn(8))
		}
		blocks = append(blocks, buf)
	}

	batched, errs := bzip3.EncodeBlocks(bzip3.MinBlockSize, blocks, bzip3.WithConcurrency(4))
	for _, err := range errs {
		require.NoError(t, err)
	}

	st, err := bzip3.NewState(bzip3.MinBlockSize)
	require.NoError(t, err)
	for i, block := range blocks {
		serial, err := st.EncodeBlock(block)
		require.NoError(t, err)
		require.True(t, bytes.Equal(serial, batched[i]), "block %d mismatch between batch and serial encode", i)
	}
}

func TestDecodeBlocksRoundtripsEncodeBlocks(t *testing.T) {
	gen := rand.New(rand.NewSource(17))
	var blocks [][]byte
	for i := 0; i < 20; i++ {
		n := gen.Intn(5000) + 1
		buf := make([]byte, n)
		for j := range buf {
			buf[j] = byte(gen.Intn(256))
		}
		blocks = append(blocks, buf)
	}

	coded, errs := bzip3.EncodeBlocks(bzip3.MinBlockSize, blocks, bzip3.WithConcurrency(8))
	for _, err := range errs {
		require.NoError(t, err)
	}

	origSizes := make([]int, len(blocks))
	for i, b := range blocks {
		origSizes[i] = len(b)
	}

	plain, errs := bzip3.DecodeBlocks(bzip3.MinBlockSize, coded, origSizes, bzip3.WithConcurrency(8))
	for i, err := range errs {
		require.NoError(t, err)
		require.True(t, bytes.Equal(blocks[i], plain[i]))
	}
}
