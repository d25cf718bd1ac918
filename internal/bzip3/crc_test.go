// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzip3_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cosnicolaou/bzip3/internal/bzip3"
)

func TestCRCSeedConvention(t *testing.T) {
	require.Equal(t, uint32(1), bzip3.Sum(1, nil))
}

func TestCRCDetectsSingleBitFlip(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	want := bzip3.Sum(1, data)

	corrupt := append([]byte(nil), data...)
	corrupt[3] ^= 0x01
	require.NotEqual(t, want, bzip3.Sum(1, corrupt))
}

func TestCRCIncremental(t *testing.T) {
	data := []byte("incremental checksum test data")
	whole := bzip3.Sum(1, data)

	mid := len(data) / 2
	split := bzip3.Sum(bzip3.Sum(1, data[:mid]), data[mid:])
	require.Equal(t, whole, split)
}
