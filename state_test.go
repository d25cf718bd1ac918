// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzip3_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cosnicolaou/bzip3"
)

func TestNewStateRejectsBadBlockSize(t *testing.T) {
	_, err := bzip3.NewState(1024)
	require.ErrorIs(t, err, bzip3.ErrInit)

	_, err = bzip3.NewState(bzip3.MaxBlockSize + 1)
	require.ErrorIs(t, err, bzip3.ErrInit)
}

func TestStateRoundtripEdgeLengths(t *testing.T) {
	st, err := bzip3.NewState(bzip3.MinBlockSize)
	require.NoError(t, err)

	for _, n := range []int{0, 1, 63, 64, 65} {
		src := bytes.Repeat([]byte{'q'}, n)
		coded, err := st.EncodeBlock(src)
		require.NoError(t, err)
		require.LessOrEqual(t, len(coded), bzip3.Bound(n))

		plain, err := st.DecodeBlock(coded, n)
		require.NoError(t, err)
		require.True(t, bytes.Equal(src, plain))
	}
}

func TestStateLastError(t *testing.T) {
	st, err := bzip3.NewState(bzip3.MinBlockSize)
	require.NoError(t, err)
	_, err = st.EncodeBlock(bytes.Repeat([]byte{'a'}, 100))
	require.NoError(t, err)
	require.NoError(t, st.LastError())
}
