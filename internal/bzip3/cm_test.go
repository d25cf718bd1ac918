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

func roundtripCM(t *testing.T, src []byte) {
	t.Helper()
	var enc bzip3.Coder
	enc.Begin()
	enc.SetOutput(make([]byte, 0, len(src)*2+64))
	for _, c := range src {
		enc.EncodeByte(c)
	}
	enc.Flush()
	coded := enc.Output()

	var dec bzip3.Coder
	dec.Begin()
	dec.SetInput(coded)
	dec.InitDecode()
	out := make([]byte, len(src))
	for i := range out {
		out[i] = dec.DecodeByte()
	}
	require.True(t, bytes.Equal(src, out), "cm roundtrip mismatch for %d byte input", len(src))
}

func TestCoderRoundtrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0},
		{0xFF},
		bytes.Repeat([]byte{'z'}, 500),
		[]byte("the quick brown fox jumps over the lazy dog, repeatedly, many times over"),
	}
	for _, c := range cases {
		roundtripCM(t, c)
	}
}

func TestCoderRoundtripRandom(t *testing.T) {
	gen := rand.New(rand.NewSource(5))
	buf := make([]byte, 8192)
	for i := range buf {
		buf[i] = byte(gen.Intn(256))
	}
	roundtripCM(t, buf)
}

func TestCoderRunFeatureBoundary(t *testing.T) {
	// Exercise the run > K feature transition: K is fixed at 2, so runs of
	// identical successive context transitions must cross that boundary.
	src := append(bytes.Repeat([]byte{'a'}, 10), bytes.Repeat([]byte{'b'}, 10)...)
	roundtripCM(t, src)
}
