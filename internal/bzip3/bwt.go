// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzip3

import "github.com/flanglet/kanzi-go/v2/transform"

// Forward computes the Burrows-Wheeler transform of src into dst using a
// divsufsort suffix array, writing one global primary index rather than
// the multi-chunk indexes transform.BWT produces for larger inputs. work
// must have at least len(src) int32 entries; idx must have at least one
// uint entry. It returns the primary index: the row of the
// conceptually-sorted rotation matrix that corresponds to the unrotated
// string, as required to invert the transform.
func Forward(sa *transform.DivSufSort, dst, src []byte, work []int32, idx []uint) int32 {
	n := len(src)
	switch n {
	case 0:
		return 0
	case 1:
		dst[0] = src[0]
		return 0
	}
	sa.ComputeBWT(src[:n], dst[:n], work[:n], idx[:1], 1)
	return int32(idx[0])
}

// Inverse undoes Forward, transforming the BWT output back into the
// original byte sequence. dst must have at least len(src) bytes; tt must
// have at least len(src) uint32 entries of scratch space; c must have at
// least 256 uint entries.
//
// This is the single-chunk case of the "single array" inverse technique
// (the C array plus a tt successor array packing the next-byte index into
// the upper 24 bits and the byte value into the low 8 bits), the same
// technique transform.BWT's Inverse uses internally for inputs below its
// chunking threshold; reimplemented directly here because our wire format
// always carries exactly one primary index; never the multi-chunk form
// transform.BWT selects once a block crosses its internal size threshold.
func Inverse(dst, src []byte, primary int32, tt []uint32, c []uint) {
	n := len(src)
	tt = tt[:n]
	c = c[:256]
	for i := range c {
		c[i] = 0
	}
	for i, b := range src {
		tt[i] = uint32(b)
		c[b]++
	}

	sum := uint(0)
	for i := 0; i < 256; i++ {
		sum += c[i]
		c[i] = sum - c[i]
	}

	for i := range tt {
		b := tt[i] & 0xff
		tt[c[b]] |= uint32(i) << 8
		c[b]++
	}

	pos := tt[primary] >> 8
	for i := 0; i < n; i++ {
		dst[i] = byte(tt[pos])
		pos = tt[pos] >> 8
	}
}
