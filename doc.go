// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package bzip3 implements the bzip3 block compressor: a pipeline of a
// run-length transform, a Burrows-Wheeler transform, an LZP match filter
// and a context-mixing arithmetic coder, framed into an on-disk
// container and driven by a concurrent batch dispatcher.
//
// State is the entry point for encoding or decoding single blocks;
// EncodeBlocks and DecodeBlocks dispatch batches of up to 16 blocks
// concurrently; NewWriter and NewReader compose the dispatcher with the
// on-disk container format: a signature and block size, followed by a
// run of length-prefixed compressed blocks.
package bzip3
