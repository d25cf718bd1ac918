// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzip3

import "time"

// Progress reports the outcome of processing a single block. Reports are
// sent as workers finish their blocks, so with more than one worker they
// need not arrive in stream order; Block is the block's index within the
// batch call.
type Progress struct {
	Duration         time.Duration
	Block            uint64
	CRC              uint32
	Compressed, Size int
	Err              error
}

type dispatchOpts struct {
	verbose     bool
	concurrency int
	progressCh  chan<- Progress
}

// DispatchOption configures EncodeBlocks and DecodeBlocks.
type DispatchOption func(*dispatchOpts)

// WithVerbose enables log.Printf-based tracing of per-block dispatch.
func WithVerbose(v bool) DispatchOption {
	return func(o *dispatchOpts) { o.verbose = v }
}

// WithConcurrency sets the number of worker goroutines used by a batch
// call; it is clamped to [1, 16], the dispatcher's maximum batch size.
func WithConcurrency(n int) DispatchOption {
	return func(o *dispatchOpts) { o.concurrency = n }
}

// WithProgress sets the channel Progress reports are sent on; the caller
// must drain it or batch calls will block once it fills.
func WithProgress(ch chan<- Progress) DispatchOption {
	return func(o *dispatchOpts) { o.progressCh = ch }
}
