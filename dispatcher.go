// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzip3

import (
	"log"
	"runtime"
	"sync"
	"time"
)

// maxBatch is the dispatcher's hard limit on concurrently processed
// blocks: at most 16 worker goroutines, each coding one block at a time.
const maxBatch = 16

func trace(verbose bool, format string, args ...interface{}) {
	if verbose {
		log.Printf(format, args...)
	}
}

// EncodeBlocks compresses each of blocks[i] independently and returns
// their compressed payloads at the same index. Up to 16 blocks are
// processed concurrently by a pool of worker goroutines (WithConcurrency),
// each using its own *State; the dispatcher joins all workers before returning, so
// callers see no reordering of outputs relative to inputs. A nil entry in
// the returned slice paired with a non-nil entry in the returned error
// slice marks a failed block; other blocks still complete.
func EncodeBlocks(blockSize int, blocks [][]byte, opts ...DispatchOption) ([][]byte, []error) {
	o := dispatchOpts{concurrency: runtime.GOMAXPROCS(-1)}
	for _, fn := range opts {
		fn(&o)
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}
	if o.concurrency > maxBatch {
		o.concurrency = maxBatch
	}

	out := make([][]byte, len(blocks))
	errs := make([]error, len(blocks))

	type job struct{ idx int }
	jobs := make(chan job)
	var wg sync.WaitGroup
	wg.Add(o.concurrency)
	for w := 0; w < o.concurrency; w++ {
		go func() {
			defer wg.Done()
			st, err := NewState(blockSize)
			if err != nil {
				for j := range jobs {
					errs[j.idx] = err
				}
				return
			}
			for j := range jobs {
				start := time.Now()
				trace(o.verbose, "encoding block %d (%d bytes)", j.idx, len(blocks[j.idx]))
				data, err := st.EncodeBlock(blocks[j.idx])
				out[j.idx], errs[j.idx] = data, err
				if o.progressCh != nil {
					o.progressCh <- Progress{
						Duration:   time.Since(start),
						Block:      uint64(j.idx),
						Compressed: len(data),
						Size:       len(blocks[j.idx]),
						Err:        err,
					}
				}
			}
		}()
	}
	for i := range blocks {
		jobs <- job{i}
	}
	close(jobs)
	wg.Wait()
	return out, errs
}

// DecodeBlocks reverses EncodeBlocks: blocks[i] is decompressed using
// origSizes[i] as the recorded uncompressed length. See EncodeBlocks for
// the concurrency and ordering contract.
func DecodeBlocks(blockSize int, blocks [][]byte, origSizes []int, opts ...DispatchOption) ([][]byte, []error) {
	o := dispatchOpts{concurrency: runtime.GOMAXPROCS(-1)}
	for _, fn := range opts {
		fn(&o)
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}
	if o.concurrency > maxBatch {
		o.concurrency = maxBatch
	}

	out := make([][]byte, len(blocks))
	errs := make([]error, len(blocks))

	type job struct{ idx int }
	jobs := make(chan job)
	var wg sync.WaitGroup
	wg.Add(o.concurrency)
	for w := 0; w < o.concurrency; w++ {
		go func() {
			defer wg.Done()
			st, err := NewState(blockSize)
			if err != nil {
				for j := range jobs {
					errs[j.idx] = err
				}
				return
			}
			for j := range jobs {
				start := time.Now()
				trace(o.verbose, "decoding block %d (%d bytes)", j.idx, len(blocks[j.idx]))
				data, err := st.DecodeBlock(blocks[j.idx], origSizes[j.idx])
				out[j.idx], errs[j.idx] = data, err
				if o.progressCh != nil {
					o.progressCh <- Progress{
						Duration:   time.Since(start),
						Block:      uint64(j.idx),
						Compressed: len(blocks[j.idx]),
						Size:       len(data),
						Err:        err,
					}
				}
			}
		}()
	}
	for i := range blocks {
		jobs <- job{i}
	}
	close(jobs)
	wg.Wait()
	return out, errs
}
