// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzip3

import (
	"github.com/cosnicolaou/bzip3/internal/bzip3"
)

// MinBlockSize and MaxBlockSize bound the block_size accepted by NewState.
const (
	MinBlockSize = 65536
	MaxBlockSize = 511 * 1 << 20
)

// State is a long-lived, single-owner container for one encoding or
// decoding stream: its scratch buffers, LZP table, context-mixing model
// counters and BWT work arrays are allocated once and reused across
// blocks. A State is not safe for concurrent use; the batch dispatcher
// (dispatcher.go) gives each worker its own State.
type State struct {
	blockSize int
	block     *bzip3.Block
	lastError bzip3.Code
}

// NewState allocates a State sized for blocks of up to blockSize bytes.
// It returns ErrInit if blockSize falls outside [MinBlockSize,
// MaxBlockSize].
func NewState(blockSize int) (*State, error) {
	if blockSize < MinBlockSize || blockSize > MaxBlockSize {
		return nil, ErrInit
	}
	block, err := bzip3.NewBlock(blockSize)
	if err != nil {
		return nil, ErrInit
	}
	return &State{
		blockSize: blockSize,
		block:     block,
	}, nil
}

// BlockSize returns the block size this State was constructed with.
func (s *State) BlockSize() int { return s.blockSize }

// Bound returns the maximum number of bytes EncodeBlock can write for an
// input of n bytes.
func Bound(n int) int { return bzip3.Bound(n) }

// LastError returns the error kind set by the most recent EncodeBlock or
// DecodeBlock call, or nil on success.
func (s *State) LastError() error {
	if s.lastError == bzip3.OK {
		return nil
	}
	return &bzip3.Error{Code: s.lastError}
}

// EncodeBlock compresses src into a newly allocated slice sized exactly
// to the compressed output, recording the result in LastError.
func (s *State) EncodeBlock(src []byte) ([]byte, error) {
	dst := make([]byte, Bound(len(src)))
	out, err := s.block.EncodeBlock(dst, src)
	s.lastError = codeFor(err)
	return out, translate(err)
}

// DecodeBlock decompresses src, whose uncompressed length is origSize (as
// recorded by the container format), recording the result in LastError.
func (s *State) DecodeBlock(src []byte, origSize int) ([]byte, error) {
	dst := make([]byte, origSize)
	out, err := s.block.DecodeBlock(dst, src, origSize)
	s.lastError = codeFor(err)
	return out, translate(err)
}

func codeFor(err error) bzip3.Code {
	if err == nil {
		return bzip3.OK
	}
	if be, ok := err.(*bzip3.Error); ok {
		return be.Code
	}
	return bzip3.InitFailed
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if be, ok := err.(*bzip3.Error); ok {
		return errorFor(be.Code)
	}
	return err
}
