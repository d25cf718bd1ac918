// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzip3

import (
	"encoding/binary"
	"io"
)

// Writer buffers input into blockSize-sized blocks and writes them to an
// underlying io.Writer in the bzip3 container format, batching up to 16
// blocks at a time through EncodeBlocks before flushing them to the wire.
// It is the encoding counterpart of Reader, composing the dispatcher with
// a fixed-size batch rather than a streaming pipe: block boundaries are
// known upfront from the input length, so no reordering is needed once a
// batch completes.
type Writer struct {
	w         io.Writer
	blockSize int
	opts      []DispatchOption

	buf     []byte
	pending [][]byte
	closed  bool
}

// NewWriter returns a Writer that assembles a bzip3 container on w using
// the given block size (see NewState for accepted bounds).
func NewWriter(w io.Writer, blockSize int, opts ...DispatchOption) (*Writer, error) {
	if blockSize < MinBlockSize || blockSize > MaxBlockSize {
		return nil, ErrInit
	}
	var hdr [9]byte
	copy(hdr[:5], Signature[:])
	binary.LittleEndian.PutUint32(hdr[5:9], uint32(blockSize))
	if _, err := w.Write(hdr[:]); err != nil {
		return nil, err
	}
	return &Writer{w: w, blockSize: blockSize, opts: opts}, nil
}

// Write implements io.Writer, splitting p into blockSize-sized blocks and
// flushing each full batch of up to 16 blocks as it accumulates.
func (wr *Writer) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		room := wr.blockSize - len(wr.buf)
		take := room
		if take > len(p) {
			take = len(p)
		}
		wr.buf = append(wr.buf, p[:take]...)
		p = p[take:]
		if len(wr.buf) == wr.blockSize {
			wr.pending = append(wr.pending, wr.buf)
			wr.buf = nil
			if len(wr.pending) == maxBatch {
				if err := wr.flushPending(); err != nil {
					return n - len(p), err
				}
			}
		}
	}
	return n, nil
}

func (wr *Writer) flushPending() error {
	if len(wr.pending) == 0 {
		return nil
	}
	out, errs := EncodeBlocks(wr.blockSize, wr.pending, wr.opts...)
	for i, block := range wr.pending {
		if errs[i] != nil {
			return errs[i]
		}
		if err := wr.writeBlock(out[i], len(block)); err != nil {
			return err
		}
	}
	wr.pending = wr.pending[:0]
	return nil
}

func (wr *Writer) writeBlock(payload []byte, origSize int) error {
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(len(payload)))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(origSize))
	if _, err := wr.w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := wr.w.Write(payload)
	return err
}

// Close flushes any buffered partial block and any batched full blocks.
// It does not close the underlying writer.
func (wr *Writer) Close() error {
	if wr.closed {
		return nil
	}
	wr.closed = true
	if len(wr.buf) > 0 {
		wr.pending = append(wr.pending, wr.buf)
		wr.buf = nil
	}
	return wr.flushPending()
}

// Reader decompresses a bzip3 container read from an underlying
// io.Reader, batching blocks through DecodeBlocks up to 16 at a time.
type Reader struct {
	sc   *Scanner
	opts []DispatchOption

	out []byte
}

// NewReader returns a Reader over rd, after validating its container
// header.
func NewReader(rd io.Reader, opts ...DispatchOption) (*Reader, error) {
	sc, err := NewScanner(rd)
	if err != nil {
		return nil, err
	}
	return &Reader{sc: sc, opts: opts}, nil
}

// Read implements io.Reader, decompressing one batch of up to 16 blocks
// at a time and serving their concatenated plaintext.
func (r *Reader) Read(p []byte) (int, error) {
	for len(r.out) == 0 {
		var payloads [][]byte
		var origSizes []int
		for len(payloads) < maxBatch && r.sc.Scan() {
			payload, origSize := r.sc.Block()
			payloads = append(payloads, payload)
			origSizes = append(origSizes, origSize)
		}
		if len(payloads) == 0 {
			if err := r.sc.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		out, errs := DecodeBlocks(r.sc.BlockSize(), payloads, origSizes, r.opts...)
		for i, err := range errs {
			if err != nil {
				return 0, err
			}
			r.out = append(r.out, out[i]...)
		}
	}
	n := copy(p, r.out)
	r.out = r.out[n:]
	return n, nil
}
