// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzip3

import (
	"encoding/binary"
	"io"
)

// Signature is the fixed 5-byte magic that opens a bzip3 container.
var Signature = [5]byte{'B', 'Z', '3', 'v', '1'}

// Scanner reads the sequential block framing of a bzip3 container: a
// signature and block_size header, followed by a run of
// (compressed_size, original_size, payload) tuples. The container is
// byte-aligned and explicitly length-prefixed, so scanning is a
// straight sequential read rather than a search for a magic bit pattern.
type Scanner struct {
	rd        io.Reader
	blockSize int
	err       error

	payload  []byte
	origSize int
}

// NewScanner reads and validates the container header from rd and
// returns a Scanner ready to iterate its blocks.
func NewScanner(rd io.Reader) (*Scanner, error) {
	var hdr [9]byte
	if _, err := io.ReadFull(rd, hdr[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrMalformedHeader
		}
		return nil, err
	}
	if string(hdr[:5]) != string(Signature[:]) {
		return nil, ErrMalformedHeader
	}
	blockSize := int(binary.LittleEndian.Uint32(hdr[5:9]))
	if blockSize < MinBlockSize || blockSize > MaxBlockSize {
		return nil, ErrMalformedHeader
	}
	return &Scanner{rd: rd, blockSize: blockSize}, nil
}

// BlockSize returns the block_size recorded in the container header.
func (s *Scanner) BlockSize() int { return s.blockSize }

// Scan advances to the next block, returning false at EOF or on error;
// callers must check Err after a false return to distinguish the two.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	var lenHdr [8]byte
	if _, err := io.ReadFull(s.rd, lenHdr[:]); err != nil {
		if err != io.EOF {
			s.err = ErrTruncatedData
		}
		return false
	}
	compressedSize := int32(binary.LittleEndian.Uint32(lenHdr[0:4]))
	originalSize := int32(binary.LittleEndian.Uint32(lenHdr[4:8]))
	if compressedSize < 0 || originalSize < 0 || int(originalSize) > s.blockSize {
		s.err = ErrMalformedHeader
		return false
	}
	payload := make([]byte, compressedSize)
	if _, err := io.ReadFull(s.rd, payload); err != nil {
		s.err = ErrTruncatedData
		return false
	}
	s.payload = payload
	s.origSize = int(originalSize)
	return true
}

// Block returns the most recently scanned block's compressed payload and
// recorded original size.
func (s *Scanner) Block() (payload []byte, origSize int) {
	return s.payload, s.origSize
}

// Err returns the first non-EOF error encountered by Scan.
func (s *Scanner) Err() error { return s.err }
