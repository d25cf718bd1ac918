// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzip3

import (
	"encoding/binary"

	"github.com/flanglet/kanzi-go/v2/transform"
)

// model is the bitmask recorded in a block's header identifying which
// optional transforms were applied. The arithmetic coder is
// unconditional; RLE and LZP are skipped when they don't help.
type model uint8

const (
	modelLZP model = 1 << 1
	modelRLE model = 1 << 2
)

// bypassThreshold is the minimum block payload size worth running
// through the full transform pipeline; smaller blocks are stored as
// CRC32 + a -1 sentinel BWT index followed by the raw bytes.
const bypassThreshold = 64

// headerDwords is the number of fixed 4-byte header words common to
// every non-bypass block: CRC32 and the BWT primary index.
const headerDwords = 2

// Block holds the per-block scratch buffers needed to run the bzip3
// transform pipeline: two RLE/LZP/BWT swap buffers, the LZP predictor
// table, a reusable divsufsort suffix-array engine with its scratch, BWT
// inversion scratch, and a reusable context-mixing coder. A Block is
// sized for one blockSize and must not be used concurrently; the batch
// dispatcher (dispatcher.go) allocates one Block per worker goroutine.
type Block struct {
	blockSize int

	buf1, buf2 []byte
	lut        []int32
	dsa        *transform.DivSufSort
	saWork     []int32
	primaryIdx [1]uint
	tt         []uint32
	cnt        [256]uint
	cm         Coder
}

// NewBlock allocates the scratch space for blocks of up to blockSize
// bytes. The reference bz3_new allocates a single swap buffer sized
// block_size + block_size/4 to absorb the RLE worst case; this keeps two
// such buffers so that neither the caller's src nor dst slice is ever
// used as transform scratch space.
func NewBlock(blockSize int) (*Block, error) {
	dsa, err := transform.NewDivSufSort()
	if err != nil {
		return nil, err
	}
	scratchSize := blockSize + blockSize/4 + 64
	return &Block{
		blockSize: blockSize,
		buf1:      make([]byte, scratchSize),
		buf2:      make([]byte, scratchSize),
		lut:       make([]int32, LUTSize),
		dsa:       dsa,
		saWork:    make([]int32, blockSize),
		tt:        make([]uint32, blockSize),
	}, nil
}

// EncodeBlock compresses src (len(src) <= blockSize) into dst, which must
// have capacity for Bound(len(src)). It returns the slice of dst actually
// written.
func (b *Block) EncodeBlock(dst, src []byte) ([]byte, error) {
	n := len(src)
	if n > b.blockSize {
		return nil, ErrOutOfBounds
	}

	crc := Sum(1, src)

	if n < bypassThreshold {
		binary.LittleEndian.PutUint32(dst[0:4], crc)
		binary.LittleEndian.PutUint32(dst[4:8], 0xFFFFFFFF)
		copy(dst[8:8+n], src)
		return dst[:8+n], nil
	}

	b1, b2 := b.buf1, b.buf2
	copy(b1, src)
	data := n
	var mdl model
	var lzpSize, rleSize int

	rleSize = EncodeRLE(b2, b1[:data])
	if rleSize < data {
		b1, b2 = b2, b1
		data = rleSize
		mdl |= modelRLE
	}

	if sz, ok := EncodeLZP(b2[:data], b1[:data], b.lut); ok {
		b1, b2 = b2, b1
		data = sz
		lzpSize = sz
		mdl |= modelLZP
	}

	bwtIdx := Forward(b.dsa, b2[:data], b1[:data], b.saWork, b.primaryIdx[:])
	b1, b2 = b2, b1

	overhead := headerDwords
	if mdl&modelLZP != 0 {
		overhead++
	}
	if mdl&modelRLE != 0 {
		overhead++
	}
	headerLen := overhead*4 + 1

	b.cm.Begin()
	b.cm.SetOutput(dst[headerLen:])
	for i := 0; i < data; i++ {
		b.cm.EncodeByte(b1[i])
	}
	b.cm.Flush()
	coded := b.cm.Output()

	binary.LittleEndian.PutUint32(dst[0:4], crc)
	binary.LittleEndian.PutUint32(dst[4:8], uint32(bwtIdx))
	dst[8] = byte(mdl)

	p := 9
	if mdl&modelLZP != 0 {
		binary.LittleEndian.PutUint32(dst[p:p+4], uint32(lzpSize))
		p += 4
	}
	if mdl&modelRLE != 0 {
		binary.LittleEndian.PutUint32(dst[p:p+4], uint32(rleSize))
		p += 4
	}

	return dst[:headerLen+len(coded)], nil
}

// DecodeBlock reverses EncodeBlock. origSize is the uncompressed length
// recorded in the container's block header. dst must have capacity for
// at least origSize bytes.
func (b *Block) DecodeBlock(dst, src []byte, origSize int) ([]byte, error) {
	if len(src) < 8 {
		return nil, ErrTruncatedData
	}
	crc := binary.LittleEndian.Uint32(src[0:4])
	bwtIdx := int32(binary.LittleEndian.Uint32(src[4:8]))

	if bwtIdx == -1 {
		n := len(src) - 8
		copy(dst[:n], src[8:])
		out := dst[:n]
		if Sum(1, out) != crc {
			return nil, ErrCRC
		}
		return out, nil
	}

	if origSize > b.blockSize {
		return nil, ErrDataTooBig
	}

	mdl := model(src[8])
	var lzpSize, rleSize int
	p := 9
	if mdl&modelLZP != 0 {
		lzpSize = int(binary.LittleEndian.Uint32(src[p : p+4]))
		p += 4
	}
	if mdl&modelRLE != 0 {
		rleSize = int(binary.LittleEndian.Uint32(src[p : p+4]))
		p += 4
	}

	var sizeSrc int
	switch {
	case mdl&modelLZP != 0:
		sizeSrc = lzpSize
	case mdl&modelRLE != 0:
		sizeSrc = rleSize
	default:
		sizeSrc = origSize
	}

	b1, b2 := b.buf1, b.buf2

	b.cm.Begin()
	b.cm.SetInput(src[p:])
	b.cm.InitDecode()
	for i := 0; i < sizeSrc; i++ {
		b1[i] = b.cm.DecodeByte()
	}

	Inverse(b2[:sizeSrc], b1[:sizeSrc], bwtIdx, b.tt, b.cnt[:])
	b1, b2 = b2, b1

	if mdl&modelLZP != 0 {
		n := DecodeLZP(b2, b1[:sizeSrc], b.lut)
		b1, b2 = b2, b1
		sizeSrc = n
	}

	if mdl&modelRLE != 0 {
		DecodeRLE(b2, b1[:sizeSrc], origSize)
		b1, b2 = b2, b1
		sizeSrc = origSize
	}

	copy(dst[:sizeSrc], b1[:sizeSrc])
	out := dst[:sizeSrc]

	if Sum(1, out) != crc {
		return nil, ErrCRC
	}
	return out, nil
}

// Bound returns the maximum number of bytes EncodeBlock can write for an
// input of n bytes: the reference's fixed-overhead estimate plus slack
// for the bypass path's 8-byte header.
func Bound(n int) int {
	return n + n/50 + 32
}
