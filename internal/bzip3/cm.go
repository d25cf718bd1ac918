// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzip3

// runThreshold is the run-length feature cutoff K selecting the secondary
// estimation table: a byte is treated as part of a run once it repeats
// the same top-level context more than runThreshold times in a row.
const runThreshold = 2

// Coder implements the 32-bit range coder and its three-level
// context-mixing probability model. A Coder is reused across blocks via
// Begin; it is not safe for concurrent use.
type Coder struct {
	low, high, code uint32

	c0 [256]uint16
	c1 [256][256]uint16
	c2 [2][256][17]uint16

	c1ctx, c2ctx, run int

	out []byte
	in  []byte
	ip  int
}

// Begin resets all adaptive state to its initial, unbiased distribution.
// It must be called once before encoding or decoding each block.
func (s *Coder) Begin() {
	s.c1ctx, s.c2ctx, s.run = 0, 0, 0
	s.low, s.high, s.code = 0, 0xFFFFFFFF, 0
	for i := range s.c0 {
		s.c0[i] = 1 << 15
	}
	for i := range s.c1 {
		for j := range s.c1[i] {
			s.c1[i][j] = 1 << 15
		}
	}
	for f := 0; f < 2; f++ {
		for c := 0; c < 256; c++ {
			for k := 0; k < 17; k++ {
				v := k << 12
				if k == 16 {
					v--
				}
				s.c2[f][c][k] = uint16(v)
			}
		}
	}
}

// SetOutput directs encoded bytes into out, starting empty.
func (s *Coder) SetOutput(out []byte) {
	s.out = out[:0]
}

// Output returns the bytes written so far by EncodeByte/Flush.
func (s *Coder) Output() []byte { return s.out }

func (s *Coder) writeOut(b byte) { s.out = append(s.out, b) }

// SetInput directs DecodeByte to read from in; InitDecode must be called
// once after SetInput and before the first DecodeByte.
func (s *Coder) SetInput(in []byte) {
	s.in = in
	s.ip = 0
}

// readIn returns the next input byte, or the sentinel 0xFF once input is
// exhausted. Reading past end-of-stream is never an error here; any
// corruption it causes surfaces later as a CRC or BWT-index failure.
func (s *Coder) readIn() byte {
	if s.ip < len(s.in) {
		b := s.in[s.ip]
		s.ip++
		return b
	}
	return 0xFF
}

// InitDecode seeds the code register from the first four input bytes.
func (s *Coder) InitDecode() {
	for i := 0; i < 4; i++ {
		s.code = s.code<<8 + uint32(s.readIn())
	}
}

func update0(p uint16, shift uint) uint16 { return p - (p >> shift) }
func update1(p uint16, shift uint) uint16 { return p + ((p ^ 0xFFFF) >> shift) }

func (s *Coder) encodeBit0(p uint32) {
	s.low += uint32((uint64(s.high-s.low)*uint64(p))>>18) + 1
	for (s.low^s.high)&0xFF000000 == 0 {
		s.writeOut(byte(s.low >> 24))
		s.low <<= 8
		s.high = s.high<<8 | 0xFF
	}
}

func (s *Coder) encodeBit1(p uint32) {
	s.high = s.low + uint32((uint64(s.high-s.low)*uint64(p))>>18)
	for (s.low^s.high)&0xFF000000 == 0 {
		s.writeOut(byte(s.low >> 24))
		s.low <<= 8
		s.high = s.high<<8 | 0xFF
	}
}

func (s *Coder) decodeBit(p uint32) byte {
	mid := s.low + uint32((uint64(s.high-s.low)*uint64(p))>>18)
	var bit byte
	if s.code <= mid {
		bit = 1
		s.high = mid
	} else {
		s.low = mid + 1
	}
	for (s.low^s.high)&0xFF000000 == 0 {
		s.low <<= 8
		s.high = s.high<<8 | 0xFF
		s.code = s.code<<8 + uint32(s.readIn())
	}
	return bit
}

// Flush drains the final four bytes of low at the end of a block.
func (s *Coder) Flush() {
	for i := 0; i < 4; i++ {
		s.writeOut(byte(s.low >> 24))
		s.low <<= 8
	}
}

// mix computes the coarse context-mix probability and the interpolated
// secondary estimate for the bit about to be coded/decoded at the current
// tree context ctx, returning the final 18-bit coding probability q and the
// table indices/values needed to adapt afterwards.
func (s *Coder) mix(ctx int) (q uint32, j int, p uint32) {
	p0 := uint32(s.c0[ctx])
	p1 := uint32(s.c1[s.c1ctx][ctx])
	p2 := uint32(s.c1[s.c2ctx][ctx])
	p = ((p0+p1)*7 + 2*p2) >> 4

	j = int(p >> 12)
	f := 0
	if s.run > runThreshold {
		f = 1
	}
	x1 := uint32(s.c2[f][ctx][j])
	x2 := uint32(s.c2[f][ctx][j+1])
	ssep := x1 + (((x2-x1)*(p&0xFFF))>>12)
	q = ssep*3 + p
	return
}

func (s *Coder) adapt(ctx, j int, bit byte) {
	f := 0
	if s.run > runThreshold {
		f = 1
	}
	if bit == 1 {
		s.c0[ctx] = update1(s.c0[ctx], 2)
		s.c1[s.c1ctx][ctx] = update1(s.c1[s.c1ctx][ctx], 4)
		s.c2[f][ctx][j] = update1(s.c2[f][ctx][j], 6)
		s.c2[f][ctx][j+1] = update1(s.c2[f][ctx][j+1], 6)
	} else {
		s.c0[ctx] = update0(s.c0[ctx], 2)
		s.c1[s.c1ctx][ctx] = update0(s.c1[s.c1ctx][ctx], 4)
		s.c2[f][ctx][j] = update0(s.c2[f][ctx][j], 6)
		s.c2[f][ctx][j+1] = update0(s.c2[f][ctx][j+1], 6)
	}
}

func (s *Coder) beginByte() {
	if s.c1ctx == s.c2ctx {
		s.run++
	} else {
		s.run = 0
	}
}

func (s *Coder) endByte(ctx int) {
	s.c2ctx = s.c1ctx
	s.c1ctx = ctx & 0xFF
}

// EncodeByte codes one byte through the model, MSB first.
func (s *Coder) EncodeByte(c byte) {
	s.beginByte()
	ctx := 1
	for ctx < 256 {
		q, j, _ := s.mix(ctx)
		bit := (c >> 7) & 1
		if bit == 1 {
			s.encodeBit1(q)
		} else {
			s.encodeBit0(q)
		}
		s.adapt(ctx, j, bit)
		ctx = ctx*2 + int(bit)
		c <<= 1
	}
	s.endByte(ctx)
}

// DecodeByte decodes one byte through the model, MSB first.
func (s *Coder) DecodeByte() byte {
	s.beginByte()
	ctx := 1
	for ctx < 256 {
		q, j, _ := s.mix(ctx)
		bit := s.decodeBit(q)
		s.adapt(ctx, j, bit)
		ctx = ctx*2 + int(bit)
	}
	s.endByte(ctx)
	return byte(ctx & 0xFF)
}
