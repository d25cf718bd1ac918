// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzip3

// LZP parameters.
const (
	lzpHashBits = 18
	lzpMinMatch = 40
	lzpMatch    = 0xF2
)

// LUTSize is the number of entries an LZP predictor table (lut) must have.
const LUTSize = 1 << lzpHashBits

func lzpHash(ctx uint32) uint32 {
	const mask = uint32(LUTSize - 1)
	return ((ctx >> 15) ^ ctx ^ (ctx >> 3)) & mask
}

func ctx4(b []byte) uint32 {
	n := len(b)
	return uint32(b[n-1]) | uint32(b[n-2])<<8 | uint32(b[n-3])<<16 | uint32(b[n-4])<<24
}

// EncodeLZP implements the LZP forward transform: a hash-indexed match
// predictor that replaces long repeats with a match marker followed by a
// 254-chained match length. lut must have LUTSize entries and is
// zeroed by this call. It returns the number of bytes written to dst and
// true, or (0, false) if LZP is not applicable to this block (too small, or
// the encoder ran out of output room).
func EncodeLZP(dst, src []byte, lut []int32) (int, bool) {
	n := len(src)
	if n-lzpMinMatch < 32 {
		return 0, false
	}
	for i := range lut {
		lut[i] = 0
	}

	outEob := len(dst) - 8
	ip, op := 4, 4
	copy(dst[:4], src[:4])
	heur := 0

	ctx := ctx4(src[:4])

	for ip < n-lzpMinMatch-32 && op < outEob {
		idx := lzpHash(ctx)
		val := lut[idx]
		lut[idx] = int32(ip)
		matched := false
		if val > 0 {
			ref := int(val)
			if bytesEqual4(src[ip+lzpMinMatch-4:], ref+lzpMinMatch-4, src) && bytesEqual4(src[ip:], ref, src) {
				if !(heur > ip && !bytesEqual4At(src, heur, ref+(heur-ip))) {
					length := 4
					for ip+length < n-lzpMinMatch-32 {
						if !bytesEqual4At(src, ip+length, ref+length) {
							break
						}
						length += 4
					}
					if length < lzpMinMatch {
						if heur < ip+length {
							heur = ip + length
						}
					} else {
						for i := 0; i < 3 && src[ip+length] == src[ref+length]; i++ {
							length++
						}
						ip += length
						ctx = ctx4(src[:ip])

						dst[op] = lzpMatch
						op++

						extra := length - lzpMinMatch
						for extra >= 254 {
							extra -= 254
							dst[op] = 254
							op++
							if op >= outEob {
								break
							}
						}
						dst[op] = byte(extra)
						op++
						matched = true
					}
				}
			}
		}
		if !matched {
			next := src[ip]
			dst[op] = next
			op++
			ip++
			ctx = ctx<<8 | uint32(next)
			if next == lzpMatch && val > 0 {
				dst[op] = 255
				op++
			}
		}
	}

	ctx = ctx4(src[:ip])
	for ip < n && op < outEob {
		idx := lzpHash(ctx)
		val := lut[idx]
		lut[idx] = int32(ip)

		next := src[ip]
		dst[op] = next
		op++
		ip++
		ctx = ctx<<8 | uint32(next)
		if next == lzpMatch && val > 0 {
			dst[op] = 255
			op++
		}
	}

	if op >= outEob {
		return 0, false
	}
	return op, true
}

// bytesEqual4 compares 4 bytes starting at positions implied by the slices;
// pos is the byte offset of ref within the original src buffer.
func bytesEqual4(window []byte, pos int, src []byte) bool {
	if pos < 0 || pos+4 > len(src) {
		return false
	}
	return window[0] == src[pos] && window[1] == src[pos+1] && window[2] == src[pos+2] && window[3] == src[pos+3]
}

func bytesEqual4At(src []byte, a, b int) bool {
	if a+4 > len(src) || b+4 > len(src) || b < 0 {
		return false
	}
	return src[a] == src[b] && src[a+1] == src[b+1] && src[a+2] == src[b+2] && src[a+3] == src[b+3]
}

// DecodeLZP inverts EncodeLZP. lut is zeroed by this call. It returns the
// number of bytes written to dst.
func DecodeLZP(dst, src []byte, lut []int32) int {
	for i := range lut {
		lut[i] = 0
	}
	ip, op := 4, 4
	copy(dst[:4], src[:4])
	n := len(src)

	ctx := ctx4(dst[:4])

	for ip < n {
		idx := lzpHash(ctx)
		val := lut[idx]
		lut[idx] = int32(op)

		if src[ip] == lzpMatch && val > 0 {
			ip++
			if src[ip] != 255 {
				length := lzpMinMatch
				for {
					b := src[ip]
					ip++
					length += int(b)
					if b != 254 {
						break
					}
				}
				ref := int(val)
				for i := 0; i < length; i++ {
					dst[op] = dst[ref+i]
					op++
				}
				ctx = ctx4(dst[:op])
			} else {
				ip++
				dst[op] = lzpMatch
				op++
				ctx = ctx<<8 | lzpMatch
			}
		} else {
			next := src[ip]
			ip++
			dst[op] = next
			op++
			ctx = ctx<<8 | uint32(next)
		}
	}
	return op
}
