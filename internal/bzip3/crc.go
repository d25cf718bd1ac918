// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzip3

import "hash/crc32"

// Sum computes the reflected CRC-32 (polynomial 0xEDB88320) of data,
// continuing from seed. hash/crc32's Update already performs the one's
// complement pre/post conditioning that the classic zlib-style crc32sum
// applies, so seeding with 1 instead of the conventional 0 reproduces the
// reference codec's crc32sum(1, ...) convention: Sum(1, nil) == 1.
func Sum(seed uint32, data []byte) uint32 {
	return crc32.Update(seed, crc32.IEEETable, data)
}
