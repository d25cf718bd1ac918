// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bzip3

import "github.com/cosnicolaou/bzip3/internal/bzip3"

// Sentinel errors for the codec's stable error taxonomy. Callers should
// compare with errors.Is.
var (
	ErrOutOfBounds     = &bzip3.Error{Code: bzip3.OutOfBounds}
	ErrBWT             = &bzip3.Error{Code: bzip3.BWTFailed}
	ErrCRC             = &bzip3.Error{Code: bzip3.CRCMismatch}
	ErrMalformedHeader = &bzip3.Error{Code: bzip3.MalformedHeader}
	ErrTruncatedData   = &bzip3.Error{Code: bzip3.TruncatedData}
	ErrDataTooBig      = &bzip3.Error{Code: bzip3.DataTooBig}
	ErrInit            = &bzip3.Error{Code: bzip3.InitFailed}
)

func errorFor(c bzip3.Code) error {
	switch c {
	case bzip3.OutOfBounds:
		return ErrOutOfBounds
	case bzip3.BWTFailed:
		return ErrBWT
	case bzip3.CRCMismatch:
		return ErrCRC
	case bzip3.MalformedHeader:
		return ErrMalformedHeader
	case bzip3.TruncatedData:
		return ErrTruncatedData
	case bzip3.DataTooBig:
		return ErrDataTooBig
	case bzip3.InitFailed:
		return ErrInit
	default:
		return nil
	}
}
