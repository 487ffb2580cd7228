// Copyright 2025 The go-trustmesh Authors
// This file is part of the go-trustmesh library.
//
// The go-trustmesh library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-trustmesh library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-trustmesh library. If not, see <http://www.gnu.org/licenses/>.

// Package base58 implements the 58-symbol encoding used by DID identifier
// payloads. The alphabet excludes the visually ambiguous symbols 0, O, I
// and l. Decoding is a multiply-accumulate base conversion over a fixed
// scratch buffer; leading '1' symbols map to an equal count of leading
// zero bytes independent of the base conversion.
package base58

import (
	"errors"
	"fmt"
)

const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// maxDecodedLen bounds the scratch buffer used during decoding. DID
// payloads decode to 31 bytes; the buffer is sized generously so the
// decoder stays usable for other short payloads.
const maxDecodedLen = 64

var (
	// ErrOverflow is returned when the decoded value does not fit the
	// fixed-size scratch buffer.
	ErrOverflow = errors.New("base58: decoded value overflows scratch buffer")
)

var decodeMap [128]int8

func init() {
	for i := range decodeMap {
		decodeMap[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		decodeMap[alphabet[i]] = int8(i)
	}
}

// Decode decodes a base58 string into bytes. It fails on any symbol
// outside the alphabet and on values exceeding the scratch buffer.
func Decode(s string) ([]byte, error) {
	if len(s) == 0 {
		return []byte{}, nil
	}

	// Leading '1' symbols become leading zero bytes.
	zeros := 0
	for zeros < len(s) && s[zeros] == '1' {
		zeros++
	}

	var scratch [maxDecodedLen]byte
	length := 0
	for i := zeros; i < len(s); i++ {
		c := s[i]
		if c >= 128 || decodeMap[c] < 0 {
			return nil, fmt.Errorf("base58: invalid symbol %q at position %d", c, i)
		}
		carry := int(decodeMap[c])
		j := 0
		for k := maxDecodedLen - 1; carry != 0 || j < length; k-- {
			if k < 0 {
				return nil, ErrOverflow
			}
			carry += 58 * int(scratch[k])
			scratch[k] = byte(carry & 0xff)
			carry >>= 8
			j++
		}
		length = j
	}

	out := make([]byte, zeros+length)
	copy(out[zeros:], scratch[maxDecodedLen-length:])
	return out, nil
}

// Encode encodes bytes into a base58 string. Leading zero bytes become
// leading '1' symbols.
func Encode(b []byte) string {
	zeros := 0
	for zeros < len(b) && b[zeros] == 0 {
		zeros++
	}

	// Upper bound on output size: log(256)/log(58) ~ 1.37 symbols per byte.
	size := (len(b)-zeros)*137/100 + 1
	scratch := make([]byte, size)
	length := 0
	for i := zeros; i < len(b); i++ {
		carry := int(b[i])
		j := 0
		for k := size - 1; carry != 0 || j < length; k-- {
			carry += 256 * int(scratch[k])
			scratch[k] = byte(carry % 58)
			carry /= 58
			j++
		}
		length = j
	}

	out := make([]byte, zeros+length)
	for i := 0; i < zeros; i++ {
		out[i] = '1'
	}
	for i, v := range scratch[size-length:] {
		out[zeros+i] = alphabet[v]
	}
	return string(out)
}
