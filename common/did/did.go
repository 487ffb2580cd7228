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

// Package did verifies that a decentralized identifier cryptographically
// embeds a given account address. The validator is pure and stateless: it
// performs no resolution and touches no registry state.
//
// A valid identifier contains exactly four ':' separators. The segment
// after the fourth separator is a base58 payload that decodes to exactly
// 31 bytes laid out as:
//
//	[0:2)  header
//	[2:9)  structural zero padding, marks an address-controlled identifier
//	[9:29) embedded 20-byte account address
//	[29:31) trailer
package did

import (
	"strings"

	"github.com/trustmesh/go-trustmesh/common"
	"github.com/trustmesh/go-trustmesh/common/base58"
)

const (
	// payloadLength is the exact decoded size of an identifier payload.
	payloadLength = 31
	// paddingStart and paddingEnd delimit the structural zero padding.
	paddingStart = 2
	paddingEnd   = 9
	// addressStart and addressEnd delimit the embedded address bytes.
	addressStart = 9
	addressEnd   = 29

	separators = 4
)

// ExtractAddress parses the identifier payload and returns the embedded
// account address. ok is false when the identifier is structurally
// invalid: wrong separator count, unknown base58 symbol, overflow, wrong
// payload length or non-zero structural padding.
func ExtractAddress(identifier string) (common.Address, bool) {
	payload, ok := splitPayload(identifier)
	if !ok {
		return common.Address{}, false
	}
	decoded, err := base58.Decode(payload)
	if err != nil {
		return common.Address{}, false
	}
	if len(decoded) != payloadLength {
		return common.Address{}, false
	}
	for _, b := range decoded[paddingStart:paddingEnd] {
		if b != 0 {
			return common.Address{}, false
		}
	}
	return common.BytesToAddress(decoded[addressStart:addressEnd]), true
}

// Validate reports whether the identifier embeds exactly the expected
// account address.
func Validate(identifier string, expected common.Address) bool {
	embedded, ok := ExtractAddress(identifier)
	if !ok {
		return false
	}
	return embedded == expected
}

// splitPayload returns the segment after the fourth ':' separator. The
// identifier must contain exactly four separators in total.
func splitPayload(identifier string) (string, bool) {
	if strings.Count(identifier, ":") != separators {
		return "", false
	}
	idx := strings.LastIndexByte(identifier, ':')
	payload := identifier[idx+1:]
	if payload == "" {
		return "", false
	}
	return payload, true
}
