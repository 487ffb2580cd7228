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

package did

import (
	"testing"

	"github.com/trustmesh/go-trustmesh/common"
	"github.com/trustmesh/go-trustmesh/common/base58"
)

// makeIdentifier builds a syntactically valid identifier whose payload
// embeds addr in the 31-byte address-controlled layout.
func makeIdentifier(addr common.Address) string {
	var payload [31]byte
	payload[0] = 0x12
	payload[1] = 0x01
	copy(payload[9:29], addr.Bytes())
	payload[29] = 0x7f
	payload[30] = 0x01
	return "did:trust:mesh:addr:" + base58.Encode(payload[:])
}

func TestValidateEmbeddedAddress(t *testing.T) {
	addr := common.HexToAddress("0x1234567890AbcdEF1234567890aBcdef12345678")
	other := common.HexToAddress("0x00000000000000000000000000000000DeaDBeef")

	id := makeIdentifier(addr)
	if !Validate(id, addr) {
		t.Fatalf("identifier %q should validate for its embedded address", id)
	}
	if Validate(id, other) {
		t.Fatal("identifier should not validate for a different address")
	}

	got, ok := ExtractAddress(id)
	if !ok {
		t.Fatal("extract failed on valid identifier")
	}
	if got != addr {
		t.Fatalf("extracted %s, want %s", got.Hex(), addr.Hex())
	}
}

func TestValidateSeparatorCount(t *testing.T) {
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")
	var payload [31]byte
	copy(payload[9:29], addr.Bytes())
	encoded := base58.Encode(payload[:])

	bad := []string{
		"did:trust:" + encoded,                    // two separators
		"did:trust:mesh:" + encoded,               // three separators
		"did:trust:mesh:addr:extra:" + encoded,    // five separators
		"did:trust:mesh:addr:",                    // empty payload
		"didtrustmeshaddr" + encoded,              // none
	}
	for _, id := range bad {
		if Validate(id, addr) {
			t.Fatalf("identifier %q should be rejected", id)
		}
	}
}

func TestValidatePayloadLength(t *testing.T) {
	addr := common.HexToAddress("0x2222222222222222222222222222222222222222")
	for _, n := range []int{20, 30, 32, 40} {
		payload := make([]byte, n)
		if n >= 29 {
			copy(payload[9:29], addr.Bytes())
		}
		id := "did:trust:mesh:addr:" + base58.Encode(payload)
		if Validate(id, addr) {
			t.Fatalf("payload of %d bytes should be rejected", n)
		}
	}
}

func TestValidateStructuralPadding(t *testing.T) {
	addr := common.HexToAddress("0x3333333333333333333333333333333333333333")
	for i := 2; i < 9; i++ {
		var payload [31]byte
		copy(payload[9:29], addr.Bytes())
		payload[i] = 0x01
		id := "did:trust:mesh:addr:" + base58.Encode(payload[:])
		if Validate(id, addr) {
			t.Fatalf("non-zero padding byte %d should be rejected", i)
		}
	}
}

func TestValidateBadSymbols(t *testing.T) {
	addr := common.HexToAddress("0x4444444444444444444444444444444444444444")
	if Validate("did:trust:mesh:addr:0OIl", addr) {
		t.Fatal("payload with excluded symbols should be rejected")
	}
}
