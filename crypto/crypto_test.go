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

package crypto

import (
	"bytes"
	"testing"

	"github.com/trustmesh/go-trustmesh/common"
)

var testmsg = Keccak256([]byte("trustmesh signature test"))

func TestKeccak256(t *testing.T) {
	// Known vector: keccak256 of empty input.
	want := common.HexToHash("0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")
	if got := Keccak256Hash(); got != want {
		t.Fatalf("empty keccak256 = %s, want %s", got.Hex(), want.Hex())
	}
	if !bytes.Equal(Keccak256([]byte("abc")), Keccak256([]byte("a"), []byte("bc"))) {
		t.Fatal("keccak256 should concatenate chunked input")
	}
}

func TestSignAndRecover(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	sig, err := Sign(testmsg, key)
	if err != nil {
		t.Fatal(err)
	}
	if len(sig) != SignatureLength {
		t.Fatalf("signature length %d, want %d", len(sig), SignatureLength)
	}

	pub, err := SigToPub(testmsg, sig)
	if err != nil {
		t.Fatal(err)
	}
	if PubkeyToAddress(*pub) != PubkeyToAddress(key.PublicKey) {
		t.Fatal("recovered address does not match signer")
	}
}

func TestRecoverRejectsMutatedSignature(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	sig, err := Sign(testmsg, key)
	if err != nil {
		t.Fatal(err)
	}
	sig[3] ^= 0xff

	pub, err := SigToPub(testmsg, sig)
	if err == nil && PubkeyToAddress(*pub) == PubkeyToAddress(key.PublicKey) {
		t.Fatal("mutated signature still recovers the signer")
	}
}

func TestVerifySignature(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	sig, err := Sign(testmsg, key)
	if err != nil {
		t.Fatal(err)
	}
	pub := FromECDSAPub(&key.PublicKey)
	if !VerifySignature(pub, testmsg, sig[:64]) {
		t.Fatal("valid signature did not verify")
	}
	if VerifySignature(pub, Keccak256([]byte("other")), sig[:64]) {
		t.Fatal("signature verified against wrong digest")
	}
}

func TestHexToECDSARoundTrip(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := HexToECDSA(common.Bytes2Hex(FromECDSA(key)))
	if err != nil {
		t.Fatal(err)
	}
	if parsed.D.Cmp(key.D) != 0 {
		t.Fatal("private key round trip mismatch")
	}
}
