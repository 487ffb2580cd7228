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

package base58

import (
	"bytes"
	"strings"
	"testing"
)

func TestDecodeKnownVectors(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"", []byte{}},
		{"1", []byte{0x00}},
		{"11", []byte{0x00, 0x00}},
		{"2", []byte{0x01}},
		{"z", []byte{0x39}},
		{"21", []byte{0x3a}},
		{"StV1DL6CwTryKyV", []byte("hello world")},
		{"11StV1DL6CwTryKyV", append([]byte{0, 0}, []byte("hello world")...)},
	}
	for _, tt := range tests {
		got, err := Decode(tt.in)
		if err != nil {
			t.Fatalf("Decode(%q): %v", tt.in, err)
		}
		if !bytes.Equal(got, tt.want) {
			t.Fatalf("Decode(%q) = %x, want %x", tt.in, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{0x00},
		{0x00, 0x00, 0x01},
		{0xff, 0xfe, 0xfd},
		bytes.Repeat([]byte{0xab}, 31),
		append(make([]byte, 9), bytes.Repeat([]byte{0x42}, 22)...),
	}
	for _, p := range payloads {
		got, err := Decode(Encode(p))
		if err != nil {
			t.Fatalf("round trip of %x: %v", p, err)
		}
		if !bytes.Equal(got, p) {
			t.Fatalf("round trip of %x gave %x", p, got)
		}
	}
}

func TestDecodeInvalidSymbols(t *testing.T) {
	for _, s := range []string{"0", "O", "I", "l", "ab/cd", "Stv 1", "é"} {
		if _, err := Decode(s); err == nil {
			t.Fatalf("Decode(%q) should fail", s)
		}
	}
}

func TestDecodeOverflow(t *testing.T) {
	// 89 'z' symbols decode to a value wider than the 64-byte scratch buffer.
	if _, err := Decode(strings.Repeat("z", 89)); err != ErrOverflow {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	// A long run of '1' is only leading zeros and must not overflow.
	got, err := Decode(strings.Repeat("1", 100))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 100 {
		t.Fatalf("expected 100 zero bytes, got %d", len(got))
	}
}
