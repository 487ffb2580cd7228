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

// Package rawdb contains the low level database accessors for persisted
// registry state. The in-memory registries remain authoritative; the
// accessors exist so a restarted node reloads identical state and emits
// no duplicate events.
package rawdb

import (
	"encoding/binary"

	"github.com/trustmesh/go-trustmesh/common"
)

// Database key prefixes. Secondary index entries store the 8-byte
// big-endian agent id as their value.
var (
	agentPrefix    = []byte("ra") // agentPrefix + id (uint64 BE) -> agent record
	domainPrefix   = []byte("rd") // domainPrefix + lowercase domain -> agent id
	didPrefix      = []byte("ri") // didPrefix + DID -> agent id
	ownerPrefix    = []byte("ro") // ownerPrefix + address -> agent id
	noncePrefix    = []byte("rn") // noncePrefix + address -> nonce (uint64 BE)
	authPrefix     = []byte("rf") // authPrefix + client id + server id -> auth token
	requestPrefix  = []byte("rv") // requestPrefix + data hash -> validation request record
	responsePrefix = []byte("rr") // responsePrefix + data hash -> response score (1 byte)

	nextAgentIDKey = []byte("NextAgentID")
)

func agentKey(id uint64) []byte {
	return append(agentPrefix, encodeUint64(id)...)
}

func domainKey(domain string) []byte {
	return append(domainPrefix, []byte(domain)...)
}

func didKey(identifier string) []byte {
	return append(didPrefix, []byte(identifier)...)
}

func ownerKey(addr common.Address) []byte {
	return append(ownerPrefix, addr.Bytes()...)
}

func nonceKey(addr common.Address) []byte {
	return append(noncePrefix, addr.Bytes()...)
}

func authKey(clientID, serverID uint64) []byte {
	key := append(authPrefix, encodeUint64(clientID)...)
	return append(key, encodeUint64(serverID)...)
}

func requestKey(dataHash common.Hash) []byte {
	return append(requestPrefix, dataHash.Bytes()...)
}

func responseKey(dataHash common.Hash) []byte {
	return append(responsePrefix, dataHash.Bytes()...)
}

func encodeUint64(n uint64) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, n)
	return enc
}

func decodeUint64(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}
