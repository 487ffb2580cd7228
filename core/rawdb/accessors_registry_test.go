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

package rawdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trustmesh/go-trustmesh/common"
	"github.com/trustmesh/go-trustmesh/trustdb"
)

func TestAgentRecordRoundTrip(t *testing.T) {
	db := trustdb.NewMemoryDB()
	rec := &AgentRecord{
		ID:          7,
		Owner:       common.HexToAddress("0x0102030405060708091011121314151617181920"),
		Domain:      "Agent.Example",
		DID:         "did:trust:mesh:acct:abc",
		Description: "test agent",
	}
	WriteAgent(db, rec, nil)

	got := ReadAgent(db, 7)
	require.NotNil(t, got)
	assert.Equal(t, rec, got)
	assert.Nil(t, ReadAgent(db, 8))

	var seen []uint64
	ReadAllAgents(db, func(r *AgentRecord) { seen = append(seen, r.ID) })
	assert.Equal(t, []uint64{7}, seen)
}

func TestAgentIndexMaintenance(t *testing.T) {
	db := trustdb.NewMemoryDB()
	prev := &AgentRecord{
		ID:     1,
		Owner:  common.HexToAddress("0x01"),
		Domain: "old.example",
		DID:    "did:trust:mesh:acct:old",
	}
	WriteAgent(db, prev, nil)

	next := &AgentRecord{
		ID:     1,
		Owner:  common.HexToAddress("0x02"),
		Domain: "new.example",
		DID:    "did:trust:mesh:acct:new",
	}
	WriteAgent(db, next, prev)

	// Stale index entries are gone, new ones are present.
	for _, stale := range [][]byte{
		domainKey(prev.Domain),
		didKey(prev.DID),
		ownerKey(prev.Owner),
	} {
		has, err := db.Has(stale)
		require.NoError(t, err)
		assert.False(t, has, "stale index key survived")
	}
	for _, fresh := range [][]byte{
		domainKey(next.Domain),
		didKey(next.DID),
		ownerKey(next.Owner),
	} {
		has, err := db.Has(fresh)
		require.NoError(t, err)
		assert.True(t, has, "fresh index key missing")
	}
}

func TestNextAgentIDRoundTrip(t *testing.T) {
	db := trustdb.NewMemoryDB()
	assert.Zero(t, ReadNextAgentID(db))
	WriteNextAgentID(db, 42)
	assert.Equal(t, uint64(42), ReadNextAgentID(db))
}

func TestConsentNonceRoundTrip(t *testing.T) {
	db := trustdb.NewMemoryDB()
	a1 := common.HexToAddress("0x01")
	a2 := common.HexToAddress("0x02")
	WriteConsentNonce(db, a1, 3)
	WriteConsentNonce(db, a2, 9)
	WriteConsentNonce(db, a1, 4)

	got := make(map[common.Address]uint64)
	ReadConsentNonces(db, func(addr common.Address, nonce uint64) { got[addr] = nonce })
	assert.Equal(t, map[common.Address]uint64{a1: 4, a2: 9}, got)
}

func TestFeedbackAuthRoundTrip(t *testing.T) {
	db := trustdb.NewMemoryDB()
	token := common.HexToHash("0xaa")
	WriteFeedbackAuth(db, 1, 2, token)

	found := false
	ReadFeedbackAuths(db, func(clientID, serverID uint64, got common.Hash) {
		assert.Equal(t, uint64(1), clientID)
		assert.Equal(t, uint64(2), serverID)
		assert.Equal(t, token, got)
		found = true
	})
	assert.True(t, found)
}

func TestValidationRoundTrip(t *testing.T) {
	db := trustdb.NewMemoryDB()
	hash := common.HexToHash("0xbb")
	rec := &RequestRecord{ValidatorID: 1, ServerID: 2, DataHash: hash, Timestamp: 10}
	WriteValidationRequest(db, rec)
	WriteValidationResponse(db, hash, 85)

	var reqs []*RequestRecord
	ReadValidationRequests(db, func(r *RequestRecord) { reqs = append(reqs, r) })
	require.Len(t, reqs, 1)
	assert.Equal(t, rec, reqs[0])

	scores := make(map[common.Hash]uint8)
	ReadValidationResponses(db, func(h common.Hash, s uint8) { scores[h] = s })
	assert.Equal(t, map[common.Hash]uint8{hash: 85}, scores)

	DeleteValidationResponse(db, hash)
	count := 0
	ReadValidationResponses(db, func(common.Hash, uint8) { count++ })
	assert.Zero(t, count)
}
