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
	"encoding/json"
	"strings"

	"github.com/trustmesh/go-trustmesh/common"
	"github.com/trustmesh/go-trustmesh/log"
	"github.com/trustmesh/go-trustmesh/trustdb"
)

// AgentRecord is the persisted form of an agent directory entry.
type AgentRecord struct {
	ID           uint64         `json:"id"`
	Owner        common.Address `json:"owner"`
	Domain       string         `json:"domain,omitempty"`
	DID          string         `json:"did,omitempty"`
	Description  string         `json:"description,omitempty"`
	DeveloperDID string         `json:"developerDid,omitempty"`
}

// RequestRecord is the persisted form of a validation request slot.
type RequestRecord struct {
	ValidatorID uint64      `json:"validatorId"`
	ServerID    uint64      `json:"serverId"`
	DataHash    common.Hash `json:"dataHash"`
	Timestamp   uint64      `json:"timestamp"`
	Responded   bool        `json:"responded"`
}

// WriteAgent stores an agent record and its secondary index entries. The
// caller passes the previous record so stale index entries are removed in
// the same logical step; prev may be nil for a fresh registration.
func WriteAgent(db trustdb.KeyValueWriter, rec *AgentRecord, prev *AgentRecord) {
	if prev != nil {
		if prev.Domain != "" && !strings.EqualFold(prev.Domain, rec.Domain) {
			if err := db.Delete(domainKey(strings.ToLower(prev.Domain))); err != nil {
				log.Crit("Failed to delete stale domain index", "err", err)
			}
		}
		if prev.DID != "" && prev.DID != rec.DID {
			if err := db.Delete(didKey(prev.DID)); err != nil {
				log.Crit("Failed to delete stale DID index", "err", err)
			}
		}
		if prev.Owner != rec.Owner {
			if err := db.Delete(ownerKey(prev.Owner)); err != nil {
				log.Crit("Failed to delete stale owner index", "err", err)
			}
		}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		log.Crit("Failed to encode agent record", "err", err)
	}
	if err := db.Put(agentKey(rec.ID), data); err != nil {
		log.Crit("Failed to store agent record", "err", err)
	}
	id := encodeUint64(rec.ID)
	if rec.Domain != "" {
		if err := db.Put(domainKey(strings.ToLower(rec.Domain)), id); err != nil {
			log.Crit("Failed to store domain index", "err", err)
		}
	}
	if rec.DID != "" {
		if err := db.Put(didKey(rec.DID), id); err != nil {
			log.Crit("Failed to store DID index", "err", err)
		}
	}
	if err := db.Put(ownerKey(rec.Owner), id); err != nil {
		log.Crit("Failed to store owner index", "err", err)
	}
}

// ReadAgent retrieves the agent record with the given id, or nil.
func ReadAgent(db trustdb.KeyValueReader, id uint64) *AgentRecord {
	data, err := db.Get(agentKey(id))
	if err != nil {
		return nil
	}
	rec := new(AgentRecord)
	if err := json.Unmarshal(data, rec); err != nil {
		log.Error("Invalid agent record", "id", id, "err", err)
		return nil
	}
	return rec
}

// ReadAllAgents streams every persisted agent record in id order.
func ReadAllAgents(db trustdb.Iteratee, fn func(*AgentRecord)) {
	it := db.NewIterator(agentPrefix)
	defer it.Release()
	for it.Next() {
		rec := new(AgentRecord)
		if err := json.Unmarshal(it.Value(), rec); err != nil {
			log.Error("Skipping invalid agent record", "key", common.Bytes2Hex(it.Key()), "err", err)
			continue
		}
		fn(rec)
	}
}

// WriteNextAgentID stores the next id the identity registry will assign.
func WriteNextAgentID(db trustdb.KeyValueWriter, next uint64) {
	if err := db.Put(nextAgentIDKey, encodeUint64(next)); err != nil {
		log.Crit("Failed to store next agent id", "err", err)
	}
}

// ReadNextAgentID retrieves the next agent id, or 0 when unset.
func ReadNextAgentID(db trustdb.KeyValueReader) uint64 {
	data, err := db.Get(nextAgentIDKey)
	if err != nil {
		return 0
	}
	return decodeUint64(data)
}

// WriteConsentNonce stores the delegated-consent nonce for an address.
func WriteConsentNonce(db trustdb.KeyValueWriter, addr common.Address, nonce uint64) {
	if err := db.Put(nonceKey(addr), encodeUint64(nonce)); err != nil {
		log.Crit("Failed to store consent nonce", "err", err)
	}
}

// ReadConsentNonces streams every persisted consent nonce.
func ReadConsentNonces(db trustdb.Iteratee, fn func(common.Address, uint64)) {
	it := db.NewIterator(noncePrefix)
	defer it.Release()
	for it.Next() {
		addr := common.BytesToAddress(it.Key()[len(noncePrefix):])
		fn(addr, decodeUint64(it.Value()))
	}
}

// WriteFeedbackAuth stores a feedback authorization token.
func WriteFeedbackAuth(db trustdb.KeyValueWriter, clientID, serverID uint64, token common.Hash) {
	if err := db.Put(authKey(clientID, serverID), token.Bytes()); err != nil {
		log.Crit("Failed to store feedback authorization", "err", err)
	}
}

// ReadFeedbackAuths streams every persisted feedback authorization.
func ReadFeedbackAuths(db trustdb.Iteratee, fn func(clientID, serverID uint64, token common.Hash)) {
	it := db.NewIterator(authPrefix)
	defer it.Release()
	for it.Next() {
		key := it.Key()[len(authPrefix):]
		if len(key) != 16 {
			continue
		}
		fn(decodeUint64(key[:8]), decodeUint64(key[8:]), common.BytesToHash(it.Value()))
	}
}

// WriteValidationRequest stores a validation request slot.
func WriteValidationRequest(db trustdb.KeyValueWriter, rec *RequestRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		log.Crit("Failed to encode validation request", "err", err)
	}
	if err := db.Put(requestKey(rec.DataHash), data); err != nil {
		log.Crit("Failed to store validation request", "err", err)
	}
}

// ReadValidationRequests streams every persisted validation request.
func ReadValidationRequests(db trustdb.Iteratee, fn func(*RequestRecord)) {
	it := db.NewIterator(requestPrefix)
	defer it.Release()
	for it.Next() {
		rec := new(RequestRecord)
		if err := json.Unmarshal(it.Value(), rec); err != nil {
			log.Error("Skipping invalid validation request", "key", common.Bytes2Hex(it.Key()), "err", err)
			continue
		}
		fn(rec)
	}
}

// WriteValidationResponse stores a response score for a data hash.
func WriteValidationResponse(db trustdb.KeyValueWriter, dataHash common.Hash, score uint8) {
	if err := db.Put(responseKey(dataHash), []byte{score}); err != nil {
		log.Crit("Failed to store validation response", "err", err)
	}
}

// DeleteValidationResponse removes a stale response when a request slot
// is reused after expiry.
func DeleteValidationResponse(db trustdb.KeyValueWriter, dataHash common.Hash) {
	if err := db.Delete(responseKey(dataHash)); err != nil {
		log.Crit("Failed to delete validation response", "err", err)
	}
}

// ReadValidationResponses streams every persisted response score.
func ReadValidationResponses(db trustdb.Iteratee, fn func(common.Hash, uint8)) {
	it := db.NewIterator(responsePrefix)
	defer it.Release()
	for it.Next() {
		if len(it.Value()) != 1 {
			continue
		}
		fn(common.BytesToHash(it.Key()[len(responsePrefix):]), it.Value()[0])
	}
}
