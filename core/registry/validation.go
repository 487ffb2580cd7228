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

package registry

import (
	"sync"

	"github.com/trustmesh/go-trustmesh/common"
	"github.com/trustmesh/go-trustmesh/core/rawdb"
	"github.com/trustmesh/go-trustmesh/event"
	"github.com/trustmesh/go-trustmesh/log"
	"github.com/trustmesh/go-trustmesh/trustdb"
)

// ValidationRegistry runs a per-data-hash state machine over the states
// absent, pending, responded and expired. Slots are reused after expiry
// so storage stays bounded; there is no request history.
type ValidationRegistry struct {
	mu        sync.RWMutex
	requests  map[common.Hash]*ValidationRequest
	responses map[common.Hash]uint8

	identity *IdentityRegistry
	mux      *event.TypeMux
	db       trustdb.Database
}

// NewValidationRegistry creates the request tables, replaying persisted
// slots and responses from db. db may be nil.
func NewValidationRegistry(identity *IdentityRegistry, mux *event.TypeMux, db trustdb.Database) *ValidationRegistry {
	r := &ValidationRegistry{
		requests:  make(map[common.Hash]*ValidationRequest),
		responses: make(map[common.Hash]uint8),
		identity:  identity,
		mux:       mux,
		db:        db,
	}
	if db != nil {
		rawdb.ReadValidationRequests(db, func(rec *rawdb.RequestRecord) {
			r.requests[rec.DataHash] = &ValidationRequest{
				ValidatorID: rec.ValidatorID,
				ServerID:    rec.ServerID,
				DataHash:    rec.DataHash,
				Timestamp:   rec.Timestamp,
				Responded:   rec.Responded,
			}
		})
		rawdb.ReadValidationResponses(db, func(hash common.Hash, score uint8) {
			r.responses[hash] = score
		})
		if len(r.requests) > 0 {
			log.Info("Loaded validation requests", "requests", len(r.requests), "responses", len(r.responses))
		}
	}
	return r
}

// RequestValidation asks a validator agent to score the work identified
// by dataHash. Anyone may request; there is no caller check. A request
// for a slot whose occupant is still unexpired only re-emits the request
// event with the occupant's fields, without resetting the timer. An
// expired occupant is overwritten, discarding its validator assignment,
// responded flag and any recorded score.
func (r *ValidationRegistry) RequestValidation(now uint64, validatorID, serverID uint64, dataHash common.Hash) error {
	if dataHash.IsZero() {
		return ErrInvalidDataHash
	}
	if !r.identity.Exists(validatorID) || !r.identity.Exists(serverID) {
		return ErrAgentNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.requests[dataHash]; ok && !expired(cur, now) {
		r.post(ValidationRequestedEvent{ValidatorAgentID: cur.ValidatorID, ServerAgentID: cur.ServerID, DataHash: dataHash})
		return nil
	}
	req := &ValidationRequest{
		ValidatorID: validatorID,
		ServerID:    serverID,
		DataHash:    dataHash,
		Timestamp:   now,
	}
	r.requests[dataHash] = req
	if _, stale := r.responses[dataHash]; stale {
		delete(r.responses, dataHash)
		if r.db != nil {
			rawdb.DeleteValidationResponse(r.db, dataHash)
		}
	}
	if r.db != nil {
		rawdb.WriteValidationRequest(r.db, &rawdb.RequestRecord{
			ValidatorID: req.ValidatorID,
			ServerID:    req.ServerID,
			DataHash:    req.DataHash,
			Timestamp:   req.Timestamp,
		})
	}
	r.post(ValidationRequestedEvent{ValidatorAgentID: validatorID, ServerAgentID: serverID, DataHash: dataHash})
	log.Debug("Validation requested", "validator", validatorID, "server", serverID, "hash", dataHash.TerminalString())
	return nil
}

// SubmitResponse records the validator's score for a pending request.
// The caller must be the current owner of the designated validator
// agent, re-resolved now rather than at request time.
func (r *ValidationRegistry) SubmitResponse(caller common.Address, now uint64, dataHash common.Hash, score uint8) error {
	if score > MaxScore {
		return ErrInvalidResponse
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[dataHash]
	if !ok {
		return ErrValidationRequestNotFound
	}
	if expired(req, now) {
		return ErrRequestExpired
	}
	if req.Responded {
		return ErrValidationAlreadyResponded
	}
	owner, ok := r.identity.ownerOf(req.ValidatorID)
	if !ok || owner != caller {
		return ErrUnauthorizedValidator
	}
	req.Responded = true
	r.responses[dataHash] = score
	if r.db != nil {
		rawdb.WriteValidationRequest(r.db, &rawdb.RequestRecord{
			ValidatorID: req.ValidatorID,
			ServerID:    req.ServerID,
			DataHash:    req.DataHash,
			Timestamp:   req.Timestamp,
			Responded:   true,
		})
		rawdb.WriteValidationResponse(r.db, dataHash, score)
	}
	r.post(ValidationRespondedEvent{ValidatorAgentID: req.ValidatorID, ServerAgentID: req.ServerID, DataHash: dataHash, Score: score})
	log.Debug("Validation responded", "validator", req.ValidatorID, "hash", dataHash.TerminalString(), "score", score)
	return nil
}

// GetRequest returns a copy of the request occupying dataHash.
func (r *ValidationRegistry) GetRequest(dataHash common.Hash) (*ValidationRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[dataHash]
	if !ok {
		return nil, ErrValidationRequestNotFound
	}
	cpy := *req
	return &cpy, nil
}

// IsPending reports whether a request occupies dataHash and whether it
// is still awaiting a response within its window.
func (r *ValidationRegistry) IsPending(now uint64, dataHash common.Hash) (exists, pending bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[dataHash]
	if !ok {
		return false, false
	}
	return true, !req.Responded && !expired(req, now)
}

// GetResponse returns the recorded score for dataHash, if any.
func (r *ValidationRegistry) GetResponse(dataHash common.Hash) (bool, uint8) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	score, ok := r.responses[dataHash]
	return ok, score
}

// Window returns the expiration window in logical-clock units.
func (r *ValidationRegistry) Window() uint64 {
	return ExpirationWindow
}

// expired reports whether a request's window has closed. A response at
// exactly Timestamp+ExpirationWindow is still in time.
func expired(req *ValidationRequest, now uint64) bool {
	return now > req.Timestamp+ExpirationWindow
}

func (r *ValidationRegistry) post(ev interface{}) {
	if r.mux == nil {
		return
	}
	if err := r.mux.Post(ev); err != nil {
		log.Trace("Registry event dropped", "err", err)
	}
}
