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
	"encoding/binary"
	"sync"

	"github.com/google/uuid"
	"github.com/trustmesh/go-trustmesh/common"
	"github.com/trustmesh/go-trustmesh/core/rawdb"
	"github.com/trustmesh/go-trustmesh/crypto"
	"github.com/trustmesh/go-trustmesh/event"
	"github.com/trustmesh/go-trustmesh/log"
	"github.com/trustmesh/go-trustmesh/trustdb"
)

// ReputationRegistry tracks which client agents a server agent has
// pre-authorized to leave feedback. Authorizations are keyed by the
// immutable (client, server) id pair, so they survive address or DID
// rotation on either party, and are issue-once: no revocation, no
// reissue.
type ReputationRegistry struct {
	mu    sync.RWMutex
	auths map[authPair]common.Hash

	identity *IdentityRegistry
	mux      *event.TypeMux
	db       trustdb.Database

	// seed supplies per-transaction entropy for token derivation. Tests
	// override it for deterministic tokens.
	seed func() [16]byte
}

// NewReputationRegistry creates the authorization table, replaying any
// persisted entries from db. db may be nil.
func NewReputationRegistry(identity *IdentityRegistry, mux *event.TypeMux, db trustdb.Database) *ReputationRegistry {
	r := &ReputationRegistry{
		auths:    make(map[authPair]common.Hash),
		identity: identity,
		mux:      mux,
		db:       db,
		seed:     func() [16]byte { return uuid.New() },
	}
	if db != nil {
		rawdb.ReadFeedbackAuths(db, func(clientID, serverID uint64, token common.Hash) {
			r.auths[authPair{Client: clientID, Server: serverID}] = token
		})
		if len(r.auths) > 0 {
			log.Info("Loaded feedback authorizations", "count", len(r.auths))
		}
	}
	return r
}

// AcceptFeedback records the server agent's consent to receive feedback
// from the client agent and returns the derived authorization token.
// Only the server agent's current owner may call this, and only once per
// pair.
func (r *ReputationRegistry) AcceptFeedback(caller common.Address, now uint64, clientID, serverID uint64) (common.Hash, error) {
	if !r.identity.Exists(clientID) || !r.identity.Exists(serverID) {
		return common.Hash{}, ErrAgentNotFound
	}
	owner, ok := r.identity.ownerOf(serverID)
	if !ok {
		return common.Hash{}, ErrAgentNotFound
	}
	if owner != caller {
		return common.Hash{}, ErrUnauthorizedFeedback
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	pair := authPair{Client: clientID, Server: serverID}
	if _, taken := r.auths[pair]; taken {
		return common.Hash{}, ErrFeedbackAlreadyAuthorized
	}
	token := r.deriveToken(clientID, serverID, now)
	r.auths[pair] = token
	if r.db != nil {
		rawdb.WriteFeedbackAuth(r.db, clientID, serverID, token)
	}
	r.post(FeedbackAuthorizedEvent{ClientAgentID: clientID, ServerAgentID: serverID, AuthToken: token})
	log.Debug("Feedback authorized", "client", clientID, "server", serverID)
	return token, nil
}

// IsAuthorized reports whether the pair holds an authorization and
// returns the token when it does.
func (r *ReputationRegistry) IsAuthorized(clientID, serverID uint64) (bool, common.Hash) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	token, ok := r.auths[authPair{Client: clientID, Server: serverID}]
	return ok, token
}

// AuthID returns the authorization token for a pair, or the zero hash
// when no authorization exists.
func (r *ReputationRegistry) AuthID(clientID, serverID uint64) common.Hash {
	_, token := r.IsAuthorized(clientID, serverID)
	return token
}

// deriveToken mixes the pair, the logical-clock value and unpredictable
// per-transaction entropy into a collision-resistant token.
func (r *ReputationRegistry) deriveToken(clientID, serverID, now uint64) common.Hash {
	var buf [40]byte
	binary.BigEndian.PutUint64(buf[0:], clientID)
	binary.BigEndian.PutUint64(buf[8:], serverID)
	binary.BigEndian.PutUint64(buf[16:], now)
	seed := r.seed()
	copy(buf[24:], seed[:])
	return crypto.Keccak256Hash(buf[:])
}

func (r *ReputationRegistry) post(ev interface{}) {
	if r.mux == nil {
		return
	}
	if err := r.mux.Post(ev); err != nil {
		log.Trace("Registry event dropped", "err", err)
	}
}
