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
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/trustmesh/go-trustmesh/common"
	"github.com/trustmesh/go-trustmesh/common/did"
	"github.com/trustmesh/go-trustmesh/core/rawdb"
	"github.com/trustmesh/go-trustmesh/event"
	"github.com/trustmesh/go-trustmesh/log"
	"github.com/trustmesh/go-trustmesh/params"
	"github.com/trustmesh/go-trustmesh/trustdb"
)

// didCacheSize bounds the identifier decode cache. Decoding is a base58
// multiply-accumulate over the whole payload, worth amortizing for hot
// identifiers that are re-validated on every update.
const didCacheSize = 4096

// IdentityRegistry owns the canonical agent directory. The record map is
// authoritative; the domain, DID and owner maps are derived indexes kept
// in sync under the same lock. All mutations are all-or-nothing: every
// precondition is checked before the first map write.
type IdentityRegistry struct {
	mu sync.RWMutex

	agents   map[uint64]*Agent
	byDomain map[string]uint64 // lower-cased domain -> id
	byDID    map[string]uint64
	byOwner  map[common.Address]uint64
	nonces   map[common.Address]uint64 // delegated-consent replay counters
	nextID   uint64

	config   *params.RegistryConfig
	fee      FeePolicy
	mux      *event.TypeMux
	db       trustdb.Database // nil for a purely in-memory registry
	didCache *lru.Cache       // identifier -> common.Address
}

// NewIdentityRegistry creates the directory, replaying any previously
// persisted records from db. db may be nil, in which case the registry
// is memory-only.
func NewIdentityRegistry(config *params.RegistryConfig, fee FeePolicy, mux *event.TypeMux, db trustdb.Database) *IdentityRegistry {
	if config == nil {
		cfg := params.DefaultRegistryConfig
		config = &cfg
	}
	if fee == nil {
		fee = NoFee{}
	}
	cache, _ := lru.New(didCacheSize)
	r := &IdentityRegistry{
		agents:   make(map[uint64]*Agent),
		byDomain: make(map[string]uint64),
		byDID:    make(map[string]uint64),
		byOwner:  make(map[common.Address]uint64),
		nonces:   make(map[common.Address]uint64),
		nextID:   1,
		config:   config,
		fee:      fee,
		mux:      mux,
		db:       db,
		didCache: cache,
	}
	if db != nil {
		rawdb.ReadAllAgents(db, func(rec *rawdb.AgentRecord) {
			agent := &Agent{
				ID:           rec.ID,
				Owner:        rec.Owner,
				Domain:       rec.Domain,
				DID:          rec.DID,
				Description:  rec.Description,
				DeveloperDID: rec.DeveloperDID,
			}
			r.agents[agent.ID] = agent
			if agent.Domain != "" {
				r.byDomain[strings.ToLower(agent.Domain)] = agent.ID
			}
			if agent.DID != "" {
				r.byDID[agent.DID] = agent.ID
			}
			r.byOwner[agent.Owner] = agent.ID
			if agent.ID >= r.nextID {
				r.nextID = agent.ID + 1
			}
		})
		if next := rawdb.ReadNextAgentID(db); next > r.nextID {
			r.nextID = next
		}
		rawdb.ReadConsentNonces(db, func(addr common.Address, nonce uint64) {
			r.nonces[addr] = nonce
		})
		if len(r.agents) > 0 {
			log.Info("Loaded agent directory", "agents", len(r.agents), "next", r.nextID)
		}
	}
	return r
}

// Register creates an agent record owned by the caller. The ledger host
// authenticates caller, so self-registration is implicit: the record's
// owner is always the submitting address.
func (r *IdentityRegistry) Register(caller common.Address, domain, identifier, description string) (uint64, error) {
	if caller.IsZero() {
		return 0, ErrInvalidAddress
	}
	if err := r.checkPolicy(domain, identifier); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if domain != "" {
		if _, taken := r.byDomain[strings.ToLower(domain)]; taken {
			return 0, ErrDomainAlreadyRegistered
		}
	}
	if identifier != "" {
		if !r.validDIDFor(identifier, caller) {
			return 0, ErrDIDAddressMismatch
		}
		if _, taken := r.byDID[identifier]; taken {
			return 0, ErrDIDAlreadyRegistered
		}
	}
	if _, taken := r.byOwner[caller]; taken {
		return 0, ErrAddressAlreadyRegistered
	}
	if err := r.fee.Charge(caller); err != nil {
		return 0, err
	}
	agent := &Agent{
		ID:          r.allocID(),
		Owner:       caller,
		Domain:      domain,
		DID:         identifier,
		Description: description,
	}
	r.commit(agent, nil)
	r.post(AgentRegisteredEvent{AgentID: agent.ID, Owner: agent.Owner, Domain: agent.Domain, DID: agent.DID})
	log.Debug("Agent registered", "id", agent.ID, "owner", agent.Owner, "domain", domain)
	return agent.ID, nil
}

// UpdateAgent applies a partial mutation to an agent record. Only the
// current owner may update; the whole request either fully applies or
// fails with no state change. A retained DID is re-validated against the
// owner address that is effective after this same call.
func (r *IdentityRegistry) UpdateAgent(caller common.Address, id uint64, req UpdateRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	agent, ok := r.agents[id]
	if !ok {
		return ErrAgentNotFound
	}
	if agent.Owner != caller {
		return ErrUnauthorizedUpdate
	}
	newOwner := agent.Owner
	if req.Owner != nil {
		if req.Owner.IsZero() {
			return ErrInvalidAddress
		}
		newOwner = *req.Owner
	}
	newDID := agent.DID
	if req.DID != nil {
		newDID = *req.DID
	}
	if newOwner != agent.Owner {
		if other, taken := r.byOwner[newOwner]; taken && other != id {
			return ErrAddressAlreadyRegistered
		}
	}
	if newDID != "" {
		// Binding is checked against the post-update owner even when
		// only the address changes.
		if !r.validDIDFor(newDID, newOwner) {
			return ErrDIDAddressMismatch
		}
		if other, taken := r.byDID[newDID]; taken && other != id {
			return ErrDIDAlreadyRegistered
		}
	}
	prev := copyAgent(agent)
	if newOwner != agent.Owner {
		delete(r.byOwner, agent.Owner)
		agent.Owner = newOwner
		r.byOwner[newOwner] = id
	}
	if req.DID != nil && newDID != prev.DID {
		if prev.DID != "" {
			delete(r.byDID, prev.DID)
		}
		agent.DID = newDID
		if newDID != "" {
			r.byDID[newDID] = id
		}
	}
	if req.Description != nil {
		agent.Description = *req.Description
	}
	r.persist(agent, prev)
	r.post(AgentUpdatedEvent{AgentID: id, Owner: agent.Owner, DID: agent.DID, Description: agent.Description})
	log.Debug("Agent updated", "id", id, "owner", agent.Owner)
	return nil
}

// UpdateDescription replaces only the free-text description.
func (r *IdentityRegistry) UpdateDescription(caller common.Address, id uint64, description string) error {
	return r.UpdateAgent(caller, id, UpdateRequest{Description: &description})
}

// LinkDeveloperDID records a claim binding the agent to the developer
// that registered it. Owner-only; overwrites any prior link.
func (r *IdentityRegistry) LinkDeveloperDID(caller common.Address, id uint64, developer common.Address, developerDID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	agent, ok := r.agents[id]
	if !ok {
		return ErrAgentNotFound
	}
	if agent.Owner != caller {
		return ErrUnauthorizedUpdate
	}
	if !r.validDIDFor(developerDID, developer) {
		return ErrInvalidDeveloperDID
	}
	prev := copyAgent(agent)
	agent.DeveloperDID = developerDID
	r.persist(agent, prev)
	r.post(AgentDeveloperLinkedEvent{AgentID: id, DeveloperDID: developerDID})
	return nil
}

// Get returns a detached copy of the agent record.
func (r *IdentityRegistry) Get(id uint64) (*Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agent, ok := r.agents[id]
	if !ok {
		return nil, ErrAgentNotFound
	}
	return copyAgent(agent), nil
}

// ResolveByDomain looks up an agent by domain, case-insensitively.
func (r *IdentityRegistry) ResolveByDomain(domain string) (*Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byDomain[strings.ToLower(domain)]
	if !ok {
		return nil, ErrAgentNotFound
	}
	return copyAgent(r.agents[id]), nil
}

// ResolveByAddress looks up an agent by its current owner address.
func (r *IdentityRegistry) ResolveByAddress(owner common.Address) (*Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byOwner[owner]
	if !ok {
		return nil, ErrAgentNotFound
	}
	return copyAgent(r.agents[id]), nil
}

// ResolveByDID looks up an agent by its exact identifier string.
func (r *IdentityRegistry) ResolveByDID(identifier string) (*Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byDID[identifier]
	if !ok {
		return nil, ErrDIDNotRegistered
	}
	return copyAgent(r.agents[id]), nil
}

// Exists reports whether an agent id has been assigned.
func (r *IdentityRegistry) Exists(id uint64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.agents[id]
	return ok
}

// Count returns the number of registered agents.
func (r *IdentityRegistry) Count() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return uint64(len(r.agents))
}

// Nonce returns the next delegated-consent nonce expected for an address.
func (r *IdentityRegistry) Nonce(addr common.Address) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nonces[addr]
}

// ownerOf resolves the current owner without copying the record. Used by
// the reputation and validation registries for authorization checks.
func (r *IdentityRegistry) ownerOf(id uint64) (common.Address, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agent, ok := r.agents[id]
	if !ok {
		return common.Address{}, false
	}
	return agent.Owner, true
}

// checkPolicy enforces the deployment's required identifying fields.
func (r *IdentityRegistry) checkPolicy(domain, identifier string) error {
	switch r.config.Policy {
	case params.PolicyRequireDomain:
		if domain == "" {
			return ErrInvalidInput
		}
	case params.PolicyRequireDID:
		if identifier == "" {
			return ErrInvalidInput
		}
	case params.PolicyRequireEither:
		if domain == "" && identifier == "" {
			return ErrInvalidInput
		}
	case params.PolicyOpen:
	}
	return nil
}

// validDIDFor checks identifier binding against an address, caching the
// decoded embedded address by identifier text.
func (r *IdentityRegistry) validDIDFor(identifier string, expected common.Address) bool {
	if cached, ok := r.didCache.Get(identifier); ok {
		return cached.(common.Address) == expected
	}
	embedded, ok := did.ExtractAddress(identifier)
	if !ok {
		return false
	}
	r.didCache.Add(identifier, embedded)
	return embedded == expected
}

// allocID hands out the next sequential agent id. Ids start at 1 and are
// never reused; 0 stays the "not found" sentinel.
func (r *IdentityRegistry) allocID() uint64 {
	id := r.nextID
	r.nextID++
	if r.db != nil {
		rawdb.WriteNextAgentID(r.db, r.nextID)
	}
	return id
}

// commit installs a fresh record in the authoritative map and every
// derived index, then writes it through. Caller holds the write lock and
// has already verified all uniqueness preconditions.
func (r *IdentityRegistry) commit(agent *Agent, prev *Agent) {
	r.agents[agent.ID] = agent
	if agent.Domain != "" {
		r.byDomain[strings.ToLower(agent.Domain)] = agent.ID
	}
	if agent.DID != "" {
		r.byDID[agent.DID] = agent.ID
	}
	r.byOwner[agent.Owner] = agent.ID
	r.persist(agent, prev)
}

// persist writes an agent record through to the database, if any.
func (r *IdentityRegistry) persist(agent *Agent, prev *Agent) {
	if r.db == nil {
		return
	}
	var prevRec *rawdb.AgentRecord
	if prev != nil {
		prevRec = toRecord(prev)
	}
	rawdb.WriteAgent(r.db, toRecord(agent), prevRec)
}

// consumeNonce burns the current consent nonce for an address. Caller
// holds the write lock.
func (r *IdentityRegistry) consumeNonce(addr common.Address) uint64 {
	nonce := r.nonces[addr]
	r.nonces[addr] = nonce + 1
	if r.db != nil {
		rawdb.WriteConsentNonce(r.db, addr, nonce+1)
	}
	return nonce
}

// post publishes an event when a mux is attached.
func (r *IdentityRegistry) post(ev interface{}) {
	if r.mux == nil {
		return
	}
	if err := r.mux.Post(ev); err != nil {
		log.Trace("Registry event dropped", "err", err)
	}
}

func toRecord(a *Agent) *rawdb.AgentRecord {
	return &rawdb.AgentRecord{
		ID:           a.ID,
		Owner:        a.Owner,
		Domain:       a.Domain,
		DID:          a.DID,
		Description:  a.Description,
		DeveloperDID: a.DeveloperDID,
	}
}
