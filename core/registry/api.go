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
	"github.com/trustmesh/go-trustmesh/event"
	"github.com/trustmesh/go-trustmesh/params"
	"github.com/trustmesh/go-trustmesh/trustdb"
)

// TrustRegistry bundles the identity, reputation and validation
// registries over a shared event mux and database. It is the unit the
// node embeds and the API layer serves.
type TrustRegistry struct {
	Identity   *IdentityRegistry
	Reputation *ReputationRegistry
	Validation *ValidationRegistry

	mux *event.TypeMux
	db  trustdb.Database
}

// NewTrustRegistry wires the three registries together. db may be nil
// for a memory-only deployment; fee may be nil for fee-less policies.
func NewTrustRegistry(config *params.RegistryConfig, fee FeePolicy, db trustdb.Database) *TrustRegistry {
	mux := event.NewTypeMux()
	identity := NewIdentityRegistry(config, fee, mux, db)
	return &TrustRegistry{
		Identity:   identity,
		Reputation: NewReputationRegistry(identity, mux, db),
		Validation: NewValidationRegistry(identity, mux, db),
		mux:        mux,
		db:         db,
	}
}

// EventMux returns the mux registry events are posted on. Indexers
// subscribe here for the typed event structs.
func (t *TrustRegistry) EventMux() *event.TypeMux {
	return t.mux
}

// Stop tears down the event mux, unblocking all subscribers.
func (t *TrustRegistry) Stop() {
	t.mux.Stop()
}
