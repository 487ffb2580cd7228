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

// Package registry implements the on-ledger trust registry core: the
// agent identity directory, feedback pre-authorization and time-bounded
// work validation. The host ledger serializes all state transitions and
// supplies the authenticated caller address and logical-clock value for
// each one; every operation is a synchronous, all-or-nothing transition
// over the in-memory maps, optionally written through to a trustdb
// database.
package registry

import (
	"github.com/trustmesh/go-trustmesh/common"
)

// Agent is a registered participant in the trust mesh.
type Agent struct {
	ID    uint64         `json:"id"`    // sequential from 1; 0 is the "not found" sentinel
	Owner common.Address `json:"owner"` // account authorized to mutate the record

	// Domain keeps its original casing for display; lookups use the
	// lower-cased form.
	Domain       string `json:"domain,omitempty"`
	DID          string `json:"did,omitempty"`
	Description  string `json:"description,omitempty"`
	DeveloperDID string `json:"developerDid,omitempty"` // claim linking the agent to its registering developer
}

// copyAgent returns a detached copy so callers never alias registry state.
func copyAgent(a *Agent) *Agent {
	cpy := *a
	return &cpy
}

// authPair keys feedback authorizations by the ordered (client, server)
// agent id pair.
type authPair struct {
	Client uint64
	Server uint64
}

// ValidationRequest occupies the request slot for a data hash.
type ValidationRequest struct {
	ValidatorID uint64      `json:"validatorId"`
	ServerID    uint64      `json:"serverId"`
	DataHash    common.Hash `json:"dataHash"`
	Timestamp   uint64      `json:"timestamp"` // logical-clock value at admission
	Responded   bool        `json:"responded"`
}

// UpdateRequest describes a partial mutation of an agent record. Nil
// fields are left untouched. Setting DID to an empty string clears the
// stored DID.
type UpdateRequest struct {
	Owner       *common.Address
	DID         *string
	Description *string
}

// MaxScore is the upper bound of a validation response score.
const MaxScore = 100

// ExpirationWindow is the number of logical-clock units a validation
// request stays open. A response at exactly Timestamp+ExpirationWindow
// is still accepted.
const ExpirationWindow uint64 = 1000
