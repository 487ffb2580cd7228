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

import "github.com/trustmesh/go-trustmesh/common"

// Registry events consumed by off-ledger indexers. Field layout is part
// of the external contract; do not reorder or rename.

// AgentRegisteredEvent is emitted once per successful registration.
type AgentRegisteredEvent struct {
	AgentID uint64
	Owner   common.Address
	Domain  string
	DID     string
}

// AgentUpdatedEvent is emitted after an accepted agent mutation and
// carries the post-update field values.
type AgentUpdatedEvent struct {
	AgentID     uint64
	Owner       common.Address
	DID         string
	Description string
}

// AgentDeveloperLinkedEvent is emitted when a developer DID is recorded
// for an agent.
type AgentDeveloperLinkedEvent struct {
	AgentID      uint64
	DeveloperDID string
}

// FeedbackAuthorizedEvent is emitted when a server agent pre-authorizes
// a client to leave feedback.
type FeedbackAuthorizedEvent struct {
	ClientAgentID uint64
	ServerAgentID uint64
	AuthToken     common.Hash
}

// ValidationRequestedEvent is emitted for every validation request,
// including idempotent refreshes of an unexpired slot.
type ValidationRequestedEvent struct {
	ValidatorAgentID uint64
	ServerAgentID    uint64
	DataHash         common.Hash
}

// ValidationRespondedEvent is emitted when a validator scores a request.
type ValidationRespondedEvent struct {
	ValidatorAgentID uint64
	ServerAgentID    uint64
	DataHash         common.Hash
	Score            uint8
}
