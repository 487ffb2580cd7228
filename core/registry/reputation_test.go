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
	"errors"
	"testing"

	"github.com/trustmesh/go-trustmesh/common"
)

// registerPair registers two agents and returns their ids. A is owned by
// addr(1), B by addr(2).
func registerPair(t *testing.T, reg *TrustRegistry) (uint64, uint64) {
	t.Helper()
	a, err := reg.Identity.Register(addr(1), "a.example", "", "")
	if err != nil {
		t.Fatalf("register A: %v", err)
	}
	b, err := reg.Identity.Register(addr(2), "b.example", "", "")
	if err != nil {
		t.Fatalf("register B: %v", err)
	}
	return a, b
}

func TestAcceptFeedback(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Stop()
	a, b := registerPair(t, reg)

	// Only B's owner may authorize feedback from A about B.
	if _, err := reg.Reputation.AcceptFeedback(addr(1), 5, a, b); !errors.Is(err, ErrUnauthorizedFeedback) {
		t.Fatalf("client-side accept: err = %v", err)
	}
	token, err := reg.Reputation.AcceptFeedback(addr(2), 5, a, b)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if token.IsZero() {
		t.Fatal("zero authorization token")
	}
	if _, err := reg.Reputation.AcceptFeedback(addr(2), 6, a, b); !errors.Is(err, ErrFeedbackAlreadyAuthorized) {
		t.Fatalf("second accept: err = %v", err)
	}

	ok, got := reg.Reputation.IsAuthorized(a, b)
	if !ok || got != token {
		t.Fatalf("IsAuthorized = (%v, %v), want (true, %v)", ok, got, token)
	}
	if got := reg.Reputation.AuthID(a, b); got != token {
		t.Fatalf("AuthID = %v", got)
	}
	// The reverse pair is independent and unauthorized.
	if ok, got := reg.Reputation.IsAuthorized(b, a); ok || !got.IsZero() {
		t.Fatalf("reverse pair authorized: (%v, %v)", ok, got)
	}
}

func TestAcceptFeedbackUnknownAgents(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Stop()
	a, b := registerPair(t, reg)

	if _, err := reg.Reputation.AcceptFeedback(addr(2), 5, 99, b); !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("unknown client: err = %v", err)
	}
	if _, err := reg.Reputation.AcceptFeedback(addr(2), 5, a, 99); !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("unknown server: err = %v", err)
	}
}

func TestAuthorizationSurvivesOwnerRotation(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Stop()
	a, b := registerPair(t, reg)

	token, err := reg.Reputation.AcceptFeedback(addr(2), 5, a, b)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	newOwner := addr(9)
	if err := reg.Identity.UpdateAgent(addr(2), b, UpdateRequest{Owner: &newOwner}); err != nil {
		t.Fatalf("rotate B owner: %v", err)
	}
	// Keyed by immutable ids, the authorization is unaffected.
	if ok, got := reg.Reputation.IsAuthorized(a, b); !ok || got != token {
		t.Fatalf("post-rotation auth: (%v, %v)", ok, got)
	}
	// The old owner can no longer authorize further pairs for B.
	c, err := reg.Identity.Register(addr(3), "c.example", "", "")
	if err != nil {
		t.Fatalf("register C: %v", err)
	}
	if _, err := reg.Reputation.AcceptFeedback(addr(2), 6, c, b); !errors.Is(err, ErrUnauthorizedFeedback) {
		t.Fatalf("stale owner accept: err = %v", err)
	}
	if _, err := reg.Reputation.AcceptFeedback(newOwner, 6, c, b); err != nil {
		t.Fatalf("new owner accept: %v", err)
	}
}

func TestTokenDerivation(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Stop()
	a, b := registerPair(t, reg)

	// Pin the per-transaction seed so derivation is reproducible, then
	// check distinct pairs still get distinct tokens.
	reg.Reputation.seed = func() [16]byte { return [16]byte{1} }

	t1, err := reg.Reputation.AcceptFeedback(addr(2), 5, a, b)
	if err != nil {
		t.Fatalf("accept (a,b): %v", err)
	}
	t2, err := reg.Reputation.AcceptFeedback(addr(1), 5, b, a)
	if err != nil {
		t.Fatalf("accept (b,a): %v", err)
	}
	if t1 == t2 {
		t.Fatal("distinct pairs derived the same token")
	}
	ev := FeedbackAuthorizedEvent{ClientAgentID: a, ServerAgentID: b, AuthToken: t1}
	if ev.AuthToken != reg.Reputation.AuthID(a, b) {
		t.Fatalf("stored token diverges from issued token")
	}
	var zero common.Hash
	if reg.Reputation.AuthID(99, 100) != zero {
		t.Fatal("absent pair returned non-zero token")
	}
}

func TestFeedbackAuthorizedEvent(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Stop()
	a, b := registerPair(t, reg)

	sub := reg.EventMux().Subscribe(FeedbackAuthorizedEvent{})
	defer sub.Unsubscribe()

	token, err := reg.Reputation.AcceptFeedback(addr(2), 5, a, b)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	ev := (<-sub.Chan()).Data.(FeedbackAuthorizedEvent)
	if ev.ClientAgentID != a || ev.ServerAgentID != b || ev.AuthToken != token {
		t.Fatalf("event: %+v", ev)
	}
}
