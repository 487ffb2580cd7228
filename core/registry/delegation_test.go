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
	"crypto/ecdsa"
	"errors"
	"math/big"
	"testing"

	"github.com/trustmesh/go-trustmesh/common"
	"github.com/trustmesh/go-trustmesh/crypto"
)

type consentParty struct {
	key  *ecdsa.PrivateKey
	addr common.Address
	did  string
}

func newParty(t *testing.T) consentParty {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	a := crypto.PubkeyToAddress(key.PublicKey)
	return consentParty{key: key, addr: a, did: testDID(a)}
}

func signConsent(t *testing.T, agent consentParty, developerDID, description string, nonce, expiry uint64) []byte {
	t.Helper()
	digest := ConsentDigest(developerDID, agent.did, agent.addr, description, nonce, expiry)
	sig, err := crypto.Sign(digest.Bytes(), agent.key)
	if err != nil {
		t.Fatalf("sign consent: %v", err)
	}
	return sig
}

func TestDelegatedRegistration(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Stop()

	developer := newParty(t)
	agent := newParty(t)

	sig := signConsent(t, agent, developer.did, "built by dev", 0, 100)
	id, err := reg.Identity.RegisterWithDelegatedConsent(developer.addr, 50, developer.did, agent.did, agent.addr, "built by dev", 100, sig)
	if err != nil {
		t.Fatalf("delegated register: %v", err)
	}
	rec, err := reg.Identity.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Owner != agent.addr || rec.DID != agent.did || rec.DeveloperDID != developer.did {
		t.Fatalf("record: %+v", rec)
	}
	if nonce := reg.Identity.Nonce(agent.addr); nonce != 1 {
		t.Fatalf("nonce after success = %d, want 1", nonce)
	}
}

func TestDelegatedRegistrationReplay(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Stop()

	developer := newParty(t)
	agent := newParty(t)

	sig := signConsent(t, agent, developer.did, "", 0, 100)
	if _, err := reg.Identity.RegisterWithDelegatedConsent(developer.addr, 10, developer.did, agent.did, agent.addr, "", 100, sig); err != nil {
		t.Fatalf("first register: %v", err)
	}
	// The nonce moved on, so the same signature no longer verifies.
	_, err := reg.Identity.RegisterWithDelegatedConsent(developer.addr, 10, developer.did, agent.did, agent.addr, "", 100, sig)
	if !errors.Is(err, ErrInvalidAgentSignature) {
		t.Fatalf("replay: err = %v, want ErrInvalidAgentSignature", err)
	}
}

func TestDelegatedRegistrationExpiry(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Stop()

	developer := newParty(t)
	agent := newParty(t)

	sig := signConsent(t, agent, developer.did, "", 0, 100)

	// Expired consent is rejected before the nonce is touched.
	_, err := reg.Identity.RegisterWithDelegatedConsent(developer.addr, 101, developer.did, agent.did, agent.addr, "", 100, sig)
	if !errors.Is(err, ErrSignatureExpired) {
		t.Fatalf("expired: err = %v", err)
	}
	if nonce := reg.Identity.Nonce(agent.addr); nonce != 0 {
		t.Fatalf("nonce burned by expired consent: %d", nonce)
	}

	// Exactly at expiry is still in time.
	if _, err := reg.Identity.RegisterWithDelegatedConsent(developer.addr, 100, developer.did, agent.did, agent.addr, "", 100, sig); err != nil {
		t.Fatalf("at-expiry register: %v", err)
	}
}

func TestDelegatedRegistrationBadSignatureBurnsNonce(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Stop()

	developer := newParty(t)
	agent := newParty(t)
	stranger := newParty(t)

	// Signed by the wrong key: rejected, but the agent's nonce is
	// consumed anyway, so a later honest consent must use nonce 1.
	digest := ConsentDigest(developer.did, agent.did, agent.addr, "", 0, 100)
	sig, err := crypto.Sign(digest.Bytes(), stranger.key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	_, err = reg.Identity.RegisterWithDelegatedConsent(developer.addr, 10, developer.did, agent.did, agent.addr, "", 100, sig)
	if !errors.Is(err, ErrInvalidAgentSignature) {
		t.Fatalf("forged consent: err = %v", err)
	}
	if nonce := reg.Identity.Nonce(agent.addr); nonce != 1 {
		t.Fatalf("nonce after forged consent = %d, want 1", nonce)
	}

	honest := signConsent(t, agent, developer.did, "", 1, 100)
	if _, err := reg.Identity.RegisterWithDelegatedConsent(developer.addr, 10, developer.did, agent.did, agent.addr, "", 100, honest); err != nil {
		t.Fatalf("honest register after burn: %v", err)
	}
}

func TestDelegatedRegistrationDIDChecks(t *testing.T) {
	reg := newTestRegistry()
	defer reg.Stop()

	developer := newParty(t)
	agent := newParty(t)

	sig := signConsent(t, agent, developer.did, "", 0, 100)

	// Developer DID must bind to the caller.
	_, err := reg.Identity.RegisterWithDelegatedConsent(agent.addr, 10, developer.did, agent.did, agent.addr, "", 100, sig)
	if !errors.Is(err, ErrInvalidDeveloperDID) {
		t.Fatalf("developer DID mismatch: err = %v", err)
	}
	// Agent DID must bind to the agent address.
	_, err = reg.Identity.RegisterWithDelegatedConsent(developer.addr, 10, developer.did, testDID(addr(7)), agent.addr, "", 100, sig)
	if !errors.Is(err, ErrDIDAddressMismatch) {
		t.Fatalf("agent DID mismatch: err = %v", err)
	}
	if nonce := reg.Identity.Nonce(agent.addr); nonce != 0 {
		t.Fatalf("nonce burned by binding failures: %d", nonce)
	}
}

func TestDelegatedRegistrationFee(t *testing.T) {
	developer := newParty(t)
	agent := newParty(t)

	balances := stubBalances{developer.addr: big.NewInt(50)}
	fee := &BurnFee{Amount: big.NewInt(40), Balances: balances}
	reg := NewTrustRegistry(nil, fee, nil)
	defer reg.Stop()

	sig := signConsent(t, agent, developer.did, "", 0, 100)
	if _, err := reg.Identity.RegisterWithDelegatedConsent(developer.addr, 10, developer.did, agent.did, agent.addr, "", 100, sig); err != nil {
		t.Fatalf("funded delegated register: %v", err)
	}
	// The submitting developer pays, not the agent.
	if bal := balances.BalanceOf(developer.addr); bal.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("developer balance after burn = %v, want 10", bal)
	}
	if bal := balances.BalanceOf(agent.addr); bal.Sign() != 0 {
		t.Fatalf("agent balance touched: %v", bal)
	}

	// The developer can no longer cover the fee. The second consent is
	// rejected with no record committed, but its nonce is already
	// consumed because the charge happens after signature verification.
	second := newParty(t)
	sig2 := signConsent(t, second, developer.did, "", 0, 100)
	_, err := reg.Identity.RegisterWithDelegatedConsent(developer.addr, 10, developer.did, second.did, second.addr, "", 100, sig2)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("unfunded delegated register: err = %v", err)
	}
	if reg.Identity.Count() != 1 {
		t.Fatalf("count after rejected register = %d, want 1", reg.Identity.Count())
	}
	if nonce := reg.Identity.Nonce(second.addr); nonce != 1 {
		t.Fatalf("nonce after rejected register = %d, want 1", nonce)
	}
	if burned := fee.Burned(); burned.Cmp(big.NewInt(40)) != 0 {
		t.Fatalf("burned = %v, want 40", burned)
	}
}

func TestConsentDigestFieldSeparation(t *testing.T) {
	a := ConsentDigest("did:a", "did:b", addr(1), "desc", 1, 2)
	b := ConsentDigest("did:ad", "id:b", addr(1), "desc", 1, 2)
	if a == b {
		t.Fatal("length prefixing failed: shifted fields collide")
	}
	if ConsentDigest("did:a", "did:b", addr(1), "desc", 2, 2) == a {
		t.Fatal("nonce not bound into digest")
	}
}
