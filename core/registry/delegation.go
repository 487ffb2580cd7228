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
	"bytes"
	"encoding/binary"

	"github.com/trustmesh/go-trustmesh/common"
	"github.com/trustmesh/go-trustmesh/crypto"
	"github.com/trustmesh/go-trustmesh/log"
)

// consentMagic domain-separates delegated-registration digests from any
// other signed payload in the system.
var consentMagic = []byte("\x19trustmesh/delegated-registration/v1\n")

// ConsentDigest builds the digest an agent signs offline to consent to a
// developer registering on its behalf. Every variable-length field is
// length-prefixed so no two field combinations collide.
func ConsentDigest(developerDID, agentDID string, agentAddress common.Address, description string, nonce, expiry uint64) common.Hash {
	var buf bytes.Buffer
	buf.Write(consentMagic)
	writeLenPrefixed(&buf, []byte(developerDID))
	writeLenPrefixed(&buf, []byte(agentDID))
	buf.Write(agentAddress.Bytes())
	writeLenPrefixed(&buf, []byte(description))
	writeUint64(&buf, nonce)
	writeUint64(&buf, expiry)
	return crypto.Keccak256Hash(buf.Bytes())
}

func writeLenPrefixed(buf *bytes.Buffer, b []byte) {
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(b)))
	buf.Write(size[:])
	buf.Write(b)
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

// RegisterWithDelegatedConsent lets a developer submit the registration
// transaction while the agent grants consent through an offline
// signature over ConsentDigest. The caller is the developer; the record
// ends up owned by agentAddress with the developer link pre-recorded.
//
// The consent nonce is consumed once the expiry check passes, before the
// signature is verified. A replayed or malformed signature therefore
// still burns the nonce the signer would have used next.
func (r *IdentityRegistry) RegisterWithDelegatedConsent(caller common.Address, now uint64, developerDID, agentDID string, agentAddress common.Address, description string, expiry uint64, agentSig []byte) (uint64, error) {
	if caller.IsZero() || agentAddress.IsZero() {
		return 0, ErrInvalidAddress
	}
	if agentDID == "" {
		return 0, ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.validDIDFor(developerDID, caller) {
		return 0, ErrInvalidDeveloperDID
	}
	if !r.validDIDFor(agentDID, agentAddress) {
		return 0, ErrDIDAddressMismatch
	}
	if now > expiry {
		return 0, ErrSignatureExpired
	}
	nonce := r.consumeNonce(agentAddress)

	digest := ConsentDigest(developerDID, agentDID, agentAddress, description, nonce, expiry)
	signer, err := recoverConsentSigner(digest, agentSig)
	if err != nil || signer != agentAddress {
		log.Debug("Delegated consent rejected", "agent", agentAddress, "nonce", nonce, "err", err)
		return 0, ErrInvalidAgentSignature
	}
	if _, taken := r.byDID[agentDID]; taken {
		return 0, ErrDIDAlreadyRegistered
	}
	if _, taken := r.byOwner[agentAddress]; taken {
		return 0, ErrAddressAlreadyRegistered
	}
	if err := r.fee.Charge(caller); err != nil {
		return 0, err
	}
	agent := &Agent{
		ID:           r.allocID(),
		Owner:        agentAddress,
		DID:          agentDID,
		Description:  description,
		DeveloperDID: developerDID,
	}
	r.commit(agent, nil)
	r.post(AgentRegisteredEvent{AgentID: agent.ID, Owner: agent.Owner, Domain: "", DID: agent.DID})
	r.post(AgentDeveloperLinkedEvent{AgentID: agent.ID, DeveloperDID: developerDID})
	log.Debug("Agent registered by delegation", "id", agent.ID, "owner", agentAddress, "developer", caller)
	return agent.ID, nil
}

// recoverConsentSigner recovers the account that produced sig over
// digest. sig is the 65-byte [R || S || V] form.
func recoverConsentSigner(digest common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, ErrInvalidAgentSignature
	}
	pub, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}
