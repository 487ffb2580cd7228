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

package params

import "math/big"

// RegistrationPolicy controls which identifying fields a deployment
// requires when an agent registers.
type RegistrationPolicy int

const (
	// PolicyRequireEither accepts a registration carrying a domain, a
	// DID, or both.
	PolicyRequireEither RegistrationPolicy = iota
	// PolicyRequireDomain rejects registrations without a domain.
	PolicyRequireDomain
	// PolicyRequireDID rejects registrations without a DID.
	PolicyRequireDID
	// PolicyOpen accepts registrations with no identifying fields at
	// all; deployments using it typically charge a registration fee.
	PolicyOpen
)

// String implements fmt.Stringer.
func (p RegistrationPolicy) String() string {
	switch p {
	case PolicyRequireEither:
		return "either"
	case PolicyRequireDomain:
		return "domain"
	case PolicyRequireDID:
		return "did"
	case PolicyOpen:
		return "open"
	default:
		return "unknown"
	}
}

// ParseRegistrationPolicy parses the textual policy names used in config
// files and CLI flags.
func ParseRegistrationPolicy(s string) (RegistrationPolicy, bool) {
	switch s {
	case "either", "":
		return PolicyRequireEither, true
	case "domain":
		return PolicyRequireDomain, true
	case "did":
		return PolicyRequireDID, true
	case "open":
		return PolicyOpen, true
	default:
		return PolicyRequireEither, false
	}
}

// RegistryConfig carries the per-deployment knobs of the registry core.
type RegistryConfig struct {
	// Policy selects the identifying fields required at registration.
	Policy RegistrationPolicy

	// RegistrationFee is burned on every successful registration when
	// non-nil and positive. The fee check is a pluggable policy; see
	// registry.FeePolicy.
	RegistrationFee *big.Int
}

// DefaultRegistryConfig is the registry configuration used when no
// config file overrides it.
var DefaultRegistryConfig = RegistryConfig{
	Policy:          PolicyRequireEither,
	RegistrationFee: nil,
}
