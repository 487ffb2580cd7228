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

import "errors"

// Every rejected precondition surfaces one of these distinct errors; an
// operation that returns a non-nil error leaves no partial state change.
var (
	// Validation errors: malformed or cryptographically unverifiable input.
	ErrInvalidInput          = errors.New("registry: required identifying fields missing")
	ErrInvalidAddress        = errors.New("registry: invalid address")
	ErrInvalidDataHash       = errors.New("registry: data hash must be non-zero")
	ErrInvalidResponse       = errors.New("registry: response score out of range")
	ErrDIDAddressMismatch    = errors.New("registry: DID does not embed the expected address")
	ErrInvalidDeveloperDID   = errors.New("registry: developer DID does not bind to developer address")
	ErrInvalidAgentSignature = errors.New("registry: agent consent signature invalid")
	ErrSignatureExpired      = errors.New("registry: agent consent signature expired")

	// Conflict errors: uniqueness or one-shot invariant violated.
	ErrDomainAlreadyRegistered    = errors.New("registry: domain already registered")
	ErrDIDAlreadyRegistered       = errors.New("registry: DID already registered")
	ErrAddressAlreadyRegistered   = errors.New("registry: address already registered")
	ErrFeedbackAlreadyAuthorized  = errors.New("registry: feedback already authorized for pair")
	ErrValidationAlreadyResponded = errors.New("registry: validation request already responded")

	// Not-found errors: referenced key absent.
	ErrAgentNotFound             = errors.New("registry: agent not found")
	ErrDIDNotRegistered          = errors.New("registry: DID not registered")
	ErrValidationRequestNotFound = errors.New("registry: validation request not found")

	// Authorization errors: caller identity mismatch.
	ErrUnauthorizedUpdate    = errors.New("registry: caller is not the agent owner")
	ErrUnauthorizedFeedback  = errors.New("registry: caller is not the server agent owner")
	ErrUnauthorizedValidator = errors.New("registry: caller is not the validator agent owner")

	// Temporal errors.
	ErrRequestExpired = errors.New("registry: validation request expired")
)
