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
	"math/big"
	"sync"

	"github.com/trustmesh/go-trustmesh/common"
)

// ErrInsufficientFunds is returned by fee policies when the registrant
// cannot cover the registration fee.
var ErrInsufficientFunds = errors.New("registry: insufficient funds for registration fee")

// FeePolicy is the pluggable registration fee check. Charge is invoked
// by the identity registry before an agent record is committed; a
// non-nil error aborts the registration with no state change.
type FeePolicy interface {
	Charge(registrant common.Address) error
}

// NoFee is the policy used by deployments without a registration fee.
type NoFee struct{}

// Charge implements FeePolicy.
func (NoFee) Charge(common.Address) error { return nil }

// BurnFee debits a fixed amount from a ledger-backed balance view and
// burns it. The balance source is abstract so deployments can plug in
// their account backend.
type BurnFee struct {
	Amount   *big.Int
	Balances BalanceView

	mu     sync.Mutex
	burned big.Int
}

// BalanceView exposes the minimal account operations a fee burn needs.
type BalanceView interface {
	BalanceOf(addr common.Address) *big.Int
	Sub(addr common.Address, amount *big.Int) error
}

// Charge implements FeePolicy.
func (f *BurnFee) Charge(registrant common.Address) error {
	if f.Amount == nil || f.Amount.Sign() <= 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Balances.BalanceOf(registrant).Cmp(f.Amount) < 0 {
		return ErrInsufficientFunds
	}
	if err := f.Balances.Sub(registrant, f.Amount); err != nil {
		return err
	}
	f.burned.Add(&f.burned, f.Amount)
	return nil
}

// Burned returns the total amount destroyed so far.
func (f *BurnFee) Burned() *big.Int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return new(big.Int).Set(&f.burned)
}
