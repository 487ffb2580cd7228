// Copyright 2025 The go-trustmesh Authors
// This file is part of go-trustmesh.
//
// go-trustmesh is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-trustmesh is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-trustmesh. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"math/big"
	"sync"

	"github.com/trustmesh/go-trustmesh/common"
	"github.com/trustmesh/go-trustmesh/core/registry"
)

// devFeeRegistrations is how many registrations a fresh address can
// cover out of its starting allowance before the fee check rejects it.
const devFeeRegistrations = 16

// devBalances is the account backend of a standalone node. There is no
// chain to draw funds from, so every address is credited with a fixed
// allowance the first time it is seen, the way a dev-mode chain
// prefunds its accounts.
type devBalances struct {
	mu        sync.Mutex
	allowance *big.Int
	balances  map[common.Address]*big.Int
}

func newDevBalances(allowance *big.Int) *devBalances {
	return &devBalances{
		allowance: new(big.Int).Set(allowance),
		balances:  make(map[common.Address]*big.Int),
	}
}

// BalanceOf implements registry.BalanceView.
func (b *devBalances) BalanceOf(addr common.Address) *big.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return new(big.Int).Set(b.balance(addr))
}

// Sub implements registry.BalanceView.
func (b *devBalances) Sub(addr common.Address, amount *big.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	bal := b.balance(addr)
	if bal.Cmp(amount) < 0 {
		return registry.ErrInsufficientFunds
	}
	bal.Sub(bal, amount)
	return nil
}

// balance returns the live balance entry for addr, crediting the
// starting allowance on first touch. Callers hold b.mu.
func (b *devBalances) balance(addr common.Address) *big.Int {
	bal, ok := b.balances[addr]
	if !ok {
		bal = new(big.Int).Set(b.allowance)
		b.balances[addr] = bal
	}
	return bal
}
