// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package assetrules

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
)

// None is the empty address. It stands for "no account" in events and is the
// burn sentinel of fungible transfers.
var None = ids.ShortEmpty

// Call is the context the execution host hands to every contract entry point.
type Call struct {
	// Caller is the account invoking the entry point. When a contract calls
	// another contract, Caller is the calling contract's address.
	Caller ids.ShortID
	// Value is the native amount transferred with a payable call. A nil
	// Value is zero.
	Value *uint256.Int
}

// NewCall returns a call from caller that carries no value.
func NewCall(caller ids.ShortID) Call {
	return Call{Caller: caller}
}

// Paid returns the native value transferred with the call, never nil.
func (c Call) Paid() *uint256.Int {
	if c.Value == nil {
		return new(uint256.Int)
	}
	return c.Value
}
