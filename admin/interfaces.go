// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package admin

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/ids"

	"github.com/luxfi/assetrules"
)

// Owner is the contract-wide owner gate.
type Owner interface {
	Owner() ids.ShortID
	OnlyOwner(caller ids.ShortID) error
}

// Bank holds native balances.
type Bank interface {
	BalanceOf(account ids.ShortID) (*uint256.Int, error)
	MinimumBalance() *uint256.Int
	Transfer(from, to ids.ShortID, amount *uint256.Int) error
}

// FungibleContract is an external fungible ledger as seen by a caller.
type FungibleContract interface {
	Transfer(call assetrules.Call, to ids.ShortID, value *uint256.Int, data []byte) error
}

// CollectionContract is an external non-fungible ledger as seen by a caller.
type CollectionContract interface {
	Transfer(call assetrules.Call, to ids.ShortID, id uint64, data []byte) error
}

// Resolver finds deployed contracts by address.
type Resolver interface {
	Fungible(address ids.ShortID) (FungibleContract, error)
	Collection(address ids.ShortID) (CollectionContract, error)
}
