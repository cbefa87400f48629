// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package events defines the records contracts emit and the sinks that
// receive them.
package events

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
)

var (
	_ Event = (*Transfer)(nil)
	_ Event = (*Approval)(nil)
	_ Event = (*TokenTransfer)(nil)
	_ Event = (*TokenApproval)(nil)
	_ Event = (*Locked)(nil)
	_ Event = (*Withdrawn)(nil)
	_ Event = (*OwnershipTransferred)(nil)
	_ Event = (*AttributeSet)(nil)
)

// Event is a domain event emitted by a contract.
type Event interface {
	Name() string
}

// Transfer is a fungible balance move. A mint has an empty From and a burn an
// empty To.
type Transfer struct {
	From  ids.ShortID `serialize:"true" json:"from"`
	To    ids.ShortID `serialize:"true" json:"to"`
	Value uint256.Int `serialize:"true" json:"value"`
}

func (*Transfer) Name() string { return "Transfer" }

// Approval records a fungible allowance being set.
type Approval struct {
	Owner   ids.ShortID `serialize:"true" json:"owner"`
	Spender ids.ShortID `serialize:"true" json:"spender"`
	Value   uint256.Int `serialize:"true" json:"value"`
}

func (*Approval) Name() string { return "Approval" }

// TokenTransfer is a change of ownership of a single collection id. A mint
// has an empty From and a burn an empty To.
type TokenTransfer struct {
	From ids.ShortID `serialize:"true" json:"from"`
	To   ids.ShortID `serialize:"true" json:"to"`
	ID   uint64      `serialize:"true" json:"id"`
}

func (*TokenTransfer) Name() string { return "TokenTransfer" }

// TokenApproval records an operator approval on one id, or on every id the
// owner holds when All is set.
type TokenApproval struct {
	Owner    ids.ShortID `serialize:"true" json:"owner"`
	Operator ids.ShortID `serialize:"true" json:"operator"`
	ID       uint64      `serialize:"true" json:"id"`
	All      bool        `serialize:"true" json:"all"`
	Approved bool        `serialize:"true" json:"approved"`
}

func (*TokenApproval) Name() string { return "TokenApproval" }

// Locked records a token id being locked against attribute changes.
type Locked struct {
	ID uint64 `serialize:"true" json:"id"`
}

func (*Locked) Name() string { return "Locked" }

// Asset identifies what an administrative withdrawal moved.
type Asset uint8

const (
	Native Asset = iota
	ForeignToken
	ForeignCollection
)

func (a Asset) String() string {
	switch a {
	case Native:
		return "native"
	case ForeignToken:
		return "token"
	case ForeignCollection:
		return "collection"
	default:
		return "unknown"
	}
}

// Withdrawn records an administrative withdrawal from a contract's own
// holdings. Contract is empty for native withdrawals; ID is only meaningful
// for collection withdrawals.
type Withdrawn struct {
	Asset    Asset       `serialize:"true" json:"asset"`
	Contract ids.ShortID `serialize:"true" json:"contract"`
	Receiver ids.ShortID `serialize:"true" json:"receiver"`
	Value    uint256.Int `serialize:"true" json:"value"`
	ID       uint64      `serialize:"true" json:"id"`
}

func (*Withdrawn) Name() string { return "Withdrawn" }

// OwnershipTransferred records a change of contract owner. An empty New means
// ownership was renounced.
type OwnershipTransferred struct {
	Previous ids.ShortID `serialize:"true" json:"previous"`
	New      ids.ShortID `serialize:"true" json:"new"`
}

func (*OwnershipTransferred) Name() string { return "OwnershipTransferred" }

// AttributeSet records a metadata attribute being written on a collection id.
// ID 0 carries collection-level attributes.
type AttributeSet struct {
	ID        uint64 `serialize:"true" json:"id"`
	Attribute []byte `serialize:"true" json:"attribute"`
	Value     []byte `serialize:"true" json:"value"`
}

func (*AttributeSet) Name() string { return "AttributeSet" }

// Amount returns v as an event value. A nil v is zero.
func Amount(v *uint256.Int) uint256.Int {
	if v == nil {
		return uint256.Int{}
	}
	return *v
}
