// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package token is a fungible token contract: a base ledger whose transfers
// go through the fee policy, owned by its deployer.
package token

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/assetrules"
	"github.com/luxfi/assetrules/admin"
	"github.com/luxfi/assetrules/components/ownable"
	"github.com/luxfi/assetrules/fee"
	"github.com/luxfi/assetrules/host"
	"github.com/luxfi/assetrules/ledger/fungible"
)

var (
	_ admin.FungibleContract = (*Token)(nil)

	errNilSupply = errors.New("initial supply is nil")

	prefixOwner  = []byte("owner")
	prefixLedger = []byte("ledger")
	prefixFee    = []byte("fee")
)

// Params are fixed when the token is deployed.
type Params struct {
	Name                  string       `json:"name"`
	Symbol                string       `json:"symbol"`
	Decimals              uint8        `json:"decimals"`
	InitialSupply         *uint256.Int `json:"initialSupply"`
	MaxWalletPercent      uint8        `json:"maxWalletPercent"`
	MaxTransactionPercent uint8        `json:"maxTransactionPercent"`
	FeePercent            uint8        `json:"feePercent"`
}

// Observer is told about fees and withdrawals.
type Observer interface {
	fee.Observer
	admin.Observer
}

type Token struct {
	address ids.ShortID

	owner  *ownable.Ownable
	ledger *fungible.Ledger
	fee    *fee.Policy
	admin  *admin.Withdrawer
}

// Deploy creates a token at address on h. The initial supply is minted to
// deployer, who becomes the owner. observer may be nil.
func Deploy(
	h *host.Host,
	address ids.ShortID,
	deployer ids.ShortID,
	params Params,
	observer Observer,
	logger log.Logger,
) (*Token, error) {
	if err := h.Available(address); err != nil {
		return nil, err
	}
	if params.InitialSupply == nil {
		return nil, errNilSupply
	}

	var (
		db      = h.ContractDB(address)
		emitter = h.Emitter(address)
	)
	owner, err := ownable.New(prefixdb.New(prefixOwner, db), deployer, emitter, logger)
	if err != nil {
		return nil, err
	}
	ledger := fungible.New(prefixdb.New(prefixLedger, db), emitter, logger)

	var (
		feeObserver   fee.Observer
		adminObserver admin.Observer
	)
	if observer != nil {
		feeObserver = observer
		adminObserver = observer
	}
	t := &Token{
		address: address,
		owner:   owner,
		ledger:  ledger,
		fee:     fee.New(prefixdb.New(prefixFee, db), ledger, owner, feeObserver, logger),
		admin:   admin.New(address, owner, h.Bank(), h, emitter, adminObserver, logger),
	}

	err = ledger.SetMetadata(fungible.Metadata{
		Name:     params.Name,
		Symbol:   params.Symbol,
		Decimals: params.Decimals,
	})
	if err != nil {
		return nil, err
	}
	if err := ledger.Mint(deployer, params.InitialSupply); err != nil {
		return nil, fmt.Errorf("couldn't mint initial supply: %w", err)
	}
	err = t.fee.Initialize(
		params.MaxWalletPercent,
		params.MaxTransactionPercent,
		params.FeePercent,
	)
	if err != nil {
		return nil, err
	}
	if err := h.Register(address, t); err != nil {
		return nil, err
	}

	logger.Info("deployed token",
		log.Stringer("address", address),
		log.Stringer("owner", deployer),
		log.String("symbol", params.Symbol),
		log.String("supply", params.InitialSupply.Dec()),
	)
	return t, nil
}

func (t *Token) Address() ids.ShortID {
	return t.address
}

func (t *Token) Owner() ids.ShortID {
	return t.owner.Owner()
}

func (t *Token) Metadata() (fungible.Metadata, error) {
	return t.ledger.Metadata()
}

func (t *Token) TotalSupply() (*uint256.Int, error) {
	return t.ledger.TotalSupply()
}

func (t *Token) BalanceOf(account ids.ShortID) (*uint256.Int, error) {
	return t.ledger.BalanceOf(account)
}

func (t *Token) Allowance(owner, spender ids.ShortID) (*uint256.Int, error) {
	return t.ledger.Allowance(owner, spender)
}

func (t *Token) Config() (fee.Config, error) {
	return t.fee.Config()
}

func (t *Token) Tax(from, to ids.ShortID, value *uint256.Int) (*uint256.Int, error) {
	return t.fee.Tax(from, to, value)
}

// Transfer moves value from the caller to to, less the fee.
func (t *Token) Transfer(call assetrules.Call, to ids.ShortID, value *uint256.Int, data []byte) error {
	return t.fee.Transfer(call, to, value, data)
}

func (t *Token) TransferFrom(call assetrules.Call, from, to ids.ShortID, value *uint256.Int, data []byte) error {
	return t.fee.TransferFrom(call, from, to, value, data)
}

func (t *Token) Approve(call assetrules.Call, spender ids.ShortID, value *uint256.Int) error {
	return t.ledger.Approve(call, spender, value)
}

func (t *Token) IncreaseAllowance(call assetrules.Call, spender ids.ShortID, delta *uint256.Int) error {
	return t.ledger.IncreaseAllowance(call, spender, delta)
}

func (t *Token) DecreaseAllowance(call assetrules.Call, spender ids.ShortID, delta *uint256.Int) error {
	return t.ledger.DecreaseAllowance(call, spender, delta)
}

// Burn destroys value of the caller's own balance.
func (t *Token) Burn(call assetrules.Call, value *uint256.Int) error {
	return t.ledger.Burn(call.Caller, value)
}

func (t *Token) SetMaxWallet(call assetrules.Call, percent uint8) error {
	return t.fee.SetMaxWallet(call, percent)
}

func (t *Token) SetMaxTransaction(call assetrules.Call, percent uint8) error {
	return t.fee.SetMaxTransaction(call, percent)
}

func (t *Token) SetFee(call assetrules.Call, percent uint8) error {
	return t.fee.SetFee(call, percent)
}

func (t *Token) TransferOwnership(call assetrules.Call, newOwner ids.ShortID) error {
	return t.owner.TransferOwnership(call, newOwner)
}

func (t *Token) RenounceOwnership(call assetrules.Call) error {
	return t.owner.RenounceOwnership(call)
}

func (t *Token) WithdrawNative(call assetrules.Call, amount *uint256.Int, receiver ids.ShortID) error {
	return t.admin.WithdrawNative(call, amount, receiver)
}

func (t *Token) WithdrawAll(call assetrules.Call) error {
	return t.admin.WithdrawAll(call)
}

func (t *Token) WithdrawForeignToken(call assetrules.Call, token ids.ShortID, amount *uint256.Int, receiver ids.ShortID) error {
	return t.admin.WithdrawForeignToken(call, token, amount, receiver)
}

func (t *Token) WithdrawForeignAsset(call assetrules.Call, collection ids.ShortID, id uint64, receiver ids.ShortID) error {
	return t.admin.WithdrawForeignAsset(call, collection, id, receiver)
}
