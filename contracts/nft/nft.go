// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package nft is a non-fungible collection contract with paid sequential
// minting, per-token attributes and owner withdrawals.
package nft

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/assetrules"
	"github.com/luxfi/assetrules/admin"
	"github.com/luxfi/assetrules/attributes"
	"github.com/luxfi/assetrules/components/ownable"
	"github.com/luxfi/assetrules/host"
	"github.com/luxfi/assetrules/ledger/collection"
	"github.com/luxfi/assetrules/mint"

	safemath "github.com/luxfi/assetrules/utils/math"
)

// DefaultAttributeCacheSize bounds the cached attribute values of one
// collection.
const DefaultAttributeCacheSize = 1024

var (
	_ admin.CollectionContract = (*Collection)(nil)

	ErrRefundFailed = fmt.Errorf("%w: refund failed", assetrules.ErrCollaboratorFailure)

	prefixOwner      = []byte("owner")
	prefixLedger     = []byte("ledger")
	prefixMint       = []byte("mint")
	prefixAttributes = []byte("attributes")
)

// Params are fixed when the collection is deployed. A zero MaxAmountPerCall
// is raised to 1. Without a BaseURI, token uris fail until one is set.
type Params struct {
	Name             string       `json:"name"`
	Symbol           string       `json:"symbol"`
	BaseURI          string       `json:"baseURI"`
	MaxSupply        uint64       `json:"maxSupply"`
	MaxAmountPerCall uint64       `json:"maxAmountPerCall"`
	Price            *uint256.Int `json:"price"`
	CacheSize        int          `json:"cacheSize"`
}

// Observer is told about mints and withdrawals.
type Observer interface {
	mint.Observer
	admin.Observer
}

type Collection struct {
	log     log.Logger
	address ids.ShortID
	bank    admin.Bank

	owner      *ownable.Ownable
	ledger     *collection.Ledger
	mint       *mint.Policy
	attributes *attributes.Store
	admin      *admin.Withdrawer
}

// Deploy creates a collection at address on h, owned by deployer. observer
// may be nil.
func Deploy(
	h *host.Host,
	address ids.ShortID,
	deployer ids.ShortID,
	params Params,
	observer Observer,
	logger log.Logger,
) (*Collection, error) {
	if err := h.Available(address); err != nil {
		return nil, err
	}
	var (
		db      = h.ContractDB(address)
		emitter = h.Emitter(address)
	)
	owner, err := ownable.New(prefixdb.New(prefixOwner, db), deployer, emitter, logger)
	if err != nil {
		return nil, err
	}

	var (
		mintObserver  mint.Observer
		adminObserver admin.Observer
	)
	if observer != nil {
		mintObserver = observer
		adminObserver = observer
	}
	cacheSize := params.CacheSize
	if cacheSize <= 0 {
		cacheSize = DefaultAttributeCacheSize
	}
	ledger := collection.New(prefixdb.New(prefixLedger, db), emitter, logger)
	c := &Collection{
		log:        logger,
		address:    address,
		bank:       h.Bank(),
		owner:      owner,
		ledger:     ledger,
		mint:       mint.New(prefixdb.New(prefixMint, db), ledger, owner, emitter, mintObserver, logger),
		attributes: attributes.New(prefixdb.New(prefixAttributes, db), owner, ledger, emitter, cacheSize, logger),
		admin:      admin.New(address, owner, h.Bank(), h, emitter, adminObserver, logger),
	}

	maxAmount := params.MaxAmountPerCall
	if maxAmount == 0 {
		maxAmount = 1
	}
	err = c.mint.Initialize(mint.Params{
		MaxSupply:        params.MaxSupply,
		MaxAmountPerCall: maxAmount,
		Price:            params.Price,
	})
	if err != nil {
		return nil, err
	}
	attrs := []attributes.Attribute{
		{Name: []byte(attributes.NameAttribute), Value: []byte(params.Name)},
		{Name: []byte(attributes.SymbolAttribute), Value: []byte(params.Symbol)},
	}
	if params.BaseURI != "" {
		attrs = append(attrs, attributes.Attribute{
			Name:  []byte(attributes.BaseURIAttribute),
			Value: []byte(params.BaseURI),
		})
	}
	if err := c.attributes.Initialize(attrs); err != nil {
		return nil, err
	}
	if err := h.Register(address, c); err != nil {
		return nil, err
	}

	logger.Info("deployed collection",
		log.Stringer("address", address),
		log.Stringer("owner", deployer),
		log.String("symbol", params.Symbol),
		log.Uint64("maxSupply", params.MaxSupply),
	)
	return c, nil
}

func (c *Collection) Address() ids.ShortID {
	return c.address
}

func (c *Collection) Owner() ids.ShortID {
	return c.owner.Owner()
}

// Mint mints amount ids to the caller. The payment in call must already have
// been moved to the collection. When minting fails, the part of the payment
// not covered by ids that were minted is sent back to the caller.
func (c *Collection) Mint(call assetrules.Call, amount uint64) error {
	before, err := c.mint.LastMintedID()
	if err != nil {
		return err
	}
	mintErr := c.mint.Mint(call, amount)
	if mintErr == nil {
		return nil
	}
	return errors.Join(mintErr, c.refund(call, before))
}

func (c *Collection) refund(call assetrules.Call, before uint64) error {
	paid := call.Paid()
	if paid.IsZero() {
		return nil
	}
	after, err := c.mint.LastMintedID()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRefundFailed, err)
	}
	price, err := c.mint.Price()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRefundFailed, err)
	}
	kept, err := safemath.MulAmount(uint256.NewInt(after-before), price)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRefundFailed, err)
	}
	refund, err := safemath.SubAmount(paid, kept)
	if err != nil || refund.IsZero() {
		return nil
	}
	if err := c.bank.Transfer(c.address, call.Caller, refund); err != nil {
		return fmt.Errorf("%w: %w", ErrRefundFailed, err)
	}
	c.log.Debug("refunded mint payment",
		log.Stringer("contract", c.address),
		log.Stringer("to", call.Caller),
		log.String("value", refund.Dec()),
	)
	return nil
}

func (c *Collection) LastMintedID() (uint64, error) {
	return c.mint.LastMintedID()
}

func (c *Collection) MaxSupply() (uint64, error) {
	return c.mint.MaxSupply()
}

func (c *Collection) MaxAmountPerCall() (uint64, error) {
	return c.mint.MaxAmountPerCall()
}

func (c *Collection) Price() (*uint256.Int, error) {
	return c.mint.Price()
}

func (c *Collection) SetMaxAmountPerCall(call assetrules.Call, amount uint64) error {
	return c.mint.SetMaxAmountPerCall(call, amount)
}

func (c *Collection) SetPrice(call assetrules.Call, price *uint256.Int) error {
	return c.mint.SetPrice(call, price)
}

func (c *Collection) OwnerOf(id uint64) (ids.ShortID, bool, error) {
	return c.ledger.OwnerOf(id)
}

func (c *Collection) BalanceOf(owner ids.ShortID) (uint64, error) {
	return c.ledger.BalanceOf(owner)
}

func (c *Collection) TotalSupply() (uint64, error) {
	return c.ledger.TotalSupply()
}

func (c *Collection) OwnersTokenByIndex(owner ids.ShortID, index uint64) (uint64, error) {
	return c.ledger.OwnersTokenByIndex(owner, index)
}

func (c *Collection) TokenByIndex(index uint64) (uint64, error) {
	return c.ledger.TokenByIndex(index)
}

func (c *Collection) Allowance(owner, operator ids.ShortID, id *uint64) (bool, error) {
	return c.ledger.Allowance(owner, operator, id)
}

func (c *Collection) Approve(call assetrules.Call, operator ids.ShortID, id *uint64, approved bool) error {
	return c.ledger.Approve(call, operator, id, approved)
}

func (c *Collection) Transfer(call assetrules.Call, to ids.ShortID, id uint64, data []byte) error {
	return c.ledger.Transfer(call, to, id, data)
}

func (c *Collection) Burn(call assetrules.Call, account ids.ShortID, id uint64) error {
	return c.ledger.Burn(call, account, id)
}

func (c *Collection) SetMultipleAttributes(call assetrules.Call, id uint64, attrs []attributes.Attribute) error {
	return c.attributes.SetMultipleAttributes(call, id, attrs)
}

func (c *Collection) GetAttributes(id uint64, names [][]byte) ([]string, error) {
	return c.attributes.GetAttributes(id, names)
}

func (c *Collection) AttributeCount() (uint32, error) {
	return c.attributes.AttributeCount()
}

func (c *Collection) AttributeName(index uint32) (string, error) {
	return c.attributes.AttributeName(index)
}

func (c *Collection) TokenURI(id uint64) (string, error) {
	return c.attributes.TokenURI(id)
}

func (c *Collection) SetBaseURI(call assetrules.Call, uri string) error {
	return c.attributes.SetBaseURI(call, uri)
}

func (c *Collection) Lock(call assetrules.Call, id uint64) error {
	return c.attributes.Lock(call, id)
}

func (c *Collection) IsLocked(id uint64) (bool, error) {
	return c.attributes.IsLocked(id)
}

func (c *Collection) LockedCount() (uint64, error) {
	return c.attributes.LockedCount()
}

func (c *Collection) TransferOwnership(call assetrules.Call, newOwner ids.ShortID) error {
	return c.owner.TransferOwnership(call, newOwner)
}

func (c *Collection) RenounceOwnership(call assetrules.Call) error {
	return c.owner.RenounceOwnership(call)
}

func (c *Collection) WithdrawNative(call assetrules.Call, amount *uint256.Int, receiver ids.ShortID) error {
	return c.admin.WithdrawNative(call, amount, receiver)
}

func (c *Collection) WithdrawAll(call assetrules.Call) error {
	return c.admin.WithdrawAll(call)
}

func (c *Collection) WithdrawForeignToken(call assetrules.Call, token ids.ShortID, amount *uint256.Int, receiver ids.ShortID) error {
	return c.admin.WithdrawForeignToken(call, token, amount, receiver)
}

func (c *Collection) WithdrawForeignAsset(call assetrules.Call, asset ids.ShortID, id uint64, receiver ids.ShortID) error {
	return c.admin.WithdrawForeignAsset(call, asset, id, receiver)
}
