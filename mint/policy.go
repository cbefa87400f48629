// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package mint gates sequential, paid minting of collection ids against the
// collection's supply and per-call limits.
package mint

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/assetrules"
	"github.com/luxfi/assetrules/components/events"
	"github.com/luxfi/assetrules/components/store"

	safemath "github.com/luxfi/assetrules/utils/math"
)

var (
	ErrZeroAmount     = fmt.Errorf("%w: cannot mint zero tokens", assetrules.ErrPolicyViolation)
	ErrBadMintValue   = fmt.Errorf("%w: bad mint value", assetrules.ErrPolicyViolation)
	ErrTooManyTokens  = fmt.Errorf("%w: too many tokens to mint", assetrules.ErrCapacityExhausted)
	ErrCollectionFull = fmt.Errorf("%w: collection is full", assetrules.ErrCapacityExhausted)
	ErrMintFailed     = fmt.Errorf("%w: cannot mint", assetrules.ErrCollaboratorFailure)

	lastMintedKey = []byte("lastMinted")
	maxSupplyKey  = []byte("maxSupply")
	maxAmountKey  = []byte("maxAmount")
	priceKey      = []byte("price")
)

// Collection is the base collection ledger new ids are minted into.
type Collection interface {
	MintTo(to ids.ShortID, id uint64) error
}

// Owner is the contract-wide owner gate.
type Owner interface {
	OnlyOwner(caller ids.ShortID) error
}

// Observer is told how many ids every successful mint call created.
type Observer interface {
	TokensMinted(n uint64)
}

// Params are the limits a collection is constructed with.
type Params struct {
	MaxSupply        uint64       `json:"maxSupply"`
	MaxAmountPerCall uint64       `json:"maxAmountPerCall"`
	Price            *uint256.Int `json:"price"`
}

// Policy is the mint manager of one collection. Ids are minted in order
// starting at 1; id 0 is never minted.
type Policy struct {
	log        log.Logger
	db         database.Database
	collection Collection
	owner      Owner
	emitter    events.Emitter
	observer   Observer
}

// New returns the policy whose state is stored in db. observer may be nil.
func New(
	db database.Database,
	collection Collection,
	owner Owner,
	emitter events.Emitter,
	observer Observer,
	logger log.Logger,
) *Policy {
	return &Policy{
		log:        logger,
		db:         db,
		collection: collection,
		owner:      owner,
		emitter:    emitter,
		observer:   observer,
	}
}

// Initialize stores the construction-time limits. Nothing has been minted
// after Initialize.
func (p *Policy) Initialize(params Params) error {
	price := params.Price
	if price == nil {
		price = new(uint256.Int)
	}
	if err := database.PutUInt64(p.db, maxSupplyKey, params.MaxSupply); err != nil {
		return err
	}
	if err := database.PutUInt64(p.db, maxAmountKey, params.MaxAmountPerCall); err != nil {
		return err
	}
	return store.PutAmount(p.db, priceKey, price)
}

func (p *Policy) LastMintedID() (uint64, error) {
	return store.GetUint64(p.db, lastMintedKey)
}

func (p *Policy) MaxSupply() (uint64, error) {
	return store.GetUint64(p.db, maxSupplyKey)
}

func (p *Policy) MaxAmountPerCall() (uint64, error) {
	return store.GetUint64(p.db, maxAmountKey)
}

func (p *Policy) Price() (*uint256.Int, error) {
	return store.GetAmount(p.db, priceKey)
}

// CheckAmount verifies that amount more ids can be minted in one call.
func (p *Policy) CheckAmount(amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	maxAmount, err := p.MaxAmountPerCall()
	if err != nil {
		return err
	}
	if amount > maxAmount {
		return ErrTooManyTokens
	}

	lastMinted, err := p.LastMintedID()
	if err != nil {
		return err
	}
	maxSupply, err := p.MaxSupply()
	if err != nil {
		return err
	}
	last, err := safemath.Add(lastMinted, amount)
	if err != nil || last > maxSupply {
		return ErrCollectionFull
	}
	return nil
}

// CheckValue verifies that value pays for amount ids exactly.
func (p *Policy) CheckValue(value *uint256.Int, amount uint64) error {
	price, err := p.Price()
	if err != nil {
		return err
	}
	cost, err := safemath.MulAmount(uint256.NewInt(amount), price)
	if err != nil || !cost.Eq(value) {
		return ErrBadMintValue
	}
	return nil
}

// Mint creates amount sequential ids owned by the caller, who must have paid
// exactly amount times the price. If the collection rejects an id, the ids
// minted before it in this call stay minted.
func (p *Policy) Mint(call assetrules.Call, amount uint64) error {
	if err := p.CheckAmount(amount); err != nil {
		return err
	}
	if err := p.CheckValue(call.Paid(), amount); err != nil {
		return err
	}

	lastMinted, err := p.LastMintedID()
	if err != nil {
		return err
	}
	// CheckAmount bounds lastMinted+amount by the max supply.
	for i := uint64(0); i < amount; i++ {
		id := lastMinted + i + 1
		if err := p.collection.MintTo(call.Caller, id); err != nil {
			p.log.Warn("mint aborted",
				log.Stringer("contract", p.emitter.Contract),
				log.Stringer("to", call.Caller),
				log.Uint64("id", id),
				log.Uint64("minted", i),
				log.Err(err),
			)
			return fmt.Errorf("%w: id %d: %w", ErrMintFailed, id, err)
		}
		if err := database.PutUInt64(p.db, lastMintedKey, id); err != nil {
			return err
		}
		err := p.emitter.Emit(&events.TokenTransfer{
			From: assetrules.None,
			To:   call.Caller,
			ID:   id,
		})
		if err != nil {
			return fmt.Errorf("%w: id %d: %w", ErrMintFailed, id, err)
		}
	}

	p.log.Debug("minted",
		log.Stringer("contract", p.emitter.Contract),
		log.Stringer("to", call.Caller),
		log.Uint64("first", lastMinted+1),
		log.Uint64("amount", amount),
	)
	if p.observer != nil {
		p.observer.TokensMinted(amount)
	}
	return nil
}

func (p *Policy) SetMaxAmountPerCall(call assetrules.Call, amount uint64) error {
	if err := p.owner.OnlyOwner(call.Caller); err != nil {
		return err
	}
	if err := database.PutUInt64(p.db, maxAmountKey, amount); err != nil {
		return err
	}
	p.log.Info("max mint amount updated",
		log.Stringer("contract", p.emitter.Contract),
		log.Uint64("amount", amount),
	)
	return nil
}

func (p *Policy) SetPrice(call assetrules.Call, price *uint256.Int) error {
	if err := p.owner.OnlyOwner(call.Caller); err != nil {
		return err
	}
	if err := store.PutAmount(p.db, priceKey, price); err != nil {
		return err
	}
	p.log.Info("mint price updated",
		log.Stringer("contract", p.emitter.Contract),
		log.String("price", price.Dec()),
	)
	return nil
}
