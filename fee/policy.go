// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

//go:generate go run go.uber.org/mock/mockgen -package=${GOPACKAGE}mock -destination=${GOPACKAGE}mock/ledger.go -mock_names=Ledger=Ledger . Ledger

// Package fee enforces transaction and wallet caps on fungible transfers and
// routes a percentage of every taxable transfer to the contract owner.
package fee

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/assetrules"
	"github.com/luxfi/assetrules/components/store"
	"github.com/luxfi/assetrules/ledger/fungible"

	safemath "github.com/luxfi/assetrules/utils/math"
)

const MaxFeePercent = 100

var (
	ErrExceedsMaxTransaction = fmt.Errorf("%w: insufficient balance: exceeds max transaction amount", assetrules.ErrPolicyViolation)
	ErrExceedsMaxWallet      = fmt.Errorf("%w: insufficient balance: exceeds max wallet balance", assetrules.ErrPolicyViolation)
	ErrInvalidFee            = fmt.Errorf("%w: invalid fee", assetrules.ErrPolicyViolation)
	ErrCapOverflow           = fmt.Errorf("%w: cap overflows", assetrules.ErrCapacityExhausted)
	ErrTransferFailed        = fmt.Errorf("%w: transfer failed", assetrules.ErrCollaboratorFailure)
	ErrLedgerFailed          = fmt.Errorf("%w: ledger read failed", assetrules.ErrCollaboratorFailure)

	maxWalletKey      = []byte("maxWallet")
	maxTransactionKey = []byte("maxTransaction")
	feeKey            = []byte("fee")
)

// Ledger is the base fungible ledger the policy moves balances through.
type Ledger interface {
	TotalSupply() (*uint256.Int, error)
	BalanceOf(owner ids.ShortID) (*uint256.Int, error)
	TransferLegs(from ids.ShortID, legs []fungible.Leg, data []byte) error
	TransferFromLegs(spender, from ids.ShortID, legs []fungible.Leg, data []byte) error
}

// Owner is the contract-wide owner gate. The owner receives every fee.
type Owner interface {
	Owner() ids.ShortID
	OnlyOwner(caller ids.ShortID) error
}

// Observer is told about every fee the policy collects.
type Observer interface {
	FeeCollected(tax *uint256.Int)
}

// Config is the persisted fee configuration of one token.
type Config struct {
	MaxWallet      *uint256.Int `json:"maxWallet"`
	MaxTransaction *uint256.Int `json:"maxTransaction"`
	FeePercent     uint8        `json:"feePercent"`
}

// Policy is the fee and cap rule layer of a token. It is composed into a
// token contract together with the ledger and owner gate it consumes.
type Policy struct {
	log      log.Logger
	db       database.Database
	ledger   Ledger
	owner    Owner
	observer Observer
}

// New returns the policy whose configuration is stored in db. observer may be
// nil.
func New(db database.Database, ledger Ledger, owner Owner, observer Observer, logger log.Logger) *Policy {
	return &Policy{
		log:      logger,
		db:       db,
		ledger:   ledger,
		owner:    owner,
		observer: observer,
	}
}

// Initialize sets the caps from percentages of the current total supply and
// stores the fee. It is only called while the token is constructed.
func (p *Policy) Initialize(maxWalletPercent, maxTransactionPercent, feePercent uint8) error {
	if err := p.setCap(maxWalletKey, maxWalletPercent); err != nil {
		return err
	}
	if err := p.setCap(maxTransactionKey, maxTransactionPercent); err != nil {
		return err
	}
	return p.setFee(feePercent)
}

func (p *Policy) Config() (Config, error) {
	maxWallet, err := p.MaxWallet()
	if err != nil {
		return Config{}, err
	}
	maxTransaction, err := p.MaxTransaction()
	if err != nil {
		return Config{}, err
	}
	fee, err := p.Fee()
	if err != nil {
		return Config{}, err
	}
	return Config{
		MaxWallet:      maxWallet,
		MaxTransaction: maxTransaction,
		FeePercent:     fee,
	}, nil
}

func (p *Policy) MaxWallet() (*uint256.Int, error) {
	return store.GetAmount(p.db, maxWalletKey)
}

func (p *Policy) MaxTransaction() (*uint256.Int, error) {
	return store.GetAmount(p.db, maxTransactionKey)
}

func (p *Policy) Fee() (uint8, error) {
	b, ok, err := store.GetBytes(p.db, feeKey)
	if err != nil || !ok {
		return 0, err
	}
	if len(b) != 1 {
		return 0, fmt.Errorf("%w: fee has %d bytes", store.ErrCorrupted, len(b))
	}
	return b[0], nil
}

// Tax returns the fee withheld from a transfer of value from from to to.
// Transfers touching the burn address are never taxed.
func (p *Policy) Tax(from, to ids.ShortID, value *uint256.Int) (*uint256.Int, error) {
	if from == assetrules.None || to == assetrules.None {
		return new(uint256.Int), nil
	}
	fee, err := p.Fee()
	if err != nil {
		return nil, err
	}
	tax, err := safemath.Percent(value, fee)
	if err != nil {
		return nil, ErrCapOverflow
	}
	return tax, nil
}

// Transfer moves value from the caller to to, withholding the fee for the
// owner.
func (p *Policy) Transfer(call assetrules.Call, to ids.ShortID, value *uint256.Int, data []byte) error {
	legs, tax, err := p.legs(call.Caller, to, value)
	if err != nil {
		return err
	}
	if err := p.ledger.TransferLegs(call.Caller, legs, data); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	p.collected(call.Caller, to, value, tax)
	return nil
}

// TransferFrom moves value from from to to on behalf of the caller. The
// caller's allowance covers the whole value, fee included.
func (p *Policy) TransferFrom(call assetrules.Call, from, to ids.ShortID, value *uint256.Int, data []byte) error {
	legs, tax, err := p.legs(from, to, value)
	if err != nil {
		return err
	}
	if err := p.ledger.TransferFromLegs(call.Caller, from, legs, data); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	p.collected(from, to, value, tax)
	return nil
}

// legs validates a transfer against the caps and splits it into the fee leg
// and the recipient leg.
func (p *Policy) legs(from, to ids.ShortID, value *uint256.Int) ([]fungible.Leg, *uint256.Int, error) {
	maxTransaction, err := p.MaxTransaction()
	if err != nil {
		return nil, nil, err
	}
	if value.Gt(maxTransaction) {
		p.log.Debug("rejected transfer over max transaction",
			log.Stringer("from", from),
			log.String("value", value.Dec()),
			log.String("maxTransaction", maxTransaction.Dec()),
		)
		return nil, nil, ErrExceedsMaxTransaction
	}

	maxWallet, err := p.MaxWallet()
	if err != nil {
		return nil, nil, err
	}
	balance, err := p.ledger.BalanceOf(to)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrLedgerFailed, err)
	}
	after, err := safemath.AddAmount(balance, value)
	if err != nil || after.Gt(maxWallet) {
		p.log.Debug("rejected transfer over max wallet",
			log.Stringer("to", to),
			log.String("value", value.Dec()),
			log.String("maxWallet", maxWallet.Dec()),
		)
		return nil, nil, ErrExceedsMaxWallet
	}

	tax, err := p.Tax(from, to, value)
	if err != nil {
		return nil, nil, err
	}
	net := new(uint256.Int).Sub(value, tax)
	return []fungible.Leg{
		{To: p.owner.Owner(), Value: tax},
		{To: to, Value: net},
	}, tax, nil
}

func (p *Policy) collected(from, to ids.ShortID, value, tax *uint256.Int) {
	p.log.Debug("fee transfer",
		log.Stringer("from", from),
		log.Stringer("to", to),
		log.String("value", value.Dec()),
		log.String("tax", tax.Dec()),
	)
	if p.observer != nil && !tax.IsZero() {
		p.observer.FeeCollected(tax)
	}
}

// SetMaxWallet caps every wallet at percent of the current total supply.
func (p *Policy) SetMaxWallet(call assetrules.Call, percent uint8) error {
	if err := p.owner.OnlyOwner(call.Caller); err != nil {
		return err
	}
	return p.setCap(maxWalletKey, percent)
}

// SetMaxTransaction caps every transfer at percent of the current total
// supply.
func (p *Policy) SetMaxTransaction(call assetrules.Call, percent uint8) error {
	if err := p.owner.OnlyOwner(call.Caller); err != nil {
		return err
	}
	return p.setCap(maxTransactionKey, percent)
}

// SetFee sets the percentage of every taxable transfer routed to the owner.
func (p *Policy) SetFee(call assetrules.Call, percent uint8) error {
	if err := p.owner.OnlyOwner(call.Caller); err != nil {
		return err
	}
	return p.setFee(percent)
}

// setCap snapshots percent of the current supply. Later supply changes do
// not move the cap.
func (p *Policy) setCap(key []byte, percent uint8) error {
	supply, err := p.ledger.TotalSupply()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLedgerFailed, err)
	}
	limit, err := safemath.Percent(supply, percent)
	if err != nil {
		return ErrCapOverflow
	}
	if err := store.PutAmount(p.db, key, limit); err != nil {
		return err
	}
	p.log.Info("cap updated",
		log.String("cap", string(key)),
		log.Int("percent", int(percent)),
		log.String("limit", limit.Dec()),
	)
	return nil
}

func (p *Policy) setFee(percent uint8) error {
	if percent > MaxFeePercent {
		return ErrInvalidFee
	}
	if err := p.db.Put(feeKey, []byte{percent}); err != nil {
		return err
	}
	p.log.Info("fee updated",
		log.Int("percent", int(percent)),
	)
	return nil
}
