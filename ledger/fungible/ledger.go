// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package fungible is the base balance ledger of a divisible token. It owns
// balances, allowances and total supply and knows nothing about fees or caps.
package fungible

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/assetrules"
	"github.com/luxfi/assetrules/components/events"
	"github.com/luxfi/assetrules/components/store"

	safemath "github.com/luxfi/assetrules/utils/math"
)

var (
	ErrInsufficientBalance   = fmt.Errorf("%w: insufficient balance", assetrules.ErrPolicyViolation)
	ErrInsufficientAllowance = fmt.Errorf("%w: insufficient allowance", assetrules.ErrPolicyViolation)
	ErrZeroRecipient         = fmt.Errorf("%w: recipient is the empty address", assetrules.ErrPolicyViolation)
	ErrSupplyOverflow        = fmt.Errorf("%w: total supply overflow", assetrules.ErrCapacityExhausted)

	prefixBalance   = []byte("balance:")
	prefixAllowance = []byte("allowance:")
	supplyKey       = []byte("supply")
	nameKey         = []byte("name")
	symbolKey       = []byte("symbol")
	decimalsKey     = []byte("decimals")
)

// Leg is one balance move out of a shared sender.
type Leg struct {
	To    ids.ShortID
	Value *uint256.Int
}

// Metadata describes the token.
type Metadata struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

type Ledger struct {
	log     log.Logger
	db      database.Database
	emitter events.Emitter
}

func New(db database.Database, emitter events.Emitter, logger log.Logger) *Ledger {
	return &Ledger{
		log:     logger,
		db:      db,
		emitter: emitter,
	}
}

// view stages the writes and events of one ledger operation.
type view struct {
	db     database.Database
	events []events.Event
}

// atomic runs f against a staging view. The view is committed only when f
// succeeds, and events are emitted only after the commit.
func (l *Ledger) atomic(f func(v *view) error) error {
	vdb := versiondb.New(l.db)
	v := &view{db: vdb}
	if err := f(v); err != nil {
		vdb.Abort()
		return err
	}
	if err := vdb.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger changes: %w", err)
	}
	for _, ev := range v.events {
		if err := l.emitter.Emit(ev); err != nil {
			return err
		}
	}
	return nil
}

func balanceKey(owner ids.ShortID) []byte {
	return store.Key(prefixBalance, owner[:])
}

func allowanceKey(owner, spender ids.ShortID) []byte {
	return store.Key(prefixAllowance, owner[:], spender[:])
}

func (v *view) balance(owner ids.ShortID) (*uint256.Int, error) {
	return store.GetAmount(v.db, balanceKey(owner))
}

func (v *view) allowance(owner, spender ids.ShortID) (*uint256.Int, error) {
	return store.GetAmount(v.db, allowanceKey(owner, spender))
}

func (v *view) transfer(from, to ids.ShortID, value *uint256.Int) error {
	fromBalance, err := v.balance(from)
	if err != nil {
		return err
	}
	fromBalance, err = safemath.SubAmount(fromBalance, value)
	if err != nil {
		return ErrInsufficientBalance
	}
	if err := store.PutAmount(v.db, balanceKey(from), fromBalance); err != nil {
		return err
	}

	toBalance, err := v.balance(to)
	if err != nil {
		return err
	}
	// Balances are bounded by the total supply, so this only fails on
	// corrupted state.
	toBalance, err = safemath.AddAmount(toBalance, value)
	if err != nil {
		return ErrSupplyOverflow
	}
	if err := store.PutAmount(v.db, balanceKey(to), toBalance); err != nil {
		return err
	}

	v.events = append(v.events, &events.Transfer{
		From:  from,
		To:    to,
		Value: events.Amount(value),
	})
	return nil
}

func (v *view) approve(owner, spender ids.ShortID, value *uint256.Int) error {
	if err := store.PutAmount(v.db, allowanceKey(owner, spender), value); err != nil {
		return err
	}
	v.events = append(v.events, &events.Approval{
		Owner:   owner,
		Spender: spender,
		Value:   events.Amount(value),
	})
	return nil
}

func (v *view) spend(owner, spender ids.ShortID, value *uint256.Int) error {
	allowance, err := v.allowance(owner, spender)
	if err != nil {
		return err
	}
	remaining, err := safemath.SubAmount(allowance, value)
	if err != nil {
		return ErrInsufficientAllowance
	}
	return v.approve(owner, spender, remaining)
}

func (l *Ledger) SetMetadata(m Metadata) error {
	return l.atomic(func(v *view) error {
		return errors.Join(
			v.db.Put(nameKey, []byte(m.Name)),
			v.db.Put(symbolKey, []byte(m.Symbol)),
			v.db.Put(decimalsKey, []byte{m.Decimals}),
		)
	})
}

func (l *Ledger) Metadata() (Metadata, error) {
	var m Metadata
	name, _, err := store.GetBytes(l.db, nameKey)
	if err != nil {
		return m, err
	}
	symbol, _, err := store.GetBytes(l.db, symbolKey)
	if err != nil {
		return m, err
	}
	decimals, ok, err := store.GetBytes(l.db, decimalsKey)
	if err != nil {
		return m, err
	}
	m.Name = string(name)
	m.Symbol = string(symbol)
	if ok && len(decimals) == 1 {
		m.Decimals = decimals[0]
	}
	return m, nil
}

func (l *Ledger) TotalSupply() (*uint256.Int, error) {
	return store.GetAmount(l.db, supplyKey)
}

func (l *Ledger) BalanceOf(owner ids.ShortID) (*uint256.Int, error) {
	return store.GetAmount(l.db, balanceKey(owner))
}

func (l *Ledger) Allowance(owner, spender ids.ShortID) (*uint256.Int, error) {
	return store.GetAmount(l.db, allowanceKey(owner, spender))
}

// Transfer moves value from the caller to to.
func (l *Ledger) Transfer(call assetrules.Call, to ids.ShortID, value *uint256.Int, data []byte) error {
	return l.TransferLegs(call.Caller, []Leg{{To: to, Value: value}}, data)
}

// TransferLegs moves every leg out of from. Either every leg is applied or
// none is.
func (l *Ledger) TransferLegs(from ids.ShortID, legs []Leg, _ []byte) error {
	return l.atomic(func(v *view) error {
		for _, leg := range legs {
			if err := v.transfer(from, leg.To, leg.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

// TransferFrom moves value from from to to, spending the caller's allowance.
func (l *Ledger) TransferFrom(call assetrules.Call, from, to ids.ShortID, value *uint256.Int, data []byte) error {
	return l.TransferFromLegs(call.Caller, from, []Leg{{To: to, Value: value}}, data)
}

// TransferFromLegs spends the sum of the legs from spender's allowance over
// from and then applies every leg, all or nothing.
func (l *Ledger) TransferFromLegs(spender, from ids.ShortID, legs []Leg, _ []byte) error {
	total := new(uint256.Int)
	for _, leg := range legs {
		var err error
		total, err = safemath.AddAmount(total, leg.Value)
		if err != nil {
			return ErrInsufficientAllowance
		}
	}
	return l.atomic(func(v *view) error {
		if err := v.spend(from, spender, total); err != nil {
			return err
		}
		for _, leg := range legs {
			if err := v.transfer(from, leg.To, leg.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (l *Ledger) Approve(call assetrules.Call, spender ids.ShortID, value *uint256.Int) error {
	return l.atomic(func(v *view) error {
		return v.approve(call.Caller, spender, value)
	})
}

func (l *Ledger) IncreaseAllowance(call assetrules.Call, spender ids.ShortID, delta *uint256.Int) error {
	return l.atomic(func(v *view) error {
		allowance, err := v.allowance(call.Caller, spender)
		if err != nil {
			return err
		}
		allowance, err = safemath.AddAmount(allowance, delta)
		if err != nil {
			return ErrSupplyOverflow
		}
		return v.approve(call.Caller, spender, allowance)
	})
}

func (l *Ledger) DecreaseAllowance(call assetrules.Call, spender ids.ShortID, delta *uint256.Int) error {
	return l.atomic(func(v *view) error {
		return v.spend(call.Caller, spender, delta)
	})
}

// Mint creates value new units credited to account.
func (l *Ledger) Mint(account ids.ShortID, value *uint256.Int) error {
	if account == ids.ShortEmpty {
		return ErrZeroRecipient
	}
	err := l.atomic(func(v *view) error {
		supply, err := store.GetAmount(v.db, supplyKey)
		if err != nil {
			return err
		}
		supply, err = safemath.AddAmount(supply, value)
		if err != nil {
			return ErrSupplyOverflow
		}
		if err := store.PutAmount(v.db, supplyKey, supply); err != nil {
			return err
		}

		balance, err := v.balance(account)
		if err != nil {
			return err
		}
		balance, err = safemath.AddAmount(balance, value)
		if err != nil {
			return ErrSupplyOverflow
		}
		if err := store.PutAmount(v.db, balanceKey(account), balance); err != nil {
			return err
		}
		v.events = append(v.events, &events.Transfer{
			To:    account,
			Value: events.Amount(value),
		})
		return nil
	})
	if err != nil {
		return err
	}
	l.log.Debug("minted tokens",
		log.Stringer("contract", l.emitter.Contract),
		log.Stringer("account", account),
		log.String("value", value.Dec()),
	)
	return nil
}

// Burn destroys value units held by account.
func (l *Ledger) Burn(account ids.ShortID, value *uint256.Int) error {
	return l.atomic(func(v *view) error {
		balance, err := v.balance(account)
		if err != nil {
			return err
		}
		balance, err = safemath.SubAmount(balance, value)
		if err != nil {
			return ErrInsufficientBalance
		}
		if err := store.PutAmount(v.db, balanceKey(account), balance); err != nil {
			return err
		}

		supply, err := store.GetAmount(v.db, supplyKey)
		if err != nil {
			return err
		}
		supply, err = safemath.SubAmount(supply, value)
		if err != nil {
			return fmt.Errorf("%w: supply below burned amount", store.ErrCorrupted)
		}
		if err := store.PutAmount(v.db, supplyKey, supply); err != nil {
			return err
		}
		v.events = append(v.events, &events.Transfer{
			From:  account,
			Value: events.Amount(value),
		})
		return nil
	})
}
