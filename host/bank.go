// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/assetrules"
	"github.com/luxfi/assetrules/admin"
	"github.com/luxfi/assetrules/components/store"

	safemath "github.com/luxfi/assetrules/utils/math"
)

var (
	_ admin.Bank = (*Bank)(nil)

	ErrInsufficientFunds = fmt.Errorf("%w: insufficient native balance", assetrules.ErrPolicyViolation)
	ErrBelowMinimum      = fmt.Errorf("%w: transfer would leave a balance below the minimum", assetrules.ErrPolicyViolation)

	prefixNative = []byte("native:")
)

// Bank stores native balances. An account may hold either nothing or at least
// the minimum balance.
type Bank struct {
	log     log.Logger
	db      database.Database
	minimum *uint256.Int
}

func NewBank(db database.Database, minimum *uint256.Int, logger log.Logger) *Bank {
	if minimum == nil {
		minimum = new(uint256.Int)
	}
	return &Bank{
		log:     logger,
		db:      db,
		minimum: minimum,
	}
}

func nativeKey(account ids.ShortID) []byte {
	return store.Key(prefixNative, account[:])
}

func (b *Bank) BalanceOf(account ids.ShortID) (*uint256.Int, error) {
	return store.GetAmount(b.db, nativeKey(account))
}

func (b *Bank) MinimumBalance() *uint256.Int {
	return new(uint256.Int).Set(b.minimum)
}

// Credit adds newly issued native value to account.
func (b *Bank) Credit(account ids.ShortID, amount *uint256.Int) error {
	balance, err := b.BalanceOf(account)
	if err != nil {
		return err
	}
	balance, err = safemath.AddAmount(balance, amount)
	if err != nil {
		return fmt.Errorf("%w: native balance overflow", assetrules.ErrCapacityExhausted)
	}
	return store.PutAmount(b.db, nativeKey(account), balance)
}

func (b *Bank) Transfer(from, to ids.ShortID, amount *uint256.Int) error {
	if amount.IsZero() || from == to {
		return nil
	}
	fromBalance, err := b.BalanceOf(from)
	if err != nil {
		return err
	}
	remaining, err := safemath.SubAmount(fromBalance, amount)
	if err != nil {
		return ErrInsufficientFunds
	}
	if !remaining.IsZero() && remaining.Lt(b.minimum) {
		return ErrBelowMinimum
	}

	toBalance, err := b.BalanceOf(to)
	if err != nil {
		return err
	}
	toBalance, err = safemath.AddAmount(toBalance, amount)
	if err != nil {
		return fmt.Errorf("%w: native balance overflow", assetrules.ErrCapacityExhausted)
	}

	batch := b.db.NewBatch()
	if err := store.PutAmount(batch, nativeKey(from), remaining); err != nil {
		return err
	}
	if err := store.PutAmount(batch, nativeKey(to), toBalance); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return err
	}
	b.log.Debug("native transfer",
		log.Stringer("from", from),
		log.Stringer("to", to),
		log.String("amount", amount.Dec()),
	)
	return nil
}
