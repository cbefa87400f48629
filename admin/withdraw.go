// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package admin lets the owner of a contract move assets the contract holds.
package admin

import (
	"fmt"
	"sync/atomic"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/assetrules"
	"github.com/luxfi/assetrules/components/events"

	safemath "github.com/luxfi/assetrules/utils/math"
)

var (
	ErrNotEnoughBalance = fmt.Errorf("%w: not enough balance", assetrules.ErrPolicyViolation)
	ErrReentrantCall    = fmt.Errorf("%w: withdraw already in progress", assetrules.ErrAuthorization)
	ErrWithdrawFee      = fmt.Errorf("%w: withdraw native failed", assetrules.ErrCollaboratorFailure)
	ErrWithdrawToken    = fmt.Errorf("%w: withdraw token failed", assetrules.ErrCollaboratorFailure)
	ErrWithdrawAsset    = fmt.Errorf("%w: withdraw asset failed", assetrules.ErrCollaboratorFailure)
)

// Observer is told about every successful withdrawal.
type Observer interface {
	Withdrawn(asset events.Asset)
}

type noopObserver struct{}

func (noopObserver) Withdrawn(events.Asset) {}

// Withdrawer moves native value, foreign tokens and foreign assets out of the
// contract at self. Callees may call back into the contract while a
// withdrawal is in flight, but not into another withdrawal.
type Withdrawer struct {
	log      log.Logger
	self     ids.ShortID
	owner    Owner
	bank     Bank
	resolver Resolver
	emitter  events.Emitter
	observer Observer

	entered atomic.Bool
}

func New(
	self ids.ShortID,
	owner Owner,
	bank Bank,
	resolver Resolver,
	emitter events.Emitter,
	observer Observer,
	logger log.Logger,
) *Withdrawer {
	if observer == nil {
		observer = noopObserver{}
	}
	return &Withdrawer{
		log:      logger,
		self:     self,
		owner:    owner,
		bank:     bank,
		resolver: resolver,
		emitter:  emitter,
		observer: observer,
	}
}

// guard runs f unless another withdrawal is already running.
func (w *Withdrawer) guard(caller ids.ShortID, f func() error) error {
	if err := w.owner.OnlyOwner(caller); err != nil {
		return err
	}
	if !w.entered.CompareAndSwap(false, true) {
		return ErrReentrantCall
	}
	defer w.entered.Store(false)

	return f()
}

func (w *Withdrawer) withdrawn(ev *events.Withdrawn) error {
	w.log.Info("withdrawn",
		log.Stringer("contract", w.self),
		log.Stringer("asset", ev.Asset),
		log.Stringer("receiver", ev.Receiver),
		log.String("value", ev.Value.Dec()),
		log.Uint64("id", ev.ID),
	)
	w.observer.Withdrawn(ev.Asset)
	return w.emitter.Emit(ev)
}

// WithdrawNative sends amount of the contract's native balance to receiver.
func (w *Withdrawer) WithdrawNative(call assetrules.Call, amount *uint256.Int, receiver ids.ShortID) error {
	return w.guard(call.Caller, func() error {
		return w.withdrawNative(amount, receiver)
	})
}

func (w *Withdrawer) withdrawNative(amount *uint256.Int, receiver ids.ShortID) error {
	amount = orZero(amount)
	balance, err := w.bank.BalanceOf(w.self)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWithdrawFee, err)
	}
	if amount.Gt(balance) {
		return ErrNotEnoughBalance
	}
	if err := w.bank.Transfer(w.self, receiver, amount); err != nil {
		return fmt.Errorf("%w: %w", ErrWithdrawFee, err)
	}
	return w.withdrawn(&events.Withdrawn{
		Asset:    events.Native,
		Receiver: receiver,
		Value:    events.Amount(amount),
	})
}

// WithdrawAll sends everything above the minimum balance to the owner.
func (w *Withdrawer) WithdrawAll(call assetrules.Call) error {
	return w.guard(call.Caller, func() error {
		balance, err := w.bank.BalanceOf(w.self)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWithdrawFee, err)
		}
		amount, err := safemath.SubAmount(balance, w.bank.MinimumBalance())
		if err != nil || amount.IsZero() {
			return ErrNotEnoughBalance
		}
		return w.withdrawNative(amount, w.owner.Owner())
	})
}

// WithdrawForeignToken transfers amount of the fungible token at token from
// the contract to receiver.
func (w *Withdrawer) WithdrawForeignToken(call assetrules.Call, token ids.ShortID, amount *uint256.Int, receiver ids.ShortID) error {
	return w.guard(call.Caller, func() error {
		contract, err := w.resolver.Fungible(token)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWithdrawToken, err)
		}
		amount := orZero(amount)
		if err := contract.Transfer(assetrules.NewCall(w.self), receiver, amount, nil); err != nil {
			return fmt.Errorf("%w: %w", ErrWithdrawToken, err)
		}
		return w.withdrawn(&events.Withdrawn{
			Asset:    events.ForeignToken,
			Contract: token,
			Receiver: receiver,
			Value:    events.Amount(amount),
		})
	})
}

// WithdrawForeignAsset transfers id of the collection at collection from the
// contract to receiver.
func (w *Withdrawer) WithdrawForeignAsset(call assetrules.Call, collection ids.ShortID, id uint64, receiver ids.ShortID) error {
	return w.guard(call.Caller, func() error {
		contract, err := w.resolver.Collection(collection)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWithdrawAsset, err)
		}
		if err := contract.Transfer(assetrules.NewCall(w.self), receiver, id, nil); err != nil {
			return fmt.Errorf("%w: %w", ErrWithdrawAsset, err)
		}
		return w.withdrawn(&events.Withdrawn{
			Asset:    events.ForeignCollection,
			Contract: collection,
			Receiver: receiver,
			ID:       id,
		})
	})
}

// orZero reads a missing amount as zero.
func orZero(amount *uint256.Int) *uint256.Int {
	if amount == nil {
		return new(uint256.Int)
	}
	return amount
}
