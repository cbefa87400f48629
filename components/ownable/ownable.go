// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ownable implements the single-owner gate shared by every contract.
package ownable

import (
	"errors"
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/assetrules"
	"github.com/luxfi/assetrules/components/events"
)

var (
	ErrNotOwner     = fmt.Errorf("%w: caller is not the owner", assetrules.ErrAuthorization)
	ErrZeroNewOwner = fmt.Errorf("%w: new owner is the empty address", assetrules.ErrPolicyViolation)

	ownerKey = []byte("owner")
)

// Ownable persists the owner of a contract. The zero value is not usable;
// call New.
type Ownable struct {
	log     log.Logger
	db      database.Database
	emitter events.Emitter
	owner   ids.ShortID
}

// New loads the owner stored in db. When db holds no owner, initial becomes
// the owner.
func New(db database.Database, initial ids.ShortID, emitter events.Emitter, logger log.Logger) (*Ownable, error) {
	o := &Ownable{
		log:     logger,
		db:      db,
		emitter: emitter,
	}
	b, err := db.Get(ownerKey)
	switch {
	case errors.Is(err, database.ErrNotFound):
		if err := o.setOwner(initial); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("failed to load owner: %w", err)
	default:
		o.owner, err = ids.ToShortID(b)
		if err != nil {
			return nil, fmt.Errorf("failed to parse owner: %w", err)
		}
	}
	return o, nil
}

func (o *Ownable) setOwner(owner ids.ShortID) error {
	if err := o.db.Put(ownerKey, owner[:]); err != nil {
		return fmt.Errorf("failed to store owner: %w", err)
	}
	o.owner = owner
	return nil
}

func (o *Ownable) Owner() ids.ShortID {
	return o.owner
}

func (o *Ownable) IsOwner(caller ids.ShortID) bool {
	return caller == o.owner && caller != ids.ShortEmpty
}

// OnlyOwner returns ErrNotOwner unless caller is the owner. A renounced
// contract has no owner and rejects everyone.
func (o *Ownable) OnlyOwner(caller ids.ShortID) error {
	if !o.IsOwner(caller) {
		return ErrNotOwner
	}
	return nil
}

func (o *Ownable) TransferOwnership(call assetrules.Call, newOwner ids.ShortID) error {
	if err := o.OnlyOwner(call.Caller); err != nil {
		return err
	}
	if newOwner == ids.ShortEmpty {
		return ErrZeroNewOwner
	}
	return o.change(newOwner)
}

// RenounceOwnership leaves the contract without an owner. Every owner-gated
// operation fails afterwards.
func (o *Ownable) RenounceOwnership(call assetrules.Call) error {
	if err := o.OnlyOwner(call.Caller); err != nil {
		return err
	}
	return o.change(ids.ShortEmpty)
}

func (o *Ownable) change(newOwner ids.ShortID) error {
	previous := o.owner
	if err := o.setOwner(newOwner); err != nil {
		return err
	}
	o.log.Info("ownership transferred",
		log.Stringer("contract", o.emitter.Contract),
		log.Stringer("previous", previous),
		log.Stringer("new", newOwner),
	)
	return o.emitter.Emit(&events.OwnershipTransferred{
		Previous: previous,
		New:      newOwner,
	})
}
