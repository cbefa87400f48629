// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package collection is the base ledger of a non-fungible collection: who
// owns each id, who may move it and how ids are enumerated.
package collection

import (
	"encoding/binary"
	"fmt"

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
	ErrTokenExists    = fmt.Errorf("%w: token already exists", assetrules.ErrPolicyViolation)
	ErrTokenNotExists = fmt.Errorf("%w: token does not exist", assetrules.ErrPolicyViolation)
	ErrNotApproved    = fmt.Errorf("%w: caller is not approved", assetrules.ErrAuthorization)
	ErrSelfApprove    = fmt.Errorf("%w: cannot approve the token owner", assetrules.ErrPolicyViolation)
	ErrZeroRecipient  = fmt.Errorf("%w: recipient is the empty address", assetrules.ErrPolicyViolation)
	ErrOutOfBounds    = fmt.Errorf("%w: index out of bounds", assetrules.ErrPolicyViolation)

	prefixOwner       = []byte("owner:")
	prefixHolder      = []byte("holder:")
	prefixBalance     = []byte("balance:")
	prefixApproval    = []byte("approval:")
	prefixApprovalAll = []byte("approvalAll:")
	supplyKey         = []byte("supply")
)

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

const idLen = 8

func packID(id uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, id)
}

func ownerKey(id uint64) []byte {
	return store.Key(prefixOwner, packID(id))
}

func holderKey(owner ids.ShortID, id uint64) []byte {
	return store.Key(prefixHolder, owner[:], packID(id))
}

func balanceKey(owner ids.ShortID) []byte {
	return store.Key(prefixBalance, owner[:])
}

func approvalKey(id uint64) []byte {
	return store.Key(prefixApproval, packID(id))
}

func approvalAllKey(owner, operator ids.ShortID) []byte {
	return store.Key(prefixApprovalAll, owner[:], operator[:])
}

// atomic runs f against a staging database that is committed only when f
// succeeds. Events are emitted after the commit.
func (l *Ledger) atomic(f func(db database.Database) ([]events.Event, error)) error {
	vdb := versiondb.New(l.db)
	evs, err := f(vdb)
	if err != nil {
		vdb.Abort()
		return err
	}
	if err := vdb.Commit(); err != nil {
		return fmt.Errorf("failed to commit collection changes: %w", err)
	}
	for _, ev := range evs {
		if err := l.emitter.Emit(ev); err != nil {
			return err
		}
	}
	return nil
}

func getOwner(db database.KeyValueReader, id uint64) (ids.ShortID, bool, error) {
	b, ok, err := store.GetBytes(db, ownerKey(id))
	if err != nil || !ok {
		return ids.ShortEmpty, false, err
	}
	owner, err := ids.ToShortID(b)
	if err != nil {
		return ids.ShortEmpty, false, fmt.Errorf("%w: owner of %d: %w", store.ErrCorrupted, id, err)
	}
	return owner, true, nil
}

// OwnerOf returns the owner of record of id and whether id exists.
func (l *Ledger) OwnerOf(id uint64) (ids.ShortID, bool, error) {
	return getOwner(l.db, id)
}

func (l *Ledger) BalanceOf(owner ids.ShortID) (uint64, error) {
	return store.GetUint64(l.db, balanceKey(owner))
}

func (l *Ledger) TotalSupply() (uint64, error) {
	return store.GetUint64(l.db, supplyKey)
}

// Approved returns the operator approved for id alone, if any.
func (l *Ledger) Approved(id uint64) (ids.ShortID, bool, error) {
	b, ok, err := store.GetBytes(l.db, approvalKey(id))
	if err != nil || !ok {
		return ids.ShortEmpty, false, err
	}
	operator, err := ids.ToShortID(b)
	return operator, err == nil, err
}

// Allowance reports whether operator may move id on behalf of owner. A nil
// id asks about approval over every id owner holds.
func (l *Ledger) Allowance(owner, operator ids.ShortID, id *uint64) (bool, error) {
	return allowance(l.db, owner, operator, id)
}

func allowance(db database.KeyValueReader, owner, operator ids.ShortID, id *uint64) (bool, error) {
	all, err := db.Has(approvalAllKey(owner, operator))
	if err != nil || all || id == nil {
		return all, err
	}
	b, ok, err := store.GetBytes(db, approvalKey(*id))
	if err != nil || !ok {
		return false, err
	}
	approved, err := ids.ToShortID(b)
	if err != nil {
		return false, err
	}
	tokenOwner, exists, err := getOwner(db, *id)
	if err != nil || !exists {
		return false, err
	}
	return approved == operator && tokenOwner == owner, nil
}

// Approve grants or revokes operator's right to move id, or every id the
// caller holds when id is nil.
func (l *Ledger) Approve(call assetrules.Call, operator ids.ShortID, id *uint64, approved bool) error {
	return l.atomic(func(db database.Database) ([]events.Event, error) {
		owner := call.Caller
		ev := &events.TokenApproval{
			Operator: operator,
			Approved: approved,
		}
		if id == nil {
			if operator == owner {
				return nil, ErrSelfApprove
			}
			var err error
			if approved {
				err = db.Put(approvalAllKey(owner, operator), nil)
			} else {
				err = db.Delete(approvalAllKey(owner, operator))
			}
			if err != nil {
				return nil, err
			}
			ev.Owner = owner
			ev.All = true
			return []events.Event{ev}, nil
		}

		tokenOwner, exists, err := getOwner(db, *id)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrTokenNotExists
		}
		if approved && tokenOwner == operator {
			return nil, ErrSelfApprove
		}
		if tokenOwner != owner {
			ok, err := allowance(db, tokenOwner, owner, nil)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, ErrNotApproved
			}
		}
		if approved {
			err = db.Put(approvalKey(*id), operator[:])
		} else {
			err = db.Delete(approvalKey(*id))
		}
		if err != nil {
			return nil, err
		}
		ev.Owner = tokenOwner
		ev.ID = *id
		return []events.Event{ev}, nil
	})
}

func addBalance(db database.Database, owner ids.ShortID, delta int) error {
	balance, err := store.GetUint64(db, balanceKey(owner))
	if err != nil {
		return err
	}
	if delta > 0 {
		balance, err = safemath.Add(balance, uint64(delta))
	} else {
		balance, err = safemath.Sub(balance, uint64(-delta))
	}
	if err != nil {
		return fmt.Errorf("%w: balance of %s: %w", store.ErrCorrupted, owner, err)
	}
	if balance == 0 {
		return db.Delete(balanceKey(owner))
	}
	return database.PutUInt64(db, balanceKey(owner), balance)
}

func addSupply(db database.Database, delta int) error {
	supply, err := store.GetUint64(db, supplyKey)
	if err != nil {
		return err
	}
	if delta > 0 {
		supply, err = safemath.Add(supply, uint64(delta))
	} else {
		supply, err = safemath.Sub(supply, uint64(-delta))
	}
	if err != nil {
		return fmt.Errorf("%w: supply: %w", store.ErrCorrupted, err)
	}
	return database.PutUInt64(db, supplyKey, supply)
}

func setOwner(db database.Database, id uint64, from, to ids.ShortID) error {
	if from != ids.ShortEmpty {
		if err := db.Delete(holderKey(from, id)); err != nil {
			return err
		}
		if err := addBalance(db, from, -1); err != nil {
			return err
		}
		if err := db.Delete(approvalKey(id)); err != nil {
			return err
		}
	}
	if to == ids.ShortEmpty {
		return db.Delete(ownerKey(id))
	}
	if err := db.Put(ownerKey(id), to[:]); err != nil {
		return err
	}
	if err := db.Put(holderKey(to, id), nil); err != nil {
		return err
	}
	return addBalance(db, to, 1)
}

// MintTo creates id owned by to. Minting does not emit an event; the caller
// announces minted ids.
func (l *Ledger) MintTo(to ids.ShortID, id uint64) error {
	if to == ids.ShortEmpty {
		return ErrZeroRecipient
	}
	return l.atomic(func(db database.Database) ([]events.Event, error) {
		exists, err := db.Has(ownerKey(id))
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrTokenExists
		}
		if err := setOwner(db, id, ids.ShortEmpty, to); err != nil {
			return nil, err
		}
		return nil, addSupply(db, 1)
	})
}

// Transfer moves id from its owner to to. The caller must be the owner or an
// approved operator.
func (l *Ledger) Transfer(call assetrules.Call, to ids.ShortID, id uint64, _ []byte) error {
	if to == ids.ShortEmpty {
		return ErrZeroRecipient
	}
	return l.atomic(func(db database.Database) ([]events.Event, error) {
		owner, err := l.authorize(db, call.Caller, id)
		if err != nil {
			return nil, err
		}
		if err := setOwner(db, id, owner, to); err != nil {
			return nil, err
		}
		return []events.Event{&events.TokenTransfer{
			From: owner,
			To:   to,
			ID:   id,
		}}, nil
	})
}

// Burn destroys id held by account. The caller must be account or approved
// to move id.
func (l *Ledger) Burn(call assetrules.Call, account ids.ShortID, id uint64) error {
	return l.atomic(func(db database.Database) ([]events.Event, error) {
		owner, err := l.authorize(db, call.Caller, id)
		if err != nil {
			return nil, err
		}
		if owner != account {
			return nil, ErrNotApproved
		}
		if err := setOwner(db, id, owner, ids.ShortEmpty); err != nil {
			return nil, err
		}
		if err := addSupply(db, -1); err != nil {
			return nil, err
		}
		return []events.Event{&events.TokenTransfer{
			From: owner,
			ID:   id,
		}}, nil
	})
}

func (*Ledger) authorize(db database.Database, caller ids.ShortID, id uint64) (ids.ShortID, error) {
	owner, exists, err := getOwner(db, id)
	if err != nil {
		return ids.ShortEmpty, err
	}
	if !exists {
		return ids.ShortEmpty, ErrTokenNotExists
	}
	if owner == caller {
		return owner, nil
	}
	ok, err := allowance(db, owner, caller, &id)
	if err != nil {
		return ids.ShortEmpty, err
	}
	if !ok {
		return ids.ShortEmpty, ErrNotApproved
	}
	return owner, nil
}

// nth returns the id suffix of the index-th key under prefix.
func nth(db database.Database, prefix []byte, index uint64) (uint64, error) {
	it := db.NewIteratorWithPrefix(prefix)
	defer it.Release()

	for i := uint64(0); it.Next(); i++ {
		if i == index {
			key := it.Key()
			return binary.BigEndian.Uint64(key[len(key)-idLen:]), nil
		}
	}
	if err := it.Error(); err != nil {
		return 0, err
	}
	return 0, ErrOutOfBounds
}

// OwnersTokenByIndex returns the index-th id held by owner, in ascending id
// order.
func (l *Ledger) OwnersTokenByIndex(owner ids.ShortID, index uint64) (uint64, error) {
	return nth(l.db, store.Key(prefixHolder, owner[:]), index)
}

// TokenByIndex returns the index-th existing id, in ascending id order.
func (l *Ledger) TokenByIndex(index uint64) (uint64, error) {
	return nth(l.db, prefixOwner, index)
}
