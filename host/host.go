// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package host is the execution environment contracts run in. It owns the
// shared database, native balances, the event sink and the registry of
// deployed contracts, and it runs one entry point at a time.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/assetrules"
	"github.com/luxfi/assetrules/admin"
	"github.com/luxfi/assetrules/components/events"
)

var (
	_ admin.Resolver = (*Host)(nil)

	ErrContractExists  = errors.New("contract already deployed")
	ErrReservedAddress = errors.New("contract address is reserved")
	ErrUnknownContract = fmt.Errorf("%w: unknown contract", assetrules.ErrCollaboratorFailure)
	ErrNotFungible     = fmt.Errorf("%w: contract is not a fungible ledger", assetrules.ErrCollaboratorFailure)
	ErrNotCollection   = fmt.Errorf("%w: contract is not a collection", assetrules.ErrCollaboratorFailure)

	prefixBank      = []byte("bank")
	prefixContracts = []byte("contract")
)

type Host struct {
	log  log.Logger
	db   database.Database
	sink events.Sink
	bank *Bank

	// lock serializes entry points. Nested calls made by a running entry
	// point go through the registry directly and never take it.
	lock sync.Mutex

	registryLock sync.RWMutex
	contracts    map[ids.ShortID]any
}

func New(db database.Database, sink events.Sink, bank BankConfig, logger log.Logger) *Host {
	if sink == nil {
		sink = events.Discard{}
	}
	return &Host{
		log:       logger,
		db:        db,
		sink:      sink,
		bank:      NewBank(prefixdb.New(prefixBank, db), bank.MinimumBalance, logger),
		contracts: make(map[ids.ShortID]any),
	}
}

// HealthCheck reports the database health and the number of deployed
// contracts.
func (h *Host) HealthCheck(ctx context.Context) (any, error) {
	dbHealth, err := h.db.HealthCheck(ctx)
	if err != nil {
		return nil, err
	}

	h.registryLock.RLock()
	contracts := len(h.contracts)
	h.registryLock.RUnlock()

	return map[string]any{
		"database":  dbHealth,
		"contracts": contracts,
	}, nil
}

func (h *Host) Bank() *Bank {
	return h.bank
}

func (h *Host) Sink() events.Sink {
	return h.sink
}

// ContractDB returns the database namespace of the contract at address.
func (h *Host) ContractDB(address ids.ShortID) database.Database {
	return prefixdb.New(address[:], prefixdb.New(prefixContracts, h.db))
}

// Emitter returns an emitter that attributes events to address.
func (h *Host) Emitter(address ids.ShortID) events.Emitter {
	return events.Emitter{
		Contract: address,
		Sink:     h.sink,
	}
}

// Available returns an error if no contract may be deployed at address.
func (h *Host) Available(address ids.ShortID) error {
	h.registryLock.RLock()
	defer h.registryLock.RUnlock()

	return h.available(address)
}

func (h *Host) available(address ids.ShortID) error {
	if address == ids.ShortEmpty {
		return ErrReservedAddress
	}
	if _, ok := h.contracts[address]; ok {
		return fmt.Errorf("%w: %s", ErrContractExists, address)
	}
	return nil
}

// Register makes contract reachable at address.
func (h *Host) Register(address ids.ShortID, contract any) error {
	h.registryLock.Lock()
	defer h.registryLock.Unlock()

	if err := h.available(address); err != nil {
		return err
	}
	h.contracts[address] = contract
	h.log.Info("registered contract",
		log.Stringer("address", address),
		log.String("type", fmt.Sprintf("%T", contract)),
	)
	return nil
}

// Contract returns the contract deployed at address.
func (h *Host) Contract(address ids.ShortID) (any, error) {
	h.registryLock.RLock()
	defer h.registryLock.RUnlock()

	contract, ok := h.contracts[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContract, address)
	}
	return contract, nil
}

func (h *Host) Fungible(address ids.ShortID) (admin.FungibleContract, error) {
	contract, err := h.Contract(address)
	if err != nil {
		return nil, err
	}
	fungible, ok := contract.(admin.FungibleContract)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFungible, address)
	}
	return fungible, nil
}

func (h *Host) Collection(address ids.ShortID) (admin.CollectionContract, error) {
	contract, err := h.Contract(address)
	if err != nil {
		return nil, err
	}
	collection, ok := contract.(admin.CollectionContract)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotCollection, address)
	}
	return collection, nil
}

// Execute runs f as a single entry point invocation. Invocations never
// overlap.
func (h *Host) Execute(f func() error) error {
	h.lock.Lock()
	defer h.lock.Unlock()

	return f()
}

// Payable runs f as an entry point of contract after moving call.Value from
// the caller to the contract. The contract decides what to refund when f
// fails.
func (h *Host) Payable(call assetrules.Call, contract ids.ShortID, f func() error) error {
	return h.Execute(func() error {
		if err := h.bank.Transfer(call.Caller, contract, call.Paid()); err != nil {
			return err
		}
		return f()
	})
}
