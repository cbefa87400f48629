// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package admin is the "admin" JSON-RPC service: ownership and withdrawals
// of any deployed contract.
package admin

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/assetrules"
	"github.com/luxfi/assetrules/api"
	"github.com/luxfi/assetrules/utils/json"
)

var errNotAdministered = errors.New("contract has no owner controls")

// Contract is what every owned contract exposes to its owner.
type Contract interface {
	Owner() ids.ShortID
	TransferOwnership(call assetrules.Call, newOwner ids.ShortID) error
	RenounceOwnership(call assetrules.Call) error
	WithdrawNative(call assetrules.Call, amount *uint256.Int, receiver ids.ShortID) error
	WithdrawAll(call assetrules.Call) error
	WithdrawForeignToken(call assetrules.Call, token ids.ShortID, amount *uint256.Int, receiver ids.ShortID) error
	WithdrawForeignAsset(call assetrules.Call, collection ids.ShortID, id uint64, receiver ids.ShortID) error
}

// Admin is the API service for contract owners
type Admin struct {
	*api.Backend
}

func NewService(b *api.Backend) api.Service {
	return api.Service{Name: "admin", Receiver: &Admin{Backend: b}}
}

func (a *Admin) called(method string) {
	a.Log.Debug("API called",
		log.String("service", "admin"),
		log.String("method", method),
	)
}

func (a *Admin) contract(address string) (Contract, error) {
	contract, err := a.Contract(address)
	if err != nil {
		return nil, err
	}
	owned, ok := contract.(Contract)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errNotAdministered, address)
	}
	return owned, nil
}

// parse resolves the contract and caller every admin call names.
func (a *Admin) parse(address, caller string) (Contract, assetrules.Call, error) {
	contract, err := a.contract(address)
	if err != nil {
		return nil, assetrules.Call{}, err
	}
	addr, err := api.ParseAddress(caller)
	if err != nil {
		return nil, assetrules.Call{}, err
	}
	return contract, assetrules.NewCall(addr), nil
}

type OwnerArgs struct {
	Address string `json:"address"`
}

type OwnerReply struct {
	Owner string `json:"owner"`
}

// Owner returns the owner of the contract. A renounced contract has the empty
// owner.
func (a *Admin) Owner(_ *http.Request, args *OwnerArgs, reply *OwnerReply) error {
	a.called("owner")

	contract, err := a.contract(args.Address)
	if err != nil {
		return err
	}
	reply.Owner = contract.Owner().String()
	return nil
}

type TransferOwnershipArgs struct {
	Address  string `json:"address"`
	Caller   string `json:"caller"`
	NewOwner string `json:"newOwner"`
}

func (a *Admin) TransferOwnership(_ *http.Request, args *TransferOwnershipArgs, _ *api.EmptyReply) error {
	a.called("transferOwnership")

	contract, call, err := a.parse(args.Address, args.Caller)
	if err != nil {
		return err
	}
	newOwner, err := api.ParseOptionalAddress(args.NewOwner)
	if err != nil {
		return err
	}
	return a.Call("admin.transferOwnership", func() error {
		return contract.TransferOwnership(call, newOwner)
	})
}

type CallerArgs struct {
	Address string `json:"address"`
	Caller  string `json:"caller"`
}

func (a *Admin) RenounceOwnership(_ *http.Request, args *CallerArgs, _ *api.EmptyReply) error {
	a.called("renounceOwnership")

	contract, call, err := a.parse(args.Address, args.Caller)
	if err != nil {
		return err
	}
	return a.Call("admin.renounceOwnership", func() error {
		return contract.RenounceOwnership(call)
	})
}

type WithdrawNativeArgs struct {
	Address  string      `json:"address"`
	Caller   string      `json:"caller"`
	Amount   json.Amount `json:"amount"`
	Receiver string      `json:"receiver"`
}

func (a *Admin) WithdrawNative(_ *http.Request, args *WithdrawNativeArgs, _ *api.EmptyReply) error {
	a.called("withdrawNative")

	contract, call, err := a.parse(args.Address, args.Caller)
	if err != nil {
		return err
	}
	receiver, err := api.ParseAddress(args.Receiver)
	if err != nil {
		return err
	}
	return a.Call("admin.withdrawNative", func() error {
		return contract.WithdrawNative(call, args.Amount.Value(), receiver)
	})
}

// WithdrawAll sends the native balance above the minimum to the owner.
func (a *Admin) WithdrawAll(_ *http.Request, args *CallerArgs, _ *api.EmptyReply) error {
	a.called("withdrawAll")

	contract, call, err := a.parse(args.Address, args.Caller)
	if err != nil {
		return err
	}
	return a.Call("admin.withdrawAll", func() error {
		return contract.WithdrawAll(call)
	})
}

type WithdrawTokenArgs struct {
	Address  string      `json:"address"`
	Caller   string      `json:"caller"`
	Token    string      `json:"token"`
	Amount   json.Amount `json:"amount"`
	Receiver string      `json:"receiver"`
}

func (a *Admin) WithdrawForeignToken(_ *http.Request, args *WithdrawTokenArgs, _ *api.EmptyReply) error {
	a.called("withdrawForeignToken")

	contract, call, err := a.parse(args.Address, args.Caller)
	if err != nil {
		return err
	}
	token, err := api.ParseAddress(args.Token)
	if err != nil {
		return err
	}
	receiver, err := api.ParseAddress(args.Receiver)
	if err != nil {
		return err
	}
	return a.Call("admin.withdrawForeignToken", func() error {
		return contract.WithdrawForeignToken(call, token, args.Amount.Value(), receiver)
	})
}

type WithdrawAssetArgs struct {
	Address    string      `json:"address"`
	Caller     string      `json:"caller"`
	Collection string      `json:"collection"`
	ID         json.Uint64 `json:"id"`
	Receiver   string      `json:"receiver"`
}

func (a *Admin) WithdrawForeignAsset(_ *http.Request, args *WithdrawAssetArgs, _ *api.EmptyReply) error {
	a.called("withdrawForeignAsset")

	contract, call, err := a.parse(args.Address, args.Caller)
	if err != nil {
		return err
	}
	collection, err := api.ParseAddress(args.Collection)
	if err != nil {
		return err
	}
	receiver, err := api.ParseAddress(args.Receiver)
	if err != nil {
		return err
	}
	return a.Call("admin.withdrawForeignAsset", func() error {
		return contract.WithdrawForeignAsset(call, collection, uint64(args.ID), receiver)
	})
}
