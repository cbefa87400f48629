// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"errors"
	"net/http"

	"github.com/luxfi/log"

	"github.com/luxfi/assetrules/components/events"
	"github.com/luxfi/assetrules/contracts/nft"
	"github.com/luxfi/assetrules/contracts/token"
	"github.com/luxfi/assetrules/utils/json"
)

const maxEventsPerCall = 1024

var (
	ErrFaucetDisabled = errors.New("faucet is disabled")
	ErrNoEventLog     = errors.New("no event log configured")

	errStopReplay = errors.New("stop replay")
)

// HostService is the "host" JSON-RPC service.
type HostService struct {
	*Backend
}

func NewHostService(b *Backend) Service {
	return Service{Name: "host", Receiver: &HostService{Backend: b}}
}

func (s *HostService) called(method string) {
	s.Log.Debug("API called",
		log.String("service", "host"),
		log.String("method", method),
	)
}

type AccountArgs struct {
	Account string `json:"account"`
}

func (s *HostService) NativeBalance(_ *http.Request, args *AccountArgs, reply *BalanceReply) error {
	s.called("nativeBalance")

	account, err := ParseAddress(args.Account)
	if err != nil {
		return err
	}
	return s.Call("host.nativeBalance", func() error {
		balance, err := s.Host.Bank().BalanceOf(account)
		reply.Balance = json.NewAmount(balance)
		return err
	})
}

type FundArgs struct {
	Account string      `json:"account"`
	Amount  json.Amount `json:"amount"`
}

// Fund issues native value to account when the faucet is enabled.
func (s *HostService) Fund(_ *http.Request, args *FundArgs, _ *EmptyReply) error {
	s.called("fund")

	if !s.Faucet {
		return ErrFaucetDisabled
	}
	account, err := ParseAddress(args.Account)
	if err != nil {
		return err
	}
	return s.Call("host.fund", func() error {
		return s.Host.Bank().Credit(account, args.Amount.Value())
	})
}

type DeployTokenArgs struct {
	Address               string      `json:"address"`
	Deployer              string      `json:"deployer"`
	Name                  string      `json:"name"`
	Symbol                string      `json:"symbol"`
	Decimals              json.Uint8  `json:"decimals"`
	InitialSupply         json.Amount `json:"initialSupply"`
	MaxWalletPercent      json.Uint8  `json:"maxWalletPercent"`
	MaxTransactionPercent json.Uint8  `json:"maxTransactionPercent"`
	FeePercent            json.Uint8  `json:"feePercent"`
}

func (s *HostService) DeployToken(_ *http.Request, args *DeployTokenArgs, _ *EmptyReply) error {
	s.called("deployToken")

	address, err := ParseAddress(args.Address)
	if err != nil {
		return err
	}
	deployer, err := ParseAddress(args.Deployer)
	if err != nil {
		return err
	}
	params := token.Params{
		Name:                  args.Name,
		Symbol:                args.Symbol,
		Decimals:              uint8(args.Decimals),
		InitialSupply:         args.InitialSupply.Value(),
		MaxWalletPercent:      uint8(args.MaxWalletPercent),
		MaxTransactionPercent: uint8(args.MaxTransactionPercent),
		FeePercent:            uint8(args.FeePercent),
	}
	var observer token.Observer
	if s.Metrics != nil {
		observer = s.Metrics
	}
	return s.Call("host.deployToken", func() error {
		_, err := token.Deploy(s.Host, address, deployer, params, observer, s.Log)
		return err
	})
}

type DeployCollectionArgs struct {
	Address          string      `json:"address"`
	Deployer         string      `json:"deployer"`
	Name             string      `json:"name"`
	Symbol           string      `json:"symbol"`
	BaseURI          string      `json:"baseURI"`
	MaxSupply        json.Uint64 `json:"maxSupply"`
	MaxAmountPerCall json.Uint64 `json:"maxAmountPerCall"`
	Price            json.Amount `json:"price"`
}

func (s *HostService) DeployCollection(_ *http.Request, args *DeployCollectionArgs, _ *EmptyReply) error {
	s.called("deployCollection")

	address, err := ParseAddress(args.Address)
	if err != nil {
		return err
	}
	deployer, err := ParseAddress(args.Deployer)
	if err != nil {
		return err
	}
	params := nft.Params{
		Name:             args.Name,
		Symbol:           args.Symbol,
		BaseURI:          args.BaseURI,
		MaxSupply:        uint64(args.MaxSupply),
		MaxAmountPerCall: uint64(args.MaxAmountPerCall),
		Price:            args.Price.Value(),
		CacheSize:        s.CacheSize,
	}
	var observer nft.Observer
	if s.Metrics != nil {
		observer = s.Metrics
	}
	return s.Call("host.deployCollection", func() error {
		_, err := nft.Deploy(s.Host, address, deployer, params, observer, s.Log)
		return err
	})
}

type EventsArgs struct {
	From  json.Uint64 `json:"from"`
	Limit json.Uint32 `json:"limit"`
}

type EventReply struct {
	Seq      json.Uint64  `json:"seq"`
	Contract string       `json:"contract"`
	Name     string       `json:"name"`
	Event    events.Event `json:"event"`
}

type EventsReply struct {
	Events []EventReply `json:"events"`
}

// Events returns up to limit emitted events starting at sequence number
// from.
func (s *HostService) Events(_ *http.Request, args *EventsArgs, reply *EventsReply) error {
	s.called("events")

	if s.EventLog == nil {
		return ErrNoEventLog
	}
	limit := int(args.Limit)
	if limit <= 0 || limit > maxEventsPerCall {
		limit = maxEventsPerCall
	}
	reply.Events = []EventReply{}
	err := s.EventLog.Replay(uint64(args.From), func(rec events.Record) error {
		if len(reply.Events) >= limit {
			return errStopReplay
		}
		reply.Events = append(reply.Events, EventReply{
			Seq:      json.Uint64(rec.Seq),
			Contract: rec.Contract.String(),
			Name:     rec.Event.Name(),
			Event:    rec.Event,
		})
		return nil
	})
	if errors.Is(err, errStopReplay) {
		return nil
	}
	return err
}
