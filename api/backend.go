// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api exposes deployed contracts over JSON-RPC.
//
// Calls name their caller explicitly. The services are meant for a trusted
// operator or a test harness; no signatures are checked.
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/rpc/v2"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/utils/json"

	"github.com/luxfi/assetrules"
	"github.com/luxfi/assetrules/components/events"
	"github.com/luxfi/assetrules/contracts/nft"
	"github.com/luxfi/assetrules/contracts/token"
	"github.com/luxfi/assetrules/host"
	"github.com/luxfi/assetrules/metrics"
)

var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrNotToken       = errors.New("contract is not a token")
	ErrNotCollection  = errors.New("contract is not a collection")
)

// EmptyReply is the reply of calls that return nothing.
type EmptyReply struct{}

// Observer records the outcome of every call.
type Observer interface {
	Observe(op string, err error)
}

type noopObserver struct{}

func (noopObserver) Observe(string, error) {}

// Config is everything the services share.
type Config struct {
	Log       log.Logger
	Host      *host.Host
	EventLog  events.Log
	Metrics   *metrics.Metrics
	CacheSize int
	Faucet    bool
}

// Backend runs service calls against the host.
type Backend struct {
	Config
	observer Observer
}

func NewBackend(config Config) *Backend {
	b := &Backend{
		Config:   config,
		observer: noopObserver{},
	}
	if config.Metrics != nil {
		b.observer = config.Metrics
	}
	return b
}

// Call runs f as one entry point invocation named op.
func (b *Backend) Call(op string, f func() error) error {
	err := b.Host.Execute(f)
	b.observed(op, err)
	return err
}

// Pay runs f as a payable entry point of contract named op.
func (b *Backend) Pay(op string, call assetrules.Call, contract ids.ShortID, f func() error) error {
	err := b.Host.Payable(call, contract, f)
	b.observed(op, err)
	return err
}

func (b *Backend) observed(op string, err error) {
	b.observer.Observe(op, err)
	if err != nil {
		b.Log.Debug("call failed",
			log.String("op", op),
			log.Stringer("kind", assetrules.KindOf(err)),
			log.Err(err),
		)
	}
}

func (b *Backend) Token(address string) (*token.Token, error) {
	contract, err := b.Contract(address)
	if err != nil {
		return nil, err
	}
	t, ok := contract.(*token.Token)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotToken, address)
	}
	return t, nil
}

func (b *Backend) Collection(address string) (*nft.Collection, error) {
	contract, err := b.Contract(address)
	if err != nil {
		return nil, err
	}
	c, ok := contract.(*nft.Collection)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotCollection, address)
	}
	return c, nil
}

func (b *Backend) Contract(address string) (any, error) {
	addr, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}
	return b.Host.Contract(addr)
}

// ParseAddress parses a cb58 short id.
func ParseAddress(s string) (ids.ShortID, error) {
	addr, err := ids.ShortFromString(s)
	if err != nil {
		return ids.ShortEmpty, fmt.Errorf("%w %q: %w", ErrInvalidAddress, s, err)
	}
	return addr, nil
}

// ParseOptionalAddress is ParseAddress except that "" is the empty address.
func ParseOptionalAddress(s string) (ids.ShortID, error) {
	if s == "" {
		return ids.ShortEmpty, nil
	}
	return ParseAddress(s)
}

// Service is a JSON-RPC receiver registered under Name.
type Service struct {
	Name     string
	Receiver any
}

// NewHandler serves every service over JSON-RPC 2.0. Method names are sent
// lowercase first ("token.transfer") and resolve to the exported method.
func NewHandler(services ...Service) (http.Handler, error) {
	server := rpc.NewServer()
	codec := json.NewCodec()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")
	for _, s := range services {
		if err := server.RegisterService(s.Receiver, s.Name); err != nil {
			return nil, fmt.Errorf("couldn't register %s service: %w", s.Name, err)
		}
	}
	return server, nil
}
