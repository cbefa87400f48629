// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"net/http"

	"github.com/luxfi/log"

	"github.com/luxfi/assetrules"
	"github.com/luxfi/assetrules/utils/json"
)

// TokenService is the "token" JSON-RPC service.
type TokenService struct {
	*Backend
}

func NewTokenService(b *Backend) Service {
	return Service{Name: "token", Receiver: &TokenService{Backend: b}}
}

func (s *TokenService) called(method string) {
	s.Log.Debug("API called",
		log.String("service", "token"),
		log.String("method", method),
	)
}

type TokenArgs struct {
	Address string `json:"address"`
}

type TokenInfoReply struct {
	Name           string      `json:"name"`
	Symbol         string      `json:"symbol"`
	Decimals       json.Uint8  `json:"decimals"`
	TotalSupply    json.Amount `json:"totalSupply"`
	Owner          string      `json:"owner"`
	MaxWallet      json.Amount `json:"maxWallet"`
	MaxTransaction json.Amount `json:"maxTransaction"`
	FeePercent     json.Uint8  `json:"feePercent"`
}

func (s *TokenService) Info(_ *http.Request, args *TokenArgs, reply *TokenInfoReply) error {
	s.called("info")

	t, err := s.Token(args.Address)
	if err != nil {
		return err
	}
	return s.Call("token.info", func() error {
		metadata, err := t.Metadata()
		if err != nil {
			return err
		}
		supply, err := t.TotalSupply()
		if err != nil {
			return err
		}
		config, err := t.Config()
		if err != nil {
			return err
		}
		*reply = TokenInfoReply{
			Name:           metadata.Name,
			Symbol:         metadata.Symbol,
			Decimals:       json.Uint8(metadata.Decimals),
			TotalSupply:    json.NewAmount(supply),
			Owner:          t.Owner().String(),
			MaxWallet:      json.NewAmount(config.MaxWallet),
			MaxTransaction: json.NewAmount(config.MaxTransaction),
			FeePercent:     json.Uint8(config.FeePercent),
		}
		return nil
	})
}

type BalanceArgs struct {
	Address string `json:"address"`
	Account string `json:"account"`
}

type BalanceReply struct {
	Balance json.Amount `json:"balance"`
}

func (s *TokenService) BalanceOf(_ *http.Request, args *BalanceArgs, reply *BalanceReply) error {
	s.called("balanceOf")

	t, err := s.Token(args.Address)
	if err != nil {
		return err
	}
	account, err := ParseOptionalAddress(args.Account)
	if err != nil {
		return err
	}
	return s.Call("token.balanceOf", func() error {
		balance, err := t.BalanceOf(account)
		reply.Balance = json.NewAmount(balance)
		return err
	})
}

type AllowanceArgs struct {
	Address string `json:"address"`
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
}

type AllowanceReply struct {
	Allowance json.Amount `json:"allowance"`
}

func (s *TokenService) Allowance(_ *http.Request, args *AllowanceArgs, reply *AllowanceReply) error {
	s.called("allowance")

	t, err := s.Token(args.Address)
	if err != nil {
		return err
	}
	owner, err := ParseAddress(args.Owner)
	if err != nil {
		return err
	}
	spender, err := ParseAddress(args.Spender)
	if err != nil {
		return err
	}
	return s.Call("token.allowance", func() error {
		allowance, err := t.Allowance(owner, spender)
		reply.Allowance = json.NewAmount(allowance)
		return err
	})
}

type TaxArgs struct {
	Address string      `json:"address"`
	From    string      `json:"from"`
	To      string      `json:"to"`
	Value   json.Amount `json:"value"`
}

type TaxReply struct {
	Tax json.Amount `json:"tax"`
}

func (s *TokenService) Tax(_ *http.Request, args *TaxArgs, reply *TaxReply) error {
	s.called("tax")

	t, err := s.Token(args.Address)
	if err != nil {
		return err
	}
	from, err := ParseOptionalAddress(args.From)
	if err != nil {
		return err
	}
	to, err := ParseOptionalAddress(args.To)
	if err != nil {
		return err
	}
	return s.Call("token.tax", func() error {
		tax, err := t.Tax(from, to, args.Value.Value())
		reply.Tax = json.NewAmount(tax)
		return err
	})
}

type TransferArgs struct {
	Address string      `json:"address"`
	Caller  string      `json:"caller"`
	To      string      `json:"to"`
	Value   json.Amount `json:"value"`
	Data    []byte      `json:"data"`
}

// Transfer moves value from the caller to to. An empty to is the burn
// address.
func (s *TokenService) Transfer(_ *http.Request, args *TransferArgs, _ *EmptyReply) error {
	s.called("transfer")

	t, err := s.Token(args.Address)
	if err != nil {
		return err
	}
	caller, err := ParseAddress(args.Caller)
	if err != nil {
		return err
	}
	to, err := ParseOptionalAddress(args.To)
	if err != nil {
		return err
	}
	return s.Call("token.transfer", func() error {
		return t.Transfer(assetrules.NewCall(caller), to, args.Value.Value(), args.Data)
	})
}

type TransferFromArgs struct {
	Address string      `json:"address"`
	Caller  string      `json:"caller"`
	From    string      `json:"from"`
	To      string      `json:"to"`
	Value   json.Amount `json:"value"`
	Data    []byte      `json:"data"`
}

func (s *TokenService) TransferFrom(_ *http.Request, args *TransferFromArgs, _ *EmptyReply) error {
	s.called("transferFrom")

	t, err := s.Token(args.Address)
	if err != nil {
		return err
	}
	caller, err := ParseAddress(args.Caller)
	if err != nil {
		return err
	}
	from, err := ParseAddress(args.From)
	if err != nil {
		return err
	}
	to, err := ParseOptionalAddress(args.To)
	if err != nil {
		return err
	}
	return s.Call("token.transferFrom", func() error {
		return t.TransferFrom(assetrules.NewCall(caller), from, to, args.Value.Value(), args.Data)
	})
}

type ApproveArgs struct {
	Address string      `json:"address"`
	Caller  string      `json:"caller"`
	Spender string      `json:"spender"`
	Value   json.Amount `json:"value"`
}

func (s *TokenService) Approve(_ *http.Request, args *ApproveArgs, _ *EmptyReply) error {
	s.called("approve")

	t, err := s.Token(args.Address)
	if err != nil {
		return err
	}
	caller, err := ParseAddress(args.Caller)
	if err != nil {
		return err
	}
	spender, err := ParseAddress(args.Spender)
	if err != nil {
		return err
	}
	return s.Call("token.approve", func() error {
		return t.Approve(assetrules.NewCall(caller), spender, args.Value.Value())
	})
}

type BurnArgs struct {
	Address string      `json:"address"`
	Caller  string      `json:"caller"`
	Value   json.Amount `json:"value"`
}

func (s *TokenService) Burn(_ *http.Request, args *BurnArgs, _ *EmptyReply) error {
	s.called("burn")

	t, err := s.Token(args.Address)
	if err != nil {
		return err
	}
	caller, err := ParseAddress(args.Caller)
	if err != nil {
		return err
	}
	return s.Call("token.burn", func() error {
		return t.Burn(assetrules.NewCall(caller), args.Value.Value())
	})
}

type PercentArgs struct {
	Address string     `json:"address"`
	Caller  string     `json:"caller"`
	Percent json.Uint8 `json:"percent"`
}

func (s *TokenService) SetMaxWallet(_ *http.Request, args *PercentArgs, _ *EmptyReply) error {
	s.called("setMaxWallet")
	return s.setPercent("token.setMaxWallet", args, func(t percentSetter, call assetrules.Call, pct uint8) error {
		return t.SetMaxWallet(call, pct)
	})
}

func (s *TokenService) SetMaxTransaction(_ *http.Request, args *PercentArgs, _ *EmptyReply) error {
	s.called("setMaxTransaction")
	return s.setPercent("token.setMaxTransaction", args, func(t percentSetter, call assetrules.Call, pct uint8) error {
		return t.SetMaxTransaction(call, pct)
	})
}

func (s *TokenService) SetFee(_ *http.Request, args *PercentArgs, _ *EmptyReply) error {
	s.called("setFee")
	return s.setPercent("token.setFee", args, func(t percentSetter, call assetrules.Call, pct uint8) error {
		return t.SetFee(call, pct)
	})
}

type percentSetter interface {
	SetMaxWallet(call assetrules.Call, percent uint8) error
	SetMaxTransaction(call assetrules.Call, percent uint8) error
	SetFee(call assetrules.Call, percent uint8) error
}

func (s *TokenService) setPercent(op string, args *PercentArgs, f func(percentSetter, assetrules.Call, uint8) error) error {
	t, err := s.Token(args.Address)
	if err != nil {
		return err
	}
	caller, err := ParseAddress(args.Caller)
	if err != nil {
		return err
	}
	return s.Call(op, func() error {
		return f(t, assetrules.NewCall(caller), uint8(args.Percent))
	})
}
