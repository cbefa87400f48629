// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"net/http"

	"github.com/luxfi/log"

	"github.com/luxfi/assetrules"
	"github.com/luxfi/assetrules/attributes"
	"github.com/luxfi/assetrules/utils/json"
)

// CollectionService is the "collection" JSON-RPC service.
type CollectionService struct {
	*Backend
}

func NewCollectionService(b *Backend) Service {
	return Service{Name: "collection", Receiver: &CollectionService{Backend: b}}
}

func (s *CollectionService) called(method string) {
	s.Log.Debug("API called",
		log.String("service", "collection"),
		log.String("method", method),
	)
}

type CollectionArgs struct {
	Address string `json:"address"`
}

type CollectionInfoReply struct {
	Name             string      `json:"name"`
	Symbol           string      `json:"symbol"`
	Owner            string      `json:"owner"`
	MaxSupply        json.Uint64 `json:"maxSupply"`
	MaxAmountPerCall json.Uint64 `json:"maxAmountPerCall"`
	Price            json.Amount `json:"price"`
	LastMintedID     json.Uint64 `json:"lastMintedID"`
	TotalSupply      json.Uint64 `json:"totalSupply"`
	LockedCount      json.Uint64 `json:"lockedCount"`
	AttributeCount   json.Uint32 `json:"attributeCount"`
}

func (s *CollectionService) Info(_ *http.Request, args *CollectionArgs, reply *CollectionInfoReply) error {
	s.called("info")

	c, err := s.Collection(args.Address)
	if err != nil {
		return err
	}
	return s.Call("collection.info", func() error {
		values, err := c.GetAttributes(attributes.CollectionID, [][]byte{
			[]byte(attributes.NameAttribute),
			[]byte(attributes.SymbolAttribute),
		})
		if err != nil {
			return err
		}
		maxSupply, err := c.MaxSupply()
		if err != nil {
			return err
		}
		maxAmount, err := c.MaxAmountPerCall()
		if err != nil {
			return err
		}
		price, err := c.Price()
		if err != nil {
			return err
		}
		lastMinted, err := c.LastMintedID()
		if err != nil {
			return err
		}
		supply, err := c.TotalSupply()
		if err != nil {
			return err
		}
		locked, err := c.LockedCount()
		if err != nil {
			return err
		}
		attrs, err := c.AttributeCount()
		if err != nil {
			return err
		}
		*reply = CollectionInfoReply{
			Name:             values[0],
			Symbol:           values[1],
			Owner:            c.Owner().String(),
			MaxSupply:        json.Uint64(maxSupply),
			MaxAmountPerCall: json.Uint64(maxAmount),
			Price:            json.NewAmount(price),
			LastMintedID:     json.Uint64(lastMinted),
			TotalSupply:      json.Uint64(supply),
			LockedCount:      json.Uint64(locked),
			AttributeCount:   json.Uint32(attrs),
		}
		return nil
	})
}

type MintArgs struct {
	Address string      `json:"address"`
	Caller  string      `json:"caller"`
	Amount  json.Uint64 `json:"amount"`
	Value   json.Amount `json:"value"`
}

type MintReply struct {
	LastMintedID json.Uint64 `json:"lastMintedID"`
}

// Mint pays value from the caller's native balance and mints amount ids to
// the caller.
func (s *CollectionService) Mint(_ *http.Request, args *MintArgs, reply *MintReply) error {
	s.called("mint")

	c, err := s.Collection(args.Address)
	if err != nil {
		return err
	}
	caller, err := ParseAddress(args.Caller)
	if err != nil {
		return err
	}
	call := assetrules.Call{
		Caller: caller,
		Value:  args.Value.Value(),
	}
	return s.Pay("collection.mint", call, c.Address(), func() error {
		if err := c.Mint(call, uint64(args.Amount)); err != nil {
			return err
		}
		last, err := c.LastMintedID()
		reply.LastMintedID = json.Uint64(last)
		return err
	})
}

type AttributeArg struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type SetAttributesArgs struct {
	Address    string         `json:"address"`
	Caller     string         `json:"caller"`
	ID         json.Uint64    `json:"id"`
	Attributes []AttributeArg `json:"attributes"`
}

func (s *CollectionService) SetMultipleAttributes(_ *http.Request, args *SetAttributesArgs, _ *EmptyReply) error {
	s.called("setMultipleAttributes")

	c, err := s.Collection(args.Address)
	if err != nil {
		return err
	}
	caller, err := ParseAddress(args.Caller)
	if err != nil {
		return err
	}
	attrs := make([]attributes.Attribute, len(args.Attributes))
	for i, attr := range args.Attributes {
		attrs[i] = attributes.Attribute{
			Name:  []byte(attr.Name),
			Value: []byte(attr.Value),
		}
	}
	return s.Call("collection.setMultipleAttributes", func() error {
		return c.SetMultipleAttributes(assetrules.NewCall(caller), uint64(args.ID), attrs)
	})
}

type GetAttributesArgs struct {
	Address string      `json:"address"`
	ID      json.Uint64 `json:"id"`
	Names   []string    `json:"names"`
}

type GetAttributesReply struct {
	Values []string `json:"values"`
}

func (s *CollectionService) GetAttributes(_ *http.Request, args *GetAttributesArgs, reply *GetAttributesReply) error {
	s.called("getAttributes")

	c, err := s.Collection(args.Address)
	if err != nil {
		return err
	}
	names := make([][]byte, len(args.Names))
	for i, name := range args.Names {
		names[i] = []byte(name)
	}
	return s.Call("collection.getAttributes", func() error {
		values, err := c.GetAttributes(uint64(args.ID), names)
		reply.Values = values
		return err
	})
}

type TokenIDArgs struct {
	Address string      `json:"address"`
	ID      json.Uint64 `json:"id"`
}

type TokenURIReply struct {
	URI string `json:"uri"`
}

func (s *CollectionService) TokenURI(_ *http.Request, args *TokenIDArgs, reply *TokenURIReply) error {
	s.called("tokenURI")

	c, err := s.Collection(args.Address)
	if err != nil {
		return err
	}
	return s.Call("collection.tokenURI", func() error {
		uri, err := c.TokenURI(uint64(args.ID))
		reply.URI = uri
		return err
	})
}

type OwnerOfReply struct {
	Owner  string `json:"owner"`
	Exists bool   `json:"exists"`
}

func (s *CollectionService) OwnerOf(_ *http.Request, args *TokenIDArgs, reply *OwnerOfReply) error {
	s.called("ownerOf")

	c, err := s.Collection(args.Address)
	if err != nil {
		return err
	}
	return s.Call("collection.ownerOf", func() error {
		owner, exists, err := c.OwnerOf(uint64(args.ID))
		if err != nil {
			return err
		}
		reply.Exists = exists
		if exists {
			reply.Owner = owner.String()
		}
		return nil
	})
}

type IsLockedReply struct {
	Locked bool `json:"locked"`
}

func (s *CollectionService) IsLocked(_ *http.Request, args *TokenIDArgs, reply *IsLockedReply) error {
	s.called("isLocked")

	c, err := s.Collection(args.Address)
	if err != nil {
		return err
	}
	return s.Call("collection.isLocked", func() error {
		locked, err := c.IsLocked(uint64(args.ID))
		reply.Locked = locked
		return err
	})
}

type CallerIDArgs struct {
	Address string      `json:"address"`
	Caller  string      `json:"caller"`
	ID      json.Uint64 `json:"id"`
}

// Lock freezes the attributes of id. The caller must own id.
func (s *CollectionService) Lock(_ *http.Request, args *CallerIDArgs, _ *EmptyReply) error {
	s.called("lock")

	c, err := s.Collection(args.Address)
	if err != nil {
		return err
	}
	caller, err := ParseAddress(args.Caller)
	if err != nil {
		return err
	}
	return s.Call("collection.lock", func() error {
		return c.Lock(assetrules.NewCall(caller), uint64(args.ID))
	})
}

type TransferTokenArgs struct {
	Address string      `json:"address"`
	Caller  string      `json:"caller"`
	To      string      `json:"to"`
	ID      json.Uint64 `json:"id"`
}

func (s *CollectionService) Transfer(_ *http.Request, args *TransferTokenArgs, _ *EmptyReply) error {
	s.called("transfer")

	c, err := s.Collection(args.Address)
	if err != nil {
		return err
	}
	caller, err := ParseAddress(args.Caller)
	if err != nil {
		return err
	}
	to, err := ParseAddress(args.To)
	if err != nil {
		return err
	}
	return s.Call("collection.transfer", func() error {
		return c.Transfer(assetrules.NewCall(caller), to, uint64(args.ID), nil)
	})
}

func (s *CollectionService) Burn(_ *http.Request, args *CallerIDArgs, _ *EmptyReply) error {
	s.called("burn")

	c, err := s.Collection(args.Address)
	if err != nil {
		return err
	}
	caller, err := ParseAddress(args.Caller)
	if err != nil {
		return err
	}
	return s.Call("collection.burn", func() error {
		owner, exists, err := c.OwnerOf(uint64(args.ID))
		if err != nil {
			return err
		}
		if !exists {
			owner = caller
		}
		return c.Burn(assetrules.NewCall(caller), owner, uint64(args.ID))
	})
}

type SetBaseURIArgs struct {
	Address string `json:"address"`
	Caller  string `json:"caller"`
	BaseURI string `json:"baseURI"`
}

func (s *CollectionService) SetBaseURI(_ *http.Request, args *SetBaseURIArgs, _ *EmptyReply) error {
	s.called("setBaseURI")

	c, err := s.Collection(args.Address)
	if err != nil {
		return err
	}
	caller, err := ParseAddress(args.Caller)
	if err != nil {
		return err
	}
	return s.Call("collection.setBaseURI", func() error {
		return c.SetBaseURI(assetrules.NewCall(caller), args.BaseURI)
	})
}

type SetPriceArgs struct {
	Address string      `json:"address"`
	Caller  string      `json:"caller"`
	Price   json.Amount `json:"price"`
}

func (s *CollectionService) SetPrice(_ *http.Request, args *SetPriceArgs, _ *EmptyReply) error {
	s.called("setPrice")

	c, err := s.Collection(args.Address)
	if err != nil {
		return err
	}
	caller, err := ParseAddress(args.Caller)
	if err != nil {
		return err
	}
	return s.Call("collection.setPrice", func() error {
		return c.SetPrice(assetrules.NewCall(caller), args.Price.Value())
	})
}

type SetMaxAmountArgs struct {
	Address string      `json:"address"`
	Caller  string      `json:"caller"`
	Amount  json.Uint64 `json:"amount"`
}

func (s *CollectionService) SetMaxAmountPerCall(_ *http.Request, args *SetMaxAmountArgs, _ *EmptyReply) error {
	s.called("setMaxAmountPerCall")

	c, err := s.Collection(args.Address)
	if err != nil {
		return err
	}
	caller, err := ParseAddress(args.Caller)
	if err != nil {
		return err
	}
	return s.Call("collection.setMaxAmountPerCall", func() error {
		return c.SetMaxAmountPerCall(assetrules.NewCall(caller), uint64(args.Amount))
	})
}
