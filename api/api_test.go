// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api_test

import (
	"bytes"
	stdjson "encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/rpc/v2/json2"
	"github.com/holiman/uint256"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/assetrules/api"
	"github.com/luxfi/assetrules/api/admin"
	"github.com/luxfi/assetrules/components/events"
	"github.com/luxfi/assetrules/host"
	"github.com/luxfi/assetrules/metrics"
	"github.com/luxfi/assetrules/utils/json"
)

type client struct {
	t       *testing.T
	handler http.Handler
}

func newClient(t *testing.T, faucet bool) *client {
	t.Helper()

	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	recorder := events.NewRecorder()
	b := api.NewBackend(api.Config{
		Log:       log.NewNoOpLogger(),
		Host:      host.New(memdb.New(), recorder, host.BankConfig{}, log.NewNoOpLogger()),
		EventLog:  recorder,
		Metrics:   m,
		CacheSize: 16,
		Faucet:    faucet,
	})
	handler, err := api.NewHandler(
		api.NewHostService(b),
		api.NewTokenService(b),
		api.NewCollectionService(b),
		admin.NewService(b),
	)
	require.NoError(t, err)
	return &client{t: t, handler: handler}
}

func (c *client) call(method string, args, reply any) error {
	c.t.Helper()

	body, err := json2.EncodeClientRequest(method, args)
	require.NoError(c.t, err)

	r := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, r)
	return json2.DecodeClientResponse(w.Body, reply)
}

func (c *client) mustCall(method string, args, reply any) {
	c.t.Helper()
	require.NoError(c.t, c.call(method, args, reply))
}

func amount(v uint64) json.Amount {
	return json.NewAmount(uint256.NewInt(v))
}

func address() string {
	return ids.GenerateTestShortID().String()
}

func TestTokenService(t *testing.T) {
	require := require.New(t)

	var (
		c     = newClient(t, false)
		tok   = address()
		alice = address()
		bob   = address()
		carol = address()
	)
	c.mustCall("host.deployToken", &api.DeployTokenArgs{
		Address:               tok,
		Deployer:              alice,
		Name:                  "Lux Test",
		Symbol:                "LTT",
		Decimals:              18,
		InitialSupply:         amount(1000),
		MaxWalletPercent:      100,
		MaxTransactionPercent: 100,
		FeePercent:            10,
	}, &api.EmptyReply{})

	var info api.TokenInfoReply
	c.mustCall("token.info", &api.TokenArgs{Address: tok}, &info)
	require.Equal("LTT", info.Symbol)
	require.Equal(alice, info.Owner)
	require.Equal(uint64(1000), info.TotalSupply.Uint64())
	require.Equal(json.Uint8(10), info.FeePercent)

	c.mustCall("token.transfer", &api.TransferArgs{
		Address: tok,
		Caller:  alice,
		To:      bob,
		Value:   amount(200),
	}, &api.EmptyReply{})

	balances := map[string]uint64{
		alice: 820,
		bob:   180,
	}
	for account, want := range balances {
		var reply api.BalanceReply
		c.mustCall("token.balanceOf", &api.BalanceArgs{Address: tok, Account: account}, &reply)
		require.Equal(want, reply.Balance.Uint64())
	}

	var tax api.TaxReply
	c.mustCall("token.tax", &api.TaxArgs{Address: tok, From: bob, To: carol, Value: amount(50)}, &tax)
	require.Equal(uint64(5), tax.Tax.Uint64())

	err := c.call("token.setFee", &api.PercentArgs{Address: tok, Caller: bob, Percent: 1}, &api.EmptyReply{})
	require.ErrorContains(err, "caller is not the owner")

	c.mustCall("token.setMaxTransaction", &api.PercentArgs{Address: tok, Caller: alice, Percent: 5}, &api.EmptyReply{})
	err = c.call("token.transfer", &api.TransferArgs{
		Address: tok,
		Caller:  bob,
		To:      carol,
		Value:   amount(60),
	}, &api.EmptyReply{})
	require.ErrorContains(err, "exceeds max transaction amount")

	c.mustCall("token.approve", &api.ApproveArgs{Address: tok, Caller: bob, Spender: carol, Value: amount(50)}, &api.EmptyReply{})
	var allowance api.AllowanceReply
	c.mustCall("token.allowance", &api.AllowanceArgs{Address: tok, Owner: bob, Spender: carol}, &allowance)
	require.Equal(uint64(50), allowance.Allowance.Uint64())

	c.mustCall("token.transferFrom", &api.TransferFromArgs{
		Address: tok,
		Caller:  carol,
		From:    bob,
		To:      carol,
		Value:   amount(50),
	}, &api.EmptyReply{})
	var reply api.BalanceReply
	c.mustCall("token.balanceOf", &api.BalanceArgs{Address: tok, Account: carol}, &reply)
	require.Equal(uint64(45), reply.Balance.Uint64())

	c.mustCall("token.burn", &api.BurnArgs{Address: tok, Caller: carol, Value: amount(45)}, &api.EmptyReply{})
	c.mustCall("token.info", &api.TokenArgs{Address: tok}, &info)
	require.Equal(uint64(955), info.TotalSupply.Uint64())
}

func TestCollectionService(t *testing.T) {
	require := require.New(t)

	var (
		c        = newClient(t, true)
		nft      = address()
		deployer = address()
		alice    = address()
	)
	c.mustCall("host.deployCollection", &api.DeployCollectionArgs{
		Address:          nft,
		Deployer:         deployer,
		Name:             "Lux Punks",
		Symbol:           "LXP",
		BaseURI:          "ipfs://bafy/",
		MaxSupply:        5,
		MaxAmountPerCall: 2,
		Price:            amount(10),
	}, &api.EmptyReply{})
	c.mustCall("host.fund", &api.FundArgs{Account: alice, Amount: amount(100)}, &api.EmptyReply{})

	var minted api.MintReply
	c.mustCall("collection.mint", &api.MintArgs{
		Address: nft,
		Caller:  alice,
		Amount:  2,
		Value:   amount(20),
	}, &minted)
	require.Equal(json.Uint64(2), minted.LastMintedID)

	err := c.call("collection.mint", &api.MintArgs{
		Address: nft,
		Caller:  alice,
		Amount:  1,
		Value:   amount(5),
	}, &minted)
	require.ErrorContains(err, "bad mint value")

	var native api.BalanceReply
	c.mustCall("host.nativeBalance", &api.AccountArgs{Account: alice}, &native)
	require.Equal(uint64(80), native.Balance.Uint64())

	var owner api.OwnerOfReply
	c.mustCall("collection.ownerOf", &api.TokenIDArgs{Address: nft, ID: 2}, &owner)
	require.True(owner.Exists)
	require.Equal(alice, owner.Owner)

	var uri api.TokenURIReply
	c.mustCall("collection.tokenURI", &api.TokenIDArgs{Address: nft, ID: 1}, &uri)
	require.Equal("ipfs://bafy/1.json", uri.URI)

	c.mustCall("collection.setMultipleAttributes", &api.SetAttributesArgs{
		Address: nft,
		Caller:  deployer,
		ID:      1,
		Attributes: []api.AttributeArg{
			{Name: "eyes", Value: "laser"},
			{Name: "hat", Value: "none"},
		},
	}, &api.EmptyReply{})
	var values api.GetAttributesReply
	c.mustCall("collection.getAttributes", &api.GetAttributesArgs{
		Address: nft,
		ID:      1,
		Names:   []string{"hat", "eyes", "mouth"},
	}, &values)
	require.Equal([]string{"none", "laser", ""}, values.Values)

	c.mustCall("collection.lock", &api.CallerIDArgs{Address: nft, Caller: alice, ID: 1}, &api.EmptyReply{})
	var locked api.IsLockedReply
	c.mustCall("collection.isLocked", &api.TokenIDArgs{Address: nft, ID: 1}, &locked)
	require.True(locked.Locked)

	var info api.CollectionInfoReply
	c.mustCall("collection.info", &api.CollectionArgs{Address: nft}, &info)
	require.Equal(json.Uint64(2), info.TotalSupply)
	require.Equal(json.Uint64(1), info.LockedCount)
	require.Equal(uint64(10), info.Price.Uint64())

	err = c.call("admin.withdrawAll", &admin.CallerArgs{Address: nft, Caller: alice}, &api.EmptyReply{})
	require.ErrorContains(err, "caller is not the owner")
	c.mustCall("admin.withdrawAll", &admin.CallerArgs{Address: nft, Caller: deployer}, &api.EmptyReply{})
	c.mustCall("host.nativeBalance", &api.AccountArgs{Account: deployer}, &native)
	require.Equal(uint64(20), native.Balance.Uint64())

	var ownerReply admin.OwnerReply
	c.mustCall("admin.owner", &admin.OwnerArgs{Address: nft}, &ownerReply)
	require.Equal(deployer, ownerReply.Owner)

	var reply struct {
		Events []struct {
			Seq      json.Uint64        `json:"seq"`
			Contract string             `json:"contract"`
			Name     string             `json:"name"`
			Event    stdjson.RawMessage `json:"event"`
		} `json:"events"`
	}
	c.mustCall("host.events", &api.EventsArgs{}, &reply)
	var (
		names     []string
		firstMint json.Uint64
	)
	for _, ev := range reply.Events {
		require.Equal(nft, ev.Contract)
		if ev.Name == "TokenTransfer" && firstMint == 0 {
			firstMint = ev.Seq
		}
		names = append(names, ev.Name)
	}
	require.Contains(names, "TokenTransfer")
	require.Contains(names, "AttributeSet")
	require.Contains(names, "Locked")
	require.Equal("Withdrawn", names[len(names)-1])

	c.mustCall("host.events", &api.EventsArgs{From: firstMint, Limit: 1}, &reply)
	require.Len(reply.Events, 1)
	require.Equal(firstMint, reply.Events[0].Seq)
	require.Equal("TokenTransfer", reply.Events[0].Name)
}

func TestServiceErrors(t *testing.T) {
	c := newClient(t, false)

	collection := address()
	require.NoError(t, c.call("host.deployCollection", &api.DeployCollectionArgs{
		Address:   collection,
		Deployer:  address(),
		MaxSupply: 1,
	}, &api.EmptyReply{}))

	tests := []struct {
		name   string
		method string
		args   any
		want   string
	}{
		{
			name:   "invalid address",
			method: "token.balanceOf",
			args:   &api.BalanceArgs{Address: "not an address"},
			want:   api.ErrInvalidAddress.Error(),
		},
		{
			name:   "unknown contract",
			method: "token.info",
			args:   &api.TokenArgs{Address: address()},
			want:   host.ErrUnknownContract.Error(),
		},
		{
			name:   "not a token",
			method: "token.info",
			args:   &api.TokenArgs{Address: collection},
			want:   api.ErrNotToken.Error(),
		},
		{
			name:   "faucet disabled",
			method: "host.fund",
			args:   &api.FundArgs{Account: address(), Amount: amount(1)},
			want:   api.ErrFaucetDisabled.Error(),
		},
		{
			name:   "redeploy",
			method: "host.deployCollection",
			args:   &api.DeployCollectionArgs{Address: collection, Deployer: address()},
			want:   host.ErrContractExists.Error(),
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := c.call(test.method, test.args, &api.EmptyReply{})
			require.ErrorContains(t, err, test.want)
		})
	}
}

func TestMethodNames(t *testing.T) {
	c := newClient(t, false)
	account := address()

	tests := []struct {
		method  string
		wantErr bool
	}{
		{method: "host.nativeBalance"},
		{method: "host.NativeBalance"},
		{method: "host.nativeBalances", wantErr: true},
		{method: "wallet.nativeBalance", wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.method, func(t *testing.T) {
			var reply api.BalanceReply
			err := c.call(test.method, &api.AccountArgs{Account: account}, &reply)
			if test.wantErr {
				require.ErrorContains(t, err, "can't find")
				return
			}
			require.NoError(t, err)
			require.Zero(t, reply.Balance.Uint64())
		})
	}
}
