// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package collection

import (
	"testing"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/assetrules"
	"github.com/luxfi/assetrules/components/events"
)

func newTestLedger() (*Ledger, *events.Recorder, ids.ShortID) {
	recorder := events.NewRecorder()
	contract := ids.GenerateTestShortID()
	return New(memdb.New(), events.Emitter{Contract: contract, Sink: recorder}, log.NewNoOpLogger()), recorder, contract
}

func requireOwner(t *testing.T, l *Ledger, id uint64, want ids.ShortID) {
	t.Helper()
	owner, exists, err := l.OwnerOf(id)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, want, owner)
}

func TestMintTo(t *testing.T) {
	require := require.New(t)

	l, recorder, _ := newTestLedger()
	alice := ids.GenerateTestShortID()

	require.NoError(l.MintTo(alice, 1))
	require.NoError(l.MintTo(alice, 2))
	require.ErrorIs(l.MintTo(alice, 1), ErrTokenExists)
	require.ErrorIs(l.MintTo(ids.ShortEmpty, 3), ErrZeroRecipient)

	requireOwner(t, l, 1, alice)
	balance, err := l.BalanceOf(alice)
	require.NoError(err)
	require.Equal(uint64(2), balance)
	supply, err := l.TotalSupply()
	require.NoError(err)
	require.Equal(uint64(2), supply)

	_, exists, err := l.OwnerOf(3)
	require.NoError(err)
	require.False(exists)

	require.Empty(recorder.Records())
}

func TestTransfer(t *testing.T) {
	require := require.New(t)

	var (
		l, recorder, contract = newTestLedger()
		alice                 = ids.GenerateTestShortID()
		bob                   = ids.GenerateTestShortID()
		carol                 = ids.GenerateTestShortID()
	)
	require.NoError(l.MintTo(alice, 1))

	err := l.Transfer(assetrules.NewCall(bob), carol, 1, nil)
	require.ErrorIs(err, ErrNotApproved)
	require.ErrorIs(err, assetrules.ErrAuthorization)

	require.ErrorIs(l.Transfer(assetrules.NewCall(alice), bob, 9, nil), ErrTokenNotExists)

	require.NoError(l.Transfer(assetrules.NewCall(alice), bob, 1, nil))
	requireOwner(t, l, 1, bob)

	aliceBalance, err := l.BalanceOf(alice)
	require.NoError(err)
	require.Zero(aliceBalance)

	require.Equal([]events.Event{
		&events.TokenTransfer{From: alice, To: bob, ID: 1},
	}, recorder.Events(contract))
}

func TestApprovals(t *testing.T) {
	require := require.New(t)

	var (
		l, _, _ = newTestLedger()
		alice   = ids.GenerateTestShortID()
		bob     = ids.GenerateTestShortID()
		carol   = ids.GenerateTestShortID()
		id      = uint64(1)
	)
	require.NoError(l.MintTo(alice, id))

	require.ErrorIs(l.Approve(assetrules.NewCall(alice), alice, &id, true), ErrSelfApprove)
	require.ErrorIs(l.Approve(assetrules.NewCall(bob), carol, &id, true), ErrNotApproved)

	require.NoError(l.Approve(assetrules.NewCall(alice), bob, &id, true))
	ok, err := l.Allowance(alice, bob, &id)
	require.NoError(err)
	require.True(ok)
	ok, err = l.Allowance(alice, bob, nil)
	require.NoError(err)
	require.False(ok)

	// a per-id approval is cleared when the id moves
	require.NoError(l.Transfer(assetrules.NewCall(bob), carol, id, nil))
	requireOwner(t, l, id, carol)
	_, approved, err := l.Approved(id)
	require.NoError(err)
	require.False(approved)

	require.NoError(l.Approve(assetrules.NewCall(carol), alice, nil, true))
	ok, err = l.Allowance(carol, alice, &id)
	require.NoError(err)
	require.True(ok)

	// an operator over every id may approve others for one id
	require.NoError(l.Approve(assetrules.NewCall(alice), bob, &id, true))

	require.NoError(l.Approve(assetrules.NewCall(carol), alice, nil, false))
	ok, err = l.Allowance(carol, alice, nil)
	require.NoError(err)
	require.False(ok)
}

func TestBurn(t *testing.T) {
	require := require.New(t)

	var (
		l, _, _ = newTestLedger()
		alice   = ids.GenerateTestShortID()
		bob     = ids.GenerateTestShortID()
		id      = uint64(4)
	)
	require.NoError(l.MintTo(alice, id))

	require.ErrorIs(l.Burn(assetrules.NewCall(bob), alice, id), ErrNotApproved)
	require.ErrorIs(l.Burn(assetrules.NewCall(alice), bob, id), ErrNotApproved)

	require.NoError(l.Approve(assetrules.NewCall(alice), bob, &id, true))
	require.NoError(l.Burn(assetrules.NewCall(bob), alice, id))

	_, exists, err := l.OwnerOf(id)
	require.NoError(err)
	require.False(exists)
	supply, err := l.TotalSupply()
	require.NoError(err)
	require.Zero(supply)
}

func TestEnumeration(t *testing.T) {
	require := require.New(t)

	var (
		l, _, _ = newTestLedger()
		alice   = ids.GenerateTestShortID()
		bob     = ids.GenerateTestShortID()
	)
	for _, id := range []uint64{300, 2, 1} {
		require.NoError(l.MintTo(alice, id))
	}
	require.NoError(l.MintTo(bob, 256))

	for index, want := range []uint64{1, 2, 300} {
		got, err := l.OwnersTokenByIndex(alice, uint64(index))
		require.NoError(err)
		require.Equal(want, got)
	}
	_, err := l.OwnersTokenByIndex(alice, 3)
	require.ErrorIs(err, ErrOutOfBounds)

	for index, want := range []uint64{1, 2, 256, 300} {
		got, err := l.TokenByIndex(uint64(index))
		require.NoError(err)
		require.Equal(want, got)
	}
}
