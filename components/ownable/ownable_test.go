// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ownable

import (
	"testing"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/assetrules"
	"github.com/luxfi/assetrules/components/events"
)

func TestOwnable(t *testing.T) {
	require := require.New(t)

	var (
		db       = memdb.New()
		contract = ids.GenerateTestShortID()
		alice    = ids.GenerateTestShortID()
		bob      = ids.GenerateTestShortID()
		recorder = events.NewRecorder()
		emitter  = events.Emitter{Contract: contract, Sink: recorder}
	)

	o, err := New(db, alice, emitter, log.NewNoOpLogger())
	require.NoError(err)
	require.Equal(alice, o.Owner())
	require.NoError(o.OnlyOwner(alice))

	err = o.OnlyOwner(bob)
	require.ErrorIs(err, ErrNotOwner)
	require.ErrorIs(err, assetrules.ErrAuthorization)

	err = o.TransferOwnership(assetrules.NewCall(bob), bob)
	require.ErrorIs(err, ErrNotOwner)

	err = o.TransferOwnership(assetrules.NewCall(alice), ids.ShortEmpty)
	require.ErrorIs(err, ErrZeroNewOwner)

	require.NoError(o.TransferOwnership(assetrules.NewCall(alice), bob))
	require.Equal(bob, o.Owner())
	require.Equal([]events.Event{
		&events.OwnershipTransferred{Previous: alice, New: bob},
	}, recorder.Events(contract))

	// the stored owner wins over the initial owner on reload
	reloaded, err := New(db, alice, emitter, log.NewNoOpLogger())
	require.NoError(err)
	require.Equal(bob, reloaded.Owner())
}

func TestRenounceOwnership(t *testing.T) {
	require := require.New(t)

	alice := ids.GenerateTestShortID()
	o, err := New(memdb.New(), alice, events.Emitter{}, log.NewNoOpLogger())
	require.NoError(err)

	require.NoError(o.RenounceOwnership(assetrules.NewCall(alice)))
	require.Equal(ids.ShortEmpty, o.Owner())
	require.ErrorIs(o.OnlyOwner(alice), ErrNotOwner)
	require.ErrorIs(o.OnlyOwner(ids.ShortEmpty), ErrNotOwner)
}
