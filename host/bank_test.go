// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"
)

func TestBankTransfer(t *testing.T) {
	tests := []struct {
		name        string
		balance     uint64
		minimum     uint64
		amount      uint64
		expectedErr error
	}{
		{
			name:    "whole balance",
			balance: 100,
			minimum: 10,
			amount:  100,
		},
		{
			name:    "leaves minimum",
			balance: 100,
			minimum: 10,
			amount:  90,
		},
		{
			name:        "leaves dust",
			balance:     100,
			minimum:     10,
			amount:      95,
			expectedErr: ErrBelowMinimum,
		},
		{
			name:        "insufficient",
			balance:     100,
			amount:      101,
			expectedErr: ErrInsufficientFunds,
		},
		{
			name:    "zero",
			balance: 0,
			amount:  0,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			var (
				bank  = NewBank(memdb.New(), uint256.NewInt(test.minimum), log.NewNoOpLogger())
				alice = ids.GenerateTestShortID()
				bob   = ids.GenerateTestShortID()
			)
			require.NoError(bank.Credit(alice, uint256.NewInt(test.balance)))

			err := bank.Transfer(alice, bob, uint256.NewInt(test.amount))
			require.ErrorIs(err, test.expectedErr)

			aliceBalance, err := bank.BalanceOf(alice)
			require.NoError(err)
			bobBalance, err := bank.BalanceOf(bob)
			require.NoError(err)
			if test.expectedErr != nil {
				require.Equal(test.balance, aliceBalance.Uint64())
				require.Zero(bobBalance.Uint64())
				return
			}
			require.Equal(test.balance-test.amount, aliceBalance.Uint64())
			require.Equal(test.amount, bobBalance.Uint64())
		})
	}
}

func TestBankCreditOverflow(t *testing.T) {
	require := require.New(t)

	bank := NewBank(memdb.New(), nil, log.NewNoOpLogger())
	alice := ids.GenerateTestShortID()
	require.NoError(bank.Credit(alice, new(uint256.Int).SetAllOne()))
	require.Error(bank.Credit(alice, uint256.NewInt(1)))
	require.True(bank.MinimumBalance().IsZero())
}
