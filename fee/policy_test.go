// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fee

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/luxfi/assetrules"
	"github.com/luxfi/assetrules/components/events"
	"github.com/luxfi/assetrules/components/ownable"
	"github.com/luxfi/assetrules/fee/feemock"
	"github.com/luxfi/assetrules/ledger/fungible"
)

var errLedger = errors.New("ledger unavailable")

type feeCounter struct {
	total *uint256.Int
}

func (c *feeCounter) FeeCollected(tax *uint256.Int) {
	c.total.Add(c.total, tax)
}

type testToken struct {
	policy   *Policy
	ledger   *fungible.Ledger
	owner    ids.ShortID
	fees     *feeCounter
	recorder *events.Recorder
	contract ids.ShortID
}

// newTestToken mints supply to a fresh owner and configures the policy.
func newTestToken(t *testing.T, supply uint64, walletPct, txPct, feePct uint8) *testToken {
	require := require.New(t)

	var (
		db       = memdb.New()
		contract = ids.GenerateTestShortID()
		owner    = ids.GenerateTestShortID()
		recorder = events.NewRecorder()
		emitter  = events.Emitter{Contract: contract, Sink: recorder}
		logger   = log.NewNoOpLogger()
		fees     = &feeCounter{total: new(uint256.Int)}
	)
	gate, err := ownable.New(db, owner, emitter, logger)
	require.NoError(err)

	ledger := fungible.New(db, emitter, logger)
	require.NoError(ledger.Mint(owner, uint256.NewInt(supply)))

	policy := New(db, ledger, gate, fees, logger)
	require.NoError(policy.Initialize(walletPct, txPct, feePct))
	recorder.Reset()

	return &testToken{
		policy:   policy,
		ledger:   ledger,
		owner:    owner,
		fees:     fees,
		recorder: recorder,
		contract: contract,
	}
}

func (tt *testToken) balance(t *testing.T, account ids.ShortID) uint64 {
	b, err := tt.ledger.BalanceOf(account)
	require.NoError(t, err)
	return b.Uint64()
}

func TestInitializeSnapshotsCaps(t *testing.T) {
	require := require.New(t)

	tt := newTestToken(t, 1000, 10, 5, 3)
	cfg, err := tt.policy.Config()
	require.NoError(err)
	require.Equal(uint64(100), cfg.MaxWallet.Uint64())
	require.Equal(uint64(50), cfg.MaxTransaction.Uint64())
	require.Equal(uint8(3), cfg.FeePercent)

	// caps are not re-derived when supply changes
	require.NoError(tt.ledger.Mint(tt.owner, uint256.NewInt(1000)))
	maxWallet, err := tt.policy.MaxWallet()
	require.NoError(err)
	require.Equal(uint64(100), maxWallet.Uint64())
}

func TestMaxWalletScenario(t *testing.T) {
	require := require.New(t)

	tt := newTestToken(t, 1000, 100, 100, 0)
	require.NoError(tt.policy.SetMaxWallet(assetrules.NewCall(tt.owner), 10))

	maxWallet, err := tt.policy.MaxWallet()
	require.NoError(err)
	require.Equal(uint64(100), maxWallet.Uint64())

	bob := ids.GenerateTestShortID()
	err = tt.policy.Transfer(assetrules.NewCall(tt.owner), bob, uint256.NewInt(150), nil)
	require.ErrorIs(err, ErrExceedsMaxWallet)
	require.ErrorIs(err, assetrules.ErrPolicyViolation)
	require.Zero(tt.balance(t, bob))

	require.NoError(tt.policy.Transfer(assetrules.NewCall(tt.owner), bob, uint256.NewInt(90), nil))
	require.Equal(uint64(90), tt.balance(t, bob))

	// 90 + 11 would pass the cap
	err = tt.policy.Transfer(assetrules.NewCall(tt.owner), bob, uint256.NewInt(11), nil)
	require.ErrorIs(err, ErrExceedsMaxWallet)
	require.NoError(tt.policy.Transfer(assetrules.NewCall(tt.owner), bob, uint256.NewInt(10), nil))
	require.Equal(uint64(100), tt.balance(t, bob))
}

func TestMaxTransaction(t *testing.T) {
	require := require.New(t)

	tt := newTestToken(t, 1000, 100, 5, 10)
	bob := ids.GenerateTestShortID()

	for _, value := range []uint64{51, 100, 1000} {
		err := tt.policy.Transfer(assetrules.NewCall(tt.owner), bob, uint256.NewInt(value), nil)
		require.ErrorIs(err, ErrExceedsMaxTransaction)
	}
	require.Equal(uint64(1000), tt.balance(t, tt.owner))
	require.Zero(tt.balance(t, bob))
	require.Empty(tt.recorder.Records())

	require.NoError(tt.policy.Transfer(assetrules.NewCall(tt.owner), bob, uint256.NewInt(50), nil))
}

func TestTaxRouting(t *testing.T) {
	tests := []struct {
		name    string
		feePct  uint8
		value   uint64
		wantTax uint64
	}{
		{
			name:    "no fee",
			feePct:  0,
			value:   100,
			wantTax: 0,
		},
		{
			name:    "exact",
			feePct:  10,
			value:   100,
			wantTax: 10,
		},
		{
			name:    "floored",
			feePct:  3,
			value:   99,
			wantTax: 2,
		},
		{
			name:    "below one unit",
			feePct:  5,
			value:   19,
			wantTax: 0,
		},
		{
			name:    "everything",
			feePct:  100,
			value:   40,
			wantTax: 40,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			tt := newTestToken(t, 1000, 100, 100, test.feePct)
			var (
				alice = ids.GenerateTestShortID()
				bob   = ids.GenerateTestShortID()
			)
			require.NoError(tt.policy.SetFee(assetrules.NewCall(tt.owner), 0))
			require.NoError(tt.policy.Transfer(assetrules.NewCall(tt.owner), alice, uint256.NewInt(500), nil))
			require.NoError(tt.policy.SetFee(assetrules.NewCall(tt.owner), test.feePct))
			tt.recorder.Reset()

			require.NoError(tt.policy.Transfer(assetrules.NewCall(alice), bob, uint256.NewInt(test.value), nil))
			require.Equal(test.value-test.wantTax, tt.balance(t, bob))
			require.Equal(500-test.value, tt.balance(t, alice))
			require.Equal(500+test.wantTax, tt.balance(t, tt.owner))
			require.Equal(test.wantTax, tt.fees.total.Uint64())

			// both legs are reported by the ledger, fee leg first
			require.Equal([]events.Event{
				&events.Transfer{From: alice, To: tt.owner, Value: *uint256.NewInt(test.wantTax)},
				&events.Transfer{From: alice, To: bob, Value: *uint256.NewInt(test.value - test.wantTax)},
			}, tt.recorder.Events(tt.contract))
		})
	}
}

func TestBurnAddressIsNeverTaxed(t *testing.T) {
	require := require.New(t)

	tt := newTestToken(t, 1000, 100, 100, 0)
	alice := ids.GenerateTestShortID()
	require.NoError(tt.policy.Transfer(assetrules.NewCall(tt.owner), alice, uint256.NewInt(200), nil))
	require.NoError(tt.policy.SetFee(assetrules.NewCall(tt.owner), 50))
	ownerBefore := tt.balance(t, tt.owner)

	require.NoError(tt.policy.Transfer(assetrules.NewCall(alice), assetrules.None, uint256.NewInt(40), nil))
	require.Equal(uint64(160), tt.balance(t, alice))
	require.Equal(uint64(40), tt.balance(t, assetrules.None))
	require.Equal(ownerBefore, tt.balance(t, tt.owner))

	tax, err := tt.policy.Tax(assetrules.None, alice, uint256.NewInt(40))
	require.NoError(err)
	require.True(tax.IsZero())
}

func TestTransferConservesValue(t *testing.T) {
	require := require.New(t)

	tt := newTestToken(t, 1_000_000, 100, 100, 7)
	accounts := []ids.ShortID{tt.owner}
	for i := 0; i < 4; i++ {
		accounts = append(accounts, ids.GenerateTestShortID())
	}
	for i, value := range []uint64{1, 13, 999, 4567, 31, 100_000} {
		from := accounts[i%len(accounts)]
		to := accounts[(i+1)%len(accounts)]
		if tt.balance(t, from) < value {
			continue
		}
		require.NoError(tt.policy.Transfer(assetrules.NewCall(from), to, uint256.NewInt(value), nil))
	}

	var total uint64
	for _, account := range accounts {
		total += tt.balance(t, account)
	}
	require.Equal(uint64(1_000_000), total)
}

func TestTransferFrom(t *testing.T) {
	require := require.New(t)

	tt := newTestToken(t, 1000, 10, 100, 10)
	var (
		spender = ids.GenerateTestShortID()
		bob     = ids.GenerateTestShortID()
	)
	require.NoError(tt.ledger.Approve(assetrules.NewCall(tt.owner), spender, uint256.NewInt(500)))

	err := tt.policy.TransferFrom(assetrules.NewCall(spender), tt.owner, bob, uint256.NewInt(101), nil)
	require.ErrorIs(err, ErrExceedsMaxWallet)

	require.NoError(tt.policy.TransferFrom(assetrules.NewCall(spender), tt.owner, bob, uint256.NewInt(100), nil))
	require.Equal(uint64(90), tt.balance(t, bob))

	allowance, err := tt.ledger.Allowance(tt.owner, spender)
	require.NoError(err)
	require.Equal(uint64(400), allowance.Uint64())

	carol := ids.GenerateTestShortID()
	err = tt.policy.TransferFrom(assetrules.NewCall(carol), tt.owner, bob, uint256.NewInt(1), nil)
	require.ErrorIs(err, ErrTransferFailed)
	require.ErrorIs(err, fungible.ErrInsufficientAllowance)
}

func TestInsufficientBalanceIsCollaboratorFailure(t *testing.T) {
	require := require.New(t)

	tt := newTestToken(t, 1000, 100, 100, 10)
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()

	err := tt.policy.Transfer(assetrules.NewCall(alice), bob, uint256.NewInt(1), nil)
	require.ErrorIs(err, ErrTransferFailed)
	require.ErrorIs(err, fungible.ErrInsufficientBalance)
	require.Equal(assetrules.KindCollaboratorFailure, assetrules.KindOf(err))
	require.Zero(tt.fees.total.Uint64())
}

func TestSettersAreOwnerGated(t *testing.T) {
	require := require.New(t)

	tt := newTestToken(t, 1000, 10, 10, 1)
	stranger := assetrules.NewCall(ids.GenerateTestShortID())

	require.ErrorIs(tt.policy.SetMaxWallet(stranger, 50), ownable.ErrNotOwner)
	require.ErrorIs(tt.policy.SetMaxTransaction(stranger, 50), ownable.ErrNotOwner)
	require.ErrorIs(tt.policy.SetFee(stranger, 50), ownable.ErrNotOwner)

	cfg, err := tt.policy.Config()
	require.NoError(err)
	require.Equal(uint64(100), cfg.MaxWallet.Uint64())
	require.Equal(uint64(100), cfg.MaxTransaction.Uint64())
	require.Equal(uint8(1), cfg.FeePercent)

	owner := assetrules.NewCall(tt.owner)
	require.ErrorIs(tt.policy.SetFee(owner, MaxFeePercent+1), ErrInvalidFee)
	require.NoError(tt.policy.SetFee(owner, MaxFeePercent))
	require.NoError(tt.policy.SetMaxTransaction(owner, 20))

	cfg, err = tt.policy.Config()
	require.NoError(err)
	require.Equal(uint64(200), cfg.MaxTransaction.Uint64())
	require.Equal(uint8(MaxFeePercent), cfg.FeePercent)
}

func TestCollaboratorFailures(t *testing.T) {
	var (
		owner = ids.GenerateTestShortID()
		bob   = ids.GenerateTestShortID()
	)
	tests := []struct {
		name    string
		setup   func(*feemock.Ledger)
		wantErr error
	}{
		{
			name: "balance lookup",
			setup: func(l *feemock.Ledger) {
				l.EXPECT().BalanceOf(bob).Return(nil, errLedger)
			},
			wantErr: ErrLedgerFailed,
		},
		{
			name: "transfer",
			setup: func(l *feemock.Ledger) {
				l.EXPECT().BalanceOf(bob).Return(new(uint256.Int), nil)
				l.EXPECT().TransferLegs(owner, []fungible.Leg{
					{To: owner, Value: uint256.NewInt(1)},
					{To: bob, Value: uint256.NewInt(9)},
				}, gomock.Nil()).Return(errLedger)
			},
			wantErr: ErrTransferFailed,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)
			ctrl := gomock.NewController(t)

			var (
				db     = memdb.New()
				ledger = feemock.NewLedger(ctrl)
				logger = log.NewNoOpLogger()
			)
			gate, err := ownable.New(db, owner, events.Emitter{}, logger)
			require.NoError(err)

			ledger.EXPECT().TotalSupply().Return(uint256.NewInt(1000), nil).Times(2)
			policy := New(db, ledger, gate, nil, logger)
			require.NoError(policy.Initialize(100, 100, 10))

			test.setup(ledger)
			err = policy.Transfer(assetrules.NewCall(owner), bob, uint256.NewInt(10), nil)
			require.ErrorIs(err, test.wantErr)
			require.ErrorIs(err, errLedger)
		})
	}
}

func TestSetCapLedgerFailure(t *testing.T) {
	require := require.New(t)
	ctrl := gomock.NewController(t)

	var (
		db     = memdb.New()
		owner  = ids.GenerateTestShortID()
		ledger = feemock.NewLedger(ctrl)
		logger = log.NewNoOpLogger()
	)
	gate, err := ownable.New(db, owner, events.Emitter{}, logger)
	require.NoError(err)

	ledger.EXPECT().TotalSupply().Return(nil, errLedger)
	policy := New(db, ledger, gate, nil, logger)
	err = policy.SetMaxWallet(assetrules.NewCall(owner), 10)
	require.ErrorIs(err, ErrLedgerFailed)
	require.ErrorIs(err, errLedger)
}
