// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package assetrules

import (
	"errors"
	"fmt"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	errCollab := fmt.Errorf("%w: transfer failed", ErrCollaboratorFailure)

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "nil",
			err:  nil,
			want: KindNone,
		},
		{
			name: "policy",
			err:  fmt.Errorf("%w: bad mint value", ErrPolicyViolation),
			want: KindPolicyViolation,
		},
		{
			name: "authorization",
			err:  fmt.Errorf("%w: not owner", ErrAuthorization),
			want: KindAuthorization,
		},
		{
			name: "capacity",
			err:  fmt.Errorf("%w: collection is full", ErrCapacityExhausted),
			want: KindCapacityExhausted,
		},
		{
			name: "collaborator wrapping a policy cause",
			err:  fmt.Errorf("%w: %w", errCollab, fmt.Errorf("%w: insufficient balance", ErrPolicyViolation)),
			want: KindCollaboratorFailure,
		},
		{
			name: "unclassified",
			err:  errors.New("boom"),
			want: KindUnknown,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.want, KindOf(test.err))
		})
	}
}

func TestCallPaid(t *testing.T) {
	require := require.New(t)

	require.True(NewCall(None).Paid().IsZero())

	call := Call{Value: uint256.NewInt(7)}
	require.Equal(uint64(7), call.Paid().Uint64())
}
