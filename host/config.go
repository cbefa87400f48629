// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import "github.com/holiman/uint256"

// BankConfig configures native balances.
type BankConfig struct {
	// MinimumBalance is the smallest non-zero balance an account may keep.
	MinimumBalance *uint256.Int
}
