// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package events

import (
	"errors"
	"math"

	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"
)

const CodecVersion = 0

// Codec encodes journal records. Event types are registered in a fixed order;
// append new types at the end.
var Codec codec.Manager

func init() {
	Codec = codec.NewManager(math.MaxInt)
	lc := linearcodec.NewDefault()

	err := errors.Join(
		lc.RegisterType(&Transfer{}),
		lc.RegisterType(&Approval{}),
		lc.RegisterType(&TokenTransfer{}),
		lc.RegisterType(&TokenApproval{}),
		lc.RegisterType(&Locked{}),
		lc.RegisterType(&Withdrawn{}),
		lc.RegisterType(&OwnershipTransferred{}),
		lc.RegisterType(&AttributeSet{}),
		Codec.RegisterCodec(CodecVersion, lc),
	)
	if err != nil {
		panic(err)
	}
}
