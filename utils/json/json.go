// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package json provides string-encoded numeric types for the RPC surface.
package json

import (
	"strconv"

	"github.com/holiman/uint256"
)

const Null = "null"

func unquote(b []byte) string {
	str := string(b)
	if len(str) >= 2 {
		if lastIndex := len(str) - 1; str[0] == '"' && str[lastIndex] == '"' {
			str = str[1:lastIndex]
		}
	}
	return str
}

// Uint8 is a uint8 that can be JSON marshaled as a string.
type Uint8 uint8

func (u Uint8) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(u), 10) + `"`), nil
}

func (u *Uint8) UnmarshalJSON(b []byte) error {
	if string(b) == Null {
		return nil
	}
	val, err := strconv.ParseUint(unquote(b), 10, 8)
	*u = Uint8(val)
	return err
}

// Uint32 is a uint32 that can be JSON marshaled as a string.
type Uint32 uint32

func (u Uint32) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(u), 10) + `"`), nil
}

func (u *Uint32) UnmarshalJSON(b []byte) error {
	if string(b) == Null {
		return nil
	}
	val, err := strconv.ParseUint(unquote(b), 10, 32)
	*u = Uint32(val)
	return err
}

// Uint64 is a uint64 that can be JSON marshaled as a string.
type Uint64 uint64

func (u Uint64) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(u), 10) + `"`), nil
}

func (u *Uint64) UnmarshalJSON(b []byte) error {
	if string(b) == Null {
		return nil
	}
	val, err := strconv.ParseUint(unquote(b), 10, 64)
	*u = Uint64(val)
	return err
}

// Amount is a 256-bit token amount marshaled as a decimal string.
type Amount struct {
	uint256.Int
}

// NewAmount copies v into an Amount. A nil v is zero.
func NewAmount(v *uint256.Int) Amount {
	var a Amount
	if v != nil {
		a.Set(v)
	}
	return a
}

// Value returns a copy of the amount.
func (a *Amount) Value() *uint256.Int {
	return new(uint256.Int).Set(&a.Int)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.Dec() + `"`), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	if string(b) == Null {
		return nil
	}
	v, err := uint256.FromDecimal(unquote(b))
	if err != nil {
		return err
	}
	a.Set(v)
	return nil
}
