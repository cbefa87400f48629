// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package store has the key and value encodings shared by contract state.
package store

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
)

var ErrCorrupted = errors.New("state corrupted")

// Key concatenates parts into a single database key.
func Key(parts ...[]byte) []byte {
	size := 0
	for _, p := range parts {
		size += len(p)
	}
	key := make([]byte, 0, size)
	for _, p := range parts {
		key = append(key, p...)
	}
	return key
}

// GetAmount returns the amount stored at key. A missing key is zero.
func GetAmount(db database.KeyValueReader, key []byte) (*uint256.Int, error) {
	b, err := db.Get(key)
	if errors.Is(err, database.ErrNotFound) {
		return new(uint256.Int), nil
	}
	if err != nil {
		return nil, err
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("%w: amount at %x has %d bytes", ErrCorrupted, key, len(b))
	}
	return new(uint256.Int).SetBytes32(b), nil
}

// PutAmount stores v at key. A zero amount deletes the key.
func PutAmount(db database.KeyValueWriterDeleter, key []byte, v *uint256.Int) error {
	if v.IsZero() {
		return db.Delete(key)
	}
	b := v.Bytes32()
	return db.Put(key, b[:])
}

// GetUint64 returns the counter stored at key. A missing key is zero.
func GetUint64(db database.KeyValueReader, key []byte) (uint64, error) {
	v, err := database.GetUInt64(db, key)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	return v, err
}

// GetBytes returns the value stored at key and whether it was present.
func GetBytes(db database.KeyValueReader, key []byte) ([]byte, bool, error) {
	b, err := db.Get(key)
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}
