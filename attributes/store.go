// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package attributes stores per-id metadata of a collection, the registry of
// attribute names in use and the set of ids locked against metadata changes.
package attributes

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/luxfi/cache"
	"github.com/luxfi/cache/lru"
	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/assetrules"
	"github.com/luxfi/assetrules/components/events"
	"github.com/luxfi/assetrules/components/store"

	safemath "github.com/luxfi/assetrules/utils/math"
)

// CollectionID is the sentinel id collection-level attributes are stored
// under. It is never minted.
const CollectionID uint64 = 0

// Collection-level attribute names.
const (
	NameAttribute    = "name"
	SymbolAttribute  = "symbol"
	BaseURIAttribute = "baseURI"
)

const uriSuffix = ".json"

var (
	ErrInvalidInput      = fmt.Errorf("%w: invalid input", assetrules.ErrPolicyViolation)
	ErrTokenLocked       = fmt.Errorf("%w: token is locked", assetrules.ErrPolicyViolation)
	ErrBaseURINotSet     = fmt.Errorf("%w: base uri not set", assetrules.ErrPolicyViolation)
	ErrNotTokenOwner     = fmt.Errorf("%w: caller is not the token owner", assetrules.ErrAuthorization)
	ErrTooManyAttributes = fmt.Errorf("%w: attribute registry is full", assetrules.ErrCapacityExhausted)
	ErrCounterOverflow   = fmt.Errorf("%w: locked token counter overflow", assetrules.ErrCapacityExhausted)

	prefixName   = []byte("attrName:")
	prefixValue  = []byte("attr:")
	prefixLocked = []byte("locked:")
	countKey     = []byte("attrCount")
	lockedKey    = []byte("lockedCount")
)

// Attribute is a name and value pair, both arbitrary bytes.
type Attribute struct {
	Name  []byte `json:"name"`
	Value []byte `json:"value"`
}

// Owner is the contract-wide owner gate.
type Owner interface {
	OnlyOwner(caller ids.ShortID) error
}

// Ledger answers who owns an id.
type Ledger interface {
	OwnerOf(id uint64) (ids.ShortID, bool, error)
}

type Store struct {
	log     log.Logger
	db      database.Database
	owner   Owner
	ledger  Ledger
	emitter events.Emitter

	// values caches attribute values, keyed by their database key. Missing
	// values are cached as nil.
	values cache.Cacher[string, []byte]
}

// New returns the store kept in db. cacheSize bounds the number of cached
// attribute values.
func New(
	db database.Database,
	owner Owner,
	ledger Ledger,
	emitter events.Emitter,
	cacheSize int,
	logger log.Logger,
) *Store {
	return &Store{
		log:     logger,
		db:      db,
		owner:   owner,
		ledger:  ledger,
		emitter: emitter,
		values:  lru.NewCache[string, []byte](cacheSize),
	}
}

func nameKey(index uint32) []byte {
	return store.Key(prefixName, binary.BigEndian.AppendUint32(nil, index))
}

func valueKey(id uint64, name []byte) []byte {
	return store.Key(prefixValue, binary.BigEndian.AppendUint64(nil, id), name)
}

func lockKey(id uint64) []byte {
	return store.Key(prefixLocked, binary.BigEndian.AppendUint64(nil, id))
}

// AttributeCount returns how many distinct names have been registered.
func (s *Store) AttributeCount() (uint32, error) {
	count, err := store.GetUint64(s.db, countKey)
	if err != nil {
		return 0, err
	}
	if count > uint64(safemath.MaxUint[uint32]()) {
		return 0, fmt.Errorf("%w: attribute count %d", store.ErrCorrupted, count)
	}
	return uint32(count), nil
}

// AttributeName returns the name registered at the 1-based index, or "" when
// nothing is registered there.
func (s *Store) AttributeName(index uint32) (string, error) {
	name, _, err := store.GetBytes(s.db, nameKey(index))
	return string(name), err
}

// register adds name to the registry unless an equal name is already there.
func (s *Store) register(name []byte) error {
	count, err := s.AttributeCount()
	if err != nil {
		return err
	}
	for i := uint32(1); i <= count; i++ {
		existing, _, err := store.GetBytes(s.db, nameKey(i))
		if err != nil {
			return err
		}
		if bytes.Equal(existing, name) {
			return nil
		}
	}

	next, err := safemath.Add(count, 1)
	if err != nil {
		return ErrTooManyAttributes
	}
	if err := s.db.Put(nameKey(next), name); err != nil {
		return err
	}
	return database.PutUInt64(s.db, countKey, uint64(next))
}

// put writes attr on id. Collection-level attributes stay out of the name
// registry, which only lists token traits.
func (s *Store) put(id uint64, attr Attribute) error {
	if id != CollectionID {
		if err := s.register(attr.Name); err != nil {
			return err
		}
	}
	key := valueKey(id, attr.Name)
	if err := s.db.Put(key, attr.Value); err != nil {
		return err
	}
	s.values.Put(string(key), append([]byte{}, attr.Value...))
	return s.emitter.Emit(&events.AttributeSet{
		ID:        id,
		Attribute: attr.Name,
		Value:     attr.Value,
	})
}

func (s *Store) get(id uint64, name []byte) ([]byte, bool, error) {
	key := valueKey(id, name)
	if value, ok := s.values.Get(string(key)); ok {
		return value, value != nil, nil
	}
	value, ok, err := store.GetBytes(s.db, key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		s.values.Put(string(key), nil)
		return nil, false, nil
	}
	if value == nil {
		value = []byte{}
	}
	s.values.Put(string(key), value)
	return value, true, nil
}

// Initialize writes collection-level attributes under the sentinel id. It is
// only called while the collection is constructed.
func (s *Store) Initialize(attrs []Attribute) error {
	for _, attr := range attrs {
		if err := s.put(CollectionID, attr); err != nil {
			return err
		}
	}
	return nil
}

// SetMultipleAttributes writes every pair on id in order. A failure part way
// through leaves the earlier pairs written.
func (s *Store) SetMultipleAttributes(call assetrules.Call, id uint64, attrs []Attribute) error {
	if err := s.owner.OnlyOwner(call.Caller); err != nil {
		return err
	}
	if id == CollectionID {
		return ErrInvalidInput
	}
	locked, err := s.IsLocked(id)
	if err != nil {
		return err
	}
	if locked {
		return ErrTokenLocked
	}
	for _, attr := range attrs {
		if err := s.put(id, attr); err != nil {
			return err
		}
	}
	s.log.Debug("attributes set",
		log.Stringer("contract", s.emitter.Contract),
		log.Uint64("id", id),
		log.Int("count", len(attrs)),
	)
	return nil
}

// GetAttributes returns the value of every name on id, in order, as text. An
// unset attribute is "".
func (s *Store) GetAttributes(id uint64, names [][]byte) ([]string, error) {
	values := make([]string, len(names))
	for i, name := range names {
		value, _, err := s.get(id, name)
		if err != nil {
			return nil, err
		}
		values[i] = string(value)
	}
	return values, nil
}

// SetBaseURI replaces the base every token uri is built from.
func (s *Store) SetBaseURI(call assetrules.Call, uri string) error {
	if err := s.owner.OnlyOwner(call.Caller); err != nil {
		return err
	}
	return s.put(CollectionID, Attribute{
		Name:  []byte(BaseURIAttribute),
		Value: []byte(uri),
	})
}

// TokenURI returns the base uri followed by the decimal id and ".json".
func (s *Store) TokenURI(id uint64) (string, error) {
	base, ok, err := s.get(CollectionID, []byte(BaseURIAttribute))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrBaseURINotSet
	}
	return string(base) + strconv.FormatUint(id, 10) + uriSuffix, nil
}

func (s *Store) IsLocked(id uint64) (bool, error) {
	return s.db.Has(lockKey(id))
}

func (s *Store) LockedCount() (uint64, error) {
	return store.GetUint64(s.db, lockedKey)
}

// Lock permanently freezes the attributes of id. Only the owner of record of
// id may lock it. There is no unlock.
func (s *Store) Lock(call assetrules.Call, id uint64) error {
	owner, exists, err := s.ledger.OwnerOf(id)
	if err != nil {
		return err
	}
	if !exists || owner != call.Caller {
		return ErrNotTokenOwner
	}
	locked, err := s.IsLocked(id)
	if err != nil {
		return err
	}
	if locked {
		return ErrTokenLocked
	}

	count, err := s.LockedCount()
	if err != nil {
		return err
	}
	count, err = safemath.Add(count, 1)
	if err != nil {
		return ErrCounterOverflow
	}

	batch := s.db.NewBatch()
	if err := batch.Put(lockKey(id), nil); err != nil {
		return err
	}
	if err := database.PutUInt64(batch, lockedKey, count); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return err
	}
	s.log.Info("token locked",
		log.Stringer("contract", s.emitter.Contract),
		log.Stringer("owner", owner),
		log.Uint64("id", id),
	)
	return s.emitter.Emit(&events.Locked{ID: id})
}
