// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package events

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/luxfi/log"
)

var (
	_ Sink = (*Journal)(nil)

	journalPrefix = []byte("event/")

	errJournalClosed = errors.New("journal closed")
)

// Journal is a durable, append-only event log backed by badger. Records are
// keyed by sequence number so replay returns them in emission order.
type Journal struct {
	log log.Logger

	lock   sync.RWMutex
	db     *badger.DB
	seq    uint64
	closed bool
}

// OpenJournal opens the journal stored in dir. An empty dir keeps the journal
// in memory.
func OpenJournal(dir string, logger log.Logger) (*Journal, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open event journal: %w", err)
	}

	j := &Journal{
		log: logger,
		db:  db,
	}
	if err := j.loadSeq(); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("opened event journal",
		log.String("dir", dir),
		log.Uint64("lastSeq", j.seq),
	)
	return j, nil
}

func (j *Journal) loadSeq() error {
	return j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false
		opts.Prefix = journalPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek(journalKey(math.MaxUint64))
		if it.ValidForPrefix(journalPrefix) {
			j.seq = binary.BigEndian.Uint64(it.Item().Key()[len(journalPrefix):])
		}
		return nil
	})
}

func journalKey(seq uint64) []byte {
	key := make([]byte, len(journalPrefix)+8)
	copy(key, journalPrefix)
	binary.BigEndian.PutUint64(key[len(journalPrefix):], seq)
	return key
}

func (j *Journal) Emit(rec Record) error {
	j.lock.Lock()
	defer j.lock.Unlock()

	if j.closed {
		return errJournalClosed
	}

	rec.Seq = j.seq + 1
	b, err := Codec.Marshal(CodecVersion, &rec)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", rec.Event.Name(), err)
	}
	err = j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(journalKey(rec.Seq), b)
	})
	if err != nil {
		return fmt.Errorf("failed to append event %d: %w", rec.Seq, err)
	}
	j.seq = rec.Seq
	return nil
}

// LastSeq returns the sequence number of the newest record, or 0 if the
// journal is empty.
func (j *Journal) LastSeq() uint64 {
	j.lock.RLock()
	defer j.lock.RUnlock()

	return j.seq
}

// HealthCheck reports the newest sequence number. A closed journal is
// unhealthy.
func (j *Journal) HealthCheck(context.Context) (any, error) {
	j.lock.RLock()
	defer j.lock.RUnlock()

	if j.closed {
		return nil, errJournalClosed
	}
	return map[string]uint64{"lastSeq": j.seq}, nil
}

// Replay calls f with every record whose sequence number is at least from,
// in order. Replay stops at the first error f returns. Close blocks until
// Replay returns, so f must not call back into the journal.
func (j *Journal) Replay(from uint64, f func(Record) error) error {
	j.lock.RLock()
	defer j.lock.RUnlock()

	if j.closed {
		return errJournalClosed
	}

	return j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = journalPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(journalKey(from)); it.ValidForPrefix(journalPrefix); it.Next() {
			b, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var rec Record
			if _, err := Codec.Unmarshal(b, &rec); err != nil {
				return fmt.Errorf("failed to decode event %x: %w", it.Item().Key(), err)
			}
			if err := f(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func (j *Journal) Close() error {
	j.lock.Lock()
	defer j.lock.Unlock()

	if j.closed {
		return nil
	}
	j.closed = true
	return j.db.Close()
}
