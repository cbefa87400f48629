// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package events

import (
	"errors"
	"sync"

	"github.com/luxfi/ids"
)

var (
	_ Log  = (*Recorder)(nil)
	_ Log  = (*Journal)(nil)
	_ Sink = Multi(nil)
	_ Sink = Discard{}
)

// Record is an event together with the contract that emitted it. Seq is
// assigned by the sink that stores the record.
type Record struct {
	Seq      uint64      `serialize:"true" json:"seq"`
	Contract ids.ShortID `serialize:"true" json:"contract"`
	Event    Event       `serialize:"true" json:"event"`
}

// Sink receives emitted events.
type Sink interface {
	Emit(Record) error
}

// Log is a sink that can replay the records it stored, in order, starting
// at sequence number from.
type Log interface {
	Sink
	Replay(from uint64, f func(Record) error) error
}

// Emitter binds a sink to the address of the emitting contract.
type Emitter struct {
	Contract ids.ShortID
	Sink     Sink
}

// Emit sends e to the sink. A nil sink discards it.
func (e Emitter) Emit(ev Event) error {
	if e.Sink == nil {
		return nil
	}
	return e.Sink.Emit(Record{
		Contract: e.Contract,
		Event:    ev,
	})
}

// Discard drops every event.
type Discard struct{}

func (Discard) Emit(Record) error { return nil }

// Multi fans an event out to every sink, in order.
type Multi []Sink

func (m Multi) Emit(r Record) error {
	errs := make([]error, 0, len(m))
	for _, s := range m {
		errs = append(errs, s.Emit(r))
	}
	return errors.Join(errs...)
}

// Recorder keeps every emitted event in memory.
type Recorder struct {
	lock    sync.RWMutex
	records []Record
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(rec Record) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	rec.Seq = uint64(len(r.records)) + 1
	r.records = append(r.records, rec)
	return nil
}

// Records returns a copy of every record emitted so far.
func (r *Recorder) Records() []Record {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return append([]Record(nil), r.records...)
}

// Events returns the events emitted by contract, in emission order.
func (r *Recorder) Events(contract ids.ShortID) []Event {
	r.lock.RLock()
	defer r.lock.RUnlock()

	var evs []Event
	for _, rec := range r.records {
		if rec.Contract == contract {
			evs = append(evs, rec.Event)
		}
	}
	return evs
}

func (r *Recorder) Replay(from uint64, f func(Record) error) error {
	for _, rec := range r.Records() {
		if rec.Seq < from {
			continue
		}
		if err := f(rec); err != nil {
			return err
		}
	}
	return nil
}

// Reset drops every recorded event.
func (r *Recorder) Reset() {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.records = nil
}
