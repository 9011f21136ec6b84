// Package storage persists stop modifications for later audit.
package storage

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raykavin/volguard/pkg/core"
	"github.com/raykavin/volguard/pkg/logger"
	"github.com/tidwall/buntdb"
)

const timeIndex = "time_index"

// Event is one stop modification sent to the broker
type Event struct {
	ID         string    `json:"id"`
	Instrument string    `json:"instrument"`
	Stop       float64   `json:"stop"`
	Time       time.Time `json:"time"`
}

// EventFilter selects events when listing
type EventFilter func(Event) bool

// ForInstrument keeps only events of the given instrument
func ForInstrument(instrument string) EventFilter {
	return func(e Event) bool { return e.Instrument == instrument }
}

// Journal records every stop modification into BuntDB.
// It implements core.StopModifier, so it can sit in front of or beside a broker.
type Journal struct {
	db    *buntdb.DB
	log   logger.Logger
	clock func() time.Time

	mu   sync.Mutex
	errs []error
}

var _ core.StopModifier = (*Journal)(nil)

// JournalOption configures a Journal
type JournalOption func(*Journal)

// WithJournalLogger sets the logger used to report write failures
func WithJournalLogger(log logger.Logger) JournalOption {
	return func(j *Journal) { j.log = log }
}

// WithClock overrides the time source
func WithClock(clock func() time.Time) JournalOption {
	return func(j *Journal) { j.clock = clock }
}

// FromMemory creates an in-memory journal
func FromMemory(options ...JournalOption) (*Journal, error) {
	return NewJournal(":memory:", options...)
}

// FromFile creates a file-based journal
func FromFile(file string, options ...JournalOption) (*Journal, error) {
	return NewJournal(file, options...)
}

// NewJournal opens the BuntDB database at source
func NewJournal(source string, options ...JournalOption) (*Journal, error) {
	db, err := buntdb.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	if err := db.CreateIndex(timeIndex, "*", buntdb.IndexJSON("time")); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	j := &Journal{
		db:    db,
		log:   logger.Nop{},
		clock: time.Now,
	}
	for _, option := range options {
		option(j)
	}

	return j, nil
}

// ModifyStop stores the modification. The modifier contract has no error
// return, so failures are logged and kept for Err.
func (j *Journal) ModifyStop(instrument string, newStop float64) {
	if _, err := j.Record(instrument, newStop); err != nil {
		j.log.WithError(err).WithField("instrument", instrument).Error("failed to journal stop")
		j.mu.Lock()
		j.errs = append(j.errs, err)
		j.mu.Unlock()
	}
}

// Record stores a modification and returns the persisted event
func (j *Journal) Record(instrument string, stop float64) (Event, error) {
	event := Event{
		ID:         uuid.NewString(),
		Instrument: instrument,
		Stop:       stop,
		Time:       j.clock().UTC(),
	}

	err := j.db.Update(func(tx *buntdb.Tx) error {
		content, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}

		if _, _, err = tx.Set(event.ID, string(content), nil); err != nil {
			return fmt.Errorf("failed to store event: %w", err)
		}
		return nil
	})

	return event, err
}

// Events lists stored events in time order
func (j *Journal) Events(filters ...EventFilter) ([]Event, error) {
	events := make([]Event, 0)

	err := j.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend(timeIndex, func(_, value string) bool {
			var event Event
			if err := json.Unmarshal([]byte(value), &event); err != nil {
				j.log.WithError(err).Warn("skipping malformed journal entry")
				return true
			}

			for _, filter := range filters {
				if !filter(event) {
					return true
				}
			}

			events = append(events, event)
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over events: %w", err)
	}

	return events, nil
}

// Err returns the write failures collected by ModifyStop
func (j *Journal) Err() []error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]error(nil), j.errs...)
}

// Close closes the database
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}
