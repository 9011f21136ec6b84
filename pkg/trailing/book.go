package trailing

import (
	"fmt"
	"sync"

	"github.com/StudioSol/set"
	"github.com/raykavin/volguard/pkg/core"
)

type bookEntry struct {
	mu    sync.Mutex
	state *State
}

// Book tracks the trailing stops of many positions, one per instrument.
// Calls for the same instrument are serialized by a per-position lock, so
// ticks for different instruments can be processed concurrently.
type Book struct {
	engine *Engine

	mu          sync.RWMutex
	entries     map[string]*bookEntry
	instruments *set.LinkedHashSetString

	summaryMu sync.Mutex
	summary   Summary
}

// NewBook creates an empty book driven by engine
func NewBook(engine *Engine) *Book {
	return &Book{
		engine:      engine,
		entries:     make(map[string]*bookEntry),
		instruments: set.NewLinkedHashSetString(),
	}
}

// Open starts tracking a position. An instrument with a finished stop may be reopened.
func (b *Book) Open(p Params) (Status, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if current, ok := b.entries[p.Instrument]; ok {
		current.mu.Lock()
		active := current.state.active
		current.mu.Unlock()
		if active {
			return Status{}, fmt.Errorf("%s: %w", p.Instrument, core.ErrPositionExists)
		}
	}

	state, err := b.engine.Open(p)
	if err != nil {
		return Status{}, err
	}

	b.entries[p.Instrument] = &bookEntry{state: state}
	b.instruments.Add(p.Instrument)

	return state.Status(), nil
}

// Update feeds a tick to the instrument's stop
func (b *Book) Update(instrument string, price float64, atr *float64) (UpdateResult, error) {
	var result UpdateResult
	err := b.with(instrument, func(state *State) {
		result = b.engine.Update(state, price, atr)
		if result.Triggered {
			b.record(state)
		}
	})
	return result, err
}

// ForceMove applies an explicit stop override to the instrument's stop
func (b *Book) ForceMove(instrument string, newStop float64) (MoveResult, error) {
	var result MoveResult
	err := b.with(instrument, func(state *State) {
		result = b.engine.ForceMove(state, newStop)
	})
	return result, err
}

// MoveToBreakeven moves the instrument's stop to entry plus buffer when favorable
func (b *Book) MoveToBreakeven(instrument string, buffer float64) (MoveResult, error) {
	var result MoveResult
	err := b.with(instrument, func(state *State) {
		result = b.engine.MoveToBreakeven(state, buffer)
	})
	return result, err
}

// Close finishes the instrument's stop at the given exit price
func (b *Book) Close(instrument string, exitPrice float64) (UpdateResult, error) {
	var result UpdateResult
	err := b.with(instrument, func(state *State) {
		result = b.engine.Close(state, exitPrice)
		if result.Reason == ReasonClosed {
			b.record(state)
		}
	})
	return result, err
}

// Status returns a snapshot of the instrument's stop
func (b *Book) Status(instrument string) (Status, error) {
	var status Status
	err := b.with(instrument, func(state *State) {
		status = state.Status()
	})
	return status, err
}

// Remove forgets an instrument. Finished results stay in the summary.
func (b *Book) Remove(instrument string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.entries, instrument)
	b.instruments.Remove(instrument)
}

// Instruments returns the tracked instruments in the order they were first opened
func (b *Book) Instruments() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	instruments := make([]string, 0, len(b.entries))
	for instrument := range b.instruments.Iter() {
		instruments = append(instruments, instrument)
	}
	return instruments
}

// Statuses returns a snapshot of every tracked stop, in instrument order
func (b *Book) Statuses() []Status {
	statuses := make([]Status, 0)
	for _, instrument := range b.Instruments() {
		if status, err := b.Status(instrument); err == nil {
			statuses = append(statuses, status)
		}
	}
	return statuses
}

// Summary returns the aggregate of every finished stop
func (b *Book) Summary() Summary {
	b.summaryMu.Lock()
	defer b.summaryMu.Unlock()

	summary := b.summary
	summary.Wins = append([]float64(nil), b.summary.Wins...)
	summary.Losses = append([]float64(nil), b.summary.Losses...)
	return summary
}

func (b *Book) with(instrument string, fn func(*State)) error {
	b.mu.RLock()
	entry, ok := b.entries[instrument]
	b.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%s: %w", instrument, core.ErrPositionNotFound)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	fn(entry.state)
	return nil
}

func (b *Book) record(state *State) {
	b.summaryMu.Lock()
	defer b.summaryMu.Unlock()

	b.summary.Add(state.Status())
}
