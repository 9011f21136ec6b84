// Package trailing implements a ratcheting trailing stop engine. A State tracks one
// open position; the Engine applies market ticks and overrides to it and reports every
// accepted stop move to a core.StopModifier.
package trailing

import (
	"math"

	"github.com/raykavin/volguard/pkg/core"
	"github.com/raykavin/volguard/pkg/logger"
)

// Engine applies the trailing rules to states. It holds no per-position data,
// so one Engine may serve any number of states.
type Engine struct {
	modifier    core.StopModifier
	log         logger.Logger
	atrFallback float64
}

// Option is a functional option for configuring an Engine
type Option func(*Engine)

// WithLogger sets the logger used for stop diagnostics
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithATRFallback sets the percentage trail used when an ATR_MULTIPLE state receives
// a tick without ATR. Without it the state's own amount is read as a percentage.
func WithATRFallback(percent float64) Option {
	return func(e *Engine) {
		e.atrFallback = percent
	}
}

// NewEngine creates an engine reporting accepted moves to modifier, which may be nil
func NewEngine(modifier core.StopModifier, options ...Option) *Engine {
	engine := &Engine{
		modifier: modifier,
		log:      logger.Nop{},
	}

	for _, option := range options {
		option(engine)
	}

	return engine
}

// Open validates params and creates a new active state
func (e *Engine) Open(p Params) (*State, error) {
	state, err := NewState(p)
	if err != nil {
		return nil, err
	}

	e.log.WithFields(map[string]any{
		"instrument": state.instrument,
		"side":       state.side,
		"entry":      state.entryPrice,
		"mode":       state.mode,
		"amount":     state.amount,
		"stop":       state.currentStop,
	}).Info("trailing stop created")

	return state, nil
}

// Update feeds a market price, and optionally an ATR estimate, to the state.
// The stop only ratchets in the position's favor. The trigger test runs after the
// move attempt, against the possibly updated stop.
func (e *Engine) Update(state *State, price float64, atr *float64) UpdateResult {
	if !state.active {
		return UpdateResult{Instrument: state.instrument, Reason: ReasonInactive}
	}

	if !(price > 0) || math.IsInf(price, 0) {
		result := e.snapshot(state, 0, ReasonInvalidPrice)
		result.Price, result.UnrealizedPnL = price, 0
		return result
	}

	oldStop := state.currentStop
	moved, degraded := false, false

	if state.side.MoreFavorable(price, state.extreme) {
		state.extreme = price

		var candidate float64
		candidate, degraded = e.candidate(state, usableATR(atr))
		if state.side.MoreFavorable(candidate, state.currentStop) {
			state.currentStop = candidate
			moved = true
		}
	}

	if e.hit(state, price) {
		return e.trigger(state, price, oldStop, degraded)
	}

	result := e.snapshot(state, price, ReasonUnchanged)
	result.OldStop = oldStop
	result.Degraded = degraded

	if moved {
		e.accept(state, oldStop)
		result.Moved = true
		result.Reason = ReasonMoved
		result.Modifications = state.modifications
		result.ProtectedProfit = state.ProtectedProfit()
	}

	return result
}

// ForceMove moves the stop to newStop when it is strictly more favorable than the
// current one. Rejected moves leave the state untouched and fire no callback.
func (e *Engine) ForceMove(state *State, newStop float64) MoveResult {
	result := e.move(state, newStop)
	if !result.Applied && result.Reason == ReasonNotFavorable {
		e.log.WithFields(map[string]any{
			"instrument": state.instrument,
			"side":       state.side,
			"requested":  newStop,
			"stop":       state.currentStop,
		}).Warn("stop override rejected")
	}
	return result
}

// MoveToBreakeven moves the stop to entry plus buffer (LONG) or entry minus buffer
// (SHORT). It silently does nothing when that level is not more favorable.
func (e *Engine) MoveToBreakeven(state *State, buffer float64) MoveResult {
	target := state.entryPrice + state.side.Sign()*buffer
	result := e.move(state, target)
	if result.Applied {
		e.log.WithFields(map[string]any{
			"instrument": state.instrument,
			"buffer":     buffer,
		}).Info("stop moved to breakeven")
	}
	return result
}

// Close ends tracking at the caller's exit price without a stop hit
func (e *Engine) Close(state *State, exitPrice float64) UpdateResult {
	if !state.active {
		return UpdateResult{Instrument: state.instrument, Reason: ReasonInactive}
	}

	state.active = false
	state.exitPrice = exitPrice

	result := e.snapshot(state, exitPrice, ReasonClosed)
	result.RealizedPnL = state.RealizedPnL()

	e.log.WithFields(map[string]any{
		"instrument": state.instrument,
		"exit":       exitPrice,
		"pnl":        result.RealizedPnL,
	}).Info("trailing stop closed")

	return result
}

func (e *Engine) move(state *State, newStop float64) MoveResult {
	result := MoveResult{
		Instrument:      state.instrument,
		OldStop:         state.currentStop,
		NewStop:         state.currentStop,
		Modifications:   state.modifications,
		ProtectedProfit: state.ProtectedProfit(),
	}

	if !state.active {
		result.Reason = ReasonInactive
		return result
	}

	if math.IsNaN(newStop) || !state.side.MoreFavorable(newStop, state.currentStop) {
		result.Reason = ReasonNotFavorable
		return result
	}

	oldStop := state.currentStop
	state.currentStop = newStop
	e.accept(state, oldStop)

	result.Applied = true
	result.Reason = ReasonMoved
	result.NewStop = newStop
	result.Modifications = state.modifications
	result.ProtectedProfit = state.ProtectedProfit()
	return result
}

// accept books a stop move that has already been written to the state
func (e *Engine) accept(state *State, oldStop float64) {
	state.modifications++

	if e.modifier != nil {
		e.modifier.ModifyStop(state.instrument, state.currentStop)
	}

	e.log.WithFields(map[string]any{
		"instrument":    state.instrument,
		"old_stop":      oldStop,
		"new_stop":      state.currentStop,
		"modifications": state.modifications,
	}).Info("trailing stop moved")
}

func (e *Engine) candidate(state *State, atr *float64) (stop float64, degraded bool) {
	if stop, ok := state.mode.candidate(state.side, state.extreme, state.amount, atr); ok {
		return stop, false
	}

	amount := state.amount
	if e.atrFallback > 0 {
		amount = e.atrFallback
	}

	e.log.WithFields(map[string]any{
		"instrument": state.instrument,
		"amount":     amount,
		"explicit":   e.atrFallback > 0,
	}).Warn("ATR required for ATR_MULTIPLE trailing, using percentage instead")

	stop, _ = ModePercentage.candidate(state.side, state.extreme, amount, nil)
	return stop, true
}

func (e *Engine) hit(state *State, price float64) bool {
	if state.side == core.PositionSideShort {
		return price >= state.currentStop
	}
	return price <= state.currentStop
}

func (e *Engine) trigger(state *State, price, oldStop float64, degraded bool) UpdateResult {
	state.active = false
	state.triggered = true
	state.triggerPrice = price
	state.exitPrice = price

	result := e.snapshot(state, price, ReasonTriggered)
	result.Triggered = true
	result.Degraded = degraded
	result.OldStop = oldStop
	result.RealizedPnL = state.RealizedPnL()

	e.log.WithFields(map[string]any{
		"instrument": state.instrument,
		"price":      price,
		"pnl":        result.RealizedPnL,
	}).Warn("trailing stop hit")

	return result
}

func (e *Engine) snapshot(state *State, price float64, reason string) UpdateResult {
	return UpdateResult{
		Instrument:      state.instrument,
		Reason:          reason,
		Price:           price,
		OldStop:         state.currentStop,
		NewStop:         state.currentStop,
		ExtremePrice:    state.extreme,
		Modifications:   state.modifications,
		UnrealizedPnL:   state.UnrealizedPnL(price),
		ProtectedProfit: state.ProtectedProfit(),
	}
}

// usableATR drops missing, non-finite or non-positive estimates
func usableATR(atr *float64) *float64 {
	if atr == nil || !(*atr > 0) || math.IsInf(*atr, 0) {
		return nil
	}
	return atr
}
