package trailing

import (
	"fmt"
	"math"
	"strings"

	"github.com/raykavin/volguard/pkg/core"
)

// DefaultStopPercent is the unfavorable distance from entry used when no initial stop is given
const DefaultStopPercent = 2.0

// Params describes a trailing stop at creation time
type Params struct {
	Instrument  string
	EntryPrice  float64
	Side        core.PositionSide
	Mode        Mode     // defaults to ModePercentage
	Amount      float64  // trail distance, meaning depends on Mode
	Quantity    int      // number of units, must be positive
	InitialStop *float64 // optional, may already sit past breakeven; defaults to DefaultStopPercent away from entry
}

// State is the per-position trailing stop record. It is exclusively owned by one
// position and is not safe for concurrent use; Book serializes access per instrument.
type State struct {
	instrument    string
	entryPrice    float64
	side          core.PositionSide
	mode          Mode
	amount        float64
	quantity      int
	currentStop   float64
	extreme       float64
	modifications int
	active        bool
	triggered     bool
	triggerPrice  float64
	exitPrice     float64
}

// NewState validates params and builds an active state
func NewState(p Params) (*State, error) {
	if strings.TrimSpace(p.Instrument) == "" {
		return nil, core.ErrEmptyInstrument
	}

	if !p.Side.Valid() {
		return nil, fmt.Errorf("%s: %w: %q", p.Instrument, core.ErrInvalidSide, p.Side)
	}

	if p.Mode == "" {
		p.Mode = ModePercentage
	}

	if !p.Mode.Valid() {
		return nil, fmt.Errorf("%s: %w: %q", p.Instrument, core.ErrInvalidTrailMode, p.Mode)
	}

	if !(p.EntryPrice > 0) || math.IsInf(p.EntryPrice, 0) {
		return nil, fmt.Errorf("%s: entry %v: %w", p.Instrument, p.EntryPrice, core.ErrInvalidPrice)
	}

	if p.Quantity <= 0 {
		return nil, fmt.Errorf("%s: %d: %w", p.Instrument, p.Quantity, core.ErrInvalidQuantity)
	}

	if !(p.Amount > 0) || math.IsInf(p.Amount, 0) {
		return nil, fmt.Errorf("%s: %v: %w", p.Instrument, p.Amount, core.ErrInvalidTrailAmount)
	}

	stop := defaultStop(p.Side, p.EntryPrice)
	if p.InitialStop != nil {
		stop = *p.InitialStop
		if !(stop > 0) || math.IsInf(stop, 0) {
			return nil, fmt.Errorf("%s: stop %v: %w", p.Instrument, stop, core.ErrInvalidStop)
		}
	}

	return &State{
		instrument:  p.Instrument,
		entryPrice:  p.EntryPrice,
		side:        p.Side,
		mode:        p.Mode,
		amount:      p.Amount,
		quantity:    p.Quantity,
		currentStop: stop,
		extreme:     p.EntryPrice,
		active:      true,
	}, nil
}

// NewStateFromPosition builds a state from an opened position. A zero quantity defaults to 1.
func NewStateFromPosition(position core.Position, mode Mode, amount float64) (*State, error) {
	quantity := position.Quantity
	if quantity == 0 {
		quantity = 1
	}

	return NewState(Params{
		Instrument: position.Instrument,
		EntryPrice: position.EntryPrice,
		Side:       position.Side,
		Mode:       mode,
		Amount:     amount,
		Quantity:   quantity,
	})
}

func defaultStop(side core.PositionSide, entry float64) float64 {
	if side == core.PositionSideShort {
		return entry * (1 + DefaultStopPercent/100)
	}
	return entry * (1 - DefaultStopPercent/100)
}

func (s *State) Instrument() string            { return s.instrument }
func (s *State) EntryPrice() float64           { return s.entryPrice }
func (s *State) Side() core.PositionSide       { return s.side }
func (s *State) Mode() Mode                    { return s.mode }
func (s *State) TrailAmount() float64          { return s.amount }
func (s *State) Quantity() int                 { return s.quantity }
func (s *State) CurrentStop() float64          { return s.currentStop }
func (s *State) ExtremePrice() float64         { return s.extreme }
func (s *State) Modifications() int            { return s.modifications }
func (s *State) Active() bool                  { return s.active }
func (s *State) TriggerPrice() (float64, bool) { return s.triggerPrice, s.triggered }

// pnl returns the signed profit of closing the whole quantity at price
func (s *State) pnl(price float64) float64 {
	return (price - s.entryPrice) * s.side.Sign() * float64(s.quantity)
}

// UnrealizedPnL returns the profit of closing the position at price
func (s *State) UnrealizedPnL(price float64) float64 {
	return s.pnl(price)
}

// ProtectedProfit returns the profit locked in if the current stop is hit.
// It is negative while the stop has not passed breakeven.
func (s *State) ProtectedProfit() float64 {
	return s.pnl(s.currentStop)
}

// RealizedPnL returns the profit at exit, zero while the position is active
func (s *State) RealizedPnL() float64 {
	if s.active {
		return 0
	}
	return s.pnl(s.exitPrice)
}

// Status is a read-only snapshot of a state for reporting collaborators
type Status struct {
	Instrument      string            `json:"instrument"`
	Side            core.PositionSide `json:"side"`
	EntryPrice      float64           `json:"entry_price"`
	CurrentStop     float64           `json:"current_stop"`
	ExtremePrice    float64           `json:"extreme_price"`
	Mode            Mode              `json:"mode"`
	TrailAmount     float64           `json:"trail_amount"`
	Quantity        int               `json:"quantity"`
	Modifications   int               `json:"modifications"`
	Active          bool              `json:"active"`
	TriggerPrice    *float64          `json:"trigger_price,omitempty"`
	ProtectedProfit float64           `json:"protected_profit"`
	RealizedPnL     float64           `json:"realized_pnl"`
}

// Status returns a snapshot of the state
func (s *State) Status() Status {
	status := Status{
		Instrument:      s.instrument,
		Side:            s.side,
		EntryPrice:      s.entryPrice,
		CurrentStop:     s.currentStop,
		ExtremePrice:    s.extreme,
		Mode:            s.mode,
		TrailAmount:     s.amount,
		Quantity:        s.quantity,
		Modifications:   s.modifications,
		Active:          s.active,
		ProtectedProfit: s.ProtectedProfit(),
		RealizedPnL:     s.RealizedPnL(),
	}

	if s.triggered {
		price := s.triggerPrice
		status.TriggerPrice = &price
	}

	return status
}

// String implements fmt.Stringer
func (s *State) String() string {
	status := "ACTIVE"
	switch {
	case s.triggered:
		status = "HIT"
	case !s.active:
		status = "CLOSED"
	}

	return fmt.Sprintf("TrailingStop(%s, %s, entry: %.2f, stop: %.2f, trail: %g %s, modifications: %d, status: %s)",
		s.instrument, s.side, s.entryPrice, s.currentStop, s.amount, s.mode, s.modifications, status)
}
