package trailing

import (
	"math"
	"math/rand"
	"testing"

	"github.com/raykavin/volguard/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stopMove struct {
	instrument string
	stop       float64
}

type recorder struct {
	moves []stopMove
}

func (r *recorder) ModifyStop(instrument string, newStop float64) {
	r.moves = append(r.moves, stopMove{instrument, newStop})
}

func ptr(v float64) *float64 { return &v }

func newTestState(t *testing.T, p Params) *State {
	t.Helper()
	state, err := NewState(p)
	require.NoError(t, err)
	return state
}

func TestEngine_LongPercentageScenario(t *testing.T) {
	rec := &recorder{}
	engine := NewEngine(rec)
	state := newTestState(t, Params{
		Instrument: "NIFTY", EntryPrice: 250, Side: core.PositionSideLong,
		Mode: ModePercentage, Amount: 2, Quantity: 10,
	})
	require.InDelta(t, 245.0, state.CurrentStop(), 1e-9)

	result := engine.Update(state, 250, nil)
	require.False(t, result.Moved)
	require.False(t, result.Triggered)

	result = engine.Update(state, 260, nil)
	require.True(t, result.Moved)
	require.InDelta(t, 245.0, result.OldStop, 1e-9)
	require.InDelta(t, 254.8, result.NewStop, 1e-9)
	require.InDelta(t, 100.0, result.UnrealizedPnL, 1e-9)
	require.InDelta(t, 48.0, result.ProtectedProfit, 1e-6)
	require.Equal(t, 1, result.Modifications)
	require.Len(t, rec.moves, 1)
	require.Equal(t, "NIFTY", rec.moves[0].instrument)
	require.InDelta(t, 254.8, rec.moves[0].stop, 1e-9)

	result = engine.Update(state, 255, nil)
	require.False(t, result.Moved)
	require.False(t, result.Triggered)
	require.InDelta(t, 260.0, state.ExtremePrice(), 1e-9)
	require.InDelta(t, 254.8, state.CurrentStop(), 1e-9)

	result = engine.Update(state, 254, nil)
	require.True(t, result.Triggered)
	require.Equal(t, ReasonTriggered, result.Reason)
	require.InDelta(t, 40.0, result.RealizedPnL, 1e-9)
	require.False(t, state.Active())

	price, hit := state.TriggerPrice()
	require.True(t, hit)
	require.Equal(t, 254.0, price)
	require.Len(t, rec.moves, 1)
}

func TestEngine_ShortAbsoluteScenario(t *testing.T) {
	rec := &recorder{}
	engine := NewEngine(rec)
	state := newTestState(t, Params{
		Instrument: "BANKNIFTY", EntryPrice: 180, Side: core.PositionSideShort,
		Mode: ModeAbsolute, Amount: 10, Quantity: 5,
	})
	require.InDelta(t, 183.6, state.CurrentStop(), 1e-9)

	require.False(t, engine.Update(state, 180, nil).Moved)

	result := engine.Update(state, 160, nil)
	require.True(t, result.Moved)
	require.InDelta(t, 170.0, result.NewStop, 1e-9)
	require.InDelta(t, 50.0, result.ProtectedProfit, 1e-9)

	result = engine.Update(state, 172, nil)
	require.True(t, result.Triggered)
	require.InDelta(t, 40.0, result.RealizedPnL, 1e-9)
	require.Len(t, rec.moves, 1)
}

func TestEngine_InactiveIsTerminal(t *testing.T) {
	rec := &recorder{}
	engine := NewEngine(rec)
	state := newTestState(t, Params{
		Instrument: "X", EntryPrice: 100, Side: core.PositionSideLong, Amount: 1, Quantity: 1,
	})

	require.True(t, engine.Update(state, 97, nil).Triggered)
	calls := len(rec.moves)

	for _, price := range []float64{150, 90, 200} {
		result := engine.Update(state, price, nil)
		require.Equal(t, UpdateResult{Instrument: "X", Reason: ReasonInactive}, result)
	}

	require.False(t, engine.ForceMove(state, 150).Applied)
	require.Equal(t, ReasonInactive, engine.MoveToBreakeven(state, 0).Reason)
	require.Equal(t, ReasonInactive, engine.Close(state, 120).Reason)
	require.Len(t, rec.moves, calls)

	price, _ := state.TriggerPrice()
	require.Equal(t, 97.0, price)
}

func TestEngine_RatchetInvariant(t *testing.T) {
	for _, side := range []core.PositionSide{core.PositionSideLong, core.PositionSideShort} {
		for _, mode := range []Mode{ModePercentage, ModeAbsolute, ModeATRMultiple} {
			t.Run(string(side)+"/"+string(mode), func(t *testing.T) {
				rng := rand.New(rand.NewSource(42))
				engine := NewEngine(nil)
				state := newTestState(t, Params{
					Instrument: "RND", EntryPrice: 1000, Side: side,
					Mode: mode, Amount: 3, Quantity: 1, InitialStop: ptr(1000 - side.Sign()*200),
				})

				price := 1000.0
				last := state.CurrentStop()
				for i := 0; i < 500 && state.Active(); i++ {
					price += rng.NormFloat64() * 5
					var atr *float64
					if i%3 != 0 {
						atr = ptr(4 + rng.Float64())
					}
					engine.Update(state, price, atr)

					if side.IsLong() {
						require.GreaterOrEqual(t, state.CurrentStop(), last)
					} else {
						require.LessOrEqual(t, state.CurrentStop(), last)
					}
					last = state.CurrentStop()
				}
			})
		}
	}
}

func TestEngine_ATRMultiple(t *testing.T) {
	t.Run("with atr", func(t *testing.T) {
		engine := NewEngine(nil)
		state := newTestState(t, Params{
			Instrument: "ATR", EntryPrice: 100, Side: core.PositionSideLong,
			Mode: ModeATRMultiple, Amount: 2, Quantity: 1,
		})

		result := engine.Update(state, 110, ptr(3))
		require.True(t, result.Moved)
		require.False(t, result.Degraded)
		require.InDelta(t, 104.0, result.NewStop, 1e-9)
	})

	t.Run("missing atr falls back to the trail amount as percentage", func(t *testing.T) {
		engine := NewEngine(nil)
		state := newTestState(t, Params{
			Instrument: "ATR", EntryPrice: 100, Side: core.PositionSideLong,
			Mode: ModeATRMultiple, Amount: 2, Quantity: 1,
		})

		result := engine.Update(state, 110, nil)
		require.True(t, result.Moved)
		require.True(t, result.Degraded)
		require.InDelta(t, 107.8, result.NewStop, 1e-9)
	})

	t.Run("explicit fallback percentage", func(t *testing.T) {
		engine := NewEngine(nil, WithATRFallback(5))
		state := newTestState(t, Params{
			Instrument: "ATR", EntryPrice: 100, Side: core.PositionSideShort,
			Mode: ModeATRMultiple, Amount: 2, Quantity: 1,
		})

		result := engine.Update(state, 90, ptr(0))
		require.True(t, result.Degraded)
		require.InDelta(t, 94.5, result.NewStop, 1e-9)
	})
}

func TestEngine_ForceMove(t *testing.T) {
	rec := &recorder{}
	engine := NewEngine(rec)
	state := newTestState(t, Params{
		Instrument: "FM", EntryPrice: 100, Side: core.PositionSideLong, Amount: 1, Quantity: 2,
	})

	for _, target := range []float64{98, 97, 50} {
		result := engine.ForceMove(state, target)
		assert.False(t, result.Applied)
		assert.Equal(t, ReasonNotFavorable, result.Reason)
	}
	require.InDelta(t, 98.0, state.CurrentStop(), 1e-9)
	require.Equal(t, 0, state.Modifications())
	require.Empty(t, rec.moves)

	result := engine.ForceMove(state, 99)
	require.True(t, result.Applied)
	require.Equal(t, 1, result.Modifications)
	require.InDelta(t, -2.0, result.ProtectedProfit, 1e-9)
	require.Equal(t, []stopMove{{"FM", 99}}, rec.moves)
}

func TestEngine_MoveToBreakeven(t *testing.T) {
	tests := []struct {
		name    string
		side    core.PositionSide
		buffer  float64
		applied bool
		stop    float64
	}{
		{"long with buffer", core.PositionSideLong, 0.5, true, 100.5},
		{"long at entry", core.PositionSideLong, 0, true, 100},
		{"long below current stop", core.PositionSideLong, -5, false, 98},
		{"short with buffer", core.PositionSideShort, 1, true, 99},
		{"short above current stop", core.PositionSideShort, -3, false, 102},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recorder{}
			engine := NewEngine(rec)
			state := newTestState(t, Params{
				Instrument: "BE", EntryPrice: 100, Side: tc.side, Amount: 1, Quantity: 1,
			})

			result := engine.MoveToBreakeven(state, tc.buffer)
			require.Equal(t, tc.applied, result.Applied)
			require.InDelta(t, tc.stop, state.CurrentStop(), 1e-9)
			if tc.applied {
				require.Len(t, rec.moves, 1)
			} else {
				require.Empty(t, rec.moves)
			}
		})
	}
}

func TestEngine_Close(t *testing.T) {
	engine := NewEngine(nil)
	state := newTestState(t, Params{
		Instrument: "CL", EntryPrice: 100, Side: core.PositionSideShort, Amount: 1, Quantity: 3,
	})

	result := engine.Close(state, 95)
	require.Equal(t, ReasonClosed, result.Reason)
	require.InDelta(t, 15.0, result.RealizedPnL, 1e-9)
	require.False(t, state.Active())

	_, hit := state.TriggerPrice()
	require.False(t, hit)
	require.Contains(t, state.String(), "CLOSED")
}

func TestEngine_InvalidPrice(t *testing.T) {
	rec := &recorder{}
	engine := NewEngine(rec)
	state := newTestState(t, Params{
		Instrument: "IP", EntryPrice: 100, Side: core.PositionSideLong, Amount: 1, Quantity: 1,
	})

	result := engine.Update(state, -1, nil)
	require.Equal(t, ReasonInvalidPrice, result.Reason)
	require.True(t, state.Active())
	require.Empty(t, rec.moves)
}

func TestNewState_Validation(t *testing.T) {
	valid := Params{Instrument: "V", EntryPrice: 100, Side: core.PositionSideLong, Amount: 1, Quantity: 1}

	tests := []struct {
		name   string
		mutate func(*Params)
		err    error
	}{
		{"empty instrument", func(p *Params) { p.Instrument = " " }, core.ErrEmptyInstrument},
		{"invalid side", func(p *Params) { p.Side = "FLAT" }, core.ErrInvalidSide},
		{"invalid mode", func(p *Params) { p.Mode = "FIBONACCI" }, core.ErrInvalidTrailMode},
		{"zero entry", func(p *Params) { p.EntryPrice = 0 }, core.ErrInvalidPrice},
		{"zero quantity", func(p *Params) { p.Quantity = 0 }, core.ErrInvalidQuantity},
		{"negative quantity", func(p *Params) { p.Quantity = -3 }, core.ErrInvalidQuantity},
		{"zero amount", func(p *Params) { p.Amount = 0 }, core.ErrInvalidTrailAmount},
		{"negative amount", func(p *Params) { p.Amount = -1 }, core.ErrInvalidTrailAmount},
		{"zero stop", func(p *Params) { p.InitialStop = ptr(0) }, core.ErrInvalidStop},
		{"infinite stop", func(p *Params) { p.InitialStop = ptr(math.Inf(1)) }, core.ErrInvalidStop},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			_, err := NewState(p)
			require.ErrorIs(t, err, tc.err)
		})
	}

	state, err := NewState(valid)
	require.NoError(t, err)
	require.Equal(t, ModePercentage, state.Mode())
}

func TestNewState_StopPastBreakeven(t *testing.T) {
	state, err := NewState(Params{
		Instrument: "REBUILT", EntryPrice: 100, Side: core.PositionSideLong,
		Amount: 2, Quantity: 2, InitialStop: ptr(105),
	})
	require.NoError(t, err)
	require.Equal(t, 105.0, state.CurrentStop())
	require.InDelta(t, 10.0, state.ProtectedProfit(), 1e-9)

	result := NewEngine(nil).Update(state, 104, nil)
	require.True(t, result.Triggered)
	require.InDelta(t, 8.0, result.RealizedPnL, 1e-9)
}

func TestNewStateFromPosition(t *testing.T) {
	state, err := NewStateFromPosition(core.Position{
		Instrument: "POS", EntryPrice: 50, Side: core.PositionSideShort,
	}, ModeAbsolute, 2)
	require.NoError(t, err)
	require.Equal(t, 1, state.Quantity())
	require.InDelta(t, 51.0, state.CurrentStop(), 1e-9)

	status := state.Status()
	require.Equal(t, "POS", status.Instrument)
	require.True(t, status.Active)
	require.Nil(t, status.TriggerPrice)
	require.InDelta(t, -1.0, status.ProtectedProfit, 1e-9)
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("atr")
	require.NoError(t, err)
	require.Equal(t, ModeATRMultiple, mode)

	_, err = ParseMode("ladder")
	require.ErrorIs(t, err, core.ErrInvalidTrailMode)
}
