package riskadjust

import (
	"testing"

	"github.com/raykavin/volguard/pkg/core"
	"github.com/raykavin/volguard/pkg/trailing"
	"github.com/raykavin/volguard/pkg/volatility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCombiner(options ...Option) *Combiner {
	return New(volatility.MustClassifier(volatility.DefaultConfig()), trailing.NewEngine(nil), options...)
}

func TestAssess(t *testing.T) {
	c := newCombiner()

	assessment := c.Assess(20)
	require.Equal(t, volatility.RegimeNormal, assessment.Regime)
	require.Equal(t, 0.8, assessment.SizeMultiplier)
	require.True(t, assessment.Tradeable)
	require.Equal(t, "MODERATE", assessment.Guidance.RiskLevel)

	assessment = c.Assess(45)
	require.False(t, assessment.Tradeable)
	require.Equal(t, volatility.RegimeExtreme, assessment.Regime)
}

func TestScaleTrail(t *testing.T) {
	tests := []struct {
		name    string
		scaling Scaling
		vix     float64
		want    float64
	}{
		{"none keeps amount", NoScaling, 30, 2},
		{"inverse widens in high regime", InverseScaling, 30, 4},
		{"direct tightens in high regime", DirectScaling, 30, 1},
		{"inverse unchanged in calm regime", InverseScaling, 10, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newCombiner(WithScaling(tc.scaling))
			assert.InDelta(t, tc.want, c.ScaleTrail(2, tc.vix), 1e-9)
		})
	}
}

func TestScaleSize(t *testing.T) {
	c := newCombiner()
	assert.Equal(t, 10, c.ScaleSize(10, 11))
	assert.Equal(t, 8, c.ScaleSize(10, 20))
	assert.Equal(t, 5, c.ScaleSize(10, 30))
	assert.Equal(t, 3, c.ScaleSize(10, 38))
	assert.Equal(t, 1, c.ScaleSize(1, 38))
}

func TestOpen(t *testing.T) {
	c := newCombiner(WithScaling(InverseScaling))
	params := trailing.Params{
		Instrument: "NIFTY", EntryPrice: 250, Side: core.PositionSideLong,
		Mode: trailing.ModePercentage, Amount: 1, Quantity: 10,
	}

	state, assessment, err := c.Open(params, 30)
	require.NoError(t, err)
	require.Equal(t, volatility.RegimeHigh, assessment.Regime)
	require.InDelta(t, 2.0, state.TrailAmount(), 1e-9)
	require.Equal(t, 5, state.Quantity())

	state, assessment, err = c.Open(params, 41)
	require.ErrorIs(t, err, core.ErrTradingHalted)
	require.Nil(t, state)
	require.False(t, assessment.Tradeable)

	_, _, err = c.Open(params, 36)
	require.ErrorIs(t, err, core.ErrTradingHalted)

	params.Quantity = 0
	_, _, err = c.Open(params, 20)
	require.ErrorIs(t, err, core.ErrInvalidQuantity)
}

func TestParseScaling(t *testing.T) {
	scaling, err := ParseScaling("inverse")
	require.NoError(t, err)
	require.InDelta(t, 4.0, scaling(2, 0.5), 1e-9)

	_, err = ParseScaling("sideways")
	require.Error(t, err)
}

func TestPrepare(t *testing.T) {
	c := New(volatility.MustClassifier(volatility.DefaultConfig()), trailing.NewEngine(nil),
		WithScaling(DirectScaling))

	params := trailing.Params{
		Instrument: "NIFTY", EntryPrice: 22000, Side: core.PositionSideShort,
		Mode: trailing.ModeAbsolute, Amount: 100, Quantity: 3,
	}

	prepared, assessment, err := c.Prepare(params, 20)
	require.NoError(t, err)
	require.Equal(t, volatility.RegimeNormal, assessment.Regime)
	require.InDelta(t, 80.0, prepared.Amount, 1e-9)
	require.Equal(t, 2, prepared.Quantity)
	require.Equal(t, 100.0, params.Amount)

	_, _, err = c.Prepare(params, 50)
	require.ErrorIs(t, err, core.ErrTradingHalted)
}
