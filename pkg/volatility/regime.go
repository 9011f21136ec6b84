// Package volatility classifies a volatility-index reading into a discrete regime and
// derives position sizing and strategy guidance from it.
package volatility

import (
	"fmt"
	"math"

	"github.com/raykavin/volguard/pkg/core"
)

// Regime is a discrete volatility level, ordered from calmest to most stressed
type Regime int

const (
	RegimeVeryLow Regime = iota
	RegimeLow
	RegimeNormal
	RegimeHigh
	RegimeExtreme
)

// Regimes lists every regime in ascending severity
var Regimes = []Regime{RegimeVeryLow, RegimeLow, RegimeNormal, RegimeHigh, RegimeExtreme}

// String implements fmt.Stringer
func (r Regime) String() string {
	switch r {
	case RegimeVeryLow:
		return "VERY_LOW"
	case RegimeLow:
		return "LOW"
	case RegimeNormal:
		return "NORMAL"
	case RegimeHigh:
		return "HIGH"
	case RegimeExtreme:
		return "EXTREME"
	}
	return fmt.Sprintf("Regime(%d)", int(r))
}

// MarshalText implements encoding.TextMarshaler
func (r Regime) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Config holds the classifier parameters
type Config struct {
	Thresholds     [4]float64 // upper bounds of VERY_LOW, LOW, NORMAL and HIGH
	Multipliers    [5]float64 // position size multiplier per regime
	HistoricalMean float64    // long-term index mean for the mean-reversion signal
	MaxIndex       float64    // hard trading ceiling
	SpikeThreshold float64    // percent over the recent mean that flags a spike
	BaseHeat       float64    // portfolio heat before regime scaling, in percent
}

// DefaultConfig returns the India VIX calibrated defaults
func DefaultConfig() Config {
	return Config{
		Thresholds:     [4]float64{12, 15, 25, 35},
		Multipliers:    [5]float64{1.0, 1.0, 0.8, 0.5, 0.3},
		HistoricalMean: 17.5,
		MaxIndex:       40,
		SpikeThreshold: 30,
		BaseHeat:       6.0,
	}
}

// ConfigFromSettings maps core settings onto a classifier config
func ConfigFromSettings(settings core.RegimeSettings) Config {
	return Config{
		Thresholds:     settings.Thresholds,
		Multipliers:    settings.Multipliers,
		HistoricalMean: settings.HistoricalMean,
		MaxIndex:       settings.MaxIndex,
		SpikeThreshold: settings.SpikeThreshold,
		BaseHeat:       settings.BaseHeat,
	}
}

// Validate checks that thresholds ascend strictly and that the multipliers stay in
// (0,1] without increasing as severity grows
func (c Config) Validate() error {
	for i, threshold := range c.Thresholds {
		if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
			return fmt.Errorf("threshold %d is %v: %w", i, threshold, core.ErrInvalidThresholds)
		}
		if i > 0 && threshold <= c.Thresholds[i-1] {
			return fmt.Errorf("%v after %v: %w", threshold, c.Thresholds[i-1], core.ErrInvalidThresholds)
		}
	}

	for i, multiplier := range c.Multipliers {
		if !(multiplier > 0 && multiplier <= 1) {
			return fmt.Errorf("%s multiplier %v: %w", Regime(i), multiplier, core.ErrInvalidMultipliers)
		}
		if i > 0 && multiplier > c.Multipliers[i-1] {
			return fmt.Errorf("%s multiplier %v exceeds %s: %w",
				Regime(i), multiplier, Regime(i-1), core.ErrInvalidMultipliers)
		}
	}

	if c.HistoricalMean <= 0 || c.MaxIndex <= 0 || c.SpikeThreshold < 0 || c.BaseHeat < 0 {
		return fmt.Errorf("mean %v, max index %v, spike threshold %v, base heat %v: %w",
			c.HistoricalMean, c.MaxIndex, c.SpikeThreshold, c.BaseHeat, core.ErrNegativeValue)
	}

	return nil
}
