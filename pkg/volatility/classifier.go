package volatility

import (
	"fmt"

	"github.com/raykavin/volguard/pkg/logger"
	"github.com/raykavin/volguard/pkg/metric"
)

// SpikeWindow is the number of recent readings averaged by DetectSpike
const SpikeWindow = 5

// Signal is the volatility mean-reversion call
type Signal string

// Mean-reversion signals
const (
	SignalSellVolatility Signal = "SELL_VOLATILITY"
	SignalBuyVolatility  Signal = "BUY_VOLATILITY"
	SignalNeutral        Signal = "NEUTRAL"
)

// Classifier maps index readings to regimes and derived guidance. It holds only
// immutable configuration and is safe for concurrent use.
type Classifier struct {
	cfg Config
	log logger.Logger
}

// Option is a functional option for configuring a Classifier
type Option func(*Classifier)

// WithLogger sets the logger used for spike and gate diagnostics
func WithLogger(log logger.Logger) Option {
	return func(c *Classifier) {
		c.log = log
	}
}

// NewClassifier validates cfg and creates a classifier
func NewClassifier(cfg Config, options ...Option) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	classifier := &Classifier{cfg: cfg, log: logger.Nop{}}
	for _, option := range options {
		option(classifier)
	}

	return classifier, nil
}

// MustClassifier is like NewClassifier but panics on an invalid config
func MustClassifier(cfg Config, options ...Option) *Classifier {
	classifier, err := NewClassifier(cfg, options...)
	if err != nil {
		panic(err)
	}
	return classifier
}

// Config returns the classifier configuration
func (c *Classifier) Config() Config {
	return c.cfg
}

// Classify maps an index reading to a regime. Each boundary belongs to the regime
// above it. NaN readings classify as EXTREME.
func (c *Classifier) Classify(vix float64) Regime {
	for i, threshold := range c.cfg.Thresholds {
		if vix < threshold {
			return Regime(i)
		}
	}
	return RegimeExtreme
}

// SizeMultiplier returns the position size multiplier of a regime
func (c *Classifier) SizeMultiplier(regime Regime) float64 {
	if regime < RegimeVeryLow || regime > RegimeExtreme {
		panic("volatility: unhandled regime " + regime.String())
	}
	return c.cfg.Multipliers[regime]
}

// Recommend returns the strategy guidance of a regime
func (c *Classifier) Recommend(regime Regime) Guidance {
	return Recommend(regime)
}

// DetectSpike compares current against the mean of the last SpikeWindow readings and
// flags a spike when the rise exceeds thresholdPct percent. With fewer readings it
// never flags.
func (c *Classifier) DetectSpike(history *History, current, thresholdPct float64) (bool, string) {
	if history.Len() < SpikeWindow {
		return false, ""
	}

	mean := metric.Mean(history.Last(SpikeWindow))
	if mean <= 0 {
		return false, ""
	}

	change := metric.PercentChange(current, mean)
	if !(change > thresholdPct) {
		return false, ""
	}

	message := fmt.Sprintf("volatility spike: %.1f (+%.1f%% from %d-point mean %.1f), reduce positions and widen stops",
		current, change, SpikeWindow, mean)

	c.log.WithFields(map[string]any{
		"vix":    current,
		"mean":   mean,
		"change": change,
	}).Warn("volatility spike detected")

	return true, message
}

// MeanReversionSignal calls SELL_VOLATILITY above 1.5x mean, BUY_VOLATILITY below
// 0.7x mean and NEUTRAL otherwise. A non-positive mean uses the configured one.
func (c *Classifier) MeanReversionSignal(current, mean float64) (Signal, string) {
	if mean <= 0 {
		mean = c.cfg.HistoricalMean
	}

	switch {
	case current > mean*1.5:
		return SignalSellVolatility, fmt.Sprintf(
			"index at %.1f is elevated (mean: %.1f), consider selling premium or volatility products", current, mean)
	case current < mean*0.7:
		return SignalBuyVolatility, fmt.Sprintf(
			"index at %.1f is depressed (mean: %.1f), consider buying options or long volatility positions", current, mean)
	default:
		return SignalNeutral, fmt.Sprintf("index at %.1f near historical mean (%.1f)", current, mean)
	}
}

// ShouldTrade blocks trading above maxVIX and, separately, in the EXTREME regime.
// A non-positive maxVIX uses the configured ceiling.
func (c *Classifier) ShouldTrade(vix, maxVIX float64) (bool, string) {
	if maxVIX <= 0 {
		maxVIX = c.cfg.MaxIndex
	}

	if vix > maxVIX {
		return false, fmt.Sprintf("index too high (%.1f > %.1f), market in crisis mode, stop trading", vix, maxVIX)
	}

	regime := c.Classify(vix)
	if regime == RegimeExtreme {
		return false, "extreme volatility regime, only defensive trades allowed"
	}

	return true, fmt.Sprintf("ok to trade (index: %.1f, regime: %s)", vix, regime)
}

// AdjustedPortfolioHeat scales baseHeat by the size multiplier of the reading's regime
func (c *Classifier) AdjustedPortfolioHeat(vix, baseHeat float64) float64 {
	return baseHeat * c.SizeMultiplier(c.Classify(vix))
}
