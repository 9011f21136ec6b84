package core

// Settings represents the main configuration for the risk engine
type Settings struct {
	Regime   RegimeSettings   // Volatility regime classification
	Trailing TrailingSettings // Trailing stop defaults
}

// RegimeSettings holds the volatility classifier configuration
type RegimeSettings struct {
	Thresholds     [4]float64 // VERY_LOW/LOW, LOW/NORMAL, NORMAL/HIGH, HIGH/EXTREME boundaries
	Multipliers    [5]float64 // Size multiplier per regime, from VERY_LOW to EXTREME
	HistoricalMean float64    // Long-term index mean used by the mean-reversion signal
	MaxIndex       float64    // Hard trading ceiling
	SpikeThreshold float64    // Percentage over the 5-point mean that flags a spike
	BaseHeat       float64    // Portfolio heat before regime scaling, in percent
}

// TrailingSettings holds default trailing stop parameters
type TrailingSettings struct {
	Mode        string  // percentage, absolute or atr
	Amount      float64 // Distance, meaning depends on Mode
	ATRFallback float64 // Explicit percentage used when ATR is missing, 0 keeps the legacy fallback
	ATRPeriod   int     // Period for ATR estimation from candles
	Scaling     string  // none, inverse or direct
}
