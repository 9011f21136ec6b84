// Package indicator wraps the go-talib volatility studies used to feed ATR
// estimates to the trailing stop engine.
package indicator

import "github.com/markcheno/go-talib"

// ATR calculates Average True Range
func ATR(high []float64, low []float64, close []float64, period int) []float64 {
	return talib.Atr(high, low, close, period)
}

// TrueRange calculates the True Range of each bar
func TrueRange(high []float64, low []float64, close []float64) []float64 {
	return talib.TRange(high, low, close)
}

// ATREstimates returns one ATR estimate per bar, nil while the study is warming up.
// The result plugs directly into trailing.Engine.Update.
func ATREstimates(high []float64, low []float64, close []float64, period int) []*float64 {
	estimates := make([]*float64, len(close))
	if period <= 0 || len(close) <= period || len(high) != len(close) || len(low) != len(close) {
		return estimates
	}

	values := ATR(high, low, close, period)
	for i := period; i < len(values); i++ {
		if values[i] > 0 {
			v := values[i]
			estimates[i] = &v
		}
	}

	return estimates
}
