// Package metric provides the statistics used by the volatility signals and trade summaries.
package metric

import (
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of the values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// StdDev calculates the sample standard deviation, zero for fewer than two values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// PercentChange returns (current - reference) / reference * 100.
// A zero reference yields 0 instead of an infinity.
func PercentChange(current, reference float64) float64 {
	if reference == 0 {
		return 0
	}
	return (current - reference) / reference * 100
}

// ZScore returns how many standard deviations current sits from the mean of values.
func ZScore(values []float64, current float64) float64 {
	mean, std := Mean(values), StdDev(values)
	if std == 0 {
		return 0
	}
	return stat.StdScore(current, mean, std)
}

// ProfitFactor calculates the ratio of total profits to total losses.
// Returns 10 when there are no losses.
func ProfitFactor(values []float64) float64 {
	wins, losses := lo.FilterReject(values, func(v float64, _ int) bool { return v >= 0 })

	totalLosses := lo.Sum(losses)
	if totalLosses == 0 {
		return 10
	}

	return math.Abs(lo.Sum(wins) / totalLosses)
}
