// Package stats provides scalar trade-statistics calculations used by
// report summaries and downstream consumers: growth rates, market shares,
// trade balances and concentration measures.
package stats

import "math"

// GrowthRate returns the period-over-period growth rate as a percentage.
// A zero previous value yields 0.
func GrowthRate(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// CAGR returns the compound annual growth rate as a percentage over the
// given number of periods. Non-positive start values or periods yield 0.
func CAGR(startValue, endValue float64, periods int) float64 {
	if startValue <= 0 || periods <= 0 {
		return 0
	}
	return (math.Pow(endValue/startValue, 1/float64(periods)) - 1) * 100
}

// MarketShare returns value/total as a percentage. A zero total yields 0.
func MarketShare(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return value / total * 100
}

// TradeBalance returns exports minus imports; positive means surplus.
func TradeBalance(exportValue, importValue float64) float64 {
	return exportValue - importValue
}

// TradeRatio returns the export/import ratio. A zero import value yields
// +Inf.
func TradeRatio(exportValue, importValue float64) float64 {
	if importValue == 0 {
		return math.Inf(1)
	}
	return exportValue / importValue
}

// MovingAverage returns the trailing moving average of the series with the
// given window. Positions with fewer than window prior values are NaN,
// mirroring an incomplete window. A window below one returns all NaN.
func MovingAverage(series []float64, window int) []float64 {
	out := make([]float64, len(series))
	for i := range out {
		out[i] = math.NaN()
	}
	if window < 1 {
		return out
	}
	sum := 0.0
	for i, v := range series {
		sum += v
		if i >= window {
			sum -= series[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// HHI returns the Herfindahl-Hirschman concentration index: the sum of
// squared percentage shares. Shares are expected in percent (0-100).
func HHI(sharesPct []float64) float64 {
	total := 0.0
	for _, s := range sharesPct {
		total += s * s
	}
	return total
}
