package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrowthRate(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		want     float64
	}{
		{"ten percent up", 110, 100, 10},
		{"decline", 90, 100, -10},
		{"zero previous", 50, 0, 0},
		{"negative previous", 50, -100, -150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, GrowthRate(tt.current, tt.previous), 1e-9)
		})
	}
}

func TestCAGR(t *testing.T) {
	// Doubling over ten periods is about 7.18% per period.
	assert.InDelta(t, 7.177346, CAGR(100, 200, 10), 1e-5)
	assert.Equal(t, 0.0, CAGR(0, 200, 10))
	assert.Equal(t, 0.0, CAGR(100, 200, 0))
}

func TestMarketShare(t *testing.T) {
	assert.InDelta(t, 25.0, MarketShare(30, 120), 1e-9)
	assert.Equal(t, 0.0, MarketShare(30, 0))
}

func TestTradeBalanceAndRatio(t *testing.T) {
	assert.Equal(t, 40.0, TradeBalance(100, 60))
	assert.Equal(t, -15.0, TradeBalance(45, 60))

	assert.InDelta(t, 2.0, TradeRatio(120, 60), 1e-9)
	assert.True(t, math.IsInf(TradeRatio(120, 0), 1))
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 2, 3, 4, 5}, 3)
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
	assert.InDelta(t, 2.0, got[2], 1e-9)
	assert.InDelta(t, 3.0, got[3], 1e-9)
	assert.InDelta(t, 4.0, got[4], 1e-9)

	for _, v := range MovingAverage([]float64{1, 2}, 0) {
		assert.True(t, math.IsNaN(v))
	}
}

func TestHHI(t *testing.T) {
	// A single supplier at 100% is maximally concentrated.
	assert.InDelta(t, 10000.0, HHI([]float64{100}), 1e-9)
	// Four equal suppliers.
	assert.InDelta(t, 2500.0, HHI([]float64{25, 25, 25, 25}), 1e-9)
	assert.Equal(t, 0.0, HHI(nil))
}
