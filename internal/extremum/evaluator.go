// Package extremum computes the price extremes of a candle series and decides
// whether the swing between them falls inside a percentage-change band.
package extremum

import (
	"errors"

	"github.com/sabarim/extremascan/internal/candles"
	"github.com/shopspring/decimal"
)

// ErrDegenerateSeries is returned when the minimum low is zero or negative,
// which leaves the percentage change undefined.
var ErrDegenerateSeries = errors.New("degenerate series: minimum low is not positive")

var hundred = decimal.NewFromInt(100)

// Band is the inclusive percentage-change acceptance range.
type Band struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// NewBand builds a band from configured float thresholds.
func NewBand(min, max float64) Band {
	return Band{Min: decimal.NewFromFloat(min), Max: decimal.NewFromFloat(max)}
}

// Contains reports whether change lies within the band, bounds included.
func (b Band) Contains(change decimal.Decimal) bool {
	return change.GreaterThanOrEqual(b.Min) && change.LessThanOrEqual(b.Max)
}

// Extremes holds the minimum low and maximum high of a series
type Extremes struct {
	MinLow  decimal.Decimal
	MaxHigh decimal.Decimal
}

// PercentageChange returns (MaxHigh - MinLow) / MinLow * 100.
func (e Extremes) PercentageChange() (decimal.Decimal, error) {
	if !e.MinLow.IsPositive() {
		return decimal.Decimal{}, ErrDegenerateSeries
	}
	return e.MaxHigh.Sub(e.MinLow).Mul(hundred).Div(e.MinLow), nil
}

// Find scans the series for its extremes. ok is false for an empty series.
func Find(series candles.Series) (extremes Extremes, ok bool) {
	if len(series) == 0 {
		return Extremes{}, false
	}
	extremes = Extremes{MinLow: series[0].Low, MaxHigh: series[0].High}
	for _, c := range series[1:] {
		if c.Low.LessThan(extremes.MinLow) {
			extremes.MinLow = c.Low
		}
		if c.High.GreaterThan(extremes.MaxHigh) {
			extremes.MaxHigh = c.High
		}
	}
	return extremes, true
}

// Evaluate returns the extremes of series when its percentage change lies in
// band. An empty series or a change outside the band yields ok == false with
// a nil error; a non-positive minimum low yields ErrDegenerateSeries.
func Evaluate(series candles.Series, band Band) (Extremes, bool, error) {
	extremes, ok := Find(series)
	if !ok {
		return Extremes{}, false, nil
	}

	change, err := extremes.PercentageChange()
	if err != nil {
		return Extremes{}, false, err
	}

	if !band.Contains(change) {
		return Extremes{}, false, nil
	}
	return extremes, true, nil
}
