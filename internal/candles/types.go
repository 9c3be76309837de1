package candles

import "github.com/shopspring/decimal"

// Candle represents one trading day of a ticker. Only the price extremes are kept.
type Candle struct {
	Low  decimal.Decimal
	High decimal.Decimal
}

// Series is the full set of daily candles loaded from one ticker file
type Series []Candle
