package batch

import "github.com/shopspring/decimal"

// TickerResult is an accepted ticker together with its price extremes
type TickerResult struct {
	Ticker  string
	MinLow  decimal.Decimal
	MaxHigh decimal.Decimal
}

// Outcome classifies how a single ticker task ended
type Outcome int

const (
	OutcomeAccepted Outcome = iota
	OutcomeRejected
	OutcomeMissing
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	case OutcomeMissing:
		return "missing"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Summary counts ticker outcomes for one run
type Summary struct {
	Submitted int
	Accepted  int
	Rejected  int
	Missing   int
	Failed    int
}

func (s *Summary) add(o Outcome) {
	switch o {
	case OutcomeAccepted:
		s.Accepted++
	case OutcomeRejected:
		s.Rejected++
	case OutcomeMissing:
		s.Missing++
	case OutcomeFailed:
		s.Failed++
	}
}

// resultRow is the CSV form of a TickerResult
type resultRow struct {
	Ticker  string `csv:"Ticker"`
	MinLow  string `csv:"Min Low"`
	MaxHigh string `csv:"Max High"`
}

// ResultDataPoint represents a single accepted ticker for parquet
type ResultDataPoint struct {
	Ticker  string  `parquet:"name=ticker, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	MinLow  float64 `parquet:"name=min_low, type=DOUBLE, encoding=PLAIN"`
	MaxHigh float64 `parquet:"name=max_high, type=DOUBLE, encoding=PLAIN"`
}
