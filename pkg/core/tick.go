package core

import "time"

// Tick represents a single quote observation for a currency pair
type Tick struct {
	Pair   string
	Price  float64
	Change float64 // percent change against the previous quote
	Time   time.Time
}

// IsEmpty checks if the tick contains no significant data
func (t Tick) IsEmpty() bool { return t.Pair == "" && t.Price == 0 }

// NewsItem represents a single market headline tied to a currency pair
type NewsItem struct {
	Headline string
	Pair     string
	Time     time.Time
}
