package core

import (
	"fmt"
	"time"
)

// Alert is the persisted record of a dispatched notification
type Alert struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Type       EventType `json:"type" gorm:"index"`
	Pair       string    `json:"pair" gorm:"index"`
	Price      float64   `json:"price"`
	Change     float64   `json:"change"`
	Volatility float64   `json:"volatility"`
	Headline   string    `json:"headline"`
	Message    string    `json:"message"`
	CallID     string    `json:"call_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (a Alert) String() string {
	if a.Headline != "" {
		return fmt.Sprintf("[%s] %s: %s", a.Type, a.Pair, a.Headline)
	}
	return fmt.Sprintf("[%s] %s: %.2f%% @ %.4f", a.Type, a.Pair, a.Change, a.Price)
}

// AlertFilter is a predicate applied when reading alerts back
type AlertFilter func(alert Alert) bool

// WithPair filters alerts for a single currency pair
func WithPair(pair string) AlertFilter {
	return func(alert Alert) bool {
		return alert.Pair == pair
	}
}

// WithType filters alerts by event type
func WithType(eventType EventType) AlertFilter {
	return func(alert Alert) bool {
		return alert.Type == eventType
	}
}

// CreatedSince filters alerts dispatched at or after the given time
func CreatedSince(t time.Time) AlertFilter {
	return func(alert Alert) bool {
		return !alert.CreatedAt.Before(t)
	}
}
