package core

import (
	"fmt"
	"time"
)

// EventType identifies the kind of market event flowing through the queue
type EventType string

const (
	EventEmergencyPrice EventType = "emergency_price"
	EventBreakingNews   EventType = "breaking_news"
	EventPriceSpike     EventType = "price_spike"
	EventNews           EventType = "news"
	EventStatusUpdate   EventType = "status_update"
)

// Fixed priority table, 1 is the highest priority
var eventPriorities = map[EventType]int{
	EventEmergencyPrice: 1,
	EventBreakingNews:   1,
	EventPriceSpike:     2,
	EventNews:           3,
	EventStatusUpdate:   4,
}

// Priority returns the dispatch priority for the event type.
// Unknown types sink below every known one.
func (t EventType) Priority() int {
	if p, ok := eventPriorities[t]; ok {
		return p
	}
	return len(eventPriorities) + 1
}

// Valid reports whether the event type belongs to the priority table
func (t EventType) Valid() bool {
	_, ok := eventPriorities[t]
	return ok
}

// Event represents a classified market occurrence waiting to be dispatched
type Event struct {
	Type       EventType
	Pair       string
	Price      float64
	Change     float64 // percent over the observation window
	Volatility float64
	Headline   string
	Time       time.Time
}

// Title builds the short alert headline used by notifiers
func (e Event) Title() string {
	switch e.Type {
	case EventEmergencyPrice, EventPriceSpike:
		return fmt.Sprintf("%s PRICE MOVEMENT: %.2f%%", e.Pair, abs(e.Change))
	case EventBreakingNews, EventNews:
		return fmt.Sprintf("%s NEWS: %s", e.Pair, truncate(e.Headline, 30))
	default:
		return string(e.Type)
	}
}

// IsPrice reports whether the event was raised by the price stream
func (e Event) IsPrice() bool {
	return e.Type == EventEmergencyPrice || e.Type == EventPriceSpike
}

// IsNews reports whether the event was raised by the news stream
func (e Event) IsNews() bool {
	return e.Type == EventBreakingNews || e.Type == EventNews
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
