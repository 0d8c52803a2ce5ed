package core

import (
	"strings"
	"time"
)

// Settings represents the main configuration for the monitoring agent
type Settings struct {
	Pairs          []string         // Currency pairs to monitor, e.g. EUR/USD
	Thresholds     Thresholds       // Percent-change alert thresholds
	NewsKeywords   []string         // Headlines must match one to raise an event
	Cooldown       time.Duration    // Per-pair suppression window after an alert
	PollInterval   time.Duration    // Quote stream update interval
	NewsInterval   time.Duration    // News stream sampling interval
	StatusInterval time.Duration    // Periodic status report interval
	Sessions       []Session        // Trading sessions during which alerts fire
	VoiceCeiling   int              // Max priority that still places a voice call
	Telegram       TelegramSettings // Telegram notification settings
}

// Thresholds holds the fixed percent-change table used to classify
// price movements
type Thresholds struct {
	Emergency float64 // Absolute percent change for an emergency event
	Spike     float64 // Absolute percent change for a spike event
}

// Classify maps a percent change to an event type.
// The boolean is false when the movement is below every threshold.
func (t Thresholds) Classify(changePct float64) (EventType, bool) {
	change := abs(changePct)

	switch {
	case change > t.Emergency:
		return EventEmergencyPrice, true
	case change > t.Spike:
		return EventPriceSpike, true
	default:
		return "", false
	}
}

// TelegramSettings holds configuration for Telegram integration
type TelegramSettings struct {
	Enabled bool   // Whether Telegram notifications are enabled
	Token   string // Telegram bot token
	Users   []int  // List of authorized user IDs
}

// Session is a trading session window in UTC hours, [Open, Close).
// Sessions crossing midnight wrap, e.g. Open 23 Close 8.
type Session struct {
	Name  string
	Open  int
	Close int
}

// Contains reports whether the UTC hour falls inside the session
func (s Session) Contains(hour int) bool {
	if s.Open <= s.Close {
		return hour >= s.Open && hour < s.Close
	}
	return hour >= s.Open || hour < s.Close
}

// DefaultSettings returns the agent defaults: the monitored majors,
// the fixed threshold table and the forex session windows.
func DefaultSettings() *Settings {
	return &Settings{
		Pairs: []string{"EUR/USD", "USD/JPY", "GBP/USD", "AUD/USD", "USD/KES"},
		Thresholds: Thresholds{
			Emergency: 1.5,
			Spike:     0.8,
		},
		NewsKeywords:   []string{"interest rate", "inflation", "policy", "crisis", "war"},
		Cooldown:       5 * time.Minute,
		PollInterval:   500 * time.Millisecond,
		NewsInterval:   5 * time.Second,
		StatusInterval: time.Minute,
		Sessions: []Session{
			{Name: "asia", Open: 0, Close: 8},
			{Name: "europe", Open: 7, Close: 17},
			{Name: "us", Open: 12, Close: 22},
		},
		VoiceCeiling: 2,
	}
}

// InSession reports whether t falls inside any configured trading session
func (s *Settings) InSession(t time.Time) bool {
	hour := t.UTC().Hour()
	for _, session := range s.Sessions {
		if session.Contains(hour) {
			return true
		}
	}
	return false
}

// MatchesKeywords reports whether the headline mentions any of the
// monitored news keywords
func (s *Settings) MatchesKeywords(headline string) bool {
	lower := strings.ToLower(headline)
	for _, keyword := range s.NewsKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
