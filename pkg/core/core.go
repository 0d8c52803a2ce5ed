package core

import (
	"context"
)

// Feeder provides market quotes for monitored currency pairs
type Feeder interface {
	LastQuote(ctx context.Context, pair string) (float64, error)
	TicksSubscription(ctx context.Context, pair string) (chan Tick, chan error)
}

// NewsFeeder provides a stream of market headlines
type NewsFeeder interface {
	NewsSubscription(ctx context.Context) (chan NewsItem, chan error)
}

// Notifier receives dispatched alerts and errors
type Notifier interface {
	Notify(string)
	OnAlert(alert Alert)
	OnError(err error)
}

// NotifierWithStart is a notifier with its own receive loop (e.g. telegram)
type NotifierWithStart interface {
	Notifier
	Start()
}

// Caller places an outbound voice call through a hosted telephony API
type Caller interface {
	Call(ctx context.Context) (callID string, err error)
	Balance(ctx context.Context) (string, error)
}

// Analyzer turns an event into a short human-readable market commentary
type Analyzer interface {
	Analyze(ctx context.Context, event Event) (string, error)
}

// AlertStorage persists dispatched alerts
type AlertStorage interface {
	CreateAlert(alert *Alert) error
	Alerts(filters ...AlertFilter) ([]*Alert, error)
	Close() error
}
