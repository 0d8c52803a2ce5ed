package forexwatch

import (
	"github.com/raykavin/forexwatch/pkg/core"
	"github.com/raykavin/forexwatch/pkg/logger"
)

// Option is a functional option for configuring an Agent instance
type Option func(*Agent)

// WithStorage sets the alert log storage; without it alerts are not persisted
func WithStorage(storage core.AlertStorage) Option {
	return func(agent *Agent) {
		agent.storage = storage
	}
}

// WithNotifier registers a notification channel with the agent
func WithNotifier(notifier core.Notifier) Option {
	return func(agent *Agent) {
		agent.notifiers = append(agent.notifiers, notifier)
	}
}

// WithNewsFeeder sets the headline source feeding news events
func WithNewsFeeder(newsFeeder core.NewsFeeder) Option {
	return func(agent *Agent) {
		agent.newsFeeder = newsFeeder
	}
}

// WithVoiceCaller sets the hosted telephony client used for voice alerts
func WithVoiceCaller(caller core.Caller) Option {
	return func(agent *Agent) {
		agent.caller = caller
	}
}

// WithAnalyzer sets the language-model commentary generator.
// Without it alerts fall back to plain template messages.
func WithAnalyzer(analyzer core.Analyzer) Option {
	return func(agent *Agent) {
		agent.analyzer = analyzer
	}
}

// WithLogger overrides the default logger
func WithLogger(log logger.Logger) Option {
	return func(agent *Agent) {
		agent.log = log
	}
}
