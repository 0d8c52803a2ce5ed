// Package forexwatch wires the monitoring agent: quote and news feeds in,
// classified events through a priority queue, alerts out.
package forexwatch

import (
	"context"
	"io"
	"os"

	"github.com/raykavin/forexwatch/pkg/core"
	"github.com/raykavin/forexwatch/pkg/dispatch"
	"github.com/raykavin/forexwatch/pkg/feed"
	"github.com/raykavin/forexwatch/pkg/logger"
	"github.com/raykavin/forexwatch/pkg/market"
)

// Agent represents the forex monitoring agent
type Agent struct {
	settings   *core.Settings
	feeder     core.Feeder
	newsFeeder core.NewsFeeder
	analyzer   core.Analyzer
	caller     core.Caller
	storage    core.AlertStorage
	notifiers  []core.Notifier
	telegram   core.NotifierWithStart

	tracker    *market.Tracker
	eventQueue *core.EventQueue
	tickFeed   *feed.TickFeedSubscription
	dispatcher *dispatch.Dispatcher
	log        logger.Logger
	statusOut  io.Writer
}

// NewAgent creates a new monitoring agent with the provided settings and
// quote source
func NewAgent(
	settings *core.Settings,
	feeder core.Feeder,
	options ...Option,
) (*Agent, error) {

	agent := &Agent{
		settings:   settings,
		feeder:     feeder,
		tracker:    market.NewTracker(settings.Pairs),
		eventQueue: core.NewEventQueue(),
		log:        DefaultLog,
		statusOut:  os.Stdout,
	}

	// Validate monitored pairs
	for _, pair := range settings.Pairs {
		if err := core.ValidatePair(pair); err != nil {
			return nil, err
		}
	}

	// Apply custom options
	for _, option := range options {
		option(agent)
	}

	agent.tickFeed = feed.NewTickFeed(feeder, agent.log)

	// Initialize dispatcher
	dispatcherOptions := []dispatch.Option{}
	if agent.caller != nil {
		dispatcherOptions = append(dispatcherOptions, dispatch.WithCaller(agent.caller))
	}
	if agent.storage != nil {
		dispatcherOptions = append(dispatcherOptions, dispatch.WithStorage(agent.storage))
	}
	agent.dispatcher = dispatch.NewDispatcher(settings, agent.log, dispatcherOptions...)

	for _, notifier := range agent.notifiers {
		agent.dispatcher.AddNotifier(notifier)
	}

	// Initialize notification systems
	if err := initializeNotifications(agent, settings); err != nil {
		return nil, err
	}

	return agent, nil
}

// Dispatcher returns the alert dispatcher
func (a *Agent) Dispatcher() *dispatch.Dispatcher {
	return a.dispatcher
}

// Tracker returns the per-pair market state tracker
func (a *Agent) Tracker() *market.Tracker {
	return a.tracker
}

// Run subscribes every monitored pair, starts the feeds and processes
// events until the context is canceled
func (a *Agent) Run(ctx context.Context) error {
	a.log.Infof("Monitoring pairs: %v", a.settings.Pairs)
	if a.settings.InSession(nowFunc()) {
		a.log.Info("Market hours: active")
	} else {
		a.log.Info("Market hours: closed, alerts suppressed")
	}

	for _, pair := range a.settings.Pairs {
		a.tickFeed.Subscribe(pair, a.onTick)
	}

	if a.telegram != nil {
		a.telegram.Start()
	}

	if a.newsFeeder != nil {
		go a.processNews(ctx)
	}

	go a.statusLoop(ctx)
	go a.processEvents(ctx)

	// Blocks until every feed channel closes
	a.tickFeed.Start(ctx, true)

	return nil
}
