package forexwatch

import (
	"context"
	"fmt"
	"time"

	"github.com/raykavin/forexwatch/pkg/core"
	"github.com/raykavin/forexwatch/pkg/dispatch"
	"github.com/raykavin/forexwatch/pkg/market"
)

// nowFunc is swapped in tests
var nowFunc = time.Now

// onTick records the quote and queues an event when the movement
// crosses a threshold
func (a *Agent) onTick(tick core.Tick) {
	if err := a.tracker.Observe(tick); err != nil {
		a.log.WithError(err).Error("failed to record tick")
		return
	}

	eventType, significant := a.settings.Thresholds.Classify(tick.Change)
	if !significant {
		return
	}

	snapshot, err := a.tracker.Snapshot(tick.Pair)
	if err != nil {
		a.log.WithError(err).Error("failed to snapshot pair state")
		return
	}

	a.eventQueue.Push(core.Event{
		Type:       eventType,
		Pair:       tick.Pair,
		Price:      tick.Price,
		Change:     tick.Change,
		Volatility: snapshot.Volatility,
		Time:       tick.Time,
	})
}

// onNews filters headlines through the keyword table and queues the
// survivors
func (a *Agent) onNews(item core.NewsItem) {
	if !a.settings.MatchesKeywords(item.Headline) {
		a.log.WithField("headline", item.Headline).Debug("headline matches no keyword, dropped")
		return
	}

	a.eventQueue.Push(core.Event{
		Type:     market.ClassifyHeadline(item.Headline),
		Pair:     item.Pair,
		Headline: item.Headline,
		Time:     item.Time,
	})
}

// processNews consumes the headline stream
func (a *Agent) processNews(ctx context.Context) {
	cnews, cerr := a.newsFeeder.NewsSubscription(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-cnews:
			if !ok {
				return
			}
			a.onNews(item)
		case err, ok := <-cerr:
			if !ok {
				return
			}
			if err != nil {
				a.log.WithError(err).Error("news feed error")
			}
		}
	}
}

// processEvents is the single consumer of the priority queue.
// Events are popped at receive time so the highest priority entry of a
// burst is always handled first.
func (a *Agent) processEvents(ctx context.Context) {
	a.log.Info("Event processor started, waiting for events")

	wake := a.eventQueue.PopLock()
	for {
		select {
		case <-ctx.Done():
			return
		case <-wake:
			for {
				event, ok := a.eventQueue.Pop()
				if !ok {
					break
				}
				a.handleEvent(ctx, event)
			}
		}
	}
}

// handleEvent generates the alert message and hands the event to the
// dispatcher. Status updates never reach the dispatcher.
func (a *Agent) handleEvent(ctx context.Context, event core.Event) {
	if event.Type == core.EventStatusUpdate {
		a.reportStatus()
		return
	}

	a.log.WithFields(map[string]any{
		"type": string(event.Type),
		"pair": event.Pair,
	}).Info("event received")

	message := a.composeMessage(ctx, event)

	outcome, err := a.dispatcher.Dispatch(ctx, event, message)
	if err != nil {
		a.log.WithError(err).Error("dispatch failed")
		return
	}

	a.log.WithFields(map[string]any{
		"pair":    event.Pair,
		"outcome": outcome.String(),
	}).Info("event dispatched")

	if outcome == dispatch.OutcomeDelivered {
		a.tracker.MarkAlert(event.Pair, nowFunc())
	}
}

// composeMessage asks the analyzer for commentary and falls back to a
// plain template. Analysis failures never block an alert.
func (a *Agent) composeMessage(ctx context.Context, event core.Event) string {
	if a.analyzer != nil {
		analysis, err := a.analyzer.Analyze(ctx, event)
		if err == nil {
			return fmt.Sprintf("%s\n%s", event.Title(), analysis)
		}
		a.log.WithError(err).Warn("analysis failed, using template message")
	}

	if event.IsNews() {
		return fmt.Sprintf("%s\nHeadline: %s", event.Title(), event.Headline)
	}
	return fmt.Sprintf("%s\nCurrent price: %.4f, volatility: %.4f",
		event.Title(), event.Price, event.Volatility)
}

// statusLoop queues a status update on a fixed interval. The update
// flows through the same queue as market events, at the lowest priority.
func (a *Agent) statusLoop(ctx context.Context) {
	ticker := time.NewTicker(a.settings.StatusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			a.eventQueue.Push(core.Event{Type: core.EventStatusUpdate, Time: now})
		}
	}
}

// reportStatus logs queue depth and renders the per-pair state table
func (a *Agent) reportStatus() {
	a.log.WithFields(map[string]any{
		"queue_depth": a.eventQueue.Len(),
		"muted":       a.dispatcher.Muted(),
	}).Info("system status")
	market.WriteReport(a.statusOut, a.tracker.Snapshots(), nowFunc())
}
