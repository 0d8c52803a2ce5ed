// Package feed connects quote sources to their consumers.
package feed

import (
	"context"
	"sync"

	"github.com/StudioSol/set"
	"github.com/raykavin/forexwatch/pkg/core"
	"github.com/raykavin/forexwatch/pkg/logger"
)

// TickFeed represents a quote feed with channels for ticks and errors
type TickFeed struct {
	Data chan core.Tick
	Err  chan error
}

// TickConsumer is a function that consumes quote updates
type TickConsumer func(core.Tick)

// Subscription represents a consumer registered on a pair feed
type Subscription struct {
	consumer TickConsumer
}

// TickFeedSubscription manages quote feed subscriptions per pair
type TickFeedSubscription struct {
	feeder              core.Feeder
	Feeds               *set.LinkedHashSetString
	TickFeeds           map[string]*TickFeed
	SubscriptionsByPair map[string][]Subscription
	log                 logger.Logger
	mu                  sync.RWMutex
}

// NewTickFeed creates a new subscription manager over the given feeder
func NewTickFeed(feeder core.Feeder, log logger.Logger) *TickFeedSubscription {
	return &TickFeedSubscription{
		feeder:              feeder,
		Feeds:               set.NewLinkedHashSetString(),
		log:                 log,
		TickFeeds:           make(map[string]*TickFeed),
		SubscriptionsByPair: make(map[string][]Subscription),
	}
}

// Subscribe registers a consumer for quote updates on a pair
func (t *TickFeedSubscription) Subscribe(pair string, consumer TickConsumer) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Feeds.Add(pair)
	t.SubscriptionsByPair[pair] = append(t.SubscriptionsByPair[pair], Subscription{
		consumer: consumer,
	})
}

// Connect opens a quote stream for every subscribed pair
func (t *TickFeedSubscription) Connect(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.log.Info("Connecting to the quote feeds.")

	for pair := range t.Feeds.Iter() {
		cticks, cerr := t.feeder.TicksSubscription(ctx, pair)
		t.TickFeeds[pair] = &TickFeed{
			Data: cticks,
			Err:  cerr,
		}
	}
}

// Start begins processing all feeds. With loadSync it blocks until
// every feed channel closes.
func (t *TickFeedSubscription) Start(ctx context.Context, loadSync bool) {
	t.Connect(ctx)

	var wg sync.WaitGroup

	t.mu.RLock()
	for pair, feed := range t.TickFeeds {
		wg.Add(1)
		go t.processFeed(pair, feed, &wg)
	}
	t.mu.RUnlock()

	t.log.Info("Quote feeds connected.")

	if loadSync {
		wg.Wait()
	}
}

// processFeed distributes ticks from one pair feed to its subscribers
func (t *TickFeedSubscription) processFeed(pair string, feed *TickFeed, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case tick, ok := <-feed.Data:
			if !ok {
				return
			}

			t.mu.RLock()
			subscriptions := t.SubscriptionsByPair[pair]
			t.mu.RUnlock()

			for _, subscription := range subscriptions {
				subscription.consumer(tick)
			}

		case err, ok := <-feed.Err:
			if !ok {
				return
			}

			if err != nil {
				t.log.WithError(err).Error("tickFeedSubscription/processFeed")
			}
		}
	}
}
