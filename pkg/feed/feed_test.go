package feed

import (
	"context"
	"testing"
	"time"

	"github.com/raykavin/forexwatch/pkg/core"
	"github.com/raykavin/forexwatch/pkg/logger"
	zlog "github.com/raykavin/forexwatch/pkg/logger/zerolog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testLogger() logger.Logger {
	nop := zerolog.Nop()
	return zlog.NewAdapter(&nop)
}

type stubFeeder struct {
	ticks chan core.Tick
	errs  chan error
}

func (s *stubFeeder) LastQuote(context.Context, string) (float64, error) {
	return 0, nil
}

func (s *stubFeeder) TicksSubscription(context.Context, string) (chan core.Tick, chan error) {
	return s.ticks, s.errs
}

func TestTickFeed_NewTickFeed(t *testing.T) {
	feed := NewTickFeed(&stubFeeder{}, testLogger())
	require.NotEmpty(t, feed)
}

func TestTickFeed_Subscribe(t *testing.T) {
	feeder := &stubFeeder{
		ticks: make(chan core.Tick),
		errs:  make(chan error),
	}
	feed := NewTickFeed(feeder, testLogger())

	received := make(chan core.Tick, 1)
	feed.Subscribe("EUR/USD", func(tick core.Tick) {
		received <- tick
	})

	feed.Start(context.Background(), false)

	feeder.ticks <- core.Tick{Pair: "EUR/USD", Price: 1.0850}

	select {
	case tick := <-received:
		require.Equal(t, "EUR/USD", tick.Pair)
		require.Equal(t, 1.0850, tick.Price)
	case <-time.After(time.Second):
		t.Fatal("expected the consumer to receive the tick")
	}

	close(feeder.ticks)
	close(feeder.errs)
}

func TestTickFeed_MultipleConsumers(t *testing.T) {
	feeder := &stubFeeder{
		ticks: make(chan core.Tick),
		errs:  make(chan error),
	}
	feed := NewTickFeed(feeder, testLogger())

	first := make(chan core.Tick, 1)
	second := make(chan core.Tick, 1)
	feed.Subscribe("EUR/USD", func(tick core.Tick) { first <- tick })
	feed.Subscribe("EUR/USD", func(tick core.Tick) { second <- tick })

	feed.Start(context.Background(), false)

	feeder.ticks <- core.Tick{Pair: "EUR/USD", Price: 1.0850}

	for _, ch := range []chan core.Tick{first, second} {
		select {
		case tick := <-ch:
			require.Equal(t, 1.0850, tick.Price)
		case <-time.After(time.Second):
			t.Fatal("expected every consumer to receive the tick")
		}
	}

	close(feeder.ticks)
	close(feeder.errs)
}

func TestTickFeed_StartSyncReturnsOnClose(t *testing.T) {
	feeder := &stubFeeder{
		ticks: make(chan core.Tick),
		errs:  make(chan error),
	}
	feed := NewTickFeed(feeder, testLogger())
	feed.Subscribe("EUR/USD", func(core.Tick) {})

	done := make(chan struct{})
	go func() {
		feed.Start(context.Background(), true)
		close(done)
	}()

	close(feeder.ticks)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Start to return once the feed closed")
	}
}
