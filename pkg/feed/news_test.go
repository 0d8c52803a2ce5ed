package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewsSimulator_Sample(t *testing.T) {
	headlines := []Headline{{Text: "US inflation exceeds forecasts", Pair: "USD/JPY"}}
	now := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

	always := NewNewsSimulator(
		WithNewsSeed(42),
		WithNewsProbability(1),
		WithHeadlines(headlines),
	)

	item, ok := always.Sample(now)
	require.True(t, ok)
	require.Equal(t, "US inflation exceeds forecasts", item.Headline)
	require.Equal(t, "USD/JPY", item.Pair)
	require.Equal(t, now, item.Time)

	never := NewNewsSimulator(WithNewsSeed(42), WithNewsProbability(0))
	for i := 0; i < 100; i++ {
		_, ok := never.Sample(now)
		require.False(t, ok)
	}
}

func TestNewsSimulator_SampleRotation(t *testing.T) {
	simulator := NewNewsSimulator(WithNewsSeed(42), WithNewsProbability(1))

	known := make(map[string]string, len(sampleHeadlines))
	for _, headline := range sampleHeadlines {
		known[headline.Text] = headline.Pair
	}

	for i := 0; i < 50; i++ {
		item, ok := simulator.Sample(time.Now())
		require.True(t, ok)

		pair, found := known[item.Headline]
		require.True(t, found)
		require.Equal(t, pair, item.Pair)
	}
}

func TestNewsSimulator_NewsSubscription(t *testing.T) {
	simulator := NewNewsSimulator(
		WithNewsSeed(42),
		WithNewsProbability(1),
		WithNewsInterval(time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cnews, _ := simulator.NewsSubscription(ctx)

	select {
	case item := <-cnews:
		require.NotEmpty(t, item.Headline)
		require.NotEmpty(t, item.Pair)
	case <-time.After(time.Second):
		t.Fatal("expected a headline from the stream")
	}
}
