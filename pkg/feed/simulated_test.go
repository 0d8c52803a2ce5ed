package feed

import (
	"context"
	"testing"
	"time"

	"github.com/raykavin/forexwatch/pkg/core"
	"github.com/stretchr/testify/require"
)

func TestSimulator_LastQuote(t *testing.T) {
	simulator := NewSimulator([]string{"EUR/USD"}, WithSeed(42))

	price, err := simulator.LastQuote(context.Background(), "EUR/USD")
	require.NoError(t, err)
	require.GreaterOrEqual(t, price, 0.8)
	require.LessOrEqual(t, price, 1.2)

	_, err = simulator.LastQuote(context.Background(), "USD/JPY")
	require.ErrorIs(t, err, core.ErrUnknownPair)
}

func TestSimulator_Step(t *testing.T) {
	simulator := NewSimulator([]string{"EUR/USD"}, WithSeed(42))
	now := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 1000; i++ {
		tick, err := simulator.Step("EUR/USD", now.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)

		require.Equal(t, "EUR/USD", tick.Pair)
		require.Greater(t, tick.Price, 0.0)

		// Movements never exceed the shock ceiling of five percent
		require.LessOrEqual(t, tick.Change, 5.0)
		require.GreaterOrEqual(t, tick.Change, -5.0)
	}
}

func TestSimulator_StepDeterministic(t *testing.T) {
	now := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

	walk := func() []float64 {
		simulator := NewSimulator([]string{"EUR/USD"}, WithSeed(7))
		prices := make([]float64, 0, 50)
		for i := 0; i < 50; i++ {
			tick, err := simulator.Step("EUR/USD", now)
			require.NoError(t, err)
			prices = append(prices, tick.Price)
		}
		return prices
	}

	require.Equal(t, walk(), walk())
}

func TestSimulator_StepUnknownPair(t *testing.T) {
	simulator := NewSimulator([]string{"EUR/USD"})

	_, err := simulator.Step("USD/JPY", time.Now())
	require.ErrorIs(t, err, core.ErrUnknownPair)
}

func TestSimulator_TicksSubscription(t *testing.T) {
	simulator := NewSimulator([]string{"EUR/USD"},
		WithSeed(42),
		WithInterval(time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cticks, _ := simulator.TicksSubscription(ctx, "EUR/USD")

	select {
	case tick := <-cticks:
		require.Equal(t, "EUR/USD", tick.Pair)
		require.Greater(t, tick.Price, 0.0)
	case <-time.After(time.Second):
		t.Fatal("expected a tick from the stream")
	}

	cancel()

	// Ticks may still be in flight, the channel closes once the stream
	// observes the cancellation
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-cticks:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("expected the stream to close after cancellation")
		}
	}
}
