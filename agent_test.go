package forexwatch

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/raykavin/forexwatch/pkg/core"
	"github.com/raykavin/forexwatch/pkg/dispatch"
	"github.com/raykavin/forexwatch/pkg/feed"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	text string
	err  error
}

func (s *stubAnalyzer) Analyze(context.Context, core.Event) (string, error) {
	return s.text, s.err
}

func newTestAgent(t *testing.T, options ...Option) *Agent {
	t.Helper()

	settings := core.DefaultSettings()
	feeder := feed.NewSimulator(settings.Pairs, feed.WithSeed(42))

	agent, err := NewAgent(settings, feeder, options...)
	require.NoError(t, err)
	return agent
}

type fakeNotifier struct {
	alerts []core.Alert
}

func (f *fakeNotifier) Notify(string)            {}
func (f *fakeNotifier) OnAlert(alert core.Alert) { f.alerts = append(f.alerts, alert) }
func (f *fakeNotifier) OnError(error)            {}

func TestNewAgent_RegistersNotifiersWithDispatcher(t *testing.T) {
	settings := core.DefaultSettings()
	settings.Sessions = []core.Session{{Name: "all", Open: 0, Close: 24}}

	notifier := &fakeNotifier{}
	feeder := feed.NewSimulator(settings.Pairs, feed.WithSeed(42))

	agent, err := NewAgent(settings, feeder, WithNotifier(notifier))
	require.NoError(t, err)

	event := core.Event{Type: core.EventPriceSpike, Pair: "EUR/USD", Change: 1.1, Time: time.Now()}
	outcome, err := agent.dispatcher.Dispatch(context.Background(), event, "spike on EUR/USD")
	require.NoError(t, err)
	require.Equal(t, dispatch.OutcomeDelivered, outcome)
	require.Len(t, notifier.alerts, 1)
}

func TestNewAgent_RejectsInvalidPair(t *testing.T) {
	settings := core.DefaultSettings()
	settings.Pairs = []string{"EURUSD"}

	_, err := NewAgent(settings, feed.NewSimulator(nil))
	require.ErrorIs(t, err, core.ErrInvalidPair)
}

func TestAgent_OnTickQueuesSignificantMovement(t *testing.T) {
	agent := newTestAgent(t)

	agent.onTick(core.Tick{Pair: "EUR/USD", Price: 1.0850, Change: 2.1, Time: time.Now()})

	event, ok := agent.eventQueue.Pop()
	require.True(t, ok)
	require.Equal(t, core.EventEmergencyPrice, event.Type)
	require.Equal(t, "EUR/USD", event.Pair)
	require.Equal(t, 1.0850, event.Price)

	// The tick was recorded before the event was raised
	snapshot, err := agent.tracker.Snapshot("EUR/USD")
	require.NoError(t, err)
	require.Equal(t, 1, snapshot.Samples)
}

func TestAgent_OnTickIgnoresSmallMovement(t *testing.T) {
	agent := newTestAgent(t)

	agent.onTick(core.Tick{Pair: "EUR/USD", Price: 1.0850, Change: 0.1, Time: time.Now()})

	require.Equal(t, 0, agent.eventQueue.Len())

	snapshot, err := agent.tracker.Snapshot("EUR/USD")
	require.NoError(t, err)
	require.Equal(t, 1, snapshot.Samples)
}

func TestAgent_OnNews(t *testing.T) {
	agent := newTestAgent(t)

	// Headlines matching no monitored keyword are dropped
	agent.onNews(core.NewsItem{Headline: "Local football team wins championship", Pair: "EUR/USD"})
	require.Equal(t, 0, agent.eventQueue.Len())

	// Crisis wording escalates to breaking news
	agent.onNews(core.NewsItem{Headline: "Political crisis deepens in the UK", Pair: "GBP/USD"})
	event, ok := agent.eventQueue.Pop()
	require.True(t, ok)
	require.Equal(t, core.EventBreakingNews, event.Type)

	// Routine keyword matches stay at news priority
	agent.onNews(core.NewsItem{Headline: "US inflation exceeds forecasts", Pair: "USD/JPY"})
	event, ok = agent.eventQueue.Pop()
	require.True(t, ok)
	require.Equal(t, core.EventNews, event.Type)
}

func TestAgent_ComposeMessage(t *testing.T) {
	event := core.Event{
		Type:       core.EventEmergencyPrice,
		Pair:       "EUR/USD",
		Price:      1.0850,
		Change:     2.1,
		Volatility: 0.0042,
	}

	// Without an analyzer the template message is used
	agent := newTestAgent(t)
	message := agent.composeMessage(context.Background(), event)
	require.Contains(t, message, "EUR/USD PRICE MOVEMENT: 2.10%")
	require.Contains(t, message, "Current price: 1.0850")

	// Analyzer commentary is appended under the title
	agent = newTestAgent(t, WithAnalyzer(&stubAnalyzer{text: "Sharp euro move, stay alert."}))
	message = agent.composeMessage(context.Background(), event)
	require.Contains(t, message, "EUR/USD PRICE MOVEMENT: 2.10%")
	require.Contains(t, message, "Sharp euro move, stay alert.")

	// Analysis failures fall back to the template, never block the alert
	agent = newTestAgent(t, WithAnalyzer(&stubAnalyzer{err: errors.New("endpoint down")}))
	message = agent.composeMessage(context.Background(), event)
	require.Contains(t, message, "Current price: 1.0850")
}

func TestAgent_StatusUpdateNeverDispatches(t *testing.T) {
	agent := newTestAgent(t)

	var out bytes.Buffer
	agent.statusOut = &out

	agent.onTick(core.Tick{Pair: "EUR/USD", Price: 1.0850, Change: 0.1, Time: time.Now()})
	agent.handleEvent(context.Background(), core.Event{Type: core.EventStatusUpdate, Time: time.Now()})

	// The report renders without touching the dispatcher cooldown state
	require.Contains(t, out.String(), "EUR/USD")
	_, ok := agent.dispatcher.LastAlert("EUR/USD")
	require.False(t, ok)
}

func TestAgent_ComposeMessageNews(t *testing.T) {
	agent := newTestAgent(t)

	event := core.Event{
		Type:     core.EventNews,
		Pair:     "USD/JPY",
		Headline: "US inflation exceeds forecasts",
	}

	message := agent.composeMessage(context.Background(), event)
	require.Contains(t, message, "Headline: US inflation exceeds forecasts")
}
