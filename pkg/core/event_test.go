package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventType_Priority(t *testing.T) {
	require.Equal(t, 1, EventEmergencyPrice.Priority())
	require.Equal(t, 1, EventBreakingNews.Priority())
	require.Equal(t, 2, EventPriceSpike.Priority())
	require.Equal(t, 3, EventNews.Priority())
	require.Equal(t, 4, EventStatusUpdate.Priority())

	// Unknown types sink below every known one
	unknown := EventType("something_else")
	require.Greater(t, unknown.Priority(), EventStatusUpdate.Priority())
	require.False(t, unknown.Valid())
	require.True(t, EventPriceSpike.Valid())
}

func TestEvent_Title(t *testing.T) {
	price := Event{Type: EventEmergencyPrice, Pair: "EUR/USD", Change: -2.13}
	require.Equal(t, "EUR/USD PRICE MOVEMENT: 2.13%", price.Title())

	news := Event{Type: EventBreakingNews, Pair: "USD/JPY", Headline: "Bank of Japan policy intervention in FX market"}
	require.Equal(t, "USD/JPY NEWS: Bank of Japan policy intervent...", news.Title())

	short := Event{Type: EventNews, Pair: "GBP/USD", Headline: "UK inflation cools"}
	require.Equal(t, "GBP/USD NEWS: UK inflation cools", short.Title())
}

func TestEvent_Kind(t *testing.T) {
	require.True(t, Event{Type: EventEmergencyPrice}.IsPrice())
	require.True(t, Event{Type: EventPriceSpike}.IsPrice())
	require.False(t, Event{Type: EventNews}.IsPrice())

	require.True(t, Event{Type: EventBreakingNews}.IsNews())
	require.True(t, Event{Type: EventNews}.IsNews())
	require.False(t, Event{Type: EventPriceSpike}.IsNews())
}
