package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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

func chatReply(content string) chatResponse {
	var response chatResponse
	response.Choices = []struct {
		Message chatMessage `json:"message"`
	}{
		{Message: chatMessage{Role: "assistant", Content: content}},
	}
	return response
}

func priceEvent() core.Event {
	return core.Event{
		Type:       core.EventEmergencyPrice,
		Pair:       "EUR/USD",
		Price:      1.0850,
		Change:     2.1,
		Volatility: 0.0042,
		Time:       time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC),
	}
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "https://api.example.com"}, testLogger())
	require.ErrorIs(t, err, core.ErrNotConfigured)
}

func TestClient_Analyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var request chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		require.Equal(t, "deepseek-r1", request.Model)
		require.Len(t, request.Messages, 2)
		require.Equal(t, "system", request.Messages[0].Role)
		require.Contains(t, request.Messages[1].Content, "EUR/USD")
		require.Contains(t, request.Messages[1].Content, "2.10%")

		require.NoError(t, json.NewEncoder(w).Encode(chatReply("  Sharp euro move, stay alert.  ")))
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"}, testLogger())
	require.NoError(t, err)

	text, err := client.Analyze(context.Background(), priceEvent())
	require.NoError(t, err)
	require.Equal(t, "Sharp euro move, stay alert.", text)
}

func TestClient_AnalyzeNewsPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		require.Contains(t, request.Messages[1].Content, "breaking Forex news")
		require.Contains(t, request.Messages[1].Content, "ECB announces emergency interest rate hike")

		require.NoError(t, json.NewEncoder(w).Encode(chatReply("Euro likely to rally.")))
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"}, testLogger())
	require.NoError(t, err)

	event := core.Event{
		Type:     core.EventBreakingNews,
		Pair:     "EUR/USD",
		Headline: "ECB announces emergency interest rate hike",
	}

	text, err := client.Analyze(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "Euro likely to rally.", text)
}

func TestClient_AnalyzeCachesPerPairAndType(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		require.NoError(t, json.NewEncoder(w).Encode(chatReply("Cached commentary.")))
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"}, testLogger())
	require.NoError(t, err)

	event := priceEvent()
	for i := 0; i < 3; i++ {
		text, err := client.Analyze(context.Background(), event)
		require.NoError(t, err)
		require.Equal(t, "Cached commentary.", text)
	}
	require.Equal(t, 1, requests)

	// A different pair misses the cache
	other := event
	other.Pair = "USD/JPY"
	_, err = client.Analyze(context.Background(), other)
	require.NoError(t, err)
	require.Equal(t, 2, requests)
}

func TestClient_AnalyzeDistinctHeadlinesMissCache(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		require.NoError(t, json.NewEncoder(w).Encode(chatReply("Commentary.")))
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"}, testLogger())
	require.NoError(t, err)

	first := core.Event{Type: core.EventNews, Pair: "EUR/USD", Headline: "US inflation exceeds forecasts"}
	second := core.Event{Type: core.EventNews, Pair: "EUR/USD", Headline: "Fed signals pause in interest rate hikes"}

	_, err = client.Analyze(context.Background(), first)
	require.NoError(t, err)
	_, err = client.Analyze(context.Background(), second)
	require.NoError(t, err)
	require.Equal(t, 2, requests)
}

func TestClient_AnalyzeRetriesServerErrors(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(chatReply("Recovered.")))
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"}, testLogger())
	require.NoError(t, err)

	text, err := client.Analyze(context.Background(), priceEvent())
	require.NoError(t, err)
	require.Equal(t, "Recovered.", text)
	require.Equal(t, 2, attempts)
}

func TestClient_AnalyzeClientErrorDoesNotRetry(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"}, testLogger())
	require.NoError(t, err)

	_, err = client.Analyze(context.Background(), priceEvent())
	require.Error(t, err)
	require.Equal(t, 1, attempts)
}
