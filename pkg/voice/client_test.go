package voice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

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

func testConfig(callURL, userURL string) Config {
	return Config{
		Username: "sandbox",
		APIKey:   "test-api-key",
		From:     "+254711000111",
		To:       "+254722000222",
		CallURL:  callURL,
		UserURL:  userURL,
	}
}

func queuedResponse(callID string) callResponse {
	return callResponse{
		Entries: []callEntry{{
			CallID:      callID,
			PhoneNumber: "+254722000222",
			Status:      "Queued",
		}},
	}
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{Username: "sandbox"}, testLogger())
	require.ErrorIs(t, err, core.ErrNotConfigured)
}

func TestClient_Call(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "test-api-key", r.Header.Get("apiKey"))

		require.NoError(t, r.ParseForm())
		require.Equal(t, "sandbox", r.PostForm.Get("username"))
		require.Equal(t, "+254711000111", r.PostForm.Get("from"))
		require.Equal(t, "+254722000222", r.PostForm.Get("to"))

		w.WriteHeader(http.StatusCreated)
		require.NoError(t, json.NewEncoder(w).Encode(queuedResponse("ATVId_abc123")))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL, ""), testLogger())
	require.NoError(t, err)

	callID, err := client.Call(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ATVId_abc123", callID)
}

func TestClient_CallNotQueued(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response := callResponse{
			Entries: []callEntry{{Status: "InvalidPhoneNumber"}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL, ""), testLogger())
	require.NoError(t, err)

	_, err = client.Call(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "call not queued")
}

func TestClient_CallRetriesServerErrors(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(queuedResponse("ATVId_retry")))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL, ""), testLogger())
	require.NoError(t, err)

	callID, err := client.Call(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ATVId_retry", callID)
	require.Equal(t, 3, attempts)
}

func TestClient_CallClientErrorDoesNotRetry(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL, ""), testLogger())
	require.NoError(t, err)

	_, err = client.Call(context.Background())
	require.Error(t, err)
	require.Equal(t, 1, attempts)

	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	require.Equal(t, http.StatusUnauthorized, callErr.StatusCode)
}

func TestClient_Balance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "test-api-key", r.Header.Get("apiKey"))
		require.Equal(t, "sandbox", r.URL.Query().Get("username"))

		var response userResponse
		response.UserData.Balance = "KES 1785.50"
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
	defer server.Close()

	client, err := NewClient(testConfig("", server.URL), testLogger())
	require.NoError(t, err)

	balance, err := client.Balance(context.Background())
	require.NoError(t, err)
	require.Equal(t, "KES 1785.50", balance)
}
