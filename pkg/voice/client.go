// Package voice places outbound telephone calls through a hosted
// telephony HTTP API.
package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jpillora/backoff"
	"github.com/raykavin/forexwatch/pkg/core"
	"github.com/raykavin/forexwatch/pkg/logger"
)

const (
	defaultCallURL = "https://voice.africastalking.com/call"
	defaultUserURL = "https://api.africastalking.com/version1/user"
	maxAttempts    = 3
)

// CallError represents a failure while placing a voice call
type CallError struct {
	Err        error
	StatusCode int
}

func (e *CallError) Error() string {
	return fmt.Sprintf("voice call error: %v", e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// Config holds the hosted telephony credentials and numbers
type Config struct {
	Username string // Account username
	APIKey   string // API key sent in the apiKey header
	From     string // Provisioned virtual number placing the call
	To       string // Destination number receiving the alert call
	CallURL  string // Optional call endpoint override
	UserURL  string // Optional account endpoint override
}

// Configured reports whether the credentials needed to place a call are set
func (c Config) Configured() bool {
	return c.Username != "" && c.APIKey != "" && c.To != ""
}

// Client implements core.Caller against the hosted voice API
type Client struct {
	config     Config
	httpClient *http.Client
	log        logger.Logger
}

// NewClient creates a voice client. It fails when the credential set is
// incomplete so a half-configured agent surfaces early.
func NewClient(config Config, log logger.Logger) (*Client, error) {
	if !config.Configured() {
		return nil, fmt.Errorf("%w: voice credentials missing", core.ErrNotConfigured)
	}

	if config.CallURL == "" {
		config.CallURL = defaultCallURL
	}
	if config.UserURL == "" {
		config.UserURL = defaultUserURL
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}, nil
}

type callEntry struct {
	CallID      string `json:"callId"`
	PhoneNumber string `json:"phoneNumber"`
	Status      string `json:"status"`
}

type callResponse struct {
	Entries      []callEntry `json:"entries"`
	ErrorMessage string      `json:"errorMessage"`
}

// Call places an outbound call from the virtual number to the alert
// recipient and returns the provider call ID. Transient failures retry
// with jittered backoff.
func (c *Client) Call(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("username", c.config.Username)
	form.Set("from", c.config.From)
	form.Set("to", c.config.To)

	retry := &backoff.Backoff{
		Min:    100 * time.Millisecond,
		Max:    2 * time.Second,
		Jitter: true,
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retry.Duration()):
			}
		}

		callID, retryable, err := c.call(ctx, form)
		if err == nil {
			return callID, nil
		}

		lastErr = err
		if !retryable {
			break
		}
		c.log.WithError(err).Warn("voice call attempt failed, retrying")
	}

	return "", lastErr
}

func (c *Client) call(ctx context.Context, form url.Values) (callID string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.CallURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", false, &CallError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apiKey", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, &CallError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return "", true, &CallError{
			Err:        fmt.Errorf("provider returned status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", false, &CallError{
			Err:        fmt.Errorf("provider returned status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	var parsed callResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", false, &CallError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if len(parsed.Entries) == 0 {
		return "", false, &CallError{Err: fmt.Errorf("no call entries in response: %s", parsed.ErrorMessage)}
	}

	entry := parsed.Entries[0]
	if entry.Status != "Queued" {
		return "", false, &CallError{Err: fmt.Errorf("call not queued: %s", entry.Status)}
	}

	return entry.CallID, false, nil
}

type userResponse struct {
	UserData struct {
		Balance string `json:"balance"`
	} `json:"UserData"`
}

// Balance fetches the account balance string, e.g. "KES 1785.50".
// Operators check it when calls stop going through.
func (c *Client) Balance(ctx context.Context) (string, error) {
	endpoint := fmt.Sprintf("%s?username=%s", c.config.UserURL, url.QueryEscape(c.config.Username))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apiKey", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var parsed userResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return parsed.UserData.Balance, nil
}
