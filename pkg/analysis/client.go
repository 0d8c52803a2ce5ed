// Package analysis generates short market commentary for alerts through
// a hosted language-model inference endpoint.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"github.com/raykavin/forexwatch/pkg/core"
	"github.com/raykavin/forexwatch/pkg/logger"
)

const (
	defaultModel     = "deepseek-r1"
	defaultMaxTokens = 150
	defaultCacheTTL  = 10 * time.Minute
	maxAttempts      = 3
)

// Config holds the hosted inference endpoint parameters
type Config struct {
	BaseURL   string  // Endpoint base, e.g. https://api.provider.com
	APIKey    string  // Bearer token
	Model     string  // Model identifier
	MaxTokens int     // Response token cap
	Temp      float64 // Sampling temperature
}

// Configured reports whether the endpoint can be called
func (c Config) Configured() bool {
	return c.BaseURL != "" && c.APIKey != ""
}

type cachedAnalysis struct {
	text string
	at   time.Time
}

// Client implements core.Analyzer against a chat-completions style API.
// Responses are cached per pair and event type so a burst of events on
// the same pair does not hammer the endpoint.
type Client struct {
	config     Config
	httpClient *http.Client
	log        logger.Logger

	mu    sync.RWMutex
	cache map[string]cachedAnalysis
}

// NewClient creates an analysis client
func NewClient(config Config, log logger.Logger) (*Client, error) {
	if !config.Configured() {
		return nil, fmt.Errorf("%w: analysis endpoint missing", core.ErrNotConfigured)
	}

	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = defaultMaxTokens
	}
	if config.Temp == 0 {
		config.Temp = 0.7
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
		cache:      make(map[string]cachedAnalysis),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Analyze renders the event prompt and returns the model commentary.
// A cached answer for the same pair and event type is reused within
// its TTL.
func (c *Client) Analyze(ctx context.Context, event core.Event) (string, error) {
	key := cacheKey(event)

	c.mu.RLock()
	cached, ok := c.cache[key]
	c.mu.RUnlock()
	if ok && time.Since(cached.at) < defaultCacheTTL {
		c.log.WithField("pair", event.Pair).Debug("using cached analysis")
		return cached.text, nil
	}

	text, err := c.complete(ctx, buildPrompt(event))
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.cache[key] = cachedAnalysis{text: text, at: time.Now()}
	c.mu.Unlock()

	return text, nil
}

func cacheKey(event core.Event) string {
	if event.IsNews() {
		// Distinct headlines must not share an answer
		return fmt.Sprintf("%s|%s|%s", event.Pair, event.Type, event.Headline)
	}
	return fmt.Sprintf("%s|%s", event.Pair, event.Type)
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temp,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	retry := &backoff.Backoff{
		Min:    200 * time.Millisecond,
		Max:    3 * time.Second,
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

		text, retryable, err := c.post(ctx, body)
		if err == nil {
			return text, nil
		}

		lastErr = err
		if !retryable {
			break
		}
		c.log.WithError(err).Warn("analysis request failed, retrying")
	}

	return "", lastErr
}

func (c *Client) post(ctx context.Context, body []byte) (text string, retryable bool, err error) {
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/v1/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return "", true, fmt.Errorf("inference endpoint returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("inference endpoint returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", false, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", false, fmt.Errorf("inference endpoint returned no choices")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), false, nil
}
