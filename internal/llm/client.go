// Package llm is a narrow client for an OpenAI-compatible chat completions
// endpoint. It issues one structured request at a time, classifies failures
// as retryable or fatal, retries transient ones with exponential backoff,
// and leniently recovers JSON from the response text.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client calls a chat completions API. Safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client

	maxRetries int
	backoff    func(attempt int) time.Duration

	// Whether the endpoint honors the json_object response format hint.
	// Probed on the first call and remembered for the rest of the run.
	mu       sync.Mutex
	jsonMode jsonModeState

	Stats *Stats
}

type jsonModeState int

const (
	jsonModeUnknown jsonModeState = iota
	jsonModeSupported
	jsonModeUnsupported
)

// NewClient creates a client. baseURL may be empty for the OpenAI API, or
// point at a local OpenAI-compatible server (Ollama, LM Studio, vLLM), in
// which case apiKey may be empty.
func NewClient(apiKey, baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 180 * time.Second,
		},
		maxRetries: MaxRetries,
		backoff:    Backoff,
		Stats:      NewStats(time.Hour),
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Request is one logical generation call.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate issues one structured generation request and returns the JSON
// document recovered from the response. Transient transport failures are
// retried up to MaxRetries times; exhausting the budget surfaces the last
// cause. If the endpoint rejects the json_object hint outright, the request
// is re-issued without it and the fallback is remembered for the run.
func (c *Client) Generate(ctx context.Context, req Request) (json.RawMessage, error) {
	state := c.jsonModeState()
	withHint := state != jsonModeUnsupported

	text, err := c.callWithRetry(ctx, req, withHint)
	if err != nil && withHint && state == jsonModeUnknown && !IsRetryable(err) && ctx.Err() == nil {
		// The endpoint may be rejecting the hint itself, not the request.
		c.setJSONMode(jsonModeUnsupported)
		text, err = c.callWithRetry(ctx, req, false)
	} else if err == nil && withHint && state == jsonModeUnknown {
		c.setJSONMode(jsonModeSupported)
	}
	if err != nil {
		return nil, err
	}
	return DecodeLenient(text)
}

func (c *Client) callWithRetry(ctx context.Context, req Request, jsonHint bool) (string, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff(attempt - 1)):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		text, err := c.call(ctx, req, jsonHint)
		if err == nil {
			return text, nil
		}
		if !IsRetryable(err) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("llm request failed after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *Client) call(ctx context.Context, req Request, jsonHint bool) (string, error) {
	body := chatRequest{
		Model:       c.model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
	}
	if jsonHint {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &RetryableError{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", &RetryableError{Message: "read response: " + err.Error()}
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm api status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	if c.Stats != nil {
		c.Stats.Record(time.Since(start).Milliseconds())
	}

	var api chatResponse
	if err := json.Unmarshal(respBody, &api); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if api.Error != nil {
		return "", fmt.Errorf("llm error: %s: %s", api.Error.Type, truncate(api.Error.Message, 200))
	}
	if len(api.Choices) == 0 {
		return "", fmt.Errorf("empty response from llm")
	}
	return api.Choices[0].Message.Content, nil
}

func (c *Client) jsonModeState() jsonModeState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.jsonMode
}

func (c *Client) setJSONMode(s jsonModeState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jsonMode = s
}
