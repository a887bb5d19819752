// Package fal invokes remote generation models over the fal queue API.
package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// FailureKind tags a remote invocation failure with its category at the
// point of origin, so downstream layers never have to re-derive it from
// message text.
type FailureKind string

const (
	FailureNetwork         FailureKind = "network"
	FailureTimeout         FailureKind = "timeout"
	FailureRateLimited     FailureKind = "rate-limited"
	FailureContentRejected FailureKind = "content-rejected"
	FailureRemote          FailureKind = "remote"
)

// InvocationError is a failed remote model call.
type InvocationError struct {
	ModelID string
	Kind    FailureKind
	Status  int
	Message string
	cause   error
}

func (e *InvocationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("model %s: %s", e.ModelID, e.Message)
	}
	if e.cause != nil {
		return fmt.Sprintf("model %s: %v", e.ModelID, e.cause)
	}
	return fmt.Sprintf("model %s: invocation failed", e.ModelID)
}

func (e *InvocationError) Unwrap() error { return e.cause }

// Invoker is the remote model surface the generation adapter depends on.
// *Client is the production implementation; tests substitute stubs.
type Invoker interface {
	Subscribe(ctx context.Context, modelID string, input map[string]any) (map[string]any, error)
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient overrides the transport, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		// Generation models can run for minutes; the subscribe call holds
		// the connection until the result is ready.
		http: &http.Client{Timeout: 10 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe runs the model synchronously in streaming-subscribe mode and
// returns the decoded result payload. Cancelling ctx releases the in-flight
// request and surfaces ctx.Err().
func (c *Client) Subscribe(ctx context.Context, modelID string, input map[string]any) (map[string]any, error) {
	modelID = strings.TrimSpace(modelID)
	if modelID == "" {
		return nil, &InvocationError{ModelID: modelID, Kind: FailureRemote, Message: "model id is required"}
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return nil, &InvocationError{ModelID: modelID, Kind: FailureRemote, Message: "encode input", cause: err}
	}

	endpoint := c.baseURL + "/" + modelID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &InvocationError{ModelID: modelID, Kind: FailureRemote, Message: "build request", cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Key "+c.apiKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		// Caller cancellation is not an invocation failure; let the run
		// loop see the context error directly.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		kind := FailureNetwork
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			kind = FailureTimeout
		}
		return nil, &InvocationError{ModelID: modelID, Kind: kind, cause: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 32<<20))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &InvocationError{ModelID: modelID, Kind: FailureNetwork, Message: "read response", cause: err}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &InvocationError{
			ModelID: modelID,
			Kind:    classifyStatus(res.StatusCode, body),
			Status:  res.StatusCode,
			Message: firstNonEmpty(extractErrorMessage(body), fmt.Sprintf("remote model returned status %d", res.StatusCode)),
		}
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &InvocationError{ModelID: modelID, Kind: FailureRemote, Message: "decode response", cause: err}
	}
	return result, nil
}

func classifyStatus(status int, body []byte) FailureKind {
	switch status {
	case http.StatusTooManyRequests:
		return FailureRateLimited
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return FailureTimeout
	}
	message := strings.ToLower(extractErrorMessage(body))
	if strings.Contains(message, "content policy") || strings.Contains(message, "safety") || strings.Contains(message, "rejected") {
		return FailureContentRejected
	}
	return FailureRemote
}

func extractErrorMessage(body []byte) string {
	payload := struct {
		Detail  any    `json:"detail"`
		Error   any    `json:"error"`
		Message string `json:"message"`
	}{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	for _, value := range []any{payload.Detail, payload.Error} {
		switch typed := value.(type) {
		case string:
			if typed != "" {
				return typed
			}
		case map[string]any:
			if msg, ok := typed["message"].(string); ok && msg != "" {
				return msg
			}
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
