package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// FunctionInvoker calls the remote tool-function service over HTTP. Each
// action maps to POST {baseURL}/{action} with the params as a JSON body.
type FunctionInvoker struct {
	baseURL string
	client  *http.Client
}

// NewFunctionInvoker creates an invoker against the tool-function base URL.
func NewFunctionInvoker(baseURL string) *FunctionInvoker {
	return &FunctionInvoker{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Invoke executes the action and returns the raw response body. Non-2xx
// responses are errors; the dispatcher turns them into error results.
func (f *FunctionInvoker) Invoke(ctx context.Context, action string, params map[string]string) ([]byte, error) {
	endpoint, err := url.JoinPath(f.baseURL, action)
	if err != nil {
		return nil, fmt.Errorf("invalid tool endpoint for %s: %w", action, err)
	}

	payload, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool params: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build tool request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tool request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read tool response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tool %s returned status %d", action, resp.StatusCode)
	}
	return body, nil
}
