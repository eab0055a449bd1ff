package validator

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPClient defines the interface for making HTTP requests.
// This allows for mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Endpoint describes a cheap authenticated request that succeeds only with a valid key.
type Endpoint struct {
	URL       string
	Authorize func(req *http.Request, key string)
}

var (
	OpenAIEndpoint = Endpoint{
		URL: "https://api.openai.com/v1/models",
		Authorize: func(req *http.Request, key string) {
			req.Header.Set("Authorization", "Bearer "+key)
		},
	}
	AnthropicEndpoint = Endpoint{
		URL: "https://api.anthropic.com/v1/models",
		Authorize: func(req *http.Request, key string) {
			req.Header.Set("x-api-key", key)
			req.Header.Set("anthropic-version", "2023-06-01")
		},
	}
)

// HTTP validates a key by listing the provider's models.
type HTTP struct {
	client   HTTPClient
	endpoint Endpoint
}

// NewHTTP creates an HTTP validator for one endpoint.
func NewHTTP(client HTTPClient, endpoint Endpoint) *HTTP {
	return &HTTP{client: client, endpoint: endpoint}
}

func (h *HTTP) Validate(ctx context.Context, providerID, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.endpoint.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to create test request: %w", err)
	}
	h.endpoint.Authorize(req, key)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("test request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s returned %d", ErrInvalidKey, providerID, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("test request returned non-200 status: %d, body: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}
