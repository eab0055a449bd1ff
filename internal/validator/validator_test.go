package validator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wkchat/internal/config"
	"wkchat/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSimulated(t *testing.T) {
	v := Simulated{Delay: 10 * time.Millisecond}

	start := time.Now()
	assert.NoError(t, v.Validate(context.Background(), "openai", "sk-anything"))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)

	assert.ErrorIs(t, v.Validate(context.Background(), "openai", ""), ErrInvalidKey)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := Simulated{Delay: time.Hour}
	assert.ErrorIs(t, slow.Validate(ctx, "openai", "sk-anything"), context.Canceled)
}

func TestHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			w.WriteHeader(http.StatusOK)
		case "Bearer bad":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(" slow down "))
		}
	}))
	defer server.Close()

	endpoint := OpenAIEndpoint
	endpoint.URL = server.URL + "/v1/models"
	v := NewHTTP(server.Client(), endpoint)

	assert.NoError(t, v.Validate(context.Background(), "openai", "good"))

	err := v.Validate(context.Background(), "openai", "bad")
	assert.ErrorIs(t, err, ErrInvalidKey)

	err = v.Validate(context.Background(), "openai", "limited")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidKey)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "body: slow down")
}

func TestAnthropicEndpointHeaders(t *testing.T) {
	var gotKey, gotVersion string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
	}))
	defer server.Close()

	endpoint := AnthropicEndpoint
	endpoint.URL = server.URL
	require.NoError(t, NewHTTP(server.Client(), endpoint).Validate(context.Background(), "anthropic", "sk-ant-x"))
	assert.Equal(t, "sk-ant-x", gotKey)
	assert.Equal(t, "2023-06-01", gotVersion)
}

type mockHTTPClient struct {
	mock.Mock
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	resp, _ := args.Get(0).(*http.Response)
	return resp, args.Error(1)
}

func TestHTTPTransportError(t *testing.T) {
	client := new(mockHTTPClient)
	client.On("Do", mock.Anything).Return(nil, errors.New("connection refused"))

	err := NewHTTP(client, OpenAIEndpoint).Validate(context.Background(), "openai", "sk")
	assert.ErrorContains(t, err, "connection refused")
	client.AssertExpectations(t)
}

type stubValidator struct {
	calls []string
	err   error
}

func (s *stubValidator) Validate(_ context.Context, providerID, _ string) error {
	s.calls = append(s.calls, providerID)
	return s.err
}

func TestRouter(t *testing.T) {
	openai := &stubValidator{}
	gemini := &stubValidator{err: ErrInvalidKey}
	r := Router{"openai": openai, "gemini": gemini}

	assert.NoError(t, r.Validate(context.Background(), "openai", "k"))
	assert.ErrorIs(t, r.Validate(context.Background(), "gemini", "k"), ErrInvalidKey)
	assert.ErrorContains(t, r.Validate(context.Background(), "mistral", "k"), "no validator")
	assert.Equal(t, []string{"openai"}, openai.calls)
	assert.Equal(t, []string{"gemini"}, gemini.calls)

	assert.ErrorIs(t, r.Validate(context.Background(), "google", "k"), ErrInvalidKey)
	assert.Equal(t, []string{"gemini", "gemini"}, gemini.calls, "aliases dispatch under the canonical id")
}

func TestNew(t *testing.T) {
	v := New(config.ValidationConfig{Mode: config.ValidationModeSimulated, Delay: "2s", Timeout: "5s"}, logger.Discard())
	assert.Equal(t, Simulated{Delay: 2 * time.Second}, v)

	v = New(config.ValidationConfig{Mode: config.ValidationModeLive, Delay: "1s", Timeout: "5s"}, logger.Discard())
	router, ok := v.(Router)
	require.True(t, ok)
	assert.Contains(t, router, "openai")
	assert.Contains(t, router, "anthropic")
	assert.IsType(t, &Gemini{}, router["gemini"])
}
