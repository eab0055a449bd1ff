package validator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"wkchat/internal/config"
	"wkchat/internal/provider"
)

// ErrInvalidKey is returned when a provider rejects a key.
var ErrInvalidKey = errors.New("api key rejected by provider")

// Validator checks a provider key.
type Validator interface {
	Validate(ctx context.Context, providerID, key string) error
}

// Simulated accepts every non-empty key after a fixed delay.
type Simulated struct {
	Delay time.Duration
}

func (s Simulated) Validate(ctx context.Context, providerID, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if s.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Router dispatches to a per-provider validator. Provider aliases such as "google"
// resolve to their canonical id before lookup.
type Router map[string]Validator

func (r Router) Validate(ctx context.Context, providerID, key string) error {
	providerID = provider.Normalize(providerID)
	v, ok := r[providerID]
	if !ok {
		return fmt.Errorf("no validator for provider %q", providerID)
	}
	return v.Validate(ctx, providerID, key)
}

// New builds the validator selected by the configuration.
func New(cfg config.ValidationConfig, logger *slog.Logger) Validator {
	if cfg.Mode != config.ValidationModeLive {
		logger.Debug("Using simulated key validation", "delay", cfg.DelayDuration())
		return Simulated{Delay: cfg.DelayDuration()}
	}

	client := &http.Client{Timeout: cfg.TimeoutDuration()}
	return Router{
		provider.OpenAI:    NewHTTP(client, OpenAIEndpoint),
		provider.Anthropic: NewHTTP(client, AnthropicEndpoint),
		provider.Gemini:    &Gemini{},
	}
}
