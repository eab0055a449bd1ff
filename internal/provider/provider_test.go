package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderForModel(t *testing.T) {
	r, err := NewRegistry(Gemini, nil)
	require.NoError(t, err)

	tests := map[string]string{
		"gpt-4":            OpenAI,
		"gpt-3.5-turbo":    OpenAI,
		"claude-3":         Anthropic,
		"gemini-2.5-flash": Gemini,
		"unknown-model":    Gemini,
		"":                 Gemini,
	}
	for modelID, want := range tests {
		assert.Equal(t, want, r.ProviderForModel(modelID), "model %q", modelID)
	}
}

func TestDefaultProviderIsStable(t *testing.T) {
	r, err := NewRegistry("openai", nil)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.Equal(t, OpenAI, r.ProviderForModel("mystery"))
	}
	assert.Equal(t, OpenAI, r.DefaultProvider())

	// The alias resolves for the default too.
	r, err = NewRegistry("Google", nil)
	require.NoError(t, err)
	assert.Equal(t, Gemini, r.DefaultProvider())

	_, err = NewRegistry("mistral", nil)
	assert.ErrorContains(t, err, "unknown default provider")
}

func TestExtraMappings(t *testing.T) {
	r, err := NewRegistry(Gemini, map[string]string{
		"gpt-4o": "openai",
		"gpt-4":  "anthropic",
	})
	require.NoError(t, err)

	assert.Equal(t, OpenAI, r.ProviderForModel("gpt-4o"))
	assert.Equal(t, Anthropic, r.ProviderForModel("gpt-4"))
	m, ok := r.Model("gpt-4o")
	require.True(t, ok)
	assert.Equal(t, OpenAI, m.ProviderID)
	assert.Len(t, r.Models(), len(builtinModels)+1)

	_, err = NewRegistry(Gemini, map[string]string{"x": "nowhere"})
	assert.ErrorContains(t, err, "unknown provider")
}

func TestProviderLookup(t *testing.T) {
	r, err := NewRegistry(Gemini, nil)
	require.NoError(t, err)

	p, ok := r.Provider("google")
	require.True(t, ok)
	assert.Equal(t, "Google AI", p.Name)
	assert.Equal(t, "AIza...", p.Placeholder)

	_, ok = r.Provider("mistral")
	assert.False(t, ok)

	assert.Equal(t, "Anthropic", r.DisplayName("anthropic"))
	assert.Equal(t, "mistral", r.DisplayName("mistral"))
	assert.Len(t, r.Providers(), 3)
}
