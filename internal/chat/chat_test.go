package chat

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"wkchat/internal/logger"
	"wkchat/internal/model"
	"wkchat/internal/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKeys struct {
	keys     map[string]string
	touched  []string
	registry *provider.Registry
}

func (f *fakeKeys) KeyForModel(modelID string) (string, string, bool) {
	providerID := f.registry.ProviderForModel(modelID)
	k, ok := f.keys[providerID]
	return providerID, k, ok
}

func (f *fakeKeys) TouchLastUsed(providerID string) {
	f.touched = append(f.touched, providerID)
}

func newTestService(t *testing.T, keys *fakeKeys) *Service {
	t.Helper()
	registry, err := provider.NewRegistry(provider.Gemini, nil)
	require.NoError(t, err)
	keys.registry = registry
	s := NewService(keys, registry, logger.Discard())
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	s.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestNewChatListDelete(t *testing.T) {
	s := newTestService(t, &fakeKeys{})

	first := s.NewChat("gpt-4")
	second := s.NewChat("claude-3")
	assert.Equal(t, DefaultTitle, first.Title)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, first.ID, list[1].ID)

	got, ok := s.Get(first.ID)
	require.True(t, ok)
	assert.Equal(t, "gpt-4", got.Model)

	require.NoError(t, s.Delete(first.ID))
	assert.ErrorIs(t, s.Delete(first.ID), ErrChatNotFound)
	assert.Len(t, s.List(), 1)

	_, err := s.Messages(first.ID)
	assert.ErrorIs(t, err, ErrChatNotFound)
}

func TestPrepareSendRequiresKey(t *testing.T) {
	keys := &fakeKeys{keys: map[string]string{}}
	s := newTestService(t, keys)

	_, err := s.PrepareSend("", "claude-3", "hello")
	var missing *MissingKeyError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "anthropic", missing.ProviderID)
	assert.Equal(t, "Anthropic", missing.ProviderName)
	assert.Equal(t, "missing api key for provider anthropic", missing.Error())
	assert.Empty(t, s.List(), "no chat is created when the gate fails")
	assert.Empty(t, keys.touched)
}

func TestPrepareSendCreatesChat(t *testing.T) {
	keys := &fakeKeys{keys: map[string]string{"openai": "sk-openai"}}
	s := newTestService(t, keys)

	req, err := s.PrepareSend("", "gpt-4", "  What is Go?  ")
	require.NoError(t, err)
	assert.Equal(t, "openai", req.Provider)
	assert.Equal(t, "sk-openai", req.APIKey)
	assert.Equal(t, "gpt-4", req.Model)
	assert.Equal(t, "What is Go?", req.Message.Content)
	assert.Equal(t, model.RoleUser, req.Message.Role)
	assert.Equal(t, []string{"openai"}, keys.touched)

	list := s.List()
	require.Len(t, list, 1)
	assert.Equal(t, req.ChatID, list[0].ID)

	// A follow-up goes to the same chat.
	_, err = s.PrepareSend(req.ChatID, "gpt-4", "and channels?")
	require.NoError(t, err)
	msgs, err := s.Messages(req.ChatID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "and channels?", msgs[1].Content)
}

func TestPrepareSendUnknownModelUsesDefaultProvider(t *testing.T) {
	keys := &fakeKeys{keys: map[string]string{"gemini": "AIza"}}
	s := newTestService(t, keys)

	req, err := s.PrepareSend("", "brand-new-model", "hi")
	require.NoError(t, err)
	assert.Equal(t, "gemini", req.Provider)
}

func TestPrepareSendErrors(t *testing.T) {
	keys := &fakeKeys{keys: map[string]string{"openai": "sk"}}
	s := newTestService(t, keys)

	_, err := s.PrepareSend("", "gpt-4", "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = s.PrepareSend("missing", "gpt-4", "hello")
	assert.ErrorIs(t, err, ErrChatNotFound)
}
