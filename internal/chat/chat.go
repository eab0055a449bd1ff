// Package chat holds conversation state in process memory. Nothing here is persisted and
// no assistant replies are generated; it tracks chats, user messages and the key gate
// that must pass before a message could be sent to a provider.
package chat

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"wkchat/internal/model"
	"wkchat/internal/provider"
)

// DefaultTitle is the title of a freshly created chat.
const DefaultTitle = "New conversation"

var (
	ErrChatNotFound = errors.New("chat not found")
	ErrEmptyMessage = errors.New("message is empty")
)

// MissingKeyError is returned when the model's provider has no stored key.
type MissingKeyError struct {
	ProviderID   string
	ProviderName string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing api key for provider %s", e.ProviderID)
}

// KeyResolver is the part of the keystore the chat service needs.
type KeyResolver interface {
	KeyForModel(modelID string) (providerID, key string, ok bool)
	TouchLastUsed(providerID string)
}

// SendRequest is everything needed to forward a user message to a provider.
type SendRequest struct {
	ChatID   string
	Model    string
	Provider string
	APIKey   string
	Message  model.ChatMessage
}

type session struct {
	summary  model.ChatSummary
	messages []model.ChatMessage
}

// Service tracks chats, newest first.
type Service struct {
	mu       sync.RWMutex
	sessions []*session
	keys     KeyResolver
	registry *provider.Registry
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

func NewService(keys KeyResolver, registry *provider.Registry, logger *slog.Logger) *Service {
	return &Service{
		keys:     keys,
		registry: registry,
		logger:   logger.With("component", "chat"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// NewChat starts an empty conversation for modelID.
func (s *Service) NewChat(modelID string) model.ChatSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newChatLocked(modelID).summary
}

func (s *Service) newChatLocked(modelID string) *session {
	sess := &session{summary: model.ChatSummary{
		ID:        s.newID(),
		Title:     DefaultTitle,
		Timestamp: s.now(),
		Model:     modelID,
	}}
	s.sessions = append([]*session{sess}, s.sessions...)
	s.logger.Debug("Created chat", "chat_id", sess.summary.ID, "model", modelID)
	return sess
}

// List returns all chat summaries, newest first.
func (s *Service) List() []model.ChatSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ChatSummary, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.summary
	}
	return out
}

// Get returns one chat summary.
func (s *Service) Get(id string) (model.ChatSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess := s.find(id); sess != nil {
		return sess.summary, true
	}
	return model.ChatSummary{}, false
}

// Delete drops a chat and its messages.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sess := range s.sessions {
		if sess.summary.ID == id {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrChatNotFound, id)
}

// Messages returns a copy of a chat's messages in send order.
func (s *Service) Messages(id string) ([]model.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess := s.find(id)
	if sess == nil {
		return nil, fmt.Errorf("%w: %s", ErrChatNotFound, id)
	}
	return append([]model.ChatMessage{}, sess.messages...), nil
}

// PrepareSend checks that the model's provider has a key, records the user message
// (creating a chat when chatID is empty) and marks the key as used.
func (s *Service) PrepareSend(chatID, modelID, content string) (*SendRequest, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	providerID, key, ok := s.keys.KeyForModel(modelID)
	if !ok {
		return nil, &MissingKeyError{ProviderID: providerID, ProviderName: s.registry.DisplayName(providerID)}
	}

	s.mu.Lock()
	var sess *session
	if chatID == "" {
		sess = s.newChatLocked(modelID)
	} else if sess = s.find(chatID); sess == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrChatNotFound, chatID)
	}
	msg := model.ChatMessage{
		ID:        s.newID(),
		Content:   content,
		Role:      model.RoleUser,
		Timestamp: s.now(),
	}
	sess.messages = append(sess.messages, msg)
	id := sess.summary.ID
	s.mu.Unlock()

	s.keys.TouchLastUsed(providerID)
	return &SendRequest{
		ChatID:   id,
		Model:    modelID,
		Provider: providerID,
		APIKey:   key,
		Message:  msg,
	}, nil
}

// find must be called with mu held.
func (s *Service) find(id string) *session {
	for _, sess := range s.sessions {
		if sess.summary.ID == id {
			return sess
		}
	}
	return nil
}
