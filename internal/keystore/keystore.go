// Package keystore keeps the user's provider credentials as a JSON array under a single
// key of a key-value storage, at most one entry per provider.
//
// Lookups never fail: storage and decoding errors are logged and reported as an empty
// list or a missing key. Mutations return errors.
package keystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"wkchat/internal/logger"
	"wkchat/internal/model"
	"wkchat/internal/provider"
)

// StorageKey is the key the credential list is stored under.
const StorageKey = "wk-chat-api-keys"

var (
	ErrEmptyKey        = errors.New("api key is empty")
	ErrUnknownProvider = errors.New("unknown provider")
	ErrNotFound        = errors.New("no api key stored for provider")
)

// Storage is the key-value backend the list is persisted to.
type Storage interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// Store manages the credential list.
type Store struct {
	mu       sync.Mutex
	storage  Storage
	registry *provider.Registry
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Store over the given storage.
func New(storage Storage, registry *provider.Registry, log *slog.Logger) *Store {
	return &Store{
		storage:  storage,
		registry: registry,
		logger:   log.With("component", "keystore"),
		now:      time.Now,
	}
}

// List returns all stored credentials in stored order.
func (s *Store) List() []model.Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds, err := s.load()
	if err != nil {
		s.logger.Error("Failed to load API keys", "error", err)
		return []model.Credential{}
	}
	return creds
}

// Find returns the credential stored for a provider.
func (s *Store) Find(providerID string) (model.Credential, bool) {
	pid := s.registry.Normalize(providerID)
	for _, c := range s.List() {
		if s.registry.Normalize(c.Provider) == pid && c.Key != "" {
			return c, true
		}
	}
	return model.Credential{}, false
}

// KeyFor returns the API key stored for a provider.
func (s *Store) KeyFor(providerID string) (string, bool) {
	c, ok := s.Find(providerID)
	return c.Key, ok
}

// Has reports whether a key is stored for a provider.
func (s *Store) Has(providerID string) bool {
	_, ok := s.KeyFor(providerID)
	return ok
}

// KeyForModel resolves the provider serving modelID and returns its key.
func (s *Store) KeyForModel(modelID string) (providerID, key string, ok bool) {
	providerID = s.registry.ProviderForModel(modelID)
	key, ok = s.KeyFor(providerID)
	return providerID, key, ok
}

// TouchLastUsed records that the provider's key was just used. It is a no-op when no key is stored.
func (s *Store) TouchLastUsed(providerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.load()
	if err != nil {
		s.logger.Error("Failed to update API key usage", "provider", providerID, "error", err)
		return
	}
	idx := s.indexOf(creds, providerID)
	if idx < 0 {
		return
	}
	now := s.now()
	creds[idx].LastUsed = &now
	if err := s.persist(creds); err != nil {
		s.logger.Error("Failed to update API key usage", "provider", providerID, "error", err)
	}
}

// Save stores a key for a provider, replacing any existing entry for it.
func (s *Store) Save(providerID, key string, valid bool) (model.Credential, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return model.Credential{}, ErrEmptyKey
	}
	p, ok := s.registry.Provider(providerID)
	if !ok {
		return model.Credential{}, fmt.Errorf("%w: %s", ErrUnknownProvider, providerID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.load()
	if err != nil {
		// The stored document is unreadable; it is replaced by the new list.
		s.logger.Warn("Discarding unreadable API key list", "error", err)
		creds = nil
	}

	now := s.now()
	cred := model.Credential{
		Provider: p.ID,
		Name:     p.Name,
		Key:      key,
		IsValid:  &valid,
		LastUsed: &now,
	}

	replaced := false
	out := creds[:0:0]
	for _, c := range creds {
		if s.registry.Normalize(c.Provider) != p.ID {
			out = append(out, c)
			continue
		}
		if !replaced {
			out = append(out, cred)
			replaced = true
		}
	}
	if !replaced {
		out = append(out, cred)
	}

	if err := s.persist(out); err != nil {
		return model.Credential{}, err
	}
	s.logger.Info("Saved API key", "provider", p.ID, "key_suffix", logger.KeySuffix(key), "replaced", replaced)
	return cred, nil
}

// Delete removes the provider's credential.
func (s *Store) Delete(providerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.load()
	if err != nil {
		return err
	}
	pid := s.registry.Normalize(providerID)
	out := creds[:0:0]
	for _, c := range creds {
		if s.registry.Normalize(c.Provider) != pid {
			out = append(out, c)
		}
	}
	if len(out) == len(creds) {
		return fmt.Errorf("%w: %s", ErrNotFound, providerID)
	}
	if err := s.persist(out); err != nil {
		return err
	}
	s.logger.Info("Deleted API key", "provider", pid)
	return nil
}

// SetValidity records the outcome of a key check.
func (s *Store) SetValidity(providerID string, valid bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.load()
	if err != nil {
		return err
	}
	idx := s.indexOf(creds, providerID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, providerID)
	}
	creds[idx].IsValid = &valid
	return s.persist(creds)
}

func (s *Store) indexOf(creds []model.Credential, providerID string) int {
	pid := s.registry.Normalize(providerID)
	for i, c := range creds {
		if s.registry.Normalize(c.Provider) == pid {
			return i
		}
	}
	return -1
}

// load must be called with mu held.
func (s *Store) load() ([]model.Credential, error) {
	raw, found, err := s.storage.GetItem(StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read api keys: %w", err)
	}
	if !found || strings.TrimSpace(raw) == "" {
		return []model.Credential{}, nil
	}
	var creds []model.Credential
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return nil, fmt.Errorf("failed to decode api keys: %w", err)
	}
	if creds == nil {
		creds = []model.Credential{}
	}
	return creds, nil
}

// persist must be called with mu held. An empty list removes the item.
func (s *Store) persist(creds []model.Credential) error {
	if len(creds) == 0 {
		if err := s.storage.RemoveItem(StorageKey); err != nil {
			return fmt.Errorf("failed to clear api keys: %w", err)
		}
		return nil
	}
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to encode api keys: %w", err)
	}
	if err := s.storage.SetItem(StorageKey, string(data)); err != nil {
		return fmt.Errorf("failed to write api keys: %w", err)
	}
	return nil
}
