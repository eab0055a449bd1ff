package keycheck

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"wkchat/internal/keystore"
	"wkchat/internal/logger"
	"wkchat/internal/model"
	"wkchat/internal/provider"
	"wkchat/internal/validator"
)

// CredentialStore is the part of the keystore the checker needs.
type CredentialStore interface {
	List() []model.Credential
	Find(providerID string) (model.Credential, bool)
	SetValidity(providerID string, valid bool) error
	Save(providerID, key string, valid bool) (model.Credential, error)
}

// Result is the outcome of checking one stored key.
type Result struct {
	Provider string `json:"provider"`
	Valid    bool   `json:"valid"`
	Error    string `json:"error,omitempty"`
}

// Checker re-validates stored keys and records the outcome on each credential.
type Checker struct {
	store     CredentialStore
	validator validator.Validator
	logger    *slog.Logger
	timeout   time.Duration
	wg        sync.WaitGroup
}

// New creates a Checker. timeout bounds each individual validation.
func New(store CredentialStore, v validator.Validator, timeout time.Duration, log *slog.Logger) *Checker {
	return &Checker{
		store:     store,
		validator: v,
		logger:    log.With("component", "keycheck"),
		timeout:   timeout,
	}
}

// Check validates the key stored for one provider.
func (c *Checker) Check(ctx context.Context, providerID string) (Result, error) {
	cred, ok := c.store.Find(providerID)
	if !ok {
		return Result{}, keystore.ErrNotFound
	}
	c.logger.Info("Performing manual key check", "provider", cred.Provider)
	return c.check(ctx, cred), nil
}

// SaveKey validates key with the provider and stores it when accepted.
// Rejected keys are not stored.
func (c *Checker) SaveKey(ctx context.Context, providerID, key string) (model.Credential, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return model.Credential{}, keystore.ErrEmptyKey
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.validator.Validate(ctx, provider.Normalize(providerID), key); err != nil {
		c.logger.Warn("Refusing to save key that failed validation", "provider", providerID, "key_suffix", logger.KeySuffix(key), "error", err)
		return model.Credential{}, err
	}
	return c.store.Save(providerID, key, true)
}

// CheckAll validates every stored key concurrently. Results keep the stored order.
func (c *Checker) CheckAll(ctx context.Context) []Result {
	creds := c.store.List()
	results := make([]Result, len(creds))
	if len(creds) == 0 {
		return results
	}

	c.logger.Info("Starting health check for all keys", "count", len(creds))
	var wg sync.WaitGroup
	for i, cred := range creds {
		wg.Add(1)
		go func(i int, cred model.Credential) {
			defer wg.Done()
			results[i] = c.check(ctx, cred)
		}(i, cred)
	}
	wg.Wait()
	c.logger.Info("Finished health check for all keys.")
	return results
}

// CheckAllAsync triggers CheckAll in the background.
func (c *Checker) CheckAllAsync() {
	c.logger.Info("Triggering asynchronous health check for all keys...")
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.CheckAll(context.Background())
	}()
}

// Wait blocks until background checks started by CheckAllAsync have finished.
func (c *Checker) Wait() {
	c.wg.Wait()
}

func (c *Checker) check(ctx context.Context, cred model.Credential) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result := Result{Provider: cred.Provider, Valid: true}
	// Records written by older clients may carry an alias such as "google".
	if err := c.validator.Validate(ctx, provider.Normalize(cred.Provider), cred.Key); err != nil {
		result.Valid = false
		result.Error = err.Error()
		c.logger.Warn("Key failed health check", "provider", cred.Provider, "key_suffix", logger.KeySuffix(cred.Key), "error", err)
	} else if !cred.Valid() {
		c.logger.Info("Key passed health check, marking it valid", "provider", cred.Provider, "key_suffix", logger.KeySuffix(cred.Key))
	}

	if err := c.store.SetValidity(cred.Provider, result.Valid); err != nil {
		// The key may have been deleted while the check ran.
		c.logger.Warn("Failed to record key check result", "provider", cred.Provider, "error", err)
	}
	return result
}
