package main

import (
	"fmt"
	"log/slog"

	"wkchat/internal/chat"
	"wkchat/internal/config"
	"wkchat/internal/db"
	"wkchat/internal/keycheck"
	"wkchat/internal/keystore"
	"wkchat/internal/provider"
	"wkchat/internal/validator"
)

// app wires the services every command needs.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	storage  db.Service
	registry *provider.Registry
	keys     *keystore.Store
	checker  *keycheck.Checker
	chats    *chat.Service
}

func newApp(cfg *config.Config, log *slog.Logger) (*app, error) {
	storage, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}
	log.Debug("Storage initialized", "backend", cfg.Storage.Backend, "type", cfg.Database.Type)

	registry, err := provider.NewRegistry(cfg.Models.DefaultProvider, cfg.Models.Mappings)
	if err != nil {
		return nil, fmt.Errorf("invalid models configuration: %w", err)
	}

	keys := keystore.New(storage, registry, log)
	v := validator.New(cfg.Validation, log)
	return &app{
		cfg:      cfg,
		log:      log,
		storage:  storage,
		registry: registry,
		keys:     keys,
		checker:  keycheck.New(keys, v, cfg.Validation.TimeoutDuration(), log),
		chats:    chat.NewService(keys, registry, log),
	}, nil
}

func openStorage(cfg *config.Config) (db.Service, error) {
	if cfg.Storage.Backend == config.StorageBackendMemory {
		return db.NewMemoryService(), nil
	}
	service, err := db.NewService(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	return service, nil
}
