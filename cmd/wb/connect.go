package main

import (
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/zulandar/waybill/internal/config"
	"github.com/zulandar/waybill/internal/store"
)

const defaultConfigPath = "waybill.yaml"

// loadConfig reads the config file, falling back to defaults when the
// default path does not exist. An explicit path must exist.
func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

// openDB connects to the configured backend.
func openDB(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.Storage.Driver {
	case "mysql":
		return store.ConnectMySQL(cfg.Storage.Host, cfg.Storage.Port, cfg.Storage.Database)
	default:
		return store.ConnectSQLite(cfg.Storage.Path)
	}
}

// connectFromConfig loads the config, connects, and migrates, returning
// a ready document store.
func connectFromConfig(configPath string) (*config.Config, store.Store, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := openDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := store.AutoMigrate(db); err != nil {
		return nil, nil, err
	}
	return cfg, store.New(db), nil
}
