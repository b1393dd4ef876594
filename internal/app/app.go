package app

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bluepython508/monfari/internal/config"
	"github.com/bluepython508/monfari/internal/store"
)

type App struct {
	Store  store.Store
	Config *config.Config
}

// NewApp opens the configured backend and returns it with a cleanup func
// that releases whatever the backend holds (repository lock, database
// handle, connection).
func NewApp(cfg *config.Config, migrationFS fs.FS) (*App, func(), error) {
	addr, err := RepositoryAddress(cfg)
	if err != nil {
		return nil, nil, err
	}

	repo, err := store.Open(addr, migrationFS)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open repository %s: %w", addr, err)
	}

	cleanup := func() {
		if err := repo.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing repository: %v\n", err)
		}
	}

	return &App{Store: repo, Config: cfg}, cleanup, nil
}

// RepositoryAddress resolves the configured address, falling back to the
// per-user default repository path.
func RepositoryAddress(cfg *config.Config) (string, error) {
	if cfg.Repository.Address != "" {
		return cfg.Repository.Address, nil
	}
	appDir, err := getAppDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appDir, "repository"), nil
}

func getAppDataDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("unable to determine user home directory: %w", err)
		}
		return filepath.Join(home, ".monfari"), nil
	}

	return filepath.Join(configDir, "monfari"), nil
}
