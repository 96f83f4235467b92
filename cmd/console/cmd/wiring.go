package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jrsteele09/go-catalog-admin/internal/config"
	"github.com/jrsteele09/go-catalog-admin/token"
	"github.com/jrsteele09/go-catalog-admin/token/boltstore"
	"github.com/jrsteele09/go-catalog-admin/token/memstore"
	"go.etcd.io/bbolt"
)

// openStore returns the configured token store and a func releasing it.
func openStore(cfg config.StorageConfig) (token.Store, func() error, error) {
	var (
		store   token.Store
		closeFn = func() error { return nil }
	)

	switch cfg.GetStorageDriver() {
	case config.StorageDriverMemory:
		store = memstore.New()
	case config.StorageDriverBolt:
		path := cfg.GetStoragePath()
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		bolt, err := boltstore.NewFromFile(path, cfg.GetStorageBucket(), &bbolt.Options{Timeout: time.Second})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open token storage: %w", err)
		}
		store, closeFn = bolt, bolt.Close
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.GetStorageDriver())
	}

	if secret := cfg.GetStorageSecret(); secret != "" {
		sealed, err := token.Sealed(store, secret)
		if err != nil {
			_ = closeFn()
			return nil, nil, err
		}
		store = sealed
	}
	return store, closeFn, nil
}
