package node

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/tcfw/chaintree/internal/config"
	"github.com/tcfw/chaintree/pkg/storage"
)

func openStore(c *config.Storage, name string) (storage.Store, error) {
	if c.Backend == config.BackendMemory {
		return storage.NewMemStore(), nil
	}

	path := filepath.Join(c.Path, name)
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, errors.Wrap(err, "creating storage dir")
	}

	switch c.Backend {
	case config.BackendFS:
		return storage.NewFSStore(path)
	case config.BackendPebble:
		return storage.NewPebbleStore(path)
	case config.BackendBadger:
		return storage.NewBadgerStore(path)
	case config.BackendLevelDB:
		return storage.NewLevelDBStore(path)
	default:
		return nil, errors.Errorf("unknown storage backend %q", c.Backend)
	}
}
