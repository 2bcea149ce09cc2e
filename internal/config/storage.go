package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Backend string

const (
	BackendMemory  Backend = "memory"
	BackendFS      Backend = "fs"
	BackendPebble  Backend = "pebble"
	BackendBadger  Backend = "badger"
	BackendLevelDB Backend = "leveldb"
)

type Storage struct {
	Backend Backend
	Path    string
	// CacheSize is the number of objects kept in the read cache, 0 disables it
	CacheSize int
}

const (
	Cfg_storage_backend   = "storage.backend"
	Cfg_storage_path      = "storage.path"
	Cfg_storage_cacheSize = "storage.cacheSize"
)

var (
	storageDefaults = map[string]interface{}{
		Cfg_storage_backend:   string(BackendPebble),
		Cfg_storage_path:      homePath("data"),
		Cfg_storage_cacheSize: 1024,
	}
)

func init() {
	for k, v := range storageDefaults {
		viper.SetDefault(k, v)
	}
}

func buildStorageConfig() (*Storage, error) {
	c := &Storage{
		Backend:   Backend(viper.GetString(Cfg_storage_backend)),
		Path:      expandHome(viper.GetString(Cfg_storage_path)),
		CacheSize: viper.GetInt(Cfg_storage_cacheSize),
	}

	switch c.Backend {
	case BackendMemory, BackendFS, BackendPebble, BackendBadger, BackendLevelDB:
	default:
		return nil, errors.Errorf("unknown storage backend %q", c.Backend)
	}

	if c.Backend != BackendMemory && c.Path == "" {
		return nil, errors.Errorf("%s requires a storage path", c.Backend)
	}

	if c.CacheSize < 0 {
		return nil, errors.New("cache size must not be negative")
	}

	return c, nil
}
