package pgpengine

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/tomjnixon/alot", "pgpengine")

// Loader is the constructor for an engine by name.
type Loader func(cfg *Config) (Engine, error)

var (
	lockLoaders sync.RWMutex
	loaders     = make(map[string]Loader)
)

// Register engine loader by name
func Register(name string, loader Loader) error {
	lockLoaders.Lock()
	defer lockLoaders.Unlock()

	if _, ok := loaders[name]; ok {
		return errors.Errorf("already registered: %s", name)
	}

	loaders[name] = loader

	return nil
}

// Unregister engine loader by name
func Unregister(name string) (Loader, error) {
	lockLoaders.Lock()
	defer lockLoaders.Unlock()

	if loader, ok := loaders[name]; ok {
		delete(loaders, name)
		return loader, nil
	}

	return nil, errors.Errorf("not registered: %s", name)
}

// Registered returns registered engine names
func Registered() []string {
	lockLoaders.RLock()
	defer lockLoaders.RUnlock()

	list := []string{}
	for m := range loaders {
		list = append(list, m)
	}
	return list
}

// Load returns an Engine from the given config location.
func Load(configLocation string) (Engine, error) {
	cfg, err := LoadConfig(configLocation)
	if err != nil {
		return nil, err
	}

	lockLoaders.RLock()
	loader, ok := loaders[cfg.Engine]
	lockLoaders.RUnlock()
	if !ok {
		return nil, errors.Errorf("engine not registered: %s", cfg.Engine)
	}

	eng, err := loader(cfg)
	if err != nil {
		return nil, err
	}
	logger.KV(xlog.DEBUG, "engine", eng.Name(), "cfg", configLocation)

	return eng, nil
}
