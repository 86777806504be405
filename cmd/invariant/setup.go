package main

import (
	"os"
	"path/filepath"

	"github.com/invariant-run/invariant/internal/registry"
	"github.com/invariant-run/invariant/internal/store"
	"github.com/invariant-run/invariant/internal/store/envelope"
	"github.com/invariant-run/invariant/ops/poly"
	"github.com/invariant-run/invariant/ops/stdlib"
)

// EnvCacheDir overrides the default on-disk cache location.
const EnvCacheDir = "INVARIANT_CACHE_DIR"

// defaultRoot is the disk store's default root directory, relative to the
// current working directory.
const defaultRoot = ".invariant/cache"

// defaultCacheDir resolves the directory the disk tier persists artifacts
// under, honoring EnvCacheDir before falling back to defaultRoot.
func defaultCacheDir() (string, error) {
	if dir := os.Getenv(EnvCacheDir); dir != "" {
		return dir, nil
	}
	return filepath.FromSlash(defaultRoot), nil
}

// artifactRegistry lists every Domain artifact type the disk store's
// envelope codec must be able to decode.
func artifactRegistry() *envelope.Registry {
	r := envelope.NewRegistry()
	r.Register(poly.TypeName, poly.Read)
	return r
}

// newOpRegistry builds an operation registry carrying every package this
// binary ships operations for.
func newOpRegistry() (*registry.Registry, error) {
	r := registry.New()
	if err := r.RegisterPackage("stdlib", stdlib.Operations()); err != nil {
		return nil, err
	}
	if err := r.RegisterPackage("poly", poly.Operations()); err != nil {
		return nil, err
	}
	return r, nil
}

// newDefaultStore builds the chained L1 (in-memory)/L2 (on-disk) store
// every subcommand that touches the cache uses.
func newDefaultStore() (store.Store, error) {
	dir, err := defaultCacheDir()
	if err != nil {
		return nil, err
	}
	l1 := store.NewMemory()
	l2 := store.NewDisk(dir, artifactRegistry())
	return store.NewChain(l1, l2), nil
}
