// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/gogpu/compositor"
)

// DeviceFactory opens a device on the calling thread's current context.
type DeviceFactory func() (compositor.Device, error)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	factories  = make(map[string]DeviceFactory)
	// Priority order for Default (first available wins).
	backendPriority = []string{BackendGL, BackendRecord}
)

// Register registers a device factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it is replaced.
//
// Register panics if factory is nil.
func Register(name string, factory DeviceFactory) {
	if factory == nil {
		panic(fmt.Sprintf("%v: %q", ErrNilFactory, name))
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered backend names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Open opens a device from the named backend.
func Open(name string) (compositor.Device, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (forgotten import?)", ErrBackendNotAvailable, name)
	}
	dev, err := factory()
	if err != nil {
		return nil, fmt.Errorf("backend: open %q: %w", name, err)
	}
	compositor.Logger().Debug("backend: device opened", slog.String("backend", name))
	return dev, nil
}

// Default opens the best available backend based on priority.
// Priority order: gl > record, then any other registered backend.
// A backend whose factory fails is skipped.
func Default() (compositor.Device, error) {
	tried := make(map[string]bool)
	for _, name := range backendPriority {
		tried[name] = true
		if !IsRegistered(name) {
			continue
		}
		dev, err := Open(name)
		if err == nil {
			return dev, nil
		}
		compositor.Logger().Warn("backend: skipping unavailable backend",
			slog.String("backend", name), slog.Any("err", err))
	}

	for _, name := range Available() {
		if tried[name] {
			continue
		}
		if dev, err := Open(name); err == nil {
			return dev, nil
		}
	}

	return nil, ErrBackendNotAvailable
}
