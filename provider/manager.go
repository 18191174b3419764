package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/voiceshift/errors"
	"github.com/kbukum/voiceshift/logger"
)

// Manager instantiates providers from a Registry and hands them out,
// either the configured default or whatever the Selector picks.
type Manager[T Provider] struct {
	mu          sync.RWMutex
	registry    *Registry[T]
	selector    Selector[T]
	providers   map[string]T
	defaultName string
	log         *logger.Logger
}

// NewManager creates a Manager over registry using selector.
func NewManager[T Provider](registry *Registry[T], selector Selector[T]) *Manager[T] {
	return &Manager[T]{
		registry:  registry,
		selector:  selector,
		providers: make(map[string]T),
		log:       logger.Get("provider"),
	}
}

// Register adds a factory to the underlying registry.
func (m *Manager[T]) Register(name string, factory Factory[T]) {
	m.registry.RegisterFactory(name, factory)
	m.log.Debug("factory registered", logger.Fields(logger.FieldProvider, name))
}

// Initialize creates the named provider and keeps it for Get/GetByName.
func (m *Manager[T]) Initialize(name string, cfg map[string]any) error {
	instance, err := m.registry.Create(name, cfg)
	if err != nil {
		return fmt.Errorf("initialize provider %q: %w", name, err)
	}
	m.mu.Lock()
	m.providers[name] = instance
	m.mu.Unlock()
	m.registry.Set(name, instance)
	m.log.Info("provider initialized", logger.Fields(logger.FieldProvider, name))
	return nil
}

// Get returns the default provider if one is set, otherwise the
// selector's choice among initialized providers.
func (m *Manager[T]) Get(ctx context.Context) (T, error) {
	m.mu.RLock()
	defaultName := m.defaultName
	providers := m.snapshotLocked()
	m.mu.RUnlock()

	if defaultName != "" {
		if p, ok := providers[defaultName]; ok {
			return p, nil
		}
		var zero T
		return zero, errors.NotFound("provider", defaultName)
	}
	return m.selector.Select(ctx, providers)
}

// GetByName returns an initialized provider by name.
func (m *Manager[T]) GetByName(name string) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.providers[name]; ok {
		return p, nil
	}
	var zero T
	return zero, errors.NotFound("provider", name)
}

// SetDefault pins Get to an initialized provider.
func (m *Manager[T]) SetDefault(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.providers[name]; !ok {
		return errors.NotFound("provider", name)
	}
	m.defaultName = name
	return nil
}

// Available returns the sorted names of initialized providers.
func (m *Manager[T]) Available() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close releases every initialized provider that implements Closeable.
// All providers are attempted; the first error is returned.
func (m *Manager[T]) Close(ctx context.Context) error {
	m.mu.RLock()
	providers := m.snapshotLocked()
	m.mu.RUnlock()

	var first error
	for name, p := range providers {
		c, ok := any(p).(Closeable)
		if !ok {
			continue
		}
		if err := c.Close(ctx); err != nil {
			m.log.Warn("provider close failed", logger.ErrorFields("close", err))
			if first == nil {
				first = fmt.Errorf("close provider %q: %w", name, err)
			}
		}
	}
	return first
}

// snapshotLocked copies the providers map; mu must be held.
func (m *Manager[T]) snapshotLocked() map[string]T {
	cp := make(map[string]T, len(m.providers))
	for k, v := range m.providers {
		cp[k] = v
	}
	return cp
}
