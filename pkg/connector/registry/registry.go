// Package registry maps connector names to their factories. Connector
// packages register themselves from init.
package registry

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/carflow/pkg/config"
	"github.com/ajitpratap0/carflow/pkg/connector/core"
	"github.com/ajitpratap0/carflow/pkg/errors"
	"github.com/ajitpratap0/carflow/pkg/logger"
)

// Registry manages connector registration and instantiation
type Registry struct {
	sources      map[string]SourceFactory
	destinations map[string]DestinationFactory
	info         map[string]*ConnectorInfo
	mu           sync.RWMutex
}

// SourceFactory is a function that creates source connector instances.
type SourceFactory func(cfg *config.Config) (core.Source, error)

// DestinationFactory is a function that creates destination connector instances.
type DestinationFactory func(cfg *config.Config) (core.Destination, error)

// ConnectorInfo describes a registered connector for the list command
type ConnectorInfo struct {
	Name        string
	Type        core.ConnectorType
	Description string
}

// Global registry instance
var globalRegistry = NewRegistry()

// NewRegistry creates a new connector registry
func NewRegistry() *Registry {
	return &Registry{
		sources:      make(map[string]SourceFactory),
		destinations: make(map[string]DestinationFactory),
		info:         make(map[string]*ConnectorInfo),
	}
}

func infoKey(t core.ConnectorType, name string) string {
	return string(t) + "/" + name
}

// RegisterSource registers a source connector factory
func (r *Registry) RegisterSource(name, description string, factory SourceFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[name]; exists {
		return errors.Newf(errors.ErrorTypeConfig, "source connector %s already registered", name)
	}

	r.sources[name] = factory
	r.info[infoKey(core.ConnectorTypeSource, name)] = &ConnectorInfo{Name: name, Type: core.ConnectorTypeSource, Description: description}
	return nil
}

// RegisterDestination registers a destination connector factory
func (r *Registry) RegisterDestination(name, description string, factory DestinationFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.destinations[name]; exists {
		return errors.Newf(errors.ErrorTypeConfig, "destination connector %s already registered", name)
	}

	r.destinations[name] = factory
	r.info[infoKey(core.ConnectorTypeDestination, name)] = &ConnectorInfo{Name: name, Type: core.ConnectorTypeDestination, Description: description}
	return nil
}

// CreateSource creates a source connector instance
func (r *Registry) CreateSource(name string, cfg *config.Config) (core.Source, error) {
	r.mu.RLock()
	factory, exists := r.sources[name]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.Newf(errors.ErrorTypeConfig, "source connector %s not found", name)
	}

	source, err := factory(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create source connector "+name)
	}

	logger.Get().Debug("source connector created", zap.String("name", name))
	return source, nil
}

// CreateDestination creates a destination connector instance
func (r *Registry) CreateDestination(name string, cfg *config.Config) (core.Destination, error) {
	r.mu.RLock()
	factory, exists := r.destinations[name]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.Newf(errors.ErrorTypeConfig, "destination connector %s not found", name)
	}

	destination, err := factory(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create destination connector "+name)
	}

	logger.Get().Debug("destination connector created", zap.String("name", name))
	return destination, nil
}

// ListSources returns all registered source names, sorted
func (r *Registry) ListSources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListDestinations returns all registered destination names, sorted
func (r *Registry) ListDestinations() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.destinations))
	for name := range r.destinations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Info returns the description of a registered connector
func (r *Registry) Info(t core.ConnectorType, name string) (*ConnectorInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.info[infoKey(t, name)]
	return info, ok
}

// RegisterSource registers a source in the global registry
func RegisterSource(name, description string, factory SourceFactory) error {
	return globalRegistry.RegisterSource(name, description, factory)
}

// RegisterDestination registers a destination in the global registry
func RegisterDestination(name, description string, factory DestinationFactory) error {
	return globalRegistry.RegisterDestination(name, description, factory)
}

// CreateSource creates a source from the global registry
func CreateSource(name string, cfg *config.Config) (core.Source, error) {
	return globalRegistry.CreateSource(name, cfg)
}

// CreateDestination creates a destination from the global registry
func CreateDestination(name string, cfg *config.Config) (core.Destination, error) {
	return globalRegistry.CreateDestination(name, cfg)
}

// ListSources lists the global registry's sources
func ListSources() []string {
	return globalRegistry.ListSources()
}

// ListDestinations lists the global registry's destinations
func ListDestinations() []string {
	return globalRegistry.ListDestinations()
}

// Info describes a connector in the global registry
func Info(t core.ConnectorType, name string) (*ConnectorInfo, bool) {
	return globalRegistry.Info(t, name)
}
