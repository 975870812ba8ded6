/*
Package components defines the component registry consulted when checking
requirements on installed components (plugins), and an in-memory registry
implementation.
*/
package components

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrComponentNotFound  = errors.New("component not found")
	ErrComponentNotLoaded = errors.New("component is not loaded")
)

// Component represents a loaded component.
type Component interface {
	// Version returns the self-reported component version (e.g. '2.3.0').
	Version() string
}

// Registry represents the component registry interface.
//
// Implementations must be safe for concurrent read access.
type Registry interface {
	// Names returns names of every known component.
	Names() []string
	// IsLoaded reports whether the named component is loaded.
	IsLoaded(name string) bool
	// IsActivated reports whether the named component is activated.
	IsActivated(name string) bool
	// Load returns the named component.
	Load(name string) (Component, error)
}

// Info describes one registered component.
type Info struct {
	Name      string `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	Version   string `json:"version" yaml:"version" mapstructure:"version"`
	Loaded    bool   `json:"loaded" yaml:"loaded" mapstructure:"loaded"`
	Activated bool   `json:"activated" yaml:"activated" mapstructure:"activated"`
}

// AsComponent returns a Component reporting the info version.
func (i Info) AsComponent() Component {
	return staticComponent(i.Version)
}

// staticComponent is a Component reporting a fixed version.
type staticComponent string

func (sc staticComponent) Version() string {
	return string(sc)
}

// MemoryRegistry is a Registry storing component states in memory
// (useful for tests, configuration driven checks or registry snapshots).
//
// Lookups are case-sensitive, like the names reported by Names.
type MemoryRegistry struct {
	mu         sync.RWMutex
	components map[string]Info
}

// NewMemoryRegistry constructs a registry holding the given components.
func NewMemoryRegistry(infos ...Info) *MemoryRegistry {
	mr := &MemoryRegistry{components: make(map[string]Info, len(infos))}
	for _, info := range infos {
		mr.components[info.Name] = info
	}
	return mr
}

// Register adds or replaces a component.
func (mr *MemoryRegistry) Register(info Info) {
	mr.mu.Lock()
	mr.components[info.Name] = info
	mr.mu.Unlock()
}

// SetActivated changes the activation state of a registered component.
func (mr *MemoryRegistry) SetActivated(name string, activated bool) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	info, ok := mr.components[name]
	if !ok {
		return fmt.Errorf("unable to change %q activation: %w", name, ErrComponentNotFound)
	}
	info.Activated = activated
	mr.components[name] = info
	return nil
}

// Names returns registered component names in alphabetical order.
func (mr *MemoryRegistry) Names() []string {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	names := make([]string, 0, len(mr.components))
	for name := range mr.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsLoaded reports whether the named component is registered and loaded.
func (mr *MemoryRegistry) IsLoaded(name string) bool {
	info, ok := mr.info(name)
	return ok && info.Loaded
}

// IsActivated reports whether the named component is registered and activated.
func (mr *MemoryRegistry) IsActivated(name string) bool {
	info, ok := mr.info(name)
	return ok && info.Activated
}

// Load returns the named component if it is registered and loaded.
func (mr *MemoryRegistry) Load(name string) (Component, error) {
	info, ok := mr.info(name)
	if !ok {
		return nil, fmt.Errorf("unable to load %q: %w", name, ErrComponentNotFound)
	}
	if !info.Loaded {
		return nil, fmt.Errorf("unable to load %q: %w", name, ErrComponentNotLoaded)
	}
	return info.AsComponent(), nil
}

// Infos returns a copy of every registered component, ordered by name.
func (mr *MemoryRegistry) Infos() []Info {
	names := mr.Names()

	mr.mu.RLock()
	defer mr.mu.RUnlock()

	result := make([]Info, 0, len(names))
	for _, name := range names {
		if info, ok := mr.components[name]; ok {
			result = append(result, info)
		}
	}
	return result
}

func (mr *MemoryRegistry) info(name string) (Info, bool) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	info, ok := mr.components[name]
	return info, ok
}
