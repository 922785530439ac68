// Package registry provides a central registry of entity metadata, keyed by
// Go type and by entity identifier.
package registry

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/patinthehat/dynrel/pkg/schema"
)

// Registry is a thread-safe registry for entity metadata.
type Registry struct {
	mu          sync.RWMutex
	parser      *schema.Parser
	types       map[reflect.Type]*schema.EntityMetadata
	identifiers map[string]*schema.EntityMetadata
}

// NewRegistry creates a new Registry instance.
func NewRegistry() *Registry {
	return &Registry{
		parser:      schema.NewParser(),
		types:       make(map[reflect.Type]*schema.EntityMetadata),
		identifiers: make(map[string]*schema.EntityMetadata),
	}
}

// Register registers an entity type under its default identifier
// (reflect.Type.String(), e.g. "models.Comment").
func (r *Registry) Register(model any) error {
	return r.RegisterAs("", model)
}

// RegisterAs registers an entity type under an explicit identifier.
// An empty identifier falls back to the default one.
func (r *Registry) RegisterAs(identifier string, model any) error {
	modelType := reflect.TypeOf(model)
	for modelType != nil && modelType.Kind() == reflect.Pointer {
		modelType = modelType.Elem()
	}
	if modelType == nil || modelType.Kind() != reflect.Struct {
		return fmt.Errorf("entity must be a struct, got %v", reflect.TypeOf(model))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if identifier == "" {
		identifier = modelType.String()
	}
	if _, ok := r.identifiers[identifier]; ok {
		return nil // Already registered
	}

	meta, err := r.parser.Parse(modelType)
	if err != nil {
		return fmt.Errorf("failed to parse entity %s: %w", modelType.Name(), err)
	}

	if meta.Identifier != identifier {
		// Parser caches one metadata value per type; aliased registrations
		// get their own copy so each keeps its own identifier.
		clone := *meta
		clone.Identifier = identifier
		meta = &clone
	}

	r.types[modelType] = meta
	r.identifiers[identifier] = meta
	return nil
}

// Get retrieves EntityMetadata by Go type.
func (r *Registry) Get(modelType reflect.Type) (*schema.EntityMetadata, error) {
	for modelType.Kind() == reflect.Pointer {
		modelType = modelType.Elem()
	}

	r.mu.RLock()
	meta, ok := r.types[modelType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("entity type %s not registered", modelType.Name())
	}
	return meta, nil
}

// GetByIdentifier retrieves EntityMetadata by entity identifier.
func (r *Registry) GetByIdentifier(identifier string) (*schema.EntityMetadata, error) {
	r.mu.RLock()
	meta, ok := r.identifiers[identifier]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("entity %s not registered", identifier)
	}
	return meta, nil
}

// GetOrRegister retrieves EntityMetadata or registers the entity if absent.
func (r *Registry) GetOrRegister(model any) (*schema.EntityMetadata, error) {
	modelType := reflect.TypeOf(model)
	for modelType.Kind() == reflect.Pointer {
		modelType = modelType.Elem()
	}

	r.mu.RLock()
	meta, ok := r.types[modelType]
	r.mu.RUnlock()
	if ok {
		return meta, nil
	}

	if err := r.Register(model); err != nil {
		return nil, err
	}
	return r.Get(modelType)
}

// Has checks if an entity type is registered.
func (r *Registry) Has(modelType reflect.Type) bool {
	for modelType.Kind() == reflect.Pointer {
		modelType = modelType.Elem()
	}

	r.mu.RLock()
	_, ok := r.types[modelType]
	r.mu.RUnlock()
	return ok
}

// HasIdentifier checks if an entity identifier is registered.
func (r *Registry) HasIdentifier(identifier string) bool {
	r.mu.RLock()
	_, ok := r.identifiers[identifier]
	r.mu.RUnlock()
	return ok
}

// All returns all registered entity metadata.
func (r *Registry) All() []*schema.EntityMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*schema.EntityMetadata, 0, len(r.identifiers))
	for _, meta := range r.identifiers {
		all = append(all, meta)
	}
	return all
}

// Clear removes all registered entities.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.types = make(map[reflect.Type]*schema.EntityMetadata)
	r.identifiers = make(map[string]*schema.EntityMetadata)
}

// globalRegistry is the default global registry instance.
var globalRegistry = NewRegistry()

// Default returns the global registry instance.
func Default() *Registry {
	return globalRegistry
}

// Register registers an entity in the global registry.
func Register(model any) error {
	return globalRegistry.Register(model)
}

// RegisterAs registers an entity under an explicit identifier in the global registry.
func RegisterAs(identifier string, model any) error {
	return globalRegistry.RegisterAs(identifier, model)
}

// Get retrieves EntityMetadata from the global registry.
func Get(modelType reflect.Type) (*schema.EntityMetadata, error) {
	return globalRegistry.Get(modelType)
}

// GetByIdentifier retrieves EntityMetadata by identifier from the global registry.
func GetByIdentifier(identifier string) (*schema.EntityMetadata, error) {
	return globalRegistry.GetByIdentifier(identifier)
}

// GetOrRegister retrieves or registers an entity in the global registry.
func GetOrRegister(model any) (*schema.EntityMetadata, error) {
	return globalRegistry.GetOrRegister(model)
}

// Clear clears the global registry.
func Clear() {
	globalRegistry.Clear()
}
