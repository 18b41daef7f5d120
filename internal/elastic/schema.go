package elastic

import (
	"context"
	"sync"
)

// MappingSource loads live mapping state from the engine. The provider is
// the production implementation; tests substitute fakes.
type MappingSource interface {
	IndexExists(ctx context.Context, indexName string) (bool, error)
	LoadMapping(ctx context.Context, indexName string) (map[string]*Property, error)
}

// SchemaCache is the authoritative in-memory property map per index. It is
// read-mostly shared state: reads never block on engine calls once an entry
// is cached, and a lost update under a race only costs a future reload, never
// a wrong answer. Duplicate loads for a never-seen index are acceptable.
type SchemaCache struct {
	source MappingSource

	mu      sync.RWMutex
	entries map[string]map[string]*Property
}

// NewSchemaCache creates a cache backed by the given mapping source.
func NewSchemaCache(source MappingSource) *SchemaCache {
	return &SchemaCache{
		source:  source,
		entries: make(map[string]map[string]*Property),
	}
}

// Get returns the property map for an index. On a miss the live mapping is
// loaded if the index exists; otherwise an empty map is cached so repeated
// lookups of an absent index stay cheap.
func (c *SchemaCache) Get(ctx context.Context, indexName string) (map[string]*Property, error) {
	c.mu.RLock()
	cached, ok := c.entries[indexName]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	var properties map[string]*Property

	exists, err := c.source.IndexExists(ctx, indexName)
	if err != nil {
		return nil, err
	}
	if exists {
		properties, err = c.source.LoadMapping(ctx, indexName)
		if err != nil {
			return nil, err
		}
	}
	if properties == nil {
		properties = make(map[string]*Property)
	}

	c.mu.Lock()
	c.entries[indexName] = properties
	c.mu.Unlock()

	return properties, nil
}

// Snapshot returns a shallow copy of the index's property map that callers
// may extend without racing other readers.
func (c *SchemaCache) Snapshot(ctx context.Context, indexName string) (map[string]*Property, error) {
	properties, err := c.Get(ctx, indexName)
	if err != nil {
		return nil, err
	}

	copied := make(map[string]*Property, len(properties))
	for name, p := range properties {
		copied[name] = p
	}
	return copied, nil
}

// Merge adds properties not already cached for the index and returns the
// ones that were actually new. An empty result means no mapping push is
// needed upstream. Existing properties are never redefined.
func (c *SchemaCache) Merge(indexName string, properties map[string]*Property) map[string]*Property {
	newProperties := make(map[string]*Property)

	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.entries[indexName]
	if !ok {
		existing = make(map[string]*Property)
		c.entries[indexName] = existing
	}

	for name, p := range properties {
		if _, found := existing[name]; !found {
			existing[name] = p
			newProperties[name] = p
		}
	}

	return newProperties
}

// Put replaces the cached entry for an index with the given property map.
func (c *SchemaCache) Put(indexName string, properties map[string]*Property) {
	c.mu.Lock()
	c.entries[indexName] = properties
	c.mu.Unlock()
}

// Invalidate drops the cached entry for an index. Used after deletes and
// alias swaps, when the name resolves to a different physical index.
func (c *SchemaCache) Invalidate(indexName string) {
	c.mu.Lock()
	delete(c.entries, indexName)
	c.mu.Unlock()
}
