package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/JonMunkholm/gridtable/internal/grid"
	"github.com/JonMunkholm/gridtable/internal/resource"
	"github.com/JonMunkholm/gridtable/internal/tabletext"
)

// SchemaRegistry holds named column schemas, so clients can import with
// schema=people instead of spelling out "string,integer,double".
type SchemaRegistry struct {
	mu      sync.RWMutex
	schemas map[string][]tabletext.Parser
}

// NewSchemaRegistry returns an empty registry.
func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{schemas: make(map[string][]tabletext.Parser)}
}

// Register adds a named schema. Names are case-insensitive and may not be
// registered twice.
func (r *SchemaRegistry) Register(name, schema string) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return fmt.Errorf("%w: empty schema name", grid.ErrInvalidArgument)
	}
	parsers, err := tabletext.ParseSchema(schema)
	if err != nil {
		return fmt.Errorf("schema %s: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[key]; exists {
		return fmt.Errorf("%w: schema already registered: %s", grid.ErrInvalidArgument, name)
	}
	r.schemas[key] = parsers
	return nil
}

// RegisterAll registers every entry of props, stopping at the first error.
// Entries are registered in name order so errors are reproducible.
func (r *SchemaRegistry) RegisterAll(props resource.Properties) error {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := r.Register(name, props[name]); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns a copy of the named schema.
func (r *SchemaRegistry) Lookup(name string) ([]tabletext.Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	parsers, ok := r.schemas[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return append([]tabletext.Parser(nil), parsers...), true
}

// Names returns every registered schema name, sorted.
func (r *SchemaRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve turns a schema reference into parsers. A registered name wins;
// anything else is read as a list of parser names.
func (r *SchemaRegistry) Resolve(schema string) ([]tabletext.Parser, error) {
	if parsers, ok := r.Lookup(schema); ok {
		return parsers, nil
	}
	return tabletext.ParseSchema(schema)
}
