package dso

import (
	"fmt"
	"sync"
)

// Registry holds the set of known DSO definitions, keyed by name. It is
// populated once at startup from the static tariff tables and read-only
// afterwards; registration is guarded so tests can compose their own
// registries.
type Registry struct {
	mu    sync.Mutex
	defs  map[string]*Definition
	names []string // registration order, for stable listings
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]*Definition),
	}
}

// Configured returns the registry populated with every built-in tariff plan.
// The tables are static, so a malformed definition is a programming error and
// panics at startup.
func Configured() *Registry {
	r := NewRegistry()
	for _, defs := range [][]*Definition{
		kungalvEnergiDefinitions(),
		ellevioDefinitions(),
	} {
		for _, def := range defs {
			if err := r.Register(def); err != nil {
				panic(fmt.Sprintf("invalid built-in dso definition: %v", err))
			}
		}
	}
	return r
}

// Register adds a definition. It fails with ErrDuplicateDSO when the name is
// already taken.
func (r *Registry) Register(def *Definition) error {
	if err := def.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.defs[def.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateDSO, def.Name)
	}
	r.defs[def.Name] = def
	r.names = append(r.names, def.Name)
	return nil
}

// Get looks up a definition by name.
func (r *Registry) Get(name string) (*Definition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	def, ok := r.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDSO, name)
	}
	return def, nil
}

// ListNames returns all registered DSO names in registration order.
func (r *Registry) ListNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// FuseSizes returns the selectable fuse sizes for the named DSO.
func (r *Registry) FuseSizes(name string) ([]string, error) {
	def, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return def.FuseSizes(), nil
}
