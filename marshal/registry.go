package marshal

import (
	"fmt"
	"reflect"
	"sync"
)

// NullAlias names the node written for a nil value.
const NullAlias = "null"

// Registry maps node names (aliases) to types and back. Types without an
// alias are written under their Go type string; reading such a node only
// works where the declared type is concrete.
type Registry struct {
	mu      sync.RWMutex
	byAlias map[string]reflect.Type
	byType  map[reflect.Type]string
}

// NewRegistry returns a registry with aliases for the basic types.
func NewRegistry() *Registry {
	r := &Registry{
		byAlias: make(map[string]reflect.Type),
		byType:  make(map[reflect.Type]string),
	}

	for _, t := range []reflect.Type{
		reflect.TypeFor[string](), reflect.TypeFor[bool](),
		reflect.TypeFor[int](), reflect.TypeFor[int8](), reflect.TypeFor[int16](),
		reflect.TypeFor[int32](), reflect.TypeFor[int64](),
		reflect.TypeFor[uint](), reflect.TypeFor[uint8](), reflect.TypeFor[uint16](),
		reflect.TypeFor[uint32](), reflect.TypeFor[uint64](),
		reflect.TypeFor[float32](), reflect.TypeFor[float64](),
	} {
		r.byAlias[t.String()] = t
		r.byType[t] = t.String()
	}

	return r
}

// Register binds alias to t. Re-registering the same pair is a no-op; binding
// an alias already used by another type fails.
func (r *Registry) Register(alias string, t reflect.Type) error {
	if alias == NullAlias || alias == "" {
		return fmt.Errorf("%w: %q is reserved", ErrAliasConflict, alias)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byAlias[alias]; ok && existing != t {
		return fmt.Errorf("%w: %q already names %s", ErrAliasConflict, alias, existing)
	}

	r.byAlias[alias] = t
	r.byType[t] = alias

	return nil
}

// RegisterType binds alias to T.
func RegisterType[T any](r *Registry, alias string) error {
	return r.Register(alias, reflect.TypeFor[T]())
}

// Alias returns the node name for t.
func (r *Registry) Alias(t reflect.Type) string {
	if t == nil {
		return NullAlias
	}

	alias, ok := r.lookupType(t)
	if ok {
		return alias
	}

	// A pointer is written under its pointee's alias.
	if t.Kind() == reflect.Pointer {
		if elem, found := r.lookupType(t.Elem()); found {
			return elem
		}
	}

	return t.String()
}

// TypeOf resolves an alias.
func (r *Registry) TypeOf(alias string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byAlias[alias]

	return t, ok
}

func (r *Registry) lookupType(t reflect.Type) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	alias, ok := r.byType[t]

	return alias, ok
}
