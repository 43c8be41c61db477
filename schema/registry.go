package schema

import (
	"reflect"
	"sort"
	"sync"

	"github.com/zoobzio/argz"
)

// Registry maps the names used in schema documents to parsers, predicates
// and types. It is safe for concurrent use.
type Registry struct {
	parsers    map[string]argz.Parser
	predicates map[string]argz.Predicate
	types      map[string]argz.Spec
	mu         sync.RWMutex
}

// NewRegistry returns a registry holding the built-in names.
func NewRegistry() *Registry {
	r := &Registry{
		parsers:    map[string]argz.Parser{},
		predicates: map[string]argz.Predicate{},
		types:      map[string]argz.Spec{},
	}
	for _, p := range []argz.Parser{
		argz.ToInt(), argz.ToFloat(), argz.ToString(), argz.ToBool(),
		argz.Floor(), argz.Ceil(), argz.AbsValue(),
		argz.ToLower(), argz.ToUpper(), argz.TrimSpace(),
	} {
		r.parsers[p.Name()] = p
	}
	r.parsers["passthrough"] = argz.Passthrough()

	r.types["int"] = argz.Type[int]()
	r.types["int64"] = argz.Type[int64]()
	r.types["float"] = argz.Type[float64]()
	r.types["float64"] = argz.Type[float64]()
	r.types["string"] = argz.Type[string]()
	r.types["bool"] = argz.Type[bool]()
	r.types["any"] = argz.Any()
	r.types["number"] = argz.Pred(argz.Number())
	r.types["uint"] = argz.Pred(argz.Uint())
	r.types["iterable"] = argz.Pred(argz.Iterable())
	r.types["hashable"] = argz.Pred(argz.Hashable())
	return r
}

// Register binds name to a parser, replacing any previous binding.
func (r *Registry) Register(name string, p argz.Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[name] = p
}

// RegisterPredicate binds name to a predicate usable as {func: name}.
func (r *Registry) RegisterPredicate(name string, p argz.Predicate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predicates[name] = p
}

// RegisterType binds name to a type usable as {type: name}.
func (r *Registry) RegisterType(name string, t reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[name] = argz.TypeOf(t)
}

// Parser looks up a parser by name.
func (r *Registry) Parser(name string) (argz.Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parsers[name]
	return p, ok
}

// Predicate looks up a registered predicate by name.
func (r *Registry) Predicate(name string) (argz.Predicate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.predicates[name]
	return p, ok
}

// Type looks up a type spec by name.
func (r *Registry) Type(name string) (argz.Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.types[name]
	return s, ok
}

// Parsers returns the registered parser names, sorted.
func (r *Registry) Parsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
