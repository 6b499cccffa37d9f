package condreg

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
)

// Factory constructs one instance of a capability implementation. The
// registry invokes a factory at most once per key and caches the result;
// factories that open external resources own their own timeout and retry
// policy.
type Factory func() (any, error)

// registration is one candidate implementation for a capability key.
type registration struct {
	name      string
	cond      Condition
	factory   Factory
	isDefault bool
	priority  int
	seq       int
}

// BindOption configures a single registration.
type BindOption func(*registration)

// AsDefault marks the registration as the fallback used when no other
// registration's condition matches. At most one default per key.
func AsDefault() BindOption {
	return func(r *registration) { r.isDefault = true }
}

// WithPriority sets the tie-break priority among non-default registrations.
// Lower values are evaluated first; registrations sharing a priority are
// evaluated in insertion order.
func WithPriority(p int) BindOption {
	return func(r *registration) { r.priority = p }
}

// WithName attaches a diagnostic label to the registration, surfaced by
// Candidates and in FactoryError messages.
func WithName(name string) BindOption {
	return func(r *registration) { r.name = name }
}

// Registry holds candidate registrations per capability key and resolves
// each key to exactly one cached instance.
//
// Register calls belong to the startup phase; Freeze makes the phase
// boundary explicit. Resolve is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	bindings map[string][]registration
	seq      int
	sealed   atomic.Bool
	resolved sync.Map // key -> *resolution
}

// resolution guards the compute-and-cache step for one key so the winning
// factory runs at most once under concurrent first-time resolution.
type resolution struct {
	once     sync.Once
	instance any
	err      error
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[string][]registration, 16),
	}
}

// Register adds a candidate implementation for key. The same key may be
// registered any number of times with different conditions; at most one
// registration per key may be marked AsDefault.
// Returns SealedError after Freeze, NilFactoryError for a nil factory, and
// DuplicateDefaultError for a second default on the same key.
func (r *Registry) Register(key string, cond Condition, factory Factory, opts ...BindOption) error {
	if r.sealed.Load() {
		return &SealedError{Key: key}
	}
	if factory == nil {
		return &NilFactoryError{Key: key}
	}

	reg := registration{cond: cond, factory: factory}
	for _, opt := range opts {
		opt(&reg)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if reg.isDefault {
		for _, existing := range r.bindings[key] {
			if existing.isDefault {
				return &DuplicateDefaultError{Key: key}
			}
		}
	}

	reg.seq = r.seq
	r.seq++
	if reg.name == "" {
		reg.name = fmt.Sprintf("%s#%d", key, reg.seq)
	}
	r.bindings[key] = append(r.bindings[key], reg)
	return nil
}

// MustRegister panics on registration error. Useful from composition
// roots where a failure is a programming error.
func (r *Registry) MustRegister(key string, cond Condition, factory Factory, opts ...BindOption) {
	if err := r.Register(key, cond, factory, opts...); err != nil {
		panic(err)
	}
}

// Freeze seals the registry against further registrations. It is
// idempotent and safe for concurrent use.
func (r *Registry) Freeze() {
	r.sealed.Store(true)
}

// Sealed reports whether the registry has been frozen.
func (r *Registry) Sealed() bool {
	return r.sealed.Load()
}

// Resolve returns the cached instance for key, constructing it on first
// call by evaluating the key's registrations against env.
//
// Non-default registrations are evaluated in (priority ascending, insertion
// order ascending) order and the first whose condition matches wins. When
// none match, the default wins. When neither exists, Resolve returns
// NoMatchingComponentError. A factory failure surfaces as FactoryError and
// is not cached: the next Resolve call re-runs selection.
func (r *Registry) Resolve(key string, env *Environment) (any, error) {
	entry, _ := r.resolved.LoadOrStore(key, &resolution{})
	res := entry.(*resolution)

	res.once.Do(func() {
		res.instance, res.err = r.construct(key, env)
	})

	if res.err != nil {
		r.resolved.CompareAndDelete(key, res)
		return nil, res.err
	}
	return res.instance, nil
}

// Reset clears the cached instance for key, forcing re-resolution on the
// next Resolve call. Intended for tests and configuration reloads.
func (r *Registry) Reset(key string) {
	r.resolved.Delete(key)
}

// ResetAll clears every cached instance.
func (r *Registry) ResetAll() {
	r.resolved.Range(func(key, _ any) bool {
		r.resolved.Delete(key)
		return true
	})
}

// Keys returns all registered capability keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	keys := make([]string, 0, len(r.bindings))
	for key := range r.bindings {
		keys = append(keys, key)
	}
	r.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// Candidates returns the registration names for key in evaluation order,
// with the default (if any) last.
func (r *Registry) Candidates(key string) []string {
	nonDefaults, def, hasDefault := r.partition(key)

	names := make([]string, 0, len(nonDefaults)+1)
	for _, reg := range nonDefaults {
		names = append(names, reg.name)
	}
	if hasDefault {
		names = append(names, def.name)
	}
	return names
}

func (r *Registry) construct(key string, env *Environment) (any, error) {
	winner, ok := r.selectWinner(key, env)
	if !ok {
		return nil, &NoMatchingComponentError{Key: key}
	}

	instance, err := winner.factory()
	if err != nil {
		return nil, &FactoryError{Key: key, Name: winner.name, Err: err}
	}
	return instance, nil
}

func (r *Registry) selectWinner(key string, env *Environment) (registration, bool) {
	nonDefaults, def, hasDefault := r.partition(key)

	for _, reg := range nonDefaults {
		if Evaluate(reg.cond, env) {
			return reg, true
		}
	}
	if hasDefault {
		return def, true
	}
	return registration{}, false
}

// partition snapshots the registrations for key into sorted non-defaults
// and the single default.
func (r *Registry) partition(key string) ([]registration, registration, bool) {
	r.mu.RLock()
	candidates := make([]registration, len(r.bindings[key]))
	copy(candidates, r.bindings[key])
	r.mu.RUnlock()

	var def registration
	hasDefault := false
	nonDefaults := candidates[:0]
	for _, reg := range candidates {
		if reg.isDefault {
			def = reg
			hasDefault = true
			continue
		}
		nonDefaults = append(nonDefaults, reg)
	}

	sort.SliceStable(nonDefaults, func(i, j int) bool {
		if nonDefaults[i].priority != nonDefaults[j].priority {
			return nonDefaults[i].priority < nonDefaults[j].priority
		}
		return nonDefaults[i].seq < nonDefaults[j].seq
	})
	return nonDefaults, def, hasDefault
}

// ResolveAs resolves key and asserts the instance to T.
// Returns TypeMismatchError when the cached instance does not implement T.
func ResolveAs[T any](r *Registry, key string, env *Environment) (T, error) {
	var zero T

	instance, err := r.Resolve(key, env)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		got := "nil"
		if t := reflect.TypeOf(instance); t != nil {
			got = t.String()
		}
		return zero, &TypeMismatchError{
			Key:      key,
			Expected: reflect.TypeOf((*T)(nil)).Elem().String(),
			Got:      got,
		}
	}
	return typed, nil
}
