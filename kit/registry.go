package kit

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/sghaida/modkit/route"
)

// Registry is the default Host.
//
// Registration never panics: conflicts are recorded and reported by Err, so a
// composition root sees every problem after installing all activators.
type Registry struct {
	mu        sync.RWMutex
	services  map[string]any
	modules   []Module
	providers map[string]TargetProvider
	errs      []error
}

var _ Host = (*Registry)(nil)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		services:  map[string]any{},
		providers: map[string]TargetProvider{},
	}
}

// Install runs each activator against the registry in order and returns Err.
func (r *Registry) Install(acts ...Activator) error {
	for _, act := range acts {
		if act == nil {
			r.record(ErrNilActivator)
			continue
		}
		act(r)
	}
	return r.Err()
}

// RegisterService implements Host.
func (r *Registry) RegisterService(key string, impl any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if impl == nil {
		r.errs = append(r.errs, NilServiceError{Key: key})
		return
	}
	if _, exists := r.services[key]; exists {
		r.errs = append(r.errs, DuplicateServiceError{Key: key})
		return
	}
	r.services[key] = impl
}

// RegisterModule implements Host.
func (r *Registry) RegisterModule(m Module) {
	if m == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules = append(r.modules, m)
}

// RegisterTargetProvider implements Host.
func (r *Registry) RegisterTargetProvider(p TargetProvider) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	g := p.Group()
	if _, exists := r.providers[g]; exists {
		r.errs = append(r.errs, DuplicateGroupError{Group: g})
		return
	}
	r.providers[g] = p
}

// Err returns every recorded registration conflict, or nil.
func (r *Registry) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return errors.Join(r.errs...)
}

func (r *Registry) record(err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

// Service returns the implementation registered under key.
func (r *Registry) Service(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.services[key]
	return v, ok
}

// Modules returns the registered modules in registration order.
func (r *Registry) Modules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Module(nil), r.modules...)
}

// HasGroup reports whether a routing table is registered for group.
func (r *Registry) HasGroup(group string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[group]
	return ok
}

// Lookup returns the implementation of service interface S.
//
// It returns:
//   - MissingServiceError if nothing is registered for S
//   - WrongTypeServiceError if the implementation does not satisfy S
func Lookup[S any](r *Registry) (S, error) {
	var zero S
	key := ServiceKey[S]()
	raw, ok := r.Service(key)
	if !ok {
		return zero, MissingServiceError{Key: key}
	}
	s, ok := raw.(S)
	if !ok {
		return zero, WrongTypeServiceError{Key: key, GotType: reflect.TypeOf(raw).String()}
	}
	return s, nil
}

// MustLookup is like Lookup but panics on error.
func MustLookup[S any](r *Registry) S {
	s, err := Lookup[S](r)
	if err != nil {
		panic(err)
	}
	return s
}

// Resolve finds the target registered for path ("/group/subpath").
//
// Path errors are returned as *route.PathError. A provider that panics is
// reported as ErrProviderPanic.
func (r *Registry) Resolve(path string) (t Target, err error) {
	p, err := route.Parse(path)
	if err != nil {
		return Target{}, err
	}

	r.mu.RLock()
	provider, ok := r.providers[p.Group]
	r.mu.RUnlock()
	if !ok {
		return Target{}, TargetNotFoundError{Path: path}
	}

	defer func() {
		if rec := recover(); rec != nil {
			t = Target{}
			err = fmt.Errorf("%w: %v", ErrProviderPanic, rec)
		}
	}()

	t, ok = provider.Resolve(p.Subpath)
	if !ok {
		return Target{}, TargetNotFoundError{Path: path}
	}
	return t, nil
}

// Start starts modules in registration order, stopping at the first error.
func (r *Registry) Start(ctx context.Context) error {
	for _, m := range r.Modules() {
		if err := m.Start(ctx); err != nil {
			return fmt.Errorf("kit: start %T: %w", m, err)
		}
	}
	return nil
}

// Stop stops modules in reverse registration order and joins their errors.
func (r *Registry) Stop(ctx context.Context) error {
	mods := r.Modules()
	var errs []error
	for i := len(mods) - 1; i >= 0; i-- {
		if err := mods[i].Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("kit: stop %T: %w", mods[i], err))
		}
	}
	return errors.Join(errs...)
}

// Boot runs the boot tasks of every registered module. See Boot.
func (r *Registry) Boot(ctx context.Context) error {
	return Boot(ctx, r.Modules()...)
}
