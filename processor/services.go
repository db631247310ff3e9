package processor

import "strings"

// ServiceEntry maps a service interface to its single implementation.
type ServiceEntry struct {
	Service TypeName
	Impl    TypeName
}

// ServiceTable accumulates service implementations in discovery order.
//
// Invariants: each service interface is mapped once and each implementation
// serves exactly one service interface.
type ServiceTable struct {
	marker   TypeName
	entries  []ServiceEntry
	services map[TypeName]struct{}
	impls    map[TypeName]struct{}
}

// NewServiceTable returns an empty table whose qualifying interfaces must
// directly extend marker.
func NewServiceTable(marker TypeName) ServiceTable {
	return ServiceTable{marker: marker}
}

// Entries returns the accepted entries in discovery order.
// The returned slice must not be modified.
func (t *ServiceTable) Entries() []ServiceEntry { return t.entries }

// Len returns the number of accepted entries.
func (t *ServiceTable) Len() int { return len(t.entries) }

// Add validates d and appends its service entry.
//
// The qualifying supertypes of d are its direct supertypes that directly
// extend the marker. Implementing the marker itself, or only interfaces
// unrelated to it, does not qualify.
func (t *ServiceTable) Add(d Declaration) (ServiceEntry, error) {
	qualifying := d.qualifyingSupertypes(t.marker)
	switch {
	case len(qualifying) == 0:
		return ServiceEntry{}, buildErr(ErrNoQualifyingService, d, "must implement an interface embedding "+t.marker.String())
	case len(qualifying) > 1:
		names := make([]string, 0, len(qualifying))
		for _, q := range qualifying {
			names = append(names, q.String())
		}
		return ServiceEntry{}, buildErr(ErrAmbiguousService, d, strings.Join(names, ", "))
	}

	service := qualifying[0]
	if _, ok := t.services[service]; ok {
		return ServiceEntry{}, buildErr(ErrDuplicateServiceAlias, d, service.String())
	}
	if _, ok := t.impls[d.Type]; ok {
		return ServiceEntry{}, buildErr(ErrDuplicateImpl, d, d.Type.String())
	}

	if t.services == nil {
		t.services = make(map[TypeName]struct{})
		t.impls = make(map[TypeName]struct{})
	}
	entry := ServiceEntry{Service: service, Impl: d.Type}
	t.services[service] = struct{}{}
	t.impls[d.Type] = struct{}{}
	t.entries = append(t.entries, entry)
	return entry, nil
}

func (t *ServiceTable) clone() ServiceTable {
	cp := ServiceTable{
		marker:   t.marker,
		entries:  append([]ServiceEntry(nil), t.entries...),
		services: make(map[TypeName]struct{}, len(t.services)),
		impls:    make(map[TypeName]struct{}, len(t.impls)),
	}
	for k := range t.services {
		cp.services[k] = struct{}{}
	}
	for k := range t.impls {
		cp.impls[k] = struct{}{}
	}
	return cp
}
