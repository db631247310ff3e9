package processor

import (
	"github.com/sghaida/modkit/route"
)

// RoutingEntry maps one subpath of the scan's group to a target type.
type RoutingEntry struct {
	Group   string
	Subpath string
	Target  TypeName
}

// TargetTable accumulates routable declarations in discovery order.
//
// Invariants: subpaths are unique, target types are unique and every entry
// shares the same group.
type TargetTable struct {
	group   string
	entries []RoutingEntry
	paths   map[string]struct{}
	targets map[TypeName]struct{}
}

// Group returns the group established by the first accepted entry, or "".
func (t *TargetTable) Group() string { return t.group }

// Entries returns the accepted entries in discovery order.
// The returned slice must not be modified.
func (t *TargetTable) Entries() []RoutingEntry { return t.entries }

// Len returns the number of accepted entries.
func (t *TargetTable) Len() int { return len(t.entries) }

// Add validates d and appends its routing entry.
// The table is left untouched when an error is returned.
func (t *TargetTable) Add(d Declaration) (RoutingEntry, error) {
	p, err := route.Parse(d.Path)
	if err != nil {
		return RoutingEntry{}, &BuildError{Err: err, Type: d.Type, Pos: d.Pos}
	}

	if t.group != "" && p.Group != t.group {
		return RoutingEntry{}, buildErr(ErrGroupMismatch, d, p.Group+" != "+t.group)
	}
	if _, ok := t.paths[p.Subpath]; ok {
		return RoutingEntry{}, buildErr(ErrDuplicatePath, d, p.Subpath)
	}
	if _, ok := t.targets[d.Type]; ok {
		return RoutingEntry{}, buildErr(ErrDuplicateTarget, d, d.Type.String())
	}

	if t.paths == nil {
		t.paths = make(map[string]struct{})
		t.targets = make(map[TypeName]struct{})
	}
	entry := RoutingEntry{Group: p.Group, Subpath: p.Subpath, Target: d.Type}
	t.group = p.Group
	t.paths[p.Subpath] = struct{}{}
	t.targets[d.Type] = struct{}{}
	t.entries = append(t.entries, entry)
	return entry, nil
}

func (t *TargetTable) clone() TargetTable {
	cp := TargetTable{
		group:   t.group,
		entries: append([]RoutingEntry(nil), t.entries...),
		paths:   make(map[string]struct{}, len(t.paths)),
		targets: make(map[TypeName]struct{}, len(t.targets)),
	}
	for k := range t.paths {
		cp.paths[k] = struct{}{}
	}
	for k := range t.targets {
		cp.targets[k] = struct{}{}
	}
	return cp
}
