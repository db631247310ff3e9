package processor

import (
	"context"
	"sync"
)

const testPkg = "example.com/app"

var (
	testService    = TypeName{PkgPath: "example.com/kit", Name: "Service"}
	testModuleBase = TypeName{PkgPath: "example.com/kit", Name: "BaseModule"}
	testMarkers    = Markers{Service: testService, ModuleBase: testModuleBase}
)

func tn(name string) TypeName { return TypeName{PkgPath: testPkg, Name: name} }

func target(path, name string) Declaration {
	return Declaration{Kind: KindRoutable, Type: tn(name), Path: path, Pos: name + ".go:1"}
}

// serviceImpl declares name implementing each of ifaces; every iface directly
// extends the service marker.
func serviceImpl(name string, ifaces ...string) Declaration {
	d := Declaration{Kind: KindServiceImpl, Type: tn(name), Pos: name + ".go:1"}
	for _, i := range ifaces {
		d.Supertypes = append(d.Supertypes, Supertype{Type: tn(i), Supertypes: []TypeName{testService}})
	}
	return d
}

func module(name string) Declaration {
	return Declaration{
		Kind:       KindModule,
		Type:       tn(name),
		Supertypes: []Supertype{{Type: testModuleBase}},
		Pos:        name + ".go:1",
	}
}

// recordingGenerator snapshots what it was asked to generate.
type recordingGenerator struct {
	mu    sync.Mutex
	calls int
	snaps []snapshot
	err   error
}

type snapshot struct {
	group    string
	targets  []RoutingEntry
	services []ServiceEntry
	module   *ModuleRef
}

func (g *recordingGenerator) Generate(_ context.Context, s *ScanState) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	snap := snapshot{
		group:    s.Group(),
		targets:  append([]RoutingEntry(nil), s.Targets.Entries()...),
		services: append([]ServiceEntry(nil), s.Services.Entries()...),
	}
	if m, ok := s.Module.Get(); ok {
		snap.module = &m
	}
	g.snaps = append(g.snaps, snap)
	return g.err
}

func (g *recordingGenerator) last() snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snaps[len(g.snaps)-1]
}

type diagRecord struct {
	sev Severity
	msg string
}

type diagRecorder struct {
	mu      sync.Mutex
	records []diagRecord
}

func (r *diagRecorder) Report(sev Severity, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, diagRecord{sev: sev, msg: msg})
}

func (r *diagRecorder) messages(sev Severity) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, rec := range r.records {
		if rec.sev == sev {
			out = append(out, rec.msg)
		}
	}
	return out
}
