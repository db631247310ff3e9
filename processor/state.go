package processor

// Markers names the collaborator types the builders validate against.
type Markers struct {
	// Service is the marker interface a service interface must embed directly.
	Service TypeName

	// ModuleBase is the base type a module must embed directly.
	ModuleBase TypeName
}

// ScanState is the model accumulated across passes of one compilation.
// It is owned by a single Coordinator and never shared between compilations.
type ScanState struct {
	Targets  TargetTable
	Services ServiceTable
	Module   ModuleSlot
}

// NewScanState returns an empty state validating against m.
func NewScanState(m Markers) *ScanState {
	return &ScanState{
		Services: NewServiceTable(m.Service),
		Module:   NewModuleSlot(m.ModuleBase),
	}
}

// Group returns the routing group of the scan, or "" when no target was seen.
func (s *ScanState) Group() string { return s.Targets.Group() }

// Empty reports whether nothing has been accepted yet.
func (s *ScanState) Empty() bool {
	_, hasModule := s.Module.Get()
	return s.Targets.Len() == 0 && s.Services.Len() == 0 && !hasModule
}

// apply feeds one declaration to the builder for its kind.
func (s *ScanState) apply(d Declaration) error {
	switch d.Kind {
	case KindRoutable:
		_, err := s.Targets.Add(d)
		return err
	case KindServiceImpl:
		_, err := s.Services.Add(d)
		return err
	case KindModule:
		return s.Module.Set(d)
	default:
		return &ProtocolError{Reason: "declaration " + d.Type.String() + " has unknown kind"}
	}
}

func (s *ScanState) clone() *ScanState {
	return &ScanState{
		Targets:  s.Targets.clone(),
		Services: s.Services.clone(),
		Module:   s.Module,
	}
}
