package processor

// ModuleRef references the module declaration of a scan.
type ModuleRef struct {
	Type TypeName
}

// ModuleSlot holds at most one module declaration.
type ModuleSlot struct {
	base TypeName
	ref  *ModuleRef
}

// NewModuleSlot returns an empty slot whose module must directly embed base.
func NewModuleSlot(base TypeName) ModuleSlot {
	return ModuleSlot{base: base}
}

// Get returns the stored module, if any.
func (s *ModuleSlot) Get() (ModuleRef, bool) {
	if s.ref == nil {
		return ModuleRef{}, false
	}
	return *s.ref, true
}

// Set validates d and stores it as the module of the scan.
func (s *ModuleSlot) Set(d Declaration) error {
	if s.ref != nil {
		return buildErr(ErrMultipleModules, d, "already declared by "+s.ref.Type.String())
	}
	if !d.hasDirectSupertype(s.base) {
		return buildErr(ErrInvalidModuleBase, d, "must embed "+s.base.String())
	}
	s.ref = &ModuleRef{Type: d.Type}
	return nil
}
