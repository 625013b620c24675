package bridge

import (
	"girder/internal/adapter"
	"girder/internal/fault"
)

// Identifier is a canonical, comparable name. Identifiers key functions,
// globals and struct types throughout the bridge.
type Identifier string

// SymbolRegistry records the names declared by a module. Built once per
// module and read-only afterwards.
type SymbolRegistry struct {
	funcs   map[Identifier]struct{}
	globals map[Identifier]struct{}
}

// NewSymbolRegistry collects function and global names from an adapter
// module. Duplicate names break the name-identity assumption and are
// rejected. Unnamed entries are skipped here; the converters that need a
// name enforce its presence themselves.
func NewSymbolRegistry(m *adapter.Module) (*SymbolRegistry, error) {
	reg := &SymbolRegistry{
		funcs:   make(map[Identifier]struct{}, len(m.Functions)),
		globals: make(map[Identifier]struct{}, len(m.Globals)),
	}
	for i := range m.Functions {
		name := m.Functions[i].Name
		if name == nil {
			continue
		}
		ident := Identifier(*name)
		if _, dup := reg.funcs[ident]; dup {
			return nil, fault.InvalidAssumption("duplicate function name: %s", ident)
		}
		reg.funcs[ident] = struct{}{}
	}
	for i := range m.Globals {
		name := m.Globals[i].Name
		if name == nil {
			continue
		}
		ident := Identifier(*name)
		if _, dup := reg.globals[ident]; dup {
			return nil, fault.InvalidAssumption("duplicate global name: %s", ident)
		}
		reg.globals[ident] = struct{}{}
	}
	return reg, nil
}

// HasFunction reports whether the module declares a function by this name.
func (r *SymbolRegistry) HasFunction(name Identifier) bool {
	_, ok := r.funcs[name]
	return ok
}

// HasGlobal reports whether the module declares a global by this name.
func (r *SymbolRegistry) HasGlobal(name Identifier) bool {
	_, ok := r.globals[name]
	return ok
}
