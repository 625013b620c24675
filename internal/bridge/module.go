package bridge

import (
	"girder/internal/adapter"
	"girder/internal/fault"
)

// Module is the bridge form of a compilation unit header.
type Module struct {
	Name Identifier
}

// ConvertModule validates module-level properties. Inline assembly at
// module scope has no bridge representation and is refused outright.
func ConvertModule(m *adapter.Module) (*Module, error) {
	if m.Asm != "" {
		return nil, fault.NotSupportedYet(fault.UnsupportedModuleLevelAssembly)
	}
	return &Module{Name: Identifier(m.Name)}, nil
}
