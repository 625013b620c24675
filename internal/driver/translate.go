// Package driver orchestrates translation requests: loading adapter files,
// running the bridge translation, caching verdicts and fanning work out
// across a batch. The translation core stays pure; all I/O lives here.
package driver

import (
	"fmt"

	"girder/internal/adapter"
	"girder/internal/bridge"
	"girder/internal/observ"
)

// Unit is the fully translated bridge form of one adapter module.
type Unit struct {
	Module    *bridge.Module
	Typing    *bridge.TypeRegistry
	Functions []*bridge.Function
}

// TranslateModule runs the whole adapter-to-bridge pipeline on one module:
// module checks, registry construction, then per-function conversion. The
// first error aborts the translation.
func TranslateModule(m *adapter.Module) (*Unit, error) {
	mod, err := bridge.ConvertModule(m)
	if err != nil {
		return nil, err
	}
	typing, err := bridge.NewTypeRegistry(m.Structs)
	if err != nil {
		return nil, err
	}
	symbols, err := bridge.NewSymbolRegistry(m)
	if err != nil {
		return nil, err
	}
	fns := make([]*bridge.Function, 0, len(m.Functions))
	for i := range m.Functions {
		fn, err := bridge.ConvertFunction(&m.Functions[i], typing, symbols)
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	return &Unit{Module: mod, Typing: typing, Functions: fns}, nil
}

// TranslateFile loads and translates one exported module file. A non-nil
// timer records the load and translate phases for --timings.
func TranslateFile(path string, tm *observ.Timer) (*Unit, error) {
	var idx int
	if tm != nil {
		idx = tm.Begin("load")
	}
	m, err := adapter.Load(path)
	if tm != nil {
		tm.End(idx, path)
	}
	if err != nil {
		return nil, err
	}
	if tm != nil {
		idx = tm.Begin("translate")
	}
	unit, err := TranslateModule(m)
	if tm != nil {
		note := ""
		if unit != nil {
			note = fmt.Sprintf("%d functions", len(unit.Functions))
		}
		tm.End(idx, note)
	}
	return unit, err
}
