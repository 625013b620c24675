package bridge

import (
	"girder/internal/adapter"
	"girder/internal/fault"
)

// Parameter is a formal parameter of a bridge function. Name is empty when
// the source parameter is unnamed.
type Parameter struct {
	Name Identifier
	Ty   TypeID
}

// Function is a declared or defined function in the bridge form. Body is
// nil for declaration-only functions.
type Function struct {
	Name   Identifier
	Params []Parameter
	HasRet bool
	Ret    TypeID
	Body   *ControlFlowGraph
}

// ConvertFunction translates one adapter function. The signature, declared
// parameter list and flags are cross-checked before the body is built; the
// CFG is built only for defined functions.
func ConvertFunction(
	fn *adapter.Function,
	typing *TypeRegistry,
	symbols *SymbolRegistry,
) (*Function, error) {
	if !fn.IsExact {
		return nil, fault.NotSupportedYet(fault.UnsupportedWeakFunction)
	}
	if fn.Name == nil {
		return nil, fault.InvalidAssumption("no anonymous function")
	}
	name := Identifier(*fn.Name)

	funcTy, err := typing.Convert(&fn.Ty)
	if err != nil {
		return nil, err
	}
	decl, ok := typing.Lookup(funcTy)
	if !ok || decl.Kind != KindFunction {
		return nil, fault.InvalidAssumption("invalid signature for function: %s", name)
	}

	if len(fn.Params) != len(decl.Params) {
		return nil, fault.InvalidAssumption("parameter count mismatch for function: %s", name)
	}
	params := make([]Parameter, 0, len(fn.Params))
	paramTypes := make([]TypeID, 0, len(fn.Params))
	for i := range fn.Params {
		p := &fn.Params[i]
		pty, err := typing.Convert(&p.Ty)
		if err != nil {
			return nil, err
		}
		if pty != decl.Params[i] {
			return nil, fault.InvalidAssumption("parameter type mismatch for function: %s", name)
		}
		out := Parameter{Ty: pty}
		if p.Name != nil {
			out.Name = Identifier(*p.Name)
		}
		params = append(params, out)
		paramTypes = append(paramTypes, pty)
	}

	hasRet := decl.Ret != NoTypeID

	var body *ControlFlowGraph
	if fn.IsDefined {
		if len(fn.Blocks) == 0 {
			return nil, fault.InvalidAssumption("a defined function must have at least one basic block: %s", name)
		}
		if fn.IsIntrinsic {
			return nil, fault.InvalidAssumption("a defined function cannot be an intrinsic: %s", name)
		}
		body, err = BuildCFG(typing, symbols, fn, paramTypes, hasRet, decl.Ret)
		if err != nil {
			return nil, err
		}
	}

	return &Function{
		Name:   name,
		Params: params,
		HasRet: hasRet,
		Ret:    decl.Ret,
		Body:   body,
	}, nil
}
