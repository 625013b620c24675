package bridge

import (
	"girder/internal/adapter"
	"girder/internal/fault"
)

// ConstKind discriminates the constant representations the bridge keeps.
type ConstKind uint8

const (
	// ConstBitvec is a concrete bitvector literal.
	ConstBitvec ConstKind = iota
	// ConstNullPointer is the null pointer.
	ConstNullPointer
	// ConstUndefBitvec is an undefined bitvector of a known width.
	ConstUndefBitvec
	// ConstUndefPointer is an undefined pointer.
	ConstUndefPointer
	// ConstArray is an array aggregate.
	ConstArray
	// ConstStruct is a struct aggregate.
	ConstStruct
	// ConstFunction is the address of a named function.
	ConstFunction
	// ConstGlobal is the address of a named global variable.
	ConstGlobal
)

func (k ConstKind) String() string {
	switch k {
	case ConstBitvec:
		return "bitvec"
	case ConstNullPointer:
		return "null"
	case ConstUndefBitvec:
		return "undef-bitvec"
	case ConstUndefPointer:
		return "undef-pointer"
	case ConstArray:
		return "array"
	case ConstStruct:
		return "struct"
	case ConstFunction:
		return "function"
	case ConstGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// Constant is a fully resolved constant. Ty is always the interned bridge
// type of the constant itself.
type Constant struct {
	Kind  ConstKind
	Ty    TypeID
	Bits  uint32     // bitvec width for ConstBitvec and ConstUndefBitvec
	Value uint64     // bitvec payload, masked to Bits
	Name  Identifier // referenced symbol for ConstFunction and ConstGlobal
	Elems []Constant // aggregate elements for ConstArray and ConstStruct
}

// Equal reports structural equality of two constants.
func (c Constant) Equal(o Constant) bool {
	if c.Kind != o.Kind || c.Ty != o.Ty || c.Bits != o.Bits ||
		c.Value != o.Value || c.Name != o.Name || len(c.Elems) != len(o.Elems) {
		return false
	}
	for i := range c.Elems {
		if !c.Elems[i].Equal(o.Elems[i]) {
			return false
		}
	}
	return true
}

// maskToWidth truncates a raw 64-bit payload to the given bitvector width.
func maskToWidth(v uint64, bits uint32) uint64 {
	if bits >= 64 {
		return v
	}
	return v & ((1 << bits) - 1)
}

// Bitvec builds a bitvector constant of the given width.
func (r *TypeRegistry) BitvecConst(bits uint32, value uint64) Constant {
	return Constant{
		Kind:  ConstBitvec,
		Ty:    r.Bitvec(bits),
		Bits:  bits,
		Value: maskToWidth(value, bits),
	}
}

// converter bundles the registries a constant conversion needs.
type converter struct {
	typing  *TypeRegistry
	symbols *SymbolRegistry
}

// convertExpect converts a constant and checks it against the type its
// context demands. Operand positions always know the type they expect, so
// a disagreement here is a broken export.
func (cv *converter) convertExpect(c *adapter.Constant, want TypeID) (Constant, error) {
	out, err := cv.convert(c)
	if err != nil {
		return Constant{}, err
	}
	if out.Ty != want {
		return Constant{}, fault.InvariantViolation(
			"constant type mismatch: %s vs %s",
			cv.typing.String(out.Ty), cv.typing.String(want))
	}
	return out, nil
}

// convert turns an adapter constant into a bridge constant, recursing
// through aggregates. The declared adapter type drives every decision; a
// representation that disagrees with the declared type is a broken export.
func (cv *converter) convert(c *adapter.Constant) (Constant, error) {
	ty := &c.Ty
	repr := &c.Repr
	switch {
	case repr.Int != nil:
		width, ok := ty.IntWidth()
		if !ok {
			return Constant{}, fault.InvariantViolation("integer constant with non-integer type")
		}
		return cv.typing.BitvecConst(width, repr.Int.Value), nil

	case repr.Float != nil:
		return Constant{}, fault.NotSupportedYet(fault.UnsupportedFloatingPoint)

	case repr.Null != nil:
		id, err := cv.typing.Convert(ty)
		if err != nil {
			return Constant{}, err
		}
		if id != cv.typing.Pointer() {
			return Constant{}, fault.InvariantViolation("null constant with non-pointer type")
		}
		return Constant{Kind: ConstNullPointer, Ty: id}, nil

	case repr.None != nil:
		return Constant{}, fault.InvalidAssumption("unexpected none constant")

	case repr.Extension != nil:
		return Constant{}, fault.NotSupportedYet(fault.UnsupportedArchSpecificExtension)

	case repr.Undef != nil, repr.Poison != nil:
		return cv.undef(ty)

	case repr.Default != nil:
		return cv.zero(ty)

	case repr.Array != nil:
		if ty.Array == nil {
			return Constant{}, fault.InvariantViolation("array constant with non-array type")
		}
		if uint64(len(repr.Array.Elements)) != ty.Array.Length {
			return Constant{}, fault.InvariantViolation(
				"array constant length %d disagrees with declared length %d",
				len(repr.Array.Elements), ty.Array.Length)
		}
		id, err := cv.typing.Convert(ty)
		if err != nil {
			return Constant{}, err
		}
		elems, err := cv.convertPack(repr.Array.Elements)
		if err != nil {
			return Constant{}, err
		}
		return Constant{Kind: ConstArray, Ty: id, Elems: elems}, nil

	case repr.Vector != nil:
		return Constant{}, fault.NotSupportedYet(fault.UnsupportedVectorization)

	case repr.Struct != nil:
		if ty.Struct == nil {
			return Constant{}, fault.InvariantViolation("struct constant with non-struct type")
		}
		id, err := cv.typing.Convert(ty)
		if err != nil {
			return Constant{}, err
		}
		decl := cv.typing.MustLookup(id)
		if len(repr.Struct.Elements) != len(decl.Fields) {
			return Constant{}, fault.InvariantViolation(
				"struct constant arity %d disagrees with declared arity %d",
				len(repr.Struct.Elements), len(decl.Fields))
		}
		elems, err := cv.convertPack(repr.Struct.Elements)
		if err != nil {
			return Constant{}, err
		}
		return Constant{Kind: ConstStruct, Ty: id, Elems: elems}, nil

	case repr.Variable != nil:
		return cv.symbolRef(ty, repr.Variable.Name, ConstGlobal)

	case repr.Function != nil:
		return cv.symbolRef(ty, repr.Function.Name, ConstFunction)

	case repr.Alias != nil:
		return Constant{}, fault.NotSupportedYet(fault.UnsupportedGlobalAlias)

	case repr.Interface != nil:
		return Constant{}, fault.NotSupportedYet(fault.UnsupportedInterfaceResolver)

	case repr.Marker != nil:
		return Constant{}, fault.NotSupportedYet(fault.UnsupportedGlobalMarker)

	case repr.Expr != nil:
		return Constant{}, fault.NotSupportedYet(fault.UnsupportedConstantExpr)

	default:
		return Constant{}, fault.InvariantViolation("constant with no representation set")
	}
}

func (cv *converter) convertPack(elems []adapter.Constant) ([]Constant, error) {
	out := make([]Constant, 0, len(elems))
	for i := range elems {
		c, err := cv.convert(&elems[i])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// symbolRef resolves a named function or global reference. The exporter
// emits these with pointer type; a missing name or an undeclared symbol is
// a broken export.
func (cv *converter) symbolRef(ty *adapter.Type, name *string, kind ConstKind) (Constant, error) {
	if name == nil {
		if kind == ConstFunction {
			return Constant{}, fault.NotSupportedYet(fault.UnsupportedAnonymousFunction)
		}
		return Constant{}, fault.InvalidAssumption("global variable without a name")
	}
	id, err := cv.typing.Convert(ty)
	if err != nil {
		return Constant{}, err
	}
	if id != cv.typing.Pointer() {
		return Constant{}, fault.InvariantViolation("symbol reference %s with non-pointer type", *name)
	}
	ident := Identifier(*name)
	switch kind {
	case ConstFunction:
		if !cv.symbols.HasFunction(ident) {
			return Constant{}, fault.InvariantViolation("reference to undeclared function %s", ident)
		}
	case ConstGlobal:
		if !cv.symbols.HasGlobal(ident) {
			return Constant{}, fault.InvariantViolation("reference to undeclared global %s", ident)
		}
	}
	return Constant{Kind: kind, Ty: id, Name: ident}, nil
}

// undef expands an undef or poison literal for the declared type. Aggregates
// expand element-wise so downstream passes never see a typed hole.
func (cv *converter) undef(ty *adapter.Type) (Constant, error) {
	switch {
	case ty.Int != nil:
		width := ty.Int.Width
		return Constant{Kind: ConstUndefBitvec, Ty: cv.typing.Bitvec(width), Bits: width}, nil
	case ty.Pointer != nil:
		id, err := cv.typing.Convert(ty)
		if err != nil {
			return Constant{}, err
		}
		return Constant{Kind: ConstUndefPointer, Ty: id}, nil
	case ty.Array != nil:
		return cv.expand(ty, ty.Array, nil, cv.undef)
	case ty.Struct != nil:
		return cv.expand(ty, nil, ty.Struct, cv.undef)
	default:
		id, err := cv.typing.Convert(ty)
		if err != nil {
			return Constant{}, err
		}
		return Constant{}, fault.InvalidAssumption("undef constant of type %s", cv.typing.String(id))
	}
}

// zero expands a zero-initializer for the declared type.
func (cv *converter) zero(ty *adapter.Type) (Constant, error) {
	switch {
	case ty.Int != nil:
		return cv.typing.BitvecConst(ty.Int.Width, 0), nil
	case ty.Pointer != nil:
		id, err := cv.typing.Convert(ty)
		if err != nil {
			return Constant{}, err
		}
		return Constant{Kind: ConstNullPointer, Ty: id}, nil
	case ty.Array != nil:
		return cv.expand(ty, ty.Array, nil, cv.zero)
	case ty.Struct != nil:
		return cv.expand(ty, nil, ty.Struct, cv.zero)
	default:
		id, err := cv.typing.Convert(ty)
		if err != nil {
			return Constant{}, err
		}
		return Constant{}, fault.InvalidAssumption("zero initializer of type %s", cv.typing.String(id))
	}
}

// expand builds an aggregate constant by applying fill to each element type.
func (cv *converter) expand(
	ty *adapter.Type,
	arr *adapter.TypeArray,
	st *adapter.TypeStruct,
	fill func(*adapter.Type) (Constant, error),
) (Constant, error) {
	id, err := cv.typing.Convert(ty)
	if err != nil {
		return Constant{}, err
	}
	if arr != nil {
		elem, err := fill(&arr.Element)
		if err != nil {
			return Constant{}, err
		}
		elems := make([]Constant, arr.Length)
		for i := range elems {
			elems[i] = elem
		}
		return Constant{Kind: ConstArray, Ty: id, Elems: elems}, nil
	}
	if st.Fields == nil {
		// The exporter inlines field layouts for struct types appearing in
		// constants; a bare named reference cannot be expanded element-wise.
		return Constant{}, fault.InvalidAssumption(
			"aggregate initializer for opaque struct reference %s", cv.typing.String(id))
	}
	elems := make([]Constant, 0, len(*st.Fields))
	for i := range *st.Fields {
		c, err := fill(&(*st.Fields)[i])
		if err != nil {
			return Constant{}, err
		}
		elems = append(elems, c)
	}
	return Constant{Kind: ConstStruct, Ty: id, Elems: elems}, nil
}
