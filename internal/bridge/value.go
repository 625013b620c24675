package bridge

// BlockLabel identifies a basic block inside a function. Labels come from
// the exporter and are dense but not necessarily contiguous.
type BlockLabel = int

// ValueKind discriminates the three operand shapes.
type ValueKind uint8

const (
	// ValueConstant is an immediate constant operand.
	ValueConstant ValueKind = iota
	// ValueArgument refers to a formal parameter by index.
	ValueArgument
	// ValueRegister refers to an instruction result by its function-wide
	// instruction index.
	ValueRegister
)

func (k ValueKind) String() string {
	switch k {
	case ValueConstant:
		return "constant"
	case ValueArgument:
		return "argument"
	case ValueRegister:
		return "register"
	default:
		return "unknown"
	}
}

// Value is a typed operand: a constant, an argument reference or a register
// reference. Ty always carries the bridge type of the operand.
type Value struct {
	Kind  ValueKind
	Ty    TypeID
	Index int
	Const Constant
}

// Argument builds an argument reference.
func Argument(index int, ty TypeID) Value {
	return Value{Kind: ValueArgument, Ty: ty, Index: index}
}

// Register builds a register reference.
func Register(index int, ty TypeID) Value {
	return Value{Kind: ValueRegister, Ty: ty, Index: index}
}

// Immediate wraps a constant as a value.
func Immediate(c Constant) Value {
	return Value{Kind: ValueConstant, Ty: c.Ty, Const: c}
}

// Equal reports structural equality of two values.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind || v.Ty != o.Ty {
		return false
	}
	switch v.Kind {
	case ValueConstant:
		return v.Const.Equal(o.Const)
	default:
		return v.Index == o.Index
	}
}
