package bridge

import (
	"girder/internal/fault"
)

// InstrKind enumerates instruction kinds in the bridge form.
type InstrKind uint8

const (
	// InstrInvalid is the zero value and never appears in a built function.
	InstrInvalid InstrKind = iota
	// InstrAlloca represents a stack allocation.
	InstrAlloca
	// InstrLoad represents a memory load.
	InstrLoad
	// InstrStore represents a memory store.
	InstrStore
	// InstrCallDirect represents a call to a named function.
	InstrCallDirect
	// InstrCallIndirect represents a call through a pointer value.
	InstrCallIndirect
	// InstrBinary represents an integer binary operation.
	InstrBinary
	// InstrCompare represents an integer or pointer comparison.
	InstrCompare
	// InstrCastBitvec represents a width change between bitvectors.
	InstrCastBitvec
	// InstrCastPtrToBitvec represents a pointer-to-integer cast.
	InstrCastPtrToBitvec
	// InstrCastBitvecToPtr represents an integer-to-pointer cast.
	InstrCastBitvecToPtr
	// InstrCastPtr represents a pointer-to-pointer bitcast.
	InstrCastPtr
	// InstrFreezePtr represents freezing an undefined pointer.
	InstrFreezePtr
	// InstrFreezeBitvec represents freezing an undefined bitvector.
	InstrFreezeBitvec
	// InstrFreezeNop represents a freeze over an already-defined value.
	InstrFreezeNop
	// InstrGEP represents pointer address computation.
	InstrGEP
	// InstrITE represents a value selection.
	InstrITE
	// InstrPhi represents an SSA merge point.
	InstrPhi
	// InstrGetValue represents an aggregate element read.
	InstrGetValue
	// InstrSetValue represents an aggregate element write.
	InstrSetValue
)

// Instr represents a bridge instruction.
type Instr struct {
	Kind InstrKind

	Alloca          AllocaInstr
	Load            LoadInstr
	Store           StoreInstr
	CallDirect      CallDirectInstr
	CallIndirect    CallIndirectInstr
	Binary          BinaryInstr
	Compare         CompareInstr
	CastBitvec      CastBitvecInstr
	CastPtrToBitvec CastPtrToBitvecInstr
	CastBitvecToPtr CastBitvecToPtrInstr
	CastPtr         CastPtrInstr
	FreezeBitvec    FreezeBitvecInstr
	FreezeNop       FreezeNopInstr
	GEP             GEPInstr
	ITE             ITEInstr
	Phi             PhiInstr
	GetValue        GetValueInstr
	SetValue        SetValueInstr
}

// AllocaInstr represents a stack allocation.
type AllocaInstr struct {
	Base    TypeID
	HasSize bool
	Size    Value
	Result  int
}

// LoadInstr represents a memory load.
type LoadInstr struct {
	Pointee TypeID
	Pointer Value
	Result  int
}

// StoreInstr represents a memory store.
type StoreInstr struct {
	Pointee TypeID
	Pointer Value
	Value   Value
}

// CallDirectInstr represents a call to a named function. Intrinsic calls
// are normalized into this shape as well.
type CallDirectInstr struct {
	Function  Identifier
	Args      []Value
	HasResult bool
	ResultTy  TypeID
	Result    int
}

// CallIndirectInstr represents a call through a pointer value.
type CallIndirectInstr struct {
	Callee    Value
	Args      []Value
	HasResult bool
	ResultTy  TypeID
	Result    int
}

// BinaryInstr represents an integer binary operation.
type BinaryInstr struct {
	Bits   uint32
	Op     BinaryOperator
	Lhs    Value
	Rhs    Value
	Result int
}

// CompareInstr represents a comparison. OnPointer marks pointer-typed
// operands; otherwise Bits carries the operand width.
type CompareInstr struct {
	OnPointer bool
	Bits      uint32
	Pred      ComparePredicate
	Lhs       Value
	Rhs       Value
	Result    int
}

// CastBitvecInstr represents a width change between bitvectors.
type CastBitvecInstr struct {
	FromBits uint32
	IntoBits uint32
	Operand  Value
	Result   int
}

// CastPtrToBitvecInstr represents a pointer-to-integer cast.
type CastPtrToBitvecInstr struct {
	IntoBits uint32
	Operand  Value
	Result   int
}

// CastBitvecToPtrInstr represents an integer-to-pointer cast.
type CastBitvecToPtrInstr struct {
	FromBits uint32
	Operand  Value
	Result   int
}

// CastPtrInstr represents a pointer-to-pointer bitcast.
type CastPtrInstr struct {
	Operand Value
	Result  int
}

// FreezeBitvecInstr represents freezing an undefined bitvector.
type FreezeBitvecInstr struct {
	Bits uint32
}

// FreezeNopInstr represents a freeze over an already-defined value. LLVM
// emits these over concrete register values too; they carry no semantics.
type FreezeNopInstr struct {
	Value Value
}

// GEPInstr represents pointer address computation. Offset is the leading
// pointer-displacement index; Indices walk struct fields and array
// elements from the source pointee down to the destination pointee.
type GEPInstr struct {
	SrcPointee TypeID
	DstPointee TypeID
	Pointer    Value
	Offset     Value
	Indices    []Value
	Result     int
}

// ITEInstr represents a value selection.
type ITEInstr struct {
	Cond   Value
	Then   Value
	Else   Value
	Result int
}

// PhiInstr represents an SSA merge point. Options maps each incoming block
// to the value flowing in along that edge.
type PhiInstr struct {
	Ty      TypeID
	Options map[BlockLabel]Value
	Result  int
}

// GetValueInstr represents an aggregate element read.
type GetValueInstr struct {
	Src       TypeID
	Dst       TypeID
	Aggregate Value
	Indices   []int
	Result    int
}

// SetValueInstr represents an aggregate element write.
type SetValueInstr struct {
	Src       TypeID
	Dst       TypeID
	Aggregate Value
	Value     Value
	Indices   []int
	Result    int
}

// BinaryOperator enumerates the accepted integer binary operators. Signed
// and unsigned division collapse to one operator each; the bit-level
// semantics are recovered downstream from operand signedness analysis.
type BinaryOperator uint8

const (
	BinAdd BinaryOperator = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinShl
	BinShr
	BinAnd
	BinOr
	BinXor
)

var binaryNames = [...]string{
	BinAdd: "add",
	BinSub: "sub",
	BinMul: "mul",
	BinDiv: "div",
	BinMod: "mod",
	BinShl: "shl",
	BinShr: "shr",
	BinAnd: "and",
	BinOr:  "or",
	BinXor: "xor",
}

func (op BinaryOperator) String() string {
	if int(op) < len(binaryNames) {
		return binaryNames[op]
	}
	return "unknown"
}

// ParseBinaryOperator maps an exporter opcode onto the closed operator set.
func ParseBinaryOperator(opcode string) (BinaryOperator, error) {
	switch opcode {
	case "add":
		return BinAdd, nil
	case "sub":
		return BinSub, nil
	case "mul":
		return BinMul, nil
	case "udiv", "sdiv":
		return BinDiv, nil
	case "urem", "srem":
		return BinMod, nil
	case "shl":
		return BinShl, nil
	case "lshr", "ashr":
		return BinShr, nil
	case "and":
		return BinAnd, nil
	case "or":
		return BinOr, nil
	case "xor":
		return BinXor, nil
	case "fadd", "fsub", "fmul", "fdiv", "frem":
		return 0, fault.NotSupportedYet(fault.UnsupportedFloatingPoint)
	default:
		return 0, fault.InvalidAssumption("unexpected binary opcode: %s", opcode)
	}
}

// ComparePredicate enumerates the accepted comparison predicates. Signed
// and unsigned orderings collapse pairwise.
type ComparePredicate uint8

const (
	CmpEQ ComparePredicate = iota
	CmpNE
	CmpGT
	CmpGE
	CmpLT
	CmpLE
)

var predicateNames = [...]string{
	CmpEQ: "eq",
	CmpNE: "ne",
	CmpGT: "gt",
	CmpGE: "ge",
	CmpLT: "lt",
	CmpLE: "le",
}

func (p ComparePredicate) String() string {
	if int(p) < len(predicateNames) {
		return predicateNames[p]
	}
	return "unknown"
}

// ParseComparePredicate maps an exporter predicate onto the closed set.
func ParseComparePredicate(predicate string) (ComparePredicate, error) {
	switch predicate {
	case "i_eq":
		return CmpEQ, nil
	case "i_ne":
		return CmpNE, nil
	case "i_ugt", "i_sgt":
		return CmpGT, nil
	case "i_uge", "i_sge":
		return CmpGE, nil
	case "i_ult", "i_slt":
		return CmpLT, nil
	case "i_ule", "i_sle":
		return CmpLE, nil
	case "f_f", "f_oeq", "f_ogt", "f_oge", "f_olt", "f_ole", "f_one", "f_ord",
		"f_uno", "f_ueq", "f_ugt", "f_uge", "f_ult", "f_ule", "f_une", "f_t":
		return 0, fault.NotSupportedYet(fault.UnsupportedFloatingPoint)
	default:
		return 0, fault.InvalidAssumption("unexpected compare predicate: %s", predicate)
	}
}
