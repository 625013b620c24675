package bridge

import (
	"girder/internal/adapter"
	"girder/internal/fault"
)

// Context is the per-function translation engine. It holds the shared
// read-only registries, the discovered block-label set and the typing
// tables for arguments and registers. One Context serves exactly one
// function body and is discarded afterwards.
type Context struct {
	typing  *TypeRegistry
	symbols *SymbolRegistry

	blocks map[int]struct{}
	// regs maps every instruction index of the function to its bound
	// result type. NoTypeID marks a slot seen in the pre-scan but not yet
	// referenced; absence means the index does not exist at all.
	regs   map[int]TypeID
	args   map[int]TypeID
	hasRet bool
	ret    TypeID
}

func newContext(
	typing *TypeRegistry,
	symbols *SymbolRegistry,
	fn *adapter.Function,
	params []TypeID,
	hasRet bool,
	ret TypeID,
) *Context {
	ctx := &Context{
		typing:  typing,
		symbols: symbols,
		blocks:  make(map[int]struct{}, len(fn.Blocks)),
		regs:    make(map[int]TypeID),
		args:    make(map[int]TypeID, len(params)),
		hasRet:  hasRet,
		ret:     ret,
	}
	for bi := range fn.Blocks {
		b := &fn.Blocks[bi]
		ctx.blocks[b.Label] = struct{}{}
		for ii := range b.Instructions {
			ctx.regs[b.Instructions[ii].Index] = NoTypeID
		}
	}
	for i, p := range params {
		ctx.args[i] = p
	}
	return ctx
}

func (c *Context) conv() *converter {
	return &converter{typing: c.typing, symbols: c.symbols}
}

// ParseValue converts an operand against the type its position expects.
// Register references bind first-write-wins: the first reference fixes the
// register's type and every later reference must agree.
func (c *Context) ParseValue(val *adapter.Value, want TypeID) (Value, error) {
	switch {
	case val.Constant != nil:
		con, err := c.conv().convertExpect(val.Constant, want)
		if err != nil {
			return Value{}, err
		}
		return Immediate(con), nil

	case val.Argument != nil:
		actual, err := c.typing.Convert(&val.Argument.Ty)
		if err != nil {
			return Value{}, err
		}
		if actual != want {
			return Value{}, fault.InvariantViolation("argument type mismatch")
		}
		declared, ok := c.args[val.Argument.Index]
		if !ok {
			return Value{}, fault.InvariantViolation("invalid argument index")
		}
		if declared != actual {
			return Value{}, fault.InvariantViolation("parameter type mismatch")
		}
		return Argument(val.Argument.Index, actual), nil

	case val.Instruction != nil:
		actual, err := c.typing.Convert(&val.Instruction.Ty)
		if err != nil {
			return Value{}, err
		}
		if actual != want {
			return Value{}, fault.InvariantViolation("instruction type mismatch")
		}
		index := val.Instruction.Index
		bound, ok := c.regs[index]
		if !ok {
			return Value{}, fault.InvariantViolation("invalid instruction index")
		}
		if bound == NoTypeID {
			c.regs[index] = actual
		} else if bound != actual {
			return Value{}, fault.InvariantViolation("register type mismatch")
		}
		return Register(index, actual), nil

	default:
		return Value{}, fault.InvariantViolation("operand with no variant set")
	}
}

// ParseValueBv32OrBv64 converts an operand whose width is ambiguous
// between 32-bit indices and native pointer width. Used for the leading
// offset of pointer arithmetic.
func (c *Context) ParseValueBv32OrBv64(val *adapter.Value) (Value, error) {
	if ty := val.Type(); ty != nil {
		if width, ok := ty.IntWidth(); ok && width == 32 {
			return c.ParseValue(val, c.typing.Bv32())
		}
	}
	return c.ParseValue(val, c.typing.Bv64())
}

// ParseInstruction converts a non-terminal instruction.
func (c *Context) ParseInstruction(inst *adapter.Instruction) (Instr, error) {
	repr := &inst.Repr
	switch {
	// memory access
	case repr.Alloca != nil:
		return c.parseAlloca(inst, repr.Alloca)
	case repr.Load != nil:
		return c.parseLoad(inst, repr.Load)
	case repr.Store != nil:
		return c.parseStore(inst, repr.Store)
	case repr.VAArg != nil:
		return Instr{}, fault.NotSupportedYet(fault.UnsupportedVariadicArguments)

	// calls
	case repr.CallDirect != nil:
		return c.parseCall(inst, repr.CallDirect, true)
	case repr.Intrinsic != nil:
		return c.parseCall(inst, repr.Intrinsic, true)
	case repr.CallIndirect != nil:
		return c.parseCall(inst, repr.CallIndirect, false)
	case repr.Asm != nil:
		return Instr{}, fault.NotSupportedYet(fault.UnsupportedInlineAssembly)

	// operators
	case repr.Unary != nil:
		if repr.Unary.Opcode == "fneg" {
			return Instr{}, fault.NotSupportedYet(fault.UnsupportedFloatingPoint)
		}
		return Instr{}, fault.InvalidAssumption("unexpected unary opcode: %s", repr.Unary.Opcode)
	case repr.Binary != nil:
		return c.parseBinary(inst, repr.Binary)
	case repr.Compare != nil:
		return c.parseCompare(inst, repr.Compare)
	case repr.Cast != nil:
		return c.parseCast(inst, repr.Cast)
	case repr.Freeze != nil:
		return c.parseFreeze(inst, repr.Freeze)

	// address computation
	case repr.GEP != nil:
		return c.parseGEP(inst, repr.GEP)

	// choice
	case repr.ITE != nil:
		return c.parseITE(inst, repr.ITE)
	case repr.Phi != nil:
		return c.parsePhi(inst, repr.Phi)

	// aggregates
	case repr.GetValue != nil:
		return c.parseGetValue(inst, repr.GetValue)
	case repr.SetValue != nil:
		return c.parseSetValue(inst, repr.SetValue)

	// vectors
	case repr.GetElement != nil, repr.SetElement != nil, repr.ShuffleVector != nil:
		return Instr{}, fault.NotSupportedYet(fault.UnsupportedVectorization)

	// concurrency
	case repr.Fence != nil, repr.AtomicCmpXchg != nil, repr.AtomicRMW != nil:
		return Instr{}, fault.NotSupportedYet(fault.UnsupportedAtomicInstruction)

	// exception handling, refused before any block-shape judgement
	case repr.InvokeDirect != nil, repr.InvokeIndirect != nil, repr.InvokeAsm != nil,
		repr.LandingPad != nil, repr.Resume != nil, repr.CatchPad != nil,
		repr.CleanupPad != nil, repr.CatchSwitch != nil, repr.CatchReturn != nil,
		repr.CleanupReturn != nil:
		return Instr{}, fault.NotSupportedYet(fault.UnsupportedExceptionHandling)
	case repr.CallBranch != nil:
		return Instr{}, fault.NotSupportedYet(fault.UnsupportedInlineAssembly)

	// terminators never appear mid-block
	case repr.Return != nil, repr.Branch != nil, repr.Switch != nil,
		repr.IndirectJump != nil, repr.Unreachable != nil:
		return Instr{}, fault.InvariantViolation("malformed block with terminator instruction in the body")

	default:
		return Instr{}, fault.InvariantViolation("instruction with no variant set")
	}
}

func (c *Context) parseAlloca(inst *adapter.Instruction, in *adapter.AllocaInst) (Instr, error) {
	instTy, err := c.typing.Convert(&inst.Ty)
	if err != nil {
		return Instr{}, err
	}
	if instTy != c.typing.Pointer() {
		return Instr{}, fault.InvalidAssumption("alloca should produce a pointer type")
	}
	if in.AddressSpace != 0 {
		return Instr{}, fault.NotSupportedYet(fault.UnsupportedPointerAddressSpace)
	}
	base, err := c.typing.Convert(&in.AllocatedType)
	if err != nil {
		return Instr{}, err
	}
	out := AllocaInstr{Base: base, Result: inst.Index}
	if in.Size != nil {
		size, err := c.ParseValue(in.Size, c.typing.Bv64())
		if err != nil {
			return Instr{}, err
		}
		out.HasSize = true
		out.Size = size
	}
	return Instr{Kind: InstrAlloca, Alloca: out}, nil
}

func (c *Context) parseLoad(inst *adapter.Instruction, in *adapter.LoadInst) (Instr, error) {
	if in.Ordering != "not_atomic" {
		return Instr{}, fault.NotSupportedYet(fault.UnsupportedAtomicInstruction)
	}
	if in.AddressSpace != 0 {
		return Instr{}, fault.NotSupportedYet(fault.UnsupportedPointerAddressSpace)
	}
	instTy, err := c.typing.Convert(&inst.Ty)
	if err != nil {
		return Instr{}, err
	}
	pointee, err := c.typing.Convert(&in.PointeeType)
	if err != nil {
		return Instr{}, err
	}
	if instTy != pointee {
		return Instr{}, fault.InvalidAssumption("load result type disagrees with pointee type")
	}
	pointer, err := c.ParseValue(&in.Pointer, c.typing.Pointer())
	if err != nil {
		return Instr{}, err
	}
	return Instr{Kind: InstrLoad, Load: LoadInstr{
		Pointee: pointee,
		Pointer: pointer,
		Result:  inst.Index,
	}}, nil
}

func (c *Context) parseStore(inst *adapter.Instruction, in *adapter.StoreInst) (Instr, error) {
	if in.Ordering != "not_atomic" {
		return Instr{}, fault.NotSupportedYet(fault.UnsupportedAtomicInstruction)
	}
	if in.AddressSpace != 0 {
		return Instr{}, fault.NotSupportedYet(fault.UnsupportedPointerAddressSpace)
	}
	if !inst.Ty.IsVoid() {
		return Instr{}, fault.InvalidAssumption("store should have void type")
	}
	pointee, err := c.typing.Convert(&in.PointeeType)
	if err != nil {
		return Instr{}, err
	}
	pointer, err := c.ParseValue(&in.Pointer, c.typing.Pointer())
	if err != nil {
		return Instr{}, err
	}
	value, err := c.ParseValue(&in.Value, pointee)
	if err != nil {
		return Instr{}, err
	}
	return Instr{Kind: InstrStore, Store: StoreInstr{
		Pointee: pointee,
		Pointer: pointer,
		Value:   value,
	}}, nil
}

// parseCall handles direct, intrinsic and indirect calls. Intrinsics
// normalize into direct calls on their named callee.
func (c *Context) parseCall(inst *adapter.Instruction, in *adapter.CallInst, direct bool) (Instr, error) {
	funcTy, err := c.typing.Convert(&in.TargetType)
	if err != nil {
		return Instr{}, err
	}
	decl, ok := c.typing.Lookup(funcTy)
	if !ok || decl.Kind != KindFunction {
		return Instr{}, fault.InvalidAssumption("call refers to a non-function callee")
	}
	if len(decl.Params) != len(in.Args) {
		return Instr{}, fault.InvalidAssumption("call argument count mismatch")
	}
	args := make([]Value, 0, len(in.Args))
	for i := range in.Args {
		arg, err := c.ParseValue(&in.Args[i], decl.Params[i])
		if err != nil {
			return Instr{}, err
		}
		args = append(args, arg)
	}
	hasResult := false
	resultTy := NoTypeID
	if decl.Ret == NoTypeID {
		if !inst.Ty.IsVoid() {
			return Instr{}, fault.InvalidAssumption("call return type mismatch")
		}
	} else {
		instTy, err := c.typing.Convert(&inst.Ty)
		if err != nil {
			return Instr{}, err
		}
		if instTy != decl.Ret {
			return Instr{}, fault.InvalidAssumption("call return type mismatch")
		}
		hasResult = true
		resultTy = instTy
	}
	callee, err := c.ParseValue(&in.Callee, c.typing.Pointer())
	if err != nil {
		return Instr{}, err
	}
	named := callee.Kind == ValueConstant && callee.Const.Kind == ConstFunction
	if direct {
		if !named {
			return Instr{}, fault.InvalidAssumption("direct or intrinsic call should target a named function")
		}
		return Instr{Kind: InstrCallDirect, CallDirect: CallDirectInstr{
			Function:  callee.Const.Name,
			Args:      args,
			HasResult: hasResult,
			ResultTy:  resultTy,
			Result:    inst.Index,
		}}, nil
	}
	if named {
		return Instr{}, fault.InvalidAssumption("indirect call should not target a named function")
	}
	return Instr{Kind: InstrCallIndirect, CallIndirect: CallIndirectInstr{
		Callee:    callee,
		Args:      args,
		HasResult: hasResult,
		ResultTy:  resultTy,
		Result:    inst.Index,
	}}, nil
}

func (c *Context) parseBinary(inst *adapter.Instruction, in *adapter.BinaryInst) (Instr, error) {
	instTy, err := c.typing.Convert(&inst.Ty)
	if err != nil {
		return Instr{}, err
	}
	decl := c.typing.MustLookup(instTy)
	if decl.Kind != KindBitvec {
		return Instr{}, fault.InvalidAssumption("binary operator has non-bitvec instruction type")
	}
	op, err := ParseBinaryOperator(in.Opcode)
	if err != nil {
		return Instr{}, err
	}
	lhs, err := c.ParseValue(&in.Lhs, instTy)
	if err != nil {
		return Instr{}, err
	}
	rhs, err := c.ParseValue(&in.Rhs, instTy)
	if err != nil {
		return Instr{}, err
	}
	return Instr{Kind: InstrBinary, Binary: BinaryInstr{
		Bits:   decl.Bits,
		Op:     op,
		Lhs:    lhs,
		Rhs:    rhs,
		Result: inst.Index,
	}}, nil
}

func (c *Context) parseCompare(inst *adapter.Instruction, in *adapter.CompareInst) (Instr, error) {
	instTy, err := c.typing.Convert(&inst.Ty)
	if err != nil {
		return Instr{}, err
	}
	if instTy != c.typing.Bool() {
		return Instr{}, fault.InvalidAssumption("compare should produce a 1-bit bitvec")
	}
	operandTy, err := c.typing.Convert(&in.OperandType)
	if err != nil {
		return Instr{}, err
	}
	decl := c.typing.MustLookup(operandTy)
	out := CompareInstr{Result: inst.Index}
	switch decl.Kind {
	case KindBitvec:
		out.Bits = decl.Bits
	case KindPointer:
		out.OnPointer = true
	default:
		return Instr{}, fault.InvalidAssumption("compare operand type is neither bitvec nor pointer")
	}
	pred, err := ParseComparePredicate(in.Predicate)
	if err != nil {
		return Instr{}, err
	}
	out.Pred = pred
	if out.Lhs, err = c.ParseValue(&in.Lhs, operandTy); err != nil {
		return Instr{}, err
	}
	if out.Rhs, err = c.ParseValue(&in.Rhs, operandTy); err != nil {
		return Instr{}, err
	}
	return Instr{Kind: InstrCompare, Compare: out}, nil
}

func (c *Context) parseCast(inst *adapter.Instruction, in *adapter.CastInst) (Instr, error) {
	instTy, err := c.typing.Convert(&inst.Ty)
	if err != nil {
		return Instr{}, err
	}
	srcTy, err := c.typing.Convert(&in.SrcTy)
	if err != nil {
		return Instr{}, err
	}
	dstTy, err := c.typing.Convert(&in.DstTy)
	if err != nil {
		return Instr{}, err
	}
	if dstTy != instTy {
		return Instr{}, fault.InvariantViolation("cast destination type disagrees with instruction type")
	}
	operand, err := c.ParseValue(&in.Operand, srcTy)
	if err != nil {
		return Instr{}, err
	}
	src := c.typing.MustLookup(srcTy)
	dst := c.typing.MustLookup(dstTy)
	switch in.Opcode {
	case "trunc", "zext", "sext":
		if src.Kind != KindBitvec || dst.Kind != KindBitvec {
			return Instr{}, fault.InvalidAssumption("expect bitvec types for bitvec cast")
		}
		return Instr{Kind: InstrCastBitvec, CastBitvec: CastBitvecInstr{
			FromBits: src.Bits,
			IntoBits: dst.Bits,
			Operand:  operand,
			Result:   inst.Index,
		}}, nil
	case "ptr_to_int":
		if src.Kind != KindPointer || dst.Kind != KindBitvec {
			return Instr{}, fault.InvalidAssumption("expect (ptr, bitvec) for ptr_to_int cast")
		}
		if in.SrcAddressSpace == nil {
			return Instr{}, fault.InvalidAssumption("missing source address space for ptr_to_int cast")
		}
		if *in.SrcAddressSpace != 0 {
			return Instr{}, fault.NotSupportedYet(fault.UnsupportedPointerAddressSpace)
		}
		return Instr{Kind: InstrCastPtrToBitvec, CastPtrToBitvec: CastPtrToBitvecInstr{
			IntoBits: dst.Bits,
			Operand:  operand,
			Result:   inst.Index,
		}}, nil
	case "int_to_ptr":
		if src.Kind != KindBitvec || dst.Kind != KindPointer {
			return Instr{}, fault.InvalidAssumption("expect (bitvec, ptr) for int_to_ptr cast")
		}
		if in.DstAddressSpace == nil {
			return Instr{}, fault.InvalidAssumption("missing destination address space for int_to_ptr cast")
		}
		if *in.DstAddressSpace != 0 {
			return Instr{}, fault.NotSupportedYet(fault.UnsupportedPointerAddressSpace)
		}
		return Instr{Kind: InstrCastBitvecToPtr, CastBitvecToPtr: CastBitvecToPtrInstr{
			FromBits: src.Bits,
			Operand:  operand,
			Result:   inst.Index,
		}}, nil
	case "bitcast":
		if src.Kind != KindPointer || dst.Kind != KindPointer {
			return Instr{}, fault.InvalidAssumption("expect pointer types for bitcast")
		}
		return Instr{Kind: InstrCastPtr, CastPtr: CastPtrInstr{
			Operand: operand,
			Result:  inst.Index,
		}}, nil
	case "address_space_cast":
		return Instr{}, fault.NotSupportedYet(fault.UnsupportedPointerAddressSpace)
	default:
		return Instr{}, fault.InvalidAssumption("unexpected cast opcode: %s", in.Opcode)
	}
}

func (c *Context) parseFreeze(inst *adapter.Instruction, in *adapter.FreezeInst) (Instr, error) {
	instTy, err := c.typing.Convert(&inst.Ty)
	if err != nil {
		return Instr{}, err
	}
	operand, err := c.ParseValue(&in.Operand, instTy)
	if err != nil {
		return Instr{}, err
	}
	if operand.Kind == ValueConstant {
		switch operand.Const.Kind {
		case ConstUndefBitvec:
			return Instr{Kind: InstrFreezeBitvec, FreezeBitvec: FreezeBitvecInstr{
				Bits: operand.Const.Bits,
			}}, nil
		case ConstUndefPointer:
			return Instr{Kind: InstrFreezePtr}, nil
		}
	}
	// LLVM also freezes values that are already defined, e.g. a loaded
	// register feeding a comparison. Those are pass-through no-ops.
	return Instr{Kind: InstrFreezeNop, FreezeNop: FreezeNopInstr{Value: operand}}, nil
}

func (c *Context) parseGEP(inst *adapter.Instruction, in *adapter.GEPInst) (Instr, error) {
	if in.AddressSpace != 0 {
		return Instr{}, fault.NotSupportedYet(fault.UnsupportedPointerAddressSpace)
	}
	instTy, err := c.typing.Convert(&inst.Ty)
	if err != nil {
		return Instr{}, err
	}
	if instTy != c.typing.Pointer() {
		return Instr{}, fault.InvalidAssumption("GEP should produce a pointer type")
	}
	srcTy, err := c.typing.Convert(&in.SrcPointeeTy)
	if err != nil {
		return Instr{}, err
	}
	dstTy, err := c.typing.Convert(&in.DstPointeeTy)
	if err != nil {
		return Instr{}, err
	}
	if len(in.Indices) == 0 {
		return Instr{}, fault.InvalidAssumption("GEP contains no index")
	}
	offset, err := c.ParseValueBv32OrBv64(&in.Indices[0])
	if err != nil {
		return Instr{}, err
	}

	// walk the remaining indices down the pointee type tree
	cur := srcTy
	indices := make([]Value, 0, len(in.Indices)-1)
	for i := 1; i < len(in.Indices); i++ {
		decl := c.typing.MustLookup(cur)
		switch decl.Kind {
		case KindStruct:
			idx, err := c.ParseValue(&in.Indices[i], c.typing.Bv32())
			if err != nil {
				return Instr{}, err
			}
			if idx.Kind != ValueConstant || idx.Const.Kind != ConstBitvec {
				return Instr{}, fault.InvalidAssumption("struct field number must be a constant bv32")
			}
			field := idx.Const.Value
			if field >= uint64(len(decl.Fields)) {
				return Instr{}, fault.InvalidAssumption("struct field number out of range")
			}
			indices = append(indices, idx)
			cur = decl.Fields[field]
		case KindArray:
			idx, err := c.ParseValueBv32OrBv64(&in.Indices[i])
			if err != nil {
				return Instr{}, err
			}
			indices = append(indices, idx)
			cur = decl.Elem
		default:
			return Instr{}, fault.InvalidAssumption("GEP only applies to array and struct")
		}
	}
	if cur != dstTy {
		return Instr{}, fault.InvalidAssumption("GEP destination type mismatch")
	}

	pointer, err := c.ParseValue(&in.Pointer, c.typing.Pointer())
	if err != nil {
		return Instr{}, err
	}
	return Instr{Kind: InstrGEP, GEP: GEPInstr{
		SrcPointee: srcTy,
		DstPointee: dstTy,
		Pointer:    pointer,
		Offset:     offset,
		Indices:    indices,
		Result:     inst.Index,
	}}, nil
}

func (c *Context) parseITE(inst *adapter.Instruction, in *adapter.ITEInst) (Instr, error) {
	cond, err := c.ParseValue(&in.Cond, c.typing.Bool())
	if err != nil {
		return Instr{}, err
	}
	instTy, err := c.typing.Convert(&inst.Ty)
	if err != nil {
		return Instr{}, err
	}
	thenValue, err := c.ParseValue(&in.ThenValue, instTy)
	if err != nil {
		return Instr{}, err
	}
	elseValue, err := c.ParseValue(&in.ElseValue, instTy)
	if err != nil {
		return Instr{}, err
	}
	return Instr{Kind: InstrITE, ITE: ITEInstr{
		Cond:   cond,
		Then:   thenValue,
		Else:   elseValue,
		Result: inst.Index,
	}}, nil
}

func (c *Context) parsePhi(inst *adapter.Instruction, in *adapter.PhiInst) (Instr, error) {
	instTy, err := c.typing.Convert(&inst.Ty)
	if err != nil {
		return Instr{}, err
	}
	options := make(map[BlockLabel]Value, len(in.Options))
	for i := range in.Options {
		opt := &in.Options[i]
		if _, known := c.blocks[opt.Block]; !known {
			return Instr{}, fault.InvariantViolation("unknown incoming edge into phi node")
		}
		value, err := c.ParseValue(&opt.Value, instTy)
		if err != nil {
			return Instr{}, err
		}
		// duplicated edges are tolerated when they agree in value
		if existing, dup := options[opt.Block]; dup && !existing.Equal(value) {
			return Instr{}, fault.InvariantViolation("duplicated edges into phi node with different values")
		}
		options[opt.Block] = value
	}
	return Instr{Kind: InstrPhi, Phi: PhiInstr{
		Ty:      instTy,
		Options: options,
		Result:  inst.Index,
	}}, nil
}

// walkAggregate resolves a chain of literal indices against an aggregate
// type, returning the element type the chain terminates at.
func (c *Context) walkAggregate(src TypeID, indices []int) (TypeID, error) {
	cur := src
	for _, idx := range indices {
		decl := c.typing.MustLookup(cur)
		switch decl.Kind {
		case KindStruct:
			if idx < 0 || idx >= len(decl.Fields) {
				return NoTypeID, fault.InvalidAssumption("struct field number out of range")
			}
			cur = decl.Fields[idx]
		case KindArray:
			if idx < 0 || uint64(idx) >= decl.Length {
				return NoTypeID, fault.InvalidAssumption("array index out of range")
			}
			cur = decl.Elem
		default:
			return NoTypeID, fault.InvalidAssumption("aggregate access only applies to array and struct")
		}
	}
	return cur, nil
}

func (c *Context) parseGetValue(inst *adapter.Instruction, in *adapter.GetValueInst) (Instr, error) {
	srcTy, err := c.typing.Convert(&in.FromTy)
	if err != nil {
		return Instr{}, err
	}
	dstTy, err := c.typing.Convert(&inst.Ty)
	if err != nil {
		return Instr{}, err
	}
	end, err := c.walkAggregate(srcTy, in.Indices)
	if err != nil {
		return Instr{}, err
	}
	if end != dstTy {
		return Instr{}, fault.InvalidAssumption("aggregate read destination type mismatch")
	}
	aggregate, err := c.ParseValue(&in.Aggregate, srcTy)
	if err != nil {
		return Instr{}, err
	}
	return Instr{Kind: InstrGetValue, GetValue: GetValueInstr{
		Src:       srcTy,
		Dst:       dstTy,
		Aggregate: aggregate,
		Indices:   in.Indices,
		Result:    inst.Index,
	}}, nil
}

func (c *Context) parseSetValue(inst *adapter.Instruction, in *adapter.SetValueInst) (Instr, error) {
	srcTy, err := c.typing.Convert(&inst.Ty)
	if err != nil {
		return Instr{}, err
	}
	dstTy, err := c.walkAggregate(srcTy, in.Indices)
	if err != nil {
		return Instr{}, err
	}
	aggregate, err := c.ParseValue(&in.Aggregate, srcTy)
	if err != nil {
		return Instr{}, err
	}
	value, err := c.ParseValue(&in.Value, dstTy)
	if err != nil {
		return Instr{}, err
	}
	return Instr{Kind: InstrSetValue, SetValue: SetValueInstr{
		Src:       srcTy,
		Dst:       dstTy,
		Aggregate: aggregate,
		Value:     value,
		Indices:   in.Indices,
		Result:    inst.Index,
	}}, nil
}

// ParseTerminator converts a block-final instruction.
func (c *Context) ParseTerminator(inst *adapter.Instruction) (Terminator, error) {
	if !inst.Ty.IsVoid() {
		return Terminator{}, fault.InvalidAssumption("all terminator instructions must have void type")
	}
	repr := &inst.Repr
	switch {
	case repr.Return != nil:
		return c.parseReturn(repr.Return)
	case repr.Branch != nil:
		return c.parseBranch(repr.Branch)
	case repr.Switch != nil:
		return c.parseSwitch(repr.Switch)
	case repr.IndirectJump != nil:
		return Terminator{}, fault.NotSupportedYet(fault.UnsupportedIndirectJump)
	case repr.Unreachable != nil:
		return Terminator{Kind: TermUnreachable}, nil
	case repr.Resume != nil, repr.CatchSwitch != nil, repr.CatchReturn != nil,
		repr.CleanupReturn != nil, repr.InvokeDirect != nil,
		repr.InvokeIndirect != nil, repr.InvokeAsm != nil:
		return Terminator{}, fault.NotSupportedYet(fault.UnsupportedExceptionHandling)
	case repr.CallBranch != nil:
		return Terminator{}, fault.NotSupportedYet(fault.UnsupportedInlineAssembly)
	default:
		return Terminator{}, fault.InvariantViolation("malformed block with non-terminator instruction")
	}
}

func (c *Context) parseReturn(in *adapter.ReturnInst) (Terminator, error) {
	switch {
	case in.Value == nil && !c.hasRet:
		return Terminator{Kind: TermReturn}, nil
	case in.Value == nil || !c.hasRet:
		return Terminator{}, fault.InvariantViolation("return type mismatch")
	default:
		value, err := c.ParseValue(in.Value, c.ret)
		if err != nil {
			return Terminator{}, err
		}
		return Terminator{Kind: TermReturn, Return: ReturnTerm{
			HasValue: true,
			Value:    value,
		}}, nil
	}
}

func (c *Context) parseBranch(in *adapter.BranchInst) (Terminator, error) {
	if in.Cond == nil {
		if len(in.Targets) != 1 {
			return Terminator{}, fault.InvalidAssumption("unconditional branch should have exactly one target")
		}
		target := in.Targets[0]
		if _, known := c.blocks[target]; !known {
			return Terminator{}, fault.InvalidAssumption("unconditional branch to unknown target")
		}
		return Terminator{Kind: TermGoto, Goto: GotoTerm{Target: target}}, nil
	}
	cond, err := c.ParseValue(in.Cond, c.typing.Bool())
	if err != nil {
		return Terminator{}, err
	}
	if len(in.Targets) != 2 {
		return Terminator{}, fault.InvalidAssumption("conditional branch should have exactly two targets")
	}
	thenCase, elseCase := in.Targets[0], in.Targets[1]
	if _, known := c.blocks[thenCase]; !known {
		return Terminator{}, fault.InvalidAssumption("conditional branch to unknown then target")
	}
	if _, known := c.blocks[elseCase]; !known {
		return Terminator{}, fault.InvalidAssumption("conditional branch to unknown else target")
	}
	return Terminator{Kind: TermBranch, Branch: BranchTerm{
		Cond: cond,
		Then: thenCase,
		Else: elseCase,
	}}, nil
}

func (c *Context) parseSwitch(in *adapter.SwitchInst) (Terminator, error) {
	condTy, err := c.typing.Convert(&in.CondTy)
	if err != nil {
		return Terminator{}, err
	}
	if c.typing.MustLookup(condTy).Kind != KindBitvec {
		return Terminator{}, fault.InvalidAssumption("switch condition must be bitvec")
	}
	cond, err := c.ParseValue(&in.Cond, condTy)
	if err != nil {
		return Terminator{}, err
	}
	cases := make(map[uint64]BlockLabel, len(in.Cases))
	for i := range in.Cases {
		cs := &in.Cases[i]
		if _, known := c.blocks[cs.Block]; !known {
			return Terminator{}, fault.InvalidAssumption("switch casing into an invalid block")
		}
		caseVal, err := c.conv().convertExpect(&cs.Value, condTy)
		if err != nil {
			return Terminator{}, err
		}
		if caseVal.Kind != ConstBitvec {
			return Terminator{}, fault.InvariantViolation("switch case is not a constant bitvec")
		}
		// last write wins on a duplicate case literal
		cases[caseVal.Value] = cs.Block
	}
	out := SwitchTerm{Cond: cond, Cases: cases}
	if in.Default != nil {
		if _, known := c.blocks[*in.Default]; !known {
			return Terminator{}, fault.InvalidAssumption("switch default casing into an invalid block")
		}
		out.HasDefault = true
		out.Default = *in.Default
	}
	return Terminator{Kind: TermSwitch, Switch: out}, nil
}
