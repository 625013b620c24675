package bridge

import (
	"testing"

	"girder/internal/adapter"
	"girder/internal/fault"
)

func argVal(ty adapter.Type, idx int) adapter.Value {
	return adapter.Value{Argument: &adapter.ValueRef{Ty: ty, Index: idx}}
}

func regVal(ty adapter.Type, idx int) adapter.Value {
	return adapter.Value{Instruction: &adapter.ValueRef{Ty: ty, Index: idx}}
}

func constVal(c adapter.Constant) adapter.Value {
	return adapter.Value{Constant: &c}
}

// testContext builds a context over a synthetic function shape: block
// labels, the register indices declared per block, parameter types and an
// optional return type.
func testContext(
	t *testing.T,
	typing *TypeRegistry,
	labels []int,
	regIndices []int,
	params []TypeID,
	hasRet bool,
	ret TypeID,
) *Context {
	t.Helper()
	symbols, err := NewSymbolRegistry(&adapter.Module{})
	if err != nil {
		t.Fatal(err)
	}
	fn := &adapter.Function{}
	for _, l := range labels {
		fn.Blocks = append(fn.Blocks, adapter.Block{Label: l})
	}
	if len(fn.Blocks) > 0 {
		for _, ri := range regIndices {
			fn.Blocks[0].Instructions = append(fn.Blocks[0].Instructions,
				adapter.Instruction{Index: ri})
		}
	}
	return newContext(typing, symbols, fn, params, hasRet, ret)
}

func TestContext_RegisterBindingIsFirstWriteWins(t *testing.T) {
	typing := mustRegistry(t)
	ctx := testContext(t, typing, []int{0}, []int{0, 1}, nil, false, NoTypeID)

	v32 := regVal(intTy(32), 0)
	got, err := ctx.ParseValue(&v32, typing.Bv32())
	if err != nil {
		t.Fatalf("first reference error: %v", err)
	}
	if got.Kind != ValueRegister || got.Index != 0 || got.Ty != typing.Bv32() {
		t.Fatalf("first reference = %+v", got)
	}

	// same type again succeeds silently
	if _, err := ctx.ParseValue(&v32, typing.Bv32()); err != nil {
		t.Fatalf("repeat reference error: %v", err)
	}

	// a different declared type for the same index breaks the binding
	v64 := regVal(intTy(64), 0)
	_, err = ctx.ParseValue(&v64, typing.Bv64())
	wantKind(t, err, fault.KindInvariantViolation)

	// an index that was never declared is invalid
	unknown := regVal(intTy(32), 9)
	_, err = ctx.ParseValue(&unknown, typing.Bv32())
	wantKind(t, err, fault.KindInvariantViolation)
}

func TestContext_ArgumentChecks(t *testing.T) {
	typing := mustRegistry(t)
	ctx := testContext(t, typing, []int{0}, nil, []TypeID{typing.Bv32()}, false, NoTypeID)

	ok := argVal(intTy(32), 0)
	if _, err := ctx.ParseValue(&ok, typing.Bv32()); err != nil {
		t.Fatalf("ParseValue(arg0) error: %v", err)
	}

	outOfRange := argVal(intTy(32), 1)
	_, err := ctx.ParseValue(&outOfRange, typing.Bv32())
	wantKind(t, err, fault.KindInvariantViolation)

	wrongType := argVal(intTy(64), 0)
	_, err = ctx.ParseValue(&wrongType, typing.Bv64())
	wantKind(t, err, fault.KindInvariantViolation)
}

func TestContext_LoadOrderingAndAddressSpace(t *testing.T) {
	typing := mustRegistry(t)
	ctx := testContext(t, typing, []int{0}, []int{0}, []TypeID{typing.Pointer()}, false, NoTypeID)

	load := func(ordering string, space int) adapter.Instruction {
		return adapter.Instruction{
			Ty:    intTy(32),
			Index: 0,
			Repr: adapter.Inst{Load: &adapter.LoadInst{
				PointeeType:  intTy(32),
				Pointer:      argVal(ptrTy(), 0),
				Ordering:     ordering,
				AddressSpace: space,
			}},
		}
	}

	in := load("not_atomic", 0)
	got, err := ctx.ParseInstruction(&in)
	if err != nil {
		t.Fatalf("ParseInstruction(load) error: %v", err)
	}
	if got.Kind != InstrLoad || got.Load.Pointee != typing.Bv32() {
		t.Fatalf("load = %+v", got)
	}

	atomic := load("acquire", 0)
	_, err = ctx.ParseInstruction(&atomic)
	wantUnsupported(t, err, fault.UnsupportedAtomicInstruction)

	spaced := load("not_atomic", 1)
	_, err = ctx.ParseInstruction(&spaced)
	wantUnsupported(t, err, fault.UnsupportedPointerAddressSpace)
}

func TestContext_SwitchLastWriteWins(t *testing.T) {
	typing := mustRegistry(t)
	ctx := testContext(t, typing, []int{0, 1, 2, 3}, nil, nil, false, NoTypeID)

	three := 3
	term := adapter.Instruction{
		Ty: voidTy(),
		Repr: adapter.Inst{Switch: &adapter.SwitchInst{
			Cond:   constVal(intConst(32, 0)),
			CondTy: intTy(32),
			Cases: []adapter.SwitchCase{
				{Block: 1, Value: intConst(32, 1)},
				{Block: 2, Value: intConst(32, 2)},
				{Block: 3, Value: intConst(32, 1)}, // duplicate label 1
			},
			Default: &three,
		}},
	}
	got, err := ctx.ParseTerminator(&term)
	if err != nil {
		t.Fatalf("ParseTerminator(switch) error: %v", err)
	}
	if got.Kind != TermSwitch {
		t.Fatalf("terminator kind = %v", got.Kind)
	}
	sw := got.Switch
	if len(sw.Cases) != 2 {
		t.Fatalf("cases = %v", sw.Cases)
	}
	if sw.Cases[1] != 3 {
		t.Errorf("duplicate case label should resolve to the later block, got bb%d", sw.Cases[1])
	}
	if sw.Cases[2] != 2 || !sw.HasDefault || sw.Default != 3 {
		t.Errorf("switch = %+v", sw)
	}

	badTarget := adapter.Instruction{
		Ty: voidTy(),
		Repr: adapter.Inst{Switch: &adapter.SwitchInst{
			Cond:   constVal(intConst(32, 0)),
			CondTy: intTy(32),
			Cases:  []adapter.SwitchCase{{Block: 9, Value: intConst(32, 1)}},
		}},
	}
	_, err = ctx.ParseTerminator(&badTarget)
	wantKind(t, err, fault.KindInvalidAssumption)
}

func TestContext_GEPWalk(t *testing.T) {
	typing := mustRegistry(t)
	ctx := testContext(t, typing, []int{0}, []int{0}, []TypeID{typing.Pointer()}, false, NoTypeID)

	src := structTy("", intTy(32), arrayTy(intTy(64), 4))
	gep := func(dst adapter.Type) adapter.Instruction {
		return adapter.Instruction{
			Ty:    ptrTy(),
			Index: 0,
			Repr: adapter.Inst{GEP: &adapter.GEPInst{
				SrcPointeeTy: src,
				DstPointeeTy: dst,
				Pointer:      argVal(ptrTy(), 0),
				Indices: []adapter.Value{
					constVal(intConst(32, 0)),
					constVal(intConst(32, 1)),
					constVal(intConst(32, 2)),
				},
			}},
		}
	}

	in := gep(intTy(64))
	got, err := ctx.ParseInstruction(&in)
	if err != nil {
		t.Fatalf("ParseInstruction(gep) error: %v", err)
	}
	if got.Kind != InstrGEP || got.GEP.DstPointee != typing.Bv64() {
		t.Fatalf("gep = %+v", got.GEP)
	}
	if len(got.GEP.Indices) != 2 {
		t.Errorf("walked indices = %d, want 2", len(got.GEP.Indices))
	}

	// same chain with a pointer destination cannot terminate correctly
	bad := gep(ptrTy())
	_, err = ctx.ParseInstruction(&bad)
	wantKind(t, err, fault.KindInvalidAssumption)

	// field index out of range
	outOfRange := gep(intTy(64))
	outOfRange.Repr.GEP.Indices[1] = constVal(intConst(32, 5))
	_, err = ctx.ParseInstruction(&outOfRange)
	wantKind(t, err, fault.KindInvalidAssumption)

	// empty index list
	empty := gep(intTy(64))
	empty.Repr.GEP.Indices = nil
	_, err = ctx.ParseInstruction(&empty)
	wantKind(t, err, fault.KindInvalidAssumption)
}

func TestContext_PhiEdges(t *testing.T) {
	typing := mustRegistry(t)
	ctx := testContext(t, typing, []int{0, 5}, []int{0}, nil, false, NoTypeID)

	phi := func(opts ...adapter.PhiOption) adapter.Instruction {
		return adapter.Instruction{
			Ty:    intTy(32),
			Index: 0,
			Repr:  adapter.Inst{Phi: &adapter.PhiInst{Options: opts}},
		}
	}

	conflicting := phi(
		adapter.PhiOption{Block: 5, Value: constVal(intConst(32, 5))},
		adapter.PhiOption{Block: 5, Value: constVal(intConst(32, 6))},
	)
	_, err := ctx.ParseInstruction(&conflicting)
	wantKind(t, err, fault.KindInvariantViolation)

	agreeing := phi(
		adapter.PhiOption{Block: 5, Value: constVal(intConst(32, 5))},
		adapter.PhiOption{Block: 5, Value: constVal(intConst(32, 5))},
	)
	got, err := ctx.ParseInstruction(&agreeing)
	if err != nil {
		t.Fatalf("ParseInstruction(phi) error: %v", err)
	}
	if len(got.Phi.Options) != 1 {
		t.Errorf("agreeing duplicate edges should collapse: %v", got.Phi.Options)
	}

	unknown := phi(adapter.PhiOption{Block: 9, Value: constVal(intConst(32, 1))})
	_, err = ctx.ParseInstruction(&unknown)
	wantKind(t, err, fault.KindInvariantViolation)
}

func TestContext_CallShapes(t *testing.T) {
	fname := "callee"
	mod := &adapter.Module{
		Functions: []adapter.Function{{Name: &fname, Ty: funcTy(intTy(32), intTy(32))}},
	}
	typing := mustRegistry(t)
	symbols, err := NewSymbolRegistry(mod)
	if err != nil {
		t.Fatal(err)
	}
	fn := &adapter.Function{Blocks: []adapter.Block{{Label: 0, Instructions: []adapter.Instruction{{Index: 0}}}}}
	ctx := newContext(typing, symbols, fn, nil, false, NoTypeID)

	calleeRef := constVal(adapter.Constant{
		Ty:   ptrTy(),
		Repr: adapter.ConstRepr{Function: &adapter.ConstRef{Name: &fname}},
	})
	call := func(direct bool, args ...adapter.Value) adapter.Instruction {
		payload := &adapter.CallInst{
			Callee:     calleeRef,
			TargetType: funcTy(intTy(32), intTy(32)),
			Args:       args,
		}
		repr := adapter.Inst{}
		if direct {
			repr.CallDirect = payload
		} else {
			repr.CallIndirect = payload
		}
		return adapter.Instruction{Ty: intTy(32), Index: 0, Repr: repr}
	}

	in := call(true, constVal(intConst(32, 7)))
	got, err := ctx.ParseInstruction(&in)
	if err != nil {
		t.Fatalf("ParseInstruction(call) error: %v", err)
	}
	if got.Kind != InstrCallDirect || got.CallDirect.Function != "callee" || !got.CallDirect.HasResult {
		t.Fatalf("call = %+v", got.CallDirect)
	}

	// a named callee through the indirect shape is a broken assumption
	indirect := call(false, constVal(intConst(32, 7)))
	_, err = ctx.ParseInstruction(&indirect)
	wantKind(t, err, fault.KindInvalidAssumption)

	// argument count must match the declared signature
	noArgs := call(true)
	_, err = ctx.ParseInstruction(&noArgs)
	wantKind(t, err, fault.KindInvalidAssumption)
}

func TestContext_CastShapes(t *testing.T) {
	typing := mustRegistry(t)
	ctx := testContext(t, typing, []int{0}, []int{0, 1}, []TypeID{typing.Pointer(), typing.Bv64()}, false, NoTypeID)

	zero := 0
	one := 1
	cast := func(opcode string, src, dst adapter.Type, instTy adapter.Type, operand adapter.Value, srcAS, dstAS *int) adapter.Instruction {
		return adapter.Instruction{
			Ty:    instTy,
			Index: 0,
			Repr: adapter.Inst{Cast: &adapter.CastInst{
				Opcode:          opcode,
				SrcTy:           src,
				DstTy:           dst,
				SrcAddressSpace: srcAS,
				DstAddressSpace: dstAS,
				Operand:         operand,
			}},
		}
	}

	trunc := cast("trunc", intTy(64), intTy(32), intTy(32), argVal(intTy(64), 1), nil, nil)
	got, err := ctx.ParseInstruction(&trunc)
	if err != nil {
		t.Fatalf("ParseInstruction(trunc) error: %v", err)
	}
	if got.Kind != InstrCastBitvec || got.CastBitvec.FromBits != 64 || got.CastBitvec.IntoBits != 32 {
		t.Fatalf("trunc = %+v", got.CastBitvec)
	}

	p2i := cast("ptr_to_int", ptrTy(), intTy(64), intTy(64), argVal(ptrTy(), 0), &zero, nil)
	if got, err = ctx.ParseInstruction(&p2i); err != nil || got.Kind != InstrCastPtrToBitvec {
		t.Fatalf("ptr_to_int = %+v, err %v", got, err)
	}

	noSpace := cast("ptr_to_int", ptrTy(), intTy(64), intTy(64), argVal(ptrTy(), 0), nil, nil)
	_, err = ctx.ParseInstruction(&noSpace)
	wantKind(t, err, fault.KindInvalidAssumption)

	badSpace := cast("ptr_to_int", ptrTy(), intTy(64), intTy(64), argVal(ptrTy(), 0), &one, nil)
	_, err = ctx.ParseInstruction(&badSpace)
	wantUnsupported(t, err, fault.UnsupportedPointerAddressSpace)

	// destination type must agree with the instruction type
	skewed := cast("trunc", intTy(64), intTy(32), intTy(16), argVal(intTy(64), 1), nil, nil)
	_, err = ctx.ParseInstruction(&skewed)
	wantKind(t, err, fault.KindInvariantViolation)
}

func TestContext_BlockShapeViolations(t *testing.T) {
	typing := mustRegistry(t)
	ctx := testContext(t, typing, []int{0, 1}, []int{0}, nil, false, NoTypeID)

	// a terminator shape mid-block
	ret := adapter.Instruction{
		Ty:   voidTy(),
		Repr: adapter.Inst{Return: &adapter.ReturnInst{}},
	}
	_, err := ctx.ParseInstruction(&ret)
	wantKind(t, err, fault.KindInvariantViolation)

	// an ordinary instruction where a terminator is expected
	store := adapter.Instruction{
		Ty: voidTy(),
		Repr: adapter.Inst{Store: &adapter.StoreInst{
			PointeeType: intTy(32),
			Pointer:     argVal(ptrTy(), 0),
			Value:       constVal(intConst(32, 0)),
			Ordering:    "not_atomic",
		}},
	}
	_, err = ctx.ParseTerminator(&store)
	wantKind(t, err, fault.KindInvariantViolation)

	// terminators carry void type
	typedRet := adapter.Instruction{
		Ty:   intTy(32),
		Repr: adapter.Inst{Return: &adapter.ReturnInst{}},
	}
	_, err = ctx.ParseTerminator(&typedRet)
	wantKind(t, err, fault.KindInvalidAssumption)

	// indirect jumps are a typed refusal, not a malformed block
	jump := adapter.Instruction{
		Ty:   voidTy(),
		Repr: adapter.Inst{IndirectJump: &adapter.TypeVoid{}},
	}
	_, err = ctx.ParseTerminator(&jump)
	wantUnsupported(t, err, fault.UnsupportedIndirectJump)
}

func TestContext_BranchTargets(t *testing.T) {
	typing := mustRegistry(t)
	ctx := testContext(t, typing, []int{0, 1, 2}, nil, nil, false, NoTypeID)

	goTo := adapter.Instruction{
		Ty:   voidTy(),
		Repr: adapter.Inst{Branch: &adapter.BranchInst{Targets: []int{1}}},
	}
	got, err := ctx.ParseTerminator(&goTo)
	if err != nil {
		t.Fatalf("ParseTerminator(goto) error: %v", err)
	}
	if got.Kind != TermGoto || got.Goto.Target != 1 {
		t.Fatalf("goto = %+v", got)
	}

	cond := constVal(adapter.Constant{
		Ty:   intTy(1),
		Repr: adapter.ConstRepr{Int: &adapter.ConstInt{Value: 1}},
	})
	branch := adapter.Instruction{
		Ty:   voidTy(),
		Repr: adapter.Inst{Branch: &adapter.BranchInst{Cond: &cond, Targets: []int{1, 2}}},
	}
	if got, err = ctx.ParseTerminator(&branch); err != nil || got.Kind != TermBranch {
		t.Fatalf("branch = %+v, err %v", got, err)
	}
	if got.Branch.Then != 1 || got.Branch.Else != 2 {
		t.Errorf("branch targets = %+v", got.Branch)
	}

	unknown := adapter.Instruction{
		Ty:   voidTy(),
		Repr: adapter.Inst{Branch: &adapter.BranchInst{Targets: []int{9}}},
	}
	_, err = ctx.ParseTerminator(&unknown)
	wantKind(t, err, fault.KindInvalidAssumption)
}

func TestContext_ReturnAgainstSignature(t *testing.T) {
	typing := mustRegistry(t)
	ctx := testContext(t, typing, []int{0}, nil, nil, true, typing.Bv32())

	bare := adapter.Instruction{Ty: voidTy(), Repr: adapter.Inst{Return: &adapter.ReturnInst{}}}
	_, err := ctx.ParseTerminator(&bare)
	wantKind(t, err, fault.KindInvariantViolation)

	val := constVal(intConst(32, 42))
	ret := adapter.Instruction{
		Ty:   voidTy(),
		Repr: adapter.Inst{Return: &adapter.ReturnInst{Value: &val}},
	}
	got, err := ctx.ParseTerminator(&ret)
	if err != nil {
		t.Fatalf("ParseTerminator(return) error: %v", err)
	}
	if !got.Return.HasValue || got.Return.Value.Const.Value != 42 {
		t.Errorf("return = %+v", got.Return)
	}
}
