package adapter

import (
	"encoding/json"
	"fmt"
)

// Instruction is one entry of a basic block's instruction stream.
type Instruction struct {
	// Name is the textual register name when the instruction result is named.
	Name *string `json:"name"`
	// Ty is the type of the instruction result.
	Ty Type `json:"ty"`
	// Index uniquely identifies the instruction within its function.
	Index int `json:"index"`
	// Repr is the kind-specific representation.
	Repr Inst `json:"repr"`
}

// Inst mirrors the exporter's instruction vocabulary. Exactly one variant
// pointer is set on a decoded value. Variants the bridge always rejects are
// decoded presence-only.
type Inst struct {
	// memory
	Alloca *AllocaInst
	Load   *LoadInst
	Store  *StoreInst
	VAArg  *TypeVoid
	// calls
	Intrinsic    *CallInst
	CallDirect   *CallInst
	CallIndirect *CallInst
	Asm          *AsmInst
	// operators
	Unary   *UnaryInst
	Binary  *BinaryInst
	Compare *CompareInst
	Cast    *CastInst
	Freeze  *FreezeInst
	// address computation
	GEP *GEPInst
	// choice
	ITE *ITEInst
	Phi *PhiInst
	// aggregates
	GetValue *GetValueInst
	SetValue *SetValueInst
	// vectors
	GetElement    *TypeVoid
	SetElement    *TypeVoid
	ShuffleVector *TypeVoid
	// concurrency
	Fence         *TypeVoid
	AtomicCmpXchg *TypeVoid
	AtomicRMW     *TypeVoid
	// exception handling
	InvokeDirect   *TypeVoid
	InvokeIndirect *TypeVoid
	InvokeAsm      *TypeVoid
	LandingPad     *TypeVoid
	Resume         *TypeVoid
	CatchPad       *TypeVoid
	CleanupPad     *TypeVoid
	CatchSwitch    *TypeVoid
	CatchReturn    *TypeVoid
	CleanupReturn  *TypeVoid
	CallBranch     *TypeVoid
	// terminators
	Return       *ReturnInst
	Branch       *BranchInst
	Switch       *SwitchInst
	IndirectJump *TypeVoid
	Unreachable  *TypeVoid
}

type AllocaInst struct {
	AllocatedType Type   `json:"allocated_type"`
	Size          *Value `json:"size"`
	AddressSpace  int    `json:"address_space"`
}

type LoadInst struct {
	PointeeType  Type   `json:"pointee_type"`
	Pointer      Value  `json:"pointer"`
	Ordering     string `json:"ordering"`
	AddressSpace int    `json:"address_space"`
}

type StoreInst struct {
	PointeeType  Type   `json:"pointee_type"`
	Pointer      Value  `json:"pointer"`
	Value        Value  `json:"value"`
	Ordering     string `json:"ordering"`
	AddressSpace int    `json:"address_space"`
}

// CallInst is shared by direct, indirect and intrinsic calls.
type CallInst struct {
	Callee     Value   `json:"callee"`
	TargetType Type    `json:"target_type"`
	Args       []Value `json:"args"`
}

type AsmInst struct {
	Asm  InlineAsm `json:"asm"`
	Args []Value   `json:"args"`
}

type UnaryInst struct {
	Opcode  string `json:"opcode"`
	Operand Value  `json:"operand"`
}

type BinaryInst struct {
	Opcode string `json:"opcode"`
	Lhs    Value  `json:"lhs"`
	Rhs    Value  `json:"rhs"`
}

type CompareInst struct {
	Predicate   string `json:"predicate"`
	OperandType Type   `json:"operand_type"`
	Lhs         Value  `json:"lhs"`
	Rhs         Value  `json:"rhs"`
}

type CastInst struct {
	Opcode string `json:"opcode"`
	SrcTy  Type   `json:"src_ty"`
	DstTy  Type   `json:"dst_ty"`
	// Address spaces are present only for the pointer side of a cast.
	SrcAddressSpace *int  `json:"src_address_space"`
	DstAddressSpace *int  `json:"dst_address_space"`
	Operand         Value `json:"operand"`
}

type FreezeInst struct {
	Operand Value `json:"operand"`
}

type GEPInst struct {
	SrcPointeeTy Type    `json:"src_pointee_ty"`
	DstPointeeTy Type    `json:"dst_pointee_ty"`
	Pointer      Value   `json:"pointer"`
	Indices      []Value `json:"indices"`
	AddressSpace int     `json:"address_space"`
}

type ITEInst struct {
	Cond      Value `json:"cond"`
	ThenValue Value `json:"then_value"`
	ElseValue Value `json:"else_value"`
}

type PhiInst struct {
	Options []PhiOption `json:"options"`
}

type PhiOption struct {
	Block int   `json:"block"`
	Value Value `json:"value"`
}

type GetValueInst struct {
	FromTy    Type  `json:"from_ty"`
	Aggregate Value `json:"aggregate"`
	Indices   []int `json:"indices"`
}

type SetValueInst struct {
	Aggregate Value `json:"aggregate"`
	Value     Value `json:"value"`
	Indices   []int `json:"indices"`
}

type ReturnInst struct {
	Value *Value `json:"value"`
}

type BranchInst struct {
	Cond    *Value `json:"cond"`
	Targets []int  `json:"targets"`
}

type SwitchInst struct {
	Cond    Value        `json:"cond"`
	CondTy  Type         `json:"cond_ty"`
	Cases   []SwitchCase `json:"cases"`
	Default *int         `json:"default"`
}

type SwitchCase struct {
	Block int      `json:"block"`
	Value Constant `json:"value"`
}

func (i *Inst) UnmarshalJSON(data []byte) error {
	key, raw, err := oneKey(data)
	if err != nil {
		return err
	}
	*i = Inst{}
	switch key {
	case "Alloca":
		i.Alloca = new(AllocaInst)
		return json.Unmarshal(raw, i.Alloca)
	case "Load":
		i.Load = new(LoadInst)
		return json.Unmarshal(raw, i.Load)
	case "Store":
		i.Store = new(StoreInst)
		return json.Unmarshal(raw, i.Store)
	case "VAArg":
		i.VAArg = &TypeVoid{}
	case "Intrinsic":
		i.Intrinsic = new(CallInst)
		return json.Unmarshal(raw, i.Intrinsic)
	case "CallDirect":
		i.CallDirect = new(CallInst)
		return json.Unmarshal(raw, i.CallDirect)
	case "CallIndirect":
		i.CallIndirect = new(CallInst)
		return json.Unmarshal(raw, i.CallIndirect)
	case "Asm", "CallAsm":
		i.Asm = new(AsmInst)
		return json.Unmarshal(raw, i.Asm)
	case "Unary":
		i.Unary = new(UnaryInst)
		return json.Unmarshal(raw, i.Unary)
	case "Binary":
		i.Binary = new(BinaryInst)
		return json.Unmarshal(raw, i.Binary)
	case "Compare":
		i.Compare = new(CompareInst)
		return json.Unmarshal(raw, i.Compare)
	case "Cast":
		i.Cast = new(CastInst)
		return json.Unmarshal(raw, i.Cast)
	case "Freeze":
		i.Freeze = new(FreezeInst)
		return json.Unmarshal(raw, i.Freeze)
	case "GEP":
		i.GEP = new(GEPInst)
		return json.Unmarshal(raw, i.GEP)
	case "ITE":
		i.ITE = new(ITEInst)
		return json.Unmarshal(raw, i.ITE)
	case "Phi":
		i.Phi = new(PhiInst)
		return json.Unmarshal(raw, i.Phi)
	case "GetValue":
		i.GetValue = new(GetValueInst)
		return json.Unmarshal(raw, i.GetValue)
	case "SetValue":
		i.SetValue = new(SetValueInst)
		return json.Unmarshal(raw, i.SetValue)
	case "GetElement":
		i.GetElement = &TypeVoid{}
	case "SetElement":
		i.SetElement = &TypeVoid{}
	case "ShuffleVector":
		i.ShuffleVector = &TypeVoid{}
	case "Fence":
		i.Fence = &TypeVoid{}
	case "AtomicCmpXchg":
		i.AtomicCmpXchg = &TypeVoid{}
	case "AtomicRMW":
		i.AtomicRMW = &TypeVoid{}
	case "InvokeDirect":
		i.InvokeDirect = &TypeVoid{}
	case "InvokeIndirect":
		i.InvokeIndirect = &TypeVoid{}
	case "InvokeAsm":
		i.InvokeAsm = &TypeVoid{}
	case "LandingPad":
		i.LandingPad = &TypeVoid{}
	case "Resume":
		i.Resume = &TypeVoid{}
	case "CatchPad":
		i.CatchPad = &TypeVoid{}
	case "CleanupPad":
		i.CleanupPad = &TypeVoid{}
	case "CatchSwitch":
		i.CatchSwitch = &TypeVoid{}
	case "CatchReturn":
		i.CatchReturn = &TypeVoid{}
	case "CleanupReturn":
		i.CleanupReturn = &TypeVoid{}
	case "CallBranch":
		i.CallBranch = &TypeVoid{}
	case "Return":
		i.Return = new(ReturnInst)
		return json.Unmarshal(raw, i.Return)
	case "Branch":
		i.Branch = new(BranchInst)
		return json.Unmarshal(raw, i.Branch)
	case "Switch":
		i.Switch = new(SwitchInst)
		return json.Unmarshal(raw, i.Switch)
	case "IndirectJump":
		i.IndirectJump = &TypeVoid{}
	case "Unreachable":
		i.Unreachable = &TypeVoid{}
	default:
		return fmt.Errorf("unknown instruction variant %q", key)
	}
	return nil
}
