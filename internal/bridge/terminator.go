package bridge

// TermKind enumerates terminator kinds in the bridge form.
type TermKind uint8

const (
	TermInvalid TermKind = iota
	TermReturn
	TermGoto
	TermBranch
	TermSwitch
	TermUnreachable
)

// Terminator represents the final instruction of a basic block.
type Terminator struct {
	Kind TermKind

	Return      ReturnTerm
	Goto        GotoTerm
	Branch      BranchTerm
	Switch      SwitchTerm
	Unreachable struct{}
}

// ReturnTerm represents a function return.
type ReturnTerm struct {
	HasValue bool
	Value    Value
}

// GotoTerm represents an unconditional branch.
type GotoTerm struct {
	Target BlockLabel
}

// BranchTerm represents a conditional branch.
type BranchTerm struct {
	Cond Value
	Then BlockLabel
	Else BlockLabel
}

// SwitchTerm represents a multi-way branch over a bitvector condition.
// Cases maps each case literal to its target block. A duplicate case
// literal overwrites the earlier entry; last write wins.
type SwitchTerm struct {
	Cond       Value
	Cases      map[uint64]BlockLabel
	HasDefault bool
	Default    BlockLabel
}
