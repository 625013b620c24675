package bridge

import (
	"girder/internal/adapter"
	"girder/internal/fault"
)

// BasicBlock is one translated block: its ordinary instructions followed by
// exactly one terminator.
type BasicBlock struct {
	Label BlockLabel
	Body  []Instr
	Term  Terminator
}

// ControlFlowGraph is the body of a defined function. Blocks keep their
// declaration order; branch targets refer to blocks by label.
type ControlFlowGraph struct {
	Blocks []BasicBlock
}

// BuildCFG translates a function body in two passes. The Context pre-scans
// the full block-label and instruction-index sets, so forward references
// from branches and phi nodes validate against the complete function before
// any block is translated.
func BuildCFG(
	typing *TypeRegistry,
	symbols *SymbolRegistry,
	fn *adapter.Function,
	params []TypeID,
	hasRet bool,
	ret TypeID,
) (*ControlFlowGraph, error) {
	ctx := newContext(typing, symbols, fn, params, hasRet, ret)

	cfg := &ControlFlowGraph{Blocks: make([]BasicBlock, 0, len(fn.Blocks))}
	for bi := range fn.Blocks {
		b := &fn.Blocks[bi]
		if len(b.Instructions) == 0 {
			return nil, fault.InvariantViolation("block %d has no terminator", b.Label)
		}
		block := BasicBlock{Label: b.Label}
		last := len(b.Instructions) - 1
		for ii := 0; ii < last; ii++ {
			instr, err := ctx.ParseInstruction(&b.Instructions[ii])
			if err != nil {
				return nil, err
			}
			block.Body = append(block.Body, instr)
		}
		term, err := ctx.ParseTerminator(&b.Instructions[last])
		if err != nil {
			return nil, err
		}
		block.Term = term
		cfg.Blocks = append(cfg.Blocks, block)
	}
	return cfg, nil
}
