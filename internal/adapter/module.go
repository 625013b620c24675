// Package adapter holds the wire representation of LLVM modules as produced
// by the external exporter pass. The schema is a fixed contract owned by the
// exporter; this package decodes it structurally and leaves every semantic
// judgement to the bridge.
package adapter

// Parameter is a formal function parameter.
type Parameter struct {
	Name *string `json:"name"`
	Ty   Type    `json:"ty"`
}

// Block is a basic block: a label plus its instruction stream. The last
// instruction of a block is its terminator.
type Block struct {
	Label        int           `json:"label"`
	Instructions []Instruction `json:"instructions"`
}

// Function is a declared or defined function.
type Function struct {
	Name        *string     `json:"name"`
	Ty          Type        `json:"ty"`
	IsDefined   bool        `json:"is_defined"`
	IsExact     bool        `json:"is_exact"`
	IsIntrinsic bool        `json:"is_intrinsic"`
	Params      []Parameter `json:"params"`
	Blocks      []Block     `json:"blocks"`
}

// Global is a module-level variable. Only its name and type matter to the
// bridge; globals are referenced from constants but not themselves lowered.
type Global struct {
	Name *string `json:"name"`
	Ty   Type    `json:"ty"`
}

// Module is the root of an exported compilation unit.
type Module struct {
	Name      string     `json:"name"`
	Asm       string     `json:"asm"`
	Structs   []Type     `json:"structs"`
	Globals   []Global   `json:"globals"`
	Functions []Function `json:"functions"`
}
