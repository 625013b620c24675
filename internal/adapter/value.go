package adapter

import (
	"encoding/json"
	"fmt"
)

// Value mirrors the exporter's value vocabulary: a constant, a reference to
// a function argument, or a reference to an instruction result.
type Value struct {
	Constant    *Constant
	Argument    *ValueRef
	Instruction *ValueRef
}

// ValueRef is a typed reference to an argument or instruction by index.
type ValueRef struct {
	Ty    Type `json:"ty"`
	Index int  `json:"index"`
}

func (v *Value) UnmarshalJSON(data []byte) error {
	key, raw, err := oneKey(data)
	if err != nil {
		return err
	}
	*v = Value{}
	switch key {
	case "Constant":
		v.Constant = new(Constant)
		return json.Unmarshal(raw, v.Constant)
	case "Argument":
		v.Argument = new(ValueRef)
		return json.Unmarshal(raw, v.Argument)
	case "Instruction":
		v.Instruction = new(ValueRef)
		return json.Unmarshal(raw, v.Instruction)
	default:
		return fmt.Errorf("unknown value variant %q", key)
	}
}

// Type returns the declared type carried by the value.
func (v *Value) Type() *Type {
	switch {
	case v.Constant != nil:
		return &v.Constant.Ty
	case v.Argument != nil:
		return &v.Argument.Ty
	case v.Instruction != nil:
		return &v.Instruction.Ty
	}
	return nil
}

// InlineAsm is the payload of an inline assembly callee.
type InlineAsm struct {
	Asm        string `json:"asm"`
	Constraint string `json:"constraint"`
}
