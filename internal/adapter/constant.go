package adapter

import (
	"encoding/json"
	"fmt"
)

// Constant pairs a declared type with the constant representation.
type Constant struct {
	Ty   Type      `json:"ty"`
	Repr ConstRepr `json:"repr"`
}

// ConstRepr mirrors the exporter's constant vocabulary.
type ConstRepr struct {
	Int       *ConstInt
	Float     *ConstFloat
	Null      *TypeVoid
	None      *TypeVoid
	Extension *TypeVoid
	Undef     *TypeVoid
	Poison    *TypeVoid
	Default   *TypeVoid
	Array     *ConstPack
	Vector    *ConstPack
	Struct    *ConstPack
	Variable  *ConstRef
	Function  *ConstRef
	Alias     *ConstRef
	Interface *ConstRef
	Marker    *TypeVoid
	Expr      *ConstExpr
}

type ConstInt struct {
	// Value is the integer clamped into 64 bits by the exporter.
	Value uint64 `json:"value"`
}

type ConstFloat struct {
	Value string `json:"value"`
}

type ConstPack struct {
	Elements []Constant `json:"elements"`
}

type ConstRef struct {
	Name *string `json:"name"`
}

// ConstExpr wraps a constant expression rendered as an instruction.
type ConstExpr struct {
	Inst json.RawMessage `json:"inst"`
}

func (c *ConstRepr) UnmarshalJSON(data []byte) error {
	key, raw, err := oneKey(data)
	if err != nil {
		return err
	}
	*c = ConstRepr{}
	switch key {
	case "Int":
		c.Int = new(ConstInt)
		return json.Unmarshal(raw, c.Int)
	case "Float":
		c.Float = new(ConstFloat)
		return json.Unmarshal(raw, c.Float)
	case "Null":
		c.Null = &TypeVoid{}
	case "None":
		c.None = &TypeVoid{}
	case "Extension":
		c.Extension = &TypeVoid{}
	case "Undef":
		c.Undef = &TypeVoid{}
	case "PC":
		c.Poison = &TypeVoid{}
	case "Default":
		c.Default = &TypeVoid{}
	case "Array":
		c.Array = new(ConstPack)
		return json.Unmarshal(raw, c.Array)
	case "Vector":
		c.Vector = new(ConstPack)
		return json.Unmarshal(raw, c.Vector)
	case "Struct":
		c.Struct = new(ConstPack)
		return json.Unmarshal(raw, c.Struct)
	case "Variable":
		c.Variable = new(ConstRef)
		return json.Unmarshal(raw, c.Variable)
	case "Function":
		c.Function = new(ConstRef)
		return json.Unmarshal(raw, c.Function)
	case "Alias":
		c.Alias = new(ConstRef)
		return json.Unmarshal(raw, c.Alias)
	case "Interface":
		c.Interface = new(ConstRef)
		return json.Unmarshal(raw, c.Interface)
	case "Marker":
		c.Marker = &TypeVoid{}
	case "Expr":
		c.Expr = new(ConstExpr)
		return json.Unmarshal(raw, c.Expr)
	default:
		return fmt.Errorf("unknown constant variant %q", key)
	}
	return nil
}
