package adapter

import (
	"encoding/json"
	"fmt"
)

// Type mirrors the exporter's type vocabulary. Exactly one variant pointer is
// set on a decoded value.
type Type struct {
	Void     *TypeVoid
	Int      *TypeInt
	Float    *TypeFloat
	Array    *TypeArray
	Struct   *TypeStruct
	Function *TypeFunction
	Pointer  *TypePointer
	Vector   *TypeVector
	Label    *TypeVoid
	Token    *TypeVoid
	Metadata *TypeVoid
	Other    *TypeOther
}

// TypeVoid is the payload of variants that carry no data.
type TypeVoid struct{}

type TypeInt struct {
	Width uint32 `json:"width"`
}

type TypeFloat struct {
	Width uint32 `json:"width"`
	Name  string `json:"name"`
}

type TypeArray struct {
	Element Type   `json:"element"`
	Length  uint64 `json:"length"`
}

type TypeStruct struct {
	// Name is absent for literal (anonymous) struct types.
	Name *string `json:"name"`
	// Fields is absent for opaque struct references.
	Fields *[]Type `json:"fields"`
}

type TypeFunction struct {
	Params   []Type `json:"params"`
	Variadic bool   `json:"variadic"`
	Ret      Type   `json:"ret"`
}

type TypePointer struct {
	// Pointee is present only for legacy typed pointers, which the bridge
	// rejects.
	Pointee *Type `json:"pointee"`
}

type TypeVector struct {
	Element Type   `json:"element"`
	Fixed   bool   `json:"fixed"`
	Length  uint64 `json:"length"`
}

type TypeOther struct {
	Name string `json:"name"`
}

func (t *Type) UnmarshalJSON(data []byte) error {
	key, raw, err := oneKey(data)
	if err != nil {
		return err
	}
	*t = Type{}
	switch key {
	case "Void":
		t.Void = &TypeVoid{}
	case "Int":
		t.Int = new(TypeInt)
		return json.Unmarshal(raw, t.Int)
	case "Float":
		t.Float = new(TypeFloat)
		return json.Unmarshal(raw, t.Float)
	case "Array":
		t.Array = new(TypeArray)
		return json.Unmarshal(raw, t.Array)
	case "Struct":
		t.Struct = new(TypeStruct)
		return json.Unmarshal(raw, t.Struct)
	case "Function":
		t.Function = new(TypeFunction)
		return json.Unmarshal(raw, t.Function)
	case "Pointer":
		t.Pointer = new(TypePointer)
		if len(raw) > 0 && string(raw) != "null" {
			return json.Unmarshal(raw, t.Pointer)
		}
	case "Vector":
		t.Vector = new(TypeVector)
		return json.Unmarshal(raw, t.Vector)
	case "Label":
		t.Label = &TypeVoid{}
	case "Token":
		t.Token = &TypeVoid{}
	case "Metadata":
		t.Metadata = &TypeVoid{}
	case "Other":
		t.Other = new(TypeOther)
		return json.Unmarshal(raw, t.Other)
	default:
		return fmt.Errorf("unknown type variant %q", key)
	}
	return nil
}

// IsVoid reports whether the type is the void type.
func (t *Type) IsVoid() bool {
	return t != nil && t.Void != nil
}

// IntWidth returns the bit width when the type is an integer type.
func (t *Type) IntWidth() (uint32, bool) {
	if t != nil && t.Int != nil {
		return t.Int.Width, true
	}
	return 0, false
}
