package bridge

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"girder/internal/adapter"
	"girder/internal/fault"
)

// TypeID uniquely identifies a type inside the registry. Because the
// registry interns by structural key, TypeID equality is structural type
// equality.
type TypeID uint32

// NoTypeID marks the absence of a type (void in return/result positions).
const NoTypeID TypeID = 0

// TypeKind enumerates the bridge type vocabulary.
type TypeKind uint8

const (
	KindInvalid TypeKind = iota
	// KindBitvec is a fixed-width bitvector (LLVM integer).
	KindBitvec
	// KindPointer is the untyped (opaque) pointer.
	KindPointer
	KindArray
	KindStruct
	KindFunction
)

func (k TypeKind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindBitvec:
		return "bitvec"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	case KindFunction:
		return "function"
	default:
		return fmt.Sprintf("TypeKind(%d)", k)
	}
}

// Type is a compact descriptor for any bridge type.
type Type struct {
	Kind TypeKind

	Bits   uint32 // bitvec width
	Elem   TypeID // array element
	Length uint64 // array length

	Name   Identifier // struct name; empty for literal structs
	Fields []TypeID   // struct fields

	Params []TypeID // function parameters
	Ret    TypeID   // function return; NoTypeID means void
}

// TypeRegistry converts adapter types into interned bridge types. It is
// built once per module, seeded with the module's named struct
// declarations, and is confined to that module's (single-threaded)
// translation.
type TypeRegistry struct {
	types []Type
	index map[string]TypeID
	named map[Identifier]TypeID

	ptr  TypeID
	bool1 TypeID
	bv32 TypeID
	bv64 TypeID
}

// NewTypeRegistry builds a registry from the module's named struct
// declarations. Named structs resolve by name-identity afterwards, so
// self-referential layouts (which in LLVM always recurse through an opaque
// pointer) never re-expand.
func NewTypeRegistry(decls []adapter.Type) (*TypeRegistry, error) {
	reg := &TypeRegistry{
		index: make(map[string]TypeID, 64),
		named: make(map[Identifier]TypeID, len(decls)),
	}
	reg.types = append(reg.types, Type{}) // reserve 0 as the void/absent sentinel
	reg.ptr = reg.intern(Type{Kind: KindPointer})
	reg.bool1 = reg.intern(Type{Kind: KindBitvec, Bits: 1})
	reg.bv32 = reg.intern(Type{Kind: KindBitvec, Bits: 32})
	reg.bv64 = reg.intern(Type{Kind: KindBitvec, Bits: 64})

	pending := make(map[Identifier]*adapter.TypeStruct, len(decls))
	order := make([]Identifier, 0, len(decls))
	for i := range decls {
		st := decls[i].Struct
		if st == nil {
			return nil, fault.InvalidAssumption("non-struct entry in module type declarations")
		}
		if st.Name == nil {
			return nil, fault.InvalidAssumption("unnamed struct in module type declarations")
		}
		if st.Fields == nil {
			return nil, fault.InvalidAssumption("opaque struct declaration: %s", *st.Name)
		}
		ident := Identifier(*st.Name)
		if _, dup := pending[ident]; dup {
			return nil, fault.InvalidAssumption("duplicate struct declaration: %s", ident)
		}
		pending[ident] = st
		order = append(order, ident)
	}

	resolving := make(map[Identifier]bool, len(pending))
	for _, name := range order {
		if _, err := reg.resolveNamed(name, pending, resolving); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// resolveNamed memoizes struct resolution by name. A by-value cycle cannot
// occur in well-formed LLVM (recursion goes through pointers, which are
// opaque here), so one is a broken input.
func (r *TypeRegistry) resolveNamed(
	name Identifier,
	pending map[Identifier]*adapter.TypeStruct,
	resolving map[Identifier]bool,
) (TypeID, error) {
	if id, ok := r.named[name]; ok {
		return id, nil
	}
	decl, ok := pending[name]
	if !ok {
		return NoTypeID, fault.InvalidAssumption("unknown struct type: %s", name)
	}
	if resolving[name] {
		return NoTypeID, fault.InvalidAssumption("by-value recursion in struct type: %s", name)
	}
	resolving[name] = true
	fields := make([]TypeID, 0, len(*decl.Fields))
	for i := range *decl.Fields {
		ft := &(*decl.Fields)[i]
		var (
			id  TypeID
			err error
		)
		if st := ft.Struct; st != nil && st.Name != nil {
			id, err = r.resolveNamed(Identifier(*st.Name), pending, resolving)
		} else {
			id, err = r.Convert(ft)
		}
		if err != nil {
			return NoTypeID, err
		}
		fields = append(fields, id)
	}
	resolving[name] = false
	id := r.intern(Type{Kind: KindStruct, Name: name, Fields: fields})
	r.named[name] = id
	return id, nil
}

// Convert translates an adapter type into an interned bridge type. Type
// shapes outside the supported subset are rejected with the taxonomy's
// precise reason.
func (r *TypeRegistry) Convert(t *adapter.Type) (TypeID, error) {
	switch {
	case t.Void != nil:
		return NoTypeID, fault.InvalidAssumption("unexpected void type in a data position")
	case t.Int != nil:
		return r.intern(Type{Kind: KindBitvec, Bits: t.Int.Width}), nil
	case t.Float != nil:
		return NoTypeID, fault.NotSupportedYet(fault.UnsupportedFloatingPoint)
	case t.Pointer != nil:
		if t.Pointer.Pointee != nil {
			return NoTypeID, fault.NotSupportedYet(fault.UnsupportedTypedPointer)
		}
		return r.ptr, nil
	case t.Array != nil:
		elem, err := r.Convert(&t.Array.Element)
		if err != nil {
			return NoTypeID, err
		}
		return r.intern(Type{Kind: KindArray, Elem: elem, Length: t.Array.Length}), nil
	case t.Struct != nil:
		if t.Struct.Name != nil {
			id, ok := r.named[Identifier(*t.Struct.Name)]
			if !ok {
				return NoTypeID, fault.InvalidAssumption("unknown struct type: %s", *t.Struct.Name)
			}
			return id, nil
		}
		if t.Struct.Fields == nil {
			return NoTypeID, fault.InvalidAssumption("opaque literal struct type")
		}
		fields := make([]TypeID, 0, len(*t.Struct.Fields))
		for i := range *t.Struct.Fields {
			id, err := r.Convert(&(*t.Struct.Fields)[i])
			if err != nil {
				return NoTypeID, err
			}
			fields = append(fields, id)
		}
		return r.intern(Type{Kind: KindStruct, Fields: fields}), nil
	case t.Function != nil:
		if t.Function.Variadic {
			return NoTypeID, fault.NotSupportedYet(fault.UnsupportedVariadicArguments)
		}
		params := make([]TypeID, 0, len(t.Function.Params))
		for i := range t.Function.Params {
			id, err := r.Convert(&t.Function.Params[i])
			if err != nil {
				return NoTypeID, err
			}
			params = append(params, id)
		}
		ret := NoTypeID
		if !t.Function.Ret.IsVoid() {
			id, err := r.Convert(&t.Function.Ret)
			if err != nil {
				return NoTypeID, err
			}
			ret = id
		}
		return r.intern(Type{Kind: KindFunction, Params: params, Ret: ret}), nil
	case t.Vector != nil:
		if !t.Vector.Fixed {
			return NoTypeID, fault.NotSupportedYet(fault.UnsupportedScalableVector)
		}
		if t.Vector.Element.Pointer != nil {
			return NoTypeID, fault.NotSupportedYet(fault.UnsupportedVectorOfPointers)
		}
		return NoTypeID, fault.NotSupportedYet(fault.UnsupportedVectorization)
	case t.Label != nil:
		return NoTypeID, fault.InvalidAssumption("label type in a data position")
	case t.Token != nil:
		return NoTypeID, fault.InvalidAssumption("token type in a data position")
	case t.Metadata != nil:
		return NoTypeID, fault.NotSupportedYet(fault.UnsupportedMetadataSystem)
	case t.Other != nil:
		return NoTypeID, fault.NotSupportedYet(fault.UnsupportedArchSpecificExtension)
	default:
		return NoTypeID, fault.InvariantViolation("adapter type with no variant set")
	}
}

func (r *TypeRegistry) intern(t Type) TypeID {
	key := typeKey(&t)
	if id, ok := r.index[key]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(r.types))
	if err != nil {
		panic(fmt.Errorf("type registry overflow: %w", err))
	}
	id := TypeID(n)
	r.types = append(r.types, t)
	r.index[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (r *TypeRegistry) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(r.types) {
		return Type{}, false
	}
	return r.types[id], true
}

// MustLookup panics on an invalid TypeID. Valid IDs can only come from this
// registry, so a miss is a translator bug.
func (r *TypeRegistry) MustLookup(id TypeID) Type {
	t, ok := r.Lookup(id)
	if !ok {
		panic("bridge: invalid TypeID")
	}
	return t
}

// Pointer returns the interned opaque pointer type.
func (r *TypeRegistry) Pointer() TypeID { return r.ptr }

// Bool returns the interned 1-bit bitvector.
func (r *TypeRegistry) Bool() TypeID { return r.bool1 }

// Bv32 returns the interned 32-bit bitvector.
func (r *TypeRegistry) Bv32() TypeID { return r.bv32 }

// Bv64 returns the interned 64-bit bitvector.
func (r *TypeRegistry) Bv64() TypeID { return r.bv64 }

// Bitvec returns the interned bitvector of the given width.
func (r *TypeRegistry) Bitvec(bits uint32) TypeID {
	return r.intern(Type{Kind: KindBitvec, Bits: bits})
}

// String renders a type for diagnostics and dumps.
func (r *TypeRegistry) String(id TypeID) string {
	if id == NoTypeID {
		return "void"
	}
	t, ok := r.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch t.Kind {
	case KindBitvec:
		return "bv" + strconv.FormatUint(uint64(t.Bits), 10)
	case KindPointer:
		return "ptr"
	case KindArray:
		return fmt.Sprintf("[%d x %s]", t.Length, r.String(t.Elem))
	case KindStruct:
		if t.Name != "" {
			return "%" + string(t.Name)
		}
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = r.String(f)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindFunction:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = r.String(p)
		}
		return fmt.Sprintf("fn(%s) -> %s", strings.Join(parts, ", "), r.String(t.Ret))
	default:
		return "<invalid>"
	}
}

// typeKey builds the canonical interning key. Struct names participate in
// the key, so equally named, equally shaped structs share one TypeID while
// distinct names stay distinct. The name is length-prefixed: LLVM struct
// names may contain any byte (C++ template names carry commas and digits),
// so a bare concatenation would let two different structs collide.
func typeKey(t *Type) string {
	var b strings.Builder
	b.WriteByte(byte('0' + t.Kind))
	switch t.Kind {
	case KindBitvec:
		b.WriteString(strconv.FormatUint(uint64(t.Bits), 10))
	case KindArray:
		b.WriteString(strconv.FormatUint(uint64(t.Elem), 10))
		b.WriteByte('x')
		b.WriteString(strconv.FormatUint(t.Length, 10))
	case KindStruct:
		b.WriteString(strconv.Itoa(len(t.Name)))
		b.WriteByte(':')
		b.WriteString(string(t.Name))
		for _, f := range t.Fields {
			b.WriteByte(',')
			b.WriteString(strconv.FormatUint(uint64(f), 10))
		}
	case KindFunction:
		for _, p := range t.Params {
			b.WriteString(strconv.FormatUint(uint64(p), 10))
			b.WriteByte(',')
		}
		b.WriteByte('>')
		b.WriteString(strconv.FormatUint(uint64(t.Ret), 10))
	}
	return b.String()
}
