package bridge

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// DumpFunctions writes a human-readable representation of translated
// functions, suitable for inspection and golden-file tests.
func DumpFunctions(w io.Writer, typing *TypeRegistry, mod *Module, fns []*Function) error {
	if w == nil {
		return nil
	}
	if mod != nil {
		if _, err := fmt.Fprintf(w, "module %s\n", mod.Name); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "funcs=%d\n", len(fns)); err != nil {
		return err
	}
	for _, f := range fns {
		if f == nil {
			continue
		}
		if err := dumpFunction(w, typing, f); err != nil {
			return err
		}
	}
	return nil
}

func dumpFunction(w io.Writer, typing *TypeRegistry, f *Function) error {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		name := string(p.Name)
		if name == "" {
			name = "_"
		}
		params[i] = fmt.Sprintf("%s: %s", name, typing.String(p.Ty))
	}
	ret := "void"
	if f.HasRet {
		ret = typing.String(f.Ret)
	}
	if _, err := fmt.Fprintf(w, "\nfn %s(%s) -> %s", f.Name, strings.Join(params, ", "), ret); err != nil {
		return err
	}
	if f.Body == nil {
		_, err := fmt.Fprintf(w, " [declared]\n")
		return err
	}
	if _, err := fmt.Fprintf(w, ":\n"); err != nil {
		return err
	}
	for i := range f.Body.Blocks {
		bb := &f.Body.Blocks[i]
		if _, err := fmt.Fprintf(w, "  bb%d:\n", bb.Label); err != nil {
			return err
		}
		for j := range bb.Body {
			if _, err := fmt.Fprintf(w, "    %s\n", formatInstr(typing, &bb.Body[j])); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "    %s\n", formatTerm(typing, &bb.Term)); err != nil {
			return err
		}
	}
	return nil
}

func formatValue(typing *TypeRegistry, v Value) string {
	switch v.Kind {
	case ValueConstant:
		return formatConst(typing, v.Const)
	case ValueArgument:
		return fmt.Sprintf("arg%d: %s", v.Index, typing.String(v.Ty))
	case ValueRegister:
		return fmt.Sprintf("r%d: %s", v.Index, typing.String(v.Ty))
	default:
		return "<invalid>"
	}
}

func formatConst(typing *TypeRegistry, c Constant) string {
	switch c.Kind {
	case ConstBitvec:
		return fmt.Sprintf("%d: bv%d", c.Value, c.Bits)
	case ConstNullPointer:
		return "null"
	case ConstUndefBitvec:
		return fmt.Sprintf("undef: bv%d", c.Bits)
	case ConstUndefPointer:
		return "undef: ptr"
	case ConstArray, ConstStruct:
		parts := make([]string, len(c.Elems))
		for i, e := range c.Elems {
			parts[i] = formatConst(typing, e)
		}
		lb, rb := "[", "]"
		if c.Kind == ConstStruct {
			lb, rb = "{", "}"
		}
		return lb + strings.Join(parts, ", ") + rb
	case ConstFunction:
		return fmt.Sprintf("@%s", c.Name)
	case ConstGlobal:
		return fmt.Sprintf("@%s", c.Name)
	default:
		return "<invalid>"
	}
}

func formatInstr(typing *TypeRegistry, in *Instr) string {
	switch in.Kind {
	case InstrAlloca:
		a := &in.Alloca
		if a.HasSize {
			return fmt.Sprintf("r%d = alloca %s size=%s", a.Result, typing.String(a.Base), formatValue(typing, a.Size))
		}
		return fmt.Sprintf("r%d = alloca %s", a.Result, typing.String(a.Base))
	case InstrLoad:
		l := &in.Load
		return fmt.Sprintf("r%d = load %s from %s", l.Result, typing.String(l.Pointee), formatValue(typing, l.Pointer))
	case InstrStore:
		s := &in.Store
		return fmt.Sprintf("store %s to %s", formatValue(typing, s.Value), formatValue(typing, s.Pointer))
	case InstrCallDirect:
		c := &in.CallDirect
		return formatCall(typing, fmt.Sprintf("@%s", c.Function), c.Args, c.HasResult, c.Result)
	case InstrCallIndirect:
		c := &in.CallIndirect
		return formatCall(typing, formatValue(typing, c.Callee), c.Args, c.HasResult, c.Result)
	case InstrBinary:
		b := &in.Binary
		return fmt.Sprintf("r%d = %s.bv%d %s, %s", b.Result, b.Op, b.Bits, formatValue(typing, b.Lhs), formatValue(typing, b.Rhs))
	case InstrCompare:
		c := &in.Compare
		on := fmt.Sprintf("bv%d", c.Bits)
		if c.OnPointer {
			on = "ptr"
		}
		return fmt.Sprintf("r%d = cmp.%s.%s %s, %s", c.Result, c.Pred, on, formatValue(typing, c.Lhs), formatValue(typing, c.Rhs))
	case InstrCastBitvec:
		c := &in.CastBitvec
		return fmt.Sprintf("r%d = cast bv%d -> bv%d %s", c.Result, c.FromBits, c.IntoBits, formatValue(typing, c.Operand))
	case InstrCastPtrToBitvec:
		c := &in.CastPtrToBitvec
		return fmt.Sprintf("r%d = cast ptr -> bv%d %s", c.Result, c.IntoBits, formatValue(typing, c.Operand))
	case InstrCastBitvecToPtr:
		c := &in.CastBitvecToPtr
		return fmt.Sprintf("r%d = cast bv%d -> ptr %s", c.Result, c.FromBits, formatValue(typing, c.Operand))
	case InstrCastPtr:
		c := &in.CastPtr
		return fmt.Sprintf("r%d = cast ptr -> ptr %s", c.Result, formatValue(typing, c.Operand))
	case InstrFreezePtr:
		return "freeze ptr"
	case InstrFreezeBitvec:
		return fmt.Sprintf("freeze bv%d", in.FreezeBitvec.Bits)
	case InstrFreezeNop:
		return fmt.Sprintf("freeze nop %s", formatValue(typing, in.FreezeNop.Value))
	case InstrGEP:
		g := &in.GEP
		parts := make([]string, len(g.Indices))
		for i, idx := range g.Indices {
			parts[i] = formatValue(typing, idx)
		}
		return fmt.Sprintf("r%d = gep %s +%s [%s] -> %s", g.Result,
			formatValue(typing, g.Pointer), formatValue(typing, g.Offset),
			strings.Join(parts, ", "), typing.String(g.DstPointee))
	case InstrITE:
		i := &in.ITE
		return fmt.Sprintf("r%d = ite %s ? %s : %s", i.Result,
			formatValue(typing, i.Cond), formatValue(typing, i.Then), formatValue(typing, i.Else))
	case InstrPhi:
		p := &in.Phi
		labels := make([]int, 0, len(p.Options))
		for l := range p.Options {
			labels = append(labels, l)
		}
		sort.Ints(labels)
		parts := make([]string, len(labels))
		for i, l := range labels {
			parts[i] = fmt.Sprintf("bb%d: %s", l, formatValue(typing, p.Options[l]))
		}
		return fmt.Sprintf("r%d = phi %s {%s}", p.Result, typing.String(p.Ty), strings.Join(parts, ", "))
	case InstrGetValue:
		g := &in.GetValue
		return fmt.Sprintf("r%d = getvalue %s %v -> %s", g.Result,
			formatValue(typing, g.Aggregate), g.Indices, typing.String(g.Dst))
	case InstrSetValue:
		s := &in.SetValue
		return fmt.Sprintf("r%d = setvalue %s %v <- %s", s.Result,
			formatValue(typing, s.Aggregate), s.Indices, formatValue(typing, s.Value))
	default:
		return "<invalid>"
	}
}

func formatCall(typing *TypeRegistry, callee string, args []Value, hasResult bool, result int) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = formatValue(typing, a)
	}
	call := fmt.Sprintf("call %s(%s)", callee, strings.Join(parts, ", "))
	if hasResult {
		return fmt.Sprintf("r%d = %s", result, call)
	}
	return call
}

func formatTerm(typing *TypeRegistry, t *Terminator) string {
	switch t.Kind {
	case TermReturn:
		if t.Return.HasValue {
			return fmt.Sprintf("return %s", formatValue(typing, t.Return.Value))
		}
		return "return"
	case TermGoto:
		return fmt.Sprintf("goto bb%d", t.Goto.Target)
	case TermBranch:
		b := &t.Branch
		return fmt.Sprintf("branch %s ? bb%d : bb%d", formatValue(typing, b.Cond), b.Then, b.Else)
	case TermSwitch:
		s := &t.Switch
		labels := make([]uint64, 0, len(s.Cases))
		for v := range s.Cases {
			labels = append(labels, v)
		}
		sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
		parts := make([]string, len(labels))
		for i, v := range labels {
			parts[i] = fmt.Sprintf("%d: bb%d", v, s.Cases[v])
		}
		out := fmt.Sprintf("switch %s {%s}", formatValue(typing, s.Cond), strings.Join(parts, ", "))
		if s.HasDefault {
			out += fmt.Sprintf(" default bb%d", s.Default)
		}
		return out
	case TermUnreachable:
		return "unreachable"
	default:
		return "<invalid>"
	}
}
