package adapter

import (
	"encoding/json"
	"testing"

	"girder/internal/fault"
)

func TestDecode_Module(t *testing.T) {
	src := `{
		"name": "demo.c",
		"asm": "",
		"structs": [
			{"Struct": {"name": "pair", "fields": [{"Int": {"width": 32}}, {"Int": {"width": 64}}]}}
		],
		"globals": [
			{"name": "counter", "ty": {"Int": {"width": 64}}}
		],
		"functions": [{
			"name": "main",
			"ty": {"Function": {"params": [], "variadic": false, "ret": {"Int": {"width": 32}}}},
			"is_defined": true,
			"is_exact": true,
			"is_intrinsic": false,
			"params": [],
			"blocks": [{
				"label": 0,
				"instructions": [{
					"ty": {"Void": null},
					"index": 0,
					"repr": {"Return": {"value": {"Constant": {
						"ty": {"Int": {"width": 32}},
						"repr": {"Int": {"value": 0}}
					}}}}
				}]
			}]
		}]
	}`
	m, err := Decode([]byte(src))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if m.Name != "demo.c" {
		t.Errorf("module name = %q", m.Name)
	}
	if len(m.Structs) != 1 || m.Structs[0].Struct == nil {
		t.Fatalf("struct declaration not decoded")
	}
	if got := *m.Structs[0].Struct.Name; got != "pair" {
		t.Errorf("struct name = %q", got)
	}
	if len(m.Functions) != 1 {
		t.Fatalf("functions = %d", len(m.Functions))
	}
	fn := m.Functions[0]
	if !fn.IsDefined || !fn.IsExact || fn.IsIntrinsic {
		t.Errorf("function flags = %v/%v/%v", fn.IsDefined, fn.IsExact, fn.IsIntrinsic)
	}
	term := fn.Blocks[0].Instructions[0]
	if !term.Ty.IsVoid() {
		t.Error("terminator should carry void type")
	}
	ret := term.Repr.Return
	if ret == nil || ret.Value == nil || ret.Value.Constant == nil {
		t.Fatal("return payload not decoded")
	}
	if ret.Value.Constant.Repr.Int.Value != 0 {
		t.Error("return constant value mismatch")
	}
}

func TestDecode_Rejections(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"not json", `{"name":`},
		{"unknown type variant", `{"structs": [{"Quaternion": null}]}`},
		{"two-key enum object", `{"functions": [{"ty": {"Void": null, "Int": {"width": 1}}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.src))
			if err == nil {
				t.Fatal("Decode() should fail")
			}
			if kind, ok := fault.KindOf(err); !ok || kind != fault.KindLoading {
				t.Errorf("error kind = %v, want loading", kind)
			}
		})
	}
}

func TestInst_UnmarshalPresenceOnly(t *testing.T) {
	// payload-free and rejected variants decode presence-only, with either
	// null or an object payload
	tests := []struct {
		src   string
		check func(i *Inst) bool
	}{
		{`{"Unreachable": null}`, func(i *Inst) bool { return i.Unreachable != nil }},
		{`{"Fence": {"ordering": "seq_cst", "scope": "system"}}`, func(i *Inst) bool { return i.Fence != nil }},
		{`{"AtomicRMW": {"ordering": "monotonic"}}`, func(i *Inst) bool { return i.AtomicRMW != nil }},
		{`{"LandingPad": null}`, func(i *Inst) bool { return i.LandingPad != nil }},
		{`{"IndirectJump": null}`, func(i *Inst) bool { return i.IndirectJump != nil }},
	}
	for _, tt := range tests {
		var inst Inst
		if err := json.Unmarshal([]byte(tt.src), &inst); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.src, err)
		}
		if !tt.check(&inst) {
			t.Errorf("variant not set for %s", tt.src)
		}
	}
}

func TestValue_Type(t *testing.T) {
	src := `{"Argument": {"ty": {"Pointer": null}, "index": 2}}`
	var v Value
	if err := json.Unmarshal([]byte(src), &v); err != nil {
		t.Fatal(err)
	}
	ty := v.Type()
	if ty == nil || ty.Pointer == nil {
		t.Fatal("declared type not surfaced")
	}
	if v.Argument.Index != 2 {
		t.Errorf("index = %d", v.Argument.Index)
	}
}

func TestConstRepr_Variants(t *testing.T) {
	tests := []struct {
		src   string
		check func(c *ConstRepr) bool
	}{
		{`{"Int": {"value": 42}}`, func(c *ConstRepr) bool { return c.Int != nil && c.Int.Value == 42 }},
		{`{"Null": null}`, func(c *ConstRepr) bool { return c.Null != nil }},
		{`{"Undef": null}`, func(c *ConstRepr) bool { return c.Undef != nil }},
		{`{"PC": null}`, func(c *ConstRepr) bool { return c.Poison != nil }},
		{`{"Function": {"name": "memcpy"}}`, func(c *ConstRepr) bool { return c.Function != nil && *c.Function.Name == "memcpy" }},
		{`{"Array": {"elements": []}}`, func(c *ConstRepr) bool { return c.Array != nil }},
	}
	for _, tt := range tests {
		var c ConstRepr
		if err := json.Unmarshal([]byte(tt.src), &c); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.src, err)
		}
		if !tt.check(&c) {
			t.Errorf("variant not decoded for %s", tt.src)
		}
	}
}
