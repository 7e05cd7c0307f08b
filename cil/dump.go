package cil

import (
	"fmt"
	"strings"
)

// Dump renders asm as a read-only textual listing of its statics, types
// and methods, in deterministic order. It is meant for the dump CLI
// subcommand and for tests, not for round-tripping: use Encode/Decode for
// that (spec.md's downstream-contract note that textual assembly dumps are
// a debugging aid, not the wire format).
func Dump(asm *Assembly) string {
	var b strings.Builder
	fmt.Fprintf(&b, ".assembly %s\n", asm.Name)

	for _, s := range asm.Statics() {
		fmt.Fprintf(&b, ".static %s %s\n", s.Type, s.Name)
	}

	for _, t := range asm.Types() {
		dumpType(&b, t)
	}

	for _, m := range asm.Methods() {
		dumpMethod(&b, m)
	}
	return b.String()
}

func dumpType(b *strings.Builder, t TypeDef) {
	kind := "class"
	if t.ValueType {
		kind = "struct"
	}
	fmt.Fprintf(b, ".%s %s {\n", kind, t.Name)
	for _, f := range t.Fields {
		static := ""
		if f.Static {
			static = "static "
		}
		fmt.Fprintf(b, "\t.field %s%s %s\n", static, f.Type, f.Name)
	}
	for _, m := range t.Methods {
		dumpNestedMethod(b, m)
	}
	b.WriteString("}\n")
}

// dumpNestedMethod renders m the same way dumpMethod does for an
// assembly-level method, indented one level to show it belongs to the
// enclosing type (the array/slice factories' set_Item/get_Address/
// get_Item, spec.md §4.3).
func dumpNestedMethod(b *strings.Builder, m *Method) {
	var inner strings.Builder
	dumpMethod(&inner, m)
	for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
		b.WriteString("\t" + line + "\n")
	}
}

func dumpMethod(b *strings.Builder, m *Method) {
	static := ""
	if m.IsStatic {
		static = "static "
	}
	entry := ""
	if m.IsEntrypoint() {
		entry = " .entrypoint"
	}
	fmt.Fprintf(b, ".method %s%s%s %s\n", static, m.Name, entry, m.Sig)
	for i, l := range m.Locals {
		fmt.Fprintf(b, "\t.locals [%d] %s\n", i, l.Type)
	}
	for _, op := range m.Ops {
		fmt.Fprintf(b, "\t%s\n", dumpOp(op))
	}
	b.WriteString("\n")
}

func dumpOp(op Op) string {
	switch op.Kind {
	case OLabel:
		return fmt.Sprintf("L%d:", op.Target)
	case OGoto, OBEq, OBNe, OBLt, OBGe, OBLe, OBZero, OBTrue:
		return fmt.Sprintf("%s L%d", opKindName(op.Kind), op.Target)
	case OCall, OCallVirt, ONewObj:
		return fmt.Sprintf("%s %s", opKindName(op.Kind), op.Site.Name)
	case OLDLoc, OSTLoc, OLDLocA:
		return fmt.Sprintf("%s %d", opKindName(op.Kind), op.Index)
	case OLDArg, OSTArg, OLDArgA:
		return fmt.Sprintf("%s %d", opKindName(op.Kind), op.Index)
	case OLdcI32:
		return fmt.Sprintf("ldc.i32 %d", op.I32)
	case OLdcI64:
		return fmt.Sprintf("ldc.i64 %d", op.I64)
	case OLdcF32:
		return fmt.Sprintf("ldc.f32 %v", op.F32)
	case OLdcF64:
		return fmt.Sprintf("ldc.f64 %v", op.F64)
	case OLdStr:
		return fmt.Sprintf("ldstr %q", op.Str)
	case OComment:
		return fmt.Sprintf("// %s", op.Str)
	case OSizeOf:
		return fmt.Sprintf("sizeof %s", op.Type)
	case OLDField, OLDFieldAddress, OSTField:
		return fmt.Sprintf("%s %s::%s", opKindName(op.Kind), op.Field.Parent, op.Field.FieldName)
	case OLDStaticField, OSTStaticField:
		return fmt.Sprintf("%s %s", opKindName(op.Kind), op.Static.FieldName)
	default:
		return opKindName(op.Kind)
	}
}

var opKindNames = map[OpKind]string{
	OLabel: "label", OGoto: "goto", OBEq: "beq", OBNe: "bne", OBLt: "blt",
	OBGe: "bge", OBLe: "ble", OBZero: "bzero", OBTrue: "btrue",
	OCall: "call", OCallVirt: "callvirt", ONewObj: "newobj",
	ORet: "ret", OThrow: "throw", ORethrow: "rethrow",
	OLDLoc: "ldloc", OSTLoc: "stloc", OLDLocA: "ldloca",
	OLDArg: "ldarg", OSTArg: "starg", OLDArgA: "ldarga",
	OLDField: "ldfld", OLDFieldAddress: "ldflda", OSTField: "stfld",
	OLDStaticField: "ldsfld", OSTStaticField: "stsfld",
	ODup: "dup", OPop: "pop", ONop: "nop", OLocAlloc: "localloc",
	OAdd: "add", OSub: "sub", OMul: "mul", ODiv: "div", ORem: "rem",
}

func opKindName(k OpKind) string {
	if s, ok := opKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", k)
}
