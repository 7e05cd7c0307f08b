package cil

import "fmt"

// AccessModifier is the visibility of a type definition or field.
type AccessModifier uint8

const (
	Public AccessModifier = iota
	Private
	Internal
)

// FieldDef is one field of a TypeDef.
type FieldDef struct {
	Name   string
	Type   Type
	Access AccessModifier
	Static bool
}

// TypeDef is an aggregate type definition owned by an assembly: its fields,
// its own methods, and enough shape information to mangle, compare and
// emit it. Grounded on original_source/src/type/type_def.rs::TypeDef.
type TypeDef struct {
	Name    string
	Fields  []FieldDef
	Methods []*Method
	Access  AccessModifier
	// ValueType marks a struct (copied by value) as opposed to a reference
	// type (class).
	ValueType bool
}

// Equal reports whether def and other have the same name, access, value
// semantics, field list and method list, in order. Used by Join
// (assembly.go) to decide whether two translation units' defs of the "same"
// generated type (same mangled name) actually agree in shape.
func (def TypeDef) Equal(other TypeDef) bool {
	if def.Name != other.Name || def.Access != other.Access || def.ValueType != other.ValueType {
		return false
	}
	if len(def.Fields) != len(other.Fields) {
		return false
	}
	for i := range def.Fields {
		a, b := def.Fields[i], other.Fields[i]
		if a.Name != b.Name || a.Access != b.Access || a.Static != b.Static || !a.Type.Equal(b.Type) {
			return false
		}
	}
	if len(def.Methods) != len(other.Methods) {
		return false
	}
	for i := range def.Methods {
		if !def.Methods[i].Equal(other.Methods[i]) {
			return false
		}
	}
	return true
}

// FieldGetter returns the field descriptor for reading a named field of
// this type, with its name escaped per EscapeFieldName. Supplements the
// generated struct-access convenience the original exposes through
// TypeDef's inherent getter/setter helpers (SPEC_FULL.md §5).
func (def TypeDef) FieldGetter(name string) (FieldDescriptor, error) {
	for _, f := range def.Fields {
		if f.Name == name {
			return FieldDescriptor{
				Parent:    TypeRef{Name: def.Name},
				FieldType: f.Type,
				FieldName: EscapeFieldName(f.Name),
			}, nil
		}
	}
	return FieldDescriptor{}, fmt.Errorf("cil: type %q has no field %q", def.Name, name)
}

// FieldSetter is FieldGetter's counterpart; the returned descriptor is the
// same value, since STField and LDField both key off a FieldDescriptor.
func (def TypeDef) FieldSetter(name string) (FieldDescriptor, error) {
	return def.FieldGetter(name)
}

// arrayTypeName returns the deterministic mangled name of the generated
// fixed-size array struct holding count elements of elem.
func arrayTypeName(elem Type, count uint64) string {
	return "Array_" + mangle(Array(elem, count))
}

// ArrayTypeDef builds the generated struct backing a fixed-size [elem;
// count] array: one value-type field per element, named "f0".."fN-1", plus
// the three runtime-indexed access methods set_Item/get_Address/get_Item.
// Grounded on original_source/src/type/type_def.rs::get_array_type, which
// synthesizes one field per array slot rather than relying on host-runtime
// array support (spec.md §4.3/§4.4, the array factory, S2).
func ArrayTypeDef(elem Type, count uint64) TypeDef {
	name := arrayTypeName(elem, count)
	fields := make([]FieldDef, count)
	for i := range fields {
		fields[i] = FieldDef{Name: fmt.Sprintf("f%d", i), Type: elem, Access: Public}
	}
	return TypeDef{
		Name:      name,
		Fields:    fields,
		Methods:   indexMethods(name, LDFieldAddress(arrayFirstElemField(name, elem)), elem),
		Access:    Public,
		ValueType: true,
	}
}

// arrayFirstElemField returns the descriptor of an array def's first
// element field ("f0"), whose address is the base of the backing storage
// that set_Item/get_Address/get_Item offset by a runtime index.
func arrayFirstElemField(arrName string, elem Type) FieldDescriptor {
	return FieldDescriptor{Parent: TypeRef{Name: arrName}, FieldType: elem, FieldName: "f0"}
}

// indexMethods builds the three index-access methods shared by the array
// and slice factories (spec.md §4.3: "Slice-of-T ... indexers analogous to
// the array's"): set_Item(&mut self, usize, T), get_Address(&self,
// usize)->*T and get_Item(&self, usize)->T. baseOp is the single op that,
// given the receiver's address on the stack (LDArg(0)), leaves the base
// address of the backing storage on the stack (LDFieldAddress(f0) for an
// array, LDField(ptr) for a slice); the index argument is then added to it
// directly, matching
// original_source/src/type/type_def.rs::get_array_type's op sequences
// exactly (the index is a byte offset the caller has already scaled
// through SizeOf, per spec.md §4.3).
func indexMethods(recvName string, baseOp Op, elem Type) []*Method {
	roRecv := Ref(Named(recvName), false)
	rwRecv := Ref(Named(recvName), true)

	setItem := NewMethod(Public, false, NewFnSig([]Type{rwRecv, USize, elem}, Void), "set_Item", nil)
	setItem.Ops = []Op{
		LDArg(0),
		baseOp,
		LDArg(1),
		Add,
		LDArg(2),
		STObj(elem),
		Ret,
	}

	getAddress := NewMethod(Public, false, NewFnSig([]Type{roRecv, USize}, Ptr(elem)), "get_Address", nil)
	getAddress.Ops = []Op{
		LDArg(0),
		baseOp,
		LDArg(1),
		Add,
		Ret,
	}

	getItem := NewMethod(Public, false, NewFnSig([]Type{roRecv, USize}, elem), "get_Item", nil)
	getItem.Ops = []Op{
		LDArg(0),
		baseOp,
		LDArg(1),
		Add,
		LdObj(elem),
		Ret,
	}

	return []*Method{setItem, getAddress, getItem}
}

// sliceTypeName returns the deterministic mangled name of the generated
// fat-pointer struct backing []elem.
func sliceTypeName(elem Type) string {
	return "Slice_" + mangle(Slice(elem))
}

// SliceTypeDef builds the generated struct backing a slice of elem: a
// "ptr" field pointing at the first element and a "len" field counting
// them, plus the same three index-access methods the array factory
// attaches, analogous but reading the "ptr" field's value (already an
// address) rather than taking a field's address (spec.md §4.3,
// "Slice-of-T ... indexers analogous to the array's"). Grounded on
// original_source/src/type/type_def.rs (slice_indexers' enclosing def)
// and spec.md §4.4.
func SliceTypeDef(elem Type) TypeDef {
	name := sliceTypeName(elem)
	ptrField := FieldDescriptor{Parent: TypeRef{Name: name}, FieldType: Ptr(elem), FieldName: "ptr"}
	return TypeDef{
		Name: name,
		Fields: []FieldDef{
			{Name: "ptr", Type: Ptr(elem), Access: Public},
			{Name: "len", Type: USize, Access: Public},
		},
		Methods:   indexMethods(name, LDField(ptrField), elem),
		Access:    Public,
		ValueType: true,
	}
}

// SliceIndexerOps returns the ops that, given the slice's address pushed
// by the caller, load the "ptr" field, then offset it by index elements of
// sizeof(elem), producing the address of the indexed element. This mirrors
// slice_indexers in type_def.rs: no bounds check is emitted here, since the
// frontend IR is expected to have already lowered any bounds check into
// explicit comparisons and branches upstream (spec.md §3, Non-goals).
func SliceIndexerOps(elem Type, indexLocal uint32) []Op {
	fd := FieldDescriptor{
		Parent:    TypeRef{Name: sliceTypeName(elem)},
		FieldType: Ptr(elem),
		FieldName: "ptr",
	}
	return []Op{
		LDField(fd),
		LDLoc(indexLocal),
		SizeOf(elem),
		Mul,
		Add,
	}
}

// tupleTypeName returns the deterministic mangled name of the generated
// struct backing a tuple of elems.
func tupleTypeName(elems []Type) string {
	return "Tuple_" + mangle(Tuple(elems...))
}

// TupleTypeDef builds the generated struct backing a tuple type: one
// value-type field per element, named "item0".."itemN-1". Grounded on
// original_source/src/type/type_def.rs::tuple_typedef.
func TupleTypeDef(elems []Type) TypeDef {
	name := tupleTypeName(elems)
	fields := make([]FieldDef, len(elems))
	for i, e := range elems {
		fields[i] = FieldDef{Name: fmt.Sprintf("item%d", i), Type: e, Access: Public}
	}
	return TypeDef{Name: name, Fields: fields, Access: Public, ValueType: true}
}

// TupleFieldOps returns the op that, given the address of a tuple already
// on the stack, leaves the address of element index (LDFieldAddress); it
// does not load the element's value.
func TupleFieldOps(elems []Type, index int) ([]Op, error) {
	if index < 0 || index >= len(elems) {
		return nil, fmt.Errorf("cil: tuple index %d out of range for %d elements", index, len(elems))
	}
	fd := FieldDescriptor{
		Parent:    TypeRef{Name: tupleTypeName(elems)},
		FieldType: elems[index],
		FieldName: fmt.Sprintf("item%d", index),
	}
	return []Op{LDFieldAddress(fd)}, nil
}

// closureTypeName returns the deterministic mangled name of the generated
// struct backing a closure capturing the given environment field types.
// Grounded on original_source/src/type/type_def.rs::closure_name /
// closure_typedef.
func closureTypeName(env []Type) string {
	return "Closure_" + mangle(Tuple(env...))
}

// ClosureTypeDef builds the generated struct backing a closure: one
// captured-environment field per entry (named "env0".."envN-1"), plus a
// "fnptr" field holding the pointer to the compiled closure body.
func ClosureTypeDef(env []Type, fnPtr Type) TypeDef {
	name := closureTypeName(env)
	fields := make([]FieldDef, 0, len(env)+1)
	for i, e := range env {
		fields = append(fields, FieldDef{Name: fmt.Sprintf("env%d", i), Type: e, Access: Private})
	}
	fields = append(fields, FieldDef{Name: "fnptr", Type: fnPtr, Access: Private})
	return TypeDef{Name: name, Fields: fields, Access: Public, ValueType: true}
}
