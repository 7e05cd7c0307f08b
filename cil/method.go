package cil

import "fmt"

// Attribute is a method-level marker. Currently the only attribute is
// EntryPoint, flagging the assembly's entry method (SPEC_FULL.md §5).
type Attribute uint8

const (
	EntryPoint Attribute = iota
)

// LocalDef is a method local: an optional debug name and its type.
type LocalDef struct {
	Name string // empty if unnamed
	Type Type
}

// Method is a single CIL method: its signature, locals, op stream and
// attributes. Grounded on original_source/src/method.rs::Method.
type Method struct {
	Access     AccessModifier
	IsStatic   bool
	Sig        FnSig
	Name       string
	Locals     []LocalDef
	Ops        []Op
	Attributes []Attribute
}

// NewMethod returns an empty method ready to have ops appended to it.
func NewMethod(access AccessModifier, isStatic bool, sig FnSig, name string, locals []LocalDef) *Method {
	cp := make([]LocalDef, len(locals))
	copy(cp, locals)
	return &Method{
		Access:   access,
		IsStatic: isStatic,
		Sig:      sig,
		Name:     name,
		Locals:   cp,
	}
}

// Equal reports whether m and other are structurally identical: same
// signature, locals, op stream and attributes. Used by TypeDef.Equal to
// compare the generated index methods (S2) two translation units attach
// to the "same" array/slice/tuple/closure def.
func (m *Method) Equal(other *Method) bool {
	if m.Access != other.Access || m.IsStatic != other.IsStatic || m.Name != other.Name {
		return false
	}
	if !m.Sig.Equal(other.Sig) {
		return false
	}
	if len(m.Locals) != len(other.Locals) {
		return false
	}
	for i := range m.Locals {
		if m.Locals[i].Name != other.Locals[i].Name || !m.Locals[i].Type.Equal(other.Locals[i].Type) {
			return false
		}
	}
	if len(m.Ops) != len(other.Ops) {
		return false
	}
	for i := range m.Ops {
		if !m.Ops[i].Equal(other.Ops[i]) {
			return false
		}
	}
	if len(m.Attributes) != len(other.Attributes) {
		return false
	}
	for i := range m.Attributes {
		if m.Attributes[i] != other.Attributes[i] {
			return false
		}
	}
	return true
}

// EnsureValid appends a trailing Ret if the method's op stream does not
// already end with one, so every method is well-formed before emission.
func (m *Method) EnsureValid() {
	if len(m.Ops) > 0 && m.Ops[len(m.Ops)-1].Kind == ORet {
		return
	}
	m.Ops = append(m.Ops, Ret)
}

// AddLocal appends an unnamed local of type t and returns its index.
func (m *Method) AddLocal(t Type) uint32 {
	m.Locals = append(m.Locals, LocalDef{Type: t})
	return uint32(len(m.Locals) - 1)
}

// AddAttribute appends attr to m's attribute list.
func (m *Method) AddAttribute(attr Attribute) {
	m.Attributes = append(m.Attributes, attr)
}

// IsEntrypoint reports whether m carries the EntryPoint attribute.
func (m *Method) IsEntrypoint() bool {
	for _, a := range m.Attributes {
		if a == EntryPoint {
			return true
		}
	}
	return false
}

// ExplicitInputs returns the inputs a caller actually writes at the call
// site: for an instance method, this drops the leading receiver type that
// Sig.Inputs carries implicitly.
func (m *Method) ExplicitInputs() []Type {
	if m.IsStatic {
		return m.Sig.Inputs
	}
	if len(m.Sig.Inputs) == 0 {
		return nil
	}
	return m.Sig.Inputs[1:]
}

// CallSite returns the CallSite a caller in the same assembly would use to
// invoke m as a free static function.
func (m *Method) CallSite() CallSite {
	return CallSite{Name: m.Name, Sig: m.Sig, Static: true}
}

// Calls returns every CallSite referenced by m's op stream, in order, with
// repeats (one entry per call instruction, not deduplicated).
func (m *Method) Calls() []CallSite {
	var out []CallSite
	for _, op := range m.Ops {
		if site, ok := op.CallSiteOf(); ok {
			out = append(out, *site)
		}
	}
	return out
}

// AllocateTemporaries rewrites the synthetic TMP-local ops (NewTMPLocal,
// FreeTMPLocal, LoadTMPLocal, LoadUnderTMPLocal, LoadAdressUnderTMPLocal,
// LoadAddresOfTMPLocal, SetTMPLocal) into concrete LDLoc/LDLocA/STLoc ops
// addressing real method locals, by walking the op stream left to right
// and maintaining a LIFO stack of local indices: NewTMPLocal pushes a
// freshly allocated local (appended to m.Locals) and becomes Nop,
// FreeTMPLocal pops it and becomes Nop, and the Load*/Set* ops resolve
// against the top (or the Nth-from-top, for the "Under" variants) of that
// stack. Grounded on
// original_source/src/method.rs::allocate_temporaries, which this
// reproduces exactly, including its LIFO discipline (spec.md §4.2, S1).
//
// It returns an error instead of panicking when a Load/Free/Set op is
// reached with an empty tmp stack, or an Under op indexes past the bottom
// of the stack: the original panics in that case, but panicking on
// malformed input crossing a package boundary is not idiomatic here. It
// is also an error for the tmp stack to be non-empty once the walk ends:
// a NewTMPLocal with no matching FreeTMPLocal leaves the method malformed
// (spec.md §4.2, §7 category 5).
func (m *Method) AllocateTemporaries() error {
	var tmpStack []uint32
	for i := range m.Ops {
		op := &m.Ops[i]
		switch op.Kind {
		case ONewTMPLocal:
			idx := m.AddLocal(op.Type)
			tmpStack = append(tmpStack, idx)
			*op = Nop
		case OFreeTMPLocal:
			if len(tmpStack) == 0 {
				return fmt.Errorf("cil: FreeTMPLocal with no TMP local allocated in method %q", m.Name)
			}
			tmpStack = tmpStack[:len(tmpStack)-1]
			*op = Nop
		case OLoadTMPLocal:
			idx, err := tmpStackTop(tmpStack, m.Name)
			if err != nil {
				return err
			}
			*op = LDLoc(idx)
		case OLoadUnderTMPLocal:
			idx, err := tmpStackUnder(tmpStack, op.Under, m.Name)
			if err != nil {
				return err
			}
			*op = LDLoc(idx)
		case OLoadAdressUnderTMPLocal:
			idx, err := tmpStackUnder(tmpStack, op.Under, m.Name)
			if err != nil {
				return err
			}
			*op = LDLocA(idx)
		case OLoadAddresOfTMPLocal:
			idx, err := tmpStackTop(tmpStack, m.Name)
			if err != nil {
				return err
			}
			*op = LDLocA(idx)
		case OSetTMPLocal:
			idx, err := tmpStackTop(tmpStack, m.Name)
			if err != nil {
				return err
			}
			*op = STLoc(idx)
		}
	}
	if len(tmpStack) != 0 {
		return fmt.Errorf("cil: %d TMP local(s) never freed in method %q", len(tmpStack), m.Name)
	}
	return nil
}

func tmpStackTop(stack []uint32, methodName string) (uint32, error) {
	if len(stack) == 0 {
		return 0, fmt.Errorf("cil: using a TMP local with none allocated in method %q", methodName)
	}
	return stack[len(stack)-1], nil
}

func tmpStackUnder(stack []uint32, under uint8, methodName string) (uint32, error) {
	pos := len(stack) - 1 - int(under)
	if pos < 0 {
		return 0, fmt.Errorf("cil: TMP local depth %d out of range (stack depth %d) in method %q", under, len(stack), methodName)
	}
	return stack[pos], nil
}
