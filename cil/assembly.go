package cil

import (
	"fmt"

	"github.com/dolthub/swiss"
	"golang.org/x/exp/slices"
)

// StaticDef is a static field owned directly by the assembly.
type StaticDef struct {
	Name string
	Type Type
}

// Assembly is the target bytecode container: its generated type defs,
// methods and static fields, deduplicated by name as they are added.
// Grounded on original_source/src/assembly.rs::Assembly, with its `types:
// HashMap<IString, CLRType>` replaced by a swiss.Map for the same
// name-keyed dedup table (SPEC_FULL.md §4, dolthub/swiss).
type Assembly struct {
	Name string

	types   *swiss.Map[string, TypeDef]
	methods *swiss.Map[string, *Method]
	statics *swiss.Map[string, StaticDef]

	// sizeT is the pointer width in bytes used by SizeOf for Ptr, Ref,
	// ISize and USize.
	sizeT int
}

// NewAssembly returns an empty assembly named name, with an 8-byte pointer
// width (matching the original's Assembly::new default).
func NewAssembly(name string) *Assembly {
	return &Assembly{
		Name:    name,
		types:   swiss.NewMap[string, TypeDef](0x100),
		methods: swiss.NewMap[string, *Method](0x100),
		statics: swiss.NewMap[string, StaticDef](0x40),
		sizeT:   8,
	}
}

// PointerWidth returns the pointer width, in bytes, SizeOf uses for Ptr,
// Ref, ISize and USize.
func (a *Assembly) PointerWidth() int { return a.sizeT }

// SetPointerWidth overrides the pointer width used by SizeOf. Exposed so a
// linker targeting a different architecture than the one its input units
// were compiled for can retarget the joined assembly before emission
// (SPEC_FULL.md's cilgen.yaml/CILGEN_POINTER_WIDTH config surface).
func (a *Assembly) SetPointerWidth(width int) { a.sizeT = width }

// AddType inserts def under its own Name, overwriting any previous def of
// the same name. Use Join, not AddType directly, when merging two
// independently built assemblies: AddType alone does not check for a
// conflicting shape.
func (a *Assembly) AddType(def TypeDef) {
	a.types.Put(def.Name, def)
}

// LookupType returns the def registered under name, if any.
func (a *Assembly) LookupType(name string) (TypeDef, bool) {
	return a.types.Get(name)
}

// AddMethod appends m to the assembly's method table, keyed by its name.
// A method is expected to have a unique name within an assembly; adding a
// second method under a name already present replaces the first.
func (a *Assembly) AddMethod(m *Method) {
	a.methods.Put(m.Name, m)
}

// LookupMethod returns the method registered under name, if any.
func (a *Assembly) LookupMethod(name string) (*Method, bool) {
	return a.methods.Get(name)
}

// AddStatic registers a mandatory or user-requested static field.
func (a *Assembly) AddStatic(def StaticDef) {
	a.statics.Put(def.Name, def)
}

// Methods returns the assembly's methods, ordered by name for determinism.
func (a *Assembly) Methods() []*Method {
	names := make([]string, 0, a.methods.Count())
	a.methods.Iter(func(k string, _ *Method) (stop bool) {
		names = append(names, k)
		return false
	})
	slices.Sort(names)
	out := make([]*Method, len(names))
	for i, n := range names {
		m, _ := a.methods.Get(n)
		out[i] = m
	}
	return out
}

// Types returns the assembly's type defs, ordered by name for determinism.
func (a *Assembly) Types() []TypeDef {
	names := make([]string, 0, a.types.Count())
	a.types.Iter(func(k string, _ TypeDef) (stop bool) {
		names = append(names, k)
		return false
	})
	slices.Sort(names)
	out := make([]TypeDef, len(names))
	for i, n := range names {
		t, _ := a.types.Get(n)
		out[i] = t
	}
	return out
}

// Statics returns the assembly's static fields, ordered by name.
func (a *Assembly) Statics() []StaticDef {
	names := make([]string, 0, a.statics.Count())
	a.statics.Iter(func(k string, _ StaticDef) (stop bool) {
		names = append(names, k)
		return false
	})
	slices.Sort(names)
	out := make([]StaticDef, len(names))
	for i, n := range names {
		s, _ := a.statics.Get(n)
		out[i] = s
	}
	return out
}

// Entrypoint returns the assembly's entrypoint method, if one of its
// methods carries the EntryPoint attribute.
func (a *Assembly) Entrypoint() (*Method, bool) {
	var found *Method
	a.methods.Iter(func(_ string, m *Method) (stop bool) {
		if m.IsEntrypoint() {
			found = m
			return true
		}
		return false
	})
	return found, found != nil
}

// CallSites returns every CallSite referenced anywhere in the assembly's
// methods, in method-name then op order, duplicates included.
func (a *Assembly) CallSites() []CallSite {
	var out []CallSite
	for _, m := range a.Methods() {
		out = append(out, m.Calls()...)
	}
	return out
}

// SizeOf computes the fixed layout size, in bytes, of t. It returns an
// error for slices, string slices and generics: those have no
// compile-time-constant size (spec.md §4.4/§7, grounded on
// original_source/src/assembly.rs::sizeof_type, which panics in the same
// cases; here those become errors instead). A named type's size is the sum
// of its def's non-static field sizes; enum-shaped named types get no
// special case and no error, since a TypeDef does not record whether it
// is an enum.
func (a *Assembly) SizeOf(t Type) (int, error) {
	switch t.Kind() {
	case KVoid:
		return 0, nil
	case KI8, KU8, KBool:
		return 1, nil
	case KI16, KU16:
		return 2, nil
	case KI32, KU32, KF32:
		return 4, nil
	case KI64, KU64, KF64:
		if t.name == "isize" || t.name == "usize" {
			return a.sizeT, nil
		}
		return 8, nil
	case KI128, KU128:
		return 16, nil
	case KPtr, KRef:
		return a.sizeT, nil
	case KArray:
		elemSize, err := a.SizeOf(t.Elem())
		if err != nil {
			return 0, err
		}
		return elemSize * int(t.Count()), nil
	case KTuple:
		total := 0
		for _, e := range t.Elems() {
			sz, err := a.SizeOf(e)
			if err != nil {
				return 0, err
			}
			total += sz
		}
		return total, nil
	case KNamed:
		def, ok := a.LookupType(t.Name())
		if !ok {
			return 0, fmt.Errorf("cil: cannot compute size of unknown type %q", t.Name())
		}
		total := 0
		for _, f := range def.Fields {
			if f.Static {
				continue
			}
			sz, err := a.SizeOf(f.Type)
			if err != nil {
				return 0, err
			}
			total += sz
		}
		return total, nil
	case KSlice:
		return 0, fmt.Errorf("%w: slice type %s", ErrUncomputableSize, t)
	case KStrSlice:
		return 0, fmt.Errorf("%w: string slice type", ErrUncomputableSize)
	case KGeneric:
		return 0, fmt.Errorf("%w: generic parameter %s", ErrUncomputableSize, t)
	default:
		return 0, fmt.Errorf("%w: type %s", ErrUncomputableSize, t)
	}
}

// cloneAssemblyShallow returns a new Assembly with the same name and size_t,
// and independent (but item-sharing) maps, used as the accumulator Join
// builds its result into without mutating either input.
func cloneAssemblyShallow(name string, sizeT int) *Assembly {
	a := NewAssembly(name)
	a.sizeT = sizeT
	return a
}

// Join merges b into a copy of a and returns the result, implementing a
// true set union keyed by name: a type, method or static present in only
// one input is copied as-is. A type present in both is kept only if the two
// defs are structurally Equal, a static only if both have the same type,
// and a method only if both have the same signature (a's body is kept;
// see methodsConflict); any other collision is a conflict error.
//
// This is a deliberate redesign of
// original_source/src/assembly.rs::Assembly::link, which unconditionally
// extends its maps and silently lets the second assembly's entries
// shadow the first's on a name collision. Two translation units
// independently generating, say, the array type for [i32;4] must produce
// byte-identical defs (mangle.go's injectivity makes the name collision
// itself meaningful), so a shadowing union would hide a bug instead of
// simply deduplicating an expected coincidence (SPEC_FULL.md §6).
func Join(a, b *Assembly) (*Assembly, error) {
	out := cloneAssemblyShallow(a.Name, a.sizeT)

	for _, t := range a.Types() {
		out.AddType(t)
	}
	for _, t := range b.Types() {
		if existing, ok := out.LookupType(t.Name); ok && !existing.Equal(t) {
			return nil, fmt.Errorf("%w: type %q", ErrConflictingType, t.Name)
		}
		out.AddType(t)
	}

	for _, m := range a.Methods() {
		out.AddMethod(m)
	}
	for _, m := range b.Methods() {
		if existing, ok := out.LookupMethod(m.Name); ok {
			if methodsConflict(existing, m) {
				return nil, fmt.Errorf("%w: method %q", ErrConflictingMethod, m.Name)
			}
			continue // keep a's occurrence, already in out
		}
		out.AddMethod(m)
	}

	seenStatics := make(map[string]StaticDef, a.statics.Count())
	for _, s := range a.Statics() {
		seenStatics[s.Name] = s
		out.AddStatic(s)
	}
	for _, s := range b.Statics() {
		if existing, ok := seenStatics[s.Name]; ok && !existing.Type.Equal(s.Type) {
			return nil, fmt.Errorf("%w: static %q", ErrConflictingStatic, s.Name)
		}
		out.AddStatic(s)
	}

	return out, nil
}

// methodsConflict reports whether two same-named methods disagree enough
// that they cannot be silently deduplicated: their signatures differ. Two
// methods with the same name and signature but differing bodies are
// accepted and the first occurrence (a's) is kept, matching spec.md
// §4.6 and the Open Question decision recorded in DESIGN.md that (name,
// signature) is the dedup key, since op-stream equality would reject
// semantically-identical defs that merely differ in emitted temporary
// ordering.
func methodsConflict(existing, incoming *Method) bool {
	return !existing.Sig.Equal(incoming.Sig)
}
