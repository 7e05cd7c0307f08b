package cil

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// wireAssembly is the gob-serializable shape of an Assembly: swiss.Map
// does not implement GobEncode, so Encode/Decode flatten to and from
// plain slices, which is also what keeps the wire format stable across
// iteration-order differences between two builds of the same program.
type wireAssembly struct {
	Name    string
	SizeT   int
	Types   []TypeDef
	Methods []*Method
	Statics []StaticDef
}

// gobType mirrors Type's unexported fields with exported ones, since gob
// cannot see unexported struct fields. Type implements GobEncode/GobDecode
// in terms of it below.
type gobType struct {
	Kind    Kind
	Elem    *Type
	Count   uint64
	Mutable bool
	Elems   []Type
	Name    string
	Args    []Type
	Index   uint32
}

// GobEncode implements gob.GobEncoder for Type.
func (t Type) GobEncode() ([]byte, error) {
	g := gobType{
		Kind: t.kind, Elem: t.elem, Count: t.count, Mutable: t.mutable,
		Elems: t.elems, Name: t.name, Args: t.args, Index: t.index,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&g); err != nil {
		return nil, fmt.Errorf("cil: gob-encoding type %s: %w", t, err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder for Type.
func (t *Type) GobDecode(data []byte) error {
	var g gobType
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&g); err != nil {
		return fmt.Errorf("cil: gob-decoding type: %w", err)
	}
	t.kind, t.elem, t.count, t.mutable = g.Kind, g.Elem, g.Count, g.Mutable
	t.elems, t.name, t.args, t.index = g.Elems, g.Name, g.Args, g.Index
	return nil
}

func init() {
	gob.Register(TypeDef{})
}

// Encode serializes asm into the binary wire format one translation
// unit's compiled output is written in, to be read back by Decode or
// picked out of a .rlib archive by ReadArchive. There is no third-party
// binary struct codec in the example pack's dependency surface (the pack
// offers YAML and environment-variable config parsers, not a general
// binary marshaler), so this is one of the few places cil intentionally
// falls back to the standard library; see DESIGN.md.
func (a *Assembly) Encode() ([]byte, error) {
	w := wireAssembly{
		Name:    a.Name,
		SizeT:   a.sizeT,
		Types:   a.Types(),
		Methods: a.Methods(),
		Statics: a.Statics(),
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&w); err != nil {
		return nil, fmt.Errorf("cil: encoding assembly %q: %w", a.Name, err)
	}
	return buf.Bytes(), nil
}

// Decode deserializes an Assembly previously produced by Encode.
func Decode(data []byte) (*Assembly, error) {
	var w wireAssembly
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return nil, fmt.Errorf("cil: decoding assembly: %w", err)
	}
	asm := NewAssembly(w.Name)
	asm.sizeT = w.SizeT
	for _, t := range w.Types {
		asm.AddType(t)
	}
	for _, m := range w.Methods {
		asm.AddMethod(m)
	}
	for _, s := range w.Statics {
		asm.AddStatic(s)
	}
	return asm, nil
}
