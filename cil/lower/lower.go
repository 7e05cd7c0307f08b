// Package lower bridges the typed source IR (cil/ir) into the target
// bytecode package (cil): it is the one place in the tree allowed to
// import both, since cil itself must stay ignorant of any particular
// frontend IR shape (SPEC_FULL.md §2).
package lower

import (
	"fmt"

	"github.com/mna/cilgen/cil"
	"github.com/mna/cilgen/cil/ir"
)

// blockLabels assigns a label id to every block of item ahead of time so
// that forward branches (the common case: an `if` branching to a block
// not yet visited) can be emitted before that block's own Label op exists.
func blockLabels(item *ir.Item) map[uint32]uint32 {
	labels := make(map[uint32]uint32, len(item.Blocks))
	for i, b := range item.Blocks {
		labels[b.Index] = uint32(i)
	}
	return labels
}

// Item lowers one source item into a Method, following the fixed pipeline
// order: allocate the method and copy its locals in, emit each block's
// label, statements and terminator in source order, prune locals that
// were only ever of void type (the frontend sometimes leaves these
// behind for unit-valued bindings), run the peephole pass, call
// EnsureValid so the op stream is terminated before the
// temporary-allocation pass walks it, and finally allocate the
// temporaries the statement lowering emitted as synthetic TMP ops.
// Grounded on original_source/src/assembly.rs::add_fn's call sequence
// (add_types_from_locals / add_locals / per-block add / remove_void_locals
// / opt), reproduced here for a single item rather than assuming a
// whole-program MIR visit, plus spec.md §4.2's "mutated by its lowering
// pass and the temporary-allocation pass, then frozen" ordering (spec.md
// §4.5).
func Item(item *ir.Item) (*cil.Method, error) {
	m := cil.NewMethod(cil.Public, item.IsStatic, item.Sig, item.Name, nil)
	for _, l := range item.Locals {
		m.Locals = append(m.Locals, cil.LocalDef{Type: l.Type})
	}
	if item.IsEntry {
		m.AddAttribute(cil.EntryPoint)
	}

	labels := blockLabels(item)
	for _, b := range item.Blocks {
		m.Ops = append(m.Ops, cil.Label(labels[b.Index]))
		for _, s := range b.Stmts {
			ops, err := lowerStmt(s, labels)
			if err != nil {
				return nil, fmt.Errorf("cil: lowering %q block %d: %w", item.Name, b.Index, err)
			}
			m.Ops = append(m.Ops, ops...)
		}
		ops, err := lowerTerminator(b.Terminator, labels)
		if err != nil {
			return nil, fmt.Errorf("cil: lowering %q block %d terminator: %w", item.Name, b.Index, err)
		}
		m.Ops = append(m.Ops, ops...)
	}

	pruneVoidLocals(m)
	cil.Peephole(m)
	m.EnsureValid()
	if err := m.AllocateTemporaries(); err != nil {
		return nil, fmt.Errorf("cil: lowering %q: %w", item.Name, err)
	}
	return m, nil
}

// pruneVoidLocals drops every local whose declared type is Void and
// rewrites the remaining locals' indices in every LDLoc/STLoc/LDLocA op,
// since a void-typed binding carries no value and the frontend sometimes
// still allocates a slot for it. Grounded on
// original_source/src/method.rs-adjacent remove_void_locals (referenced
// from assembly.rs::add_fn, implementation not itself in the excerpted
// sources; its contract — drop void locals, renumber the rest — is
// unambiguous from that call site).
func pruneVoidLocals(m *cil.Method) {
	remap := make(map[uint32]uint32, len(m.Locals))
	kept := m.Locals[:0:0]
	for i, l := range m.Locals {
		if l.Type.Equal(cil.Void) {
			continue
		}
		remap[uint32(i)] = uint32(len(kept))
		kept = append(kept, l)
	}
	if len(kept) == len(m.Locals) {
		return
	}
	m.Locals = kept
	for i := range m.Ops {
		op := &m.Ops[i]
		switch op.Kind {
		case cil.OLDLoc, cil.OSTLoc, cil.OLDLocA:
			if newIdx, ok := remap[op.Index]; ok {
				op.Index = newIdx
			}
		}
	}
}
