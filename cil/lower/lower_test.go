package lower

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/cilgen/cil"
	"github.com/mna/cilgen/cil/ir"
)

// TestItemAddFunction lowers a two-argument add function: two blocks,
// one computing a + b and returning it.
func TestItemAddFunction(t *testing.T) {
	a := ir.Local{Index: 0, Type: cil.I32}
	b := ir.Local{Index: 1, Type: cil.I32}
	sum := ir.Local{Index: 2, Type: cil.I32}

	item := &ir.Item{
		Name:     "add",
		Kind:     ir.ItemFunction,
		Sig:      cil.NewFnSig([]cil.Type{cil.I32, cil.I32}, cil.I32),
		IsStatic: true,
		Locals:   []ir.Local{a, b, sum},
		Blocks: []ir.Block{
			{
				Index: 0,
				Stmts: []ir.Stmt{
					{
						Op:  ir.Assign,
						Dst: sum,
						Rhs: ir.Rhs{Op: ir.RhsAdd, A: ir.Operand{Local: &a}, B: ir.Operand{Local: &b}, Type: cil.I32},
					},
				},
				Terminator: ir.Terminator{Kind: ir.TermReturn, Value: &ir.Operand{Local: &sum}},
			},
		},
	}

	m, err := Item(item)
	require.NoError(t, err)
	require.Equal(t, "add", m.Name)
	require.True(t, m.IsStatic)

	want := []cil.Op{
		cil.Label(0),
		cil.LDLoc(0), cil.LDLoc(1), cil.Add, cil.STLoc(2),
		cil.LDLoc(2), cil.Ret,
	}
	require.Equal(t, want, m.Ops)
}

// TestItemBranch lowers a two-block conditional: if cond, return 1, else
// return 0, exercising TermIf's forward-branch label resolution.
func TestItemBranch(t *testing.T) {
	cond := ir.Local{Index: 0, Type: cil.Bool}

	item := &ir.Item{
		Name:     "pick",
		Sig:      cil.NewFnSig([]cil.Type{cil.Bool}, cil.I32),
		IsStatic: true,
		IsEntry:  true,
		Locals:   []ir.Local{cond},
		Blocks: []ir.Block{
			{
				Index:      0,
				Terminator: ir.Terminator{Kind: ir.TermIf, Cond: ir.Operand{Local: &cond}, Targets: []uint32{1, 2}},
			},
			{
				Index:      1,
				Terminator: ir.Terminator{Kind: ir.TermReturn, Value: &ir.Operand{Const: &ir.Const{Type: cil.I32, I64: 1}}},
			},
			{
				Index:      2,
				Terminator: ir.Terminator{Kind: ir.TermReturn, Value: &ir.Operand{Const: &ir.Const{Type: cil.I32, I64: 0}}},
			},
		},
	}

	m, err := Item(item)
	require.NoError(t, err)
	require.True(t, m.IsEntrypoint())

	want := []cil.Op{
		cil.Label(0),
		cil.LDLoc(0), cil.BTrue(1), cil.Goto(2),
		cil.Label(1),
		cil.LdcI64(1), cil.Ret,
		cil.Label(2),
		cil.LdcI64(0), cil.Ret,
	}
	require.Equal(t, want, m.Ops)
}

func TestItemPrunesVoidLocals(t *testing.T) {
	kept := ir.Local{Index: 1, Type: cil.I32}
	item := &ir.Item{
		Name:     "f",
		Sig:      cil.NewFnSig(nil, cil.I32),
		IsStatic: true,
		Locals:   []ir.Local{{Index: 0, Type: cil.Void}, kept},
		Blocks: []ir.Block{
			{
				Index: 0,
				Stmts: []ir.Stmt{
					{Op: ir.Assign, Dst: ir.Local{Index: 1}, Rhs: ir.Rhs{Op: ir.RhsUse, A: ir.Operand{Const: &ir.Const{Type: cil.I32, I64: 9}}}},
				},
				Terminator: ir.Terminator{Kind: ir.TermReturn, Value: &ir.Operand{Local: &kept}},
			},
		},
	}

	m, err := Item(item)
	require.NoError(t, err)
	require.Len(t, m.Locals, 1)
	// The sole remaining local is renumbered to index 0.
	require.Contains(t, m.Ops, cil.STLoc(0))
	require.Contains(t, m.Ops, cil.LDLoc(0))
}

// TestItemSwapAllocatesTemporary exercises the one statement shape that
// genuinely needs a scratch local (spec.md §4.2): exchanging two locals'
// values with no third named binding. Item must both lower the Swap
// statement into synthetic TMP ops and run AllocateTemporaries over them,
// leaving a fresh local (not a synthetic op) in the result.
func TestItemSwapAllocatesTemporary(t *testing.T) {
	x := ir.Local{Index: 0, Type: cil.I32}
	y := ir.Local{Index: 1, Type: cil.I32}

	item := &ir.Item{
		Name:     "swapXY",
		Sig:      cil.NewFnSig(nil, cil.Void),
		IsStatic: true,
		Locals:   []ir.Local{x, y},
		Blocks: []ir.Block{
			{
				Index:      0,
				Stmts:      []ir.Stmt{{Op: ir.Swap, Dst: x, SwapWith: &y}},
				Terminator: ir.Terminator{Kind: ir.TermReturn},
			},
		},
	}

	m, err := Item(item)
	require.NoError(t, err)

	// The swap's scratch local is appended after the two source locals.
	require.Len(t, m.Locals, 3)
	require.True(t, m.Locals[2].Type.Equal(cil.I32))

	want := []cil.Op{
		cil.Label(0),
		cil.Nop,
		cil.LDLoc(0), cil.STLoc(2),
		cil.LDLoc(1), cil.STLoc(0),
		cil.LDLoc(2), cil.STLoc(1),
		cil.Nop,
		cil.Ret,
	}
	require.Equal(t, want, m.Ops)
}

// TestAddItemRegistersFunction is the §6 upstream contract's happy path:
// a function-kind item is lowered and registered on the assembly under
// its own name.
func TestAddItemRegistersFunction(t *testing.T) {
	asm := cil.NewAssembly("unit")
	item := &ir.Item{
		Name:     "answer",
		Kind:     ir.ItemFunction,
		Sig:      cil.NewFnSig(nil, cil.I32),
		IsStatic: true,
		Blocks: []ir.Block{
			{Index: 0, Terminator: ir.Terminator{Kind: ir.TermReturn, Value: &ir.Operand{Const: &ir.Const{Type: cil.I32, I64: 42}}}},
		},
	}

	require.NoError(t, AddItem(asm, item))
	m, ok := asm.LookupMethod("answer")
	require.True(t, ok)
	require.Equal(t, []cil.Op{cil.Label(0), cil.LdcI64(42), cil.Ret}, m.Ops)
}

// TestAddItemRejectsNonFunctionKind is the §6/§7-category-1 unhappy path:
// a non-function item must be rejected with a clearly-typed error rather
// than lowered as if it were a function.
func TestAddItemRejectsNonFunctionKind(t *testing.T) {
	asm := cil.NewAssembly("unit")
	item := &ir.Item{Name: "SomeTrait", Kind: ir.ItemOther}

	err := AddItem(asm, item)
	require.Error(t, err)
	require.True(t, errors.Is(err, cil.ErrUnsupportedItem))
	_, ok := asm.LookupMethod("SomeTrait")
	require.False(t, ok)
}
