package lower

import (
	"fmt"

	"github.com/mna/cilgen/cil"
	"github.com/mna/cilgen/cil/ir"
)

// lowerOperand returns the ops that push operand's value.
func lowerOperand(op ir.Operand) ([]cil.Op, error) {
	switch {
	case op.Local != nil:
		return []cil.Op{cil.LDLoc(op.Local.Index)}, nil
	case op.Const != nil:
		return lowerConst(*op.Const)
	default:
		return nil, fmt.Errorf("cil: operand has neither a local nor a constant")
	}
}

func lowerConst(c ir.Const) ([]cil.Op, error) {
	switch c.Type.Kind() {
	case cil.KBool:
		v := int32(0)
		if c.Bool {
			v = 1
		}
		return []cil.Op{cil.LdcI32(v)}, nil
	case cil.KF32:
		return []cil.Op{cil.LdcF64(c.F64)}, nil
	case cil.KF64:
		return []cil.Op{cil.LdcF64(c.F64)}, nil
	case cil.KStrSlice:
		return []cil.Op{cil.LdStr(c.Str)}, nil
	default:
		return []cil.Op{cil.LdcI64(c.I64)}, nil
	}
}

var binaryRhsOp = map[ir.RhsOp]cil.Op{
	ir.RhsAdd: cil.Add,
	ir.RhsSub: cil.Sub,
	ir.RhsMul: cil.Mul,
	ir.RhsDiv: cil.Div,
	ir.RhsEq:  cil.Eq,
	ir.RhsLt:  cil.Lt,
	ir.RhsGt:  cil.Gt,
}

// lowerRhs returns the ops that compute rhs and leave its value on top of
// the stack.
func lowerRhs(rhs ir.Rhs, field *ir.FieldAccess) ([]cil.Op, error) {
	switch rhs.Op {
	case ir.RhsUse:
		return lowerOperand(rhs.A)
	case ir.RhsNeg:
		a, err := lowerOperand(rhs.A)
		if err != nil {
			return nil, err
		}
		return append(a, cil.Neg), nil
	case ir.RhsNot:
		a, err := lowerOperand(rhs.A)
		if err != nil {
			return nil, err
		}
		return append(a, cil.Not), nil
	case ir.RhsRef:
		if rhs.A.Local == nil {
			return nil, fmt.Errorf("cil: cannot take the address of a non-local operand")
		}
		return []cil.Op{cil.LDLocA(rhs.A.Local.Index)}, nil
	case ir.RhsField:
		if field == nil || rhs.A.Local == nil {
			return nil, fmt.Errorf("cil: field access statement missing field descriptor or base local")
		}
		fd := cil.FieldDescriptor{Parent: cil.TypeRef{Name: field.TypeName}, FieldType: rhs.Type, FieldName: cil.EscapeFieldName(field.Field)}
		return []cil.Op{cil.LDLocA(rhs.A.Local.Index), cil.LDField(fd)}, nil
	default:
		op, ok := binaryRhsOp[rhs.Op]
		if !ok {
			return nil, fmt.Errorf("cil: unsupported rhs operator %d", rhs.Op)
		}
		a, err := lowerOperand(rhs.A)
		if err != nil {
			return nil, err
		}
		b, err := lowerOperand(rhs.B)
		if err != nil {
			return nil, err
		}
		out := append(a, b...)
		return append(out, op), nil
	}
}

// lowerStmt lowers one source statement into its op sequence.
func lowerStmt(s ir.Stmt, labels map[uint32]uint32) ([]cil.Op, error) {
	switch s.Op {
	case ir.Assign:
		rhsOps, err := lowerRhs(s.Rhs, s.Field)
		if err != nil {
			return nil, err
		}
		return append(rhsOps, cil.STLoc(s.Dst.Index)), nil
	case ir.Call:
		if s.Call == nil {
			return nil, fmt.Errorf("cil: call statement missing call info")
		}
		var ops []cil.Op
		for _, a := range s.Call.Args {
			argOps, err := lowerOperand(a)
			if err != nil {
				return nil, err
			}
			ops = append(ops, argOps...)
		}
		ops = append(ops, cil.Call(s.Call.Site))
		if !s.Call.Site.Sig.Output.Equal(cil.Void) {
			ops = append(ops, cil.STLoc(s.Dst.Index))
		}
		return ops, nil
	case ir.Swap:
		return lowerSwap(s)
	default:
		return nil, fmt.Errorf("cil: unsupported statement kind %d", s.Op)
	}
}

// lowerSwap exchanges Dst and SwapWith's values using a TMP local to hold
// Dst's original value across the two stores: a plain stack-machine
// sequence cannot exchange two locals without a third slot to stage one of
// them in (spec.md §4.2's scratch-local rationale — "spill slots" —
// applied to the one statement shape in this IR that genuinely needs one;
// every New/FreeTMPLocal pair here opens and closes within this single
// statement, matching the "temporaries may not cross statement
// boundaries" contract).
func lowerSwap(s ir.Stmt) ([]cil.Op, error) {
	if s.SwapWith == nil {
		return nil, fmt.Errorf("cil: swap statement missing its second local")
	}
	return []cil.Op{
		cil.NewTMPLocal(s.Dst.Type),
		cil.LDLoc(s.Dst.Index),
		cil.SetTMPLocal,
		cil.LDLoc(s.SwapWith.Index),
		cil.STLoc(s.Dst.Index),
		cil.LoadTMPLocal,
		cil.STLoc(s.SwapWith.Index),
		cil.FreeTMPLocal,
	}, nil
}
