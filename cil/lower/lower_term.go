package lower

import (
	"fmt"

	"github.com/mna/cilgen/cil"
	"github.com/mna/cilgen/cil/ir"
)

// lowerTerminator lowers one block terminator into its op sequence.
func lowerTerminator(t ir.Terminator, labels map[uint32]uint32) ([]cil.Op, error) {
	switch t.Kind {
	case ir.TermReturn:
		if t.Value == nil {
			return []cil.Op{cil.Ret}, nil
		}
		ops, err := lowerOperand(*t.Value)
		if err != nil {
			return nil, err
		}
		return append(ops, cil.Ret), nil
	case ir.TermGoto:
		if len(t.Targets) != 1 {
			return nil, fmt.Errorf("cil: goto terminator must have exactly one target, got %d", len(t.Targets))
		}
		target, ok := labels[t.Targets[0]]
		if !ok {
			return nil, fmt.Errorf("cil: goto references unknown block %d", t.Targets[0])
		}
		return []cil.Op{cil.Goto(target)}, nil
	case ir.TermIf:
		if len(t.Targets) != 2 {
			return nil, fmt.Errorf("cil: if terminator must have exactly two targets, got %d", len(t.Targets))
		}
		thenTarget, ok := labels[t.Targets[0]]
		if !ok {
			return nil, fmt.Errorf("cil: if-then references unknown block %d", t.Targets[0])
		}
		elseTarget, ok := labels[t.Targets[1]]
		if !ok {
			return nil, fmt.Errorf("cil: if-else references unknown block %d", t.Targets[1])
		}
		condOps, err := lowerOperand(t.Cond)
		if err != nil {
			return nil, err
		}
		out := append(condOps, cil.BTrue(thenTarget))
		return append(out, cil.Goto(elseTarget)), nil
	case ir.TermUnreachable:
		ops := cil.ThrowMsg("reached unreachable code")
		return ops[:], nil
	default:
		return nil, fmt.Errorf("cil: unsupported terminator kind %d", t.Kind)
	}
}
