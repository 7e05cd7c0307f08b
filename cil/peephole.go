package cil

// Peephole runs a small set of local rewrites over m's op stream that
// shrink it without changing its observable behavior: a Dup immediately
// followed by a Pop cancels out, and a Goto to the label immediately
// following it is dead and is dropped. Grounded on the optimization pass
// original_source/src/assembly.rs::add_fn calls as `clr_method.opt()`;
// the original's pass body is not in the excerpted sources, so this
// reproduces only the two rewrites implied by its name and call site
// rather than guessing at a larger unseen pass (spec.md §4.5, edge case:
// optimizations must not change program semantics).
func Peephole(m *Method) {
	m.Ops = dropDupPop(m.Ops)
	m.Ops = dropTrivialGoto(m.Ops)
}

func dropDupPop(ops []Op) []Op {
	out := ops[:0:0]
	for i := 0; i < len(ops); i++ {
		if ops[i].Kind == ODup && i+1 < len(ops) && ops[i+1].Kind == OPop {
			i++
			continue
		}
		out = append(out, ops[i])
	}
	return out
}

func dropTrivialGoto(ops []Op) []Op {
	out := ops[:0:0]
	for i := 0; i < len(ops); i++ {
		if ops[i].Kind == OGoto && i+1 < len(ops) && ops[i+1].Kind == OLabel && ops[i+1].Target == ops[i].Target {
			continue
		}
		out = append(out, ops[i])
	}
	return out
}
