// Package ir describes the typed control-flow-graph source IR that cil's
// lowering pass consumes. It is a minimal, representative contract: a real
// frontend's IR is richer than this, but every shape lower.go needs to
// drive a full lowering is present here.
package ir

import "github.com/mna/cilgen/cil"

// Local is one local slot in a source function: an index plus its type.
type Local struct {
	Index uint32
	Type  cil.Type
}

// Operand is a value a Stmt or Terminator reads or writes: either a local
// slot or an immediate constant.
type Operand struct {
	Local *Local
	Const *Const
}

// Const is an immediate value baked into the IR.
type Const struct {
	Type Type
	I64  int64
	F64  float64
	Str  string
	Bool bool
}

// Type is the type of a Const: an alias of cil.Type, so the source IR
// shares cil's type grammar. Its Kind selects which Const payload field
// lowering reads.
type Type = cil.Type

// StmtOp discriminates the shape of a Stmt.
type StmtOp uint8

const (
	// Assign computes Rhs and stores it into Dst.
	Assign StmtOp = iota
	// Call invokes Call.Site with Args, storing the result into Dst (Dst
	// is the zero Local{} if the callee returns void).
	Call
	// Swap exchanges the values held by Dst and the local pointed to by
	// SwapWith, without a named third binding at the source level.
	Swap
)

// Rhs is the right-hand side of an Assign statement: a single operand
// pass-through of A, a unary operator applied to A, or a binary operator
// applied to (A, B).
type Rhs struct {
	Op   RhsOp
	A    Operand
	B    Operand
	Type cil.Type
}

// RhsOp names the operation an Rhs performs.
type RhsOp uint8

const (
	RhsUse RhsOp = iota
	RhsAdd
	RhsSub
	RhsMul
	RhsDiv
	RhsEq
	RhsLt
	RhsGt
	RhsNeg
	RhsNot
	RhsRef
	RhsField
)

// FieldAccess names the declaring type and field accessed by an RhsField
// Rhs; it is nil for every other RhsOp.
type FieldAccess struct {
	TypeName string
	Field    string
}

// CallInfo is the callee and argument list of a Call statement.
type CallInfo struct {
	Site cil.CallSite
	Args []Operand
}

// Stmt is one non-branching instruction in a Block.
type Stmt struct {
	Op    StmtOp
	Dst   Local
	Rhs   Rhs
	Field *FieldAccess
	Call  *CallInfo
	// SwapWith is the other local a Swap statement exchanges Dst's value
	// with; nil for every other StmtOp.
	SwapWith *Local
}

// TermKind discriminates the shape of a Terminator.
type TermKind uint8

const (
	// TermReturn ends the function, optionally carrying a value in Value.
	TermReturn TermKind = iota
	// TermGoto transfers control unconditionally to Targets[0].
	TermGoto
	// TermIf transfers control to Targets[0] if Cond is true,
	// Targets[1] otherwise.
	TermIf
	// TermUnreachable marks a block whose end can never be reached.
	TermUnreachable
)

// Terminator ends a Block.
type Terminator struct {
	Kind    TermKind
	Cond    Operand
	Value   *Operand
	Targets []uint32 // block indices
}

// Block is one basic block of a function's control-flow graph.
type Block struct {
	Index       uint32
	Stmts       []Stmt
	Terminator  Terminator
}

// ItemKind discriminates what a frontend-provided Item actually is. The
// lowering pipeline only knows how to turn a function into a cil.Method;
// every other kind is a source construct the back-end does not (yet)
// handle and must be rejected with a typed error rather than silently
// lowered as if it were a function (spec.md §6, §7 category 1).
type ItemKind uint8

const (
	// ItemFunction is a monomorphic function instance: the only kind
	// lower.AddItem accepts (lower.Item does not check the kind).
	ItemFunction ItemKind = iota
	// ItemStatic is a static/const value binding with no function body.
	ItemStatic
	// ItemType is a type-level declaration carrying no executable body.
	ItemType
	// ItemOther is any other frontend item kind (traits, externs, ...)
	// that the back-end has no lowering for.
	ItemOther
)

var itemKindNames = [...]string{ItemFunction: "function", ItemStatic: "static", ItemType: "type", ItemOther: "other"}

// String renders k for error messages.
func (k ItemKind) String() string {
	if int(k) < len(itemKindNames) {
		return itemKindNames[k]
	}
	return "unknown"
}

// Item is one compilation unit the frontend hands to the back-end: its
// kind, and, for a function, its signature, locals and control-flow graph
// ready to be lowered into a cil.Method. Only ItemFunction carries
// meaningful Sig/Locals/Blocks; every other kind exists so lower.AddItem
// has something concrete to reject.
type Item struct {
	Name     string
	Kind     ItemKind
	Sig      cil.FnSig
	IsStatic bool
	IsEntry  bool
	Locals   []Local
	Blocks   []Block
}
