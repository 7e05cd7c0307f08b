package cil

import "fmt"

// OpKind is the tag of the Op sum type. Every operation on Op (StackDelta,
// Retarget, FlipCond, CallSiteOf) is defined by an exhaustive switch over
// OpKind rather than by virtual dispatch, so that adding a variant forces
// every one of those sites to be revisited.
type OpKind uint8

const ( //nolint:revive
	// Control flow.
	OLabel OpKind = iota
	OGoto
	OBEq
	OBNe
	OBLt
	OBGe
	OBLe
	OBZero
	OBTrue

	// Call.
	OCall
	OCallVirt
	ONewObj
	ORet
	OThrow
	ORethrow

	// Locals and arguments.
	OLDLoc
	OSTLoc
	OLDLocA
	OLDArg
	OSTArg
	OLDArgA

	// Constants.
	OLdcI32
	OLdcI64
	OLdcF32
	OLdcF64
	OLdStr
	OLdNull
	OSizeOf
	OLoadGlobalAllocPtr

	// Signed integer conversions.
	OConvI8
	OConvI16
	OConvI32
	OConvI64
	OConvISize
	// Unsigned integer conversions.
	OConvU8
	OConvU16
	OConvU32
	OConvU64
	OConvUSize
	// Float conversions.
	OConvF32
	OConvF64

	// Indirect load/store.
	OLDIndI8
	OLDIndI16
	OLDIndI32
	OLDIndI64
	OLDIndISize
	OLDIndF32
	OLDIndF64
	OLDIndRef
	OSTIndI8
	OSTIndI16
	OSTIndI32
	OSTIndI64
	OSTIndISize
	OSTIndF32
	OSTIndF64

	// Arithmetic.
	OAdd
	OSub
	OMul
	ODiv
	ORem
	OShl
	OShr
	OAnd
	OOr
	OXOr
	ONot
	ONeg
	OAddOvf
	OAddOvfUn
	OSubOvf
	OSubOvfUn
	OMulOvf
	OMulOvfUn

	// Comparison.
	OEq
	OLt
	OGt

	// Object model.
	OLDField
	OLDFieldAddress
	OSTField
	OLdObj
	OSTObj
	OLDStaticField
	OSTStaticField
	OCpBlk

	// Stack hygiene.
	ODup
	OPop
	ONop
	OLocAlloc

	// Debugging.
	OComment

	// Synthetic ops, rewritten by the temporary-local allocation pass
	// (method.go, AllocateTemporaries) before the method is frozen.
	ONewTMPLocal
	OFreeTMPLocal
	OLoadTMPLocal
	OLoadUnderTMPLocal
	OLoadAdressUnderTMPLocal
	OLoadAddresOfTMPLocal
	OSetTMPLocal
)

// Op is one instruction in the target bytecode, as a tagged struct: Kind
// selects which of the remaining fields are meaningful. Payloads (Site,
// Field, Static, Type) are held by value or as an immutable pointer and are
// cheap to clone.
type Op struct {
	Kind    OpKind
	Target  uint32 // branches: label id
	Index   uint32 // LDLoc/STLoc/LDLocA/LDArg/STArg/LDArgA: local/arg index
	Under   uint8  // LoadUnderTMPLocal/LoadAdressUnderTMPLocal: depth under top
	I32     int32
	I64     int64
	F32     float32
	F64     float64
	Str     string // LdStr, Comment
	Checked bool   // conversions
	AllocID uint64 // LoadGlobalAllocPtr
	Type    Type   // SizeOf, LdObj, STObj, NewTMPLocal
	Field   *FieldDescriptor
	Static  *StaticFieldDescriptor
	Site    *CallSite
}

// Label returns a no-op jump anchor with the given id.
func Label(id uint32) Op { return Op{Kind: OLabel, Target: id} }

// Goto returns an unconditional jump to the label id.
func Goto(id uint32) Op { return Op{Kind: OGoto, Target: id} }

func branch(kind OpKind, id uint32) Op { return Op{Kind: kind, Target: id} }

// BEq, BNe, BLt, BGe, BLe, BZero and BTrue build the corresponding
// conditional branches.
func BEq(id uint32) Op   { return branch(OBEq, id) }
func BNe(id uint32) Op   { return branch(OBNe, id) }
func BLt(id uint32) Op   { return branch(OBLt, id) }
func BGe(id uint32) Op   { return branch(OBGe, id) }
func BLe(id uint32) Op   { return branch(OBLe, id) }
func BZero(id uint32) Op { return branch(OBZero, id) }
func BTrue(id uint32) Op { return branch(OBTrue, id) }

// Call, CallVirt and NewObj invoke the method named by site.
func Call(site CallSite) Op     { return Op{Kind: OCall, Site: &site} }
func CallVirt(site CallSite) Op { return Op{Kind: OCallVirt, Site: &site} }
func NewObj(site CallSite) Op   { return Op{Kind: ONewObj, Site: &site} }

// Ret, Throw and Rethrow return from / unwind the current method.
var (
	Ret     = Op{Kind: ORet}
	Throw   = Op{Kind: OThrow}
	Rethrow = Op{Kind: ORethrow}
)

// LDLoc, STLoc and LDLocA load/store/address a local by index.
func LDLoc(i uint32) Op  { return Op{Kind: OLDLoc, Index: i} }
func STLoc(i uint32) Op  { return Op{Kind: OSTLoc, Index: i} }
func LDLocA(i uint32) Op { return Op{Kind: OLDLocA, Index: i} }

// LDArg, STArg and LDArgA load/store/address an argument by index.
func LDArg(i uint32) Op  { return Op{Kind: OLDArg, Index: i} }
func STArg(i uint32) Op  { return Op{Kind: OSTArg, Index: i} }
func LDArgA(i uint32) Op { return Op{Kind: OLDArgA, Index: i} }

// LdcI32, LdcI64, LdcF32, LdcF64 and LdStr push a constant value.
func LdcI32(v int32) Op   { return Op{Kind: OLdcI32, I32: v} }
func LdcI64(v int64) Op   { return Op{Kind: OLdcI64, I64: v} }
func LdcF32(v float32) Op { return Op{Kind: OLdcF32, F32: v} }
func LdcF64(v float64) Op { return Op{Kind: OLdcF64, F64: v} }
func LdStr(s string) Op   { return Op{Kind: OLdStr, Str: s} }

// LdNull pushes the null reference.
var LdNull = Op{Kind: OLdNull}

// SizeOf pushes the runtime size of t.
func SizeOf(t Type) Op { return Op{Kind: OSizeOf, Type: t} }

// LoadGlobalAllocPtr pushes a pointer to local allocation allocID.
func LoadGlobalAllocPtr(allocID uint64) Op {
	return Op{Kind: OLoadGlobalAllocPtr, AllocID: allocID}
}

func conv(kind OpKind, checked bool) Op { return Op{Kind: kind, Checked: checked} }

// ConvI8, ConvI16, ConvI32, ConvI64, ConvISize, ConvU8, ConvU16, ConvU32,
// ConvU64, ConvUSize, ConvF32 and ConvF64 convert the value on top of the
// stack; checked requests a runtime range check.
func ConvI8(checked bool) Op    { return conv(OConvI8, checked) }
func ConvI16(checked bool) Op   { return conv(OConvI16, checked) }
func ConvI32(checked bool) Op   { return conv(OConvI32, checked) }
func ConvI64(checked bool) Op   { return conv(OConvI64, checked) }
func ConvISize(checked bool) Op { return conv(OConvISize, checked) }
func ConvU8(checked bool) Op    { return conv(OConvU8, checked) }
func ConvU16(checked bool) Op   { return conv(OConvU16, checked) }
func ConvU32(checked bool) Op   { return conv(OConvU32, checked) }
func ConvU64(checked bool) Op   { return conv(OConvU64, checked) }
func ConvUSize(checked bool) Op { return conv(OConvUSize, checked) }
func ConvF32(checked bool) Op   { return conv(OConvF32, checked) }
func ConvF64(checked bool) Op   { return conv(OConvF64, checked) }

var (
	LDIndI8    = Op{Kind: OLDIndI8}
	LDIndI16   = Op{Kind: OLDIndI16}
	LDIndI32   = Op{Kind: OLDIndI32}
	LDIndI64   = Op{Kind: OLDIndI64}
	LDIndISize = Op{Kind: OLDIndISize}
	LDIndF32   = Op{Kind: OLDIndF32}
	LDIndF64   = Op{Kind: OLDIndF64}
	LDIndRef   = Op{Kind: OLDIndRef}
	STIndI8    = Op{Kind: OSTIndI8}
	STIndI16   = Op{Kind: OSTIndI16}
	STIndI32   = Op{Kind: OSTIndI32}
	STIndI64   = Op{Kind: OSTIndI64}
	STIndISize = Op{Kind: OSTIndISize}
	STIndF32   = Op{Kind: OSTIndF32}
	STIndF64   = Op{Kind: OSTIndF64}

	Add      = Op{Kind: OAdd}
	Sub      = Op{Kind: OSub}
	Mul      = Op{Kind: OMul}
	Div      = Op{Kind: ODiv}
	Rem      = Op{Kind: ORem}
	Shl      = Op{Kind: OShl}
	Shr      = Op{Kind: OShr}
	And      = Op{Kind: OAnd}
	Or       = Op{Kind: OOr}
	XOr      = Op{Kind: OXOr}
	Not      = Op{Kind: ONot}
	Neg      = Op{Kind: ONeg}
	AddOvf   = Op{Kind: OAddOvf}
	AddOvfUn = Op{Kind: OAddOvfUn}
	SubOvf   = Op{Kind: OSubOvf}
	SubOvfUn = Op{Kind: OSubOvfUn}
	MulOvf   = Op{Kind: OMulOvf}
	MulOvfUn = Op{Kind: OMulOvfUn}

	Eq = Op{Kind: OEq}
	Lt = Op{Kind: OLt}
	Gt = Op{Kind: OGt}

	Dup      = Op{Kind: ODup}
	Pop      = Op{Kind: OPop}
	Nop      = Op{Kind: ONop}
	LocAlloc = Op{Kind: OLocAlloc}

	CpBlk = Op{Kind: OCpBlk}
)

// LDField, LDFieldAddress and STField access an instance field.
func LDField(fd FieldDescriptor) Op        { return Op{Kind: OLDField, Field: &fd} }
func LDFieldAddress(fd FieldDescriptor) Op { return Op{Kind: OLDFieldAddress, Field: &fd} }
func STField(fd FieldDescriptor) Op        { return Op{Kind: OSTField, Field: &fd} }

// LdObj and STObj load/store a value of type t behind the pointer on top of
// the stack.
func LdObj(t Type) Op { return Op{Kind: OLdObj, Type: t} }
func STObj(t Type) Op { return Op{Kind: OSTObj, Type: t} }

// LDStaticField and STStaticField access a static field.
func LDStaticField(fd StaticFieldDescriptor) Op { return Op{Kind: OLDStaticField, Static: &fd} }
func STStaticField(fd StaticFieldDescriptor) Op { return Op{Kind: OSTStaticField, Static: &fd} }

// Comment emits a debugging comment; it has no runtime effect but appears
// in the textual dump and prevents peephole optimizations across it.
func Comment(s string) Op { return Op{Kind: OComment, Str: s} }

// NewTMPLocal, FreeTMPLocal, LoadTMPLocal, LoadUnderTMPLocal,
// LoadAdressUnderTMPLocal, LoadAddresOfTMPLocal and SetTMPLocal are
// synthetic ops produced only by lowering; AllocateTemporaries rewrites
// them into real LDLoc/STLoc/LDLocA ops before the method is frozen.
func NewTMPLocal(t Type) Op { return Op{Kind: ONewTMPLocal, Type: t} }

var (
	FreeTMPLocal         = Op{Kind: OFreeTMPLocal}
	LoadTMPLocal         = Op{Kind: OLoadTMPLocal}
	LoadAddresOfTMPLocal = Op{Kind: OLoadAddresOfTMPLocal}
	SetTMPLocal          = Op{Kind: OSetTMPLocal}
)

func LoadUnderTMPLocal(under uint8) Op {
	return Op{Kind: OLoadUnderTMPLocal, Under: under}
}
func LoadAdressUnderTMPLocal(under uint8) Op {
	return Op{Kind: OLoadAdressUnderTMPLocal, Under: under}
}

// variableStackDelta marks call-like ops whose delta is computed from their
// signature rather than a fixed table entry.
const variableStackDelta = 1 << 30

var fixedStackDelta = map[OpKind]int{
	OLabel: 0, OGoto: 0,
	OBEq: -2, OBNe: -2, OBLt: -2, OBGe: -2, OBLe: -2,
	OBZero: -1, OBTrue: -1,
	OCall: variableStackDelta, OCallVirt: variableStackDelta, ONewObj: variableStackDelta,
	ORet: -1, OThrow: -1, ORethrow: -1,
	OLDLoc: 1, OLDLocA: 1, OLDArg: 1, OLDArgA: 1,
	OSTLoc: -1, OSTArg: -1,
	OLdcI32: 1, OLdcI64: 1, OLdcF32: 1, OLdcF64: 1, OLdStr: 1, OLdNull: 1,
	OSizeOf: 1, OLoadGlobalAllocPtr: 1,
	OConvI8: 0, OConvI16: 0, OConvI32: 0, OConvI64: 0, OConvISize: 0,
	OConvU8: 0, OConvU16: 0, OConvU32: 0, OConvU64: 0, OConvUSize: 0,
	OConvF32: 0, OConvF64: 0,
	OLDIndI8: 0, OLDIndI16: 0, OLDIndI32: 0, OLDIndI64: 0, OLDIndISize: 0,
	OLDIndF32: 0, OLDIndF64: 0, OLDIndRef: 0,
	OSTIndI8: -2, OSTIndI16: -2, OSTIndI32: -2, OSTIndI64: -2, OSTIndISize: -2,
	OSTIndF32: -2, OSTIndF64: -2,
	OAdd: -1, OSub: -1, OMul: -1, ODiv: -1, ORem: -1, OShl: -1, OShr: -1,
	OAnd: -1, OOr: -1, OXOr: -1, ONot: 0, ONeg: 0,
	OAddOvf: -1, OAddOvfUn: -1, OSubOvf: -1, OSubOvfUn: -1, OMulOvf: -1, OMulOvfUn: -1,
	OEq: -1, OLt: -1, OGt: -1,
	OLDField: 0, OLDFieldAddress: 0, OSTField: -2,
	OLdObj: 0, OSTObj: -2,
	OLDStaticField: 1, OSTStaticField: -1,
	OCpBlk: -3,
	ODup:   1, OPop: -1, ONop: 0, OLocAlloc: 0,
	OComment: 0,
	// synthetic
	ONewTMPLocal: 0, OFreeTMPLocal: 0,
	OLoadTMPLocal: 1, OLoadUnderTMPLocal: 1, OLoadAdressUnderTMPLocal: 1,
	OLoadAddresOfTMPLocal: 1, OSetTMPLocal: -1,
}

// StackDelta returns the change in operand-stack depth caused by executing
// op. It is total over every Op value this package can construct.
func (op Op) StackDelta() (int, error) {
	d, ok := fixedStackDelta[op.Kind]
	if !ok {
		return 0, fmt.Errorf("%w: no stack delta defined for op kind %d", ErrMalformedOp, op.Kind)
	}
	if d != variableStackDelta {
		return d, nil
	}
	switch op.Kind {
	case ONewObj:
		return 1 - len(op.Site.Sig.Inputs), nil
	case OCall, OCallVirt:
		n := len(op.Site.Sig.Inputs)
		if op.Site.Sig.Output.Equal(Void) {
			return -n, nil
		}
		return 1 - n, nil
	default:
		return 0, fmt.Errorf("cil: unreachable variable-delta op kind %d", op.Kind)
	}
}

// isBranch reports whether op carries a jump target in Target.
func (op Op) isBranch() bool {
	switch op.Kind {
	case OGoto, OBEq, OBNe, OBLt, OBGe, OBLe, OBZero, OBTrue:
		return true
	default:
		return false
	}
}

// Retarget rewrites op in place: if op is a branch whose target equals
// from, the target becomes to; otherwise Retarget is a no-op. Running
// Retarget(op, x, y) then Retarget(op, y, x) restores the original op
// (spec.md §8, testable property 3).
func (op *Op) Retarget(from, to uint32) {
	if op.isBranch() && op.Target == from {
		op.Target = to
	}
}

// CallSiteOf returns the CallSite referenced by op if op is a Call,
// CallVirt or NewObj, and ok=false otherwise.
func (op Op) CallSiteOf() (site *CallSite, ok bool) {
	switch op.Kind {
	case OCall, OCallVirt, ONewObj:
		return op.Site, true
	default:
		return nil, false
	}
}

// FlipCond returns the conditional with its operand order swapped: BGe and
// BLe exchange, BEq, BNe and Eq are returned unchanged, and any other kind
// is an error since it is not a conditional (or flipping it is not yet
// supported). FlipCond(FlipCond(op)) == op for every op in its domain
// (spec.md §8, property 4).
func (op Op) FlipCond() (Op, error) {
	switch op.Kind {
	case OBGe:
		return Op{Kind: OBLe, Target: op.Target}, nil
	case OBLe:
		return Op{Kind: OBGe, Target: op.Target}, nil
	case OBEq, OBNe:
		return op, nil
	case OEq:
		return op, nil
	default:
		return Op{}, fmt.Errorf("%w: cannot flip non-conditional op kind %d", ErrMalformedOp, op.Kind)
	}
}

// Equal reports whether op and other are the same instruction: same kind,
// same payload, and (for the pointer-held payloads) the same pointed-to
// value rather than the same pointer identity. Used by Method.Equal,
// which TypeDef.Equal relies on to decide whether two translation units'
// generated index methods (S2) actually agree.
func (op Op) Equal(other Op) bool {
	if op.Kind != other.Kind || op.Target != other.Target || op.Index != other.Index ||
		op.Under != other.Under || op.I32 != other.I32 || op.I64 != other.I64 ||
		op.F32 != other.F32 || op.F64 != other.F64 || op.Str != other.Str ||
		op.Checked != other.Checked || op.AllocID != other.AllocID || !op.Type.Equal(other.Type) {
		return false
	}
	if (op.Field == nil) != (other.Field == nil) {
		return false
	}
	if op.Field != nil && !op.Field.Equal(*other.Field) {
		return false
	}
	if (op.Static == nil) != (other.Static == nil) {
		return false
	}
	if op.Static != nil && !op.Static.Equal(*other.Static) {
		return false
	}
	if (op.Site == nil) != (other.Site == nil) {
		return false
	}
	if op.Site != nil && !op.Site.Equal(*other.Site) {
		return false
	}
	return true
}

// exceptionCtorSig is the signature of System.Exception's (string)
// constructor, used by ThrowMsg.
func exceptionCtorSig() FnSig {
	return NewFnSig([]Type{StrSlice}, Void)
}

// ThrowMsg returns the three ops that construct and throw a
// System.Exception with the given message (spec.md §4.1).
func ThrowMsg(msg string) [3]Op {
	site := CallSite{
		Declaring: &TypeRef{Name: "System.Exception"},
		Name:      ".ctor",
		Sig:       exceptionCtorSig(),
		Static:    false,
	}
	return [3]Op{LdStr(msg), NewObj(site), Throw}
}

func consoleCall(method string, sig FnSig) Op {
	return Call(CallSite{
		Declaring: &TypeRef{Name: "System.Console"},
		Name:      method,
		Sig:       sig,
		Static:    true,
	})
}

// DebugMsg returns the two ops that write msg to stdout through the host
// runtime's console facility, ending with a newline (spec.md §4.1).
func DebugMsg(msg string) [2]Op {
	return [2]Op{LdStr(msg), consoleCall("WriteLine", NewFnSig([]Type{StrSlice}, Void))}
}

// DebugMsgNoNL is like DebugMsg but does not end with a newline. Grounded
// on original_source/src/cil/mod.rs::debug_msg_no_nl (SPEC_FULL.md §5).
func DebugMsgNoNL(msg string) [2]Op {
	return [2]Op{LdStr(msg), consoleCall("Write", NewFnSig([]Type{StrSlice}, Void))}
}

// NewLine writes a bare newline to stdout.
func NewLine() Op {
	return consoleCall("WriteLine", NewFnSig(nil, Void))
}

// DebugBool, DebugI32, DebugF32 and DebugU64 pop one value of the named
// type from the stack and write it to stdout without a trailing newline.
// Grounded on original_source/src/cil/mod.rs (SPEC_FULL.md §5).
func DebugBool() Op { return consoleCall("Write", NewFnSig([]Type{Bool}, Void)) }
func DebugI32() Op  { return consoleCall("Write", NewFnSig([]Type{I32}, Void)) }
func DebugF32() Op  { return consoleCall("Write", NewFnSig([]Type{F32}, Void)) }
func DebugU64() Op  { return consoleCall("Write", NewFnSig([]Type{U64}, Void)) }
