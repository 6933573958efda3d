package build

import "github.com/axiomates/cil2cpp/internal/metadata"

// DecodedInstr is one decoded CIL instruction from a method's IL
// stream, with its operand resolved to a concrete value by kind. Offset
// is the instruction's own IL byte offset, used for branch-target
// resolution and debug-info lookup.
type DecodedInstr struct {
	Offset  int
	Opcode  metadata.Opcode
	Info    metadata.OpcodeInfo
	IntOp   int64
	// IntOp2 carries a second small integer operand: 1 when a
	// call/callvirt/calli/newobj site's callee returns void, else 0.
	IntOp2  int64
	FloatOp float64
	// StrOp is a token operand's primary resolved name: the callee
	// method name for a call site, the field's own name for a field
	// operand, or the target type name for a type operand
	// (cast/box/unbox/newarr/initobj/sizeof), or the literal content for
	// ldstr.
	StrOp string
	// StrOp2 is a token operand's declaring type name, populated
	// alongside StrOp for call sites and field operands.
	StrOp2 string
	// StrOp3 is a field operand's own field-type name, populated
	// alongside StrOp/StrOp2 for field operands only.
	StrOp3 string
	// TargetOffsets holds one (br/brtrue/brfalse/conditional) or many
	// (switch) resolved absolute IL offsets for branch operands.
	TargetOffsets []int
}

// ExceptionRegion describes one ECMA-335 EH clause, offsets relative to
// the method's IL stream.
type ExceptionRegion struct {
	Kind          ExceptionRegionKind
	TryStart      int
	TryEnd        int
	HandlerStart  int
	HandlerEnd    int
	FilterStart   int // only meaningful when Kind == RegionFilter
	CatchTypeName string
}

// ExceptionRegionKind tags an ExceptionRegion's handler kind.
type ExceptionRegionKind int

const (
	RegionCatch ExceptionRegionKind = iota
	RegionFinally
	RegionFilter
	RegionFault
)

// MethodBody is the raw decoded input to pass 7: the instruction
// stream, declared local variable type names, and exception regions.
type MethodBody struct {
	Instructions   []DecodedInstr
	LocalTypeNames []string
	Regions        []ExceptionRegion
	MaxStack       int
}
