package build

import "github.com/axiomates/cil2cpp/internal/ir"

var condBranchOps = map[string]string{
	"brtrue": "true", "brtrue.s": "true", "brfalse": "false", "brfalse.s": "false",
	"beq": "==", "beq.s": "==", "bne.un": "!=", "bne.un.s": "!=",
	"bgt": ">", "bgt.s": ">", "bgt.un": ">", "bgt.un.s": ">",
	"blt": "<", "blt.s": "<", "blt.un": "<", "blt.un.s": "<",
	"ble": "<=", "ble.s": "<=", "ble.un": "<=", "ble.un.s": "<=",
	"bge": ">=", "bge.s": ">=", "bge.un": ">=", "bge.un.s": ">=",
}

func isCondBranch(mnemonic string) bool {
	_, ok := condBranchOps[mnemonic]
	return ok
}

// lowerCondBranch lowers a conditional CIL branch to a comparison
// feeding a ConditionalBranch: brtrue/brfalse test a single popped
// operand against truthiness; the two-operand forms (beq, bgt, …) emit
// an explicit BinaryOp comparison first.
func (ctx *lowerCtx) lowerCondBranch(instr DecodedInstr, mnemonic string) []ir.Instruction {
	op := condBranchOps[mnemonic]
	target := ctx.labelFor(instr.TargetOffsets[0])

	if op == "true" || op == "false" {
		v := ctx.stack.pop()
		cond := v.temp
		var out []ir.Instruction
		if op == "false" {
			negated := ctx.temps.fresh()
			out = append(out, &ir.UnaryOp{Op: "!", Value: v.temp, Result: negated})
			cond = negated
		}
		out = append(out, &ir.ConditionalBranch{Condition: cond, TrueLabel: target})
		return out
	}

	right := ctx.stack.pop()
	left := ctx.stack.pop()
	cond := ctx.temps.fresh()
	return []ir.Instruction{
		&ir.BinaryOp{Op: op, Left: left.temp, Right: right.temp, Result: cond, TypeName: "System.Int32"},
		&ir.ConditionalBranch{Condition: cond, TrueLabel: target},
	}
}

// lowerLeave emits the unconditional branch for `leave`/`leave.s`. Per
// the leave-suppression rule, if the target exits a protected region
// whose handler is a finally, the branch is still recorded (so the
// region bookkeeping has a place to point) but marked suppressed: the
// external emitter inserts the finally epilogue on the natural exit
// path rather than an explicit goto.
func (ctx *lowerCtx) lowerLeave(instr DecodedInstr, body *MethodBody) []ir.Instruction {
	target := instr.TargetOffsets[0]
	suppressed := leaveCrossesFinally(instr.Offset, target, body.Regions)
	return []ir.Instruction{&ir.Branch{TargetLabel: ctx.labelFor(target), LeaveSuppressed: suppressed}}
}

// leaveCrossesFinally reports whether a leave at fromOffset targeting
// toOffset exits a try region whose handler is a finally (fromOffset
// lies within the region's try range, toOffset lies outside it).
func leaveCrossesFinally(fromOffset, toOffset int, regions []ExceptionRegion) bool {
	for _, r := range regions {
		if r.Kind != RegionFinally {
			continue
		}
		within := fromOffset >= r.TryStart && fromOffset < r.TryEnd
		exits := toOffset < r.TryStart || toOffset >= r.TryEnd
		if within && exits {
			return true
		}
	}
	return false
}

func (ctx *lowerCtx) lowerSwitch(instr DecodedInstr, boundaries []int, idx int) []ir.Instruction {
	v := ctx.stack.pop()
	cases := make([]ir.SwitchCase, len(instr.TargetOffsets))
	for i, target := range instr.TargetOffsets {
		cases[i] = ir.SwitchCase{Value: int64(i), Label: ctx.labelFor(target)}
	}
	// Default falls through to the next basic block in declaration
	// order, i.e. the block starting right after this switch.
	defaultLabel := ""
	for _, off := range boundaries {
		if off > instr.Offset {
			defaultLabel = ctx.labelFor(off)
			break
		}
	}
	return []ir.Instruction{&ir.Switch{Value: v.temp, Cases: cases, DefaultLabel: defaultLabel}}
}
