package build

import (
	"strconv"
	"strings"

	"github.com/axiomates/cil2cpp/internal/ir"
)

// lowerInstruction simulates one decoded CIL instruction against the
// typed evaluation stack, emitting zero or more ir.Instruction values.
// labelFor resolves branch targets to BasicBlock labels
// (BB_<id>); boundaries/idx let it find the instruction one past a
// branch for fallthrough cases.
func (ctx *lowerCtx) lowerInstruction(instr DecodedInstr, body *MethodBody, boundaries []int, idx int) []ir.Instruction {
	mnemonic := instr.Info.Mnemonic

	switch {
	case mnemonic == "nop" || mnemonic == "break":
		return nil
	case mnemonic == "pop":
		ctx.stack.pop()
		return nil
	case mnemonic == "dup":
		top := ctx.stack.peek()
		ctx.stack.push(top.temp, top.typeName)
		return nil

	case strings.HasPrefix(mnemonic, "ldarg"):
		return ctx.lowerLdarg(instr, mnemonic)
	case strings.HasPrefix(mnemonic, "starg"):
		return ctx.lowerStarg(instr, mnemonic)
	case strings.HasPrefix(mnemonic, "ldloc"):
		return ctx.lowerLdloc(instr, mnemonic)
	case strings.HasPrefix(mnemonic, "stloc"):
		return ctx.lowerStloc(instr, mnemonic)

	case mnemonic == "ldnull":
		r := ctx.temps.fresh()
		ctx.stack.push(r, "")
		return []ir.Instruction{&ir.Load{Kind: ir.LoadConstNull, Result: r}}
	case mnemonic == "ldstr":
		r := ctx.temps.fresh()
		ctx.stack.push(r, "System.String")
		return []ir.Instruction{&ir.Load{Kind: ir.LoadConstString, Result: r, Name: instr.StrOp}}
	case strings.HasPrefix(mnemonic, "ldc.i4") || mnemonic == "ldc.i8":
		r := ctx.temps.fresh()
		typeName := "System.Int32"
		if mnemonic == "ldc.i8" {
			typeName = "System.Int64"
		}
		ctx.stack.push(r, typeName)
		return []ir.Instruction{&ir.Load{Kind: ir.LoadConstInt, Result: r, Name: strconv.FormatInt(instr.IntOp, 10), TypeName: typeName}}
	case mnemonic == "ldc.r4" || mnemonic == "ldc.r8":
		r := ctx.temps.fresh()
		typeName := "System.Double"
		if mnemonic == "ldc.r4" {
			typeName = "System.Single"
		}
		ctx.stack.push(r, typeName)
		return []ir.Instruction{&ir.Load{Kind: ir.LoadConstFloat, Result: r, Name: strconv.FormatFloat(instr.FloatOp, 'g', -1, 64), TypeName: typeName}}

	case strings.HasPrefix(mnemonic, "ldfld"):
		return ctx.lowerLdfld(instr, false)
	case strings.HasPrefix(mnemonic, "ldsfld"):
		return ctx.lowerLdfld(instr, true)
	case strings.HasPrefix(mnemonic, "stfld"):
		return ctx.lowerStfld(instr, false)
	case strings.HasPrefix(mnemonic, "stsfld"):
		return ctx.lowerStfld(instr, true)

	case mnemonic == "ldlen":
		return ctx.lowerLdlen()
	case strings.HasPrefix(mnemonic, "ldelem"):
		return ctx.lowerLdelem(instr)
	case strings.HasPrefix(mnemonic, "stelem"):
		return ctx.lowerStelem(instr)
	case strings.HasPrefix(mnemonic, "ldind"):
		return ctx.lowerLdind()
	case strings.HasPrefix(mnemonic, "stind"):
		return ctx.lowerStind()

	case isArithmetic(mnemonic):
		return ctx.lowerBinaryArith(mnemonic)
	case isBitwise(mnemonic):
		return ctx.lowerBitwise(mnemonic)
	case isComparison(mnemonic):
		return ctx.lowerComparison(mnemonic)
	case mnemonic == "neg":
		return ctx.lowerUnary("-")
	case mnemonic == "not":
		return ctx.lowerUnary("~")

	case strings.HasPrefix(mnemonic, "conv"):
		return ctx.lowerConversion(mnemonic)

	case mnemonic == "br" || mnemonic == "br.s":
		return []ir.Instruction{&ir.Branch{TargetLabel: ctx.labelFor(instr.TargetOffsets[0])}}
	case mnemonic == "leave" || mnemonic == "leave.s":
		return ctx.lowerLeave(instr, body)
	case isCondBranch(mnemonic):
		return ctx.lowerCondBranch(instr, mnemonic)
	case mnemonic == "switch":
		return ctx.lowerSwitch(instr, boundaries, idx)

	case mnemonic == "call" || mnemonic == "callvirt" || mnemonic == "calli":
		return ctx.lowerCall(instr, mnemonic)
	case mnemonic == "newobj":
		return ctx.lowerNewObj(instr)
	case mnemonic == "newarr":
		return ctx.lowerNewArr(instr)
	case mnemonic == "castclass" || mnemonic == "isinst":
		return ctx.lowerCastOrIsinst(instr, mnemonic)
	case mnemonic == "box":
		return ctx.lowerBox(instr)
	case mnemonic == "unbox":
		return ctx.lowerUnbox(instr)
	case mnemonic == "unbox.any":
		return ctx.lowerUnboxAny(instr)
	case mnemonic == "ldobj" || mnemonic == "cpobj":
		return ctx.lowerLdobjCpobj(mnemonic)
	case mnemonic == "stobj":
		return ctx.lowerStobj()
	case mnemonic == "initobj":
		return ctx.lowerInitobj(instr)
	case mnemonic == "ldftn" || mnemonic == "ldvirtftn":
		return ctx.lowerLdftn(instr, mnemonic)
	case mnemonic == "constrained.":
		// constrained. ahead of a plain call targets a static interface
		// member, which is not modeled: record a lowering failure.
		if idx+1 < len(body.Instructions) && body.Instructions[idx+1].Info.Mnemonic == "call" {
			ctx.faults = append(ctx.faults, "constrained. prefix on a static call at offset "+strconv.Itoa(instr.Offset))
		}
		return nil // constrained-prefix treated as no-op once the receiver type is resolved at the following call

	case mnemonic == "throw":
		v := ctx.stack.pop()
		return []ir.Instruction{&ir.Throw{Value: v.temp}}
	case mnemonic == "rethrow":
		return []ir.Instruction{&ir.Rethrow{}}
	case mnemonic == "endfilter":
		v := ctx.stack.pop()
		return []ir.Instruction{&ir.Assign{Result: "__filter_result", Value: v.temp}, &ir.EndFilter{ResultVar: "__filter_result"}}
	case mnemonic == "ret":
		if ctx.m.ReturnTypeName == "" {
			return []ir.Instruction{&ir.Return{}}
		}
		v := ctx.stack.pop()
		return []ir.Instruction{&ir.Return{Value: v.temp}}

	default:
		ctx.faults = append(ctx.faults, "unhandled CIL opcode \""+mnemonic+"\" at offset "+strconv.Itoa(instr.Offset))
		return []ir.Instruction{&ir.Comment{Text: "unhandled opcode " + mnemonic}}
	}
}

func (ctx *lowerCtx) labelFor(offset int) string {
	return "BB_" + strconv.Itoa(ctx.blockIDFor[offset])
}
