package build

import "github.com/axiomates/cil2cpp/internal/ir"

// callSiteInfo is what the decoder resolves a call/callvirt/calli/newobj
// token operand to: StrOp2 carries the declaring type name, StrOp the
// method name, IntOp the declared parameter count (not counting this),
// IntOp2 the void-return flag.
type callSiteInfo struct {
	typeName    string
	methodName  string
	arity       int
	returnsVoid bool
}

func decodeCallSite(instr DecodedInstr) callSiteInfo {
	return callSiteInfo{
		typeName:    instr.StrOp2,
		methodName:  instr.StrOp,
		arity:       int(instr.IntOp),
		returnsVoid: instr.IntOp2 != 0,
	}
}

// lowerCall lowers call/callvirt/calli, redirecting to the ICall
// registry when the signature matches, and dropping v-table indirection
// for callvirt on a value-type declaring type.
func (ctx *lowerCtx) lowerCall(instr DecodedInstr, mnemonic string) []ir.Instruction {
	site := decodeCallSite(instr)
	args := ctx.stack.popN(site.arity)

	argTemps := make([]string, len(args))
	for i, a := range args {
		argTemps[i] = a.temp
	}
	firstParam := ""
	if len(args) > 0 {
		firstParam = args[0].typeName
	}

	if sym, ok := ctx.b.src.ICallSymbol(site.typeName, site.methodName, len(args), firstParam); ok {
		var result string
		var out []ir.Instruction
		if !site.returnsVoid {
			result = ctx.temps.fresh()
			ctx.stack.push(result, "")
		}
		out = append(out, &ir.Call{CalleeName: sym, Arguments: argTemps, Result: result})
		return out
	}

	isVirtual := mnemonic == "callvirt"
	declaringType := ctx.b.module.FindType(site.typeName)
	if declaringType != nil && declaringType.IsValueType {
		isVirtual = false // callvirt on a value type: direct call, no v-table indirection
	}
	var guards []ir.Instruction
	if mnemonic == "call" && declaringType != nil {
		for _, m := range declaringType.Methods {
			if m.CILName == site.methodName && m.IsStatic {
				guards = ctx.maybeStaticCtorGuard(instr)
				break
			}
		}
	}

	var result string
	if !site.returnsVoid {
		result = ctx.temps.fresh()
		ctx.stack.push(result, "")
	}
	return append(guards, &ir.Call{
		CalleeName: site.typeName + "." + site.methodName,
		IsVirtual:  isVirtual,
		VTableSlot: vtableSlotFor(declaringType, site.methodName),
		Arguments:  argTemps,
		Result:     result,
	})
}

// vtableSlotFor resolves a callvirt's target slot by name only: unlike
// pass 5's slot construction, the decoded call site carries the callee's
// declaring type and method name but not its full parameter signature,
// so an overloaded virtual resolves to whichever of its name-matching
// slots appears first in the v-table.
func vtableSlotFor(t *ir.Type, methodName string) int {
	if t == nil {
		return -1
	}
	for _, e := range t.VTable {
		if e.Name == methodName {
			return e.Slot
		}
	}
	return -1
}

func (ctx *lowerCtx) lowerNewObj(instr DecodedInstr) []ir.Instruction {
	site := decodeCallSite(instr)
	args := ctx.stack.popN(site.arity)
	argTemps := make([]string, len(args))
	for i, a := range args {
		argTemps[i] = a.temp
	}
	r := ctx.temps.fresh()
	ctx.stack.push(r, site.typeName)
	return []ir.Instruction{&ir.NewObj{TypeName: site.typeName, Ctor: site.typeName + "..ctor", Arguments: argTemps, Result: r}}
}

func (ctx *lowerCtx) lowerLdftn(instr DecodedInstr, mnemonic string) []ir.Instruction {
	site := decodeCallSite(instr)
	r := ctx.temps.fresh()
	ctx.stack.push(r, "")
	return []ir.Instruction{&ir.LoadFunctionPointer{MethodName: site.typeName + "." + site.methodName, IsVirtual: mnemonic == "ldvirtftn", Result: r}}
}
