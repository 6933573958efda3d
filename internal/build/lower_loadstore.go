package build

import (
	"strconv"
	"strings"

	"github.com/axiomates/cil2cpp/internal/ir"
)

// varIndex resolves the operand index for a load/store of args or
// locals: opcodes with an inline digit (ldarg.0..3, ldloc.0..3) encode
// it in the mnemonic; the .s/long forms carry it in IntOp.
func varIndex(mnemonic string, intOp int64) int {
	if i := strings.LastIndexByte(mnemonic, '.'); i >= 0 {
		if n, err := strconv.Atoi(mnemonic[i+1:]); err == nil {
			return n
		}
	}
	return int(intOp)
}

func (ctx *lowerCtx) lowerLdarg(instr DecodedInstr, mnemonic string) []ir.Instruction {
	if strings.HasPrefix(mnemonic, "ldarga") {
		idx := varIndex(mnemonic, instr.IntOp)
		r := ctx.temps.fresh()
		ctx.stack.push(r, typeNameAt(ctx.args, idx))
		return []ir.Instruction{&ir.Load{Kind: ir.LoadIndirect, Result: r, Name: argName(idx), TypeName: typeNameAt(ctx.args, idx)}}
	}
	idx := varIndex(mnemonic, instr.IntOp)
	r := ctx.temps.fresh()
	tn := typeNameAt(ctx.args, idx)
	ctx.stack.push(r, tn)
	return []ir.Instruction{&ir.Load{Kind: ir.LoadArg, Result: r, Name: argName(idx), TypeName: tn}}
}

func (ctx *lowerCtx) lowerStarg(instr DecodedInstr, mnemonic string) []ir.Instruction {
	idx := varIndex(mnemonic, instr.IntOp)
	v := ctx.stack.pop()
	return []ir.Instruction{&ir.Store{Kind: ir.StoreArg, Name: argName(idx), ValueTemp: v.temp}}
}

func (ctx *lowerCtx) lowerLdloc(instr DecodedInstr, mnemonic string) []ir.Instruction {
	if strings.HasPrefix(mnemonic, "ldloca") {
		idx := varIndex(mnemonic, instr.IntOp)
		r := ctx.temps.fresh()
		ctx.stack.push(r, typeNameAt(ctx.locals, idx))
		return []ir.Instruction{&ir.Load{Kind: ir.LoadIndirect, Result: r, Name: localName(idx), TypeName: typeNameAt(ctx.locals, idx)}}
	}
	idx := varIndex(mnemonic, instr.IntOp)
	r := ctx.temps.fresh()
	tn := typeNameAt(ctx.locals, idx)
	ctx.stack.push(r, tn)
	return []ir.Instruction{&ir.Load{Kind: ir.LoadLocal, Result: r, Name: localName(idx), TypeName: tn}}
}

func (ctx *lowerCtx) lowerStloc(instr DecodedInstr, mnemonic string) []ir.Instruction {
	idx := varIndex(mnemonic, instr.IntOp)
	v := ctx.stack.pop()
	return []ir.Instruction{&ir.Store{Kind: ir.StoreLocal, Name: localName(idx), ValueTemp: v.temp}}
}

func argName(i int) string   { return "arg" + strconv.Itoa(i) }
func localName(i int) string { return "loc" + strconv.Itoa(i) }

func typeNameAt(names []string, idx int) string {
	if idx < 0 || idx >= len(names) {
		return ""
	}
	return names[idx]
}

func (ctx *lowerCtx) lowerLdfld(instr DecodedInstr, static bool) []ir.Instruction {
	var base stackEntry
	if !static {
		base = ctx.stack.pop()
	}
	r := ctx.temps.fresh()
	fieldTypeName := instr.StrOp3
	ctx.stack.push(r, fieldTypeName)
	kind := ir.LoadField
	var guards []ir.Instruction
	if static {
		kind = ir.LoadStaticField
		guards = ctx.maybeStaticCtorGuard(instr)
	}
	load := &ir.Load{Kind: kind, Result: r, Name: fieldName(instr), BaseTemp: base.temp, TypeName: fieldTypeName}
	return append(guards, load)
}

func (ctx *lowerCtx) lowerStfld(instr DecodedInstr, static bool) []ir.Instruction {
	v := ctx.stack.pop()
	var base stackEntry
	if !static {
		base = ctx.stack.pop()
	}
	kind := ir.StoreField
	var guards []ir.Instruction
	if static {
		kind = ir.StoreStaticField
		guards = ctx.maybeStaticCtorGuard(instr)
	}
	store := &ir.Store{Kind: kind, Name: fieldName(instr), BaseTemp: base.temp, ValueTemp: v.temp}
	return append(guards, store)
}

// fieldName reads the decoder's resolved field name for a field-token
// operand.
func fieldName(instr DecodedInstr) string { return instr.StrOp }

// maybeStaticCtorGuard emits a StaticCtorGuard ahead of a static-field
// or static-method access whose declaring type has a static
// constructor, per the builder's HasCctor tracking.
func (ctx *lowerCtx) maybeStaticCtorGuard(instr DecodedInstr) []ir.Instruction {
	typeName := instr.StrOp2
	t := ctx.b.module.FindType(typeName)
	if t == nil || !t.HasCctor {
		return nil
	}
	return []ir.Instruction{&ir.StaticCtorGuard{TypeName: typeName}}
}

func (ctx *lowerCtx) lowerLdelem(instr DecodedInstr) []ir.Instruction {
	index := ctx.stack.pop()
	arr := ctx.stack.pop()
	r := ctx.temps.fresh()
	elemType := elementTypeName(arr.typeName)
	ctx.stack.push(r, elemType)
	return []ir.Instruction{&ir.Load{Kind: ir.LoadArrayElement, Result: r, BaseTemp: arr.temp, IndexTemp: index.temp, TypeName: elemType}}
}

// lowerLdlen lowers `ldlen`: pop the array reference, push its length
// as a native int (CIL's ldlen result type, widened to Int32 for the
// emitted scalar).
func (ctx *lowerCtx) lowerLdlen() []ir.Instruction {
	arr := ctx.stack.pop()
	r := ctx.temps.fresh()
	ctx.stack.push(r, "System.Int32")
	return []ir.Instruction{&ir.Load{Kind: ir.LoadArrayLength, Result: r, BaseTemp: arr.temp, TypeName: "System.Int32"}}
}

func (ctx *lowerCtx) lowerStelem(instr DecodedInstr) []ir.Instruction {
	v := ctx.stack.pop()
	index := ctx.stack.pop()
	arr := ctx.stack.pop()
	return []ir.Instruction{&ir.Store{Kind: ir.StoreArrayElement, BaseTemp: arr.temp, IndexTemp: index.temp, ValueTemp: v.temp}}
}

func (ctx *lowerCtx) lowerLdind() []ir.Instruction {
	p := ctx.stack.pop()
	r := ctx.temps.fresh()
	ctx.stack.push(r, "")
	return []ir.Instruction{&ir.Load{Kind: ir.LoadIndirect, Result: r, BaseTemp: p.temp}}
}

func (ctx *lowerCtx) lowerStind() []ir.Instruction {
	v := ctx.stack.pop()
	p := ctx.stack.pop()
	return []ir.Instruction{&ir.Store{Kind: ir.StoreIndirect, BaseTemp: p.temp, ValueTemp: v.temp}}
}

// elementTypeName strips one array-rank suffix ("System.Int32[]" ->
// "System.Int32"); arrType with no "[]" suffix falls through unchanged
// (a defensive default, not an expected input).
func elementTypeName(arrType string) string {
	if strings.HasSuffix(arrType, "[]") {
		return arrType[:len(arrType)-2]
	}
	return arrType
}
