package build

import (
	"strings"

	"github.com/axiomates/cil2cpp/internal/ir"
)

func (ctx *lowerCtx) lowerNewArr(instr DecodedInstr) []ir.Instruction {
	length := ctx.stack.pop()
	elemType := instr.StrOp
	r := ctx.temps.fresh()
	ctx.stack.push(r, elemType+"[]")
	return []ir.Instruction{&ir.NewArr{ElementTypeName: elemType, LengthTemp: length.temp, Rank: 1, Result: r}}
}

func (ctx *lowerCtx) lowerCastOrIsinst(instr DecodedInstr, mnemonic string) []ir.Instruction {
	v := ctx.stack.pop()
	target := instr.StrOp
	r := ctx.temps.fresh()
	ctx.stack.push(r, target)
	return []ir.Instruction{&ir.Cast{
		Kind:           ir.CastSafe,
		TargetTypeName: target,
		Value:          v.temp,
		IsInstCheck:    mnemonic == "isinst",
		Result:         r,
	}}
}

func (ctx *lowerCtx) lowerBox(instr DecodedInstr) []ir.Instruction {
	v := ctx.stack.pop()
	valueType := instr.StrOp
	r := ctx.temps.fresh()
	ctx.stack.push(r, "System.Object")

	if isNullableInstantiation(valueType) {
		// box Nullable<T> lowers to an explicit has_value ? box(value) :
		// null sequence, never a box of the whole nullable struct.
		hasValue := ctx.temps.fresh()
		underlying := ctx.temps.fresh()
		boxed := ctx.temps.fresh()
		return []ir.Instruction{
			&ir.Load{Kind: ir.LoadField, Result: hasValue, BaseTemp: v.temp, Name: "hasValue", TypeName: "System.Boolean"},
			&ir.Load{Kind: ir.LoadField, Result: underlying, BaseTemp: v.temp, Name: "value", TypeName: nullableUnderlying(valueType)},
			&ir.Box{ValueTypeName: nullableUnderlying(valueType), Value: underlying, Result: boxed},
			&ir.RawTargetCode{Text: r + " = " + hasValue + " ? " + boxed + " : nullptr;", ResultName: r},
		}
	}

	return []ir.Instruction{&ir.Box{ValueTypeName: valueType, Value: v.temp, Result: r}}
}

func (ctx *lowerCtx) lowerUnbox(instr DecodedInstr) []ir.Instruction {
	v := ctx.stack.pop()
	valueType := instr.StrOp
	r := ctx.temps.fresh()
	ctx.stack.push(r, valueType)
	return []ir.Instruction{&ir.Unbox{ValueTypeName: valueType, Value: v.temp, Result: r}}
}

// lowerUnboxAny implements the special lowering rule: unbox.any T where
// T is a reference type lowers to a safe-cast (semantically equivalent
// to castclass), not a true unbox; unbox.any on a value type behaves
// like unbox.
func (ctx *lowerCtx) lowerUnboxAny(instr DecodedInstr) []ir.Instruction {
	target := instr.StrOp
	t := ctx.b.module.FindType(target)
	if t != nil && !t.IsValueType {
		v := ctx.stack.pop()
		r := ctx.temps.fresh()
		ctx.stack.push(r, target)
		return []ir.Instruction{&ir.Cast{Kind: ir.CastSafe, TargetTypeName: target, Value: v.temp, Result: r}}
	}
	return ctx.lowerUnbox(instr)
}

func (ctx *lowerCtx) lowerLdobjCpobj(mnemonic string) []ir.Instruction {
	if mnemonic == "cpobj" {
		src := ctx.stack.pop()
		dst := ctx.stack.pop()
		return []ir.Instruction{&ir.Store{Kind: ir.StoreIndirect, BaseTemp: dst.temp, ValueTemp: src.temp}}
	}
	p := ctx.stack.pop()
	r := ctx.temps.fresh()
	ctx.stack.push(r, "")
	return []ir.Instruction{&ir.Load{Kind: ir.LoadIndirect, Result: r, BaseTemp: p.temp}}
}

func (ctx *lowerCtx) lowerStobj() []ir.Instruction {
	v := ctx.stack.pop()
	p := ctx.stack.pop()
	return []ir.Instruction{&ir.Store{Kind: ir.StoreIndirect, BaseTemp: p.temp, ValueTemp: v.temp}}
}

func (ctx *lowerCtx) lowerInitobj(instr DecodedInstr) []ir.Instruction {
	p := ctx.stack.pop()
	return []ir.Instruction{&ir.RawTargetCode{Text: "memset(&(*" + p.temp + "), 0, sizeof(" + instr.StrOp + "));"}}
}

func isNullableInstantiation(typeName string) bool {
	return strings.HasPrefix(typeName, "System.Nullable`1<")
}

func nullableUnderlying(typeName string) string {
	i := strings.Index(typeName, "<")
	if i < 0 || !strings.HasSuffix(typeName, ">") {
		return ""
	}
	return typeName[i+1 : len(typeName)-1]
}
