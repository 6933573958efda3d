package build

import "github.com/axiomates/cil2cpp/internal/ir"

var arithOps = map[string]string{
	"add": "+", "add.ovf": "+", "add.ovf.un": "+",
	"sub": "-", "sub.ovf": "-", "sub.ovf.un": "-",
	"mul": "*", "mul.ovf": "*", "mul.ovf.un": "*",
	"div": "/", "div.un": "/",
	"rem": "%", "rem.un": "%",
}

func isArithmetic(mnemonic string) bool {
	_, ok := arithOps[mnemonic]
	return ok
}

// lowerBinaryArith pops two operands and pushes the result of the
// wider operand's type, checked-overflow variants carrying a "chk"
// prefix in Op (e.g. "chk+") that marks them as checked arithmetic
// rather than a raw operator.
func (ctx *lowerCtx) lowerBinaryArith(mnemonic string) []ir.Instruction {
	right := ctx.stack.pop()
	left := ctx.stack.pop()
	op := arithOps[mnemonic]
	if isOverflowChecked(mnemonic) {
		op = "chk" + op
	}
	r := ctx.temps.fresh()
	resultType := widerOf(left.typeName, right.typeName)
	ctx.stack.push(r, resultType)
	return []ir.Instruction{&ir.BinaryOp{Op: op, Left: left.temp, Right: right.temp, Result: r, TypeName: resultType}}
}

func isOverflowChecked(mnemonic string) bool {
	return hasSuffix(mnemonic, ".ovf") || hasSuffix(mnemonic, ".ovf.un")
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

var bitwiseOps = map[string]string{
	"and": "&", "or": "|", "xor": "^", "shl": "<<", "shr": ">>", "shr.un": ">>>",
}

func isBitwise(mnemonic string) bool {
	_, ok := bitwiseOps[mnemonic]
	return ok
}

func (ctx *lowerCtx) lowerBitwise(mnemonic string) []ir.Instruction {
	right := ctx.stack.pop()
	left := ctx.stack.pop()
	r := ctx.temps.fresh()
	resultType := widerOf(left.typeName, right.typeName)
	ctx.stack.push(r, resultType)
	return []ir.Instruction{&ir.BinaryOp{Op: bitwiseOps[mnemonic], Left: left.temp, Right: right.temp, Result: r, TypeName: resultType}}
}

var comparisonOps = map[string]string{
	"ceq": "==", "cgt": ">", "cgt.un": ">", "clt": "<", "clt.un": "<",
}

func isComparison(mnemonic string) bool {
	_, ok := comparisonOps[mnemonic]
	return ok
}

// lowerComparison always produces a 32-bit integer result, per the
// result-type inference rule for comparisons.
func (ctx *lowerCtx) lowerComparison(mnemonic string) []ir.Instruction {
	right := ctx.stack.pop()
	left := ctx.stack.pop()
	r := ctx.temps.fresh()
	ctx.stack.push(r, "System.Int32")
	return []ir.Instruction{&ir.BinaryOp{Op: comparisonOps[mnemonic], Left: left.temp, Right: right.temp, Result: r, TypeName: "System.Int32"}}
}

func (ctx *lowerCtx) lowerUnary(op string) []ir.Instruction {
	v := ctx.stack.pop()
	r := ctx.temps.fresh()
	ctx.stack.push(r, v.typeName)
	return []ir.Instruction{&ir.UnaryOp{Op: op, Value: v.temp, Result: r}}
}

// widerOf picks the wider of two operand types by scalar byte size,
// falling back to the left operand's type when sizes tie or either is
// unknown (e.g. a reference type operand in a pointer comparison).
func widerOf(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if scalarSize(b) > scalarSize(a) {
		return b
	}
	return a
}

// convTargets maps a conv.* mnemonic (stripped of .ovf/.un qualifiers
// that lowerConversion peels off separately) to its target scalar
// identifier and CIL type name.
var convTargets = map[string]struct {
	scalar   string
	typeName string
}{
	"i1": {"int8_t", "System.SByte"},
	"i2": {"int16_t", "System.Int16"},
	"i4": {"int32_t", "System.Int32"},
	"i8": {"int64_t", "System.Int64"},
	"u1": {"uint8_t", "System.Byte"},
	"u2": {"uint16_t", "System.UInt16"},
	"u4": {"uint32_t", "System.UInt32"},
	"u8": {"uint64_t", "System.UInt64"},
	"r4": {"float", "System.Single"},
	"r8": {"double", "System.Double"},
	"i":  {"intptr_t", "System.IntPtr"},
	"u":  {"uintptr_t", "System.UIntPtr"},
	"r.un": {"double", "System.Double"},
}

func (ctx *lowerCtx) lowerConversion(mnemonic string) []ir.Instruction {
	rest := mnemonic[len("conv."):]
	checked := false
	unsigned := false
	if len(rest) > len("ovf.") && rest[:len("ovf.")] == "ovf." {
		checked = true
		rest = rest[len("ovf."):]
		if hasSuffix(rest, ".un") {
			unsigned = true
			rest = rest[:len(rest)-len(".un")]
		}
	}

	target, ok := convTargets[rest]
	if !ok {
		target = convTargets["i4"]
	}

	v := ctx.stack.pop()
	r := ctx.temps.fresh()
	ctx.stack.push(r, target.typeName)

	// conv.r.un on a narrower integer: preserve source width as unsigned
	// before widening to double, to avoid sign-extension contamination.
	if rest == "r.un" {
		unsignedScalar := "uint64_t"
		switch scalarSize(v.typeName) {
		case 1:
			unsignedScalar = "uint8_t"
		case 2:
			unsignedScalar = "uint16_t"
		case 4:
			unsignedScalar = "uint32_t"
		}
		widened := ctx.temps.fresh()
		return []ir.Instruction{
			&ir.Conversion{TargetScalar: unsignedScalar, Value: v.temp, Unsigned: true, Result: widened},
			&ir.Conversion{TargetScalar: target.scalar, Value: widened, Result: r},
		}
	}

	return []ir.Instruction{&ir.Conversion{TargetScalar: target.scalar, Value: v.temp, Checked: checked, Unsigned: unsigned, Result: r}}
}
