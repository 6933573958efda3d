package gate

import "github.com/axiomates/cil2cpp/internal/ir"

// referencedTypeNames collects every type-name-bearing operand across a
// method's lowered instructions, for the gate's three type-name-driven
// classification rules. One pass over the body, not one per rule.
func referencedTypeNames(m *ir.Method) []string {
	var out []string
	for _, bb := range m.BasicBlocks {
		for _, instr := range bb.Instructions {
			switch v := instr.(type) {
			case *ir.DeclareLocal:
				out = append(out, v.TypeName)
			case *ir.Load:
				out = append(out, v.TypeName)
			case *ir.BinaryOp:
				out = append(out, v.TypeName)
			case *ir.NewObj:
				out = append(out, v.TypeName)
			case *ir.NewArr:
				out = append(out, v.ElementTypeName)
			case *ir.DelegateCreate:
				out = append(out, v.DelegateTypeName)
			case *ir.Cast:
				out = append(out, v.TargetTypeName)
			case *ir.Box:
				out = append(out, v.ValueTypeName)
			case *ir.Unbox:
				out = append(out, v.ValueTypeName)
			case *ir.ExceptionMarker:
				if v.CatchTypeName != "" {
					out = append(out, v.CatchTypeName)
				}
			case *ir.StaticCtorGuard:
				out = append(out, v.TypeName)
			}
		}
	}
	return out
}
